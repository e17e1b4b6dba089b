package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/hashicorp/go-hclog"
	"github.com/spf13/cobra"

	"github.com/Kryklin/darkstar/go/darkstar/internal/config"
	"github.com/Kryklin/darkstar/go/darkstar/pkg/codec"
	"github.com/Kryklin/darkstar/go/darkstar/pkg/logging"
	"github.com/Kryklin/darkstar/go/darkstar/pkg/utils/permissions"
)

// stdinMarker as a password argument reads the password from standard input.
const stdinMarker = "-"

type cli struct {
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer

	configPath  string
	logLevel    string
	workers     int
	outputPath  string
	outputMode  string
	versionFlag bool

	cfg    config.Config
	logger hclog.Logger
}

func newRootCmd(stdin io.Reader, stdout, stderr io.Writer) *cobra.Command {
	c := &cli{stdin: stdin, stdout: stdout, stderr: stderr}

	rootCmd := &cobra.Command{
		Use:           "darkstar",
		Short:         "Obfuscate and encrypt recovery phrases",
		Long:          `Obfuscate each word of a phrase with a password-derived chain of transforms, then encrypt the result.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if c.versionFlag {
				printVersion(c.stdout)
				return nil
			}
			return cmd.Help()
		},
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.setup(cmd)
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&c.configPath, "config", "", "Path to config.yaml (defaults to the user config directory)")
	flags.StringVar(&c.logLevel, "log-level", "", "Log level (trace, debug, info, warn, error)")
	flags.IntVar(&c.workers, "workers", 0, "Words transformed concurrently (0 uses the configured value)")
	flags.StringVarP(&c.outputPath, "output", "o", "", "Write the result to a file instead of stdout")
	flags.StringVar(&c.outputMode, "mode", "", "Permissions for --output files, octal (default 0600)")
	rootCmd.Flags().BoolVarP(&c.versionFlag, "version", "V", false, "Show version information")

	rootCmd.AddCommand(
		c.encryptCmd(),
		c.decryptCmd(),
		c.testCmd(),
		c.inspectCmd(),
	)
	return rootCmd
}

// setup resolves configuration: file, then environment, then flags.
func (c *cli) setup(cmd *cobra.Command) error {
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return err
	}
	if c.logLevel != "" {
		cfg.LogLevel = c.logLevel
	}
	if cmd.Flags().Changed("workers") {
		cfg.Workers = c.workers
	}
	if c.outputMode != "" {
		cfg.OutputMode = c.outputMode
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	c.cfg = cfg
	c.logger = logging.New(logging.Options{
		Name:   "darkstar",
		Level:  cfg.LogLevel,
		JSON:   cfg.JSONLog,
		Output: c.stderr,
	})
	c.logger.Debug("Configuration loaded", "workers", cfg.Workers, "output_mode", cfg.OutputMode)
	return nil
}

func (c *cli) codec() *codec.Codec {
	return codec.New(codec.WithLogger(c.logger), codec.WithWorkers(c.cfg.Workers))
}

// password returns arg, or the first line of stdin when arg is "-".
func (c *cli) password(arg string) (string, error) {
	if arg != stdinMarker {
		return arg, nil
	}
	line, err := bufio.NewReader(c.stdin).ReadString('\n')
	if err != nil && err != io.EOF {
		return "", fmt.Errorf("reading password: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// emit writes the result to --output or stdout.
func (c *cli) emit(result string) error {
	if c.outputPath == "" {
		_, err := fmt.Fprintln(c.stdout, result)
		return err
	}

	mode := c.cfg.FileMode()
	if err := os.WriteFile(c.outputPath, []byte(result+"\n"), mode); err != nil {
		return fmt.Errorf("writing %s: %w", c.outputPath, err)
	}
	// WriteFile keeps the mode of an existing file.
	if err := os.Chmod(c.outputPath, mode); err != nil {
		return fmt.Errorf("setting mode on %s: %w", c.outputPath, err)
	}
	if permissions.IsGroupOrWorldReadable(mode) {
		c.logger.Warn("Output file is readable by other users", "path", c.outputPath, "mode", permissions.FormatOctal(mode))
	}
	c.logger.Info("Result written", "path", c.outputPath)
	return nil
}

func (c *cli) encryptCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "encrypt <phrase> <password>",
		Short: "Encrypt a phrase and print the artifact and reverse key as JSON",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			password, err := c.password(args[1])
			if err != nil {
				return err
			}
			res, err := c.codec().Encrypt(args[0], password)
			if err != nil {
				return err
			}
			out, err := json.Marshal(res)
			if err != nil {
				return err
			}
			return c.emit(string(out))
		},
	}
}

func (c *cli) decryptCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "decrypt <artifact> <reverseKey> <password>",
		Short: "Decrypt an artifact (V2 or legacy V1) back to the phrase",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			password, err := c.password(args[2])
			if err != nil {
				return err
			}
			phrase, err := c.codec().Decrypt(args[0], args[1], password)
			if err != nil {
				return err
			}
			return c.emit(phrase)
		},
	}
}

func (c *cli) testCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "test",
		Short: "Run the built-in self test",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			pass := color.New(color.FgGreen)
			fail := color.New(color.FgRed, color.Bold)

			failed := 0
			for _, check := range c.codec().SelfTest() {
				if check.Passed() {
					pass.Fprintf(c.stdout, "✓ %s\n", check.Name)
					continue
				}
				failed++
				fail.Fprintf(c.stdout, "✗ %s: %v\n", check.Name, check.Err)
			}

			if failed > 0 {
				return fmt.Errorf("self test: %d check(s) failed", failed)
			}
			pass.Fprintln(c.stdout, "✓ Self test passed")
			return nil
		},
	}
}

func (c *cli) inspectCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "inspect <reverseKey>",
		Short: "Show the transform plan stored for each word",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			plans, err := codec.DecodeReverseKey(args[0])
			if err != nil {
				return err
			}
			var sb strings.Builder
			for i, p := range plans {
				if i > 0 {
					sb.WriteByte('\n')
				}
				fmt.Fprintf(&sb, "word %d (checksum %d): %s", i+1, p.Checksum(), p)
			}
			return c.emit(sb.String())
		},
	}
}
