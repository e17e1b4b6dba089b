// Package codec turns a phrase and password into an encrypted artifact and
// reverse key, and back.
//
// Each word is run through its own password-derived plan of transforms.
// The transformed words are framed into one blob which is sealed with
// PBKDF2 and AES-256-CBC. New artifacts are always V2; V1 artifacts are
// detected and decoded.
package codec

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"runtime"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/hashicorp/go-hclog"
	"golang.org/x/sync/errgroup"

	"github.com/Kryklin/darkstar/go/darkstar/pkg/blob"
	"github.com/Kryklin/darkstar/go/darkstar/pkg/envelope"
	dserrors "github.com/Kryklin/darkstar/go/darkstar/pkg/errors"
	"github.com/Kryklin/darkstar/go/darkstar/pkg/format"
	"github.com/Kryklin/darkstar/go/darkstar/pkg/transforms"
	"github.com/Kryklin/darkstar/go/darkstar/pkg/utils"
)

// Result is the output of Encrypt. The JSON form is what the command line
// prints.
type Result struct {
	Artifact   string `json:"encryptedData"`
	ReverseKey string `json:"reverseKey"`
}

// Codec encrypts and decrypts phrases. It holds configuration only, so a
// single Codec may be shared between goroutines.
type Codec struct {
	logger  hclog.Logger
	workers int
	rand    io.Reader

	current format.Format
	legacy  format.Format
}

// Option configures a Codec.
type Option func(*Codec)

// WithLogger sets the logger. Secrets are never logged.
func WithLogger(logger hclog.Logger) Option {
	return func(c *Codec) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithWorkers bounds how many words are transformed concurrently.
// Values below one are ignored.
func WithWorkers(n int) Option {
	return func(c *Codec) {
		if n > 0 {
			c.workers = n
		}
	}
}

// WithRand sets the source of salts and IVs.
func WithRand(r io.Reader) Option {
	return func(c *Codec) {
		c.rand = r
	}
}

// withFormats replaces the format descriptors, letting tests run with
// cheap key derivation.
func withFormats(current, legacy format.Format) Option {
	return func(c *Codec) {
		c.current = current
		c.legacy = legacy
	}
}

// New creates a Codec.
func New(opts ...Option) *Codec {
	c := &Codec{
		logger:  hclog.NewNullLogger(),
		workers: runtime.GOMAXPROCS(0),
		current: format.V2Format,
		legacy:  format.V1Format,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Codec) formatFor(v format.Version) format.Format {
	if v == c.current.Version {
		return c.current
	}
	return c.legacy
}

func (c *Codec) cipher(f format.Format) *envelope.Cipher {
	ci := envelope.NewCipher(f.Iterations)
	if c.rand != nil {
		ci.Rand = c.rand
	}
	return ci
}

// Encrypt obfuscates and encrypts phrase under password. Words are the
// parts of phrase between single spaces.
func (c *Codec) Encrypt(phrase, password string) (*Result, error) {
	return c.encrypt(phrase, password, c.current)
}

// encryptLegacy produces a V1 artifact. Only used to check the legacy
// decode path.
func (c *Codec) encryptLegacy(phrase, password string) (*Result, error) {
	return c.encrypt(phrase, password, c.legacy)
}

func (c *Codec) encrypt(phrase, password string, f format.Format) (*Result, error) {
	start := time.Now()
	words := strings.Split(phrase, format.WordSeparator)
	c.logger.Debug("🔐 Encrypting phrase", "words", len(words), "format", f.Version)

	pw := []byte(password)
	defer utils.Wipe(pw)

	plans := make([]transforms.Plan, len(words))
	blocks := make([][]byte, len(words))
	defer utils.WipeAll(blocks)

	g := new(errgroup.Group)
	g.SetLimit(c.workers)
	for i, word := range words {
		i, word := i, word
		g.Go(func() error {
			plan := transforms.SelectPlan(password, word, f.NewGenerator)
			seed := transforms.Seed{Key: transforms.SeedInput(pw, plan), NewGenerator: f.NewGenerator}
			defer utils.Wipe(seed.Key)

			input := []byte(word)
			defer utils.Wipe(input)

			block, err := transforms.ApplyChain(input, plan, seed)
			if err != nil {
				return fmt.Errorf("word %d: %w", i, err)
			}
			plans[i] = plan
			blocks[i] = block
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var plaintext []byte
	if f.Framed {
		framed, err := blob.Encode(blocks)
		if err != nil {
			return nil, err
		}
		plaintext = make([]byte, base64.StdEncoding.EncodedLen(len(framed)))
		base64.StdEncoding.Encode(plaintext, framed)
		utils.Wipe(framed)
	} else {
		plaintext = []byte(blob.JoinLegacy(blocks))
	}
	defer utils.Wipe(plaintext)

	transit, err := c.cipher(f).Seal(plaintext, pw)
	if err != nil {
		return nil, err
	}

	artifact := transit
	if f.Framed {
		artifact = envelope.Wrap(transit)
	}

	reverseKey, err := encodeReverseKey(plans)
	if err != nil {
		return nil, err
	}

	c.logger.Debug("✅ Phrase encrypted", "format", f.Version, "artifact_len", len(artifact), "duration", time.Since(start))
	return &Result{Artifact: artifact, ReverseKey: reverseKey}, nil
}

// Decrypt recovers the phrase from an artifact, its reverse key and the
// password. The artifact version is detected from its shape.
func (c *Codec) Decrypt(artifact, reverseKey, password string) (string, error) {
	start := time.Now()

	plans, err := DecodeReverseKey(reverseKey)
	if err != nil {
		return "", err
	}

	env := envelope.Parse(artifact)
	f := c.formatFor(env.Version)
	c.logger.Debug("🔓 Decrypting artifact", "format", f.Version, "words", len(plans))

	pw := []byte(password)
	defer utils.Wipe(pw)

	plaintext, err := c.cipher(f).Open(env.Data, pw)
	if err != nil {
		return "", err
	}
	defer utils.Wipe(plaintext)

	blocks, err := c.splitBlob(plaintext, len(plans), f)
	if err != nil {
		return "", err
	}
	defer utils.WipeAll(blocks)

	words := make([][]byte, len(plans))
	defer utils.WipeAll(words)

	g := new(errgroup.Group)
	g.SetLimit(c.workers)
	for i, plan := range plans {
		i, plan := i, plan
		g.Go(func() error {
			seed := transforms.Seed{Key: transforms.SeedInput(pw, plan), NewGenerator: f.NewGenerator}
			defer utils.Wipe(seed.Key)

			word, err := transforms.ReverseChain(blocks[i], plan, seed)
			if err != nil {
				return fmt.Errorf("word %d: %w", i, err)
			}
			if !utf8.Valid(word) {
				utils.Wipe(word)
				return fmt.Errorf("%w: word %d is not valid UTF-8", dserrors.ErrDataIntegrity, i)
			}
			words[i] = word
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return "", err
	}

	var sb strings.Builder
	for i, w := range words {
		if i > 0 {
			sb.WriteString(format.WordSeparator)
		}
		sb.Write(w)
	}

	c.logger.Debug("✅ Artifact decrypted", "format", f.Version, "duration", time.Since(start))
	return sb.String(), nil
}

// splitBlob recovers the transformed words from the opened envelope.
func (c *Codec) splitBlob(plaintext []byte, count int, f format.Format) ([][]byte, error) {
	if !f.Framed {
		if !utf8.Valid(plaintext) {
			return nil, fmt.Errorf("%w: legacy blob is not valid UTF-8", dserrors.ErrDecryptionFailed)
		}
		return blob.SplitLegacy(string(plaintext), count)
	}

	framed := make([]byte, base64.StdEncoding.DecodedLen(len(plaintext)))
	n, err := base64.StdEncoding.Decode(framed, plaintext)
	if err != nil {
		utils.Wipe(framed)
		return nil, fmt.Errorf("%w: blob is not base64", dserrors.ErrDecryptionFailed)
	}
	defer utils.Wipe(framed)

	return blob.Decode(framed[:n], count)
}

// encodeReverseKey renders plans as Base64 of a JSON array of arrays.
func encodeReverseKey(plans []transforms.Plan) (string, error) {
	ints := make([][]int, len(plans))
	for i, p := range plans {
		ints[i] = p.Ints()
	}
	data, err := json.Marshal(ints)
	if err != nil {
		return "", fmt.Errorf("encoding reverse key: %w", err)
	}
	return base64.StdEncoding.EncodeToString(data), nil
}

// DecodeReverseKey parses a reverse key. Both the JSON form written by
// Encrypt and the nibble-packed form (six bytes per word) are accepted.
// A valid packed key never begins with '[' and ends with ']' at the same
// time, so the two forms cannot be confused.
func DecodeReverseKey(reverseKey string) ([]transforms.Plan, error) {
	raw, err := base64.StdEncoding.DecodeString(strings.TrimSpace(reverseKey))
	if err != nil {
		return nil, fmt.Errorf("%w: reverse key is not base64", dserrors.ErrParse)
	}
	if len(raw) == 0 {
		return nil, fmt.Errorf("%w: empty reverse key", dserrors.ErrParse)
	}

	if raw[0] == '[' && json.Valid(raw) {
		var ints [][]int
		if err := json.Unmarshal(raw, &ints); err != nil {
			return nil, fmt.Errorf("%w: reverse key is not a list of transform lists", dserrors.ErrParse)
		}
		if len(ints) == 0 {
			return nil, fmt.Errorf("%w: reverse key has no words", dserrors.ErrParse)
		}
		plans := make([]transforms.Plan, len(ints))
		for i, values := range ints {
			plan, err := transforms.PlanFromInts(values)
			if err != nil {
				return nil, fmt.Errorf("word %d: %w", i, err)
			}
			plans[i] = plan
		}
		return plans, nil
	}

	return transforms.UnpackPlans(raw)
}
