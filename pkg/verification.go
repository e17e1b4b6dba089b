package pkg

import (
	"fmt"

	"github.com/hashicorp/go-hclog"

	"github.com/Kryklin/darkstar/go/darkstar/pkg/codec"
)

// SelfTestWithLogger runs the built-in checks and logs one line per check.
// It returns an error naming how many checks failed.
func SelfTestWithLogger(c *codec.Codec, logger hclog.Logger) error {
	logger.Info("Running self test")

	failed := 0
	for _, check := range c.SelfTest() {
		if check.Passed() {
			logger.Info("✓ " + check.Name)
			continue
		}
		failed++
		logger.Error("✗ "+check.Name, "error", check.Err)
	}

	if failed == 0 {
		logger.Info("✓ Self test passed")
		return nil
	}
	logger.Error("✗ Self test failed", "error_count", failed)
	return fmt.Errorf("self test: %d check(s) failed", failed)
}

// SelfTest runs the built-in checks using default logger settings
func SelfTest() error {
	logger := defaultLogger()
	return SelfTestWithLogger(codec.New(codec.WithLogger(logger)), logger)
}
