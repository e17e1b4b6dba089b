package codec

import (
	"bytes"
	"errors"
	"fmt"

	dserrors "github.com/Kryklin/darkstar/go/darkstar/pkg/errors"
	"github.com/Kryklin/darkstar/go/darkstar/pkg/prng"
	"github.com/Kryklin/darkstar/go/darkstar/pkg/transforms"
)

// Reference scenario used by the self test.
const (
	SelfTestPhrase   = "cat dog fish bird"
	SelfTestPassword = "MySecre!Password123"
)

// Check is the outcome of one self test step.
type Check struct {
	Name string
	Err  error
}

// Passed reports whether the check succeeded.
func (c Check) Passed() bool {
	return c.Err == nil
}

// SelfTest exercises generators, transforms and both formats end to end.
// Every check runs even when an earlier one fails.
func (c *Codec) SelfTest() []Check {
	steps := []struct {
		name string
		fn   func() error
	}{
		{"generator vectors", checkGenerators},
		{"transform bijectivity", checkTransforms},
		{"plan selection", checkPlan},
		{"v2 round trip", c.checkRoundTrip},
		{"v2 wrong password rejected", c.checkWrongPassword},
		{"v1 legacy round trip", c.checkLegacy},
	}

	checks := make([]Check, 0, len(steps))
	for _, s := range steps {
		err := s.fn()
		if err != nil {
			c.logger.Debug("Self test step failed", "step", s.name, "error", err)
		}
		checks = append(checks, Check{Name: s.name, Err: err})
	}
	return checks
}

func checkGenerators() error {
	if got := prng.NewMulberry32("test").Next(); got != 0.6785681380424649 {
		return fmt.Errorf("mulberry32 produced %v", got)
	}
	if got := prng.NewLegacy("test").Next(); got != 0.30538112157955766 {
		return fmt.Errorf("legacy generator produced %v", got)
	}
	return nil
}

func checkTransforms() error {
	input := make([]byte, 256)
	for i := range input {
		input[i] = byte(i)
	}
	seed := transforms.Seed{Key: []byte(SelfTestPassword + "66")}

	for _, t := range transforms.All() {
		out, err := t.Apply(input, seed)
		if err != nil {
			return fmt.Errorf("%s: %w", t.Name(), err)
		}
		back, err := t.Reverse(out, seed)
		if err != nil {
			return fmt.Errorf("%s: %w", t.Name(), err)
		}
		if !bytes.Equal(back, input) {
			return fmt.Errorf("%s is not reversible", t.Name())
		}
	}
	return nil
}

func checkPlan() error {
	want := transforms.Plan{5, 4, 7, 3, 11, 2, 6, 0, 1, 8, 9, 10}
	got := transforms.SelectPlan(SelfTestPassword, "cat", prng.MulberryFactory)
	if got.String() != want.String() {
		return fmt.Errorf("plan for %q is %s", "cat", got)
	}
	return nil
}

func (c *Codec) checkRoundTrip() error {
	res, err := c.Encrypt(SelfTestPhrase, SelfTestPassword)
	if err != nil {
		return err
	}
	got, err := c.Decrypt(res.Artifact, res.ReverseKey, SelfTestPassword)
	if err != nil {
		return err
	}
	if got != SelfTestPhrase {
		return errors.New("decrypted phrase differs")
	}
	return nil
}

func (c *Codec) checkWrongPassword() error {
	res, err := c.Encrypt(SelfTestPhrase, SelfTestPassword)
	if err != nil {
		return err
	}
	_, err = c.Decrypt(res.Artifact, res.ReverseKey, SelfTestPassword+"!")
	if errors.Is(err, dserrors.ErrDecryptionFailed) || errors.Is(err, dserrors.ErrDataIntegrity) {
		return nil
	}
	return fmt.Errorf("wrong password gave %v", err)
}

func (c *Codec) checkLegacy() error {
	res, err := c.encryptLegacy(SelfTestPhrase, SelfTestPassword)
	if err != nil {
		return err
	}
	got, err := c.Decrypt(res.Artifact, res.ReverseKey, SelfTestPassword)
	if err != nil {
		return err
	}
	if got != SelfTestPhrase {
		return errors.New("decrypted legacy phrase differs")
	}
	return nil
}
