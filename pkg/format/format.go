// Package format describes the artifact format versions the codec can
// produce and read.
package format

import (
	"fmt"

	dserrors "github.com/Kryklin/darkstar/go/darkstar/pkg/errors"
	"github.com/Kryklin/darkstar/go/darkstar/pkg/prng"
)

// Version identifies an artifact format.
type Version int

const (
	// V1 is the legacy format: legacy generator, 1000 PBKDF2 iterations and
	// a separator-joined text blob.
	V1 Version = 1

	// V2 is the current format: Mulberry32, 600000 PBKDF2 iterations and a
	// length-framed binary blob.
	V2 Version = 2
)

func (v Version) String() string {
	return fmt.Sprintf("v%d", int(v))
}

// Format bundles everything that differs between versions.
type Format struct {
	Version      Version
	Iterations   int
	NewGenerator prng.Factory

	// Framed is true when word blocks are length-prefixed and the blob is
	// carried as Base64 text inside the envelope.
	Framed bool
}

var (
	V2Format = Format{
		Version:      V2,
		Iterations:   V2Iterations,
		NewGenerator: prng.MulberryFactory,
		Framed:       true,
	}

	V1Format = Format{
		Version:      V1,
		Iterations:   V1Iterations,
		NewGenerator: prng.LegacyFactory,
		Framed:       false,
	}
)

// ForVersion returns the descriptor for v.
func ForVersion(v Version) (Format, error) {
	switch v {
	case V2:
		return V2Format, nil
	case V1:
		return V1Format, nil
	default:
		return Format{}, fmt.Errorf("%w: unsupported format version %d", dserrors.ErrParse, int(v))
	}
}
