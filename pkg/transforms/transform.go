// Package transforms implements the twelve reversible byte transforms that
// make up a word's obfuscation plan, and the chains that apply them.
//
// Transforms 0-5 are unseeded. Transforms 6-11 are seeded: they consume the
// per-word seed input and, where they need randomness, a generator built
// from that seed.
package transforms

import (
	"fmt"

	dserrors "github.com/Kryklin/darkstar/go/darkstar/pkg/errors"
	"github.com/Kryklin/darkstar/go/darkstar/pkg/prng"
)

// ID identifies one of the twelve transforms. The numbering is part of the
// reverse key format.
type ID uint8

// Transform identifiers
const (
	// Unseeded (0-5)
	Reverse      ID = 0
	Atbash       ID = 1
	Decimal      ID = 2
	Binary       ID = 3
	Rot13        ID = 4
	SwapAdjacent ID = 5

	// Seeded (6-11)
	Shuffle       ID = 6
	XOR           ID = 7
	Interleave    ID = 8
	Vigenere      ID = 9
	BlockReversal ID = 10
	Substitution  ID = 11

	// Count is the number of transforms in the table.
	Count = 12
)

// Seeded reports whether the transform consumes the seed input.
func (id ID) Seeded() bool {
	return id >= Shuffle
}

// Valid reports whether id names a transform.
func (id ID) Valid() bool {
	return id < Count
}

func (id ID) String() string {
	if t, err := Get(id); err == nil {
		return t.Name()
	}
	return fmt.Sprintf("unknown_%d", uint8(id))
}

// Seed carries what a seeded transform needs. Unseeded transforms always
// receive the zero value.
type Seed struct {
	// Key is the per-word seed input (password bytes followed by the
	// plan checksum digits).
	Key []byte

	// NewGenerator builds the generator for the active format.
	NewGenerator prng.Factory
}

func (s Seed) generator() prng.Generator {
	newGenerator := s.NewGenerator
	if newGenerator == nil {
		newGenerator = prng.MulberryFactory
	}
	return newGenerator(string(s.Key))
}

// Transform is a single reversible step applied to a word.
type Transform interface {
	// ID returns the transform identifier
	ID() ID

	// Name returns the human-readable name
	Name() string

	// Seeded returns true if the transform consumes the seed
	Seeded() bool

	// Apply transforms the input. It never modifies input.
	Apply(input []byte, seed Seed) ([]byte, error)

	// Reverse undoes Apply given the same seed. It never modifies input.
	Reverse(input []byte, seed Seed) ([]byte, error)
}

// base provides common functionality for transforms
type base struct {
	id   ID
	name string
}

func (b base) ID() ID {
	return b.id
}

func (b base) Name() string {
	return b.name
}

func (b base) Seeded() bool {
	return b.id.Seeded()
}

// table is the fixed dispatch table, indexed by ID.
var table = [Count]Transform{
	Reverse:       reverseTransform{base{Reverse, "reverse"}},
	Atbash:        atbashTransform{base{Atbash, "atbash"}},
	Decimal:       decimalTransform{base{Decimal, "decimal"}},
	Binary:        binaryTransform{base{Binary, "binary"}},
	Rot13:         rot13Transform{base{Rot13, "rot13"}},
	SwapAdjacent:  swapTransform{base{SwapAdjacent, "swap"}},
	Shuffle:       shuffleTransform{base{Shuffle, "shuffle"}},
	XOR:           xorTransform{base{XOR, "xor"}},
	Interleave:    interleaveTransform{base{Interleave, "interleave"}},
	Vigenere:      vigenereTransform{base{Vigenere, "vigenere"}},
	BlockReversal: blockReversalTransform{base{BlockReversal, "block-reverse"}},
	Substitution:  substitutionTransform{base{Substitution, "substitution"}},
}

// Get retrieves a transform by ID
func Get(id ID) (Transform, error) {
	if !id.Valid() {
		return nil, fmt.Errorf("%w: unknown transform %d", dserrors.ErrInvalidReverseKey, uint8(id))
	}
	return table[id], nil
}

// All returns the transforms in ID order.
func All() []Transform {
	out := make([]Transform, Count)
	copy(out, table[:])
	return out
}

// ByName looks a transform up by its Name.
func ByName(name string) (Transform, bool) {
	for _, t := range table {
		if t.Name() == name {
			return t, true
		}
	}
	return nil, false
}
