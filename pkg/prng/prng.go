// Package prng provides the seedable, reproducible generators used to drive
// plan selection and the seeded transforms.
//
// The seeding and mixing constants are part of the artifact format: any
// change to them makes existing artifacts undecodable. Both generators fold
// the seed over its UTF-16 code units so that a seed produces the same
// stream here as in the browser implementation.
//
// Neither generator is suitable as a key stream.
package prng

import "unicode/utf16"

// Generator yields a reproducible stream of floats in [0,1).
type Generator interface {
	Next() float64
}

// Factory builds a fresh generator from a seed.
type Factory func(seed string) Generator

const twoPow32 = 4294967296.0

// Mulberry32 is the format V2 generator.
type Mulberry32 struct {
	state uint32
}

// NewMulberry32 seeds a Mulberry32 generator.
func NewMulberry32(seed string) *Mulberry32 {
	var h uint32
	for _, c := range codeUnits(seed) {
		h = (h ^ uint32(c)) * 3432918353
		h = h<<13 | h>>19
	}
	h = (h ^ h>>16) * 2246822507
	h = (h ^ h>>13) * 3266489909
	h ^= h >> 16
	return &Mulberry32{state: h}
}

// Next advances the state and returns the next value.
func (m *Mulberry32) Next() float64 {
	m.state += 0x6d2b79f5
	t := (m.state ^ m.state>>15) * (1 | m.state)
	t = (t + (t^t>>7)*(61|t)) ^ t
	return float64(t^t>>14) / twoPow32
}

// Legacy is the format V1 generator.
type Legacy struct {
	state uint32
}

// NewLegacy seeds a Legacy generator.
func NewLegacy(seed string) *Legacy {
	h := uint32(1779033703)
	for _, c := range codeUnits(seed) {
		h = (h ^ uint32(c)) * 3432918353
	}
	h = h<<13 | h>>19
	return &Legacy{state: h}
}

// Next advances the state and returns the next value.
func (l *Legacy) Next() float64 {
	h := l.state
	h = (h ^ h>>16) * 2246822507
	h = (h ^ h>>13) * 3266489909
	h ^= h >> 16
	l.state = h
	return float64(h) / twoPow32
}

// MulberryFactory and LegacyFactory adapt the constructors to Factory.
func MulberryFactory(seed string) Generator { return NewMulberry32(seed) }

func LegacyFactory(seed string) Generator { return NewLegacy(seed) }

// Shuffle performs a Fisher-Yates shuffle of n elements driven by g,
// walking from the last element down. swap is called for every draw,
// including draws where i == j.
func Shuffle(n int, g Generator, swap func(i, j int)) {
	for i := n - 1; i > 0; i-- {
		j := int(g.Next() * float64(i+1))
		swap(i, j)
	}
}

// codeUnits decodes seed as UTF-8 (invalid bytes become U+FFFD) and
// re-encodes it as UTF-16.
func codeUnits(seed string) []uint16 {
	return utf16.Encode([]rune(seed))
}
