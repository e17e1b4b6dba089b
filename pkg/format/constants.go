package format

import "github.com/Kryklin/darkstar/go/darkstar/pkg/transforms"

// Core format constants that never change.
// Changing any of them breaks every artifact already issued.

const (
	// Key derivation
	V2Iterations = 600000
	V1Iterations = 1000

	// Envelope sizes in bytes
	SaltSize = 16
	IVSize   = 16
	KeySize  = 32 // AES-256

	// Hex widths of the salt and IV in a TransitString
	SaltHexSize = SaltSize * 2
	IVHexSize   = IVSize * 2

	// EnvelopeVersion is the "v" value of a V2 envelope
	EnvelopeVersion = int(V2)

	// MaxWordSize is the largest transformed word a frame header can carry
	MaxWordSize = 0xFFFF

	// ChecksumModulus bounds the plan checksum
	ChecksumModulus = transforms.ChecksumModulus
)

const (
	// WordSeparator splits words in a phrase
	WordSeparator = " "

	// LegacySeparator joins transformed words in a V1 blob (U+00A7 '§')
	LegacySeparator = '§'
)
