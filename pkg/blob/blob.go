// Package blob frames transformed words into the single byte string that
// the envelope encrypts.
//
// V2 blobs are a concatenation of frames, each a big-endian uint16 length
// followed by that many bytes. V1 blobs render every byte as the code point
// of the same value and join words with '§'.
package blob

import (
	"encoding/binary"
	"fmt"
	"strings"
	"unicode/utf8"

	dserrors "github.com/Kryklin/darkstar/go/darkstar/pkg/errors"
	"github.com/Kryklin/darkstar/go/darkstar/pkg/format"
)

const headerSize = 2

// Encode frames words. A word longer than format.MaxWordSize cannot be
// represented and fails with ErrWordTooLarge.
func Encode(words [][]byte) ([]byte, error) {
	size := 0
	for i, w := range words {
		if len(w) > format.MaxWordSize {
			return nil, fmt.Errorf("%w: word %d is %d bytes, limit %d", dserrors.ErrWordTooLarge, i, len(w), format.MaxWordSize)
		}
		size += headerSize + len(w)
	}

	out := make([]byte, 0, size)
	for _, w := range words {
		out = binary.BigEndian.AppendUint16(out, uint16(len(w)))
		out = append(out, w...)
	}
	return out, nil
}

// Decode splits data into exactly count frames. Truncated frames, trailing
// bytes and a frame count other than count all fail with ErrDataIntegrity.
// The returned words are fresh copies.
func Decode(data []byte, count int) ([][]byte, error) {
	words := make([][]byte, 0, count)
	off := 0
	for off < len(data) {
		if len(data)-off < headerSize {
			return nil, fmt.Errorf("%w: truncated frame header at offset %d", dserrors.ErrDataIntegrity, off)
		}
		n := int(binary.BigEndian.Uint16(data[off:]))
		off += headerSize
		if len(data)-off < n {
			return nil, fmt.Errorf("%w: frame at offset %d wants %d bytes, %d left", dserrors.ErrDataIntegrity, off-headerSize, n, len(data)-off)
		}
		if len(words) == count {
			return nil, fmt.Errorf("%w: more than %d frames", dserrors.ErrDataIntegrity, count)
		}
		w := make([]byte, n)
		copy(w, data[off:off+n])
		words = append(words, w)
		off += n
	}

	if len(words) != count {
		return nil, fmt.Errorf("%w: found %d frames, reverse key has %d", dserrors.ErrDataIntegrity, len(words), count)
	}
	return words, nil
}

// JoinLegacy renders each word byte-per-code-point and joins the words
// with the legacy separator.
func JoinLegacy(words [][]byte) string {
	var sb strings.Builder
	for i, w := range words {
		if i > 0 {
			sb.WriteRune(format.LegacySeparator)
		}
		for _, b := range w {
			sb.WriteRune(rune(b))
		}
	}
	return sb.String()
}

// SplitLegacy reverses JoinLegacy. The text must split into exactly count
// words and every code point must fit in a byte.
func SplitLegacy(text string, count int) ([][]byte, error) {
	if !utf8.ValidString(text) {
		return nil, fmt.Errorf("%w: legacy blob is not valid UTF-8", dserrors.ErrDataIntegrity)
	}

	parts := strings.Split(text, string(format.LegacySeparator))
	if len(parts) != count {
		return nil, fmt.Errorf("%w: found %d words, reverse key has %d", dserrors.ErrDataIntegrity, len(parts), count)
	}

	words := make([][]byte, len(parts))
	for i, part := range parts {
		w := make([]byte, 0, len(part))
		for _, r := range part {
			if r > 0xFF {
				return nil, fmt.Errorf("%w: code point U+%04X in word %d", dserrors.ErrDataIntegrity, r, i)
			}
			w = append(w, byte(r))
		}
		words[i] = w
	}
	return words, nil
}
