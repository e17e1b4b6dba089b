package transforms

import (
	"fmt"
	"strconv"

	dserrors "github.com/Kryklin/darkstar/go/darkstar/pkg/errors"
)

const comma = ','

// reverseTransform reverses byte order. Self-inverse.
type reverseTransform struct{ base }

func (reverseTransform) Apply(input []byte, _ Seed) ([]byte, error) {
	output := make([]byte, len(input))
	for i, b := range input {
		output[len(input)-1-i] = b
	}
	return output, nil
}

func (t reverseTransform) Reverse(input []byte, seed Seed) ([]byte, error) {
	return t.Apply(input, seed)
}

// atbashTransform mirrors ASCII letters within their case. Self-inverse.
type atbashTransform struct{ base }

func (atbashTransform) Apply(input []byte, _ Seed) ([]byte, error) {
	output := make([]byte, len(input))
	for i, b := range input {
		switch {
		case b >= 'A' && b <= 'Z':
			output[i] = 'Z' - (b - 'A')
		case b >= 'a' && b <= 'z':
			output[i] = 'z' - (b - 'a')
		default:
			output[i] = b
		}
	}
	return output, nil
}

func (t atbashTransform) Reverse(input []byte, seed Seed) ([]byte, error) {
	return t.Apply(input, seed)
}

// rot13Transform rotates ASCII letters by 13. Self-inverse.
type rot13Transform struct{ base }

func (rot13Transform) Apply(input []byte, _ Seed) ([]byte, error) {
	output := make([]byte, len(input))
	for i, b := range input {
		switch {
		case b >= 'A' && b <= 'Z':
			output[i] = (b-'A'+13)%26 + 'A'
		case b >= 'a' && b <= 'z':
			output[i] = (b-'a'+13)%26 + 'a'
		default:
			output[i] = b
		}
	}
	return output, nil
}

func (t rot13Transform) Reverse(input []byte, seed Seed) ([]byte, error) {
	return t.Apply(input, seed)
}

// swapTransform swaps each adjacent byte pair; an odd trailing byte stays
// in place. Self-inverse.
type swapTransform struct{ base }

func (swapTransform) Apply(input []byte, _ Seed) ([]byte, error) {
	output := make([]byte, len(input))
	copy(output, input)
	for i := 0; i < len(output)-1; i += 2 {
		output[i], output[i+1] = output[i+1], output[i]
	}
	return output, nil
}

func (t swapTransform) Reverse(input []byte, seed Seed) ([]byte, error) {
	return t.Apply(input, seed)
}

// decimalTransform renders each byte as comma-separated decimal digits.
type decimalTransform struct{ base }

func (decimalTransform) Apply(input []byte, _ Seed) ([]byte, error) {
	return formatNumbers(len(input), 10, func(i int) int { return int(input[i]) }), nil
}

func (decimalTransform) Reverse(input []byte, _ Seed) ([]byte, error) {
	return parseBytes(input, 10)
}

// binaryTransform renders each byte as comma-separated base-2 digits.
type binaryTransform struct{ base }

func (binaryTransform) Apply(input []byte, _ Seed) ([]byte, error) {
	return formatNumbers(len(input), 2, func(i int) int { return int(input[i]) }), nil
}

func (binaryTransform) Reverse(input []byte, _ Seed) ([]byte, error) {
	return parseBytes(input, 2)
}

// formatNumbers joins n values in the given base with commas.
func formatNumbers(n, base int, value func(i int) int) []byte {
	output := make([]byte, 0, n*4)
	for i := 0; i < n; i++ {
		if i > 0 {
			output = append(output, comma)
		}
		output = strconv.AppendInt(output, int64(value(i)), base)
	}
	return output
}

// splitNumbers parses a comma-separated list of non-negative integers of at
// most bitSize bits. Empty input yields no values; an empty token is an error.
func splitNumbers(input []byte, base, bitSize int) ([]uint64, error) {
	if len(input) == 0 {
		return nil, nil
	}
	var values []uint64
	start := 0
	for i := 0; i <= len(input); i++ {
		if i < len(input) && input[i] != comma {
			continue
		}
		token := input[start:i]
		if len(token) == 0 {
			return nil, fmt.Errorf("%w: empty numeric token at offset %d", dserrors.ErrDataIntegrity, start)
		}
		v, err := strconv.ParseUint(string(token), base, bitSize)
		if err != nil {
			return nil, fmt.Errorf("%w: bad numeric token at offset %d", dserrors.ErrDataIntegrity, start)
		}
		values = append(values, v)
		start = i + 1
	}
	return values, nil
}

func parseBytes(input []byte, base int) ([]byte, error) {
	values, err := splitNumbers(input, base, 8)
	if err != nil {
		return nil, err
	}
	output := make([]byte, len(values))
	for i, v := range values {
		output[i] = byte(v)
	}
	return output, nil
}
