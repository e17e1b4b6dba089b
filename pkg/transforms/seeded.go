package transforms

import (
	"fmt"

	dserrors "github.com/Kryklin/darkstar/go/darkstar/pkg/errors"
	"github.com/Kryklin/darkstar/go/darkstar/pkg/prng"
	"github.com/Kryklin/darkstar/go/darkstar/pkg/utils"
)

// fillerAlphabet supplies the decoy bytes inserted by the interleave
// transform.
const fillerAlphabet = "abcdefghijklmnopqrstuvwxyz0123456789"

// shuffleTransform permutes bytes with a seeded Fisher-Yates shuffle.
type shuffleTransform struct{ base }

func (shuffleTransform) Apply(input []byte, seed Seed) ([]byte, error) {
	output := make([]byte, len(input))
	copy(output, input)
	prng.Shuffle(len(output), seed.generator(), func(i, j int) {
		output[i], output[j] = output[j], output[i]
	})
	return output, nil
}

func (shuffleTransform) Reverse(input []byte, seed Seed) ([]byte, error) {
	indices := make([]int, len(input))
	for i := range indices {
		indices[i] = i
	}
	prng.Shuffle(len(indices), seed.generator(), func(i, j int) {
		indices[i], indices[j] = indices[j], indices[i]
	})
	output := make([]byte, len(input))
	for i, idx := range indices {
		output[idx] = input[i]
	}
	return output, nil
}

// xorTransform XORs with the seed key, cycling. Self-inverse.
type xorTransform struct{ base }

func (xorTransform) Apply(input []byte, seed Seed) ([]byte, error) {
	return utils.XOREncode(input, seed.Key), nil
}

func (xorTransform) Reverse(input []byte, seed Seed) ([]byte, error) {
	return utils.XORDecode(input, seed.Key), nil
}

// interleaveTransform follows every byte with a generator-chosen filler
// byte. The inverse drops the odd positions and never consults the
// generator: the filler carries no information.
type interleaveTransform struct{ base }

func (interleaveTransform) Apply(input []byte, seed Seed) ([]byte, error) {
	g := seed.generator()
	output := make([]byte, len(input)*2)
	for i, b := range input {
		output[i*2] = b
		output[i*2+1] = fillerAlphabet[int(g.Next()*float64(len(fillerAlphabet)))]
	}
	return output, nil
}

func (interleaveTransform) Reverse(input []byte, _ Seed) ([]byte, error) {
	if len(input)%2 != 0 {
		return nil, fmt.Errorf("%w: interleaved block has odd length %d", dserrors.ErrDataIntegrity, len(input))
	}
	output := make([]byte, len(input)/2)
	for i := range output {
		output[i] = input[i*2]
	}
	return output, nil
}

// vigenereTransform adds the cyclic key byte to each byte and writes the
// sums as comma-separated decimal.
type vigenereTransform struct{ base }

func (vigenereTransform) Apply(input []byte, seed Seed) ([]byte, error) {
	return formatNumbers(len(input), 10, func(i int) int {
		return int(input[i]) + int(keyByte(seed.Key, i))
	}), nil
}

func (vigenereTransform) Reverse(input []byte, seed Seed) ([]byte, error) {
	values, err := splitNumbers(input, 10, 16)
	if err != nil {
		return nil, err
	}
	output := make([]byte, len(values))
	for i, v := range values {
		b := int(v) - int(keyByte(seed.Key, i))
		if b < 0 || b > 0xff {
			utils.Wipe(output)
			return nil, fmt.Errorf("%w: vigenere value out of range at index %d", dserrors.ErrDataIntegrity, i)
		}
		output[i] = byte(b)
	}
	return output, nil
}

func keyByte(key []byte, i int) byte {
	if len(key) == 0 {
		return 0
	}
	return key[i%len(key)]
}

// blockReversalTransform splits the input into blocks of one
// generator-chosen size and reverses each block. The size depends only on
// the seed and the input length, so the transform is self-inverse.
type blockReversalTransform struct{ base }

func (blockReversalTransform) Apply(input []byte, seed Seed) ([]byte, error) {
	blockSize := int(seed.generator().Next()*(float64(len(input))/2)) + 2
	output := make([]byte, len(input))
	for start := 0; start < len(input); start += blockSize {
		end := start + blockSize
		if end > len(input) {
			end = len(input)
		}
		for k := start; k < end; k++ {
			output[k] = input[end-1-(k-start)]
		}
	}
	return output, nil
}

func (t blockReversalTransform) Reverse(input []byte, seed Seed) ([]byte, error) {
	return t.Apply(input, seed)
}

// substitutionTransform maps bytes through a seeded permutation of 0..255.
type substitutionTransform struct{ base }

func (substitutionTransform) Apply(input []byte, seed Seed) ([]byte, error) {
	table := substitutionTable(seed)
	defer utils.Wipe(table[:])

	output := make([]byte, len(input))
	for i, b := range input {
		output[i] = table[b]
	}
	return output, nil
}

func (substitutionTransform) Reverse(input []byte, seed Seed) ([]byte, error) {
	table := substitutionTable(seed)
	var inverse [256]byte
	for i, v := range table {
		inverse[v] = byte(i)
	}
	defer utils.Wipe(table[:], inverse[:])

	output := make([]byte, len(input))
	for i, b := range input {
		output[i] = inverse[b]
	}
	return output, nil
}

func substitutionTable(seed Seed) [256]byte {
	var table [256]byte
	for i := range table {
		table[i] = byte(i)
	}
	prng.Shuffle(len(table), seed.generator(), func(i, j int) {
		table[i], table[j] = table[j], table[i]
	})
	return table
}
