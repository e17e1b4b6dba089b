package utils

import "github.com/awnumar/memguard"

// Wipe zeroes every given buffer in place. Nil and empty buffers are
// ignored, so it is safe to defer on values that may not have been set.
func Wipe(bufs ...[]byte) {
	for _, b := range bufs {
		if len(b) > 0 {
			memguard.WipeBytes(b)
		}
	}
}

// WipeAll zeroes a list of buffers, e.g. per-word blocks.
func WipeAll(bufs [][]byte) {
	Wipe(bufs...)
}
