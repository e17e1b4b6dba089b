package utils

import (
	"bytes"
	"testing"
)

func TestXORRoundTrip(t *testing.T) {
	data := []byte("hello world")
	key := []byte("MySecre!Password12366")

	encoded := XOREncode(data, key)
	if bytes.Equal(encoded, data) {
		t.Fatal("XOREncode left data unchanged")
	}
	if got := XORDecode(encoded, key); !bytes.Equal(got, data) {
		t.Fatalf("XORDecode = %q, want %q", got, data)
	}
}

func TestXOREmptyKey(t *testing.T) {
	data := []byte{1, 2, 3}
	out := XOREncode(data, nil)
	if !bytes.Equal(out, data) {
		t.Fatalf("XOREncode with empty key = %v, want %v", out, data)
	}
	out[0] = 9
	if data[0] != 1 {
		t.Fatal("XOREncode returned an alias of its input")
	}
}

func TestWipe(t *testing.T) {
	a := []byte("secret")
	b := []byte("another secret")
	Wipe(a, nil, b, []byte{})

	for _, buf := range [][]byte{a, b} {
		for i, v := range buf {
			if v != 0 {
				t.Fatalf("byte %d not wiped: %v", i, buf)
			}
		}
	}
}
