// Package errors holds the sentinel errors returned by the darkstar codec.
// Callers match them with errors.Is; every error returned by the codec wraps
// exactly one of these.
package errors

import "errors"

var (
	// Envelope errors 🔐
	ErrDecryptionFailed = errors.New("❌ decryption failed (wrong password or corrupted data)")
	ErrParse            = errors.New("❌ malformed input")

	// Structure errors 🧩
	ErrDataIntegrity     = errors.New("❌ data integrity check failed")
	ErrInvalidReverseKey = errors.New("❌ invalid reverse key")

	// Encoding limits 📏
	ErrWordTooLarge = errors.New("❌ transformed word exceeds frame size")
)
