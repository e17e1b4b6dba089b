// Package pkg is the convenience surface of the darkstar library. Most
// callers only need Encrypt and Decrypt; pkg/codec offers full control.
package pkg

import (
	"github.com/hashicorp/go-hclog"

	"github.com/Kryklin/darkstar/go/darkstar/pkg/codec"
	"github.com/Kryklin/darkstar/go/darkstar/pkg/logging"
)

// Result is the encrypted artifact together with its reverse key.
type Result = codec.Result

func defaultLogger() hclog.Logger {
	return logging.NewLogger("darkstar", logging.GetLogLevel(), nil)
}

// Encrypt encrypts phrase under password as a V2 artifact.
func Encrypt(phrase, password string) (*Result, error) {
	return EncryptWithLogger(phrase, password, defaultLogger())
}

// EncryptWithLogger is Encrypt with a caller supplied logger.
func EncryptWithLogger(phrase, password string, logger hclog.Logger) (*Result, error) {
	return codec.New(codec.WithLogger(logger)).Encrypt(phrase, password)
}

// Decrypt recovers a phrase from a V2 or V1 artifact.
func Decrypt(artifact, reverseKey, password string) (string, error) {
	return DecryptWithLogger(artifact, reverseKey, password, defaultLogger())
}

// DecryptWithLogger is Decrypt with a caller supplied logger.
func DecryptWithLogger(artifact, reverseKey, password string, logger hclog.Logger) (string, error) {
	return codec.New(codec.WithLogger(logger)).Decrypt(artifact, reverseKey, password)
}
