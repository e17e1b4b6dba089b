package pkg

import dserrors "github.com/Kryklin/darkstar/go/darkstar/pkg/errors"

// Errors returned by Encrypt and Decrypt, for use with errors.Is.
var (
	ErrDecryptionFailed  = dserrors.ErrDecryptionFailed
	ErrParse             = dserrors.ErrParse
	ErrDataIntegrity     = dserrors.ErrDataIntegrity
	ErrInvalidReverseKey = dserrors.ErrInvalidReverseKey
	ErrWordTooLarge      = dserrors.ErrWordTooLarge
)
