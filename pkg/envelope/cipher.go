// Package envelope seals a blob with a password and tags the result with
// its format version.
//
// The sealed form, a TransitString, is hex(salt) ++ hex(iv) ++
// base64(ciphertext) where ciphertext is AES-256-CBC over the PKCS7 padded
// blob and the key is PBKDF2-HMAC-SHA256(password, salt).
package envelope

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"io"

	"golang.org/x/crypto/pbkdf2"

	dserrors "github.com/Kryklin/darkstar/go/darkstar/pkg/errors"
	"github.com/Kryklin/darkstar/go/darkstar/pkg/format"
	"github.com/Kryklin/darkstar/go/darkstar/pkg/utils"
)

// Cipher seals and opens TransitStrings with a fixed iteration count.
type Cipher struct {
	Iterations int

	// Rand supplies salts and IVs. Nil means crypto/rand.
	Rand io.Reader
}

// NewCipher returns a Cipher for the given PBKDF2 iteration count.
func NewCipher(iterations int) *Cipher {
	return &Cipher{Iterations: iterations, Rand: rand.Reader}
}

func (c *Cipher) random() io.Reader {
	if c.Rand == nil {
		return rand.Reader
	}
	return c.Rand
}

func (c *Cipher) deriveKey(password, salt []byte) []byte {
	return pbkdf2.Key(password, salt, c.Iterations, format.KeySize, sha256.New)
}

// Seal encrypts plaintext under password with a fresh salt and IV.
func (c *Cipher) Seal(plaintext, password []byte) (string, error) {
	salt := make([]byte, format.SaltSize)
	iv := make([]byte, format.IVSize)
	if _, err := io.ReadFull(c.random(), salt); err != nil {
		return "", fmt.Errorf("reading salt: %w", err)
	}
	if _, err := io.ReadFull(c.random(), iv); err != nil {
		return "", fmt.Errorf("reading iv: %w", err)
	}

	key := c.deriveKey(password, salt)
	defer utils.Wipe(key)

	block, err := aes.NewCipher(key)
	if err != nil {
		return "", fmt.Errorf("creating cipher: %w", err)
	}

	padded := pad(plaintext, aes.BlockSize)
	defer utils.Wipe(padded)

	ciphertext := make([]byte, len(padded))
	cipher.NewCBCEncrypter(block, iv).CryptBlocks(ciphertext, padded)

	return hex.EncodeToString(salt) + hex.EncodeToString(iv) + base64.StdEncoding.EncodeToString(ciphertext), nil
}

// Open decrypts a TransitString. Structural problems (too short, bad hex,
// bad Base64) fail with ErrParse; anything that looks like a wrong password
// fails with ErrDecryptionFailed.
func (c *Cipher) Open(transit string, password []byte) ([]byte, error) {
	if len(transit) < format.SaltHexSize+format.IVHexSize {
		return nil, fmt.Errorf("%w: transit string is %d characters", dserrors.ErrParse, len(transit))
	}

	salt, err := hex.DecodeString(transit[:format.SaltHexSize])
	if err != nil {
		return nil, fmt.Errorf("%w: salt is not hex", dserrors.ErrParse)
	}
	iv, err := hex.DecodeString(transit[format.SaltHexSize : format.SaltHexSize+format.IVHexSize])
	if err != nil {
		return nil, fmt.Errorf("%w: iv is not hex", dserrors.ErrParse)
	}
	ciphertext, err := base64.StdEncoding.DecodeString(transit[format.SaltHexSize+format.IVHexSize:])
	if err != nil {
		return nil, fmt.Errorf("%w: ciphertext is not base64", dserrors.ErrParse)
	}
	if len(ciphertext) == 0 || len(ciphertext)%aes.BlockSize != 0 {
		return nil, fmt.Errorf("%w: ciphertext length %d", dserrors.ErrDecryptionFailed, len(ciphertext))
	}

	key := c.deriveKey(password, salt)
	defer utils.Wipe(key)

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("creating cipher: %w", err)
	}

	plaintext := make([]byte, len(ciphertext))
	cipher.NewCBCDecrypter(block, iv).CryptBlocks(plaintext, ciphertext)

	unpadded, err := unpad(plaintext, aes.BlockSize)
	if err != nil {
		utils.Wipe(plaintext)
		return nil, err
	}
	return unpadded, nil
}

func pad(data []byte, blockSize int) []byte {
	n := blockSize - len(data)%blockSize
	out := make([]byte, len(data)+n)
	copy(out, data)
	for i := len(data); i < len(out); i++ {
		out[i] = byte(n)
	}
	return out
}

func unpad(data []byte, blockSize int) ([]byte, error) {
	n := int(data[len(data)-1])
	if n == 0 || n > blockSize || n > len(data) {
		return nil, fmt.Errorf("%w: bad padding", dserrors.ErrDecryptionFailed)
	}
	for _, b := range data[len(data)-n:] {
		if int(b) != n {
			return nil, fmt.Errorf("%w: bad padding", dserrors.ErrDecryptionFailed)
		}
	}
	return data[:len(data)-n], nil
}
