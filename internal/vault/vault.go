// Package vault encrypts short secrets, such as account passwords, with the
// key kept in the settings file.
//
// Ciphertexts are AES-256-CBC with PKCS#7 padding, rendered as
// hex(iv) + ":" + hex(ciphertext). The AES key is SHA-256 of the secret key
// string, so values written by earlier versions of the app stay readable.
package vault

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"strings"

	"github.com/go-faster/errors"
	"go.uber.org/zap"
)

const ivLength = aes.BlockSize

var ErrInvalidCiphertext = errors.New("invalid ciphertext")

type Vault struct {
	block cipher.Block
}

// New derives the vault key from secretKey. A nil key is treated as the
// empty string; the caller is warned through logger.
func New(secretKey *string, logger *zap.Logger) (*Vault, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	secret := ""
	if secretKey == nil {
		logger.Warn("[Vault] Secret key is not set")
	} else {
		secret = *secretKey
	}

	key := sha256.Sum256([]byte(secret))
	block, err := aes.NewCipher(key[:])
	if err != nil {
		return nil, errors.Wrap(err, "create aes cipher")
	}

	return &Vault{block: block}, nil
}

func (v *Vault) Encrypt(plaintext string) (string, error) {
	iv := make([]byte, ivLength)
	if _, err := rand.Read(iv); err != nil {
		return "", errors.Wrap(err, "generate iv")
	}

	padded := pad([]byte(plaintext))
	ciphertext := make([]byte, len(padded))
	cipher.NewCBCEncrypter(v.block, iv).CryptBlocks(ciphertext, padded)

	return hex.EncodeToString(iv) + ":" + hex.EncodeToString(ciphertext), nil
}

func (v *Vault) Decrypt(text string) (string, error) {
	parts := strings.Split(text, ":")
	if len(parts) != 2 {
		return "", errors.Wrap(ErrInvalidCiphertext, "expected iv:ciphertext")
	}

	iv, err := hex.DecodeString(parts[0])
	if err != nil {
		return "", errors.Wrap(ErrInvalidCiphertext, "decode iv")
	}
	if len(iv) != ivLength {
		return "", errors.Wrapf(ErrInvalidCiphertext, "iv is %d bytes, want %d", len(iv), ivLength)
	}

	ciphertext, err := hex.DecodeString(parts[1])
	if err != nil {
		return "", errors.Wrap(ErrInvalidCiphertext, "decode ciphertext")
	}
	if len(ciphertext) == 0 || len(ciphertext)%aes.BlockSize != 0 {
		return "", errors.Wrap(ErrInvalidCiphertext, "ciphertext is not a whole number of blocks")
	}

	plaintext := make([]byte, len(ciphertext))
	cipher.NewCBCDecrypter(v.block, iv).CryptBlocks(plaintext, ciphertext)

	unpadded, err := unpad(plaintext)
	if err != nil {
		return "", err
	}

	return string(unpadded), nil
}

func pad(b []byte) []byte {
	n := aes.BlockSize - len(b)%aes.BlockSize
	return append(b, bytes.Repeat([]byte{byte(n)}, n)...)
}

func unpad(b []byte) ([]byte, error) {
	n := int(b[len(b)-1])
	if n == 0 || n > aes.BlockSize || n > len(b) {
		return nil, errors.Wrap(ErrInvalidCiphertext, "bad padding")
	}
	for _, c := range b[len(b)-n:] {
		if int(c) != n {
			return nil, errors.Wrap(ErrInvalidCiphertext, "bad padding")
		}
	}

	return b[:len(b)-n], nil
}
