package fs

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/aretw0/jsonvault/pkg/core"
)

// KeySize is the AES-256 key length in bytes.
const KeySize = 32

// ParseKey decodes a 64-character hex key.
func ParseKey(hexKey string) ([]byte, error) {
	key, err := hex.DecodeString(hexKey)
	if err != nil {
		return nil, fmt.Errorf("%w: key is not valid hex: %v", core.ErrInvalidConfig, err)
	}
	if len(key) != KeySize {
		return nil, fmt.Errorf("%w: key must be %d bytes (%d hex chars), got %d bytes",
			core.ErrInvalidConfig, KeySize, KeySize*2, len(key))
	}
	return key, nil
}

// GenerateKey returns a random key encoded as 64 hex characters.
func GenerateKey() (string, error) {
	key := make([]byte, KeySize)
	if _, err := rand.Read(key); err != nil {
		return "", err
	}
	return hex.EncodeToString(key), nil
}

// encryptCBC seals plaintext with AES-256-CBC and PKCS7 padding.
// The output is "<ivHex>:<cipherHex>".
func encryptCBC(key, plaintext []byte) ([]byte, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}

	iv := make([]byte, aes.BlockSize)
	if _, err := rand.Read(iv); err != nil {
		return nil, err
	}

	padded := pkcs7Pad(plaintext, aes.BlockSize)
	ct := make([]byte, len(padded))
	cipher.NewCBCEncrypter(block, iv).CryptBlocks(ct, padded)

	out := make([]byte, 0, hex.EncodedLen(len(iv))+1+hex.EncodedLen(len(ct)))
	out = hex.AppendEncode(out, iv)
	out = append(out, ':')
	out = hex.AppendEncode(out, ct)
	return out, nil
}

// decryptCBC opens an "<ivHex>:<cipherHex>" payload.
func decryptCBC(key, payload []byte) ([]byte, error) {
	ivHex, ctHex, found := strings.Cut(strings.TrimSpace(string(payload)), ":")
	if !found {
		return nil, fmt.Errorf("%w: missing iv separator", core.ErrDecrypt)
	}

	iv, err := hex.DecodeString(ivHex)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid iv: %v", core.ErrDecrypt, err)
	}
	if len(iv) != aes.BlockSize {
		return nil, fmt.Errorf("%w: iv must be %d bytes, got %d", core.ErrDecrypt, aes.BlockSize, len(iv))
	}

	ct, err := hex.DecodeString(ctHex)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid ciphertext: %v", core.ErrDecrypt, err)
	}
	if len(ct) == 0 || len(ct)%aes.BlockSize != 0 {
		return nil, fmt.Errorf("%w: truncated ciphertext", core.ErrDecrypt)
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", core.ErrDecrypt, err)
	}

	pt := make([]byte, len(ct))
	cipher.NewCBCDecrypter(block, iv).CryptBlocks(pt, ct)

	pt, err = pkcs7Unpad(pt, aes.BlockSize)
	if err != nil {
		return nil, fmt.Errorf("%w: wrong key or corrupted data", core.ErrDecrypt)
	}
	if !utf8.Valid(pt) {
		return nil, fmt.Errorf("%w: wrong key or corrupted data", core.ErrDecrypt)
	}
	return pt, nil
}

func pkcs7Pad(b []byte, blockSize int) []byte {
	n := blockSize - len(b)%blockSize
	return append(bytes.Clone(b), bytes.Repeat([]byte{byte(n)}, n)...)
}

func pkcs7Unpad(b []byte, blockSize int) ([]byte, error) {
	if len(b) == 0 || len(b)%blockSize != 0 {
		return nil, fmt.Errorf("invalid padded length %d", len(b))
	}
	n := int(b[len(b)-1])
	if n == 0 || n > blockSize {
		return nil, fmt.Errorf("invalid padding")
	}
	for _, c := range b[len(b)-n:] {
		if int(c) != n {
			return nil, fmt.Errorf("invalid padding")
		}
	}
	return b[:len(b)-n], nil
}
