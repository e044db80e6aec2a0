package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"io"
)

// Keyed API credentials are compared by decrypting both sides rather than
// by raw string equality; this package provides the cipher for that.

// KeyFromSecret derives the fixed-size AES-256 key from an operator
// supplied secret.
func KeyFromSecret(secret string) []byte {
	sum := sha256.Sum256([]byte(secret))
	return sum[:]
}

func NewGCM(key []byte) (cipher.AEAD, error) {
	if len(key) != 32 {
		return nil, errors.New("AES-256 requires 32 bytes key")
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}

// Encrypt seals plaintext and prefixes the random nonce to the ciphertext.
func Encrypt(aead cipher.AEAD, plaintext []byte) ([]byte, error) {
	nonce := make([]byte, aead.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, err
	}
	ct := aead.Seal(nil, nonce, plaintext, nil)
	return append(nonce, ct...), nil
}

// Decrypt opens a nonce-prefixed ciphertext.
func Decrypt(aead cipher.AEAD, data []byte) ([]byte, error) {
	ns := aead.NonceSize()
	if len(data) < ns {
		return nil, errors.New("ciphertext too short")
	}
	return aead.Open(nil, data[:ns], data[ns:], nil)
}

// EncryptString seals a string and hex-encodes the result, the form API
// keys travel in over headers.
func EncryptString(aead cipher.AEAD, plaintext string) (string, error) {
	ct, err := Encrypt(aead, []byte(plaintext))
	if err != nil {
		return "", err
	}
	return hex.EncodeToString(ct), nil
}

// DecryptString reverses EncryptString.
func DecryptString(aead cipher.AEAD, encoded string) (string, error) {
	data, err := hex.DecodeString(encoded)
	if err != nil {
		return "", err
	}
	pt, err := Decrypt(aead, data)
	if err != nil {
		return "", err
	}
	return string(pt), nil
}
