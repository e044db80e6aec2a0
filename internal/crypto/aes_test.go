package crypto

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

/*
AES helper test cases:
1) encrypt/decrypt round trip
2) string round trip over hex encoding
3) corrupt ciphertext fails to open
4) short ciphertext rejected
5) wrong key size rejected
*/

func TestRoundTrip(t *testing.T) {
	aead, err := NewGCM(KeyFromSecret("s3cret"))
	require.NoError(t, err)

	ct, err := Encrypt(aead, []byte("hello"))
	require.NoError(t, err)

	pt, err := Decrypt(aead, ct)
	require.NoError(t, err)
	assert.Equal(t, []byte("hello"), pt)
}

func TestStringRoundTrip(t *testing.T) {
	aead, err := NewGCM(KeyFromSecret("s3cret"))
	require.NoError(t, err)

	enc, err := EncryptString(aead, "lamdon-api-key-1")
	require.NoError(t, err)
	assert.NotEqual(t, "lamdon-api-key-1", enc)

	dec, err := DecryptString(aead, enc)
	require.NoError(t, err)
	assert.Equal(t, "lamdon-api-key-1", dec)
}

func TestCorruptCiphertext(t *testing.T) {
	aead, err := NewGCM(KeyFromSecret("s3cret"))
	require.NoError(t, err)

	ct, err := Encrypt(aead, []byte("hello"))
	require.NoError(t, err)
	ct[len(ct)-1] ^= 0xff

	_, err = Decrypt(aead, ct)
	assert.Error(t, err)
}

func TestShortCiphertext(t *testing.T) {
	aead, err := NewGCM(KeyFromSecret("s3cret"))
	require.NoError(t, err)

	_, err = Decrypt(aead, []byte{0x01})
	assert.Error(t, err)
}

func TestBadKeySize(t *testing.T) {
	_, err := NewGCM([]byte("too-short"))
	assert.Error(t, err)
}
