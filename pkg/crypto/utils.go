package crypto

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"io"
	"strings"

	"github.com/gtank/cryptopasta"
)

// Tags keep fingerprints of different kinds of things from colliding.
const (
	TagFile        = "tallyman.file"
	TagTransaction = "tallyman.transaction"
)

// NewRandomKey generates a random key suitable for Sign.
func NewRandomKey() (string, error) {
	key := &[33]byte{} // base64 without padding needs a multiple of 3
	_, err := io.ReadFull(rand.Reader, key[:])
	return base64.RawURLEncoding.EncodeToString(key[:]), err
}

// Fingerprint hashes parts (in order, length prefixed) under tag and returns a
// url safe string. Equal inputs always give equal fingerprints.
func Fingerprint(tag string, parts ...[]byte) string {
	buf := []byte{}
	for _, p := range parts {
		buf = append(buf, []byte(fmt.Sprintf("%d:", len(p)))...)
		buf = append(buf, p...)
	}
	return base64.RawURLEncoding.EncodeToString(cryptopasta.Hash(tag, buf))
}

// Sign returns a detached HMAC signature for data.
func Sign(data []byte, key string) (string, error) {
	rawkey, err := toKey(key)
	if err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(cryptopasta.GenerateHMAC(data, rawkey)), nil
}

// Verify checks a signature made by Sign.
func Verify(data []byte, sig, key string) (bool, error) {
	rawkey, err := toKey(key)
	if err != nil {
		return false, err
	}

	raw, err := base64.RawURLEncoding.DecodeString(strings.TrimSpace(sig))
	if err != nil {
		return false, fmt.Errorf("signature is not valid base64: %w", err)
	}

	return cryptopasta.CheckHMAC(data, raw, rawkey), nil
}

// toKey transforms a string of at least len 32 into *[32]byte, as needed by
// cryptopasta library.
func toKey(s string) (*[32]byte, error) {
	if len(s) < 32 {
		return nil, fmt.Errorf("key too short for signing operation, want at least 32 chars")
	}
	data := &[32]byte{}
	copy(data[:], s)
	return data, nil
}
