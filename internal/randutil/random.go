// Package randutil generates unguessable tokens and identifiers.
package randutil

import (
	"crypto/rand"
	"fmt"
	"math/big"

	"github.com/google/uuid"
)

// Alphabet is the symbol set for RandomString.
const Alphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

var alphabetLen = big.NewInt(int64(len(Alphabet)))

// RandomString returns n symbols drawn uniformly from Alphabet using
// crypto/rand. n == 0 yields "".
func RandomString(n int) (string, error) {
	if n < 0 {
		return "", fmt.Errorf("random string length must be non-negative, got %d", n)
	}

	buf := make([]byte, n)
	for i := range buf {
		idx, err := rand.Int(rand.Reader, alphabetLen)
		if err != nil {
			return "", fmt.Errorf("random string: %w", err)
		}
		buf[i] = Alphabet[idx.Int64()]
	}
	return string(buf), nil
}

// SecureID returns a random (version 4) UUID as a hyphenated string.
//
// Format: "550e8400-e29b-41d4-a716-446655440000" (36 characters)
func SecureID() string {
	return uuid.NewString()
}
