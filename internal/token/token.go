// Package token generates per-session access tokens. Tokens gate attendance
// marking and must be unguessable, so they come from crypto/rand rather than
// a seeded PRNG.
package token

import (
	"crypto/rand"
	"fmt"
)

// SessionTokenLength is the length of generated session tokens. The lower
// bound for resistance against online guessing is 20 characters; we issue 24.
const SessionTokenLength = 24

const alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"

// New returns a random alphanumeric token of n characters.
func New(n int) (string, error) {
	if n < 1 {
		return "", fmt.Errorf("token length must be positive, got %d", n)
	}
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("read random bytes: %w", err)
	}
	for i, b := range buf {
		buf[i] = alphabet[int(b)%len(alphabet)]
	}
	return string(buf), nil
}
