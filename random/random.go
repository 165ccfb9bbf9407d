// Package random generates alphanumeric identifiers.
package random

import (
	crand "crypto/rand"
	"fmt"
	mrand "math/rand"
)

const alphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz"

// Bytes at or above this bound are rejected so every symbol of the alphabet
// stays equally likely.
const unbiased = 256 - 256%len(alphabet)

// String is fast and predictable. Use Token for anything that must not be
// guessed.
func String(n int) string {
	b := make([]byte, n)
	for i := range b {
		b[i] = alphabet[mrand.Intn(len(alphabet))]
	}
	return string(b)
}

// Token reads from crypto/rand.
func Token(n int) (string, error) {
	out := make([]byte, 0, n)
	buf := make([]byte, n+n/2)

	for len(out) < n {
		if _, err := crand.Read(buf); err != nil {
			return "", fmt.Errorf("reading random bytes: %w", err)
		}
		for _, c := range buf {
			if int(c) >= unbiased {
				continue
			}
			out = append(out, alphabet[int(c)%len(alphabet)])
			if len(out) == n {
				break
			}
		}
	}

	return string(out), nil
}
