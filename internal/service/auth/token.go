package auth

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
)

// tokenBytes is the entropy of a session token. 32 random bytes encode to
// a 64-character hex string.
const tokenBytes = 32

// NewSessionToken returns a fresh opaque session token. The token carries
// no embedded claims; it is only meaningful as a lookup key for the
// server-side session record.
func NewSessionToken() (string, error) {
	b := make([]byte, tokenBytes)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to read random bytes: %w", err)
	}
	return hex.EncodeToString(b), nil
}
