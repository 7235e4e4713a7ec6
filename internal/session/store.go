// Package session implements the server-side session store. A session binds
// an opaque browser cookie token to a local user id with an expiry. The raw
// token only ever travels in the cookie; at rest the store keys records by
// the token's SHA-256 digest, the same way refresh tokens are commonly kept,
// so a leaked store dump cannot be replayed as cookies.
package session

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"time"
)

// CookieName is the name of the browser cookie carrying the session token.
const CookieName = "session_token"

// ErrNotFound is returned by Get when no live session matches the token.
// Missing, expired and malformed tokens are indistinguishable to callers.
var ErrNotFound = errors.New("session not found")

// Store is the session store injected into request handling. Implementations
// must make Delete idempotent: deleting an unknown token succeeds silently.
type Store interface {
	// Create issues a new opaque token bound to userID, valid for ttl.
	Create(ctx context.Context, userID uint64, ttl time.Duration) (string, error)
	// Get resolves a token to its user id, or ErrNotFound.
	Get(ctx context.Context, token string) (uint64, error)
	// Delete destroys the session for token if one exists.
	Delete(ctx context.Context, token string) error
}

// NewToken returns a cryptographically random 64-character hex token.
func NewToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}

// hashToken returns the SHA-256 hex digest used as the storage key.
func hashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
