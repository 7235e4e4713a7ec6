package auth

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// stateTTL bounds how long a login redirect may take before the callback is
// rejected. Ten minutes is generous for a consent screen.
const stateTTL = 10 * time.Minute

// ErrBadState is returned when a callback carries a state parameter that was
// not signed by this server or has expired.
var ErrBadState = errors.New("invalid state parameter")

// NewState mints a signed HS256 token used as the OAuth state parameter. The
// signature makes forged callbacks detectable without any server-side
// bookkeeping; the nonce keeps every login attempt distinct.
func NewState(secret string) (string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	now := time.Now().UTC()
	claims := jwt.MapClaims{
		"nonce": hex.EncodeToString(buf),
		"exp":   now.Add(stateTTL).Unix(),
		"iat":   now.Unix(),
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString([]byte(secret))
}

// VerifyState checks the signature and expiry of a state token returned by
// the provider callback. Any failure maps to ErrBadState.
func VerifyState(secret, state string) error {
	tok, err := jwt.Parse(state, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrBadState
		}
		return []byte(secret), nil
	})
	if err != nil || !tok.Valid {
		return ErrBadState
	}
	return nil
}
