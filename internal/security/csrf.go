package security

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
)

// CSRF mints and checks tokens for the dashboard's mutating endpoints.
// A token is the HMAC-SHA256 of the dashboard session id under a server
// secret, so verification needs no stored state.
type CSRF struct {
	secret []byte
}

// NewCSRF builds a token minter over the server secret.
func NewCSRF(secret string) *CSRF {
	return &CSRF{secret: []byte(secret)}
}

// Token returns the CSRF token for a dashboard session id.
func (c *CSRF) Token(sessionID string) (string, error) {
	if sessionID == "" {
		return "", errors.New("session id is required")
	}
	mac := hmac.New(sha256.New, c.secret)
	mac.Write([]byte(sessionID))
	return hex.EncodeToString(mac.Sum(nil)), nil
}

// Valid reports whether token belongs to the session id.
func (c *CSRF) Valid(sessionID, token string) bool {
	if sessionID == "" || token == "" {
		return false
	}
	expected, err := c.Token(sessionID)
	if err != nil {
		return false
	}
	return hmac.Equal([]byte(expected), []byte(token))
}
