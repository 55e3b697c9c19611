// Package security covers the dashboard gate: passcode hashing, the signed
// dashboard token, cookies, CSRF and login rate limiting. The teacher login
// is presentational gating for a classroom tool, not a hardened boundary.
package security

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// HashPassword returns a salted bcrypt hash of the passcode.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// CheckPassword reports whether the passcode matches a bcrypt hash.
func CheckPassword(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// VerifyPasscode checks a submitted passcode against a stored hash in
// either form: bcrypt for current rows, bare SHA-256 hex digests for rows
// seeded by the first deployment.
func VerifyPasscode(passcode, stored string) bool {
	if stored == "" {
		return false
	}
	if strings.HasPrefix(stored, "$2") {
		return CheckPassword(passcode, stored)
	}
	sum := sha256.Sum256([]byte(passcode))
	digest := hex.EncodeToString(sum[:])
	return subtle.ConstantTimeCompare([]byte(digest), []byte(strings.ToLower(stored))) == 1
}
