package auth

import (
	"crypto/subtle"

	"golang.org/x/crypto/bcrypt"
)

// Secret is the single shared credential accepted by login. Either Hash
// (bcrypt, preferred) or Plain must be set; Hash wins when both are.
type Secret struct {
	Hash  string
	Plain string
}

// Verify reports whether password matches the shared secret.
func (s Secret) Verify(password string) bool {
	if s.Hash != "" {
		return bcrypt.CompareHashAndPassword([]byte(s.Hash), []byte(password)) == nil
	}
	if s.Plain == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(s.Plain), []byte(password)) == 1
}
