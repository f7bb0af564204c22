package auth

import (
	"crypto/sha256"
	"fmt"
	"strings"
	"sync"

	"golang.org/x/crypto/bcrypt"
)

const minPasswordLength = 8

// ValidatePassword checks minimal password requirements.
func ValidatePassword(password string) error {
	if len(password) < minPasswordLength {
		return fmt.Errorf("password must be at least %d characters", minPasswordLength)
	}
	return nil
}

// HashPassword hashes one plaintext password for the config file.
func HashPassword(password string) (string, error) {
	if err := ValidatePassword(password); err != nil {
		return "", err
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

// VerifyPassword verifies plaintext password against a bcrypt hash.
func VerifyPassword(passwordHash, candidate string) bool {
	if strings.TrimSpace(passwordHash) == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(passwordHash), []byte(candidate)) == nil
}

// Verifier checks the UI password on every request. A browser resends
// basic credentials with each request, so accepted passwords are remembered
// by digest to avoid paying for bcrypt every time.
type Verifier struct {
	hash string

	mu       sync.Mutex
	accepted map[[sha256.Size]byte]struct{}
}

// NewVerifier returns nil when hash is empty, meaning no password is set.
func NewVerifier(hash string) *Verifier {
	hash = strings.TrimSpace(hash)
	if hash == "" {
		return nil
	}
	return &Verifier{hash: hash, accepted: map[[sha256.Size]byte]struct{}{}}
}

// Verify reports whether candidate matches the configured password.
func (v *Verifier) Verify(candidate string) bool {
	if v == nil {
		return true
	}
	digest := sha256.Sum256([]byte(candidate))

	v.mu.Lock()
	_, ok := v.accepted[digest]
	v.mu.Unlock()
	if ok {
		return true
	}

	if !VerifyPassword(v.hash, candidate) {
		return false
	}
	v.mu.Lock()
	v.accepted[digest] = struct{}{}
	v.mu.Unlock()
	return true
}
