package utils

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/chatloop/chat-backend/internal/apperror"
	"golang.org/x/crypto/pbkdf2"
)

const (
	saltLength = 16
	keyLength  = 32
)

// PasswordHasher derives salted password hashes stored as the
// composite "hash:salt" (both hex encoded).
type PasswordHasher struct {
	iterations int
}

// NewPasswordHasher creates a hasher with the given PBKDF2 iteration count
func NewPasswordHasher(iterations int) *PasswordHasher {
	return &PasswordHasher{iterations: iterations}
}

// GenerateSalt produces a fresh random salt
func (p *PasswordHasher) GenerateSalt() (string, error) {
	salt := make([]byte, saltLength)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("failed to generate salt: %w", err)
	}
	return hex.EncodeToString(salt), nil
}

// Hash derives the stored composite for a plaintext password. When salt
// is empty a fresh one is generated.
func (p *PasswordHasher) Hash(password, salt string) (string, error) {
	if salt == "" {
		var err error
		salt, err = p.GenerateSalt()
		if err != nil {
			return "", err
		}
	}

	rawSalt, err := hex.DecodeString(salt)
	if err != nil {
		return "", fmt.Errorf("invalid salt encoding: %w", err)
	}

	derived := pbkdf2.Key([]byte(password), rawSalt, p.iterations, keyLength, sha256.New)
	return hex.EncodeToString(derived) + ":" + salt, nil
}

// Validate re-derives the hash from the entered password using the salt
// extracted from the stored composite and compares in constant time.
// A stored value that does not split into hash and salt is a storage
// invariant violation and surfaces as an internal error.
func (p *PasswordHasher) Validate(password, stored string) (bool, error) {
	parts := strings.SplitN(stored, ":", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return false, apperror.Internal("")
	}

	derived, err := p.Hash(password, parts[1])
	if err != nil {
		return false, apperror.Internal("")
	}

	return hmac.Equal([]byte(derived), []byte(stored)), nil
}
