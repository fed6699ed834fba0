package auth

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"iftarmatch/internal/domain"
)

const bcryptCost = 10

type bcryptCodeHasher struct {
	cost int
}

// NewBcryptCodeHasher returns a CodeHasher that stores login codes as bcrypt
// hashes, so a leaked table does not leak usable codes.
func NewBcryptCodeHasher() domain.CodeHasher {
	return &bcryptCodeHasher{cost: bcryptCost}
}

func (h *bcryptCodeHasher) Hash(code string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(code), h.cost)
	if err != nil {
		return "", fmt.Errorf("failed to hash code: %w", err)
	}
	return string(hash), nil
}

func (h *bcryptCodeHasher) Compare(hash, code string) error {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(code))
}
