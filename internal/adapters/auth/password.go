package auth

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"eventsphere/internal/domain"
)

var errNoCredential = errors.New("user has no password credential")

type bcryptHasher struct {
	cost int
}

// NewBcryptHasher returns a PasswordHasher that uses bcrypt with the given cost.
// Costs outside bcrypt's accepted range fall back to bcrypt.DefaultCost.
func NewBcryptHasher(cost int) domain.PasswordHasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &bcryptHasher{cost: cost}
}

func (h *bcryptHasher) Hash(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}

// Compare never succeeds against an empty hash, so guest accounts cannot log in.
func (h *bcryptHasher) Compare(hash, password string) error {
	if hash == "" {
		return errNoCredential
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
}
