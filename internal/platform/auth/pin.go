package auth

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

var ErrPinMismatch = errors.New("pin does not match")

// BcryptPins checks withdrawal PINs against their bcrypt hashes.
type BcryptPins struct {
	Cost int
}

func (p BcryptPins) VerifyPin(hash, pin string) error {
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(pin)); err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return ErrPinMismatch
		}
		return fmt.Errorf("failed to compare pin: %w", err)
	}
	return nil
}

// HashPin is used when seeding users.
func (p BcryptPins) HashPin(pin string) (string, error) {
	cost := p.Cost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(pin), cost)
	if err != nil {
		return "", fmt.Errorf("failed to hash pin: %w", err)
	}
	return string(hash), nil
}
