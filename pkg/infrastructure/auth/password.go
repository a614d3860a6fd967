package auth

import (
	"errors"

	"golang.org/x/crypto/bcrypt"

	"shop/pkg/domain/model"
)

// maxPasswordLen guards against DoS by oversized inputs; bcrypt itself only
// uses the first 72 bytes.
const maxPasswordLen = 1024

var errPasswordTooLong = errors.New("password is too long")

type passwordManager struct {
	cost int
}

func NewPasswordManager() model.PasswordManager {
	return &passwordManager{cost: bcrypt.DefaultCost}
}

func (m *passwordManager) Hash(plainTextPassword string) (string, error) {
	if len(plainTextPassword) > maxPasswordLen {
		return "", errPasswordTooLong
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(plainTextPassword), m.cost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func (m *passwordManager) Verify(plainTextPassword, hashedPassword string) bool {
	if len(plainTextPassword) > maxPasswordLen {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(plainTextPassword)) == nil
}
