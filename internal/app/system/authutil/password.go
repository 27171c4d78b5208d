// Package authutil hashes and checks back-office passwords.
package authutil

import (
	"errors"
	"strings"
	"sync"

	"golang.org/x/crypto/bcrypt"
)

const (
	MinPasswordLength = 10
	MaxPasswordLength = 72 // bcrypt ignores anything longer
	BcryptCost        = 12
)

var (
	ErrPasswordTooShort = errors.New("La contraseña debe tener al menos 10 caracteres.")
	ErrPasswordTooLong  = errors.New("La contraseña debe tener como máximo 72 caracteres.")
	ErrPasswordCommon   = errors.New("La contraseña es demasiado común.")
)

var commonPasswords = map[string]bool{
	"1234567890":    true,
	"0123456789":    true,
	"password123":   true,
	"password1234":  true,
	"qwertyuiop":    true,
	"contraseña":    true,
	"contrasena1":   true,
	"administrador": true,
	"admin123456":   true,
	"iloveyou123":   true,
	"letmein1234":   true,
	"welcome1234":   true,
	"bienvenido1":   true,
}

// ValidatePassword checks length and rejects well-known passwords.
func ValidatePassword(password string) error {
	if len(password) < MinPasswordLength {
		return ErrPasswordTooShort
	}
	if len(password) > MaxPasswordLength {
		return ErrPasswordTooLong
	}
	if commonPasswords[strings.ToLower(password)] {
		return ErrPasswordCommon
	}
	return nil
}

// HashPassword hashes a password using bcrypt.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), BcryptCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// CheckPassword reports whether password matches the bcrypt hash.
func CheckPassword(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

var (
	dummyHash     []byte
	dummyHashOnce sync.Once
)

// BurnCompare spends the same time as a real CheckPassword. Login calls it
// when no profile matched so unknown emails are not faster to reject.
func BurnCompare(password string) {
	dummyHashOnce.Do(func() {
		dummyHash, _ = bcrypt.GenerateFromPassword([]byte("not-a-real-password"), BcryptCost)
	})
	_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(password))
}
