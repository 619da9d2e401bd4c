package auth

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

// PasswordCost — фиксированный cost bcrypt (как saltRounds=10 в старой версии).
const PasswordCost = 10

// MaxPasswordBytes — bcrypt учитывает только первые 72 байта пароля.
const MaxPasswordBytes = 72

// Hasher — односторонний солёный хэш паролей.
type Hasher interface {
	Hash(password string) (string, error)
	Compare(hash, password string) (bool, error)
}

type BcryptHasher struct {
	Cost int
}

func NewBcryptHasher() *BcryptHasher { return &BcryptHasher{Cost: PasswordCost} }

// Hash обрезает пароль до MaxPasswordBytes: Compare сверяет так же,
// поэтому длинный пароль проходит и регистрацию, и вход.
func (h *BcryptHasher) Hash(password string) (string, error) {
	pw := []byte(password)
	if len(pw) > MaxPasswordBytes {
		pw = pw[:MaxPasswordBytes]
	}
	b, err := bcrypt.GenerateFromPassword(pw, h.Cost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// Compare: (false, nil) — пароль не подошёл; ошибка — битый хэш.
func (h *BcryptHasher) Compare(hash, password string) (bool, error) {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	if err == nil {
		return true, nil
	}
	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return false, nil
	}
	return false, err
}
