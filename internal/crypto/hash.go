package crypto

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// PasswordCost - стоимость bcrypt для хранимых паролей
const PasswordCost = bcrypt.DefaultCost

// ErrPasswordMismatch returned when a password does not match the stored hash.
var ErrPasswordMismatch = errors.New("password does not match")

// dummyHash используется для выравнивания времени ответа, когда аккаунт не найден
var dummyHash, _ = bcrypt.GenerateFromPassword([]byte("scholarkeeper-dummy-password"), PasswordCost)

// HashPassword хеширует пароль с помощью bcrypt
// Соль генерируется bcrypt и хранится внутри хеша
func HashPassword(password string) (string, error) {
	if password == "" {
		return "", fmt.Errorf("password cannot be empty")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), PasswordCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}

	return string(hash), nil
}

// VerifyPassword проверяет пароль против сохраненного bcrypt хеша
// Возвращает ErrPasswordMismatch при несовпадении
func VerifyPassword(password, hash string) error {
	if hash == "" {
		return fmt.Errorf("password hash cannot be empty")
	}

	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	if err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return ErrPasswordMismatch
		}
		return fmt.Errorf("failed to verify password: %w", err)
	}

	return nil
}

// CompareDummy burns the same amount of time as VerifyPassword so that
// unknown accounts are indistinguishable from wrong passwords by timing.
func CompareDummy(password string) {
	_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(password))
}
