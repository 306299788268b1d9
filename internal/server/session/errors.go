package session

import "errors"

// Account errors
var (
	// ErrDuplicateAccount indicates that an account with this user id exists
	ErrDuplicateAccount = errors.New("account already exists")

	// ErrInvalidAccount indicates that user id or password fail validation
	ErrInvalidAccount = errors.New("invalid account data")
)

// Authentication errors
var (
	// ErrInvalidCredentials - неизвестный пользователь или неверный пароль
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrMissingCredential - учетные данные сессии отсутствуют
	ErrMissingCredential = errors.New("missing credential")

	// ErrInvalidCredential - подпись не сходится, токен поврежден или отозван
	ErrInvalidCredential = errors.New("invalid credential")

	// ErrExpiredCredential - окно действия токена истекло
	ErrExpiredCredential = errors.New("expired credential")
)
