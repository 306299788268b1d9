package api

// Имена cookie и заголовков, общие для сервера и клиента
const (
	SessionCookie = "session"      // HttpOnly cookie с session credential
	CSRFCookie    = "csrf_token"   // эталонная копия CSRF токена
	CSRFHeader    = "X-CSRF-Token" // отправленная копия CSRF токена
)

// CredentialsRequest представляет запрос на регистрацию или вход
type CredentialsRequest struct {
	UserID   string `json:"userId" validate:"required,min=3,max=32"` // user id (username)
	Password string `json:"password" validate:"required,max=72"`     // пароль в открытом виде, только по TLS
}

// SignupResponse представляет ответ на успешную регистрацию
type SignupResponse struct {
	UserID  string `json:"userId"`  // user id созданного аккаунта
	Message string `json:"message"` // сообщение об успешной регистрации
}

// LoginResponse представляет ответ на успешный вход.
// Сам credential передается только в HttpOnly cookie
type LoginResponse struct {
	UserID    string `json:"userId"`     // user id
	CSRFToken string `json:"csrf_token"` // новый CSRF токен сессии
	ExpiresIn int64  `json:"expires_in"` // время жизни сессии в секундах
}

// MeResponse описывает текущего аутентифицированного пользователя
type MeResponse struct {
	UserID string `json:"userId"`
}

// CSRFResponse содержит свежий CSRF токен для отправки в X-CSRF-Token
type CSRFResponse struct {
	CSRFToken string `json:"csrf_token"`
}

// MessageResponse - простой ответ с сообщением
type MessageResponse struct {
	Message string `json:"message"`
}

// ErrorResponse представляет ответ с ошибкой
type ErrorResponse struct {
	Error   string `json:"error"`             // описание ошибки
	Message string `json:"message,omitempty"` // дополнительное сообщение
}
