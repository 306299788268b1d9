// Package csrf implements double-submit anti-forgery tokens.
//
// The reference copy lives in an HttpOnly SameSite=Strict cookie that
// foreign origins can neither read nor send; the submitted copy travels
// with the request in the X-CSRF-Token header or the csrf_token form field.
package csrf

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/iudanet/scholarkeeper/pkg/api"
)

const (
	// CookieName - имя cookie с эталонной копией токена
	CookieName = api.CSRFCookie
	// HeaderName - заголовок с отправленной копией токена
	HeaderName = api.CSRFHeader
	// FormField - поле формы с отправленной копией токена
	FormField = "csrf_token"

	// tokenBytes - 256 бит энтропии
	tokenBytes = 32
)

// ErrValidationFailed is returned when the submitted token does not match
// the reference copy.
var ErrValidationFailed = errors.New("csrf validation failed")

// Issuer mints and validates CSRF tokens and moves them over HTTP.
// It holds no per-token state.
type Issuer struct {
	secure bool
}

// NewIssuer creates a new CSRF issuer. secure controls the Secure cookie flag.
func NewIssuer(secure bool) *Issuer {
	return &Issuer{secure: secure}
}

// Mint generates a new random token, independent of all previous ones.
func (i *Issuer) Mint() (string, error) {
	buf := make([]byte, tokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate csrf token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

// Validate compares the submitted and reference copies in constant time.
// Empty copies never match.
func (i *Issuer) Validate(submitted, reference string) bool {
	if submitted == "" || reference == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(submitted), []byte(reference)) == 1
}

// Check validates the request copies and returns ErrValidationFailed on mismatch.
func (i *Issuer) Check(r *http.Request) error {
	if !i.Validate(i.Submitted(r), i.Reference(r)) {
		return ErrValidationFailed
	}
	return nil
}

// SetCookie stores the reference copy. The cookie carries no Max-Age so it
// does not outlive the browser session; the next mint overwrites it.
func (i *Issuer) SetCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   i.secure,
		SameSite: http.SameSiteStrictMode,
	})
}

// Clear removes the reference copy.
func (i *Issuer) Clear(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   i.secure,
		SameSite: http.SameSiteStrictMode,
	})
}

// Reference returns the reference copy from the request cookie.
func (i *Issuer) Reference(r *http.Request) string {
	c, err := r.Cookie(CookieName)
	if err != nil {
		return ""
	}
	return c.Value
}

// Submitted returns the submitted copy from the header, falling back to
// the form field for url-encoded form posts.
func (i *Issuer) Submitted(r *http.Request) string {
	if v := r.Header.Get(HeaderName); v != "" {
		return v
	}
	// Тело JSON не трогаем, его читает обработчик
	if strings.HasPrefix(r.Header.Get("Content-Type"), "application/x-www-form-urlencoded") {
		return r.PostFormValue(FormField)
	}
	return ""
}
