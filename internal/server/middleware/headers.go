package middleware

import "net/http"

// SecurityHeaders выставляет защитные заголовки на каждый ответ
func SecurityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("X-Frame-Options", "DENY")
		h.Set("Referrer-Policy", "strict-origin-when-cross-origin")
		h.Set("Content-Security-Policy", "default-src 'none'; frame-ancestors 'none'")
		h.Set("Cross-Origin-Opener-Policy", "same-origin")
		// Ответы API персональные, не кешируем
		h.Set("Cache-Control", "no-store")

		next.ServeHTTP(w, r)
	})
}
