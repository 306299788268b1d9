package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/iudanet/scholarkeeper/internal/server/metrics"
)

// MetricsMiddleware записывает счетчик и длительность запросов маршрута.
// route - шаблон маршрута, а не фактический путь, чтобы не плодить метки
func MetricsMiddleware(route string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			wrapped := &responseWriter{
				ResponseWriter: w,
				statusCode:     http.StatusOK,
			}

			next.ServeHTTP(wrapped, r)

			metrics.RecordHTTP(r.Method, route, strconv.Itoa(wrapped.statusCode), time.Since(start).Seconds())
		})
	}
}
