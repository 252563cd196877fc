package middleware

import (
	"log/slog"
	"net/http"
	"time"

	pkghttp "github.com/BradenHooton/sentinel/pkg/http"
	"github.com/BradenHooton/sentinel/pkg/logger"
)

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// RequestLogger logs one line per request. Query strings carrying
// credentials or tokens are redacted wholesale rather than logged.
func RequestLogger(log *slog.Logger, ipConfig *pkghttp.IPConfig) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

			next.ServeHTTP(rec, r)

			query := r.URL.RawQuery
			if logger.ShouldRedactQuery(query) {
				query = "[REDACTED]"
			}

			log.Info("http request",
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.String("query", query),
				slog.Int("status", rec.status),
				slog.String("ip_address", pkghttp.ExtractClientIP(r, ipConfig)),
				slog.Duration("duration", time.Since(start)),
			)
		})
	}
}
