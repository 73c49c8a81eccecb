package middleware

import (
	"net/http"
	"runtime/debug"

	apperrors "laluna/pkg/errors"
	httputil "laluna/pkg/http"
	"laluna/pkg/logger"
)

func Recovery(log *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					log.WithContext(r.Context()).Error("Panic recovered",
						"error", err,
						"method", r.Method,
						"path", r.URL.Path,
						"stack", string(debug.Stack()),
					)

					if writeErr := httputil.WriteError(w, apperrors.Internal("panic recovered", nil)); writeErr != nil {
						log.Error("failed to write error response", "middleware", "Recovery", "error", writeErr)
					}
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}
