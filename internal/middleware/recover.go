package middleware

import (
	"encoding/json"
	"log/slog"
	"net/http"
)

// Recover catches panics from downstream handlers, logs them with the
// request ID, and answers HTTP 500 so the webhook sender sees a clean
// error instead of a dropped connection.
func Recover(logger *slog.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				logger.Error("panic while handling request",
					slog.Any("panic", rec),
					slog.String("path", r.URL.Path),
					slog.String("request_id", GetRequestID(r.Context())),
				)
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusInternalServerError)
				json.NewEncoder(w).Encode(map[string]string{
					"status": "error",
					"error":  "internal server error",
				})
			}
		}()
		next.ServeHTTP(w, r)
	})
}
