package devapi

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/dmitrijs2005/apexclient/internal/common"
	"github.com/dmitrijs2005/apexclient/internal/logging"
)

type ctxKey string

const userIDKey ctxKey = "userID"

// withRequestLogging logs method, path, status and latency of every request.
func withRequestLogging(log logging.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()

			next.ServeHTTP(ww, r)

			log.Info(r.Context(), "request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"duration", time.Since(start),
				"request_id", requestID(r),
			)
		})
	}
}

// requestID prefers the client supplied X-Request-ID over chi's generated id.
func requestID(r *http.Request) string {
	if id := r.Header.Get(common.RequestIDHeader); id != "" {
		return id
	}
	return middleware.GetReqID(r.Context())
}

// authenticate rejects requests without a valid bearer token with 401 and
// stores the caller's id in the request context otherwise.
func (h *handler) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get(common.AuthorizationHeader)
		if !strings.HasPrefix(header, common.BearerPrefix) {
			writeError(w, r, http.StatusUnauthorized, "Authentication required")
			return
		}

		id, err := UserIDFromToken(strings.TrimPrefix(header, common.BearerPrefix), h.secret)
		if err != nil {
			h.log.Debug(r.Context(), "token rejected", "error", err, "request_id", requestID(r))
			writeError(w, r, http.StatusUnauthorized, "Invalid or expired token")
			return
		}

		// tokens of deleted users are dead
		if _, err := h.users.Get(id); err != nil {
			writeError(w, r, http.StatusUnauthorized, "Invalid or expired token")
			return
		}

		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), userIDKey, id)))
	})
}

func callerID(ctx context.Context) int64 {
	id, _ := ctx.Value(userIDKey).(int64)
	return id
}
