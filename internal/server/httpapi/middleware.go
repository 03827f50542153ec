package httpapi

import (
	"net/http"
	"strings"
	"time"

	"github.com/dmitrijs2005/tenantauth/internal/common"
	"github.com/dmitrijs2005/tenantauth/internal/server/api"
	"github.com/dmitrijs2005/tenantauth/internal/server/auth"
	"github.com/go-chi/chi/v5/middleware"
)

// bearerAuth verifies the Authorization header and stores the claims in
// the request context.
func (h *Handler) bearerAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := strings.CutPrefix(r.Header.Get("Authorization"), common.BearerPrefix)
		if !ok || token == "" {
			h.logger.Warn(r.Context(), "no token provided", "path", r.URL.Path)
			writeJSON(w, http.StatusUnauthorized, api.FailCode(common.CodeUnauthorized, "Missing token"))
			return
		}

		claims, err := h.verifier.Verify(token)
		if err != nil {
			h.logger.Warn(r.Context(), "invalid token", "path", r.URL.Path, "error", err)
			writeJSON(w, http.StatusUnauthorized, api.FailCode(common.CodeUnauthorized, "Invalid token"))
			return
		}

		next.ServeHTTP(w, r.WithContext(auth.WithClaims(r.Context(), claims)))
	})
}

// requestLogger logs one line per request, at Warn for 4xx and Error for
// 5xx responses.
func (h *Handler) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()

		defer func() {
			args := []any{
				"request_id", middleware.GetReqID(r.Context()),
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes_out", ww.BytesWritten(),
				"latency", time.Since(start).String(),
			}
			switch {
			case ww.Status() >= 500:
				h.logger.Error(r.Context(), "request completed", args...)
			case ww.Status() >= 400:
				h.logger.Warn(r.Context(), "request completed", args...)
			default:
				h.logger.Info(r.Context(), "request completed", args...)
			}
		}()

		next.ServeHTTP(ww, r)
	})
}
