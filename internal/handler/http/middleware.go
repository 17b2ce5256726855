package http

import (
	"context"
	"net/http"
	"strings"

	"github.com/greenbasket/pos/pkg/httputil"
	"github.com/greenbasket/pos/pkg/logger"
)

// contextKey is an unexported type for context keys to prevent collisions.
type contextKey string

// terminalIDKey is the context key for the calling till's identifier.
const terminalIDKey contextKey = "terminal_id"

// TerminalIDFromHeader is middleware that reads the X-Terminal-ID header
// identifying the till and stores it in the request context. If the header
// is absent the request is rejected with 401 Unauthorized.
func TerminalIDFromHeader(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tid := r.Header.Get("X-Terminal-ID")
		if tid == "" {
			httputil.WriteJSON(w, http.StatusUnauthorized, httputil.Response{
				Error: &httputil.ErrorResponse{Code: "UNAUTHORIZED", Message: "X-Terminal-ID header is required"},
			})
			return
		}
		ctx := context.WithValue(r.Context(), terminalIDKey, tid)
		ctx = logger.WithTerminalID(ctx, tid)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// terminalIDFromContext extracts the till identifier from the request context.
func terminalIDFromContext(ctx context.Context) (string, bool) {
	tid, ok := ctx.Value(terminalIDKey).(string)
	return tid, ok && tid != ""
}

// ContentTypeJSON enforces that requests with a body have Content-Type: application/json.
func ContentTypeJSON(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.ContentLength > 0 || r.Method == http.MethodPost || r.Method == http.MethodPut || r.Method == http.MethodPatch {
			ct := r.Header.Get("Content-Type")
			if ct != "" && !strings.HasPrefix(ct, "application/json") {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusUnsupportedMediaType)
				_, _ = w.Write([]byte(`{"error":{"code":"UNSUPPORTED_MEDIA_TYPE","message":"Content-Type must be application/json"}}`))
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}

// CORS adds permissive Cross-Origin Resource Sharing headers for the
// browser-hosted till UI.
func CORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Accept, Authorization, Content-Type, X-Correlation-ID, X-Terminal-ID")
		w.Header().Set("Access-Control-Max-Age", "3600")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}
