package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"byod/internal/observability/logging"

	"github.com/google/uuid"
)

type ctxKey string

const (
	CtxKeyRequestID ctxKey = "request_id"

	HeaderRequestID = "X-Request-ID"
	HeaderTraceID   = "X-Trace-ID"

	maxIDLength = 64
)

// headerID returns the client supplied id when it is short and made of
// token characters only; anything else is replaced so ids can be logged
// verbatim.
func headerID(r *http.Request, header string) string {
	v := strings.TrimSpace(r.Header.Get(header))
	if v == "" || len(v) > maxIDLength {
		return uuid.NewString()
	}
	for _, c := range v {
		ok := c == '-' || c == '_' || c == '.' || c == ':' ||
			(c >= '0' && c <= '9') || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
		if !ok {
			return uuid.NewString()
		}
	}
	return v
}

// WithRequestAndTrace honours or generates request and trace ids, echoes
// them back and attaches a logger carrying both to the request context.
func WithRequestAndTrace(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reqID := headerID(r, HeaderRequestID)
		traceID := headerID(r, HeaderTraceID)

		w.Header().Set(HeaderRequestID, reqID)
		w.Header().Set(HeaderTraceID, traceID)

		ctx := context.WithValue(r.Context(), CtxKeyRequestID, reqID)
		ctx = logging.WithContext(ctx, slog.Default().With(
			"request_id", reqID,
			"trace_id", traceID,
		))

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequestIDFromContext returns the id WithRequestAndTrace assigned, or ""
// outside of it.
func RequestIDFromContext(ctx context.Context) string {
	v, _ := ctx.Value(CtxKeyRequestID).(string)
	return v
}
