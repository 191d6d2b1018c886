package middleware

import (
	"net/http"
	"unicode"

	"github.com/frahmantamala/meeting-manager/pkg/logger"

	"github.com/google/uuid"
)

const (
	TraceIDHeader   = "X-Trace-ID"
	RequestIDHeader = "X-Request-ID"
	maxTraceIDLen   = 128
)

// RequestID tags the request context with a trace id taken from X-Trace-ID,
// then X-Request-ID, or generated. The id is echoed in X-Trace-ID.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		traceID := r.Header.Get(TraceIDHeader)
		if !validTraceID(traceID) {
			traceID = r.Header.Get(RequestIDHeader)
		}
		if !validTraceID(traceID) {
			traceID = uuid.NewString()
		}

		ctx := logger.WithTraceID(r.Context(), traceID)
		w.Header().Set(TraceIDHeader, traceID)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// validTraceID keeps client supplied ids short and printable so they are safe to log.
func validTraceID(id string) bool {
	if id == "" || len(id) > maxTraceIDLen {
		return false
	}
	for _, r := range id {
		if r > unicode.MaxASCII || !unicode.IsPrint(r) || r == ' ' {
			return false
		}
	}
	return true
}
