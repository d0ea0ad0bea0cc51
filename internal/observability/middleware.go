package observability

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"
)

type ctxKey string

const (
	requestIDKey ctxKey = "color.observability.request_id"
	startTimeKey ctxKey = "color.observability.start_time"
)

// RequestIDHeader carries the request ID in both directions.
const RequestIDHeader = "X-Request-ID"

// RequestIDFromContext returns the request ID if present.
func RequestIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(requestIDKey).(string)
	return id, ok
}

// StartTimeFromContext returns when the request entered the middleware.
func StartTimeFromContext(ctx context.Context) (time.Time, bool) {
	ts, ok := ctx.Value(startTimeKey).(time.Time)
	return ts, ok
}

// RequestContextMiddleware injects request IDs and timing metadata.
// An incoming X-Request-ID is kept; otherwise a UUID is generated.
func RequestContextMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get(RequestIDHeader)
		if requestID == "" {
			requestID = uuid.NewString()
		}

		ctx := context.WithValue(r.Context(), requestIDKey, requestID)
		ctx = context.WithValue(ctx, startTimeKey, time.Now())

		r = r.WithContext(ctx)
		r.Header.Set(RequestIDHeader, requestID)
		w.Header().Set(RequestIDHeader, requestID)

		next.ServeHTTP(w, r)
	})
}
