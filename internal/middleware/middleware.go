package middleware

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"tradearea-platform/pkg/logging"
	"tradearea-platform/pkg/metrics"
)

// requestIDHeader is echoed back so clients can correlate log lines.
const requestIDHeader = "X-Request-ID"

// RequestID assigns every request an ID, reusing the client's header when
// present, and stores it on the context for the structured logger.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get(requestIDHeader)
		if requestID == "" {
			requestID = uuid.New().String()
		}

		ctx := logging.ContextWithRequestID(r.Context(), requestID)
		w.Header().Set(requestIDHeader, requestID)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// statusRecorder captures the response status for the access log.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (rec *statusRecorder) WriteHeader(status int) {
	rec.status = status
	rec.ResponseWriter.WriteHeader(status)
}

// RequestLogging logs every request with its duration and tracks the number
// of in-flight connections.
func RequestLogging(logger *logging.StructuredLogger, mc *metrics.Collector) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			startTime := time.Now()

			mc.ActiveConnections.Inc()
			defer mc.ActiveConnections.Dec()

			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(rec, r)

			logger.Info(r.Context(), "[HTTP_REQUEST] Request handled", logging.Fields{
				"method":      r.Method,
				"path":        r.URL.Path,
				"status":      rec.status,
				"duration_ms": time.Since(startTime).Milliseconds(),
				"remote_addr": r.RemoteAddr,
			})
		})
	}
}
