package httpapi

import (
	"net/http"
	"strings"
	"time"

	"github.com/JerraForge/hydroponic-backend/internal/metrics"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// HeaderRequestID echoed back, generated when absent.
const HeaderRequestID = "X-Request-Id"

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// instrument records request metrics and access logs; route is the metrics label.
func instrument(route string, logger *zap.Logger, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		start := time.Now()

		reqID := strings.TrimSpace(req.Header.Get(HeaderRequestID))
		if reqID == "" {
			reqID = uuid.NewString()
		}
		w.Header().Set(HeaderRequestID, reqID)

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next(rec, req)

		elapsed := time.Since(start)
		metrics.ObserveHTTPRequest(route, req.Method, rec.status, elapsed)
		logger.Debug("HTTP request",
			zap.String("request_id", reqID),
			zap.String("method", req.Method),
			zap.String("path", req.URL.Path),
			zap.Int("status", rec.status),
			zap.Duration("elapsed", elapsed),
		)
	}
}
