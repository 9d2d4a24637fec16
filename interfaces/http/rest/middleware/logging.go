package middleware

import (
	"net/http"
	"time"

	"seds-backend/pkg/common"
	"seds-backend/pkg/observability"

	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

// RequestContext copies the chi request id, the X-Ray trace id and the start
// time into the request context.
func RequestContext(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := common.WithStartTime(r.Context(), time.Now())
		if id := middleware.GetReqID(ctx); id != "" {
			ctx = common.WithRequestID(ctx, id)
			w.Header().Set("X-Request-ID", id)
		}
		if traceID := observability.TraceID(ctx); traceID != "" {
			ctx = common.WithTraceID(ctx, traceID)
		}
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// Logger creates a logging middleware
func Logger(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			meta := common.ExtractMetadata(r.Context())
			fields := []zap.Field{
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Int("bytes", ww.BytesWritten()),
				zap.Duration("duration", meta.Duration),
				zap.String("requestID", meta.RequestID),
				zap.String("remoteAddr", r.RemoteAddr),
				zap.String("userAgent", r.UserAgent()),
			}
			if meta.TraceID != "" {
				fields = append(fields, zap.String("traceID", meta.TraceID))
			}

			switch {
			case ww.Status() >= 500:
				logger.Error("HTTP Request", fields...)
			case ww.Status() >= 400:
				logger.Warn("HTTP Request", fields...)
			default:
				logger.Info("HTTP Request", fields...)
			}
		})
	}
}
