package middleware

import (
	"net/http"

	"pathway-engine/internal/engine"
	"pathway-engine/pkg/api"

	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/sony/gobreaker"
	"go.uber.org/zap"
)

// CircuitBreaker guards an API subtree: 5xx responses count as failures, and
// once the breaker opens requests are rejected with 503 until the timeout
// elapses. Shares the breaker settings used for stage handlers.
func CircuitBreaker(name string, settings engine.BreakerSettings, logger *zap.Logger) func(http.Handler) http.Handler {
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: settings.MaxRequests,
		Interval:    settings.Interval,
		Timeout:     settings.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < settings.MinRequests {
				return false
			}
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return failureRatio >= settings.FailureThreshold
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			logger.Warn("api breaker state changed",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
	})

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, err := cb.Execute(func() (interface{}, error) {
				ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
				next.ServeHTTP(ww, r)

				if ww.Status() >= 500 {
					return nil, http.ErrAbortHandler
				}
				return nil, nil
			})
			if err == gobreaker.ErrOpenState || err == gobreaker.ErrTooManyRequests {
				logger.Debug("api breaker rejected request",
					zap.String("method", r.Method),
					zap.String("path", r.URL.Path),
				)
				api.Error(w, http.StatusServiceUnavailable, "service temporarily unavailable")
			}
		})
	}
}
