package middleware

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/kiranshivaraju/todoapi/internal/api/response"
	"github.com/kiranshivaraju/todoapi/internal/metrics"
	"github.com/kiranshivaraju/todoapi/internal/ratelimit"
)

// RateLimit applies fixed-window limits keyed by the authenticated
// credential.
type RateLimit struct {
	limiter *ratelimit.Limiter
	metrics *metrics.Metrics
}

// NewRateLimit creates a new RateLimit middleware.
func NewRateLimit(l *ratelimit.Limiter, m *metrics.Metrics) *RateLimit {
	return &RateLimit{limiter: l, metrics: m}
}

// Limit returns middleware charging one request against class. It must run
// after Authenticate or RequireAdmin; a request with no identity is
// rejected rather than counted.
func (rl *RateLimit) Limit(class ratelimit.Class) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identifier, ok := identity(r)
			if !ok {
				slog.ErrorContext(r.Context(), "rate limit reached without an authenticated identity",
					"path", r.URL.Path)
				response.Error(w, http.StatusUnauthorized, "MISSING_API_KEY", "API key required", nil)
				return
			}

			d := rl.limiter.Check(identifier, class)
			rl.metrics.RateLimitDecision(string(class), d.Allowed)

			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(d.Limit))
			w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(d.Remaining))
			w.Header().Set("X-RateLimit-Reset", d.ResetAt.UTC().Format(time.RFC3339))

			if !d.Allowed {
				w.Header().Set("Retry-After", strconv.Itoa(d.RetryAfter))
				response.RateLimited(w, d.RetryAfter)
				return
			}

			next.ServeHTTP(w, r.WithContext(SetRateLimit(r.Context(), d)))
		})
	}
}

func identity(r *http.Request) (string, bool) {
	if c, ok := GetCompany(r); ok && c.APIKey != "" {
		return c.APIKey, true
	}
	return getAdminIdentifier(r)
}
