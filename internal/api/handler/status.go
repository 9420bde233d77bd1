package handler

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/kiranshivaraju/todoapi/internal/api/response"
	"github.com/kiranshivaraju/todoapi/internal/ratelimit"
)

// Version is reported by the status and docs endpoints.
const Version = "1.0.0"

// Pinger is satisfied by the store and the cache.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Limits reports the configured rate limit classes.
type Limits interface {
	Config(c ratelimit.Class) (ratelimit.Config, bool)
}

type serviceStatus struct {
	Status       string `json:"status"`
	ResponseTime string `json:"responseTime"`
}

type statusPayload struct {
	Success   bool                     `json:"success"`
	Status    string                   `json:"status"`
	Version   string                   `json:"version"`
	Timestamp time.Time                `json:"timestamp"`
	Services  map[string]serviceStatus `json:"services"`
	Endpoints map[string]string        `json:"endpoints"`
	RateLimit map[string]string        `json:"rateLimit"`
}

// NewStatusHandler returns an http.HandlerFunc for GET /api/v1/status.
// A failing database answers 503; a failing cache is reported but does not
// take the service out of rotation. cache may be nil.
func NewStatusHandler(db Pinger, cache Pinger, limits Limits) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		services := map[string]serviceStatus{
			"database": ping(r.Context(), db),
		}
		if cache != nil {
			services["cache"] = ping(r.Context(), cache)
		}
		services["api"] = serviceStatus{Status: "healthy", ResponseTime: elapsed(start)}

		payload := statusPayload{
			Success:   true,
			Status:    "operational",
			Version:   Version,
			Timestamp: time.Now().UTC(),
			Services:  services,
			Endpoints: map[string]string{
				"tasks":         "/api/v1/tasks",
				"companies":     "/api/v1/companies",
				"documentation": "/api/v1/docs",
			},
			RateLimit: describeLimits(limits),
		}

		status := http.StatusOK
		if services["database"].Status != "healthy" {
			payload.Success = false
			payload.Status = "degraded"
			status = http.StatusServiceUnavailable
		}

		response.Raw(w, status, payload)
	}
}

func ping(ctx context.Context, p Pinger) serviceStatus {
	start := time.Now()
	if err := p.Ping(ctx); err != nil {
		return serviceStatus{Status: "error", ResponseTime: elapsed(start)}
	}
	return serviceStatus{Status: "healthy", ResponseTime: elapsed(start)}
}

func elapsed(start time.Time) string {
	return fmt.Sprintf("%dms", time.Since(start).Milliseconds())
}

func describeLimits(limits Limits) map[string]string {
	out := make(map[string]string, 3)
	for _, c := range []ratelimit.Class{ratelimit.Standard, ratelimit.Write, ratelimit.Admin} {
		if cfg, ok := limits.Config(c); ok {
			out[string(c)] = cfg.String()
		}
	}
	return out
}
