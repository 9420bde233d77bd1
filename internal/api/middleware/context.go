package middleware

import (
	"context"
	"net/http"

	"github.com/kiranshivaraju/todoapi/internal/ratelimit"
	"github.com/kiranshivaraju/todoapi/pkg/models"
)

type contextKey string

const (
	companyKey         contextKey = "company"
	adminIdentifierKey contextKey = "admin_identifier"
	rateLimitKey       contextKey = "rate_limit"
)

// SetCompany stores the authenticated company in ctx.
func SetCompany(ctx context.Context, c *models.Company) context.Context {
	return context.WithValue(ctx, companyKey, c)
}

// GetCompany returns the company set by Authenticate.
func GetCompany(r *http.Request) (*models.Company, bool) {
	c, ok := r.Context().Value(companyKey).(*models.Company)
	return c, ok && c != nil
}

func setAdminIdentifier(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, adminIdentifierKey, id)
}

func getAdminIdentifier(r *http.Request) (string, bool) {
	id, ok := r.Context().Value(adminIdentifierKey).(string)
	return id, ok && id != ""
}

// SetRateLimit stores the limiter decision that admitted the request.
func SetRateLimit(ctx context.Context, d ratelimit.Decision) context.Context {
	return context.WithValue(ctx, rateLimitKey, d)
}

// GetRateLimit returns the decision set by RateLimit.Limit.
func GetRateLimit(r *http.Request) (ratelimit.Decision, bool) {
	d, ok := r.Context().Value(rateLimitKey).(ratelimit.Decision)
	return d, ok
}
