package middleware

import (
	"context"
	"crypto/subtle"
	"errors"
	"net/http"

	"github.com/kiranshivaraju/todoapi/internal/api/response"
	"github.com/kiranshivaraju/todoapi/internal/auth"
	"github.com/kiranshivaraju/todoapi/internal/metrics"
	"github.com/kiranshivaraju/todoapi/pkg/models"
)

// Resolver turns a raw credential into the company that owns it.
type Resolver interface {
	Resolve(ctx context.Context, credential string) (*models.Company, error)
}

// Auth provides company and admin authentication middleware.
type Auth struct {
	resolver Resolver
	adminKey string
	metrics  *metrics.Metrics
}

// NewAuth creates a new Auth middleware. An empty adminKey rejects every
// admin request.
func NewAuth(r Resolver, adminKey string, m *metrics.Metrics) *Auth {
	return &Auth{resolver: r, adminKey: adminKey, metrics: m}
}

// Authenticate resolves the request's API key and stores the company in
// the request context. It runs before any rate limiting or data access.
func (a *Auth) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		company, err := a.resolver.Resolve(r.Context(), auth.ExtractCredential(r))
		if err != nil {
			if errors.Is(err, auth.ErrMissingCredential) {
				a.metrics.AuthFailure("missing")
				response.Error(w, http.StatusUnauthorized, "MISSING_API_KEY",
					"API key required. Include x-api-key header or Authorization: Bearer <key>", nil)
				return
			}
			a.metrics.AuthFailure("invalid")
			response.Error(w, http.StatusUnauthorized, "INVALID_API_KEY", "Invalid API key", nil)
			return
		}

		next.ServeHTTP(w, r.WithContext(SetCompany(r.Context(), company)))
	})
}

// RequireAdmin checks the X-Admin-Key header against the configured admin
// credential. Admin keys are a separate credential class from company keys.
func (a *Auth) RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := r.Header.Get(auth.HeaderAdminKey)
		if a.adminKey == "" || key == "" ||
			subtle.ConstantTimeCompare([]byte(key), []byte(a.adminKey)) != 1 {
			a.metrics.AuthFailure("admin")
			response.Error(w, http.StatusForbidden, "ADMIN_ACCESS_REQUIRED", "Admin access required", nil)
			return
		}

		next.ServeHTTP(w, r.WithContext(setAdminIdentifier(r.Context(), "admin:"+key)))
	})
}
