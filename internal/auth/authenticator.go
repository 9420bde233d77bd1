package auth

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/kiranshivaraju/todoapi/internal/cache"
	"github.com/kiranshivaraju/todoapi/internal/store"
	"github.com/kiranshivaraju/todoapi/pkg/models"
)

// CompanyFinder looks up a company by the digest of its API key.
type CompanyFinder interface {
	GetCompanyByKeyDigest(ctx context.Context, digest string) (*models.Company, error)
}

// Authenticator resolves raw API keys to companies, optionally through a
// short-lived cache.
type Authenticator struct {
	finder   CompanyFinder
	cache    cache.Cache
	cacheTTL time.Duration
}

// NewAuthenticator creates an Authenticator. A nil cache or a non-positive
// TTL disables caching.
func NewAuthenticator(f CompanyFinder, c cache.Cache, ttl time.Duration) *Authenticator {
	return &Authenticator{finder: f, cache: c, cacheTTL: ttl}
}

// Resolve returns the company owning credential. The returned company has
// APIKey set to credential.
func (a *Authenticator) Resolve(ctx context.Context, credential string) (*models.Company, error) {
	if credential == "" {
		return nil, ErrMissingCredential
	}

	digest := Digest(credential)

	if c, ok := a.fromCache(ctx, digest); ok {
		c.APIKey = credential
		return c, nil
	}

	c, err := a.finder.GetCompanyByKeyDigest(ctx, digest)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			slog.ErrorContext(ctx, "api key lookup failed", "error", err)
		}
		return nil, ErrInvalidCredential
	}

	a.toCache(ctx, digest, c)
	c.APIKey = credential
	return c, nil
}

func (a *Authenticator) cacheEnabled() bool {
	return a.cache != nil && a.cacheTTL > 0
}

func (a *Authenticator) fromCache(ctx context.Context, digest string) (*models.Company, bool) {
	if !a.cacheEnabled() {
		return nil, false
	}
	raw, found, err := a.cache.Get(ctx, cache.CompanyKey(digest))
	if err != nil {
		slog.WarnContext(ctx, "credential cache read failed", "error", err)
		return nil, false
	}
	if !found {
		return nil, false
	}
	var c models.Company
	if err := json.Unmarshal(raw, &c); err != nil {
		slog.WarnContext(ctx, "credential cache entry corrupt", "error", err)
		return nil, false
	}
	c.APIKeyDigest = digest
	return &c, true
}

func (a *Authenticator) toCache(ctx context.Context, digest string, c *models.Company) {
	if !a.cacheEnabled() {
		return
	}
	raw, err := json.Marshal(c)
	if err != nil {
		return
	}
	if err := a.cache.Set(ctx, cache.CompanyKey(digest), raw, a.cacheTTL); err != nil {
		slog.WarnContext(ctx, "credential cache write failed", "error", err)
	}
}
