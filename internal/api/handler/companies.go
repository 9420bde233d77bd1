package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/kiranshivaraju/todoapi/internal/api/response"
	"github.com/kiranshivaraju/todoapi/internal/auth"
	"github.com/kiranshivaraju/todoapi/internal/store"
	"github.com/kiranshivaraju/todoapi/pkg/models"
)

const maxCompanyNameLen = 200

// CompanyStore is the subset of store.Store the admin handlers need.
type CompanyStore interface {
	CreateCompany(ctx context.Context, c *models.Company) error
	ListCompanies(ctx context.Context) ([]*models.Company, error)
}

// CreatedCompany is the one response that ever carries a raw API key.
type CreatedCompany struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	APIKey    string    `json:"api_key"`
	CreatedAt time.Time `json:"created_at"`
}

// NewCreateCompanyHandler returns an http.HandlerFunc for POST /api/v1/companies.
func NewCreateCompanyHandler(s CompanyStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Name *string `json:"name"`
		}
		if !decodeBody(w, r, &req) {
			return
		}

		if req.Name == nil || strings.TrimSpace(*req.Name) == "" {
			validationError(w, "name", "required", "Company name is required")
			return
		}
		name := strings.TrimSpace(*req.Name)
		if len(name) > maxCompanyNameLen {
			validationError(w, "name", "too_long", "Company name is too long")
			return
		}

		key, err := auth.GenerateKey()
		if err != nil {
			response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to generate API key", nil)
			return
		}

		now := time.Now().UTC()
		company := &models.Company{
			ID:           uuid.New(),
			Name:         name,
			APIKeyDigest: auth.Digest(key),
			CreatedAt:    now,
			UpdatedAt:    now,
		}

		if err := s.CreateCompany(r.Context(), company); err != nil {
			var conflict *store.ConflictError
			if errors.As(err, &conflict) {
				message := "Company name already exists"
				if conflict.Field != "name" {
					message = "Company could not be created, retry the request"
				}
				response.Error(w, http.StatusConflict, "CONFLICT", message,
					map[string]string{"field": conflict.Field})
				return
			}
			upstreamError(w, r, "create_company", err)
			return
		}

		response.Send(w, http.StatusCreated, response.Envelope{
			Success: true,
			Data: CreatedCompany{
				ID:        company.ID,
				Name:      company.Name,
				APIKey:    key,
				CreatedAt: company.CreatedAt,
			},
			Message: "Company created successfully. Save the API key securely - it cannot be retrieved again.",
			Meta:    tenantMeta(r),
		})
	}
}

// NewListCompaniesHandler returns an http.HandlerFunc for GET /api/v1/companies.
func NewListCompaniesHandler(s CompanyStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		companies, err := s.ListCompanies(r.Context())
		if err != nil {
			upstreamError(w, r, "list_companies", err)
			return
		}
		if companies == nil {
			companies = []*models.Company{}
		}

		response.JSON(w, companies, tenantMeta(r).WithTotal(len(companies)))
	}
}
