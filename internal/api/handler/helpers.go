package handler

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	mw "github.com/kiranshivaraju/todoapi/internal/api/middleware"
	"github.com/kiranshivaraju/todoapi/internal/api/response"
	"github.com/kiranshivaraju/todoapi/pkg/models"
)

const maxBodyBytes = 1 << 20

// fieldError is a VALIDATION_ERROR detail.
type fieldError struct {
	Field  string `json:"field"`
	Reason string `json:"reason"`
}

func validationError(w http.ResponseWriter, field, reason, message string) {
	response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", message,
		fieldError{Field: field, Reason: reason})
}

// tenantMeta builds the meta block from the authenticated company and the
// decision that admitted the request.
func tenantMeta(r *http.Request) *response.Meta {
	meta := &response.Meta{}
	if c, ok := mw.GetCompany(r); ok {
		meta.Company = c.Name
	}
	if d, ok := mw.GetRateLimit(r); ok {
		remaining := d.Remaining
		meta.RateLimitRemaining = &remaining
	}
	return meta
}

func requireCompany(w http.ResponseWriter, r *http.Request) (*models.Company, bool) {
	c, ok := mw.GetCompany(r)
	if !ok {
		response.Error(w, http.StatusUnauthorized, "MISSING_API_KEY", "API key required", nil)
		return nil, false
	}
	return c, true
}

// decodeBody reads a JSON body into v. Empty bodies decode as an empty
// object.
func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(v)
	if err == nil || errors.Is(err, io.EOF) {
		return true
	}
	response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid JSON body",
		fieldError{Field: "body", Reason: "malformed"})
	return false
}

func parseID(w http.ResponseWriter, raw string) (uuid.UUID, bool) {
	id, err := uuid.Parse(raw)
	if err != nil {
		response.Error(w, http.StatusNotFound, "NOT_FOUND", "Task not found", nil)
		return uuid.Nil, false
	}
	return id, true
}

// upstreamError logs the store failure and answers with a generic message.
func upstreamError(w http.ResponseWriter, r *http.Request, op string, err error) {
	slog.ErrorContext(r.Context(), "data store operation failed", "op", op, "error", err)
	response.Error(w, http.StatusInternalServerError, "UPSTREAM_ERROR", "Database error", nil)
}
