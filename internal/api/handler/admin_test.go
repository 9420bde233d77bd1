package handler

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/kiranshivaraju/todoapi/internal/auth"
	"github.com/kiranshivaraju/todoapi/internal/ratelimit"
	"github.com/kiranshivaraju/todoapi/internal/store"
	"github.com/kiranshivaraju/todoapi/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- mocks ---

type mockCompanyStore struct {
	createErr error
	listErr   error
	created   []*models.Company
}

func (m *mockCompanyStore) CreateCompany(_ context.Context, c *models.Company) error {
	if m.createErr != nil {
		return m.createErr
	}
	m.created = append(m.created, c)
	return nil
}
func (m *mockCompanyStore) ListCompanies(_ context.Context) ([]*models.Company, error) {
	return m.created, m.listErr
}

type mockPinger struct{ err error }

func (m mockPinger) Ping(_ context.Context) error { return m.err }

func adminReq(t *testing.T, method string, body any) *http.Request {
	t.Helper()
	return tenantReq(t, method, "/api/v1/companies", body, nil, "")
}

// ========================================
// Companies
// ========================================

func TestCreateCompany_Success(t *testing.T) {
	s := store.NewMemoryStore()
	rec := httptest.NewRecorder()
	NewCreateCompanyHandler(s)(rec, adminReq(t, http.MethodPost, map[string]any{"name": " Acme "}))

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	body := envelope(t, rec)
	data := body["data"].(map[string]any)
	assert.Equal(t, "Acme", data["name"])
	key := data["api_key"].(string)
	assert.True(t, strings.HasPrefix(key, auth.KeyPrefix))
	assert.Contains(t, body["message"], "cannot be retrieved again")

	stored, err := s.GetCompanyByKeyDigest(context.Background(), auth.Digest(key))
	require.NoError(t, err)
	assert.Equal(t, "Acme", stored.Name)
}

func TestCreateCompany_BlankName(t *testing.T) {
	for _, body := range []any{map[string]any{"name": "   "}, map[string]any{}, nil} {
		m := &mockCompanyStore{}
		rec := httptest.NewRecorder()
		NewCreateCompanyHandler(m)(rec, adminReq(t, http.MethodPost, body))

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Empty(t, m.created)
	}
}

func TestCreateCompany_DuplicateName(t *testing.T) {
	s := store.NewMemoryStore()
	rec := httptest.NewRecorder()
	NewCreateCompanyHandler(s)(rec, adminReq(t, http.MethodPost, map[string]any{"name": "Acme"}))
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = httptest.NewRecorder()
	NewCreateCompanyHandler(s)(rec, adminReq(t, http.MethodPost, map[string]any{"name": "Acme"}))

	require.Equal(t, http.StatusConflict, rec.Code)
	errObj := envelope(t, rec)["error"].(map[string]any)
	assert.Equal(t, "CONFLICT", errObj["code"])
	assert.Equal(t, "name", errObj["details"].(map[string]any)["field"])
}

func TestCreateCompany_KeyCollision(t *testing.T) {
	m := &mockCompanyStore{createErr: &store.ConflictError{Field: "api_key"}}
	rec := httptest.NewRecorder()
	NewCreateCompanyHandler(m)(rec, adminReq(t, http.MethodPost, map[string]any{"name": "Acme"}))

	require.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "api_key", envelope(t, rec)["error"].(map[string]any)["details"].(map[string]any)["field"])
}

func TestCreateCompany_StoreError(t *testing.T) {
	m := &mockCompanyStore{createErr: errors.New("connection reset by peer")}
	rec := httptest.NewRecorder()
	NewCreateCompanyHandler(m)(rec, adminReq(t, http.MethodPost, map[string]any{"name": "Acme"}))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "connection reset")
}

func TestListCompanies_NoKeys(t *testing.T) {
	s := store.NewMemoryStore()
	for _, name := range []string{"Acme", "Globex"} {
		rec := httptest.NewRecorder()
		NewCreateCompanyHandler(s)(rec, adminReq(t, http.MethodPost, map[string]any{"name": name}))
		require.Equal(t, http.StatusCreated, rec.Code)
	}

	rec := httptest.NewRecorder()
	NewListCompaniesHandler(s)(rec, adminReq(t, http.MethodGet, nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body := envelope(t, rec)
	assert.Len(t, body["data"].([]any), 2)
	assert.Equal(t, float64(2), body["meta"].(map[string]any)["total"])
	assert.NotContains(t, rec.Body.String(), "api_key")
	assert.NotContains(t, rec.Body.String(), auth.KeyPrefix)
}

// ========================================
// Status / Docs
// ========================================

func TestStatus_Operational(t *testing.T) {
	l := ratelimit.New(nil)
	rec := httptest.NewRecorder()
	NewStatusHandler(mockPinger{}, mockPinger{}, l)(rec, httptest.NewRequest(http.MethodGet, "/api/v1/status", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body := envelope(t, rec)
	assert.Equal(t, "operational", body["status"])
	assert.Equal(t, Version, body["version"])
	services := body["services"].(map[string]any)
	assert.Equal(t, "healthy", services["database"].(map[string]any)["status"])
	assert.Equal(t, "healthy", services["cache"].(map[string]any)["status"])
	assert.Equal(t, "100 requests per minute", body["rateLimit"].(map[string]any)["standard"])
	assert.Equal(t, "50 requests per minute", body["rateLimit"].(map[string]any)["write"])
	assert.Equal(t, "10 requests per minute", body["rateLimit"].(map[string]any)["admin"])
	_, err := time.Parse(time.RFC3339, body["timestamp"].(string))
	assert.NoError(t, err)
}

func TestStatus_DatabaseDown(t *testing.T) {
	rec := httptest.NewRecorder()
	NewStatusHandler(mockPinger{err: errors.New("down")}, nil, ratelimit.New(nil))(
		rec, httptest.NewRequest(http.MethodGet, "/api/v1/status", nil))

	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
	body := envelope(t, rec)
	assert.Equal(t, "degraded", body["status"])
	assert.NotContains(t, body["services"], "cache")
}

func TestStatus_CacheDownStaysUp(t *testing.T) {
	rec := httptest.NewRecorder()
	NewStatusHandler(mockPinger{}, mockPinger{err: errors.New("down")}, ratelimit.New(nil))(
		rec, httptest.NewRequest(http.MethodGet, "/api/v1/status", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	services := envelope(t, rec)["services"].(map[string]any)
	assert.Equal(t, "error", services["cache"].(map[string]any)["status"])
}

func TestDocs(t *testing.T) {
	l := ratelimit.New(map[ratelimit.Class]ratelimit.Config{
		ratelimit.Standard: {Window: time.Minute, MaxRequests: 7},
	})
	rec := httptest.NewRecorder()
	NewDocsHandler(l)(rec, httptest.NewRequest(http.MethodGet, "/api/v1/docs", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "public, max-age=3600", rec.Header().Get("Cache-Control"))
	body := envelope(t, rec)
	assert.Equal(t, "x-api-key", body["authentication"].(map[string]any)["header"])
	assert.Equal(t, "7 requests per minute", body["rateLimit"].(map[string]any)["standard"])
	assert.Contains(t, body["endpoints"].(map[string]any)["tasks"], "GET /tasks")
}
