package handler

import (
	"net/http"

	"github.com/kiranshivaraju/todoapi/internal/api/response"
)

type docExample struct {
	Method  string            `json:"method"`
	URL     string            `json:"url"`
	Headers map[string]string `json:"headers"`
	Body    any               `json:"body,omitempty"`
}

type docsPayload struct {
	Title          string                       `json:"title"`
	Version        string                       `json:"version"`
	Description    string                       `json:"description"`
	BasePath       string                       `json:"basePath"`
	Authentication map[string]string            `json:"authentication"`
	RateLimit      map[string]string            `json:"rateLimit"`
	Endpoints      map[string]map[string]string `json:"endpoints"`
	Examples       map[string]docExample        `json:"examples"`
	ErrorCodes     map[string]string            `json:"errorCodes"`
	ResponseFormat map[string]any               `json:"responseFormat"`
	GettingStarted []string                     `json:"gettingStarted"`
}

// NewDocsHandler returns an http.HandlerFunc for GET /api/v1/docs. The
// payload is built once; only the configured limits vary it.
func NewDocsHandler(limits Limits) http.HandlerFunc {
	payload := docsPayload{
		Title:       "Todo API Documentation",
		Version:     Version,
		Description: "Multi-tenant Todo API for CRM integration",
		BasePath:    "/api/v1",
		Authentication: map[string]string{
			"type":        "API Key",
			"header":      "x-api-key",
			"alternative": "Authorization: Bearer <api_key>",
			"admin":       "x-admin-key",
		},
		RateLimit: describeLimits(limits),
		Endpoints: map[string]map[string]string{
			"tasks": {
				"GET /tasks":         "Get all tasks for your company",
				"POST /tasks":        "Create a new task",
				"GET /tasks/{id}":    "Get a specific task",
				"PUT /tasks/{id}":    "Update a specific task",
				"DELETE /tasks/{id}": "Delete a specific task",
			},
			"system": {
				"GET /status": "API health check and status",
				"GET /docs":   "This documentation endpoint",
			},
			"admin": {
				"POST /companies": "Create a new company (admin only)",
				"GET /companies":  "List all companies (admin only)",
			},
		},
		Examples: map[string]docExample{
			"createTask": {
				Method: http.MethodPost,
				URL:    "/api/v1/tasks",
				Headers: map[string]string{
					"Content-Type": "application/json",
					"x-api-key":    "your_api_key_here",
				},
				Body: map[string]any{
					"title":       "Complete integration",
					"description": "Integrate Todo API with CRM",
					"completed":   false,
				},
			},
			"getAllTasks": {
				Method:  http.MethodGet,
				URL:     "/api/v1/tasks",
				Headers: map[string]string{"x-api-key": "your_api_key_here"},
			},
		},
		ErrorCodes: map[string]string{
			"400": "Bad Request - Invalid request data",
			"401": "Unauthorized - Invalid or missing API key",
			"403": "Forbidden - Insufficient permissions",
			"404": "Not Found - Resource doesn't exist",
			"409": "Conflict - Resource already exists",
			"429": "Too Many Requests - Rate limit exceeded, retry after the Retry-After header",
			"500": "Internal Server Error - Retry with exponential backoff",
		},
		ResponseFormat: map[string]any{
			"success": map[string]any{
				"success": true,
				"data":    "Response data",
				"meta": map[string]string{
					"company":            "Company name",
					"rateLimitRemaining": "Number",
				},
			},
			"error": map[string]any{
				"success": false,
				"error": map[string]string{
					"code":    "Machine readable code",
					"message": "Error message",
				},
			},
		},
		GettingStarted: []string{
			"1. Contact admin to get your company API key",
			"2. Test connection using /api/v1/status endpoint",
			"3. Start integration with tasks endpoints",
			"4. Monitor usage through rate limit headers",
		},
	}

	return func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Cache-Control", "public, max-age=3600")
		response.Raw(w, http.StatusOK, payload)
	}
}
