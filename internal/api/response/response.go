// Package response writes the API's JSON envelope.
package response

import (
	"encoding/json"
	"net/http"
)

// Envelope is the body of every API response except status and docs.
type Envelope struct {
	Success    bool       `json:"success"`
	Data       any        `json:"data,omitempty"`
	Message    string     `json:"message,omitempty"`
	Error      *ErrorBody `json:"error,omitempty"`
	RetryAfter *int       `json:"retryAfter,omitempty"`
	Meta       *Meta      `json:"meta,omitempty"`
}

type ErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

// Meta annotates successful responses so callers can self-throttle.
type Meta struct {
	Company            string `json:"company,omitempty"`
	RateLimitRemaining *int   `json:"rateLimitRemaining,omitempty"`
	Total              *int   `json:"total,omitempty"`
}

// WithTotal returns a copy of m with Total set.
func (m *Meta) WithTotal(total int) *Meta {
	out := Meta{}
	if m != nil {
		out = *m
	}
	out.Total = &total
	return &out
}

func JSON(w http.ResponseWriter, data any, meta *Meta) {
	Send(w, http.StatusOK, Envelope{Success: true, Data: data, Meta: meta})
}

func Created(w http.ResponseWriter, data any, meta *Meta) {
	Send(w, http.StatusCreated, Envelope{Success: true, Data: data, Meta: meta})
}

func Error(w http.ResponseWriter, status int, code, message string, details any) {
	Send(w, status, Envelope{Error: &ErrorBody{
		Code:    code,
		Message: message,
		Details: details,
	}})
}

// RateLimited writes a 429 carrying retryAfter seconds. Rate limit headers
// are the caller's responsibility.
func RateLimited(w http.ResponseWriter, retryAfter int) {
	Send(w, http.StatusTooManyRequests, Envelope{
		Error:      &ErrorBody{Code: "RATE_LIMIT_EXCEEDED", Message: "Rate limit exceeded"},
		RetryAfter: &retryAfter,
	})
}

func Send(w http.ResponseWriter, status int, env Envelope) {
	Raw(w, status, env)
}

// Raw writes v as JSON without the envelope.
func Raw(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
