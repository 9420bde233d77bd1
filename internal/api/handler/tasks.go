package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/kiranshivaraju/todoapi/internal/api/response"
	"github.com/kiranshivaraju/todoapi/internal/store"
	"github.com/kiranshivaraju/todoapi/pkg/models"
)

// TaskStore is the subset of store.Store the task handlers need.
type TaskStore interface {
	ListTasks(ctx context.Context, companyID uuid.UUID) ([]*models.Task, error)
	CreateTask(ctx context.Context, t *models.Task) error
	GetTask(ctx context.Context, companyID, id uuid.UUID) (*models.Task, error)
	UpdateTask(ctx context.Context, companyID, id uuid.UUID, patch models.TaskPatch) (*models.Task, error)
	DeleteTask(ctx context.Context, companyID, id uuid.UUID) error
}

// NewListTasksHandler returns an http.HandlerFunc for GET /api/v1/tasks.
func NewListTasksHandler(s TaskStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		company, ok := requireCompany(w, r)
		if !ok {
			return
		}

		tasks, err := s.ListTasks(r.Context(), company.ID)
		if err != nil {
			upstreamError(w, r, "list_tasks", err)
			return
		}
		if tasks == nil {
			tasks = []*models.Task{}
		}

		response.JSON(w, tasks, tenantMeta(r).WithTotal(len(tasks)))
	}
}

// NewCreateTaskHandler returns an http.HandlerFunc for POST /api/v1/tasks.
func NewCreateTaskHandler(s TaskStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		company, ok := requireCompany(w, r)
		if !ok {
			return
		}

		var req struct {
			Title       *string `json:"title"`
			Description *string `json:"description"`
			Completed   *bool   `json:"completed"`
		}
		if !decodeBody(w, r, &req) {
			return
		}

		if req.Title == nil || strings.TrimSpace(*req.Title) == "" {
			validationError(w, "title", "required", "Title is required")
			return
		}

		now := time.Now().UTC()
		task := &models.Task{
			ID:          uuid.New(),
			CompanyID:   company.ID,
			Title:       strings.TrimSpace(*req.Title),
			Description: normalizeDescription(req.Description),
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		if req.Completed != nil {
			task.Completed = *req.Completed
		}

		if err := s.CreateTask(r.Context(), task); err != nil {
			upstreamError(w, r, "create_task", err)
			return
		}

		response.Created(w, task, tenantMeta(r))
	}
}

// NewGetTaskHandler returns an http.HandlerFunc for GET /api/v1/tasks/{taskID}.
func NewGetTaskHandler(s TaskStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		company, ok := requireCompany(w, r)
		if !ok {
			return
		}
		id, ok := parseID(w, chi.URLParam(r, "taskID"))
		if !ok {
			return
		}

		task, err := s.GetTask(r.Context(), company.ID, id)
		if err != nil {
			taskError(w, r, "get_task", err)
			return
		}

		response.JSON(w, task, tenantMeta(r))
	}
}

// NewUpdateTaskHandler returns an http.HandlerFunc for PUT /api/v1/tasks/{taskID}.
func NewUpdateTaskHandler(s TaskStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		company, ok := requireCompany(w, r)
		if !ok {
			return
		}
		id, ok := parseID(w, chi.URLParam(r, "taskID"))
		if !ok {
			return
		}

		var fields map[string]json.RawMessage
		if !decodeBody(w, r, &fields) {
			return
		}

		patch, ferr := parsePatch(fields)
		if ferr != nil {
			validationError(w, ferr.Field, ferr.Reason, ferr.message())
			return
		}

		task, err := s.UpdateTask(r.Context(), company.ID, id, patch)
		if err != nil {
			taskError(w, r, "update_task", err)
			return
		}

		response.JSON(w, task, tenantMeta(r))
	}
}

// NewDeleteTaskHandler returns an http.HandlerFunc for DELETE /api/v1/tasks/{taskID}.
func NewDeleteTaskHandler(s TaskStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		company, ok := requireCompany(w, r)
		if !ok {
			return
		}
		id, ok := parseID(w, chi.URLParam(r, "taskID"))
		if !ok {
			return
		}

		if err := s.DeleteTask(r.Context(), company.ID, id); err != nil {
			taskError(w, r, "delete_task", err)
			return
		}

		response.Send(w, http.StatusOK, response.Envelope{
			Success: true,
			Message: "Task deleted successfully",
			Meta:    tenantMeta(r),
		})
	}
}

func taskError(w http.ResponseWriter, r *http.Request, op string, err error) {
	if errors.Is(err, store.ErrNotFound) {
		response.Error(w, http.StatusNotFound, "NOT_FOUND", "Task not found", nil)
		return
	}
	upstreamError(w, r, op, err)
}

// parsePatch turns the raw update body into a TaskPatch. Unrecognized
// fields are ignored; a body with no recognized field is rejected.
func parsePatch(fields map[string]json.RawMessage) (models.TaskPatch, *fieldError) {
	var patch models.TaskPatch

	if raw, ok := fields["title"]; ok {
		var title *string
		if err := json.Unmarshal(raw, &title); err != nil {
			return patch, &fieldError{Field: "title", Reason: "invalid_type"}
		}
		if title == nil || strings.TrimSpace(*title) == "" {
			return patch, &fieldError{Field: "title", Reason: "empty"}
		}
		trimmed := strings.TrimSpace(*title)
		patch.Title = &trimmed
	}

	if raw, ok := fields["description"]; ok {
		var desc *string
		if err := json.Unmarshal(raw, &desc); err != nil {
			return patch, &fieldError{Field: "description", Reason: "invalid_type"}
		}
		patch.Description = normalizeDescription(desc)
		patch.DescriptionSet = true
	}

	if raw, ok := fields["completed"]; ok {
		var completed *bool
		if err := json.Unmarshal(raw, &completed); err != nil || completed == nil {
			return patch, &fieldError{Field: "completed", Reason: "invalid_type"}
		}
		patch.Completed = completed
	}

	if patch.Empty() {
		return patch, &fieldError{Field: "body", Reason: "no_fields"}
	}
	return patch, nil
}

func (e *fieldError) message() string {
	switch {
	case e.Field == "body":
		return "No valid fields to update"
	case e.Reason == "empty":
		return "Title cannot be empty"
	default:
		return e.Field + " has an invalid type"
	}
}

// normalizeDescription maps absent, null and blank descriptions to nil.
func normalizeDescription(d *string) *string {
	if d == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*d)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
