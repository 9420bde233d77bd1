package models

import (
	"time"

	"github.com/google/uuid"
)

// Task is a to-do item owned by exactly one company.
type Task struct {
	ID          uuid.UUID `db:"id"          json:"id"`
	CompanyID   uuid.UUID `db:"company_id"  json:"-"`
	Title       string    `db:"title"       json:"title"`
	Description *string   `db:"description" json:"description"`
	Completed   bool      `db:"completed"   json:"completed"`
	CreatedAt   time.Time `db:"created_at"  json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at"  json:"updated_at"`
}

// TaskPatch is a partial update. Nil fields are left untouched.
// DescriptionSet distinguishes "clear the description" (Description nil)
// from "leave it alone".
type TaskPatch struct {
	Title          *string
	Description    *string
	DescriptionSet bool
	Completed      *bool
}

// Empty reports whether the patch changes nothing.
func (p TaskPatch) Empty() bool {
	return p.Title == nil && !p.DescriptionSet && p.Completed == nil
}

// Apply copies the patched fields onto t.
func (p TaskPatch) Apply(t *Task) {
	if p.Title != nil {
		t.Title = *p.Title
	}
	if p.DescriptionSet {
		t.Description = p.Description
	}
	if p.Completed != nil {
		t.Completed = *p.Completed
	}
}
