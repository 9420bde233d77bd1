package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/kiranshivaraju/todoapi/pkg/models"
)

var ErrNotFound = errors.New("resource not found")
var ErrDuplicateKey = errors.New("duplicate key violation")

// ConflictError reports which unique field a write collided on.
// errors.Is(err, ErrDuplicateKey) holds for every ConflictError.
type ConflictError struct {
	Field string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("duplicate %s", e.Field)
}

func (e *ConflictError) Unwrap() error { return ErrDuplicateKey }

// Store is the data access interface. All database operations go through here.
// Every task operation is filtered by company ID; callers never see rows
// belonging to another company.
type Store interface {
	Ping(ctx context.Context) error

	CreateCompany(ctx context.Context, c *models.Company) error
	ListCompanies(ctx context.Context) ([]*models.Company, error)
	GetCompanyByKeyDigest(ctx context.Context, digest string) (*models.Company, error)

	ListTasks(ctx context.Context, companyID uuid.UUID) ([]*models.Task, error)
	CreateTask(ctx context.Context, t *models.Task) error
	GetTask(ctx context.Context, companyID, id uuid.UUID) (*models.Task, error)
	UpdateTask(ctx context.Context, companyID, id uuid.UUID, patch models.TaskPatch) (*models.Task, error)
	DeleteTask(ctx context.Context, companyID, id uuid.UUID) error
}
