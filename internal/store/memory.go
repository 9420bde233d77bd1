package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/kiranshivaraju/todoapi/pkg/models"
)

// MemoryStore is a process-local Store used for development and tests.
// It enforces the same uniqueness and company scoping rules as Postgres.
type MemoryStore struct {
	mu        sync.RWMutex
	companies map[uuid.UUID]*models.Company
	tasks     map[uuid.UUID]*models.Task
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		companies: make(map[uuid.UUID]*models.Company),
		tasks:     make(map[uuid.UUID]*models.Task),
	}
}

func (s *MemoryStore) Ping(_ context.Context) error { return nil }

func (s *MemoryStore) CreateCompany(_ context.Context, c *models.Company) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.companies[c.ID]; ok {
		return &ConflictError{Field: "id"}
	}
	for _, existing := range s.companies {
		if existing.Name == c.Name {
			return &ConflictError{Field: "name"}
		}
		if existing.APIKeyDigest == c.APIKeyDigest {
			return &ConflictError{Field: "api_key"}
		}
	}
	cp := *c
	cp.APIKey = ""
	s.companies[c.ID] = &cp
	return nil
}

func (s *MemoryStore) ListCompanies(_ context.Context) ([]*models.Company, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*models.Company, 0, len(s.companies))
	for _, c := range s.companies {
		cp := *c
		cp.APIKeyDigest = ""
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s *MemoryStore) GetCompanyByKeyDigest(_ context.Context, digest string) (*models.Company, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, c := range s.companies {
		if c.APIKeyDigest == digest {
			cp := *c
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}

func (s *MemoryStore) ListTasks(_ context.Context, companyID uuid.UUID) ([]*models.Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []*models.Task{}
	for _, t := range s.tasks {
		if t.CompanyID == companyID {
			cp := *t
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s *MemoryStore) CreateTask(_ context.Context, t *models.Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.tasks[t.ID]; ok {
		return &ConflictError{Field: "id"}
	}
	cp := *t
	s.tasks[t.ID] = &cp
	return nil
}

func (s *MemoryStore) GetTask(_ context.Context, companyID, id uuid.UUID) (*models.Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	t, ok := s.tasks[id]
	if !ok || t.CompanyID != companyID {
		return nil, ErrNotFound
	}
	cp := *t
	return &cp, nil
}

func (s *MemoryStore) UpdateTask(_ context.Context, companyID, id uuid.UUID, patch models.TaskPatch) (*models.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.tasks[id]
	if !ok || t.CompanyID != companyID {
		return nil, ErrNotFound
	}
	patch.Apply(t)
	t.UpdatedAt = time.Now().UTC()
	cp := *t
	return &cp, nil
}

func (s *MemoryStore) DeleteTask(_ context.Context, companyID, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.tasks[id]
	if !ok || t.CompanyID != companyID {
		return ErrNotFound
	}
	delete(s.tasks, id)
	return nil
}
