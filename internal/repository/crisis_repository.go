package repository

import (
	"context"
	"errors"

	"github.com/spec-kit/crisis-service/internal/domain"
)

var (
	// ErrNotFound is returned when no crisis matches the given id.
	ErrNotFound = errors.New("crisis not found")
	// ErrConflict is returned when the store rejects a write because of concurrent access.
	ErrConflict = errors.New("crisis write conflict")
)

// CrisisRepository encapsulates crisis persistence.
type CrisisRepository interface {
	Create(ctx context.Context, crisis *domain.Crisis) error
	GetByID(ctx context.Context, id int64) (*domain.Crisis, error)
	List(ctx context.Context) ([]domain.Crisis, error)
	Search(ctx context.Context, query string) ([]domain.Crisis, error)
	Filter(ctx context.Context, filter domain.CrisisFilter) ([]domain.Crisis, error)
	Update(ctx context.Context, crisis *domain.Crisis) error
	Delete(ctx context.Context, id int64) error
	Exists(ctx context.Context, id int64) (bool, error)
	Ping(ctx context.Context) error
}
