package store

import (
	"context"

	"github.com/erp/backoffice/internal/domain/shared"
	"github.com/google/uuid"
)

// Repository defines persistence for stores. Reads exclude soft-deleted rows.
type Repository interface {
	Create(ctx context.Context, store *Store) error

	// Update writes mutable fields; empresa_id is never part of the update
	Update(ctx context.Context, store *Store) error

	SoftDelete(ctx context.Context, id uuid.UUID) error

	FindByID(ctx context.Context, id uuid.UUID) (*Store, error)

	// List searches nome, cnpj and email within one company
	List(ctx context.Context, companyID uuid.UUID, filter shared.ListFilter) ([]Store, int64, error)

	// ListActiveSummaries returns active stores of a company ordered by name
	ListActiveSummaries(ctx context.Context, companyID uuid.UUID) ([]Summary, error)

	// ExistingIDs returns the subset of ids that reference live stores
	ExistingIDs(ctx context.Context, ids []uuid.UUID) ([]uuid.UUID, error)
}
