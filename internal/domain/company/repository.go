package company

import (
	"context"

	"github.com/erp/backoffice/internal/domain/shared"
	"github.com/google/uuid"
)

// Repository defines persistence for companies. Every read excludes
// soft-deleted rows except FindByIDWithDeleted.
type Repository interface {
	Create(ctx context.Context, company *Company) error
	Update(ctx context.Context, company *Company) error

	// SoftDelete stamps deleted_at on a live company
	SoftDelete(ctx context.Context, id uuid.UUID) error

	// Restore clears deleted_at
	Restore(ctx context.Context, id uuid.UUID) error

	FindByID(ctx context.Context, id uuid.UUID) (*Company, error)
	FindByIDWithDeleted(ctx context.Context, id uuid.UUID) (*Company, error)

	// List searches razao_social, nome_fantasia and cnpj
	List(ctx context.Context, filter shared.ListFilter) ([]Company, int64, error)

	// ExistsByCNPJ checks live companies only, optionally ignoring one id
	ExistsByCNPJ(ctx context.Context, cnpj string, excludeID *uuid.UUID) (bool, error)
}
