// Package shared holds ports used across application services.
package shared

import (
	"context"

	"github.com/erp/backoffice/internal/domain/company"
	"github.com/erp/backoffice/internal/domain/identity"
	"github.com/erp/backoffice/internal/domain/store"
)

// Repositories is a set of repositories bound to one transaction handle.
type Repositories struct {
	Companies   company.Repository
	Stores      store.Repository
	Users       identity.UserRepository
	Roles       identity.RoleRepository
	Permissions identity.PermissionRepository
}

// UnitOfWork runs fn inside a transaction. Every repository in the handle
// passed to fn writes through that transaction; returning an error or
// panicking rolls everything back.
type UnitOfWork interface {
	Do(ctx context.Context, fn func(repos Repositories) error) error
}
