package identity

import (
	"context"

	"github.com/erp/backoffice/internal/domain/shared"
	"github.com/google/uuid"
)

// UserFilter adds the company constraint to the common listing filter.
type UserFilter struct {
	shared.ListFilter
	CompanyID *uuid.UUID
}

// SyncResult reports the links changed by a synchronization.
type SyncResult struct {
	Added   []uuid.UUID
	Removed []uuid.UUID
}

// UserRepository defines the interface for user persistence
type UserRepository interface {
	Create(ctx context.Context, user *User) error
	Update(ctx context.Context, user *User) error
	Delete(ctx context.Context, id uuid.UUID) error

	// FindByID loads the user with company, stores and roles
	FindByID(ctx context.Context, id uuid.UUID) (*User, error)
	FindByEmail(ctx context.Context, email string) (*User, error)

	// List searches name and email, filters by status and company
	List(ctx context.Context, filter UserFilter) ([]User, int64, error)

	ExistsByEmail(ctx context.Context, email string, excludeID *uuid.UUID) (bool, error)

	// SyncStores makes the user's store links equal storeIDs. Unknown ids
	// fail with NOT_FOUND naming the first one; unchanged links are untouched.
	SyncStores(ctx context.Context, userID uuid.UUID, storeIDs []uuid.UUID) (SyncResult, error)

	// SyncRoles makes the user's role links equal roleIDs
	SyncRoles(ctx context.Context, userID uuid.UUID, roleIDs []uuid.UUID) (SyncResult, error)
}

// RoleRepository defines the interface for role persistence
type RoleRepository interface {
	Create(ctx context.Context, role *Role) error
	Update(ctx context.Context, role *Role) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindByID(ctx context.Context, id uuid.UUID) (*Role, error)
	List(ctx context.Context, filter shared.ListFilter) ([]Role, int64, error)
	ExistsByName(ctx context.Context, name, guard string, excludeID *uuid.UUID) (bool, error)

	// SyncPermissions makes the role's permission links equal permissionIDs
	SyncPermissions(ctx context.Context, roleID uuid.UUID, permissionIDs []uuid.UUID) (SyncResult, error)
}

// PermissionRepository defines the interface for permission persistence
type PermissionRepository interface {
	Create(ctx context.Context, permission *Permission) error
	Update(ctx context.Context, permission *Permission) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindByID(ctx context.Context, id uuid.UUID) (*Permission, error)
	List(ctx context.Context, filter shared.ListFilter) ([]Permission, int64, error)
	ExistsByName(ctx context.Context, name, guard string, excludeID *uuid.UUID) (bool, error)
}
