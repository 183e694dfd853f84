package persistence

import (
	"context"

	appshared "github.com/erp/backoffice/internal/application/shared"
	"gorm.io/gorm"
)

// GormUnitOfWork implements UnitOfWork with gorm transactions
type GormUnitOfWork struct {
	db *gorm.DB
}

// NewGormUnitOfWork creates a new GormUnitOfWork
func NewGormUnitOfWork(db *gorm.DB) *GormUnitOfWork {
	return &GormUnitOfWork{db: db}
}

// Do runs fn with repositories bound to a single transaction. gorm rolls back
// when fn returns an error or panics.
func (u *GormUnitOfWork) Do(ctx context.Context, fn func(repos appshared.Repositories) error) error {
	return u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewRepositories(tx))
	})
}

// NewRepositories builds every repository on the given handle
func NewRepositories(db *gorm.DB) appshared.Repositories {
	return appshared.Repositories{
		Companies:   NewGormCompanyRepository(db),
		Stores:      NewGormStoreRepository(db),
		Users:       NewGormUserRepository(db),
		Roles:       NewGormRoleRepository(db),
		Permissions: NewGormPermissionRepository(db),
	}
}

var _ appshared.UnitOfWork = (*GormUnitOfWork)(nil)
