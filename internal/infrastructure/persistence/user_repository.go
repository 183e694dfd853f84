package persistence

import (
	"context"

	"github.com/erp/backoffice/internal/domain/identity"
	"github.com/erp/backoffice/internal/domain/shared"
	"github.com/erp/backoffice/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const usersTable = "users"

var userSearchColumns = []string{"users.name", "users.email"}

// GormUserRepository implements UserRepository using GORM
type GormUserRepository struct {
	db *gorm.DB
}

// NewGormUserRepository creates a new GormUserRepository
func NewGormUserRepository(db *gorm.DB) *GormUserRepository {
	return &GormUserRepository{db: db}
}

// Create inserts the user row only; links are written by SyncStores/SyncRoles
func (r *GormUserRepository) Create(ctx context.Context, user *identity.User) error {
	model := models.UserModelFromDomain(user)
	return translate(r.db.WithContext(ctx).Omit(clause.Associations).Create(model).Error)
}

// Update writes the user's own columns
func (r *GormUserRepository) Update(ctx context.Context, user *identity.User) error {
	user.Touch()
	result := r.db.WithContext(ctx).
		Model(&models.UserModel{}).
		Where("id = ?", user.ID).
		Updates(map[string]any{
			"name":       user.Name,
			"email":      user.Email,
			"cpf":        user.CPF,
			"password":   user.PasswordHash,
			"empresa_id": user.CompanyID,
			"tipo":       user.Tipo,
			"ativo":      user.Ativo,
			"updated_at": user.UpdatedAt,
		})
	if result.Error != nil {
		return translate(result.Error)
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Delete removes the user and its links
func (r *GormUserRepository) Delete(ctx context.Context, id uuid.UUID) error {
	db := r.db.WithContext(ctx)
	if err := db.Where("user_id = ?", id).Delete(&models.UserStoreModel{}).Error; err != nil {
		return err
	}
	if err := db.Where("user_id = ?", id).Delete(&models.UserRoleModel{}).Error; err != nil {
		return err
	}
	result := db.Delete(&models.UserModel{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// FindByID loads the user with company, live stores and role ids
func (r *GormUserRepository) FindByID(ctx context.Context, id uuid.UUID) (*identity.User, error) {
	var model models.UserModel
	if err := r.withRelations(r.db.WithContext(ctx)).First(&model, "users.id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	user := model.ToDomain()
	roleIDs, err := currentLinks(ctx, r.db, userRoleLinks, user.ID)
	if err != nil {
		return nil, err
	}
	user.RoleIDs = roleIDs
	return user, nil
}

// FindByEmail finds a user by email, case-insensitively
func (r *GormUserRepository) FindByEmail(ctx context.Context, email string) (*identity.User, error) {
	email = identity.NormalizeEmail(email)
	if email == "" {
		return nil, shared.ErrNotFound
	}
	var model models.UserModel
	if err := r.db.WithContext(ctx).Where("LOWER(email) = ?", email).First(&model).Error; err != nil {
		return nil, translate(err)
	}
	return model.ToDomain(), nil
}

// List returns a page of users with their company and stores, newest first
func (r *GormUserRepository) List(ctx context.Context, filter identity.UserFilter) ([]identity.User, int64, error) {
	lf := filter.ListFilter.Normalize()
	query := r.db.WithContext(ctx).
		Model(&models.UserModel{}).
		Scopes(
			ActiveStatus(usersTable, lf),
			SearchAny(lf.Search, userSearchColumns...),
		)
	if filter.CompanyID != nil {
		query = query.Where("users.empresa_id = ?", *filter.CompanyID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []models.UserModel
	err := r.withRelations(query).
		Scopes(Latest(usersTable), Paginate(lf)).
		Find(&rows).Error
	if err != nil {
		return nil, 0, err
	}

	users := make([]identity.User, len(rows))
	for i := range rows {
		users[i] = *rows[i].ToDomain()
	}
	return users, total, nil
}

// ExistsByEmail checks whether another user already uses email
func (r *GormUserRepository) ExistsByEmail(ctx context.Context, email string, excludeID *uuid.UUID) (bool, error) {
	query := r.db.WithContext(ctx).
		Model(&models.UserModel{}).
		Where("LOWER(email) = ?", identity.NormalizeEmail(email))
	if excludeID != nil {
		query = query.Where("id <> ?", *excludeID)
	}
	var count int64
	if err := query.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// SyncStores replaces the user's store set
func (r *GormUserRepository) SyncStores(ctx context.Context, userID uuid.UUID, storeIDs []uuid.UUID) (identity.SyncResult, error) {
	return syncLinks(ctx, r.db, userStoreLinks, userID, storeIDs)
}

// SyncRoles replaces the user's role set
func (r *GormUserRepository) SyncRoles(ctx context.Context, userID uuid.UUID, roleIDs []uuid.UUID) (identity.SyncResult, error) {
	return syncLinks(ctx, r.db, userRoleLinks, userID, roleIDs)
}

func (r *GormUserRepository) withRelations(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Empresa", NotDeleted(companiesTable)).
		Preload("Lojas", func(tx *gorm.DB) *gorm.DB {
			return tx.Scopes(NotDeleted(storesTable)).Order("lojas.nome ASC")
		})
}

var _ identity.UserRepository = (*GormUserRepository)(nil)
