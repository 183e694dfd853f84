package persistence

import (
	"context"

	"github.com/erp/backoffice/internal/domain/identity"
	"github.com/erp/backoffice/internal/domain/shared"
	"github.com/erp/backoffice/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormRoleRepository implements RoleRepository using GORM
type GormRoleRepository struct {
	db *gorm.DB
}

// NewGormRoleRepository creates a new GormRoleRepository
func NewGormRoleRepository(db *gorm.DB) *GormRoleRepository {
	return &GormRoleRepository{db: db}
}

// Create inserts a role
func (r *GormRoleRepository) Create(ctx context.Context, role *identity.Role) error {
	return translate(r.db.WithContext(ctx).Create(models.RoleModelFromDomain(role)).Error)
}

// Update writes name and guard
func (r *GormRoleRepository) Update(ctx context.Context, role *identity.Role) error {
	role.Touch()
	result := r.db.WithContext(ctx).
		Model(&models.RoleModel{}).
		Where("id = ?", role.ID).
		Updates(map[string]any{
			"name":       role.Name,
			"guard_name": role.GuardName,
			"updated_at": role.UpdatedAt,
		})
	if result.Error != nil {
		return translate(result.Error)
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Delete hard-deletes a role and its links
func (r *GormRoleRepository) Delete(ctx context.Context, id uuid.UUID) error {
	db := r.db.WithContext(ctx)
	if err := db.Where("role_id = ?", id).Delete(&models.RolePermissionModel{}).Error; err != nil {
		return err
	}
	if err := db.Where("role_id = ?", id).Delete(&models.UserRoleModel{}).Error; err != nil {
		return err
	}
	result := db.Delete(&models.RoleModel{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// FindByID loads a role with its permission ids
func (r *GormRoleRepository) FindByID(ctx context.Context, id uuid.UUID) (*identity.Role, error) {
	var model models.RoleModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	role := model.ToDomain()
	ids, err := currentLinks(ctx, r.db, rolePermissionLinks, role.ID)
	if err != nil {
		return nil, err
	}
	role.PermissionIDs = ids
	return role, nil
}

// List returns a page of roles searched by name, newest first
func (r *GormRoleRepository) List(ctx context.Context, filter shared.ListFilter) ([]identity.Role, int64, error) {
	var rows []models.RoleModel
	total, err := listNamed(ctx, r.db, &models.RoleModel{}, "roles", filter, &rows)
	if err != nil {
		return nil, 0, err
	}
	roles := make([]identity.Role, len(rows))
	for i := range rows {
		roles[i] = *rows[i].ToDomain()
	}
	return roles, total, nil
}

// ExistsByName checks name uniqueness within a guard
func (r *GormRoleRepository) ExistsByName(ctx context.Context, name, guard string, excludeID *uuid.UUID) (bool, error) {
	return existsByName(ctx, r.db, &models.RoleModel{}, name, guard, excludeID)
}

// SyncPermissions replaces the role's permission set
func (r *GormRoleRepository) SyncPermissions(ctx context.Context, roleID uuid.UUID, permissionIDs []uuid.UUID) (identity.SyncResult, error) {
	return syncLinks(ctx, r.db, rolePermissionLinks, roleID, permissionIDs)
}

// GormPermissionRepository implements PermissionRepository using GORM
type GormPermissionRepository struct {
	db *gorm.DB
}

// NewGormPermissionRepository creates a new GormPermissionRepository
func NewGormPermissionRepository(db *gorm.DB) *GormPermissionRepository {
	return &GormPermissionRepository{db: db}
}

// Create inserts a permission
func (r *GormPermissionRepository) Create(ctx context.Context, p *identity.Permission) error {
	return translate(r.db.WithContext(ctx).Create(models.PermissionModelFromDomain(p)).Error)
}

// Update writes name and guard
func (r *GormPermissionRepository) Update(ctx context.Context, p *identity.Permission) error {
	p.Touch()
	result := r.db.WithContext(ctx).
		Model(&models.PermissionModel{}).
		Where("id = ?", p.ID).
		Updates(map[string]any{
			"name":       p.Name,
			"guard_name": p.GuardName,
			"updated_at": p.UpdatedAt,
		})
	if result.Error != nil {
		return translate(result.Error)
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Delete hard-deletes a permission and detaches it from roles
func (r *GormPermissionRepository) Delete(ctx context.Context, id uuid.UUID) error {
	db := r.db.WithContext(ctx)
	if err := db.Where("permission_id = ?", id).Delete(&models.RolePermissionModel{}).Error; err != nil {
		return err
	}
	result := db.Delete(&models.PermissionModel{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// FindByID finds a permission
func (r *GormPermissionRepository) FindByID(ctx context.Context, id uuid.UUID) (*identity.Permission, error) {
	var model models.PermissionModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return model.ToDomain(), nil
}

// List returns a page of permissions searched by name, newest first
func (r *GormPermissionRepository) List(ctx context.Context, filter shared.ListFilter) ([]identity.Permission, int64, error) {
	var rows []models.PermissionModel
	total, err := listNamed(ctx, r.db, &models.PermissionModel{}, "permissions", filter, &rows)
	if err != nil {
		return nil, 0, err
	}
	perms := make([]identity.Permission, len(rows))
	for i := range rows {
		perms[i] = *rows[i].ToDomain()
	}
	return perms, total, nil
}

// ExistsByName checks name uniqueness within a guard
func (r *GormPermissionRepository) ExistsByName(ctx context.Context, name, guard string, excludeID *uuid.UUID) (bool, error) {
	return existsByName(ctx, r.db, &models.PermissionModel{}, name, guard, excludeID)
}

// listNamed pages through a table searched by its name column. Roles and
// permissions carry no status flag, so the status filter does not apply.
func listNamed(ctx context.Context, db *gorm.DB, model any, table string, filter shared.ListFilter, dest any) (int64, error) {
	filter = filter.Normalize()
	query := db.WithContext(ctx).
		Model(model).
		Scopes(SearchAny(filter.Search, table+".name"))

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return 0, err
	}
	if err := query.Scopes(Latest(table), Paginate(filter)).Find(dest).Error; err != nil {
		return 0, err
	}
	return total, nil
}

func existsByName(ctx context.Context, db *gorm.DB, model any, name, guard string, excludeID *uuid.UUID) (bool, error) {
	query := db.WithContext(ctx).Model(model).Where("name = ? AND guard_name = ?", name, guard)
	if excludeID != nil {
		query = query.Where("id <> ?", *excludeID)
	}
	var count int64
	if err := query.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

var (
	_ identity.RoleRepository       = (*GormRoleRepository)(nil)
	_ identity.PermissionRepository = (*GormPermissionRepository)(nil)
)
