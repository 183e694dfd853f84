package persistence

import (
	"context"
	"time"

	"github.com/erp/backoffice/internal/domain/company"
	"github.com/erp/backoffice/internal/domain/shared"
	"github.com/erp/backoffice/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const companiesTable = "empresas"

var companySearchColumns = []string{"empresas.razao_social", "empresas.nome_fantasia", "empresas.cnpj"}

// GormCompanyRepository implements company.Repository using GORM
type GormCompanyRepository struct {
	db *gorm.DB
}

// NewGormCompanyRepository creates a new GormCompanyRepository
func NewGormCompanyRepository(db *gorm.DB) *GormCompanyRepository {
	return &GormCompanyRepository{db: db}
}

// Create inserts a new company
func (r *GormCompanyRepository) Create(ctx context.Context, c *company.Company) error {
	model := models.CompanyModelFromDomain(c)
	return translate(r.db.WithContext(ctx).Omit(clause.Associations).Create(model).Error)
}

// Update writes every mutable column of a live company
func (r *GormCompanyRepository) Update(ctx context.Context, c *company.Company) error {
	c.Touch()
	result := r.db.WithContext(ctx).
		Model(&models.CompanyModel{}).
		Scopes(NotDeleted(companiesTable)).
		Where("id = ?", c.ID).
		Updates(map[string]any{
			"razao_social":   c.RazaoSocial,
			"nome_fantasia":  c.NomeFantasia,
			"cnpj":           c.CNPJ,
			"email":          c.Email,
			"telefone":       c.Telefone,
			"logo_path":      c.LogoPath,
			"ativo":          c.Ativo,
			"data_adesao":    c.DataAdesao,
			"data_expiracao": c.DataExpiracao,
			"updated_at":     c.UpdatedAt,
		})
	if result.Error != nil {
		return translate(result.Error)
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// SoftDelete stamps deleted_at on a live company
func (r *GormCompanyRepository) SoftDelete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).
		Model(&models.CompanyModel{}).
		Scopes(NotDeleted(companiesTable)).
		Where("id = ?", id).
		Update("deleted_at", time.Now())
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Restore clears deleted_at on a soft-deleted company
func (r *GormCompanyRepository) Restore(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).
		Model(&models.CompanyModel{}).
		Where("id = ? AND deleted_at IS NOT NULL", id).
		Updates(map[string]any{"deleted_at": nil, "updated_at": time.Now()})
	if result.Error != nil {
		return translate(result.Error)
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// FindByID finds a live company
func (r *GormCompanyRepository) FindByID(ctx context.Context, id uuid.UUID) (*company.Company, error) {
	var model models.CompanyModel
	err := r.db.WithContext(ctx).
		Scopes(NotDeleted(companiesTable)).
		First(&model, "id = ?", id).Error
	if err != nil {
		return nil, translate(err)
	}
	return model.ToDomain(), nil
}

// FindByIDWithDeleted finds a company regardless of its deletion state
func (r *GormCompanyRepository) FindByIDWithDeleted(ctx context.Context, id uuid.UUID) (*company.Company, error) {
	var model models.CompanyModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return model.ToDomain(), nil
}

// List returns a page of live companies, newest first
func (r *GormCompanyRepository) List(ctx context.Context, filter shared.ListFilter) ([]company.Company, int64, error) {
	filter = filter.Normalize()
	query := r.db.WithContext(ctx).
		Model(&models.CompanyModel{}).
		Scopes(
			NotDeleted(companiesTable),
			ActiveStatus(companiesTable, filter),
			SearchAny(filter.Search, companySearchColumns...),
		)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []models.CompanyModel
	if err := query.Scopes(Latest(companiesTable), Paginate(filter)).Find(&rows).Error; err != nil {
		return nil, 0, err
	}

	companies := make([]company.Company, len(rows))
	for i := range rows {
		companies[i] = *rows[i].ToDomain()
	}
	return companies, total, nil
}

// ExistsByCNPJ reports whether a live company already uses cnpj
func (r *GormCompanyRepository) ExistsByCNPJ(ctx context.Context, cnpj string, excludeID *uuid.UUID) (bool, error) {
	query := r.db.WithContext(ctx).
		Model(&models.CompanyModel{}).
		Scopes(NotDeleted(companiesTable)).
		Where("cnpj = ?", cnpj)
	if excludeID != nil {
		query = query.Where("id <> ?", *excludeID)
	}
	var count int64
	if err := query.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

var _ company.Repository = (*GormCompanyRepository)(nil)
