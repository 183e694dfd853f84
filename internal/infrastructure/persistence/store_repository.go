package persistence

import (
	"context"
	"time"

	"github.com/erp/backoffice/internal/domain/shared"
	"github.com/erp/backoffice/internal/domain/store"
	"github.com/erp/backoffice/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const storesTable = "lojas"

var storeSearchColumns = []string{"lojas.nome", "lojas.cnpj", "lojas.email"}

// GormStoreRepository implements store.Repository using GORM
type GormStoreRepository struct {
	db *gorm.DB
}

// NewGormStoreRepository creates a new GormStoreRepository
func NewGormStoreRepository(db *gorm.DB) *GormStoreRepository {
	return &GormStoreRepository{db: db}
}

// Create inserts a store
func (r *GormStoreRepository) Create(ctx context.Context, s *store.Store) error {
	model := models.StoreModelFromDomain(s)
	return translate(r.db.WithContext(ctx).Omit(clause.Associations).Create(model).Error)
}

// Update writes the mutable columns. empresa_id is not among them.
func (r *GormStoreRepository) Update(ctx context.Context, s *store.Store) error {
	s.Touch()
	result := r.db.WithContext(ctx).
		Model(&models.StoreModel{}).
		Scopes(NotDeleted(storesTable)).
		Where("id = ?", s.ID).
		Updates(map[string]any{
			"nome":        s.Nome,
			"cnpj":        s.CNPJ,
			"telefone":    s.Telefone,
			"email":       s.Email,
			"cep":         s.Address.CEP,
			"logradouro":  s.Address.Logradouro,
			"numero":      s.Address.Numero,
			"complemento": s.Address.Complemento,
			"bairro":      s.Address.Bairro,
			"cidade":      s.Address.Cidade,
			"estado":      s.Address.Estado,
			"ativo":       s.Ativo,
			"updated_at":  s.UpdatedAt,
		})
	if result.Error != nil {
		return translate(result.Error)
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// SoftDelete stamps deleted_at on a live store
func (r *GormStoreRepository) SoftDelete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).
		Model(&models.StoreModel{}).
		Scopes(NotDeleted(storesTable)).
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

// FindByID finds a live store
func (r *GormStoreRepository) FindByID(ctx context.Context, id uuid.UUID) (*store.Store, error) {
	var model models.StoreModel
	err := r.db.WithContext(ctx).
		Scopes(NotDeleted(storesTable)).
		First(&model, "id = ?", id).Error
	if err != nil {
		return nil, translate(err)
	}
	return model.ToDomain(), nil
}

// List returns a page of a company's live stores, newest first
func (r *GormStoreRepository) List(ctx context.Context, companyID uuid.UUID, filter shared.ListFilter) ([]store.Store, int64, error) {
	filter = filter.Normalize()
	query := r.db.WithContext(ctx).
		Model(&models.StoreModel{}).
		Where("lojas.empresa_id = ?", companyID).
		Scopes(
			NotDeleted(storesTable),
			ActiveStatus(storesTable, filter),
			SearchAny(filter.Search, storeSearchColumns...),
		)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []models.StoreModel
	if err := query.Scopes(Latest(storesTable), Paginate(filter)).Find(&rows).Error; err != nil {
		return nil, 0, err
	}

	stores := make([]store.Store, len(rows))
	for i := range rows {
		stores[i] = *rows[i].ToDomain()
	}
	return stores, total, nil
}

// ListActiveSummaries returns active stores of a company ordered by name
func (r *GormStoreRepository) ListActiveSummaries(ctx context.Context, companyID uuid.UUID) ([]store.Summary, error) {
	var rows []models.StoreModel
	err := r.db.WithContext(ctx).
		Select("id", "nome", "cnpj").
		Where("empresa_id = ? AND ativo = ?", companyID, true).
		Scopes(NotDeleted(storesTable)).
		Order("nome ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make([]store.Summary, len(rows))
	for i, row := range rows {
		out[i] = store.Summary{ID: row.ID, Nome: row.Nome, CNPJ: row.CNPJ}
	}
	return out, nil
}

// ExistingIDs returns the ids among the input that reference live stores
func (r *GormStoreRepository) ExistingIDs(ctx context.Context, ids []uuid.UUID) ([]uuid.UUID, error) {
	if len(ids) == 0 {
		return []uuid.UUID{}, nil
	}
	var found []uuid.UUID
	err := r.db.WithContext(ctx).
		Model(&models.StoreModel{}).
		Scopes(NotDeleted(storesTable)).
		Where("id IN ?", ids).
		Pluck("id", &found).Error
	if err != nil {
		return nil, err
	}
	return found, nil
}

var _ store.Repository = (*GormStoreRepository)(nil)
