package persistence

import (
	"context"
	"strings"

	"github.com/erp/backoffice/internal/domain/location"
	"github.com/erp/backoffice/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const defaultMunicipalityLimit = 50

// GormLocationRepository implements location.Repository using GORM
type GormLocationRepository struct {
	db *gorm.DB
}

// NewGormLocationRepository creates a new GormLocationRepository
func NewGormLocationRepository(db *gorm.DB) *GormLocationRepository {
	return &GormLocationRepository{db: db}
}

// ListSubdivisions returns every UF ordered by name
func (r *GormLocationRepository) ListSubdivisions(ctx context.Context) ([]location.Subdivision, error) {
	var rows []models.EstadoModel
	if err := r.db.WithContext(ctx).Order("nome ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]location.Subdivision, len(rows))
	for i := range rows {
		out[i] = rows[i].ToDomain()
	}
	return out, nil
}

// FindSubdivision finds a UF by id
func (r *GormLocationRepository) FindSubdivision(ctx context.Context, id uuid.UUID) (*location.Subdivision, error) {
	var row models.EstadoModel
	if err := r.db.WithContext(ctx).First(&row, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	s := row.ToDomain()
	return &s, nil
}

// FindSubdivisionByUF finds a UF by its two-letter code
func (r *GormLocationRepository) FindSubdivisionByUF(ctx context.Context, uf string) (*location.Subdivision, error) {
	var row models.EstadoModel
	err := r.db.WithContext(ctx).
		Where("UPPER(uf) = ?", strings.ToUpper(strings.TrimSpace(uf))).
		First(&row).Error
	if err != nil {
		return nil, translate(err)
	}
	s := row.ToDomain()
	return &s, nil
}

// ListMunicipalities lists municipalities, optionally within one UF and
// matching a name fragment
func (r *GormLocationRepository) ListMunicipalities(ctx context.Context, filter location.MunicipalityFilter) ([]location.Municipality, error) {
	limit := filter.Limit
	if limit <= 0 || limit > 500 {
		limit = defaultMunicipalityLimit
	}
	query := r.db.WithContext(ctx).Model(&models.MunicipioModel{}).Scopes(SearchAny(filter.Search, "nome"))
	if filter.EstadoID != nil {
		query = query.Where("estado_id = ?", *filter.EstadoID)
	}
	var rows []models.MunicipioModel
	if err := query.Order("nome ASC").Limit(limit).Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]location.Municipality, len(rows))
	for i := range rows {
		out[i] = rows[i].ToDomain()
	}
	return out, nil
}

// FindMunicipality finds a municipality by id
func (r *GormLocationRepository) FindMunicipality(ctx context.Context, id uuid.UUID) (*location.Municipality, error) {
	var row models.MunicipioModel
	if err := r.db.WithContext(ctx).First(&row, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	m := row.ToDomain()
	return &m, nil
}

// MatchMunicipality finds the first municipality of a UF whose name contains
// name, case-insensitively
func (r *GormLocationRepository) MatchMunicipality(ctx context.Context, estadoID uuid.UUID, name string) (*location.Municipality, error) {
	var row models.MunicipioModel
	err := r.db.WithContext(ctx).
		Where("estado_id = ?", estadoID).
		Scopes(SearchAny(name, "nome")).
		Order("nome ASC").
		First(&row).Error
	if err != nil {
		return nil, translate(err)
	}
	m := row.ToDomain()
	return &m, nil
}

var _ location.Repository = (*GormLocationRepository)(nil)
