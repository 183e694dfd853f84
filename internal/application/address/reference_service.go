package address

import (
	"context"

	"github.com/erp/backoffice/internal/domain/location"
	"github.com/google/uuid"
)

// SubdivisionDTO is a federative unit
type SubdivisionDTO struct {
	ID   uuid.UUID `json:"id"`
	Nome string    `json:"nome"`
	UF   string    `json:"uf"`
}

// MunicipalityDTO is a municipality of a federative unit
type MunicipalityDTO struct {
	ID         uuid.UUID `json:"id"`
	EstadoID   uuid.UUID `json:"estado_id"`
	Nome       string    `json:"nome"`
	CodigoIBGE string    `json:"codigo_ibge"`
}

// ReferenceService reads the address reference tables
type ReferenceService struct {
	locations location.Repository
}

// NewReferenceService creates a reference data service
func NewReferenceService(locations location.Repository) *ReferenceService {
	return &ReferenceService{locations: locations}
}

// ListSubdivisions returns every federative unit ordered by name
func (s *ReferenceService) ListSubdivisions(ctx context.Context) ([]SubdivisionDTO, error) {
	rows, err := s.locations.ListSubdivisions(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]SubdivisionDTO, len(rows))
	for i, r := range rows {
		out[i] = SubdivisionDTO{ID: r.ID, Nome: r.Nome, UF: r.UF}
	}
	return out, nil
}

// GetSubdivision returns one federative unit
func (s *ReferenceService) GetSubdivision(ctx context.Context, id uuid.UUID) (*SubdivisionDTO, error) {
	r, err := s.locations.FindSubdivision(ctx, id)
	if err != nil {
		return nil, err
	}
	return &SubdivisionDTO{ID: r.ID, Nome: r.Nome, UF: r.UF}, nil
}

// ListMunicipalities returns municipalities matching filter
func (s *ReferenceService) ListMunicipalities(ctx context.Context, filter location.MunicipalityFilter) ([]MunicipalityDTO, error) {
	rows, err := s.locations.ListMunicipalities(ctx, filter)
	if err != nil {
		return nil, err
	}
	out := make([]MunicipalityDTO, len(rows))
	for i := range rows {
		out[i] = toMunicipalityDTO(&rows[i])
	}
	return out, nil
}

// GetMunicipality returns one municipality
func (s *ReferenceService) GetMunicipality(ctx context.Context, id uuid.UUID) (*MunicipalityDTO, error) {
	m, err := s.locations.FindMunicipality(ctx, id)
	if err != nil {
		return nil, err
	}
	dto := toMunicipalityDTO(m)
	return &dto, nil
}

func toMunicipalityDTO(m *location.Municipality) MunicipalityDTO {
	return MunicipalityDTO{ID: m.ID, EstadoID: m.EstadoID, Nome: m.Nome, CodigoIBGE: m.CodigoIBGE}
}
