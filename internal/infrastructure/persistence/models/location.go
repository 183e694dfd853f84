package models

import (
	"github.com/erp/backoffice/internal/domain/location"
	"github.com/google/uuid"
)

// EstadoModel is the persistence model for the estados reference table
type EstadoModel struct {
	ID   uuid.UUID `gorm:"type:uuid;primary_key"`
	Nome string    `gorm:"type:varchar(100);not null"`
	UF   string    `gorm:"column:uf;type:char(2);not null;uniqueIndex"`
}

// TableName returns the table name for GORM
func (EstadoModel) TableName() string {
	return "estados"
}

// ToDomain converts to a domain Subdivision
func (m *EstadoModel) ToDomain() location.Subdivision {
	return location.Subdivision{ID: m.ID, Nome: m.Nome, UF: m.UF}
}

// MunicipioModel is the persistence model for the municipios reference table
type MunicipioModel struct {
	ID         uuid.UUID `gorm:"type:uuid;primary_key"`
	EstadoID   uuid.UUID `gorm:"type:uuid;not null;index"`
	Nome       string    `gorm:"type:varchar(150);not null"`
	CodigoIBGE string    `gorm:"column:codigo_ibge;type:varchar(7)"`
}

// TableName returns the table name for GORM
func (MunicipioModel) TableName() string {
	return "municipios"
}

// ToDomain converts to a domain Municipality
func (m *MunicipioModel) ToDomain() location.Municipality {
	return location.Municipality{ID: m.ID, EstadoID: m.EstadoID, Nome: m.Nome, CodigoIBGE: m.CodigoIBGE}
}
