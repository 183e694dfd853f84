package models

import (
	"time"

	"github.com/erp/backoffice/internal/domain/company"
)

// CompanyModel is the persistence model for the empresas table
type CompanyModel struct {
	BaseModel
	SoftDeleteModel
	RazaoSocial   string     `gorm:"type:varchar(255);not null"`
	NomeFantasia  string     `gorm:"type:varchar(255);not null"`
	CNPJ          *string    `gorm:"column:cnpj;type:varchar(18)"`
	Email         string     `gorm:"type:varchar(255);not null"`
	Telefone      string     `gorm:"type:varchar(20)"`
	LogoPath      string     `gorm:"type:varchar(500)"`
	Ativo         bool       `gorm:"not null"`
	DataAdesao    *time.Time `gorm:"type:date"`
	DataExpiracao *time.Time `gorm:"type:date"`
}

// TableName returns the table name for GORM
func (CompanyModel) TableName() string {
	return "empresas"
}

// ToDomain converts the persistence model to a domain Company
func (m *CompanyModel) ToDomain() *company.Company {
	return &company.Company{
		BaseEntity:    m.BaseModel.ToDomain(),
		SoftDeletable: m.SoftDeleteModel.ToDomain(),
		RazaoSocial:   m.RazaoSocial,
		NomeFantasia:  m.NomeFantasia,
		CNPJ:          m.CNPJ,
		Email:         m.Email,
		Telefone:      m.Telefone,
		LogoPath:      m.LogoPath,
		Ativo:         m.Ativo,
		DataAdesao:    m.DataAdesao,
		DataExpiracao: m.DataExpiracao,
	}
}

// CompanyModelFromDomain converts a domain Company to the persistence model
func CompanyModelFromDomain(c *company.Company) *CompanyModel {
	m := &CompanyModel{
		RazaoSocial:   c.RazaoSocial,
		NomeFantasia:  c.NomeFantasia,
		CNPJ:          c.CNPJ,
		Email:         c.Email,
		Telefone:      c.Telefone,
		LogoPath:      c.LogoPath,
		Ativo:         c.Ativo,
		DataAdesao:    c.DataAdesao,
		DataExpiracao: c.DataExpiracao,
	}
	m.FromDomainBaseEntity(c.BaseEntity)
	m.DeletedAt = c.DeletedAt
	return m
}
