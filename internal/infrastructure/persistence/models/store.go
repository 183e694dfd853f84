package models

import (
	"github.com/erp/backoffice/internal/domain/store"
	"github.com/google/uuid"
)

// StoreModel is the persistence model for the lojas table. Address fields
// are flat columns; EnderecoID only references the address table.
type StoreModel struct {
	BaseModel
	SoftDeleteModel
	EmpresaID   uuid.UUID  `gorm:"type:uuid;not null;index"`
	Nome        string     `gorm:"type:varchar(255);not null"`
	CNPJ        string     `gorm:"column:cnpj;type:varchar(18)"`
	Telefone    string     `gorm:"type:varchar(20)"`
	Email       string     `gorm:"type:varchar(255)"`
	CEP         string     `gorm:"column:cep;type:varchar(9)"`
	Logradouro  string     `gorm:"type:varchar(255)"`
	Numero      string     `gorm:"type:varchar(20)"`
	Complemento string     `gorm:"type:varchar(255)"`
	Bairro      string     `gorm:"type:varchar(255)"`
	Cidade      string     `gorm:"type:varchar(255)"`
	Estado      string     `gorm:"type:varchar(2)"`
	EnderecoID  *uuid.UUID `gorm:"type:uuid"`
	Ativo       bool       `gorm:"not null"`
}

// TableName returns the table name for GORM
func (StoreModel) TableName() string {
	return "lojas"
}

// ToDomain converts the persistence model to a domain Store
func (m *StoreModel) ToDomain() *store.Store {
	s := store.Rehydrate(m.BaseModel.ToDomain(), m.SoftDeleteModel.ToDomain(), m.EmpresaID)
	s.Nome = m.Nome
	s.CNPJ = m.CNPJ
	s.Telefone = m.Telefone
	s.Email = m.Email
	s.Address = store.Address{
		CEP:         m.CEP,
		Logradouro:  m.Logradouro,
		Numero:      m.Numero,
		Complemento: m.Complemento,
		Bairro:      m.Bairro,
		Cidade:      m.Cidade,
		Estado:      m.Estado,
	}
	s.AddressID = m.EnderecoID
	s.Ativo = m.Ativo
	return s
}

// StoreModelFromDomain converts a domain Store to the persistence model
func StoreModelFromDomain(s *store.Store) *StoreModel {
	m := &StoreModel{
		EmpresaID:   s.CompanyID(),
		Nome:        s.Nome,
		CNPJ:        s.CNPJ,
		Telefone:    s.Telefone,
		Email:       s.Email,
		CEP:         s.Address.CEP,
		Logradouro:  s.Address.Logradouro,
		Numero:      s.Address.Numero,
		Complemento: s.Address.Complemento,
		Bairro:      s.Address.Bairro,
		Cidade:      s.Address.Cidade,
		Estado:      s.Address.Estado,
		EnderecoID:  s.AddressID,
		Ativo:       s.Ativo,
	}
	m.FromDomainBaseEntity(s.BaseEntity)
	m.DeletedAt = s.DeletedAt
	return m
}
