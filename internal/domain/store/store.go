package store

import (
	"strings"

	"github.com/erp/backoffice/internal/domain/shared"
	"github.com/google/uuid"
)

// Address holds the flat address columns of a store.
type Address struct {
	CEP         string
	Logradouro  string
	Numero      string
	Complemento string
	Bairro      string
	Cidade      string
	Estado      string
}

// Store is a sales location ("loja") owned by exactly one company.
type Store struct {
	shared.BaseEntity
	shared.SoftDeletable
	companyID uuid.UUID
	Nome      string
	CNPJ      string
	Telefone  string
	Email     string
	Address   Address
	AddressID *uuid.UUID
	Ativo     bool
}

// NewStore creates an active store owned by companyID
func NewStore(companyID uuid.UUID, nome string) *Store {
	return &Store{
		BaseEntity: shared.NewBaseEntity(),
		companyID:  companyID,
		Nome:       strings.TrimSpace(nome),
		Ativo:      true,
	}
}

// Rehydrate rebuilds a persisted store. Only repositories call it.
func Rehydrate(base shared.BaseEntity, deleted shared.SoftDeletable, companyID uuid.UUID) *Store {
	return &Store{BaseEntity: base, SoftDeletable: deleted, companyID: companyID}
}

// CompanyID returns the owning company. It never changes after creation.
func (s *Store) CompanyID() uuid.UUID {
	return s.companyID
}

// BelongsTo reports whether the store is owned by companyID
func (s *Store) BelongsTo(companyID uuid.UUID) bool {
	return s.companyID == companyID
}

// Summary is the compact projection used by selection lists.
type Summary struct {
	ID   uuid.UUID
	Nome string
	CNPJ string
}
