package store

import (
	"time"

	"github.com/erp/backoffice/internal/domain/store"
	"github.com/google/uuid"
)

// CreateStoreInput contains input for creating a store. The owning company
// comes from the route, never from the payload.
type CreateStoreInput struct {
	Nome        string `json:"nome" validate:"required,max=255"`
	CNPJ        string `json:"cnpj" validate:"omitempty,max=18,cnpj"`
	Telefone    string `json:"telefone" validate:"omitempty,max=20"`
	Email       string `json:"email" validate:"omitempty,email,max=255"`
	Ativo       *bool  `json:"ativo"`
	CEP         string `json:"cep" validate:"omitempty,cep"`
	Logradouro  string `json:"logradouro" validate:"omitempty,max=255"`
	Numero      string `json:"numero" validate:"omitempty,max=20"`
	Complemento string `json:"complemento" validate:"omitempty,max=255"`
	Bairro      string `json:"bairro" validate:"omitempty,max=255"`
	Cidade      string `json:"cidade" validate:"omitempty,max=255"`
	Estado      string `json:"estado" validate:"omitempty,len=2"`

	// Endereco is accepted for form compatibility and discarded; the address
	// lives in the flat columns above.
	Endereco map[string]any `json:"endereco,omitempty" validate:"-"`
}

// UpdateStoreInput contains input for updating a store. Nil fields keep
// their current value.
type UpdateStoreInput struct {
	Nome        *string `json:"nome" validate:"omitempty,min=1,max=255"`
	CNPJ        *string `json:"cnpj" validate:"omitempty,max=18,cnpj"`
	Telefone    *string `json:"telefone" validate:"omitempty,max=20"`
	Email       *string `json:"email" validate:"omitempty,email,max=255"`
	Ativo       *bool   `json:"ativo"`
	CEP         *string `json:"cep" validate:"omitempty,cep"`
	Logradouro  *string `json:"logradouro" validate:"omitempty,max=255"`
	Numero      *string `json:"numero" validate:"omitempty,max=20"`
	Complemento *string `json:"complemento" validate:"omitempty,max=255"`
	Bairro      *string `json:"bairro" validate:"omitempty,max=255"`
	Cidade      *string `json:"cidade" validate:"omitempty,max=255"`
	Estado      *string `json:"estado" validate:"omitempty,len=2"`

	Endereco map[string]any `json:"endereco,omitempty" validate:"-"`
}

// StoreDTO represents store data transfer object
type StoreDTO struct {
	ID          uuid.UUID  `json:"id"`
	EmpresaID   uuid.UUID  `json:"empresa_id"`
	Nome        string     `json:"nome"`
	CNPJ        string     `json:"cnpj"`
	Telefone    string     `json:"telefone"`
	Email       string     `json:"email"`
	CEP         string     `json:"cep"`
	Logradouro  string     `json:"logradouro"`
	Numero      string     `json:"numero"`
	Complemento string     `json:"complemento"`
	Bairro      string     `json:"bairro"`
	Cidade      string     `json:"cidade"`
	Estado      string     `json:"estado"`
	EnderecoID  *uuid.UUID `json:"endereco_id"`
	Ativo       bool       `json:"ativo"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// SummaryDTO is the compact store projection used by selection lists
type SummaryDTO struct {
	ID   uuid.UUID `json:"id"`
	Nome string    `json:"nome"`
	CNPJ string    `json:"cnpj"`
}

// ToStoreDTO converts a domain Store to StoreDTO
func ToStoreDTO(s *store.Store) StoreDTO {
	return StoreDTO{
		ID:          s.ID,
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
		CreatedAt:   s.CreatedAt,
		UpdatedAt:   s.UpdatedAt,
	}
}
