// Package location holds address reference data: federative units
// (subdivisions) and their municipalities.
package location

import (
	"context"

	"github.com/google/uuid"
)

// Subdivision is a federative unit ("estado") identified by its UF code.
type Subdivision struct {
	ID   uuid.UUID
	Nome string
	UF   string
}

// Municipality belongs to exactly one subdivision.
type Municipality struct {
	ID         uuid.UUID
	EstadoID   uuid.UUID
	Nome       string
	CodigoIBGE string
}

// MunicipalityFilter narrows municipality listings.
type MunicipalityFilter struct {
	EstadoID *uuid.UUID
	Search   string
	Limit    int
}

// Repository reads reference data.
type Repository interface {
	ListSubdivisions(ctx context.Context) ([]Subdivision, error)
	FindSubdivision(ctx context.Context, id uuid.UUID) (*Subdivision, error)

	// FindSubdivisionByUF matches the code case-insensitively
	FindSubdivisionByUF(ctx context.Context, uf string) (*Subdivision, error)

	ListMunicipalities(ctx context.Context, filter MunicipalityFilter) ([]Municipality, error)
	FindMunicipality(ctx context.Context, id uuid.UUID) (*Municipality, error)

	// MatchMunicipality returns the first municipality of the subdivision whose
	// name contains name, case-insensitively
	MatchMunicipality(ctx context.Context, estadoID uuid.UUID, name string) (*Municipality, error)
}

// PostalAddress is the address a postal-code provider returns for a CEP.
type PostalAddress struct {
	CEP         string `json:"cep"`
	Logradouro  string `json:"logradouro"`
	Complemento string `json:"complemento"`
	Bairro      string `json:"bairro"`
	Localidade  string `json:"localidade"`
	UF          string `json:"uf"`
}
