package company

import (
	"strings"
	"time"

	"github.com/erp/backoffice/internal/domain/shared"
)

// Company is the tenant aggregate ("empresa"). It owns stores and users.
type Company struct {
	shared.BaseEntity
	shared.SoftDeletable
	RazaoSocial   string
	NomeFantasia  string
	CNPJ          *string
	Email         string
	Telefone      string
	LogoPath      string
	Ativo         bool
	DataAdesao    *time.Time
	DataExpiracao *time.Time
}

// ErrInvalidMembership is returned when the membership window is inverted.
var ErrInvalidMembership = shared.NewDomainError(shared.CodeValidation,
	"A data de expiração deve ser posterior à data de adesão")

// NewCompany creates an active company
func NewCompany(razaoSocial, nomeFantasia, email string) *Company {
	return &Company{
		BaseEntity:   shared.NewBaseEntity(),
		RazaoSocial:  strings.TrimSpace(razaoSocial),
		NomeFantasia: strings.TrimSpace(nomeFantasia),
		Email:        strings.ToLower(strings.TrimSpace(email)),
		Ativo:        true,
	}
}

// SetCNPJ stores the formatted tax id; blank clears it.
func (c *Company) SetCNPJ(cnpj string) {
	cnpj = strings.TrimSpace(cnpj)
	if cnpj == "" {
		c.CNPJ = nil
		return
	}
	c.CNPJ = &cnpj
}

// SetMembership sets the membership window. The expiration must be strictly
// after the start when both are present.
func (c *Company) SetMembership(start, end *time.Time) error {
	if start != nil && end != nil && !end.After(*start) {
		return ErrInvalidMembership
	}
	c.DataAdesao = start
	c.DataExpiracao = end
	return nil
}

// ReplaceLogo points the company at a new logo and returns the previous path
// when it should be removed from storage.
func (c *Company) ReplaceLogo(path string) (previous string, obsolete bool) {
	previous = c.LogoPath
	c.LogoPath = path
	return previous, previous != "" && previous != path
}

// CNPJValue returns the tax id or an empty string
func (c *Company) CNPJValue() string {
	if c.CNPJ == nil {
		return ""
	}
	return *c.CNPJ
}
