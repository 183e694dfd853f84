package company

import (
	"time"

	"github.com/erp/backoffice/internal/domain/company"
	"github.com/google/uuid"
)

// DateLayout is the wire format of membership dates
const DateLayout = "2006-01-02"

// LogoUpload is a logo file received with a create or update request.
type LogoUpload struct {
	Filename string
	Size     int64
	Content  []byte
}

// CreateCompanyInput contains input for creating a company
type CreateCompanyInput struct {
	RazaoSocial   string  `json:"razao_social" form:"razao_social" validate:"required,max=255"`
	NomeFantasia  string  `json:"nome_fantasia" form:"nome_fantasia" validate:"required,max=255"`
	CNPJ          *string `json:"cnpj" form:"cnpj" validate:"omitempty,max=18,cnpj"`
	Email         string  `json:"email" form:"email" validate:"required,email,max=255"`
	Telefone      string  `json:"telefone" form:"telefone" validate:"omitempty,max=20"`
	Ativo         *bool   `json:"ativo" form:"ativo"`
	DataAdesao    *string `json:"data_adesao" form:"data_adesao" validate:"omitempty,datetime=2006-01-02"`
	DataExpiracao *string `json:"data_expiracao" form:"data_expiracao" validate:"omitempty,datetime=2006-01-02"`

	Logo *LogoUpload `json:"-" form:"-"`
}

// UpdateCompanyInput contains input for updating a company. Nil fields keep
// their current value.
type UpdateCompanyInput struct {
	RazaoSocial   *string `json:"razao_social" form:"razao_social" validate:"omitempty,min=1,max=255"`
	NomeFantasia  *string `json:"nome_fantasia" form:"nome_fantasia" validate:"omitempty,min=1,max=255"`
	CNPJ          *string `json:"cnpj" form:"cnpj" validate:"omitempty,max=18,cnpj"`
	Email         *string `json:"email" form:"email" validate:"omitempty,email,max=255"`
	Telefone      *string `json:"telefone" form:"telefone" validate:"omitempty,max=20"`
	Ativo         *bool   `json:"ativo" form:"ativo"`
	DataAdesao    *string `json:"data_adesao" form:"data_adesao" validate:"omitempty,datetime=2006-01-02"`
	DataExpiracao *string `json:"data_expiracao" form:"data_expiracao" validate:"omitempty,datetime=2006-01-02"`

	// ClearCNPJ removes the tax id; an empty cnpj in the payload sets it
	ClearCNPJ bool `json:"-" form:"-"`

	Logo *LogoUpload `json:"-" form:"-"`
}

// CompanyDTO represents company data transfer object
type CompanyDTO struct {
	ID            uuid.UUID  `json:"id"`
	RazaoSocial   string     `json:"razao_social"`
	NomeFantasia  string     `json:"nome_fantasia"`
	CNPJ          *string    `json:"cnpj"`
	Email         string     `json:"email"`
	Telefone      string     `json:"telefone"`
	LogoPath      string     `json:"logo_path,omitempty"`
	LogoURL       string     `json:"logo_url,omitempty"`
	Ativo         bool       `json:"ativo"`
	DataAdesao    *string    `json:"data_adesao"`
	DataExpiracao *string    `json:"data_expiracao"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
	DeletedAt     *time.Time `json:"deleted_at,omitempty"`
}

// ToCompanyDTO converts a domain Company to CompanyDTO
func ToCompanyDTO(c *company.Company) CompanyDTO {
	return CompanyDTO{
		ID:            c.ID,
		RazaoSocial:   c.RazaoSocial,
		NomeFantasia:  c.NomeFantasia,
		CNPJ:          c.CNPJ,
		Email:         c.Email,
		Telefone:      c.Telefone,
		LogoPath:      c.LogoPath,
		Ativo:         c.Ativo,
		DataAdesao:    formatDate(c.DataAdesao),
		DataExpiracao: formatDate(c.DataExpiracao),
		CreatedAt:     c.CreatedAt,
		UpdatedAt:     c.UpdatedAt,
		DeletedAt:     c.DeletedAt,
	}
}

func formatDate(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format(DateLayout)
	return &s
}

func parseDate(s *string) *time.Time {
	if s == nil || *s == "" {
		return nil
	}
	t, err := time.Parse(DateLayout, *s)
	if err != nil {
		return nil
	}
	return &t
}
