// Package company implements the company use cases: CRUD with soft delete
// and restore, listing, and the logo lifecycle in object storage.
package company

import (
	"context"
	"errors"
	"path"
	"strings"
	"time"

	"github.com/erp/backoffice/internal/application/validation"
	"github.com/erp/backoffice/internal/domain/company"
	"github.com/erp/backoffice/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ObjectStorage stores company logos
type ObjectStorage interface {
	Upload(ctx context.Context, storageKey string, data []byte, contentType string) error
	DeleteObject(ctx context.Context, storageKey string) error
	GenerateDownloadURL(ctx context.Context, storageKey string, expiresIn time.Duration) (string, time.Time, error)
}

// ErrCNPJTaken is returned when a live company already uses the CNPJ
var ErrCNPJTaken = shared.NewDomainError(shared.CodeAlreadyExists, "O CNPJ informado já está em uso.")

// Service handles company management operations
type Service struct {
	repo       company.Repository
	storage    ObjectStorage
	validator  *validation.Validator
	logoPrefix string
	logger     *zap.Logger
}

// NewService creates a new company service
func NewService(
	repo company.Repository,
	storage ObjectStorage,
	validator *validation.Validator,
	logoPrefix string,
	logger *zap.Logger,
) *Service {
	return &Service{
		repo:       repo,
		storage:    storage,
		validator:  validator,
		logoPrefix: strings.Trim(logoPrefix, "/"),
		logger:     logger,
	}
}

// Create validates the input, stores the logo when present and inserts the
// company. A stored logo is removed again when the insert fails.
func (s *Service) Create(ctx context.Context, input CreateCompanyInput) (*CompanyDTO, error) {
	input.CNPJ = blankToNil(input.CNPJ)
	errs := s.validator.Struct(input)
	errs = errs.Append(validation.ValidateDateRange(parseDate(input.DataAdesao), parseDate(input.DataExpiracao), "data_expiracao", "data_adesao"))
	if input.Logo != nil {
		errs = append(errs, validation.ValidateUpload(input.Logo.toFileUpload(), validation.LogoRule)...)
	}
	if err := errs.Err(); err != nil {
		return nil, err
	}

	if input.CNPJ != nil {
		if err := s.ensureCNPJFree(ctx, *input.CNPJ, nil); err != nil {
			return nil, err
		}
	}

	c := company.NewCompany(input.RazaoSocial, input.NomeFantasia, input.Email)
	if input.CNPJ != nil {
		c.SetCNPJ(*input.CNPJ)
	}
	c.Telefone = strings.TrimSpace(input.Telefone)
	if input.Ativo != nil {
		c.Ativo = *input.Ativo
	}
	if err := c.SetMembership(parseDate(input.DataAdesao), parseDate(input.DataExpiracao)); err != nil {
		return nil, err
	}

	if input.Logo != nil {
		key, err := s.storeLogo(ctx, input.Logo)
		if err != nil {
			return nil, err
		}
		c.LogoPath = key
	}

	if err := s.repo.Create(ctx, c); err != nil {
		s.discardLogo(ctx, c.LogoPath)
		if errors.Is(err, shared.ErrAlreadyExists) {
			return nil, ErrCNPJTaken
		}
		s.logger.Error("Failed to create company", zap.Error(err))
		return nil, err
	}

	s.logger.Info("Company created",
		zap.String("company_id", c.ID.String()),
		zap.String("nome_fantasia", c.NomeFantasia))

	dto := s.toDTO(ctx, c)
	return &dto, nil
}

// Get returns a live company
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*CompanyDTO, error) {
	c, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	dto := s.toDTO(ctx, c)
	return &dto, nil
}

// Update applies the provided fields. A new logo replaces the old one, and
// the old object is removed only after the update is persisted and only when
// its path differs from the new one.
func (s *Service) Update(ctx context.Context, id uuid.UUID, input UpdateCompanyInput) (*CompanyDTO, error) {
	if input.CNPJ != nil && strings.TrimSpace(*input.CNPJ) == "" {
		input.CNPJ = nil
		input.ClearCNPJ = true
	}
	errs := s.validator.Struct(input)
	if input.Logo != nil {
		errs = append(errs, validation.ValidateUpload(input.Logo.toFileUpload(), validation.LogoRule)...)
	}
	if err := errs.Err(); err != nil {
		return nil, err
	}

	c, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	start, end := c.DataAdesao, c.DataExpiracao
	if input.DataAdesao != nil {
		start = parseDate(input.DataAdesao)
	}
	if input.DataExpiracao != nil {
		end = parseDate(input.DataExpiracao)
	}
	if fe := validation.ValidateDateRange(start, end, "data_expiracao", "data_adesao"); fe != nil {
		return nil, validation.FieldErrors{*fe}.Err()
	}

	if input.CNPJ != nil && *input.CNPJ != c.CNPJValue() {
		if err := s.ensureCNPJFree(ctx, *input.CNPJ, &c.ID); err != nil {
			return nil, err
		}
	}

	applyUpdate(c, input)
	if err := c.SetMembership(start, end); err != nil {
		return nil, err
	}

	var previous string
	var obsolete bool
	if input.Logo != nil {
		key, err := s.storeLogo(ctx, input.Logo)
		if err != nil {
			return nil, err
		}
		previous, obsolete = c.ReplaceLogo(key)
	}

	if err := s.repo.Update(ctx, c); err != nil {
		if input.Logo != nil {
			s.discardLogo(ctx, c.LogoPath)
		}
		if errors.Is(err, shared.ErrAlreadyExists) {
			return nil, ErrCNPJTaken
		}
		if !errors.Is(err, shared.ErrNotFound) {
			s.logger.Error("Failed to update company", zap.String("company_id", id.String()), zap.Error(err))
		}
		return nil, err
	}

	if obsolete {
		s.discardLogo(ctx, previous)
	}

	s.logger.Info("Company updated", zap.String("company_id", c.ID.String()))

	dto := s.toDTO(ctx, c)
	return &dto, nil
}

// Delete soft-deletes the company, then removes its logo. A storage failure
// after the delete is logged and not reported.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	c, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	logo := c.LogoPath

	if err := s.repo.SoftDelete(ctx, id); err != nil {
		if !errors.Is(err, shared.ErrNotFound) {
			s.logger.Error("Failed to delete company", zap.String("company_id", id.String()), zap.Error(err))
		}
		return err
	}
	s.discardLogo(ctx, logo)

	s.logger.Info("Company deleted", zap.String("company_id", id.String()))
	return nil
}

// Restore reinstates a soft-deleted company unless another live company has
// taken its CNPJ in the meantime.
func (s *Service) Restore(ctx context.Context, id uuid.UUID) (*CompanyDTO, error) {
	c, err := s.repo.FindByIDWithDeleted(ctx, id)
	if err != nil {
		return nil, err
	}
	if !c.IsDeleted() {
		return nil, shared.NewDomainError(shared.CodeConflict, "A empresa não está excluída.")
	}
	if c.CNPJ != nil {
		if err := s.ensureCNPJFree(ctx, *c.CNPJ, &c.ID); err != nil {
			return nil, err
		}
	}
	if err := s.repo.Restore(ctx, id); err != nil {
		if errors.Is(err, shared.ErrAlreadyExists) {
			return nil, ErrCNPJTaken
		}
		return nil, err
	}
	c.Restore()

	s.logger.Info("Company restored", zap.String("company_id", id.String()))

	dto := s.toDTO(ctx, c)
	return &dto, nil
}

// List returns a page of live companies
func (s *Service) List(ctx context.Context, filter shared.ListFilter) (shared.Page[CompanyDTO], error) {
	filter = filter.Normalize()
	items, total, err := s.repo.List(ctx, filter)
	if err != nil {
		s.logger.Error("Failed to list companies", zap.Error(err))
		return shared.Page[CompanyDTO]{}, err
	}
	dtos := make([]CompanyDTO, len(items))
	for i := range items {
		dtos[i] = s.toDTO(ctx, &items[i])
	}
	return shared.NewPage(dtos, total, filter), nil
}

func (s *Service) ensureCNPJFree(ctx context.Context, cnpj string, excludeID *uuid.UUID) error {
	taken, err := s.repo.ExistsByCNPJ(ctx, cnpj, excludeID)
	if err != nil {
		s.logger.Error("Failed to check cnpj availability", zap.Error(err))
		return err
	}
	if taken {
		return ErrCNPJTaken.WithDetails(validation.FieldErrors{{
			Field: "cnpj", Rule: "unique", Message: "O campo cnpj já está sendo utilizado.",
		}})
	}
	return nil
}

func (s *Service) storeLogo(ctx context.Context, logo *LogoUpload) (string, error) {
	ext := validation.Extension(logo.Content)
	if ext == ".jpeg" {
		ext = ".jpg"
	}
	key := path.Join(s.logoPrefix, uuid.NewString()+ext)
	contentType := validation.ContentType(logo.Content)
	if err := s.storage.Upload(ctx, key, logo.Content, contentType); err != nil {
		s.logger.Error("Failed to store company logo", zap.String("key", key), zap.Error(err))
		return "", shared.NewDomainError(shared.CodeUpstream, "Não foi possível salvar o logo. Tente novamente.").WithCause(err)
	}
	return key, nil
}

func (s *Service) discardLogo(ctx context.Context, key string) {
	if key == "" {
		return
	}
	if err := s.storage.DeleteObject(ctx, key); err != nil {
		s.logger.Warn("Failed to delete company logo", zap.String("key", key), zap.Error(err))
	}
}

func (s *Service) toDTO(ctx context.Context, c *company.Company) CompanyDTO {
	dto := ToCompanyDTO(c)
	if c.LogoPath != "" {
		url, _, err := s.storage.GenerateDownloadURL(ctx, c.LogoPath, 0)
		if err != nil {
			s.logger.Debug("Failed to sign logo url", zap.String("key", c.LogoPath), zap.Error(err))
		} else {
			dto.LogoURL = url
		}
	}
	return dto
}

func applyUpdate(c *company.Company, in UpdateCompanyInput) {
	if in.RazaoSocial != nil {
		c.RazaoSocial = strings.TrimSpace(*in.RazaoSocial)
	}
	if in.NomeFantasia != nil {
		c.NomeFantasia = strings.TrimSpace(*in.NomeFantasia)
	}
	if in.ClearCNPJ {
		c.SetCNPJ("")
	} else if in.CNPJ != nil {
		c.SetCNPJ(*in.CNPJ)
	}
	if in.Email != nil {
		c.Email = strings.ToLower(strings.TrimSpace(*in.Email))
	}
	if in.Telefone != nil {
		c.Telefone = strings.TrimSpace(*in.Telefone)
	}
	if in.Ativo != nil {
		c.Ativo = *in.Ativo
	}
}

func (l *LogoUpload) toFileUpload() validation.FileUpload {
	return validation.FileUpload{Filename: l.Filename, Size: l.Size, Header: l.Content}
}

func blankToNil(s *string) *string {
	if s == nil || strings.TrimSpace(*s) == "" {
		return nil
	}
	return s
}
