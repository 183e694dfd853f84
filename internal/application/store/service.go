// Package store implements the store use cases. Stores are always addressed
// through their owning company; a store of another company is reported as
// not found.
package store

import (
	"context"
	"errors"
	"strings"

	appshared "github.com/erp/backoffice/internal/application/shared"
	"github.com/erp/backoffice/internal/application/validation"
	"github.com/erp/backoffice/internal/domain/company"
	"github.com/erp/backoffice/internal/domain/shared"
	"github.com/erp/backoffice/internal/domain/store"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Transaction failure messages
var (
	ErrCreateFailed = shared.NewDomainError(shared.CodeTransactionFailed, "Erro ao cadastrar loja. Tente novamente.")
	ErrUpdateFailed = shared.NewDomainError(shared.CodeTransactionFailed, "Erro ao atualizar loja. Tente novamente.")
)

// Service handles store management operations
type Service struct {
	companies company.Repository
	stores    store.Repository
	uow       appshared.UnitOfWork
	validator *validation.Validator
	logger    *zap.Logger
}

// NewService creates a new store service
func NewService(
	companies company.Repository,
	stores store.Repository,
	uow appshared.UnitOfWork,
	validator *validation.Validator,
	logger *zap.Logger,
) *Service {
	return &Service{
		companies: companies,
		stores:    stores,
		uow:       uow,
		validator: validator,
		logger:    logger,
	}
}

// Create inserts a store for companyID inside a transaction. The nested
// endereco object is dropped.
func (s *Service) Create(ctx context.Context, companyID uuid.UUID, input CreateStoreInput) (*StoreDTO, error) {
	if err := s.validator.Struct(input).Err(); err != nil {
		return nil, err
	}
	if _, err := s.companies.FindByID(ctx, companyID); err != nil {
		return nil, err
	}

	st := store.NewStore(companyID, input.Nome)
	st.CNPJ = strings.TrimSpace(input.CNPJ)
	st.Telefone = strings.TrimSpace(input.Telefone)
	st.Email = strings.ToLower(strings.TrimSpace(input.Email))
	st.Address = toAddress(input)
	if input.Ativo != nil {
		st.Ativo = *input.Ativo
	}

	err := s.uow.Do(ctx, func(repos appshared.Repositories) error {
		return repos.Stores.Create(ctx, st)
	})
	if err != nil {
		s.logger.Error("Failed to create store",
			zap.String("company_id", companyID.String()),
			zap.Error(err))
		return nil, ErrCreateFailed.WithCause(err)
	}

	s.logger.Info("Store created",
		zap.String("company_id", companyID.String()),
		zap.String("store_id", st.ID.String()))

	dto := ToStoreDTO(st)
	return &dto, nil
}

// Get returns a store of companyID
func (s *Service) Get(ctx context.Context, companyID, storeID uuid.UUID) (*StoreDTO, error) {
	st, err := s.find(ctx, companyID, storeID)
	if err != nil {
		return nil, err
	}
	dto := ToStoreDTO(st)
	return &dto, nil
}

// Update applies the provided fields inside a transaction. The owning
// company never changes.
func (s *Service) Update(ctx context.Context, companyID, storeID uuid.UUID, input UpdateStoreInput) (*StoreDTO, error) {
	st, err := s.find(ctx, companyID, storeID)
	if err != nil {
		return nil, err
	}
	if err := s.validator.Struct(input).Err(); err != nil {
		return nil, err
	}

	applyUpdate(st, input)

	err = s.uow.Do(ctx, func(repos appshared.Repositories) error {
		return repos.Stores.Update(ctx, st)
	})
	if err != nil {
		s.logger.Error("Failed to update store",
			zap.String("store_id", storeID.String()),
			zap.Error(err))
		return nil, ErrUpdateFailed.WithCause(err)
	}

	s.logger.Info("Store updated", zap.String("store_id", storeID.String()))

	dto := ToStoreDTO(st)
	return &dto, nil
}

// Delete soft-deletes a store of companyID
func (s *Service) Delete(ctx context.Context, companyID, storeID uuid.UUID) error {
	if _, err := s.find(ctx, companyID, storeID); err != nil {
		return err
	}
	if err := s.stores.SoftDelete(ctx, storeID); err != nil {
		if !errors.Is(err, shared.ErrNotFound) {
			s.logger.Error("Failed to delete store", zap.String("store_id", storeID.String()), zap.Error(err))
		}
		return err
	}
	s.logger.Info("Store deleted", zap.String("store_id", storeID.String()))
	return nil
}

// List returns a page of a company's stores
func (s *Service) List(ctx context.Context, companyID uuid.UUID, filter shared.ListFilter) (shared.Page[StoreDTO], error) {
	if _, err := s.companies.FindByID(ctx, companyID); err != nil {
		return shared.Page[StoreDTO]{}, err
	}
	filter = filter.Normalize()
	items, total, err := s.stores.List(ctx, companyID, filter)
	if err != nil {
		s.logger.Error("Failed to list stores", zap.String("company_id", companyID.String()), zap.Error(err))
		return shared.Page[StoreDTO]{}, err
	}
	dtos := make([]StoreDTO, len(items))
	for i := range items {
		dtos[i] = ToStoreDTO(&items[i])
	}
	return shared.NewPage(dtos, total, filter), nil
}

// ActiveByCompany returns the active stores of a company ordered by name.
// An unknown company yields an empty list.
func (s *Service) ActiveByCompany(ctx context.Context, companyID uuid.UUID) ([]SummaryDTO, error) {
	summaries, err := s.stores.ListActiveSummaries(ctx, companyID)
	if err != nil {
		return nil, err
	}
	out := make([]SummaryDTO, len(summaries))
	for i, sm := range summaries {
		out[i] = SummaryDTO{ID: sm.ID, Nome: sm.Nome, CNPJ: sm.CNPJ}
	}
	return out, nil
}

func (s *Service) find(ctx context.Context, companyID, storeID uuid.UUID) (*store.Store, error) {
	st, err := s.stores.FindByID(ctx, storeID)
	if err != nil {
		return nil, err
	}
	if !st.BelongsTo(companyID) {
		return nil, shared.ErrNotFound
	}
	return st, nil
}

func toAddress(in CreateStoreInput) store.Address {
	return store.Address{
		CEP:         strings.TrimSpace(in.CEP),
		Logradouro:  strings.TrimSpace(in.Logradouro),
		Numero:      strings.TrimSpace(in.Numero),
		Complemento: strings.TrimSpace(in.Complemento),
		Bairro:      strings.TrimSpace(in.Bairro),
		Cidade:      strings.TrimSpace(in.Cidade),
		Estado:      strings.ToUpper(strings.TrimSpace(in.Estado)),
	}
}

func applyUpdate(st *store.Store, in UpdateStoreInput) {
	set := func(dst *string, v *string) {
		if v != nil {
			*dst = strings.TrimSpace(*v)
		}
	}
	set(&st.Nome, in.Nome)
	set(&st.CNPJ, in.CNPJ)
	set(&st.Telefone, in.Telefone)
	set(&st.Email, in.Email)
	st.Email = strings.ToLower(st.Email)
	set(&st.Address.CEP, in.CEP)
	set(&st.Address.Logradouro, in.Logradouro)
	set(&st.Address.Numero, in.Numero)
	set(&st.Address.Complemento, in.Complemento)
	set(&st.Address.Bairro, in.Bairro)
	set(&st.Address.Cidade, in.Cidade)
	set(&st.Address.Estado, in.Estado)
	st.Address.Estado = strings.ToUpper(st.Address.Estado)
	if in.Ativo != nil {
		st.Ativo = *in.Ativo
	}
}
