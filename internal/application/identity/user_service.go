// Package identity implements user, role and permission management and
// authentication.
package identity

import (
	"context"
	"errors"
	"strings"
	"time"

	appshared "github.com/erp/backoffice/internal/application/shared"
	"github.com/erp/backoffice/internal/application/validation"
	"github.com/erp/backoffice/internal/domain/company"
	"github.com/erp/backoffice/internal/domain/identity"
	"github.com/erp/backoffice/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// User errors
var (
	ErrEmailTaken       = shared.NewDomainError(shared.CodeAlreadyExists, "O e-mail informado já está em uso.")
	ErrUserCreateFailed = shared.NewDomainError(shared.CodeTransactionFailed, "Erro ao cadastrar usuário. Tente novamente.")
	ErrUserUpdateFailed = shared.NewDomainError(shared.CodeTransactionFailed, "Erro ao atualizar usuário. Tente novamente.")
	ErrUserDeleteFailed = shared.NewDomainError(shared.CodeTransactionFailed, "Erro ao excluir usuário. Tente novamente.")
)

// SessionRevoker invalidates issued access tokens
type SessionRevoker interface {
	RevokeUser(ctx context.Context, userID string, ttl time.Duration) error
}

// UserService handles user management operations
type UserService struct {
	users     identity.UserRepository
	companies company.Repository
	uow       appshared.UnitOfWork
	sessions  SessionRevoker
	tokenTTL  time.Duration
	validator *validation.Validator
	logger    *zap.Logger
}

// NewUserService creates a new user service. sessions may be nil, in which
// case tokens of a deleted user stay valid until they expire.
func NewUserService(
	users identity.UserRepository,
	companies company.Repository,
	uow appshared.UnitOfWork,
	sessions SessionRevoker,
	tokenTTL time.Duration,
	validator *validation.Validator,
	logger *zap.Logger,
) *UserService {
	return &UserService{
		users:     users,
		companies: companies,
		uow:       uow,
		sessions:  sessions,
		tokenTTL:  tokenTTL,
		validator: validator,
		logger:    logger,
	}
}

// Create creates a user and links its stores and roles in one transaction
func (s *UserService) Create(ctx context.Context, input CreateUserInput) (*UserDTO, error) {
	if err := s.validator.Struct(input).Err(); err != nil {
		return nil, err
	}
	if err := s.ensureEmailFree(ctx, input.Email, nil); err != nil {
		return nil, err
	}
	if err := s.ensureCompany(ctx, input.EmpresaID); err != nil {
		return nil, err
	}

	user, err := identity.NewUser(input.Name, input.Email, input.Password)
	if err != nil {
		return nil, err
	}
	user.SetCPF(input.CPF)
	user.SetTipo(input.Tipo)
	user.CompanyID = input.EmpresaID
	if input.Ativo != nil {
		user.Ativo = *input.Ativo
	}
	user.SetStores(input.Lojas)

	err = s.uow.Do(ctx, func(repos appshared.Repositories) error {
		if err := repos.Users.Create(ctx, user); err != nil {
			return err
		}
		if len(user.StoreIDs) > 0 {
			if _, err := repos.Users.SyncStores(ctx, user.ID, user.StoreIDs); err != nil {
				return err
			}
		}
		if len(input.Roles) > 0 {
			if _, err := repos.Users.SyncRoles(ctx, user.ID, input.Roles); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, s.transactionError(ErrUserCreateFailed, err, zap.String("email", user.Email))
	}

	s.logger.Info("User created",
		zap.String("user_id", user.ID.String()),
		zap.Int("stores", len(user.StoreIDs)))

	return s.Get(ctx, user.ID)
}

// Get returns a user with company, stores and roles
func (s *UserService) Get(ctx context.Context, id uuid.UUID) (*UserDTO, error) {
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	dto := ToUserDTO(user)
	return &dto, nil
}

// Update applies the provided fields and replaces the store set in one
// transaction. The password changes only when a new one is provided.
func (s *UserService) Update(ctx context.Context, id uuid.UUID, input UpdateUserInput) (*UserDTO, error) {
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.validator.Struct(input).Err(); err != nil {
		return nil, err
	}
	if input.Email != nil {
		if err := s.ensureEmailFree(ctx, *input.Email, &user.ID); err != nil {
			return nil, err
		}
	}
	if input.EmpresaID != nil {
		if err := s.ensureCompany(ctx, input.EmpresaID); err != nil {
			return nil, err
		}
		user.CompanyID = input.EmpresaID
	}

	if input.Name != nil {
		user.Name = strings.TrimSpace(*input.Name)
	}
	if input.Email != nil {
		user.Email = identity.NormalizeEmail(*input.Email)
	}
	if input.CPF != nil {
		user.SetCPF(*input.CPF)
	}
	if input.Tipo != nil {
		user.SetTipo(*input.Tipo)
	}
	if input.Ativo != nil {
		user.Ativo = *input.Ativo
	}
	if input.Password != "" {
		if err := user.SetPassword(input.Password); err != nil {
			return nil, err
		}
	}
	user.SetStores(input.Lojas)

	var synced identity.SyncResult
	err = s.uow.Do(ctx, func(repos appshared.Repositories) error {
		if err := repos.Users.Update(ctx, user); err != nil {
			return err
		}
		res, err := repos.Users.SyncStores(ctx, user.ID, user.StoreIDs)
		if err != nil {
			return err
		}
		synced = res
		if input.Roles != nil {
			if _, err := repos.Users.SyncRoles(ctx, user.ID, input.Roles); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, s.transactionError(ErrUserUpdateFailed, err, zap.String("user_id", id.String()))
	}

	s.logger.Info("User updated",
		zap.String("user_id", id.String()),
		zap.Int("stores_added", len(synced.Added)),
		zap.Int("stores_removed", len(synced.Removed)))

	return s.Get(ctx, id)
}

// Delete removes a user. The acting user cannot delete their own account.
func (s *UserService) Delete(ctx context.Context, actorID, id uuid.UUID) error {
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if err := user.EnsureDeletableBy(actorID); err != nil {
		s.logger.Warn("Self-deletion rejected", zap.String("user_id", id.String()))
		return err
	}

	// Links and the user row go together or not at all
	err = s.uow.Do(ctx, func(repos appshared.Repositories) error {
		return repos.Users.Delete(ctx, id)
	})
	if err != nil {
		return s.transactionError(ErrUserDeleteFailed, err, zap.String("user_id", id.String()))
	}

	if s.sessions != nil {
		if err := s.sessions.RevokeUser(ctx, id.String(), s.tokenTTL); err != nil {
			s.logger.Warn("Failed to revoke sessions of deleted user",
				zap.String("user_id", id.String()),
				zap.Error(err))
		}
	}

	s.logger.Info("User deleted", zap.String("user_id", id.String()))
	return nil
}

// List returns a page of users, optionally restricted to one company
func (s *UserService) List(ctx context.Context, filter identity.UserFilter) (shared.Page[UserDTO], error) {
	filter.ListFilter = filter.ListFilter.Normalize()
	users, total, err := s.users.List(ctx, filter)
	if err != nil {
		s.logger.Error("Failed to list users", zap.Error(err))
		return shared.Page[UserDTO]{}, err
	}

	dtos := make([]UserDTO, len(users))
	for i := range users {
		dtos[i] = ToUserDTO(&users[i])
	}
	page := shared.NewPage(dtos, total, filter.ListFilter)
	page.Filters["empresa_id"] = ""
	if filter.CompanyID != nil {
		page.Filters["empresa_id"] = filter.CompanyID.String()
	}
	return page, nil
}

func (s *UserService) ensureEmailFree(ctx context.Context, email string, excludeID *uuid.UUID) error {
	taken, err := s.users.ExistsByEmail(ctx, email, excludeID)
	if err != nil {
		return err
	}
	if taken {
		return ErrEmailTaken.WithDetails(validation.FieldErrors{{
			Field:   "email",
			Rule:    "unique",
			Message: ErrEmailTaken.Message,
		}})
	}
	return nil
}

func (s *UserService) ensureCompany(ctx context.Context, id *uuid.UUID) error {
	if id == nil {
		return nil
	}
	_, err := s.companies.FindByID(ctx, *id)
	if errors.Is(err, shared.ErrNotFound) {
		return shared.NewDomainError(shared.CodeNotFound, "Empresa não encontrada").
			WithDetails(map[string]any{"field": "empresa_id", "id": id.String()})
	}
	return err
}

// transactionError keeps not-found and uniqueness failures visible to the
// caller and collapses everything else into the generic failure message.
func (s *UserService) transactionError(failed *shared.DomainError, err error, fields ...zap.Field) error {
	if errors.Is(err, shared.ErrAlreadyExists) {
		return ErrEmailTaken.WithCause(err)
	}
	if errors.Is(err, shared.ErrNotFound) {
		return err
	}
	s.logger.Error(failed.Message, append(fields, zap.Error(err))...)
	return failed.WithCause(err)
}
