package identity

import (
	"context"
	"errors"

	appshared "github.com/erp/backoffice/internal/application/shared"
	"github.com/erp/backoffice/internal/application/validation"
	"github.com/erp/backoffice/internal/domain/identity"
	"github.com/erp/backoffice/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ErrPermissionNameTaken is returned when a permission name is already used under the guard
var ErrPermissionNameTaken = shared.NewDomainError(shared.CodeAlreadyExists, "Já existe uma permissão com esse nome.")

// PermissionService handles permission management operations
type PermissionService struct {
	permissions identity.PermissionRepository
	uow         appshared.UnitOfWork
	validator   *validation.Validator
	logger      *zap.Logger
}

// NewPermissionService creates a new permission service
func NewPermissionService(
	permissions identity.PermissionRepository,
	uow appshared.UnitOfWork,
	validator *validation.Validator,
	logger *zap.Logger,
) *PermissionService {
	return &PermissionService{
		permissions: permissions,
		uow:         uow,
		validator:   validator,
		logger:      logger,
	}
}

// Create creates a permission; the guard defaults to "web"
func (s *PermissionService) Create(ctx context.Context, input PermissionInput) (*PermissionDTO, error) {
	if err := s.validator.Struct(input).Err(); err != nil {
		return nil, err
	}

	perm := identity.NewPermission(input.Name, input.GuardName)
	if err := s.ensureNameFree(ctx, perm.Name, perm.GuardName, nil); err != nil {
		return nil, err
	}
	if err := s.permissions.Create(ctx, perm); err != nil {
		if errors.Is(err, shared.ErrAlreadyExists) {
			return nil, ErrPermissionNameTaken.WithCause(err)
		}
		s.logger.Error("Failed to create permission", zap.Error(err))
		return nil, err
	}

	s.logger.Info("Permission created",
		zap.String("permission_id", perm.ID.String()),
		zap.String("name", perm.Name))

	dto := ToPermissionDTO(perm)
	return &dto, nil
}

// Get returns a permission
func (s *PermissionService) Get(ctx context.Context, id uuid.UUID) (*PermissionDTO, error) {
	perm, err := s.permissions.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	dto := ToPermissionDTO(perm)
	return &dto, nil
}

// Update renames a permission. An omitted guard keeps the current one.
func (s *PermissionService) Update(ctx context.Context, id uuid.UUID, input PermissionInput) (*PermissionDTO, error) {
	perm, err := s.permissions.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.validator.Struct(input).Err(); err != nil {
		return nil, err
	}

	perm.Rename(input.Name, input.GuardName)
	if err := s.ensureNameFree(ctx, perm.Name, perm.GuardName, &perm.ID); err != nil {
		return nil, err
	}
	if err := s.permissions.Update(ctx, perm); err != nil {
		if errors.Is(err, shared.ErrAlreadyExists) {
			return nil, ErrPermissionNameTaken.WithCause(err)
		}
		return nil, err
	}

	s.logger.Info("Permission updated", zap.String("permission_id", id.String()))

	dto := ToPermissionDTO(perm)
	return &dto, nil
}

// Delete removes a permission and detaches it from every role
func (s *PermissionService) Delete(ctx context.Context, id uuid.UUID) error {
	err := s.uow.Do(ctx, func(repos appshared.Repositories) error {
		return repos.Permissions.Delete(ctx, id)
	})
	if err != nil {
		if !errors.Is(err, shared.ErrNotFound) {
			s.logger.Error("Failed to delete permission", zap.String("permission_id", id.String()), zap.Error(err))
		}
		return err
	}
	s.logger.Info("Permission deleted", zap.String("permission_id", id.String()))
	return nil
}

// List returns a page of permissions, searching by name
func (s *PermissionService) List(ctx context.Context, filter shared.ListFilter) (shared.Page[PermissionDTO], error) {
	filter = filter.Normalize()
	perms, total, err := s.permissions.List(ctx, filter)
	if err != nil {
		s.logger.Error("Failed to list permissions", zap.Error(err))
		return shared.Page[PermissionDTO]{}, err
	}
	dtos := make([]PermissionDTO, len(perms))
	for i := range perms {
		dtos[i] = ToPermissionDTO(&perms[i])
	}
	return shared.NewPage(dtos, total, filter), nil
}

func (s *PermissionService) ensureNameFree(ctx context.Context, name, guard string, excludeID *uuid.UUID) error {
	taken, err := s.permissions.ExistsByName(ctx, name, guard, excludeID)
	if err != nil {
		return err
	}
	if taken {
		return ErrPermissionNameTaken.WithDetails(validation.FieldErrors{{
			Field:   "name",
			Rule:    "unique",
			Message: ErrPermissionNameTaken.Message,
		}})
	}
	return nil
}
