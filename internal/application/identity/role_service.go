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

// ErrRoleNameTaken is returned when a role name is already used under the guard
var ErrRoleNameTaken = shared.NewDomainError(shared.CodeAlreadyExists, "Já existe um perfil com esse nome.")

// RoleService handles role management operations
type RoleService struct {
	roles     identity.RoleRepository
	uow       appshared.UnitOfWork
	validator *validation.Validator
	logger    *zap.Logger
}

// NewRoleService creates a new role service
func NewRoleService(
	roles identity.RoleRepository,
	uow appshared.UnitOfWork,
	validator *validation.Validator,
	logger *zap.Logger,
) *RoleService {
	return &RoleService{
		roles:     roles,
		uow:       uow,
		validator: validator,
		logger:    logger,
	}
}

// Create creates a role; the guard defaults to "web"
func (s *RoleService) Create(ctx context.Context, input RoleInput) (*RoleDTO, error) {
	if err := s.validator.Struct(input).Err(); err != nil {
		return nil, err
	}

	role := identity.NewRole(input.Name, input.GuardName)
	if err := s.ensureNameFree(ctx, role.Name, role.GuardName, nil); err != nil {
		return nil, err
	}

	if err := s.roles.Create(ctx, role); err != nil {
		if errors.Is(err, shared.ErrAlreadyExists) {
			return nil, ErrRoleNameTaken.WithCause(err)
		}
		s.logger.Error("Failed to create role", zap.Error(err))
		return nil, err
	}

	s.logger.Info("Role created",
		zap.String("role_id", role.ID.String()),
		zap.String("name", role.Name),
		zap.String("guard", role.GuardName))

	dto := ToRoleDTO(role)
	return &dto, nil
}

// Get returns a role with its permission ids
func (s *RoleService) Get(ctx context.Context, id uuid.UUID) (*RoleDTO, error) {
	role, err := s.roles.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	dto := ToRoleDTO(role)
	return &dto, nil
}

// Update renames a role. An omitted guard keeps the current one.
func (s *RoleService) Update(ctx context.Context, id uuid.UUID, input RoleInput) (*RoleDTO, error) {
	role, err := s.roles.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.validator.Struct(input).Err(); err != nil {
		return nil, err
	}

	role.Rename(input.Name, input.GuardName)
	if err := s.ensureNameFree(ctx, role.Name, role.GuardName, &role.ID); err != nil {
		return nil, err
	}

	if err := s.roles.Update(ctx, role); err != nil {
		if errors.Is(err, shared.ErrAlreadyExists) {
			return nil, ErrRoleNameTaken.WithCause(err)
		}
		if !errors.Is(err, shared.ErrNotFound) {
			s.logger.Error("Failed to update role", zap.String("role_id", id.String()), zap.Error(err))
		}
		return nil, err
	}

	s.logger.Info("Role updated", zap.String("role_id", id.String()))

	dto := ToRoleDTO(role)
	return &dto, nil
}

// Delete removes a role and its assignments
func (s *RoleService) Delete(ctx context.Context, id uuid.UUID) error {
	err := s.uow.Do(ctx, func(repos appshared.Repositories) error {
		return repos.Roles.Delete(ctx, id)
	})
	if err != nil {
		if !errors.Is(err, shared.ErrNotFound) {
			s.logger.Error("Failed to delete role", zap.String("role_id", id.String()), zap.Error(err))
		}
		return err
	}
	s.logger.Info("Role deleted", zap.String("role_id", id.String()))
	return nil
}

// List returns a page of roles, searching by name
func (s *RoleService) List(ctx context.Context, filter shared.ListFilter) (shared.Page[RoleDTO], error) {
	filter = filter.Normalize()
	roles, total, err := s.roles.List(ctx, filter)
	if err != nil {
		s.logger.Error("Failed to list roles", zap.Error(err))
		return shared.Page[RoleDTO]{}, err
	}
	dtos := make([]RoleDTO, len(roles))
	for i := range roles {
		dtos[i] = ToRoleDTO(&roles[i])
	}
	return shared.NewPage(dtos, total, filter), nil
}

// SyncPermissions makes the role's permissions equal the submitted set
func (s *RoleService) SyncPermissions(ctx context.Context, id uuid.UUID, input SyncPermissionsInput) (*RoleDTO, error) {
	var result identity.SyncResult
	err := s.uow.Do(ctx, func(repos appshared.Repositories) error {
		if _, err := repos.Roles.FindByID(ctx, id); err != nil {
			return err
		}
		res, err := repos.Roles.SyncPermissions(ctx, id, input.Permissions)
		result = res
		return err
	})
	if err != nil {
		if !errors.Is(err, shared.ErrNotFound) {
			s.logger.Error("Failed to sync role permissions", zap.String("role_id", id.String()), zap.Error(err))
		}
		return nil, err
	}

	s.logger.Info("Role permissions synchronized",
		zap.String("role_id", id.String()),
		zap.Int("added", len(result.Added)),
		zap.Int("removed", len(result.Removed)))

	return s.Get(ctx, id)
}

func (s *RoleService) ensureNameFree(ctx context.Context, name, guard string, excludeID *uuid.UUID) error {
	taken, err := s.roles.ExistsByName(ctx, name, guard, excludeID)
	if err != nil {
		return err
	}
	if taken {
		return ErrRoleNameTaken.WithDetails(validation.FieldErrors{{
			Field:   "name",
			Rule:    "unique",
			Message: ErrRoleNameTaken.Message,
		}})
	}
	return nil
}
