package identity

import (
	"time"

	"github.com/erp/backoffice/internal/domain/identity"
	"github.com/google/uuid"
)

// CreateUserInput contains input for creating a user
type CreateUserInput struct {
	Name                 string      `json:"name" validate:"required,max=255"`
	Email                string      `json:"email" validate:"required,email,max=255"`
	CPF                  string      `json:"cpf" validate:"omitempty,max=14"`
	Password             string      `json:"password" validate:"required,min=8,bcrypt"`
	PasswordConfirmation string      `json:"password_confirmation" validate:"omitempty,eqfield=Password"`
	EmpresaID            *uuid.UUID  `json:"empresa_id"`
	Tipo                 string      `json:"tipo" validate:"omitempty,max=50"`
	Ativo                *bool       `json:"ativo"`
	Lojas                []uuid.UUID `json:"lojas"`
	Roles                []uuid.UUID `json:"roles"`
}

// UpdateUserInput contains input for updating a user. Nil scalar fields keep
// their current value. Lojas is always applied as the complete store set, so
// an omitted or empty list clears it. Roles is applied only when present.
type UpdateUserInput struct {
	Name                 *string     `json:"name" validate:"omitempty,min=1,max=255"`
	Email                *string     `json:"email" validate:"omitempty,email,max=255"`
	CPF                  *string     `json:"cpf" validate:"omitempty,max=14"`
	Password             string      `json:"password" validate:"omitempty,min=8,bcrypt"`
	PasswordConfirmation string      `json:"password_confirmation" validate:"omitempty,eqfield=Password"`
	EmpresaID            *uuid.UUID  `json:"empresa_id"`
	Tipo                 *string     `json:"tipo" validate:"omitempty,max=50"`
	Ativo                *bool       `json:"ativo"`
	Lojas                []uuid.UUID `json:"lojas"`
	Roles                []uuid.UUID `json:"roles"`
}

// CompanyRefDTO is the company shown with a user
type CompanyRefDTO struct {
	ID           uuid.UUID `json:"id"`
	NomeFantasia string    `json:"nome_fantasia"`
}

// StoreRefDTO is a store shown with a user
type StoreRefDTO struct {
	ID   uuid.UUID `json:"id"`
	Nome string    `json:"nome"`
}

// UserDTO represents user data transfer object. The password hash is never
// part of it.
type UserDTO struct {
	ID        uuid.UUID      `json:"id"`
	Name      string         `json:"name"`
	Email     string         `json:"email"`
	CPF       *string        `json:"cpf"`
	EmpresaID *uuid.UUID     `json:"empresa_id"`
	Empresa   *CompanyRefDTO `json:"empresa,omitempty"`
	Tipo      *string        `json:"tipo"`
	Ativo     bool           `json:"ativo"`
	Lojas     []StoreRefDTO  `json:"lojas"`
	RoleIDs   []uuid.UUID    `json:"roles"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}

// ToUserDTO converts a domain User to UserDTO
func ToUserDTO(u *identity.User) UserDTO {
	dto := UserDTO{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		CPF:       u.CPF,
		EmpresaID: u.CompanyID,
		Tipo:      u.Tipo,
		Ativo:     u.Ativo,
		Lojas:     make([]StoreRefDTO, len(u.Stores)),
		RoleIDs:   u.RoleIDs,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
	if dto.RoleIDs == nil {
		dto.RoleIDs = []uuid.UUID{}
	}
	if u.Company != nil {
		dto.Empresa = &CompanyRefDTO{ID: u.Company.ID, NomeFantasia: u.Company.NomeFantasia}
	}
	for i, s := range u.Stores {
		dto.Lojas[i] = StoreRefDTO{ID: s.ID, Nome: s.Nome}
	}
	return dto
}

// RoleInput contains input for creating or updating a role
type RoleInput struct {
	Name      string `json:"name" validate:"required,max=255"`
	GuardName string `json:"guard_name" validate:"omitempty,guard"`
}

// SyncPermissionsInput is the complete permission set of a role
type SyncPermissionsInput struct {
	Permissions []uuid.UUID `json:"permissions"`
}

// RoleDTO represents role data transfer object
type RoleDTO struct {
	ID            uuid.UUID   `json:"id"`
	Name          string      `json:"name"`
	GuardName     string      `json:"guard_name"`
	PermissionIDs []uuid.UUID `json:"permissions"`
	CreatedAt     time.Time   `json:"created_at"`
	UpdatedAt     time.Time   `json:"updated_at"`
}

// ToRoleDTO converts a domain Role to RoleDTO
func ToRoleDTO(r *identity.Role) RoleDTO {
	ids := r.PermissionIDs
	if ids == nil {
		ids = []uuid.UUID{}
	}
	return RoleDTO{
		ID:            r.ID,
		Name:          r.Name,
		GuardName:     r.GuardName,
		PermissionIDs: ids,
		CreatedAt:     r.CreatedAt,
		UpdatedAt:     r.UpdatedAt,
	}
}

// PermissionInput contains input for creating or updating a permission
type PermissionInput struct {
	Name      string `json:"name" validate:"required,max=255"`
	GuardName string `json:"guard_name" validate:"omitempty,guard"`
}

// PermissionDTO represents permission data transfer object
type PermissionDTO struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	GuardName string    `json:"guard_name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ToPermissionDTO converts a domain Permission to PermissionDTO
func ToPermissionDTO(p *identity.Permission) PermissionDTO {
	return PermissionDTO{
		ID:        p.ID,
		Name:      p.Name,
		GuardName: p.GuardName,
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
}

// LoginInput contains login credentials
type LoginInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// LoginResult is returned by a successful login
type LoginResult struct {
	AccessToken string    `json:"access_token"`
	TokenType   string    `json:"token_type"`
	ExpiresAt   time.Time `json:"expires_at"`
	User        UserDTO   `json:"user"`
}
