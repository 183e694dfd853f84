package models

import (
	"time"

	"github.com/erp/backoffice/internal/domain/identity"
	"github.com/google/uuid"
)

// UserModel is the persistence model for the users table
type UserModel struct {
	BaseModel
	Name      string     `gorm:"type:varchar(255);not null"`
	Email     string     `gorm:"type:varchar(255);not null;uniqueIndex"`
	CPF       *string    `gorm:"column:cpf;type:varchar(11)"`
	Password  string     `gorm:"type:varchar(255);not null"`
	EmpresaID *uuid.UUID `gorm:"type:uuid;index"`
	Tipo      *string    `gorm:"type:varchar(50)"`
	Ativo     bool       `gorm:"not null"`

	Empresa *CompanyModel `gorm:"foreignKey:EmpresaID"`
	Lojas   []StoreModel  `gorm:"many2many:user_lojas;joinForeignKey:UserID;joinReferences:LojaID"`
}

// TableName returns the table name for GORM
func (UserModel) TableName() string {
	return "users"
}

// ToDomain converts the persistence model to a domain User
func (m *UserModel) ToDomain() *identity.User {
	u := &identity.User{
		BaseEntity:   m.BaseModel.ToDomain(),
		Name:         m.Name,
		Email:        m.Email,
		CPF:          m.CPF,
		PasswordHash: m.Password,
		CompanyID:    m.EmpresaID,
		Tipo:         m.Tipo,
		Ativo:        m.Ativo,
		StoreIDs:     make([]uuid.UUID, 0, len(m.Lojas)),
		RoleIDs:      make([]uuid.UUID, 0),
		Stores:       make([]identity.StoreRef, 0, len(m.Lojas)),
	}
	if m.Empresa != nil {
		u.Company = &identity.CompanyRef{ID: m.Empresa.ID, NomeFantasia: m.Empresa.NomeFantasia}
	}
	for _, l := range m.Lojas {
		u.StoreIDs = append(u.StoreIDs, l.ID)
		u.Stores = append(u.Stores, identity.StoreRef{ID: l.ID, Nome: l.Nome})
	}
	return u
}

// UserModelFromDomain converts a domain User to the persistence model.
// Associations are written by the synchronizer, never through this model.
func UserModelFromDomain(u *identity.User) *UserModel {
	m := &UserModel{
		Name:      u.Name,
		Email:     u.Email,
		CPF:       u.CPF,
		Password:  u.PasswordHash,
		EmpresaID: u.CompanyID,
		Tipo:      u.Tipo,
		Ativo:     u.Ativo,
	}
	m.FromDomainBaseEntity(u.BaseEntity)
	return m
}

// UserStoreModel is a row of the user_lojas join table
type UserStoreModel struct {
	UserID    uuid.UUID `gorm:"type:uuid;primaryKey"`
	LojaID    uuid.UUID `gorm:"type:uuid;primaryKey"`
	CreatedAt time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (UserStoreModel) TableName() string {
	return "user_lojas"
}

// UserRoleModel is a row of the user_roles join table
type UserRoleModel struct {
	UserID    uuid.UUID `gorm:"type:uuid;primaryKey"`
	RoleID    uuid.UUID `gorm:"type:uuid;primaryKey"`
	CreatedAt time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (UserRoleModel) TableName() string {
	return "user_roles"
}

// RoleModel is the persistence model for the roles table
type RoleModel struct {
	BaseModel
	Name      string `gorm:"type:varchar(255);not null"`
	GuardName string `gorm:"type:varchar(50);not null;default:'web'"`
}

// TableName returns the table name for GORM
func (RoleModel) TableName() string {
	return "roles"
}

// ToDomain converts the persistence model to a domain Role
func (m *RoleModel) ToDomain() *identity.Role {
	return &identity.Role{
		BaseEntity:    m.BaseModel.ToDomain(),
		Name:          m.Name,
		GuardName:     m.GuardName,
		PermissionIDs: make([]uuid.UUID, 0),
	}
}

// RoleModelFromDomain converts a domain Role to the persistence model
func RoleModelFromDomain(r *identity.Role) *RoleModel {
	m := &RoleModel{Name: r.Name, GuardName: r.GuardName}
	m.FromDomainBaseEntity(r.BaseEntity)
	return m
}

// PermissionModel is the persistence model for the permissions table
type PermissionModel struct {
	BaseModel
	Name      string `gorm:"type:varchar(255);not null"`
	GuardName string `gorm:"type:varchar(50);not null;default:'web'"`
}

// TableName returns the table name for GORM
func (PermissionModel) TableName() string {
	return "permissions"
}

// ToDomain converts the persistence model to a domain Permission
func (m *PermissionModel) ToDomain() *identity.Permission {
	return &identity.Permission{
		BaseEntity: m.BaseModel.ToDomain(),
		Name:       m.Name,
		GuardName:  m.GuardName,
	}
}

// PermissionModelFromDomain converts a domain Permission to the persistence model
func PermissionModelFromDomain(p *identity.Permission) *PermissionModel {
	m := &PermissionModel{Name: p.Name, GuardName: p.GuardName}
	m.FromDomainBaseEntity(p.BaseEntity)
	return m
}

// RolePermissionModel is a row of the role_permissions join table
type RolePermissionModel struct {
	RoleID       uuid.UUID `gorm:"type:uuid;primaryKey"`
	PermissionID uuid.UUID `gorm:"type:uuid;primaryKey"`
	CreatedAt    time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (RolePermissionModel) TableName() string {
	return "role_permissions"
}
