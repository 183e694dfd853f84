package identity

import (
	"strings"

	"github.com/erp/backoffice/internal/domain/shared"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// BcryptCost is the hashing cost for user passwords
var BcryptCost = 12

// Password length bounds. The upper bound is in bytes, the limit of bcrypt.
const (
	minPasswordLength = 8
	MaxPasswordBytes  = 72
)

// Password errors
var (
	ErrPasswordTooShort = shared.NewDomainError(shared.CodeValidation, "A senha deve ter pelo menos 8 caracteres")
	ErrPasswordTooLong  = shared.NewDomainError(shared.CodeValidation, "A senha não pode ser superior a 72 bytes")
)

// ErrSelfDelete is returned when a user tries to delete their own account.
var ErrSelfDelete = shared.NewDomainError(shared.CodeForbiddenSelfDelete,
	"Você não pode excluir seu próprio usuário.")

// CompanyRef is the company a user belongs to, loaded for display.
type CompanyRef struct {
	ID           uuid.UUID
	NomeFantasia string
}

// StoreRef is a store linked to a user, loaded for display.
type StoreRef struct {
	ID   uuid.UUID
	Nome string
}

// User is a back-office account. Its stores are replaced as a whole on every
// update through the association synchronizer.
type User struct {
	shared.BaseEntity
	Name         string
	Email        string
	CPF          *string
	PasswordHash string
	CompanyID    *uuid.UUID
	Tipo         *string
	Ativo        bool
	StoreIDs     []uuid.UUID
	RoleIDs      []uuid.UUID

	// Read side only; filled by repositories on list/get
	Company *CompanyRef
	Stores  []StoreRef
}

// NewUser creates an active user with a hashed password
func NewUser(name, email, password string) (*User, error) {
	u := &User{
		BaseEntity: shared.NewBaseEntity(),
		Name:       strings.TrimSpace(name),
		Email:      NormalizeEmail(email),
		Ativo:      true,
		StoreIDs:   make([]uuid.UUID, 0),
		RoleIDs:    make([]uuid.UUID, 0),
	}
	if err := u.SetPassword(password); err != nil {
		return nil, err
	}
	return u, nil
}

// SetPassword hashes and stores a new password
func (u *User) SetPassword(password string) error {
	if len(password) < minPasswordLength {
		return ErrPasswordTooShort
	}
	if len(password) > MaxPasswordBytes {
		return ErrPasswordTooLong
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), BcryptCost)
	if err != nil {
		return shared.ErrInternal.WithCause(err)
	}
	u.PasswordHash = string(hash)
	return nil
}

// VerifyPassword checks if the provided password matches
func (u *User) VerifyPassword(password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) == nil
}

// SetCPF stores the personal id digits only. Input without digits leaves the
// current value untouched and reports false.
func (u *User) SetCPF(raw string) bool {
	digits := shared.DigitsOnly(raw)
	if digits == "" {
		return false
	}
	u.CPF = &digits
	return true
}

// SetTipo sets the user type; blank input is ignored.
func (u *User) SetTipo(tipo string) bool {
	tipo = strings.TrimSpace(tipo)
	if tipo == "" {
		return false
	}
	u.Tipo = &tipo
	return true
}

// SetStores replaces the desired store set (deduplicated)
func (u *User) SetStores(ids []uuid.UUID) {
	u.StoreIDs = shared.Dedup(ids)
}

// EnsureDeletableBy rejects deletion of the acting user's own account.
func (u *User) EnsureDeletableBy(actorID uuid.UUID) error {
	if actorID != uuid.Nil && actorID == u.ID {
		return ErrSelfDelete
	}
	return nil
}

// NormalizeEmail lowercases and trims an email
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
