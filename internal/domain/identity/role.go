package identity

import (
	"strings"

	"github.com/erp/backoffice/internal/domain/shared"
	"github.com/google/uuid"
)

// DefaultGuard is applied when a role or permission is saved without a guard
const DefaultGuard = "web"

// Role groups permissions under a guard scope. Names are unique per guard.
type Role struct {
	shared.BaseEntity
	Name          string
	GuardName     string
	PermissionIDs []uuid.UUID
}

// Permission is a named capability under a guard scope.
type Permission struct {
	shared.BaseEntity
	Name      string
	GuardName string
}

// NewRole creates a role; an empty guard falls back to DefaultGuard.
func NewRole(name, guard string) *Role {
	return &Role{
		BaseEntity:    shared.NewBaseEntity(),
		Name:          strings.TrimSpace(name),
		GuardName:     guardOrDefault(guard, DefaultGuard),
		PermissionIDs: make([]uuid.UUID, 0),
	}
}

// Rename updates name and guard. An empty guard keeps the current one.
func (r *Role) Rename(name, guard string) {
	r.Name = strings.TrimSpace(name)
	r.GuardName = guardOrDefault(guard, r.GuardName)
	r.Touch()
}

// NewPermission creates a permission; an empty guard falls back to DefaultGuard.
func NewPermission(name, guard string) *Permission {
	return &Permission{
		BaseEntity: shared.NewBaseEntity(),
		Name:       strings.TrimSpace(name),
		GuardName:  guardOrDefault(guard, DefaultGuard),
	}
}

// Rename updates name and guard. An empty guard keeps the current one.
func (p *Permission) Rename(name, guard string) {
	p.Name = strings.TrimSpace(name)
	p.GuardName = guardOrDefault(guard, p.GuardName)
	p.Touch()
}

func guardOrDefault(guard, fallback string) string {
	guard = strings.TrimSpace(guard)
	if guard == "" {
		return fallback
	}
	return guard
}
