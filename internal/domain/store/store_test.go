package store

import (
	"testing"

	"github.com/erp/backoffice/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestNewStore(t *testing.T) {
	companyID := uuid.New()
	s := NewStore(companyID, "  Loja Centro ")

	assert.Equal(t, "Loja Centro", s.Nome)
	assert.Equal(t, companyID, s.CompanyID())
	assert.True(t, s.Ativo)
	assert.NotEqual(t, uuid.Nil, s.ID)
}

func TestStore_BelongsTo(t *testing.T) {
	owner := uuid.New()
	s := NewStore(owner, "Loja")

	assert.True(t, s.BelongsTo(owner))
	assert.False(t, s.BelongsTo(uuid.New()))
}

func TestRehydrate(t *testing.T) {
	base := shared.NewBaseEntity()
	owner := uuid.New()

	s := Rehydrate(base, shared.SoftDeletable{}, owner)

	assert.Equal(t, base.ID, s.ID)
	assert.Equal(t, owner, s.CompanyID())
	assert.False(t, s.IsDeleted())
}
