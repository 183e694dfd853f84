package company

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCompany(t *testing.T) {
	c := NewCompany("  Acme LTDA ", "Acme", " Contato@Acme.com ")

	assert.Equal(t, "Acme LTDA", c.RazaoSocial)
	assert.Equal(t, "contato@acme.com", c.Email)
	assert.True(t, c.Ativo)
	assert.False(t, c.IsDeleted())
	assert.Nil(t, c.CNPJ)
}

func TestCompany_SetCNPJ(t *testing.T) {
	c := NewCompany("Acme", "Acme", "a@a.com")

	c.SetCNPJ("12.345.678/0001-90")
	require.NotNil(t, c.CNPJ)
	assert.Equal(t, "12.345.678/0001-90", c.CNPJValue())

	c.SetCNPJ("   ")
	assert.Nil(t, c.CNPJ)
	assert.Equal(t, "", c.CNPJValue())
}

func TestCompany_SetMembership(t *testing.T) {
	start := time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)
	later := start.AddDate(1, 0, 0)

	t.Run("accepts end after start", func(t *testing.T) {
		c := NewCompany("Acme", "Acme", "a@a.com")
		require.NoError(t, c.SetMembership(&start, &later))
		assert.Equal(t, &later, c.DataExpiracao)
	})

	t.Run("rejects equal dates", func(t *testing.T) {
		c := NewCompany("Acme", "Acme", "a@a.com")
		assert.ErrorIs(t, c.SetMembership(&start, &start), ErrInvalidMembership)
	})

	t.Run("missing side skips the check", func(t *testing.T) {
		c := NewCompany("Acme", "Acme", "a@a.com")
		assert.NoError(t, c.SetMembership(nil, &start))
		assert.NoError(t, c.SetMembership(&later, nil))
	})
}

func TestCompany_ReplaceLogo(t *testing.T) {
	c := NewCompany("Acme", "Acme", "a@a.com")

	prev, obsolete := c.ReplaceLogo("empresas/logos/a.png")
	assert.Equal(t, "", prev)
	assert.False(t, obsolete)

	prev, obsolete = c.ReplaceLogo("empresas/logos/a.png")
	assert.Equal(t, "empresas/logos/a.png", prev)
	assert.False(t, obsolete)

	prev, obsolete = c.ReplaceLogo("empresas/logos/b.png")
	assert.Equal(t, "empresas/logos/a.png", prev)
	assert.True(t, obsolete)
	assert.Equal(t, "empresas/logos/b.png", c.LogoPath)
}
