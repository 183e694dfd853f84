package testutil

import (
	"testing"
	"time"

	"github.com/erp/backoffice/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newBase() models.BaseModel {
	now := time.Now().UTC()
	return models.BaseModel{ID: uuid.New(), CreatedAt: now, UpdatedAt: now}
}

// SeedCompany inserts a live company and returns its id.
func SeedCompany(t *testing.T, db *gorm.DB, nomeFantasia string, cnpj *string) uuid.UUID {
	t.Helper()
	m := &models.CompanyModel{
		BaseModel:    newBase(),
		RazaoSocial:  nomeFantasia + " LTDA",
		NomeFantasia: nomeFantasia,
		CNPJ:         cnpj,
		Email:        "contato@example.com",
		Ativo:        true,
	}
	require.NoError(t, db.Create(m).Error)
	return m.ID
}

// SeedStore inserts a store for companyID and returns its id.
func SeedStore(t *testing.T, db *gorm.DB, companyID uuid.UUID, nome string, ativo bool) uuid.UUID {
	t.Helper()
	m := &models.StoreModel{
		BaseModel: newBase(),
		EmpresaID: companyID,
		Nome:      nome,
		Ativo:     ativo,
	}
	require.NoError(t, db.Create(m).Error)
	return m.ID
}

// SeedUser inserts a user with an opaque password hash and returns its id.
func SeedUser(t *testing.T, db *gorm.DB, name, email string, companyID *uuid.UUID) uuid.UUID {
	t.Helper()
	m := &models.UserModel{
		BaseModel: newBase(),
		Name:      name,
		Email:     email,
		Password:  "$2a$04$seeded.hash.not.used.for.login.................",
		EmpresaID: companyID,
		Ativo:     true,
	}
	require.NoError(t, db.Omit("Empresa", "Lojas").Create(m).Error)
	return m.ID
}

// SeedRole inserts a role under the default guard.
func SeedRole(t *testing.T, db *gorm.DB, name string) uuid.UUID {
	t.Helper()
	m := &models.RoleModel{BaseModel: newBase(), Name: name, GuardName: "web"}
	require.NoError(t, db.Create(m).Error)
	return m.ID
}

// SeedPermission inserts a permission under the default guard.
func SeedPermission(t *testing.T, db *gorm.DB, name string) uuid.UUID {
	t.Helper()
	m := &models.PermissionModel{BaseModel: newBase(), Name: name, GuardName: "web"}
	require.NoError(t, db.Create(m).Error)
	return m.ID
}

// SeedEstado inserts a federative unit.
func SeedEstado(t *testing.T, db *gorm.DB, uf, nome string) uuid.UUID {
	t.Helper()
	m := &models.EstadoModel{ID: uuid.New(), UF: uf, Nome: nome}
	require.NoError(t, db.Create(m).Error)
	return m.ID
}

// SeedMunicipio inserts a municipality of estadoID.
func SeedMunicipio(t *testing.T, db *gorm.DB, estadoID uuid.UUID, nome, ibge string) uuid.UUID {
	t.Helper()
	m := &models.MunicipioModel{ID: uuid.New(), EstadoID: estadoID, Nome: nome, CodigoIBGE: ibge}
	require.NoError(t, db.Create(m).Error)
	return m.ID
}

// SoftDelete stamps deleted_at on a row of table.
func SoftDelete(t *testing.T, db *gorm.DB, table string, id uuid.UUID) {
	t.Helper()
	require.NoError(t, db.Table(table).Where("id = ?", id).Update("deleted_at", time.Now().UTC()).Error)
}

// Count returns the number of rows in table matching where.
func Count(t *testing.T, db *gorm.DB, table string, where string, args ...any) int64 {
	t.Helper()
	var n int64
	q := db.Table(table)
	if where != "" {
		q = q.Where(where, args...)
	}
	require.NoError(t, q.Count(&n).Error)
	return n
}
