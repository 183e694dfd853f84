package persistence

import (
	"context"
	"errors"
	"testing"
	"time"

	appshared "github.com/erp/backoffice/internal/application/shared"
	"github.com/erp/backoffice/internal/domain/company"
	"github.com/erp/backoffice/internal/domain/identity"
	"github.com/erp/backoffice/internal/domain/location"
	"github.com/erp/backoffice/internal/domain/shared"
	"github.com/erp/backoffice/internal/domain/store"
	"github.com/erp/backoffice/internal/infrastructure/persistence/models"
	"github.com/erp/backoffice/internal/testutil"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

func init() {
	identity.BcryptCost = bcrypt.MinCost
}

func linkCreatedAt(t *testing.T, db *gorm.DB, userID, storeID uuid.UUID) time.Time {
	t.Helper()
	var row models.UserStoreModel
	require.NoError(t, db.First(&row, "user_id = ? AND loja_id = ?", userID, storeID).Error)
	return row.CreatedAt
}

func TestGormUserRepository_SyncStores(t *testing.T) {
	ctx := context.Background()

	t.Run("replaces the set and keeps unchanged links", func(t *testing.T) {
		db := testutil.NewSQLiteDB(t)
		repo := NewGormUserRepository(db)
		companyID := testutil.SeedCompany(t, db, "Acme", nil)
		a := testutil.SeedStore(t, db, companyID, "A", true)
		b := testutil.SeedStore(t, db, companyID, "B", true)
		c := testutil.SeedStore(t, db, companyID, "C", true)
		userID := testutil.SeedUser(t, db, "Ana", "ana@example.com", &companyID)

		_, err := repo.SyncStores(ctx, userID, []uuid.UUID{a, b})
		require.NoError(t, err)
		bLinkedAt := linkCreatedAt(t, db, userID, b)

		time.Sleep(5 * time.Millisecond)
		result, err := repo.SyncStores(ctx, userID, []uuid.UUID{b, c, c})
		require.NoError(t, err)

		assert.Equal(t, []uuid.UUID{c}, result.Added)
		assert.Equal(t, []uuid.UUID{a}, result.Removed)
		assert.True(t, bLinkedAt.Equal(linkCreatedAt(t, db, userID, b)), "unchanged link must not be rewritten")

		user, err := repo.FindByID(ctx, userID)
		require.NoError(t, err)
		assert.ElementsMatch(t, []uuid.UUID{b, c}, user.StoreIDs)
		assert.Equal(t, "B", user.Stores[0].Nome)
		require.NotNil(t, user.Company)
		assert.Equal(t, "Acme", user.Company.NomeFantasia)
	})

	t.Run("empty set clears every link", func(t *testing.T) {
		db := testutil.NewSQLiteDB(t)
		repo := NewGormUserRepository(db)
		companyID := testutil.SeedCompany(t, db, "Acme", nil)
		a := testutil.SeedStore(t, db, companyID, "A", true)
		userID := testutil.SeedUser(t, db, "Ana", "ana@example.com", nil)

		_, err := repo.SyncStores(ctx, userID, []uuid.UUID{a})
		require.NoError(t, err)
		_, err = repo.SyncStores(ctx, userID, nil)
		require.NoError(t, err)

		assert.Equal(t, int64(0), testutil.Count(t, db, "user_lojas", "user_id = ?", userID))
	})

	t.Run("unknown id fails before writing and names the first one", func(t *testing.T) {
		db := testutil.NewSQLiteDB(t)
		repo := NewGormUserRepository(db)
		companyID := testutil.SeedCompany(t, db, "Acme", nil)
		a := testutil.SeedStore(t, db, companyID, "A", true)
		gone := testutil.SeedStore(t, db, companyID, "Fechada", true)
		testutil.SoftDelete(t, db, "lojas", gone)
		userID := testutil.SeedUser(t, db, "Ana", "ana@example.com", nil)
		missing := uuid.New()

		_, err := repo.SyncStores(ctx, userID, []uuid.UUID{a, gone, missing})

		require.Error(t, err)
		assert.ErrorIs(t, err, shared.ErrNotFound)
		assert.Contains(t, err.Error(), gone.String())
		assert.Equal(t, int64(0), testutil.Count(t, db, "user_lojas", ""))
	})
}

func TestGormUserRepository(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewSQLiteDB(t)
	repo := NewGormUserRepository(db)
	companyID := testutil.SeedCompany(t, db, "Acme", nil)
	otherID := testutil.SeedCompany(t, db, "Outra", nil)

	ana, err := identity.NewUser("Ana Souza", "Ana@Example.com", "segredo123")
	require.NoError(t, err)
	ana.CompanyID = &companyID
	require.NoError(t, repo.Create(ctx, ana))

	bruno, err := identity.NewUser("Bruno", "bruno@example.com", "segredo123")
	require.NoError(t, err)
	bruno.CompanyID = &otherID
	bruno.Ativo = false
	require.NoError(t, repo.Create(ctx, bruno))

	t.Run("duplicate email is a conflict", func(t *testing.T) {
		dup, err := identity.NewUser("Outra Ana", "ana@example.com", "segredo123")
		require.NoError(t, err)

		assert.ErrorIs(t, repo.Create(ctx, dup), shared.ErrAlreadyExists)
	})

	t.Run("finds by email case-insensitively", func(t *testing.T) {
		found, err := repo.FindByEmail(ctx, "ANA@example.com")
		require.NoError(t, err)
		assert.Equal(t, ana.ID, found.ID)
		assert.True(t, found.VerifyPassword("segredo123"))
	})

	t.Run("lists by company", func(t *testing.T) {
		users, total, err := repo.List(ctx, identity.UserFilter{CompanyID: &companyID})
		require.NoError(t, err)
		assert.Equal(t, int64(1), total)
		assert.Equal(t, ana.ID, users[0].ID)
	})

	t.Run("lists by status and search", func(t *testing.T) {
		users, total, err := repo.List(ctx, identity.UserFilter{ListFilter: shared.ListFilter{Status: shared.StatusInactive, Search: "BRU"}})
		require.NoError(t, err)
		assert.Equal(t, int64(1), total)
		assert.Equal(t, bruno.ID, users[0].ID)
	})

	t.Run("exists by email excludes self", func(t *testing.T) {
		exists, err := repo.ExistsByEmail(ctx, "ana@example.com", &ana.ID)
		require.NoError(t, err)
		assert.False(t, exists)

		exists, err = repo.ExistsByEmail(ctx, "ana@example.com", &bruno.ID)
		require.NoError(t, err)
		assert.True(t, exists)
	})

	t.Run("delete removes links", func(t *testing.T) {
		roleID := testutil.SeedRole(t, db, "vendedor")
		_, err := repo.SyncRoles(ctx, bruno.ID, []uuid.UUID{roleID})
		require.NoError(t, err)

		require.NoError(t, repo.Delete(ctx, bruno.ID))

		assert.Equal(t, int64(0), testutil.Count(t, db, "user_roles", ""))
		_, err = repo.FindByID(ctx, bruno.ID)
		assert.ErrorIs(t, err, shared.ErrNotFound)
		assert.ErrorIs(t, repo.Delete(ctx, bruno.ID), shared.ErrNotFound)
	})
}

func TestGormCompanyRepository(t *testing.T) {
	ctx := context.Background()

	t.Run("cnpj is reusable after soft delete", func(t *testing.T) {
		db := testutil.NewSQLiteDB(t)
		repo := NewGormCompanyRepository(db)

		first := company.NewCompany("Acme LTDA", "Acme", "a@acme.com")
		first.SetCNPJ("12.345.678/0001-90")
		require.NoError(t, repo.Create(ctx, first))

		second := company.NewCompany("Acme Novo LTDA", "Acme Novo", "b@acme.com")
		second.SetCNPJ("12.345.678/0001-90")
		assert.ErrorIs(t, repo.Create(ctx, second), shared.ErrAlreadyExists)

		require.NoError(t, repo.SoftDelete(ctx, first.ID))

		exists, err := repo.ExistsByCNPJ(ctx, "12.345.678/0001-90", nil)
		require.NoError(t, err)
		assert.False(t, exists)
		require.NoError(t, repo.Create(ctx, second))
	})

	t.Run("soft-deleted companies are hidden until restored", func(t *testing.T) {
		db := testutil.NewSQLiteDB(t)
		repo := NewGormCompanyRepository(db)
		c := company.NewCompany("Acme LTDA", "Acme", "a@acme.com")
		require.NoError(t, repo.Create(ctx, c))
		require.NoError(t, repo.SoftDelete(ctx, c.ID))

		_, err := repo.FindByID(ctx, c.ID)
		assert.ErrorIs(t, err, shared.ErrNotFound)
		_, total, err := repo.List(ctx, shared.ListFilter{})
		require.NoError(t, err)
		assert.Zero(t, total)
		assert.ErrorIs(t, repo.SoftDelete(ctx, c.ID), shared.ErrNotFound)

		deleted, err := repo.FindByIDWithDeleted(ctx, c.ID)
		require.NoError(t, err)
		assert.True(t, deleted.IsDeleted())

		require.NoError(t, repo.Restore(ctx, c.ID))
		restored, err := repo.FindByID(ctx, c.ID)
		require.NoError(t, err)
		assert.False(t, restored.IsDeleted())
		assert.ErrorIs(t, repo.Restore(ctx, c.ID), shared.ErrNotFound)
	})

	t.Run("lists by status and search, newest first", func(t *testing.T) {
		db := testutil.NewSQLiteDB(t)
		repo := NewGormCompanyRepository(db)
		names := []struct {
			fantasia string
			ativo    bool
		}{{"Padaria Sol", true}, {"Padaria Lua", false}, {"Mercado Sol", true}, {"Padaria_Estrela", true}}
		for i, n := range names {
			c := company.NewCompany(n.fantasia+" LTDA", n.fantasia, "x@example.com")
			c.Ativo = n.ativo
			c.CreatedAt = time.Now().Add(time.Duration(i) * time.Second)
			require.NoError(t, repo.Create(ctx, c))
		}

		items, total, err := repo.List(ctx, shared.ListFilter{Status: shared.StatusActive, Search: "padaria"})
		require.NoError(t, err)
		assert.Equal(t, int64(2), total)
		require.Len(t, items, 2)
		assert.Equal(t, "Padaria_Estrela", items[0].NomeFantasia)
		assert.Equal(t, "Padaria Sol", items[1].NomeFantasia)

		items, _, err = repo.List(ctx, shared.ListFilter{Search: "a_e"})
		require.NoError(t, err)
		require.Len(t, items, 1, "underscore is matched literally")

		items, total, err = repo.List(ctx, shared.ListFilter{PageSize: 1, Page: 2})
		require.NoError(t, err)
		assert.Equal(t, int64(4), total)
		require.Len(t, items, 1)
		assert.Equal(t, "Mercado Sol", items[0].NomeFantasia)
	})

	t.Run("update of a missing company is not found", func(t *testing.T) {
		db := testutil.NewSQLiteDB(t)
		repo := NewGormCompanyRepository(db)

		assert.ErrorIs(t, repo.Update(ctx, company.NewCompany("X", "X", "x@x.com")), shared.ErrNotFound)
	})
}

func TestGormStoreRepository(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewSQLiteDB(t)
	repo := NewGormStoreRepository(db)
	companyID := testutil.SeedCompany(t, db, "Acme", nil)
	otherID := testutil.SeedCompany(t, db, "Outra", nil)

	centro := store.NewStore(companyID, "Loja Centro")
	centro.Email = "centro@acme.com"
	centro.Address = store.Address{CEP: "01310-100", Cidade: "São Paulo", Estado: "SP"}
	require.NoError(t, repo.Create(ctx, centro))

	fechada := store.NewStore(companyID, "Loja Centro Velha")
	fechada.Ativo = false
	require.NoError(t, repo.Create(ctx, fechada))

	require.NoError(t, repo.Create(ctx, store.NewStore(otherID, "Centro Outra")))

	t.Run("update never moves the store to another company", func(t *testing.T) {
		moved := store.Rehydrate(centro.BaseEntity, centro.SoftDeletable, otherID)
		moved.Nome = "Loja Centro"
		moved.Ativo = true
		require.NoError(t, repo.Update(ctx, moved))

		got, err := repo.FindByID(ctx, centro.ID)
		require.NoError(t, err)
		assert.Equal(t, companyID, got.CompanyID())
		assert.Empty(t, got.Address.CEP, "update writes the submitted address")
	})

	t.Run("lists one company by status and search", func(t *testing.T) {
		items, total, err := repo.List(ctx, companyID, shared.ListFilter{Status: shared.StatusActive, Search: "centro"})
		require.NoError(t, err)
		assert.Equal(t, int64(1), total)
		assert.Equal(t, centro.ID, items[0].ID)
	})

	t.Run("active summaries skip inactive and deleted stores", func(t *testing.T) {
		gone := testutil.SeedStore(t, db, companyID, "Apagada", true)
		testutil.SoftDelete(t, db, "lojas", gone)

		summaries, err := repo.ListActiveSummaries(ctx, companyID)
		require.NoError(t, err)
		require.Len(t, summaries, 1)
		assert.Equal(t, "Loja Centro", summaries[0].Nome)

		ids, err := repo.ExistingIDs(ctx, []uuid.UUID{centro.ID, gone, fechada.ID})
		require.NoError(t, err)
		assert.ElementsMatch(t, []uuid.UUID{centro.ID, fechada.ID}, ids)
	})

	t.Run("soft delete hides the store", func(t *testing.T) {
		require.NoError(t, repo.SoftDelete(ctx, fechada.ID))

		_, err := repo.FindByID(ctx, fechada.ID)
		assert.ErrorIs(t, err, shared.ErrNotFound)
		assert.Equal(t, int64(1), testutil.Count(t, db, "lojas", "id = ?", fechada.ID), "row is kept")
	})
}

func TestGormRoleRepository(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewSQLiteDB(t)
	roles := NewGormRoleRepository(db)
	perms := NewGormPermissionRepository(db)

	admin := identity.NewRole("admin", "")
	require.NoError(t, roles.Create(ctx, admin))
	require.NoError(t, roles.Create(ctx, identity.NewRole("admin", "api")))
	assert.ErrorIs(t, roles.Create(ctx, identity.NewRole("admin", "web")), shared.ErrAlreadyExists)

	create := identity.NewPermission("users.create", "")
	update := identity.NewPermission("users.update", "")
	require.NoError(t, perms.Create(ctx, create))
	require.NoError(t, perms.Create(ctx, update))

	t.Run("exists by name is scoped to the guard", func(t *testing.T) {
		exists, err := roles.ExistsByName(ctx, "admin", "web", nil)
		require.NoError(t, err)
		assert.True(t, exists)

		exists, err = roles.ExistsByName(ctx, "admin", "sanctum", nil)
		require.NoError(t, err)
		assert.False(t, exists)

		exists, err = roles.ExistsByName(ctx, "admin", "web", &admin.ID)
		require.NoError(t, err)
		assert.False(t, exists)
	})

	t.Run("syncs permissions", func(t *testing.T) {
		_, err := roles.SyncPermissions(ctx, admin.ID, []uuid.UUID{create.ID, update.ID})
		require.NoError(t, err)
		result, err := roles.SyncPermissions(ctx, admin.ID, []uuid.UUID{update.ID})
		require.NoError(t, err)
		assert.Equal(t, []uuid.UUID{create.ID}, result.Removed)

		got, err := roles.FindByID(ctx, admin.ID)
		require.NoError(t, err)
		assert.Equal(t, []uuid.UUID{update.ID}, got.PermissionIDs)
	})

	t.Run("deleting a permission detaches it", func(t *testing.T) {
		require.NoError(t, perms.Delete(ctx, update.ID))

		got, err := roles.FindByID(ctx, admin.ID)
		require.NoError(t, err)
		assert.Empty(t, got.PermissionIDs)
	})

	t.Run("lists by name", func(t *testing.T) {
		items, total, err := perms.List(ctx, shared.ListFilter{Search: "USERS"})
		require.NoError(t, err)
		assert.Equal(t, int64(1), total)
		assert.Equal(t, "users.create", items[0].Name)
	})

	t.Run("rename keeps guard when omitted", func(t *testing.T) {
		admin.Rename("administrador", "")
		require.NoError(t, roles.Update(ctx, admin))

		got, err := roles.FindByID(ctx, admin.ID)
		require.NoError(t, err)
		assert.Equal(t, "administrador", got.Name)
		assert.Equal(t, identity.DefaultGuard, got.GuardName)
	})

	t.Run("hard delete", func(t *testing.T) {
		require.NoError(t, roles.Delete(ctx, admin.ID))
		assert.Equal(t, int64(0), testutil.Count(t, db, "roles", "id = ?", admin.ID))
	})
}

func TestGormLocationRepository(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewSQLiteDB(t)
	repo := NewGormLocationRepository(db)
	sp := testutil.SeedEstado(t, db, "SP", "São Paulo")
	rj := testutil.SeedEstado(t, db, "RJ", "Rio de Janeiro")
	capital := testutil.SeedMunicipio(t, db, sp, "SAO PAULO", "3550308")
	testutil.SeedMunicipio(t, db, rj, "Sao Paulo do Rio", "0000000")

	t.Run("finds subdivision by code", func(t *testing.T) {
		s, err := repo.FindSubdivisionByUF(ctx, "sp")
		require.NoError(t, err)
		assert.Equal(t, sp, s.ID)

		_, err = repo.FindSubdivisionByUF(ctx, "XX")
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})

	t.Run("matches municipality within the subdivision", func(t *testing.T) {
		m, err := repo.MatchMunicipality(ctx, sp, "Sao Paulo")
		require.NoError(t, err)
		assert.Equal(t, capital, m.ID)

		_, err = repo.MatchMunicipality(ctx, sp, "Campinas")
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})

	t.Run("lists", func(t *testing.T) {
		subs, err := repo.ListSubdivisions(ctx)
		require.NoError(t, err)
		require.Len(t, subs, 2)
		assert.Equal(t, "RJ", subs[0].UF)

		ms, err := repo.ListMunicipalities(ctx, location.MunicipalityFilter{Search: "paulo"})
		require.NoError(t, err)
		assert.Len(t, ms, 2)

		ms, err = repo.ListMunicipalities(ctx, location.MunicipalityFilter{EstadoID: &rj})
		require.NoError(t, err)
		assert.Len(t, ms, 1)
	})
}

func TestGormUnitOfWork_RollsBackStoreCreate(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewSQLiteDB(t)
	uow := NewGormUnitOfWork(db)
	companyID := testutil.SeedCompany(t, db, "Acme", nil)
	boom := errors.New("address write failed")

	err := uow.Do(ctx, func(repos appshared.Repositories) error {
		if err := repos.Stores.Create(ctx, store.NewStore(companyID, "Centro")); err != nil {
			return err
		}
		return boom
	})

	assert.ErrorIs(t, err, boom)
	assert.Equal(t, int64(0), testutil.Count(t, db, "lojas", ""))
}
