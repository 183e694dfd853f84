package identity

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	appshared "github.com/erp/backoffice/internal/application/shared"
	"github.com/erp/backoffice/internal/application/validation"
	"github.com/erp/backoffice/internal/domain/identity"
	"github.com/erp/backoffice/internal/domain/shared"
	"github.com/erp/backoffice/internal/infrastructure/auth"
	"github.com/erp/backoffice/internal/infrastructure/persistence"
	"github.com/erp/backoffice/internal/testutil"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

func init() {
	identity.BcryptCost = bcrypt.MinCost
}

type userFixture struct {
	svc      *UserService
	db       *gorm.DB
	sessions *auth.InMemoryRevocationStore
}

func newUserFixture(t *testing.T) userFixture {
	t.Helper()
	db := testutil.NewSQLiteDB(t)
	sessions := auth.NewInMemoryRevocationStore()
	svc := NewUserService(
		persistence.NewGormUserRepository(db),
		persistence.NewGormCompanyRepository(db),
		persistence.NewGormUnitOfWork(db),
		sessions,
		time.Hour,
		validation.New(),
		zap.NewNop(),
	)
	return userFixture{svc: svc, db: db, sessions: sessions}
}

// failingUsers fails every write after the transaction has started
type failingUsers struct {
	identity.UserRepository
}

func (failingUsers) Create(context.Context, *identity.User) error {
	return errors.New("connection reset")
}

func (failingUsers) Update(context.Context, *identity.User) error {
	return errors.New("connection reset")
}

func (failingUsers) Delete(context.Context, uuid.UUID) error {
	return errors.New("connection reset")
}

type failingUoW struct{}

func (failingUoW) Do(_ context.Context, fn func(repos appshared.Repositories) error) error {
	return fn(appshared.Repositories{Users: failingUsers{}})
}

func storeIDs(dto *UserDTO) []uuid.UUID {
	ids := make([]uuid.UUID, len(dto.Lojas))
	for i, l := range dto.Lojas {
		ids[i] = l.ID
	}
	return ids
}

func validCreate() CreateUserInput {
	return CreateUserInput{
		Name:                 "Maria Silva",
		Email:                "Maria@Example.com",
		Password:             "segredo123",
		PasswordConfirmation: "segredo123",
	}
}

func TestUserService_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("normalizes fields and links stores and roles", func(t *testing.T) {
		f := newUserFixture(t)
		companyID := testutil.SeedCompany(t, f.db, "Acme", nil)
		lojaA := testutil.SeedStore(t, f.db, companyID, "Loja A", true)
		lojaB := testutil.SeedStore(t, f.db, companyID, "Loja B", true)
		roleID := testutil.SeedRole(t, f.db, "gerente")

		input := validCreate()
		input.CPF = "123.456.789-09"
		input.Tipo = "  "
		input.EmpresaID = &companyID
		input.Lojas = []uuid.UUID{lojaB, lojaA, lojaB}
		input.Roles = []uuid.UUID{roleID}

		dto, err := f.svc.Create(ctx, input)

		require.NoError(t, err)
		assert.Equal(t, "maria@example.com", dto.Email)
		require.NotNil(t, dto.CPF)
		assert.Equal(t, "12345678909", *dto.CPF)
		assert.Nil(t, dto.Tipo)
		assert.True(t, dto.Ativo)
		require.NotNil(t, dto.Empresa)
		assert.Equal(t, "Acme", dto.Empresa.NomeFantasia)
		assert.ElementsMatch(t, []uuid.UUID{lojaA, lojaB}, storeIDs(dto))
		assert.Equal(t, []uuid.UUID{roleID}, dto.RoleIDs)

		stored, err := persistence.NewGormUserRepository(f.db).FindByEmail(ctx, "maria@example.com")
		require.NoError(t, err)
		assert.NotEqual(t, "segredo123", stored.PasswordHash)
		assert.True(t, stored.VerifyPassword("segredo123"))
	})

	t.Run("empty cpf is stored as null", func(t *testing.T) {
		f := newUserFixture(t)
		input := validCreate()
		input.CPF = "..-"

		dto, err := f.svc.Create(ctx, input)

		require.NoError(t, err)
		assert.Nil(t, dto.CPF)
		assert.Empty(t, dto.Lojas)
	})

	t.Run("validation errors", func(t *testing.T) {
		f := newUserFixture(t)

		_, err := f.svc.Create(ctx, CreateUserInput{
			Email:                "not-an-email",
			Password:             "short",
			PasswordConfirmation: "other",
		})

		require.ErrorIs(t, err, shared.ErrValidation)
		de, _ := shared.AsDomainError(err)
		fields := map[string]string{}
		for _, fe := range de.Details.(validation.FieldErrors) {
			fields[fe.Field] = fe.Rule
		}
		assert.Equal(t, "required", fields["name"])
		assert.Equal(t, "email", fields["email"])
		assert.Equal(t, "min", fields["password"])
		assert.Equal(t, "eqfield", fields["password_confirmation"])
	})

	t.Run("password is limited in bytes", func(t *testing.T) {
		f := newUserFixture(t)
		input := validCreate()
		input.Password = strings.Repeat("é", 40)
		input.PasswordConfirmation = input.Password

		_, err := f.svc.Create(ctx, input)

		require.ErrorIs(t, err, shared.ErrValidation)
		de, _ := shared.AsDomainError(err)
		assert.Equal(t, validation.FieldErrors{{
			Field:   "password",
			Rule:    "bcrypt",
			Message: "O campo password não pode ser superior a 72 bytes.",
		}}, de.Details)
		assert.Equal(t, int64(0), testutil.Count(t, f.db, "users", ""))
	})

	t.Run("duplicate email is a conflict", func(t *testing.T) {
		f := newUserFixture(t)
		testutil.SeedUser(t, f.db, "Outra", "maria@example.com", nil)

		_, err := f.svc.Create(ctx, validCreate())

		require.ErrorIs(t, err, shared.ErrAlreadyExists)
		assert.Equal(t, "O e-mail informado já está em uso.", err.Error())
	})

	t.Run("unknown store rolls the user back", func(t *testing.T) {
		f := newUserFixture(t)
		companyID := testutil.SeedCompany(t, f.db, "Acme", nil)
		known := testutil.SeedStore(t, f.db, companyID, "Loja A", true)
		unknown := uuid.New()

		input := validCreate()
		input.Lojas = []uuid.UUID{known, unknown}
		_, err := f.svc.Create(ctx, input)

		require.ErrorIs(t, err, shared.ErrNotFound)
		assert.Contains(t, err.Error(), unknown.String())
		assert.Equal(t, int64(0), testutil.Count(t, f.db, "users", ""))
		assert.Equal(t, int64(0), testutil.Count(t, f.db, "user_lojas", ""))
	})

	t.Run("unknown company", func(t *testing.T) {
		f := newUserFixture(t)
		missing := uuid.New()
		input := validCreate()
		input.EmpresaID = &missing

		_, err := f.svc.Create(ctx, input)

		assert.ErrorIs(t, err, shared.ErrNotFound)
	})

	t.Run("persistence failure is a generic transaction error", func(t *testing.T) {
		f := newUserFixture(t)
		f.svc.uow = failingUoW{}

		_, err := f.svc.Create(ctx, validCreate())

		require.ErrorIs(t, err, shared.ErrTransactionFailed)
		assert.Equal(t, "Erro ao cadastrar usuário. Tente novamente.", err.Error())
	})
}

func TestUserService_Update(t *testing.T) {
	ctx := context.Background()

	t.Run("replaces the store set and keeps the password", func(t *testing.T) {
		f := newUserFixture(t)
		companyID := testutil.SeedCompany(t, f.db, "Acme", nil)
		a := testutil.SeedStore(t, f.db, companyID, "Loja A", true)
		b := testutil.SeedStore(t, f.db, companyID, "Loja B", true)
		c := testutil.SeedStore(t, f.db, companyID, "Loja C", true)

		input := validCreate()
		input.Lojas = []uuid.UUID{a, b}
		created, err := f.svc.Create(ctx, input)
		require.NoError(t, err)

		name := "Maria S."
		updated, err := f.svc.Update(ctx, created.ID, UpdateUserInput{
			Name:  &name,
			Lojas: []uuid.UUID{b, c},
		})

		require.NoError(t, err)
		assert.Equal(t, "Maria S.", updated.Name)
		assert.ElementsMatch(t, []uuid.UUID{b, c}, storeIDs(updated))

		stored, err := persistence.NewGormUserRepository(f.db).FindByID(ctx, created.ID)
		require.NoError(t, err)
		assert.True(t, stored.VerifyPassword("segredo123"))
	})

	t.Run("changes the password when provided", func(t *testing.T) {
		f := newUserFixture(t)
		created, err := f.svc.Create(ctx, validCreate())
		require.NoError(t, err)

		_, err = f.svc.Update(ctx, created.ID, UpdateUserInput{Password: "novasenha1"})
		require.NoError(t, err)

		stored, err := persistence.NewGormUserRepository(f.db).FindByID(ctx, created.ID)
		require.NoError(t, err)
		assert.True(t, stored.VerifyPassword("novasenha1"))
		assert.False(t, stored.VerifyPassword("segredo123"))
	})

	t.Run("omitted stores clear the set, omitted roles keep theirs", func(t *testing.T) {
		f := newUserFixture(t)
		companyID := testutil.SeedCompany(t, f.db, "Acme", nil)
		a := testutil.SeedStore(t, f.db, companyID, "Loja A", true)
		roleID := testutil.SeedRole(t, f.db, "gerente")

		input := validCreate()
		input.Lojas = []uuid.UUID{a}
		input.Roles = []uuid.UUID{roleID}
		created, err := f.svc.Create(ctx, input)
		require.NoError(t, err)

		updated, err := f.svc.Update(ctx, created.ID, UpdateUserInput{})

		require.NoError(t, err)
		assert.Empty(t, updated.Lojas)
		assert.Equal(t, []uuid.UUID{roleID}, updated.RoleIDs)

		updated, err = f.svc.Update(ctx, created.ID, UpdateUserInput{Roles: []uuid.UUID{}})
		require.NoError(t, err)
		assert.Empty(t, updated.RoleIDs)
	})

	t.Run("blank cpf and tipo keep the stored values", func(t *testing.T) {
		f := newUserFixture(t)
		input := validCreate()
		input.CPF = "12345678909"
		input.Tipo = "admin"
		created, err := f.svc.Create(ctx, input)
		require.NoError(t, err)

		blank := ""
		updated, err := f.svc.Update(ctx, created.ID, UpdateUserInput{CPF: &blank, Tipo: &blank})

		require.NoError(t, err)
		assert.Equal(t, "12345678909", *updated.CPF)
		assert.Equal(t, "admin", *updated.Tipo)
	})

	t.Run("email taken by another user", func(t *testing.T) {
		f := newUserFixture(t)
		testutil.SeedUser(t, f.db, "Outra", "outra@example.com", nil)
		created, err := f.svc.Create(ctx, validCreate())
		require.NoError(t, err)

		taken := "OUTRA@example.com"
		_, err = f.svc.Update(ctx, created.ID, UpdateUserInput{Email: &taken})
		assert.ErrorIs(t, err, shared.ErrAlreadyExists)

		own := "maria@example.com"
		_, err = f.svc.Update(ctx, created.ID, UpdateUserInput{Email: &own})
		assert.NoError(t, err)
	})

	t.Run("unknown store leaves the user untouched", func(t *testing.T) {
		f := newUserFixture(t)
		companyID := testutil.SeedCompany(t, f.db, "Acme", nil)
		a := testutil.SeedStore(t, f.db, companyID, "Loja A", true)
		input := validCreate()
		input.Lojas = []uuid.UUID{a}
		created, err := f.svc.Create(ctx, input)
		require.NoError(t, err)

		name := "Outro Nome"
		_, err = f.svc.Update(ctx, created.ID, UpdateUserInput{Name: &name, Lojas: []uuid.UUID{uuid.New()}})
		require.ErrorIs(t, err, shared.ErrNotFound)

		got, err := f.svc.Get(ctx, created.ID)
		require.NoError(t, err)
		assert.Equal(t, "Maria Silva", got.Name)
		assert.Equal(t, []uuid.UUID{a}, storeIDs(got))
	})

	t.Run("persistence failure is a generic transaction error", func(t *testing.T) {
		f := newUserFixture(t)
		created, err := f.svc.Create(ctx, validCreate())
		require.NoError(t, err)
		f.svc.uow = failingUoW{}

		_, err = f.svc.Update(ctx, created.ID, UpdateUserInput{})

		require.ErrorIs(t, err, shared.ErrTransactionFailed)
		assert.Equal(t, "Erro ao atualizar usuário. Tente novamente.", err.Error())
	})

	t.Run("unknown user", func(t *testing.T) {
		f := newUserFixture(t)

		_, err := f.svc.Update(ctx, uuid.New(), UpdateUserInput{})

		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}

func TestUserService_Delete(t *testing.T) {
	ctx := context.Background()

	t.Run("rejects deleting the acting user", func(t *testing.T) {
		f := newUserFixture(t)
		userID := testutil.SeedUser(t, f.db, "Maria", "maria@example.com", nil)

		err := f.svc.Delete(ctx, userID, userID)

		require.ErrorIs(t, err, identity.ErrSelfDelete)
		assert.Equal(t, "Você não pode excluir seu próprio usuário.", err.Error())
		assert.Equal(t, int64(1), testutil.Count(t, f.db, "users", ""))
	})

	t.Run("removes the user and revokes its sessions", func(t *testing.T) {
		f := newUserFixture(t)
		actor := testutil.SeedUser(t, f.db, "Admin", "admin@example.com", nil)
		target := testutil.SeedUser(t, f.db, "Maria", "maria@example.com", nil)
		issuedAt := time.Now().Add(-time.Minute)

		require.NoError(t, f.svc.Delete(ctx, actor, target))

		assert.Equal(t, int64(0), testutil.Count(t, f.db, "users", "id = ?", target))
		revoked, err := f.sessions.IsUserRevoked(ctx, target.String(), issuedAt)
		require.NoError(t, err)
		assert.True(t, revoked)

		assert.ErrorIs(t, f.svc.Delete(ctx, actor, target), shared.ErrNotFound)
	})

	t.Run("failure keeps the user and its links", func(t *testing.T) {
		f := newUserFixture(t)
		companyID := testutil.SeedCompany(t, f.db, "Acme", nil)
		loja := testutil.SeedStore(t, f.db, companyID, "Loja A", true)
		roleID := testutil.SeedRole(t, f.db, "gerente")
		actor := testutil.SeedUser(t, f.db, "Admin", "admin@example.com", nil)
		input := validCreate()
		input.Lojas = []uuid.UUID{loja}
		input.Roles = []uuid.UUID{roleID}
		target, err := f.svc.Create(ctx, input)
		require.NoError(t, err)

		// The link rows go first, then the user row fails
		require.NoError(t, f.db.Exec(`CREATE TRIGGER users_locked BEFORE DELETE ON users
			BEGIN SELECT RAISE(ABORT, 'users are locked'); END`).Error)

		err = f.svc.Delete(ctx, actor, target.ID)

		require.ErrorIs(t, err, shared.ErrTransactionFailed)
		assert.Equal(t, "Erro ao excluir usuário. Tente novamente.", err.Error())
		assert.Equal(t, int64(1), testutil.Count(t, f.db, "users", "id = ?", target.ID))
		assert.Equal(t, int64(1), testutil.Count(t, f.db, "user_lojas", "user_id = ?", target.ID))
		assert.Equal(t, int64(1), testutil.Count(t, f.db, "user_roles", "user_id = ?", target.ID))
		revoked, err := f.sessions.IsUserRevoked(ctx, target.ID.String(), time.Now().Add(-time.Minute))
		require.NoError(t, err)
		assert.False(t, revoked, "sessions stay valid when nothing was deleted")
	})

	t.Run("persistence failure is a generic transaction error", func(t *testing.T) {
		f := newUserFixture(t)
		actor := testutil.SeedUser(t, f.db, "Admin", "admin@example.com", nil)
		target := testutil.SeedUser(t, f.db, "Maria", "maria@example.com", nil)
		f.svc.uow = failingUoW{}

		err := f.svc.Delete(ctx, actor, target)

		require.ErrorIs(t, err, shared.ErrTransactionFailed)
		assert.Equal(t, int64(1), testutil.Count(t, f.db, "users", "id = ?", target))
	})
}

func TestUserService_List(t *testing.T) {
	ctx := context.Background()
	f := newUserFixture(t)
	acme := testutil.SeedCompany(t, f.db, "Acme", nil)
	other := testutil.SeedCompany(t, f.db, "Outra", nil)
	testutil.SeedUser(t, f.db, "Maria", "maria@acme.com", &acme)
	testutil.SeedUser(t, f.db, "Mario", "mario@outra.com", &other)
	testutil.SeedUser(t, f.db, "Joana", "joana@acme.com", &acme)

	page, err := f.svc.List(ctx, identity.UserFilter{
		ListFilter: shared.ListFilter{Search: "mari"},
		CompanyID:  &acme,
	})

	require.NoError(t, err)
	require.Equal(t, int64(1), page.Total)
	assert.Equal(t, "Maria", page.Items[0].Name)
	require.NotNil(t, page.Items[0].Empresa)
	assert.Equal(t, "Acme", page.Items[0].Empresa.NomeFantasia)
	assert.Equal(t, acme.String(), page.Filters["empresa_id"])
	assert.Equal(t, "mari", page.Filters["search"])

	page, err = f.svc.List(ctx, identity.UserFilter{})
	require.NoError(t, err)
	assert.Equal(t, int64(3), page.Total)
	assert.Equal(t, "", page.Filters["empresa_id"])
}
