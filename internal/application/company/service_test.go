package company

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/erp/backoffice/internal/application/validation"
	"github.com/erp/backoffice/internal/domain/shared"
	"github.com/erp/backoffice/internal/infrastructure/persistence"
	"github.com/erp/backoffice/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type mockStorage struct {
	mock.Mock
}

func (m *mockStorage) Upload(ctx context.Context, key string, data []byte, contentType string) error {
	return m.Called(ctx, key, data, contentType).Error(0)
}

func (m *mockStorage) DeleteObject(ctx context.Context, key string) error {
	return m.Called(ctx, key).Error(0)
}

func (m *mockStorage) GenerateDownloadURL(ctx context.Context, key string, expiresIn time.Duration) (string, time.Time, error) {
	args := m.Called(ctx, key, expiresIn)
	return args.String(0), time.Time{}, args.Error(1)
}

var pngBytes = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x06\x00\x00\x00")

func pngLogo() *LogoUpload {
	return &LogoUpload{Filename: "logo.png", Size: int64(len(pngBytes)), Content: pngBytes}
}

func strPtr(s string) *string { return &s }

func setup(t *testing.T) (*Service, *mockStorage) {
	t.Helper()
	db := testutil.NewSQLiteDB(t)
	storage := new(mockStorage)
	storage.On("GenerateDownloadURL", mock.Anything, mock.Anything, mock.Anything).
		Return("https://cdn.example.com/logo", nil).Maybe()
	svc := NewService(persistence.NewGormCompanyRepository(db), storage, validation.New(), "empresas/logos", zap.NewNop())
	return svc, storage
}

func validInput() CreateCompanyInput {
	return CreateCompanyInput{
		RazaoSocial:  "Acme Comércio LTDA",
		NomeFantasia: "Acme",
		CNPJ:         strPtr("12.345.678/0001-90"),
		Email:        "Contato@Acme.com",
		Telefone:     "(11) 99999-0000",
	}
}

func TestService_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("stores the logo under the logo prefix", func(t *testing.T) {
		svc, storage := setup(t)
		storage.On("Upload", ctx, mock.MatchedBy(func(key string) bool {
			return strings.HasPrefix(key, "empresas/logos/") && strings.HasSuffix(key, ".png")
		}), pngBytes, "image/png").Return(nil).Once()

		in := validInput()
		in.Logo = pngLogo()
		dto, err := svc.Create(ctx, in)

		require.NoError(t, err)
		assert.Equal(t, "contato@acme.com", dto.Email)
		assert.True(t, strings.HasPrefix(dto.LogoPath, "empresas/logos/"))
		assert.Equal(t, "https://cdn.example.com/logo", dto.LogoURL)
		assert.True(t, dto.Ativo)
		storage.AssertExpectations(t)
	})

	t.Run("reports every invalid field and stores nothing", func(t *testing.T) {
		svc, storage := setup(t)

		_, err := svc.Create(ctx, CreateCompanyInput{
			CNPJ:          strPtr("123"),
			Email:         "x",
			DataAdesao:    strPtr("2024-05-10"),
			DataExpiracao: strPtr("2024-05-01"),
			Logo:          &LogoUpload{Filename: "a.png", Size: 10, Content: []byte("%PDF-1.4")},
		})

		require.ErrorIs(t, err, shared.ErrValidation)
		de, _ := shared.AsDomainError(err)
		fields := map[string]bool{}
		for _, fe := range de.Details.(validation.FieldErrors) {
			fields[fe.Field] = true
		}
		for _, f := range []string{"razao_social", "nome_fantasia", "cnpj", "email", "data_expiracao", "logo"} {
			assert.True(t, fields[f], "missing error for %s", f)
		}
		storage.AssertNotCalled(t, "Upload", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("blank cnpj is stored as null", func(t *testing.T) {
		svc, _ := setup(t)
		in := validInput()
		in.CNPJ = strPtr("  ")

		dto, err := svc.Create(ctx, in)

		require.NoError(t, err)
		assert.Nil(t, dto.CNPJ)
	})

	t.Run("cnpj conflicts only with live companies", func(t *testing.T) {
		svc, _ := setup(t)
		first, err := svc.Create(ctx, validInput())
		require.NoError(t, err)

		_, err = svc.Create(ctx, validInput())
		assert.ErrorIs(t, err, shared.ErrAlreadyExists)

		require.NoError(t, svc.Delete(ctx, first.ID))
		_, err = svc.Create(ctx, validInput())
		assert.NoError(t, err)
	})

	t.Run("membership dates", func(t *testing.T) {
		svc, _ := setup(t)
		in := validInput()
		in.DataAdesao = strPtr("2024-01-01")
		in.DataExpiracao = strPtr("2025-01-01")

		dto, err := svc.Create(ctx, in)

		require.NoError(t, err)
		assert.Equal(t, "2024-01-01", *dto.DataAdesao)
		assert.Equal(t, "2025-01-01", *dto.DataExpiracao)
	})
}

func TestService_Update(t *testing.T) {
	ctx := context.Background()

	t.Run("replaces the logo and deletes the old one afterwards", func(t *testing.T) {
		svc, storage := setup(t)
		storage.On("Upload", ctx, mock.Anything, pngBytes, "image/png").Return(nil).Twice()
		in := validInput()
		in.Logo = pngLogo()
		created, err := svc.Create(ctx, in)
		require.NoError(t, err)
		storage.On("DeleteObject", ctx, created.LogoPath).Return(nil).Once()

		updated, err := svc.Update(ctx, created.ID, UpdateCompanyInput{NomeFantasia: strPtr("Acme Nova"), Logo: pngLogo()})

		require.NoError(t, err)
		assert.Equal(t, "Acme Nova", updated.NomeFantasia)
		assert.NotEqual(t, created.LogoPath, updated.LogoPath)
		storage.AssertExpectations(t)
	})

	t.Run("without a new logo nothing is deleted", func(t *testing.T) {
		svc, storage := setup(t)
		storage.On("Upload", ctx, mock.Anything, mock.Anything, mock.Anything).Return(nil).Once()
		in := validInput()
		in.Logo = pngLogo()
		created, err := svc.Create(ctx, in)
		require.NoError(t, err)

		updated, err := svc.Update(ctx, created.ID, UpdateCompanyInput{Telefone: strPtr("1133334444")})

		require.NoError(t, err)
		assert.Equal(t, created.LogoPath, updated.LogoPath)
		storage.AssertNotCalled(t, "DeleteObject", mock.Anything, mock.Anything)
	})

	t.Run("expiration must follow the stored start date", func(t *testing.T) {
		svc, _ := setup(t)
		in := validInput()
		in.DataAdesao = strPtr("2024-06-01")
		created, err := svc.Create(ctx, in)
		require.NoError(t, err)

		_, err = svc.Update(ctx, created.ID, UpdateCompanyInput{DataExpiracao: strPtr("2024-06-01")})

		assert.ErrorIs(t, err, shared.ErrValidation)
	})

	t.Run("cnpj of another company is a conflict", func(t *testing.T) {
		svc, _ := setup(t)
		_, err := svc.Create(ctx, validInput())
		require.NoError(t, err)
		other := validInput()
		other.CNPJ = strPtr("98.765.432/0001-10")
		second, err := svc.Create(ctx, other)
		require.NoError(t, err)

		_, err = svc.Update(ctx, second.ID, UpdateCompanyInput{CNPJ: strPtr("12.345.678/0001-90")})
		assert.ErrorIs(t, err, shared.ErrAlreadyExists)

		cleared, err := svc.Update(ctx, second.ID, UpdateCompanyInput{CNPJ: strPtr("")})
		require.NoError(t, err)
		assert.Nil(t, cleared.CNPJ)
	})

	t.Run("deleted company is not found", func(t *testing.T) {
		svc, _ := setup(t)
		created, err := svc.Create(ctx, validInput())
		require.NoError(t, err)
		require.NoError(t, svc.Delete(ctx, created.ID))

		_, err = svc.Update(ctx, created.ID, UpdateCompanyInput{Telefone: strPtr("1")})
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}

func TestService_Delete(t *testing.T) {
	ctx := context.Background()

	t.Run("storage failure after delete is not reported", func(t *testing.T) {
		svc, storage := setup(t)
		storage.On("Upload", ctx, mock.Anything, mock.Anything, mock.Anything).Return(nil).Once()
		in := validInput()
		in.Logo = pngLogo()
		created, err := svc.Create(ctx, in)
		require.NoError(t, err)
		storage.On("DeleteObject", ctx, created.LogoPath).Return(errors.New("bucket offline")).Once()

		require.NoError(t, svc.Delete(ctx, created.ID))

		_, err = svc.Get(ctx, created.ID)
		assert.ErrorIs(t, err, shared.ErrNotFound)
		storage.AssertExpectations(t)
	})

	t.Run("restore brings it back unless the cnpj was reused", func(t *testing.T) {
		svc, _ := setup(t)
		first, err := svc.Create(ctx, validInput())
		require.NoError(t, err)
		require.NoError(t, svc.Delete(ctx, first.ID))

		restored, err := svc.Restore(ctx, first.ID)
		require.NoError(t, err)
		assert.Nil(t, restored.DeletedAt)

		_, err = svc.Restore(ctx, first.ID)
		assert.ErrorIs(t, err, shared.ErrConflict)

		require.NoError(t, svc.Delete(ctx, first.ID))
		_, err = svc.Create(ctx, validInput())
		require.NoError(t, err)
		_, err = svc.Restore(ctx, first.ID)
		assert.ErrorIs(t, err, shared.ErrAlreadyExists)
	})
}

func TestService_List(t *testing.T) {
	ctx := context.Background()
	svc, _ := setup(t)
	for _, name := range []string{"Padaria Sol", "Mercado Lua"} {
		in := validInput()
		in.NomeFantasia = name
		in.CNPJ = nil
		_, err := svc.Create(ctx, in)
		require.NoError(t, err)
	}

	page, err := svc.List(ctx, shared.ListFilter{Search: "padaria", Status: "qualquer"})

	require.NoError(t, err)
	assert.Equal(t, int64(1), page.Total)
	assert.Equal(t, "Padaria Sol", page.Items[0].NomeFantasia)
	assert.Equal(t, "padaria", page.Filters["search"])
	assert.Equal(t, "", page.Filters["status"], "unknown status is dropped")
	assert.Equal(t, shared.DefaultPageSize, page.PageSize)
}
