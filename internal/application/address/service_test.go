package address_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/erp/backoffice/internal/application/address"
	"github.com/erp/backoffice/internal/domain/location"
	"github.com/erp/backoffice/internal/domain/shared"
	"github.com/erp/backoffice/internal/infrastructure/cache"
	"github.com/erp/backoffice/internal/infrastructure/config"
	"github.com/erp/backoffice/internal/infrastructure/persistence"
	"github.com/erp/backoffice/internal/infrastructure/viacep"
	"github.com/erp/backoffice/internal/testutil"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const paulista = `{"cep":"01310-100","logradouro":"Avenida Paulista","complemento":"lado par",` +
	`"bairro":"Bela Vista","localidade":"São Paulo","uf":"SP"}`

type provider struct {
	srv   *httptest.Server
	calls atomic.Int32
	body  atomic.Value
	code  atomic.Int32
}

func newProvider(t *testing.T) *provider {
	t.Helper()
	p := &provider{}
	p.body.Store(paulista)
	p.code.Store(http.StatusOK)
	p.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p.calls.Add(1)
		w.WriteHeader(int(p.code.Load()))
		_, _ = w.Write([]byte(p.body.Load().(string)))
	}))
	t.Cleanup(p.srv.Close)
	return p
}

func (p *provider) client() *viacep.Client {
	return viacep.NewClient(config.CEPConfig{BaseURL: p.srv.URL, Timeout: time.Second})
}

func newService(t *testing.T, p *provider, c address.Cache) (*address.Service, *gorm.DB) {
	t.Helper()
	db := testutil.NewSQLiteDB(t)
	svc := address.NewService(p.client(), persistence.NewGormLocationRepository(db), c, time.Hour, zap.NewNop())
	return svc, db
}

func TestService_Lookup_Found(t *testing.T) {
	p := newProvider(t)
	svc, db := newService(t, p, nil)
	sp := testutil.SeedEstado(t, db, "SP", "São Paulo")
	testutil.SeedEstado(t, db, "RJ", "Rio de Janeiro")
	city := testutil.SeedMunicipio(t, db, sp, "São Paulo", "3550308")

	result, err := svc.Lookup(context.Background(), "01310-100")

	require.NoError(t, err)
	assert.Equal(t, address.OutcomeFound, result.Outcome)
	assert.Equal(t, "01310-100", result.CEP)
	assert.Equal(t, "Avenida Paulista", result.Endereco)
	assert.Equal(t, "lado par", result.Complemento)
	assert.Equal(t, "Bela Vista", result.Bairro)
	assert.Equal(t, "São Paulo", result.Cidade)
	assert.Equal(t, "SP", result.UF)
	require.NotNil(t, result.EstadoID)
	assert.Equal(t, sp, *result.EstadoID)
	require.NotNil(t, result.MunicipioID)
	assert.Equal(t, city, *result.MunicipioID)
}

func TestService_Lookup_UnresolvedReferences(t *testing.T) {
	t.Run("unknown state", func(t *testing.T) {
		p := newProvider(t)
		svc, _ := newService(t, p, nil)

		result, err := svc.Lookup(context.Background(), "01310100")

		require.NoError(t, err)
		assert.Nil(t, result.EstadoID)
		assert.Nil(t, result.MunicipioID)
	})

	t.Run("unknown municipality", func(t *testing.T) {
		p := newProvider(t)
		svc, db := newService(t, p, nil)
		sp := testutil.SeedEstado(t, db, "SP", "São Paulo")
		testutil.SeedMunicipio(t, db, sp, "Campinas", "3509502")

		result, err := svc.Lookup(context.Background(), "01310100")

		require.NoError(t, err)
		require.NotNil(t, result.EstadoID)
		assert.Nil(t, result.MunicipioID)
	})

	t.Run("reference table failure", func(t *testing.T) {
		p := newProvider(t)
		svc, db := newService(t, p, nil)
		require.NoError(t, db.Exec("DROP TABLE municipios").Error)
		require.NoError(t, db.Exec("DROP TABLE estados").Error)

		result, err := svc.Lookup(context.Background(), "01310100")

		require.NoError(t, err)
		assert.Equal(t, address.OutcomeFound, result.Outcome)
		assert.Nil(t, result.EstadoID)
	})
}

func TestService_Lookup_InvalidLengthMakesNoCall(t *testing.T) {
	p := newProvider(t)
	svc, _ := newService(t, p, nil)

	for _, raw := range []string{"", "1234567", "123456789", "abc-def", "01.310-10"} {
		result, err := svc.Lookup(context.Background(), raw)

		require.ErrorIs(t, err, shared.ErrInvalidInput, raw)
		assert.Equal(t, address.OutcomeInvalidInput, result.Outcome)
	}
	assert.Equal(t, int32(0), p.calls.Load())
}

func TestService_Lookup_NotFound(t *testing.T) {
	p := newProvider(t)
	p.body.Store(`{"erro": true}`)
	svc, _ := newService(t, p, nil)

	result, err := svc.Lookup(context.Background(), "99999-999")

	require.ErrorIs(t, err, shared.ErrNotFound)
	assert.Equal(t, "CEP não encontrado", err.Error())
	assert.Equal(t, address.OutcomeNotFound, result.Outcome)
	assert.Equal(t, "99999999", result.CEP)
}

func TestService_Lookup_UpstreamError(t *testing.T) {
	p := newProvider(t)
	p.code.Store(http.StatusInternalServerError)
	svc, _ := newService(t, p, nil)

	result, err := svc.Lookup(context.Background(), "01310100")

	require.ErrorIs(t, err, shared.ErrUpstream)
	assert.Equal(t, "Erro ao buscar CEP", err.Error(), "no internal detail in the message")
	assert.Equal(t, address.OutcomeUpstreamError, result.Outcome)
}

func TestService_Lookup_CachesOnlyFound(t *testing.T) {
	ctx := context.Background()
	p := newProvider(t)
	svc, _ := newService(t, p, cache.NewInMemoryCEPCache())

	_, err := svc.Lookup(ctx, "01310100")
	require.NoError(t, err)
	_, err = svc.Lookup(ctx, "01310-100")
	require.NoError(t, err)
	assert.Equal(t, int32(1), p.calls.Load())

	p.body.Store(`{"erro": true}`)
	_, err = svc.Lookup(ctx, "99999999")
	require.ErrorIs(t, err, shared.ErrNotFound)
	_, err = svc.Lookup(ctx, "99999999")
	require.ErrorIs(t, err, shared.ErrNotFound)
	assert.Equal(t, int32(3), p.calls.Load())
}

type mockCache struct {
	mock.Mock
}

func (m *mockCache) Get(ctx context.Context, cep string) (*location.PostalAddress, bool, error) {
	args := m.Called(ctx, cep)
	addr, _ := args.Get(0).(*location.PostalAddress)
	return addr, args.Bool(1), args.Error(2)
}

func (m *mockCache) Set(ctx context.Context, cep string, addr *location.PostalAddress, ttl time.Duration) error {
	return m.Called(ctx, cep, addr, ttl).Error(0)
}

func TestService_Lookup_CacheFailuresAreBypassed(t *testing.T) {
	p := newProvider(t)
	c := &mockCache{}
	c.On("Get", mock.Anything, "01310100").Return(nil, false, errors.New("redis down"))
	c.On("Set", mock.Anything, "01310100", mock.Anything, time.Hour).Return(errors.New("redis down"))
	svc, _ := newService(t, p, c)

	result, err := svc.Lookup(context.Background(), "01310100")

	require.NoError(t, err)
	assert.Equal(t, "Avenida Paulista", result.Endereco)
	assert.Equal(t, int32(1), p.calls.Load())
	c.AssertExpectations(t)
}

func TestReferenceService(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewSQLiteDB(t)
	svc := address.NewReferenceService(persistence.NewGormLocationRepository(db))
	sp := testutil.SeedEstado(t, db, "SP", "São Paulo")
	ac := testutil.SeedEstado(t, db, "AC", "Acre")
	testutil.SeedMunicipio(t, db, sp, "Campinas", "3509502")
	santos := testutil.SeedMunicipio(t, db, sp, "Santos", "3548500")
	testutil.SeedMunicipio(t, db, ac, "Rio Branco", "1200401")

	estados, err := svc.ListSubdivisions(ctx)
	require.NoError(t, err)
	require.Len(t, estados, 2)
	assert.Equal(t, "AC", estados[0].UF)

	estado, err := svc.GetSubdivision(ctx, sp)
	require.NoError(t, err)
	assert.Equal(t, "São Paulo", estado.Nome)

	_, err = svc.GetSubdivision(ctx, uuid.New())
	assert.ErrorIs(t, err, shared.ErrNotFound)

	municipios, err := svc.ListMunicipalities(ctx, location.MunicipalityFilter{EstadoID: &sp})
	require.NoError(t, err)
	assert.Len(t, municipios, 2)

	municipios, err = svc.ListMunicipalities(ctx, location.MunicipalityFilter{Search: "san"})
	require.NoError(t, err)
	require.Len(t, municipios, 1)
	assert.Equal(t, santos, municipios[0].ID)

	m, err := svc.GetMunicipality(ctx, santos)
	require.NoError(t, err)
	assert.Equal(t, "3548500", m.CodigoIBGE)
	assert.Equal(t, sp, m.EstadoID)
}
