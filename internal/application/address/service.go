// Package address looks up postal codes (CEP) and resolves the returned
// locality against the federative unit and municipality reference tables.
package address

import (
	"context"
	"errors"
	"time"

	"github.com/erp/backoffice/internal/domain/location"
	"github.com/erp/backoffice/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// CEPLength is the number of digits of a valid CEP
const CEPLength = 8

// Outcome classifies a lookup
type Outcome string

// Lookup outcomes
const (
	OutcomeInvalidInput  Outcome = "invalid_input"
	OutcomeNotFound      Outcome = "not_found"
	OutcomeFound         Outcome = "found"
	OutcomeUpstreamError Outcome = "upstream_error"
)

// Lookup errors
var (
	ErrInvalidCEP  = shared.NewDomainError(shared.CodeInvalidInput, "CEP inválido")
	ErrCEPNotFound = shared.NewDomainError(shared.CodeNotFound, "CEP não encontrado")
	ErrUpstream    = shared.NewDomainError(shared.CodeUpstream, "Erro ao buscar CEP")
)

// Provider fetches a CEP from the external postal-code service. It returns
// ErrCEPNotFound when the service reports the code as unknown and
// ErrUpstream for any transport, status or payload failure.
type Provider interface {
	Fetch(ctx context.Context, cep string) (*location.PostalAddress, error)
}

// Cache stores provider answers for found CEPs
type Cache interface {
	Get(ctx context.Context, cep string) (*location.PostalAddress, bool, error)
	Set(ctx context.Context, cep string, addr *location.PostalAddress, ttl time.Duration) error
}

// LookupResult is the normalized answer of a lookup
type LookupResult struct {
	Outcome     Outcome    `json:"-"`
	CEP         string     `json:"cep"`
	Endereco    string     `json:"endereco"`
	Complemento string     `json:"complemento"`
	Bairro      string     `json:"bairro"`
	Cidade      string     `json:"cidade"`
	UF          string     `json:"uf"`
	EstadoID    *uuid.UUID `json:"estado_id"`
	MunicipioID *uuid.UUID `json:"municipio_id"`
}

// Service performs CEP lookups
type Service struct {
	provider  Provider
	locations location.Repository
	cache     Cache
	cacheTTL  time.Duration
	logger    *zap.Logger
}

// NewService creates a lookup service. cache may be nil.
func NewService(provider Provider, locations location.Repository, cache Cache, cacheTTL time.Duration, logger *zap.Logger) *Service {
	return &Service{
		provider:  provider,
		locations: locations,
		cache:     cache,
		cacheTTL:  cacheTTL,
		logger:    logger,
	}
}

// Lookup normalizes raw to its digits and queries the provider. Inputs that
// are not 8 digits long are rejected before any outbound call. The returned
// error is nil only for OutcomeFound.
func (s *Service) Lookup(ctx context.Context, raw string) (*LookupResult, error) {
	cep := NormalizeCEP(raw)
	if len(cep) != CEPLength {
		return &LookupResult{Outcome: OutcomeInvalidInput, CEP: cep}, ErrInvalidCEP
	}

	addr, err := s.fetch(ctx, cep)
	switch {
	case err == nil:
	case errors.Is(err, ErrCEPNotFound):
		s.logger.Debug("CEP not found", zap.String("cep", cep))
		return &LookupResult{Outcome: OutcomeNotFound, CEP: cep}, ErrCEPNotFound
	default:
		s.logger.Warn("CEP lookup failed", zap.String("cep", cep), zap.Error(err))
		return &LookupResult{Outcome: OutcomeUpstreamError, CEP: cep}, ErrUpstream.WithCause(err)
	}

	result := &LookupResult{
		Outcome:     OutcomeFound,
		CEP:         addr.CEP,
		Endereco:    addr.Logradouro,
		Complemento: addr.Complemento,
		Bairro:      addr.Bairro,
		Cidade:      addr.Localidade,
		UF:          addr.UF,
	}
	if result.CEP == "" {
		result.CEP = cep
	}
	result.EstadoID, result.MunicipioID = s.resolve(ctx, addr.UF, addr.Localidade)
	return result, nil
}

func (s *Service) fetch(ctx context.Context, cep string) (*location.PostalAddress, error) {
	if s.cache != nil {
		cached, ok, err := s.cache.Get(ctx, cep)
		if err != nil {
			s.logger.Warn("CEP cache read failed", zap.String("cep", cep), zap.Error(err))
		} else if ok {
			return cached, nil
		}
	}

	addr, err := s.provider.Fetch(ctx, cep)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, cep, addr, s.cacheTTL); err != nil {
			s.logger.Warn("CEP cache write failed", zap.String("cep", cep), zap.Error(err))
		}
	}
	return addr, nil
}

// resolve maps the provider's UF and locality onto reference ids. Anything
// that cannot be matched, including a failed query, yields nil ids.
func (s *Service) resolve(ctx context.Context, uf, locality string) (estadoID, municipioID *uuid.UUID) {
	if uf == "" {
		return nil, nil
	}
	estado, err := s.locations.FindSubdivisionByUF(ctx, uf)
	if err != nil {
		if !errors.Is(err, shared.ErrNotFound) {
			s.logger.Error("Failed to resolve subdivision", zap.String("uf", uf), zap.Error(err))
		}
		return nil, nil
	}
	estadoID = &estado.ID

	if locality == "" {
		return estadoID, nil
	}
	municipio, err := s.locations.MatchMunicipality(ctx, estado.ID, locality)
	if err != nil {
		if !errors.Is(err, shared.ErrNotFound) {
			s.logger.Error("Failed to resolve municipality", zap.String("localidade", locality), zap.Error(err))
		}
		return estadoID, nil
	}
	return estadoID, &municipio.ID
}

// NormalizeCEP strips every non-digit character
func NormalizeCEP(raw string) string {
	return shared.DigitsOnly(raw)
}
