// Package viacep is the outbound client of the ViaCEP postal-code service.
package viacep

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/erp/backoffice/internal/application/address"
	"github.com/erp/backoffice/internal/domain/location"
	"github.com/erp/backoffice/internal/infrastructure/config"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// maxResponseSize bounds the body read from the provider
const maxResponseSize = 64 * 1024

// DefaultTimeout applies when the configured timeout is zero
const DefaultTimeout = 5 * time.Second

// payload is the provider's JSON answer. Unknown codes come back with
// status 200 and {"erro": true}.
type payload struct {
	CEP         string `json:"cep"`
	Logradouro  string `json:"logradouro"`
	Complemento string `json:"complemento"`
	Bairro      string `json:"bairro"`
	Localidade  string `json:"localidade"`
	UF          string `json:"uf"`
	Erro        any    `json:"erro"`
}

// notFound reports the provider's error flag, sent as a boolean or as the
// string "true" depending on the API version
func (p payload) notFound() bool {
	switch v := p.Erro.(type) {
	case bool:
		return v
	case string:
		return strings.EqualFold(v, "true")
	}
	return false
}

// complete reports whether the fields every address carries are present
func (p payload) complete() bool {
	return strings.TrimSpace(p.CEP) != "" &&
		strings.TrimSpace(p.UF) != "" &&
		strings.TrimSpace(p.Localidade) != ""
}

// Client fetches addresses from ViaCEP
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a client from config. TLS certificates are verified
// unless InsecureSkipVerify is set.
func NewClient(cfg config.CEPConfig) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.TLSClientConfig = &tls.Config{
		MinVersion:         tls.VersionTLS12,
		InsecureSkipVerify: cfg.InsecureSkipVerify, //nolint:gosec // development flag, rejected in production config
	}

	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		httpClient: &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(transport),
		},
	}
}

// Fetch implements address.Provider. cep must already be 8 digits.
func (c *Client) Fetch(ctx context.Context, cep string) (*location.PostalAddress, error) {
	url := fmt.Sprintf("%s/ws/%s/json/", c.baseURL, cep)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, address.ErrUpstream.WithCause(fmt.Errorf("failed to build request: %w", err))
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, address.ErrUpstream.WithCause(fmt.Errorf("request failed: %w", err))
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, address.ErrUpstream.WithCause(fmt.Errorf("failed to read response: %w", err))
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, address.ErrUpstream.WithCause(fmt.Errorf("unexpected status %d", resp.StatusCode))
	}

	var p payload
	if err := json.Unmarshal(body, &p); err != nil {
		return nil, address.ErrUpstream.WithCause(fmt.Errorf("malformed response: %w", err))
	}
	if p.notFound() {
		return nil, address.ErrCEPNotFound
	}
	if !p.complete() {
		return nil, address.ErrUpstream.WithCause(fmt.Errorf("malformed response: missing cep, uf or localidade"))
	}

	return &location.PostalAddress{
		CEP:         p.CEP,
		Logradouro:  p.Logradouro,
		Complemento: p.Complemento,
		Bairro:      p.Bairro,
		Localidade:  p.Localidade,
		UF:          strings.ToUpper(p.UF),
	}, nil
}

var _ address.Provider = (*Client)(nil)
