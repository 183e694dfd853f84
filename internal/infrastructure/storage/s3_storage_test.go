package storage

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"
	"time"

	"github.com/erp/backoffice/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type recordedRequest struct {
	Method      string
	Path        string
	ContentType string
	Body        []byte
}

// fakeS3 answers S3 path-style calls with a fixed status per method
type fakeS3 struct {
	mu       sync.Mutex
	requests []recordedRequest
	status   map[string]int
}

func newFakeS3(t *testing.T) (*fakeS3, *httptest.Server) {
	t.Helper()
	f := &fakeS3{status: map[string]int{
		http.MethodPut:    http.StatusOK,
		http.MethodDelete: http.StatusNoContent,
		http.MethodHead:   http.StatusOK,
	}}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		f.mu.Lock()
		f.requests = append(f.requests, recordedRequest{
			Method:      r.Method,
			Path:        r.URL.Path,
			ContentType: r.Header.Get("Content-Type"),
			Body:        body,
		})
		code := f.status[r.Method]
		f.mu.Unlock()
		w.WriteHeader(code)
	}))
	t.Cleanup(srv.Close)
	return f, srv
}

func (f *fakeS3) calls() []recordedRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]recordedRequest(nil), f.requests...)
}

func testConfig(endpoint string) config.StorageConfig {
	return config.StorageConfig{
		Enabled:      true,
		Bucket:       "logos",
		AccessKey:    "test-key",
		SecretKey:    "test-secret",
		Region:       "us-east-1",
		Endpoint:     endpoint,
		UsePathStyle: true,
	}
}

func TestNewS3ObjectStorage_Validation(t *testing.T) {
	ctx := context.Background()
	tests := []struct {
		name    string
		mutate  func(*config.StorageConfig)
		wantErr string
	}{
		{"missing bucket", func(c *config.StorageConfig) { c.Bucket = "" }, "bucket is required"},
		{"missing access key", func(c *config.StorageConfig) { c.AccessKey = "" }, "access key is required"},
		{"missing secret key", func(c *config.StorageConfig) { c.SecretKey = "" }, "secret key is required"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig("http://localhost:9000")
			tt.mutate(&cfg)
			_, err := NewS3ObjectStorage(ctx, cfg)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}

	t.Run("defaults", func(t *testing.T) {
		s, err := NewS3ObjectStorage(ctx, testConfig("http://localhost:9000"), WithLogger(zaptest.NewLogger(t)))
		require.NoError(t, err)
		assert.Equal(t, "logos", s.Bucket())
		assert.Equal(t, defaultPresignExpiration, s.presignExpiration)
	})

	t.Run("presign option wins over config", func(t *testing.T) {
		cfg := testConfig("http://localhost:9000")
		cfg.PresignExpiration = time.Minute
		s, err := NewS3ObjectStorage(ctx, cfg, WithPresignExpiration(time.Hour))
		require.NoError(t, err)
		assert.Equal(t, time.Hour, s.presignExpiration)
	})
}

func TestEndpointURL(t *testing.T) {
	assert.Equal(t, "", endpointURL("", false))
	assert.Equal(t, "http://minio:9000", endpointURL("minio:9000", false))
	assert.Equal(t, "https://minio:9000", endpointURL("minio:9000", true))
	assert.Equal(t, "http://minio:9000", endpointURL("http://minio:9000/", true))
}

func TestS3ObjectStorage_Upload(t *testing.T) {
	fake, srv := newFakeS3(t)
	s, err := NewS3ObjectStorage(context.Background(), testConfig(srv.URL))
	require.NoError(t, err)

	data := []byte("\x89PNG\r\n\x1a\nlogo")
	require.NoError(t, s.Upload(context.Background(), "empresas/logos/a.png", data, "image/png"))

	calls := fake.calls()
	require.Len(t, calls, 1)
	assert.Equal(t, http.MethodPut, calls[0].Method)
	assert.Equal(t, "/logos/empresas/logos/a.png", calls[0].Path)
	assert.Equal(t, "image/png", calls[0].ContentType)
	assert.Contains(t, string(calls[0].Body), string(data))
}

func TestS3ObjectStorage_UploadRejected(t *testing.T) {
	fake, srv := newFakeS3(t)
	fake.status[http.MethodPut] = http.StatusForbidden
	s, err := NewS3ObjectStorage(context.Background(), testConfig(srv.URL))
	require.NoError(t, err)

	err = s.Upload(context.Background(), "empresas/logos/a.png", []byte("x"), "image/png")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "empresas/logos/a.png")
}

func TestS3ObjectStorage_DeleteObject(t *testing.T) {
	fake, srv := newFakeS3(t)
	s, err := NewS3ObjectStorage(context.Background(), testConfig(srv.URL))
	require.NoError(t, err)

	require.NoError(t, s.DeleteObject(context.Background(), "empresas/logos/a.png"))

	calls := fake.calls()
	require.Len(t, calls, 1)
	assert.Equal(t, http.MethodDelete, calls[0].Method)
	assert.Equal(t, "/logos/empresas/logos/a.png", calls[0].Path)
}

func TestS3ObjectStorage_EmptyKey(t *testing.T) {
	s, err := NewS3ObjectStorage(context.Background(), testConfig("http://localhost:9000"))
	require.NoError(t, err)
	ctx := context.Background()

	assert.ErrorIs(t, s.Upload(ctx, "", []byte("x"), "image/png"), ErrEmptyKey)
	assert.ErrorIs(t, s.DeleteObject(ctx, ""), ErrEmptyKey)
	_, _, err = s.GenerateDownloadURL(ctx, "", time.Minute)
	assert.ErrorIs(t, err, ErrEmptyKey)
}

func TestS3ObjectStorage_GenerateDownloadURL(t *testing.T) {
	s, err := NewS3ObjectStorage(context.Background(), testConfig("http://localhost:9000"))
	require.NoError(t, err)

	raw, expiresAt, err := s.GenerateDownloadURL(context.Background(), "empresas/logos/a.png", time.Hour)
	require.NoError(t, err)

	u, err := url.Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, "localhost:9000", u.Host)
	assert.Equal(t, "/logos/empresas/logos/a.png", u.Path)
	assert.Equal(t, "3600", u.Query().Get("X-Amz-Expires"))
	assert.NotEmpty(t, u.Query().Get("X-Amz-Signature"))
	assert.WithinDuration(t, time.Now().Add(time.Hour), expiresAt, 5*time.Second)

	raw, _, err = s.GenerateDownloadURL(context.Background(), "empresas/logos/a.png", 0)
	require.NoError(t, err)
	u, err = url.Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, "900", u.Query().Get("X-Amz-Expires"))
}

func TestS3ObjectStorage_EnsureBucket(t *testing.T) {
	t.Run("existing bucket", func(t *testing.T) {
		fake, srv := newFakeS3(t)
		s, err := NewS3ObjectStorage(context.Background(), testConfig(srv.URL))
		require.NoError(t, err)

		require.NoError(t, s.EnsureBucket(context.Background()))

		calls := fake.calls()
		require.Len(t, calls, 1)
		assert.Equal(t, http.MethodHead, calls[0].Method)
	})

	t.Run("missing bucket is created", func(t *testing.T) {
		fake, srv := newFakeS3(t)
		fake.status[http.MethodHead] = http.StatusNotFound
		s, err := NewS3ObjectStorage(context.Background(), testConfig(srv.URL))
		require.NoError(t, err)

		require.NoError(t, s.EnsureBucket(context.Background()))

		calls := fake.calls()
		require.Len(t, calls, 2)
		assert.Equal(t, http.MethodPut, calls[1].Method)
		assert.Equal(t, "/logos", calls[1].Path)
	})

	t.Run("access denied is reported", func(t *testing.T) {
		fake, srv := newFakeS3(t)
		fake.status[http.MethodHead] = http.StatusForbidden
		s, err := NewS3ObjectStorage(context.Background(), testConfig(srv.URL))
		require.NoError(t, err)

		err = s.EnsureBucket(context.Background())

		require.Error(t, err)
		assert.Len(t, fake.calls(), 1)
	})
}
