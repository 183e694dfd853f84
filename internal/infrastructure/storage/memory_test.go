package storage

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryObjectStorage(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryObjectStorage("http://localhost:8080/static/")

	data := []byte("logo")
	require.NoError(t, m.Upload(ctx, "empresas/logos/a b.png", data, "image/png"))
	data[0] = 'X'

	obj, ok := m.Get("empresas/logos/a b.png")
	require.True(t, ok)
	assert.Equal(t, "logo", string(obj.Data))
	assert.Equal(t, "image/png", obj.ContentType)

	u, expiresAt, err := m.GenerateDownloadURL(ctx, "empresas/logos/a b.png", 0)
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8080/static/empresas/logos/a%20b.png", u)
	assert.True(t, expiresAt.After(time.Now()))

	require.NoError(t, m.DeleteObject(ctx, "empresas/logos/a b.png"))
	require.NoError(t, m.DeleteObject(ctx, "empresas/logos/missing.png"))
	assert.Equal(t, 0, m.Len())

	assert.ErrorIs(t, m.Upload(ctx, "", nil, ""), ErrEmptyKey)
}
