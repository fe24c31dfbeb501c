package storage

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalStorage_SaveOpenRemove(t *testing.T) {
	s, err := NewLocalStorage(t.TempDir(), "http://localhost:8080/uploads/")
	require.NoError(t, err)
	ctx := context.Background()

	key, err := s.Save(ctx, strings.NewReader("contract"), "employees/e1/contract.pdf")
	require.NoError(t, err)
	assert.Equal(t, "employees/e1/contract.pdf", key)
	assert.Equal(t, "http://localhost:8080/uploads/employees/e1/contract.pdf", s.URL(key))

	rc, err := s.Open(ctx, key)
	require.NoError(t, err)
	body, err := io.ReadAll(rc)
	rc.Close()
	require.NoError(t, err)
	assert.Equal(t, "contract", string(body))

	require.NoError(t, s.Remove(ctx, key))
	require.NoError(t, s.Remove(ctx, key), "removing twice is fine")
	_, err = s.Open(ctx, key)
	assert.Error(t, err)
}

func TestLocalStorage_StaysInsideRoot(t *testing.T) {
	s, err := NewLocalStorage(t.TempDir(), "/uploads")
	require.NoError(t, err)

	key, err := s.Save(context.Background(), strings.NewReader("x"), "../../etc/passwd")
	require.NoError(t, err)
	assert.Equal(t, "etc/passwd", key)

	_, err = s.Save(context.Background(), strings.NewReader("x"), "..")
	assert.ErrorIs(t, err, ErrInvalidPath)
}

func TestSniff(t *testing.T) {
	png := "\x89PNG\r\n\x1a\n" + strings.Repeat("x", 20)
	r, contentType := Sniff(strings.NewReader(png), 1<<10)
	assert.Equal(t, "image/png", contentType)

	body, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, png, string(body), "sniffed bytes are replayed")

	r, contentType = Sniff(strings.NewReader("plain text body"), 5)
	assert.Equal(t, "text/plain", contentType)
	body, err = io.ReadAll(r)
	require.NoError(t, err)
	assert.Len(t, body, 5)
}
