package filekit

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubFS struct {
	FileSystem
	cfg Config
}

func TestRegistry(t *testing.T) {
	RegisterDriver("stub-registry", func(cfg Config) (FileSystem, error) {
		return &stubFS{cfg: cfg}, nil
	})

	assert.Contains(t, Drivers(), "stub-registry")

	fs, err := New(Config{Driver: "stub-registry", WxWorkPrefix: "p"})
	require.NoError(t, err)
	assert.Equal(t, "p", fs.(*stubFS).cfg.WxWorkPrefix)

	_, err = New(Config{Driver: "nope"})
	assert.Error(t, err)

	assert.Panics(t, func() {
		RegisterDriver("stub-registry", func(Config) (FileSystem, error) { return nil, nil })
	})
	assert.Panics(t, func() { RegisterDriver("nil-factory", nil) })
}

func TestNewFromEnv(t *testing.T) {
	RegisterDriver("stub-env", func(cfg Config) (FileSystem, error) {
		return &stubFS{cfg: cfg}, nil
	})
	t.Setenv("BEAVER_FILEKIT_DRIVER", "stub-env")
	t.Setenv("BEAVER_FILEKIT_WXWORK_PREFIX", "sales")

	fs, err := NewFromEnv()
	require.NoError(t, err)
	cfg := fs.(*stubFS).cfg
	assert.Equal(t, "sales", cfg.WxWorkPrefix)
	assert.Equal(t, int64(20971520), cfg.MaxFileSize)
	assert.Equal(t, "BEAVER_", cfg.WxWorkStore)
}

func TestPathError(t *testing.T) {
	err := &PathError{Op: "read", Path: "a/b", Err: ErrNotExist}
	assert.Equal(t, "read a/b: file does not exist", err.Error())
	assert.True(t, IsNotExist(err))
	assert.False(t, IsUnavailable(err))

	wrapped := &PathError{Op: "list", Err: errors.Join(ErrUnavailable, context.DeadlineExceeded)}
	assert.True(t, IsUnavailable(wrapped))
	assert.ErrorIs(t, wrapped, context.DeadlineExceeded)
}

func TestApplyOptions(t *testing.T) {
	opts := ApplyOptions(
		WithContentType("text/plain"),
		WithMetadata(map[string]string{"a": "1"}),
		WithMetadata(map[string]string{"b": "2"}),
		WithVisibility(Public),
	)
	assert.Equal(t, "text/plain", opts.ContentType)
	assert.Equal(t, map[string]string{"a": "1", "b": "2"}, opts.Metadata)
	assert.Equal(t, Public, opts.Visibility)
	assert.Zero(t, opts.TTL)
}

func TestSizeLimitReader(t *testing.T) {
	r := &SizeLimitReader{R: strings.NewReader("hello world"), Limit: 5}
	_, err := io.ReadAll(r)
	assert.ErrorIs(t, err, ErrTooLarge)

	r = &SizeLimitReader{R: strings.NewReader("hello")}
	b, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(b))
	assert.Equal(t, int64(5), r.N)
}
