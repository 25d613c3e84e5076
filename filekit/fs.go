package filekit

import (
	"context"
	"io"
	"time"
)

// File represents a file in the filesystem
type File struct {
	Name        string
	Path        string
	Size        int64
	ModTime     time.Time
	IsDir       bool
	ContentType string
	Metadata    map[string]string
}

// FileSystem defines the main interface for file operations
type FileSystem interface {
	// Core operations
	Upload(ctx context.Context, path string, content io.Reader, options ...Option) error
	Download(ctx context.Context, path string) (io.ReadCloser, error)
	Delete(ctx context.Context, path string) error

	// File operations
	Exists(ctx context.Context, path string) (bool, error)
	FileInfo(ctx context.Context, path string) (*File, error)

	// Directory operations
	List(ctx context.Context, prefix string) ([]File, error)
	CreateDir(ctx context.Context, path string) error
	DeleteDir(ctx context.Context, path string) error
}

// Mover is implemented by backends that can rename or copy entries.
// The boolean result is false when the source did not exist.
type Mover interface {
	Rename(ctx context.Context, path, newPath string) (bool, error)
	Copy(ctx context.Context, path, newPath string) (bool, error)
}

// RecursiveLister is implemented by backends that can list a whole subtree.
type RecursiveLister interface {
	ListRecursive(ctx context.Context, prefix string) ([]File, error)
}
