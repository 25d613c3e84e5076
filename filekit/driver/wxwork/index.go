package wxwork

import (
	"context"
	"fmt"

	"github.com/gobeaver/filekit-wxwork/filekit"
)

// DirectoryIndex implements rename, copy and directory maintenance on top
// of a MetadataStore. None of its operations recurse: moving or deleting a
// directory record leaves the records below it where they are.
type DirectoryIndex struct {
	meta *MetadataStore
}

// NewDirectoryIndex wraps meta.
func NewDirectoryIndex(meta *MetadataStore) *DirectoryIndex {
	return &DirectoryIndex{meta: meta}
}

// lookup returns (nil, nil) when p has no record.
func (d *DirectoryIndex) lookup(ctx context.Context, p string) (*Record, error) {
	r, err := d.meta.Get(ctx, p)
	if filekit.IsNotExist(err) {
		return nil, nil
	}
	return r, err
}

// Rename moves the record at p to newPath and keeps its media id. It
// returns false without error when p has no record. The destination is
// written before the source is removed. newPath may not lie below p.
func (d *DirectoryIndex) Rename(ctx context.Context, p, newPath string) (bool, error) {
	if isBelow(newPath, p) {
		return false, &filekit.PathError{Op: "rename", Path: newPath, Err: fmt.Errorf("%w: destination is inside the source", filekit.ErrInvalidPath)}
	}
	r, err := d.lookup(ctx, p)
	if r == nil {
		return false, err
	}
	if p == newPath {
		return true, nil
	}

	moved := r.clone()
	if err := d.meta.PutWithAncestors(ctx, newPath, moved, d.meta.ExpiryFor(moved)); err != nil {
		return false, err
	}
	if _, err := d.meta.Delete(ctx, p); err != nil {
		return false, err
	}
	return true, nil
}

// Copy duplicates the record at p under newPath. Both records then share
// the same remote blob.
func (d *DirectoryIndex) Copy(ctx context.Context, p, newPath string) (bool, error) {
	r, err := d.lookup(ctx, p)
	if r == nil {
		return false, err
	}
	if p == newPath {
		return true, nil
	}

	dup := r.clone()
	if err := d.meta.PutWithAncestors(ctx, newPath, dup, d.meta.ExpiryFor(dup)); err != nil {
		return false, err
	}
	return true, nil
}

// CreateDir writes a directory record at p together with its ancestors.
// An existing directory is kept as is; an existing file is an error.
func (d *DirectoryIndex) CreateDir(ctx context.Context, p string) (*Record, error) {
	cur, err := d.lookup(ctx, p)
	if err != nil {
		return nil, err
	}
	if cur != nil && !cur.IsDir() {
		return nil, &filekit.PathError{Op: "mkdir", Path: p, Err: filekit.ErrExist}
	}

	r := cur
	if r == nil {
		r = newDirRecord(p, d.meta.now())
	}
	if err := d.meta.PutWithAncestors(ctx, p, r, 0); err != nil {
		return nil, err
	}
	return r, nil
}

// DeleteDir removes the directory record at p only. Records below it stay
// in the cache and their blobs are never deleted remotely.
func (d *DirectoryIndex) DeleteDir(ctx context.Context, p string) (bool, error) {
	return d.meta.Delete(ctx, p)
}
