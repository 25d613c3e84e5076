package wxwork

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"

	"github.com/gobeaver/filekit-wxwork/filekit"
	"github.com/gobeaver/filekit-wxwork/kvstore"
)

// Defaults applied by New.
const (
	DefaultPrefix      = "work"
	DefaultExpire      = 72 * time.Hour
	DefaultMaxFileSize = 20 << 20
)

var (
	_ filekit.FileSystem      = (*Adapter)(nil)
	_ filekit.Mover           = (*Adapter)(nil)
	_ filekit.RecursiveLister = (*Adapter)(nil)
)

// Adapter stores file content as WeCom media and keeps the path tree in a
// key/value store. Everything except reading content and resolving an
// unknown mime type is answered from the cache.
type Adapter struct {
	meta    *MetadataStore
	index   *DirectoryIndex
	gateway *Gateway
	conn    *connector

	prefix  string
	expire  time.Duration
	maxSize int64
	logger  zerolog.Logger
	metrics Metrics
}

// Option configures an Adapter
type Option func(*Adapter)

// WithPrefix sets the cache key prefix
func WithPrefix(prefix string) Option {
	return func(a *Adapter) { a.prefix = prefix }
}

// WithExpire sets how long file records stay cached
func WithExpire(d time.Duration) Option {
	return func(a *Adapter) { a.expire = d }
}

// WithMaxFileSize caps upload size; zero or less disables the cap
func WithMaxFileSize(n int64) Option {
	return func(a *Adapter) { a.maxSize = n }
}

// WithLogger sets the logger
func WithLogger(l zerolog.Logger) Option {
	return func(a *Adapter) { a.logger = l }
}

// WithMetrics sets the metrics sink; nil disables metrics
func WithMetrics(m Metrics) Option {
	return func(a *Adapter) { a.metrics = m }
}

// New creates an adapter over store using conn for remote transfers.
func New(store kvstore.Store, conn Connection, opts ...Option) (*Adapter, error) {
	if store == nil {
		return nil, errors.New("wxwork: nil key/value store")
	}
	if conn == nil {
		return nil, errors.New("wxwork: nil connection")
	}

	a := &Adapter{
		prefix:  DefaultPrefix,
		expire:  DefaultExpire,
		maxSize: DefaultMaxFileSize,
		logger:  zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(a)
	}
	a.metrics = orNoop(a.metrics)

	a.meta = NewMetadataStore(store, a.prefix, a.expire)
	a.meta.logger = a.logger
	a.meta.metrics = a.metrics
	a.index = NewDirectoryIndex(a.meta)
	a.conn = &connector{conn: conn}
	a.gateway = &Gateway{conn: a.conn, logger: a.logger, metrics: a.metrics}
	return a, nil
}

// MetadataStore exposes the underlying metadata store.
func (a *Adapter) MetadataStore() *MetadataStore { return a.meta }

// UseConnection switches the media client used from the next remote call on.
func (a *Adapter) UseConnection(conn Connection) {
	a.conn.set(conn)
}

func normalize(op, p string) (string, error) {
	c, err := filekit.NormalizePath(p)
	if err != nil {
		return "", &filekit.PathError{Op: op, Path: p, Err: filekit.ErrInvalidPath}
	}
	return c, nil
}

func wrap(op, p string, err error) error {
	var pe *filekit.PathError
	if errors.As(err, &pe) {
		return err
	}
	return &filekit.PathError{Op: op, Path: p, Err: err}
}

// Write uploads content to p and caches its record. Ancestor directories
// are created as needed. The returned record holds the new media id.
func (a *Adapter) Write(ctx context.Context, p string, content io.Reader, options ...filekit.Option) (*Record, error) {
	p, err := normalize("write", p)
	if err != nil {
		return nil, err
	}
	if p == "" {
		return nil, &filekit.PathError{Op: "write", Path: p, Err: filekit.ErrIsDir}
	}
	if cur, err := a.meta.Get(ctx, p); err == nil && cur.IsDir() {
		return nil, &filekit.PathError{Op: "write", Path: p, Err: filekit.ErrIsDir}
	} else if err != nil && !filekit.IsNotExist(err) {
		return nil, err
	}

	opts := filekit.ApplyOptions(options...)
	counted := &filekit.SizeLimitReader{R: content, Limit: a.maxSize}

	mediaID, err := a.gateway.Upload(ctx, p, counted)
	if err != nil {
		return nil, wrap("write", p, err)
	}

	r := &Record{
		Type:      TypeFile,
		MediaID:   mediaID,
		Size:      counted.N,
		Timestamp: modTime(content).Unix(),
		MimeType:  opts.ContentType,
		Metadata:  opts.Metadata,
	}
	ttl := a.meta.ExpiryFor(r)
	if opts.TTL > 0 {
		ttl = opts.TTL
	}
	if err := a.meta.PutWithAncestors(ctx, p, r, ttl); err != nil {
		return nil, err
	}
	return r, nil
}

// Update replaces the content at p. It behaves exactly like Write.
func (a *Adapter) Update(ctx context.Context, p string, content io.Reader, options ...filekit.Option) (*Record, error) {
	return a.Write(ctx, p, content, options...)
}

// Upload implements filekit.FileSystem
func (a *Adapter) Upload(ctx context.Context, p string, content io.Reader, options ...filekit.Option) error {
	_, err := a.Write(ctx, p, content, options...)
	return err
}

// modTime uses the source file's mtime when content is a file.
func modTime(content io.Reader) time.Time {
	if f, ok := content.(interface{ Stat() (os.FileInfo, error) }); ok {
		if fi, err := f.Stat(); err == nil {
			return fi.ModTime()
		}
	}
	return time.Now()
}

func (a *Adapter) fileRecord(ctx context.Context, op, p string) (string, *Record, error) {
	p, err := normalize(op, p)
	if err != nil {
		return "", nil, err
	}
	r, err := a.meta.Get(ctx, p)
	if err != nil {
		return p, nil, wrap(op, p, errors.Unwrap(err))
	}
	if r.IsDir() {
		return p, nil, &filekit.PathError{Op: op, Path: p, Err: filekit.ErrIsDir}
	}
	return p, r, nil
}

// Download implements filekit.FileSystem. Paths without a cached record
// fail with ErrNotExist before any remote call.
func (a *Adapter) Download(ctx context.Context, p string) (io.ReadCloser, error) {
	p, r, err := a.fileRecord(ctx, "read", p)
	if err != nil {
		return nil, err
	}
	blob, err := a.gateway.Fetch(ctx, r.MediaID)
	if err != nil {
		return nil, wrap("read", p, err)
	}
	return blob.Body, nil
}

// Read returns the whole content of p.
func (a *Adapter) Read(ctx context.Context, p string) ([]byte, error) {
	rc, err := a.Download(ctx, p)
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(rc)
}

// Delete removes the record at p. The remote blob is left alone.
func (a *Adapter) Delete(ctx context.Context, p string) error {
	p, err := normalize("delete", p)
	if err != nil {
		return err
	}
	ok, err := a.meta.Delete(ctx, p)
	if err != nil {
		return err
	}
	if !ok {
		return &filekit.PathError{Op: "delete", Path: p, Err: filekit.ErrNotExist}
	}
	return nil
}

// Exists reports whether p has a cached record. The remote blob is not
// checked, so a purged media still exists here until its record expires.
func (a *Adapter) Exists(ctx context.Context, p string) (bool, error) {
	p, err := normalize("exists", p)
	if err != nil {
		return false, err
	}
	return a.meta.Exists(ctx, p)
}

// Metadata returns the cached record of p.
func (a *Adapter) Metadata(ctx context.Context, p string) (*Record, error) {
	p, err := normalize("metadata", p)
	if err != nil {
		return nil, err
	}
	return a.meta.Get(ctx, p)
}

// FileInfo implements filekit.FileSystem
func (a *Adapter) FileInfo(ctx context.Context, p string) (*filekit.File, error) {
	r, err := a.Metadata(ctx, p)
	if err != nil {
		return nil, err
	}
	f := r.File()
	return &f, nil
}

// Size returns the size recorded at upload time.
func (a *Adapter) Size(ctx context.Context, p string) (int64, error) {
	_, r, err := a.fileRecord(ctx, "size", p)
	if err != nil {
		return 0, err
	}
	return r.Size, nil
}

// LastModified returns the recorded timestamp.
func (a *Adapter) LastModified(ctx context.Context, p string) (time.Time, error) {
	r, err := a.Metadata(ctx, p)
	if err != nil {
		return time.Time{}, err
	}
	return r.LastModified(), nil
}

// MediaID returns the media id behind p.
func (a *Adapter) MediaID(ctx context.Context, p string) (string, error) {
	_, r, err := a.fileRecord(ctx, "mediaid", p)
	if err != nil {
		return "", err
	}
	return r.MediaID, nil
}

// MimeType returns the cached mime type, or asks the media API once and
// stores the answer in the record. A failed write-back is only logged.
func (a *Adapter) MimeType(ctx context.Context, p string) (string, error) {
	p, r, err := a.fileRecord(ctx, "mimetype", p)
	if err != nil {
		return "", err
	}
	if r.MimeType != "" {
		return r.MimeType, nil
	}

	blob, err := a.gateway.Fetch(ctx, r.MediaID)
	if err != nil {
		return "", wrap("mimetype", p, err)
	}
	blob.Body.Close()

	r.MimeType = blob.ContentType
	if r.Size == 0 && blob.Size > 0 {
		r.Size = blob.Size
	}
	if err := a.meta.Put(ctx, p, r, a.meta.ExpiryFor(r)); err != nil {
		a.logger.Warn().Err(err).Str("path", p).Msg("could not cache mime type")
	}
	return r.MimeType, nil
}

// ListContents returns the records below prefix.
func (a *Adapter) ListContents(ctx context.Context, prefix string, recursive bool) ([]*Record, error) {
	prefix, err := normalize("list", prefix)
	if err != nil {
		return nil, err
	}
	return a.meta.List(ctx, prefix, recursive)
}

func toFiles(records []*Record) []filekit.File {
	files := make([]filekit.File, len(records))
	for i, r := range records {
		files[i] = r.File()
	}
	return files
}

// List implements filekit.FileSystem; only direct children are returned.
func (a *Adapter) List(ctx context.Context, prefix string) ([]filekit.File, error) {
	records, err := a.ListContents(ctx, prefix, false)
	if err != nil {
		return nil, err
	}
	return toFiles(records), nil
}

// ListRecursive implements filekit.RecursiveLister
func (a *Adapter) ListRecursive(ctx context.Context, prefix string) ([]filekit.File, error) {
	records, err := a.ListContents(ctx, prefix, true)
	if err != nil {
		return nil, err
	}
	return toFiles(records), nil
}

// CreateDir implements filekit.FileSystem
func (a *Adapter) CreateDir(ctx context.Context, p string) error {
	p, err := normalize("mkdir", p)
	if err != nil {
		return err
	}
	_, err = a.index.CreateDir(ctx, p)
	return err
}

// DeleteDir removes the directory record only; see DirectoryIndex.DeleteDir.
func (a *Adapter) DeleteDir(ctx context.Context, p string) error {
	p, err := normalize("rmdir", p)
	if err != nil {
		return err
	}
	ok, err := a.index.DeleteDir(ctx, p)
	if err != nil {
		return err
	}
	if !ok {
		return &filekit.PathError{Op: "rmdir", Path: p, Err: filekit.ErrNotExist}
	}
	return nil
}

// Rename implements filekit.Mover
func (a *Adapter) Rename(ctx context.Context, p, newPath string) (bool, error) {
	p, newPath, err := normalizePair("rename", p, newPath)
	if err != nil {
		return false, err
	}
	return a.index.Rename(ctx, p, newPath)
}

// Copy implements filekit.Mover
func (a *Adapter) Copy(ctx context.Context, p, newPath string) (bool, error) {
	p, newPath, err := normalizePair("copy", p, newPath)
	if err != nil {
		return false, err
	}
	return a.index.Copy(ctx, p, newPath)
}

func normalizePair(op, p, newPath string) (string, string, error) {
	src, err := normalize(op, p)
	if err != nil {
		return "", "", err
	}
	dst, err := normalize(op, newPath)
	if err != nil {
		return "", "", err
	}
	if dst == "" {
		return "", "", &filekit.PathError{Op: op, Path: newPath, Err: fmt.Errorf("%w: destination is the root", filekit.ErrInvalidPath)}
	}
	return src, dst, nil
}
