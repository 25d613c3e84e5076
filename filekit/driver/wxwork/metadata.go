package wxwork

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/gobeaver/filekit-wxwork/filekit"
	"github.com/gobeaver/filekit-wxwork/kvstore"
)

const defaultScanCount = 100

// MetadataStore maps canonical paths to records in a key/value store and
// keeps every ancestor of a written path present as a directory record.
// File records expire after the configured TTL, directory records never do.
type MetadataStore struct {
	kv        kvstore.Store
	prefix    string
	fileTTL   time.Duration
	scanCount int
	now       func() time.Time
	logger    zerolog.Logger
	metrics   Metrics
}

// NewMetadataStore creates a store writing keys under prefix.
func NewMetadataStore(kv kvstore.Store, prefix string, fileTTL time.Duration) *MetadataStore {
	return &MetadataStore{
		kv:        kv,
		prefix:    prefix,
		fileTTL:   fileTTL,
		scanCount: defaultScanCount,
		now:       time.Now,
		logger:    zerolog.Nop(),
		metrics:   noopMetrics{},
	}
}

// Key returns the cache key of a canonical path.
func (m *MetadataStore) Key(p string) string {
	return filekit.CacheKey(m.prefix, p)
}

// ExpiryFor returns the TTL a record is written with by default.
func (m *MetadataStore) ExpiryFor(r *Record) time.Duration {
	if r.IsDir() {
		return 0
	}
	return m.fileTTL
}

func unavailable(op, p string, err error) error {
	return &filekit.PathError{Op: op, Path: p, Err: fmt.Errorf("%w: %w", filekit.ErrUnavailable, err)}
}

// decodeAt decodes data and checks that it was written for p.
func decodeAt(data []byte, p string) (*Record, bool) {
	r, ok := decodeRecord(data)
	if !ok || r.Path != p {
		return nil, false
	}
	return r, true
}

// Get returns the record at p. Missing and undecodable entries, and
// entries written for another path, all yield ErrNotExist.
func (m *MetadataStore) Get(ctx context.Context, p string) (*Record, error) {
	data, err := m.kv.Get(ctx, m.Key(p))
	if err != nil {
		m.metrics.CacheLookup("error")
		return nil, unavailable("get", p, err)
	}
	r, ok := decodeAt(data, p)
	if !ok {
		if data != nil {
			m.logger.Warn().Str("path", p).Msg("ignoring undecodable metadata entry")
		}
		m.metrics.CacheLookup("miss")
		return nil, &filekit.PathError{Op: "get", Path: p, Err: filekit.ErrNotExist}
	}
	m.metrics.CacheLookup("hit")
	return r, nil
}

// Exists reports whether a readable record is cached at p.
func (m *MetadataStore) Exists(ctx context.Context, p string) (bool, error) {
	_, err := m.Get(ctx, p)
	if filekit.IsNotExist(err) {
		return false, nil
	}
	return err == nil, err
}

// Put writes r at p, filling its path fields from p. A positive ttl makes the entry expire.
func (m *MetadataStore) Put(ctx context.Context, p string, r *Record, ttl time.Duration) error {
	r.setPath(p)
	data, err := json.Marshal(r)
	if err != nil {
		return &filekit.PathError{Op: "put", Path: p, Err: err}
	}
	if err := m.kv.Set(ctx, m.Key(p), data, ttl); err != nil {
		return unavailable("put", p, err)
	}
	return nil
}

// PutWithAncestors writes r and then makes sure every ancestor of p up to
// the root is a directory record. Ancestors are read in one batch and only
// missing, unreadable or file entries are rewritten, so repeating the call
// leaves existing directories untouched.
func (m *MetadataStore) PutWithAncestors(ctx context.Context, p string, r *Record, ttl time.Duration) error {
	if err := m.Put(ctx, p, r, ttl); err != nil {
		return err
	}
	if p == "" {
		return nil
	}

	var ancestors []string
	for d := filekit.Dirname(p); ; d = filekit.Dirname(d) {
		ancestors = append(ancestors, d)
		if d == "" {
			break
		}
	}

	keys := make([]string, len(ancestors))
	for i, a := range ancestors {
		keys[i] = m.Key(a)
	}
	existing, err := m.kv.MGet(ctx, keys...)
	if err != nil {
		return unavailable("put", p, err)
	}

	now := m.now()
	for i, a := range ancestors {
		if cur, ok := decodeAt(existing[i], a); ok {
			if cur.IsDir() {
				continue
			}
			m.logger.Warn().Str("path", a).Str("child", p).Msg("replacing file record with directory")
		}
		if err := m.Put(ctx, a, newDirRecord(a, now), 0); err != nil {
			return err
		}
	}
	return nil
}

// Delete removes the record at p and reports whether it existed.
func (m *MetadataStore) Delete(ctx context.Context, p string) (bool, error) {
	ok, err := m.kv.Delete(ctx, m.Key(p))
	if err != nil {
		return false, unavailable("delete", p, err)
	}
	return ok, nil
}

// List returns the records below prefix sorted by path. Without recursive
// only direct children are returned. Unreadable entries are skipped.
func (m *MetadataStore) List(ctx context.Context, prefix string, recursive bool) ([]*Record, error) {
	var match string
	switch {
	case prefix != "":
		match = kvstore.EscapePattern(m.Key(prefix)) + ":*"
	case m.prefix != "":
		match = kvstore.EscapePattern(m.prefix) + ":*"
	default:
		match = "*"
	}

	keys, err := m.kv.Scan(ctx, match, m.scanCount)
	if err != nil {
		return nil, unavailable("list", prefix, err)
	}

	var out []*Record
	for start := 0; start < len(keys); start += m.scanCount {
		end := start + m.scanCount
		if end > len(keys) {
			end = len(keys)
		}
		batch := keys[start:end]

		values, err := m.kv.MGet(ctx, batch...)
		if err != nil {
			return nil, unavailable("list", prefix, err)
		}

		for i, key := range batch {
			r, ok := decodeRecord(values[i])
			if !ok {
				if values[i] != nil {
					m.logger.Warn().Str("key", key).Msg("skipping undecodable metadata entry")
					m.metrics.SkippedEntry()
				}
				continue
			}
			if m.Key(r.Path) != key || !isBelow(r.Path, prefix) {
				continue
			}
			if !recursive && filekit.Dirname(r.Path) != prefix {
				continue
			}
			r.setPath(r.Path)
			out = append(out, r)
		}
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out, nil
}

// isBelow reports whether p is a strict descendant of dir.
func isBelow(p, dir string) bool {
	if p == dir {
		return false
	}
	return dir == "" || strings.HasPrefix(p, dir+"/")
}
