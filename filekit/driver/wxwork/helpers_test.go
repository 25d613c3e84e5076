package wxwork

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/gobeaver/filekit-wxwork/kvstore"
	"github.com/gobeaver/filekit-wxwork/wecom"
)

type fakeBlob struct {
	data        []byte
	contentType string
}

type trackedBody struct {
	*bytes.Reader
	closed bool
}

func (b *trackedBody) Close() error {
	b.closed = true
	return nil
}

// fakeClient is an in-memory media API.
type fakeClient struct {
	mu        sync.Mutex
	blobs     map[string]fakeBlob
	ids       []string
	seq       int
	uploads   []string // filenames
	fetches   int
	uploadErr error
	bodies    []*trackedBody
}

func newFakeClient(ids ...string) *fakeClient {
	return &fakeClient{blobs: make(map[string]fakeBlob), ids: ids}
}

func (f *fakeClient) UploadMedia(ctx context.Context, mediaType, filename string, r io.Reader) (*wecom.UploadResult, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.uploads = append(f.uploads, filename)
	if f.uploadErr != nil {
		return nil, f.uploadErr
	}

	var id string
	if len(f.ids) > 0 {
		id, f.ids = f.ids[0], f.ids[1:]
	} else {
		f.seq++
		id = fmt.Sprintf("M%d", f.seq)
	}
	f.blobs[id] = fakeBlob{data: data, contentType: "application/octet-stream"}
	return &wecom.UploadResult{Type: mediaType, MediaID: id, CreatedAt: time.Now()}, nil
}

func (f *fakeClient) GetMedia(ctx context.Context, mediaID string) (*wecom.Media, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fetches++

	b, ok := f.blobs[mediaID]
	if !ok {
		return nil, fmt.Errorf("%w: %w", wecom.ErrMediaNotFound, &wecom.APIError{Code: 40007, Message: "invalid media_id"})
	}
	body := &trackedBody{Reader: bytes.NewReader(b.data)}
	f.bodies = append(f.bodies, body)
	return &wecom.Media{
		Body:          body,
		ContentType:   b.contentType,
		ContentLength: int64(len(b.data)),
		Date:          time.Now(),
	}, nil
}

func (f *fakeClient) purge(mediaID string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.blobs, mediaID)
}

func (f *fakeClient) fetchCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.fetches
}

func newMemoryStore(t *testing.T) kvstore.Store {
	t.Helper()
	s, err := kvstore.New(kvstore.Config{Driver: "memory"})
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func newTestAdapter(t *testing.T, client MediaClient, opts ...Option) (*Adapter, kvstore.Store) {
	t.Helper()
	store := newMemoryStore(t)
	a, err := New(store, ConnectionInstance{Client: client}, opts...)
	require.NoError(t, err)
	return a, store
}

var errBoom = errors.New("connection refused")

// failingStore fails every operation like an unreachable server.
type failingStore struct{}

func (failingStore) Get(context.Context, string) ([]byte, error) { return nil, errBoom }
func (failingStore) Set(context.Context, string, []byte, time.Duration) error {
	return errBoom
}
func (failingStore) Delete(context.Context, string) (bool, error)        { return false, errBoom }
func (failingStore) Exists(context.Context, string) (bool, error)        { return false, errBoom }
func (failingStore) Scan(context.Context, string, int) ([]string, error) { return nil, errBoom }
func (failingStore) MGet(context.Context, ...string) ([][]byte, error)   { return nil, errBoom }
func (failingStore) Clear(context.Context) error                         { return errBoom }
func (failingStore) Close() error                                        { return nil }
func (failingStore) Ping(context.Context) error                          { return errBoom }
