package wxwork

import (
	"context"
	"errors"
	"io"
	"sync"

	"github.com/gobeaver/filekit-wxwork/wecom"
)

// MediaClient is the subset of *wecom.Client the adapter needs.
type MediaClient interface {
	UploadMedia(ctx context.Context, mediaType, filename string, r io.Reader) (*wecom.UploadResult, error)
	GetMedia(ctx context.Context, mediaID string) (*wecom.Media, error)
}

var _ MediaClient = (*wecom.Client)(nil)

// ConnectionKind tags the Connection variants.
type ConnectionKind int

const (
	KindInstance ConnectionKind = iota
	KindFactory
	KindProfile
)

// Connection says where the adapter gets its media client from. It is
// resolved on first use and then reused.
type Connection interface {
	Kind() ConnectionKind
	resolve(ctx context.Context) (MediaClient, error)
}

// ConnectionInstance uses an existing client.
type ConnectionInstance struct {
	Client MediaClient
}

func (ConnectionInstance) Kind() ConnectionKind { return KindInstance }

func (c ConnectionInstance) resolve(context.Context) (MediaClient, error) {
	if c.Client == nil {
		return nil, errNoClient
	}
	return c.Client, nil
}

// ConnectionFactory builds the client on first use.
type ConnectionFactory func(ctx context.Context) (MediaClient, error)

func (ConnectionFactory) Kind() ConnectionKind { return KindFactory }

func (f ConnectionFactory) resolve(ctx context.Context) (MediaClient, error) {
	c, err := f(ctx)
	if err == nil && c == nil {
		err = errNoClient
	}
	return c, err
}

// ConnectionProfile names a wecom profile; the empty name is the global client.
type ConnectionProfile string

func (ConnectionProfile) Kind() ConnectionKind { return KindProfile }

func (p ConnectionProfile) resolve(context.Context) (MediaClient, error) {
	return wecom.Profile(string(p))
}

var errNoClient = errors.New("wxwork: connection resolved to no client")

// connector resolves a Connection once. A failed resolution is retried on
// the next call.
type connector struct {
	mu     sync.Mutex
	conn   Connection
	client MediaClient
}

func (c *connector) get(ctx context.Context) (MediaClient, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.client != nil {
		return c.client, nil
	}
	if c.conn == nil {
		return nil, errNoClient
	}
	client, err := c.conn.resolve(ctx)
	if err != nil {
		return nil, err
	}
	c.client = client
	return client, nil
}

func (c *connector) set(conn Connection) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.conn = conn
	c.client = nil
}
