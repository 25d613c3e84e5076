package wxwork

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gobeaver/filekit-wxwork/filekit"
	"github.com/gobeaver/filekit-wxwork/wecom"
)

func TestConnectionKinds(t *testing.T) {
	assert.Equal(t, KindInstance, ConnectionInstance{}.Kind())
	assert.Equal(t, KindFactory, ConnectionFactory(nil).Kind())
	assert.Equal(t, KindProfile, ConnectionProfile("x").Kind())
}

func TestFactoryResolvedOnce(t *testing.T) {
	ctx := context.Background()
	client := newFakeClient()
	calls := 0
	factory := ConnectionFactory(func(context.Context) (MediaClient, error) {
		calls++
		return client, nil
	})

	a, err := New(newMemoryStore(t), factory)
	require.NoError(t, err)
	assert.Zero(t, calls, "resolution is lazy")

	for _, p := range []string{"a", "b", "c"} {
		_, err := a.Write(ctx, p, strings.NewReader(p))
		require.NoError(t, err)
	}
	assert.Equal(t, 1, calls)
}

func TestFactoryFailureIsRetried(t *testing.T) {
	ctx := context.Background()
	client := newFakeClient()
	fail := true
	factory := ConnectionFactory(func(context.Context) (MediaClient, error) {
		if fail {
			return nil, errors.New("profile not configured")
		}
		return client, nil
	})

	a, err := New(newMemoryStore(t), factory)
	require.NoError(t, err)

	_, err = a.Write(ctx, "a", strings.NewReader("a"))
	require.Error(t, err)

	fail = false
	_, err = a.Write(ctx, "a", strings.NewReader("a"))
	require.NoError(t, err)
}

func TestUseConnection(t *testing.T) {
	ctx := context.Background()
	first := newFakeClient("FIRST")
	second := newFakeClient("SECOND")
	a, _ := newTestAdapter(t, first)

	_, err := a.Write(ctx, "one", strings.NewReader("1"))
	require.NoError(t, err)

	a.UseConnection(ConnectionInstance{Client: second})

	rec, err := a.Write(ctx, "two", strings.NewReader("2"))
	require.NoError(t, err)
	assert.Equal(t, "SECOND", rec.MediaID)
	assert.Len(t, first.uploads, 1)
	assert.Len(t, second.uploads, 1)

	// media of the first connection is unknown to the second
	_, err = a.Read(ctx, "one")
	assert.ErrorIs(t, err, filekit.ErrNotExist)
}

func TestConnectionProfile(t *testing.T) {
	defer wecom.Reset()

	client, err := wecom.New(wecom.Config{BaseURL: "http://media.invalid", AccessToken: "t", Timeout: time.Second})
	require.NoError(t, err)
	wecom.RegisterProfile("sales", client)

	resolved, err := ConnectionProfile("sales").resolve(context.Background())
	require.NoError(t, err)
	assert.Same(t, client, resolved)

	_, err = ConnectionProfile("undefined").resolve(context.Background())
	assert.ErrorIs(t, err, wecom.ErrUnknownProfile)
}

func TestNilConnections(t *testing.T) {
	_, err := New(newMemoryStore(t), nil)
	assert.Error(t, err)

	_, err = New(nil, ConnectionInstance{Client: newFakeClient()})
	assert.Error(t, err)

	a, err := New(newMemoryStore(t), ConnectionInstance{})
	require.NoError(t, err)
	_, err = a.Write(context.Background(), "x", strings.NewReader("x"))
	assert.ErrorIs(t, err, errNoClient)
}
