package main

import (
	"bytes"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gobeaver/filekit-wxwork/filekit"
	"github.com/gobeaver/filekit-wxwork/filekit/driver/wxwork"
	"github.com/gobeaver/filekit-wxwork/kvstore"
	"github.com/gobeaver/filekit-wxwork/wecom"
)

// mediaServer serves uploads and downloads from a map.
func mediaServer(t *testing.T) *httptest.Server {
	t.Helper()
	blobs := map[string][]byte{}
	seq := 0
	mux := http.NewServeMux()
	mux.HandleFunc("/cgi-bin/media/upload", func(w http.ResponseWriter, r *http.Request) {
		f, _, err := r.FormFile("media")
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		defer f.Close()
		var buf bytes.Buffer
		_, _ = buf.ReadFrom(f)
		seq++
		id := fmt.Sprintf("MID%d", seq)
		blobs[id] = buf.Bytes()
		fmt.Fprintf(w, `{"errcode":0,"type":"file","media_id":%q,"created_at":"%d"}`, id, time.Now().Unix())
	})
	mux.HandleFunc("/cgi-bin/media/get", func(w http.ResponseWriter, r *http.Request) {
		body, ok := blobs[r.URL.Query().Get("media_id")]
		if !ok {
			w.Header().Set("Error-Code", "40007")
			fmt.Fprint(w, `{"errcode":40007,"errmsg":"invalid media_id"}`)
			return
		}
		w.Header().Set("Content-Type", "text/plain")
		w.Header().Set("Content-Disposition", `attachment; filename="blob.txt"`)
		_, _ = w.Write(body)
	})
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

// newCLI builds the root command over one shared store so state survives
// between invocations.
func newCLI(t *testing.T) func(args ...string) (string, error) {
	t.Helper()
	server := mediaServer(t)

	store, err := kvstore.New(kvstore.Config{Driver: "memory"})
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	cfg := wecom.DefaultConfig()
	cfg.BaseURL = server.URL
	cfg.AccessToken = "tok"
	cfg.RateLimit = 0
	client, err := wecom.New(cfg)
	require.NoError(t, err)

	a, err := wxwork.New(store, wxwork.ConnectionInstance{Client: client})
	require.NoError(t, err)

	open := func(*cobra.Command) (*wxwork.Adapter, func(), error) {
		return a, func() {}, nil
	}

	return func(args ...string) (string, error) {
		root := buildRootCmd(viper.New(), open)
		var out bytes.Buffer
		root.SetOut(&out)
		root.SetErr(&out)
		root.SetArgs(args)
		err := root.Execute()
		return out.String(), err
	}
}

func TestCLIRoundTrip(t *testing.T) {
	run := newCLI(t)
	dir := t.TempDir()
	local := filepath.Join(dir, "notes.txt")
	require.NoError(t, os.WriteFile(local, []byte("hello wecom"), 0o600))

	out, err := run("put", local, "docs/2024/notes.txt")
	require.NoError(t, err)
	assert.Contains(t, out, "docs/2024/notes.txt -> MID1 (11 bytes)")

	out, err = run("get", "docs/2024/notes.txt")
	require.NoError(t, err)
	assert.Equal(t, "hello wecom", out)

	out, err = run("ls", "docs", "-r")
	require.NoError(t, err)
	assert.Contains(t, out, "docs/2024/")
	assert.Contains(t, out, "docs/2024/notes.txt")

	out, err = run("media", "docs/2024/notes.txt")
	require.NoError(t, err)
	assert.Equal(t, "MID1", strings.TrimSpace(out))

	out, err = run("stat", "docs/2024")
	require.NoError(t, err)
	assert.Contains(t, out, "type:      dir")
	assert.NotContains(t, out, "media_id")

	_, err = run("mv", "docs/2024/notes.txt", "archive/notes.txt")
	require.NoError(t, err)

	_, err = run("get", "docs/2024/notes.txt")
	assert.ErrorIs(t, err, filekit.ErrNotExist)

	target := filepath.Join(dir, "copy.txt")
	_, err = run("get", "archive/notes.txt", target)
	require.NoError(t, err)
	got, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Equal(t, "hello wecom", string(got))

	out, err = run("mime", "archive/notes.txt")
	require.NoError(t, err)
	assert.Equal(t, "text/plain", strings.TrimSpace(out))
}

func TestCLIMoveMissing(t *testing.T) {
	run := newCLI(t)

	out, err := run("cp", "nope.txt", "other.txt")
	assert.ErrorIs(t, err, filekit.ErrNotExist)
	assert.Contains(t, out, "nope.txt: no such entry")
}

func TestCLIDirectories(t *testing.T) {
	run := newCLI(t)

	_, err := run("mkdir", "a/b/c")
	require.NoError(t, err)

	out, err := run("ls")
	require.NoError(t, err)
	assert.Equal(t, "a/\n", out)

	_, err = run("rmdir", "a/b/c")
	require.NoError(t, err)
	_, err = run("rmdir", "a/b/c")
	assert.ErrorIs(t, err, filekit.ErrNotExist)

	_, err = run("rm", "a/missing.txt")
	assert.ErrorIs(t, err, filekit.ErrNotExist)
}

func TestLoadSettingsFromFlagsAndEnv(t *testing.T) {
	t.Setenv("WXWORKFS_PREFIX", "team")

	v := viper.New()
	cmd := &cobra.Command{Use: "x"}
	bindFlags(cmd, v)
	require.NoError(t, cmd.PersistentFlags().Parse([]string{"--kv-driver", "REDIS", "--expire", "2h", "--token", "abc"}))

	s, err := loadSettings(v)
	require.NoError(t, err)
	assert.Equal(t, "team", s.Prefix)
	assert.Equal(t, "redis", s.KV.Driver)
	assert.Equal(t, 2*time.Hour, s.Expire)
	assert.Equal(t, int64(wxwork.DefaultMaxFileSize), s.MaxFileSize)
	assert.Equal(t, "abc", s.WeCom.AccessToken)
	assert.Equal(t, wxwork.KindFactory, s.connection().Kind())
}

func TestLoadSettingsDefaultsToPersistentStore(t *testing.T) {
	v := viper.New()
	cmd := &cobra.Command{Use: "x"}
	bindFlags(cmd, v)
	require.NoError(t, cmd.PersistentFlags().Parse(nil))

	s, err := loadSettings(v)
	require.NoError(t, err)
	assert.Equal(t, "badger", s.KV.Driver)
	assert.Equal(t, "./storage/kv", s.KV.BadgerPath)
}

func TestLoadSettingsConfigFile(t *testing.T) {
	file := filepath.Join(t.TempDir(), "cfg.yaml")
	require.NoError(t, os.WriteFile(file, []byte("prefix: ops\nkv-driver: badger\nkv-path: /tmp/kv\n"), 0o600))

	v := viper.New()
	cmd := &cobra.Command{Use: "x"}
	bindFlags(cmd, v)
	require.NoError(t, cmd.PersistentFlags().Parse([]string{"--config", file}))

	s, err := loadSettings(v)
	require.NoError(t, err)
	assert.Equal(t, "ops", s.Prefix)
	assert.Equal(t, "badger", s.KV.Driver)
	assert.Equal(t, "/tmp/kv", s.KV.BadgerPath)
	assert.Equal(t, wxwork.KindProfile, s.connection().Kind())
}
