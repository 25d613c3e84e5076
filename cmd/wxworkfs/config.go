package main

import (
	"context"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/gobeaver/filekit-wxwork/filekit/driver/wxwork"
	"github.com/gobeaver/filekit-wxwork/kvstore"
	"github.com/gobeaver/filekit-wxwork/wecom"
)

// settings is everything the CLI needs to build an adapter.
type settings struct {
	Prefix      string
	Expire      time.Duration
	MaxFileSize int64
	Profile     string
	Verbose     bool
	KV          kvstore.Config
	WeCom       wecom.Config
}

func bindFlags(cmd *cobra.Command, v *viper.Viper) {
	f := cmd.PersistentFlags()
	f.String("config", "", "config file (default ./.wxworkfs.yaml)")
	f.String("prefix", wxwork.DefaultPrefix, "cache key prefix")
	f.Duration("expire", wxwork.DefaultExpire, "file record lifetime")
	f.Int64("max-size", wxwork.DefaultMaxFileSize, "upload size limit in bytes")
	f.String("profile", "", "named wecom profile (BEAVER_WECOM_<NAME>_*)")
	f.String("kv-driver", "badger", "metadata store: badger, redis or memory (memory forgets everything on exit)")
	f.String("kv-url", "", "redis URL")
	f.String("kv-path", "./storage/kv", "badger directory")
	f.String("base-url", wecom.DefaultConfig().BaseURL, "media API base URL")
	f.String("token", "", "access token")
	f.BoolP("verbose", "v", false, "log to stderr")

	_ = v.BindPFlags(f)
	v.SetEnvPrefix("WXWORKFS")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
}

func loadSettings(v *viper.Viper) (*settings, error) {
	if file := v.GetString("config"); file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return nil, err
		}
	} else {
		v.SetConfigName(".wxworkfs")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		// Try to read config file (ignore if not found)
		_ = v.ReadInConfig()
	}

	s := &settings{
		Prefix:      v.GetString("prefix"),
		Expire:      v.GetDuration("expire"),
		MaxFileSize: v.GetInt64("max-size"),
		Profile:     v.GetString("profile"),
		Verbose:     v.GetBool("verbose"),
		KV: kvstore.Config{
			Driver:     strings.ToLower(v.GetString("kv-driver")),
			URL:        v.GetString("kv-url"),
			BadgerPath: v.GetString("kv-path"),
		},
		WeCom: wecom.DefaultConfig(),
	}
	s.WeCom.BaseURL = v.GetString("base-url")
	s.WeCom.AccessToken = v.GetString("token")
	return s, nil
}

func (s *settings) logger() zerolog.Logger {
	if !s.Verbose {
		return zerolog.Nop()
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).Level(zerolog.DebugLevel).With().Timestamp().Logger()
}

// connection prefers an explicit token, then a named profile, then the
// global BEAVER_WECOM_* client.
func (s *settings) connection() wxwork.Connection {
	if s.WeCom.AccessToken != "" {
		cfg := s.WeCom
		log := s.logger()
		return wxwork.ConnectionFactory(func(ctx context.Context) (wxwork.MediaClient, error) {
			c, err := wecom.New(cfg, wecom.WithLogger(log))
			if err != nil {
				return nil, err
			}
			return c, nil
		})
	}
	return wxwork.ConnectionProfile(s.Profile)
}

func (s *settings) open() (*wxwork.Adapter, kvstore.Store, error) {
	store, err := kvstore.New(s.KV)
	if err != nil {
		return nil, nil, err
	}
	a, err := wxwork.New(store, s.connection(),
		wxwork.WithPrefix(s.Prefix),
		wxwork.WithExpire(s.Expire),
		wxwork.WithMaxFileSize(s.MaxFileSize),
		wxwork.WithLogger(s.logger()),
	)
	if err != nil {
		store.Close()
		return nil, nil, err
	}
	return a, store, nil
}
