package wxwork

import (
	"github.com/gobeaver/filekit-wxwork/filekit"
	"github.com/gobeaver/filekit-wxwork/kvstore"
)

func init() {
	filekit.RegisterDriver("wxwork", func(cfg filekit.Config) (filekit.FileSystem, error) {
		store, err := kvstore.WithPrefix(cfg.WxWorkStore).New()
		if err != nil {
			return nil, err
		}
		a, err := New(store, ConnectionProfile(cfg.WxWorkProfile),
			WithPrefix(cfg.WxWorkPrefix),
			WithExpire(cfg.WxWorkExpire),
			WithMaxFileSize(cfg.MaxFileSize),
		)
		if err != nil {
			store.Close()
			return nil, err
		}
		return a, nil
	})
}
