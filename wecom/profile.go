package wecom

import (
	"fmt"
	"strings"
	"sync"
)

var (
	profilesMu sync.Mutex
	profiles   = make(map[string]*Client)
)

// RegisterProfile makes c available under name, replacing any previous client.
func RegisterProfile(name string, c *Client) {
	profilesMu.Lock()
	defer profilesMu.Unlock()
	profiles[strings.ToLower(name)] = c
}

// Profile returns the client registered under name. Unregistered names are
// built once from BEAVER_WECOM_<NAME>_* variables and then cached. The empty
// name means the global client.
func Profile(name string) (*Client, error) {
	if name == "" {
		if err := Init(); err != nil {
			return nil, err
		}
		return defaultClient, nil
	}

	profilesMu.Lock()
	defer profilesMu.Unlock()

	key := strings.ToLower(name)
	if c, ok := profiles[key]; ok {
		return c, nil
	}

	prefix := ProfilePrefix(name)
	c, err := WithPrefix(prefix).New()
	if err != nil {
		return nil, fmt.Errorf("%w %q (%s*): %w", ErrUnknownProfile, name, prefix, err)
	}
	profiles[key] = c
	return c, nil
}

// ProfilePrefix is the environment prefix of a named profile.
func ProfilePrefix(name string) string {
	name = strings.ToUpper(strings.NewReplacer("-", "_", ".", "_").Replace(name))
	return DefaultPrefix + name + "_"
}

func resetProfiles() {
	profilesMu.Lock()
	defer profilesMu.Unlock()
	profiles = make(map[string]*Client)
}
