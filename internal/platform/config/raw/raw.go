// Package raw reads prefixed environment variables without logging
// so the logger can configure itself from it
package raw

import (
	"os"
	"strings"
)

// Conf is a prefix scoped view of the environment
type Conf struct{ prefix string }

// New is the unprefixed root
func New() Conf { return Conf{} }

// Prefix scopes c further, e.g. New().Prefix("CORE_").Prefix("SYNC_")
func (c Conf) Prefix(p string) Conf { return Conf{prefix: c.prefix + p} }

// Key is the full variable name for key
func (c Conf) Key(key string) string { return c.prefix + key }

// Lookup returns the trimmed value and whether it was non empty
func (c Conf) Lookup(key string) (string, bool) {
	v := strings.TrimSpace(os.Getenv(c.Key(key)))
	return v, v != ""
}

// Get is Lookup with a default
func (c Conf) Get(key, def string) string {
	if v, ok := c.Lookup(key); ok {
		return v
	}
	return def
}

// GetBool treats 1, true, yes and on as true in any case
func (c Conf) GetBool(key string, def bool) bool {
	v, ok := c.Lookup(key)
	if !ok {
		return def
	}
	switch strings.ToLower(v) {
	case "1", "true", "yes", "on":
		return true
	}
	return false
}
