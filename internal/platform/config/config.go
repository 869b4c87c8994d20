// Package config reads typed settings from prefixed environment variables
// bad optional values are logged and replaced by their default
package config

import (
	"strconv"
	"strings"
	"time"

	"surveysync/internal/platform/config/raw"
	"surveysync/internal/platform/logger"
)

// Conf is a prefix scoped view, e.g. New().Prefix("OVATION_")
type Conf struct{ env raw.Conf }

// New is the unprefixed root
func New() Conf { return Conf{env: raw.New()} }

// Prefix scopes c further
func (c Conf) Prefix(p string) Conf { return Conf{env: c.env.Prefix(p)} }

func (c Conf) key(k string) string { return c.env.Key(k) }

// MustString panics through the logger when key is unset or blank
func (c Conf) MustString(key string) string {
	v, ok := c.env.Lookup(key)
	if !ok {
		logger.Get().Panic().Str("key", c.key(key)).Msg("missing required env")
	}
	return v
}

// MayString is the trimmed value or def
func (c Conf) MayString(key, def string) string { return c.env.Get(key, def) }

// MayInt parses base 10
func (c Conf) MayInt(key string, def int) int { return may(c, key, def, strconv.Atoi) }

// MayBool accepts what strconv.ParseBool does
func (c Conf) MayBool(key string, def bool) bool { return may(c, key, def, strconv.ParseBool) }

// MayDuration accepts time.ParseDuration syntax, e.g. 90s or 15m
func (c Conf) MayDuration(key string, def time.Duration) time.Duration {
	return may(c, key, def, time.ParseDuration)
}

// MayCSV splits on commas and drops blanks; all blank means def
func (c Conf) MayCSV(key string, def []string) []string {
	parts := strings.Split(c.env.Get(key, ""), ",")
	out := parts[:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return def
	}
	return out
}

func may[T any](c Conf, key string, def T, parse func(string) (T, error)) T {
	s, ok := c.env.Lookup(key)
	if !ok {
		return def
	}
	v, err := parse(s)
	if err != nil {
		logger.Get().Warn().Str("key", c.key(key)).Str("value", s).Interface("default", def).Msg("invalid env value; using default")
		return def
	}
	return v
}
