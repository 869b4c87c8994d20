// Package strings holds the few string helpers module wiring needs
package strings

import std "strings"

// IfEmpty returns def when in has no elements
func IfEmpty[T any](in, def []T) []T {
	if len(in) == 0 {
		return def
	}
	return in
}

// MustString panics with "<name> is required" when s is blank
func MustString(s, name string) string {
	if std.TrimSpace(s) == "" {
		panic(name + " is required")
	}
	return s
}

// MustPrefix normalizes a route prefix to one leading slash and no trailing one
// it panics when nothing but slashes remain
func MustPrefix(s string) string {
	s = "/" + std.Trim(std.TrimSpace(s), "/")
	if s == "/" {
		panic("root path is required")
	}
	return s
}
