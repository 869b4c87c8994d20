// Package testkit holds helpers for tests that replace package level seams
package testkit

import (
	"sync"
	"testing"
)

var seamMu sync.Mutex

// Swap sets *target to v until the test ends
func Swap[T any](t testing.TB, target *T, v T) {
	t.Helper()
	prev := *target
	*target = v
	t.Cleanup(func() { *target = prev })
}

// Serial holds a process wide lock until the test ends
// use it in every test that swaps the same seam
func Serial(t testing.TB) {
	t.Helper()
	seamMu.Lock()
	t.Cleanup(seamMu.Unlock)
}
