package store

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestOpen_Disabled(t *testing.T) {
	var buf bytes.Buffer
	s, err := Open(context.Background(), Config{}, WithLogger(zerolog.New(&buf)))
	if err != nil {
		t.Fatal(err)
	}
	if s.PG != nil {
		t.Fatalf("disabled pg published %T", s.PG)
	}
	s.Log.Info().Msg("hello")
	if !strings.Contains(buf.String(), "hello") {
		t.Fatal("WithLogger not applied")
	}
	if err := s.Guard(context.Background()); err != nil {
		t.Fatalf("guard with no backends = %v", err)
	}
	if err := s.Close(context.Background()); err != nil {
		t.Fatalf("close with no backends = %v", err)
	}
}

func TestOpen_BadURL(t *testing.T) {
	s, err := Open(context.Background(), Config{PG: PGConfig{Enabled: true, URL: "://bad"}})
	if err == nil || s != nil {
		t.Fatalf("open = %v, %v", s, err)
	}
}

// pingRunner is a TxRunner that also answers Ping
type pingRunner struct {
	TxRunner
	err error
}

func (p pingRunner) Ping(context.Context) error { return p.err }

func TestGuard(t *testing.T) {
	var nilStore *Store
	if err := nilStore.Guard(context.Background()); err == nil {
		t.Fatal("nil store should fail guard")
	}

	if err := (&Store{PG: pingRunner{}}).Guard(context.Background()); err != nil {
		t.Fatalf("healthy = %v", err)
	}

	down := errors.New("connection refused")
	err := (&Store{PG: pingRunner{err: down}}).Guard(context.Background())
	if !errors.Is(err, down) || !strings.HasPrefix(err.Error(), "pg: ") {
		t.Fatalf("down = %v", err)
	}
}
