package http

import (
	"context"
	"net/http"
	"testing"
	"time"

	"surveysync/internal/platform/config"
)

func TestServer_RunAndShutdown(t *testing.T) {
	t.Setenv("API_PORT", "127.0.0.1:0")
	s := NewServer(config.New())
	if s.Addr() != "127.0.0.1:0" {
		t.Fatalf("addr = %q", s.Addr())
	}
	s.Router().Get("/ping", func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) })

	done := make(chan error, 1)
	go func() { done <- s.Run(context.Background()) }()
	time.Sleep(50 * time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := s.Shutdown(ctx); err != nil {
		t.Fatalf("shutdown: %v", err)
	}
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("run after shutdown = %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("run did not return")
	}
}
