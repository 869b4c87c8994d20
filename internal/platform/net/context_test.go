package net_test

import (
	"context"
	"testing"

	pnet "surveysync/internal/platform/net"
)

func TestRequestIDRoundTrip(t *testing.T) {
	ctx := pnet.WithRequestID(context.Background(), "req-sync-1")
	if got := pnet.RequestID(ctx); got != "req-sync-1" {
		t.Fatalf("RequestID = %q", got)
	}

	base := context.Background()
	if pnet.WithRequestID(base, "") != base {
		t.Fatal("empty id should leave ctx untouched")
	}
	if pnet.RequestID(base) != "" {
		t.Fatal("bare ctx has an id")
	}
}
