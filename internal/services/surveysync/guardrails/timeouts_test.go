package guardrails

import (
	"context"
	"testing"
	"time"
)

func TestWithChildTimeout_NeverExtendsParent(t *testing.T) {
	parent, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	ctx, c2 := ForFetch(parent, Timeouts{Fetch: time.Hour})
	defer c2()

	dl, ok := ctx.Deadline()
	if !ok {
		t.Fatal("expected deadline")
	}
	if time.Until(dl) > 50*time.Millisecond {
		t.Fatalf("child deadline %v exceeds parent", time.Until(dl))
	}
}

func TestWithChildTimeout_ZeroInheritsParent(t *testing.T) {
	ctx, cancel := WithRun(context.Background(), Timeouts{})
	defer cancel()
	if _, ok := ctx.Deadline(); ok {
		t.Fatal("zero budget should not add a deadline")
	}
	cancel()
	if ctx.Err() == nil {
		t.Fatal("child should be cancelable")
	}
}

func TestWithChildTimeout_TighterChild(t *testing.T) {
	parent, cancel := context.WithTimeout(context.Background(), time.Hour)
	defer cancel()

	ctx, c2 := ForAuth(parent, Timeouts{Auth: 20 * time.Millisecond})
	defer c2()
	if rem := Remaining(ctx); rem <= 0 || rem > 20*time.Millisecond {
		t.Fatalf("remaining = %v", rem)
	}
}

func TestRemaining_NoDeadline(t *testing.T) {
	if Remaining(context.Background()) != 0 {
		t.Fatal("expected zero without deadline")
	}
}
