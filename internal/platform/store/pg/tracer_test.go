package pg

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func TestTracerLogsStatement(t *testing.T) {
	var buf bytes.Buffer
	// root at error must not hide traced statements
	tr := Tracer(zerolog.New(&buf).Level(zerolog.ErrorLevel))

	tr.OnQuery(context.Background(), QueryEvent{
		SQL:     "SELECT max(created_at)\n\t\tFROM surveys",
		Elapsed: 3 * time.Millisecond,
	})

	var line map[string]any
	if err := json.Unmarshal(buf.Bytes(), &line); err != nil {
		t.Fatalf("decode %q: %v", buf.String(), err)
	}
	if line["level"] != "info" || line["component"] != "pg" || line["sql"] != "SELECT max(created_at) FROM surveys" {
		t.Fatalf("line = %v", line)
	}
}

func TestTracerWarnsOnSlowOrFailed(t *testing.T) {
	cases := map[string]QueryEvent{
		"slow":   {SQL: "UPDATE sync_runs SET status = $2 WHERE id = $1", Args: []any{"r1", "ok"}, Slow: true},
		"failed": {SQL: "SELECT 1", Err: errors.New("conn reset")},
	}
	for name, ev := range cases {
		t.Run(name, func(t *testing.T) {
			var buf bytes.Buffer
			Tracer(zerolog.New(&buf)).OnQuery(context.Background(), ev)

			var line map[string]any
			if err := json.Unmarshal(buf.Bytes(), &line); err != nil {
				t.Fatal(err)
			}
			if line["level"] != "warn" {
				t.Fatalf("level = %v", line["level"])
			}
			if n, _ := line["args"].(float64); int(n) != len(ev.Args) {
				t.Fatalf("args = %v, want count %d", line["args"], len(ev.Args))
			}
		})
	}
}
