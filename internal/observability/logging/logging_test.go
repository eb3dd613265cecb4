package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"
)

func TestNewLoggerWritesServiceFields(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger(Config{ServiceName: "byod", Environment: "test", Level: "warn", Output: &buf})

	l.Info("dropped")
	l.Warn("kept", "k", "v")

	var rec map[string]any
	if err := json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &rec); err != nil {
		t.Fatalf("expected exactly one json record, got %q: %v", buf.String(), err)
	}
	if rec["service"] != "byod" || rec["env"] != "test" || rec["msg"] != "kept" || rec["k"] != "v" {
		t.Fatalf("unexpected record: %v", rec)
	}
}

func TestFromContextFallsBackToDefault(t *testing.T) {
	if FromContext(context.Background()) != slog.Default() {
		t.Fatalf("expected default logger")
	}
	l := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
	if FromContext(WithContext(context.Background(), l)) != l {
		t.Fatalf("expected stored logger")
	}
}
