package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"
)

func TestLoggerInit(t *testing.T) {
	if err := Init(); err != nil {
		t.Fatalf("failed to initialize logger: %v", err)
	}
	defer func() {
		if err := Sync(); err != nil {
			t.Errorf("failed to sync logger: %v", err)
		}
	}()

	if Get() == nil {
		t.Fatal("logger is nil after initialization")
	}

	if err := Init(WithFormat("yaml")); err == nil {
		t.Fatal("expected error for unknown format")
	}
}

func TestLoggerJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := Init(WithFormat(FormatJSON), WithOutput(&buf)); err != nil {
		t.Fatalf("failed to initialize logger: %v", err)
	}
	defer func() { _ = Init() }()

	Named("lifecycle").With(String("player_id", "p1")).Info(context.Background(), "promoted",
		Bool("promoted", true), Duration("took", 5*time.Millisecond), Error(errors.New("boom")))

	var rec map[string]any
	if err := json.Unmarshal(buf.Bytes(), &rec); err != nil {
		t.Fatalf("output is not json: %v: %s", err, buf.String())
	}
	if rec["msg"] != "promoted" {
		t.Fatalf("unexpected msg: %v", rec["msg"])
	}
	group, ok := rec["lifecycle"].(map[string]any)
	if !ok {
		t.Fatalf("expected lifecycle group, got %v", rec)
	}
	if group["player_id"] != "p1" || group["promoted"] != true || group["error"] != "boom" {
		t.Fatalf("unexpected fields: %v", group)
	}
	if src, _ := group["source"].(string); !strings.Contains(src, "logger_test.go") {
		t.Fatalf("expected caller source, got %q", src)
	}
}

func TestSetLevelString(t *testing.T) {
	var buf bytes.Buffer
	if err := Init(WithOutput(&buf)); err != nil {
		t.Fatalf("failed to initialize logger: %v", err)
	}
	defer func() { _ = Init() }()

	if err := SetLevelString("warn"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	Get().Info(context.Background(), "hidden")
	if buf.Len() != 0 {
		t.Fatalf("info should be filtered at warn level: %s", buf.String())
	}
	Get().Warn(context.Background(), "shown")
	if !strings.Contains(buf.String(), "shown") {
		t.Fatalf("warn should be logged: %s", buf.String())
	}

	if err := SetLevelString("loud"); err == nil {
		t.Fatal("expected error for unknown level")
	}
}
