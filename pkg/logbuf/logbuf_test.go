package logbuf

import (
	"fmt"
	"io"
	"log"
	"strings"
	"testing"
)

func quiet() *log.Logger {
	return log.New(io.Discard, "", 0)
}

func TestBuffer_NewestFirst(t *testing.T) {
	b := New()
	b.echo = quiet()

	b.Info("first", nil)
	b.Warn("second", nil)

	entries := b.Entries()
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[0].Message != "second" {
		t.Errorf("expected newest entry first, got %q", entries[0].Message)
	}
	if entries[0].Level != LevelWarn {
		t.Errorf("expected WARN, got %s", entries[0].Level)
	}
}

func TestBuffer_BoundedEviction(t *testing.T) {
	b := New()
	b.echo = quiet()

	for i := 0; i < maxEntries+10; i++ {
		b.Info(fmt.Sprintf("entry %d", i), nil)
	}

	entries := b.Entries()
	if len(entries) != maxEntries {
		t.Fatalf("expected %d entries, got %d", maxEntries, len(entries))
	}
	// The oldest 10 must have been dropped.
	oldest := entries[len(entries)-1].Message
	if oldest != "entry 10" {
		t.Errorf("expected oldest surviving entry to be 'entry 10', got %q", oldest)
	}
}

func TestBuffer_RedactsCredentials(t *testing.T) {
	b := New()
	b.echo = quiet()

	b.Error("auth failed", map[string]any{"apiKey": "sk-secret", "status": 401})

	entries := b.Entries()
	if got := entries[0].Details["apiKey"]; got != "***" {
		t.Errorf("expected apiKey to be redacted, got %v", got)
	}
	if got := entries[0].Details["status"]; got != 401 {
		t.Errorf("expected status to survive redaction, got %v", got)
	}
}

func TestBuffer_Export(t *testing.T) {
	b := New()
	b.echo = quiet()

	b.Info("one", nil)
	b.Info("two", map[string]any{"n": 2})

	out := b.Export()
	if !strings.Contains(out, "[INFO] one") || !strings.Contains(out, "[INFO] two") {
		t.Fatalf("export missing entries:\n%s", out)
	}
	if !strings.Contains(out, strings.Repeat("-", 40)) {
		t.Errorf("export missing dashed rule between entries")
	}
	if !strings.Contains(out, `"n": 2`) {
		t.Errorf("export missing details block:\n%s", out)
	}
}

func TestBuffer_ErrorDetailFlattened(t *testing.T) {
	b := New()
	b.echo = quiet()

	b.Warn("fetch failed", map[string]any{"error": fmt.Errorf("boom")})

	if got := b.Entries()[0].Details["error"]; got != "boom" {
		t.Errorf("expected error flattened to string, got %#v", got)
	}
}
