package logbuf

import (
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"
)

// Level classifies a log entry.
type Level string

const (
	LevelInfo  Level = "INFO"
	LevelWarn  Level = "WARN"
	LevelError Level = "ERROR"
)

// Entry is one record in the ring buffer.
type Entry struct {
	Timestamp string         `json:"timestamp"`
	Level     Level          `json:"level"`
	Message   string         `json:"message"`
	Details   map[string]any `json:"details,omitempty"`
}

const maxEntries = 500

// redactedKeys are detail fields that must never reach storage verbatim.
var redactedKeys = map[string]bool{
	"apikey":        true,
	"api_key":       true,
	"authorization": true,
}

// Buffer is a bounded, newest-first log ring shared across the pipeline.
// Entries past the bound are dropped oldest-first. Safe for concurrent use.
type Buffer struct {
	mu      sync.Mutex
	entries []Entry
	echo    *log.Logger
	now     func() time.Time
}

// New creates an empty buffer. Entries are echoed to the stdlib logger so they
// still show up on stdout during development.
func New() *Buffer {
	return &Buffer{
		echo: log.Default(),
		now:  time.Now,
	}
}

func (b *Buffer) Info(msg string, details map[string]any)  { b.add(LevelInfo, msg, details) }
func (b *Buffer) Warn(msg string, details map[string]any)  { b.add(LevelWarn, msg, details) }
func (b *Buffer) Error(msg string, details map[string]any) { b.add(LevelError, msg, details) }

func (b *Buffer) add(level Level, msg string, details map[string]any) {
	if b == nil {
		return
	}
	entry := Entry{
		Timestamp: b.now().UTC().Format(time.RFC3339Nano),
		Level:     level,
		Message:   msg,
		Details:   redact(details),
	}

	b.mu.Lock()
	b.entries = append([]Entry{entry}, b.entries...)
	if len(b.entries) > maxEntries {
		b.entries = b.entries[:maxEntries]
	}
	echo := b.echo
	b.mu.Unlock()

	if echo != nil {
		if len(entry.Details) > 0 {
			echo.Printf("[%s] %s %v", level, msg, entry.Details)
		} else {
			echo.Printf("[%s] %s", level, msg)
		}
	}
}

// Entries returns a snapshot, newest first.
func (b *Buffer) Entries() []Entry {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]Entry, len(b.entries))
	copy(out, b.entries)
	return out
}

// Clear drops all entries.
func (b *Buffer) Clear() {
	b.mu.Lock()
	b.entries = nil
	b.mu.Unlock()
}

// Export renders the buffer as a plain-text dump, one entry per block
// separated by a dashed rule.
func (b *Buffer) Export() string {
	entries := b.Entries()
	blocks := make([]string, 0, len(entries))
	for _, e := range entries {
		block := fmt.Sprintf("[%s] [%s] %s", e.Timestamp, e.Level, e.Message)
		if len(e.Details) > 0 {
			if data, err := json.MarshalIndent(e.Details, "", "  "); err == nil {
				block += "\nDetails: " + string(data)
			} else {
				block += "\nDetails: [unserializable]"
			}
		}
		blocks = append(blocks, block)
	}
	return strings.Join(blocks, "\n"+strings.Repeat("-", 40)+"\n")
}

// redact copies the details map, masking credential fields and flattening
// error values so they serialize cleanly.
func redact(details map[string]any) map[string]any {
	if len(details) == 0 {
		return nil
	}
	out := make(map[string]any, len(details))
	for k, v := range details {
		if redactedKeys[strings.ToLower(k)] {
			out[k] = "***"
			continue
		}
		if err, ok := v.(error); ok {
			out[k] = err.Error()
			continue
		}
		out[k] = v
	}
	return out
}
