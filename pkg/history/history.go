// Package history keeps a bounded, newest-first record of generated
// summaries, persisted as a JSON blob through the key-value store.
package history

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"newsbrief/pkg/domain"
	"newsbrief/pkg/logbuf"
	"newsbrief/pkg/store"
)

const (
	storeKey = "summary_history"

	// maxItems bounds the history; the oldest entries fall off the end.
	maxItems = 50

	// maxTitleRunes caps the derived display title.
	maxTitleRunes = 60
)

// Log is the summary history backed by a key-value store.
type Log struct {
	store store.Store
	logs  *logbuf.Buffer
	now   func() time.Time
}

// New creates a history log over the given store.
func New(s store.Store, logs *logbuf.Buffer) *Log {
	return &Log{store: s, logs: logs, now: time.Now}
}

// Add records a summary at the front of the history. Re-adding the same
// summary as the current most recent entry is suppressed and returns the
// existing item.
func (l *Log) Add(ctx context.Context, originalText, summary string) (domain.HistoryItem, error) {
	items, err := l.load(ctx)
	if err != nil {
		return domain.HistoryItem{}, err
	}

	if len(items) > 0 && items[0].Summary == summary && items[0].OriginalText == originalText {
		return items[0], nil
	}

	now := l.now()
	item := domain.HistoryItem{
		ID:           strconv.FormatInt(now.UnixNano(), 10),
		Title:        titleFrom(summary),
		OriginalText: originalText,
		Summary:      summary,
		Timestamp:    now.UnixMilli(),
	}

	items = append([]domain.HistoryItem{item}, items...)
	if len(items) > maxItems {
		items = items[:maxItems]
	}

	if err := l.save(ctx, items); err != nil {
		return domain.HistoryItem{}, err
	}
	l.logs.Info("History item added", map[string]any{"id": item.ID, "count": len(items)})
	return item, nil
}

// List returns the history, newest first.
func (l *Log) List(ctx context.Context) ([]domain.HistoryItem, error) {
	return l.load(ctx)
}

// Delete removes the item with the given id. Unknown ids are a no-op.
func (l *Log) Delete(ctx context.Context, id string) error {
	items, err := l.load(ctx)
	if err != nil {
		return err
	}

	kept := items[:0]
	for _, item := range items {
		if item.ID != id {
			kept = append(kept, item)
		}
	}
	if len(kept) == len(items) {
		return nil
	}
	return l.save(ctx, kept)
}

// Clear drops the entire history.
func (l *Log) Clear(ctx context.Context) error {
	if err := l.store.Delete(ctx, storeKey); err != nil && !errors.Is(err, store.ErrNotFound) {
		return fmt.Errorf("clear history: %w", err)
	}
	return nil
}

func (l *Log) load(ctx context.Context) ([]domain.HistoryItem, error) {
	data, err := l.store.Get(ctx, storeKey)
	if errors.Is(err, store.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load history: %w", err)
	}

	var items []domain.HistoryItem
	if err := json.Unmarshal(data, &items); err != nil {
		// A corrupt blob starts a fresh history rather than wedging the app.
		l.logs.Warn("History data corrupt, starting fresh", map[string]any{"error": err})
		return nil, nil
	}
	return items, nil
}

func (l *Log) save(ctx context.Context, items []domain.HistoryItem) error {
	data, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("encode history: %w", err)
	}
	if err := l.store.Set(ctx, storeKey, data); err != nil {
		return fmt.Errorf("save history: %w", err)
	}
	return nil
}

// titleFrom derives a display title: the first non-empty line with emphasis
// markers stripped, capped at maxTitleRunes.
func titleFrom(summary string) string {
	for _, line := range strings.Split(summary, "\n") {
		line = strings.TrimSpace(strings.ReplaceAll(line, "**", ""))
		if line == "" {
			continue
		}
		runes := []rune(line)
		if len(runes) > maxTitleRunes {
			return string(runes[:maxTitleRunes]) + "..."
		}
		return line
	}
	return "Untitled"
}
