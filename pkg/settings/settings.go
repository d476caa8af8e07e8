// Package settings persists the user configuration blob through the
// key-value store and seeds API keys from the environment on first run.
package settings

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"newsbrief/pkg/domain"
	"newsbrief/pkg/logbuf"
	"newsbrief/pkg/store"
)

const storeKey = "app_settings"

// Manager loads and saves settings through a key-value store.
type Manager struct {
	store store.Store
	logs  *logbuf.Buffer
}

// NewManager creates a settings manager over the given store.
func NewManager(s store.Store, logs *logbuf.Buffer) *Manager {
	return &Manager{store: s, logs: logs}
}

// Load returns the stored settings merged over the defaults, so fields added
// after a blob was written still get sensible values. With nothing stored it
// returns defaults seeded from the environment.
func (m *Manager) Load(ctx context.Context) (domain.Settings, error) {
	settings := defaultsFromEnv()

	data, err := m.store.Get(ctx, storeKey)
	if errors.Is(err, store.ErrNotFound) {
		return settings, nil
	}
	if err != nil {
		return settings, fmt.Errorf("load settings: %w", err)
	}

	if err := json.Unmarshal(data, &settings); err != nil {
		m.logs.Warn("Stored settings corrupt, using defaults", map[string]any{"error": err})
		return defaultsFromEnv(), nil
	}
	return settings, nil
}

// Save persists the settings blob.
func (m *Manager) Save(ctx context.Context, settings domain.Settings) error {
	data, err := json.Marshal(settings)
	if err != nil {
		return fmt.Errorf("encode settings: %w", err)
	}
	if err := m.store.Set(ctx, storeKey, data); err != nil {
		return fmt.Errorf("save settings: %w", err)
	}
	m.logs.Info("Settings saved", map[string]any{
		"llmProvider": settings.LLM.Provider, "ttsProvider": settings.TTS.Provider,
	})
	return nil
}

// Reset drops the stored blob; the next Load returns defaults.
func (m *Manager) Reset(ctx context.Context) error {
	if err := m.store.Delete(ctx, storeKey); err != nil && !errors.Is(err, store.ErrNotFound) {
		return fmt.Errorf("reset settings: %w", err)
	}
	return nil
}

// LoadEnv reads a .env file into the process environment if one exists.
// A missing file is not an error.
func LoadEnv() {
	_ = godotenv.Load()
}

// defaultsFromEnv builds the default settings with API keys picked up from
// the environment when set.
func defaultsFromEnv() domain.Settings {
	settings := domain.DefaultSettings()
	if key := os.Getenv("GEMINI_API_KEY"); key != "" {
		settings.LLM.APIKey = key
	}
	if key := os.Getenv("TTS_API_KEY"); key != "" {
		settings.TTS.APIKey = key
	}
	return settings
}
