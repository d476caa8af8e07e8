package settings

import (
	"context"
	"testing"

	"newsbrief/pkg/domain"
	"newsbrief/pkg/logbuf"
	"newsbrief/pkg/store"
)

func newTestManager() *Manager {
	return NewManager(store.NewMemoryStore(), logbuf.New())
}

func TestLoadReturnsDefaultsWhenEmpty(t *testing.T) {
	m := newTestManager()

	settings, err := m.Load(context.Background())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if settings.LLM.Provider != domain.ProviderGemini {
		t.Fatalf("default provider = %q, want gemini", settings.LLM.Provider)
	}
	if settings.Language != domain.LanguageZhCN {
		t.Fatalf("default language = %q, want zh-CN", settings.Language)
	}
}

func TestSaveRoundTrip(t *testing.T) {
	m := newTestManager()
	ctx := context.Background()

	want := domain.DefaultSettings()
	want.Language = domain.LanguageEnUS
	want.LLM = domain.LLMSettings{
		Provider: domain.ProviderOpenAI,
		APIKey:   "sk-abc",
		BaseURL:  "https://api.example.com/v1",
		Model:    "gpt-4",
	}

	if err := m.Save(ctx, want); err != nil {
		t.Fatalf("Save: %v", err)
	}
	got, err := m.Load(ctx)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got != want {
		t.Fatalf("round trip mismatch:\n got %+v\nwant %+v", got, want)
	}
}

func TestEnvSeedsAPIKeys(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "env-gemini-key")
	t.Setenv("TTS_API_KEY", "env-tts-key")

	m := newTestManager()
	settings, err := m.Load(context.Background())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if settings.LLM.APIKey != "env-gemini-key" {
		t.Fatalf("LLM key = %q, want env value", settings.LLM.APIKey)
	}
	if settings.TTS.APIKey != "env-tts-key" {
		t.Fatalf("TTS key = %q, want env value", settings.TTS.APIKey)
	}
}

func TestStoredSettingsWinOverEnv(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "env-key")

	m := newTestManager()
	ctx := context.Background()

	stored := domain.DefaultSettings()
	stored.LLM.APIKey = "stored-key"
	if err := m.Save(ctx, stored); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, err := m.Load(ctx)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got.LLM.APIKey != "stored-key" {
		t.Fatalf("LLM key = %q, stored settings must win", got.LLM.APIKey)
	}
}

func TestCorruptSettingsFallBackToDefaults(t *testing.T) {
	s := store.NewMemoryStore()
	m := NewManager(s, logbuf.New())
	ctx := context.Background()

	s.Set(ctx, storeKey, []byte("~~nonsense~~"))

	got, err := m.Load(ctx)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got.LLM.Provider != domain.ProviderGemini {
		t.Fatalf("expected defaults after corrupt blob, got %+v", got)
	}
}

func TestReset(t *testing.T) {
	m := newTestManager()
	ctx := context.Background()

	stored := domain.DefaultSettings()
	stored.LLM.APIKey = "to-be-dropped"
	m.Save(ctx, stored)

	if err := m.Reset(ctx); err != nil {
		t.Fatalf("Reset: %v", err)
	}
	got, _ := m.Load(ctx)
	if got.LLM.APIKey != "" {
		t.Fatalf("key survived reset: %q", got.LLM.APIKey)
	}

	if err := m.Reset(ctx); err != nil {
		t.Fatalf("Reset on empty store: %v", err)
	}
}
