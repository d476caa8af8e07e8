package ai

import (
	"context"
	"fmt"
	"net/http"

	"newsbrief/pkg/audio"
	"newsbrief/pkg/domain"
	"newsbrief/pkg/logbuf"
)

// maxSpeechChars caps the text sent to speech synthesis. Longer input is
// truncated, never rejected.
const maxSpeechChars = 4096

// Service is the provider-agnostic orchestration surface for summarization,
// speech synthesis, and model/voice discovery. All operations dispatch on the
// provider tag in the supplied settings.
type Service struct {
	logs *logbuf.Buffer
	http *http.Client

	// geminiAPIBase overrides the vendor REST base; tests point it at a
	// local server.
	geminiAPIBase string
}

// NewService creates an orchestration service logging into the given buffer.
func NewService(logs *logbuf.Buffer) *Service {
	return &Service{
		logs: logs,
		http: &http.Client{},
	}
}

// ListModels returns candidate LLM model ids. Discovery failures degrade to a
// curated static list so the settings workflow never blocks; a missing API
// key is still an input error.
func (s *Service) ListModels(ctx context.Context, settings domain.Settings) ([]string, error) {
	llm := settings.LLM
	s.logs.Info("Fetching LLM models", map[string]any{"provider": llm.Provider, "baseUrl": llm.BaseURL})

	if llm.APIKey == "" {
		s.logs.Warn("LLM API key missing during model fetch", nil)
		return nil, ErrMissingAPIKey
	}

	switch llm.Provider {
	case domain.ProviderGemini:
		// No live discovery for the vendor family.
		return append([]string(nil), geminiModels...), nil

	case domain.ProviderOpenAI:
		models, err := openAIListModels(ctx, s.http, llm.BaseURL, llm.APIKey)
		if err != nil {
			s.logs.Error("Model listing failed, using fallbacks", map[string]any{"error": err})
			return append([]string(nil), fallbackLLMModels...), nil
		}
		s.logs.Info("Fetched LLM models", map[string]any{"count": len(models)})
		return models, nil
	}

	return nil, fmt.Errorf("unknown provider %q", llm.Provider)
}

// ListTTSModels returns candidate speech model ids, filtering a generic
// model listing down to speech-related identifiers.
func (s *Service) ListTTSModels(ctx context.Context, settings domain.Settings) ([]string, error) {
	tts := settings.TTS
	s.logs.Info("Fetching TTS models", map[string]any{"provider": tts.Provider, "baseUrl": tts.BaseURL})

	switch tts.Provider {
	case domain.ProviderGemini:
		return append([]string(nil), geminiTTSModels...), nil

	case domain.ProviderOpenAI:
		key := settings.EffectiveTTSKey()
		if key == "" && tts.BaseURL == "" {
			return append([]string(nil), fallbackTTSModels...), nil
		}

		models, err := openAIListModels(ctx, s.http, tts.BaseURL, key)
		if err != nil {
			s.logs.Warn("TTS model listing failed, using fallbacks", map[string]any{"error": err})
			return append([]string(nil), fallbackTTSModels...), nil
		}
		if filtered := filterTTSModels(models); len(filtered) > 0 {
			return filtered, nil
		}
		return append([]string(nil), fallbackTTSModels...), nil
	}

	return nil, fmt.Errorf("unknown provider %q", tts.Provider)
}

// ListVoices returns candidate voice ids. The HTTP family probes a list of
// best-effort endpoints and degrades to a large curated list; the vendor
// family has a fixed set.
func (s *Service) ListVoices(ctx context.Context, settings domain.Settings) ([]string, error) {
	tts := settings.TTS
	s.logs.Info("Fetching TTS voices", map[string]any{"provider": tts.Provider})

	switch tts.Provider {
	case domain.ProviderGemini:
		return append([]string(nil), geminiVoices...), nil

	case domain.ProviderOpenAI:
		key := settings.EffectiveTTSKey()
		if tts.BaseURL != "" && key != "" {
			if voices := openAIProbeVoices(ctx, s.http, tts.BaseURL, key); len(voices) > 0 {
				s.logs.Info("Fetched voices", map[string]any{"count": len(voices)})
				return voices, nil
			}
		}
		s.logs.Warn("Could not fetch voices remotely, using defaults", nil)
		return append([]string(nil), fallbackVoices...), nil
	}

	return nil, fmt.Errorf("unknown provider %q", tts.Provider)
}

// TestLLMConnection runs a minimal generation and propagates provider errors
// verbatim (wrapped with provider context) so operators see real failures.
func (s *Service) TestLLMConnection(ctx context.Context, settings domain.Settings) error {
	llm := settings.LLM
	s.logs.Info("Testing LLM connection", map[string]any{"provider": llm.Provider, "model": llm.Model})

	if llm.APIKey == "" {
		return ErrMissingAPIKey
	}

	const testPrompt = "Hello"
	switch llm.Provider {
	case domain.ProviderGemini:
		if _, err := geminiGenerateText(ctx, llm.APIKey, llm.Model, testPrompt, 0.1); err != nil {
			s.logs.Error("LLM connection test failed", map[string]any{"error": err})
			return fmt.Errorf("gemini: %w", err)
		}
		return nil

	case domain.ProviderOpenAI:
		model := llm.Model
		if model == "" {
			model = "gpt-3.5-turbo"
		}
		_, err := openAIChat(ctx, s.http, llm.BaseURL, llm.APIKey, chatRequest{
			Model:     model,
			Messages:  []chatMessage{{Role: "user", Content: testPrompt}},
			MaxTokens: 5,
		})
		if err != nil {
			s.logs.Error("LLM connection test failed", map[string]any{"error": err})
			return fmt.Errorf("openai: %w", err)
		}
		return nil
	}

	return fmt.Errorf("unknown provider %q", llm.Provider)
}

// TestTTSConnection synthesizes a short phrase and propagates failures, with
// known error shapes rewritten into actionable text.
func (s *Service) TestTTSConnection(ctx context.Context, settings domain.Settings) error {
	tts := settings.TTS
	s.logs.Info("Testing TTS connection", map[string]any{
		"provider": tts.Provider, "model": tts.Model, "voice": tts.Voice,
	})

	key := settings.EffectiveTTSKey()
	if key == "" {
		return ErrMissingAPIKey
	}

	switch tts.Provider {
	case domain.ProviderGemini:
		if _, err := geminiSynthesize(ctx, s.http, s.geminiAPIBase, key, tts.Model, tts.Voice, "Test"); err != nil {
			s.logs.Error("TTS connection test failed", map[string]any{"error": err})
			return fmt.Errorf("gemini tts: %w", userFacingError(err, settings))
		}
		return nil

	case domain.ProviderOpenAI:
		model := tts.Model
		if model == "" {
			model = "tts-1"
		}
		voice := tts.Voice
		if voice == "" {
			voice = "alloy"
		}
		_, err := openAISpeech(ctx, s.http, tts.BaseURL, key, speechRequest{
			Model: model,
			Input: "Hello",
			Voice: voice,
		})
		if err != nil {
			s.logs.Error("TTS connection test failed", map[string]any{"error": err})
			return fmt.Errorf("openai tts: %w", userFacingError(err, settings))
		}
		return nil
	}

	return fmt.Errorf("unknown provider %q", tts.Provider)
}

// Summarize turns raw article text into a broadcast-ready summary with
// bold-span highlights, retrying transient failures once.
func (s *Service) Summarize(ctx context.Context, text string, settings domain.Settings) (string, error) {
	if text == "" {
		return "", ErrEmptyInput
	}

	llm := settings.LLM
	s.logs.Info("Starting summary generation", map[string]any{
		"provider": llm.Provider, "model": llm.Model, "inputLength": len(text),
	})

	if llm.APIKey == "" {
		return "", ErrMissingAPIKey
	}

	prompt := summaryPrompt(settings.Language)

	switch llm.Provider {
	case domain.ProviderGemini:
		summary, err := withRetry(ctx, s.logs, func() (string, error) {
			full := prompt + "\n\n输入文本/Input Text:\n" + text
			return geminiGenerateText(ctx, llm.APIKey, llm.Model, full, 0.7)
		})
		if err != nil {
			s.logs.Error("Gemini summary failed", map[string]any{"error": err})
			return "", fmt.Errorf("gemini: %w", userFacingError(err, settings))
		}
		s.logs.Info("Summary generated", map[string]any{"resultLength": len(summary)})
		return summary, nil

	case domain.ProviderOpenAI:
		model := llm.Model
		if model == "" {
			model = "gpt-3.5-turbo"
		}
		summary, err := withRetry(ctx, s.logs, func() (string, error) {
			return openAIChat(ctx, s.http, llm.BaseURL, llm.APIKey, chatRequest{
				Model: model,
				Messages: []chatMessage{
					{Role: "system", Content: prompt},
					{Role: "user", Content: text},
				},
				Temperature: 0.7,
				Stream:      false,
			})
		})
		if err != nil {
			s.logs.Error("OpenAI summary failed", map[string]any{"error": err})
			return "", fmt.Errorf("openai: %w", userFacingError(err, settings))
		}
		s.logs.Info("Summary generated", map[string]any{"resultLength": len(summary)})
		return summary, nil
	}

	return "", fmt.Errorf("unknown provider %q", llm.Provider)
}

// SynthesizeSpeech converts text into a decoded PCM buffer, retrying
// transient failures once. Input longer than maxSpeechChars is truncated
// before anything is sent.
func (s *Service) SynthesizeSpeech(ctx context.Context, text string, settings domain.Settings) (*audio.Buffer, error) {
	if text == "" {
		return nil, ErrEmptyInput
	}

	tts := settings.TTS
	s.logs.Info("Starting speech generation", map[string]any{
		"provider": tts.Provider, "model": tts.Model, "voice": tts.Voice,
	})

	key := settings.EffectiveTTSKey()
	if key == "" {
		return nil, ErrMissingAPIKey
	}

	if runes := []rune(text); len(runes) > maxSpeechChars {
		s.logs.Warn("Input text too long, truncating", map[string]any{
			"length": len(runes), "limit": maxSpeechChars,
		})
		text = string(runes[:maxSpeechChars])
	}

	switch tts.Provider {
	case domain.ProviderGemini:
		raw, err := withRetry(ctx, s.logs, func() ([]byte, error) {
			return geminiSynthesize(ctx, s.http, s.geminiAPIBase, key, tts.Model, tts.Voice, text)
		})
		if err != nil {
			s.logs.Error("Gemini TTS failed", map[string]any{"error": err})
			return nil, fmt.Errorf("gemini tts: %w", userFacingError(err, settings))
		}
		return audio.DecodePCM16(raw, geminiSampleRate)

	case domain.ProviderOpenAI:
		model := tts.Model
		if model == "" {
			model = "tts-1"
		}
		voice := tts.Voice
		if voice == "" {
			voice = "alloy"
		}
		container, err := withRetry(ctx, s.logs, func() ([]byte, error) {
			return openAISpeech(ctx, s.http, tts.BaseURL, key, speechRequest{
				Model:          model,
				Input:          text,
				Voice:          voice,
				ResponseFormat: "wav",
			})
		})
		if err != nil {
			s.logs.Error("OpenAI TTS failed", map[string]any{"error": err})
			return nil, fmt.Errorf("openai tts: %w", userFacingError(err, settings))
		}
		return audio.DecodeWAV(container)
	}

	return nil, fmt.Errorf("unknown provider %q", tts.Provider)
}
