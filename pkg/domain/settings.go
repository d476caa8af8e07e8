package domain

// Provider identifies a backend integration family.
type Provider string

const (
	// ProviderGemini talks to the vendor SDK (API key only, no base URL).
	ProviderGemini Provider = "gemini"
	// ProviderOpenAI talks to any OpenAI-compatible REST endpoint.
	ProviderOpenAI Provider = "openai"
)

// Language selects the output language of generated summaries.
type Language string

const (
	LanguageZhCN Language = "zh-CN"
	LanguageEnUS Language = "en-US"
)

// LLMSettings configures the text-generation backend.
type LLMSettings struct {
	Provider Provider `json:"provider"`
	APIKey   string   `json:"apiKey"`
	BaseURL  string   `json:"baseUrl"`
	Model    string   `json:"model"`
}

// TTSSettings configures the speech-synthesis backend.
type TTSSettings struct {
	Provider Provider `json:"provider"`
	APIKey   string   `json:"apiKey"`
	BaseURL  string   `json:"baseUrl"`
	Model    string   `json:"model"`
	Voice    string   `json:"voice"`
}

// Settings is the full user configuration persisted as one blob.
type Settings struct {
	Language Language    `json:"language"`
	LLM      LLMSettings `json:"llm"`
	TTS      TTSSettings `json:"tts"`
}

// EffectiveTTSKey returns the key used for TTS calls. When the TTS side has no
// key of its own and both sides use the same provider, the LLM key is borrowed.
func (s Settings) EffectiveTTSKey() string {
	if s.TTS.APIKey != "" {
		return s.TTS.APIKey
	}
	if s.TTS.Provider == s.LLM.Provider {
		return s.LLM.APIKey
	}
	return ""
}

// DefaultSettings mirrors the defaults the UI shell ships with.
func DefaultSettings() Settings {
	return Settings{
		Language: LanguageZhCN,
		LLM: LLMSettings{
			Provider: ProviderGemini,
			Model:    "gemini-3-flash-preview",
		},
		TTS: TTSSettings{
			Provider: ProviderGemini,
			Model:    "gemini-2.5-flash-preview-tts",
			Voice:    "Kore",
		},
	}
}
