package ai

// Curated static lists returned when live discovery fails or the provider
// offers no discovery endpoint. Keeping these non-empty keeps the settings
// workflow usable offline.

var geminiModels = []string{
	"gemini-3-flash-preview",
	"gemini-3-pro-preview",
	"gemini-2.5-flash-latest",
	"gemini-2.5-flash-image",
}

var geminiTTSModels = []string{"gemini-2.5-flash-preview-tts"}

var geminiVoices = []string{"Kore", "Puck", "Charon", "Fenrir", "Zephyr"}

var fallbackLLMModels = []string{
	"gpt-3.5-turbo", "gpt-4o", "deepseek-chat", "deepseek-ai/DeepSeek-V3",
}

var fallbackTTSModels = []string{
	"tts-1", "tts-1-hd", "fish-speech-1.5", "fish-speech-1.4", "fish-speech-1.2",
}

// fallbackVoices covers OpenAI plus the full ids used by SiliconFlow-style
// gateways (Fish Audio, CosyVoice) and their short-name aliases.
var fallbackVoices = []string{
	"alloy", "echo", "fable", "onyx", "nova", "shimmer", // OpenAI
	// Fish Audio (full ids)
	"fishaudio/fish-speech-1.5:alex",
	"fishaudio/fish-speech-1.5:anna",
	"fishaudio/fish-speech-1.5:bella",
	"fishaudio/fish-speech-1.5:benjamin",
	"fishaudio/fish-speech-1.5:charles",
	"fishaudio/fish-speech-1.5:claire",
	"fishaudio/fish-speech-1.5:david",
	"fishaudio/fish-speech-1.5:dinah",
	// CosyVoice (full ids)
	"FunAudioLLM/CosyVoice2-0.5B:anna",
	"FunAudioLLM/CosyVoice2-0.5B:isabella",
	"FunAudioLLM/CosyVoice2-0.5B:ralph",
	"FunAudioLLM/CosyVoice2-0.5B:benjamin",
	// Short-name fallbacks
	"alex", "anna", "bella", "benjamin", "charles", "claire", "david", "dinah",
}

// voiceEndpointPaths are the undocumented voice-listing paths probed in order;
// the first non-empty structured result wins.
var voiceEndpointPaths = []string{
	"/audio/voices",
	"/voices",
	"/v1/audio/voices",
	"/v1/voices",
}

// ttsModelKeywords filter a generic /models listing down to speech models.
var ttsModelKeywords = []string{"tts", "speech", "audio", "fish"}
