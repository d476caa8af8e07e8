package ai

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"newsbrief/pkg/domain"
)

const (
	defaultGeminiModel    = "gemini-3-flash-preview"
	defaultGeminiTTSModel = "gemini-2.5-flash-preview-tts"
	defaultGeminiVoice    = "Kore"

	// geminiSampleRate is the fixed rate of inline audio returned by the
	// vendor speech models: 24kHz mono PCM16.
	geminiSampleRate = 24000

	geminiAPIBase = "https://generativelanguage.googleapis.com/v1beta"
)

// geminiGenerateText runs a single text generation through the vendor SDK.
func geminiGenerateText(ctx context.Context, apiKey, modelName, prompt string, temperature float32) (string, error) {
	if apiKey == "" {
		return "", ErrMissingAPIKey
	}
	if modelName == "" {
		modelName = defaultGeminiModel
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return "", fmt.Errorf("create gemini client: %w", err)
	}
	defer client.Close()

	model := client.GenerativeModel(modelName)
	model.SetTemperature(temperature)

	resp, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", err
	}
	return geminiResponseText(resp)
}

// geminiResponseText extracts the concatenated text parts, surfacing safety
// rejections as a recognizable error.
func geminiResponseText(resp *genai.GenerateContentResponse) (string, error) {
	if len(resp.Candidates) == 0 {
		return "", fmt.Errorf("no candidates in response")
	}

	candidate := resp.Candidates[0]
	if candidate.FinishReason == genai.FinishReasonSafety {
		return "", fmt.Errorf("generation stopped: SAFETY")
	}
	if candidate.Content == nil || len(candidate.Content.Parts) == 0 {
		return "", fmt.Errorf("no content in response")
	}

	var parts []string
	for _, part := range candidate.Content.Parts {
		if text, ok := part.(genai.Text); ok {
			parts = append(parts, string(text))
		}
	}
	if len(parts) == 0 {
		return "", fmt.Errorf("no text parts in response")
	}
	return strings.Join(parts, ""), nil
}

// The SDK does not expose speech config, so synthesis goes through the same
// generateContent REST surface the SDK wraps, still authenticated by API key
// alone.

type geminiSpeechRequest struct {
	Contents         []geminiContent        `json:"contents"`
	GenerationConfig geminiGenerationConfig `json:"generationConfig"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text       string            `json:"text,omitempty"`
	InlineData *geminiInlineData `json:"inlineData,omitempty"`
}

type geminiInlineData struct {
	MIMEType string `json:"mimeType"`
	Data     string `json:"data"`
}

type geminiGenerationConfig struct {
	ResponseModalities []string           `json:"responseModalities"`
	SpeechConfig       geminiSpeechConfig `json:"speechConfig"`
}

type geminiSpeechConfig struct {
	VoiceConfig geminiVoiceConfig `json:"voiceConfig"`
}

type geminiVoiceConfig struct {
	PrebuiltVoiceConfig geminiPrebuiltVoice `json:"prebuiltVoiceConfig"`
}

type geminiPrebuiltVoice struct {
	VoiceName string `json:"voiceName"`
}

type geminiSpeechResponse struct {
	Candidates []struct {
		Content struct {
			Parts []geminiPart `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
	Error *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error"`
}

// geminiSynthesize requests inline audio and returns the decoded raw PCM.
func geminiSynthesize(ctx context.Context, httpClient *http.Client, apiBase, apiKey, modelName, voice, text string) ([]byte, error) {
	if apiKey == "" {
		return nil, ErrMissingAPIKey
	}
	if modelName == "" {
		modelName = defaultGeminiTTSModel
	}
	if voice == "" {
		voice = defaultGeminiVoice
	}
	if apiBase == "" {
		apiBase = geminiAPIBase
	}

	payload := geminiSpeechRequest{
		Contents: []geminiContent{{Parts: []geminiPart{{Text: text}}}},
		GenerationConfig: geminiGenerationConfig{
			ResponseModalities: []string{"AUDIO"},
			SpeechConfig: geminiSpeechConfig{
				VoiceConfig: geminiVoiceConfig{
					PrebuiltVoiceConfig: geminiPrebuiltVoice{VoiceName: voice},
				},
			},
		},
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal speech request: %w", err)
	}

	url := fmt.Sprintf("%s/models/%s:generateContent", apiBase, modelName)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build speech request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", apiKey)

	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read speech response: %w", err)
	}

	var decoded geminiSpeechResponse
	if err := json.Unmarshal(respBody, &decoded); err != nil {
		if resp.StatusCode >= 400 {
			return nil, &APIError{Provider: domain.ProviderGemini, Status: resp.StatusCode, Message: truncateBody(respBody)}
		}
		return nil, fmt.Errorf("decode speech response: %w", err)
	}
	if decoded.Error != nil {
		return nil, &APIError{
			Provider: domain.ProviderGemini,
			Status:   resp.StatusCode,
			Code:     decoded.Error.Code,
			Message:  decoded.Error.Message + " " + decoded.Error.Status,
		}
	}
	if resp.StatusCode >= 400 {
		return nil, &APIError{Provider: domain.ProviderGemini, Status: resp.StatusCode, Message: truncateBody(respBody)}
	}

	for _, candidate := range decoded.Candidates {
		for _, part := range candidate.Content.Parts {
			if part.InlineData != nil && part.InlineData.Data != "" {
				raw, err := base64.StdEncoding.DecodeString(part.InlineData.Data)
				if err != nil {
					return nil, fmt.Errorf("decode inline audio: %w", err)
				}
				return raw, nil
			}
		}
	}
	return nil, fmt.Errorf("no audio data received")
}

// truncateBody limits raw error bodies to a loggable size.
func truncateBody(body []byte) string {
	s := strings.TrimSpace(string(body))
	if len(s) > 200 {
		return s[:200]
	}
	return s
}
