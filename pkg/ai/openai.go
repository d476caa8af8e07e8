package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"

	"newsbrief/pkg/domain"
)

const defaultOpenAIBase = "https://api.openai.com/v1"

// cleanBaseURL normalizes a configured base URL, defaulting to the public
// endpoint when unset.
func cleanBaseURL(baseURL string) string {
	if baseURL == "" {
		return defaultOpenAIBase
	}
	return strings.TrimSuffix(baseURL, "/")
}

// openAIError reads a non-2xx response body into an APIError, pulling the
// message out of the structured error envelope when present.
func openAIError(status int, body []byte) *APIError {
	apiErr := &APIError{
		Provider: domain.ProviderOpenAI,
		Status:   status,
		Message:  truncateBody(body),
	}

	var envelope struct {
		Error *struct {
			Message string `json:"message"`
		} `json:"error"`
		// SiliconFlow-style gateways use top-level code/message.
		Code    int    `json:"code"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &envelope); err == nil {
		if envelope.Error != nil && envelope.Error.Message != "" {
			apiErr.Message = envelope.Error.Message
		} else if envelope.Message != "" {
			apiErr.Message = envelope.Message
		}
		apiErr.Code = envelope.Code
	}
	return apiErr
}

// bearerJSON issues a request with Bearer auth and returns the raw body,
// converting non-2xx statuses into APIError.
func bearerJSON(ctx context.Context, httpClient *http.Client, method, url, apiKey string, payload any) ([]byte, error) {
	var reqBody io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("marshal request: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reqBody)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+apiKey)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, openAIError(resp.StatusCode, body)
	}
	return body, nil
}

// openAIListModels fetches GET {base}/models and returns the sorted model ids.
func openAIListModels(ctx context.Context, httpClient *http.Client, baseURL, apiKey string) ([]string, error) {
	body, err := bearerJSON(ctx, httpClient, http.MethodGet, cleanBaseURL(baseURL)+"/models", apiKey, nil)
	if err != nil {
		return nil, err
	}

	var listing struct {
		Data []struct {
			ID string `json:"id"`
		} `json:"data"`
	}
	if err := json.Unmarshal(body, &listing); err != nil || listing.Data == nil {
		return nil, fmt.Errorf("invalid models response format")
	}

	models := make([]string, 0, len(listing.Data))
	for _, m := range listing.Data {
		if m.ID != "" {
			models = append(models, m.ID)
		}
	}
	sort.Strings(models)
	return models, nil
}

// filterTTSModels keeps ids that look like speech models.
func filterTTSModels(models []string) []string {
	var filtered []string
	for _, id := range models {
		lower := strings.ToLower(id)
		for _, keyword := range ttsModelKeywords {
			if strings.Contains(lower, keyword) {
				filtered = append(filtered, id)
				break
			}
		}
	}
	return filtered
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature,omitempty"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
	Stream      bool          `json:"stream"`
}

// openAIChat runs POST {base}/chat/completions and returns the first choice's
// message content.
func openAIChat(ctx context.Context, httpClient *http.Client, baseURL, apiKey string, req chatRequest) (string, error) {
	body, err := bearerJSON(ctx, httpClient, http.MethodPost, cleanBaseURL(baseURL)+"/chat/completions", apiKey, req)
	if err != nil {
		return "", err
	}

	var completion struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(body, &completion); err != nil {
		return "", fmt.Errorf("decode completion: %w", err)
	}
	if len(completion.Choices) == 0 {
		return "", fmt.Errorf("no choices in completion")
	}
	return completion.Choices[0].Message.Content, nil
}

type speechRequest struct {
	Model          string `json:"model"`
	Input          string `json:"input"`
	Voice          string `json:"voice"`
	ResponseFormat string `json:"response_format,omitempty"`
}

// openAISpeech runs POST {base}/audio/speech and returns the raw audio
// container bytes.
func openAISpeech(ctx context.Context, httpClient *http.Client, baseURL, apiKey string, req speechRequest) ([]byte, error) {
	audio, err := bearerJSON(ctx, httpClient, http.MethodPost, cleanBaseURL(baseURL)+"/audio/speech", apiKey, req)
	if err != nil {
		return nil, err
	}
	if len(audio) == 0 {
		return nil, fmt.Errorf("empty audio received")
	}
	return audio, nil
}

// openAIProbeVoices tries the known voice-listing paths in order against the
// host of the configured base URL, returning the first non-empty list. An
// empty result means every attempt failed.
func openAIProbeVoices(ctx context.Context, httpClient *http.Client, baseURL, apiKey string) []string {
	base := cleanBaseURL(baseURL)
	for _, path := range voiceEndpointPaths {
		body, err := bearerJSON(ctx, httpClient, http.MethodGet, base+path, apiKey, nil)
		if err != nil {
			continue
		}
		if voices := parseVoiceList(body); len(voices) > 0 {
			return voices
		}
	}
	return nil
}

// parseVoiceList accepts the response shapes seen in the wild: a bare array,
// {"voices": [...]}, or {"data": [...]}, with entries that are strings or
// objects carrying id/name.
func parseVoiceList(body []byte) []string {
	var entries []json.RawMessage

	var bare []json.RawMessage
	if err := json.Unmarshal(body, &bare); err == nil {
		entries = bare
	} else {
		var wrapped struct {
			Voices []json.RawMessage `json:"voices"`
			Data   []json.RawMessage `json:"data"`
		}
		if err := json.Unmarshal(body, &wrapped); err != nil {
			return nil
		}
		if len(wrapped.Voices) > 0 {
			entries = wrapped.Voices
		} else {
			entries = wrapped.Data
		}
	}

	var voices []string
	for _, entry := range entries {
		var s string
		if err := json.Unmarshal(entry, &s); err == nil && s != "" {
			voices = append(voices, s)
			continue
		}
		var obj struct {
			ID   string `json:"id"`
			Name string `json:"name"`
		}
		if err := json.Unmarshal(entry, &obj); err == nil {
			if obj.ID != "" {
				voices = append(voices, obj.ID)
			} else if obj.Name != "" {
				voices = append(voices, obj.Name)
			}
		}
	}
	return voices
}
