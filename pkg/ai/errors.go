package ai

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"strings"

	"newsbrief/pkg/domain"
)

// Input errors fail fast with no retry and no provider call.
var (
	ErrEmptyInput    = errors.New("input text is empty")
	ErrMissingAPIKey = errors.New("API key is required")
)

// invalidVoiceCode is the provider-specific error code some OpenAI-compatible
// TTS backends return for an unsupported voice id.
const invalidVoiceCode = 20047

// APIError is a structured provider error. Status carries the HTTP status
// (0 for SDK-level failures), Code the provider-specific numeric code when
// the error body had one.
type APIError struct {
	Provider domain.Provider
	Status   int
	Code     int
	Message  string
}

func (e *APIError) Error() string {
	if e.Status > 0 {
		return fmt.Sprintf("%s: API error %d: %s", e.Provider, e.Status, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Provider, e.Message)
}

// isRetryable is the single transient/permanent decision point. Only
// network-class failures and 5xx provider responses qualify; everything else
// (4xx, malformed input, missing credentials) fails immediately.
func isRetryable(err error) bool {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Status >= 500 && apiErr.Status < 600
	}

	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr)
}

// userFacingError rewrites known provider error shapes into clearer,
// localized messages. Unknown errors pass through wrapped with provider
// context by the callers.
func userFacingError(err error, settings domain.Settings) error {
	if err == nil {
		return nil
	}

	if isSafetyBlocked(err) {
		if settings.Language == domain.LanguageZhCN {
			return errors.New("内容被安全过滤器拦截。")
		}
		return errors.New("Content blocked by safety filters.")
	}

	var apiErr *APIError
	if errors.As(err, &apiErr) {
		if apiErr.Code == invalidVoiceCode || strings.Contains(apiErr.Message, "Invalid voice") {
			return fmt.Errorf("invalid voice %q: not supported by model %q, try voices like alex, anna, bella",
				settings.TTS.Voice, settings.TTS.Model)
		}
	}
	return err
}

// isSafetyBlocked detects the vendor's safety-filter rejection shape.
func isSafetyBlocked(err error) bool {
	return err != nil && strings.Contains(err.Error(), "SAFETY")
}
