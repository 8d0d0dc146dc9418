// retry.go - Retry logic and error categorization for model API calls

package ai

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/bosocmputer/credit_analyzer_gemini/internal/common"
	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/googleapi"
)

// RetryConfig defines retry behavior for model API calls
type RetryConfig struct {
	MaxAttempts     int
	InitialDelay    time.Duration
	MaxDelay        time.Duration
	BackoffMultiple float64
}

// DefaultRetryConfig provides sensible defaults for retry behavior
var DefaultRetryConfig = RetryConfig{
	MaxAttempts:     3,
	InitialDelay:    1 * time.Second,
	MaxDelay:        8 * time.Second,
	BackoffMultiple: 2.0,
}

// ProviderError represents a categorized model API error
type ProviderError struct {
	OriginalError error
	Category      string
	StatusCode    int
	Message       string
	Retryable     bool
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("[%s] %s (status: %d, retryable: %v)", e.Category, e.Message, e.StatusCode, e.Retryable)
}

func (e *ProviderError) Unwrap() error {
	return e.OriginalError
}

// categorizeProviderError analyzes an error and determines retry strategy
func categorizeProviderError(err error) *ProviderError {
	if err == nil {
		return nil
	}

	provErr := &ProviderError{
		OriginalError: err,
		Category:      "unknown",
		Message:       err.Error(),
		Retryable:     false,
	}

	// Check if it's a Google API error
	if apiErr, ok := err.(*googleapi.Error); ok {
		provErr.StatusCode = apiErr.Code

		switch apiErr.Code {
		case 400:
			provErr.Category = "bad_request"
			provErr.Message = "Invalid request format or parameters"
			provErr.Retryable = false

		case 401:
			provErr.Category = "unauthorized"
			provErr.Message = "Invalid API key or authentication failed"
			provErr.Retryable = false

		case 403:
			provErr.Category = "forbidden"
			provErr.Message = "API key lacks required permissions"
			provErr.Retryable = false

		case 404:
			provErr.Category = "not_found"
			provErr.Message = "Model not found or invalid endpoint"
			provErr.Retryable = false

		case 413:
			provErr.Category = "payload_too_large"
			provErr.Message = "Request size exceeds limit (reduce image size)"
			provErr.Retryable = false

		case 429:
			provErr.Category = "rate_limit"
			provErr.Message = "Rate limit exceeded - too many requests"
			provErr.Retryable = true

		case 500, 502, 503, 504:
			provErr.Category = "server_error"
			provErr.Message = fmt.Sprintf("Model server error (%d)", apiErr.Code)
			provErr.Retryable = true

		default:
			provErr.Category = "unknown_api_error"
			provErr.Message = fmt.Sprintf("API error: %s", apiErr.Message)
			provErr.Retryable = apiErr.Code >= 500
		}

		return provErr
	}

	// Check for context errors
	if err == context.DeadlineExceeded {
		provErr.Category = "timeout"
		provErr.Message = "Request timeout - processing took too long"
		provErr.Retryable = true
		return provErr
	}

	if err == context.Canceled {
		provErr.Category = "canceled"
		provErr.Message = "Request was canceled"
		provErr.Retryable = false
		return provErr
	}

	// Check error message for common patterns
	errMsg := strings.ToLower(err.Error())

	if strings.Contains(errMsg, "quota") || strings.Contains(errMsg, "limit") {
		provErr.Category = "quota_exceeded"
		provErr.Message = "API quota exceeded - daily or monthly limit reached"
		provErr.Retryable = false
		return provErr
	}

	if strings.Contains(errMsg, "timeout") || strings.Contains(errMsg, "deadline") {
		provErr.Category = "timeout"
		provErr.Message = "Request timeout"
		provErr.Retryable = true
		return provErr
	}

	if strings.Contains(errMsg, "connection") || strings.Contains(errMsg, "network") {
		provErr.Category = "network_error"
		provErr.Message = "Network connection error"
		provErr.Retryable = true
		return provErr
	}

	// Default: unknown error, not retryable
	provErr.Category = "unknown"
	provErr.Retryable = false
	return provErr
}

// callGeminiWithRetry executes a Gemini API call with retry logic
func callGeminiWithRetry(
	ctx context.Context,
	model *genai.GenerativeModel,
	parts []genai.Part,
	reqCtx *common.RequestContext,
	config RetryConfig,
) (*genai.GenerateContentResponse, error) {

	var lastProvErr *ProviderError

	for attempt := 1; attempt <= config.MaxAttempts; attempt++ {
		// Log attempt
		if attempt > 1 {
			reqCtx.LogInfo("Retry attempt %d/%d", attempt, config.MaxAttempts)
		}

		// Make API call
		resp, err := model.GenerateContent(ctx, parts...)

		// Success!
		if err == nil {
			if attempt > 1 {
				reqCtx.LogInfo("✅ Retry succeeded on attempt %d", attempt)
			}
			return resp, nil
		}

		// Categorize error
		lastProvErr = categorizeProviderError(err)

		// Log error details
		reqCtx.LogError("API call failed (attempt %d/%d): %s", attempt, config.MaxAttempts, lastProvErr.Error())

		// If error is not retryable, fail immediately
		if !lastProvErr.Retryable {
			reqCtx.LogError("Non-retryable error detected, aborting")
			return nil, lastProvErr
		}

		// If this was the last attempt, don't sleep
		if attempt >= config.MaxAttempts {
			break
		}

		// Calculate delay with exponential backoff
		delay := calculateBackoff(attempt, config)

		// Special case: rate limit - use longer delay
		if lastProvErr.Category == "rate_limit" {
			delay = delay * 2
			reqCtx.LogWarning("Rate limit hit, waiting %v before retry", delay)
		} else {
			reqCtx.LogInfo("Waiting %v before retry", delay)
		}

		// Wait before retry (respect context cancellation)
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("context canceled during retry wait: %w", ctx.Err())
		case <-time.After(delay):
			// Continue to next attempt
		}
	}

	// All attempts failed
	reqCtx.LogError("❌ All %d attempts failed, last error: %s", config.MaxAttempts, lastProvErr.Error())
	return nil, fmt.Errorf("model API call failed after %d attempts: %w", config.MaxAttempts, lastProvErr)
}

// calculateBackoff computes exponential backoff delay
func calculateBackoff(attempt int, config RetryConfig) time.Duration {
	delay := float64(config.InitialDelay) * pow(config.BackoffMultiple, float64(attempt-1))

	// Cap at max delay
	if delay > float64(config.MaxDelay) {
		delay = float64(config.MaxDelay)
	}

	return time.Duration(delay)
}

// pow computes base^exp for floats (simple implementation)
func pow(base, exp float64) float64 {
	result := 1.0
	for i := 0; i < int(exp); i++ {
		result *= base
	}
	return result
}

// UserFriendlyError converts a technical error to a user-facing suggestion.
// Returns empty strings when the error is not a categorized ProviderError.
func UserFriendlyError(err error) (category, suggestion string) {
	var provErr *ProviderError
	if pe, ok := err.(*ProviderError); ok {
		provErr = pe
	} else if wrapped := unwrapProviderError(err); wrapped != nil {
		provErr = wrapped
	} else {
		return "", ""
	}

	switch provErr.Category {
	case "rate_limit":
		return provErr.Category, "Too many requests. Please wait a moment and try again."
	case "quota_exceeded":
		return provErr.Category, "Daily API quota exceeded. Please contact support or try again tomorrow."
	case "unauthorized":
		return provErr.Category, "API authentication failed. Please contact system administrator."
	case "payload_too_large":
		return provErr.Category, "Document is too large. Please upload a smaller file."
	case "timeout":
		return provErr.Category, "Request took too long. Please try again with fewer or smaller documents."
	case "server_error":
		return provErr.Category, "The AI service is temporarily unavailable. Please try again in a few minutes."
	case "network_error":
		return provErr.Category, "Network connection issue. Please try again."
	default:
		return provErr.Category, "An unexpected error occurred. Please try again or contact support."
	}
}

func unwrapProviderError(err error) *ProviderError {
	for err != nil {
		if pe, ok := err.(*ProviderError); ok {
			return pe
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return nil
		}
		err = u.Unwrap()
	}
	return nil
}
