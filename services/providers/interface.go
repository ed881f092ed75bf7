package providers

import (
	"context"
	"errors"
	"time"
)

// Provider represents a unified LLM provider interface
type Provider interface {
	// Name returns the provider name (e.g., "anthropic", "openai", "google")
	Name() string

	// Generate performs a single-prompt text generation request
	Generate(ctx context.Context, req *GenerateRequest) (*GenerateResult, error)

	// ValidateModel checks if a model is supported by this provider
	ValidateModel(model string) error

	// GetModelInfo returns information about a specific model
	GetModelInfo(model string) (*ModelInfo, error)

	// ListModels returns all available models from this provider
	ListModels() []string
}

// GenerateRequest represents a unified generation request
type GenerateRequest struct {
	// Model identifier (e.g., "claude-sonnet-4", "gpt-4o")
	Model string `json:"model"`

	// Prompt is the full user prompt. The suite is single-turn; there
	// is no conversation history to carry.
	Prompt string `json:"prompt"`

	// MaxTokens limits the response length
	MaxTokens int `json:"max_tokens,omitempty"`

	// Temperature controls randomness (0.0 to 2.0)
	Temperature float64 `json:"temperature,omitempty"`
}

// GenerateResult represents a unified generation result
type GenerateResult struct {
	// Text is the extracted response text
	Text string `json:"text"`

	// Model used for the generation
	Model string `json:"model"`

	// Provider that handled the request
	Provider string `json:"provider"`

	// Usage statistics (zero when the vendor omits them)
	Usage Usage `json:"usage"`

	// Latency of the request
	Latency time.Duration `json:"latency"`

	// FinishReason indicates why the generation stopped
	FinishReason string `json:"finish_reason,omitempty"`
}

// Usage represents token usage statistics
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// ModelInfo contains metadata about a model
type ModelInfo struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Provider      string `json:"provider"`
	Description   string `json:"description"`
	MaxTokens     int    `json:"max_tokens"`
	ContextWindow int    `json:"context_window"`
}

// Config holds common configuration for provider adapters
type Config struct {
	// APIKey for authentication
	APIKey string

	// BaseURL for the API (optional override)
	BaseURL string

	// Timeout for requests
	Timeout time.Duration
}

// ProviderError represents an error from a provider. The retry layer
// depends only on RateLimited and Retryable; everything vendor-specific
// stays inside the adapter that produced the error.
type ProviderError struct {
	// Provider that generated the error
	Provider string

	// Model the request targeted
	Model string

	// Code is the vendor error code or type
	Code string

	// Message is the error message
	Message string

	// StatusCode is the HTTP status code (if applicable)
	StatusCode int

	// RateLimited marks HTTP 429 and vendor rate-limit codes
	RateLimited bool

	// Retryable indicates if the request can be retried
	Retryable bool

	// Cause is the underlying error
	Cause error
}

// Error implements the error interface
func (e *ProviderError) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

// Unwrap implements error unwrapping
func (e *ProviderError) Unwrap() error {
	return e.Cause
}

// NewProviderError creates a new provider error
func NewProviderError(provider, model, code, message string, statusCode int, cause error) *ProviderError {
	rateLimited := statusCode == 429
	return &ProviderError{
		Provider:    provider,
		Model:       model,
		Code:        code,
		Message:     message,
		StatusCode:  statusCode,
		RateLimited: rateLimited,
		Retryable:   rateLimited || statusCode >= 500,
		Cause:       cause,
	}
}

// IsRetryable checks if an error is retryable
func IsRetryable(err error) bool {
	var provErr *ProviderError
	if errors.As(err, &provErr) {
		return provErr.Retryable
	}
	return false
}

// IsRateLimited checks if an error is a rate-limit rejection
func IsRateLimited(err error) bool {
	var provErr *ProviderError
	if errors.As(err, &provErr) {
		return provErr.RateLimited
	}
	return false
}
