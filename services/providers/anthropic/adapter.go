package anthropic

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/airesearch/interview-studio/services/providers"
)

const (
	defaultBaseURL = "https://api.anthropic.com"
	apiVersion     = "2023-06-01"
)

// Adapter implements the Provider interface for the Anthropic Messages API
type Adapter struct {
	config     providers.Config
	httpClient *http.Client
	models     map[string]*providers.ModelInfo
}

// NewAdapter creates a new Anthropic adapter
func NewAdapter(config providers.Config) *Adapter {
	if config.BaseURL == "" {
		config.BaseURL = defaultBaseURL
	}
	if config.Timeout == 0 {
		config.Timeout = 60 * time.Second
	}

	adapter := &Adapter{
		config: config,
		httpClient: &http.Client{
			Timeout: config.Timeout,
		},
		models: make(map[string]*providers.ModelInfo),
	}

	adapter.initModels()

	return adapter
}

// Name returns the provider name
func (a *Adapter) Name() string {
	return "anthropic"
}

// Generate performs a single-prompt generation request
func (a *Adapter) Generate(ctx context.Context, req *providers.GenerateRequest) (*providers.GenerateResult, error) {
	startTime := time.Now()

	if err := a.ValidateModel(req.Model); err != nil {
		return nil, providers.NewProviderError(a.Name(), req.Model, "INVALID_MODEL", err.Error(), 400, err)
	}

	reqBody, err := json.Marshal(a.buildMessagesRequest(req))
	if err != nil {
		return nil, providers.NewProviderError(a.Name(), req.Model, "MARSHAL_ERROR", "Failed to marshal request", 0, err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, "POST", a.config.BaseURL+"/v1/messages", strings.NewReader(string(reqBody)))
	if err != nil {
		return nil, providers.NewProviderError(a.Name(), req.Model, "REQUEST_ERROR", "Failed to create request", 0, err)
	}

	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-api-key", a.config.APIKey)
	httpReq.Header.Set("anthropic-version", apiVersion)

	httpResp, err := a.httpClient.Do(httpReq)
	if err != nil {
		// Cancellation reaches the caller through the error chain.
		return nil, &providers.ProviderError{
			Provider:  a.Name(),
			Model:     req.Model,
			Code:      "HTTP_ERROR",
			Message:   "HTTP request failed",
			Retryable: true,
			Cause:     err,
		}
	}
	defer httpResp.Body.Close()

	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, providers.NewProviderError(a.Name(), req.Model, "READ_ERROR", "Failed to read response", httpResp.StatusCode, err)
	}

	if httpResp.StatusCode != http.StatusOK {
		return nil, a.handleErrorResponse(req.Model, httpResp.StatusCode, respBody)
	}

	var msgResp messagesResponse
	if err := json.Unmarshal(respBody, &msgResp); err != nil {
		return nil, &providers.ProviderError{
			Provider:   a.Name(),
			Model:      req.Model,
			Code:       "UNMARSHAL_ERROR",
			Message:    "Failed to unmarshal response",
			StatusCode: httpResp.StatusCode,
			Retryable:  true,
			Cause:      err,
		}
	}

	return a.convertToUnifiedResult(&msgResp, req, time.Since(startTime)), nil
}

// ValidateModel checks if a model is supported
func (a *Adapter) ValidateModel(model string) error {
	if _, exists := a.models[model]; !exists {
		return fmt.Errorf("model %s is not supported by Anthropic provider", model)
	}
	return nil
}

// GetModelInfo returns information about a specific model
func (a *Adapter) GetModelInfo(model string) (*providers.ModelInfo, error) {
	info, exists := a.models[model]
	if !exists {
		return nil, fmt.Errorf("model %s not found", model)
	}
	return info, nil
}

// ListModels returns all available models
func (a *Adapter) ListModels() []string {
	models := make([]string, 0, len(a.models))
	for model := range a.models {
		models = append(models, model)
	}
	return models
}

// initModels initializes the model information map
func (a *Adapter) initModels() {
	a.models = map[string]*providers.ModelInfo{
		"claude-3-7-sonnet-20250219": {
			ID:            "claude-3-7-sonnet-20250219",
			Name:          "Claude 3.7 Sonnet",
			Provider:      "anthropic",
			Description:   "Most capable Claude model",
			MaxTokens:     8192,
			ContextWindow: 200000,
		},
		"claude-3-5-sonnet-20241022": {
			ID:            "claude-3-5-sonnet-20241022",
			Name:          "Claude 3.5 Sonnet",
			Provider:      "anthropic",
			Description:   "Balanced capability and speed",
			MaxTokens:     8192,
			ContextWindow: 200000,
		},
		"claude-3-5-sonnet-20240620": {
			ID:            "claude-3-5-sonnet-20240620",
			Name:          "Claude 3.5 Sonnet (June)",
			Provider:      "anthropic",
			Description:   "Earlier 3.5 Sonnet snapshot",
			MaxTokens:     8192,
			ContextWindow: 200000,
		},
		"claude-3-5-haiku-20241022": {
			ID:            "claude-3-5-haiku-20241022",
			Name:          "Claude 3.5 Haiku",
			Provider:      "anthropic",
			Description:   "Fast model",
			MaxTokens:     8192,
			ContextWindow: 200000,
		},
		"claude-3-haiku-20240307": {
			ID:            "claude-3-haiku-20240307",
			Name:          "Claude 3 Haiku",
			Provider:      "anthropic",
			Description:   "Fastest and cheapest",
			MaxTokens:     4096,
			ContextWindow: 200000,
		},
	}
}

// buildMessagesRequest converts the unified request to Messages API format
func (a *Adapter) buildMessagesRequest(req *providers.GenerateRequest) *messagesRequest {
	msgReq := &messagesRequest{
		Model:     req.Model,
		MaxTokens: req.MaxTokens,
		Messages: []message{
			{Role: "user", Content: req.Prompt},
		},
	}
	if msgReq.MaxTokens <= 0 {
		msgReq.MaxTokens = 4000
	}
	if req.Temperature > 0 {
		msgReq.Temperature = &req.Temperature
	}
	return msgReq
}

// convertToUnifiedResult converts a Messages API response to unified format
func (a *Adapter) convertToUnifiedResult(msgResp *messagesResponse, req *providers.GenerateRequest, latency time.Duration) *providers.GenerateResult {
	var text strings.Builder
	for _, block := range msgResp.Content {
		if block.Type == "text" || block.Text != "" {
			text.WriteString(block.Text)
		}
	}

	return &providers.GenerateResult{
		Text:     text.String(),
		Model:    msgResp.Model,
		Provider: a.Name(),
		Usage: providers.Usage{
			PromptTokens:     msgResp.Usage.InputTokens,
			CompletionTokens: msgResp.Usage.OutputTokens,
			TotalTokens:      msgResp.Usage.InputTokens + msgResp.Usage.OutputTokens,
		},
		Latency:      latency,
		FinishReason: msgResp.StopReason,
	}
}

// handleErrorResponse classifies Messages API error responses
func (a *Adapter) handleErrorResponse(model string, statusCode int, body []byte) error {
	var errResp errorResponse
	if err := json.Unmarshal(body, &errResp); err != nil {
		return providers.NewProviderError(a.Name(), model, "UNKNOWN_ERROR", string(body), statusCode, err)
	}

	provErr := providers.NewProviderError(a.Name(), model, errResp.Error.Type, errResp.Error.Message, statusCode, nil)
	if errResp.Error.Type == "rate_limit_error" {
		provErr.RateLimited = true
		provErr.Retryable = true
	}
	if errResp.Error.Type == "overloaded_error" {
		provErr.Retryable = true
	}
	return provErr
}

// Messages API request/response types

type messagesRequest struct {
	Model       string    `json:"model"`
	MaxTokens   int       `json:"max_tokens"`
	Temperature *float64  `json:"temperature,omitempty"`
	Messages    []message `json:"messages"`
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type messagesResponse struct {
	ID         string         `json:"id"`
	Model      string         `json:"model"`
	StopReason string         `json:"stop_reason"`
	Content    []contentBlock `json:"content"`
	Usage      usage          `json:"usage"`
}

type contentBlock struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type usage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
}

type errorResponse struct {
	Type  string `json:"type"`
	Error struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}
