package openai

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

const defaultBaseURL = "https://api.openai.com/v1"

// Adapter implements the Provider interface for the OpenAI Chat Completions API
type Adapter struct {
	config     providers.Config
	httpClient *http.Client
	models     map[string]*providers.ModelInfo
}

// NewAdapter creates a new OpenAI adapter
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
	return "openai"
}

// Generate performs a single-prompt generation request
func (a *Adapter) Generate(ctx context.Context, req *providers.GenerateRequest) (*providers.GenerateResult, error) {
	startTime := time.Now()

	if err := a.ValidateModel(req.Model); err != nil {
		return nil, providers.NewProviderError(a.Name(), req.Model, "INVALID_MODEL", err.Error(), 400, err)
	}

	reqBody, err := json.Marshal(a.buildChatRequest(req))
	if err != nil {
		return nil, providers.NewProviderError(a.Name(), req.Model, "MARSHAL_ERROR", "Failed to marshal request", 0, err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, "POST", a.config.BaseURL+"/chat/completions", strings.NewReader(string(reqBody)))
	if err != nil {
		return nil, providers.NewProviderError(a.Name(), req.Model, "REQUEST_ERROR", "Failed to create request", 0, err)
	}

	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+a.config.APIKey)

	httpResp, err := a.httpClient.Do(httpReq)
	if err != nil {
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

	var chatResp chatResponse
	if err := json.Unmarshal(respBody, &chatResp); err != nil {
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

	if len(chatResp.Choices) == 0 {
		return nil, &providers.ProviderError{
			Provider:   a.Name(),
			Model:      req.Model,
			Code:       "EMPTY_RESPONSE",
			Message:    "Response contained no choices",
			StatusCode: httpResp.StatusCode,
			Retryable:  true,
		}
	}

	return a.convertToUnifiedResult(&chatResp, time.Since(startTime)), nil
}

// ValidateModel checks if a model is supported
func (a *Adapter) ValidateModel(model string) error {
	if _, exists := a.models[model]; !exists {
		return fmt.Errorf("model %s is not supported by OpenAI provider", model)
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
		"gpt-4.5-preview-2025-02-27": {
			ID:            "gpt-4.5-preview-2025-02-27",
			Name:          "GPT-4.5 Preview",
			Provider:      "openai",
			Description:   "Most powerful GPT model",
			MaxTokens:     16384,
			ContextWindow: 128000,
		},
		"gpt-4o-2024-08-06": {
			ID:            "gpt-4o-2024-08-06",
			Name:          "GPT-4o",
			Provider:      "openai",
			Description:   "Powerful multimodal model",
			MaxTokens:     16384,
			ContextWindow: 128000,
		},
		"gpt-4o-mini-2024-07-18": {
			ID:            "gpt-4o-mini-2024-07-18",
			Name:          "GPT-4o Mini",
			Provider:      "openai",
			Description:   "Balanced cost and capability",
			MaxTokens:     16384,
			ContextWindow: 128000,
		},
		"o1-2024-12-17": {
			ID:            "o1-2024-12-17",
			Name:          "o1",
			Provider:      "openai",
			Description:   "Reasoning model",
			MaxTokens:     100000,
			ContextWindow: 200000,
		},
		"o3-mini-2025-01-31": {
			ID:            "o3-mini-2025-01-31",
			Name:          "o3 Mini",
			Provider:      "openai",
			Description:   "Fast reasoning model",
			MaxTokens:     100000,
			ContextWindow: 200000,
		},
	}
}

// buildChatRequest converts the unified request to Chat Completions format
func (a *Adapter) buildChatRequest(req *providers.GenerateRequest) *chatRequest {
	chatReq := &chatRequest{
		Model: req.Model,
		Messages: []chatMessage{
			{Role: "user", Content: req.Prompt},
		},
	}
	if req.MaxTokens > 0 {
		chatReq.MaxTokens = &req.MaxTokens
	}
	if req.Temperature > 0 {
		chatReq.Temperature = &req.Temperature
	}
	return chatReq
}

// convertToUnifiedResult converts a Chat Completions response to unified format
func (a *Adapter) convertToUnifiedResult(chatResp *chatResponse, latency time.Duration) *providers.GenerateResult {
	choice := chatResp.Choices[0]

	return &providers.GenerateResult{
		Text:     choice.Message.Content,
		Model:    chatResp.Model,
		Provider: a.Name(),
		Usage: providers.Usage{
			PromptTokens:     chatResp.Usage.PromptTokens,
			CompletionTokens: chatResp.Usage.CompletionTokens,
			TotalTokens:      chatResp.Usage.TotalTokens,
		},
		Latency:      latency,
		FinishReason: choice.FinishReason,
	}
}

// handleErrorResponse classifies Chat Completions error responses
func (a *Adapter) handleErrorResponse(model string, statusCode int, body []byte) error {
	var errResp errorResponse
	if err := json.Unmarshal(body, &errResp); err != nil {
		return providers.NewProviderError(a.Name(), model, "UNKNOWN_ERROR", string(body), statusCode, err)
	}

	provErr := providers.NewProviderError(a.Name(), model, errResp.Error.Type, errResp.Error.Message, statusCode, nil)
	if errResp.Error.Type == "rate_limit_exceeded" || errResp.Error.Code == "rate_limit_exceeded" {
		provErr.RateLimited = true
		provErr.Retryable = true
	}
	return provErr
}

// Chat Completions request/response types

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	MaxTokens   *int          `json:"max_tokens,omitempty"`
	Temperature *float64      `json:"temperature,omitempty"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	ID      string       `json:"id"`
	Model   string       `json:"model"`
	Choices []chatChoice `json:"choices"`
	Usage   chatUsage    `json:"usage"`
}

type chatChoice struct {
	Index        int         `json:"index"`
	Message      chatMessage `json:"message"`
	FinishReason string      `json:"finish_reason"`
}

type chatUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

type errorResponse struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
		Code    string `json:"code"`
	} `json:"error"`
}
