package google

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/airesearch/interview-studio/services/providers"
)

const defaultBaseURL = "https://generativelanguage.googleapis.com"

// Adapter implements the Provider interface for the Gemini generateContent API
type Adapter struct {
	config     providers.Config
	httpClient *http.Client
	models     map[string]*providers.ModelInfo
}

// NewAdapter creates a new Google adapter
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
	return "google"
}

// Generate performs a single-prompt generation request
func (a *Adapter) Generate(ctx context.Context, req *providers.GenerateRequest) (*providers.GenerateResult, error) {
	startTime := time.Now()

	if err := a.ValidateModel(req.Model); err != nil {
		return nil, providers.NewProviderError(a.Name(), req.Model, "INVALID_MODEL", err.Error(), 400, err)
	}

	reqBody, err := json.Marshal(a.buildGenerateContentRequest(req))
	if err != nil {
		return nil, providers.NewProviderError(a.Name(), req.Model, "MARSHAL_ERROR", "Failed to marshal request", 0, err)
	}

	// The API key travels as a query parameter, not a header.
	endpoint := fmt.Sprintf("%s/v1beta/models/%s:generateContent?key=%s",
		strings.TrimRight(a.config.BaseURL, "/"), url.PathEscape(req.Model), url.QueryEscape(a.config.APIKey))

	httpReq, err := http.NewRequestWithContext(ctx, "POST", endpoint, strings.NewReader(string(reqBody)))
	if err != nil {
		return nil, providers.NewProviderError(a.Name(), req.Model, "REQUEST_ERROR", "Failed to create request", 0, err)
	}

	httpReq.Header.Set("Content-Type", "application/json")

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

	var genResp generateContentResponse
	if err := json.Unmarshal(respBody, &genResp); err != nil {
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

	return a.convertToUnifiedResult(&genResp, req, time.Since(startTime)), nil
}

// ValidateModel checks if a model is supported
func (a *Adapter) ValidateModel(model string) error {
	if _, exists := a.models[model]; !exists {
		return fmt.Errorf("model %s is not supported by Google provider", model)
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
		"gemini-2.0-flash": {
			ID:            "gemini-2.0-flash",
			Name:          "Gemini 2.0 Flash",
			Provider:      "google",
			Description:   "Powerful multimodal model",
			MaxTokens:     8192,
			ContextWindow: 1000000,
		},
		"gemini-2.0-flash-lite": {
			ID:            "gemini-2.0-flash-lite",
			Name:          "Gemini 2.0 Flash Lite",
			Provider:      "google",
			Description:   "Faster, cheaper variant",
			MaxTokens:     8192,
			ContextWindow: 1000000,
		},
	}
}

// buildGenerateContentRequest converts the unified request to generateContent format
func (a *Adapter) buildGenerateContentRequest(req *providers.GenerateRequest) *generateContentRequest {
	genReq := &generateContentRequest{
		Contents: []content{
			{
				Role:  "user",
				Parts: []part{{Text: req.Prompt}},
			},
		},
	}
	if req.MaxTokens > 0 {
		genReq.GenerationConfig.MaxOutputTokens = req.MaxTokens
	}
	if req.Temperature > 0 {
		genReq.GenerationConfig.Temperature = &req.Temperature
	}
	return genReq
}

// convertToUnifiedResult converts a generateContent response to unified format
func (a *Adapter) convertToUnifiedResult(genResp *generateContentResponse, req *providers.GenerateRequest, latency time.Duration) *providers.GenerateResult {
	var text strings.Builder
	finishReason := ""
	for _, candidate := range genResp.Candidates {
		for _, p := range candidate.Content.Parts {
			text.WriteString(p.Text)
		}
		if finishReason == "" {
			finishReason = candidate.FinishReason
		}
	}

	return &providers.GenerateResult{
		Text:     text.String(),
		Model:    req.Model,
		Provider: a.Name(),
		Usage: providers.Usage{
			PromptTokens:     genResp.UsageMetadata.PromptTokenCount,
			CompletionTokens: genResp.UsageMetadata.CandidatesTokenCount,
			TotalTokens:      genResp.UsageMetadata.TotalTokenCount,
		},
		Latency:      latency,
		FinishReason: finishReason,
	}
}

// handleErrorResponse classifies generateContent error responses
func (a *Adapter) handleErrorResponse(model string, statusCode int, body []byte) error {
	var errResp errorResponse
	if err := json.Unmarshal(body, &errResp); err != nil {
		return providers.NewProviderError(a.Name(), model, "UNKNOWN_ERROR", string(body), statusCode, err)
	}

	provErr := providers.NewProviderError(a.Name(), model, errResp.Error.Status, errResp.Error.Message, statusCode, nil)
	if errResp.Error.Status == "RESOURCE_EXHAUSTED" {
		provErr.RateLimited = true
		provErr.Retryable = true
	}
	return provErr
}

// generateContent request/response types

type generateContentRequest struct {
	Contents         []content        `json:"contents"`
	GenerationConfig generationConfig `json:"generationConfig"`
}

type content struct {
	Role  string `json:"role"`
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type generationConfig struct {
	Temperature     *float64 `json:"temperature,omitempty"`
	MaxOutputTokens int      `json:"maxOutputTokens,omitempty"`
}

type generateContentResponse struct {
	Candidates    []candidate   `json:"candidates"`
	UsageMetadata usageMetadata `json:"usageMetadata"`
}

type candidate struct {
	Content      content `json:"content"`
	FinishReason string  `json:"finishReason"`
}

type usageMetadata struct {
	PromptTokenCount     int `json:"promptTokenCount"`
	CandidatesTokenCount int `json:"candidatesTokenCount"`
	TotalTokenCount      int `json:"totalTokenCount"`
}

type errorResponse struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error"`
}
