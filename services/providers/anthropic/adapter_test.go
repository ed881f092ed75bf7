package anthropic

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/airesearch/interview-studio/services/providers"
)

func TestNewAdapter(t *testing.T) {
	adapter := NewAdapter(providers.Config{APIKey: "test-key"})

	if adapter == nil {
		t.Fatal("NewAdapter() returned nil")
	}
	if adapter.Name() != "anthropic" {
		t.Errorf("Name() = %s, want anthropic", adapter.Name())
	}
	if adapter.config.BaseURL != defaultBaseURL {
		t.Errorf("BaseURL = %s, want %s", adapter.config.BaseURL, defaultBaseURL)
	}
	if len(adapter.models) == 0 {
		t.Error("Models not initialized")
	}
}

func TestAdapter_ValidateModel(t *testing.T) {
	adapter := NewAdapter(providers.Config{})

	tests := []struct {
		name        string
		model       string
		expectError bool
	}{
		{
			name:        "valid sonnet model",
			model:       "claude-3-5-sonnet-20241022",
			expectError: false,
		},
		{
			name:        "valid haiku model",
			model:       "claude-3-haiku-20240307",
			expectError: false,
		},
		{
			name:        "invalid model",
			model:       "claude-unknown",
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := adapter.ValidateModel(tt.model)
			if tt.expectError && err == nil {
				t.Error("Expected error but got none")
			}
			if !tt.expectError && err != nil {
				t.Errorf("Unexpected error: %v", err)
			}
		})
	}
}

func TestAdapter_Generate(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/messages" {
			t.Errorf("path = %s, want /v1/messages", r.URL.Path)
		}
		if got := r.Header.Get("x-api-key"); got != "test-key" {
			t.Errorf("x-api-key = %s, want test-key", got)
		}
		if got := r.Header.Get("anthropic-version"); got != apiVersion {
			t.Errorf("anthropic-version = %s, want %s", got, apiVersion)
		}

		body, _ := io.ReadAll(r.Body)
		var req messagesRequest
		if err := json.Unmarshal(body, &req); err != nil {
			t.Fatalf("request body did not parse: %v", err)
		}
		if len(req.Messages) != 1 || req.Messages[0].Role != "user" {
			t.Errorf("messages = %+v, want single user message", req.Messages)
		}
		if req.MaxTokens != 3000 {
			t.Errorf("max_tokens = %d, want 3000", req.MaxTokens)
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(messagesResponse{
			ID:         "msg_123",
			Model:      req.Model,
			StopReason: "end_turn",
			Content: []contentBlock{
				{Type: "text", Text: "INTERVIEWER: Welcome."},
				{Type: "text", Text: " INTERVIEWEE: Thanks."},
			},
			Usage: usage{InputTokens: 50, OutputTokens: 100},
		})
	}))
	defer server.Close()

	adapter := NewAdapter(providers.Config{APIKey: "test-key", BaseURL: server.URL})

	result, err := adapter.Generate(context.Background(), &providers.GenerateRequest{
		Model:     "claude-3-5-sonnet-20241022",
		Prompt:    "Simulate an interview",
		MaxTokens: 3000,
	})
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}

	if result.Text != "INTERVIEWER: Welcome. INTERVIEWEE: Thanks." {
		t.Errorf("Text = %q", result.Text)
	}
	if result.Provider != "anthropic" {
		t.Errorf("Provider = %s, want anthropic", result.Provider)
	}
	if result.Usage.TotalTokens != 150 {
		t.Errorf("TotalTokens = %d, want 150", result.Usage.TotalTokens)
	}
	if result.FinishReason != "end_turn" {
		t.Errorf("FinishReason = %s, want end_turn", result.FinishReason)
	}
}

func TestAdapter_GenerateErrorClassification(t *testing.T) {
	tests := []struct {
		name            string
		statusCode      int
		errType         string
		wantRateLimited bool
		wantRetryable   bool
	}{
		{
			name:            "rate limit",
			statusCode:      429,
			errType:         "rate_limit_error",
			wantRateLimited: true,
			wantRetryable:   true,
		},
		{
			name:          "overloaded",
			statusCode:    529,
			errType:       "overloaded_error",
			wantRetryable: true,
		},
		{
			name:          "server error",
			statusCode:    500,
			errType:       "api_error",
			wantRetryable: true,
		},
		{
			name:       "invalid request",
			statusCode: 400,
			errType:    "invalid_request_error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.statusCode)
				w.Write([]byte(`{"type":"error","error":{"type":"` + tt.errType + `","message":"nope"}}`))
			}))
			defer server.Close()

			adapter := NewAdapter(providers.Config{APIKey: "test-key", BaseURL: server.URL})

			_, err := adapter.Generate(context.Background(), &providers.GenerateRequest{
				Model:  "claude-3-5-sonnet-20241022",
				Prompt: "p",
			})
			if err == nil {
				t.Fatal("Generate() expected error")
			}

			var provErr *providers.ProviderError
			if !errors.As(err, &provErr) {
				t.Fatalf("error type = %T, want *ProviderError", err)
			}
			if provErr.RateLimited != tt.wantRateLimited {
				t.Errorf("RateLimited = %v, want %v", provErr.RateLimited, tt.wantRateLimited)
			}
			if provErr.Retryable != tt.wantRetryable {
				t.Errorf("Retryable = %v, want %v", provErr.Retryable, tt.wantRetryable)
			}
			if provErr.Code != tt.errType {
				t.Errorf("Code = %s, want %s", provErr.Code, tt.errType)
			}
		})
	}
}

func TestAdapter_GenerateInvalidModel(t *testing.T) {
	adapter := NewAdapter(providers.Config{APIKey: "test-key"})

	_, err := adapter.Generate(context.Background(), &providers.GenerateRequest{
		Model:  "not-a-model",
		Prompt: "p",
	})
	if err == nil {
		t.Fatal("Generate() expected error for invalid model")
	}

	var provErr *providers.ProviderError
	if !errors.As(err, &provErr) {
		t.Fatalf("error type = %T, want *ProviderError", err)
	}
	if provErr.Retryable {
		t.Error("invalid model error should not be retryable")
	}
}

func TestAdapter_GenerateCancellation(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer server.Close()

	adapter := NewAdapter(providers.Config{APIKey: "test-key", BaseURL: server.URL})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := adapter.Generate(ctx, &providers.GenerateRequest{
		Model:  "claude-3-5-sonnet-20241022",
		Prompt: "p",
	})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Generate() error = %v, want context.Canceled in chain", err)
	}
}
