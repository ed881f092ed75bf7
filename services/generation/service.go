package generation

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/airesearch/interview-studio/services/providers"
)

// Config holds retry and batching behavior
type Config struct {
	// MaxAttempts is the total number of tries per prompt, first
	// attempt included. Must be at least 1.
	MaxAttempts int

	// BaseDelay is the wait unit between attempts. Rate-limited
	// failures wait BaseDelay * attempt; other failures wait a
	// constant BaseDelay.
	BaseDelay time.Duration

	// Concurrency caps in-flight provider calls in GenerateBatch
	Concurrency int

	// MaxTokens is the output budget applied to requests that do not
	// set their own. Zero leaves such requests uncapped.
	MaxTokens int
}

// Request is one generation call
type Request struct {
	Model       string
	Prompt      string
	MaxTokens   int
	Temperature float64
}

// Result is the outcome of a generation call. Exhausted retries never
// surface as an error: the pipeline must keep moving, so the text is a
// placeholder and Degraded is set.
type Result struct {
	Text     string
	Degraded bool

	// Attempts is how many provider calls were made
	Attempts int

	// ErrKind carries the final error classification when Degraded,
	// for logging and export metadata.
	ErrKind string

	Usage   providers.Usage
	Latency time.Duration
}

// BatchOptions controls GenerateBatch
type BatchOptions struct {
	// Concurrency overrides the service default when > 0
	Concurrency int

	// Sequential issues calls one at a time. Output is identical to
	// the concurrent path, only slower.
	Sequential bool
}

// Service wraps a provider with retry, degradation, and batch dispatch
type Service struct {
	provider providers.Provider
	config   Config
	logger   *zap.Logger

	// sleep is replaceable in tests so backoff growth can be observed
	// without waiting for it.
	sleep func(ctx context.Context, d time.Duration) error
}

// NewService creates a generation service around one provider adapter
func NewService(provider providers.Provider, config Config, logger *zap.Logger) *Service {
	if config.MaxAttempts < 1 {
		config.MaxAttempts = 1
	}
	if config.Concurrency < 1 {
		config.Concurrency = 1
	}
	return &Service{
		provider: provider,
		config:   config,
		logger:   logger,
		sleep:    sleepContext,
	}
}

// Generate performs one generation with retries.
//
// Rate-limited failures back off linearly (BaseDelay * attempt); other
// failures wait a constant BaseDelay. When attempts run out the call
// succeeds with a placeholder Result instead of an error, so one bad
// prompt cannot sink a run. Context cancellation is the exception: it
// is always returned as an error and never absorbed.
func (s *Service) Generate(ctx context.Context, req *Request) (*Result, error) {
	var lastErr error

	maxTokens := req.MaxTokens
	if maxTokens <= 0 {
		maxTokens = s.config.MaxTokens
	}

	for attempt := 1; attempt <= s.config.MaxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		res, err := s.provider.Generate(ctx, &providers.GenerateRequest{
			Model:       req.Model,
			Prompt:      req.Prompt,
			MaxTokens:   maxTokens,
			Temperature: req.Temperature,
		})
		if err == nil {
			return &Result{
				Text:     res.Text,
				Attempts: attempt,
				Usage:    res.Usage,
				Latency:  res.Latency,
			}, nil
		}

		if ctxErr := cancellation(ctx, err); ctxErr != nil {
			return nil, ctxErr
		}

		lastErr = err

		if attempt == s.config.MaxAttempts {
			break
		}

		var wait time.Duration
		if providers.IsRateLimited(err) {
			wait = s.config.BaseDelay * time.Duration(attempt)
			s.logger.Warn("rate limit hit, backing off",
				zap.String("provider", s.provider.Name()),
				zap.String("model", req.Model),
				zap.Int("attempt", attempt),
				zap.Int("max_attempts", s.config.MaxAttempts),
				zap.Duration("wait", wait))
		} else {
			wait = s.config.BaseDelay
			s.logger.Warn("generation failed, retrying",
				zap.String("provider", s.provider.Name()),
				zap.String("model", req.Model),
				zap.Int("attempt", attempt),
				zap.Int("max_attempts", s.config.MaxAttempts),
				zap.Error(err))
		}

		if err := s.sleep(ctx, wait); err != nil {
			return nil, err
		}
	}

	kind := errKind(lastErr)
	s.logger.Error("generation exhausted all attempts, degrading to placeholder",
		zap.String("provider", s.provider.Name()),
		zap.String("model", req.Model),
		zap.Int("attempts", s.config.MaxAttempts),
		zap.String("error_kind", kind),
		zap.Error(lastErr))

	return &Result{
		Text:     placeholderText(kind, s.provider.Name(), req.Model),
		Degraded: true,
		Attempts: s.config.MaxAttempts,
		ErrKind:  kind,
	}, nil
}

// GenerateBatch runs a slice of prompts and returns results in the same
// order, one per prompt. At most opts.Concurrency calls are in flight.
// A degraded prompt occupies its own index only; cancellation aborts
// the whole batch with an error and no partial slice.
func (s *Service) GenerateBatch(ctx context.Context, reqs []*Request, opts BatchOptions) ([]*Result, error) {
	if len(reqs) == 0 {
		return []*Result{}, nil
	}

	if opts.Sequential {
		return s.generateSequential(ctx, reqs)
	}

	concurrency := opts.Concurrency
	if concurrency <= 0 {
		concurrency = s.config.Concurrency
	}

	batchCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	results := make([]*Result, len(reqs))
	sem := make(chan struct{}, concurrency)

	var (
		wg       sync.WaitGroup
		errOnce  sync.Once
		batchErr error
	)

	for i, req := range reqs {
		wg.Add(1)
		go func(i int, req *Request) {
			defer wg.Done()

			select {
			case sem <- struct{}{}:
				defer func() { <-sem }()
			case <-batchCtx.Done():
				errOnce.Do(func() { batchErr = batchCtx.Err() })
				return
			}

			res, err := s.Generate(batchCtx, req)
			if err != nil {
				errOnce.Do(func() { batchErr = err })
				cancel()
				return
			}
			results[i] = res
		}(i, req)
	}

	wg.Wait()

	if batchErr != nil {
		return nil, fmt.Errorf("batch aborted: %w", batchErr)
	}

	return results, nil
}

func (s *Service) generateSequential(ctx context.Context, reqs []*Request) ([]*Result, error) {
	results := make([]*Result, len(reqs))
	for i, req := range reqs {
		res, err := s.Generate(ctx, req)
		if err != nil {
			return nil, fmt.Errorf("batch aborted: %w", err)
		}
		results[i] = res
	}
	return results, nil
}

// cancellation distinguishes a cancelled context from a provider
// failure that merely wrapped one.
func cancellation(ctx context.Context, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	if errors.Is(err, context.Canceled) {
		return context.Canceled
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return context.DeadlineExceeded
	}
	return nil
}

func errKind(err error) string {
	if err == nil {
		return "unknown_error"
	}
	var provErr *providers.ProviderError
	if errors.As(err, &provErr) {
		if provErr.RateLimited {
			return "rate_limit"
		}
		if provErr.Code != "" {
			return provErr.Code
		}
	}
	return "unknown_error"
}

// placeholderText is the degraded stand-in for real model output. It
// names the error kind and target so the gap is traceable in exports,
// and it never breaks downstream formatting.
func placeholderText(kind, provider, model string) string {
	return fmt.Sprintf(
		"Error occurred while generating content. The system encountered the following issue: %s (%s/%s). Please check the logs for more details.",
		kind, provider, model)
}

// IsPlaceholder reports whether a text is a degraded placeholder
// rather than real model output.
func IsPlaceholder(text string) bool {
	return strings.HasPrefix(text, "Error occurred while generating content.")
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
