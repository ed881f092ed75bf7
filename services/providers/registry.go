package providers

import (
	"errors"
	"strings"
	"sync"
)

var (
	// ErrProviderNotFound is returned when a provider is not registered
	ErrProviderNotFound = errors.New("provider not found")

	// ErrModelNotSupported is returned when a model is not supported by any provider
	ErrModelNotSupported = errors.New("model not supported")

	// ErrProviderAlreadyRegistered is returned when trying to register a duplicate provider
	ErrProviderAlreadyRegistered = errors.New("provider already registered")
)

// Registry manages provider instances and model mappings
type Registry struct {
	mu             sync.RWMutex
	providers      map[string]Provider
	modelProviders map[string]string // model -> provider name
}

// NewRegistry creates a new provider registry
func NewRegistry() *Registry {
	return &Registry{
		providers:      make(map[string]Provider),
		modelProviders: make(map[string]string),
	}
}

// RegisterProvider registers a provider instance and its models
func (r *Registry) RegisterProvider(provider Provider) error {
	if provider == nil {
		return errors.New("provider cannot be nil")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	name := provider.Name()
	if name == "" {
		return errors.New("provider name cannot be empty")
	}

	if _, exists := r.providers[name]; exists {
		return ErrProviderAlreadyRegistered
	}

	r.providers[name] = provider

	for _, model := range provider.ListModels() {
		r.modelProviders[model] = name
	}

	return nil
}

// GetProvider retrieves a provider by name
func (r *Registry) GetProvider(name string) (Provider, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	provider, exists := r.providers[name]
	if !exists {
		return nil, ErrProviderNotFound
	}

	return provider, nil
}

// GetProviderForModel finds the provider that supports a given model
func (r *Registry) GetProviderForModel(model string) (Provider, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if providerName, exists := r.modelProviders[model]; exists {
		if provider, ok := r.providers[providerName]; ok {
			return provider, nil
		}
	}

	// Fall back to asking each provider; covers models registered
	// after adapter construction (e.g. dated snapshot names).
	for _, provider := range r.providers {
		if err := provider.ValidateModel(model); err == nil {
			return provider, nil
		}
	}

	return nil, ErrModelNotSupported
}

// ListProviders returns all registered provider names
func (r *Registry) ListProviders() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.providers))
	for name := range r.providers {
		names = append(names, name)
	}

	return names
}

// ListModels returns all supported models across all providers
func (r *Registry) ListModels() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	models := make([]string, 0, len(r.modelProviders))
	for model := range r.modelProviders {
		models = append(models, model)
	}

	return models
}

// ValidateModel checks if a model is supported by any provider
func (r *Registry) ValidateModel(model string) error {
	_, err := r.GetProviderForModel(model)
	return err
}

// GetModelInfo retrieves model information for any registered model
func (r *Registry) GetModelInfo(model string) (*ModelInfo, error) {
	provider, err := r.GetProviderForModel(model)
	if err != nil {
		return nil, err
	}

	return provider.GetModelInfo(model)
}

// FindModels searches for models matching a pattern
func (r *Registry) FindModels(pattern string) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var matches []string
	pattern = strings.ToLower(pattern)

	for model := range r.modelProviders {
		if strings.Contains(strings.ToLower(model), pattern) {
			matches = append(matches, model)
		}
	}

	return matches
}
