package handlers

import (
	"net/http"
	"sort"

	"go.uber.org/zap"

	"github.com/airesearch/interview-studio/services/providers"
	"github.com/airesearch/interview-studio/utils"
)

// ModelHandler exposes the registered providers and their models
type ModelHandler struct {
	registry *providers.Registry
	logger   *zap.Logger
}

// NewModelHandler creates a new ModelHandler
func NewModelHandler(registry *providers.Registry, logger *zap.Logger) *ModelHandler {
	return &ModelHandler{
		registry: registry,
		logger:   logger,
	}
}

// HandleList handles GET /api/v1/models?q=
func (h *ModelHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	models := h.registry.ListModels()
	if q := r.URL.Query().Get("q"); q != "" {
		models = h.registry.FindModels(q)
	}
	sort.Strings(models)
	_ = utils.WriteOK(w, models)
}

// HandleProviders handles GET /api/v1/providers
func (h *ModelHandler) HandleProviders(w http.ResponseWriter, r *http.Request) {
	names := h.registry.ListProviders()
	sort.Strings(names)
	_ = utils.WriteOK(w, names)
}
