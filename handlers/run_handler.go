package handlers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/airesearch/interview-studio/repositories"
	"github.com/airesearch/interview-studio/utils"
)

// RunHandler handles study-run HTTP requests
type RunHandler struct {
	runs      repositories.RunRepository
	summaries repositories.SummaryRepository
	logger    *zap.Logger
}

// NewRunHandler creates a new RunHandler
func NewRunHandler(runs repositories.RunRepository, summaries repositories.SummaryRepository, logger *zap.Logger) *RunHandler {
	return &RunHandler{
		runs:      runs,
		summaries: summaries,
		logger:    logger,
	}
}

// HandleList handles GET /api/v1/runs
func (h *RunHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	runs, err := h.runs.List(r.Context())
	if err != nil {
		h.logger.Error("failed to list runs", zap.Error(err))
		_ = utils.WriteInternalServerError(w, "")
		return
	}

	_ = utils.WriteOK(w, runs)
}

// HandleLatest handles GET /api/v1/runs/latest
func (h *RunHandler) HandleLatest(w http.ResponseWriter, r *http.Request) {
	run, err := h.runs.GetLatest(r.Context())
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			_ = utils.WriteNotFound(w, "No runs recorded yet")
			return
		}
		h.logger.Error("failed to get latest run", zap.Error(err))
		_ = utils.WriteInternalServerError(w, "")
		return
	}

	_ = utils.WriteOK(w, run)
}

// HandleGet handles GET /api/v1/runs/{id}
func (h *RunHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		_ = utils.WriteBadRequest(w, "Invalid run ID")
		return
	}

	run, err := h.runs.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			_ = utils.WriteNotFound(w, "Run not found")
			return
		}
		h.logger.Error("failed to get run", zap.String("id", id.String()), zap.Error(err))
		_ = utils.WriteInternalServerError(w, "")
		return
	}

	_ = utils.WriteOK(w, run)
}

// HandleSummaries handles GET /api/v1/runs/{id}/summaries
func (h *RunHandler) HandleSummaries(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		_ = utils.WriteBadRequest(w, "Invalid run ID")
		return
	}

	if _, err := h.runs.GetByID(r.Context(), id); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			_ = utils.WriteNotFound(w, "Run not found")
			return
		}
		h.logger.Error("failed to get run", zap.String("id", id.String()), zap.Error(err))
		_ = utils.WriteInternalServerError(w, "")
		return
	}

	summaries, err := h.summaries.ListByRun(r.Context(), id)
	if err != nil {
		h.logger.Error("failed to list summaries", zap.String("run_id", id.String()), zap.Error(err))
		_ = utils.WriteInternalServerError(w, "")
		return
	}

	_ = utils.WriteOK(w, summaries)
}
