package handlers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/airesearch/interview-studio/models"
	"github.com/airesearch/interview-studio/repositories"
	"github.com/airesearch/interview-studio/utils"
)

// InterviewHandler handles interview HTTP requests
type InterviewHandler struct {
	interviews repositories.InterviewRepository
	analyses   repositories.AnalysisRepository
	logger     *zap.Logger
}

// NewInterviewHandler creates a new InterviewHandler
func NewInterviewHandler(interviews repositories.InterviewRepository, analyses repositories.AnalysisRepository, logger *zap.Logger) *InterviewHandler {
	return &InterviewHandler{
		interviews: interviews,
		analyses:   analyses,
		logger:     logger,
	}
}

// HandleList handles GET /api/v1/interviews?run=&category=&status=
func (h *InterviewHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	filter := repositories.InterviewFilter{
		Category: r.URL.Query().Get("category"),
		Status:   models.InterviewStatus(r.URL.Query().Get("status")),
	}

	if runParam := r.URL.Query().Get("run"); runParam != "" {
		runID, err := uuid.Parse(runParam)
		if err != nil {
			_ = utils.WriteBadRequest(w, "Invalid run ID")
			return
		}
		filter.RunID = runID
	}

	interviews, err := h.interviews.List(r.Context(), filter)
	if err != nil {
		h.logger.Error("failed to list interviews", zap.Error(err))
		_ = utils.WriteInternalServerError(w, "")
		return
	}

	_ = utils.WriteOK(w, interviews)
}

// HandleGet handles GET /api/v1/interviews/{id}
func (h *InterviewHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		_ = utils.WriteBadRequest(w, "Invalid interview ID")
		return
	}

	interview, err := h.interviews.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			_ = utils.WriteNotFound(w, "Interview not found")
			return
		}
		h.logger.Error("failed to get interview", zap.String("id", id.String()), zap.Error(err))
		_ = utils.WriteInternalServerError(w, "")
		return
	}

	_ = utils.WriteOK(w, interview)
}

// HandleAnalysis handles GET /api/v1/interviews/{id}/analysis
func (h *InterviewHandler) HandleAnalysis(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		_ = utils.WriteBadRequest(w, "Invalid interview ID")
		return
	}

	analysis, err := h.analyses.GetByInterviewID(r.Context(), id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			_ = utils.WriteNotFound(w, "Analysis not found")
			return
		}
		h.logger.Error("failed to get analysis", zap.String("interview_id", id.String()), zap.Error(err))
		_ = utils.WriteInternalServerError(w, "")
		return
	}

	_ = utils.WriteOK(w, analysis)
}
