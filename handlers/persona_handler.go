package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/airesearch/interview-studio/models"
	"github.com/airesearch/interview-studio/repositories"
	"github.com/airesearch/interview-studio/utils"
)

// PersonaHandler handles persona HTTP requests
type PersonaHandler struct {
	personas repositories.PersonaRepository
	logger   *zap.Logger
}

// NewPersonaHandler creates a new PersonaHandler
func NewPersonaHandler(personas repositories.PersonaRepository, logger *zap.Logger) *PersonaHandler {
	return &PersonaHandler{
		personas: personas,
		logger:   logger,
	}
}

// HandleList handles GET /api/v1/personas?category=&role=
func (h *PersonaHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	filter := repositories.PersonaFilter{
		Category: r.URL.Query().Get("category"),
	}

	switch role := r.URL.Query().Get("role"); role {
	case "":
	case string(models.PersonaRoleInterviewer):
		filter.Role = models.PersonaRoleInterviewer
	case string(models.PersonaRoleInterviewee):
		filter.Role = models.PersonaRoleInterviewee
	default:
		_ = utils.WriteBadRequest(w, "Role must be interviewer or interviewee")
		return
	}

	personas, err := h.personas.List(r.Context(), filter)
	if err != nil {
		h.logger.Error("failed to list personas", zap.Error(err))
		_ = utils.WriteInternalServerError(w, "")
		return
	}

	_ = utils.WriteOK(w, personas)
}
