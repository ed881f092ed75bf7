package models

import (
	"time"

	"github.com/google/uuid"
)

// InterviewStatus represents the status of an interview
type InterviewStatus string

const (
	InterviewStatusPending    InterviewStatus = "pending"
	InterviewStatusProcessing InterviewStatus = "processing"
	InterviewStatusCompleted  InterviewStatus = "completed"
	InterviewStatusFailed     InterviewStatus = "failed"
)

// Interview represents one synthesized interview between two personas
type Interview struct {
	ID            uuid.UUID       `json:"id" db:"id"`
	RunID         uuid.UUID       `json:"run_id" db:"run_id"`
	InterviewerID uuid.UUID       `json:"interviewer_id" db:"interviewer_id"`
	IntervieweeID uuid.UUID       `json:"interviewee_id" db:"interviewee_id"`
	Category      string          `json:"category" db:"category"`
	Status        InterviewStatus `json:"status" db:"status"`

	// Provider details
	Provider  string `json:"provider" db:"provider"`
	ModelUsed string `json:"model_used" db:"model_used"`

	// Content
	RawTranscript string `json:"raw_transcript" db:"raw_transcript"`
	XMLFormatted  string `json:"xml_formatted" db:"xml_formatted"`

	// Degraded means the dialogue (or its formatting) came back as a
	// placeholder after retry exhaustion, not real model output.
	Degraded bool `json:"degraded" db:"degraded"`

	LatencyMs int `json:"latency_ms" db:"latency_ms"`

	CreatedAt   time.Time  `json:"created_at" db:"created_at"`
	StartedAt   *time.Time `json:"started_at,omitempty" db:"started_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty" db:"completed_at"`

	ErrorMessage *string `json:"error_message,omitempty" db:"error_message"`
}

// TableName returns the table name for the Interview model
func (Interview) TableName() string {
	return "interviews"
}

// NewInterview creates a new Interview instance
func NewInterview(runID, interviewerID, intervieweeID uuid.UUID, category, provider, model string) *Interview {
	return &Interview{
		ID:            uuid.New(),
		RunID:         runID,
		InterviewerID: interviewerID,
		IntervieweeID: intervieweeID,
		Category:      category,
		Status:        InterviewStatusPending,
		Provider:      provider,
		ModelUsed:     model,
		CreatedAt:     time.Now(),
	}
}

// MarkAsProcessing marks the interview as processing
func (i *Interview) MarkAsProcessing() {
	i.Status = InterviewStatusProcessing
	now := time.Now()
	i.StartedAt = &now
}

// MarkAsCompleted marks the interview as completed
func (i *Interview) MarkAsCompleted(rawTranscript, xmlFormatted string, degraded bool, latencyMs int) {
	i.Status = InterviewStatusCompleted
	i.RawTranscript = rawTranscript
	i.XMLFormatted = xmlFormatted
	i.Degraded = degraded
	i.LatencyMs = latencyMs
	now := time.Now()
	i.CompletedAt = &now
}

// MarkAsFailed marks the interview as failed
func (i *Interview) MarkAsFailed(errorMessage string) {
	i.Status = InterviewStatusFailed
	i.ErrorMessage = &errorMessage
	now := time.Now()
	i.CompletedAt = &now
}
