package models

import (
	"time"

	"github.com/google/uuid"
)

// RunStatus represents the status of a study run
type RunStatus string

const (
	RunStatusPending   RunStatus = "pending"
	RunStatusRunning   RunStatus = "running"
	RunStatusCompleted RunStatus = "completed"
	RunStatusFailed    RunStatus = "failed"
	RunStatusCancelled RunStatus = "cancelled"
)

// StudyRun represents one end-to-end execution of the interview pipeline
type StudyRun struct {
	ID       uuid.UUID `json:"id" db:"id"`
	Provider string    `json:"provider" db:"provider"`
	Model    string    `json:"model" db:"model"`
	Status   RunStatus `json:"status" db:"status"`

	// Counters
	InterviewCount int `json:"interview_count" db:"interview_count"`
	AnalysisCount  int `json:"analysis_count" db:"analysis_count"`
	DegradedCount  int `json:"degraded_count" db:"degraded_count"`

	FinalReport string `json:"final_report,omitempty" db:"final_report"`

	StartedAt   time.Time  `json:"started_at" db:"started_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty" db:"completed_at"`

	ErrorMessage *string `json:"error_message,omitempty" db:"error_message"`
}

// TableName returns the table name for the StudyRun model
func (StudyRun) TableName() string {
	return "study_runs"
}

// NewStudyRun creates a new StudyRun instance
func NewStudyRun(provider, model string) *StudyRun {
	return &StudyRun{
		ID:        uuid.New(),
		Provider:  provider,
		Model:     model,
		Status:    RunStatusPending,
		StartedAt: time.Now(),
	}
}

// MarkAsRunning marks the run as in progress
func (r *StudyRun) MarkAsRunning() {
	r.Status = RunStatusRunning
}

// MarkAsCompleted marks the run as completed
func (r *StudyRun) MarkAsCompleted(interviewCount, analysisCount, degradedCount int) {
	r.Status = RunStatusCompleted
	r.InterviewCount = interviewCount
	r.AnalysisCount = analysisCount
	r.DegradedCount = degradedCount
	now := time.Now()
	r.CompletedAt = &now
}

// MarkAsFailed marks the run as failed
func (r *StudyRun) MarkAsFailed(errorMessage string) {
	r.Status = RunStatusFailed
	r.ErrorMessage = &errorMessage
	now := time.Now()
	r.CompletedAt = &now
}

// MarkAsCancelled marks the run as cancelled. Interviews persisted
// before cancellation stay in the store.
func (r *StudyRun) MarkAsCancelled() {
	r.Status = RunStatusCancelled
	now := time.Now()
	r.CompletedAt = &now
}

// SetFinalReport attaches the cross-category report text
func (r *StudyRun) SetFinalReport(report string) {
	r.FinalReport = report
}
