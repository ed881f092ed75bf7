package models

import (
	"time"

	"github.com/google/uuid"
)

// StakeholderSummary represents the synthesized summary of one
// stakeholder category within a run
type StakeholderSummary struct {
	ID             uuid.UUID `json:"id" db:"id"`
	RunID          uuid.UUID `json:"run_id" db:"run_id"`
	Category       string    `json:"category" db:"category"`
	Summary        string    `json:"summary" db:"summary"`
	InterviewCount int       `json:"interview_count" db:"interview_count"`
	Degraded       bool      `json:"degraded" db:"degraded"`
	CreatedAt      time.Time `json:"created_at" db:"created_at"`
}

// TableName returns the table name for the StakeholderSummary model
func (StakeholderSummary) TableName() string {
	return "stakeholder_summaries"
}

// NewStakeholderSummary creates a new StakeholderSummary instance
func NewStakeholderSummary(runID uuid.UUID, category, summary string, interviewCount int, degraded bool) *StakeholderSummary {
	return &StakeholderSummary{
		ID:             uuid.New(),
		RunID:          runID,
		Category:       category,
		Summary:        summary,
		InterviewCount: interviewCount,
		Degraded:       degraded,
		CreatedAt:      time.Now(),
	}
}
