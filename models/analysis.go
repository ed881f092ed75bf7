package models

import (
	"time"

	"github.com/google/uuid"
)

// Analysis represents the structured analysis of one interview
type Analysis struct {
	ID          uuid.UUID `json:"id" db:"id"`
	InterviewID uuid.UUID `json:"interview_id" db:"interview_id"`

	// RawText keeps the full model output before sectioning
	RawText string `json:"raw_text" db:"raw_text"`

	// Parsed sections
	KeyPoints               string `json:"key_points" db:"key_points"`
	NotableQuotes           string `json:"notable_quotes" db:"notable_quotes"`
	AIAttitudes             string `json:"ai_attitudes" db:"ai_attitudes"`
	RQ1Insights             string `json:"rq1_insights" db:"rq1_insights"`
	RQ2Insights             string `json:"rq2_insights" db:"rq2_insights"`
	RQ3Insights             string `json:"rq3_insights" db:"rq3_insights"`
	RQ4Insights             string `json:"rq4_insights" db:"rq4_insights"`
	Contradictions          string `json:"contradictions" db:"contradictions"`
	AuthenticityAssessment  string `json:"authenticity_assessment" db:"authenticity_assessment"`

	// Degraded means the analysis is a placeholder, written so the
	// per-interview counts stay aligned when generation was exhausted.
	Degraded bool `json:"degraded" db:"degraded"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// TableName returns the table name for the Analysis model
func (Analysis) TableName() string {
	return "analyses"
}

// NewAnalysis creates a new Analysis instance
func NewAnalysis(interviewID uuid.UUID, rawText string) *Analysis {
	return &Analysis{
		ID:          uuid.New(),
		InterviewID: interviewID,
		RawText:     rawText,
		CreatedAt:   time.Now(),
	}
}

// NewPlaceholderAnalysis creates an analysis row for an interview whose
// dialogue came back degraded. It keeps analysis counts aligned with
// interview counts without pretending the model produced insights.
func NewPlaceholderAnalysis(interviewID uuid.UUID, reason string) *Analysis {
	a := NewAnalysis(interviewID, reason)
	a.KeyPoints = reason
	a.Degraded = true
	return a
}
