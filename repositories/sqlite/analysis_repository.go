package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/airesearch/interview-studio/models"
	"github.com/airesearch/interview-studio/repositories"
)

// AnalysisRepository implements the repositories.AnalysisRepository interface
type AnalysisRepository struct {
	db     *DB
	logger *zap.Logger
}

// NewAnalysisRepository creates a new analysis repository
func NewAnalysisRepository(db *DB, logger *zap.Logger) repositories.AnalysisRepository {
	return &AnalysisRepository{
		db:     db,
		logger: logger,
	}
}

// Create creates a new analysis
func (r *AnalysisRepository) Create(ctx context.Context, analysis *models.Analysis) error {
	query := `
		INSERT INTO analyses (
			id, interview_id, raw_text, key_points, notable_quotes, ai_attitudes,
			rq1_insights, rq2_insights, rq3_insights, rq4_insights,
			contradictions, authenticity_assessment, degraded, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	executor := GetExecutor(ctx, r.db)
	_, err := executor.ExecContext(ctx, query,
		analysis.ID,
		analysis.InterviewID,
		analysis.RawText,
		analysis.KeyPoints,
		analysis.NotableQuotes,
		analysis.AIAttitudes,
		analysis.RQ1Insights,
		analysis.RQ2Insights,
		analysis.RQ3Insights,
		analysis.RQ4Insights,
		analysis.Contradictions,
		analysis.AuthenticityAssessment,
		analysis.Degraded,
		analysis.CreatedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to create analysis: %w", err)
	}

	r.logger.Debug("analysis created",
		zap.String("id", analysis.ID.String()),
		zap.String("interview_id", analysis.InterviewID.String()))
	return nil
}

// GetByInterviewID retrieves the analysis for an interview
func (r *AnalysisRepository) GetByInterviewID(ctx context.Context, interviewID uuid.UUID) (*models.Analysis, error) {
	query := `
		SELECT id, interview_id, raw_text, key_points, notable_quotes, ai_attitudes,
		       rq1_insights, rq2_insights, rq3_insights, rq4_insights,
		       contradictions, authenticity_assessment, degraded, created_at
		FROM analyses
		WHERE interview_id = ?
	`

	executor := GetExecutor(ctx, r.db)
	analysis := &models.Analysis{}

	err := executor.QueryRowContext(ctx, query, interviewID).Scan(
		&analysis.ID,
		&analysis.InterviewID,
		&analysis.RawText,
		&analysis.KeyPoints,
		&analysis.NotableQuotes,
		&analysis.AIAttitudes,
		&analysis.RQ1Insights,
		&analysis.RQ2Insights,
		&analysis.RQ3Insights,
		&analysis.RQ4Insights,
		&analysis.Contradictions,
		&analysis.AuthenticityAssessment,
		&analysis.Degraded,
		&analysis.CreatedAt,
	)

	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("analysis for interview %s: %w", interviewID, repositories.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get analysis: %w", err)
	}

	return analysis, nil
}

// ListByRun retrieves all analyses belonging to a study run, in
// interview creation order.
func (r *AnalysisRepository) ListByRun(ctx context.Context, runID uuid.UUID) ([]*models.Analysis, error) {
	query := `
		SELECT a.id, a.interview_id, a.raw_text, a.key_points, a.notable_quotes, a.ai_attitudes,
		       a.rq1_insights, a.rq2_insights, a.rq3_insights, a.rq4_insights,
		       a.contradictions, a.authenticity_assessment, a.degraded, a.created_at
		FROM analyses a
		JOIN interviews i ON i.id = a.interview_id
		WHERE i.run_id = ?
		ORDER BY i.created_at ASC
	`

	executor := GetExecutor(ctx, r.db)
	rows, err := executor.QueryContext(ctx, query, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to list analyses: %w", err)
	}
	defer rows.Close()

	var analyses []*models.Analysis
	for rows.Next() {
		analysis := &models.Analysis{}
		if err := rows.Scan(
			&analysis.ID,
			&analysis.InterviewID,
			&analysis.RawText,
			&analysis.KeyPoints,
			&analysis.NotableQuotes,
			&analysis.AIAttitudes,
			&analysis.RQ1Insights,
			&analysis.RQ2Insights,
			&analysis.RQ3Insights,
			&analysis.RQ4Insights,
			&analysis.Contradictions,
			&analysis.AuthenticityAssessment,
			&analysis.Degraded,
			&analysis.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan analysis: %w", err)
		}
		analyses = append(analyses, analysis)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate analyses: %w", err)
	}

	return analyses, nil
}
