package sqlite

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/airesearch/interview-studio/models"
	"github.com/airesearch/interview-studio/repositories"
)

// SummaryRepository implements the repositories.SummaryRepository interface
type SummaryRepository struct {
	db     *DB
	logger *zap.Logger
}

// NewSummaryRepository creates a new summary repository
func NewSummaryRepository(db *DB, logger *zap.Logger) repositories.SummaryRepository {
	return &SummaryRepository{
		db:     db,
		logger: logger,
	}
}

// Create creates a new stakeholder summary
func (r *SummaryRepository) Create(ctx context.Context, summary *models.StakeholderSummary) error {
	query := `
		INSERT INTO stakeholder_summaries (
			id, run_id, category, summary, interview_count, degraded, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	executor := GetExecutor(ctx, r.db)
	_, err := executor.ExecContext(ctx, query,
		summary.ID,
		summary.RunID,
		summary.Category,
		summary.Summary,
		summary.InterviewCount,
		summary.Degraded,
		summary.CreatedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to create summary: %w", err)
	}

	r.logger.Debug("summary created",
		zap.String("id", summary.ID.String()),
		zap.String("category", summary.Category))
	return nil
}

// DeleteByRun removes all stakeholder summaries for a study run. Used
// before re-synthesizing a run's reports.
func (r *SummaryRepository) DeleteByRun(ctx context.Context, runID uuid.UUID) error {
	query := `DELETE FROM stakeholder_summaries WHERE run_id = ?`

	executor := GetExecutor(ctx, r.db)
	result, err := executor.ExecContext(ctx, query, runID)
	if err != nil {
		return fmt.Errorf("failed to delete summaries: %w", err)
	}

	deleted, _ := result.RowsAffected()
	r.logger.Debug("summaries deleted",
		zap.String("run_id", runID.String()),
		zap.Int64("count", deleted))
	return nil
}

// ListByRun retrieves all stakeholder summaries for a study run
func (r *SummaryRepository) ListByRun(ctx context.Context, runID uuid.UUID) ([]*models.StakeholderSummary, error) {
	query := `
		SELECT id, run_id, category, summary, interview_count, degraded, created_at
		FROM stakeholder_summaries
		WHERE run_id = ?
		ORDER BY created_at ASC
	`

	executor := GetExecutor(ctx, r.db)
	rows, err := executor.QueryContext(ctx, query, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to list summaries: %w", err)
	}
	defer rows.Close()

	var summaries []*models.StakeholderSummary
	for rows.Next() {
		summary := &models.StakeholderSummary{}
		if err := rows.Scan(
			&summary.ID,
			&summary.RunID,
			&summary.Category,
			&summary.Summary,
			&summary.InterviewCount,
			&summary.Degraded,
			&summary.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan summary: %w", err)
		}
		summaries = append(summaries, summary)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate summaries: %w", err)
	}

	return summaries, nil
}
