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

// RunRepository implements the repositories.RunRepository interface
type RunRepository struct {
	db     *DB
	logger *zap.Logger
}

// NewRunRepository creates a new run repository
func NewRunRepository(db *DB, logger *zap.Logger) repositories.RunRepository {
	return &RunRepository{
		db:     db,
		logger: logger,
	}
}

const runColumns = `id, provider, model, status, interview_count, analysis_count,
	degraded_count, final_report, started_at, completed_at, error_message`

// Create creates a new study run
func (r *RunRepository) Create(ctx context.Context, run *models.StudyRun) error {
	query := `
		INSERT INTO study_runs (
			id, provider, model, status, interview_count, analysis_count,
			degraded_count, final_report, started_at, completed_at, error_message
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	executor := GetExecutor(ctx, r.db)
	_, err := executor.ExecContext(ctx, query,
		run.ID,
		run.Provider,
		run.Model,
		run.Status,
		run.InterviewCount,
		run.AnalysisCount,
		run.DegradedCount,
		run.FinalReport,
		run.StartedAt,
		run.CompletedAt,
		run.ErrorMessage,
	)

	if err != nil {
		return fmt.Errorf("failed to create study run: %w", err)
	}

	r.logger.Debug("study run created",
		zap.String("id", run.ID.String()),
		zap.String("provider", run.Provider),
		zap.String("model", run.Model))
	return nil
}

// Update persists status, counters, and report changes
func (r *RunRepository) Update(ctx context.Context, run *models.StudyRun) error {
	query := `
		UPDATE study_runs
		SET status = ?, interview_count = ?, analysis_count = ?, degraded_count = ?,
		    final_report = ?, completed_at = ?, error_message = ?
		WHERE id = ?
	`

	executor := GetExecutor(ctx, r.db)
	result, err := executor.ExecContext(ctx, query,
		run.Status,
		run.InterviewCount,
		run.AnalysisCount,
		run.DegradedCount,
		run.FinalReport,
		run.CompletedAt,
		run.ErrorMessage,
		run.ID,
	)

	if err != nil {
		return fmt.Errorf("failed to update study run: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check update result: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("study run %s: %w", run.ID, repositories.ErrNotFound)
	}

	return nil
}

// GetByID retrieves a study run by ID
func (r *RunRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.StudyRun, error) {
	query := fmt.Sprintf(`SELECT %s FROM study_runs WHERE id = ?`, runColumns)

	executor := GetExecutor(ctx, r.db)
	run, err := scanRun(executor.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("study run %s: %w", id, repositories.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get study run: %w", err)
	}

	return run, nil
}

// List retrieves all study runs, newest first
func (r *RunRepository) List(ctx context.Context) ([]*models.StudyRun, error) {
	query := fmt.Sprintf(`SELECT %s FROM study_runs ORDER BY started_at DESC`, runColumns)

	executor := GetExecutor(ctx, r.db)
	rows, err := executor.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list study runs: %w", err)
	}
	defer rows.Close()

	var runs []*models.StudyRun
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan study run: %w", err)
		}
		runs = append(runs, run)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate study runs: %w", err)
	}

	return runs, nil
}

// GetLatest retrieves the most recently started study run
func (r *RunRepository) GetLatest(ctx context.Context) (*models.StudyRun, error) {
	query := fmt.Sprintf(`SELECT %s FROM study_runs ORDER BY started_at DESC LIMIT 1`, runColumns)

	executor := GetExecutor(ctx, r.db)
	run, err := scanRun(executor.QueryRowContext(ctx, query))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("latest study run: %w", repositories.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get latest study run: %w", err)
	}

	return run, nil
}

// scanner covers both *sql.Row and *sql.Rows
type scanner interface {
	Scan(dest ...interface{}) error
}

func scanRun(s scanner) (*models.StudyRun, error) {
	run := &models.StudyRun{}
	err := s.Scan(
		&run.ID,
		&run.Provider,
		&run.Model,
		&run.Status,
		&run.InterviewCount,
		&run.AnalysisCount,
		&run.DegradedCount,
		&run.FinalReport,
		&run.StartedAt,
		&run.CompletedAt,
		&run.ErrorMessage,
	)
	if err != nil {
		return nil, err
	}
	return run, nil
}
