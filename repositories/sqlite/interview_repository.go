package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/airesearch/interview-studio/models"
	"github.com/airesearch/interview-studio/repositories"
)

// InterviewRepository implements the repositories.InterviewRepository interface
type InterviewRepository struct {
	db     *DB
	logger *zap.Logger
}

// NewInterviewRepository creates a new interview repository
func NewInterviewRepository(db *DB, logger *zap.Logger) repositories.InterviewRepository {
	return &InterviewRepository{
		db:     db,
		logger: logger,
	}
}

// Create creates a new interview
func (r *InterviewRepository) Create(ctx context.Context, interview *models.Interview) error {
	query := `
		INSERT INTO interviews (
			id, run_id, interviewer_id, interviewee_id, category, status,
			provider, model_used, raw_transcript, xml_formatted, degraded,
			latency_ms, created_at, started_at, completed_at, error_message
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	executor := GetExecutor(ctx, r.db)
	_, err := executor.ExecContext(ctx, query,
		interview.ID,
		interview.RunID,
		interview.InterviewerID,
		interview.IntervieweeID,
		interview.Category,
		interview.Status,
		interview.Provider,
		interview.ModelUsed,
		interview.RawTranscript,
		interview.XMLFormatted,
		interview.Degraded,
		interview.LatencyMs,
		interview.CreatedAt,
		interview.StartedAt,
		interview.CompletedAt,
		interview.ErrorMessage,
	)

	if err != nil {
		return fmt.Errorf("failed to create interview: %w", err)
	}

	r.logger.Debug("interview created",
		zap.String("id", interview.ID.String()),
		zap.String("category", interview.Category))
	return nil
}

// Update persists status, content, and timing changes
func (r *InterviewRepository) Update(ctx context.Context, interview *models.Interview) error {
	query := `
		UPDATE interviews
		SET status = ?, raw_transcript = ?, xml_formatted = ?, degraded = ?,
		    latency_ms = ?, started_at = ?, completed_at = ?, error_message = ?
		WHERE id = ?
	`

	executor := GetExecutor(ctx, r.db)
	result, err := executor.ExecContext(ctx, query,
		interview.Status,
		interview.RawTranscript,
		interview.XMLFormatted,
		interview.Degraded,
		interview.LatencyMs,
		interview.StartedAt,
		interview.CompletedAt,
		interview.ErrorMessage,
		interview.ID,
	)

	if err != nil {
		return fmt.Errorf("failed to update interview: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check update result: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("interview %s: %w", interview.ID, repositories.ErrNotFound)
	}

	return nil
}

// GetByID retrieves an interview by ID
func (r *InterviewRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Interview, error) {
	query := `
		SELECT id, run_id, interviewer_id, interviewee_id, category, status,
		       provider, model_used, raw_transcript, xml_formatted, degraded,
		       latency_ms, created_at, started_at, completed_at, error_message
		FROM interviews
		WHERE id = ?
	`

	executor := GetExecutor(ctx, r.db)
	interview := &models.Interview{}

	err := executor.QueryRowContext(ctx, query, id).Scan(
		&interview.ID,
		&interview.RunID,
		&interview.InterviewerID,
		&interview.IntervieweeID,
		&interview.Category,
		&interview.Status,
		&interview.Provider,
		&interview.ModelUsed,
		&interview.RawTranscript,
		&interview.XMLFormatted,
		&interview.Degraded,
		&interview.LatencyMs,
		&interview.CreatedAt,
		&interview.StartedAt,
		&interview.CompletedAt,
		&interview.ErrorMessage,
	)

	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("interview %s: %w", id, repositories.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get interview: %w", err)
	}

	return interview, nil
}

// List retrieves interviews matching the filter, in creation order
func (r *InterviewRepository) List(ctx context.Context, filter repositories.InterviewFilter) ([]*models.Interview, error) {
	builder := sq.Select(
		"id", "run_id", "interviewer_id", "interviewee_id", "category", "status",
		"provider", "model_used", "raw_transcript", "xml_formatted", "degraded",
		"latency_ms", "created_at", "started_at", "completed_at", "error_message").
		From("interviews").
		OrderBy("created_at ASC")

	if filter.RunID != uuid.Nil {
		builder = builder.Where(sq.Eq{"run_id": filter.RunID})
	}
	if filter.Category != "" {
		builder = builder.Where(sq.Eq{"category": filter.Category})
	}
	if filter.Status != "" {
		builder = builder.Where(sq.Eq{"status": filter.Status})
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build interview query: %w", err)
	}

	executor := GetExecutor(ctx, r.db)
	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list interviews: %w", err)
	}
	defer rows.Close()

	var interviews []*models.Interview
	for rows.Next() {
		interview := &models.Interview{}
		if err := rows.Scan(
			&interview.ID,
			&interview.RunID,
			&interview.InterviewerID,
			&interview.IntervieweeID,
			&interview.Category,
			&interview.Status,
			&interview.Provider,
			&interview.ModelUsed,
			&interview.RawTranscript,
			&interview.XMLFormatted,
			&interview.Degraded,
			&interview.LatencyMs,
			&interview.CreatedAt,
			&interview.StartedAt,
			&interview.CompletedAt,
			&interview.ErrorMessage,
		); err != nil {
			return nil, fmt.Errorf("failed to scan interview: %w", err)
		}
		interviews = append(interviews, interview)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate interviews: %w", err)
	}

	return interviews, nil
}
