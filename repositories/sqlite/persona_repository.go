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

// PersonaRepository implements the repositories.PersonaRepository interface
type PersonaRepository struct {
	db     *DB
	logger *zap.Logger
}

// NewPersonaRepository creates a new persona repository
func NewPersonaRepository(db *DB, logger *zap.Logger) repositories.PersonaRepository {
	return &PersonaRepository{
		db:     db,
		logger: logger,
	}
}

// Create creates a new persona
func (r *PersonaRepository) Create(ctx context.Context, persona *models.Persona) error {
	query := `
		INSERT INTO personas (
			id, name, category, role, position, background, created_by, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	executor := GetExecutor(ctx, r.db)
	_, err := executor.ExecContext(ctx, query,
		persona.ID,
		persona.Name,
		persona.Category,
		persona.Role,
		persona.Position,
		persona.Background,
		persona.CreatedBy,
		persona.CreatedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to create persona: %w", err)
	}

	r.logger.Debug("persona created",
		zap.String("id", persona.ID.String()),
		zap.String("name", persona.Name),
		zap.String("category", persona.Category))
	return nil
}

// GetByID retrieves a persona by ID
func (r *PersonaRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Persona, error) {
	query := `
		SELECT id, name, category, role, position, background, created_by, created_at
		FROM personas
		WHERE id = ?
	`

	executor := GetExecutor(ctx, r.db)
	persona := &models.Persona{}

	err := executor.QueryRowContext(ctx, query, id).Scan(
		&persona.ID,
		&persona.Name,
		&persona.Category,
		&persona.Role,
		&persona.Position,
		&persona.Background,
		&persona.CreatedBy,
		&persona.CreatedAt,
	)

	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("persona %s: %w", id, repositories.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get persona: %w", err)
	}

	return persona, nil
}

// List retrieves personas matching the filter, ordered by creation time
func (r *PersonaRepository) List(ctx context.Context, filter repositories.PersonaFilter) ([]*models.Persona, error) {
	builder := sq.Select("id", "name", "category", "role", "position", "background", "created_by", "created_at").
		From("personas").
		OrderBy("created_at ASC")

	if filter.Category != "" {
		builder = builder.Where(sq.Eq{"category": filter.Category})
	}
	if filter.Role != "" {
		builder = builder.Where(sq.Eq{"role": filter.Role})
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build persona query: %w", err)
	}

	executor := GetExecutor(ctx, r.db)
	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list personas: %w", err)
	}
	defer rows.Close()

	var personas []*models.Persona
	for rows.Next() {
		persona := &models.Persona{}
		if err := rows.Scan(
			&persona.ID,
			&persona.Name,
			&persona.Category,
			&persona.Role,
			&persona.Position,
			&persona.Background,
			&persona.CreatedBy,
			&persona.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan persona: %w", err)
		}
		personas = append(personas, persona)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate personas: %w", err)
	}

	return personas, nil
}

// DeleteByCategory removes all personas in a category, used when
// re-seeding.
func (r *PersonaRepository) DeleteByCategory(ctx context.Context, category string) error {
	executor := GetExecutor(ctx, r.db)
	_, err := executor.ExecContext(ctx, `DELETE FROM personas WHERE category = ?`, category)
	if err != nil {
		return fmt.Errorf("failed to delete personas for category %s: %w", category, err)
	}
	return nil
}
