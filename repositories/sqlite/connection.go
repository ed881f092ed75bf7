package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3" // sqlite driver
	"go.uber.org/zap"

	"github.com/airesearch/interview-studio/config"
)

// DB wraps the sql.DB connection
type DB struct {
	*sql.DB
	logger *zap.Logger
}

// NewDB opens the sqlite database file, creating its directory when
// needed. Foreign keys are enforced via the DSN.
func NewDB(cfg config.DatabaseConfig, logger *zap.Logger) (*DB, error) {
	if dir := filepath.Dir(cfg.Path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create database dir %s: %w", dir, err)
		}
	}

	dsn := fmt.Sprintf("file:%s?_foreign_keys=on&_busy_timeout=5000", cfg.Path)

	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// sqlite serializes writers; one connection avoids SQLITE_BUSY.
	maxOpen := cfg.MaxOpenConns
	if maxOpen < 1 {
		maxOpen = 1
	}
	db.SetMaxOpenConns(maxOpen)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	logger.Info("database connection established", zap.String("path", cfg.Path))

	return &DB{
		DB:     db,
		logger: logger,
	}, nil
}

// Close closes the database connection
func (db *DB) Close() error {
	db.logger.Info("closing database connection")
	return db.DB.Close()
}

// HealthCheck performs a health check on the database
func (db *DB) HealthCheck(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	var result int
	if err := db.QueryRowContext(ctx, "SELECT 1").Scan(&result); err != nil {
		return fmt.Errorf("database health check failed: %w", err)
	}

	return nil
}

// InitSchema initializes the database schema
func (db *DB) InitSchema(ctx context.Context) error {
	schema := `
		-- Study runs table
		CREATE TABLE IF NOT EXISTS study_runs (
			id TEXT PRIMARY KEY,
			provider TEXT NOT NULL,
			model TEXT NOT NULL,
			status TEXT NOT NULL,
			interview_count INTEGER NOT NULL DEFAULT 0,
			analysis_count INTEGER NOT NULL DEFAULT 0,
			degraded_count INTEGER NOT NULL DEFAULT 0,
			final_report TEXT NOT NULL DEFAULT '',
			started_at TIMESTAMP NOT NULL,
			completed_at TIMESTAMP,
			error_message TEXT
		);

		-- Personas table
		CREATE TABLE IF NOT EXISTS personas (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			category TEXT NOT NULL,
			role TEXT NOT NULL,
			position TEXT NOT NULL DEFAULT '',
			background TEXT NOT NULL DEFAULT '',
			created_by TEXT NOT NULL,
			created_at TIMESTAMP NOT NULL
		);

		-- Interviews table
		CREATE TABLE IF NOT EXISTS interviews (
			id TEXT PRIMARY KEY,
			run_id TEXT NOT NULL REFERENCES study_runs(id) ON DELETE CASCADE,
			interviewer_id TEXT NOT NULL REFERENCES personas(id),
			interviewee_id TEXT NOT NULL REFERENCES personas(id),
			category TEXT NOT NULL,
			status TEXT NOT NULL,
			provider TEXT NOT NULL,
			model_used TEXT NOT NULL,
			raw_transcript TEXT NOT NULL DEFAULT '',
			xml_formatted TEXT NOT NULL DEFAULT '',
			degraded INTEGER NOT NULL DEFAULT 0,
			latency_ms INTEGER NOT NULL DEFAULT 0,
			created_at TIMESTAMP NOT NULL,
			started_at TIMESTAMP,
			completed_at TIMESTAMP,
			error_message TEXT
		);

		-- Analyses table
		CREATE TABLE IF NOT EXISTS analyses (
			id TEXT PRIMARY KEY,
			interview_id TEXT NOT NULL REFERENCES interviews(id) ON DELETE CASCADE,
			raw_text TEXT NOT NULL DEFAULT '',
			key_points TEXT NOT NULL DEFAULT '',
			notable_quotes TEXT NOT NULL DEFAULT '',
			ai_attitudes TEXT NOT NULL DEFAULT '',
			rq1_insights TEXT NOT NULL DEFAULT '',
			rq2_insights TEXT NOT NULL DEFAULT '',
			rq3_insights TEXT NOT NULL DEFAULT '',
			rq4_insights TEXT NOT NULL DEFAULT '',
			contradictions TEXT NOT NULL DEFAULT '',
			authenticity_assessment TEXT NOT NULL DEFAULT '',
			degraded INTEGER NOT NULL DEFAULT 0,
			created_at TIMESTAMP NOT NULL
		);

		-- Stakeholder summaries table
		CREATE TABLE IF NOT EXISTS stakeholder_summaries (
			id TEXT PRIMARY KEY,
			run_id TEXT NOT NULL REFERENCES study_runs(id) ON DELETE CASCADE,
			category TEXT NOT NULL,
			summary TEXT NOT NULL DEFAULT '',
			interview_count INTEGER NOT NULL DEFAULT 0,
			degraded INTEGER NOT NULL DEFAULT 0,
			created_at TIMESTAMP NOT NULL
		);

		-- Indexes
		CREATE INDEX IF NOT EXISTS idx_personas_category ON personas(category);
		CREATE INDEX IF NOT EXISTS idx_personas_role ON personas(role);
		CREATE INDEX IF NOT EXISTS idx_interviews_run_id ON interviews(run_id);
		CREATE INDEX IF NOT EXISTS idx_interviews_category ON interviews(category);
		CREATE INDEX IF NOT EXISTS idx_interviews_status ON interviews(status);
		CREATE INDEX IF NOT EXISTS idx_analyses_interview_id ON analyses(interview_id);
		CREATE INDEX IF NOT EXISTS idx_summaries_run_id ON stakeholder_summaries(run_id);
	`

	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to initialize schema: %w", err)
	}

	db.logger.Info("database schema initialized")
	return nil
}
