package repositories

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/airesearch/interview-studio/models"
)

// ErrNotFound is returned when a requested entity does not exist
var ErrNotFound = errors.New("not found")

// PersonaFilter narrows persona listings
type PersonaFilter struct {
	Category string
	Role     models.PersonaRole
}

// PersonaRepository manages persona persistence
type PersonaRepository interface {
	Create(ctx context.Context, persona *models.Persona) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Persona, error)
	List(ctx context.Context, filter PersonaFilter) ([]*models.Persona, error)
	DeleteByCategory(ctx context.Context, category string) error
}

// InterviewFilter narrows interview listings
type InterviewFilter struct {
	RunID    uuid.UUID
	Category string
	Status   models.InterviewStatus
}

// InterviewRepository manages interview persistence
type InterviewRepository interface {
	Create(ctx context.Context, interview *models.Interview) error
	Update(ctx context.Context, interview *models.Interview) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Interview, error)
	List(ctx context.Context, filter InterviewFilter) ([]*models.Interview, error)
}

// AnalysisRepository manages analysis persistence
type AnalysisRepository interface {
	Create(ctx context.Context, analysis *models.Analysis) error
	GetByInterviewID(ctx context.Context, interviewID uuid.UUID) (*models.Analysis, error)
	ListByRun(ctx context.Context, runID uuid.UUID) ([]*models.Analysis, error)
}

// SummaryRepository manages stakeholder summary persistence
type SummaryRepository interface {
	Create(ctx context.Context, summary *models.StakeholderSummary) error
	ListByRun(ctx context.Context, runID uuid.UUID) ([]*models.StakeholderSummary, error)
	DeleteByRun(ctx context.Context, runID uuid.UUID) error
}

// RunRepository manages study run persistence
type RunRepository interface {
	Create(ctx context.Context, run *models.StudyRun) error
	Update(ctx context.Context, run *models.StudyRun) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.StudyRun, error)
	List(ctx context.Context) ([]*models.StudyRun, error)
	GetLatest(ctx context.Context) (*models.StudyRun, error)
}

// Transaction represents a database transaction
type Transaction interface {
	Commit() error
	Rollback() error
	Context() context.Context
}

// TransactionManager coordinates transactions across repositories
type TransactionManager interface {
	Begin(ctx context.Context) (Transaction, error)
	InTransaction(ctx context.Context, fn func(ctx context.Context, tx Transaction) error) error
}
