package studies

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/airesearch/interview-studio/internal/study"
	"github.com/airesearch/interview-studio/models"
	"github.com/airesearch/interview-studio/repositories"
	"github.com/airesearch/interview-studio/services/generation"
	"github.com/airesearch/interview-studio/services/interviews"
	"github.com/airesearch/interview-studio/services/personas"
	"github.com/airesearch/interview-studio/services/providers"
	"github.com/airesearch/interview-studio/services/reports"
)

// memoryStore backs every repository with in-memory slices
type memoryStore struct {
	mu         sync.Mutex
	personas   []*models.Persona
	interviews []*models.Interview
	analyses   []*models.Analysis
	summaries  []*models.StakeholderSummary
	runs       []*models.StudyRun
}

type storePersonaRepo struct{ s *memoryStore }

func (r *storePersonaRepo) Create(_ context.Context, p *models.Persona) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.personas = append(r.s.personas, p)
	return nil
}

func (r *storePersonaRepo) GetByID(_ context.Context, id uuid.UUID) (*models.Persona, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, p := range r.s.personas {
		if p.ID == id {
			return p, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (r *storePersonaRepo) List(_ context.Context, f repositories.PersonaFilter) ([]*models.Persona, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*models.Persona
	for _, p := range r.s.personas {
		if f.Category != "" && p.Category != f.Category {
			continue
		}
		if f.Role != "" && p.Role != f.Role {
			continue
		}
		out = append(out, p)
	}
	return out, nil
}

func (r *storePersonaRepo) DeleteByCategory(_ context.Context, category string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	kept := r.s.personas[:0]
	for _, p := range r.s.personas {
		if p.Category != category {
			kept = append(kept, p)
		}
	}
	r.s.personas = kept
	return nil
}

type storeInterviewRepo struct{ s *memoryStore }

func (r *storeInterviewRepo) Create(_ context.Context, iv *models.Interview) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.interviews = append(r.s.interviews, iv)
	return nil
}

func (r *storeInterviewRepo) Update(_ context.Context, iv *models.Interview) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for i, existing := range r.s.interviews {
		if existing.ID == iv.ID {
			r.s.interviews[i] = iv
			return nil
		}
	}
	return repositories.ErrNotFound
}

func (r *storeInterviewRepo) GetByID(_ context.Context, id uuid.UUID) (*models.Interview, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, iv := range r.s.interviews {
		if iv.ID == id {
			return iv, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (r *storeInterviewRepo) List(_ context.Context, _ repositories.InterviewFilter) ([]*models.Interview, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return append([]*models.Interview(nil), r.s.interviews...), nil
}

type storeAnalysisRepo struct{ s *memoryStore }

func (r *storeAnalysisRepo) Create(_ context.Context, a *models.Analysis) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.analyses = append(r.s.analyses, a)
	return nil
}

func (r *storeAnalysisRepo) GetByInterviewID(_ context.Context, id uuid.UUID) (*models.Analysis, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, a := range r.s.analyses {
		if a.InterviewID == id {
			return a, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (r *storeAnalysisRepo) ListByRun(_ context.Context, _ uuid.UUID) ([]*models.Analysis, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return append([]*models.Analysis(nil), r.s.analyses...), nil
}

type storeSummaryRepo struct{ s *memoryStore }

func (r *storeSummaryRepo) Create(_ context.Context, sum *models.StakeholderSummary) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.summaries = append(r.s.summaries, sum)
	return nil
}

func (r *storeSummaryRepo) DeleteByRun(_ context.Context, runID uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	kept := r.s.summaries[:0]
	for _, sum := range r.s.summaries {
		if sum.RunID != runID {
			kept = append(kept, sum)
		}
	}
	r.s.summaries = kept
	return nil
}

func (r *storeSummaryRepo) ListByRun(_ context.Context, _ uuid.UUID) ([]*models.StakeholderSummary, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return append([]*models.StakeholderSummary(nil), r.s.summaries...), nil
}

type storeRunRepo struct{ s *memoryStore }

func (r *storeRunRepo) Create(_ context.Context, run *models.StudyRun) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cp := *run
	r.s.runs = append(r.s.runs, &cp)
	return nil
}

func (r *storeRunRepo) Update(_ context.Context, run *models.StudyRun) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for i, existing := range r.s.runs {
		if existing.ID == run.ID {
			cp := *run
			r.s.runs[i] = &cp
			return nil
		}
	}
	return repositories.ErrNotFound
}

func (r *storeRunRepo) GetByID(_ context.Context, id uuid.UUID) (*models.StudyRun, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, run := range r.s.runs {
		if run.ID == id {
			return run, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (r *storeRunRepo) List(_ context.Context) ([]*models.StudyRun, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return append([]*models.StudyRun(nil), r.s.runs...), nil
}

func (r *storeRunRepo) GetLatest(_ context.Context) (*models.StudyRun, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if len(r.s.runs) == 0 {
		return nil, repositories.ErrNotFound
	}
	return r.s.runs[len(r.s.runs)-1], nil
}

// runnerProvider answers each prompt via a function
type runnerProvider struct {
	generate func(prompt string) (string, error)
}

func (p *runnerProvider) Name() string { return "runner" }

func (p *runnerProvider) Generate(_ context.Context, req *providers.GenerateRequest) (*providers.GenerateResult, error) {
	text, err := p.generate(req.Prompt)
	if err != nil {
		return nil, err
	}
	return &providers.GenerateResult{Text: text, Model: req.Model, Provider: "runner", Latency: time.Millisecond}, nil
}

func (p *runnerProvider) ValidateModel(string) error { return nil }

func (p *runnerProvider) GetModelInfo(model string) (*providers.ModelInfo, error) {
	return &providers.ModelInfo{ID: model, Provider: "runner"}, nil
}

func (p *runnerProvider) ListModels() []string { return nil }

func smallManifest() *study.Manifest {
	return &study.Manifest{
		Name:              "Test Study",
		ResearchQuestions: []string{"RQ1: test"},
		Categories: []study.Category{
			{Key: "clients", Name: "Clients"},
			{Key: "ai_specialists", Name: "AI Specialists"},
		},
		Interviewers: []study.PersonaSeed{
			{Name: "Dr. A", Role: "Researcher"},
		},
		Personas: map[string][]study.PersonaSeed{
			"clients":        {{Name: "Alice", Role: "CFO"}, {Name: "Bob", Role: "CIO"}},
			"ai_specialists": {{Name: "Carol", Role: "AI Lead"}, {Name: "Dan", Role: "Architect"}},
		},
	}
}

func newRunner(gen func(string) (string, error)) (*Runner, *memoryStore) {
	return newRunnerWith(smallManifest(), gen)
}

func newRunnerWith(manifest *study.Manifest, gen func(string) (string, error)) (*Runner, *memoryStore) {
	store := &memoryStore{}
	logger := zap.NewNop()

	provider := &runnerProvider{generate: gen}
	genSvc := generation.NewService(provider, generation.Config{MaxAttempts: 1, Concurrency: 2}, logger)

	personaSvc := personas.NewService(&storePersonaRepo{store}, nil, genSvc, manifest, logger)
	interviewSvc := interviews.NewService(&storeInterviewRepo{store}, &storeAnalysisRepo{store}, genSvc, nil, logger)
	reportSvc := reports.NewService(&storeSummaryRepo{store}, genSvc, manifest, logger)

	return NewRunner(&storeRunRepo{store}, personaSvc, interviewSvc, reportSvc, manifest, logger), store
}

func okGenerate(string) (string, error) { return "generated content", nil }

func TestExecuteCompletesFullStudy(t *testing.T) {
	runner, store := newRunner(okGenerate)

	run, err := runner.Execute(context.Background(), "runner", "test-model", generation.BatchOptions{Sequential: true})
	require.NoError(t, err)

	assert.Equal(t, models.RunStatusCompleted, run.Status)
	assert.Equal(t, 4, run.InterviewCount)
	assert.Equal(t, 4, run.AnalysisCount)
	assert.Zero(t, run.DegradedCount)
	assert.Equal(t, "generated content", run.FinalReport)

	assert.Len(t, store.interviews, 4)
	assert.Len(t, store.analyses, 4)
	assert.Len(t, store.summaries, 2)

	// Run row reflects the terminal state
	stored, err := (&storeRunRepo{store}).GetByID(context.Background(), run.ID)
	require.NoError(t, err)
	assert.Equal(t, models.RunStatusCompleted, stored.Status)
	assert.NotNil(t, stored.CompletedAt)
}

func TestExecuteCapsInterviewsPerCategory(t *testing.T) {
	manifest := smallManifest()
	manifest.InterviewsPerCategory = 1
	runner, store := newRunnerWith(manifest, okGenerate)

	run, err := runner.Execute(context.Background(), "runner", "test-model", generation.BatchOptions{Sequential: true})
	require.NoError(t, err)

	assert.Equal(t, models.RunStatusCompleted, run.Status)
	assert.Equal(t, 2, run.InterviewCount)
	assert.Len(t, store.interviews, 2)
	assert.Len(t, store.analyses, 2)
	assert.Len(t, store.summaries, 2)

	// The first-seeded persona of each category is the one interviewed
	names := map[uuid.UUID]string{}
	for _, p := range store.personas {
		names[p.ID] = p.Name
	}
	interviewed := make([]string, 0, len(store.interviews))
	for _, iv := range store.interviews {
		interviewed = append(interviewed, names[iv.IntervieweeID])
	}
	assert.ElementsMatch(t, []string{"Alice", "Carol"}, interviewed)
}

func TestExecuteCountsDegradedInterviews(t *testing.T) {
	gen := func(prompt string) (string, error) {
		if strings.Contains(prompt, "Alice") && strings.Contains(prompt, "INTERVIEWEE:") {
			return "", providers.NewProviderError("runner", "test-model", "server_error", "boom", 500, nil)
		}
		return "generated content", nil
	}
	runner, _ := newRunner(gen)

	run, err := runner.Execute(context.Background(), "runner", "test-model", generation.BatchOptions{Sequential: true})
	require.NoError(t, err)

	assert.Equal(t, models.RunStatusCompleted, run.Status)
	assert.Equal(t, 4, run.InterviewCount)
	assert.Equal(t, 1, run.DegradedCount)
}

func TestExecuteFallbackReportCountsAsDegraded(t *testing.T) {
	gen := func(prompt string) (string, error) {
		if strings.Contains(prompt, "STAKEHOLDER SUMMARIES:") {
			return "", providers.NewProviderError("runner", "test-model", "server_error", "boom", 500, nil)
		}
		return "generated content", nil
	}
	runner, _ := newRunner(gen)

	run, err := runner.Execute(context.Background(), "runner", "test-model", generation.BatchOptions{Sequential: true})
	require.NoError(t, err)

	assert.Equal(t, models.RunStatusCompleted, run.Status)
	assert.Equal(t, 1, run.DegradedCount)
	assert.Contains(t, run.FinalReport, "could not be generated")
}

func TestExecuteCancellationMarksRunCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	gen := func(string) (string, error) {
		cancel()
		return "", ctx.Err()
	}
	runner, store := newRunner(gen)

	run, err := runner.Execute(ctx, "runner", "test-model", generation.BatchOptions{Sequential: true})
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, models.RunStatusCancelled, run.Status)

	stored, getErr := (&storeRunRepo{store}).GetByID(context.Background(), run.ID)
	require.NoError(t, getErr)
	assert.Equal(t, models.RunStatusCancelled, stored.Status)
}
