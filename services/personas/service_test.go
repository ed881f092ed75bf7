package personas

import (
	"context"
	"os"
	"path/filepath"
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
	"github.com/airesearch/interview-studio/services/providers"
)

// memoryPersonaRepo is an in-memory repositories.PersonaRepository
type memoryPersonaRepo struct {
	personas []*models.Persona
}

func (m *memoryPersonaRepo) Create(_ context.Context, p *models.Persona) error {
	m.personas = append(m.personas, p)
	return nil
}

func (m *memoryPersonaRepo) GetByID(_ context.Context, id uuid.UUID) (*models.Persona, error) {
	for _, p := range m.personas {
		if p.ID == id {
			return p, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (m *memoryPersonaRepo) List(_ context.Context, filter repositories.PersonaFilter) ([]*models.Persona, error) {
	var out []*models.Persona
	for _, p := range m.personas {
		if filter.Category != "" && p.Category != filter.Category {
			continue
		}
		if filter.Role != "" && p.Role != filter.Role {
			continue
		}
		out = append(out, p)
	}
	return out, nil
}

func (m *memoryPersonaRepo) DeleteByCategory(_ context.Context, category string) error {
	kept := m.personas[:0]
	for _, p := range m.personas {
		if p.Category != category {
			kept = append(kept, p)
		}
	}
	m.personas = kept
	return nil
}

// stubProvider returns a fixed text for every prompt
type stubProvider struct {
	text string
	err  error
}

func (p *stubProvider) Name() string { return "stub" }

func (p *stubProvider) Generate(_ context.Context, req *providers.GenerateRequest) (*providers.GenerateResult, error) {
	if p.err != nil {
		return nil, p.err
	}
	return &providers.GenerateResult{
		Text:     p.text,
		Model:    req.Model,
		Provider: "stub",
		Latency:  time.Millisecond,
	}, nil
}

func (p *stubProvider) ValidateModel(model string) error { return nil }

func (p *stubProvider) GetModelInfo(model string) (*providers.ModelInfo, error) {
	return &providers.ModelInfo{ID: model, Provider: "stub"}, nil
}

func (p *stubProvider) ListModels() []string { return nil }

func newGenService(p providers.Provider) *generation.Service {
	return generation.NewService(p, generation.Config{MaxAttempts: 1}, zap.NewNop())
}

// recordingTxManager counts InTransaction calls and runs the body directly
type recordingTxManager struct {
	calls int
}

func (m *recordingTxManager) Begin(context.Context) (repositories.Transaction, error) {
	return nil, nil
}

func (m *recordingTxManager) InTransaction(ctx context.Context, fn func(ctx context.Context, tx repositories.Transaction) error) error {
	m.calls++
	return fn(ctx, nil)
}

func TestSeedRunsInOneTransaction(t *testing.T) {
	repo := &memoryPersonaRepo{}
	txm := &recordingTxManager{}
	svc := NewService(repo, txm, nil, study.Default(), zap.NewNop())

	err := svc.Seed(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, txm.calls)
	assert.Len(t, repo.personas, 32)
}

func TestSeedPopulatesPoolFromManifest(t *testing.T) {
	repo := &memoryPersonaRepo{}
	svc := NewService(repo, nil, nil, study.Default(), zap.NewNop())

	err := svc.Seed(context.Background())
	require.NoError(t, err)

	interviewers, err := svc.Interviewers(context.Background())
	require.NoError(t, err)
	assert.Len(t, interviewers, 4)
	assert.Equal(t, "Dr. Maria Reynolds", interviewers[0].Name)
	assert.Equal(t, models.PersonaSourceManifest, interviewers[0].CreatedBy)

	clients, err := svc.ByCategory(context.Background(), "clients")
	require.NoError(t, err)
	assert.Len(t, clients, 4)
	for _, p := range clients {
		assert.Equal(t, models.PersonaRoleInterviewee, p.Role)
		assert.NotEmpty(t, p.Position)
	}

	// 4 interviewers + 7 categories x 4 personas
	assert.Len(t, repo.personas, 32)
}

func TestSeedIsIdempotent(t *testing.T) {
	repo := &memoryPersonaRepo{}
	svc := NewService(repo, nil, nil, study.Default(), zap.NewNop())

	require.NoError(t, svc.Seed(context.Background()))
	require.NoError(t, svc.Seed(context.Background()))

	assert.Len(t, repo.personas, 32)
}

func TestEnsureSeededSkipsNonEmptyPool(t *testing.T) {
	repo := &memoryPersonaRepo{}
	require.NoError(t, repo.Create(context.Background(),
		models.NewPersona("Existing", "clients", models.PersonaRoleInterviewee, "", "", models.PersonaSourceLibrary)))

	svc := NewService(repo, nil, nil, study.Default(), zap.NewNop())
	require.NoError(t, svc.EnsureSeeded(context.Background()))

	assert.Len(t, repo.personas, 1)
}

func TestInterviewersRequiresSeededPool(t *testing.T) {
	svc := NewService(&memoryPersonaRepo{}, nil, nil, study.Default(), zap.NewNop())

	_, err := svc.Interviewers(context.Background())
	assert.ErrorContains(t, err, "no interviewers")
}

func TestImportLibrary(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "library.json")
	library := `[
		{"name": "Alicia Fontes", "category": "clients", "position": "CFO", "background": "Manufacturing finance lead"},
		{"name": "Dr. Ana Costa", "category": "interviewers", "role": "interviewer", "position": "Research fellow"}
	]`
	require.NoError(t, os.WriteFile(path, []byte(library), 0o644))

	repo := &memoryPersonaRepo{}
	svc := NewService(repo, nil, nil, study.Default(), zap.NewNop())

	count, err := svc.ImportLibrary(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	assert.Equal(t, models.PersonaRoleInterviewee, repo.personas[0].Role)
	assert.Equal(t, models.PersonaSourceLibrary, repo.personas[0].CreatedBy)
	assert.Equal(t, models.PersonaRoleInterviewer, repo.personas[1].Role)
}

func TestImportLibraryMissingFile(t *testing.T) {
	svc := NewService(&memoryPersonaRepo{}, nil, nil, study.Default(), zap.NewNop())

	count, err := svc.ImportLibrary(context.Background(), filepath.Join(t.TempDir(), "nope.json"))
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestImportLibraryRejectsIncompleteEntries(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "library.json")
	require.NoError(t, os.WriteFile(path, []byte(`[{"name": "No Category"}]`), 0o644))

	svc := NewService(&memoryPersonaRepo{}, nil, nil, study.Default(), zap.NewNop())

	_, err := svc.ImportLibrary(context.Background(), path)
	assert.ErrorContains(t, err, "missing name or category")
}

func TestGenerateIntervieweeParsesModelOutput(t *testing.T) {
	provider := &stubProvider{text: "**Name:** Beatriz Almeida\n- Age: 44\n- Position/Title: Chief Digital Officer\n\nBeatriz leads digital strategy at a retail group."}
	repo := &memoryPersonaRepo{}
	svc := NewService(repo, nil, newGenService(provider), study.Default(), zap.NewNop())

	p, err := svc.GenerateInterviewee(context.Background(), "stub-model", "clients")
	require.NoError(t, err)

	assert.Equal(t, "Beatriz Almeida", p.Name)
	assert.Equal(t, "clients", p.Category)
	assert.Equal(t, models.PersonaSourceGenerated, p.CreatedBy)
	assert.Contains(t, p.Background, "digital strategy")
	require.Len(t, repo.personas, 1)
}

func TestGenerateIntervieweeFallbackName(t *testing.T) {
	provider := &stubProvider{text: "A seasoned executive with two decades in consulting."}
	svc := NewService(&memoryPersonaRepo{}, nil, newGenService(provider), study.Default(), zap.NewNop())

	p, err := svc.GenerateInterviewee(context.Background(), "stub-model", "clients")
	require.NoError(t, err)
	assert.Equal(t, "Synthesized Clients", p.Name)
}

func TestGenerateIntervieweeRejectsDegradedOutput(t *testing.T) {
	provider := &stubProvider{err: providers.NewProviderError("stub", "stub-model", "server_error", "boom", 500, nil)}
	repo := &memoryPersonaRepo{}
	svc := NewService(repo, nil, newGenService(provider), study.Default(), zap.NewNop())

	_, err := svc.GenerateInterviewee(context.Background(), "stub-model", "clients")
	require.Error(t, err)
	assert.ErrorContains(t, err, "degraded")
	assert.Empty(t, repo.personas)
}

func TestGenerateIntervieweeWithoutProvider(t *testing.T) {
	svc := NewService(&memoryPersonaRepo{}, nil, nil, study.Default(), zap.NewNop())

	_, err := svc.GenerateInterviewee(context.Background(), "any", "clients")
	assert.ErrorContains(t, err, "requires a configured provider")
}

func TestGenerateInterviewerParsesModelOutput(t *testing.T) {
	provider := &stubProvider{text: "Name: Dr. Ada Novak\n- Age: 52\n- Professional background: 20 years as an investigative journalist\n\nAda favors a conversational style."}
	repo := &memoryPersonaRepo{}
	svc := NewService(repo, nil, newGenService(provider), study.Default(), zap.NewNop())

	p, err := svc.GenerateInterviewer(context.Background(), "stub-model")
	require.NoError(t, err)

	assert.Equal(t, "Dr. Ada Novak", p.Name)
	assert.Equal(t, InterviewerCategory, p.Category)
	assert.Equal(t, models.PersonaRoleInterviewer, p.Role)
	assert.Equal(t, "20 years as an investigative journalist", p.Position)
	assert.Equal(t, models.PersonaSourceGenerated, p.CreatedBy)
	require.Len(t, repo.personas, 1)

	interviewers, err := svc.Interviewers(context.Background())
	require.NoError(t, err)
	assert.Len(t, interviewers, 1)
}

func TestGenerateInterviewerRejectsDegradedOutput(t *testing.T) {
	provider := &stubProvider{err: providers.NewProviderError("stub", "stub-model", "server_error", "boom", 500, nil)}
	repo := &memoryPersonaRepo{}
	svc := NewService(repo, nil, newGenService(provider), study.Default(), zap.NewNop())

	_, err := svc.GenerateInterviewer(context.Background(), "stub-model")
	require.Error(t, err)
	assert.ErrorContains(t, err, "degraded")
	assert.Empty(t, repo.personas)
}

func TestGenerateInterviewerWithoutProvider(t *testing.T) {
	svc := NewService(&memoryPersonaRepo{}, nil, nil, study.Default(), zap.NewNop())

	_, err := svc.GenerateInterviewer(context.Background(), "any")
	assert.ErrorContains(t, err, "requires a configured provider")
}

func TestExtractField(t *testing.T) {
	tests := []struct {
		name  string
		text  string
		field string
		want  string
	}{
		{"plain", "Name: Joana Silva", "Name", "Joana Silva"},
		{"bulleted", "- Name: Joana Silva", "Name", "Joana Silva"},
		{"bold", "**Name:** Joana Silva", "Name", "Joana Silva"},
		{"case insensitive", "NAME: Joana Silva", "Name", "Joana Silva"},
		{"absent", "No labeled fields here", "Name", ""},
		{"empty value", "Name:\nPosition: CTO", "Name", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, extractField(tt.text, tt.field))
		})
	}
}
