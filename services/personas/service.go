package personas

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"

	"github.com/airesearch/interview-studio/internal/study"
	"github.com/airesearch/interview-studio/models"
	"github.com/airesearch/interview-studio/prompts"
	"github.com/airesearch/interview-studio/repositories"
	"github.com/airesearch/interview-studio/services/generation"
)

// InterviewerCategory is the pseudo-category interviewers are stored
// under; they belong to the research team, not a stakeholder group.
const InterviewerCategory = "interviewers"

// Service manages the persona pool: seeding from the study manifest,
// importing saved libraries, and synthesizing new personas with a model.
type Service struct {
	repo     repositories.PersonaRepository
	txm      repositories.TransactionManager
	gen      *generation.Service
	manifest *study.Manifest
	logger   *zap.Logger
}

// NewService creates a new persona service. The transaction manager and
// the generation service may be nil when only seeded personas are needed.
func NewService(repo repositories.PersonaRepository, txm repositories.TransactionManager, gen *generation.Service, manifest *study.Manifest, logger *zap.Logger) *Service {
	return &Service{
		repo:     repo,
		txm:      txm,
		gen:      gen,
		manifest: manifest,
		logger:   logger,
	}
}

// Seed replaces the persona pool with the manifest's interviewers and
// seeded interviewees. Existing personas in the affected categories are
// removed first, so re-seeding is safe. With a transaction manager the
// delete-then-insert sequence is atomic, so a failed re-seed cannot
// leave a category half empty.
func (s *Service) Seed(ctx context.Context) error {
	if s.txm == nil {
		return s.seed(ctx)
	}
	return s.txm.InTransaction(ctx, func(ctx context.Context, _ repositories.Transaction) error {
		return s.seed(ctx)
	})
}

func (s *Service) seed(ctx context.Context) error {
	if err := s.repo.DeleteByCategory(ctx, InterviewerCategory); err != nil {
		return err
	}
	for _, seed := range s.manifest.Interviewers {
		p := models.NewPersona(seed.Name, InterviewerCategory, models.PersonaRoleInterviewer,
			seed.Role, "", models.PersonaSourceManifest)
		if err := s.repo.Create(ctx, p); err != nil {
			return fmt.Errorf("failed to seed interviewer %s: %w", seed.Name, err)
		}
	}

	for _, key := range s.manifest.CategoryKeys() {
		if err := s.repo.DeleteByCategory(ctx, key); err != nil {
			return err
		}
		for _, seed := range s.manifest.Personas[key] {
			p := models.NewPersona(seed.Name, key, models.PersonaRoleInterviewee,
				seed.Role, "", models.PersonaSourceManifest)
			if err := s.repo.Create(ctx, p); err != nil {
				return fmt.Errorf("failed to seed persona %s in %s: %w", seed.Name, key, err)
			}
		}
	}

	s.logger.Info("persona pool seeded from manifest",
		zap.Int("interviewers", len(s.manifest.Interviewers)),
		zap.Int("categories", len(s.manifest.Categories)))
	return nil
}

// EnsureSeeded seeds the pool only when it is empty
func (s *Service) EnsureSeeded(ctx context.Context) error {
	existing, err := s.repo.List(ctx, repositories.PersonaFilter{})
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		return nil
	}
	return s.Seed(ctx)
}

// Interviewers returns the interviewer pool in creation order
func (s *Service) Interviewers(ctx context.Context) ([]*models.Persona, error) {
	interviewers, err := s.repo.List(ctx, repositories.PersonaFilter{Role: models.PersonaRoleInterviewer})
	if err != nil {
		return nil, err
	}
	if len(interviewers) == 0 {
		return nil, fmt.Errorf("no interviewers available, seed personas first")
	}
	return interviewers, nil
}

// ByCategory returns the interviewees seeded for a stakeholder category
func (s *Service) ByCategory(ctx context.Context, category string) ([]*models.Persona, error) {
	return s.repo.List(ctx, repositories.PersonaFilter{
		Category: category,
		Role:     models.PersonaRoleInterviewee,
	})
}

// libraryEntry is one persona in a saved library file
type libraryEntry struct {
	Name       string `json:"name"`
	Category   string `json:"category"`
	Role       string `json:"role"`
	Position   string `json:"position"`
	Background string `json:"background"`
}

// ImportLibrary loads personas from a JSON library file into the pool.
// Entries without a role default to interviewee. Returns how many
// personas were imported; a missing file imports zero.
func (s *Service) ImportLibrary(ctx context.Context, path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, fmt.Errorf("failed to read persona library %s: %w", path, err)
	}

	var entries []libraryEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return 0, fmt.Errorf("failed to parse persona library %s: %w", path, err)
	}

	imported := 0
	for _, e := range entries {
		if e.Name == "" || e.Category == "" {
			return imported, fmt.Errorf("persona library %s: entry %d missing name or category", path, imported)
		}
		role := models.PersonaRoleInterviewee
		if e.Role == string(models.PersonaRoleInterviewer) {
			role = models.PersonaRoleInterviewer
		}
		p := models.NewPersona(e.Name, e.Category, role, e.Position, e.Background, models.PersonaSourceLibrary)
		if err := s.repo.Create(ctx, p); err != nil {
			return imported, fmt.Errorf("failed to import persona %s: %w", e.Name, err)
		}
		imported++
	}

	s.logger.Info("persona library imported",
		zap.String("path", path),
		zap.Int("count", imported))
	return imported, nil
}

// GenerateInterviewee asks the model to invent a stakeholder persona
// for a category and persists it. A degraded generation is an error
// here; an invented persona with placeholder text is worse than none.
func (s *Service) GenerateInterviewee(ctx context.Context, model, category string) (*models.Persona, error) {
	if s.gen == nil {
		return nil, fmt.Errorf("persona generation requires a configured provider")
	}

	prompt := prompts.Render(prompts.IntervieweePersona, map[string]string{
		"category":   s.manifest.DisplayName(category),
		"study_name": s.manifest.Name,
	})

	res, err := s.gen.Generate(ctx, &generation.Request{
		Model:       model,
		Prompt:      prompt,
		MaxTokens:   1500,
		Temperature: 0.9,
	})
	if err != nil {
		return nil, err
	}
	if res.Degraded {
		return nil, fmt.Errorf("persona generation for %s degraded after %d attempts (%s)",
			category, res.Attempts, res.ErrKind)
	}

	name := extractField(res.Text, "Name")
	if name == "" {
		name = "Synthesized " + s.manifest.DisplayName(category)
	}
	position := extractField(res.Text, "Position")
	if position == "" {
		position = extractField(res.Text, "Position/Title")
	}

	p := models.NewPersona(name, category, models.PersonaRoleInterviewee,
		position, res.Text, models.PersonaSourceGenerated)
	if err := s.repo.Create(ctx, p); err != nil {
		return nil, err
	}

	s.logger.Info("persona generated",
		zap.String("name", name),
		zap.String("category", category),
		zap.String("model", model))
	return p, nil
}

// GenerateInterviewer asks the model to invent an interviewer persona
// and persists it in the interviewer pool. Like GenerateInterviewee, a
// degraded generation is an error.
func (s *Service) GenerateInterviewer(ctx context.Context, model string) (*models.Persona, error) {
	if s.gen == nil {
		return nil, fmt.Errorf("persona generation requires a configured provider")
	}

	prompt := prompts.Render(prompts.InterviewerPersona, map[string]string{
		"study_name": s.manifest.Name,
	})

	res, err := s.gen.Generate(ctx, &generation.Request{
		Model:       model,
		Prompt:      prompt,
		MaxTokens:   1500,
		Temperature: 0.9,
	})
	if err != nil {
		return nil, err
	}
	if res.Degraded {
		return nil, fmt.Errorf("interviewer generation degraded after %d attempts (%s)",
			res.Attempts, res.ErrKind)
	}

	name := extractField(res.Text, "Name")
	if name == "" {
		name = "Synthesized Interviewer"
	}
	position := extractField(res.Text, "Professional background")
	if position == "" {
		position = extractField(res.Text, "Background")
	}

	p := models.NewPersona(name, InterviewerCategory, models.PersonaRoleInterviewer,
		position, res.Text, models.PersonaSourceGenerated)
	if err := s.repo.Create(ctx, p); err != nil {
		return nil, err
	}

	s.logger.Info("interviewer generated",
		zap.String("name", name),
		zap.String("model", model))
	return p, nil
}

// extractField pulls the value of a "Field: value" line out of model
// output, tolerating list markers and markdown emphasis.
func extractField(text, field string) string {
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimLeft(strings.TrimSpace(line), "-* ")
		line = strings.ReplaceAll(line, "**", "")
		rest, ok := cutPrefixFold(line, field+":")
		if !ok {
			continue
		}
		if v := strings.TrimSpace(rest); v != "" {
			return v
		}
	}
	return ""
}

func cutPrefixFold(s, prefix string) (string, bool) {
	if len(s) < len(prefix) || !strings.EqualFold(s[:len(prefix)], prefix) {
		return s, false
	}
	return s[len(prefix):], true
}
