package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/airesearch/interview-studio/config"
	"github.com/airesearch/interview-studio/internal/export"
	"github.com/airesearch/interview-studio/internal/scripts"
	"github.com/airesearch/interview-studio/internal/study"
	"github.com/airesearch/interview-studio/models"
	"github.com/airesearch/interview-studio/repositories"
	"github.com/airesearch/interview-studio/repositories/sqlite"
	"github.com/airesearch/interview-studio/services/generation"
	"github.com/airesearch/interview-studio/services/interviews"
	"github.com/airesearch/interview-studio/services/personas"
	"github.com/airesearch/interview-studio/services/providers"
	"github.com/airesearch/interview-studio/services/providers/anthropic"
	"github.com/airesearch/interview-studio/services/providers/google"
	"github.com/airesearch/interview-studio/services/providers/openai"
	"github.com/airesearch/interview-studio/services/reports"
	"github.com/airesearch/interview-studio/services/studies"
)

// Dependencies holds all application dependencies. This is the central
// wiring point for dependency injection.
type Dependencies struct {
	// Infrastructure
	Config *config.Config
	DB     *sqlite.DB
	Logger *zap.Logger

	// Repositories
	Personas   repositories.PersonaRepository
	Interviews repositories.InterviewRepository
	Analyses   repositories.AnalysisRepository
	Summaries  repositories.SummaryRepository
	Runs       repositories.RunRepository
	TxManager  repositories.TransactionManager

	// Study material
	Manifest *study.Manifest
	Scripts  map[string]string

	// Provider Registry
	Registry *providers.Registry

	// Export
	Exporter *export.Writer
}

// NewDependencies creates and wires up all application dependencies
func NewDependencies(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Dependencies, error) {
	deps := &Dependencies{
		Config: cfg,
		Logger: logger,
	}

	if err := deps.initDatabase(ctx, cfg); err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	deps.initRepositories()

	if err := deps.initStudy(cfg); err != nil {
		return nil, fmt.Errorf("failed to load study material: %w", err)
	}

	if err := deps.initProviders(cfg); err != nil {
		return nil, fmt.Errorf("failed to initialize providers: %w", err)
	}

	deps.Exporter = export.NewWriter(cfg.Export.Dir, logger)

	logger.Info("all dependencies initialized")
	return deps, nil
}

func (d *Dependencies) initDatabase(ctx context.Context, cfg *config.Config) error {
	db, err := sqlite.NewDB(cfg.Database, d.Logger)
	if err != nil {
		return err
	}

	if err := db.InitSchema(ctx); err != nil {
		return err
	}

	d.DB = db
	return nil
}

func (d *Dependencies) initRepositories() {
	d.Personas = sqlite.NewPersonaRepository(d.DB, d.Logger)
	d.Interviews = sqlite.NewInterviewRepository(d.DB, d.Logger)
	d.Analyses = sqlite.NewAnalysisRepository(d.DB, d.Logger)
	d.Summaries = sqlite.NewSummaryRepository(d.DB, d.Logger)
	d.Runs = sqlite.NewRunRepository(d.DB, d.Logger)
	d.TxManager = sqlite.NewTransactionManager(d.DB, d.Logger)

	d.Logger.Info("repositories initialized")
}

func (d *Dependencies) initStudy(cfg *config.Config) error {
	manifest, err := study.Load(cfg.Study.ManifestPath)
	if err != nil {
		return err
	}
	d.Manifest = manifest

	parsed, err := scripts.Load(cfg.Study.ScriptsDir)
	if err != nil {
		return err
	}
	d.Scripts = parsed

	d.Logger.Info("study material loaded",
		zap.String("study", manifest.Name),
		zap.Int("categories", len(manifest.Categories)),
		zap.Int("scripts", len(parsed)))
	return nil
}

// initProviders registers an adapter for every vendor with an API key
func (d *Dependencies) initProviders(cfg *config.Config) error {
	registry := providers.NewRegistry()

	if cfg.Providers.Anthropic.APIKey != "" {
		adapter := anthropic.NewAdapter(providers.Config{
			APIKey:  cfg.Providers.Anthropic.APIKey,
			BaseURL: cfg.Providers.Anthropic.BaseURL,
			Timeout: cfg.Providers.Anthropic.Timeout,
		})
		if err := registry.RegisterProvider(adapter); err != nil {
			return err
		}
		d.Logger.Info("registered anthropic provider")
	}

	if cfg.Providers.OpenAI.APIKey != "" {
		adapter := openai.NewAdapter(providers.Config{
			APIKey:  cfg.Providers.OpenAI.APIKey,
			BaseURL: cfg.Providers.OpenAI.BaseURL,
			Timeout: cfg.Providers.OpenAI.Timeout,
		})
		if err := registry.RegisterProvider(adapter); err != nil {
			return err
		}
		d.Logger.Info("registered openai provider")
	}

	if cfg.Providers.Google.APIKey != "" {
		adapter := google.NewAdapter(providers.Config{
			APIKey:  cfg.Providers.Google.APIKey,
			BaseURL: cfg.Providers.Google.BaseURL,
			Timeout: cfg.Providers.Google.Timeout,
		})
		if err := registry.RegisterProvider(adapter); err != nil {
			return err
		}
		d.Logger.Info("registered google provider")
	}

	if len(registry.ListProviders()) == 0 {
		d.Logger.Warn("no LLM providers configured, runs will not be possible")
	}

	d.Registry = registry
	return nil
}

// GenerationServiceFor builds a generation service around one
// registered provider, using the configured retry behavior.
func (d *Dependencies) GenerationServiceFor(providerName string) (*generation.Service, error) {
	provider, err := d.Registry.GetProvider(providerName)
	if err != nil {
		return nil, fmt.Errorf("provider %s: %w", providerName, err)
	}

	return generation.NewService(provider, generation.Config{
		MaxAttempts: d.Config.Generation.MaxAttempts,
		BaseDelay:   d.Config.Generation.BaseDelay,
		Concurrency: d.Config.Generation.Concurrency,
		MaxTokens:   d.Config.Generation.MaxTokens,
	}, d.Logger), nil
}

// PersonaService builds the persona service. The generation service may
// be nil when only seeding is needed.
func (d *Dependencies) PersonaService(gen *generation.Service) *personas.Service {
	return personas.NewService(d.Personas, d.TxManager, gen, d.Manifest, d.Logger)
}

// RunnerFor builds a study runner bound to one provider
func (d *Dependencies) RunnerFor(providerName string) (*studies.Runner, error) {
	gen, err := d.GenerationServiceFor(providerName)
	if err != nil {
		return nil, err
	}

	personaSvc := d.PersonaService(gen)
	interviewSvc := interviews.NewService(d.Interviews, d.Analyses, gen, d.Scripts, d.Logger)
	reportSvc := reports.NewService(d.Summaries, gen, d.Manifest, d.Logger)

	return studies.NewRunner(d.Runs, personaSvc, interviewSvc, reportSvc, d.Manifest, d.Logger), nil
}

// RebuildReports re-synthesizes a past run's stakeholder summaries and
// final report from its persisted analyses, using the run's own
// provider and model. Existing summaries are replaced.
func (d *Dependencies) RebuildReports(ctx context.Context, runID uuid.UUID) (*models.StudyRun, error) {
	run, err := d.Runs.GetByID(ctx, runID)
	if err != nil {
		return nil, err
	}

	gen, err := d.GenerationServiceFor(run.Provider)
	if err != nil {
		return nil, err
	}
	reportSvc := reports.NewService(d.Summaries, gen, d.Manifest, d.Logger)

	if err := d.Summaries.DeleteByRun(ctx, runID); err != nil {
		return nil, err
	}

	var summaries []*models.StakeholderSummary
	for _, category := range d.Manifest.CategoryKeys() {
		ivs, err := d.Interviews.List(ctx, repositories.InterviewFilter{RunID: runID, Category: category})
		if err != nil {
			return nil, err
		}

		analyses := make([]*models.Analysis, 0, len(ivs))
		for _, iv := range ivs {
			analysis, err := d.Analyses.GetByInterviewID(ctx, iv.ID)
			if err != nil {
				if isNotFound(err) {
					continue
				}
				return nil, err
			}
			analyses = append(analyses, analysis)
		}
		if len(analyses) == 0 {
			d.Logger.Warn("no analyses for category, skipping",
				zap.String("run_id", runID.String()),
				zap.String("category", category))
			continue
		}

		summary, err := reportSvc.SummarizeCategory(ctx, run, category, analyses)
		if err != nil {
			return nil, err
		}
		summaries = append(summaries, summary)
	}

	report, _, err := reportSvc.GenerateFinalReport(ctx, run, summaries)
	if err != nil {
		return nil, err
	}

	run.SetFinalReport(report)
	if err := d.Runs.Update(ctx, run); err != nil {
		return nil, err
	}

	return run, nil
}

// ExportRun assembles everything persisted for a run and writes the
// export tree. Returns the run directory.
func (d *Dependencies) ExportRun(ctx context.Context, runID uuid.UUID) (string, error) {
	run, err := d.Runs.GetByID(ctx, runID)
	if err != nil {
		return "", err
	}

	ivs, err := d.Interviews.List(ctx, repositories.InterviewFilter{RunID: runID})
	if err != nil {
		return "", err
	}

	summaries, err := d.Summaries.ListByRun(ctx, runID)
	if err != nil {
		return "", err
	}

	names := map[uuid.UUID]string{}
	records := make([]export.Record, 0, len(ivs))
	for _, iv := range ivs {
		analysis, err := d.Analyses.GetByInterviewID(ctx, iv.ID)
		if err != nil && !isNotFound(err) {
			return "", err
		}
		records = append(records, export.Record{
			Interview:       iv,
			Analysis:        analysis,
			InterviewerName: d.personaName(ctx, names, iv.InterviewerID),
			IntervieweeName: d.personaName(ctx, names, iv.IntervieweeID),
		})
	}

	return d.Exporter.Write(&export.Bundle{
		Run:         run,
		Manifest:    d.Manifest,
		Records:     records,
		Summaries:   summaries,
		FinalReport: run.FinalReport,
	})
}

func (d *Dependencies) personaName(ctx context.Context, cache map[uuid.UUID]string, id uuid.UUID) string {
	if name, ok := cache[id]; ok {
		return name
	}

	name := "unknown"
	if p, err := d.Personas.GetByID(ctx, id); err == nil {
		name = p.Name
	}
	cache[id] = name
	return name
}

func isNotFound(err error) bool {
	return errors.Is(err, repositories.ErrNotFound)
}

// Close gracefully shuts down all dependencies
func (d *Dependencies) Close() error {
	d.Logger.Info("shutting down dependencies")

	if d.DB != nil {
		if err := d.DB.Close(); err != nil {
			return fmt.Errorf("failed to close database: %w", err)
		}
	}

	_ = d.Logger.Sync()
	return nil
}
