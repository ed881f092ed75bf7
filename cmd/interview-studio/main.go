package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/airesearch/interview-studio/app"
	"github.com/airesearch/interview-studio/config"
	"github.com/airesearch/interview-studio/internal/observability"
	"github.com/airesearch/interview-studio/internal/scripts"
	"github.com/airesearch/interview-studio/models"
	"github.com/airesearch/interview-studio/repositories"
	"github.com/airesearch/interview-studio/routes"
	"github.com/airesearch/interview-studio/services/generation"
)

const usage = `usage: interview-studio <command> [flags]

commands:
  personas seed                     seed the persona pool from the study manifest
  personas import [file]            import a persona library (JSON)
  personas generate -provider -model [-role interviewee -category KEY]
                                    synthesize one persona with a model
  scripts parse <document>          split an interview script document by category
  run -provider -model [-sequential]
                                    run the full study and export the results
  report [run-id|latest]            re-synthesize a run's summaries and final report
  export [run-id|latest]            export a past run's material
  serve                             start the read API server
`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	cfg, err := config.New()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger, err := observability.NewLogger(cfg.Observability.LogLevel, cfg.Observability.LogFormat)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to build logger: %v\n", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	deps, err := app.NewDependencies(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("failed to initialize", zap.Error(err))
	}
	defer func() { _ = deps.Close() }()

	switch os.Args[1] {
	case "personas":
		err = runPersonas(ctx, deps, os.Args[2:])
	case "scripts":
		err = runScripts(deps, os.Args[2:])
	case "run":
		err = runStudy(ctx, deps, os.Args[2:])
	case "report":
		err = runReport(ctx, deps, os.Args[2:])
	case "export":
		err = runExport(ctx, deps, os.Args[2:])
	case "serve":
		err = serve(ctx, deps)
	default:
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	if err != nil {
		logger.Fatal("command failed", zap.String("command", os.Args[1]), zap.Error(err))
	}
}

func runPersonas(ctx context.Context, deps *app.Dependencies, args []string) error {
	if len(args) < 1 {
		return errors.New("personas: expected subcommand seed, import, or generate")
	}

	switch args[0] {
	case "seed":
		return deps.PersonaService(nil).Seed(ctx)

	case "import":
		path := deps.Config.Study.PersonaLibraryPath
		if len(args) > 1 {
			path = args[1]
		}
		if path == "" {
			return errors.New("personas import: no library path given or configured")
		}
		count, err := deps.PersonaService(nil).ImportLibrary(ctx, path)
		if err != nil {
			return err
		}
		deps.Logger.Info("import finished", zap.Int("personas", count))
		return nil

	case "generate":
		fs := flag.NewFlagSet("personas generate", flag.ExitOnError)
		provider := fs.String("provider", "", "provider name (anthropic, openai, google)")
		model := fs.String("model", "", "model identifier")
		role := fs.String("role", "interviewee", "persona role (interviewer or interviewee)")
		category := fs.String("category", "", "stakeholder category key (interviewee only)")
		if err := fs.Parse(args[1:]); err != nil {
			return err
		}
		if *provider == "" || *model == "" {
			return errors.New("personas generate: -provider and -model are required")
		}

		gen, err := deps.GenerationServiceFor(*provider)
		if err != nil {
			return err
		}
		svc := deps.PersonaService(gen)

		var persona *models.Persona
		switch *role {
		case "interviewer":
			persona, err = svc.GenerateInterviewer(ctx, *model)
		case "interviewee":
			if *category == "" {
				return errors.New("personas generate: -category is required for interviewees")
			}
			persona, err = svc.GenerateInterviewee(ctx, *model, *category)
		default:
			return fmt.Errorf("personas generate: unknown role %q", *role)
		}
		if err != nil {
			return err
		}
		deps.Logger.Info("persona created",
			zap.String("name", persona.Name),
			zap.String("role", string(persona.Role)),
			zap.String("category", persona.Category))
		return nil

	default:
		return fmt.Errorf("personas: unknown subcommand %q", args[0])
	}
}

func runScripts(deps *app.Dependencies, args []string) error {
	if len(args) < 1 {
		return errors.New("scripts: expected subcommand parse <document>")
	}
	if args[0] != "parse" || len(args) < 2 {
		return errors.New("scripts: expected subcommand parse <document>")
	}

	parsed, err := scripts.ParseFile(args[1])
	if err != nil {
		return err
	}
	if len(parsed) == 0 {
		return fmt.Errorf("no category sections found in %s", args[1])
	}

	if err := scripts.Save(deps.Config.Study.ScriptsDir, parsed); err != nil {
		return err
	}

	deps.Logger.Info("scripts parsed",
		zap.Int("categories", len(parsed)),
		zap.String("dir", deps.Config.Study.ScriptsDir))
	return nil
}

func runStudy(ctx context.Context, deps *app.Dependencies, args []string) error {
	fs := flag.NewFlagSet("run", flag.ExitOnError)
	provider := fs.String("provider", "", "provider name (anthropic, openai, google)")
	model := fs.String("model", "", "model identifier")
	sequential := fs.Bool("sequential", false, "run interviews one at a time")
	concurrency := fs.Int("concurrency", 0, "override configured interview concurrency")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *provider == "" || *model == "" {
		return errors.New("run: -provider and -model are required")
	}

	if err := deps.Registry.ValidateModel(*model); err != nil {
		return fmt.Errorf("model %s: %w", *model, err)
	}

	runner, err := deps.RunnerFor(*provider)
	if err != nil {
		return err
	}

	run, err := runner.Execute(ctx, *provider, *model, generation.BatchOptions{
		Sequential:  *sequential,
		Concurrency: *concurrency,
	})
	if err != nil {
		return err
	}

	dir, err := deps.ExportRun(ctx, run.ID)
	if err != nil {
		return fmt.Errorf("run completed but export failed: %w", err)
	}

	deps.Logger.Info("study finished",
		zap.String("run_id", run.ID.String()),
		zap.Int("interviews", run.InterviewCount),
		zap.Int("degraded", run.DegradedCount),
		zap.String("export_dir", dir))
	return nil
}

// resolveRunID turns an optional "latest" or UUID argument into a run ID
func resolveRunID(ctx context.Context, deps *app.Dependencies, args []string, command string) (uuid.UUID, error) {
	if len(args) == 0 || args[0] == "latest" {
		run, err := deps.Runs.GetLatest(ctx)
		if err != nil {
			if errors.Is(err, repositories.ErrNotFound) {
				return uuid.Nil, fmt.Errorf("%s: no runs recorded yet", command)
			}
			return uuid.Nil, err
		}
		return run.ID, nil
	}

	runID, err := uuid.Parse(args[0])
	if err != nil {
		return uuid.Nil, fmt.Errorf("%s: invalid run ID %q", command, args[0])
	}
	return runID, nil
}

func runReport(ctx context.Context, deps *app.Dependencies, args []string) error {
	runID, err := resolveRunID(ctx, deps, args, "report")
	if err != nil {
		return err
	}

	run, err := deps.RebuildReports(ctx, runID)
	if err != nil {
		return err
	}

	deps.Logger.Info("reports rebuilt",
		zap.String("run_id", run.ID.String()),
		zap.Int("report_chars", len(run.FinalReport)))
	return nil
}

func runExport(ctx context.Context, deps *app.Dependencies, args []string) error {
	runID, err := resolveRunID(ctx, deps, args, "export")
	if err != nil {
		return err
	}

	dir, err := deps.ExportRun(ctx, runID)
	if err != nil {
		return err
	}

	deps.Logger.Info("run exported",
		zap.String("run_id", runID.String()),
		zap.String("dir", dir))
	return nil
}

func serve(ctx context.Context, deps *app.Dependencies) error {
	srv := &http.Server{
		Addr:         deps.Config.Server.Address(),
		Handler:      routes.SetupRoutes(deps),
		ReadTimeout:  deps.Config.Server.ReadTimeout,
		WriteTimeout: deps.Config.Server.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		deps.Logger.Info("api server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	deps.Logger.Info("shutting down api server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), deps.Config.Server.ShutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
