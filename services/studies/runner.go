package studies

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/airesearch/interview-studio/internal/study"
	"github.com/airesearch/interview-studio/models"
	"github.com/airesearch/interview-studio/repositories"
	"github.com/airesearch/interview-studio/services/generation"
	"github.com/airesearch/interview-studio/services/interviews"
	"github.com/airesearch/interview-studio/services/personas"
	"github.com/airesearch/interview-studio/services/reports"
)

// Runner drives a full study: interviews for every category, analyses,
// stakeholder summaries, and the final report, persisting progress on
// the run row along the way.
type Runner struct {
	runs       repositories.RunRepository
	personas   *personas.Service
	interviews *interviews.Service
	reports    *reports.Service
	manifest   *study.Manifest
	logger     *zap.Logger
}

// NewRunner creates a new study runner
func NewRunner(
	runRepo repositories.RunRepository,
	personaSvc *personas.Service,
	interviewSvc *interviews.Service,
	reportSvc *reports.Service,
	manifest *study.Manifest,
	logger *zap.Logger,
) *Runner {
	return &Runner{
		runs:       runRepo,
		personas:   personaSvc,
		interviews: interviewSvc,
		reports:    reportSvc,
		manifest:   manifest,
		logger:     logger,
	}
}

// Execute runs the whole study against one provider and model. Degraded
// generations never stop a run; only persistence failures and context
// cancellation do. The returned run reflects its final persisted state.
func (r *Runner) Execute(ctx context.Context, provider, model string, opts generation.BatchOptions) (*models.StudyRun, error) {
	run := models.NewStudyRun(provider, model)
	if err := r.runs.Create(ctx, run); err != nil {
		return nil, err
	}

	run.MarkAsRunning()
	if err := r.runs.Update(ctx, run); err != nil {
		return nil, err
	}

	r.logger.Info("study run started",
		zap.String("run_id", run.ID.String()),
		zap.String("provider", provider),
		zap.String("model", model),
		zap.Int("categories", len(r.manifest.Categories)))

	if err := r.execute(ctx, run, opts); err != nil {
		r.finishFailed(ctx, run, err)
		return run, err
	}

	if err := r.runs.Update(ctx, run); err != nil {
		return run, err
	}

	r.logger.Info("study run completed",
		zap.String("run_id", run.ID.String()),
		zap.Int("interviews", run.InterviewCount),
		zap.Int("analyses", run.AnalysisCount),
		zap.Int("degraded", run.DegradedCount))

	return run, nil
}

func (r *Runner) execute(ctx context.Context, run *models.StudyRun, opts generation.BatchOptions) error {
	if err := r.personas.EnsureSeeded(ctx); err != nil {
		return err
	}

	interviewers, err := r.personas.Interviewers(ctx)
	if err != nil {
		return err
	}

	var (
		interviewCount int
		analysisCount  int
		degradedCount  int
		summaries      []*models.StakeholderSummary
	)

	for _, category := range r.manifest.CategoryKeys() {
		interviewees, err := r.personas.ByCategory(ctx, category)
		if err != nil {
			return err
		}
		if len(interviewees) == 0 {
			return fmt.Errorf("category %s: no personas seeded", category)
		}
		if limit := r.manifest.InterviewsPerCategory; limit > 0 && len(interviewees) > limit {
			interviewees = interviewees[:limit]
		}

		ivs, err := r.interviews.Conduct(ctx, run, category, interviewers, interviewees, opts)
		if err != nil {
			return err
		}

		names := personaNames(interviewers, interviewees)
		inputs := make([]interviews.AnalysisInput, len(ivs))
		for i, iv := range ivs {
			inputs[i] = interviews.AnalysisInput{
				Interview:       iv,
				InterviewerName: names[iv.InterviewerID],
				IntervieweeName: names[iv.IntervieweeID],
			}
		}

		analyses, err := r.interviews.Analyze(ctx, run, inputs, opts)
		if err != nil {
			return err
		}

		summary, err := r.reports.SummarizeCategory(ctx, run, category, analyses)
		if err != nil {
			return err
		}
		summaries = append(summaries, summary)

		interviewCount += len(ivs)
		analysisCount += len(analyses)
		for i, iv := range ivs {
			if iv.Degraded || analyses[i].Degraded {
				degradedCount++
			}
		}
	}

	report, fallback, err := r.reports.GenerateFinalReport(ctx, run, summaries)
	if err != nil {
		return err
	}
	if fallback {
		degradedCount++
	}

	run.SetFinalReport(report)
	run.MarkAsCompleted(interviewCount, analysisCount, degradedCount)
	return nil
}

// finishFailed records the terminal state of an aborted run. The run's
// own context may already be cancelled, so the write uses a detached
// one.
func (r *Runner) finishFailed(ctx context.Context, run *models.StudyRun, cause error) {
	if errors.Is(cause, context.Canceled) || errors.Is(cause, context.DeadlineExceeded) {
		run.MarkAsCancelled()
	} else {
		run.MarkAsFailed(cause.Error())
	}

	if err := r.runs.Update(context.WithoutCancel(ctx), run); err != nil {
		r.logger.Error("failed to persist run failure",
			zap.String("run_id", run.ID.String()),
			zap.Error(err))
	}
}

func personaNames(groups ...[]*models.Persona) map[uuid.UUID]string {
	names := map[uuid.UUID]string{}
	for _, group := range groups {
		for _, p := range group {
			names[p.ID] = p.Name
		}
	}
	return names
}
