package reports

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/airesearch/interview-studio/internal/study"
	"github.com/airesearch/interview-studio/models"
	"github.com/airesearch/interview-studio/prompts"
	"github.com/airesearch/interview-studio/repositories"
	"github.com/airesearch/interview-studio/services/generation"
)

const (
	// Prompt inputs are truncated so a handful of long analyses cannot
	// push the synthesis prompt past the model's context window.
	analysisExcerptLimit = 2000
	summaryExcerptLimit  = 3000

	summaryMaxTokens     = 4000
	finalReportMaxTokens = 8000
)

// Markers bounding the presentation section of the final report
const (
	presentationStart = "## Key Findings for Presentation"
	noBulletsFound    = "No presentation bullets found."
)

var presentationEnds = []string{
	"## Stakeholder Perspectives",
	"## Cross-Category Analysis",
}

// Service synthesizes per-category stakeholder summaries and the final
// cross-category research report.
type Service struct {
	summaries repositories.SummaryRepository
	gen       *generation.Service
	manifest  *study.Manifest
	logger    *zap.Logger
}

// NewService creates a new report service
func NewService(summaryRepo repositories.SummaryRepository, gen *generation.Service, manifest *study.Manifest, logger *zap.Logger) *Service {
	return &Service{
		summaries: summaryRepo,
		gen:       gen,
		manifest:  manifest,
		logger:    logger,
	}
}

// SummarizeCategory synthesizes one stakeholder group's analyses into
// an executive summary with presentation bullets. A degraded synthesis
// still yields a persisted summary, flagged so exports can mark it.
func (s *Service) SummarizeCategory(ctx context.Context, run *models.StudyRun, category string, analyses []*models.Analysis) (*models.StakeholderSummary, error) {
	if len(analyses) == 0 {
		return nil, fmt.Errorf("category %s: no analyses to summarize", category)
	}

	parts := make([]string, 0, len(analyses))
	for i, a := range analyses {
		parts = append(parts, fmt.Sprintf("ANALYSIS %d:\n%s", i+1, excerpt(a.RawText, analysisExcerptLimit)))
	}

	prompt := prompts.Render(prompts.StakeholderSummary, map[string]string{
		"count":    strconv.Itoa(len(analyses)),
		"category": s.manifest.DisplayName(category),
		"analyses": strings.Join(parts, "\n\n"),
	})

	res, err := s.gen.Generate(ctx, &generation.Request{
		Model:     run.Model,
		Prompt:    prompt,
		MaxTokens: summaryMaxTokens,
	})
	if err != nil {
		return nil, fmt.Errorf("category %s: %w", category, err)
	}

	if res.Degraded {
		s.logger.Warn("stakeholder summary degraded",
			zap.String("category", category),
			zap.String("error_kind", res.ErrKind))
	}

	summary := models.NewStakeholderSummary(run.ID, category, res.Text, len(analyses), res.Degraded)
	if err := s.summaries.Create(ctx, summary); err != nil {
		return nil, err
	}

	return summary, nil
}

// GenerateFinalReport synthesizes the cross-category report from all
// stakeholder summaries. When the synthesis degrades, the summaries are
// merged into a fallback report instead, so a run always ends with a
// usable document. The second return reports whether the fallback was
// used.
func (s *Service) GenerateFinalReport(ctx context.Context, run *models.StudyRun, summaries []*models.StakeholderSummary) (string, bool, error) {
	if len(summaries) == 0 {
		return "", false, fmt.Errorf("no stakeholder summaries to report on")
	}

	names := make([]string, 0, len(summaries))
	parts := make([]string, 0, len(summaries))
	for _, sum := range summaries {
		name := s.manifest.DisplayName(sum.Category)
		names = append(names, "- "+name)
		parts = append(parts, fmt.Sprintf("SUMMARY FOR %s:\n%s", strings.ToUpper(name), excerpt(sum.Summary, summaryExcerptLimit)))
	}

	prompt := prompts.Render(prompts.FinalReport, map[string]string{
		"count":      strconv.Itoa(len(summaries)),
		"categories": strings.Join(names, "\n"),
		"summaries":  strings.Join(parts, "\n\n"),
	})

	res, err := s.gen.Generate(ctx, &generation.Request{
		Model:     run.Model,
		Prompt:    prompt,
		MaxTokens: finalReportMaxTokens,
	})
	if err != nil {
		return "", false, err
	}

	if res.Degraded {
		s.logger.Warn("final report degraded, merging summaries as fallback",
			zap.String("error_kind", res.ErrKind))
		return s.mergedReport(summaries), true, nil
	}

	return res.Text, false, nil
}

// mergedReport concatenates the stakeholder summaries under the report
// heading when the cross-category synthesis could not be generated.
func (s *Service) mergedReport(summaries []*models.StakeholderSummary) string {
	var b strings.Builder
	b.WriteString("# AI in Consulting: Comprehensive Research Report\n\n")
	b.WriteString("*Note: The cross-category synthesis could not be generated. ")
	b.WriteString("This report merges the individual stakeholder summaries.*\n")

	for _, sum := range summaries {
		b.WriteString("\n## ")
		b.WriteString(s.manifest.DisplayName(sum.Category))
		b.WriteString("\n\n")
		b.WriteString(strings.TrimSpace(sum.Summary))
		b.WriteString("\n")
	}

	return b.String()
}

// ExtractPresentationBullets slices the presentation section out of a
// final report, from its heading to the next top-level section.
func ExtractPresentationBullets(report string) string {
	start := strings.Index(report, presentationStart)
	if start < 0 {
		return noBulletsFound
	}

	section := report[start:]
	end := len(section)
	for _, marker := range presentationEnds {
		if idx := strings.Index(section[len(presentationStart):], marker); idx >= 0 {
			if candidate := idx + len(presentationStart); candidate < end {
				end = candidate
			}
		}
	}

	return strings.TrimSpace(section[:end])
}

// excerpt caps a prompt input, marking the cut so the model knows the
// text continues.
func excerpt(text string, limit int) string {
	if len(text) <= limit {
		return text
	}
	return text[:limit] + "\n...(truncated)"
}
