package export

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/airesearch/interview-studio/internal/study"
	"github.com/airesearch/interview-studio/models"
	"github.com/airesearch/interview-studio/services/reports"
)

// Record is one interview plus everything exported alongside it
type Record struct {
	Interview       *models.Interview
	Analysis        *models.Analysis
	InterviewerName string
	IntervieweeName string
}

// Bundle is the full material of one study run, ready to export
type Bundle struct {
	Run         *models.StudyRun
	Manifest    *study.Manifest
	Records     []Record
	Summaries   []*models.StakeholderSummary
	FinalReport string
}

// combination is one row of interview_combinations.json
type combination struct {
	InterviewID string `json:"interview_id"`
	Category    string `json:"category"`
	Interviewer string `json:"interviewer"`
	Interviewee string `json:"interviewee"`
	Degraded    bool   `json:"degraded"`
}

// Writer lays a study run out as a directory tree of text, markdown,
// and JSON files.
type Writer struct {
	baseDir string
	logger  *zap.Logger

	// now is replaceable in tests so directory names are predictable
	now func() time.Time
}

// NewWriter creates a writer rooted at baseDir
func NewWriter(baseDir string, logger *zap.Logger) *Writer {
	return &Writer{
		baseDir: baseDir,
		logger:  logger,
		now:     time.Now,
	}
}

// Write exports a bundle under a timestamped run directory and returns
// its path. The tree is:
//
//	<base>/<timestamp>_<provider>_<model>/
//	  interviews/<category>/<interviewee>.txt
//	  reports/individual/<category>_<interviewee>.md
//	  reports/stakeholder_groups/<category>.md
//	  reports/summary/final_report.md
//	  reports/presentation/presentation_bullets.md
//	  interview_combinations.json
//	  interview_summary.md
func (w *Writer) Write(bundle *Bundle) (string, error) {
	stamp := w.now().Format("20060102_150405")
	runDir := filepath.Join(w.baseDir, fmt.Sprintf("%s_%s_%s",
		stamp, safeName(bundle.Run.Provider), safeName(bundle.Run.Model)))

	for _, sub := range []string{
		"interviews",
		filepath.Join("reports", "individual"),
		filepath.Join("reports", "stakeholder_groups"),
		filepath.Join("reports", "summary"),
		filepath.Join("reports", "presentation"),
	} {
		if err := os.MkdirAll(filepath.Join(runDir, sub), 0o755); err != nil {
			return "", fmt.Errorf("failed to create export dir: %w", err)
		}
	}

	if err := w.writeInterviews(runDir, bundle); err != nil {
		return "", err
	}
	if err := w.writeAnalyses(runDir, bundle); err != nil {
		return "", err
	}
	if err := w.writeSummaries(runDir, bundle); err != nil {
		return "", err
	}
	if err := w.writeFinalReport(runDir, bundle); err != nil {
		return "", err
	}
	if err := w.writeCombinations(runDir, bundle); err != nil {
		return "", err
	}
	if err := w.writeRunSummary(runDir, bundle); err != nil {
		return "", err
	}

	w.logger.Info("study run exported",
		zap.String("run_id", bundle.Run.ID.String()),
		zap.String("dir", runDir),
		zap.Int("interviews", len(bundle.Records)))

	return runDir, nil
}

func (w *Writer) writeInterviews(runDir string, bundle *Bundle) error {
	for _, rec := range bundle.Records {
		dir := filepath.Join(runDir, "interviews", safeName(rec.Interview.Category))
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create category dir: %w", err)
		}

		var b strings.Builder
		fmt.Fprintf(&b, "INTERVIEW: %s\n", rec.IntervieweeName)
		fmt.Fprintf(&b, "ROLE: %s\n", bundle.Manifest.DisplayName(rec.Interview.Category))
		fmt.Fprintf(&b, "INTERVIEWER: %s\n", rec.InterviewerName)
		fmt.Fprintf(&b, "MODEL: %s/%s\n", rec.Interview.Provider, rec.Interview.ModelUsed)
		fmt.Fprintf(&b, "DATE: %s\n", rec.Interview.CreatedAt.Format("2006-01-02 15:04:05"))
		if rec.Interview.Degraded {
			b.WriteString("STATUS: degraded\n")
		}
		b.WriteString("\n")
		b.WriteString(rec.Interview.RawTranscript)
		b.WriteString("\n")

		path := filepath.Join(dir, safeName(rec.IntervieweeName)+".txt")
		if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
			return fmt.Errorf("failed to write interview %s: %w", path, err)
		}

		if rec.Interview.XMLFormatted != "" {
			xmlPath := filepath.Join(dir, safeName(rec.IntervieweeName)+".xml")
			if err := os.WriteFile(xmlPath, []byte(rec.Interview.XMLFormatted), 0o644); err != nil {
				return fmt.Errorf("failed to write interview xml %s: %w", xmlPath, err)
			}
		}
	}
	return nil
}

func (w *Writer) writeAnalyses(runDir string, bundle *Bundle) error {
	for _, rec := range bundle.Records {
		if rec.Analysis == nil {
			continue
		}

		var b strings.Builder
		fmt.Fprintf(&b, "# Analysis: %s (%s)\n\n", rec.IntervieweeName, bundle.Manifest.DisplayName(rec.Interview.Category))
		if rec.Analysis.Degraded {
			b.WriteString("*Note: this analysis is a placeholder; the generation did not complete.*\n\n")
		}
		b.WriteString(rec.Analysis.RawText)
		b.WriteString("\n")

		name := fmt.Sprintf("%s_%s.md", safeName(rec.Interview.Category), safeName(rec.IntervieweeName))
		path := filepath.Join(runDir, "reports", "individual", name)
		if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
			return fmt.Errorf("failed to write analysis %s: %w", path, err)
		}
	}
	return nil
}

func (w *Writer) writeSummaries(runDir string, bundle *Bundle) error {
	for _, sum := range bundle.Summaries {
		var b strings.Builder
		fmt.Fprintf(&b, "# %s\n\n", bundle.Manifest.DisplayName(sum.Category))
		fmt.Fprintf(&b, "*Based on %d interviews.*\n\n", sum.InterviewCount)
		if sum.Degraded {
			b.WriteString("*Note: this summary is a placeholder; the generation did not complete.*\n\n")
		}
		b.WriteString(sum.Summary)
		b.WriteString("\n")

		path := filepath.Join(runDir, "reports", "stakeholder_groups", safeName(sum.Category)+".md")
		if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
			return fmt.Errorf("failed to write summary %s: %w", path, err)
		}
	}
	return nil
}

func (w *Writer) writeFinalReport(runDir string, bundle *Bundle) error {
	reportPath := filepath.Join(runDir, "reports", "summary", "final_report.md")
	if err := os.WriteFile(reportPath, []byte(bundle.FinalReport), 0o644); err != nil {
		return fmt.Errorf("failed to write final report: %w", err)
	}

	bullets := reports.ExtractPresentationBullets(bundle.FinalReport)
	bulletsPath := filepath.Join(runDir, "reports", "presentation", "presentation_bullets.md")
	if err := os.WriteFile(bulletsPath, []byte(bullets+"\n"), 0o644); err != nil {
		return fmt.Errorf("failed to write presentation bullets: %w", err)
	}
	return nil
}

func (w *Writer) writeCombinations(runDir string, bundle *Bundle) error {
	combos := make([]combination, 0, len(bundle.Records))
	for _, rec := range bundle.Records {
		combos = append(combos, combination{
			InterviewID: rec.Interview.ID.String(),
			Category:    rec.Interview.Category,
			Interviewer: rec.InterviewerName,
			Interviewee: rec.IntervieweeName,
			Degraded:    rec.Interview.Degraded,
		})
	}

	data, err := json.MarshalIndent(combos, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal combinations: %w", err)
	}

	path := filepath.Join(runDir, "interview_combinations.json")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write combinations: %w", err)
	}
	return nil
}

func (w *Writer) writeRunSummary(runDir string, bundle *Bundle) error {
	run := bundle.Run

	perCategory := map[string]int{}
	degraded := 0
	for _, rec := range bundle.Records {
		perCategory[rec.Interview.Category]++
		if rec.Interview.Degraded {
			degraded++
		}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "# Interview Summary\n\n")
	fmt.Fprintf(&b, "- Run: %s\n", run.ID)
	fmt.Fprintf(&b, "- Study: %s\n", bundle.Manifest.Name)
	fmt.Fprintf(&b, "- Provider: %s\n", run.Provider)
	fmt.Fprintf(&b, "- Model: %s\n", run.Model)
	fmt.Fprintf(&b, "- Status: %s\n", run.Status)
	fmt.Fprintf(&b, "- Started: %s\n", run.StartedAt.Format("2006-01-02 15:04:05"))
	fmt.Fprintf(&b, "- Interviews: %d\n", len(bundle.Records))
	fmt.Fprintf(&b, "- Degraded interviews: %d\n", degraded)
	b.WriteString("\n## Interviews per category\n\n")
	for _, key := range bundle.Manifest.CategoryKeys() {
		if count, ok := perCategory[key]; ok {
			fmt.Fprintf(&b, "- %s: %d\n", bundle.Manifest.DisplayName(key), count)
		}
	}

	path := filepath.Join(runDir, "interview_summary.md")
	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		return fmt.Errorf("failed to write run summary: %w", err)
	}
	return nil
}

// safeName turns arbitrary names into filesystem-safe path segments
func safeName(name string) string {
	name = strings.TrimSpace(name)
	replacer := strings.NewReplacer(
		" ", "_",
		"/", "-",
		"\\", "-",
		":", "-",
		".", "",
		",", "",
		"'", "",
		"\"", "",
	)
	return replacer.Replace(name)
}
