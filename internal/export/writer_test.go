package export

import (
	"encoding/json"
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
)

func fixedTime() time.Time {
	return time.Date(2025, 3, 14, 9, 30, 0, 0, time.UTC)
}

func sampleBundle() *Bundle {
	run := models.NewStudyRun("anthropic", "claude-3-5-haiku-20241022")
	run.MarkAsRunning()

	good := models.NewInterview(run.ID, uuid.New(), uuid.New(), "clients", run.Provider, run.Model)
	good.MarkAsCompleted("Q: How is AI used?\nA: Everywhere.", "<conversation_set/>", false, 900)

	bad := models.NewInterview(run.ID, uuid.New(), uuid.New(), "ai_specialists", run.Provider, run.Model)
	bad.MarkAsCompleted("Error occurred while generating content. ...", "", true, 0)

	goodAnalysis := models.NewAnalysis(good.ID, "KEY POINTS: pragmatic adoption")
	badAnalysis := models.NewPlaceholderAnalysis(bad.ID, "generation failed")

	run.MarkAsCompleted(2, 2, 1)

	return &Bundle{
		Run:      run,
		Manifest: study.Default(),
		Records: []Record{
			{Interview: good, Analysis: goodAnalysis, InterviewerName: "Dr. Maria Reynolds", IntervieweeName: "Elizabeth Taylor"},
			{Interview: bad, Analysis: badAnalysis, InterviewerName: "Dr. James Harrison", IntervieweeName: "Dr. Alex Kumar"},
		},
		Summaries: []*models.StakeholderSummary{
			models.NewStakeholderSummary(run.ID, "clients", "clients are pragmatic", 1, false),
		},
		FinalReport: "# AI in Consulting: Comprehensive Research Report\n\n## Key Findings for Presentation\n- adoption is real\n\n## Stakeholder Perspectives\ndetails",
	}
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err, "expected file %s", path)
	return string(data)
}

func TestWriteLaysOutRunDirectory(t *testing.T) {
	base := t.TempDir()
	w := NewWriter(base, zap.NewNop())
	w.now = fixedTime

	bundle := sampleBundle()
	runDir, err := w.Write(bundle)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(base, "20250314_093000_anthropic_claude-3-5-haiku-20241022"), runDir)

	// Interview transcript with header
	transcript := readFile(t, filepath.Join(runDir, "interviews", "clients", "Elizabeth_Taylor.txt"))
	assert.Contains(t, transcript, "INTERVIEW: Elizabeth Taylor")
	assert.Contains(t, transcript, "ROLE: Clients")
	assert.Contains(t, transcript, "INTERVIEWER: Dr. Maria Reynolds")
	assert.Contains(t, transcript, "MODEL: anthropic/claude-3-5-haiku-20241022")
	assert.Contains(t, transcript, "A: Everywhere.")

	// XML written only when formatting succeeded
	assert.FileExists(t, filepath.Join(runDir, "interviews", "clients", "Elizabeth_Taylor.xml"))
	assert.NoFileExists(t, filepath.Join(runDir, "interviews", "ai_specialists", "Dr_Alex_Kumar.xml"))

	// Degraded interview is marked in its header
	degraded := readFile(t, filepath.Join(runDir, "interviews", "ai_specialists", "Dr_Alex_Kumar.txt"))
	assert.Contains(t, degraded, "STATUS: degraded")

	// Individual analyses
	analysisDoc := readFile(t, filepath.Join(runDir, "reports", "individual", "clients_Elizabeth_Taylor.md"))
	assert.Contains(t, analysisDoc, "pragmatic adoption")

	placeholderDoc := readFile(t, filepath.Join(runDir, "reports", "individual", "ai_specialists_Dr_Alex_Kumar.md"))
	assert.Contains(t, placeholderDoc, "placeholder")

	// Stakeholder group summary
	groupDoc := readFile(t, filepath.Join(runDir, "reports", "stakeholder_groups", "clients.md"))
	assert.Contains(t, groupDoc, "# Clients")
	assert.Contains(t, groupDoc, "clients are pragmatic")

	// Final report and extracted bullets
	report := readFile(t, filepath.Join(runDir, "reports", "summary", "final_report.md"))
	assert.Contains(t, report, "Comprehensive Research Report")

	bullets := readFile(t, filepath.Join(runDir, "reports", "presentation", "presentation_bullets.md"))
	assert.Contains(t, bullets, "- adoption is real")
	assert.NotContains(t, bullets, "Stakeholder Perspectives")
}

func TestWriteCombinationsJSON(t *testing.T) {
	base := t.TempDir()
	w := NewWriter(base, zap.NewNop())
	w.now = fixedTime

	bundle := sampleBundle()
	runDir, err := w.Write(bundle)
	require.NoError(t, err)

	data := readFile(t, filepath.Join(runDir, "interview_combinations.json"))

	var combos []combination
	require.NoError(t, json.Unmarshal([]byte(data), &combos))
	require.Len(t, combos, 2)

	assert.Equal(t, "clients", combos[0].Category)
	assert.Equal(t, "Dr. Maria Reynolds", combos[0].Interviewer)
	assert.Equal(t, "Elizabeth Taylor", combos[0].Interviewee)
	assert.False(t, combos[0].Degraded)
	assert.True(t, combos[1].Degraded)
}

func TestWriteRunSummary(t *testing.T) {
	base := t.TempDir()
	w := NewWriter(base, zap.NewNop())
	w.now = fixedTime

	bundle := sampleBundle()
	runDir, err := w.Write(bundle)
	require.NoError(t, err)

	summary := readFile(t, filepath.Join(runDir, "interview_summary.md"))
	assert.Contains(t, summary, "- Provider: anthropic")
	assert.Contains(t, summary, "- Interviews: 2")
	assert.Contains(t, summary, "- Degraded interviews: 1")
	assert.Contains(t, summary, "- Clients: 1")
	assert.Contains(t, summary, "- AI Specialists: 1")
}

func TestSafeName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Elizabeth Taylor", "Elizabeth_Taylor"},
		{"Dr. Alex Kumar", "Dr_Alex_Kumar"},
		{"gpt-4.5-preview-2025-02-27", "gpt-45-preview-2025-02-27"},
		{"a/b\\c:d", "a-b-c-d"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, safeName(tt.in))
	}
}
