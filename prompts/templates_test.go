package prompts

import (
	"strings"
	"testing"
)

func TestRender(t *testing.T) {
	tests := []struct {
		name     string
		template string
		vars     map[string]string
		want     string
	}{
		{
			name:     "single placeholder",
			template: "Hello {name}",
			vars:     map[string]string{"name": "Ada"},
			want:     "Hello Ada",
		},
		{
			name:     "repeated placeholder",
			template: "{category} and {category}",
			vars:     map[string]string{"category": "clients"},
			want:     "clients and clients",
		},
		{
			name:     "unknown placeholder stays visible",
			template: "Hello {missing}",
			vars:     map[string]string{"name": "Ada"},
			want:     "Hello {missing}",
		},
		{
			name:     "nil vars",
			template: "plain",
			vars:     nil,
			want:     "plain",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Render(tt.template, tt.vars)
			if got != tt.want {
				t.Errorf("Render() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestTemplatesCarryTheirPlaceholders(t *testing.T) {
	tests := []struct {
		name     string
		template string
		needs    []string
	}{
		{"interviewee persona", IntervieweePersona, []string{"{category}", "{study_name}"}},
		{"interview generation", InterviewGeneration, []string{"{interviewer_name}", "{interviewee_name}", "{category}"}},
		{"scripted generation", ScriptedInterviewGeneration, []string{"{script}"}},
		{"xml formatting", XMLFormatting, []string{"{interview_id}", "{interview_text}"}},
		{"analysis", InterviewAnalysis, []string{"{interview_text}", "{category}"}},
		{"stakeholder summary", StakeholderSummary, []string{"{count}", "{category}", "{analyses}"}},
		{"final report", FinalReport, []string{"{count}", "{categories}", "{summaries}"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, needle := range tt.needs {
				if !strings.Contains(tt.template, needle) {
					t.Errorf("template missing placeholder %s", needle)
				}
			}
		})
	}
}
