package study

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	m := Default()

	require.NoError(t, m.Validate())
	assert.Len(t, m.Categories, 7)
	assert.Len(t, m.Interviewers, 4)
	assert.Len(t, m.ResearchQuestions, 4)
	for _, key := range m.CategoryKeys() {
		assert.Len(t, m.Personas[key], 4, "category %s", key)
	}
}

func TestLoadMissingFileFallsBackToDefault(t *testing.T) {
	m, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default().Name, m.Name)
}

func TestLoadValidManifest(t *testing.T) {
	path := filepath.Join(t.TempDir(), "study.yaml")
	manifest := `
name: Pilot Study
research_questions:
  - "RQ1: adoption"
categories:
  - key: clients
    name: Clients
interviewers:
  - name: Dr. Ada Ngo
    role: Lead researcher
personas:
  clients:
    - name: Pat Doyle
      role: CFO at a logistics firm
    - name: Lin Osei
      role: CIO at a retailer
interviews_per_category: 1
`
	require.NoError(t, os.WriteFile(path, []byte(manifest), 0o644))

	m, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "Pilot Study", m.Name)
	assert.Equal(t, []string{"clients"}, m.CategoryKeys())
	assert.Equal(t, "Clients", m.DisplayName("clients"))

	// InterviewsPerCategory caps the seeds
	seeds := m.PersonasFor("clients")
	require.Len(t, seeds, 1)
	assert.Equal(t, "Pat Doyle", seeds[0].Name)
}

func TestLoadRejectsInvalidManifests(t *testing.T) {
	tests := []struct {
		name     string
		manifest string
	}{
		{
			name: "unknown persona category",
			manifest: `
name: Bad
research_questions: ["RQ1"]
categories:
  - {key: clients, name: Clients}
interviewers:
  - {name: A, role: r}
personas:
  ghosts:
    - {name: B, role: r}
`,
		},
		{
			name: "category without personas",
			manifest: `
name: Bad
research_questions: ["RQ1"]
categories:
  - {key: clients, name: Clients}
interviewers:
  - {name: A, role: r}
personas: {}
`,
		},
		{
			name: "no interviewers",
			manifest: `
name: Bad
research_questions: ["RQ1"]
categories:
  - {key: clients, name: Clients}
interviewers: []
personas:
  clients:
    - {name: B, role: r}
`,
		},
		{
			name: "duplicate category key",
			manifest: `
name: Bad
research_questions: ["RQ1"]
categories:
  - {key: clients, name: Clients}
  - {key: clients, name: Clients Again}
interviewers:
  - {name: A, role: r}
personas:
  clients:
    - {name: B, role: r}
`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "study.yaml")
			require.NoError(t, os.WriteFile(path, []byte(tt.manifest), 0o644))

			_, err := Load(path)
			assert.Error(t, err)
		})
	}
}

func TestDisplayNameFallback(t *testing.T) {
	m := Default()
	assert.Equal(t, "mystery stakeholders", m.DisplayName("mystery_stakeholders"))
}
