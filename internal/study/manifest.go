package study

import (
	"fmt"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Manifest describes one study: which stakeholder categories to
// interview, who asks the questions, and which seeded personas answer.
type Manifest struct {
	Name              string     `yaml:"name" validate:"required"`
	ResearchQuestions []string   `yaml:"research_questions" validate:"min=1,dive,required"`
	Categories        []Category `yaml:"categories" validate:"min=1,dive"`

	Interviewers []PersonaSeed `yaml:"interviewers" validate:"min=1,dive"`

	// Personas maps a category key to its seeded interviewees.
	Personas map[string][]PersonaSeed `yaml:"personas" validate:"required"`

	// InterviewsPerCategory caps how many interviewees each category
	// contributes to a run. Zero means all seeded personas.
	InterviewsPerCategory int `yaml:"interviews_per_category" validate:"min=0"`
}

// Category is one stakeholder group under study
type Category struct {
	Key  string `yaml:"key" validate:"required"`
	Name string `yaml:"name" validate:"required"`
}

// PersonaSeed is a name plus a one-line role description; the persona
// service turns seeds into persisted personas.
type PersonaSeed struct {
	Name string `yaml:"name" validate:"required"`
	Role string `yaml:"role" validate:"required"`
}

// Load reads and validates a study manifest from a YAML file.
// A missing file is not an error; the built-in default study is used.
func Load(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Default(), nil
		}
		return nil, fmt.Errorf("failed to read study manifest %s: %w", path, err)
	}

	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("failed to parse study manifest %s: %w", path, err)
	}

	if err := m.Validate(); err != nil {
		return nil, fmt.Errorf("invalid study manifest %s: %w", path, err)
	}

	return &m, nil
}

// Validate checks structural constraints and the category/persona mapping
func (m *Manifest) Validate() error {
	if err := validator.New().Struct(m); err != nil {
		return err
	}

	keys := make(map[string]bool, len(m.Categories))
	for _, c := range m.Categories {
		if keys[c.Key] {
			return fmt.Errorf("duplicate category key %q", c.Key)
		}
		keys[c.Key] = true
	}

	for key, seeds := range m.Personas {
		if !keys[key] {
			return fmt.Errorf("personas declared for unknown category %q", key)
		}
		if len(seeds) == 0 {
			return fmt.Errorf("category %q has no personas", key)
		}
	}

	for _, c := range m.Categories {
		if len(m.Personas[c.Key]) == 0 {
			return fmt.Errorf("category %q has no personas", c.Key)
		}
	}

	return nil
}

// CategoryKeys returns the category keys in manifest order
func (m *Manifest) CategoryKeys() []string {
	keys := make([]string, 0, len(m.Categories))
	for _, c := range m.Categories {
		keys = append(keys, c.Key)
	}
	return keys
}

// DisplayName resolves a category key to its display name, falling
// back to the key with underscores replaced.
func (m *Manifest) DisplayName(key string) string {
	for _, c := range m.Categories {
		if c.Key == key {
			return c.Name
		}
	}
	return strings.ReplaceAll(key, "_", " ")
}

// PersonasFor returns the seeded interviewees for a category, capped
// by InterviewsPerCategory when set.
func (m *Manifest) PersonasFor(key string) []PersonaSeed {
	seeds := m.Personas[key]
	if m.InterviewsPerCategory > 0 && len(seeds) > m.InterviewsPerCategory {
		return seeds[:m.InterviewsPerCategory]
	}
	return seeds
}

// Default returns the built-in study on AI in consulting: seven
// stakeholder categories, four interviewers, four personas each.
func Default() *Manifest {
	return &Manifest{
		Name: "The Role of Business Consulting Firms in the Era of Artificial Intelligence",
		ResearchQuestions: []string{
			"RQ1: How established is AI adoption within the consulting industry?",
			"RQ2: What are the current trends in the consulting market in Portugal?",
			"RQ3: How does AI affect the business of consulting firms in terms of automation and internalisation of knowledge by clients?",
			"RQ4: What ethical risks and concerns are associated with integrating AI in consulting?",
		},
		Categories: []Category{
			{Key: "senior_executives", Name: "Senior Executives"},
			{Key: "ai_specialists", Name: "AI Specialists"},
			{Key: "mid_level_consultants", Name: "Mid-Level Consultants"},
			{Key: "clients", Name: "Clients"},
			{Key: "technology_providers", Name: "Technology Providers"},
			{Key: "regulatory_stakeholders", Name: "Regulatory Stakeholders"},
			{Key: "industry_analysts", Name: "Industry Analysts"},
		},
		Interviewers: []PersonaSeed{
			{Name: "Dr. Maria Reynolds", Role: "Experienced researcher specializing in AI and consulting practices"},
			{Name: "Dr. James Harrison", Role: "Professor of Business Technology with focus on industry transformation"},
			{Name: "Dr. Sophia Lin", Role: "Research Director at a technology think tank studying AI adoption"},
			{Name: "Dr. Marcus Wellington", Role: "Academic specializing in organizational change and technology"},
		},
		Personas: map[string][]PersonaSeed{
			"senior_executives": {
				{Name: "Sarah Chen", Role: "Chief Strategy Officer at a Fortune 500 consulting firm with 18 years of experience"},
				{Name: "Michael Rodriguez", Role: "CEO of a mid-sized consulting firm specializing in digital transformation"},
				{Name: "Jennifer Park", Role: "Managing Director at a top-tier consulting firm overseeing AI initiatives"},
				{Name: "Thomas Wilson", Role: "Global Head of Innovation at an international consulting conglomerate"},
			},
			"ai_specialists": {
				{Name: "Dr. Alex Kumar", Role: "Head of AI Research at a consulting firm with a PhD in Machine Learning"},
				{Name: "Emma Watson", Role: "AI Ethics Lead with background in both technology and philosophy"},
				{Name: "David Chen", Role: "Chief AI Architect with extensive experience implementing enterprise solutions"},
				{Name: "Sophia Miller", Role: "AI Implementation Specialist focusing on practical applications in consulting"},
			},
			"mid_level_consultants": {
				{Name: "James Peterson", Role: "Senior Consultant with 7 years of experience in AI-driven projects"},
				{Name: "Maria Garcia", Role: "Project Manager for AI implementation teams at a mid-tier firm"},
				{Name: "Robert Kim", Role: "Data Science Consultant bridging technical and business requirements"},
				{Name: "Aisha Johnson", Role: "Engagement Manager focusing on AI transformation projects"},
			},
			"clients": {
				{Name: "Elizabeth Taylor", Role: "CFO at a manufacturing company using AI consulting services"},
				{Name: "Richard Martinez", Role: "CIO at a financial services firm evaluating AI implementations"},
				{Name: "Susan Yamamoto", Role: "COO at a healthcare provider working with AI consultants"},
				{Name: "Christopher Adams", Role: "VP of Strategy at a retail chain undergoing AI transformation"},
			},
			"technology_providers": {
				{Name: "Michelle Lee", Role: "CEO of an AI platform company partnering with consulting firms"},
				{Name: "Ryan Patel", Role: "CTO of a software company developing tools for consultants"},
				{Name: "Jessica Brown", Role: "Product Director at an enterprise AI solutions provider"},
				{Name: "Nathan Williams", Role: "Partnership Lead at a major cloud and AI infrastructure company"},
			},
			"regulatory_stakeholders": {
				{Name: "Dr. Gregory Scott", Role: "Former regulatory official now advising on AI compliance"},
				{Name: "Amanda Chen", Role: "Legal counsel specializing in AI and data regulation"},
				{Name: "Jonathan Baker", Role: "Director at an industry standards organization for AI"},
				{Name: "Patricia Reynolds", Role: "Ethics Board Member overseeing AI implementations in consulting"},
			},
			"industry_analysts": {
				{Name: "Dr. Caroline White", Role: "Principal Analyst at a leading research firm covering AI in consulting"},
				{Name: "Marcus Johnson", Role: "Industry Researcher specializing in digital transformation trends"},
				{Name: "Hannah Diaz", Role: "Senior Analyst publishing reports on the consulting industry"},
				{Name: "Rajiv Patel", Role: "Market Intelligence Director with focus on technology adoption in services"},
			},
		},
	}
}
