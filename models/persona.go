package models

import (
	"time"

	"github.com/google/uuid"
)

// PersonaRole distinguishes the two sides of an interview
type PersonaRole string

const (
	PersonaRoleInterviewer PersonaRole = "interviewer"
	PersonaRoleInterviewee PersonaRole = "interviewee"
)

// PersonaSource records where a persona came from
type PersonaSource string

const (
	PersonaSourceBuiltin   PersonaSource = "builtin"
	PersonaSourceManifest  PersonaSource = "manifest"
	PersonaSourceLibrary   PersonaSource = "library"
	PersonaSourceGenerated PersonaSource = "generated"
)

// Persona represents an interview participant, real or synthesized
type Persona struct {
	ID         uuid.UUID     `json:"id" db:"id"`
	Name       string        `json:"name" db:"name"`
	Category   string        `json:"category" db:"category"`
	Role       PersonaRole   `json:"role" db:"role"`
	Position   string        `json:"position" db:"position"`
	Background string        `json:"background" db:"background"`
	CreatedBy  PersonaSource `json:"created_by" db:"created_by"`
	CreatedAt  time.Time     `json:"created_at" db:"created_at"`
}

// TableName returns the table name for the Persona model
func (Persona) TableName() string {
	return "personas"
}

// NewPersona creates a new Persona instance
func NewPersona(name, category string, role PersonaRole, position, background string, source PersonaSource) *Persona {
	return &Persona{
		ID:         uuid.New(),
		Name:       name,
		Category:   category,
		Role:       role,
		Position:   position,
		Background: background,
		CreatedBy:  source,
		CreatedAt:  time.Now(),
	}
}

// IsInterviewer reports whether the persona conducts interviews
func (p *Persona) IsInterviewer() bool {
	return p.Role == PersonaRoleInterviewer
}
