package scripts

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

// sectionTitles maps the headings used in the source document to the
// normalized category keys the rest of the suite works with.
var sectionTitles = map[string]string{
	"Senior Executives from Consulting Firms":                           "senior_executives",
	"AI Specialists and Data Scientists within Consulting":              "ai_specialists",
	"Mid-Level Consultants and Associate Managers":                      "mid_level_consultants",
	"Clients of Consulting Services":                                    "clients",
	"Technology Providers and AI Solution Vendors":                      "technology_providers",
	"Regulatory and Policy Stakeholders":                                "regulatory_stakeholders",
	"Industry Analysts or Academics Specializing in Consulting and AI": "industry_analysts",
}

// titleOrder keeps the document's section order for positional slicing
var titleOrder = []string{
	"Senior Executives from Consulting Firms",
	"AI Specialists and Data Scientists within Consulting",
	"Mid-Level Consultants and Associate Managers",
	"Clients of Consulting Services",
	"Technology Providers and AI Solution Vendors",
	"Regulatory and Policy Stakeholders",
	"Industry Analysts or Academics Specializing in Consulting and AI",
}

// Parse extracts per-category interview scripts from a plain-text
// source document. It is best-effort: it returns whatever categories it
// could find, possibly none, and only errors on unreadable input. The
// result maps normalized category keys to raw script text.
func Parse(content string) map[string]string {
	scripts := parseByRegex(content)
	if len(scripts) == 0 {
		scripts = parseByPosition(content)
	}
	return scripts
}

// ParseFile reads and parses a script document from disk
func ParseFile(path string) (map[string]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read script document %s: %w", path, err)
	}
	return Parse(string(data)), nil
}

// parseByRegex matches each section heading and captures up to the
// next heading or end of document.
func parseByRegex(content string) map[string]string {
	scripts := make(map[string]string)

	alternation := make([]string, 0, len(titleOrder))
	for _, title := range titleOrder {
		alternation = append(alternation, regexp.QuoteMeta(title))
	}
	next := strings.Join(alternation, "|")

	for _, title := range titleOrder {
		pattern := regexp.MustCompile(`(?s)` + regexp.QuoteMeta(title) + `.*?\n(.*?)(?:(?:` + next + `)|$)`)
		match := pattern.FindStringSubmatch(content)
		if match == nil {
			continue
		}
		section := strings.TrimSpace(match[1])
		if section != "" {
			scripts[sectionTitles[title]] = section
		}
	}

	return scripts
}

// parseByPosition slices the document between heading occurrences.
// Fallback for documents where heading lines carry extra markup that
// defeats the regex pass.
func parseByPosition(content string) map[string]string {
	scripts := make(map[string]string)

	for i, title := range titleOrder {
		start := strings.Index(content, title)
		if start == -1 {
			continue
		}
		start += len(title)

		end := len(content)
		if i < len(titleOrder)-1 {
			if next := strings.Index(content[start:], titleOrder[i+1]); next != -1 {
				end = start + next
			}
		}

		section := strings.TrimSpace(content[start:end])
		if section != "" {
			scripts[sectionTitles[title]] = section
		}
	}

	return scripts
}

// Save writes parsed scripts as one text file per category plus a
// combined JSON index, for reuse across runs.
func Save(dir string, scripts map[string]string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create scripts dir %s: %w", dir, err)
	}

	for category, script := range scripts {
		path := filepath.Join(dir, category+".txt")
		if err := os.WriteFile(path, []byte(script), 0o644); err != nil {
			return fmt.Errorf("failed to write script %s: %w", path, err)
		}
	}

	index, err := json.MarshalIndent(scripts, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal script index: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "scripts.json"), index, 0o644); err != nil {
		return fmt.Errorf("failed to write script index: %w", err)
	}

	return nil
}

// Load reads previously saved per-category scripts. A missing directory
// yields an empty map; runs work fine without scripts.
func Load(dir string) (map[string]string, error) {
	data, err := os.ReadFile(filepath.Join(dir, "scripts.json"))
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]string{}, nil
		}
		return nil, fmt.Errorf("failed to read script index: %w", err)
	}

	var scripts map[string]string
	if err := json.Unmarshal(data, &scripts); err != nil {
		return nil, fmt.Errorf("failed to parse script index: %w", err)
	}

	return scripts, nil
}
