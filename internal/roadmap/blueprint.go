// Package roadmap turns a project blueprint into an initial phase/task graph
// and reads that graph back as a phased roadmap.
package roadmap

import (
	"bytes"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"

	"github.com/josephgoksu/taskgraph/internal/task"
)

// Project types with dedicated phase customizations. Anything else is
// treated like a web application.
const (
	ProjectTypeWebApp    = "web-app"
	ProjectTypeMobileApp = "mobile-app"
	ProjectTypeAPI       = "api"
)

// DefaultComplexity applies when a blueprint carries no complexity score.
const DefaultComplexity = 0.5

// TechStack lists the technologies chosen per layer. Only the number of
// frontend and backend entries influences synthesis.
type TechStack struct {
	Frontend   []string `json:"frontend,omitempty" yaml:"frontend,omitempty"`
	Backend    []string `json:"backend,omitempty" yaml:"backend,omitempty"`
	Database   []string `json:"database,omitempty" yaml:"database,omitempty"`
	Deployment []string `json:"deployment,omitempty" yaml:"deployment,omitempty"`
	Testing    []string `json:"testing,omitempty" yaml:"testing,omitempty"`
}

// Blueprint is the declarative project description a roadmap is built from.
type Blueprint struct {
	ProjectName  string    `json:"projectName,omitempty" yaml:"projectName,omitempty" validate:"max=255"`
	ProjectType  string    `json:"projectType,omitempty" yaml:"projectType,omitempty" validate:"max=64"`
	Timeline     string    `json:"timeline,omitempty" yaml:"timeline,omitempty" validate:"max=64"`
	TechStack    TechStack `json:"techStack" yaml:"techStack"`
	AIAssistance string    `json:"aiAssistance,omitempty" yaml:"aiAssistance,omitempty" validate:"max=64"`
	// Complexity is a 0..1 score; nil means DefaultComplexity.
	Complexity *float64 `json:"complexity,omitempty" yaml:"complexity,omitempty" validate:"omitempty,gte=0,lte=1"`
}

// Validate checks field bounds. Unknown project types, timelines and
// assistance levels are accepted and fall back to defaults.
func (b Blueprint) Validate() error {
	return task.Validate(b)
}

// NormalizedType lowercases the project type, maps "mobile" to "mobile-app"
// and defaults to "web-app".
func (b Blueprint) NormalizedType() string {
	t := strings.ToLower(strings.TrimSpace(b.ProjectType))
	switch t {
	case "":
		return ProjectTypeWebApp
	case "mobile":
		return ProjectTypeMobileApp
	}
	return t
}

// ComplexityScore returns the blueprint complexity or DefaultComplexity.
func (b Blueprint) ComplexityScore() float64 {
	if b.Complexity == nil {
		return DefaultComplexity
	}
	return *b.Complexity
}

// Format names a blueprint encoding.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
)

// FormatFromPath picks JSON for ".json" files and YAML otherwise.
func FormatFromPath(path string) Format {
	if strings.EqualFold(filepath.Ext(path), ".json") {
		return FormatJSON
	}
	return FormatYAML
}

// ParseBlueprint decodes and validates a blueprint. Unknown keys are errors
// so typos such as "timline" do not silently fall back to defaults.
func ParseBlueprint(data []byte, format Format) (*Blueprint, error) {
	var b Blueprint
	switch format {
	case FormatJSON:
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&b); err != nil {
			return nil, &task.ValidationError{Field: "blueprint", Message: fmt.Sprintf("invalid JSON: %v", err)}
		}
	case FormatYAML:
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&b); err != nil {
			return nil, &task.ValidationError{Field: "blueprint", Message: fmt.Sprintf("invalid YAML: %v", err)}
		}
	default:
		return nil, fmt.Errorf("unsupported blueprint format %q", format)
	}
	if err := b.Validate(); err != nil {
		return nil, err
	}
	return &b, nil
}

// LoadBlueprint reads a YAML or JSON blueprint from fs.
func LoadBlueprint(fs afero.Fs, path string) (*Blueprint, error) {
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, fmt.Errorf("read blueprint %s: %w", path, err)
	}
	return ParseBlueprint(data, FormatFromPath(path))
}
