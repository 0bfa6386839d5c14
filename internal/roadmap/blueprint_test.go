package roadmap

import (
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/josephgoksu/taskgraph/internal/task"
)

const yamlBlueprint = `projectName: Billing API
projectType: api
timeline: 2-3 months
aiAssistance: full
complexity: 0.7
techStack:
  backend: [go, postgres]
  testing: [testify]
`

func TestLoadBlueprint_YAML(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/work/blueprint.yaml", []byte(yamlBlueprint), 0o644))

	b, err := LoadBlueprint(fs, "/work/blueprint.yaml")
	require.NoError(t, err)
	assert.Equal(t, "Billing API", b.ProjectName)
	assert.Equal(t, ProjectTypeAPI, b.NormalizedType())
	assert.Equal(t, "2-3 months", b.Timeline)
	assert.Equal(t, []string{"go", "postgres"}, b.TechStack.Backend)
	assert.InDelta(t, 0.7, b.ComplexityScore(), 1e-9)
}

func TestLoadBlueprint_JSON(t *testing.T) {
	fs := afero.NewMemMapFs()
	data := `{"projectType":"mobile","timeline":"1-2 weeks","techStack":{"frontend":["swift"]}}`
	require.NoError(t, afero.WriteFile(fs, "bp.JSON", []byte(data), 0o644))

	b, err := LoadBlueprint(fs, "bp.JSON")
	require.NoError(t, err)
	assert.Equal(t, ProjectTypeMobileApp, b.NormalizedType())
	assert.Equal(t, DefaultComplexity, b.ComplexityScore())
	assert.Equal(t, []string{"swift"}, b.TechStack.Frontend)
}

func TestLoadBlueprint_Missing(t *testing.T) {
	_, err := LoadBlueprint(afero.NewMemMapFs(), "nope.yaml")
	assert.Error(t, err)
}

func TestParseBlueprint_Rejects(t *testing.T) {
	tests := []struct {
		name   string
		data   string
		format Format
	}{
		{"unknown yaml key", "timline: 1-2 weeks\n", FormatYAML},
		{"unknown json key", `{"timline":"1-2 weeks"}`, FormatJSON},
		{"complexity above one", "complexity: 1.5\n", FormatYAML},
		{"negative complexity", `{"complexity":-0.1}`, FormatJSON},
		{"malformed json", `{"timeline":`, FormatJSON},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseBlueprint([]byte(tt.data), tt.format)
			assert.ErrorIs(t, err, task.ErrValidation)
		})
	}
}

func TestNormalizedType(t *testing.T) {
	assert.Equal(t, ProjectTypeWebApp, Blueprint{}.NormalizedType())
	assert.Equal(t, ProjectTypeMobileApp, Blueprint{ProjectType: " MOBILE "}.NormalizedType())
	assert.Equal(t, "cli", Blueprint{ProjectType: "CLI"}.NormalizedType())
}
