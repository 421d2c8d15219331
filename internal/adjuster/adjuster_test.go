package adjuster

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/brizzai/graph-mcp/internal/config"
	"github.com/brizzai/graph-mcp/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAdjuster_Enabled(t *testing.T) {
	tests := []struct {
		name     string
		adjuster *Adjuster
		tool     string
		want     bool
	}{
		{
			name:     "No adjustments",
			adjuster: NewAdjuster(),
			tool:     "graph_get_object",
			want:     true,
		},
		{
			name:     "Nil adjuster",
			adjuster: nil,
			tool:     "graph_get_object",
			want:     true,
		},
		{
			name: "Tool is selected",
			adjuster: &Adjuster{adjustments: &models.ToolAdjustments{
				Tools: []string{"graph_get_object", "graph_get_connections"},
			}},
			tool: "graph_get_connections",
			want: true,
		},
		{
			name: "Tool is not selected",
			adjuster: &Adjuster{adjustments: &models.ToolAdjustments{
				Tools: []string{"graph_get_object"},
			}},
			tool: "graph_delete_object",
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.adjuster.Enabled(tt.tool))
		})
	}
}

func TestAdjuster_Description(t *testing.T) {
	a := &Adjuster{adjustments: &models.ToolAdjustments{
		Descriptions: []models.ToolDescription{
			{Tool: "graph_get_object", NewDescription: "Look up a page"},
			{Tool: "graph_put_like", NewDescription: ""},
		},
	}}

	assert.Equal(t, "Look up a page", a.Description("graph_get_object", "original"))
	assert.Equal(t, "original", a.Description("graph_put_like", "original"))
	assert.Equal(t, "original", a.Description("graph_delete_object", "original"))
}

func TestAdjuster_Load(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "adjustments.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
tools:
  - graph_get_object
  - graph_get_objects
descriptions:
  - tool: graph_get_object
    new_description: Fetch one object
`), 0o600))

	a, err := NewFromConfig(&config.Config{AdjustmentsFile: path})
	require.NoError(t, err)
	assert.True(t, a.Enabled("graph_get_objects"))
	assert.False(t, a.Enabled("graph_put_object"))
	assert.Equal(t, "Fetch one object", a.Description("graph_get_object", "x"))

	t.Run("missing file is ignored", func(t *testing.T) {
		a := NewAdjuster()
		require.NoError(t, a.Load(filepath.Join(dir, "nope.yaml")))
		assert.True(t, a.Enabled("anything"))
	})

	t.Run("invalid yaml", func(t *testing.T) {
		bad := filepath.Join(dir, "bad.yaml")
		require.NoError(t, os.WriteFile(bad, []byte("tools: [unclosed"), 0o600))
		_, err := NewFromConfig(&config.Config{AdjustmentsFile: bad})
		assert.Error(t, err)
	})
}
