package adjuster

import (
	"fmt"
	"os"

	"github.com/brizzai/graph-mcp/internal/config"
	"github.com/brizzai/graph-mcp/internal/logger"
	"github.com/brizzai/graph-mcp/internal/models"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// Adjuster provides tool filtering and description overrides based on YAML configuration
type Adjuster struct {
	adjustments *models.ToolAdjustments
}

// NewAdjuster creates a new Adjuster instance
func NewAdjuster() *Adjuster {
	return &Adjuster{
		adjustments: &models.ToolAdjustments{},
	}
}

// NewFromConfig creates an Adjuster and loads cfg.AdjustmentsFile into it
func NewFromConfig(cfg *config.Config) (*Adjuster, error) {
	a := NewAdjuster()
	if err := a.Load(cfg.AdjustmentsFile); err != nil {
		return nil, fmt.Errorf("failed to load adjustments: %w", err)
	}
	return a, nil
}

// Load loads adjustments from a YAML file
func (a *Adjuster) Load(filePath string) error {
	if filePath == "" {
		logger.Debug("No adjustments file provided")
		return nil
	}

	logger.Info("Loading adjustments from file", zap.String("file", filePath))
	if _, err := os.Stat(filePath); os.IsNotExist(err) {
		logger.Warn("Adjustments file not found", zap.String("file", filePath))
		return nil
	}

	data, err := os.ReadFile(filePath)
	if err != nil {
		return err
	}

	var adjustments models.ToolAdjustments
	if err := yaml.Unmarshal(data, &adjustments); err != nil {
		return err
	}

	a.adjustments = &adjustments
	return nil
}

// Enabled checks if the named tool should be registered.
// Every tool is enabled when no tools are selected.
func (a *Adjuster) Enabled(tool string) bool {
	if a == nil || a.adjustments == nil || len(a.adjustments.Tools) == 0 {
		return true
	}
	for _, selected := range a.adjustments.Tools {
		if selected == tool {
			return true
		}
	}
	return false
}

// Description returns the overridden description for tool, or originalDesc
func (a *Adjuster) Description(tool, originalDesc string) string {
	if a == nil || a.adjustments == nil {
		return originalDesc
	}
	for _, desc := range a.adjustments.Descriptions {
		if desc.Tool == tool && desc.NewDescription != "" {
			return desc.NewDescription
		}
	}
	return originalDesc
}

// Module provides the Adjuster
var Module = fx.Module("adjuster",
	fx.Provide(NewFromConfig),
)
