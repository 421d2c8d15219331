package models

// ToolDescription overrides the description of one MCP tool
type ToolDescription struct {
	Tool           string `yaml:"tool"`
	NewDescription string `yaml:"new_description"`
}

// ToolAdjustments is the layout of the adjustments file.
// An empty Tools list exposes every tool.
type ToolAdjustments struct {
	Descriptions []ToolDescription `yaml:"descriptions,omitempty"`
	Tools        []string          `yaml:"tools,omitempty"`
}
