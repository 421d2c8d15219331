package config

import "go.uber.org/fx"

// Module exposes the loaded Config and its sections to the fx graph.
// The root *Config must be supplied by the caller with fx.Supply.
var Module = fx.Module("config",
	fx.Provide(
		func(c *Config) *GraphConfig { return &c.Graph },
		func(c *Config) *AppConfig { return &c.App },
		func(c *Config) *AuthConfig { return &c.Auth },
		func(c *Config) *LoggingConfig { return &c.Logging },
	),
)
