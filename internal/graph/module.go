package graph

import "go.uber.org/fx"

// Module provides the Graph client built from graph.* config.
var Module = fx.Module("graph",
	fx.Provide(
		NewFromConfig,
	),
)
