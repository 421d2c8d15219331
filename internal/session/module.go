package session

import "go.uber.org/fx"

// Module provides a Validator for the configured application.
var Module = fx.Module("session",
	fx.Provide(
		NewValidator,
	),
)
