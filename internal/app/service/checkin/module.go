package checkin

import "go.uber.org/fx"

// Module exposes the check-in coordinator via Fx.
var Module = fx.Options(
	fx.Provide(NewCoordinator),
)
