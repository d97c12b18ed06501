package broadcast

import (
	"context"

	"go.uber.org/fx"
)

// Module provides the Hub and ties its timers to the app lifecycle.
var Module = fx.Options(
	fx.Provide(NewHub),
	fx.Invoke(registerLifecycle),
)

func registerLifecycle(lc fx.Lifecycle, h *Hub) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			h.Start()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			h.Stop()
			return nil
		},
	})
}
