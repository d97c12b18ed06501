package membership

import (
	"context"

	"go.uber.org/fx"
)

// Module exposes the membership repository and the expiring sweep via Fx.
var Module = fx.Options(
	fx.Provide(NewRepository),
	fx.Provide(NewSweeper),
	fx.Invoke(registerSweeper),
)

func registerSweeper(lc fx.Lifecycle, s *Sweeper) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			s.Start()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			s.Stop()
			return nil
		},
	})
}
