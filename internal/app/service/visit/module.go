package visit

import "go.uber.org/fx"

// Module exposes the visit ledger via Fx.
var Module = fx.Options(
	fx.Provide(NewLedger),
)
