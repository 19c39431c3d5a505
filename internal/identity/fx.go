package identity

import "go.uber.org/fx"

var Module = fx.Module("identity",
	fx.Provide(NewContextResolver),
	fx.Provide(NewTokenIssuer),
)
