package signature

import (
	"github.com/tech-arch1tect/secretsanta/config"
	"go.uber.org/fx"
)

var Module = fx.Options(
	fx.Provide(func(cfg *config.Config) *Verifier {
		return New(cfg.GWars.SharedSecret)
	}),
)
