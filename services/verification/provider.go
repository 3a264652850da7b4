package verification

import (
	"github.com/tech-arch1tect/secretsanta/config"
	"github.com/tech-arch1tect/secretsanta/services/account"
	"github.com/tech-arch1tect/secretsanta/services/logging"
	"github.com/tech-arch1tect/secretsanta/services/settings"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

var Module = fx.Options(
	fx.Provide(func(cfg *config.Config) Fetcher {
		return NewHTTPFetcher(cfg)
	}),
	fx.Provide(func(cfg *config.Config, db *gorm.DB, logger *logging.Service, accounts *account.Service, settingsSvc *settings.Service, fetcher Fetcher) *Service {
		return NewService(cfg, db, logger, accounts, settingsSvc, fetcher)
	}),
)
