package main

import (
	"go.uber.org/fx"

	"github.com/tech-arch1tect/secretsanta/config"
	"github.com/tech-arch1tect/secretsanta/database"
	"github.com/tech-arch1tect/secretsanta/handlers"
	"github.com/tech-arch1tect/secretsanta/server"
	"github.com/tech-arch1tect/secretsanta/services/account"
	"github.com/tech-arch1tect/secretsanta/services/assignment"
	"github.com/tech-arch1tect/secretsanta/services/event"
	"github.com/tech-arch1tect/secretsanta/services/handshake"
	"github.com/tech-arch1tect/secretsanta/services/jwt"
	"github.com/tech-arch1tect/secretsanta/services/logging"
	"github.com/tech-arch1tect/secretsanta/services/mail"
	"github.com/tech-arch1tect/secretsanta/services/registration"
	"github.com/tech-arch1tect/secretsanta/services/settings"
	"github.com/tech-arch1tect/secretsanta/services/signature"
	"github.com/tech-arch1tect/secretsanta/services/verification"
)

func main() {
	fx.New(
		config.Module,
		logging.Module,
		fx.Supply(database.WithModels(
			&account.Account{},
			&verification.VerificationToken{},
			&event.Event{},
			&registration.Registration{},
			&assignment.Assignment{},
			&settings.Setting{},
		)),
		database.Module,
		jwt.Module,
		signature.Module,
		mail.Module,
		settings.Module,
		account.Module,
		verification.Module,
		handshake.Module,
		event.Module,
		registration.Module,
		assignment.Module,
		handlers.Module,
		server.Module,
		fx.Invoke(func(accounts *account.Service) error {
			return accounts.SeedDefaultAdmin()
		}),
		fx.Invoke(handlers.RegisterRoutes),
	).Run()
}
