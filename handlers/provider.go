package handlers

import (
	"go.uber.org/fx"
)

var Module = fx.Options(
	fx.Provide(
		NewAuthHandler,
		NewProfileHandler,
		NewEventHandler,
		NewAdminEventHandler,
		NewAdminUserHandler,
		NewAdminAssignmentHandler,
		NewAdminSettingsHandler,
		NewHandlers,
	),
)
