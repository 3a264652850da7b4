package assignment

import (
	"go.uber.org/fx"
)

var Module = fx.Options(
	fx.Provide(func(n *MailNotifier) Notifier { return n }),
	fx.Provide(NewMailNotifier),
	fx.Provide(NewService),
)
