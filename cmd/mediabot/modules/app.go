package modules

import (
	"log/slog"

	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
)

// Options assembles the serve application for the given config file.
func Options(path ConfigPath) fx.Option {
	return fx.Options(
		fx.Supply(path),
		InfraModule,
		MediaModule,
		ChannelModule,
		ServerModule,
		fx.WithLogger(func(logger *slog.Logger) fxevent.Logger {
			return &fxevent.SlogLogger{Logger: logger.With(slog.String("component", "fx"))}
		}),
	)
}
