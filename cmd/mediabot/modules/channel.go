package modules

import (
	"context"
	"fmt"
	"log/slog"

	"go.uber.org/fx"

	"github.com/memohai/mediabot/internal/boot"
	"github.com/memohai/mediabot/internal/channel"
	"github.com/memohai/mediabot/internal/channel/adapters/telegram"
	"github.com/memohai/mediabot/internal/router"
)

var ChannelModule = fx.Module(
	"channel",
	fx.Provide(
		provideTelegramAdapter,
		provideChannelManager,
	),
	fx.Invoke(startChannelManager),
)

func provideTelegramAdapter(log *slog.Logger, rc *boot.RuntimeConfig) *telegram.TelegramAdapter {
	return telegram.NewTelegramAdapter(log, telegram.Config{
		BotToken:    rc.BotToken,
		PollTimeout: rc.PollTimeout,
	})
}

func provideChannelManager(log *slog.Logger, processor *router.MediaInboundProcessor, adapter *telegram.TelegramAdapter) *channel.Manager {
	manager := channel.NewManager(log, processor)
	manager.RegisterAdapter(adapter)
	return manager
}

// startChannelManager runs the manager on its own context; the fx start
// context ends as soon as startup completes.
func startChannelManager(lc fx.Lifecycle, manager *channel.Manager) {
	runCtx, cancel := context.WithCancel(context.Background())
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			if err := manager.Start(runCtx); err != nil {
				cancel()
				return fmt.Errorf("start channel manager: %w", err)
			}
			return nil
		},
		OnStop: func(ctx context.Context) error {
			defer cancel()
			return manager.Shutdown(ctx)
		},
	})
}
