package modules

import (
	"fmt"
	"log/slog"

	"go.uber.org/fx"

	"github.com/memohai/mediabot/internal/boot"
	"github.com/memohai/mediabot/internal/delivery"
	"github.com/memohai/mediabot/internal/ingest"
	"github.com/memohai/mediabot/internal/media"
	"github.com/memohai/mediabot/internal/metrics"
	"github.com/memohai/mediabot/internal/router"
)

var MediaModule = fx.Module(
	"media",
	fx.Provide(
		provideStore,
		provideIngestHandler,
		delivery.NewService,
		provideInboundProcessor,
	),
)

// provideStore loads the index before anything can read or write it;
// a corrupt document aborts startup.
func provideStore(log *slog.Logger, rc *boot.RuntimeConfig, rec *metrics.Recorder) (*media.Store, error) {
	store := media.NewStore(log, rc.StorePath, rec)
	if err := store.Load(); err != nil {
		return nil, fmt.Errorf("load media index: %w", err)
	}
	return store, nil
}

func provideIngestHandler(log *slog.Logger, store *media.Store, rec *metrics.Recorder) *ingest.Handler {
	return ingest.NewHandler(log, store, rec)
}

func provideInboundProcessor(log *slog.Logger, ingestHandler *ingest.Handler, store *media.Store, deliveryService *delivery.Service, rec *metrics.Recorder) *router.MediaInboundProcessor {
	return router.NewMediaInboundProcessor(log, ingestHandler, store, deliveryService, rec)
}
