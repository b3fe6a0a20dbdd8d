// Package router dispatches inbound bot messages to search, delivery and ingestion.
package router

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/memohai/mediabot/internal/channel"
	"github.com/memohai/mediabot/internal/delivery"
	"github.com/memohai/mediabot/internal/ingest"
	"github.com/memohai/mediabot/internal/media"
	"github.com/memohai/mediabot/internal/metrics"
)

const (
	GreetingText    = "Hi! Send media with a caption. Use /search <keyword> to search."
	SearchUsageText = "Usage: /search <keyword>"
	FailureText     = "Something went wrong. Please try again later."
)

// Searcher is the read side of the media store.
type Searcher interface {
	Search(keyword string) []media.Record
}

// MediaInboundProcessor implements channel.InboundProcessor for the media bot.
type MediaInboundProcessor struct {
	ingest   *ingest.Handler
	searcher Searcher
	delivery *delivery.Service
	metrics  *metrics.Recorder
	logger   *slog.Logger
}

// NewMediaInboundProcessor creates the bot command dispatcher.
func NewMediaInboundProcessor(log *slog.Logger, ingestHandler *ingest.Handler, searcher Searcher, deliveryService *delivery.Service, rec *metrics.Recorder) *MediaInboundProcessor {
	if log == nil {
		log = slog.Default()
	}
	return &MediaInboundProcessor{
		ingest:   ingestHandler,
		searcher: searcher,
		delivery: deliveryService,
		metrics:  rec,
		logger:   log.With(slog.String("component", "router")),
	}
}

// HandleInbound routes /start and /search; everything else, including unknown
// commands, goes to ingestion. Errors are answered with a generic reply.
func (p *MediaInboundProcessor) HandleInbound(ctx context.Context, msg channel.InboundMessage, sender channel.ReplySender) error {
	var err error
	switch msg.Message.Command {
	case "start":
		err = sender.Send(ctx, channel.OutboundMessage{Text: GreetingText})
	case "search":
		err = p.handleSearch(ctx, msg, sender)
	default:
		_, err = p.ingest.Handle(ctx, msg, sender)
		if err != nil {
			p.logger.Error("ingest failed", slog.String("chat_id", msg.ReplyTarget), slog.Any("error", err))
			if sendErr := sender.Send(ctx, channel.OutboundMessage{Text: FailureText}); sendErr != nil {
				p.logger.Warn("send failure reply failed", slog.Any("error", sendErr))
			}
		}
	}
	if err != nil {
		return fmt.Errorf("handle %q: %w", commandLabel(msg), err)
	}
	return nil
}

func (p *MediaInboundProcessor) handleSearch(ctx context.Context, msg channel.InboundMessage, sender channel.ReplySender) error {
	keyword := strings.Join(msg.Message.Args, " ")
	if strings.TrimSpace(keyword) == "" {
		return sender.Send(ctx, channel.OutboundMessage{Text: SearchUsageText})
	}
	p.metrics.IncSearch("bot")
	results := p.searcher.Search(keyword)
	report := p.delivery.Deliver(ctx, sender, results)
	p.logger.Info("search delivered",
		slog.String("chat_id", msg.ReplyTarget),
		slog.Int("matches", len(results)),
		slog.Int("delivered", report.Count(delivery.StatusDelivered)),
		slog.Int("failed", report.Count(delivery.StatusFailed)),
		slog.Int("skipped", report.Count(delivery.StatusSkipped)),
	)
	return nil
}

func commandLabel(msg channel.InboundMessage) string {
	if msg.Message.IsCommand() {
		return "/" + msg.Message.Command
	}
	return "media"
}
