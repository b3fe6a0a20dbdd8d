// Package ingest turns inbound chat messages carrying captioned media into
// media records.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/memohai/mediabot/internal/channel"
	"github.com/memohai/mediabot/internal/media"
	"github.com/memohai/mediabot/internal/metrics"
)

// Reply texts sent to the submitter.
const (
	ReplySaved         = "✅ Media saved!"
	ReplyRejected      = "⚠️ Please send a media file with a caption."
	ReplyPersistFailed = "❌ Media received but could not be saved. Please try again later."
)

// Status is the outcome of one ingestion.
type Status string

const (
	StatusSaved         Status = "saved"
	StatusRejected      Status = "rejected"
	StatusPersistFailed Status = "persist_failed"
)

// Store is the write side of the media store.
type Store interface {
	Append(ctx context.Context, record media.Record) error
}

// Result describes what happened to an inbound message. Record is set for
// saved and persist_failed results.
type Result struct {
	Status Status
	Record media.Record
}

// Handler is stateless per message; all state lives in the store.
type Handler struct {
	store   Store
	metrics *metrics.Recorder
	logger  *slog.Logger
}

// NewHandler creates an ingestion handler writing to store.
func NewHandler(log *slog.Logger, store Store, rec *metrics.Recorder) *Handler {
	if log == nil {
		log = slog.Default()
	}
	return &Handler{
		store:   store,
		metrics: rec,
		logger:  log.With(slog.String("service", "ingest")),
	}
}

// Ingest builds and stores a record from msg. Missing media or an absent
// caption is a rejection, not an error. Captions are stored verbatim. A persistence failure yields StatusPersistFailed
// with a nil error; any other store failure is returned.
func (h *Handler) Ingest(ctx context.Context, msg channel.InboundMessage) (Result, error) {
	fileID, mediaType, ok := ResolveMedia(msg.Message.Attachments)
	caption := msg.Message.Caption
	if !ok || caption == "" {
		h.metrics.IncIngest(string(StatusRejected))
		h.logger.Debug("submission rejected",
			slog.Bool("has_media", ok),
			slog.Bool("has_caption", caption != ""),
		)
		return Result{Status: StatusRejected}, nil
	}

	record, err := media.NewRecord(fileID, mediaType, caption, msg.Sender.Username)
	if err != nil {
		return Result{}, fmt.Errorf("build record: %w", err)
	}
	if err := h.store.Append(ctx, record); err != nil {
		var persistErr *media.PersistenceError
		if errors.As(err, &persistErr) {
			h.metrics.IncIngest(string(StatusPersistFailed))
			return Result{Status: StatusPersistFailed, Record: record}, nil
		}
		return Result{}, fmt.Errorf("append record: %w", err)
	}
	h.metrics.IncIngest(string(StatusSaved))
	h.logger.Info("media saved",
		slog.String("record_id", record.ID),
		slog.String("media_type", record.MediaType.String()),
		slog.String("username", record.Username),
	)
	return Result{Status: StatusSaved, Record: record}, nil
}

// Handle ingests msg and tells the submitter how it went.
func (h *Handler) Handle(ctx context.Context, msg channel.InboundMessage, sender channel.ReplySender) (Result, error) {
	result, err := h.Ingest(ctx, msg)
	if err != nil {
		return result, err
	}
	if err := sender.Send(ctx, channel.OutboundMessage{Text: replyFor(result.Status)}); err != nil {
		return result, fmt.Errorf("send ingest reply: %w", err)
	}
	return result, nil
}

func replyFor(status Status) string {
	switch status {
	case StatusSaved:
		return ReplySaved
	case StatusPersistFailed:
		return ReplyPersistFailed
	default:
		return ReplyRejected
	}
}

// ResolveMedia picks the media reference of a message. Photos win over
// videos, videos over documents. Several image attachments are resolutions of
// one photo and the largest is used.
func ResolveMedia(attachments []channel.Attachment) (string, media.MediaType, bool) {
	var (
		photo    *channel.Attachment
		video    *channel.Attachment
		document *channel.Attachment
	)
	for i := range attachments {
		att := &attachments[i]
		if strings.TrimSpace(att.FileID) == "" {
			continue
		}
		switch att.Type {
		case channel.AttachmentImage:
			if photo == nil || largerPhoto(*att, *photo) {
				photo = att
			}
		case channel.AttachmentVideo:
			if video == nil {
				video = att
			}
		case channel.AttachmentFile:
			if document == nil {
				document = att
			}
		}
	}
	switch {
	case photo != nil:
		return photo.FileID, media.MediaTypePhoto, true
	case video != nil:
		return video.FileID, media.MediaTypeVideo, true
	case document != nil:
		return document.FileID, media.MediaTypeDocument, true
	default:
		return "", "", false
	}
}

// largerPhoto reports whether a should replace b. Ties go to the later
// variant, which is how Telegram orders sizes.
func largerPhoto(a, b channel.Attachment) bool {
	areaA, areaB := a.Width*a.Height, b.Width*b.Height
	if areaA != areaB {
		return areaA > areaB
	}
	return a.Size >= b.Size
}
