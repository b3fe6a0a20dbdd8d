// Package delivery resends stored media back to a chat, one record at a time.
package delivery

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/memohai/mediabot/internal/channel"
	"github.com/memohai/mediabot/internal/media"
	"github.com/memohai/mediabot/internal/metrics"
)

// NoResultsText is sent once when a search matched nothing.
const NoResultsText = "No matching media found."

// Status is the outcome of delivering one record.
type Status string

const (
	StatusDelivered Status = "delivered"
	StatusFailed    Status = "failed"
	StatusSkipped   Status = "skipped"
)

// Outcome reports what happened to one record.
type Outcome struct {
	RecordID string `json:"record_id"`
	Status   Status `json:"status"`
	Reason   string `json:"reason,omitempty"`
}

// Report lists one outcome per input record, in input order.
type Report struct {
	Outcomes []Outcome `json:"outcomes"`
}

// Count returns the number of outcomes with the given status.
func (r Report) Count(status Status) int {
	n := 0
	for _, o := range r.Outcomes {
		if o.Status == status {
			n++
		}
	}
	return n
}

// Service sends search results back to the requester one record at a time.
type Service struct {
	metrics *metrics.Recorder
	logger  *slog.Logger
}

// NewService creates a delivery service.
func NewService(log *slog.Logger, rec *metrics.Recorder) *Service {
	if log == nil {
		log = slog.Default()
	}
	return &Service{
		metrics: rec,
		logger:  log.With(slog.String("service", "delivery")),
	}
}

// Deliver resends each record through sender. Every record is attempted
// independently: a failure is reported to the chat by record id and the loop
// moves on. There is no retry and nothing is rolled back.
func (s *Service) Deliver(ctx context.Context, sender channel.ReplySender, records []media.Record) Report {
	report := Report{Outcomes: make([]Outcome, 0, len(records))}
	if len(records) == 0 {
		s.notify(ctx, sender, NoResultsText)
		return report
	}
	for i, record := range records {
		if err := ctx.Err(); err != nil {
			for _, rest := range records[i:] {
				report.Outcomes = append(report.Outcomes, s.record(Outcome{RecordID: rest.ID, Status: StatusFailed, Reason: err.Error()}))
			}
			break
		}
		report.Outcomes = append(report.Outcomes, s.record(s.deliverOne(ctx, sender, record)))
	}
	return report
}

func (s *Service) deliverOne(ctx context.Context, sender channel.ReplySender, record media.Record) Outcome {
	outcome := Outcome{RecordID: record.ID}
	if strings.TrimSpace(string(record.MediaType)) == "" || strings.TrimSpace(record.FileID) == "" {
		outcome.Status = StatusSkipped
		outcome.Reason = "missing media type or file id"
		return outcome
	}
	attType, ok := AttachmentType(record.MediaType)
	if !ok {
		outcome.Status = StatusSkipped
		outcome.Reason = "unsupported media type: " + record.MediaType.String()
		s.notify(ctx, sender, fmt.Sprintf("Unsupported media type: %s", record.MediaType))
		return outcome
	}
	err := sender.Send(ctx, channel.OutboundMessage{
		Attachment: &channel.Attachment{
			Type:    attType,
			FileID:  record.FileID,
			Caption: record.Description,
		},
	})
	if err != nil {
		s.logger.Warn("deliver media failed",
			slog.String("record_id", record.ID),
			slog.String("media_type", record.MediaType.String()),
			slog.Any("error", err),
		)
		outcome.Status = StatusFailed
		outcome.Reason = err.Error()
		s.notify(ctx, sender, FailureNotice(record.ID))
		return outcome
	}
	outcome.Status = StatusDelivered
	return outcome
}

func (s *Service) record(o Outcome) Outcome {
	s.metrics.IncDelivery(string(o.Status))
	return o
}

func (s *Service) notify(ctx context.Context, sender channel.ReplySender, text string) {
	if err := sender.Send(ctx, channel.OutboundMessage{Text: text}); err != nil {
		s.logger.Warn("send notice failed", slog.Any("error", err))
	}
}

// FailureNotice is the chat text for a record that could not be resent.
func FailureNotice(recordID string) string {
	if strings.TrimSpace(recordID) == "" {
		recordID = "unknown"
	}
	return fmt.Sprintf("(Failed to send media: %s)", recordID)
}

// AttachmentType maps a media type to the transport attachment used to resend it.
func AttachmentType(t media.MediaType) (channel.AttachmentType, bool) {
	switch t {
	case media.MediaTypePhoto:
		return channel.AttachmentImage, true
	case media.MediaTypeVideo:
		return channel.AttachmentVideo, true
	case media.MediaTypeDocument:
		return channel.AttachmentFile, true
	default:
		return "", false
	}
}
