// Package media owns the captioned media index: the record model, the
// file-backed store and keyword search over captions.
package media

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// MediaType tags how a record is delivered back to a chat.
type MediaType string

const (
	MediaTypePhoto    MediaType = "photo"
	MediaTypeVideo    MediaType = "video"
	MediaTypeDocument MediaType = "document"
)

// UnknownSubmitter is stored when the transport does not identify the sender.
const UnknownSubmitter = "unknown"

// Valid reports whether t is one of the known media types.
func (t MediaType) Valid() bool {
	switch t {
	case MediaTypePhoto, MediaTypeVideo, MediaTypeDocument:
		return true
	default:
		return false
	}
}

func (t MediaType) String() string {
	return string(t)
}

// Record is one persisted media entry. FileID is the transport's opaque media
// reference and is never dereferenced locally. Description is the caption.
type Record struct {
	ID          string    `json:"id" validate:"required"`
	FileID      string    `json:"file_id" validate:"required"`
	MediaType   MediaType `json:"media_type" validate:"required,oneof=photo video document"`
	Description string    `json:"description" validate:"required"`
	Username    string    `json:"username" validate:"required"`
}

// Deliverable reports whether the record can be sent back through a transport.
// Records loaded from older or hand-edited documents may fail this check.
func (r Record) Deliverable() bool {
	return r.MediaType.Valid() && strings.TrimSpace(r.FileID) != ""
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// NewRecord builds a validated record with a fresh id.
func NewRecord(fileID string, mediaType MediaType, caption, submitter string) (Record, error) {
	if strings.TrimSpace(submitter) == "" {
		submitter = UnknownSubmitter
	}
	record := Record{
		ID:          uuid.NewString(),
		FileID:      fileID,
		MediaType:   mediaType,
		Description: caption,
		Username:    submitter,
	}
	if err := Validate(record); err != nil {
		return Record{}, err
	}
	return record, nil
}

// Validate checks the constraints enforced on records created by this system.
func Validate(record Record) error {
	if err := validate.Struct(record); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidRecord, err)
	}
	return nil
}
