package channel

import (
	"strings"
	"time"
)

// Type identifies a messaging transport (e.g. "telegram").
type Type string

func (t Type) String() string {
	return string(t)
}

// Identity describes the sender of an inbound message.
type Identity struct {
	ExternalID  string
	Username    string
	DisplayName string
	Attributes  map[string]string
}

type AttachmentType string

const (
	AttachmentImage AttachmentType = "image"
	AttachmentVideo AttachmentType = "video"
	AttachmentFile  AttachmentType = "file"
	AttachmentAudio AttachmentType = "audio"
	AttachmentVoice AttachmentType = "voice"
	AttachmentGIF   AttachmentType = "gif"
)

// Attachment references media held by the transport. FileID is opaque and
// can be handed back to the same transport to resend the media.
type Attachment struct {
	Type    AttachmentType `json:"type"`
	FileID  string         `json:"file_id"`
	Name    string         `json:"name,omitempty"`
	Mime    string         `json:"mime,omitempty"`
	Size    int64          `json:"size,omitempty"`
	Width   int            `json:"width,omitempty"`
	Height  int            `json:"height,omitempty"`
	Caption string         `json:"caption,omitempty"`
}

// Message is the transport-neutral body of an inbound message. Command is set
// (without the leading slash or bot suffix) when the message is a bot command.
type Message struct {
	ID          string
	Text        string
	Caption     string
	Command     string
	Args        []string
	Attachments []Attachment
}

// IsCommand reports whether the message carries a bot command.
func (m Message) IsCommand() bool {
	return strings.TrimSpace(m.Command) != ""
}

type InboundMessage struct {
	Channel     Type
	Message     Message
	ReplyTarget string
	Sender      Identity
	ReceivedAt  time.Time
}

// OutboundMessage is either a text reply or a single attachment with caption.
type OutboundMessage struct {
	Target     string      `json:"target"`
	Text       string      `json:"text,omitempty"`
	Attachment *Attachment `json:"attachment,omitempty"`
}

// IsEmpty reports whether there is nothing to send.
func (m OutboundMessage) IsEmpty() bool {
	return strings.TrimSpace(m.Text) == "" && m.Attachment == nil
}
