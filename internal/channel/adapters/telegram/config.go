package telegram

import (
	"errors"
	"strings"
	"time"
)

// DefaultPollTimeout is the long-poll timeout used when none is configured.
const DefaultPollTimeout = 30 * time.Second

// Config holds the Telegram bot credentials and polling settings.
type Config struct {
	BotToken    string
	PollTimeout time.Duration
}

func (c Config) normalize() (Config, error) {
	c.BotToken = strings.TrimSpace(c.BotToken)
	if c.BotToken == "" {
		return Config{}, errors.New("telegram bot token is required")
	}
	if c.PollTimeout <= 0 {
		c.PollTimeout = DefaultPollTimeout
	}
	return c, nil
}
