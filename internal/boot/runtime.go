// Package boot resolves runtime settings from config and the process environment.
package boot

import (
	"errors"
	"os"
	"strings"
	"time"

	"github.com/memohai/mediabot/internal/config"
)

// Environment variables that override config values.
const (
	EnvBotToken  = "TELEGRAM_BOT_TOKEN"
	EnvHTTPAddr  = "HTTP_ADDR"
	EnvStorePath = "MEDIA_DB_FILE"
)

// ErrBotTokenRequired is returned when no Telegram token is configured.
var ErrBotTokenRequired = errors.New("telegram bot token is required (set TELEGRAM_BOT_TOKEN)")

// RuntimeConfig holds the settings the running process needs.
type RuntimeConfig struct {
	BotToken    string
	PollTimeout time.Duration
	ServerAddr  string
	CORSOrigins []string
	StorePath   string
}

// ProvideRuntimeConfig builds RuntimeConfig from cfg and applies env overrides.
// A missing bot token is fatal.
func ProvideRuntimeConfig(cfg config.Config) (*RuntimeConfig, error) {
	ret := &RuntimeConfig{
		BotToken:    strings.TrimSpace(cfg.Telegram.BotToken),
		PollTimeout: time.Duration(cfg.Telegram.PollTimeoutSeconds) * time.Second,
		ServerAddr:  cfg.Server.Addr,
		CORSOrigins: cfg.Server.CORSOrigins,
		StorePath:   ResolveStorePath(cfg),
	}

	if value := strings.TrimSpace(os.Getenv(EnvBotToken)); value != "" {
		ret.BotToken = value
	}
	if value := os.Getenv(EnvHTTPAddr); value != "" {
		ret.ServerAddr = value
	}
	if ret.BotToken == "" {
		return nil, ErrBotTokenRequired
	}
	return ret, nil
}

// ResolveStorePath returns the media index path, honoring MEDIA_DB_FILE.
func ResolveStorePath(cfg config.Config) string {
	if value := strings.TrimSpace(os.Getenv(EnvStorePath)); value != "" {
		return value
	}
	if cfg.Store.Path != "" {
		return cfg.Store.Path
	}
	return config.DefaultStorePath
}
