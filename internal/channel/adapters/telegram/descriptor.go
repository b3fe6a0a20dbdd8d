// Package telegram implements the Telegram channel adapter.
package telegram

import "github.com/memohai/mediabot/internal/channel"

// Type is the registered channel type identifier for Telegram.
const Type channel.Type = "telegram"
