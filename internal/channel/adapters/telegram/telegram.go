package telegram

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/memohai/mediabot/internal/channel"
)

// botClient is the subset of *tgbotapi.BotAPI the adapter uses.
type botClient interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	StopReceivingUpdates()
}

// The library logger is process-global.
var botLoggerOnce sync.Once

type TelegramAdapter struct {
	cfg    Config
	logger *slog.Logger
	newBot func(token string) (botClient, error)

	mu  sync.Mutex
	bot botClient
}

func NewTelegramAdapter(log *slog.Logger, cfg Config) *TelegramAdapter {
	if log == nil {
		log = slog.Default()
	}
	log = log.With(slog.String("adapter", "telegram"))
	botLoggerOnce.Do(func() {
		if err := tgbotapi.SetLogger(&slogBotLogger{log: log}); err != nil {
			log.Warn("set bot logger failed", slog.Any("error", err))
		}
	})
	return &TelegramAdapter{
		cfg:    cfg,
		logger: log,
		newBot: func(token string) (botClient, error) {
			bot, err := tgbotapi.NewBotAPI(token)
			if err != nil {
				return nil, err
			}
			return bot, nil
		},
	}
}

func (a *TelegramAdapter) Type() channel.Type {
	return Type
}

func (a *TelegramAdapter) client() (botClient, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.bot != nil {
		return a.bot, nil
	}
	cfg, err := a.cfg.normalize()
	if err != nil {
		return nil, err
	}
	a.cfg = cfg
	bot, err := a.newBot(cfg.BotToken)
	if err != nil {
		a.logger.Error("create bot failed", slog.Any("error", err))
		return nil, fmt.Errorf("create telegram bot: %w", err)
	}
	a.bot = bot
	return bot, nil
}

// Connect starts long polling and hands every usable message to handler.
func (a *TelegramAdapter) Connect(ctx context.Context, handler channel.InboundHandler) (channel.Connection, error) {
	if handler == nil {
		return nil, errors.New("inbound handler is required")
	}
	bot, err := a.client()
	if err != nil {
		return nil, err
	}
	a.logger.Info("start")
	updateConfig := tgbotapi.NewUpdate(0)
	updateConfig.Timeout = int(a.cfg.PollTimeout / time.Second)
	updates := bot.GetUpdatesChan(updateConfig)
	connCtx, cancel := context.WithCancel(ctx)

	var stopOnce sync.Once
	stopPolling := func() {
		stopOnce.Do(bot.StopReceivingUpdates)
	}

	go func() {
		for {
			select {
			case <-connCtx.Done():
				a.logger.Info("stop")
				stopPolling()
				return
			case update, ok := <-updates:
				if !ok {
					a.logger.Info("updates channel closed")
					return
				}
				msg, ok := toInboundMessage(update.Message)
				if !ok {
					continue
				}
				a.logger.Debug(
					"inbound received",
					slog.String("chat_id", msg.ReplyTarget),
					slog.String("user_id", msg.Sender.ExternalID),
					slog.String("username", msg.Sender.Username),
					slog.String("command", msg.Message.Command),
					slog.Int("attachments", len(msg.Message.Attachments)),
				)
				if err := handler(connCtx, msg); err != nil {
					a.logger.Error("handle inbound failed", slog.String("chat_id", msg.ReplyTarget), slog.Any("error", err))
				}
			}
		}
	}()

	stop := func(context.Context) error {
		cancel()
		stopPolling()
		return nil
	}
	return channel.NewConnection(Type, stop), nil
}

// Send delivers a text reply or a single attachment resent by file id.
func (a *TelegramAdapter) Send(ctx context.Context, msg channel.OutboundMessage) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	target := strings.TrimSpace(msg.Target)
	if target == "" {
		return errors.New("telegram target is required")
	}
	if msg.IsEmpty() {
		return errors.New("message is required")
	}
	bot, err := a.client()
	if err != nil {
		return err
	}
	if msg.Attachment != nil {
		if err := sendTelegramAttachment(bot, target, *msg.Attachment); err != nil {
			return err
		}
		if text := strings.TrimSpace(msg.Text); text != "" {
			return sendTelegramText(bot, target, text)
		}
		return nil
	}
	return sendTelegramText(bot, target, msg.Text)
}

func toInboundMessage(msg *tgbotapi.Message) (channel.InboundMessage, bool) {
	if msg == nil {
		return channel.InboundMessage{}, false
	}
	chatID := ""
	if msg.Chat != nil {
		chatID = strconv.FormatInt(msg.Chat.ID, 10)
	}
	if chatID == "" {
		return channel.InboundMessage{}, false
	}
	body := channel.Message{
		ID:          strconv.Itoa(msg.MessageID),
		Text:        msg.Text,
		Caption:     msg.Caption,
		Attachments: collectTelegramAttachments(msg),
	}
	if msg.IsCommand() {
		body.Command = strings.ToLower(msg.Command())
		body.Args = strings.Fields(msg.CommandArguments())
	}
	return channel.InboundMessage{
		Channel:     Type,
		Message:     body,
		ReplyTarget: chatID,
		Sender:      resolveTelegramSender(msg),
		ReceivedAt:  time.Unix(int64(msg.Date), 0).UTC(),
	}, true
}

func resolveTelegramSender(msg *tgbotapi.Message) channel.Identity {
	attrs := map[string]string{}
	if msg == nil {
		return channel.Identity{Attributes: attrs}
	}
	if msg.Chat != nil {
		attrs["chat_id"] = strconv.FormatInt(msg.Chat.ID, 10)
	}
	if msg.From != nil {
		userID := strconv.FormatInt(msg.From.ID, 10)
		username := strings.TrimSpace(msg.From.UserName)
		attrs["user_id"] = userID
		if username != "" {
			attrs["username"] = username
		}
		displayName := strings.TrimSpace(msg.From.FirstName + " " + msg.From.LastName)
		if displayName == "" {
			displayName = username
		}
		return channel.Identity{
			ExternalID:  userID,
			Username:    username,
			DisplayName: displayName,
			Attributes:  attrs,
		}
	}
	if msg.SenderChat != nil {
		senderChatID := strconv.FormatInt(msg.SenderChat.ID, 10)
		attrs["sender_chat_id"] = senderChatID
		return channel.Identity{
			ExternalID:  senderChatID,
			Username:    strings.TrimSpace(msg.SenderChat.UserName),
			DisplayName: strings.TrimSpace(msg.SenderChat.Title),
			Attributes:  attrs,
		}
	}
	return channel.Identity{Attributes: attrs}
}

// collectTelegramAttachments reports every photo size as its own image
// attachment; choosing a resolution is left to the consumer.
func collectTelegramAttachments(msg *tgbotapi.Message) []channel.Attachment {
	attachments := make([]channel.Attachment, 0, len(msg.Photo)+1)
	for _, photo := range msg.Photo {
		attachments = append(attachments, channel.Attachment{
			Type:   channel.AttachmentImage,
			FileID: photo.FileID,
			Size:   int64(photo.FileSize),
			Width:  photo.Width,
			Height: photo.Height,
		})
	}
	if msg.Video != nil {
		attachments = append(attachments, channel.Attachment{
			Type:   channel.AttachmentVideo,
			FileID: msg.Video.FileID,
			Name:   msg.Video.FileName,
			Mime:   msg.Video.MimeType,
			Size:   int64(msg.Video.FileSize),
			Width:  msg.Video.Width,
			Height: msg.Video.Height,
		})
	}
	if msg.Document != nil {
		attachments = append(attachments, channel.Attachment{
			Type:   channel.AttachmentFile,
			FileID: msg.Document.FileID,
			Name:   msg.Document.FileName,
			Mime:   msg.Document.MimeType,
			Size:   int64(msg.Document.FileSize),
		})
	}
	if msg.Audio != nil {
		attachments = append(attachments, channel.Attachment{
			Type:   channel.AttachmentAudio,
			FileID: msg.Audio.FileID,
			Name:   msg.Audio.FileName,
			Mime:   msg.Audio.MimeType,
			Size:   int64(msg.Audio.FileSize),
		})
	}
	if msg.Voice != nil {
		attachments = append(attachments, channel.Attachment{
			Type:   channel.AttachmentVoice,
			FileID: msg.Voice.FileID,
			Mime:   msg.Voice.MimeType,
			Size:   int64(msg.Voice.FileSize),
		})
	}
	if msg.Animation != nil {
		attachments = append(attachments, channel.Attachment{
			Type:   channel.AttachmentGIF,
			FileID: msg.Animation.FileID,
			Name:   msg.Animation.FileName,
			Mime:   msg.Animation.MimeType,
			Size:   int64(msg.Animation.FileSize),
			Width:  msg.Animation.Width,
			Height: msg.Animation.Height,
		})
	}
	if msg.Caption != "" {
		for i := range attachments {
			attachments[i].Caption = msg.Caption
		}
	}
	return attachments
}

// resolveChat splits a target into a chat id or a channel username.
func resolveChat(target string) (int64, string, error) {
	if strings.HasPrefix(target, "@") {
		return 0, target, nil
	}
	chatID, err := strconv.ParseInt(target, 10, 64)
	if err != nil {
		return 0, "", errors.New("telegram target must be @username or chat_id")
	}
	return chatID, "", nil
}

func sendTelegramText(bot botClient, target, text string) error {
	chatID, username, err := resolveChat(target)
	if err != nil {
		return err
	}
	message := tgbotapi.NewMessage(chatID, text)
	message.ChannelUsername = username
	_, err = bot.Send(message)
	return err
}

func sendTelegramAttachment(bot botClient, target string, att channel.Attachment) error {
	if strings.TrimSpace(att.FileID) == "" {
		return errors.New("attachment file id is required")
	}
	chatID, username, err := resolveChat(target)
	if err != nil {
		return err
	}
	file := tgbotapi.FileID(att.FileID)
	var payload tgbotapi.Chattable
	switch att.Type {
	case channel.AttachmentImage:
		photo := tgbotapi.NewPhoto(chatID, file)
		photo.ChannelUsername = username
		photo.Caption = att.Caption
		payload = photo
	case channel.AttachmentVideo:
		video := tgbotapi.NewVideo(chatID, file)
		video.ChannelUsername = username
		video.Caption = att.Caption
		payload = video
	case channel.AttachmentFile:
		document := tgbotapi.NewDocument(chatID, file)
		document.ChannelUsername = username
		document.Caption = att.Caption
		payload = document
	default:
		return fmt.Errorf("unsupported attachment type: %s", att.Type)
	}
	_, err = bot.Send(payload)
	return err
}
