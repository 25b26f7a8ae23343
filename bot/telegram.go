package bot

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

const (
	// SessionIdleTTL is how long an unfinished report is kept.
	SessionIdleTTL = time.Hour
	// SessionPruneInterval is how often abandoned reports are swept.
	SessionPruneInterval = 10 * time.Minute
)

// Telegram is the Messenger backed by the Telegram Bot API with long polling.
type Telegram struct {
	api      *tgbotapi.BotAPI
	download *resty.Client
	log      *zap.Logger
}

// NewTelegram authenticates against the Bot API.
func NewTelegram(token string, log *zap.Logger) (*Telegram, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("telegram auth: %w", err)
	}
	return &Telegram{
		api:      api,
		download: resty.New().SetTimeout(30 * time.Second),
		log:      log.Named("telegram"),
	}, nil
}

// Username is the bot's account name.
func (t *Telegram) Username() string {
	return t.api.Self.UserName
}

// Send implements Messenger.
func (t *Telegram) Send(_ context.Context, chatID int64, reply Reply) error {
	msg := tgbotapi.NewMessage(chatID, reply.Text)
	switch {
	case len(reply.Keyboard) > 0:
		rows := make([][]tgbotapi.KeyboardButton, 0, len(reply.Keyboard))
		for _, labels := range reply.Keyboard {
			row := make([]tgbotapi.KeyboardButton, 0, len(labels))
			for _, label := range labels {
				row = append(row, tgbotapi.NewKeyboardButton(label))
			}
			rows = append(rows, row)
		}
		markup := tgbotapi.NewReplyKeyboard(rows...)
		markup.OneTimeKeyboard = true
		markup.ResizeKeyboard = true
		msg.ReplyMarkup = markup
	case reply.RemoveKeyboard:
		msg.ReplyMarkup = tgbotapi.NewRemoveKeyboard(true)
	}
	_, err := t.api.Send(msg)
	return err
}

// DownloadPhoto implements Messenger.
func (t *Telegram) DownloadPhoto(ctx context.Context, photo PhotoRef) (io.ReadCloser, error) {
	url, err := t.api.GetFileDirectURL(photo.FileID)
	if err != nil {
		return nil, fmt.Errorf("resolve file url: %w", err)
	}
	resp, err := t.download.R().
		SetContext(ctx).
		SetDoNotParseResponse(true).
		Get(url)
	if err != nil {
		return nil, fmt.Errorf("download photo: %w", err)
	}
	if resp.StatusCode() != http.StatusOK {
		resp.RawBody().Close()
		return nil, fmt.Errorf("download photo: status %d", resp.StatusCode())
	}
	return resp.RawBody(), nil
}

// Run polls for updates and feeds them to b until ctx is cancelled. Each
// chat with pending events gets its own worker so its events stay ordered
// while other chats proceed. Run waits for queued events before returning.
func (t *Telegram) Run(ctx context.Context, b *Bot) {
	cfg := tgbotapi.NewUpdate(0)
	cfg.Timeout = 30
	updates := t.api.GetUpdatesChan(cfg)

	t.log.Info("telegram bot polling", zap.String("username", t.Username()))

	d := newDispatcher(context.WithoutCancel(ctx), b.Handle)
	defer d.wait()

	prune := time.NewTicker(SessionPruneInterval)
	defer prune.Stop()

	for {
		select {
		case <-ctx.Done():
			t.api.StopReceivingUpdates()
			t.log.Info("telegram bot stopped")
			return
		case <-prune.C:
			if n := b.Prune(SessionIdleTTL); n > 0 {
				t.log.Info("dropped abandoned reports", zap.Int("count", n))
			}
		case update, ok := <-updates:
			if !ok {
				return
			}
			if update.Message == nil || update.Message.Chat == nil {
				continue
			}
			ev, ok := EventFromMessage(update.Message)
			if !ok {
				continue
			}
			chatID := update.Message.Chat.ID
			if !d.dispatch(chatID, ev) {
				t.log.Warn("chat backlog full, dropping message", zap.Int64("chat_id", chatID))
			}
		}
	}
}

// EventFromMessage converts a Telegram message into a conversation event.
func EventFromMessage(msg *tgbotapi.Message) (Event, bool) {
	if msg.IsCommand() {
		switch msg.Command() {
		case "start":
			return Event{Kind: EventStart}, true
		case "cancel":
			return Event{Kind: EventCancel}, true
		default:
			return Event{Kind: EventCommand, Text: msg.Command()}, true
		}
	}
	if len(msg.Photo) > 0 {
		largest := msg.Photo[len(msg.Photo)-1]
		var userID int64
		if msg.From != nil {
			userID = msg.From.ID
		}
		return Event{Kind: EventPhoto, Photo: PhotoRef{
			FileID:       largest.FileID,
			FileUniqueID: largest.FileUniqueID,
			UserID:       userID,
		}}, true
	}
	if msg.Text != "" {
		return Event{Kind: EventText, Text: msg.Text}, true
	}
	return Event{}, false
}
