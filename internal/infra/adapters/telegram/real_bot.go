package telegram

import (
	"context"
	"errors"
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"shelter-guard/internal/config"
	"shelter-guard/internal/domain/model"
	"shelter-guard/internal/domain/ports/adapter"
	"shelter-guard/internal/infra/logging"
)

var _ adapter.TelegramBotAdapter = (*RealTelegramBotAdapter)(nil)

// botAPI is the subset of *tgbotapi.BotAPI the adapter relies on.
type botAPI interface {
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	StopReceivingUpdates()
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
}

// RealTelegramBotAdapter long-polls the Bot API and dispatches updates to the registered handlers.
// Updates are handled one at a time on the polling goroutine.
type RealTelegramBotAdapter struct {
	bot botAPI
	cfg *config.BotConfig
	log *zerolog.Logger

	mu         sync.RWMutex
	onMessage  []adapter.MessageHandler
	onCallback []adapter.CallbackHandler
}

func NewRealTelegramBotAdapter(cfg *config.BotConfig, logger *zerolog.Logger) (*RealTelegramBotAdapter, error) {
	if cfg == nil {
		return nil, errors.New("bot config is nil")
	}
	if cfg.Token == "" {
		return nil, errors.New("bot token is empty")
	}

	bot, err := tgbotapi.NewBotAPI(cfg.Token)
	if err != nil {
		return nil, err
	}
	a := newAdapter(bot, cfg, logger)
	a.log.Info().Str("username", bot.Self.UserName).Msg("telegram bot authorized")
	return a, nil
}

func newAdapter(bot botAPI, cfg *config.BotConfig, logger *zerolog.Logger) *RealTelegramBotAdapter {
	l := logger.With().Str("component", "TelegramBot").Logger()
	return &RealTelegramBotAdapter{bot: bot, cfg: cfg, log: &l}
}

func (r *RealTelegramBotAdapter) OnMessage(h adapter.MessageHandler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.onMessage = append(r.onMessage, h)
}

func (r *RealTelegramBotAdapter) OnCallbackQuery(h adapter.CallbackHandler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.onCallback = append(r.onCallback, h)
}

// StartPolling blocks until ctx is cancelled or the update channel closes.
func (r *RealTelegramBotAdapter) StartPolling(ctx context.Context) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = r.cfg.PollTimeout
	updates := r.bot.GetUpdatesChan(u)
	defer r.bot.StopReceivingUpdates()

	r.log.Info().Int("timeout", u.Timeout).Msg("polling started")
	for {
		select {
		case <-ctx.Done():
			r.log.Info().Msg("polling stopped")
			return ctx.Err()
		case up, ok := <-updates:
			if !ok {
				return nil
			}
			r.handleUpdate(ctx, up)
		}
	}
}

func (r *RealTelegramBotAdapter) handleUpdate(ctx context.Context, update tgbotapi.Update) {
	ctx = logging.WithTraceID(ctx, uuid.NewString())

	r.mu.RLock()
	onMessage, onCallback := r.onMessage, r.onCallback
	r.mu.RUnlock()

	// ----- Inline button callbacks -----
	if q := update.CallbackQuery; q != nil {
		query := adapter.CallbackQuery{ID: q.ID, Data: q.Data}
		switch {
		case q.Message != nil && q.Message.Chat != nil:
			query.ChatID = q.Message.Chat.ID
		case q.From != nil:
			query.ChatID = q.From.ID
		}
		ctx = logging.WithChatID(ctx, query.ChatID)
		logging.With(ctx, r.log).Debug().Str("data", q.Data).Msg("callback query received")
		for _, h := range onCallback {
			h(ctx, query)
		}
		return
	}

	// ----- Regular messages -----
	m := update.Message
	if m == nil || m.Chat == nil {
		return
	}
	msg := adapter.ChatMessage{ChatID: m.Chat.ID, Text: m.Text}
	ctx = logging.WithChatID(ctx, msg.ChatID)
	logging.With(ctx, r.log).Debug().Str("text", m.Text).Msg("message received")
	for _, h := range onMessage {
		h(ctx, msg)
	}
}

// SendMessage sends text to chatID, attaching an inline keyboard when rows is non-empty.
func (r *RealTelegramBotAdapter) SendMessage(ctx context.Context, chatID int64, text string, rows [][]model.Button) error {
	// Support early cancellation
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	msg := tgbotapi.NewMessage(chatID, text)
	if kb, ok := buildKeyboard(rows); ok {
		msg.ReplyMarkup = kb
	}
	_, err := r.bot.Send(msg)
	return err
}

// AnswerCallbackQuery acknowledges a button press with a toast text.
func (r *RealTelegramBotAdapter) AnswerCallbackQuery(ctx context.Context, queryID, text string) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	_, err := r.bot.Request(tgbotapi.NewCallback(queryID, text))
	return err
}

// buildKeyboard converts button rows to tgbotapi markup. Empty rows are skipped;
// ok is false when nothing is left.
func buildKeyboard(rows [][]model.Button) (tgbotapi.InlineKeyboardMarkup, bool) {
	kbRows := make([][]tgbotapi.InlineKeyboardButton, 0, len(rows))
	for _, row := range rows {
		if len(row) == 0 {
			continue
		}
		r := make([]tgbotapi.InlineKeyboardButton, 0, len(row))
		for _, btn := range row {
			r = append(r, tgbotapi.NewInlineKeyboardButtonData(btn.Text, btn.Data))
		}
		kbRows = append(kbRows, r)
	}
	if len(kbRows) == 0 {
		return tgbotapi.InlineKeyboardMarkup{}, false
	}
	return tgbotapi.NewInlineKeyboardMarkup(kbRows...), true
}
