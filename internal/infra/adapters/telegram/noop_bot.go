package telegram

import (
	"context"

	"github.com/rs/zerolog"

	"shelter-guard/internal/domain/model"
	"shelter-guard/internal/domain/ports/adapter"
)

var _ adapter.TelegramBotAdapter = (*NoopBotAdapter)(nil)

// NoopBotAdapter implements adapter.TelegramBotAdapter for local/dev testing.
// It logs messages instead of sending real Telegram messages and never receives updates.
type NoopBotAdapter struct {
	log *zerolog.Logger
}

// NewNoopBotAdapter constructs the noop adapter.
func NewNoopBotAdapter(logger *zerolog.Logger) *NoopBotAdapter {
	l := logger.With().Str("component", "NoopTelegramBot").Logger()
	return &NoopBotAdapter{log: &l}
}

func (b *NoopBotAdapter) OnMessage(adapter.MessageHandler) {}

func (b *NoopBotAdapter) OnCallbackQuery(adapter.CallbackHandler) {}

func (b *NoopBotAdapter) SendMessage(ctx context.Context, chatID int64, text string, rows [][]model.Button) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	b.log.Info().Int64("chat_id", chatID).Str("text", text).Interface("buttons", rows).Msg("send message")
	return nil
}

func (b *NoopBotAdapter) AnswerCallbackQuery(ctx context.Context, queryID, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	b.log.Info().Str("query_id", queryID).Str("text", text).Msg("answer callback")
	return nil
}

// StartPolling blocks until ctx is done.
func (b *NoopBotAdapter) StartPolling(ctx context.Context) error {
	<-ctx.Done()
	return ctx.Err()
}
