// File: internal/domain/ports/adapter/telegram.go
package adapter

import (
	"context"

	"shelter-guard/internal/domain/model"
)

// ChatMessage is an inbound text message.
type ChatMessage struct {
	ChatID int64
	Text   string
}

// CallbackQuery is an inline button press. ChatID is the chat of the message carrying the button.
type CallbackQuery struct {
	ID     string
	Data   string
	ChatID int64
}

type MessageHandler func(ctx context.Context, msg ChatMessage)

type CallbackHandler func(ctx context.Context, query CallbackQuery)

type TelegramBotAdapter interface {
	OnMessage(h MessageHandler)
	OnCallbackQuery(h CallbackHandler)
	// SendMessage sends text to chatID; rows attaches an inline keyboard when non-empty.
	SendMessage(ctx context.Context, chatID int64, text string, rows [][]model.Button) error
	AnswerCallbackQuery(ctx context.Context, queryID, text string) error
}
