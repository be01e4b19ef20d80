//go:build !integration

package usecase_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"sync"
	"testing"

	"github.com/rs/zerolog"

	"shelter-guard/internal/domain/model"
	"shelter-guard/internal/domain/ports/adapter"
)

// ---- Mock TelegramBotAdapter ----

type SentMessage struct {
	ChatID int64
	Text   string
	Rows   [][]model.Button
}

type AnsweredCallback struct {
	QueryID string
	Text    string
}

// MockTelegramBot captures registered handlers and every outbound call.
type MockTelegramBot struct {
	mu       sync.Mutex
	Sent     []SentMessage
	Answered []AnsweredCallback

	MessageHandlers  []adapter.MessageHandler
	CallbackHandlers []adapter.CallbackHandler

	SendErr   error
	AnswerErr error
}

var _ adapter.TelegramBotAdapter = (*MockTelegramBot)(nil)

func (m *MockTelegramBot) OnMessage(h adapter.MessageHandler) {
	m.MessageHandlers = append(m.MessageHandlers, h)
}

func (m *MockTelegramBot) OnCallbackQuery(h adapter.CallbackHandler) {
	m.CallbackHandlers = append(m.CallbackHandlers, h)
}

func (m *MockTelegramBot) SendMessage(_ context.Context, chatID int64, text string, rows [][]model.Button) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Sent = append(m.Sent, SentMessage{ChatID: chatID, Text: text, Rows: rows})
	return m.SendErr
}

func (m *MockTelegramBot) AnswerCallbackQuery(_ context.Context, queryID, text string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Answered = append(m.Answered, AnsweredCallback{QueryID: queryID, Text: text})
	return m.AnswerErr
}

// Message simulates an inbound message through the registered handlers.
func (m *MockTelegramBot) Message(ctx context.Context, chatID int64, text string) {
	for _, h := range m.MessageHandlers {
		h(ctx, adapter.ChatMessage{ChatID: chatID, Text: text})
	}
}

// Press simulates an inline button press.
func (m *MockTelegramBot) Press(ctx context.Context, queryID string, chatID int64, data string) {
	for _, h := range m.CallbackHandlers {
		h(ctx, adapter.CallbackQuery{ID: queryID, Data: data, ChatID: chatID})
	}
}

func (m *MockTelegramBot) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Sent, m.Answered = nil, nil
}

// ---- Mock Device ----

type MockDevice struct {
	id       string
	handlers []adapter.UpdateHandler
}

var _ adapter.Device = (*MockDevice)(nil)

func NewMockDevice(id string) *MockDevice { return &MockDevice{id: id} }

func (d *MockDevice) ID() string { return d.id }

func (d *MockDevice) OnUpdate(h adapter.UpdateHandler) { d.handlers = append(d.handlers, h) }

func (d *MockDevice) Emit(ctx context.Context, u model.Update) {
	for _, h := range d.handlers {
		h(ctx, u)
	}
}

// ---- Mock MemoryProbe ----

type MockMemory struct {
	Snapshot model.MemoryUsage
}

func (m *MockMemory) Usage() model.MemoryUsage { return m.Snapshot }

var errTransport = errors.New("transport down")

func newTestLogger() *zerolog.Logger {
	logger := zerolog.New(io.Discard)
	return &logger
}

// logSink collects JSON log lines written by the guard.
type logSink struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (s *logSink) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.buf.Write(p)
}

// Entries decodes every line logged so far.
func (s *logSink) Entries(t *testing.T) []map[string]any {
	t.Helper()
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []map[string]any
	for _, line := range bytes.Split(bytes.TrimSpace(s.buf.Bytes()), []byte("\n")) {
		if len(line) == 0 {
			continue
		}
		var e map[string]any
		if err := json.Unmarshal(line, &e); err != nil {
			t.Fatalf("bad log line %q: %v", line, err)
		}
		out = append(out, e)
	}
	return out
}

// Find returns the first entry with the given message, or nil.
func (s *logSink) Find(t *testing.T, msg string) map[string]any {
	t.Helper()
	for _, e := range s.Entries(t) {
		if e["message"] == msg {
			return e
		}
	}
	return nil
}

func newSinkLogger() (*zerolog.Logger, *logSink) {
	sink := &logSink{}
	logger := zerolog.New(sink).Level(zerolog.DebugLevel)
	return &logger, sink
}
