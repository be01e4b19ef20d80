package usecase

import (
	"context"
	"sync/atomic"

	"github.com/rs/zerolog"

	"shelter-guard/internal/domain/model"
	"shelter-guard/internal/domain/ports/adapter"
	"shelter-guard/internal/infra/logging"
	"shelter-guard/internal/infra/metrics"
)

// Outbound texts.
const (
	TextDoorOpened     = `Magnet sensor "door-1" is opened`
	TextDoorClosed     = `Magnet sensor "door-1" is closed`
	TextMotion         = `Motion detected on sensor "motion-1"`
	TextUnknownCommand = "Unknown command"
)

// Chat commands.
const (
	CommandStart  = "/start"
	CommandMemory = "/memory"
)

// Compile-time check
var _ GuardUseCase = (*guardUC)(nil)

type GuardUseCase interface {
	Enabled() bool
	BuildStatus() model.Status

	HandleDoorUpdate(ctx context.Context, update model.Update)
	HandleMotionUpdate(ctx context.Context, update model.Update)
	HandleMessage(ctx context.Context, msg adapter.ChatMessage)
	HandleCallbackQuery(ctx context.Context, query adapter.CallbackQuery)
}

// guardUC relays sensor updates to a single chat while enabled and serves the chat controls.
// Handlers may run concurrently (bot and bus deliver on separate goroutines), so enabled is atomic.
type guardUC struct {
	chatID  int64
	bot     adapter.TelegramBotAdapter
	mem     adapter.MemoryProbe
	log     *zerolog.Logger
	enabled atomic.Bool
}

// NewGuard builds the guard and subscribes it to the bot and both devices.
// The guard starts disabled.
func NewGuard(
	chatID int64,
	bot adapter.TelegramBotAdapter,
	motion, door adapter.Device,
	mem adapter.MemoryProbe,
	logger *zerolog.Logger,
) *guardUC {
	l := logger.With().Str("component", "Guard").Logger()
	g := &guardUC{chatID: chatID, bot: bot, mem: mem, log: &l}

	bot.OnMessage(g.HandleMessage)
	bot.OnCallbackQuery(g.HandleCallbackQuery)
	motion.OnUpdate(g.HandleMotionUpdate)
	door.OnUpdate(g.HandleDoorUpdate)

	metrics.SetGuardEnabled(false)
	return g
}

func (g *guardUC) Enabled() bool { return g.enabled.Load() }

func (g *guardUC) BuildStatus() model.Status { return model.NewStatus(g.enabled.Load()) }

func (g *guardUC) setEnabled(v bool) {
	g.enabled.Store(v)
	metrics.SetGuardEnabled(v)
}

func (g *guardUC) HandleDoorUpdate(ctx context.Context, update model.Update) {
	metrics.IncDeviceUpdate("door")
	log := logging.With(ctx, g.log)
	log.Info().Str("update", update.String()).Msg("Door updated")

	if !g.enabled.Load() {
		return
	}
	open, present := update.MagnetOpen()
	if !present {
		return
	}

	if open {
		g.notify(ctx, "door_opened", TextDoorOpened)
	} else {
		g.notify(ctx, "door_closed", TextDoorClosed)
	}
}

func (g *guardUC) HandleMotionUpdate(ctx context.Context, update model.Update) {
	metrics.IncDeviceUpdate("motion")

	if !g.enabled.Load() {
		return
	}
	if !update.Has(model.FieldMotionAt) {
		return
	}
	g.notify(ctx, "motion", TextMotion)
}

func (g *guardUC) HandleMessage(ctx context.Context, msg adapter.ChatMessage) {
	switch msg.Text {
	case CommandMemory:
		metrics.IncTelegramCommand(msg.Text, true)
		g.send(ctx, msg.ChatID, g.mem.Usage().Report(), nil)

	case CommandStart:
		metrics.IncTelegramCommand(msg.Text, true)
		status := g.BuildStatus()
		g.send(ctx, msg.ChatID, status.Text, status.Buttons)

	default:
		metrics.IncTelegramCommand(msg.Text, false)
		g.send(ctx, msg.ChatID, TextUnknownCommand, nil)
	}
}

func (g *guardUC) HandleCallbackQuery(ctx context.Context, query adapter.CallbackQuery) {
	switch query.Data {
	case model.ActionEnable:
		g.setEnabled(true)
		g.answer(ctx, query)

	case model.ActionDisable:
		g.setEnabled(false)
		g.answer(ctx, query)

	case model.ActionStatus:
		g.answer(ctx, query)

	default:
		metrics.IncTelegramCallback(query.Data, false)
		logging.With(ctx, g.log).Warn().Str("action", query.Data).Msg("Unknown action")
		g.send(ctx, query.ChatID, TextUnknownCommand, nil)
	}
}

// answer acknowledges a recognized callback with the current status text.
func (g *guardUC) answer(ctx context.Context, query adapter.CallbackQuery) {
	metrics.IncTelegramCallback(query.Data, true)
	status := g.BuildStatus()
	if err := g.bot.AnswerCallbackQuery(ctx, query.ID, status.Text); err != nil {
		metrics.IncTransportError("answer_callback")
		logging.With(ctx, g.log).Error().Err(err).Str("query_id", query.ID).Msg("answer callback failed")
	}
}

func (g *guardUC) notify(ctx context.Context, kind, text string) {
	if g.send(ctx, g.chatID, text, nil) {
		metrics.IncNotificationSent(kind)
	}
}

func (g *guardUC) send(ctx context.Context, chatID int64, text string, rows [][]model.Button) bool {
	if err := g.bot.SendMessage(ctx, chatID, text, rows); err != nil {
		metrics.IncTransportError("send_message")
		logging.With(ctx, g.log).Error().Err(err).Int64("to", chatID).Msg("send message failed")
		return false
	}
	return true
}
