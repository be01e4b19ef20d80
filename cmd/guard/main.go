// File: cmd/guard/main.go
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"

	"github.com/rs/zerolog"

	"shelter-guard/internal/config"
	"shelter-guard/internal/domain"
	"shelter-guard/internal/domain/ports/adapter"
	tele "shelter-guard/internal/infra/adapters/telegram"
	"shelter-guard/internal/infra/logging"
	"shelter-guard/internal/infra/memstat"
	"shelter-guard/internal/infra/metrics"
	"shelter-guard/internal/infra/netbus"
	"shelter-guard/internal/infra/registry"
	"shelter-guard/internal/infra/sched"
	"shelter-guard/internal/infra/web"
	"shelter-guard/internal/usecase"
)

// set via -ldflags
var (
	version = "dev"
	commit  = "none"
)

type chatBot interface {
	adapter.TelegramBotAdapter
	StartPolling(ctx context.Context) error
}

func main() {
	// ---- CLI flags ----
	cfgPath := flag.String("config", "config.yaml", "path to YAML config file (optional)")
	devMode := flag.Bool("dev", false, "enable developer mode (console logs, unredacted secrets)")
	flag.Parse()

	cfg, err := config.LoadConfig(*cfgPath, *devMode)
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger := logging.New(cfg.Log, cfg.Runtime.Dev)
	if cfg.Runtime.Dev {
		logger.Info().Msg("[DEV MODE] Enabled")
	}
	metrics.MustRegister()
	metrics.SetBuildInfo(version, commit)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error().Err(err).Msg("guard stopped")
		stop()
		os.Exit(1)
	}
	logger.Info().Msg("shutdown complete")
}

func run(ctx context.Context, cfg *config.Config, logger *zerolog.Logger) error {
	// ---- Device bus ----
	bus, err := netbus.Connect(ctx, cfg.Bus)
	if err != nil {
		return fmt.Errorf("bus: %w", err)
	}
	defer bus.Close()
	logger.Info().Str("bus_id", bus.ID()).Str("addr", cfg.Bus.Address).Msg("bus connected")

	reg := registry.New(bus, logger)
	if err := reg.Start(ctx); err != nil {
		return fmt.Errorf("registry: %w", err)
	}

	motion := reg.Find(cfg.Devices.MotionID)
	door := reg.Find(cfg.Devices.DoorID)
	if motion == nil || door == nil {
		logger.Error().
			Str("motion_id", cfg.Devices.MotionID).Bool("motion_found", motion != nil).
			Str("door_id", cfg.Devices.DoorID).Bool("door_found", door != nil).
			Msg("No devices")
		return domain.ErrDeviceNotFound
	}

	// ---- Telegram ----
	bot, err := newBot(cfg, logger)
	if err != nil {
		return fmt.Errorf("telegram: %w", err)
	}

	// ---- Guard ----
	probe := memstat.NewProbe()
	guard := usecase.NewGuard(cfg.Bot.ChatID, bot, motion, door, probe, logger)

	// ---- Background loops ----
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var wg sync.WaitGroup
	errc := make(chan error, 5)
	start := func(name string, fn func(context.Context) error) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := fn(ctx); err != nil && !errors.Is(err, context.Canceled) {
				errc <- fmt.Errorf("%s: %w", name, err)
			}
		}()
	}

	start("registry", reg.Run)
	start("telegram polling", bot.StartPolling)
	start("bus health", sched.NewBusHealthWorker(cfg.Scheduler.BusCheckInterval, bus, logger).Run)
	start("memory sampler", sched.NewMemoryWorker(cfg.Scheduler.MemorySampleInterval, probe, logger).Run)
	if cfg.Admin.Port > 0 {
		srv := web.NewServer(guard, reg, logger)
		start("admin server", func(ctx context.Context) error { return srv.ListenAndServe(ctx, cfg.Admin.Port) })
	}

	logger.Info().
		Int64("chat_id", cfg.Bot.ChatID).
		Str("motion_id", motion.ID()).
		Str("door_id", door.ID()).
		Msg("guard running")

	// ---- Graceful shutdown ----
	var runErr error
	select {
	case <-ctx.Done():
		logger.Info().Msg("shutdown requested")
	case runErr = <-errc:
	}
	cancel()
	wg.Wait()
	return runErr
}

func newBot(cfg *config.Config, logger *zerolog.Logger) (chatBot, error) {
	token := logging.Redact(cfg.Bot.Token, cfg.Runtime.Dev)
	if strings.ToLower(cfg.Bot.Mode) == "noop" {
		logger.Warn().Str("token", token).Msg("bot.mode=noop; messages are logged, not sent")
		return tele.NewNoopBotAdapter(logger), nil
	}
	logger.Info().Str("token", token).Msg("starting telegram bot in polling mode")
	bot, err := tele.NewRealTelegramBotAdapter(&cfg.Bot, logger)
	if err != nil {
		return nil, err
	}
	return bot, nil
}
