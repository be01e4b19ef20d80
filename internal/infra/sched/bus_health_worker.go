package sched

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"shelter-guard/internal/infra/metrics"
)

type Pinger interface {
	Ping(ctx context.Context) error
}

// BusHealthWorker periodically pings the device bus and exports its reachability.
// Only state transitions are logged.
type BusHealthWorker struct {
	interval time.Duration
	bus      Pinger
	log      *zerolog.Logger
	up       bool
}

func NewBusHealthWorker(interval time.Duration, bus Pinger, logger *zerolog.Logger) *BusHealthWorker {
	compLog := logger.With().Str("component", "BusHealthWorker").Logger()
	return &BusHealthWorker{
		interval: interval,
		bus:      bus,
		log:      &compLog,
		up:       true,
	}
}

func (w *BusHealthWorker) Run(ctx context.Context) error {
	w.log.Info().Dur("interval", w.interval).Msg("Starting bus health worker")
	metrics.SetBusUp(true)
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.log.Info().Msg("Stopping bus health worker")
			return ctx.Err()
		case <-ticker.C:
			w.check(ctx)
		}
	}
}

func (w *BusHealthWorker) check(ctx context.Context) {
	pingCtx, cancel := context.WithTimeout(ctx, w.interval)
	defer cancel()

	err := w.bus.Ping(pingCtx)
	up := err == nil
	metrics.SetBusUp(up)
	switch {
	case !up && w.up:
		w.log.Error().Err(err).Msg("bus unreachable")
	case up && !w.up:
		w.log.Info().Msg("bus reachable again")
	}
	w.up = up
}
