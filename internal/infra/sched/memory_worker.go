package sched

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"shelter-guard/internal/domain/ports/adapter"
	"shelter-guard/internal/infra/metrics"
)

// MemoryWorker samples process memory into gauges, the same figures /memory reports.
type MemoryWorker struct {
	interval time.Duration
	probe    adapter.MemoryProbe
	log      *zerolog.Logger
}

func NewMemoryWorker(interval time.Duration, probe adapter.MemoryProbe, logger *zerolog.Logger) *MemoryWorker {
	compLog := logger.With().Str("component", "MemoryWorker").Logger()
	return &MemoryWorker{interval: interval, probe: probe, log: &compLog}
}

func (w *MemoryWorker) Run(ctx context.Context) error {
	w.log.Info().Dur("interval", w.interval).Msg("Starting memory worker")
	// Run once on startup, then on every tick
	w.sample()
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.log.Info().Msg("Stopping memory worker")
			return ctx.Err()
		case <-ticker.C:
			w.sample()
		}
	}
}

func (w *MemoryWorker) sample() {
	u := w.probe.Usage()
	metrics.SetProcessMemory(u.RSS, u.HeapTotal, u.HeapUsed, u.External)
	w.log.Trace().Uint64("rss", u.RSS).Uint64("heap_used", u.HeapUsed).Msg("memory sampled")
}
