//go:build !integration

package sched

import (
	"context"
	"errors"
	"io"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"shelter-guard/internal/domain/model"
)

func newTestLogger() *zerolog.Logger {
	logger := zerolog.New(io.Discard)
	return &logger
}

type stubPinger struct{ err error }

func (s *stubPinger) Ping(context.Context) error { return s.err }

type countingProbe struct{ calls atomic.Int32 }

func (p *countingProbe) Usage() model.MemoryUsage {
	p.calls.Add(1)
	return model.MemoryUsage{RSS: 100, HeapTotal: 80, HeapUsed: 40, External: 20}
}

func TestBusHealthWorker_TracksTransitions(t *testing.T) {
	p := &stubPinger{}
	w := NewBusHealthWorker(time.Second, p, newTestLogger())

	p.err = errors.New("connection refused")
	w.check(context.Background())
	if w.up {
		t.Fatal("expected bus down after failed ping")
	}

	p.err = nil
	w.check(context.Background())
	if !w.up {
		t.Fatal("expected bus up after successful ping")
	}
}

func TestBusHealthWorker_RunStopsOnCancel(t *testing.T) {
	w := NewBusHealthWorker(10*time.Millisecond, &stubPinger{}, newTestLogger())
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	if err := w.Run(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}
}

func TestMemoryWorker_SamplesOnStart(t *testing.T) {
	probe := &countingProbe{}
	w := NewMemoryWorker(time.Hour, probe, newTestLogger())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := w.Run(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if probe.calls.Load() != 1 {
		t.Errorf("expected one sample on start, got %d", probe.calls.Load())
	}
}
