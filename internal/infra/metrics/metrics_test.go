//go:build !integration

package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMustRegisterWith_Idempotent(t *testing.T) {
	reg := prometheus.NewRegistry()
	MustRegisterWith(reg)
	// second call must not panic on duplicate registration
	MustRegisterWith(reg)
}

func TestGuardCounters(t *testing.T) {
	before := testutil.ToFloat64(notificationsSentTotal.WithLabelValues("motion"))
	IncNotificationSent(" Motion ")
	if got := testutil.ToFloat64(notificationsSentTotal.WithLabelValues("motion")); got != before+1 {
		t.Errorf("expected motion counter %v, got %v", before+1, got)
	}

	SetGuardEnabled(true)
	if got := testutil.ToFloat64(guardEnabled); got != 1 {
		t.Errorf("expected gauge 1, got %v", got)
	}
	SetGuardEnabled(false)
	if got := testutil.ToFloat64(guardEnabled); got != 0 {
		t.Errorf("expected gauge 0, got %v", got)
	}
}

func TestUnknownCommandsFolded(t *testing.T) {
	before := testutil.ToFloat64(telegramCommandsReceivedTotal.WithLabelValues("unknown"))
	IncTelegramCommand("/frobnicate", false)
	IncTelegramCommand("/other", false)
	if got := testutil.ToFloat64(telegramCommandsReceivedTotal.WithLabelValues("unknown")); got != before+2 {
		t.Errorf("expected unknown counter %v, got %v", before+2, got)
	}
}

func TestProcessMemoryGauges(t *testing.T) {
	SetProcessMemory(100, 80, 40, 20)
	if got := testutil.ToFloat64(processMemoryBytes.WithLabelValues("heap_used")); got != 40 {
		t.Errorf("expected heap_used 40, got %v", got)
	}
	if n := testutil.CollectAndCount(processMemoryBytes); n != 4 {
		t.Errorf("expected 4 series, got %d", n)
	}

	SetBusUp(false)
	if got := testutil.ToFloat64(busUp); got != 0 {
		t.Errorf("expected bus down, got %v", got)
	}
}
