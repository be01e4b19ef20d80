package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() {
	register(
		deviceUpdatesTotal,
		notificationsSentTotal,
		transportErrorsTotal,
		guardEnabled,
		busUp,
		processMemoryBytes,
	)
}

var (
	deviceUpdatesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "guard_device_updates_total",
			Help: "Device updates received from the bus, by device role.",
		},
		[]string{"device"},
	)

	notificationsSentTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "guard_notifications_sent_total",
			Help: "Alerts delivered to the chat, by kind.",
		},
		[]string{"kind"},
	)

	transportErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "guard_transport_errors_total",
			Help: "Failed chat transport calls, by operation.",
		},
		[]string{"op"},
	)

	guardEnabled = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "guard_enabled",
			Help: "1 when notifications are enabled, 0 otherwise.",
		},
	)

	busUp = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "guard_bus_up",
			Help: "1 when the last device bus ping succeeded.",
		},
	)

	processMemoryBytes = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "guard_process_memory_bytes",
			Help: "Process memory as reported by /memory, by kind.",
		},
		[]string{"kind"},
	)
)

func IncDeviceUpdate(device string) {
	deviceUpdatesTotal.WithLabelValues(norm(device)).Inc()
}

func IncNotificationSent(kind string) {
	notificationsSentTotal.WithLabelValues(norm(kind)).Inc()
}

func IncTransportError(op string) {
	transportErrorsTotal.WithLabelValues(norm(op)).Inc()
}

func SetGuardEnabled(enabled bool) {
	if enabled {
		guardEnabled.Set(1)
		return
	}
	guardEnabled.Set(0)
}

func SetBusUp(up bool) {
	if up {
		busUp.Set(1)
		return
	}
	busUp.Set(0)
}

func SetProcessMemory(rss, heapTotal, heapUsed, external uint64) {
	processMemoryBytes.WithLabelValues("rss").Set(float64(rss))
	processMemoryBytes.WithLabelValues("heap_total").Set(float64(heapTotal))
	processMemoryBytes.WithLabelValues("heap_used").Set(float64(heapUsed))
	processMemoryBytes.WithLabelValues("external").Set(float64(external))
}
