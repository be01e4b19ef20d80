package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() {
	register(
		telegramCommandsReceivedTotal,
		telegramCallbacksReceivedTotal,
	)
}

var (
	telegramCommandsReceivedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "telegram_commands_received_total",
			Help: "Counts incoming messages by command.",
		},
		[]string{"command"},
	)

	telegramCallbacksReceivedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "telegram_callbacks_received_total",
			Help: "Counts inline button presses by action.",
		},
		[]string{"action"},
	)
)

// IncTelegramCommand counts a message; unrecognized text is folded into "unknown"
// to keep label cardinality bounded.
func IncTelegramCommand(command string, known bool) {
	if !known {
		command = "unknown"
	}
	telegramCommandsReceivedTotal.WithLabelValues(norm(command)).Inc()
}

func IncTelegramCallback(action string, known bool) {
	if !known {
		action = "unknown"
	}
	telegramCallbacksReceivedTotal.WithLabelValues(norm(action)).Inc()
}
