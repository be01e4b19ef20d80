package model

// Callback actions carried by the status keyboard.
const (
	ActionStatus  = "status"
	ActionEnable  = "enable"
	ActionDisable = "disable"
)

type Button struct {
	Text string
	Data string
}

// Status is the guard state rendered for chat: a text line plus the control keyboard.
type Status struct {
	Text    string
	Buttons [][]Button
}

// NewStatus renders the status for the given enabled flag.
func NewStatus(enabled bool) Status {
	text := "Guard: disabled"
	if enabled {
		text = "Guard: enabled"
	}
	return Status{
		Text: text,
		Buttons: [][]Button{
			{
				{Text: "Status", Data: ActionStatus},
				{Text: "Enable", Data: ActionEnable},
				{Text: "Disable", Data: ActionDisable},
			},
		},
	}
}
