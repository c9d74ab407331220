package actions

import "convflow/internal/flow"

// restartText is the confirmation shown after every non-null slot has
// been cleared.
const restartText = "Conversation has been restarted"

// RestartAction clears every slot the conversation has accumulated and
// confirms the reset with a fixed text, giving the user a clean slate.
type RestartAction struct{}

// Name implements Action.
func (RestartAction) Name() string { return "restart" }

// Call implements Action.
func (RestartAction) Call(_ flow.Intent, _ []flow.Entity, slots flow.Slots) flow.EventOutput {
	cleared := make(flow.Slots, len(slots))
	for name, v := range slots {
		if v != nil {
			cleared[name] = nil
		}
	}
	text := restartText
	return flow.EventOutput{SetSlot: cleared, Text: &text}
}
