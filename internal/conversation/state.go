// Package conversation defines the per-user state the Controller reduces
// over, and the message shape sent back to the outbound channel.
package conversation

import (
	"strings"

	"convflow/internal/flow"
)

// MessageOutput is what the Controller hands to the outbound channel:
// a line of text and, optionally, a fixed set of button choices.
type MessageOutput struct {
	Text   string
	Button []string
}

// State is one user's conversation: the most recently classified
// intent, the entities it carried, the accumulated slots, the pending
// button choices (if any), and the loop-guard counter the Controller
// resets on every externally triggered turn.
type State struct {
	UserID      string
	UserName    string
	Version     string
	Intent      flow.Intent
	Entities    []flow.Entity
	Slots       flow.Slots
	Button      map[string]flow.Trigger
	SynonymDict map[string]string
	LoopCount   int
	Response    *MessageOutput
}

// New builds a fresh, empty conversation state for a user.
func New(userID, userName string) *State {
	return &State{
		UserID:   userID,
		UserName: userName,
		Version:  "1",
		Slots:    flow.Slots{},
	}
}

// ResetForRestart clears the bookkeeping a restart should leave behind:
// the classified intent, its entities, any pending button prompt, and
// the loop guard. Slots are cleared separately, through the restart
// action's own set-slot effect, so this method leaves Slots untouched.
func (s *State) ResetForRestart() {
	s.Intent = flow.Intent{}
	s.Entities = nil
	s.Button = nil
	s.SynonymDict = nil
	s.LoopCount = 0
}

// HasPendingButton reports whether the state is waiting on the user to
// pick one of a previously offered set of button options.
func (s *State) HasPendingButton() bool {
	return len(s.Button) > 0
}

// ResolveButtonChoice looks up a raw user reply against the pending
// button's titles and then its synonyms (both case-insensitive exact
// match), returning the Trigger to fire and true if one matched.
func (s *State) ResolveButtonChoice(reply string) (flow.Trigger, bool) {
	lower := strings.ToLower(reply)
	for title, trig := range s.Button {
		if strings.ToLower(title) == lower {
			return trig, true
		}
	}
	if title, ok := s.SynonymDict[lower]; ok {
		if trig, ok := s.Button[title]; ok {
			return trig, true
		}
	}
	return flow.Trigger{}, false
}
