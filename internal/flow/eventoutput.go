package flow

// ButtonOutput is the rendered form of a ButtonEvent: the prompt text
// plus the set of triggers keyed by option title, and the synonym
// lookup table mapping a lowercase synonym back to its option title.
type ButtonOutput struct {
	Text        string
	Titles      []string
	EventsMap   map[string]Trigger
	SynonymDict map[string]string
}

// EventOutput accumulates the effect of one or more Events firing in
// sequence. Scalar fields replace on merge; SetSlot is shallow-merged
// key by key, matching the mapping behavior of the original dict-based
// EventOutput.append.
type EventOutput struct {
	Text          *string
	SetSlot       Slots
	Button        *ButtonOutput
	TriggerIntent *string
	RequestSlot   *string
	Action        *string
}

// Append merges other into e: the last non-empty scalar wins, and
// SetSlot entries accumulate key by key.
func (e *EventOutput) Append(other EventOutput) {
	if other.Text != nil {
		e.Text = other.Text
	}
	if other.SetSlot != nil {
		if e.SetSlot == nil {
			e.SetSlot = make(Slots, len(other.SetSlot))
		}
		for k, v := range other.SetSlot {
			e.SetSlot[k] = v
		}
	}
	if other.Button != nil {
		e.Button = other.Button
	}
	if other.TriggerIntent != nil {
		e.TriggerIntent = other.TriggerIntent
	}
	if other.RequestSlot != nil {
		e.RequestSlot = other.RequestSlot
	}
	if other.Action != nil {
		e.Action = other.Action
	}
}

// IsEmpty reports whether no field carries an effect.
func (e EventOutput) IsEmpty() bool {
	return e.Text == nil && len(e.SetSlot) == 0 && e.Button == nil &&
		e.TriggerIntent == nil && e.RequestSlot == nil && e.Action == nil
}
