package flow

// RequestSlotMeta is the reserved slot name that tracks which slot, if
// any, the conversation is currently waiting on the user to fill. A
// RequestMap's startup prompt only fires once per pending request.
const RequestSlotMeta = "request_slot"

// ActionMap is the rule fired when the current intent matches Intent. It
// stamps the intent's priority, applies its own slot-setting events,
// then evaluates its Triggers in order, returning on the first one that
// fires.
type ActionMap struct {
	Intent    string
	Priority  int
	SlotToSet *SetSlotEvent
	SetSlot   *SetSlotEvent
	Triggers  []Trigger
}

// Evaluate implements the ActionMap rule. intent.Priority is mutated to
// record that this map was the one consulted; slots is mutated in place
// to reflect any slot-setting events.
func (a *ActionMap) Evaluate(intent *Intent, entities []Entity, slots Slots) EventOutput {
	intent.Priority = a.Priority

	out := EventOutput{}
	if a.SlotToSet != nil {
		o := a.SlotToSet.Evaluate(*intent, entities, slots)
		applySetSlot(slots, o.SetSlot)
		out.Append(o)
	}
	if a.SetSlot != nil {
		o := a.SetSlot.Evaluate(*intent, entities, slots)
		applySetSlot(slots, o.SetSlot)
		out.Append(o)
	}

	for _, trig := range a.Triggers {
		if result := trig.Evaluate(*intent, entities, slots); result != nil {
			out.Append(*result)
			return out
		}
	}
	return out
}

// RequestMap is the rule that manages prompting for a single slot. The
// first time it runs with the slot and the request-slot marker both
// unset, it emits the prompt (text or button) and marks the slot as
// pending; on later turns it evaluates Redirect triggers in order, and
// a firing Redirect clears the marker so the request is one-shot.
type RequestMap struct {
	Slot     string
	SetSlot  *SetSlotEvent
	Text     *TextEvent
	Button   *ButtonEvent
	Redirect []Trigger
}

// Evaluate implements the RequestMap rule.
func (r *RequestMap) Evaluate(intent *Intent, entities []Entity, slots Slots) EventOutput {
	out := EventOutput{}
	if r.SetSlot != nil {
		o := r.SetSlot.Evaluate(*intent, entities, slots)
		applySetSlot(slots, o.SetSlot)
		out.Append(o)
	}

	startup := SlotCondition{Expect: map[string]SlotExpectation{
		r.Slot:         {Require: falsePtr()},
		RequestSlotMeta: {Require: falsePtr()},
	}}
	if startup.Evaluate(*intent, entities, slots) {
		if r.Text != nil {
			out.Append(r.Text.Evaluate(*intent, entities, slots))
		}
		if r.Button != nil {
			out.Append(r.Button.Evaluate(*intent, entities, slots))
		}
		markPending := SetSlotEvent{Assignments: map[string]SetSlotDirective{
			RequestSlotMeta: {Literal: StrPtr(r.Slot)},
		}}
		o := markPending.Evaluate(*intent, entities, slots)
		applySetSlot(slots, o.SetSlot)
		out.Append(o)
		return out
	}

	for _, trig := range r.Redirect {
		if result := trig.Evaluate(*intent, entities, slots); result != nil {
			out.Append(*result)
			clearPending := SetSlotEvent{Assignments: map[string]SetSlotDirective{RequestSlotMeta: {Clear: true}}}
			o := clearPending.Evaluate(*intent, entities, slots)
			applySetSlot(slots, o.SetSlot)
			out.Append(o)
			return out
		}
	}
	return out
}

func applySetSlot(slots Slots, assignments Slots) {
	for k, v := range assignments {
		slots[k] = v
	}
}

func falsePtr() *bool {
	f := false
	return &f
}
