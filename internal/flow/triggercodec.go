package flow

import (
	"encoding/json"
	"fmt"
)

// The wire* types below are the persisted form of a Trigger: a plain,
// JSON-tagged mirror of the Condition/Event interface values it carries,
// tagged by kind so a Trigger can round-trip through storage without
// losing the concrete type behind either interface slice.

type wireTrigger struct {
	Conditions []wireCondition `json:"conditions,omitempty"`
	Events     []wireEvent     `json:"events"`
}

type wireCondition struct {
	Kind              string                       `json:"kind"`
	Slot              map[string]SlotExpectation   `json:"slot,omitempty"`
	Entity            map[string]EntityExpectation `json:"entity,omitempty"`
	IntentName        *string                      `json:"intent_name,omitempty"`
	IntentMaxPriority *int                         `json:"intent_max_priority,omitempty"`
}

type wireEvent struct {
	Kind                  string                      `json:"kind"`
	TextOptions           []string                    `json:"text_options,omitempty"`
	SetSlot               map[string]SetSlotDirective `json:"set_slot,omitempty"`
	RequestSlot           *string                     `json:"request_slot,omitempty"`
	TriggerIntentLiteral  *string                     `json:"trigger_intent_literal,omitempty"`
	TriggerIntentFromSlot *string                     `json:"trigger_intent_from_slot,omitempty"`
	ActionName            *string                     `json:"action_name,omitempty"`
	ButtonText            []string                    `json:"button_text,omitempty"`
	ButtonOptions         []wireButtonOption          `json:"button_options,omitempty"`
}

type wireButtonOption struct {
	Title    string      `json:"title"`
	Synonyms []string    `json:"synonyms,omitempty"`
	Events   []wireEvent `json:"events,omitempty"`
}

// MarshalJSON implements json.Marshaler, so a Trigger carried on a
// pending button choice can be written to the durable store without
// losing the concrete Condition/Event types behind its two
// interface-typed slices.
func (t Trigger) MarshalJSON() ([]byte, error) {
	w := wireTrigger{Events: make([]wireEvent, 0, len(t.Events))}
	for _, c := range t.Conditions {
		wc, err := encodeCondition(c)
		if err != nil {
			return nil, err
		}
		w.Conditions = append(w.Conditions, wc)
	}
	for _, e := range t.Events {
		we, err := encodeEvent(e)
		if err != nil {
			return nil, err
		}
		w.Events = append(w.Events, we)
	}
	return json.Marshal(w)
}

// UnmarshalJSON implements json.Unmarshaler, the inverse of MarshalJSON.
func (t *Trigger) UnmarshalJSON(data []byte) error {
	var w wireTrigger
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	conditions := make([]Condition, 0, len(w.Conditions))
	for _, wc := range w.Conditions {
		c, err := decodeCondition(wc)
		if err != nil {
			return err
		}
		conditions = append(conditions, c)
	}
	events := make([]Event, 0, len(w.Events))
	for _, we := range w.Events {
		e, err := decodeEvent(we)
		if err != nil {
			return err
		}
		events = append(events, e)
	}
	t.Conditions = conditions
	t.Events = events
	return nil
}

func encodeCondition(c Condition) (wireCondition, error) {
	switch v := c.(type) {
	case SlotCondition:
		return wireCondition{Kind: "slot", Slot: v.Expect}, nil
	case EntityCondition:
		return wireCondition{Kind: "entity", Entity: v.Expect}, nil
	case IntentCondition:
		return wireCondition{Kind: "intent", IntentName: v.Name, IntentMaxPriority: v.MaxPriority}, nil
	default:
		return wireCondition{}, fmt.Errorf("flow: cannot encode condition of type %T", c)
	}
}

func decodeCondition(wc wireCondition) (Condition, error) {
	switch wc.Kind {
	case "slot":
		return SlotCondition{Expect: wc.Slot}, nil
	case "entity":
		return EntityCondition{Expect: wc.Entity}, nil
	case "intent":
		return IntentCondition{Name: wc.IntentName, MaxPriority: wc.IntentMaxPriority}, nil
	default:
		return nil, fmt.Errorf("flow: unknown condition kind %q", wc.Kind)
	}
}

func encodeEvent(e Event) (wireEvent, error) {
	switch v := e.(type) {
	case TextEvent:
		return wireEvent{Kind: "text", TextOptions: v.Options}, nil
	case SetSlotEvent:
		return wireEvent{Kind: "set_slot", SetSlot: v.Assignments}, nil
	case RequestSlotEvent:
		slot := v.Slot
		return wireEvent{Kind: "request_slot", RequestSlot: &slot}, nil
	case TriggerIntentEvent:
		return wireEvent{Kind: "trigger_intent", TriggerIntentLiteral: v.Literal, TriggerIntentFromSlot: v.FromSlot}, nil
	case ActionEvent:
		name := v.Name
		return wireEvent{Kind: "action", ActionName: &name}, nil
	case ButtonEvent:
		options := make([]wireButtonOption, 0, len(v.Options))
		for _, opt := range v.Options {
			events := make([]wireEvent, 0, len(opt.Events))
			for _, oe := range opt.Events {
				woe, err := encodeEvent(oe)
				if err != nil {
					return wireEvent{}, err
				}
				events = append(events, woe)
			}
			options = append(options, wireButtonOption{Title: opt.Title, Synonyms: opt.Synonyms, Events: events})
		}
		return wireEvent{Kind: "button", ButtonText: v.Text, ButtonOptions: options}, nil
	default:
		return wireEvent{}, fmt.Errorf("flow: cannot encode event of type %T", e)
	}
}

func decodeEvent(we wireEvent) (Event, error) {
	switch we.Kind {
	case "text":
		return TextEvent{Options: we.TextOptions}, nil
	case "set_slot":
		return SetSlotEvent{Assignments: we.SetSlot}, nil
	case "request_slot":
		if we.RequestSlot == nil {
			return nil, fmt.Errorf("flow: request_slot event missing slot name")
		}
		return RequestSlotEvent{Slot: *we.RequestSlot}, nil
	case "trigger_intent":
		return TriggerIntentEvent{Literal: we.TriggerIntentLiteral, FromSlot: we.TriggerIntentFromSlot}, nil
	case "action":
		if we.ActionName == nil {
			return nil, fmt.Errorf("flow: action event missing name")
		}
		return ActionEvent{Name: *we.ActionName}, nil
	case "button":
		options := make([]ButtonOption, 0, len(we.ButtonOptions))
		for _, wo := range we.ButtonOptions {
			events := make([]Event, 0, len(wo.Events))
			for _, woe := range wo.Events {
				oe, err := decodeEvent(woe)
				if err != nil {
					return nil, err
				}
				events = append(events, oe)
			}
			options = append(options, ButtonOption{Title: wo.Title, Synonyms: wo.Synonyms, Events: events})
		}
		return ButtonEvent{Text: we.ButtonText, Options: options}, nil
	default:
		return nil, fmt.Errorf("flow: unknown event kind %q", we.Kind)
	}
}
