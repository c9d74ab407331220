package flow

import (
	"math/rand"
	"regexp"
	"strings"

	"convflow/internal/domain"
)

// Event produces an EventOutput when fired. Triggers fire every Event in
// their list, in order, and Append the results together.
type Event interface {
	Evaluate(intent Intent, entities []Entity, slots Slots) EventOutput
}

var slotTokenPattern = regexp.MustCompile(`__[\w\s]+?__`)

// TextEvent picks one of its candidate texts at random and substitutes
// every __slot_name__ token with the slot's current value.
type TextEvent struct {
	Options []string
}

// Evaluate implements Event.
func (t TextEvent) Evaluate(_ Intent, _ []Entity, slots Slots) EventOutput {
	if len(t.Options) == 0 {
		return EventOutput{}
	}
	text := t.Options[0]
	if len(t.Options) > 1 {
		text = t.Options[rand.Intn(len(t.Options))]
	}
	text = slotTokenPattern.ReplaceAllStringFunc(text, func(token string) string {
		name := token[2 : len(token)-2]
		if val, ok := slots.Get(name); ok {
			return val
		}
		return token
	})
	return EventOutput{Text: &text}
}

// FromIntentSource derives a slot value from the current intent: either
// its literal name (Always) or a lookup keyed by intent name.
type FromIntentSource struct {
	Always  bool
	Mapping map[string]string
}

// FromEntitySource derives a slot value from a matching entity: either
// the entity's own text (UseText) or a fixed literal tied to its
// presence.
type FromEntitySource struct {
	EntityName string
	UseText    bool
	Literal    string
}

// SetSlotDirective describes how one slot's value is computed when a
// SetSlotEvent fires. Exactly one of Literal, Clear, FromIntent, or
// FromEntity applies.
type SetSlotDirective struct {
	Literal    *string
	Clear      bool
	FromIntent *FromIntentSource
	FromEntity *FromEntitySource
}

// SetSlotEvent assigns or clears a set of slots.
type SetSlotEvent struct {
	Assignments map[string]SetSlotDirective
}

// Evaluate implements Event.
func (s SetSlotEvent) Evaluate(intent Intent, entities []Entity, _ Slots) EventOutput {
	out := Slots{}
	for slotName, directive := range s.Assignments {
		switch {
		case directive.Literal != nil:
			v := *directive.Literal
			out[slotName] = &v
		case directive.Clear:
			out[slotName] = nil
		case directive.FromIntent != nil:
			if directive.FromIntent.Always {
				v := intent.Name
				out[slotName] = &v
				continue
			}
			if v, ok := directive.FromIntent.Mapping[intent.Name]; ok {
				out[slotName] = &v
			} else {
				out[slotName] = nil
			}
		case directive.FromEntity != nil:
			match, ok := firstEntity(entities, directive.FromEntity.EntityName)
			if !ok {
				continue
			}
			if directive.FromEntity.UseText {
				v := match.Text
				out[slotName] = &v
			} else {
				v := directive.FromEntity.Literal
				out[slotName] = &v
			}
		}
	}
	return EventOutput{SetSlot: out}
}

func firstEntity(entities []Entity, name string) (Entity, bool) {
	for _, e := range entities {
		if e.Name == name {
			return e, true
		}
	}
	return Entity{}, false
}

// RequestSlotEvent marks a slot as the one the conversation should ask
// the user to fill next.
type RequestSlotEvent struct {
	Slot string
}

// Evaluate implements Event.
func (r RequestSlotEvent) Evaluate(_ Intent, _ []Entity, _ Slots) EventOutput {
	slot := r.Slot
	return EventOutput{RequestSlot: &slot}
}

// TriggerIntentEvent redirects the conversation to a different intent,
// either a literal name or one read from a slot. If the slot resolution
// yields no value, the domain's default intent is used instead of
// propagating a lookup failure downstream.
type TriggerIntentEvent struct {
	Literal  *string
	FromSlot *string
}

// Evaluate implements Event.
func (t TriggerIntentEvent) Evaluate(_ Intent, _ []Entity, slots Slots) EventOutput {
	var name string
	switch {
	case t.Literal != nil:
		name = *t.Literal
	case t.FromSlot != nil:
		if v, ok := slots.Get(*t.FromSlot); ok {
			name = v
		} else {
			name = domain.DefaultIntent
		}
	default:
		name = domain.DefaultIntent
	}
	return EventOutput{TriggerIntent: &name}
}

// ActionEvent names an action the caller should invoke after the current
// dispatch step completes.
type ActionEvent struct {
	Name string
}

// Evaluate implements Event.
func (a ActionEvent) Evaluate(_ Intent, _ []Entity, _ Slots) EventOutput {
	name := a.Name
	return EventOutput{Action: &name}
}

// ButtonOption is one selectable choice in a ButtonEvent, with the
// events it fires when chosen and the synonyms that also select it.
type ButtonOption struct {
	Title    string
	Events   []Event
	Synonyms []string
}

// ButtonEvent offers the user a prompt with a fixed set of button
// choices. Each choice resolves to a Trigger with no conditions,
// combining whatever events the option lists.
type ButtonEvent struct {
	Text    []string
	Options []ButtonOption
}

// Evaluate implements Event.
func (b ButtonEvent) Evaluate(_ Intent, _ []Entity, _ Slots) EventOutput {
	text := ""
	if len(b.Text) == 1 {
		text = b.Text[0]
	} else if len(b.Text) > 1 {
		text = b.Text[rand.Intn(len(b.Text))]
	}

	titles := make([]string, 0, len(b.Options))
	eventsMap := make(map[string]Trigger, len(b.Options))
	synonymDict := make(map[string]string)
	for _, opt := range b.Options {
		titles = append(titles, opt.Title)
		eventsMap[opt.Title] = Trigger{Events: opt.Events}
		for _, syn := range opt.Synonyms {
			synonymDict[strings.ToLower(syn)] = opt.Title
		}
	}

	return EventOutput{Button: &ButtonOutput{
		Text:        text,
		Titles:      titles,
		EventsMap:   eventsMap,
		SynonymDict: synonymDict,
	}}
}
