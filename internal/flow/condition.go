package flow

// Condition gates a Trigger: all conditions in a Trigger must evaluate
// true for its events to fire.
type Condition interface {
	Evaluate(intent Intent, entities []Entity, slots Slots) bool
}

// SlotExpectation is the constraint placed on one slot by a
// SlotCondition: Require true means the slot must be set, Require false
// means it must be unset, and a non-nil Equals means the slot must hold
// that exact value.
type SlotExpectation struct {
	Require *bool
	Equals  *string
}

// SlotCondition requires a set of slots to be set, unset, or equal to a
// specific value. All entries must hold for the condition to be true.
type SlotCondition struct {
	Expect map[string]SlotExpectation
}

// Evaluate implements Condition.
func (c SlotCondition) Evaluate(_ Intent, _ []Entity, slots Slots) bool {
	for name, exp := range c.Expect {
		set := slots.IsSet(name)
		switch {
		case exp.Require != nil:
			if set != *exp.Require {
				return false
			}
		case exp.Equals != nil:
			val, ok := slots.Get(name)
			if !ok || val != *exp.Equals {
				return false
			}
		}
	}
	return true
}

// EntityExpectation constrains one entity type: Require false means no
// entity of that type may be present, and a non-nil MatchText means an
// entity of that type with exactly that text must be present.
type EntityExpectation struct {
	Require  *bool
	MatchText *string
}

// EntityCondition requires a set of entity types to be present, absent,
// or present with a specific text value.
type EntityCondition struct {
	Expect map[string]EntityExpectation
}

// Evaluate implements Condition.
func (c EntityCondition) Evaluate(_ Intent, entities []Entity, _ Slots) bool {
	for name, exp := range c.Expect {
		matches := matchingEntities(entities, name)
		switch {
		case exp.Require != nil && !*exp.Require:
			if len(matches) > 0 {
				return false
			}
		case exp.MatchText != nil:
			if !anyEntityTextEquals(matches, *exp.MatchText) {
				return false
			}
		default:
			if len(matches) == 0 {
				return false
			}
		}
	}
	return true
}

func matchingEntities(entities []Entity, name string) []Entity {
	var out []Entity
	for _, e := range entities {
		if e.Name == name {
			out = append(out, e)
		}
	}
	return out
}

func anyEntityTextEquals(entities []Entity, text string) bool {
	for _, e := range entities {
		if e.Text == text {
			return true
		}
	}
	return false
}

// IntentCondition constrains the current intent's name and/or its
// priority ceiling. A nil field is not checked.
type IntentCondition struct {
	Name        *string
	MaxPriority *int
}

// Evaluate implements Condition.
func (c IntentCondition) Evaluate(intent Intent, _ []Entity, _ Slots) bool {
	if c.Name != nil && intent.Name != *c.Name {
		return false
	}
	if c.MaxPriority != nil && intent.Priority > *c.MaxPriority {
		return false
	}
	return true
}
