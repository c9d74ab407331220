package flow

import "testing"

func TestSlotConditionRequire(t *testing.T) {
	slots := Slots{"working_type": StrPtr("full_time")}
	mustBeSet := SlotCondition{Expect: map[string]SlotExpectation{"working_type": {Require: boolPtr(true)}}}
	if !mustBeSet.Evaluate(Intent{}, nil, slots) {
		t.Fatal("expected condition to hold when slot is set")
	}

	mustBeUnset := SlotCondition{Expect: map[string]SlotExpectation{"latest_question": {Require: boolPtr(false)}}}
	if !mustBeUnset.Evaluate(Intent{}, nil, slots) {
		t.Fatal("expected condition to hold when slot is unset")
	}
}

func TestSlotConditionEquals(t *testing.T) {
	slots := Slots{"working_type": StrPtr("full_time")}
	cond := SlotCondition{Expect: map[string]SlotExpectation{"working_type": {Equals: StrPtr("full_time")}}}
	if !cond.Evaluate(Intent{}, nil, slots) {
		t.Fatal("expected equality match")
	}
	cond2 := SlotCondition{Expect: map[string]SlotExpectation{"working_type": {Equals: StrPtr("part_time")}}}
	if cond2.Evaluate(Intent{}, nil, slots) {
		t.Fatal("expected equality mismatch to fail")
	}
}

func TestEntityConditionPresenceAndText(t *testing.T) {
	entities := []Entity{{Name: "working_type", Text: "full_time"}}

	presence := EntityCondition{Expect: map[string]EntityExpectation{"working_type": {}}}
	if !presence.Evaluate(Intent{}, entities, nil) {
		t.Fatal("expected presence condition to hold")
	}

	absence := EntityCondition{Expect: map[string]EntityExpectation{"age": {Require: boolPtr(false)}}}
	if !absence.Evaluate(Intent{}, entities, nil) {
		t.Fatal("expected absence condition to hold for entity never present")
	}

	textMatch := EntityCondition{Expect: map[string]EntityExpectation{"working_type": {MatchText: StrPtr("full_time")}}}
	if !textMatch.Evaluate(Intent{}, entities, nil) {
		t.Fatal("expected text match to hold")
	}

	textMismatch := EntityCondition{Expect: map[string]EntityExpectation{"working_type": {MatchText: StrPtr("part_time")}}}
	if textMismatch.Evaluate(Intent{}, entities, nil) {
		t.Fatal("expected text mismatch to fail")
	}
}

func TestIntentConditionNameAndPriority(t *testing.T) {
	intent := Intent{Name: "greet", Priority: 2}

	nameCond := IntentCondition{Name: StrPtr("greet")}
	if !nameCond.Evaluate(intent, nil, nil) {
		t.Fatal("expected name match")
	}

	wrongName := IntentCondition{Name: StrPtr("farewell")}
	if wrongName.Evaluate(intent, nil, nil) {
		t.Fatal("expected name mismatch to fail")
	}

	withinBound := IntentCondition{MaxPriority: intPtr(3)}
	if !withinBound.Evaluate(intent, nil, nil) {
		t.Fatal("expected priority within bound to hold")
	}

	exceedsBound := IntentCondition{MaxPriority: intPtr(1)}
	if exceedsBound.Evaluate(intent, nil, nil) {
		t.Fatal("expected priority exceeding bound to fail")
	}
}

func boolPtr(b bool) *bool { return &b }
func intPtr(i int) *int    { return &i }
