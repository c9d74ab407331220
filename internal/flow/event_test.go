package flow

import (
	"testing"

	"convflow/internal/domain"
)

func TestTextEventSubstitutesSlots(t *testing.T) {
	slots := Slots{"working_type": StrPtr("full_time")}
	evt := TextEvent{Options: []string{"Your schedule is __working_type__."}}
	out := evt.Evaluate(Intent{}, nil, slots)
	if out.Text == nil || *out.Text != "Your schedule is full_time." {
		t.Fatalf("got %v, want substituted text", out.Text)
	}
}

func TestTextEventLeavesUnknownTokenUntouched(t *testing.T) {
	evt := TextEvent{Options: []string{"Hello __unknown_slot__"}}
	out := evt.Evaluate(Intent{}, nil, Slots{})
	if out.Text == nil || *out.Text != "Hello __unknown_slot__" {
		t.Fatalf("got %v, want token left in place", out.Text)
	}
}

func TestSetSlotEventLiteralAndClear(t *testing.T) {
	evt := SetSlotEvent{Assignments: map[string]SetSlotDirective{
		"a": {Literal: StrPtr("x")},
		"b": {Clear: true},
	}}
	out := evt.Evaluate(Intent{}, nil, Slots{})
	if v, ok := out.SetSlot.Get("a"); !ok || v != "x" {
		t.Fatalf("expected a=x, got %v", out.SetSlot["a"])
	}
	if out.SetSlot.IsSet("b") {
		t.Fatal("expected b to be cleared")
	}
}

func TestSetSlotEventFromIntentAlways(t *testing.T) {
	evt := SetSlotEvent{Assignments: map[string]SetSlotDirective{
		"latest_intent": {FromIntent: &FromIntentSource{Always: true}},
	}}
	out := evt.Evaluate(Intent{Name: "greet"}, nil, Slots{})
	if v, _ := out.SetSlot.Get("latest_intent"); v != "greet" {
		t.Fatalf("got %q, want greet", v)
	}
}

func TestSetSlotEventFromEntitySkipsWhenAbsent(t *testing.T) {
	evt := SetSlotEvent{Assignments: map[string]SetSlotDirective{
		"working_type": {FromEntity: &FromEntitySource{EntityName: "working_type", UseText: true}},
	}}
	out := evt.Evaluate(Intent{}, nil, Slots{})
	if _, ok := out.SetSlot["working_type"]; ok {
		t.Fatal("expected no assignment when entity is absent")
	}

	out2 := evt.Evaluate(Intent{}, []Entity{{Name: "working_type", Text: "remote"}}, Slots{})
	if v, _ := out2.SetSlot.Get("working_type"); v != "remote" {
		t.Fatalf("got %q, want remote", v)
	}
}

func TestTriggerIntentEventFallsBackToDefault(t *testing.T) {
	evt := TriggerIntentEvent{FromSlot: StrPtr("chosen_intent")}
	out := evt.Evaluate(Intent{}, nil, Slots{})
	if out.TriggerIntent == nil || *out.TriggerIntent != domain.DefaultIntent {
		t.Fatalf("got %v, want fallback to default", out.TriggerIntent)
	}

	slots := Slots{"chosen_intent": StrPtr("restart")}
	out2 := evt.Evaluate(Intent{}, nil, slots)
	if out2.TriggerIntent == nil || *out2.TriggerIntent != "restart" {
		t.Fatalf("got %v, want restart", out2.TriggerIntent)
	}
}

func TestButtonEventBuildsSynonymDict(t *testing.T) {
	evt := ButtonEvent{
		Text: []string{"Pick one:"},
		Options: []ButtonOption{
			{Title: "Yes", Synonyms: []string{"Sure", "YES"}},
			{Title: "No"},
		},
	}
	out := evt.Evaluate(Intent{}, nil, Slots{})
	if out.Button == nil {
		t.Fatal("expected button output")
	}
	if out.Button.SynonymDict["sure"] != "Yes" || out.Button.SynonymDict["yes"] != "Yes" {
		t.Fatalf("got %v", out.Button.SynonymDict)
	}
	if _, ok := out.Button.EventsMap["No"]; !ok {
		t.Fatal("expected No option to be in events map")
	}
}
