package flow

import (
	"testing"

	"convflow/internal/domain"
)

func buildDomain(t *testing.T) *domain.Domain {
	t.Helper()
	d, err := domain.New(
		[]string{domain.DefaultIntent, "greet"},
		[]string{"working_type"},
		[]string{"working_type"},
	)
	if err != nil {
		t.Fatalf("domain.New: %v", err)
	}
	return d
}

func TestNewFlowMapRequiresDefaultAction(t *testing.T) {
	d := buildDomain(t)
	_, err := NewFlowMap(d, []*ActionMap{{Intent: "greet"}}, nil)
	if err == nil {
		t.Fatal("expected error when no action map is registered for the default intent")
	}
}

func TestNewFlowMapRejectsUnknownIntent(t *testing.T) {
	d := buildDomain(t)
	actions := []*ActionMap{
		{Intent: domain.DefaultIntent},
		{Intent: "unknown_intent"},
	}
	if _, err := NewFlowMap(d, actions, nil); err == nil {
		t.Fatal("expected error for action map referencing unknown intent")
	}
}

func TestNewFlowMapRejectsUnknownSlot(t *testing.T) {
	d := buildDomain(t)
	actions := []*ActionMap{{Intent: domain.DefaultIntent}}
	requests := []*RequestMap{{Slot: "unknown_slot"}}
	if _, err := NewFlowMap(d, actions, requests); err == nil {
		t.Fatal("expected error for request map referencing unknown slot")
	}
}

func TestFlowMapLookups(t *testing.T) {
	d := buildDomain(t)
	actions := []*ActionMap{{Intent: domain.DefaultIntent}, {Intent: "greet"}}
	requests := []*RequestMap{{Slot: "working_type"}}
	fm, err := NewFlowMap(d, actions, requests)
	if err != nil {
		t.Fatalf("NewFlowMap: %v", err)
	}
	if _, ok := fm.ActionFor("greet"); !ok {
		t.Fatal("expected greet action map to be found")
	}
	if _, ok := fm.RequestFor("working_type"); !ok {
		t.Fatal("expected working_type request map to be found")
	}
	if _, ok := fm.ActionFor("missing"); ok {
		t.Fatal("expected missing intent to be absent")
	}
}
