package config

import (
	"testing"

	"convflow/internal/domain"
)

func TestLoadDomainAndFlowMap(t *testing.T) {
	d, err := LoadDomain("testdata/domain.yaml")
	if err != nil {
		t.Fatalf("LoadDomain: %v", err)
	}
	if !d.HasIntent("greet") || !d.HasSlot("working_type") {
		t.Fatal("loaded domain missing expected entries")
	}

	fm, err := LoadFlowMap("testdata/flow.yaml", d)
	if err != nil {
		t.Fatalf("LoadFlowMap: %v", err)
	}

	if _, ok := fm.ActionFor(domain.DefaultIntent); !ok {
		t.Fatal("expected default action map to be loaded")
	}
	if _, ok := fm.RequestFor("working_type"); !ok {
		t.Fatal("expected working_type request map to be loaded")
	}
}

func TestLoadFlowMapRejectsUnknownIntent(t *testing.T) {
	d, err := domain.New([]string{domain.DefaultIntent}, nil, nil)
	if err != nil {
		t.Fatalf("domain.New: %v", err)
	}
	if _, err := LoadFlowMap("testdata/flow.yaml", d); err == nil {
		t.Fatal("expected error because flow.yaml references intents absent from this domain")
	}
}

func TestLoadFlowMapRejectsUnknownSlotInCondition(t *testing.T) {
	d, err := domain.New(
		[]string{domain.DefaultIntent, "restart", "greet", "provide_info"},
		[]string{"working_type"},
		nil, // no slots declared, even though flow.yaml's greet trigger conditions on working_type
	)
	if err != nil {
		t.Fatalf("domain.New: %v", err)
	}
	_, err = LoadFlowMap("testdata/flow.yaml", d)
	if err == nil {
		t.Fatal("expected error because a trigger condition references a slot absent from this domain")
	}
}

func TestLoadFlowMapRejectsUnknownEntityInSetSlot(t *testing.T) {
	d, err := domain.New(
		[]string{domain.DefaultIntent, "restart", "greet", "provide_info"},
		nil, // no entities declared, even though flow.yaml's provide_info set_slot reads from_entity working_type
		[]string{"working_type", "latest_question"},
	)
	if err != nil {
		t.Fatalf("domain.New: %v", err)
	}
	_, err = LoadFlowMap("testdata/flow.yaml", d)
	if err == nil {
		t.Fatal("expected error because a set_slot directive references an entity absent from this domain")
	}
}
