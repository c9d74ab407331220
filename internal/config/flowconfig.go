// Package config loads the YAML documents a deployment supplies at
// startup: the domain's closed intent/entity/slot lists, the flow rules
// that drive them, and the ambient logging configuration.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v2"

	"convflow/internal/domain"
	"convflow/internal/flow"
)

// DomainFile is the shape of the YAML file declaring a Domain's closed
// sets.
type DomainFile struct {
	Intents  []string `yaml:"intents"`
	Entities []string `yaml:"entities"`
	Slots    []string `yaml:"slots"`
}

// LoadDomain reads and validates a domain file into a domain.Domain.
func LoadDomain(path string) (*domain.Domain, error) {
	var file DomainFile
	if err := readYAML(path, &file); err != nil {
		return nil, fmt.Errorf("config: loading domain file: %w", err)
	}
	return domain.New(file.Intents, file.Entities, file.Slots)
}

// FlowFile is the shape of the YAML file declaring action and request
// rules.
type FlowFile struct {
	ActionsMap  []rawActionMap  `yaml:"actions_map"`
	RequestsMap []rawRequestMap `yaml:"requests_map"`
}

type rawActionMap struct {
	Intent   string       `yaml:"intent"`
	Priority int          `yaml:"priority"`
	Set      rawSetSlot   `yaml:"set"`
	SetSlot  rawSetSlot   `yaml:"set_slot"`
	Triggers []rawTrigger `yaml:"triggers"`
}

type rawRequestMap struct {
	Slot     string       `yaml:"slot"`
	SetSlot  rawSetSlot   `yaml:"set_slot"`
	Text     []string     `yaml:"text"`
	Button   *rawButton   `yaml:"button"`
	Redirect []rawTrigger `yaml:"redirect"`
}

type rawTrigger struct {
	Conditions rawConditions `yaml:"conditions"`
	Events     []rawEvent    `yaml:"events"`
}

type rawConditions struct {
	Slot   map[string]rawSlotExpect   `yaml:"slot"`
	Entity map[string]rawEntityExpect `yaml:"entity"`
	Intent *rawIntentCondition        `yaml:"intent"`
}

type rawSlotExpect struct {
	Require *bool   `yaml:"require"`
	Equals  *string `yaml:"equals"`
}

type rawEntityExpect struct {
	Require   *bool   `yaml:"require"`
	MatchText *string `yaml:"match_text"`
}

type rawIntentCondition struct {
	Name        *string `yaml:"name"`
	MaxPriority *int    `yaml:"max_priority"`
}

type rawSetSlot map[string]rawSlotDirective

type rawSlotDirective struct {
	Literal    *string        `yaml:"literal"`
	Clear      bool           `yaml:"clear"`
	FromIntent *rawFromIntent `yaml:"from_intent"`
	FromEntity *rawFromEntity `yaml:"from_entity"`
}

type rawFromIntent struct {
	Always  bool              `yaml:"always"`
	Mapping map[string]string `yaml:"mapping"`
}

type rawFromEntity struct {
	EntityName string `yaml:"entity_name"`
	UseText    bool   `yaml:"use_text"`
	Literal    string `yaml:"literal"`
}

type rawEvent struct {
	Text          []string          `yaml:"text"`
	SetSlot       rawSetSlot        `yaml:"set_slot"`
	RequestSlot   *rawRequestSlot   `yaml:"request_slot"`
	TriggerIntent *rawTriggerIntent `yaml:"trigger_intent"`
	Action        *string           `yaml:"action"`
	Button        *rawButton        `yaml:"button"`
}

type rawRequestSlot struct {
	Slot string `yaml:"slot"`
}

type rawTriggerIntent struct {
	Literal  *string `yaml:"literal"`
	FromSlot *string `yaml:"from_slot"`
}

type rawButton struct {
	Text    []string       `yaml:"text"`
	Options []rawButtonOpt `yaml:"options"`
}

type rawButtonOpt struct {
	Title    string     `yaml:"title"`
	Synonyms []string   `yaml:"synonyms"`
	Events   []rawEvent `yaml:"events"`
}

// LoadFlowMap reads a flow file and builds a flow.FlowMap validated
// against d.
func LoadFlowMap(path string, d *domain.Domain) (*flow.FlowMap, error) {
	var file FlowFile
	if err := readYAML(path, &file); err != nil {
		return nil, fmt.Errorf("config: loading flow file: %w", err)
	}

	actions := make([]*flow.ActionMap, 0, len(file.ActionsMap))
	for _, ra := range file.ActionsMap {
		am, err := buildActionMap(d, ra)
		if err != nil {
			return nil, fmt.Errorf("config: action map for intent %q: %w", ra.Intent, err)
		}
		actions = append(actions, am)
	}

	requests := make([]*flow.RequestMap, 0, len(file.RequestsMap))
	for _, rr := range file.RequestsMap {
		rm, err := buildRequestMap(d, rr)
		if err != nil {
			return nil, fmt.Errorf("config: request map for slot %q: %w", rr.Slot, err)
		}
		requests = append(requests, rm)
	}

	return flow.NewFlowMap(d, actions, requests)
}

func buildActionMap(d *domain.Domain, ra rawActionMap) (*flow.ActionMap, error) {
	if ra.Intent == "" {
		return nil, fmt.Errorf("missing intent")
	}
	triggers, err := buildTriggers(d, ra.Triggers)
	if err != nil {
		return nil, err
	}
	am := &flow.ActionMap{
		Intent:   ra.Intent,
		Priority: ra.Priority,
		Triggers: triggers,
	}
	if len(ra.Set) > 0 {
		s, err := buildSetSlotEvent(d, ra.Set)
		if err != nil {
			return nil, err
		}
		am.SlotToSet = &s
	}
	if len(ra.SetSlot) > 0 {
		s, err := buildSetSlotEvent(d, ra.SetSlot)
		if err != nil {
			return nil, err
		}
		am.SetSlot = &s
	}
	return am, nil
}

func buildRequestMap(d *domain.Domain, rr rawRequestMap) (*flow.RequestMap, error) {
	if rr.Slot == "" {
		return nil, fmt.Errorf("missing slot")
	}
	if len(rr.Text) > 0 && rr.Button != nil {
		return nil, fmt.Errorf("request map must use either text or button, not both")
	}
	if len(rr.Text) == 0 && rr.Button == nil {
		return nil, fmt.Errorf("request map must declare a text or button prompt")
	}

	redirect, err := buildTriggers(d, rr.Redirect)
	if err != nil {
		return nil, err
	}

	rm := &flow.RequestMap{Slot: rr.Slot, Redirect: redirect}
	if len(rr.SetSlot) > 0 {
		s, err := buildSetSlotEvent(d, rr.SetSlot)
		if err != nil {
			return nil, err
		}
		rm.SetSlot = &s
	}
	if len(rr.Text) > 0 {
		rm.Text = &flow.TextEvent{Options: rr.Text}
	}
	if rr.Button != nil {
		btn, err := buildButtonEvent(d, *rr.Button)
		if err != nil {
			return nil, err
		}
		rm.Button = &btn
	}
	return rm, nil
}

func buildTriggers(d *domain.Domain, raw []rawTrigger) ([]flow.Trigger, error) {
	triggers := make([]flow.Trigger, 0, len(raw))
	for _, rt := range raw {
		conditions, err := buildConditions(d, rt.Conditions)
		if err != nil {
			return nil, err
		}
		events, err := buildEvents(d, rt.Events)
		if err != nil {
			return nil, err
		}
		if len(events) == 0 {
			return nil, fmt.Errorf("trigger must declare at least one event")
		}
		triggers = append(triggers, flow.Trigger{Conditions: conditions, Events: events})
	}
	return triggers, nil
}

func buildConditions(d *domain.Domain, rc rawConditions) ([]flow.Condition, error) {
	var conditions []flow.Condition
	if len(rc.Slot) > 0 {
		expect := make(map[string]flow.SlotExpectation, len(rc.Slot))
		for name, e := range rc.Slot {
			if !d.HasSlot(name) {
				return nil, fmt.Errorf("slot condition references unknown slot %q", name)
			}
			expect[name] = flow.SlotExpectation{Require: e.Require, Equals: e.Equals}
		}
		conditions = append(conditions, flow.SlotCondition{Expect: expect})
	}
	if len(rc.Entity) > 0 {
		expect := make(map[string]flow.EntityExpectation, len(rc.Entity))
		for name, e := range rc.Entity {
			if !d.HasEntity(name) {
				return nil, fmt.Errorf("entity condition references unknown entity %q", name)
			}
			expect[name] = flow.EntityExpectation{Require: e.Require, MatchText: e.MatchText}
		}
		conditions = append(conditions, flow.EntityCondition{Expect: expect})
	}
	if rc.Intent != nil {
		if rc.Intent.Name != nil && !d.HasIntent(*rc.Intent.Name) {
			return nil, fmt.Errorf("intent condition references unknown intent %q", *rc.Intent.Name)
		}
		conditions = append(conditions, flow.IntentCondition{
			Name:        rc.Intent.Name,
			MaxPriority: rc.Intent.MaxPriority,
		})
	}
	return conditions, nil
}

func buildEvents(d *domain.Domain, raw []rawEvent) ([]flow.Event, error) {
	events := make([]flow.Event, 0, len(raw))
	for _, re := range raw {
		count := 0
		var built flow.Event

		if len(re.Text) > 0 {
			built = flow.TextEvent{Options: re.Text}
			count++
		}
		if len(re.SetSlot) > 0 {
			s, err := buildSetSlotEvent(d, re.SetSlot)
			if err != nil {
				return nil, err
			}
			built = s
			count++
		}
		if re.RequestSlot != nil {
			if !d.HasSlot(re.RequestSlot.Slot) {
				return nil, fmt.Errorf("request_slot event references unknown slot %q", re.RequestSlot.Slot)
			}
			built = flow.RequestSlotEvent{Slot: re.RequestSlot.Slot}
			count++
		}
		if re.TriggerIntent != nil {
			if re.TriggerIntent.Literal != nil && !d.HasIntent(*re.TriggerIntent.Literal) {
				return nil, fmt.Errorf("trigger_intent event references unknown intent %q", *re.TriggerIntent.Literal)
			}
			if re.TriggerIntent.FromSlot != nil && !d.HasSlot(*re.TriggerIntent.FromSlot) {
				return nil, fmt.Errorf("trigger_intent event references unknown slot %q", *re.TriggerIntent.FromSlot)
			}
			built = flow.TriggerIntentEvent{Literal: re.TriggerIntent.Literal, FromSlot: re.TriggerIntent.FromSlot}
			count++
		}
		if re.Action != nil {
			built = flow.ActionEvent{Name: *re.Action}
			count++
		}
		if re.Button != nil {
			b, err := buildButtonEvent(d, *re.Button)
			if err != nil {
				return nil, err
			}
			built = b
			count++
		}

		if count != 1 {
			return nil, fmt.Errorf("event must declare exactly one of text/set_slot/request_slot/trigger_intent/action/button, got %d", count)
		}
		events = append(events, built)
	}
	return events, nil
}

func buildSetSlotEvent(d *domain.Domain, raw rawSetSlot) (flow.SetSlotEvent, error) {
	assignments := make(map[string]flow.SetSlotDirective, len(raw))
	for slot, directive := range raw {
		if !d.HasSlot(slot) {
			return flow.SetSlotEvent{}, fmt.Errorf("set_slot references unknown slot %q", slot)
		}
		built := flow.SetSlotDirective{Literal: directive.Literal, Clear: directive.Clear}
		if directive.FromIntent != nil {
			for fromIntent := range directive.FromIntent.Mapping {
				if !d.HasIntent(fromIntent) {
					return flow.SetSlotEvent{}, fmt.Errorf("set_slot %q from_intent mapping references unknown intent %q", slot, fromIntent)
				}
			}
			built.FromIntent = &flow.FromIntentSource{Always: directive.FromIntent.Always, Mapping: directive.FromIntent.Mapping}
		}
		if directive.FromEntity != nil {
			if !d.HasEntity(directive.FromEntity.EntityName) {
				return flow.SetSlotEvent{}, fmt.Errorf("set_slot %q from_entity references unknown entity %q", slot, directive.FromEntity.EntityName)
			}
			built.FromEntity = &flow.FromEntitySource{
				EntityName: directive.FromEntity.EntityName,
				UseText:    directive.FromEntity.UseText,
				Literal:    directive.FromEntity.Literal,
			}
		}
		assignments[slot] = built
	}
	return flow.SetSlotEvent{Assignments: assignments}, nil
}

func buildButtonEvent(d *domain.Domain, raw rawButton) (flow.ButtonEvent, error) {
	if len(raw.Options) == 0 {
		return flow.ButtonEvent{}, fmt.Errorf("button must declare at least one option")
	}
	options := make([]flow.ButtonOption, 0, len(raw.Options))
	for _, opt := range raw.Options {
		if opt.Title == "" {
			return flow.ButtonEvent{}, fmt.Errorf("button option must declare a title")
		}
		events, err := buildEvents(d, opt.Events)
		if err != nil {
			return flow.ButtonEvent{}, fmt.Errorf("button option %q: %w", opt.Title, err)
		}
		options = append(options, flow.ButtonOption{Title: opt.Title, Synonyms: opt.Synonyms, Events: events})
	}
	return flow.ButtonEvent{Text: raw.Text, Options: options}, nil
}

func readYAML(path string, out any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, out); err != nil {
		return fmt.Errorf("parsing %s: %w", path, err)
	}
	return nil
}
