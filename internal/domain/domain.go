// Package domain defines the closed sets of intent, entity, and slot
// names a flow configuration is allowed to reference.
package domain

import (
	"fmt"
	"sort"
)

// DefaultIntent is the intent every FlowMap must be able to act on: the
// fallback used when the classifier's top intent has no ActionMap entry,
// or when a trigger_intent event cannot resolve a name.
const DefaultIntent = "default"

// RestartIntent is the built-in intent a conversation is routed to when
// the user asks to start over.
const RestartIntent = "restart"

// Domain is a read-only registry of the intents, entities, and slots a
// flow configuration may reference. It is built once at startup and
// shared by every ConversationState that uses it.
type Domain struct {
	intents  map[string]struct{}
	entities map[string]struct{}
	slots    map[string]struct{}
}

// New builds a Domain from closed lists of names. It returns an error if
// any list contains a duplicate or empty name, or if DefaultIntent is
// missing from the intent list.
func New(intents, entities, slots []string) (*Domain, error) {
	d := &Domain{
		intents:  make(map[string]struct{}, len(intents)),
		entities: make(map[string]struct{}, len(entities)),
		slots:    make(map[string]struct{}, len(slots)),
	}

	if err := fillSet(d.intents, "intent", intents); err != nil {
		return nil, err
	}
	if err := fillSet(d.entities, "entity", entities); err != nil {
		return nil, err
	}
	if err := fillSet(d.slots, "slot", slots); err != nil {
		return nil, err
	}

	if _, ok := d.intents[DefaultIntent]; !ok {
		return nil, fmt.Errorf("domain: intent list must contain %q", DefaultIntent)
	}

	return d, nil
}

func fillSet(set map[string]struct{}, kind string, names []string) error {
	for _, name := range names {
		if name == "" {
			return fmt.Errorf("domain: %s name must not be empty", kind)
		}
		if _, exists := set[name]; exists {
			return fmt.Errorf("domain: duplicate %s name %q", kind, name)
		}
		set[name] = struct{}{}
	}
	return nil
}

// HasIntent reports whether name is a declared intent.
func (d *Domain) HasIntent(name string) bool { _, ok := d.intents[name]; return ok }

// HasEntity reports whether name is a declared entity type.
func (d *Domain) HasEntity(name string) bool { _, ok := d.entities[name]; return ok }

// HasSlot reports whether name is a declared slot.
func (d *Domain) HasSlot(name string) bool { _, ok := d.slots[name]; return ok }

// Intents returns the declared intent names in sorted order.
func (d *Domain) Intents() []string { return sortedKeys(d.intents) }

// Entities returns the declared entity names in sorted order.
func (d *Domain) Entities() []string { return sortedKeys(d.entities) }

// Slots returns the declared slot names in sorted order.
func (d *Domain) Slots() []string { return sortedKeys(d.slots) }

func sortedKeys(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
