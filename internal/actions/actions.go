// Package actions implements the action dictionary: named side-effecting
// handlers an ActionEvent can invoke by name, registered explicitly at
// startup rather than discovered through reflection.
package actions

import "convflow/internal/flow"

// Action is one named entry in the action dictionary.
type Action interface {
	Name() string
	Call(intent flow.Intent, entities []flow.Entity, slots flow.Slots) flow.EventOutput
}

// Registry is the explicit action dictionary a Controller consults when
// an EventOutput carries an Action name.
type Registry struct {
	actions map[string]Action
}

// NewRegistry builds an empty registry.
func NewRegistry() *Registry {
	return &Registry{actions: make(map[string]Action)}
}

// Register adds a to the dictionary, keyed by its Name(). A later
// registration for the same name replaces the earlier one.
func (r *Registry) Register(a Action) {
	r.actions[a.Name()] = a
}

// Get looks up an action by name.
func (r *Registry) Get(name string) (Action, bool) {
	a, ok := r.actions[name]
	return a, ok
}

// NewDefaultRegistry returns a Registry with the built-in default and
// restart actions already registered, the minimum any deployment needs.
func NewDefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(DefaultAction{})
	r.Register(RestartAction{})
	return r
}
