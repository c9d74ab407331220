// Package controller implements the bounded-recursion reducer that
// drives a conversation.State turn by turn: resolving pending button
// choices, classifying free text through the NLU oracle, and dispatching
// the resulting effects in a fixed precedence order.
package controller

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"convflow/internal/actions"
	"convflow/internal/conversation"
	"convflow/internal/domain"
	"convflow/internal/flow"
)

// LoopMax bounds how many effect reductions a single turn may perform
// before the controller forces a default response.
const LoopMax = 10

// NLUOracle is the external collaborator that turns free text into an
// intent classification and its entities.
type NLUOracle interface {
	Classify(ctx context.Context, utterance string) (flow.Intent, []flow.Entity, error)
}

// Controller is the reducer loop tying a FlowMap, an action dictionary,
// and an NLU oracle together.
type Controller struct {
	FlowMap *flow.FlowMap
	Actions *actions.Registry
	NLU     NLUOracle
	Logger  zerolog.Logger
	LoopMax int
}

// New builds a Controller with the standard LoopMax.
func New(fm *flow.FlowMap, reg *actions.Registry, oracle NLUOracle, logger zerolog.Logger) *Controller {
	return &Controller{FlowMap: fm, Actions: reg, NLU: oracle, Logger: logger, LoopMax: LoopMax}
}

// Turn runs one reduction of state against an optional user message. An
// empty userMessage means no new input arrived this turn (e.g. a cache
// warm-up): nothing is classified and dispatch starts with no pending
// effects, so it runs the RequestMap named by a set request_slot, or
// else the ActionMap for the state's current intent.
func (c *Controller) Turn(ctx context.Context, state *conversation.State, userMessage string) (*conversation.MessageOutput, error) {
	if state.LoopCount >= c.LoopMax {
		state.LoopCount = 0
		state.Button = nil
		state.SynonymDict = nil
		def := domain.DefaultIntent
		return c.dispatch(ctx, state, flow.EventOutput{TriggerIntent: &def})
	}

	hasMessage := userMessage != ""
	var pending flow.EventOutput
	consumed := false

	if hasMessage && state.HasPendingButton() {
		if trig, ok := state.ResolveButtonChoice(userMessage); ok {
			if result := trig.Evaluate(state.Intent, state.Entities, state.Slots); result != nil {
				pending = *result
			}
			state.Button = nil
			state.SynonymDict = nil
			state.LoopCount++
			consumed = true
		}
	}

	if !consumed && hasMessage {
		intent, entities, err := c.NLU.Classify(ctx, userMessage)
		if err != nil {
			c.Logger.Warn().Err(err).Msg("nlu oracle failed, falling back to default intent")
			def := domain.DefaultIntent
			return c.dispatch(ctx, state, flow.EventOutput{TriggerIntent: &def})
		}
		if !c.FlowMap.Domain.HasIntent(intent.Name) {
			intent.Name = domain.DefaultIntent
			intent.Priority = 0
		} else if am, ok := c.FlowMap.ActionFor(intent.Name); ok {
			intent.Priority = am.Priority
		}
		state.Intent = intent
		state.Entities = entities
	}

	return c.dispatch(ctx, state, pending)
}

func (c *Controller) dispatch(ctx context.Context, state *conversation.State, pending flow.EventOutput) (*conversation.MessageOutput, error) {
	if state.LoopCount >= c.LoopMax {
		state.LoopCount = 0
		state.Button = nil
		state.SynonymDict = nil
		def := domain.DefaultIntent
		return c.dispatch(ctx, state, flow.EventOutput{TriggerIntent: &def})
	}

	if pending.Action != nil {
		next := c.invokeAction(state, *pending.Action)
		state.LoopCount++
		return c.dispatch(ctx, state, next)
	}

	if len(pending.SetSlot) > 0 {
		for k, v := range pending.SetSlot {
			state.Slots[k] = v
		}
	}

	switch {
	case pending.Text != nil:
		state.LoopCount = 0
		msg := &conversation.MessageOutput{Text: *pending.Text}
		state.Response = msg
		return msg, nil

	case pending.Button != nil:
		state.LoopCount = 0
		state.Button = pending.Button.EventsMap
		state.SynonymDict = pending.Button.SynonymDict
		msg := &conversation.MessageOutput{Text: pending.Button.Text, Button: pending.Button.Titles}
		state.Response = msg
		return msg, nil

	case pending.TriggerIntent != nil:
		name := *pending.TriggerIntent
		am, ok := c.FlowMap.ActionFor(name)
		if !ok {
			c.Logger.Warn().Str("intent", name).Msg("trigger_intent resolved to an unregistered intent, falling back to default")
			name = domain.DefaultIntent
			am, ok = c.FlowMap.ActionFor(domain.DefaultIntent)
			if !ok {
				return nil, fmt.Errorf("controller: flow map has no action map for default intent")
			}
		}
		state.Intent = flow.Intent{Name: name, Ranking: map[string]float64{}}
		state.Entities = nil
		next := am.Evaluate(&state.Intent, state.Entities, state.Slots)
		state.LoopCount++
		return c.dispatch(ctx, state, next)

	case pending.RequestSlot != nil || state.Slots.IsSet(flow.RequestSlotMeta):
		slotName := ""
		if pending.RequestSlot != nil {
			slotName = *pending.RequestSlot
		} else {
			slotName, _ = state.Slots.Get(flow.RequestSlotMeta)
		}
		rm, ok := c.FlowMap.RequestFor(slotName)
		if !ok {
			c.Logger.Warn().Str("slot", slotName).Msg("request_slot resolved to an unregistered slot, falling back to default")
			def := domain.DefaultIntent
			state.LoopCount++
			return c.dispatch(ctx, state, flow.EventOutput{TriggerIntent: &def})
		}
		next := rm.Evaluate(&state.Intent, state.Entities, state.Slots)
		state.LoopCount++
		return c.dispatch(ctx, state, next)

	default:
		am, ok := c.FlowMap.ActionFor(state.Intent.Name)
		if !ok {
			am, ok = c.FlowMap.ActionFor(domain.DefaultIntent)
			if !ok {
				return nil, fmt.Errorf("controller: flow map has no action map for default intent")
			}
		}
		next := am.Evaluate(&state.Intent, state.Entities, state.Slots)
		state.LoopCount++
		return c.dispatch(ctx, state, next)
	}
}

func (c *Controller) invokeAction(state *conversation.State, name string) flow.EventOutput {
	act, ok := c.Actions.Get(name)
	if !ok {
		c.Logger.Warn().Str("action", name).Msg("action not found in registry, falling back to default intent")
		def := domain.DefaultIntent
		return flow.EventOutput{TriggerIntent: &def}
	}
	next := act.Call(state.Intent, state.Entities, state.Slots)
	if name == domain.RestartIntent {
		state.ResetForRestart()
	}
	return next
}
