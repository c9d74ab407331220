package cache

import (
	"context"
	"testing"

	"convflow/internal/flow"
	"convflow/internal/store"
)

func openTestStore(t *testing.T) *store.SQLiteStore {
	t.Helper()
	s, err := store.Open(":memory:")
	if err != nil {
		t.Fatalf("store.Open: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestGetLoadsFromStoreOnMiss(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)
	if err := s.Append(ctx, store.Record{UserID: "u1", Version: "1", Intent: flow.Intent{Name: "greet"}}); err != nil {
		t.Fatalf("Append: %v", err)
	}

	c := New(s, 2)
	state, err := c.Get(ctx, "u1", "Alice")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if state.Intent.Name != "greet" {
		t.Fatalf("got intent %q, want greet", state.Intent.Name)
	}
}

func TestGetCreatesFreshStateForUnknownUser(t *testing.T) {
	c := New(openTestStore(t), 2)
	state, err := c.Get(context.Background(), "new-user", "Bob")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if state.UserID != "new-user" || state.Intent.Name != "" {
		t.Fatalf("got %+v", state)
	}
}

func TestGetReturnsSameInstanceOnRepeatedAccess(t *testing.T) {
	ctx := context.Background()
	c := New(openTestStore(t), 2)
	first, _ := c.Get(ctx, "u1", "Alice")
	first.Intent.Name = "greet"

	second, err := c.Get(ctx, "u1", "Alice")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if second != first {
		t.Fatal("expected the same cached state instance")
	}
	if second.Intent.Name != "greet" {
		t.Fatalf("got %q", second.Intent.Name)
	}
}

func TestEvictionDropsLowestFrequency(t *testing.T) {
	ctx := context.Background()
	c := New(openTestStore(t), 2)

	c.Get(ctx, "u1", "Alice")
	c.Get(ctx, "u1", "Alice")
	c.Get(ctx, "u2", "Bob")

	if _, err := c.Get(ctx, "u3", "Carol"); err != nil {
		t.Fatalf("Get: %v", err)
	}

	c.mu.Lock()
	_, hasU1 := c.entries["u1"]
	_, hasU2 := c.entries["u2"]
	_, hasU3 := c.entries["u3"]
	c.mu.Unlock()

	if !hasU1 {
		t.Fatal("expected u1 (frequency 2) to survive eviction")
	}
	if hasU2 {
		t.Fatal("expected u2 (frequency 1, the lowest) to be evicted")
	}
	if !hasU3 {
		t.Fatal("expected the newly loaded user to be resident")
	}
}

func TestFlushPersistsCurrentState(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)
	c := New(s, 2)

	state, _ := c.Get(ctx, "u1", "Alice")
	state.Intent = flow.Intent{Name: "greet"}

	if err := c.Flush(ctx, "u1", "Hi!", nil); err != nil {
		t.Fatalf("Flush: %v", err)
	}

	rec, err := s.LatestForUser(ctx, "u1")
	if err != nil {
		t.Fatalf("LatestForUser: %v", err)
	}
	if rec.Response.Text != "Hi!" || rec.Intent.Name != "greet" {
		t.Fatalf("got %+v", rec)
	}
}

func TestFlushAndReloadRoundTripsPendingButton(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)
	c := New(s, 2)

	state, _ := c.Get(ctx, "u1", "Alice")
	literal := "greet"
	state.Button = map[string]flow.Trigger{
		"Yes": {Events: []flow.Event{flow.TriggerIntentEvent{Literal: &literal}}},
	}
	state.SynonymDict = map[string]string{"sure": "Yes"}
	state.LoopCount = 2

	if err := c.Flush(ctx, "u1", "Pick one", []string{"Yes"}); err != nil {
		t.Fatalf("Flush: %v", err)
	}

	fresh := New(s, 2)
	reloaded, err := fresh.Get(ctx, "u1", "Alice")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if !reloaded.HasPendingButton() {
		t.Fatal("expected the pending button to survive a cold reload")
	}
	if reloaded.SynonymDict["sure"] != "Yes" {
		t.Fatalf("got synonym dict %+v", reloaded.SynonymDict)
	}
	if reloaded.LoopCount != 2 {
		t.Fatalf("got loop count %d, want 2", reloaded.LoopCount)
	}
	trig, ok := reloaded.ResolveButtonChoice("Yes")
	if !ok || len(trig.Events) != 1 {
		t.Fatalf("expected the reloaded button's trigger to resolve, got %+v ok=%v", trig, ok)
	}
}

func TestFlushRejectsUnknownUser(t *testing.T) {
	c := New(openTestStore(t), 2)
	if err := c.Flush(context.Background(), "ghost", "hi", nil); err == nil {
		t.Fatal("expected an error for a user not resident in the cache")
	}
}
