// Package cache implements the bounded working set of conversation.State
// a running server keeps in memory, plus an optional Redis accelerator
// in front of the durable store.
package cache

import (
	"context"
	"fmt"
	"sync"

	"convflow/internal/conversation"
	"convflow/internal/store"
)

// entry pairs a cached state with the access counter used to pick an
// eviction candidate.
type entry struct {
	state     *conversation.State
	frequency int
}

// UserCache is the in-process working set of conversation.State, bounded
// to Limit entries. When full, the entry with the lowest access
// frequency is evicted to make room for a newly loaded user; among
// entries tied on the lowest frequency, the one inserted earliest is
// evicted, since order is walked in insertion order.
type UserCache struct {
	mu      sync.Mutex
	limit   int
	order   []string
	entries map[string]*entry
	store   *store.SQLiteStore
	redis   *RedisFront
}

// New builds an UserCache backed by s, holding at most limit users in
// memory at once.
func New(s *store.SQLiteStore, limit int) *UserCache {
	return &UserCache{
		limit:   limit,
		entries: make(map[string]*entry, limit),
		store:   s,
	}
}

// UseRedisFront makes front the accelerator a miss consults before
// falling back to the durable store, and the tier a Flush writes
// through to. Passing nil disables it again.
func (c *UserCache) UseRedisFront(front *RedisFront) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.redis = front
}

// Get returns the cached state for userID, loading it from the backing
// store (or creating a fresh one) on a miss, and bumps its access
// frequency.
func (c *UserCache) Get(ctx context.Context, userID, userName string) (*conversation.State, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if e, ok := c.entries[userID]; ok {
		e.frequency++
		return e.state, nil
	}

	state, err := c.load(ctx, userID, userName)
	if err != nil {
		return nil, err
	}

	if len(c.entries) >= c.limit {
		c.evictLocked()
	}

	c.entries[userID] = &entry{state: state, frequency: 1}
	c.order = append(c.order, userID)
	return state, nil
}

func (c *UserCache) load(ctx context.Context, userID, userName string) (*conversation.State, error) {
	if c.redis != nil {
		if state, ok, err := c.redis.Get(ctx, userID); err == nil && ok {
			if state.UserName == "" {
				state.UserName = userName
			}
			return state, nil
		}
	}

	rec, err := c.store.LatestForUser(ctx, userID)
	if err != nil {
		return conversation.New(userID, userName), nil
	}
	name := userName
	if rec.UserName != "" {
		name = rec.UserName
	}
	state := conversation.New(rec.UserID, name)
	state.Version = rec.Version
	state.Intent = rec.Intent
	state.Entities = rec.Entities
	state.Slots = rec.Slots
	if state.Slots == nil {
		state.Slots = make(map[string]*string)
	}
	state.Button = rec.Button
	state.SynonymDict = rec.SynonymDict
	state.LoopCount = rec.LoopCount
	return state, nil
}

// evictLocked removes the entry with the lowest frequency, breaking
// ties by insertion order. Caller must hold c.mu.
func (c *UserCache) evictLocked() {
	if len(c.order) == 0 {
		return
	}
	evictIdx, evictID := 0, c.order[0]
	lowest := c.entries[evictID].frequency
	for i, id := range c.order {
		if f := c.entries[id].frequency; f < lowest {
			lowest = f
			evictIdx = i
			evictID = id
		}
	}
	delete(c.entries, evictID)
	c.order = append(c.order[:evictIdx], c.order[evictIdx+1:]...)
}

// Flush appends userID's current state as one durable turn.
func (c *UserCache) Flush(ctx context.Context, userID string, text string, buttons []string) error {
	c.mu.Lock()
	e, ok := c.entries[userID]
	front := c.redis
	c.mu.Unlock()
	if !ok {
		return fmt.Errorf("cache: user %q is not resident", userID)
	}

	if err := c.store.Append(ctx, store.Record{
		UserID:      e.state.UserID,
		UserName:    e.state.UserName,
		Version:     e.state.Version,
		Intent:      e.state.Intent,
		Slots:       e.state.Slots,
		Entities:    e.state.Entities,
		Button:      e.state.Button,
		SynonymDict: e.state.SynonymDict,
		LoopCount:   e.state.LoopCount,
		Response:    store.Events{Text: text, Button: buttons},
	}); err != nil {
		return err
	}

	if front != nil {
		return front.Set(ctx, userID, e.state)
	}
	return nil
}
