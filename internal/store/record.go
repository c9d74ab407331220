// Package store implements the durable append-only log of conversation
// turns: every persisted turn writes one row, never updates or deletes one.
package store

import (
	"time"

	"convflow/internal/flow"
)

// Record is one persisted conversation turn: everything needed to
// reconstruct a conversation.State for its user on a cold start,
// including a pending button prompt mid-flight.
type Record struct {
	ID          int64
	RecordID    string
	UserID      string
	UserName    string
	Version     string
	Intent      flow.Intent
	Slots       flow.Slots
	Entities    []flow.Entity
	Button      map[string]flow.Trigger
	SynonymDict map[string]string
	LoopCount   int
	Timestamp   time.Time
	Response    Events
}

// Events is the outbound effect recorded alongside a turn: the text sent
// and, if any, the button titles offered.
type Events struct {
	Text   string   `json:"text"`
	Button []string `json:"button,omitempty"`
}
