package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"convflow/internal/flow"
)

func openTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestAppendAndLatestForUser(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	require.NoError(t, s.Append(ctx, Record{UserID: "u1", Version: "1", Intent: flow.Intent{Name: "greet"}}))
	require.NoError(t, s.Append(ctx, Record{UserID: "u1", Version: "1", Intent: flow.Intent{Name: "provide_info"}}))

	latest, err := s.LatestForUser(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "provide_info", latest.Intent.Name)
	assert.NotEmpty(t, latest.RecordID)
}

func TestRecentForUserOrdersNewestFirst(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	for _, name := range []string{"greet", "provide_info", "restart"} {
		require.NoError(t, s.Append(ctx, Record{UserID: "u1", Version: "1", Intent: flow.Intent{Name: name}}))
	}

	recs, err := s.RecentForUser(ctx, "u1", 2)
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, "restart", recs[0].Intent.Name)
	assert.Equal(t, "provide_info", recs[1].Intent.Name)
}

func TestRecentOverallSpansUsers(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	require.NoError(t, s.Append(ctx, Record{UserID: "u1", Version: "1", Intent: flow.Intent{Name: "greet"}}))
	require.NoError(t, s.Append(ctx, Record{UserID: "u2", Version: "1", Intent: flow.Intent{Name: "restart"}}))

	recs, err := s.RecentOverall(ctx, 10)
	require.NoError(t, err)
	assert.Len(t, recs, 2)
}

func TestLatestForUsersBulk(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	require.NoError(t, s.Append(ctx, Record{UserID: "u1", Version: "1", Intent: flow.Intent{Name: "greet"}}))
	require.NoError(t, s.Append(ctx, Record{UserID: "u2", Version: "1", Intent: flow.Intent{Name: "restart"}}))
	require.NoError(t, s.Append(ctx, Record{UserID: "u1", Version: "1", Intent: flow.Intent{Name: "provide_info"}}))
	require.NoError(t, s.Append(ctx, Record{UserID: "u3", Version: "1", Intent: flow.Intent{Name: "greet"}}))

	recs, err := s.LatestForUsers(ctx, 2)
	require.NoError(t, err)
	require.Len(t, recs, 2, "expected exactly the 2 newest active users")

	byUser := map[string]string{}
	for _, r := range recs {
		byUser[r.UserID] = r.Intent.Name
	}
	// u3's last turn is the newest, then u1's, then u2's, so the
	// newest-2-active-users window is {u3, u1}, not {u1, u2}.
	assert.Equal(t, "provide_info", byUser["u1"])
	assert.Equal(t, "greet", byUser["u3"])
	_, hasU2 := byUser["u2"]
	assert.False(t, hasU2, "expected u2 dropped outside the newest-2-active-users window")
}

func TestRecordRoundTripsUserNameButtonSynonymsAndLoopCount(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	literal := "greet"
	require.NoError(t, s.Append(ctx, Record{
		UserID:   "u1",
		UserName: "Alice",
		Version:  "1",
		Intent:   flow.Intent{Name: "default"},
		Button: map[string]flow.Trigger{
			"Yes": {Events: []flow.Event{flow.TriggerIntentEvent{Literal: &literal}}},
		},
		SynonymDict: map[string]string{"sure": "Yes"},
		LoopCount:   3,
	}))

	rec, err := s.LatestForUser(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "Alice", rec.UserName)
	assert.Equal(t, 3, rec.LoopCount)
	assert.Equal(t, "Yes", rec.SynonymDict["sure"])
	require.Contains(t, rec.Button, "Yes")
	assert.Len(t, rec.Button["Yes"].Events, 1)
}
