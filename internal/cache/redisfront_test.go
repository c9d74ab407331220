package cache

import "testing"

func TestSessionKeyHasFixedPrefix(t *testing.T) {
	if got, want := sessionKey("u1"), "session:u1"; got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

// Connecting to Redis itself is not exercised here; only NewRedisFront's
// missing-REDIS_URL error path is covered.
func TestNewRedisFrontRequiresRedisURL(t *testing.T) {
	t.Setenv("REDIS_URL", "")
	if _, err := NewRedisFront(t.Context(), 0); err == nil {
		t.Fatal("expected an error with no REDIS_URL set")
	}
}
