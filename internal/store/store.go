package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/bytedance/sonic"
	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

const createTableSQL = `CREATE TABLE IF NOT EXISTS chat_state (
	id integer PRIMARY KEY AUTOINCREMENT,
	record_id text NOT NULL,
	user_id text NOT NULL,
	user_name text,
	version text NOT NULL,
	intent text,
	slots text,
	entities text,
	button text,
	synonym_dict text,
	loop_count integer,
	timestamp real,
	events text
)`

const createIndexSQL = `CREATE INDEX IF NOT EXISTS idx_chat_state_user_id ON chat_state (user_id, id)`

const selectColumns = `id, record_id, user_id, user_name, version, intent, slots, entities, button, synonym_dict, loop_count, timestamp, events`

// SQLiteStore is the append-only persistence layer for conversation
// turns, backed by a pure-Go SQLite driver.
type SQLiteStore struct {
	db *sql.DB
}

// Open creates (or attaches to) the database file at path and ensures
// its schema exists.
func Open(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("store: opening database %q: %w", path, err)
	}
	if _, err := db.Exec(createTableSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("store: creating chat_state table: %w", err)
	}
	if _, err := db.Exec(createIndexSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("store: creating chat_state index: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

// Close releases the underlying database handle.
func (s *SQLiteStore) Close() error { return s.db.Close() }

// Append writes one conversation turn. RecordID and Timestamp are
// stamped if unset.
func (s *SQLiteStore) Append(ctx context.Context, rec Record) error {
	if rec.UserID == "" {
		return fmt.Errorf("store: record must carry a user id")
	}
	if rec.RecordID == "" {
		rec.RecordID = uuid.NewString()
	}
	if rec.Timestamp.IsZero() {
		rec.Timestamp = time.Now()
	}

	intentJSON, err := sonic.Marshal(rec.Intent)
	if err != nil {
		return fmt.Errorf("store: encoding intent: %w", err)
	}
	slotsJSON, err := sonic.Marshal(rec.Slots)
	if err != nil {
		return fmt.Errorf("store: encoding slots: %w", err)
	}
	entitiesJSON, err := sonic.Marshal(rec.Entities)
	if err != nil {
		return fmt.Errorf("store: encoding entities: %w", err)
	}
	buttonJSON, err := sonic.Marshal(rec.Button)
	if err != nil {
		return fmt.Errorf("store: encoding button: %w", err)
	}
	synonymJSON, err := sonic.Marshal(rec.SynonymDict)
	if err != nil {
		return fmt.Errorf("store: encoding synonym dict: %w", err)
	}
	eventsJSON, err := sonic.Marshal(rec.Response)
	if err != nil {
		return fmt.Errorf("store: encoding events: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO chat_state (record_id, user_id, user_name, version, intent, slots, entities, button, synonym_dict, loop_count, timestamp, events)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.RecordID, rec.UserID, rec.UserName, rec.Version,
		string(intentJSON), string(slotsJSON), string(entitiesJSON),
		string(buttonJSON), string(synonymJSON), rec.LoopCount,
		float64(rec.Timestamp.UnixNano())/1e9, string(eventsJSON),
	)
	if err != nil {
		return fmt.Errorf("store: inserting chat_state row: %w", err)
	}
	return nil
}

// LatestForUser returns the most recently appended turn for userID, or
// sql.ErrNoRows if the user has none.
func (s *SQLiteStore) LatestForUser(ctx context.Context, userID string) (*Record, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+selectColumns+` FROM chat_state WHERE user_id = ? ORDER BY id DESC LIMIT 1`, userID)
	return scanRecord(row)
}

// RecentForUser returns up to limit of userID's most recent turns,
// newest first.
func (s *SQLiteStore) RecentForUser(ctx context.Context, userID string, limit int) ([]*Record, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+selectColumns+` FROM chat_state WHERE user_id = ? ORDER BY id DESC LIMIT ?`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("store: querying recent turns for user %q: %w", userID, err)
	}
	defer rows.Close()
	return scanRecords(rows)
}

// RecentOverall returns up to limit of the most recently appended turns
// across every user, newest first.
func (s *SQLiteStore) RecentOverall(ctx context.Context, limit int) ([]*Record, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+selectColumns+` FROM chat_state ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("store: querying recent turns overall: %w", err)
	}
	defer rows.Close()
	return scanRecords(rows)
}

// LatestForUsers returns the most recent turn for each of the limit
// distinct users with the most recent activity, newest-active first.
// It is the bulk form of LatestForUser: one round trip instead of one
// query per user. Users are ranked by the id of their latest turn, not
// by how many turns they have.
func (s *SQLiteStore) LatestForUsers(ctx context.Context, limit int) ([]*Record, error) {
	if limit <= 0 {
		return nil, nil
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+selectColumns+`
		FROM chat_state
		WHERE id IN (
			SELECT MAX(id) FROM chat_state GROUP BY user_id
		)
		ORDER BY id DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("store: querying latest turns for %d active users: %w", limit, err)
	}
	defer rows.Close()
	return scanRecords(rows)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (*Record, error) {
	var (
		rec        Record
		userName   sql.NullString
		loopCount  sql.NullInt64
		ts         float64
		intentJSON, slotsJSON, entitiesJSON, buttonJSON, synonymJSON, evJSON string
	)
	err := row.Scan(&rec.ID, &rec.RecordID, &rec.UserID, &userName, &rec.Version,
		&intentJSON, &slotsJSON, &entitiesJSON, &buttonJSON, &synonymJSON, &loopCount, &ts, &evJSON)
	if err != nil {
		return nil, err
	}
	rec.UserName = userName.String
	rec.LoopCount = int(loopCount.Int64)
	if err := sonic.Unmarshal([]byte(intentJSON), &rec.Intent); err != nil {
		return nil, fmt.Errorf("store: decoding intent: %w", err)
	}
	if err := sonic.Unmarshal([]byte(slotsJSON), &rec.Slots); err != nil {
		return nil, fmt.Errorf("store: decoding slots: %w", err)
	}
	if err := sonic.Unmarshal([]byte(entitiesJSON), &rec.Entities); err != nil {
		return nil, fmt.Errorf("store: decoding entities: %w", err)
	}
	if buttonJSON != "" && buttonJSON != "null" {
		if err := sonic.Unmarshal([]byte(buttonJSON), &rec.Button); err != nil {
			return nil, fmt.Errorf("store: decoding button: %w", err)
		}
	}
	if synonymJSON != "" && synonymJSON != "null" {
		if err := sonic.Unmarshal([]byte(synonymJSON), &rec.SynonymDict); err != nil {
			return nil, fmt.Errorf("store: decoding synonym dict: %w", err)
		}
	}
	if err := sonic.Unmarshal([]byte(evJSON), &rec.Response); err != nil {
		return nil, fmt.Errorf("store: decoding events: %w", err)
	}
	rec.Timestamp = time.Unix(0, int64(ts*1e9))
	return &rec, nil
}

func scanRecords(rows *sql.Rows) ([]*Record, error) {
	var out []*Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}
