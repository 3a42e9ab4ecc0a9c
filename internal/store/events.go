package store

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Action names a table change in the journal.
type Action string

const (
	ActionAdd    Action = "ADD"
	ActionEdit   Action = "EDIT"
	ActionDelete Action = "DELETE"
	ActionSort   Action = "SORT"
	ActionHide   Action = "HIDE"
	ActionShow   Action = "SHOW"
	ActionClear  Action = "CLEAR"
	ActionExport Action = "EXPORT"
	ActionWatch  Action = "WATCH"
)

// Event is one journal entry.
type Event struct {
	ID     string
	At     time.Time
	Action Action
	Detail string
}

// Record appends an event to the journal.
func (s *Store) Record(ctx context.Context, action Action, detail string) (*Event, error) {
	ev := &Event{
		ID:     uuid.NewString(),
		At:     time.Now().UTC(),
		Action: action,
		Detail: detail,
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO events (id, at, action, detail) VALUES (?, ?, ?, ?)`,
		ev.ID, ev.At.UnixNano(), string(ev.Action), ev.Detail)
	if err != nil {
		return nil, s.queryErr("failed to record event", err)
	}
	return ev, nil
}

// Events lists journal entries newest first. A limit of zero or less
// returns everything.
func (s *Store) Events(ctx context.Context, limit int) ([]Event, error) {
	if limit <= 0 {
		limit = -1 // SQLite: no limit
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, at, action, detail FROM events ORDER BY seq DESC LIMIT ?`, limit)
	if err != nil {
		return nil, s.queryErr("failed to read events", err)
	}
	defer rows.Close()

	var out []Event
	for rows.Next() {
		var (
			ev     Event
			at     int64
			action string
		)
		if err := rows.Scan(&ev.ID, &at, &action, &ev.Detail); err != nil {
			return nil, s.queryErr("failed to scan event", err)
		}
		ev.At = time.Unix(0, at).UTC()
		ev.Action = Action(action)
		out = append(out, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, s.queryErr("failed to read events", err)
	}
	return out, nil
}

// PruneEvents deletes journal entries older than before and returns how
// many were removed.
func (s *Store) PruneEvents(ctx context.Context, before time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM events WHERE at < ?`, before.UnixNano())
	if err != nil {
		return 0, s.queryErr("failed to prune events", err)
	}
	return res.RowsAffected()
}
