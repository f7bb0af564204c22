package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"
)

// Event kinds recorded in the history.
const (
	EventSearch   = "search"
	EventResolve  = "resolve"
	EventDownload = "download"
)

const defaultHistoryLimit = 50

// Event is one user action worth remembering.
type Event struct {
	ID        int64     `json:"id" yaml:"id"`
	Kind      string    `json:"kind" yaml:"kind"`
	Query     string    `json:"query,omitempty" yaml:"query,omitempty"`
	ClaimID   string    `json:"claim_id,omitempty" yaml:"claim_id,omitempty"`
	URI       string    `json:"uri,omitempty" yaml:"uri,omitempty"`
	Title     string    `json:"title,omitempty" yaml:"title,omitempty"`
	Detail    string    `json:"detail,omitempty" yaml:"detail,omitempty"`
	CreatedAt time.Time `json:"created_at" yaml:"created_at"`
}

// HistoryFilter narrows ListHistory.
type HistoryFilter struct {
	Kind  string
	Limit int
}

func validKind(kind string) bool {
	switch kind {
	case EventSearch, EventResolve, EventDownload:
		return true
	}
	return false
}

// RecordEvent appends an event and returns it with its id.
func (s *Store) RecordEvent(ctx context.Context, e Event) (Event, error) {
	e.Kind = strings.TrimSpace(e.Kind)
	if !validKind(e.Kind) {
		return Event{}, fmt.Errorf("invalid history kind %q", e.Kind)
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = s.now()
	}
	e.CreatedAt = e.CreatedAt.UTC()

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO history (kind, query, claim_id, uri, title, detail, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, e.Kind, nullString(e.Query), nullString(e.ClaimID), nullString(e.URI), nullString(e.Title), nullString(e.Detail), formatTime(e.CreatedAt))
	if err != nil {
		return Event{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return Event{}, err
	}
	e.ID = id
	return e, nil
}

// ListHistory returns events newest first.
func (s *Store) ListHistory(ctx context.Context, filter HistoryFilter) ([]Event, error) {
	limit := filter.Limit
	if limit <= 0 {
		limit = defaultHistoryLimit
	}

	query := "SELECT id, kind, query, claim_id, uri, title, detail, created_at FROM history"
	args := []any{}
	if filter.Kind != "" {
		if !validKind(filter.Kind) {
			return nil, fmt.Errorf("invalid history kind %q", filter.Kind)
		}
		query += " WHERE kind = ?"
		args = append(args, filter.Kind)
	}
	query += " ORDER BY created_at DESC, id DESC LIMIT ?"
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	events := []Event{}
	for rows.Next() {
		var e Event
		var q, claimID, uri, title, detail sql.NullString
		var createdAt string
		if err := rows.Scan(&e.ID, &e.Kind, &q, &claimID, &uri, &title, &detail, &createdAt); err != nil {
			return nil, err
		}
		e.Query = q.String
		e.ClaimID = claimID.String
		e.URI = uri.String
		e.Title = title.String
		e.Detail = detail.String
		if e.CreatedAt, err = parseTime(createdAt); err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

// ClearHistory deletes events older than before, or all events when before is zero.
func (s *Store) ClearHistory(ctx context.Context, before time.Time) (int64, error) {
	var (
		res sql.Result
		err error
	)
	if before.IsZero() {
		res, err = s.db.ExecContext(ctx, "DELETE FROM history")
	} else {
		res, err = s.db.ExecContext(ctx, "DELETE FROM history WHERE created_at < ?", formatTime(before))
	}
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
