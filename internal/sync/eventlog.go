package syncx

import (
	"context"
	"database/sql"
	"time"
)

// Event types appended by the gateway.
const (
	TypeAttemptSubmitted = "attempt_submitted"
	TypeProgressReset    = "progress_reset"
	TypeTopicCreated     = "topic_created"
	TypeTopicDeleted     = "topic_deleted"
)

type Event struct {
	Offset    int64
	UserID    string
	Type      string
	Key       string // module key, topic id, ...
	DataJSON  string
	CreatedAt int64
}

// EventRepo is an append-only audit trail of progress-affecting operations.
type EventRepo struct{ db *sql.DB }

func NewEventRepo(db *sql.DB) *EventRepo { return &EventRepo{db: db} }

func (r *EventRepo) Append(ctx context.Context, e Event) error {
	if r == nil || r.db == nil {
		return nil
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO event_log (user_id, typ, key, data, created_at)
		 VALUES ($1,$2,$3,$4,$5)`,
		e.UserID, e.Type, e.Key, e.DataJSON, time.Now().Unix())
	return err
}

// Since lists events after the given offset, oldest first.
func (r *EventRepo) Since(ctx context.Context, offset int64, limit int) ([]Event, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := r.db.QueryContext(ctx,
		`SELECT offset_id, user_id, typ, key, data, created_at
		 FROM event_log WHERE offset_id > $1 ORDER BY offset_id ASC LIMIT $2`,
		offset, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Event
	for rows.Next() {
		var e Event
		if err := rows.Scan(&e.Offset, &e.UserID, &e.Type, &e.Key, &e.DataJSON, &e.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
