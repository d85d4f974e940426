package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// HistoryRecord is the only durable artifact a calculation leaves behind.
// Records are never mutated or deleted by this service.
type HistoryRecord struct {
	ID        string         `json:"id"`
	Username  string         `json:"username"`
	Type      string         `json:"type"`
	Input     string         `json:"input"`
	Result    string         `json:"result"`
	Timestamp time.Time      `json:"timestamp"`
	Metadata  map[string]any `json:"metadata"`
}

type HistoryRepo struct{ DB *sql.DB }

func NewHistoryRepo(db *sql.DB) *HistoryRepo { return &HistoryRepo{DB: db} }

func (r *HistoryRepo) Save(ctx context.Context, rec HistoryRecord) error {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.Timestamp.IsZero() {
		rec.Timestamp = time.Now().UTC()
	}
	meta, _ := json.Marshal(rec.Metadata)
	const q = `insert into history (id, username, type, input, result, ts, metadata)
	           values ($1,$2,$3,$4,$5,$6,$7)`
	_, err := r.DB.ExecContext(ctx, q, rec.ID, rec.Username, rec.Type, rec.Input, rec.Result, rec.Timestamp, meta)
	return err
}

// ListByUser returns the newest records first, capped at limit (50 when 0).
func (r *HistoryRepo) ListByUser(ctx context.Context, username string, limit int) ([]HistoryRecord, error) {
	if limit <= 0 {
		limit = 50
	}
	const q = `select id, username, type, input, result, ts, metadata
	           from history where username=$1 order by ts desc limit $2`
	rows, err := r.DB.QueryContext(ctx, q, username, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]HistoryRecord, 0, limit)
	for rows.Next() {
		var rec HistoryRecord
		var meta []byte
		if err := rows.Scan(&rec.ID, &rec.Username, &rec.Type, &rec.Input, &rec.Result, &rec.Timestamp, &meta); err != nil {
			return nil, err
		}
		if len(meta) > 0 {
			// broken metadata degrades to an empty document, not a failure
			_ = json.Unmarshal(meta, &rec.Metadata)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}
