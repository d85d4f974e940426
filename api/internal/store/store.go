// Package store is the user/history persistence layer on Postgres via the
// pgx stdlib driver. Repos are thin structs over *sql.DB; history records are
// append-only and keep their document flavor in a jsonb metadata column.
package store

import (
	"context"
	"database/sql"
	"time"
)

var ErrNotFound = sql.ErrNoRows

// Open dials Postgres with the pool tuning this service runs with (~20 rps).
func Open(dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(1 * time.Hour)
	return db, nil
}

// EnsureSchema creates the two tables on first boot.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	const q = `
create table if not exists users (
  id          uuid primary key,
  username    text not null unique,
  email       text not null unique,
  password    bytea not null,
  created_at  timestamptz not null default now(),
  last_login  timestamptz
);
create table if not exists history (
  id          uuid primary key,
  username    text not null,
  type        text not null,
  input       text not null,
  result      text not null,
  ts          timestamptz not null default now(),
  metadata    jsonb not null default '{}'::jsonb
);
create index if not exists history_username_ts on history (username, ts desc);`
	_, err := db.ExecContext(ctx, q)
	return err
}
