package store

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
)

// ErrDuplicate signals a username/email uniqueness violation on register.
var ErrDuplicate = errors.New("username or email already exists")

type User struct {
	ID           string
	Username     string
	Email        string
	PasswordHash []byte
	CreatedAt    time.Time
	LastLogin    *time.Time
}

type UserRepo struct{ DB *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{DB: db} }

// Create inserts a new user and returns its id. A unique-constraint conflict
// maps to ErrDuplicate so the handler can answer 409.
func (r *UserRepo) Create(ctx context.Context, username, email string, passwordHash []byte) (string, error) {
	id := uuid.NewString()
	const q = `insert into users (id, username, email, password) values ($1,$2,$3,$4)`
	if _, err := r.DB.ExecContext(ctx, q, id, username, email, passwordHash); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return "", ErrDuplicate
		}
		if strings.Contains(err.Error(), "duplicate key") {
			return "", ErrDuplicate
		}
		return "", err
	}
	return id, nil
}

func (r *UserRepo) scanOne(row *sql.Row) (*User, error) {
	var u User
	var last sql.NullTime
	if err := row.Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.CreatedAt, &last); err != nil {
		return nil, err
	}
	if last.Valid {
		u.LastLogin = &last.Time
	}
	return &u, nil
}

func (r *UserRepo) FindByUsername(ctx context.Context, username string) (*User, error) {
	const q = `select id, username, email, password, created_at, last_login from users where username=$1`
	return r.scanOne(r.DB.QueryRowContext(ctx, q, username))
}

func (r *UserRepo) FindByEmail(ctx context.Context, email string) (*User, error) {
	const q = `select id, username, email, password, created_at, last_login from users where email=$1`
	return r.scanOne(r.DB.QueryRowContext(ctx, q, email))
}

func (r *UserRepo) UpdateLastLogin(ctx context.Context, username string) error {
	const q = `update users set last_login=now() where username=$1`
	_, err := r.DB.ExecContext(ctx, q, username)
	return err
}
