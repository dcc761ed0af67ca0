// Package auth implements the authentication boundary: a SQLite user store
// with bcrypt credentials and JWT access tokens. The rest of the dashboard
// only ever sees the authenticated username.
package auth

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

var (
	ErrUserNotFound       = errors.New("user not found")
	ErrUserAlreadyExists  = errors.New("user already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// User is a stored account. HashedPassword never leaves this package.
type User struct {
	ID             uuid.UUID
	Username       string
	HashedPassword string
	CreatedAt      time.Time
}

// Store is the SQLite-backed user repository.
type Store struct {
	db *sql.DB
}

// OpenStore opens (creating if needed) the user database.
func OpenStore(ctx context.Context, path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open user db: %w", err)
	}

	const schema = `
		CREATE TABLE IF NOT EXISTS users (
			id              TEXT PRIMARY KEY,
			username        TEXT NOT NULL UNIQUE,
			hashed_password TEXT NOT NULL,
			created_at      TEXT NOT NULL
		)`
	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create users table: %w", err)
	}
	return &Store{db: db}, nil
}

// Close releases the database handle.
func (s *Store) Close() error { return s.db.Close() }

// CreateUser inserts a new account.
func (s *Store) CreateUser(ctx context.Context, username, hashedPassword string) (*User, error) {
	u := &User{
		ID:             uuid.New(),
		Username:       username,
		HashedPassword: hashedPassword,
		CreatedAt:      time.Now().UTC(),
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO users (id, username, hashed_password, created_at) VALUES (?, ?, ?, ?)`,
		u.ID.String(), u.Username, u.HashedPassword, u.CreatedAt.Format(time.RFC3339))
	if err != nil {
		return nil, fmt.Errorf("insert user: %w", err)
	}
	return u, nil
}

// GetUserByUsername looks an account up by username.
func (s *Store) GetUserByUsername(ctx context.Context, username string) (*User, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, username, hashed_password, created_at FROM users WHERE username = ?`, username)

	var u User
	var id, createdAt string
	if err := row.Scan(&id, &u.Username, &u.HashedPassword, &createdAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("select user: %w", err)
	}

	parsed, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("parse user id: %w", err)
	}
	u.ID = parsed
	if ts, err := time.Parse(time.RFC3339, createdAt); err == nil {
		u.CreatedAt = ts
	}
	return &u, nil
}
