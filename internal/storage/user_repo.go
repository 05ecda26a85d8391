package storage

//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -destination=mocks/mock_stores.go -package=mocks rickmorty-api/internal/storage UserStore,ProfileStore,RatingStore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// UserStore defines the interface for account storage operations.
type UserStore interface {
	// Create inserts a user and its default profile.
	// Returns ErrConflict if the username is taken.
	Create(ctx context.Context, username, passwordHash string) (*User, error)
	// GetByUsername returns ErrNotFound if no such user exists.
	GetByUsername(ctx context.Context, username string) (*User, error)
	// GetByID returns ErrNotFound if no such user exists.
	GetByID(ctx context.Context, id int64) (*User, error)
}

// UserRepo implements UserStore on SQLite.
type UserRepo struct {
	db *sql.DB
}

// NewUserRepo creates a new UserRepo.
func NewUserRepo(db *sql.DB) *UserRepo {
	return &UserRepo{db: db}
}

// Create inserts the user and its profile in one transaction.
func (r *UserRepo) Create(ctx context.Context, username, passwordHash string) (*User, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	result, err := tx.ExecContext(ctx,
		"INSERT INTO users (username, password_hash) VALUES (?, ?)",
		username, passwordHash,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrConflict
		}
		return nil, fmt.Errorf("failed to insert user: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get user id: %w", err)
	}

	if _, err := tx.ExecContext(ctx, "INSERT INTO profiles (owner_id) VALUES (?)", id); err != nil {
		return nil, fmt.Errorf("failed to create profile: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit user: %w", err)
	}

	return r.GetByID(ctx, id)
}

// GetByUsername looks a user up by username.
func (r *UserRepo) GetByUsername(ctx context.Context, username string) (*User, error) {
	return r.scanOne(ctx, "SELECT id, username, password_hash, date_joined FROM users WHERE username = ?", username)
}

// GetByID looks a user up by id.
func (r *UserRepo) GetByID(ctx context.Context, id int64) (*User, error) {
	return r.scanOne(ctx, "SELECT id, username, password_hash, date_joined FROM users WHERE id = ?", id)
}

func (r *UserRepo) scanOne(ctx context.Context, query string, arg any) (*User, error) {
	var u User
	err := r.db.QueryRowContext(ctx, query, arg).Scan(&u.ID, &u.Username, &u.PasswordHash, &u.DateJoined)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query user: %w", err)
	}
	return &u, nil
}
