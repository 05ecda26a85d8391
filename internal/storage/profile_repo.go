package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
)

// ProfileStore defines the interface for profile storage operations.
type ProfileStore interface {
	// GetByOwner returns ErrNotFound if the user has no profile.
	GetByOwner(ctx context.Context, ownerID int64) (*Profile, error)
	// Update applies the non-nil fields and returns the stored profile.
	Update(ctx context.Context, ownerID int64, update ProfileUpdate) (*Profile, error)
}

// ProfileRepo implements ProfileStore on SQLite.
type ProfileRepo struct {
	db *sql.DB
}

// NewProfileRepo creates a new ProfileRepo.
func NewProfileRepo(db *sql.DB) *ProfileRepo {
	return &ProfileRepo{db: db}
}

// GetByOwner returns the profile of ownerID joined with the username.
func (r *ProfileRepo) GetByOwner(ctx context.Context, ownerID int64) (*Profile, error) {
	var p Profile
	err := r.db.QueryRowContext(ctx,
		`SELECT p.id, p.owner_id, u.username, p.first_name, p.last_name, p.avatar_url, p.avatar_name, p.bio
		 FROM profiles p JOIN users u ON u.id = p.owner_id
		 WHERE p.owner_id = ?`,
		ownerID,
	).Scan(&p.ID, &p.OwnerID, &p.Username, &p.FirstName, &p.LastName, &p.AvatarURL, &p.AvatarName, &p.Bio)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query profile: %w", err)
	}
	return &p, nil
}

// Update changes only the fields set in update. An empty update just reads the profile.
func (r *ProfileRepo) Update(ctx context.Context, ownerID int64, update ProfileUpdate) (*Profile, error) {
	if update.Empty() {
		return r.GetByOwner(ctx, ownerID)
	}

	var sets []string
	var args []any
	add := func(column string, v *string) {
		if v != nil {
			sets = append(sets, column+" = ?")
			args = append(args, *v)
		}
	}
	add("first_name", update.FirstName)
	add("last_name", update.LastName)
	add("avatar_url", update.AvatarURL)
	add("avatar_name", update.AvatarName)
	add("bio", update.Bio)
	args = append(args, ownerID)

	result, err := r.db.ExecContext(ctx,
		"UPDATE profiles SET "+strings.Join(sets, ", ")+" WHERE owner_id = ?",
		args...,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}
	if n, err := result.RowsAffected(); err == nil && n == 0 {
		return nil, ErrNotFound
	}

	return r.GetByOwner(ctx, ownerID)
}
