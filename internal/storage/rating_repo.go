package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
)

type ratingTable struct {
	name       string
	itemColumn string
}

// tables maps each kind to its table. Names never come from user input.
var tables = map[Kind]ratingTable{
	KindEpisode:   {name: "episode_ratings", itemColumn: "episode_id"},
	KindCharacter: {name: "character_ratings", itemColumn: "character_id"},
}

// RatingStore defines the interface for rating storage operations of one kind.
type RatingStore interface {
	// Kind is the item type this store handles.
	Kind() Kind
	// Get returns ErrNotFound if ownerID has not rated itemID.
	Get(ctx context.Context, ownerID, itemID int64) (*Rating, error)
	// Apply gets or creates the rating of itemID by ownerID and applies update
	// to an existing one. created reports whether a row was inserted.
	Apply(ctx context.Context, ownerID, itemID int64, update RatingUpdate) (rating *Rating, created bool, err error)
	// Average returns the mean of non-null ratings of itemID; ok is false when there are none.
	Average(ctx context.Context, itemID int64) (avg float64, ok bool, err error)
	// OwnerAverage returns the mean of ownerID's non-null ratings.
	OwnerAverage(ctx context.Context, ownerID int64) (avg float64, ok bool, err error)
	// ListCollected returns ownerID's collected ratings ordered by item.
	ListCollected(ctx context.Context, ownerID int64) ([]Rating, error)
	// CountCollected counts ownerID's collected ratings.
	CountCollected(ctx context.Context, ownerID int64) (int, error)
}

// RatingRepo implements RatingStore on SQLite for one kind.
type RatingRepo struct {
	db    *sql.DB
	kind  Kind
	table ratingTable
}

// NewRatingRepo creates a RatingRepo for kind. It panics on an unknown kind.
func NewRatingRepo(db *sql.DB, kind Kind) *RatingRepo {
	t, ok := tables[kind]
	if !ok {
		panic(fmt.Sprintf("storage: unknown rating kind %q", kind))
	}
	return &RatingRepo{db: db, kind: kind, table: t}
}

// Kind returns the item type of this repo.
func (r *RatingRepo) Kind() Kind {
	return r.kind
}

type queryRower interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (r *RatingRepo) selectColumns() string {
	return fmt.Sprintf("id, %s, rating, owner_id, is_collected", r.table.itemColumn)
}

func (r *RatingRepo) get(ctx context.Context, q queryRower, ownerID, itemID int64) (*Rating, error) {
	row := q.QueryRowContext(ctx,
		fmt.Sprintf("SELECT %s FROM %s WHERE owner_id = ? AND %s = ?", r.selectColumns(), r.table.name, r.table.itemColumn),
		ownerID, itemID,
	)
	rating, err := r.scan(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query %s rating: %w", r.kind, err)
	}
	return rating, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func (r *RatingRepo) scan(s scanner) (*Rating, error) {
	rating := Rating{Kind: r.kind}
	var value sql.NullInt64
	if err := s.Scan(&rating.ID, &rating.ItemID, &value, &rating.OwnerID, &rating.IsCollected); err != nil {
		return nil, err
	}
	if value.Valid {
		v := int(value.Int64)
		rating.Rating = &v
	}
	return &rating, nil
}

// Get returns the rating of itemID by ownerID.
func (r *RatingRepo) Get(ctx context.Context, ownerID, itemID int64) (*Rating, error) {
	return r.get(ctx, r.db, ownerID, itemID)
}

// Apply inserts the rating if missing, using update for the initial values
// (unset rating is NULL, unset collected flag is false). An existing rating
// gets only the fields present in update.
func (r *RatingRepo) Apply(ctx context.Context, ownerID, itemID int64, update RatingUpdate) (*Rating, bool, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, false, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	var initial sql.NullInt64
	if update.SetRating && update.Rating != nil {
		initial = sql.NullInt64{Int64: int64(*update.Rating), Valid: true}
	}
	collected := update.IsCollected != nil && *update.IsCollected

	result, err := tx.ExecContext(ctx,
		fmt.Sprintf(`INSERT INTO %s (%s, owner_id, rating, is_collected) VALUES (?, ?, ?, ?)
			ON CONFLICT (%s, owner_id) DO NOTHING`, r.table.name, r.table.itemColumn, r.table.itemColumn),
		itemID, ownerID, initial, collected,
	)
	if err != nil {
		return nil, false, fmt.Errorf("failed to insert %s rating: %w", r.kind, err)
	}
	inserted, err := result.RowsAffected()
	if err != nil {
		return nil, false, fmt.Errorf("failed to read insert result: %w", err)
	}
	created := inserted == 1

	if !created {
		var sets []string
		var args []any
		if update.SetRating {
			sets = append(sets, "rating = ?")
			args = append(args, initial)
		}
		if update.IsCollected != nil {
			sets = append(sets, "is_collected = ?")
			args = append(args, *update.IsCollected)
		}
		if len(sets) > 0 {
			args = append(args, ownerID, itemID)
			_, err := tx.ExecContext(ctx,
				fmt.Sprintf("UPDATE %s SET %s WHERE owner_id = ? AND %s = ?", r.table.name, strings.Join(sets, ", "), r.table.itemColumn),
				args...,
			)
			if err != nil {
				return nil, false, fmt.Errorf("failed to update %s rating: %w", r.kind, err)
			}
		}
	}

	rating, err := r.get(ctx, tx, ownerID, itemID)
	if err != nil {
		return nil, false, err
	}

	if err := tx.Commit(); err != nil {
		return nil, false, fmt.Errorf("failed to commit %s rating: %w", r.kind, err)
	}
	return rating, created, nil
}

// Average returns the mean rating of itemID across all owners.
func (r *RatingRepo) Average(ctx context.Context, itemID int64) (float64, bool, error) {
	return r.average(ctx, r.table.itemColumn, itemID)
}

// OwnerAverage returns the mean of all ratings ownerID has given.
func (r *RatingRepo) OwnerAverage(ctx context.Context, ownerID int64) (float64, bool, error) {
	return r.average(ctx, "owner_id", ownerID)
}

func (r *RatingRepo) average(ctx context.Context, column string, id int64) (float64, bool, error) {
	var avg sql.NullFloat64
	err := r.db.QueryRowContext(ctx,
		fmt.Sprintf("SELECT AVG(rating) FROM %s WHERE %s = ?", r.table.name, column),
		id,
	).Scan(&avg)
	if err != nil {
		return 0, false, fmt.Errorf("failed to average %s ratings: %w", r.kind, err)
	}
	return avg.Float64, avg.Valid, nil
}

// ListCollected returns the ratings ownerID has marked collected.
// Returns an empty slice if there are none.
func (r *RatingRepo) ListCollected(ctx context.Context, ownerID int64) ([]Rating, error) {
	rows, err := r.db.QueryContext(ctx,
		fmt.Sprintf("SELECT %s FROM %s WHERE owner_id = ? AND is_collected = 1 ORDER BY %s",
			r.selectColumns(), r.table.name, r.table.itemColumn),
		ownerID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list collected %s ratings: %w", r.kind, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	ratings := []Rating{}
	for rows.Next() {
		rating, err := r.scan(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan %s rating: %w", r.kind, err)
		}
		ratings = append(ratings, *rating)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate %s ratings: %w", r.kind, err)
	}
	return ratings, nil
}

// CountCollected counts the ratings ownerID has marked collected.
func (r *RatingRepo) CountCollected(ctx context.Context, ownerID int64) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx,
		fmt.Sprintf("SELECT COUNT(*) FROM %s WHERE owner_id = ? AND is_collected = 1", r.table.name),
		ownerID,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count collected %s ratings: %w", r.kind, err)
	}
	return n, nil
}
