package service

//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -destination=mocks/mock_rating.go -package=mocks rickmorty-api/internal/service RatingService,ProfileService

import (
	"context"
	"errors"
	"fmt"

	"rickmorty-api/internal/contextutil"
	"rickmorty-api/internal/storage"
)

// RatingInput is a presence-aware rating change. Unset fields are left alone.
type RatingInput struct {
	RatingSet   bool
	Rating      *int
	IsCollected *bool
}

// RatingService manages per-user ratings and collection flags.
type RatingService interface {
	// GetRating returns ErrNotFound when the user has not rated the item.
	GetRating(ctx context.Context, kind storage.Kind, ownerID, itemID int64) (*storage.Rating, error)
	// SaveRating gets or creates the rating and applies input; created reports an insert.
	SaveRating(ctx context.Context, kind storage.Kind, ownerID, itemID int64, input RatingInput) (*storage.Rating, bool, error)
	// AverageRating returns the item's mean rating with one decimal, "0.0" when unrated.
	AverageRating(ctx context.Context, kind storage.Kind, itemID int64) (string, error)
	// Collection lists the user's collected items of kind.
	Collection(ctx context.Context, kind storage.Kind, ownerID int64) ([]storage.Rating, error)
}

type ratingService struct {
	stores map[storage.Kind]storage.RatingStore
}

// NewRatingService creates a RatingService over one store per kind.
func NewRatingService(stores ...storage.RatingStore) RatingService {
	m := make(map[storage.Kind]storage.RatingStore, len(stores))
	for _, s := range stores {
		m[s.Kind()] = s
	}
	return &ratingService{stores: m}
}

func (s *ratingService) store(kind storage.Kind) (storage.RatingStore, error) {
	st, ok := s.stores[kind]
	if !ok {
		return nil, fmt.Errorf("%w: unknown item type %q", ErrInvalidInput, kind)
	}
	return st, nil
}

func (s *ratingService) GetRating(ctx context.Context, kind storage.Kind, ownerID, itemID int64) (*storage.Rating, error) {
	st, err := s.store(kind)
	if err != nil {
		return nil, err
	}
	rating, err := st.Get(ctx, ownerID, itemID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, WrapError(err, "failed to get rating")
	}
	return rating, nil
}

func (s *ratingService) SaveRating(ctx context.Context, kind storage.Kind, ownerID, itemID int64, input RatingInput) (*storage.Rating, bool, error) {
	st, err := s.store(kind)
	if err != nil {
		return nil, false, err
	}

	rating, created, err := st.Apply(ctx, ownerID, itemID, storage.RatingUpdate{
		SetRating:   input.RatingSet,
		Rating:      input.Rating,
		IsCollected: input.IsCollected,
	})
	if err != nil {
		return nil, false, WrapError(err, "failed to save rating")
	}

	contextutil.LoggerFromContext(ctx).InfoContext(ctx, "rating saved",
		"kind", kind,
		"item_id", itemID,
		"created", created,
	)
	return rating, created, nil
}

func (s *ratingService) AverageRating(ctx context.Context, kind storage.Kind, itemID int64) (string, error) {
	st, err := s.store(kind)
	if err != nil {
		return "", err
	}
	avg, ok, err := st.Average(ctx, itemID)
	if err != nil {
		return "", WrapError(err, "failed to compute average rating")
	}
	return formatAverage(avg, ok), nil
}

func (s *ratingService) Collection(ctx context.Context, kind storage.Kind, ownerID int64) ([]storage.Rating, error) {
	st, err := s.store(kind)
	if err != nil {
		return nil, err
	}
	ratings, err := st.ListCollected(ctx, ownerID)
	if err != nil {
		return nil, WrapError(err, "failed to list collection")
	}
	return ratings, nil
}

func formatAverage(avg float64, ok bool) string {
	if !ok {
		return "0.0"
	}
	return fmt.Sprintf("%.1f", avg)
}
