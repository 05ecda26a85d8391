package service

import (
	"context"
	"errors"
	"unicode/utf8"

	"rickmorty-api/internal/storage"
)

const maxNameLength = 30

// ProfileView is a profile with the figures derived from the owner's ratings.
type ProfileView struct {
	storage.Profile
	CardsCollected         int
	AverageEpisodeRating   string
	AverageCharacterRating string
}

// ProfileService reads and edits the caller's profile.
type ProfileService interface {
	GetProfile(ctx context.Context, ownerID int64) (*ProfileView, error)
	UpdateProfile(ctx context.Context, ownerID int64, update storage.ProfileUpdate) (*ProfileView, error)
}

type profileService struct {
	profiles   storage.ProfileStore
	episodes   storage.RatingStore
	characters storage.RatingStore
}

// NewProfileService creates a new ProfileService.
func NewProfileService(profiles storage.ProfileStore, episodes, characters storage.RatingStore) ProfileService {
	return &profileService{profiles: profiles, episodes: episodes, characters: characters}
}

func (s *profileService) GetProfile(ctx context.Context, ownerID int64) (*ProfileView, error) {
	profile, err := s.profiles.GetByOwner(ctx, ownerID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, WrapError(err, "failed to get profile")
	}
	return s.view(ctx, profile)
}

func (s *profileService) UpdateProfile(ctx context.Context, ownerID int64, update storage.ProfileUpdate) (*ProfileView, error) {
	if err := validateName("first_name", update.FirstName); err != nil {
		return nil, err
	}
	if err := validateName("last_name", update.LastName); err != nil {
		return nil, err
	}

	if update.Empty() {
		return s.GetProfile(ctx, ownerID)
	}

	profile, err := s.profiles.Update(ctx, ownerID, update)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, WrapError(err, "failed to update profile")
	}
	return s.view(ctx, profile)
}

func (s *profileService) view(ctx context.Context, profile *storage.Profile) (*ProfileView, error) {
	v := &ProfileView{Profile: *profile}

	for _, st := range []storage.RatingStore{s.episodes, s.characters} {
		n, err := st.CountCollected(ctx, profile.OwnerID)
		if err != nil {
			return nil, WrapError(err, "failed to count collected cards")
		}
		v.CardsCollected += n
	}

	avg, ok, err := s.episodes.OwnerAverage(ctx, profile.OwnerID)
	if err != nil {
		return nil, WrapError(err, "failed to compute episode average")
	}
	v.AverageEpisodeRating = formatAverage(avg, ok)

	avg, ok, err = s.characters.OwnerAverage(ctx, profile.OwnerID)
	if err != nil {
		return nil, WrapError(err, "failed to compute character average")
	}
	v.AverageCharacterRating = formatAverage(avg, ok)

	return v, nil
}

func validateName(field string, value *string) error {
	if value != nil && utf8.RuneCountInString(*value) > maxNameLength {
		return &ValidationError{Field: field, Message: "Ensure this field has no more than 30 characters."}
	}
	return nil
}
