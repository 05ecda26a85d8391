package handlers

import (
	"encoding/json"
	"net/http"

	"rickmorty-api/internal/contextutil"
	"rickmorty-api/internal/service"
	"rickmorty-api/internal/storage"
)

// ProfileHandler reads and edits the caller's profile.
type ProfileHandler struct {
	profiles service.ProfileService
}

// NewProfileHandler creates a new ProfileHandler.
func NewProfileHandler(profiles service.ProfileService) *ProfileHandler {
	return &ProfileHandler{profiles: profiles}
}

// ProfileResponse represents a profile with its derived figures.
type ProfileResponse struct {
	Owner                  int64  `json:"owner"`
	Username               string `json:"username"`
	FirstName              string `json:"first_name"`
	LastName               string `json:"last_name"`
	AvatarURL              string `json:"avatar_url"`
	AvatarName             string `json:"avatar_name"`
	Bio                    string `json:"bio"`
	CardsCollected         int    `json:"cards_collected"`
	AverageEpisodeRating   string `json:"average_episode_rating"`
	AverageCharacterRating string `json:"average_character_rating"`
}

func profileResponse(v *service.ProfileView) ProfileResponse {
	return ProfileResponse{
		Owner:                  v.OwnerID,
		Username:               v.Username,
		FirstName:              v.FirstName,
		LastName:               v.LastName,
		AvatarURL:              v.AvatarURL,
		AvatarName:             v.AvatarName,
		Bio:                    v.Bio,
		CardsCollected:         v.CardsCollected,
		AverageEpisodeRating:   v.AverageEpisodeRating,
		AverageCharacterRating: v.AverageCharacterRating,
	}
}

// Get handles GET /profile.
func (h *ProfileHandler) Get(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	user, ok := requireUser(w, r)
	if !ok {
		return
	}

	profile, err := h.profiles.GetProfile(ctx, user.ID)
	if err != nil {
		writeServiceError(ctx, w, err)
		return
	}
	writeJSON(ctx, w, http.StatusOK, profileResponse(profile))
}

// Post handles POST /profile. Only the fields present in the body change.
func (h *ProfileHandler) Post(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	user, ok := requireUser(w, r)
	if !ok {
		return
	}

	fields, err := decodeFields(r)
	if err != nil {
		contextutil.LoggerFromContext(ctx).WarnContext(ctx, "invalid request body", "error", err)
		writeError(ctx, w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	var update storage.ProfileUpdate
	targets := []struct {
		key string
		dst **string
	}{
		{"first_name", &update.FirstName},
		{"last_name", &update.LastName},
		{"avatar_url", &update.AvatarURL},
		{"avatar_name", &update.AvatarName},
		{"bio", &update.Bio},
	}
	for _, t := range targets {
		raw, ok := fields[t.key]
		if !ok {
			continue
		}
		var v string
		if isNull(raw) || json.Unmarshal(raw, &v) != nil {
			writeError(ctx, w, http.StatusBadRequest, t.key+" must be a string")
			return
		}
		*t.dst = &v
	}

	profile, err := h.profiles.UpdateProfile(ctx, user.ID, update)
	if err != nil {
		writeServiceError(ctx, w, err)
		return
	}
	writeJSON(ctx, w, http.StatusOK, profileResponse(profile))
}
