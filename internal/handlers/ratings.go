package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"rickmorty-api/internal/contextutil"
	"rickmorty-api/internal/service"
	"rickmorty-api/internal/storage"
)

// RatingHandler serves one kind of per-user rating.
type RatingHandler struct {
	ratings service.RatingService
	kind    storage.Kind
}

// NewRatingHandler creates a RatingHandler for kind.
func NewRatingHandler(ratings service.RatingService, kind storage.Kind) *RatingHandler {
	return &RatingHandler{ratings: ratings, kind: kind}
}

// Get returns the caller's rating of the item, or {"rating":0} when there is none.
func (h *RatingHandler) Get(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	user, ok := requireUser(w, r)
	if !ok {
		return
	}
	itemID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	rating, err := h.ratings.GetRating(ctx, h.kind, user.ID, itemID)
	if errors.Is(err, service.ErrNotFound) {
		writeJSON(ctx, w, http.StatusOK, map[string]int{"rating": 0})
		return
	}
	if err != nil {
		writeServiceError(ctx, w, err)
		return
	}
	writeJSON(ctx, w, http.StatusOK, ratingBody(*rating))
}

// Post gets or creates the caller's rating and applies the fields present in the body.
func (h *RatingHandler) Post(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)
	user, ok := requireUser(w, r)
	if !ok {
		return
	}
	itemID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	fields, err := decodeFields(r)
	if err != nil {
		logger.WarnContext(ctx, "invalid request body", "error", err)
		writeError(ctx, w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	input, msg := parseRatingInput(fields)
	if msg != "" {
		writeError(ctx, w, http.StatusBadRequest, msg)
		return
	}

	rating, created, err := h.ratings.SaveRating(ctx, h.kind, user.ID, itemID, input)
	if err != nil {
		writeServiceError(ctx, w, err)
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	writeJSON(ctx, w, status, ratingBody(*rating))
}

func parseRatingInput(fields map[string]json.RawMessage) (service.RatingInput, string) {
	var input service.RatingInput
	if raw, ok := fields["rating"]; ok {
		input.RatingSet = true
		if !isNull(raw) {
			var v int
			if err := json.Unmarshal(raw, &v); err != nil {
				return input, "rating must be an integer or null"
			}
			input.Rating = &v
		}
	}
	if raw, ok := fields["is_collected"]; ok {
		var v bool
		if isNull(raw) || json.Unmarshal(raw, &v) != nil {
			return input, "is_collected must be a boolean"
		}
		input.IsCollected = &v
	}
	return input, ""
}

// ratingBody renders a rating with the item key named after its kind.
func ratingBody(r storage.Rating) map[string]any {
	body := map[string]any{
		"id":           r.ID,
		"rating":       r.Rating,
		"owner":        r.OwnerID,
		"is_collected": r.IsCollected,
	}
	body[string(r.Kind)+"_id"] = r.ItemID
	return body
}

// AverageRatingHandler serves the public average rating of an item.
type AverageRatingHandler struct {
	ratings service.RatingService
}

// NewAverageRatingHandler creates a new AverageRatingHandler.
func NewAverageRatingHandler(ratings service.RatingService) *AverageRatingHandler {
	return &AverageRatingHandler{ratings: ratings}
}

// AverageRatingResponse is the mean rating formatted with one decimal.
type AverageRatingResponse struct {
	AverageRating string `json:"average_rating"`
}

// ServeHTTP handles GET /average_rating/{type}/{id}.
func (h *AverageRatingHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	kind := storage.Kind(chi.URLParam(r, "type"))
	if !kind.Valid() {
		writeError(ctx, w, http.StatusBadRequest, "Invalid type specified")
		return
	}
	itemID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	avg, err := h.ratings.AverageRating(ctx, kind, itemID)
	if err != nil {
		writeServiceError(ctx, w, err)
		return
	}
	writeJSON(ctx, w, http.StatusOK, AverageRatingResponse{AverageRating: avg})
}

// CollectionHandler lists the caller's collected cards.
type CollectionHandler struct {
	ratings service.RatingService
}

// NewCollectionHandler creates a new CollectionHandler.
func NewCollectionHandler(ratings service.RatingService) *CollectionHandler {
	return &CollectionHandler{ratings: ratings}
}

var collectionKinds = map[string]storage.Kind{
	"episodes":   storage.KindEpisode,
	"characters": storage.KindCharacter,
}

// ServeHTTP handles GET /collection/{type}.
func (h *CollectionHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	user, ok := requireUser(w, r)
	if !ok {
		return
	}
	kind, ok := collectionKinds[chi.URLParam(r, "type")]
	if !ok {
		writeError(ctx, w, http.StatusBadRequest, "Invalid type specified")
		return
	}

	ratings, err := h.ratings.Collection(ctx, kind, user.ID)
	if err != nil {
		writeServiceError(ctx, w, err)
		return
	}

	body := make([]map[string]any, 0, len(ratings))
	for _, rating := range ratings {
		body = append(body, ratingBody(rating))
	}
	writeJSON(ctx, w, http.StatusOK, body)
}
