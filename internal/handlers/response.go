package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"rickmorty-api/internal/contextutil"
	"rickmorty-api/internal/service"
)

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Error string `json:"error"`
}

func writeJSON(ctx context.Context, w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		contextutil.LoggerFromContext(ctx).ErrorContext(ctx, "failed to encode response", "error", err)
	}
}

func writeError(ctx context.Context, w http.ResponseWriter, status int, message string) {
	writeJSON(ctx, w, status, ErrorResponse{Error: message})
}

// writeServiceError maps service errors to status codes. Internal error text is never sent.
func writeServiceError(ctx context.Context, w http.ResponseWriter, err error) {
	logger := contextutil.LoggerFromContext(ctx)

	var validationErr *service.ValidationError
	switch {
	case errors.As(err, &validationErr):
		logger.WarnContext(ctx, "validation failed", "field", validationErr.Field, "error", err)
		writeError(ctx, w, http.StatusBadRequest, validationErr.Message)
	case errors.Is(err, service.ErrInvalidInput):
		logger.WarnContext(ctx, "invalid input", "error", err)
		writeError(ctx, w, http.StatusBadRequest, "Invalid input")
	case errors.Is(err, service.ErrNotFound):
		writeError(ctx, w, http.StatusNotFound, "Not found.")
	case errors.Is(err, service.ErrUnauthorized):
		writeError(ctx, w, http.StatusUnauthorized, "Authentication failed.")
	default:
		logger.ErrorContext(ctx, "request failed", "error", err)
		writeError(ctx, w, http.StatusInternalServerError, "Internal server error")
	}
}

// requireUser returns the authenticated caller, writing a 401 when there is none.
func requireUser(w http.ResponseWriter, r *http.Request) (contextutil.User, bool) {
	user, ok := contextutil.UserFromContext(r.Context())
	if !ok {
		writeError(r.Context(), w, http.StatusUnauthorized, "Authentication credentials were not provided.")
	}
	return user, ok
}

// pathID parses the integer URL parameter name, writing a 404 when it is not one.
func pathID(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || id < 0 {
		writeError(r.Context(), w, http.StatusNotFound, "Not found.")
		return 0, false
	}
	return id, true
}

// decodeBody decodes the request body into v. The body must hold exactly one
// JSON value.
func decodeBody(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(v); err != nil {
		return err
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		return errors.New("unexpected data after JSON value")
	}
	return nil
}

// decodeFields decodes a JSON object body keeping track of which keys were sent.
func decodeFields(r *http.Request) (map[string]json.RawMessage, error) {
	var fields map[string]json.RawMessage
	if err := decodeBody(r, &fields); err != nil {
		return nil, err
	}
	if fields == nil {
		return nil, errors.New("body is not a JSON object")
	}
	return fields, nil
}

func isNull(raw json.RawMessage) bool {
	return string(raw) == "null"
}
