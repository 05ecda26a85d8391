package handlers

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	"rickmorty-api/internal/contextutil"
)

func init() {
	slog.SetDefault(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

// newRequest builds a request as the router would hand it over: with URL
// params set and, when userID is positive, an authenticated caller.
func newRequest(t *testing.T, method, path, body string, userID int64, params map[string]string) *http.Request {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	rctx := chi.NewRouteContext()
	for k, v := range params {
		rctx.URLParams.Add(k, v)
	}
	ctx := context.WithValue(req.Context(), chi.RouteCtxKey, rctx)
	if userID > 0 {
		ctx = contextutil.WithUser(ctx, contextutil.User{ID: userID, Username: "rick"})
	}
	return req.WithContext(ctx)
}
