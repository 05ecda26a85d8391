package auth

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"rickmorty-api/internal/contextutil"
)

func TestJWTAuth_Middleware(t *testing.T) {
	j := newTestAuth(time.Now())
	pair, err := j.IssuePair(3, "summer")
	if err != nil {
		t.Fatalf("IssuePair() error = %v", err)
	}

	tests := []struct {
		name       string
		header     string
		wantStatus int
		wantUser   bool
	}{
		{name: "valid access token", header: "Bearer " + pair.Access, wantStatus: http.StatusOK, wantUser: true},
		{name: "missing header", header: "", wantStatus: http.StatusUnauthorized},
		{name: "wrong scheme", header: "Basic " + pair.Access, wantStatus: http.StatusUnauthorized},
		{name: "scheme only", header: "Bearer", wantStatus: http.StatusUnauthorized},
		{name: "refresh token", header: "Bearer " + pair.Refresh, wantStatus: http.StatusUnauthorized},
		{name: "garbage token", header: "Bearer abc.def.ghi", wantStatus: http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotUser contextutil.User
			var called bool
			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				called = true
				gotUser, _ = contextutil.UserFromContext(r.Context())
				w.WriteHeader(http.StatusOK)
			})

			req := httptest.NewRequest(http.MethodGet, "/api/profile", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rr := httptest.NewRecorder()

			j.Middleware(next).ServeHTTP(rr, req)

			if rr.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", rr.Code, tt.wantStatus)
			}
			if called != tt.wantUser {
				t.Errorf("next called = %v, want %v", called, tt.wantUser)
			}
			if tt.wantUser {
				if gotUser.ID != 3 || gotUser.Username != "summer" {
					t.Errorf("user in context = %+v", gotUser)
				}
				return
			}

			var body map[string]string
			if err := json.NewDecoder(rr.Body).Decode(&body); err != nil {
				t.Fatalf("failed to decode body: %v", err)
			}
			if body["error"] == "" {
				t.Error("401 response should carry an error message")
			}
		})
	}
}
