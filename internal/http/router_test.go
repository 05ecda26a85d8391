package http

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"rickmorty-api/internal/auth"
	"rickmorty-api/internal/service"
	"rickmorty-api/internal/service/mocks"
	"rickmorty-api/internal/storage"
	vsmocks "rickmorty-api/internal/vectorstore/mocks"

	"go.uber.org/mock/gomock"
)

type okPinger struct{}

func (okPinger) PingContext(context.Context) error { return nil }

type routerFixture struct {
	router   http.Handler
	chat     *mocks.MockChatService
	ratings  *mocks.MockRatingService
	profiles *mocks.MockProfileService
	accounts *mocks.MockAccountService
	store    *vsmocks.MockVectorStore
	token    string
}

func newRouterFixture(t *testing.T) *routerFixture {
	t.Helper()
	prev := slog.Default()
	slog.SetDefault(slog.New(slog.NewTextHandler(io.Discard, nil)))
	t.Cleanup(func() { slog.SetDefault(prev) })

	ctrl := gomock.NewController(t)
	jwtAuth := auth.NewJWTAuth("0123456789abcdef0123456789abcdef", time.Minute, time.Hour)
	token, err := jwtAuth.IssueAccess(1, "rick")
	if err != nil {
		t.Fatalf("IssueAccess() error = %v", err)
	}

	f := &routerFixture{
		chat:     mocks.NewMockChatService(ctrl),
		ratings:  mocks.NewMockRatingService(ctrl),
		profiles: mocks.NewMockProfileService(ctrl),
		accounts: mocks.NewMockAccountService(ctrl),
		store:    vsmocks.NewMockVectorStore(ctrl),
		token:    token,
	}
	f.router = NewRouter(&Deps{
		ChatService:    f.chat,
		RatingService:  f.ratings,
		ProfileService: f.profiles,
		AccountService: f.accounts,
		Auth:           jwtAuth,
		VectorStore:    f.store,
		Collection:     "rm-index",
		DB:             okPinger{},
	})
	return f
}

func (f *routerFixture) do(method, path, body string, authed bool) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if authed {
		req.Header.Set("Authorization", "Bearer "+f.token)
	}
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

func TestRouter_Routes(t *testing.T) {
	tests := []struct {
		name       string
		method     string
		path       string
		body       string
		authed     bool
		setup      func(f *routerFixture)
		wantStatus int
	}{
		{
			name:   "health is public",
			method: http.MethodGet,
			path:   "/api/health",
			setup: func(f *routerFixture) {
				f.store.EXPECT().CollectionExists(gomock.Any(), "rm-index").Return(true, nil)
			},
			wantStatus: http.StatusOK,
		},
		{
			name:       "chatbot requires auth",
			method:     http.MethodPost,
			path:       "/api/chatbot",
			body:       `{"query":"hi"}`,
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "chatbot GET reaches handler",
			method:     http.MethodGet,
			path:       "/api/chatbot",
			authed:     true,
			wantStatus: http.StatusMethodNotAllowed,
		},
		{
			name:       "chatbot rejects trailing data after the body",
			method:     http.MethodPost,
			path:       "/api/chatbot",
			body:       `{"query":"hi"} garbage`,
			authed:     true,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:   "chatbot with trailing slash",
			method: http.MethodPost,
			path:   "/api/chatbot/",
			body:   `{"query":"Who is Pickle Rick?","character":"Rick Sanchez","history":"None"}`,
			authed: true,
			setup: func(f *routerFixture) {
				f.chat.EXPECT().ProcessChat(gomock.Any(), gomock.Any()).
					Return(service.ChatResponse{Response: "I'm Pickle Rick!"}, nil)
			},
			wantStatus: http.StatusOK,
		},
		{
			name:   "average rating is public",
			method: http.MethodGet,
			path:   "/api/average_rating/episode/1/",
			setup: func(f *routerFixture) {
				f.ratings.EXPECT().AverageRating(gomock.Any(), storage.KindEpisode, int64(1)).Return("0.0", nil)
			},
			wantStatus: http.StatusOK,
		},
		{
			name:   "episode rating",
			method: http.MethodGet,
			path:   "/api/episodes/ratings/5",
			authed: true,
			setup: func(f *routerFixture) {
				f.ratings.EXPECT().GetRating(gomock.Any(), storage.KindEpisode, int64(1), int64(5)).Return(nil, service.ErrNotFound)
			},
			wantStatus: http.StatusOK,
		},
		{
			name:   "character rating",
			method: http.MethodPost,
			path:   "/api/characters/ratings/5",
			body:   `{"rating":3}`,
			authed: true,
			setup: func(f *routerFixture) {
				three := 3
				f.ratings.EXPECT().SaveRating(gomock.Any(), storage.KindCharacter, int64(1), int64(5), gomock.Any()).
					Return(&storage.Rating{ID: 1, Kind: storage.KindCharacter, ItemID: 5, OwnerID: 1, Rating: &three}, true, nil)
			},
			wantStatus: http.StatusCreated,
		},
		{
			name:       "collection requires auth",
			method:     http.MethodGet,
			path:       "/api/collection/episodes",
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "profile requires auth",
			method:     http.MethodGet,
			path:       "/api/profile",
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:   "token is public",
			method: http.MethodPost,
			path:   "/api/token/",
			body:   `{"username":"rick","password":"wubba"}`,
			setup: func(f *routerFixture) {
				f.accounts.EXPECT().Login(gomock.Any(), "rick", "wubba").Return(auth.TokenPair{Access: "a", Refresh: "r"}, nil)
			},
			wantStatus: http.StatusOK,
		},
		{
			name:       "bare OPTIONS on chatbot is not allowed",
			method:     http.MethodOptions,
			path:       "/api/chatbot",
			authed:     true,
			wantStatus: http.StatusMethodNotAllowed,
		},
		{
			name:       "unknown route",
			method:     http.MethodGet,
			path:       "/api/locations",
			wantStatus: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newRouterFixture(t)
			if tt.setup != nil {
				tt.setup(f)
			}

			w := f.do(tt.method, tt.path, tt.body, tt.authed)

			if w.Code != tt.wantStatus {
				t.Errorf("Router %s %s status = %v, want %v (body %s)", tt.method, tt.path, w.Code, tt.wantStatus, w.Body.String())
			}
		})
	}
}

func TestRouter_ChatbotResponseBody(t *testing.T) {
	f := newRouterFixture(t)
	f.chat.EXPECT().ProcessChat(gomock.Any(), gomock.Any()).Return(service.ChatResponse{Response: "Wubba lubba dub dub"}, nil)

	w := f.do(http.MethodPost, "/api/chatbot", `{"query":"hi"}`, true)

	var resp map[string]string
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp["response"] != "Wubba lubba dub dub" {
		t.Errorf("response = %v", resp)
	}
}

func TestRouter_Preflight(t *testing.T) {
	f := newRouterFixture(t)

	req := httptest.NewRequest(http.MethodOptions, "/api/chatbot", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)

	if w.Code != http.StatusNoContent {
		t.Errorf("preflight status = %v, want %v", w.Code, http.StatusNoContent)
	}
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "http://localhost:5173" {
		t.Errorf("Access-Control-Allow-Origin = %q", got)
	}
}

func TestRouter_MiddlewareApplied(t *testing.T) {
	f := newRouterFixture(t)

	w := f.do(http.MethodPost, "/api/chatbot", `{}`, false)

	if w.Header().Get("Access-Control-Allow-Origin") == "" {
		t.Error("Router should apply CORS middleware")
	}
}
