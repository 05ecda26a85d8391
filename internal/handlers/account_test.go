package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"rickmorty-api/internal/auth"
	"rickmorty-api/internal/service"
	"rickmorty-api/internal/service/mocks"
	"rickmorty-api/internal/storage"

	"go.uber.org/mock/gomock"
)

func TestAccountHandler_Register(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		mockSetup  func(*mocks.MockAccountService)
		wantStatus int
		wantBody   string
	}{
		{
			name: "created",
			body: `{"username":"morty","password":"aww-jeez"}`,
			mockSetup: func(m *mocks.MockAccountService) {
				m.EXPECT().Register(gomock.Any(), "morty", "aww-jeez").Return(&storage.User{ID: 2, Username: "morty"}, nil)
			},
			wantStatus: http.StatusCreated,
			wantBody:   `{"id":2,"username":"morty"}`,
		},
		{
			name: "duplicate",
			body: `{"username":"morty","password":"aww-jeez"}`,
			mockSetup: func(m *mocks.MockAccountService) {
				m.EXPECT().Register(gomock.Any(), "morty", "aww-jeez").Return(nil, service.ErrConflict)
			},
			wantStatus: http.StatusBadRequest,
			wantBody:   `{"error":"A user with that username already exists."}`,
		},
		{
			name: "invalid username",
			body: `{"username":"rick sanchez","password":"x"}`,
			mockSetup: func(m *mocks.MockAccountService) {
				m.EXPECT().Register(gomock.Any(), "rick sanchez", "x").
					Return(nil, &service.ValidationError{Field: "username", Message: "Enter a valid username."})
			},
			wantStatus: http.StatusBadRequest,
			wantBody:   `{"error":"Enter a valid username."}`,
		},
		{
			name:       "invalid JSON",
			body:       `{`,
			mockSetup:  func(m *mocks.MockAccountService) {},
			wantStatus: http.StatusBadRequest,
			wantBody:   `{"error":"Invalid JSON"}`,
		},
		{
			name:       "trailing data after object",
			body:       `{"username":"rick","password":"x"} junk`,
			mockSetup:  func(m *mocks.MockAccountService) {},
			wantStatus: http.StatusBadRequest,
			wantBody:   `{"error":"Invalid JSON"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			svc := mocks.NewMockAccountService(ctrl)
			tt.mockSetup(svc)

			w := httptest.NewRecorder()
			NewAccountHandler(svc).Register(w, newRequest(t, http.MethodPost, "/api/user/register", tt.body, 0, nil))

			if w.Code != tt.wantStatus {
				t.Fatalf("Register() status = %v, want %v", w.Code, tt.wantStatus)
			}
			assertJSONEqual(t, w.Body.Bytes(), tt.wantBody)
		})
	}
}

func TestAccountHandler_Token(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		mockSetup  func(*mocks.MockAccountService)
		wantStatus int
		wantBody   string
	}{
		{
			name: "valid credentials",
			body: `{"username":"rick","password":"wubba"}`,
			mockSetup: func(m *mocks.MockAccountService) {
				m.EXPECT().Login(gomock.Any(), "rick", "wubba").Return(auth.TokenPair{Access: "a", Refresh: "r"}, nil)
			},
			wantStatus: http.StatusOK,
			wantBody:   `{"access":"a","refresh":"r"}`,
		},
		{
			name: "bad credentials",
			body: `{"username":"rick","password":"nope"}`,
			mockSetup: func(m *mocks.MockAccountService) {
				m.EXPECT().Login(gomock.Any(), "rick", "nope").Return(auth.TokenPair{}, service.ErrUnauthorized)
			},
			wantStatus: http.StatusUnauthorized,
			wantBody:   `{"error":"No active account found with the given credentials"}`,
		},
		{
			name:       "missing password",
			body:       `{"username":"rick"}`,
			mockSetup:  func(m *mocks.MockAccountService) {},
			wantStatus: http.StatusBadRequest,
			wantBody:   `{"error":"username and password are required"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			svc := mocks.NewMockAccountService(ctrl)
			tt.mockSetup(svc)

			w := httptest.NewRecorder()
			NewAccountHandler(svc).Token(w, newRequest(t, http.MethodPost, "/api/token", tt.body, 0, nil))

			if w.Code != tt.wantStatus {
				t.Fatalf("Token() status = %v, want %v", w.Code, tt.wantStatus)
			}
			assertJSONEqual(t, w.Body.Bytes(), tt.wantBody)
		})
	}
}

func TestAccountHandler_Refresh(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		mockSetup  func(*mocks.MockAccountService)
		wantStatus int
		wantBody   string
	}{
		{
			name: "valid refresh",
			body: `{"refresh":"r"}`,
			mockSetup: func(m *mocks.MockAccountService) {
				m.EXPECT().Refresh(gomock.Any(), "r").Return("new-access", nil)
			},
			wantStatus: http.StatusOK,
			wantBody:   `{"access":"new-access"}`,
		},
		{
			name: "rejected refresh",
			body: `{"refresh":"r"}`,
			mockSetup: func(m *mocks.MockAccountService) {
				m.EXPECT().Refresh(gomock.Any(), "r").Return("", service.ErrUnauthorized)
			},
			wantStatus: http.StatusUnauthorized,
			wantBody:   `{"error":"Token is invalid or expired"}`,
		},
		{
			name:       "missing refresh",
			body:       `{}`,
			mockSetup:  func(m *mocks.MockAccountService) {},
			wantStatus: http.StatusBadRequest,
			wantBody:   `{"error":"refresh is required"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			svc := mocks.NewMockAccountService(ctrl)
			tt.mockSetup(svc)

			w := httptest.NewRecorder()
			NewAccountHandler(svc).Refresh(w, newRequest(t, http.MethodPost, "/api/token/refresh", tt.body, 0, nil))

			if w.Code != tt.wantStatus {
				t.Fatalf("Refresh() status = %v, want %v", w.Code, tt.wantStatus)
			}
			assertJSONEqual(t, w.Body.Bytes(), tt.wantBody)
		})
	}
}
