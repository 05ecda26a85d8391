package service_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"rickmorty-api/internal/auth"
	"rickmorty-api/internal/service"
	"rickmorty-api/internal/service/mocks"
	"rickmorty-api/internal/storage"
	storagemocks "rickmorty-api/internal/storage/mocks"

	"go.uber.org/mock/gomock"
)

func TestAccountService_Register(t *testing.T) {
	tests := []struct {
		name      string
		username  string
		password  string
		mockSetup func(u *storagemocks.MockUserStore)
		wantField string
		wantErr   error
	}{
		{
			name:     "creates user",
			username: "rick.sanchez+c137@citadel",
			password: "wubba",
			mockSetup: func(u *storagemocks.MockUserStore) {
				u.EXPECT().Create(gomock.Any(), "rick.sanchez+c137@citadel", gomock.Any()).
					DoAndReturn(func(_ context.Context, username, hash string) (*storage.User, error) {
						if !auth.CheckPassword(hash, "wubba") {
							t.Error("Create() received a hash that does not match the password")
						}
						return &storage.User{ID: 1, Username: username, PasswordHash: hash}, nil
					})
			},
		},
		{
			name:      "blank username",
			username:  "",
			password:  "wubba",
			mockSetup: func(u *storagemocks.MockUserStore) {},
			wantField: "username",
		},
		{
			name:      "username with spaces",
			username:  "rick sanchez",
			password:  "wubba",
			mockSetup: func(u *storagemocks.MockUserStore) {},
			wantField: "username",
		},
		{
			name:      "username too long",
			username:  strings.Repeat("r", 151),
			password:  "wubba",
			mockSetup: func(u *storagemocks.MockUserStore) {},
			wantField: "username",
		},
		{
			name:      "blank password",
			username:  "morty",
			password:  "",
			mockSetup: func(u *storagemocks.MockUserStore) {},
			wantField: "password",
		},
		{
			name:     "duplicate username",
			username: "morty",
			password: "aww-jeez",
			mockSetup: func(u *storagemocks.MockUserStore) {
				u.EXPECT().Create(gomock.Any(), "morty", gomock.Any()).Return(nil, storage.ErrConflict)
			},
			wantErr: service.ErrConflict,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			users := storagemocks.NewMockUserStore(ctrl)
			tt.mockSetup(users)
			svc := service.NewAccountService(users, mocks.NewMockTokenIssuer(ctrl))

			user, err := svc.Register(context.Background(), tt.username, tt.password)

			switch {
			case tt.wantField != "":
				var validationErr *service.ValidationError
				if !errors.As(err, &validationErr) || validationErr.Field != tt.wantField {
					t.Errorf("Register() error = %v, want validation error on %s", err, tt.wantField)
				}
			case tt.wantErr != nil:
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("Register() error = %v, want %v", err, tt.wantErr)
				}
			default:
				if err != nil {
					t.Fatalf("Register() unexpected error: %v", err)
				}
				if user.Username != tt.username {
					t.Errorf("Register() username = %q, want %q", user.Username, tt.username)
				}
			}
		})
	}
}

func TestAccountService_Login(t *testing.T) {
	hash, err := auth.HashPassword("wubba")
	if err != nil {
		t.Fatalf("HashPassword() error = %v", err)
	}
	rick := &storage.User{ID: 1, Username: "rick", PasswordHash: hash}
	pair := auth.TokenPair{Access: "a", Refresh: "r"}

	tests := []struct {
		name      string
		password  string
		mockSetup func(u *storagemocks.MockUserStore, tok *mocks.MockTokenIssuer)
		wantErr   error
	}{
		{
			name:     "valid credentials",
			password: "wubba",
			mockSetup: func(u *storagemocks.MockUserStore, tok *mocks.MockTokenIssuer) {
				u.EXPECT().GetByUsername(gomock.Any(), "rick").Return(rick, nil)
				tok.EXPECT().IssuePair(int64(1), "rick").Return(pair, nil)
			},
		},
		{
			name:     "wrong password",
			password: "lubba",
			mockSetup: func(u *storagemocks.MockUserStore, tok *mocks.MockTokenIssuer) {
				u.EXPECT().GetByUsername(gomock.Any(), "rick").Return(rick, nil)
			},
			wantErr: service.ErrUnauthorized,
		},
		{
			name:     "unknown user",
			password: "wubba",
			mockSetup: func(u *storagemocks.MockUserStore, tok *mocks.MockTokenIssuer) {
				u.EXPECT().GetByUsername(gomock.Any(), "rick").Return(nil, storage.ErrNotFound)
			},
			wantErr: service.ErrUnauthorized,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			users := storagemocks.NewMockUserStore(ctrl)
			tokens := mocks.NewMockTokenIssuer(ctrl)
			tt.mockSetup(users, tokens)
			svc := service.NewAccountService(users, tokens)

			got, err := svc.Login(context.Background(), "rick", tt.password)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("Login() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Login() unexpected error: %v", err)
			}
			if got != pair {
				t.Errorf("Login() = %+v, want %+v", got, pair)
			}
		})
	}
}

func TestAccountService_Refresh(t *testing.T) {
	tests := []struct {
		name      string
		mockSetup func(u *storagemocks.MockUserStore, tok *mocks.MockTokenIssuer)
		want      string
		wantErr   error
	}{
		{
			name: "valid refresh token",
			mockSetup: func(u *storagemocks.MockUserStore, tok *mocks.MockTokenIssuer) {
				tok.EXPECT().Parse("refresh-token", auth.TokenRefresh).Return(&auth.Claims{UserID: 9, Username: "beth"}, nil)
				u.EXPECT().GetByID(gomock.Any(), int64(9)).Return(&storage.User{ID: 9, Username: "beth"}, nil)
				tok.EXPECT().IssueAccess(int64(9), "beth").Return("new-access", nil)
			},
			want: "new-access",
		},
		{
			name: "invalid token",
			mockSetup: func(u *storagemocks.MockUserStore, tok *mocks.MockTokenIssuer) {
				tok.EXPECT().Parse("refresh-token", auth.TokenRefresh).Return(nil, auth.ErrInvalidToken)
			},
			wantErr: service.ErrUnauthorized,
		},
		{
			name: "deleted user",
			mockSetup: func(u *storagemocks.MockUserStore, tok *mocks.MockTokenIssuer) {
				tok.EXPECT().Parse("refresh-token", auth.TokenRefresh).Return(&auth.Claims{UserID: 9}, nil)
				u.EXPECT().GetByID(gomock.Any(), int64(9)).Return(nil, storage.ErrNotFound)
			},
			wantErr: service.ErrUnauthorized,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			users := storagemocks.NewMockUserStore(ctrl)
			tokens := mocks.NewMockTokenIssuer(ctrl)
			tt.mockSetup(users, tokens)
			svc := service.NewAccountService(users, tokens)

			got, err := svc.Refresh(context.Background(), "refresh-token")
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("Refresh() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Refresh() unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("Refresh() = %q, want %q", got, tt.want)
			}
		})
	}
}
