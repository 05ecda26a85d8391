package service

//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -destination=mocks/mock_account.go -package=mocks rickmorty-api/internal/service TokenIssuer,AccountService

import (
	"context"
	"errors"
	"regexp"

	"rickmorty-api/internal/auth"
	"rickmorty-api/internal/contextutil"
	"rickmorty-api/internal/storage"
)

var usernamePattern = regexp.MustCompile(`^[\w.@+-]{1,150}$`)

// TokenIssuer issues and verifies bearer tokens.
type TokenIssuer interface {
	IssuePair(userID int64, username string) (auth.TokenPair, error)
	IssueAccess(userID int64, username string) (string, error)
	Parse(token string, want auth.TokenType) (*auth.Claims, error)
}

// AccountService registers users and exchanges credentials for tokens.
type AccountService interface {
	Register(ctx context.Context, username, password string) (*storage.User, error)
	Login(ctx context.Context, username, password string) (auth.TokenPair, error)
	Refresh(ctx context.Context, refreshToken string) (string, error)
}

type accountService struct {
	users  storage.UserStore
	tokens TokenIssuer
}

// NewAccountService creates a new AccountService.
func NewAccountService(users storage.UserStore, tokens TokenIssuer) AccountService {
	return &accountService{users: users, tokens: tokens}
}

// Register creates a user and its default profile.
func (s *accountService) Register(ctx context.Context, username, password string) (*storage.User, error) {
	logger := contextutil.LoggerFromContext(ctx)

	if username == "" {
		return nil, &ValidationError{Field: "username", Message: "This field may not be blank."}
	}
	if !usernamePattern.MatchString(username) {
		return nil, &ValidationError{
			Field:   "username",
			Message: "Enter a valid username. This value may contain only letters, numbers, and @/./+/-/_ characters.",
		}
	}
	if password == "" {
		return nil, &ValidationError{Field: "password", Message: "This field may not be blank."}
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, WrapError(err, "failed to hash password")
	}

	user, err := s.users.Create(ctx, username, hash)
	if err != nil {
		if errors.Is(err, storage.ErrConflict) {
			return nil, ErrConflict
		}
		logger.ErrorContext(ctx, "failed to create user", "error", err)
		return nil, WrapError(err, "failed to create user")
	}

	logger.InfoContext(ctx, "user registered", "user_id", user.ID)
	return user, nil
}

// Login checks the credentials and issues a token pair.
func (s *accountService) Login(ctx context.Context, username, password string) (auth.TokenPair, error) {
	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return auth.TokenPair{}, ErrUnauthorized
		}
		return auth.TokenPair{}, WrapError(err, "failed to look up user")
	}
	if !auth.CheckPassword(user.PasswordHash, password) {
		return auth.TokenPair{}, ErrUnauthorized
	}

	pair, err := s.tokens.IssuePair(user.ID, user.Username)
	if err != nil {
		return auth.TokenPair{}, WrapError(err, "failed to issue tokens")
	}
	return pair, nil
}

// Refresh exchanges a refresh token for a new access token. The user must still exist.
func (s *accountService) Refresh(ctx context.Context, refreshToken string) (string, error) {
	claims, err := s.tokens.Parse(refreshToken, auth.TokenRefresh)
	if err != nil {
		contextutil.LoggerFromContext(ctx).DebugContext(ctx, "refresh token rejected", "error", err)
		return "", ErrUnauthorized
	}

	user, err := s.users.GetByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return "", ErrUnauthorized
		}
		return "", WrapError(err, "failed to look up user")
	}

	access, err := s.tokens.IssueAccess(user.ID, user.Username)
	if err != nil {
		return "", WrapError(err, "failed to issue access token")
	}
	return access, nil
}
