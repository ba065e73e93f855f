package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/vkovalov/chatline/internal/config"
	"github.com/vkovalov/chatline/internal/store"
)

var (
	// ErrInvalidCredentials is returned when username/password don't match.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrUserExists is returned when trying to register with existing username.
	ErrUserExists = errors.New("user already exists")
	// ErrInvalidUsername is returned when username doesn't meet constraints.
	ErrInvalidUsername = errors.New("invalid username")
	// ErrInvalidPassword is returned when password doesn't meet constraints.
	ErrInvalidPassword = errors.New("invalid password")
	// ErrInvalidSession is returned when a session token is unknown.
	ErrInvalidSession = errors.New("invalid session")
)

// Service provides authentication operations.
type Service struct {
	users    store.UserStore
	sessions store.SessionStore
	jwtCfg   config.JWTConfig
}

// NewService creates a new authentication service.
func NewService(users store.UserStore, sessions store.SessionStore, jwtCfg config.JWTConfig) *Service {
	return &Service{
		users:    users,
		sessions: sessions,
		jwtCfg:   jwtCfg,
	}
}

// Register creates a new user with hashed password.
func (s *Service) Register(ctx context.Context, username, password string) (*store.User, error) {
	username = strings.TrimSpace(username)
	if len(username) < 3 || len(username) > 32 {
		return nil, ErrInvalidUsername
	}
	if len(password) < 6 {
		return nil, ErrInvalidPassword
	}

	if existing, err := s.users.GetUserByUsername(ctx, username); err == nil && existing != nil {
		return nil, ErrUserExists
	}

	hashedPassword, err := HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user, err := s.users.CreateUser(ctx, username, hashedPassword)
	if err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}

	return user, nil
}

// Login validates credentials, mints a session token, persists it and
// returns the token.
func (s *Service) Login(ctx context.Context, username, password string) (string, error) {
	user, err := s.users.GetUserByUsername(ctx, username)
	if err != nil {
		return "", ErrInvalidCredentials
	}

	if errPwd := ComparePassword(user.PasswordHash, password); errPwd != nil {
		return "", ErrInvalidCredentials
	}

	token := uuid.NewString()
	if err := s.sessions.CreateSession(ctx, token, user.ID); err != nil {
		return "", fmt.Errorf("create session: %w", err)
	}

	return token, nil
}

// Logout revokes a session token.
func (s *Service) Logout(ctx context.Context, token string) error {
	if err := s.sessions.DeleteSession(ctx, token); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

// ValidateSession maps a session token to the user id it was issued for.
// Unknown tokens and storage failures both reject: validation fails closed.
func (s *Service) ValidateSession(ctx context.Context, token string) (int64, error) {
	if token == "" {
		return 0, ErrInvalidSession
	}

	sess, err := s.sessions.GetSession(ctx, token)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return 0, ErrInvalidSession
		}
		return 0, fmt.Errorf("lookup session: %w", err)
	}

	return sess.UserID, nil
}

// IssueAPIToken exchanges an authenticated user for a signed bearer token.
func (s *Service) IssueAPIToken(ctx context.Context, userID int64) (string, error) {
	username := s.users.ResolveUsername(ctx, userID)
	token, err := GenerateToken(s.jwtCfg, userID, username)
	if err != nil {
		return "", fmt.Errorf("generate token: %w", err)
	}
	return token, nil
}

// ValidateAPIToken validates a bearer token and returns its claims.
func (s *Service) ValidateAPIToken(tokenString string) (*Claims, error) {
	return ValidateToken(s.jwtCfg, tokenString)
}
