package store

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when a requested row does not exist.
var ErrNotFound = errors.New("not found")

// AnonymousName is the display name used when a sender cannot be resolved.
const AnonymousName = "anonymous"

// User represents a registered user.
type User struct {
	ID           int64
	Username     string
	PasswordHash string
	CreatedAt    time.Time
}

// Session maps an opaque session token to a user.
type Session struct {
	Token     string
	UserID    int64
	CreatedAt time.Time
}

// Message represents a persisted chat message as read back for history,
// with the sender name resolved via a join.
type Message struct {
	ID         int64
	SenderID   int64
	SenderName string
	Content    string
	Timestamp  time.Time
}

// UserStore handles user persistence.
type UserStore interface {
	// CreateUser creates a new user with hashed password.
	CreateUser(ctx context.Context, username, passwordHash string) (*User, error)

	// GetUserByUsername retrieves a user by username.
	GetUserByUsername(ctx context.Context, username string) (*User, error)

	// ResolveUsername maps a user id to a display name. It never fails:
	// a missing user or a storage error yields the anonymous sentinel.
	ResolveUsername(ctx context.Context, userID int64) string
}

// SessionStore handles session token persistence.
type SessionStore interface {
	// CreateSession persists a session token for a user.
	CreateSession(ctx context.Context, token string, userID int64) error

	// GetSession looks up a session token. Returns ErrNotFound if the
	// token is unknown.
	GetSession(ctx context.Context, token string) (*Session, error)

	// DeleteSession revokes a session token. Deleting an unknown token
	// is not an error.
	DeleteSession(ctx context.Context, token string) error
}

// MessageStore handles message persistence.
type MessageStore interface {
	// AppendMessage durably writes one message and returns its assigned
	// id and stored timestamp. Ids are monotonic in persistence order.
	AppendMessage(ctx context.Context, senderID int64, content string) (int64, time.Time, error)

	// ListHistory returns every persisted message joined with its sender
	// name, in persistence order (timestamp ascending, id breaking ties).
	ListHistory(ctx context.Context) ([]*Message, error)
}

// Store aggregates all storage interfaces.
type Store interface {
	UserStore
	SessionStore
	MessageStore

	// Close closes the underlying database connection.
	Close() error
}
