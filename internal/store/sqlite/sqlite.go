package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/vkovalov/chatline/internal/store"
)

// SQLiteStore implements store.Store for SQLite.
type SQLiteStore struct {
	db *sql.DB
}

const schema = `
CREATE TABLE IF NOT EXISTS users (
	id            INTEGER PRIMARY KEY AUTOINCREMENT,
	username      TEXT NOT NULL UNIQUE,
	password_hash TEXT NOT NULL,
	created_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS sessions (
	session_token TEXT PRIMARY KEY,
	user_id       INTEGER NOT NULL REFERENCES users(id),
	created_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS messages (
	id        INTEGER PRIMARY KEY AUTOINCREMENT,
	sender_id INTEGER NOT NULL REFERENCES users(id),
	content   TEXT NOT NULL,
	timestamp DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);
`

// New creates a new SQLite store and bootstraps the schema.
// dbPath is the path to the SQLite database file.
func New(dbPath string) (*SQLiteStore, error) {
	return NewWithSetup(dbPath, func(db *sql.DB) error {
		_, err := db.Exec(schema)
		return err
	})
}

// NewWithSetup creates a new SQLite store and runs a setup function.
// Useful for tests to apply a custom schema or seed data.
func NewWithSetup(dbPath string, setup func(*sql.DB) error) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// SQLite works best with a single connection.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if setup != nil {
		if err := setup(db); err != nil {
			db.Close()
			return nil, fmt.Errorf("setup: %w", err)
		}
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// ==== UserStore implementation ====

// CreateUser creates a new user with hashed password.
func (s *SQLiteStore) CreateUser(ctx context.Context, username, passwordHash string) (*store.User, error) {
	query := `
		INSERT INTO users (username, password_hash)
		VALUES (?, ?)
	`
	result, err := s.db.ExecContext(ctx, query, username, passwordHash)
	if err != nil {
		return nil, fmt.Errorf("insert user: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("get last insert id: %w", err)
	}

	return s.getUserByID(ctx, id)
}

func (s *SQLiteStore) getUserByID(ctx context.Context, id int64) (*store.User, error) {
	query := `
		SELECT id, username, password_hash, created_at
		FROM users
		WHERE id = ?
	`
	var user store.User
	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&user.ID,
		&user.Username,
		&user.PasswordHash,
		&user.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, fmt.Errorf("query user: %w", err)
	}

	return &user, nil
}

// GetUserByUsername retrieves a user by username.
func (s *SQLiteStore) GetUserByUsername(ctx context.Context, username string) (*store.User, error) {
	query := `
		SELECT id, username, password_hash, created_at
		FROM users
		WHERE username = ?
	`
	var user store.User
	err := s.db.QueryRowContext(ctx, query, username).Scan(
		&user.ID,
		&user.Username,
		&user.PasswordHash,
		&user.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, fmt.Errorf("query user: %w", err)
	}

	return &user, nil
}

// ResolveUsername maps a user id to a display name, falling back to the
// anonymous sentinel if the row is missing or the lookup fails.
func (s *SQLiteStore) ResolveUsername(ctx context.Context, userID int64) string {
	var username string
	err := s.db.QueryRowContext(ctx,
		`SELECT username FROM users WHERE id = ?`, userID,
	).Scan(&username)
	if err != nil {
		return store.AnonymousName
	}
	return username
}

// ==== SessionStore implementation ====

// CreateSession persists a session token for a user.
func (s *SQLiteStore) CreateSession(ctx context.Context, token string, userID int64) error {
	query := `
		INSERT INTO sessions (session_token, user_id)
		VALUES (?, ?)
	`
	if _, err := s.db.ExecContext(ctx, query, token, userID); err != nil {
		return fmt.Errorf("insert session: %w", err)
	}
	return nil
}

// GetSession looks up a session token.
func (s *SQLiteStore) GetSession(ctx context.Context, token string) (*store.Session, error) {
	query := `
		SELECT session_token, user_id, created_at
		FROM sessions
		WHERE session_token = ?
	`
	var sess store.Session
	err := s.db.QueryRowContext(ctx, query, token).Scan(
		&sess.Token,
		&sess.UserID,
		&sess.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, fmt.Errorf("query session: %w", err)
	}

	return &sess, nil
}

// DeleteSession revokes a session token.
func (s *SQLiteStore) DeleteSession(ctx context.Context, token string) error {
	if _, err := s.db.ExecContext(ctx,
		`DELETE FROM sessions WHERE session_token = ?`, token,
	); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

// ==== MessageStore implementation ====

// AppendMessage durably writes one message and returns its assigned id and
// stored timestamp.
func (s *SQLiteStore) AppendMessage(ctx context.Context, senderID int64, content string) (int64, time.Time, error) {
	query := `
		INSERT INTO messages (sender_id, content)
		VALUES (?, ?)
	`
	result, err := s.db.ExecContext(ctx, query, senderID, content)
	if err != nil {
		return 0, time.Time{}, fmt.Errorf("insert message: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, time.Time{}, fmt.Errorf("get last insert id: %w", err)
	}

	var ts time.Time
	err = s.db.QueryRowContext(ctx,
		`SELECT timestamp FROM messages WHERE id = ?`, id,
	).Scan(&ts)
	if err != nil {
		return 0, time.Time{}, fmt.Errorf("read back timestamp: %w", err)
	}

	return id, ts, nil
}

// ListHistory returns every persisted message joined with its sender name.
// The id tie-break keeps the order total when timestamps collide at second
// precision.
func (s *SQLiteStore) ListHistory(ctx context.Context) ([]*store.Message, error) {
	query := `
		SELECT
			messages.id,
			messages.sender_id,
			users.username,
			messages.content,
			messages.timestamp
		FROM messages
		JOIN users ON messages.sender_id = users.id
		ORDER BY messages.timestamp ASC, messages.id ASC
	`
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}
	defer rows.Close()

	var messages []*store.Message
	for rows.Next() {
		var msg store.Message
		if err := rows.Scan(
			&msg.ID,
			&msg.SenderID,
			&msg.SenderName,
			&msg.Content,
			&msg.Timestamp,
		); err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		messages = append(messages, &msg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate history: %w", err)
	}

	return messages, nil
}
