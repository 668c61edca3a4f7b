package notify

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"statewatch/internal/config"
	"statewatch/internal/directory"
	"statewatch/internal/record"
	"statewatch/internal/services"
)

const inboxSchema = `
CREATE TABLE IF NOT EXISTS notifications (
    id TEXT PRIMARY KEY,
    user_id TEXT NOT NULL,
    record_type TEXT NOT NULL,
    record_name TEXT NOT NULL,
    subject TEXT NOT NULL,
    body TEXT,
    read INTEGER NOT NULL DEFAULT 0,
    created_at TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_notifications_user ON notifications(user_id, created_at DESC);
`

// InboxEntry is one persisted in-app notification.
type InboxEntry struct {
	ID        string
	UserID    string
	Ref       record.Ref
	Subject   string
	Body      string
	Read      bool
	CreatedAt time.Time
}

// InboxStore persists in-app notifications in SQLite.
type InboxStore struct {
	db *sql.DB
}

// OpenInbox initializes the inbox database under the data directory.
func OpenInbox(cfg *config.Config) (*InboxStore, error) {
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("ensure directories: %w", err)
	}
	return OpenInboxPath(filepath.Join(cfg.Paths.DataDir, "inbox.db"))
}

// OpenInboxPath opens an inbox database at an explicit location.
func OpenInboxPath(dbPath string) (*InboxStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout = 5000",
	} {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}
	if _, err := db.Exec(inboxSchema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply inbox schema: %w", err)
	}
	return &InboxStore{db: db}, nil
}

// Close closes the underlying database connection.
func (s *InboxStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Append stores one notification for a user.
func (s *InboxStore) Append(ctx context.Context, entry InboxEntry) (InboxEntry, error) {
	if entry.ID == "" {
		entry.ID = uuid.New().String()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}
	_, err := s.db.ExecContext(
		ctx,
		`INSERT INTO notifications (id, user_id, record_type, record_name, subject, body, read, created_at)
         VALUES (?, ?, ?, ?, ?, ?, 0, ?)`,
		entry.ID,
		entry.UserID,
		entry.Ref.Type,
		entry.Ref.Name,
		entry.Subject,
		entry.Body,
		entry.CreatedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return InboxEntry{}, fmt.Errorf("append notification: %w", err)
	}
	return entry, nil
}

// Inbox lists a user's notifications, newest first.
func (s *InboxStore) Inbox(ctx context.Context, userID string, unreadOnly bool) ([]InboxEntry, error) {
	query := `SELECT id, user_id, record_type, record_name, subject, body, read, created_at
              FROM notifications WHERE user_id = ?`
	if unreadOnly {
		query += ` AND read = 0`
	}
	query += ` ORDER BY created_at DESC, id`

	rows, err := s.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("list inbox: %w", err)
	}
	defer rows.Close()

	var entries []InboxEntry
	for rows.Next() {
		var (
			entry     InboxEntry
			readFlag  int
			createdAt string
		)
		if err := rows.Scan(&entry.ID, &entry.UserID, &entry.Ref.Type, &entry.Ref.Name,
			&entry.Subject, &entry.Body, &readFlag, &createdAt); err != nil {
			return nil, err
		}
		entry.Read = readFlag != 0
		if parsed, parseErr := time.Parse(time.RFC3339Nano, createdAt); parseErr == nil {
			entry.CreatedAt = parsed
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

// MarkRead flags one notification as read.
func (s *InboxStore) MarkRead(ctx context.Context, id string) (bool, error) {
	res, err := s.db.ExecContext(ctx, `UPDATE notifications SET read = 1 WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("mark read: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return affected > 0, nil
}

// InAppChannel persists each delivery into the recipient's inbox.
type InAppChannel struct {
	store *InboxStore
}

// NewInAppChannel wraps an inbox store as a delivery channel.
func NewInAppChannel(store *InboxStore) *InAppChannel {
	return &InAppChannel{store: store}
}

func (c *InAppChannel) Name() string { return "inapp" }

func (c *InAppChannel) Send(ctx context.Context, user directory.User, msg Message) error {
	if err := deliverable(user); err != nil {
		return err
	}
	_, err := c.store.Append(ctx, InboxEntry{
		UserID:  user.ID,
		Ref:     msg.Ref,
		Subject: msg.Subject,
		Body:    msg.Body,
	})
	if err != nil {
		return services.Wrap(services.ErrDelivery, "notify", "inapp", "persist notification", err)
	}
	return nil
}
