package notify

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"guest-dashboard-guard/pkg/model"
	"guest-dashboard-guard/pkg/store"
)

const schema = `CREATE TABLE IF NOT EXISTS notifications(
	id TEXT PRIMARY KEY,
	title TEXT NOT NULL,
	message TEXT NOT NULL,
	created_at INTEGER NOT NULL
)`

// SQLiteStore persists notifications, one row per ID.
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLite opens (creating when needed) the notification database at path.
func OpenSQLite(ctx context.Context, path string) (*SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("sqlite mkdir: %w", err)
	}
	db, err := sql.Open("sqlite", "file:"+path+"?_pragma=busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("sqlite open: %w", err)
	}
	db.SetMaxOpenConns(1)
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("sqlite ping: %w", err)
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("sqlite schema: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Notify inserts n or replaces the row with the same ID.
func (s *SQLiteStore) Notify(ctx context.Context, n model.Notification) error {
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now()
	}
	_, err := s.db.ExecContext(ctx, `INSERT INTO notifications(id, title, message, created_at) VALUES(?,?,?,?)
		ON CONFLICT(id) DO UPDATE SET title=excluded.title, message=excluded.message, created_at=excluded.created_at`,
		n.ID, n.Title, n.Message, n.CreatedAt.UnixNano())
	if err != nil {
		return fmt.Errorf("store notification %s: %w", n.ID, err)
	}
	return nil
}

// ListNotifications returns notifications oldest first.
func (s *SQLiteStore) ListNotifications(ctx context.Context) ([]model.Notification, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, title, message, created_at FROM notifications ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	defer rows.Close()
	out := []model.Notification{}
	for rows.Next() {
		var (
			n  model.Notification
			ts int64
		)
		if err := rows.Scan(&n.ID, &n.Title, &n.Message, &ts); err != nil {
			return nil, err
		}
		n.CreatedAt = time.Unix(0, ts)
		out = append(out, n)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) DismissNotification(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM notifications WHERE id=?`, id)
	if err != nil {
		return fmt.Errorf("dismiss notification %s: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: notification %s", store.ErrNotFound, id)
	}
	return nil
}
