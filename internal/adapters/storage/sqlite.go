// Package storage archives exported threads in SQLite.
package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"forum-harvester/internal/domain"
	"forum-harvester/pkg/log"

	_ "github.com/mattn/go-sqlite3"
)

const schema = `
CREATE TABLE IF NOT EXISTS threads (
	thread_id    TEXT PRIMARY KEY,
	title        TEXT NOT NULL,
	url          TEXT NOT NULL,
	start_date   TEXT NOT NULL DEFAULT '',
	total_pages  INTEGER NOT NULL,
	current_page INTEGER NOT NULL,
	total_posts  INTEGER NOT NULL,
	payload      TEXT NOT NULL,
	scraped_at   TIMESTAMP NOT NULL
);
CREATE TABLE IF NOT EXISTS posts (
	thread_id TEXT NOT NULL REFERENCES threads(thread_id) ON DELETE CASCADE,
	position  INTEGER NOT NULL,
	post_id   TEXT NOT NULL,
	username  TEXT NOT NULL,
	date      TEXT NOT NULL,
	reactions INTEGER NOT NULL,
	PRIMARY KEY (thread_id, position)
);
CREATE INDEX IF NOT EXISTS idx_posts_username ON posts(username);
`

// SQLiteStore keeps one row per thread with its export payload and one row
// per post for listing queries.
type SQLiteStore struct {
	db  *sql.DB
	now func() time.Time
}

// OpenSQLite opens or creates the archive at path.
func OpenSQLite(path string) (*SQLiteStore, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path+"?_foreign_keys=on&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// One writer at a time.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	log.GlobalDebug("thread archive opened", "path", path)
	return &SQLiteStore{db: db, now: time.Now}, nil
}

// Close closes the database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Save upserts the thread and replaces its post rows.
func (s *SQLiteStore) Save(ctx context.Context, thread *domain.ThreadExport) error {
	if thread.ThreadID == "" {
		return fmt.Errorf("archive thread %s: missing thread id", thread.URL)
	}
	payload, err := json.Marshal(thread)
	if err != nil {
		return fmt.Errorf("encode thread: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO threads (thread_id, title, url, start_date, total_pages, current_page, total_posts, payload, scraped_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(thread_id) DO UPDATE SET
			title = excluded.title,
			url = excluded.url,
			start_date = excluded.start_date,
			total_pages = excluded.total_pages,
			current_page = excluded.current_page,
			total_posts = excluded.total_posts,
			payload = excluded.payload,
			scraped_at = excluded.scraped_at`,
		thread.ThreadID, thread.Title, thread.URL, thread.StartDate,
		thread.TotalPages, thread.CurrentPage, thread.TotalPosts, string(payload), s.now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("upsert thread: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM posts WHERE thread_id = ?`, thread.ThreadID); err != nil {
		return fmt.Errorf("clear posts: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO posts (thread_id, position, post_id, username, date, reactions)
		VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for i, p := range thread.Posts {
		if _, err := stmt.ExecContext(ctx, thread.ThreadID, i, p.PostID, p.Author.Username, p.Date, p.Reactions); err != nil {
			return fmt.Errorf("insert post %s: %w", p.PostID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return err
	}
	log.GlobalInfoCtx(ctx, "thread archived", "thread_id", thread.ThreadID, "posts", len(thread.Posts))
	return nil
}

// Get returns the archived export or domain.ErrThreadNotFound.
func (s *SQLiteStore) Get(ctx context.Context, threadID string) (*domain.ThreadExport, error) {
	var payload string
	err := s.db.QueryRowContext(ctx, `SELECT payload FROM threads WHERE thread_id = ?`, threadID).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrThreadNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load thread %s: %w", threadID, err)
	}

	var thread domain.ThreadExport
	if err := json.Unmarshal([]byte(payload), &thread); err != nil {
		return nil, fmt.Errorf("decode thread %s: %w", threadID, err)
	}
	return &thread, nil
}

// List returns archived threads, most recently scraped first.
// limit <= 0 returns all of them.
func (s *SQLiteStore) List(ctx context.Context, limit int) ([]domain.ThreadSummary, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT thread_id, title, url, total_posts, total_pages, current_page, scraped_at
		FROM threads
		ORDER BY scraped_at DESC, thread_id
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list threads: %w", err)
	}
	defer rows.Close()

	var out []domain.ThreadSummary
	for rows.Next() {
		var t domain.ThreadSummary
		if err := rows.Scan(&t.ThreadID, &t.Title, &t.URL, &t.TotalPosts, &t.TotalPages, &t.CurrentPage, &t.ScrapedAt); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// PostCountsByAuthor returns how many archived posts each author wrote in a
// thread, keyed by username.
func (s *SQLiteStore) PostCountsByAuthor(ctx context.Context, threadID string) (map[string]int, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT username, COUNT(*) FROM posts WHERE thread_id = ? GROUP BY username`, threadID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var name string
		var n int
		if err := rows.Scan(&name, &n); err != nil {
			return nil, err
		}
		counts[name] = n
	}
	return counts, rows.Err()
}
