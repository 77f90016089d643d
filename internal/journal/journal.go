package journal

import (
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/azero-id/azns-toolkit/internal/domain"
	"github.com/azero-id/azns-toolkit/internal/logger"
	"github.com/azero-id/azns-toolkit/internal/registry"
	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// Entry is a stored registry event.
type Entry struct {
	ID        string
	Seq       int64
	Kind      registry.EventKind
	Name      string
	From      domain.AccountID
	Old       *domain.AccountID
	New       *domain.AccountID
	CreatedAt time.Time
}

// Journal appends registry events to a SQLite database. It satisfies registry.EventSink.
type Journal struct {
	db     *sql.DB
	path   string
	now    func() time.Time
	logger *slog.Logger
}

// Open creates or opens the journal at path.
func Open(path string) (*Journal, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	db, err := sql.Open("sqlite", path+"?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(1)

	j := &Journal{
		db:     db,
		path:   path,
		now:    time.Now,
		logger: logger.Named("journal"),
	}

	if err := j.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return j, nil
}

func (j *Journal) Close() error {
	return j.db.Close()
}

func (j *Journal) Path() string {
	return j.path
}

func (j *Journal) initSchema() error {
	_, err := j.db.Exec(`
	CREATE TABLE IF NOT EXISTS events (
		seq INTEGER PRIMARY KEY AUTOINCREMENT,
		id TEXT NOT NULL UNIQUE,
		kind TEXT NOT NULL,
		name TEXT NOT NULL,
		from_account TEXT NOT NULL,
		old_account TEXT,
		new_account TEXT,
		created_at TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_events_name ON events(name);
	`)
	return err
}

// Publish stores event.
func (j *Journal) Publish(event registry.Event) error {
	id := uuid.NewString()

	_, err := j.db.Exec(`
		INSERT INTO events (id, kind, name, from_account, old_account, new_account, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		id, string(event.Kind), event.Name, event.From.Hex(),
		nullableAccount(event.Old), nullableAccount(event.New), j.now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("failed to insert event: %w", err)
	}

	j.logger.Debug("event stored", "id", id, "kind", event.Kind, "domain", event.Name)
	return nil
}

// List returns the events of name in insertion order. An empty name lists every event.
func (j *Journal) List(name string) ([]Entry, error) {
	query := `SELECT seq, id, kind, name, from_account, old_account, new_account, created_at FROM events`
	var args []any
	if name != "" {
		query += ` WHERE name = ?`
		args = append(args, name)
	}
	query += ` ORDER BY seq`

	rows, err := j.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query events: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var (
			e          Entry
			kind       string
			from       string
			createdAt  string
			prev, next sql.NullString
		)
		if err := rows.Scan(&e.Seq, &e.ID, &kind, &e.Name, &from, &prev, &next, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan event: %w", err)
		}
		if e.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt); err != nil {
			return nil, fmt.Errorf("event %s: invalid timestamp: %w", e.ID, err)
		}
		e.Kind = registry.EventKind(kind)
		if e.From, err = domain.ParseAccountID(from); err != nil {
			return nil, fmt.Errorf("event %s: %w", e.ID, err)
		}
		if e.Old, err = parseNullable(prev); err != nil {
			return nil, fmt.Errorf("event %s: %w", e.ID, err)
		}
		if e.New, err = parseNullable(next); err != nil {
			return nil, fmt.Errorf("event %s: %w", e.ID, err)
		}
		entries = append(entries, e)
	}

	return entries, rows.Err()
}

func nullableAccount(a *domain.AccountID) sql.NullString {
	if a == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: a.Hex(), Valid: true}
}

func parseNullable(s sql.NullString) (*domain.AccountID, error) {
	if !s.Valid {
		return nil, nil
	}
	a, err := domain.ParseAccountID(s.String)
	if err != nil {
		return nil, err
	}
	return &a, nil
}
