package ledger

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	log "github.com/sirupsen/logrus"
	_ "modernc.org/sqlite"

	"github.com/handiism/spotrip/internal/model"
)

// FileName is the ledger's default name inside the output root.
const FileName = ".spotrip.db"

// timeLayout sorts lexically in chronological order.
const timeLayout = "2006-01-02 15:04:05.000000000"

// Ledger persists output path ownership and per-track outcomes.
type Ledger struct {
	db *sql.DB
}

// Entry is one recorded pipeline outcome.
type Entry struct {
	RunID  string
	Track  model.ID
	Status string
	Path   string
	Error  string
	At     time.Time
}

// Open opens or creates the ledger at path.
func Open(path string) (*Ledger, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create ledger directory %s: %w", dir, err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open ledger: %w", err)
	}
	// One writer keeps claims serialized.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to set WAL mode: %w", err)
	}
	if _, err := db.Exec("PRAGMA busy_timeout=5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to set busy timeout: %w", err)
	}

	l := &Ledger{db: db}
	if err := l.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	log.Debugf("Ledger opened at %s", path)
	return l, nil
}

func (l *Ledger) Close() error {
	return l.db.Close()
}

func (l *Ledger) migrate() error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS path_claims (
			path TEXT PRIMARY KEY,
			track_id TEXT NOT NULL,
			claimed_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE INDEX IF NOT EXISTS idx_path_claims_track ON path_claims(track_id)`,
		`CREATE TABLE IF NOT EXISTS history (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id TEXT NOT NULL,
			track_id TEXT NOT NULL,
			status TEXT NOT NULL,
			path TEXT NOT NULL DEFAULT '',
			error TEXT NOT NULL DEFAULT '',
			recorded_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE INDEX IF NOT EXISTS idx_history_track ON history(track_id, recorded_at DESC)`,
	}

	for _, m := range migrations {
		if _, err := l.db.Exec(m); err != nil {
			return fmt.Errorf("migration failed: %w\nSQL: %s", err, m)
		}
	}
	return nil
}

// ClaimPath records track as the owner of path unless another track owns
// it already. It returns the owner after the call.
func (l *Ledger) ClaimPath(ctx context.Context, path string, track model.ID) (model.ID, error) {
	_, err := l.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO path_claims (path, track_id, claimed_at) VALUES (?, ?, ?)`,
		path, track.Base62(), time.Now().UTC().Format(timeLayout),
	)
	if err != nil {
		return model.ID{}, fmt.Errorf("failed to claim path: %w", err)
	}

	var owner string
	err = l.db.QueryRowContext(ctx, `SELECT track_id FROM path_claims WHERE path = ?`, path).Scan(&owner)
	if err != nil {
		return model.ID{}, fmt.Errorf("failed to read path claim: %w", err)
	}
	return model.ParseBase62(owner)
}

// PathFor returns the path track claimed most recently.
func (l *Ledger) PathFor(ctx context.Context, track model.ID) (string, bool, error) {
	var path string
	err := l.db.QueryRowContext(ctx,
		`SELECT path FROM path_claims WHERE track_id = ? ORDER BY claimed_at DESC LIMIT 1`,
		track.Base62(),
	).Scan(&path)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to look up claim: %w", err)
	}
	return path, true, nil
}

// Record appends an outcome to the history.
func (l *Ledger) Record(ctx context.Context, e Entry) error {
	at := e.At
	if at.IsZero() {
		at = time.Now()
	}
	_, err := l.db.ExecContext(ctx,
		`INSERT INTO history (run_id, track_id, status, path, error, recorded_at) VALUES (?, ?, ?, ?, ?, ?)`,
		e.RunID, e.Track.Base62(), e.Status, e.Path, e.Error, at.UTC().Format(timeLayout),
	)
	if err != nil {
		return fmt.Errorf("failed to record outcome: %w", err)
	}
	return nil
}

// History returns the most recent outcomes for track, newest first.
func (l *Ledger) History(ctx context.Context, track model.ID, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := l.db.QueryContext(ctx,
		`SELECT run_id, status, path, error, recorded_at FROM history
		 WHERE track_id = ? ORDER BY recorded_at DESC, id DESC LIMIT ?`,
		track.Base62(), limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query history: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		e := Entry{Track: track}
		var at string
		if err := rows.Scan(&e.RunID, &e.Status, &e.Path, &e.Error, &at); err != nil {
			return nil, fmt.Errorf("failed to scan history: %w", err)
		}
		e.At = parseTime(at)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// parseTime accepts the stored layout and the RFC 3339 form the driver
// produces when it has already converted the column to a time.
func parseTime(s string) time.Time {
	for _, layout := range []string{timeLayout, time.RFC3339Nano} {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
