// Package store keeps the attempt journal in SQLite.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/verte-zerg/cwtrain/internal/model"

	_ "modernc.org/sqlite" // SQLite driver.
)

// DefaultName is the journal file name.
const DefaultName = "journal.db"

// Store wraps SQLite access for the journal.
type Store struct {
	db *sql.DB
}

// Open opens or creates the journal and applies migrations.
func Open(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		if cerr := db.Close(); cerr != nil {
			// Best-effort close on migration failure.
			_ = cerr
		}
		return nil, fmt.Errorf("failed to migrate journal: %w", err)
	}
	return store, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS sessions (
			id TEXT PRIMARY KEY,
			started_at TEXT NOT NULL,
			ended_at TEXT NOT NULL,
			mode TEXT NOT NULL,
			wpm INTEGER NOT NULL,
			tone INTEGER NOT NULL,
			attempts INTEGER NOT NULL,
			correct INTEGER NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS session_char_stats (
			session_id TEXT NOT NULL,
			char TEXT NOT NULL,
			correct INTEGER NOT NULL,
			incorrect INTEGER NOT NULL,
			PRIMARY KEY (session_id, char)
		);`,
		`CREATE TABLE IF NOT EXISTS attempts (
			session_id TEXT NOT NULL,
			seq INTEGER NOT NULL,
			target TEXT NOT NULL,
			input TEXT NOT NULL,
			at TEXT NOT NULL,
			PRIMARY KEY (session_id, seq)
		);`,
		`CREATE INDEX IF NOT EXISTS idx_sessions_ended_at ON sessions(ended_at);`,
		`CREATE INDEX IF NOT EXISTS idx_session_char_stats_char ON session_char_stats(char);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

// InsertSession stores a finished session with its per-character stats
// and attempts, and returns the session id. A missing id is generated.
func (s *Store) InsertSession(ctx context.Context, js model.JournalSession, chars map[rune]model.CharStat, attempts []model.Attempt) (id string, err error) {
	id = js.ID
	if id == "" {
		id = uuid.NewString()
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", err
	}
	defer func() {
		if err != nil {
			if rerr := tx.Rollback(); rerr != nil {
				// Best-effort rollback.
				_ = rerr
			}
		}
	}()

	if _, err = tx.ExecContext(ctx,
		`INSERT INTO sessions (id, started_at, ended_at, mode, wpm, tone, attempts, correct)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		id,
		formatTime(js.StartedAt),
		formatTime(js.EndedAt),
		js.Mode,
		js.WPM,
		js.Tone,
		js.Attempts,
		js.Correct,
	); err != nil {
		return "", err
	}

	if len(chars) > 0 {
		keys := make([]rune, 0, len(chars))
		for c := range chars {
			keys = append(keys, c)
		}
		sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
		for _, c := range keys {
			cs := chars[c]
			if _, err = tx.ExecContext(ctx,
				`INSERT INTO session_char_stats (session_id, char, correct, incorrect) VALUES (?, ?, ?, ?)`,
				id, string(c), cs.Correct, cs.Wrong); err != nil {
				return "", err
			}
		}
	}

	for i, a := range attempts {
		if _, err = tx.ExecContext(ctx,
			`INSERT INTO attempts (session_id, seq, target, input, at) VALUES (?, ?, ?, ?, ?)`,
			id, i, a.Target, a.Input, formatTime(a.At)); err != nil {
			return "", err
		}
	}

	if err = tx.Commit(); err != nil {
		return "", err
	}
	return id, nil
}

// GetWeakChars aggregates character stats over the most recent sessions.
func (s *Store) GetWeakChars(ctx context.Context, window int) ([]model.CharAggregate, error) {
	if window <= 0 {
		return nil, nil
	}
	query := `WITH recent_sessions AS (
		SELECT id FROM sessions
		ORDER BY ended_at DESC
		LIMIT ?
	)
	SELECT cs.char, SUM(cs.correct) AS correct, SUM(cs.incorrect) AS incorrect
	FROM session_char_stats cs
	JOIN recent_sessions r ON r.id = cs.session_id
	GROUP BY cs.char
	ORDER BY cs.char`
	rows, err := s.db.QueryContext(ctx, query, window)
	if err != nil {
		return nil, err
	}
	return scanAggregates(rows)
}

// ListSessions returns journal sessions ended since cfg.Since, oldest first.
func (s *Store) ListSessions(ctx context.Context, cfg model.StatsConfig) ([]model.SessionAggregate, error) {
	clauses := []string{"1=1"}
	args := []any{}
	if cfg.Since != nil {
		clauses = append(clauses, "ended_at >= ?")
		args = append(args, formatTime(*cfg.Since))
	}
	query := fmt.Sprintf(`SELECT id, ended_at, attempts, correct, wpm
		FROM sessions
		WHERE %s
		ORDER BY ended_at ASC`, strings.Join(clauses, " AND "))
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var sessions []model.SessionAggregate
	for rows.Next() {
		var agg model.SessionAggregate
		var endedAt string
		if err := rows.Scan(&agg.SessionID, &endedAt, &agg.Attempts, &agg.Correct, &agg.WPM); err != nil {
			return nil, err
		}
		parsed, err := time.Parse(time.RFC3339Nano, endedAt)
		if err != nil {
			return nil, err
		}
		agg.EndedAt = parsed.Local()
		sessions = append(sessions, agg)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return sessions, nil
}

// ListCharAggregatesForSessions aggregates per-character stats across sessions.
func (s *Store) ListCharAggregatesForSessions(ctx context.Context, sessionIDs []string) ([]model.CharAggregate, error) {
	if len(sessionIDs) == 0 {
		return nil, nil
	}
	placeholders, args := inList(sessionIDs)
	query := fmt.Sprintf(`SELECT char, SUM(correct) AS correct, SUM(incorrect) AS incorrect
		FROM session_char_stats
		WHERE session_id IN (%s)
		GROUP BY char
		ORDER BY char`, placeholders)
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return scanAggregates(rows)
}

// ListCharStatsForSessions returns per-session stats for selected characters.
func (s *Store) ListCharStatsForSessions(ctx context.Context, sessionIDs []string, chars []string) (map[string]map[string]model.CharAggregate, error) {
	result := map[string]map[string]model.CharAggregate{}
	if len(sessionIDs) == 0 || len(chars) == 0 {
		return result, nil
	}
	idPlaceholders, args := inList(sessionIDs)
	charPlaceholders, charArgs := inList(chars)
	args = append(args, charArgs...)

	query := fmt.Sprintf(`SELECT session_id, char, correct, incorrect
		FROM session_char_stats
		WHERE session_id IN (%s) AND char IN (%s)`, idPlaceholders, charPlaceholders)
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	for rows.Next() {
		var sessionID string
		var agg model.CharAggregate
		if err := rows.Scan(&sessionID, &agg.Char, &agg.Correct, &agg.Incorrect); err != nil {
			return nil, err
		}
		if _, ok := result[sessionID]; !ok {
			result[sessionID] = map[string]model.CharAggregate{}
		}
		result[sessionID][agg.Char] = agg
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// ListAttempts returns the attempts of one session in answer order.
func (s *Store) ListAttempts(ctx context.Context, sessionID string) ([]model.Attempt, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT target, input, at FROM attempts WHERE session_id = ? ORDER BY seq`, sessionID)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var out []model.Attempt
	for rows.Next() {
		var a model.Attempt
		var at string
		if err := rows.Scan(&a.Target, &a.Input, &at); err != nil {
			return nil, err
		}
		if parsed, err := time.Parse(time.RFC3339Nano, at); err == nil {
			a.At = parsed.Local()
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func inList(values []string) (string, []any) {
	placeholders := make([]string, len(values))
	args := make([]any, len(values))
	for i, v := range values {
		placeholders[i] = "?"
		args[i] = v
	}
	return strings.Join(placeholders, ","), args
}

func scanAggregates(rows *sql.Rows) ([]model.CharAggregate, error) {
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()
	var result []model.CharAggregate
	for rows.Next() {
		var agg model.CharAggregate
		if err := rows.Scan(&agg.Char, &agg.Correct, &agg.Incorrect); err != nil {
			return nil, err
		}
		result = append(result, agg)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
