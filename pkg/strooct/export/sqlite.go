package export

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	// SQLite driver (pure Go, no CGO required)
	_ "modernc.org/sqlite"

	"github.com/strooct/strooct/pkg/strooct/scan"
)

// Store is a SQLite database of token exports. Every Export call is one
// run identified by a UUID.
type Store struct {
	db   *sql.DB
	path string
}

// Run describes one export.
type Run struct {
	ID        string
	StartedAt time.Time
	Files     int
	Tokens    int
}

// OpenSQLite opens or creates the store at path. ":memory:" keeps the
// database in memory.
func OpenSQLite(path string) (*Store, error) {
	dsn := path
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, fmt.Errorf("creating database directory: %w", err)
		}
		dsn = path + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening token database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("connecting to token database: %w", err)
	}

	// One connection keeps :memory: databases alive across calls.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	s := &Store{db: db, path: path}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating token schema: %w", err)
	}
	return s, nil
}

func (s *Store) createSchema() error {
	schema := `
		CREATE TABLE IF NOT EXISTS runs (
			id TEXT PRIMARY KEY,
			started_at DATETIME NOT NULL,
			files INTEGER NOT NULL DEFAULT 0,
			tokens INTEGER NOT NULL DEFAULT 0
		);

		CREATE TABLE IF NOT EXISTS files (
			run_id TEXT NOT NULL REFERENCES runs(id),
			path TEXT NOT NULL,
			bytes INTEGER NOT NULL,
			lines INTEGER NOT NULL,
			tokens INTEGER NOT NULL,
			illegal INTEGER NOT NULL,
			PRIMARY KEY (run_id, path)
		);

		CREATE TABLE IF NOT EXISTS tokens (
			run_id TEXT NOT NULL REFERENCES runs(id),
			file TEXT NOT NULL,
			"offset" INTEGER NOT NULL,
			line INTEGER NOT NULL,
			col INTEGER NOT NULL,
			kind TEXT NOT NULL,
			lexeme TEXT NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_tokens_run_file ON tokens(run_id, file);
		CREATE INDEX IF NOT EXISTS idx_tokens_kind ON tokens(kind);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Path returns the database location.
func (s *Store) Path() string { return s.path }

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Export writes results as a new run inside one transaction and returns
// the run ID. Unreadable files are skipped.
func (s *Store) Export(ctx context.Context, results []*scan.Result) (string, error) {
	runID := uuid.NewString()
	total := scan.Total(results)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("starting export: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO runs (id, started_at, files, tokens) VALUES (?, ?, ?, ?)`,
		runID, time.Now().UTC().Format(time.RFC3339), total.Files, total.Tokens,
	); err != nil {
		return "", fmt.Errorf("recording run: %w", err)
	}

	fileStmt, err := tx.PrepareContext(ctx,
		`INSERT OR REPLACE INTO files (run_id, path, bytes, lines, tokens, illegal) VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return "", err
	}
	defer fileStmt.Close()

	tokStmt, err := tx.PrepareContext(ctx,
		`INSERT INTO tokens (run_id, file, "offset", line, col, kind, lexeme) VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return "", err
	}
	defer tokStmt.Close()

	for _, r := range results {
		if r.Err != nil {
			continue
		}
		if _, err := fileStmt.ExecContext(ctx, runID, r.File, r.Stats.Bytes, r.Stats.Lines, r.Stats.Tokens, r.HasIllegal()); err != nil {
			return "", fmt.Errorf("recording file %s: %w", r.File, err)
		}
		for _, tok := range r.Tokens {
			if _, err := tokStmt.ExecContext(ctx, runID, r.File, tok.Offset, tok.Line, tok.Column, tok.Kind.String(), tok.Literal()); err != nil {
				return "", fmt.Errorf("recording token at %s: %w", tok.Pos(), err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("committing export: %w", err)
	}
	return runID, nil
}

// Runs lists the recorded runs, newest first.
func (s *Store) Runs(ctx context.Context) ([]Run, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, started_at, files, tokens FROM runs ORDER BY started_at DESC, rowid DESC`)
	if err != nil {
		return nil, fmt.Errorf("querying runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var r Run
		var ts string
		if err := rows.Scan(&r.ID, &ts, &r.Files, &r.Tokens); err != nil {
			return nil, fmt.Errorf("scanning run: %w", err)
		}
		r.StartedAt, _ = time.Parse(time.RFC3339, ts)
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// KindCounts returns how many tokens of each kind a run recorded.
func (s *Store) KindCounts(ctx context.Context, runID string) (map[string]int, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT kind, COUNT(*) FROM tokens WHERE run_id = ? GROUP BY kind`, runID)
	if err != nil {
		return nil, fmt.Errorf("querying kinds: %w", err)
	}
	defer rows.Close()

	counts := map[string]int{}
	for rows.Next() {
		var kind string
		var n int
		if err := rows.Scan(&kind, &n); err != nil {
			return nil, fmt.Errorf("scanning kind count: %w", err)
		}
		counts[kind] = n
	}
	return counts, rows.Err()
}
