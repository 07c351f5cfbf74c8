// CLAUDE:SUMMARY SQLite ledger of transformation runs: one row per invocation with input digest, tables, counts and outcome.
package runlog

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// Status is the outcome of a run.
type Status string

const (
	StatusRunning Status = "running"
	StatusOK      Status = "ok"
	StatusFailed  Status = "failed"
)

var ErrNotFound = errors.New("run not found")

// Run is a row of the runs table.
type Run struct {
	ID           string  `json:"id"`
	Mode         string  `json:"mode"`
	Transport    string  `json:"transport"`
	Input        string  `json:"input"`
	InputDigest  string  `json:"input_digest"`
	TablesID     string  `json:"tables_id"`
	TablesDigest string  `json:"tables_digest"`
	Source       string  `json:"source,omitempty"`
	Output       string  `json:"output,omitempty"`
	Words        int     `json:"words"`
	Clusters     int     `json:"clusters"`
	Status       Status  `json:"status"`
	Error        *string `json:"error,omitempty"`
	StartedAt    int64   `json:"started_at"`
	FinishedAt   *int64  `json:"finished_at,omitempty"`
}

// Outcome is what Finish records for a run.
type Outcome struct {
	Source   string
	Output   string
	Words    int
	Clusters int
	Err      error
}

// Ledger manages the runs SQLite table.
type Ledger struct {
	db  *sql.DB
	now func() time.Time
}

// Open opens (or creates) the SQLite database at path and ensures the runs
// table exists.
func Open(path string) (*Ledger, error) {
	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(wal)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open run ledger: %w", err)
	}

	const ddl = `CREATE TABLE IF NOT EXISTS runs (
		id            TEXT PRIMARY KEY,
		mode          TEXT NOT NULL,
		transport     TEXT NOT NULL,
		input         TEXT NOT NULL,
		input_digest  TEXT NOT NULL,
		tables_id     TEXT NOT NULL,
		tables_digest TEXT NOT NULL,
		source        TEXT NOT NULL DEFAULT '',
		output        TEXT NOT NULL DEFAULT '',
		words         INTEGER NOT NULL DEFAULT 0,
		clusters      INTEGER NOT NULL DEFAULT 0,
		status        TEXT NOT NULL,
		error         TEXT,
		started_at    INTEGER NOT NULL,
		finished_at   INTEGER
	)`
	if _, err := db.Exec(ddl); err != nil {
		db.Close()
		return nil, fmt.Errorf("create runs table: %w", err)
	}
	if _, err := db.Exec(`CREATE INDEX IF NOT EXISTS runs_started ON runs (started_at)`); err != nil {
		db.Close()
		return nil, fmt.Errorf("create runs index: %w", err)
	}

	return &Ledger{db: db, now: time.Now}, nil
}

// Close closes the SQLite connection.
func (l *Ledger) Close() error {
	return l.db.Close()
}

// Start records a new running run and returns its id.
func (l *Ledger) Start(r Run) (string, error) {
	id := uuid.NewString()
	const q = `INSERT INTO runs
		(id, mode, transport, input, input_digest, tables_id, tables_digest, status, started_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`
	if _, err := l.db.Exec(q, id, r.Mode, r.Transport, r.Input, r.InputDigest,
		r.TablesID, r.TablesDigest, StatusRunning, l.now().UnixMilli()); err != nil {
		return "", fmt.Errorf("start run: %w", err)
	}
	return id, nil
}

// Finish stores the outcome of run id.
func (l *Ledger) Finish(id string, o Outcome) error {
	status := StatusOK
	var errPtr *string
	if o.Err != nil {
		status = StatusFailed
		msg := o.Err.Error()
		errPtr = &msg
	}
	res, err := l.db.Exec(
		`UPDATE runs SET source = ?, output = ?, words = ?, clusters = ?, status = ?, error = ?, finished_at = ?
		WHERE id = ?`,
		o.Source, o.Output, o.Words, o.Clusters, status, errPtr, l.now().UnixMilli(), id,
	)
	if err != nil {
		return fmt.Errorf("finish run %s: %w", id, err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return fmt.Errorf("finish run %s: %w", id, ErrNotFound)
	}
	return nil
}

const columns = `id, mode, transport, input, input_digest, tables_id, tables_digest,
	source, output, words, clusters, status, error, started_at, finished_at`

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(s scanner) (Run, error) {
	var r Run
	err := s.Scan(&r.ID, &r.Mode, &r.Transport, &r.Input, &r.InputDigest, &r.TablesID, &r.TablesDigest,
		&r.Source, &r.Output, &r.Words, &r.Clusters, &r.Status, &r.Error, &r.StartedAt, &r.FinishedAt)
	return r, err
}

// Get returns run id.
func (l *Ledger) Get(id string) (*Run, error) {
	r, err := scanRun(l.db.QueryRow(`SELECT `+columns+` FROM runs WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("run %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get run %s: %w", id, err)
	}
	return &r, nil
}

// List returns the most recent runs first. limit <= 0 returns every run.
func (l *Ledger) List(limit int) ([]Run, error) {
	q := `SELECT ` + columns + ` FROM runs ORDER BY started_at DESC, rowid DESC`
	args := []any{}
	if limit > 0 {
		q += ` LIMIT ?`
		args = append(args, limit)
	}
	rows, err := l.db.Query(q, args...)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// Counts returns the number of runs per status.
func (l *Ledger) Counts() (map[Status]int, error) {
	rows, err := l.db.Query(`SELECT status, COUNT(*) FROM runs GROUP BY status`)
	if err != nil {
		return nil, fmt.Errorf("count runs: %w", err)
	}
	defer rows.Close()

	out := make(map[Status]int)
	for rows.Next() {
		var s Status
		var n int
		if err := rows.Scan(&s, &n); err != nil {
			return nil, fmt.Errorf("scan count: %w", err)
		}
		out[s] = n
	}
	return out, rows.Err()
}
