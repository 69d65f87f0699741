// Package sqlite persists apply runs to a local SQLite database so the
// history command can show what past reconciliations did.
package sqlite

import (
	"context"
	"database/sql"
	"embed"
	stderrors "errors"
	"os"
	"path/filepath"
	"time"

	"github.com/golang-migrate/migrate/v4"
	migratesqlite "github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	jsoniter "github.com/json-iterator/go"

	// SQLite driver
	_ "modernc.org/sqlite"

	"github.com/olusolaa/anypoint-reconciler/internal/core/domain"
	"github.com/olusolaa/anypoint-reconciler/internal/core/ports"
	"github.com/olusolaa/anypoint-reconciler/internal/errors"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

const defaultListLimit = 20

// DefaultPath returns ~/.anypoint-reconciler/journal.db.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", errors.Wrap(err, errors.CodeJournalError, "resolving the home directory for the journal")
	}
	return filepath.Join(home, ".anypoint-reconciler", "journal.db"), nil
}

type Store struct {
	db     *sql.DB
	path   string
	logger ports.Logger
	json   jsoniter.API
}

var _ ports.Journal = (*Store)(nil)

// Open opens (creating if needed) the journal database at path and
// brings its schema up to date.
func Open(ctx context.Context, path string, logger ports.Logger) (*Store, error) {
	if path == "" {
		return nil, errors.New(errors.CodeJournalError, "journal path is empty")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, errors.Wrapf(err, errors.CodeJournalError, "creating journal directory for %s", path)
	}

	dsn := path + "?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, errors.Wrapf(err, errors.CodeJournalError, "opening journal database %s", path)
	}

	// SQLite allows a single writer. One connection serializes the
	// engine's concurrent RecordResult calls.
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, errors.Wrapf(err, errors.CodeJournalError, "pinging journal database %s", path)
	}

	s := &Store{
		db:     db,
		path:   path,
		logger: logger,
		json:   jsoniter.ConfigCompatibleWithStandardLibrary,
	}
	if err := s.migrate(); err != nil {
		_ = db.Close()
		return nil, err
	}
	logger.Debugf(ctx, "Journal ready at %s", path)
	return s, nil
}

func (s *Store) migrate() error {
	sourceDriver, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return errors.Wrap(err, errors.CodeJournalError, "loading embedded journal migrations")
	}
	driver, err := migratesqlite.WithInstance(s.db, &migratesqlite.Config{})
	if err != nil {
		return errors.Wrap(err, errors.CodeJournalError, "preparing journal migration driver")
	}
	m, err := migrate.NewWithInstance("iofs", sourceDriver, "sqlite", driver)
	if err != nil {
		return errors.Wrap(err, errors.CodeJournalError, "preparing journal migrations")
	}
	if err := m.Up(); err != nil && !stderrors.Is(err, migrate.ErrNoChange) {
		return errors.Wrap(err, errors.CodeJournalError, "migrating the journal schema")
	}
	return nil
}

func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *Store) StartRun(ctx context.Context, rec ports.RunRecord) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO runs (run_id, mode, manifest_path, started_at) VALUES (?, ?, ?, ?)`,
		rec.RunID, string(rec.Mode), rec.ManifestPath, formatTime(rec.StartedAt))
	if err != nil {
		return errors.Wrapf(err, errors.CodeJournalError, "recording run %s", rec.RunID)
	}
	return nil
}

func (s *Store) RecordResult(ctx context.Context, rec ports.ResultRecord) error {
	actions, err := s.json.MarshalToString(rec.Actions)
	if err != nil {
		return errors.Wrapf(err, errors.CodeJournalError, "encoding actions for %s/%s", rec.Kind, rec.Name)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO results (run_id, kind, name, target, outcome, actions, changed, error)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.RunID, string(rec.Kind), rec.Name, string(rec.Target), string(rec.Outcome),
		actions, boolToInt(rec.Changed), rec.Error)
	if err != nil {
		return errors.Wrapf(err, errors.CodeJournalError, "recording result for %s/%s", rec.Kind, rec.Name)
	}
	return nil
}

func (s *Store) FinishRun(ctx context.Context, runID string, finishedAt time.Time, summary domain.RunSummary) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE runs SET finished_at = ?, total = ?, unchanged = ?, created = ?, updated = ?,
		        transitioned = ?, deleted = ?, replaced = ?, pending = ?, failed = ?
		 WHERE run_id = ?`,
		formatTime(finishedAt), summary.Total, summary.Unchanged, summary.Created, summary.Updated,
		summary.Transitioned, summary.Deleted, summary.Replaced, summary.Pending, summary.Failed,
		runID)
	if err != nil {
		return errors.Wrapf(err, errors.CodeJournalError, "finishing run %s", runID)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return errors.Wrapf(err, errors.CodeJournalError, "finishing run %s", runID)
	}
	if rows == 0 {
		return errors.Newf(errors.CodeJournalError, "run %s was never started", runID)
	}
	return nil
}

const runColumns = `run_id, mode, manifest_path, started_at, finished_at,
       total, unchanged, created, updated, transitioned, deleted, replaced, pending, failed`

func (s *Store) ListRuns(ctx context.Context, limit int) ([]ports.RunRecord, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+runColumns+` FROM runs ORDER BY started_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeJournalError, "listing journal runs")
	}
	defer rows.Close()

	var runs []ports.RunRecord
	for rows.Next() {
		rec, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, errors.CodeJournalError, "iterating journal runs")
	}
	return runs, nil
}

func (s *Store) GetRun(ctx context.Context, runID string) (ports.RunRecord, []ports.ResultRecord, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+runColumns+` FROM runs WHERE run_id = ?`, runID)
	rec, err := scanRun(row)
	if err != nil {
		if stderrors.Is(err, sql.ErrNoRows) {
			return ports.RunRecord{}, nil, errors.NewUserFacing(errors.CodeJournalError,
				"run '"+runID+"' was not found in the journal",
				"Run 'anypoint-reconciler history' to list recorded runs.")
		}
		return ports.RunRecord{}, nil, err
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT kind, name, target, outcome, actions, changed, error
		 FROM results WHERE run_id = ? ORDER BY id ASC`, runID)
	if err != nil {
		return ports.RunRecord{}, nil, errors.Wrapf(err, errors.CodeJournalError, "loading results for run %s", runID)
	}
	defer rows.Close()

	var results []ports.ResultRecord
	for rows.Next() {
		var (
			res          ports.ResultRecord
			kind, target string
			outcome      string
			actions      string
			changed      int
		)
		if err := rows.Scan(&kind, &res.Name, &target, &outcome, &actions, &changed, &res.Error); err != nil {
			return ports.RunRecord{}, nil, errors.Wrapf(err, errors.CodeJournalError, "scanning result for run %s", runID)
		}
		res.RunID = runID
		res.Kind = domain.ResourceKind(kind)
		res.Target = domain.LifecycleState(target)
		res.Outcome = domain.ResourceOutcome(outcome)
		res.Changed = changed != 0
		if err := s.json.UnmarshalFromString(actions, &res.Actions); err != nil {
			return ports.RunRecord{}, nil, errors.Wrapf(err, errors.CodeJournalError, "decoding actions for run %s", runID)
		}
		results = append(results, res)
	}
	if err := rows.Err(); err != nil {
		return ports.RunRecord{}, nil, errors.Wrapf(err, errors.CodeJournalError, "iterating results for run %s", runID)
	}
	return rec, results, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (ports.RunRecord, error) {
	var (
		rec                 ports.RunRecord
		mode                string
		startedAt, finished string
	)
	err := row.Scan(&rec.RunID, &mode, &rec.ManifestPath, &startedAt, &finished,
		&rec.Summary.Total, &rec.Summary.Unchanged, &rec.Summary.Created, &rec.Summary.Updated,
		&rec.Summary.Transitioned, &rec.Summary.Deleted, &rec.Summary.Replaced,
		&rec.Summary.Pending, &rec.Summary.Failed)
	if err != nil {
		if stderrors.Is(err, sql.ErrNoRows) {
			return ports.RunRecord{}, err
		}
		return ports.RunRecord{}, errors.Wrap(err, errors.CodeJournalError, "scanning journal run")
	}
	rec.Mode = domain.RunMode(mode)
	if rec.StartedAt, err = parseTime(startedAt); err != nil {
		return ports.RunRecord{}, err
	}
	if rec.FinishedAt, err = parseTime(finished); err != nil {
		return ports.RunRecord{}, err
	}
	return rec, nil
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, errors.Wrapf(err, errors.CodeJournalError, "parsing journal timestamp %q", s)
	}
	return t, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
