package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/cockroachdb/errors"

	"github.com/rpl/application-services/internal/engine"
	"github.com/rpl/application-services/internal/model"
)

// ErrNoRun is returned when no run matches a query.
var ErrNoRun = errors.New("no recorded run")

// Run is one recorded generation.
type Run struct {
	ID               string             `json:"id"`
	Seq              int64              `json:"seq"`
	Component        string             `json:"component"`
	Backend          string             `json:"backend"`
	Fingerprint      string             `json:"fingerprint"`
	GeneratorVersion string             `json:"generator_version"`
	OutputPath       string             `json:"output_path,omitempty"`
	CreatedAt        time.Time          `json:"created_at"`
	Symbols          []engine.Signature `json:"symbols,omitempty"`
}

// RecordRun stores a successful generation and its symbols in one
// transaction and returns the stored run.
func (s *Store) RecordRun(ctx context.Context, res *engine.Result, outputPath string) (Run, error) {
	if res == nil || res.Symbols == nil {
		return Run{}, errors.New("record run: result has no symbol table")
	}
	run := Run{
		ID:               s.newID(),
		Component:        res.Component,
		Backend:          res.Backend,
		Fingerprint:      res.Fingerprint,
		GeneratorVersion: model.GeneratorVersion,
		OutputPath:       outputPath,
		CreatedAt:        s.now().UTC(),
		Symbols:          res.Symbols.Signatures,
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return Run{}, errors.Wrap(err, "record run: begin")
	}
	defer tx.Rollback()

	if err := tx.QueryRowContext(ctx, `SELECT COALESCE(MAX(seq), 0) + 1 FROM runs`).Scan(&run.Seq); err != nil {
		return Run{}, errors.Wrap(err, "record run: next seq")
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO runs
		(id, seq, component, backend, fingerprint, generator_version, output_path, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`,
		run.ID,
		run.Seq,
		run.Component,
		run.Backend,
		run.Fingerprint,
		run.GeneratorVersion,
		run.OutputPath,
		run.CreatedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return Run{}, errors.Wrap(err, "record run: insert run")
	}

	for i, sig := range run.Symbols {
		detail, err := marshalSignature(sig)
		if err != nil {
			return Run{}, err
		}
		_, err = tx.ExecContext(ctx, `
			INSERT INTO symbols (run_id, ordinal, symbol, kind, signature, detail)
			VALUES (?, ?, ?, ?, ?, ?)
		`, run.ID, i, sig.Symbol, string(sig.Kind), sig.String(), detail)
		if err != nil {
			return Run{}, errors.Wrapf(err, "record run: insert symbol %s", sig.Symbol)
		}
	}

	if err := tx.Commit(); err != nil {
		return Run{}, errors.Wrap(err, "record run: commit")
	}
	return run, nil
}

// LatestRun returns the most recent run of component for backend, with
// its symbols.
func (s *Store) LatestRun(ctx context.Context, component, backend string) (Run, error) {
	return s.runBefore(ctx, component, backend, -1)
}

// PreviousRun returns the run of the same component and backend that
// precedes run.
func (s *Store) PreviousRun(ctx context.Context, run Run) (Run, error) {
	return s.runBefore(ctx, run.Component, run.Backend, run.Seq)
}

// runBefore returns the latest run with seq < before; a negative before
// means no bound.
func (s *Store) runBefore(ctx context.Context, component, backend string, before int64) (Run, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, seq, component, backend, fingerprint, generator_version, output_path, created_at
		FROM runs
		WHERE component = ? AND backend = ? AND (? < 0 OR seq < ?)
		ORDER BY seq DESC
		LIMIT 1
	`, component, backend, before, before)

	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, errors.Wrapf(ErrNoRun, "%s/%s", component, backend)
	}
	if err != nil {
		return Run{}, err
	}
	if run.Symbols, err = s.RunSymbols(ctx, run.ID); err != nil {
		return Run{}, err
	}
	return run, nil
}

// ListRuns returns runs newest first, without symbols. An empty component
// lists every component; limit <= 0 means no limit.
func (s *Store) ListRuns(ctx context.Context, component string, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, seq, component, backend, fingerprint, generator_version, output_path, created_at
		FROM runs
		WHERE ? = '' OR component = ?
		ORDER BY seq DESC
		LIMIT ?
	`, component, component, limit)
	if err != nil {
		return nil, errors.Wrap(err, "query runs")
	}
	defer rows.Close()

	runs := []Run{}
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "iterate runs")
	}
	return runs, nil
}

// RunSymbols returns the symbols of a run in emission order.
func (s *Store) RunSymbols(ctx context.Context, runID string) ([]engine.Signature, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT detail FROM symbols WHERE run_id = ? ORDER BY ordinal ASC
	`, runID)
	if err != nil {
		return nil, errors.Wrap(err, "query symbols")
	}
	defer rows.Close()

	sigs := []engine.Signature{}
	for rows.Next() {
		var detail string
		if err := rows.Scan(&detail); err != nil {
			return nil, errors.Wrap(err, "scan symbol")
		}
		sig, err := unmarshalSignature(detail)
		if err != nil {
			return nil, err
		}
		sigs = append(sigs, sig)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "iterate symbols")
	}
	return sigs, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (Run, error) {
	var (
		run     Run
		created string
	)
	err := row.Scan(&run.ID, &run.Seq, &run.Component, &run.Backend, &run.Fingerprint,
		&run.GeneratorVersion, &run.OutputPath, &created)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Run{}, err
		}
		return Run{}, errors.Wrap(err, "scan run")
	}
	if run.CreatedAt, err = time.Parse(time.RFC3339Nano, created); err != nil {
		return Run{}, errors.Wrapf(err, "parse created_at of run %s", run.ID)
	}
	return run, nil
}
