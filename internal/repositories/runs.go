package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/desertthunder/invsync/internal/models"
	"github.com/desertthunder/invsync/internal/shared"
)

const runColumns = `id, sequence, mode, started_at, finished_at, committed,
	added_history, removed_history, added_subscriptions, removed_subscriptions,
	added_playlists, removed_playlists, error_count, created_at, updated_at, deleted_at`

// RunRepository implements models.Repository[*models.SyncRun] for the run journal.
//
// Operation errors of a run are stored alongside in sync_run_errors.
type RunRepository struct {
	db *sql.DB
}

// NewRunRepository creates a new RunRepository with the given database connection
func NewRunRepository(db *sql.DB) *RunRepository {
	return &RunRepository{db: db}
}

// Create inserts a run with the next sequence. A run without an id gets a generated one.
func (r *RunRepository) Create(run *models.SyncRun) error {
	return withTx(r.db, func(tx *sql.Tx) error {
		return insertRun(tx, run)
	})
}

// Record journals a finished run together with its operation errors. Either both land or neither.
func (r *RunRepository) Record(result *models.RunResult) (*models.SyncRun, error) {
	run := models.SyncRunFromResult(result)
	err := withTx(r.db, func(tx *sql.Tx) error {
		if err := insertRun(tx, run); err != nil {
			return err
		}
		return insertErrors(tx, models.ErrorRecords(result))
	})
	if err != nil {
		return nil, err
	}
	return run, nil
}

func insertRun(tx *sql.Tx, run *models.SyncRun) error {
	sequence, err := nextSequence(tx, "sync_runs")
	if err != nil {
		return fmt.Errorf("failed to generate sequence: %w", err)
	}
	run.SetSequence(sequence)

	if run.ID() == "" {
		run.SetID(shared.GenerateID())
	}

	if err := run.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	query := `
		INSERT INTO sync_runs (` + runColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, NULL)
	`

	c := run.Counts()
	_, err = tx.Exec(query,
		run.ID(),
		run.Sequence(),
		string(run.Mode()),
		run.StartedAt(),
		nullTime(run.FinishedAt()),
		run.Committed(),
		c.AddedHistory,
		c.RemovedHistory,
		c.AddedSubscriptions,
		c.RemovedSubscriptions,
		c.AddedPlaylists,
		c.RemovedPlaylists,
		run.ErrorCount(),
		run.CreatedAt(),
		run.UpdatedAt(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert run: %w", err)
	}

	return nil
}

// Get retrieves a run by ID, excluding soft-deleted runs
func (r *RunRepository) Get(id string) (*models.SyncRun, error) {
	query := `SELECT ` + runColumns + ` FROM sync_runs WHERE id = ? AND deleted_at IS NULL`
	return scanRun(r.db.QueryRow(query, id))
}

// GetBySequence retrieves a run by its sequence number.
func (r *RunRepository) GetBySequence(sequence int) (*models.SyncRun, error) {
	query := `SELECT ` + runColumns + ` FROM sync_runs WHERE sequence = ? AND deleted_at IS NULL`
	return scanRun(r.db.QueryRow(query, sequence))
}

// Update rewrites the outcome fields of a run.
func (r *RunRepository) Update(run *models.SyncRun) error {
	if err := run.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	now := time.Now()
	run.SetUpdatedAt(now)

	query := `
		UPDATE sync_runs
		SET finished_at = ?, committed = ?, added_history = ?, removed_history = ?,
			added_subscriptions = ?, removed_subscriptions = ?, added_playlists = ?,
			removed_playlists = ?, error_count = ?, updated_at = ?
		WHERE id = ? AND deleted_at IS NULL
	`

	c := run.Counts()
	result, err := r.db.Exec(query,
		nullTime(run.FinishedAt()),
		run.Committed(),
		c.AddedHistory,
		c.RemovedHistory,
		c.AddedSubscriptions,
		c.RemovedSubscriptions,
		c.AddedPlaylists,
		c.RemovedPlaylists,
		run.ErrorCount(),
		now,
		run.ID(),
	)
	if err != nil {
		return fmt.Errorf("failed to update run: %w", err)
	}

	return expectOneRow(result, run.ID())
}

// Delete soft-deletes a run by ID
func (r *RunRepository) Delete(id string) error {
	query := `UPDATE sync_runs SET deleted_at = ? WHERE id = ? AND deleted_at IS NULL`

	result, err := r.db.Exec(query, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to delete run: %w", err)
	}

	return expectOneRow(result, id)
}

// List retrieves runs, newest first, excluding soft-deleted runs.
//
// Supported criteria: "mode" (string), "committed" (bool) and "limit" (int).
func (r *RunRepository) List(criteria map[string]any) ([]*models.SyncRun, error) {
	query := `SELECT ` + runColumns + ` FROM sync_runs WHERE deleted_at IS NULL`
	args := []any{}

	if mode, ok := criteria["mode"].(string); ok && mode != "" {
		query += " AND mode = ?"
		args = append(args, mode)
	}

	if committed, ok := criteria["committed"].(bool); ok {
		query += " AND committed = ?"
		args = append(args, committed)
	}

	query += " ORDER BY sequence DESC"

	if limit, ok := criteria["limit"].(int); ok && limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	var runs []*models.SyncRun
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return runs, nil
}

func insertErrors(tx *sql.Tx, records []models.RunErrorRecord) error {
	if len(records) == 0 {
		return nil
	}

	stmt, err := tx.Prepare(`INSERT INTO sync_run_errors (run_id, op, target, attempts, message) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, rec := range records {
		if _, err := stmt.Exec(rec.RunID, rec.Op, rec.Target, rec.Attempts, rec.Message); err != nil {
			return fmt.Errorf("failed to insert run error: %w", err)
		}
	}
	return nil
}

// ListErrors retrieves the operation errors of a run in the order they were recorded.
func (r *RunRepository) ListErrors(runID string) ([]models.RunErrorRecord, error) {
	rows, err := r.db.Query(`
		SELECT run_id, op, COALESCE(target, ''), attempts, message
		FROM sync_run_errors
		WHERE run_id = ?
		ORDER BY id ASC
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query run errors: %w", err)
	}
	defer rows.Close()

	records := []models.RunErrorRecord{}
	for rows.Next() {
		var rec models.RunErrorRecord
		if err := rows.Scan(&rec.RunID, &rec.Op, &rec.Target, &rec.Attempts, &rec.Message); err != nil {
			return nil, fmt.Errorf("failed to scan run error: %w", err)
		}
		records = append(records, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return records, nil
}

type scanner interface {
	Scan(dest ...any) error
}

// scanRun scans a single row from either [sql.Row] or [sql.Rows] into a [models.SyncRun]
func scanRun(row scanner) (*models.SyncRun, error) {
	var (
		id         string
		sequence   int
		mode       string
		startedAt  time.Time
		finishedAt sql.NullTime
		committed  bool
		counts     models.RunCounts
		errorCount int
		createdAt  time.Time
		updatedAt  time.Time
		deletedAt  sql.NullTime
	)

	err := row.Scan(&id, &sequence, &mode, &startedAt, &finishedAt, &committed,
		&counts.AddedHistory, &counts.RemovedHistory, &counts.AddedSubscriptions, &counts.RemovedSubscriptions,
		&counts.AddedPlaylists, &counts.RemovedPlaylists, &errorCount, &createdAt, &updatedAt, &deletedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, shared.ErrRunNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan run: %w", err)
	}

	run := models.NewSyncRun(sequence, models.Mode(mode), startedAt, finishedAt.Time)
	run.SetID(id)
	run.SetCommitted(committed)
	run.SetCounts(counts)
	run.SetErrorCount(errorCount)
	run.SetCreatedAt(createdAt)
	run.SetUpdatedAt(updatedAt)
	if deletedAt.Valid {
		run.SetDeletedAt(&deletedAt.Time)
	}

	return run, nil
}

func nullTime(t time.Time) sql.NullTime {
	return sql.NullTime{Time: t, Valid: !t.IsZero()}
}

func expectOneRow(result sql.Result, id string) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%w: %s", shared.ErrRunNotFound, id)
	}
	return nil
}
