package sqlite

import (
	"fmt"
	"time"

	"github.com/mesh-intelligence/trialmirror/pkg/types"
)

// BeginRun records a sync run in the running state. The orchestrator
// calls this at run start and FinishRun once the run settles.
func (s *Store) BeginRun(run types.SyncRun) error {
	db, err := s.conn()
	if err != nil {
		return err
	}
	_, err = db.Exec(
		`INSERT INTO sync_runs (run_id, kind, since, processed, status, error, started_at, finished_at)
         VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		run.RunID, run.Kind, run.Since, run.Processed, types.RunStatusRunning, "",
		run.StartedAt.UTC().Format(time.RFC3339), "",
	)
	if err != nil {
		return fmt.Errorf("recording sync run %s: %w", run.RunID, err)
	}
	return nil
}

// FinishRun marks a sync run as succeeded or failed and records its final
// processed count.
func (s *Store) FinishRun(run types.SyncRun) error {
	db, err := s.conn()
	if err != nil {
		return err
	}
	_, err = db.Exec(
		`UPDATE sync_runs SET processed = ?, status = ?, error = ?, finished_at = ? WHERE run_id = ?`,
		run.Processed, run.Status, run.Error,
		run.FinishedAt.UTC().Format(time.RFC3339), run.RunID,
	)
	if err != nil {
		return fmt.Errorf("finishing sync run %s: %w", run.RunID, err)
	}
	return nil
}

// RecentRuns returns up to limit sync runs, newest first.
func (s *Store) RecentRuns(limit int) ([]types.SyncRun, error) {
	db, err := s.conn()
	if err != nil {
		return nil, err
	}
	rows, err := db.Query(
		`SELECT run_id, kind, since, processed, status, error, started_at, finished_at
         FROM sync_runs ORDER BY started_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying sync runs: %w", err)
	}
	defer rows.Close()

	runs := []types.SyncRun{}
	for rows.Next() {
		var run types.SyncRun
		var startedAt, finishedAt string
		err := rows.Scan(&run.RunID, &run.Kind, &run.Since, &run.Processed,
			&run.Status, &run.Error, &startedAt, &finishedAt)
		if err != nil {
			return nil, fmt.Errorf("scanning sync run: %w", err)
		}
		if startedAt != "" {
			if run.StartedAt, err = time.Parse(time.RFC3339, startedAt); err != nil {
				return nil, fmt.Errorf("parsing started_at: %w", err)
			}
		}
		if finishedAt != "" {
			if run.FinishedAt, err = time.Parse(time.RFC3339, finishedAt); err != nil {
				return nil, fmt.Errorf("parsing finished_at: %w", err)
			}
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating sync runs: %w", err)
	}
	return runs, nil
}
