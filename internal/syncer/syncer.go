// Package syncer drives the ingestion pipeline: it streams catalog pages
// from the registry client through the normalizer into per-page store
// transactions. Full loads and incremental syncs are the same loop with a
// different watermark.
package syncer

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/mesh-intelligence/trialmirror/internal/normalize"
	"github.com/mesh-intelligence/trialmirror/internal/registry"
	"github.com/mesh-intelligence/trialmirror/internal/sqlite"
	"github.com/mesh-intelligence/trialmirror/pkg/types"
)

// Syncer composes the registry client and the trial store.
type Syncer struct {
	client *registry.Client
	store  *sqlite.Store
	log    *slog.Logger
}

// New creates a Syncer. A nil logger discards progress output.
func New(client *registry.Client, store *sqlite.Store, log *slog.Logger) *Syncer {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Syncer{client: client, store: store, log: log}
}

// Result summarizes one completed run.
type Result struct {
	Processed int           // records upserted
	Skipped   int           // records dropped for lacking an identifier
	Total     int           // corpus size as reported by the upstream, 0 when unknown
	Elapsed   time.Duration
}

// FullLoad fetches the entire corpus and streams it into the store one
// page transaction at a time. Memory stays bounded to a single page.
func (s *Syncer) FullLoad(ctx context.Context) (Result, error) {
	return s.run(ctx, types.RunKindFull, "")
}

// SyncSince fetches only records whose last update date is on or after
// the watermark (ISO date, inclusive) and upserts them.
func (s *Syncer) SyncSince(ctx context.Context, since string) (Result, error) {
	if since == "" {
		return Result{}, fmt.Errorf("sync requires a watermark date")
	}
	return s.run(ctx, types.RunKindIncremental, since)
}

// Yesterday returns the default incremental watermark: the UTC date one
// day before now.
func Yesterday(now time.Time) string {
	return now.UTC().AddDate(0, 0, -1).Format("2006-01-02")
}

// run is the whole pipeline: one straight-line loop, one exit condition
// (continuation cursor exhausted). Rate-limit retries live inside the
// client; any error here aborts the run, leaving prior pages committed.
func (s *Syncer) run(ctx context.Context, kind, since string) (Result, error) {
	start := time.Now()
	runID := uuid.Must(uuid.NewV7()).String()

	record := types.SyncRun{
		RunID:     runID,
		Kind:      kind,
		Since:     since,
		StartedAt: start,
	}
	if err := s.store.BeginRun(record); err != nil {
		return Result{}, err
	}

	log := s.log.With("run_id", runID, "kind", kind)
	if since != "" {
		log = log.With("since", since)
	}
	log.Info("sync started")

	result, runErr := s.stream(ctx, since, log, start)

	record.Processed = result.Processed
	record.FinishedAt = time.Now()
	if runErr != nil {
		record.Status = types.RunStatusFailed
		record.Error = runErr.Error()
	} else {
		record.Status = types.RunStatusSucceeded
	}
	runsFinished.WithLabelValues(kind, record.Status).Inc()
	if err := s.store.FinishRun(record); err != nil {
		if runErr == nil {
			runErr = err
		} else {
			log.Error("recording run outcome failed", "error", err)
		}
	}

	if runErr != nil {
		log.Error("sync failed", "processed", result.Processed, "error", runErr)
		return result, runErr
	}
	log.Info("sync finished",
		"processed", result.Processed,
		"skipped", result.Skipped,
		"elapsed", result.Elapsed.Round(time.Millisecond))
	return result, nil
}

// stream consumes the pager page by page, normalizing each batch and
// committing it in a single store transaction.
func (s *Syncer) stream(ctx context.Context, since string, log *slog.Logger, start time.Time) (Result, error) {
	var result Result

	pager := s.client.Fetch(ctx, since)
	for pager.Next() {
		page := pager.Page()
		if page.TotalCount > 0 {
			result.Total = page.TotalCount
		}

		trials := make([]types.Trial, 0, len(page.Studies))
		for _, raw := range page.Studies {
			trial := normalize.Normalize(raw)
			if trial.NCTID == "" {
				// Unidentifiable records cannot be keyed; dropping one
				// must not abort the page.
				result.Skipped++
				log.Warn("skipping record without identifier")
				continue
			}
			trials = append(trials, trial)
		}

		if err := s.store.UpsertMany(trials); err != nil {
			result.Elapsed = time.Since(start)
			return result, fmt.Errorf("upserting page: %w", err)
		}
		result.Processed += len(trials)
		trialsUpserted.Add(float64(len(trials)))

		log.Info("page committed",
			"processed", result.Processed,
			"total", result.Total,
			"elapsed", time.Since(start).Round(time.Second))
	}
	result.Elapsed = time.Since(start)

	if err := pager.Err(); err != nil {
		return result, fmt.Errorf("fetching catalog pages: %w", err)
	}
	return result, nil
}
