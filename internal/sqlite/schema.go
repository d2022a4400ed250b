package sqlite

// Schema DDL. All statements are idempotent so Attach can run them on
// every process start.
const (
	createTrials = `CREATE TABLE IF NOT EXISTS trials (
    nct_id          TEXT PRIMARY KEY CHECK (nct_id <> ''),
    brief_title     TEXT NOT NULL,
    official_title  TEXT NOT NULL,
    status          TEXT NOT NULL,
    study_type      TEXT NOT NULL,
    phases          TEXT NOT NULL,
    start_date      TEXT NOT NULL,
    completion_date TEXT NOT NULL,
    last_updated    TEXT NOT NULL,
    sponsor         TEXT NOT NULL,
    sponsor_class   TEXT NOT NULL,
    conditions      TEXT NOT NULL,
    interventions   TEXT NOT NULL,
    mesh_terms      TEXT NOT NULL,
    drug_mesh_terms TEXT NOT NULL,
    countries       TEXT NOT NULL,
    enrollment      INTEGER NOT NULL,
    sex             TEXT NOT NULL,
    min_age         TEXT NOT NULL,
    max_age         TEXT NOT NULL,
    has_results     INTEGER NOT NULL,
    source_url      TEXT NOT NULL
);`

	// last_updated is the sole filter predicate for incremental reads.
	createLastUpdatedIndex = `CREATE INDEX IF NOT EXISTS idx_trials_last_updated
    ON trials (last_updated);`

	createSyncRuns = `CREATE TABLE IF NOT EXISTS sync_runs (
    run_id      TEXT PRIMARY KEY,
    kind        TEXT NOT NULL,
    since       TEXT NOT NULL,
    processed   INTEGER NOT NULL,
    status      TEXT NOT NULL,
    error       TEXT NOT NULL,
    started_at  TEXT NOT NULL,
    finished_at TEXT NOT NULL
);`
)

// schemaStatements is applied in order by Attach.
var schemaStatements = []string{
	createTrials,
	createLastUpdatedIndex,
	createSyncRuns,
}
