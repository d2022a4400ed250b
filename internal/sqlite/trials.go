package sqlite

import (
	"database/sql"
	"fmt"

	"github.com/mesh-intelligence/trialmirror/pkg/types"
)

// upsertTrialSQL is the single statement used for both Upsert and
// UpsertMany: insert, or on identifier conflict overwrite every non-key
// column. Last write wins.
const upsertTrialSQL = `INSERT INTO trials (
    nct_id, brief_title, official_title, status, study_type, phases,
    start_date, completion_date, last_updated, sponsor, sponsor_class,
    conditions, interventions, mesh_terms, drug_mesh_terms, countries,
    enrollment, sex, min_age, max_age, has_results, source_url
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(nct_id) DO UPDATE SET
    brief_title     = excluded.brief_title,
    official_title  = excluded.official_title,
    status          = excluded.status,
    study_type      = excluded.study_type,
    phases          = excluded.phases,
    start_date      = excluded.start_date,
    completion_date = excluded.completion_date,
    last_updated    = excluded.last_updated,
    sponsor         = excluded.sponsor,
    sponsor_class   = excluded.sponsor_class,
    conditions      = excluded.conditions,
    interventions   = excluded.interventions,
    mesh_terms      = excluded.mesh_terms,
    drug_mesh_terms = excluded.drug_mesh_terms,
    countries       = excluded.countries,
    enrollment      = excluded.enrollment,
    sex             = excluded.sex,
    min_age         = excluded.min_age,
    max_age         = excluded.max_age,
    has_results     = excluded.has_results,
    source_url      = excluded.source_url;`

const selectTrialColumns = `SELECT
    nct_id, brief_title, official_title, status, study_type, phases,
    start_date, completion_date, last_updated, sponsor, sponsor_class,
    conditions, interventions, mesh_terms, drug_mesh_terms, countries,
    enrollment, sex, min_age, max_age, has_results, source_url
FROM trials`

// Upsert inserts a trial or overwrites all non-key fields if the
// identifier already exists.
func (s *Store) Upsert(trial types.Trial) error {
	db, err := s.conn()
	if err != nil {
		return err
	}
	args, err := trialArgs(trial)
	if err != nil {
		return err
	}
	if _, err := db.Exec(upsertTrialSQL, args...); err != nil {
		return fmt.Errorf("upserting trial %s: %w", trial.NCTID, err)
	}
	return nil
}

// UpsertMany upserts a batch of trials in a single transaction. The batch
// is all-or-nothing: any failure rolls back every row and the error is
// returned to the caller. Previously committed batches are unaffected.
func (s *Store) UpsertMany(trials []types.Trial) error {
	if len(trials) == 0 {
		return nil
	}
	db, err := s.conn()
	if err != nil {
		return err
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(upsertTrialSQL)
	if err != nil {
		return fmt.Errorf("preparing upsert: %w", err)
	}
	defer stmt.Close()

	for _, trial := range trials {
		args, err := trialArgs(trial)
		if err != nil {
			return err
		}
		if _, err := stmt.Exec(args...); err != nil {
			return fmt.Errorf("upserting trial %q: %w", trial.NCTID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing batch: %w", err)
	}
	return nil
}

// GetSince returns all trials whose last_updated date is on or after the
// given ISO date string (lexicographic comparison), ordered by identifier.
func (s *Store) GetSince(date string) ([]types.Trial, error) {
	db, err := s.conn()
	if err != nil {
		return nil, err
	}

	rows, err := db.Query(selectTrialColumns+" WHERE last_updated >= ? ORDER BY nct_id", date)
	if err != nil {
		return nil, fmt.Errorf("querying trials since %s: %w", date, err)
	}
	defer rows.Close()

	trials := []types.Trial{}
	for rows.Next() {
		trial, err := hydrateTrial(rows)
		if err != nil {
			return nil, fmt.Errorf("hydrating trial row: %w", err)
		}
		trials = append(trials, trial)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating trial rows: %w", err)
	}
	return trials, nil
}

// Get retrieves one trial by identifier, or sql.ErrNoRows if absent.
func (s *Store) Get(nctID string) (types.Trial, error) {
	db, err := s.conn()
	if err != nil {
		return types.Trial{}, err
	}
	row := db.QueryRow(selectTrialColumns+" WHERE nct_id = ?", nctID)
	trial, err := hydrateTrial(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return types.Trial{}, err
		}
		return types.Trial{}, fmt.Errorf("getting trial %s: %w", nctID, err)
	}
	return trial, nil
}

// trialArgs dehydrates a trial into the positional arguments of
// upsertTrialSQL. Multi-valued fields become JSON text; nil slices are
// encoded as empty JSON arrays so storage round-trips them losslessly.
func trialArgs(trial types.Trial) ([]any, error) {
	if err := trial.Validate(); err != nil {
		return nil, err
	}

	phases, err := encodeList(trial.Phases)
	if err != nil {
		return nil, err
	}
	conditions, err := encodeList(trial.Conditions)
	if err != nil {
		return nil, err
	}
	interventions, err := encodeList(trial.Interventions)
	if err != nil {
		return nil, err
	}
	meshTerms, err := encodeList(trial.MeshTerms)
	if err != nil {
		return nil, err
	}
	drugMeshTerms, err := encodeList(trial.DrugMeshTerms)
	if err != nil {
		return nil, err
	}
	countries, err := encodeList(trial.Countries)
	if err != nil {
		return nil, err
	}

	hasResults := 0
	if trial.HasResults {
		hasResults = 1
	}

	return []any{
		trial.NCTID, trial.BriefTitle, trial.OfficialTitle, trial.Status,
		trial.StudyType, phases, trial.StartDate, trial.CompletionDate,
		trial.LastUpdated, trial.Sponsor, trial.SponsorClass, conditions,
		interventions, meshTerms, drugMeshTerms, countries,
		trial.Enrollment, trial.Sex, trial.MinAge, trial.MaxAge,
		hasResults, trial.SourceURL,
	}, nil
}

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

// hydrateTrial scans one row back into a Trial, decoding the JSON list
// columns and the integer results flag.
func hydrateTrial(row rowScanner) (types.Trial, error) {
	var trial types.Trial
	var phases, conditions, interventions, meshTerms, drugMeshTerms, countries string
	var hasResults int

	err := row.Scan(
		&trial.NCTID, &trial.BriefTitle, &trial.OfficialTitle, &trial.Status,
		&trial.StudyType, &phases, &trial.StartDate, &trial.CompletionDate,
		&trial.LastUpdated, &trial.Sponsor, &trial.SponsorClass, &conditions,
		&interventions, &meshTerms, &drugMeshTerms, &countries,
		&trial.Enrollment, &trial.Sex, &trial.MinAge, &trial.MaxAge,
		&hasResults, &trial.SourceURL,
	)
	if err != nil {
		return types.Trial{}, err
	}

	if trial.Phases, err = decodeList[string](phases); err != nil {
		return types.Trial{}, err
	}
	if trial.Conditions, err = decodeList[string](conditions); err != nil {
		return types.Trial{}, err
	}
	if trial.Interventions, err = decodeList[types.Intervention](interventions); err != nil {
		return types.Trial{}, err
	}
	if trial.MeshTerms, err = decodeList[string](meshTerms); err != nil {
		return types.Trial{}, err
	}
	if trial.DrugMeshTerms, err = decodeList[string](drugMeshTerms); err != nil {
		return types.Trial{}, err
	}
	if trial.Countries, err = decodeList[string](countries); err != nil {
		return types.Trial{}, err
	}
	trial.HasResults = hasResults != 0

	return trial, nil
}
