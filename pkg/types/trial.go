package types

import "fmt"

// studyURLFormat builds the public registry page for a study identifier.
const studyURLFormat = "https://clinicaltrials.gov/study/%s"

// Intervention is one treatment arm entry on a trial, reduced to its
// type ("DRUG", "DEVICE", ...) and display name.
type Intervention struct {
	Type string `json:"type"`
	Name string `json:"name"`
}

// Trial is the flat, canonical form of one registry study. It is produced
// by the normalizer and is the only shape the storage backend persists.
//
// Multi-valued fields are always non-nil slices, possibly empty; the
// normalizer and the storage layer both maintain this.
type Trial struct {
	NCTID          string         `json:"nct_id"`
	BriefTitle     string         `json:"brief_title"`
	OfficialTitle  string         `json:"official_title"`
	Status         string         `json:"status"`
	StudyType      string         `json:"study_type"`
	Phases         []string       `json:"phases"`
	StartDate      string         `json:"start_date"`
	CompletionDate string         `json:"completion_date"`
	LastUpdated    string         `json:"last_updated"`
	Sponsor        string         `json:"sponsor"`
	SponsorClass   string         `json:"sponsor_class"`
	Conditions     []string       `json:"conditions"`
	Interventions  []Intervention `json:"interventions"`
	MeshTerms      []string       `json:"mesh_terms"`
	DrugMeshTerms  []string       `json:"drug_mesh_terms"`
	Countries      []string       `json:"countries"`
	Enrollment     int            `json:"enrollment"`
	Sex            string         `json:"sex"`
	MinAge         string         `json:"min_age"`
	MaxAge         string         `json:"max_age"`
	HasResults     bool           `json:"has_results"`
	SourceURL      string         `json:"source_url"`
}

// StudyURL derives the canonical registry URL for a study identifier.
func StudyURL(nctID string) string {
	return fmt.Sprintf(studyURLFormat, nctID)
}

// Validate checks that the trial can be persisted. The identifier is the
// primary key and must be non-empty; every other field is free-form.
func (t *Trial) Validate() error {
	if t.NCTID == "" {
		return ErrEmptyNCTID
	}
	return nil
}
