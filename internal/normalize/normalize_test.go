package normalize

import (
	"encoding/json"
	"reflect"
	"testing"

	"github.com/mesh-intelligence/trialmirror/pkg/types"
)

const fullStudyJSON = `{
  "protocolSection": {
    "identificationModule": {
      "nctId": "NCT01234567",
      "briefTitle": "Brief",
      "officialTitle": "Official"
    },
    "statusModule": {
      "overallStatus": "RECRUITING",
      "startDateStruct": {"date": "2025-01-15"},
      "completionDateStruct": {"date": "2026-06-30"},
      "lastUpdatePostDateStruct": {"date": "2026-02-20"}
    },
    "designModule": {
      "studyType": "INTERVENTIONAL",
      "phases": ["PHASE1", "PHASE2"],
      "enrollmentInfo": {"count": 120}
    },
    "sponsorCollaboratorsModule": {
      "leadSponsor": {"name": "Example University", "class": "OTHER"}
    },
    "conditionsModule": {"conditions": ["Diabetes Mellitus"]},
    "armsInterventionsModule": {
      "interventions": [
        {"type": "DRUG", "name": "Metformin"},
        {"name": "Unnamed type"}
      ]
    },
    "eligibilityModule": {
      "sex": "ALL",
      "minimumAge": "18 Years",
      "maximumAge": "65 Years"
    },
    "contactsLocationsModule": {
      "locations": [
        {"country": "US"},
        {"country": "US"},
        {"country": "FR"},
        {"country": ""}
      ]
    }
  },
  "derivedSection": {
    "conditionBrowseModule": {"meshes": [{"term": "Diabetes Mellitus"}]},
    "interventionBrowseModule": {"meshes": [{"term": "Metformin"}]}
  },
  "hasResults": true
}`

func TestNormalizeFullRecord(t *testing.T) {
	got := Normalize(json.RawMessage(fullStudyJSON))

	want := types.Trial{
		NCTID:          "NCT01234567",
		BriefTitle:     "Brief",
		OfficialTitle:  "Official",
		Status:         "RECRUITING",
		StudyType:      "INTERVENTIONAL",
		Phases:         []string{"PHASE1", "PHASE2"},
		StartDate:      "2025-01-15",
		CompletionDate: "2026-06-30",
		LastUpdated:    "2026-02-20",
		Sponsor:        "Example University",
		SponsorClass:   "OTHER",
		Conditions:     []string{"Diabetes Mellitus"},
		Interventions: []types.Intervention{
			{Type: "DRUG", Name: "Metformin"},
			{Type: "", Name: "Unnamed type"},
		},
		MeshTerms:     []string{"Diabetes Mellitus"},
		DrugMeshTerms: []string{"Metformin"},
		Countries:     []string{"US", "FR"},
		Enrollment:    120,
		Sex:           "ALL",
		MinAge:        "18 Years",
		MaxAge:        "65 Years",
		HasResults:    true,
		SourceURL:     "https://clinicaltrials.gov/study/NCT01234567",
	}

	if !reflect.DeepEqual(got, want) {
		t.Errorf("Normalize mismatch:\n got  %+v\n want %+v", got, want)
	}
}

func TestNormalizeIsTotal(t *testing.T) {
	inputs := map[string]string{
		"empty object":       `{}`,
		"null":               `null`,
		"empty input":        ``,
		"not json":           `{{{`,
		"wrong-typed fields": `{"protocolSection": {"designModule": {"phases": "not-a-list"}}}`,
		"array input":        `[1,2,3]`,
	}

	for name, in := range inputs {
		t.Run(name, func(t *testing.T) {
			got := Normalize(json.RawMessage(in))

			// Every multi-valued field must be a non-nil slice.
			if got.Phases == nil || got.Conditions == nil ||
				got.Interventions == nil || got.MeshTerms == nil ||
				got.DrugMeshTerms == nil || got.Countries == nil {
				t.Errorf("nil multi-valued field in %+v", got)
			}
			if got.Enrollment != 0 {
				t.Errorf("Enrollment = %d, want 0", got.Enrollment)
			}
			if got.HasResults {
				t.Error("HasResults = true, want false")
			}
		})
	}
}

func TestNormalizeCountriesDeduplicated(t *testing.T) {
	in := `{"protocolSection": {"contactsLocationsModule": {"locations": [
        {"country": "US"}, {"country": "US"}, {"country": "FR"}
    ]}}}`
	got := Normalize(json.RawMessage(in))

	if len(got.Countries) != 2 {
		t.Fatalf("Countries = %v, want 2 elements", got.Countries)
	}
	seen := map[string]bool{}
	for _, c := range got.Countries {
		seen[c] = true
	}
	if !seen["US"] || !seen["FR"] {
		t.Errorf("Countries = %v, want US and FR", got.Countries)
	}
}

func TestNormalizeEnrollment(t *testing.T) {
	tests := []struct {
		name  string
		count string
		want  int
	}{
		{"number", `120`, 120},
		{"numeric string", `"85"`, 85},
		{"not a number", `"not-a-number"`, 0},
		{"null", `null`, 0},
		{"negative", `-5`, 0},
		{"float truncated", `12.7`, 12},
		{"object", `{"n": 3}`, 0},
		{"missing", ``, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := `{"protocolSection": {"designModule": {"enrollmentInfo": {}}}}`
			if tt.count != `` {
				in = `{"protocolSection": {"designModule": {"enrollmentInfo": {"count": ` + tt.count + `}}}}`
			}
			got := Normalize(json.RawMessage(in))
			if got.Enrollment != tt.want {
				t.Errorf("Enrollment = %d, want %d", got.Enrollment, tt.want)
			}
		})
	}
}

func TestNormalizeMeshTermsAreDistinctLists(t *testing.T) {
	in := `{"derivedSection": {
        "conditionBrowseModule": {"meshes": [{"term": "A"}, {"term": "B"}]},
        "interventionBrowseModule": {"meshes": [{"term": "C"}]}
    }}`
	got := Normalize(json.RawMessage(in))

	if !reflect.DeepEqual(got.MeshTerms, []string{"A", "B"}) {
		t.Errorf("MeshTerms = %v", got.MeshTerms)
	}
	if !reflect.DeepEqual(got.DrugMeshTerms, []string{"C"}) {
		t.Errorf("DrugMeshTerms = %v", got.DrugMeshTerms)
	}
}

func TestNormalizeSourceURL(t *testing.T) {
	in := `{"protocolSection": {"identificationModule": {"nctId": "NCT00000042"}}}`
	got := Normalize(json.RawMessage(in))
	if got.SourceURL != "https://clinicaltrials.gov/study/NCT00000042" {
		t.Errorf("SourceURL = %q", got.SourceURL)
	}
}
