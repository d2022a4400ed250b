package normalize

import (
	"encoding/json"
	"strconv"
)

// rawStudy mirrors the nested study shape returned by the registry's v2
// API, limited to the fields the flat schema needs. Absent structure at
// any depth decodes to zero values, which is what makes Normalize total.
type rawStudy struct {
	ProtocolSection protocolSection `json:"protocolSection"`
	DerivedSection  derivedSection  `json:"derivedSection"`
	HasResults      bool            `json:"hasResults"`
}

type protocolSection struct {
	IdentificationModule       identificationModule       `json:"identificationModule"`
	StatusModule               statusModule               `json:"statusModule"`
	DesignModule               designModule               `json:"designModule"`
	SponsorCollaboratorsModule sponsorCollaboratorsModule `json:"sponsorCollaboratorsModule"`
	ConditionsModule           conditionsModule           `json:"conditionsModule"`
	ArmsInterventionsModule    armsInterventionsModule    `json:"armsInterventionsModule"`
	EligibilityModule          eligibilityModule          `json:"eligibilityModule"`
	ContactsLocationsModule    contactsLocationsModule    `json:"contactsLocationsModule"`
}

type identificationModule struct {
	NCTID         string `json:"nctId"`
	BriefTitle    string `json:"briefTitle"`
	OfficialTitle string `json:"officialTitle"`
}

type statusModule struct {
	OverallStatus            string     `json:"overallStatus"`
	StartDateStruct          dateStruct `json:"startDateStruct"`
	CompletionDateStruct     dateStruct `json:"completionDateStruct"`
	LastUpdatePostDateStruct dateStruct `json:"lastUpdatePostDateStruct"`
}

type dateStruct struct {
	Date string `json:"date"`
}

type designModule struct {
	StudyType      string         `json:"studyType"`
	Phases         []string       `json:"phases"`
	EnrollmentInfo enrollmentInfo `json:"enrollmentInfo"`
}

type enrollmentInfo struct {
	Count looseCount `json:"count"`
}

type sponsorCollaboratorsModule struct {
	LeadSponsor leadSponsor `json:"leadSponsor"`
}

type leadSponsor struct {
	Name  string `json:"name"`
	Class string `json:"class"`
}

type conditionsModule struct {
	Conditions []string `json:"conditions"`
}

type armsInterventionsModule struct {
	Interventions []rawIntervention `json:"interventions"`
}

type rawIntervention struct {
	Type string `json:"type"`
	Name string `json:"name"`
}

type eligibilityModule struct {
	Sex        string `json:"sex"`
	MinimumAge string `json:"minimumAge"`
	MaximumAge string `json:"maximumAge"`
}

type contactsLocationsModule struct {
	Locations []rawLocation `json:"locations"`
}

type rawLocation struct {
	Country string `json:"country"`
}

type derivedSection struct {
	ConditionBrowseModule    browseModule `json:"conditionBrowseModule"`
	InterventionBrowseModule browseModule `json:"interventionBrowseModule"`
}

type browseModule struct {
	Meshes []mesh `json:"meshes"`
}

type mesh struct {
	Term string `json:"term"`
}

// looseCount is an enrollment count tolerant of malformed input: a JSON
// number, a numeric string, null, or garbage all decode without error,
// with anything unparseable or negative collapsing to 0.
type looseCount int

func (c *looseCount) UnmarshalJSON(data []byte) error {
	*c = 0

	var n float64
	if err := json.Unmarshal(data, &n); err == nil {
		if n > 0 {
			*c = looseCount(n)
		}
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		if v, err := strconv.Atoi(s); err == nil && v > 0 {
			*c = looseCount(v)
		}
		return nil
	}

	// Wrong-typed count (object, array, bare garbage): default, no error.
	return nil
}
