// Package normalize maps raw registry study records onto the flat Trial
// schema. Normalize is a pure function and total: missing or malformed
// structure anywhere in the input yields field defaults, never an error,
// so one bad record cannot abort a batch.
package normalize

import (
	"encoding/json"

	"github.com/mesh-intelligence/trialmirror/pkg/types"
)

// Normalize converts one raw study record into a Trial. Every multi-valued
// output field is a non-nil slice, possibly empty.
func Normalize(raw json.RawMessage) types.Trial {
	var study rawStudy
	// A decode failure leaves whatever prefix decoded; the remaining
	// fields keep their defaults, which is the required behavior.
	_ = json.Unmarshal(raw, &study)

	protocol := study.ProtocolSection
	nctID := protocol.IdentificationModule.NCTID

	phases := protocol.DesignModule.Phases
	if phases == nil {
		phases = []string{}
	}
	conditions := protocol.ConditionsModule.Conditions
	if conditions == nil {
		conditions = []string{}
	}

	interventions := make([]types.Intervention, 0, len(protocol.ArmsInterventionsModule.Interventions))
	for _, iv := range protocol.ArmsInterventionsModule.Interventions {
		interventions = append(interventions, types.Intervention{
			Type: iv.Type,
			Name: iv.Name,
		})
	}

	return types.Trial{
		NCTID:          nctID,
		BriefTitle:     protocol.IdentificationModule.BriefTitle,
		OfficialTitle:  protocol.IdentificationModule.OfficialTitle,
		Status:         protocol.StatusModule.OverallStatus,
		StudyType:      protocol.DesignModule.StudyType,
		Phases:         phases,
		StartDate:      protocol.StatusModule.StartDateStruct.Date,
		CompletionDate: protocol.StatusModule.CompletionDateStruct.Date,
		LastUpdated:    protocol.StatusModule.LastUpdatePostDateStruct.Date,
		Sponsor:        protocol.SponsorCollaboratorsModule.LeadSponsor.Name,
		SponsorClass:   protocol.SponsorCollaboratorsModule.LeadSponsor.Class,
		Conditions:     conditions,
		Interventions:  interventions,
		MeshTerms:      meshTerms(study.DerivedSection.ConditionBrowseModule),
		DrugMeshTerms:  meshTerms(study.DerivedSection.InterventionBrowseModule),
		Countries:      countries(protocol.ContactsLocationsModule.Locations),
		Enrollment:     int(protocol.DesignModule.EnrollmentInfo.Count),
		Sex:            protocol.EligibilityModule.Sex,
		MinAge:         protocol.EligibilityModule.MinimumAge,
		MaxAge:         protocol.EligibilityModule.MaximumAge,
		HasResults:     study.HasResults,
		SourceURL:      types.StudyURL(nctID),
	}
}

// meshTerms reduces a browse module to its term strings.
func meshTerms(m browseModule) []string {
	terms := make([]string, 0, len(m.Meshes))
	for _, mesh := range m.Meshes {
		terms = append(terms, mesh.Term)
	}
	return terms
}

// countries collects the distinct non-empty country values from the
// location entries, in first-seen order.
func countries(locations []rawLocation) []string {
	out := make([]string, 0, len(locations))
	seen := make(map[string]bool, len(locations))
	for _, loc := range locations {
		if loc.Country == "" || seen[loc.Country] {
			continue
		}
		seen[loc.Country] = true
		out = append(out, loc.Country)
	}
	return out
}
