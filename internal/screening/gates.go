package screening

import (
	"sort"
	"strings"

	"github.com/jonathan/hr-screening/internal/types"
)

// Hard gate flag keys and their failure labels.
const (
	gateLanguage = "language_ok"
	gateLocation = "location_ok"
	gateVisa     = "visa_ok"
	gateSalary   = "salary_ok"
)

var gateLabels = map[string]string{
	gateLanguage: "language",
	gateLocation: "location",
	gateVisa:     "visa",
	gateSalary:   "salary",
}

// gateOrder keeps flag iteration and failure labels deterministic.
var gateOrder = []string{gateLanguage, gateLocation, gateVisa, gateSalary}

// languageAliases fold common spellings onto ISO codes before comparison.
var languageAliases = map[string]string{
	"日本語":      "ja",
	"にほんご":     "ja",
	"japanese": "ja",
	"jp":       "ja",
	"ja":       "ja",
	"英語":       "en",
	"えいご":      "en",
	"english":  "en",
	"en":       "en",
}

// visaSentinels are candidate visa values that satisfy any requirement.
var visaSentinels = map[string]bool{"ok": true, "valid": true, "yes": true}

// evaluateHardGates checks the boolean constraints that force a reject when
// violated. An empty job-side constraint always passes its gate. The salary
// gate compares against the raw job range, not the tolerance-expanded one.
func evaluateHardGates(profile *types.CandidateProfile, job *types.JobDescription) (map[string]bool, map[string]any) {
	flags := map[string]bool{
		gateLanguage: languageOK(profile, job.Constraints.Language),
		gateLocation: locationOK(profile, job.Constraints.Location),
		gateVisa:     visaOK(profile, job.Constraints.Visa),
		gateSalary:   salaryOK(profile, job.Constraints.SalaryRange),
	}
	details := map[string]any{
		"required_language": job.Constraints.Language,
		"required_location": job.Constraints.Location,
		"required_visa":     job.Constraints.Visa,
		"candidate_languages": func() []string {
			langs := make([]string, 0, len(profile.Languages))
			for _, lang := range profile.Languages {
				langs = append(langs, NormalizeLanguage(lang.Language))
			}
			sort.Strings(langs)
			return langs
		}(),
		"candidate_location": strings.ToLower(strings.TrimSpace(profile.Location)),
	}
	return flags, details
}

// hardFailures returns the labels of all failed gates in stable order.
func hardFailures(flags map[string]bool) []string {
	failures := []string{}
	for _, gate := range gateOrder {
		if !flags[gate] {
			failures = append(failures, gateLabels[gate])
		}
	}
	return failures
}

// NormalizeLanguage lowercases, trims, and folds language aliases onto ISO
// codes.
func NormalizeLanguage(language string) string {
	normalized := strings.ToLower(strings.TrimSpace(language))
	if folded, ok := languageAliases[normalized]; ok {
		return folded
	}
	return normalized
}

func languageOK(profile *types.CandidateProfile, required []string) bool {
	if len(required) == 0 {
		return true
	}
	if len(profile.Languages) == 0 {
		return false
	}
	candidateLangs := make(map[string]bool, len(profile.Languages))
	for _, lang := range profile.Languages {
		candidateLangs[NormalizeLanguage(lang.Language)] = true
	}
	for _, lang := range required {
		if candidateLangs[NormalizeLanguage(lang)] {
			return true
		}
	}
	return false
}

func locationOK(profile *types.CandidateProfile, required []string) bool {
	if len(required) == 0 {
		return true
	}
	if profile.Location == "" {
		return false
	}
	location := strings.ToLower(strings.TrimSpace(profile.Location))
	for _, loc := range required {
		if location == strings.ToLower(strings.TrimSpace(loc)) {
			return true
		}
	}
	return false
}

func visaOK(profile *types.CandidateProfile, required string) bool {
	if required == "" {
		return true
	}
	if profile.Constraints == nil || profile.Constraints.Visa == "" {
		return false
	}
	visa := strings.ToLower(strings.TrimSpace(profile.Constraints.Visa))
	if visaSentinels[visa] {
		return true
	}
	return visa == strings.ToLower(strings.TrimSpace(required))
}

// salaryOK fails only when the candidate's stated range lies strictly
// outside the raw job range. Missing data on either side passes; the
// nuanced tolerance check lives in the salary evaluator.
func salaryOK(profile *types.CandidateProfile, salaryRange *types.SalaryRange) bool {
	if salaryRange == nil {
		return true
	}
	if salaryRange.MinJPY == nil && salaryRange.MaxJPY == nil {
		return true
	}
	desiredMin := profile.DesiredSalaryMinJPY
	desiredMax := profile.DesiredSalaryMaxJPY
	if desiredMin == nil && desiredMax == nil {
		return true
	}
	if desiredMin != nil && salaryRange.MaxJPY != nil && *desiredMin > *salaryRange.MaxJPY {
		return false
	}
	if desiredMax != nil && salaryRange.MinJPY != nil && *desiredMax < *salaryRange.MinJPY {
		return false
	}
	return true
}
