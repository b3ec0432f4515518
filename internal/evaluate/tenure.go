package evaluate

import (
	"sort"
	"strings"

	"github.com/jonathan/hr-screening/internal/types"
)

// MethodTenure is the method name emitted by Tenure.
const MethodTenure = "tenure"

// TenureConfig holds the thresholds for tenure evaluation. Months are whole
// calendar months.
type TenureConfig struct {
	AverageThresholdMonths         float64  `json:"average_threshold_months" yaml:"average_threshold_months"`
	RecentShortThresholdMonths     float64  `json:"recent_short_threshold_months" yaml:"recent_short_threshold_months"`
	ContractAverageThresholdMonths float64  `json:"contract_average_threshold_months" yaml:"contract_average_threshold_months"`
	RecentWindow                   int      `json:"recent_window" yaml:"recent_window"`
	ContractTypes                  []string `json:"contract_types" yaml:"contract_types"`
}

// DefaultTenureConfig returns the default thresholds with a fresh contract
// type list.
func DefaultTenureConfig() TenureConfig {
	return TenureConfig{
		AverageThresholdMonths:         18,
		RecentShortThresholdMonths:     12,
		ContractAverageThresholdMonths: 12,
		RecentWindow:                   3,
		ContractTypes:                  []string{"contract", "freelance", "業務委託"},
	}
}

// TenureSpan is one kept experience with its resolved duration.
type TenureSpan struct {
	Company        string          `json:"company"`
	Title          string          `json:"title"`
	Months         int             `json:"months"`
	EmploymentType string          `json:"employment_type,omitempty"`
	EndDate        types.YearMonth `json:"end_date"`
	IsContract     bool            `json:"is_contract"`
}

// Tenure flags job hoppers from employment duration patterns, with a
// relaxation for pure contractor profiles.
type Tenure struct {
	cfg           TenureConfig
	contractTypes map[string]bool
}

// NewTenure creates the evaluator. Zero-valued config fields fall back to
// their defaults.
func NewTenure(cfg TenureConfig) *Tenure {
	defaults := DefaultTenureConfig()
	if cfg.AverageThresholdMonths == 0 {
		cfg.AverageThresholdMonths = defaults.AverageThresholdMonths
	}
	if cfg.RecentShortThresholdMonths == 0 {
		cfg.RecentShortThresholdMonths = defaults.RecentShortThresholdMonths
	}
	if cfg.ContractAverageThresholdMonths == 0 {
		cfg.ContractAverageThresholdMonths = defaults.ContractAverageThresholdMonths
	}
	if cfg.RecentWindow == 0 {
		cfg.RecentWindow = defaults.RecentWindow
	}
	if cfg.ContractTypes == nil {
		cfg.ContractTypes = defaults.ContractTypes
	}
	contractTypes := make(map[string]bool, len(cfg.ContractTypes))
	for _, t := range cfg.ContractTypes {
		contractTypes[strings.ToLower(t)] = true
	}
	return &Tenure{cfg: cfg, contractTypes: contractTypes}
}

// Method returns the stable method name.
func (e *Tenure) Method() string { return MethodTenure }

// Evaluate computes per-experience whole-month durations against the as_of
// reference date, flags hoppers, and applies the contractor relaxation.
func (e *Tenure) Evaluate(profile *types.CandidateProfile, ctx *Context) (*types.EvaluationResult, error) {
	asOf := e.resolveAsOf(ctx)
	spans := e.computeSpans(profile.Experiences, asOf)

	avgMonths := averageMonths(spans, func(TenureSpan) bool { return true })
	recentShort := e.countRecentShort(spans)
	isJobHopper := len(spans) > 0 &&
		avgMonths < e.cfg.AverageThresholdMonths &&
		recentShort >= 2

	isContractProfile := len(spans) > 0
	for _, span := range spans {
		if !span.IsContract {
			isContractProfile = false
			break
		}
	}
	contractAvg := averageMonths(spans, func(s TenureSpan) bool { return s.IsContract })
	passesContractRule := isContractProfile && contractAvg >= e.cfg.ContractAverageThresholdMonths

	passes := !isJobHopper || passesContractRule

	if spans == nil {
		spans = []TenureSpan{}
	}
	return &types.EvaluationResult{
		Method: MethodTenure,
		Scores: map[string]float64{
			"tenure_pass":       boolScore(passes),
			"tenure_avg_months": avgMonths,
		},
		Metadata: map[string]any{
			"average_months":          avgMonths,
			"per_experience":          spans,
			"recent_short_tenures":    recentShort,
			"is_job_hopper":           isJobHopper,
			"is_contract_profile":     isContractProfile,
			"contract_average_months": contractAvg,
			"passes_contract_rule":    passesContractRule,
			"as_of":                   asOf.String(),
		},
	}, nil
}

// computeSpans keeps experiences with a parseable start and a non-negative
// duration, sorted by end date descending. Missing or unparseable end dates
// resolve to as_of.
func (e *Tenure) computeSpans(experiences []types.ExperienceEntry, asOf types.YearMonth) []TenureSpan {
	var spans []TenureSpan
	for _, exp := range experiences {
		start, err := types.ParseYearMonth(exp.Start)
		if err != nil {
			continue
		}
		end := asOf
		if exp.End != "" {
			if parsed, err := types.ParseYearMonth(exp.End); err == nil {
				end = parsed
			}
		}
		if end.Before(start) {
			continue
		}
		spans = append(spans, TenureSpan{
			Company:        exp.Company,
			Title:          exp.Title,
			Months:         end.MonthsSince(start),
			EmploymentType: exp.EmploymentType,
			EndDate:        end,
			IsContract:     e.isContract(exp.EmploymentType),
		})
	}
	sort.SliceStable(spans, func(i, j int) bool {
		return spans[j].EndDate.Before(spans[i].EndDate)
	})
	return spans
}

func (e *Tenure) countRecentShort(spans []TenureSpan) int {
	window := spans
	if len(window) > e.cfg.RecentWindow {
		window = window[:e.cfg.RecentWindow]
	}
	count := 0
	for _, span := range window {
		if float64(span.Months) < e.cfg.RecentShortThresholdMonths {
			count++
		}
	}
	return count
}

func (e *Tenure) isContract(employmentType string) bool {
	if employmentType == "" {
		return false
	}
	return e.contractTypes[strings.ToLower(strings.TrimSpace(employmentType))]
}

// resolveAsOf takes the context as_of date when parseable, otherwise the
// injected clock.
func (e *Tenure) resolveAsOf(ctx *Context) types.YearMonth {
	if ctx.AsOf != "" {
		if parsed, err := types.ParseYearMonth(ctx.AsOf); err == nil {
			return parsed
		}
	}
	return types.YearMonthOf(ctx.clock()())
}

func averageMonths(spans []TenureSpan, keep func(TenureSpan) bool) float64 {
	total := 0.0
	count := 0
	for _, span := range spans {
		if keep(span) {
			total += float64(span.Months)
			count++
		}
	}
	if count == 0 {
		return 0
	}
	return total / float64(count)
}
