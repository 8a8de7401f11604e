package assistant

import (
	"strings"

	"github.com/innovagov/policyhub/policy"
)

// draftResponse mirrors the schema-validated model output. Pointers
// distinguish "field omitted" from zero values.
type draftResponse struct {
	TitleAr                  string          `json:"title_ar"`
	RecommendationTextAr     string          `json:"recommendation_text_ar"`
	RegulatoryFramework      string          `json:"regulatory_framework"`
	RegulatoryChangeNeeded   *bool           `json:"regulatory_change_needed"`
	PolicyType               string          `json:"policy_type"`
	ImplementationComplexity string          `json:"implementation_complexity"`
	TimelineMonths           int             `json:"timeline_months"`
	PriorityLevel            string          `json:"priority_level"`
	ImpactScore              *int            `json:"impact_score"`
	ImplementationSteps      []policy.Step   `json:"implementation_steps"`
	SuccessMetrics           []policy.Metric `json:"success_metrics"`
	AffectedStakeholders     []string        `json:"affected_stakeholders"`
	StakeholderInvolvementAr string          `json:"stakeholder_involvement_ar"`
}

// merge fills empty draft fields from the model response and returns the
// number of fields filled. A non-empty draft field always wins: operator
// intent is authoritative once content exists.
func merge(d *policy.Draft, r *draftResponse) int {
	filled := 0

	if empty(d.TitleAr) && !empty(r.TitleAr) {
		d.TitleAr = r.TitleAr
		filled++
	}
	if empty(d.RecommendationTextAr) && !empty(r.RecommendationTextAr) {
		d.RecommendationTextAr = r.RecommendationTextAr
		filled++
	}
	if empty(d.RegulatoryFramework) && !empty(r.RegulatoryFramework) {
		d.RegulatoryFramework = r.RegulatoryFramework
		filled++
	}
	if !d.RegulatoryChangeNeeded && r.RegulatoryChangeNeeded != nil && *r.RegulatoryChangeNeeded {
		d.RegulatoryChangeNeeded = true
		filled++
	}
	if d.PolicyType == "" && policy.ValidPolicyType(policy.PolicyType(r.PolicyType)) {
		d.PolicyType = policy.PolicyType(r.PolicyType)
		filled++
	}
	if d.ImplementationComplexity == "" && policy.ValidComplexity(policy.Complexity(r.ImplementationComplexity)) {
		d.ImplementationComplexity = policy.Complexity(r.ImplementationComplexity)
		filled++
	}
	if d.TimelineMonths == 0 && r.TimelineMonths > 0 {
		d.TimelineMonths = r.TimelineMonths
		filled++
	}
	if d.PriorityLevel == "" && policy.ValidPriority(policy.Priority(r.PriorityLevel)) {
		d.PriorityLevel = policy.Priority(r.PriorityLevel)
		filled++
	}
	if d.ImpactScore == nil && r.ImpactScore != nil {
		score := *r.ImpactScore
		d.ImpactScore = &score
		filled++
	}
	if len(d.ImplementationSteps) == 0 && len(r.ImplementationSteps) > 0 {
		d.ImplementationSteps = append([]policy.Step(nil), r.ImplementationSteps...)
		filled++
	}
	if len(d.SuccessMetrics) == 0 && len(r.SuccessMetrics) > 0 {
		d.SuccessMetrics = append([]policy.Metric(nil), r.SuccessMetrics...)
		filled++
	}
	if len(d.AffectedStakeholders) == 0 && len(r.AffectedStakeholders) > 0 {
		d.AffectedStakeholders = append([]string(nil), r.AffectedStakeholders...)
		filled++
	}
	if empty(d.StakeholderInvolvementAr) && !empty(r.StakeholderInvolvementAr) {
		d.StakeholderInvolvementAr = r.StakeholderInvolvementAr
		filled++
	}

	return filled
}

func empty(s string) bool {
	return strings.TrimSpace(s) == ""
}
