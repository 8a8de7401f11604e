package policy

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// NormalizeArabic returns s in NFC form with surrounding whitespace
// trimmed. Operator input arrives from several surfaces (paste, OCR,
// AI output) with mixed composition forms; normalizing once at the
// domain boundary keeps comparisons and prompts consistent.
func NormalizeArabic(s string) string {
	return norm.NFC.String(strings.TrimSpace(s))
}

// Normalize canonicalizes all free-text Arabic fields in place.
func (d *Draft) Normalize() {
	d.TitleAr = NormalizeArabic(d.TitleAr)
	d.RecommendationTextAr = NormalizeArabic(d.RecommendationTextAr)
	d.StakeholderInvolvementAr = NormalizeArabic(d.StakeholderInvolvementAr)
	for i := range d.ImplementationSteps {
		d.ImplementationSteps[i].Ar = NormalizeArabic(d.ImplementationSteps[i].Ar)
	}
	for i := range d.SuccessMetrics {
		d.SuccessMetrics[i].MetricAr = NormalizeArabic(d.SuccessMetrics[i].MetricAr)
	}
}

// ValidateForSubmission checks the invariants required before a draft may
// be handed to the create flow. It does not touch the network.
func (d *Draft) ValidateForSubmission() error {
	if NormalizeArabic(d.TitleAr) == "" {
		return InvalidInputf("title_ar is required")
	}
	if NormalizeArabic(d.RecommendationTextAr) == "" {
		return InvalidInputf("recommendation_text_ar is required")
	}
	if d.PolicyType != "" && !ValidPolicyType(d.PolicyType) {
		return InvalidInputf("unknown policy type %q", d.PolicyType)
	}
	if d.ImplementationComplexity != "" && !ValidComplexity(d.ImplementationComplexity) {
		return InvalidInputf("unknown implementation complexity %q", d.ImplementationComplexity)
	}
	if d.PriorityLevel != "" && !ValidPriority(d.PriorityLevel) {
		return InvalidInputf("unknown priority level %q", d.PriorityLevel)
	}
	if d.TimelineMonths < 0 {
		return InvalidInputf("timeline_months must not be negative")
	}
	if d.ImpactScore != nil && (*d.ImpactScore < 0 || *d.ImpactScore > 100) {
		return InvalidInputf("impact_score must be within [0,100]")
	}
	for _, ref := range d.LinkedEntities {
		if !ValidEntityType(ref.Type) {
			return InvalidInputf("unknown linked entity type %q", ref.Type)
		}
	}
	return nil
}
