// Package policy defines the core domain types for the policy lifecycle:
// in-progress drafts, persisted bilingual policy records, and the
// enumerations shared across drafting, duplicate detection, and storage.
package policy

import "time"

// PolicyType classifies the regulatory instrument a policy proposes.
type PolicyType string

const (
	TypeNewRegulation PolicyType = "new_regulation"
	TypeAmendment     PolicyType = "amendment"
	TypeGuideline     PolicyType = "guideline"
	TypeStandard      PolicyType = "standard"
	TypeBylaw         PolicyType = "bylaw"
	TypeOther         PolicyType = "other"
)

// Complexity estimates implementation effort.
type Complexity string

const (
	ComplexityLow      Complexity = "low"
	ComplexityMedium   Complexity = "medium"
	ComplexityHigh     Complexity = "high"
	ComplexityVeryHigh Complexity = "very_high"
)

// Priority ranks a policy against the rest of the portfolio.
type Priority string

const (
	PriorityLow      Priority = "low"
	PriorityMedium   Priority = "medium"
	PriorityHigh     Priority = "high"
	PriorityCritical Priority = "critical"
)

// Status represents a policy's position in the approval lifecycle.
type Status string

const (
	StatusDraft              Status = "draft"
	StatusLegalReview        Status = "legal_review"
	StatusPublicConsultation Status = "public_consultation"
	StatusCouncilApproval    Status = "council_approval"
	StatusMinistryApproval   Status = "ministry_approval"
	StatusPublished          Status = "published"
	StatusActive             Status = "active"
	StatusImplemented        Status = "implemented"
	StatusRejected           Status = "rejected"
)

// Step is one implementation step in execution order. Both language
// variants are kept together so reordering can never split a pair.
type Step struct {
	En string `json:"en"`
	Ar string `json:"ar"`
}

// Metric is a success metric with its target and unit.
type Metric struct {
	MetricAr string `json:"metric_ar"`
	MetricEn string `json:"metric_en,omitempty"`
	Target   string `json:"target"`
	Unit     string `json:"unit"`
}

// EntityType identifies the kind of platform record a draft links to.
type EntityType string

const (
	EntityChallenge EntityType = "challenge"
	EntityPilot     EntityType = "pilot"
	EntityRDProject EntityType = "rd_project"
	EntityProgram   EntityType = "program"
)

// LinkRef points at a platform entity a draft is derived from or related
// to. Duplicate refs are not prevented; they are harmless downstream.
type LinkRef struct {
	Type EntityType `json:"type"`
	ID   string     `json:"id"`
}

// Draft is an in-progress policy under operator edit. It is ephemeral:
// created client-side, mutated by edits and AI assistance, and discarded
// on successful submission.
type Draft struct {
	ID                       string     `json:"id,omitempty"` // set once persisted; used for self-exclusion
	TitleAr                  string     `json:"title_ar"`
	RecommendationTextAr     string     `json:"recommendation_text_ar"`
	RegulatoryFramework      string     `json:"regulatory_framework,omitempty"`
	RegulatoryChangeNeeded   bool       `json:"regulatory_change_needed"`
	PolicyType               PolicyType `json:"policy_type,omitempty"`
	ImplementationComplexity Complexity `json:"implementation_complexity,omitempty"`
	TimelineMonths           int        `json:"timeline_months,omitempty"`
	PriorityLevel            Priority   `json:"priority_level,omitempty"`
	ImpactScore              *int       `json:"impact_score,omitempty"`
	ImplementationSteps      []Step     `json:"implementation_steps,omitempty"`
	SuccessMetrics           []Metric   `json:"success_metrics,omitempty"`
	AffectedStakeholders     []string   `json:"affected_stakeholders,omitempty"`
	StakeholderInvolvementAr string     `json:"stakeholder_involvement_ar,omitempty"`
	LinkedEntities           []LinkRef  `json:"linked_entities,omitempty"`
	AttachmentURLs           []string   `json:"attachment_urls,omitempty"`

	// Embedding is populated asynchronously after persistence. Absence
	// only forces duplicate detection onto the LLM fallback path.
	Embedding []float32 `json:"embedding,omitempty"`
}

// Clone returns a deep copy of the draft. Slice and pointer fields get
// fresh backing storage, so normalizing or merging into the copy never
// writes through to the original.
func (d *Draft) Clone() Draft {
	out := *d
	if d.ImpactScore != nil {
		score := *d.ImpactScore
		out.ImpactScore = &score
	}
	out.ImplementationSteps = append([]Step(nil), d.ImplementationSteps...)
	out.SuccessMetrics = append([]Metric(nil), d.SuccessMetrics...)
	out.AffectedStakeholders = append([]string(nil), d.AffectedStakeholders...)
	out.LinkedEntities = append([]LinkRef(nil), d.LinkedEntities...)
	out.AttachmentURLs = append([]string(nil), d.AttachmentURLs...)
	out.Embedding = append([]float32(nil), d.Embedding...)
	return out
}

// IsEmpty reports whether the draft carries no operator content worth
// auto-saving or assisting with.
func (d *Draft) IsEmpty() bool {
	return d.TitleAr == "" &&
		d.RecommendationTextAr == "" &&
		d.RegulatoryFramework == "" &&
		len(d.ImplementationSteps) == 0 &&
		len(d.SuccessMetrics) == 0 &&
		len(d.AffectedStakeholders) == 0 &&
		d.StakeholderInvolvementAr == "" &&
		len(d.LinkedEntities) == 0 &&
		len(d.AttachmentURLs) == 0
}

// Policy is a persisted, bilingual policy record. Both language variants
// of title and recommendation are always present once created; translation
// is blocking at create time.
type Policy struct {
	Draft

	ID                       string     `json:"id"`
	Code                     string     `json:"code,omitempty"`
	TitleEn                  string     `json:"title_en"`
	RecommendationTextEn     string     `json:"recommendation_text_en"`
	StakeholderInvolvementEn string     `json:"stakeholder_involvement_en,omitempty"`
	Status                   Status     `json:"status"`
	SubmissionDate           time.Time  `json:"submission_date"`
	ReviewedAt               *time.Time `json:"reviewed_at,omitempty"`
	CreatedAt                time.Time  `json:"created_at"`
	UpdatedAt                time.Time  `json:"updated_at"`
}

// ValidPolicyType reports whether t is one of the enumerated types.
func ValidPolicyType(t PolicyType) bool {
	switch t {
	case TypeNewRegulation, TypeAmendment, TypeGuideline, TypeStandard, TypeBylaw, TypeOther:
		return true
	default:
		return false
	}
}

// ValidComplexity reports whether c is one of the enumerated complexities.
func ValidComplexity(c Complexity) bool {
	switch c {
	case ComplexityLow, ComplexityMedium, ComplexityHigh, ComplexityVeryHigh:
		return true
	default:
		return false
	}
}

// ValidPriority reports whether p is one of the enumerated priorities.
func ValidPriority(p Priority) bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityCritical:
		return true
	default:
		return false
	}
}

// ValidStatus reports whether s is one of the lifecycle statuses.
func ValidStatus(s Status) bool {
	switch s {
	case StatusDraft, StatusLegalReview, StatusPublicConsultation,
		StatusCouncilApproval, StatusMinistryApproval, StatusPublished,
		StatusActive, StatusImplemented, StatusRejected:
		return true
	default:
		return false
	}
}

// ValidEntityType reports whether t is a linkable entity type.
func ValidEntityType(t EntityType) bool {
	switch t {
	case EntityChallenge, EntityPilot, EntityRDProject, EntityProgram:
		return true
	default:
		return false
	}
}
