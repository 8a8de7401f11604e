package assistant

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/innovagov/policyhub/llm/testutil"
	"github.com/innovagov/policyhub/policy"
)

const fullResponse = `{
	"title_ar": "تنظيم إعادة استخدام المياه",
	"recommendation_text_ar": "نوصي بإصدار تنظيم جديد لإعادة استخدام المياه المعالجة في الري.",
	"regulatory_framework": "قانون المياه",
	"regulatory_change_needed": true,
	"policy_type": "new_regulation",
	"implementation_complexity": "medium",
	"timeline_months": 18,
	"priority_level": "high",
	"impact_score": 75,
	"implementation_steps": [
		{"en": "Draft the regulation", "ar": "صياغة التنظيم"},
		{"en": "Public consultation", "ar": "استشارة عامة"}
	],
	"success_metrics": [
		{"metric_ar": "نسبة المياه المعاد استخدامها", "target": "30", "unit": "%"}
	],
	"affected_stakeholders": ["المزارعون", "شركات المياه"],
	"stakeholder_involvement_ar": "ورش عمل مع المزارعين"
}`

func TestAssist_FreeTextProducesStructuredDraft(t *testing.T) {
	mock := &testutil.MockInvoker{Payloads: []string{fullResponse}}
	a := New(mock, nil)

	result, err := a.Assist(context.Background(), policy.Draft{}, "نحتاج تنظيم جديد", nil)
	require.NoError(t, err)

	assert.Equal(t, 1, mock.CallCount())
	assert.NotEmpty(t, result.Draft.TitleAr)
	assert.NotEmpty(t, result.Draft.RecommendationTextAr)
	assert.True(t, policy.ValidPolicyType(result.Draft.PolicyType))
	assert.Positive(t, result.Draft.TimelineMonths)
	assert.True(t, result.AdvancedStage)
}

func TestAssist_NeverOverwritesOperatorContent(t *testing.T) {
	mock := &testutil.MockInvoker{Payloads: []string{fullResponse}}
	a := New(mock, nil)

	score := 10
	draft := policy.Draft{
		TitleAr:                  "عنوان المشغل",
		RecommendationTextAr:     "توصية المشغل",
		RegulatoryFramework:      "إطار المشغل",
		PolicyType:               policy.TypeGuideline,
		ImplementationComplexity: policy.ComplexityHigh,
		TimelineMonths:           6,
		PriorityLevel:            policy.PriorityLow,
		ImpactScore:              &score,
		ImplementationSteps:      []policy.Step{{Ar: "خطوة المشغل"}},
		SuccessMetrics:           []policy.Metric{{MetricAr: "مؤشر المشغل", Target: "1", Unit: "x"}},
		AffectedStakeholders:     []string{"جهة"},
		StakeholderInvolvementAr: "مشاركة المشغل",
	}

	result, err := a.Assist(context.Background(), draft, "أفكار إضافية", nil)
	require.NoError(t, err)

	got := result.Draft
	assert.Equal(t, "عنوان المشغل", got.TitleAr)
	assert.Equal(t, "توصية المشغل", got.RecommendationTextAr)
	assert.Equal(t, "إطار المشغل", got.RegulatoryFramework)
	assert.Equal(t, policy.TypeGuideline, got.PolicyType)
	assert.Equal(t, policy.ComplexityHigh, got.ImplementationComplexity)
	assert.Equal(t, 6, got.TimelineMonths)
	assert.Equal(t, policy.PriorityLow, got.PriorityLevel)
	assert.Equal(t, 10, *got.ImpactScore)
	require.Len(t, got.ImplementationSteps, 1)
	assert.Equal(t, "خطوة المشغل", got.ImplementationSteps[0].Ar)
	require.Len(t, got.SuccessMetrics, 1)
	assert.Equal(t, "مؤشر المشغل", got.SuccessMetrics[0].MetricAr)
	assert.Equal(t, []string{"جهة"}, got.AffectedStakeholders)
	assert.Equal(t, "مشاركة المشغل", got.StakeholderInvolvementAr)
	assert.False(t, result.AdvancedStage)
}

func TestAssist_FillsOnlyEmptyFields(t *testing.T) {
	mock := &testutil.MockInvoker{Payloads: []string{fullResponse}}
	a := New(mock, nil)

	draft := policy.Draft{TitleAr: "عنوان المشغل"}
	result, err := a.Assist(context.Background(), draft, "", nil)
	require.NoError(t, err)

	assert.Equal(t, "عنوان المشغل", result.Draft.TitleAr)
	assert.Equal(t, "نوصي بإصدار تنظيم جديد لإعادة استخدام المياه المعالجة في الري.", result.Draft.RecommendationTextAr)
	assert.Equal(t, policy.TypeNewRegulation, result.Draft.PolicyType)
	assert.Len(t, result.Draft.ImplementationSteps, 2)
	// Step order comes through unchanged
	assert.Equal(t, "Draft the regulation", result.Draft.ImplementationSteps[0].En)
	assert.Equal(t, "Public consultation", result.Draft.ImplementationSteps[1].En)
}

func TestAssist_EmptyInputFailsWithoutNetworkCall(t *testing.T) {
	mock := &testutil.MockInvoker{}
	a := New(mock, nil)

	_, err := a.Assist(context.Background(), policy.Draft{}, "   ", nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, policy.ErrInvalidInput))
	assert.Equal(t, 0, mock.CallCount())
}

func TestAssist_ProviderErrorLeavesDraftUntouched(t *testing.T) {
	mock := &testutil.MockInvoker{Err: policy.ErrProviderUnavailable}
	a := New(mock, nil)

	draft := policy.Draft{TitleAr: "عنوان"}
	_, err := a.Assist(context.Background(), draft, "ملاحظات", nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, policy.ErrProviderUnavailable))
	// Caller's draft value is unchanged; Assist works on a copy.
	assert.Equal(t, "عنوان", draft.TitleAr)
	assert.Empty(t, draft.RecommendationTextAr)
}

func TestAssist_MalformedResponse(t *testing.T) {
	mock := &testutil.MockInvoker{Payloads: []string{`{"policy_type": "decree"}`}}
	a := New(mock, nil)

	_, err := a.Assist(context.Background(), policy.Draft{}, "ملاحظات", nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, policy.ErrMalformedResponse))
}

func TestAssist_LinkedContextInPrompt(t *testing.T) {
	mock := &testutil.MockInvoker{Payloads: []string{fullResponse}}
	a := New(mock, nil)

	linked := []policy.ContextSource{
		policy.ChallengeContext{Title: "تلوث المياه", Sector: "البيئة", Status: "active"},
		policy.PilotContext{Title: "تجربة الري الذكي", Region: "الشمال", Stage: "scaling"},
	}

	_, err := a.Assist(context.Background(), policy.Draft{}, "ملاحظات", linked)
	require.NoError(t, err)

	prompt := mock.LastPrompt()
	assert.Contains(t, prompt.User, "تلوث المياه")
	assert.Contains(t, prompt.User, "تجربة الري الذكي")
	assert.Contains(t, prompt.System, "policy drafting assistant")
}
