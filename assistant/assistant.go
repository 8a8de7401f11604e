// Package assistant turns free-text operator narrative and partially
// filled drafts into more complete policy drafts via a single structured
// LLM call. AI output only ever fills gaps; operator-entered content is
// never overwritten.
package assistant

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/innovagov/policyhub/llm"
	"github.com/innovagov/policyhub/policy"
)

// Assistant completes policy drafts using the structured AI boundary.
type Assistant struct {
	invoker llm.Invoker
	logger  *slog.Logger
}

// New creates a drafting assistant.
func New(invoker llm.Invoker, logger *slog.Logger) *Assistant {
	if logger == nil {
		logger = slog.Default()
	}
	return &Assistant{invoker: invoker, logger: logger}
}

// Result is the outcome of one assistance call.
type Result struct {
	// Draft is the merged draft. The input draft is not mutated.
	Draft policy.Draft

	// AdvancedStage is true when a free-text-only draft became a
	// structured one, signalling a UI wizard to move forward.
	AdvancedStage bool
}

// Assist issues exactly one LLM request and merges the structured response
// into draft, filling only empty fields. On any error the returned draft
// is untouched and the operator may simply retry.
func (a *Assistant) Assist(ctx context.Context, draft policy.Draft, freeText string, linked []policy.ContextSource) (*Result, error) {
	freeText = strings.TrimSpace(freeText)
	hasContent := strings.TrimSpace(draft.TitleAr) != "" || strings.TrimSpace(draft.RecommendationTextAr) != ""
	if freeText == "" && !hasContent {
		return nil, policy.InvalidInputf("provide notes or a partially filled draft before requesting assistance")
	}

	wasUnstructured := !hasContent

	prompt := llm.Prompt{
		System:    draftSystemPrompt,
		User:      buildUserPrompt(&draft, freeText, linked),
		MaxTokens: 4096,
	}

	raw, err := a.invoker.Invoke(ctx, prompt, draftResponseSchema)
	if err != nil {
		return nil, fmt.Errorf("draft assistance: %w", err)
	}

	var resp draftResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		// The payload already passed schema validation; a decode failure
		// here means the schema and struct drifted apart.
		return nil, fmt.Errorf("%w: decode draft response: %v", policy.ErrMalformedResponse, err)
	}

	merged := draft.Clone()
	filled := merge(&merged, &resp)
	merged.Normalize()

	a.logger.Debug("Draft assistance applied",
		"fields_filled", filled,
		"advanced_stage", wasUnstructured)

	structured := strings.TrimSpace(merged.TitleAr) != "" || strings.TrimSpace(merged.RecommendationTextAr) != ""
	return &Result{
		Draft:         merged,
		AdvancedStage: wasUnstructured && structured,
	}, nil
}

// buildUserPrompt renders the current field values, linked entity
// summaries, and operator notes into the drafting prompt.
func buildUserPrompt(draft *policy.Draft, freeText string, linked []policy.ContextSource) string {
	linkedBlock := ""
	if len(linked) > 0 {
		var sb strings.Builder
		sb.WriteString("\n")
		sb.WriteString(linkedContextHeader)
		sb.WriteString("\n")
		for _, src := range linked {
			sb.WriteString("- ")
			sb.WriteString(src.Summarize())
			sb.WriteString("\n")
		}
		linkedBlock = sb.String()
	}

	return fmt.Sprintf(draftUserPrompt, renderFields(draft), linkedBlock, freeText)
}

// renderFields lists every draft field with its current value so the model
// knows what to preserve and what to fill.
func renderFields(d *policy.Draft) string {
	var sb strings.Builder
	writeField := func(name, value string) {
		sb.WriteString("- ")
		sb.WriteString(name)
		sb.WriteString(": ")
		if strings.TrimSpace(value) == "" {
			sb.WriteString("(empty)")
		} else {
			sb.WriteString(value)
		}
		sb.WriteString("\n")
	}

	writeField("title_ar", d.TitleAr)
	writeField("recommendation_text_ar", d.RecommendationTextAr)
	writeField("regulatory_framework", d.RegulatoryFramework)
	writeField("policy_type", string(d.PolicyType))
	writeField("implementation_complexity", string(d.ImplementationComplexity))
	if d.TimelineMonths > 0 {
		writeField("timeline_months", fmt.Sprintf("%d", d.TimelineMonths))
	} else {
		writeField("timeline_months", "")
	}
	writeField("priority_level", string(d.PriorityLevel))
	if d.ImpactScore != nil {
		writeField("impact_score", fmt.Sprintf("%d", *d.ImpactScore))
	} else {
		writeField("impact_score", "")
	}
	writeField("implementation_steps", renderSteps(d.ImplementationSteps))
	writeField("success_metrics", renderMetrics(d.SuccessMetrics))
	writeField("affected_stakeholders", strings.Join(d.AffectedStakeholders, ", "))
	writeField("stakeholder_involvement_ar", d.StakeholderInvolvementAr)

	return sb.String()
}

func renderSteps(steps []policy.Step) string {
	if len(steps) == 0 {
		return ""
	}
	parts := make([]string, len(steps))
	for i, s := range steps {
		text := s.Ar
		if text == "" {
			text = s.En
		}
		parts[i] = fmt.Sprintf("%d. %s", i+1, text)
	}
	return strings.Join(parts, " ")
}

func renderMetrics(metrics []policy.Metric) string {
	if len(metrics) == 0 {
		return ""
	}
	parts := make([]string, len(metrics))
	for i, m := range metrics {
		parts[i] = fmt.Sprintf("%s (%s %s)", m.MetricAr, m.Target, m.Unit)
	}
	return strings.Join(parts, "; ")
}
