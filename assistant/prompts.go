package assistant

// draftSystemPrompt is the system prompt for policy drafting assistance.
const draftSystemPrompt = `You are a policy drafting assistant for a government innovation platform. You turn operator notes into structured, well-formed policy recommendations written in Arabic.

Always respond with valid JSON. Do not include any text outside the JSON object.`

// draftUserPrompt is the user prompt template for drafting assistance.
// Placeholders, in order: current field values, linked entity context,
// operator free text.
const draftUserPrompt = `Complete the policy draft below. Some fields already contain operator-entered content; treat those as fixed facts and use them as context. Propose values ONLY for the fields that are currently empty.

Current draft fields (empty fields are the ones to fill):
%s
%s
Operator notes:
---
%s
---

Return a JSON object with these fields:

1. **title_ar**: A concise policy title in Arabic.
2. **recommendation_text_ar**: The full policy recommendation in Arabic (2-5 paragraphs).
3. **regulatory_framework**: The regulatory framework the policy falls under, if identifiable.
4. **regulatory_change_needed**: true if implementing the policy requires regulatory change.
5. **policy_type**: Exactly one of "new_regulation", "amendment", "guideline", "standard", "bylaw", "other".
6. **implementation_complexity**: Exactly one of "low", "medium", "high", "very_high".
7. **timeline_months**: Estimated implementation timeline as a positive integer number of months.
8. **priority_level**: Exactly one of "low", "medium", "high", "critical".
9. **impact_score**: Estimated impact on a 0-100 scale.
10. **implementation_steps**: Ordered execution steps, each {"en": "...", "ar": "..."}. Order is meaningful.
11. **success_metrics**: Measurable outcomes, each {"metric_ar": "...", "target": "...", "unit": "..."}.
12. **affected_stakeholders**: Stakeholder groups affected by the policy.
13. **stakeholder_involvement_ar**: How stakeholders should be involved, in Arabic.

Omit any field you cannot infer from the notes and context. Never invent facts that contradict the operator-entered content.`

// linkedContextHeader introduces resolved entity summaries in the prompt.
const linkedContextHeader = "Related platform records (for context):"
