package assistant

import (
	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/innovagov/policyhub/llm"
)

// draftResponseSchema validates the model's structured draft output before
// any of it reaches the merge step. Every field is optional; the merge rule
// decides what is used.
var draftResponseSchema = llm.MustSchema("draft_response.json", `{
	"type": "object",
	"properties": {
		"title_ar": {"type": "string"},
		"recommendation_text_ar": {"type": "string"},
		"regulatory_framework": {"type": "string"},
		"regulatory_change_needed": {"type": "boolean"},
		"policy_type": {
			"type": "string",
			"enum": ["new_regulation", "amendment", "guideline", "standard", "bylaw", "other"]
		},
		"implementation_complexity": {
			"type": "string",
			"enum": ["low", "medium", "high", "very_high"]
		},
		"timeline_months": {"type": "integer", "minimum": 1},
		"priority_level": {
			"type": "string",
			"enum": ["low", "medium", "high", "critical"]
		},
		"impact_score": {"type": "integer", "minimum": 0, "maximum": 100},
		"implementation_steps": {
			"type": "array",
			"items": {
				"type": "object",
				"properties": {
					"en": {"type": "string"},
					"ar": {"type": "string"}
				}
			}
		},
		"success_metrics": {
			"type": "array",
			"items": {
				"type": "object",
				"properties": {
					"metric_ar": {"type": "string"},
					"target": {"type": "string"},
					"unit": {"type": "string"}
				}
			}
		},
		"affected_stakeholders": {
			"type": "array",
			"items": {"type": "string"}
		},
		"stakeholder_involvement_ar": {"type": "string"}
	},
	"additionalProperties": true
}`)

// DraftResponseSchema exposes the schema for reuse in fixtures and the
// mock AI server.
func DraftResponseSchema() *jsonschema.Schema {
	return draftResponseSchema
}
