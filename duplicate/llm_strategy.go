package duplicate

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/innovagov/policyhub/llm"
	"github.com/innovagov/policyhub/policy"
)

// maxRecommendationRunes bounds each candidate's recommendation text in
// the comparison prompt.
const maxRecommendationRunes = 200

// compareResponseSchema validates the comparison output. Ids are joined
// back to the candidate list afterwards; the schema cannot know them.
var compareResponseSchema = llm.MustSchema("compare_response.json", `{
	"type": "object",
	"properties": {
		"matches": {
			"type": "array",
			"maxItems": 3,
			"items": {
				"type": "object",
				"properties": {
					"id": {"type": "string"},
					"score": {"type": "integer", "minimum": 0, "maximum": 100},
					"justification": {"type": "string"}
				},
				"required": ["id", "score"]
			}
		}
	},
	"required": ["matches"]
}`)

// LLMStrategy compares the draft against a bounded candidate set with one
// LLM request. Slower and costlier than the embedding strategy; used when
// the draft has no vector yet. Its MinLLMScore threshold (exclusive,
// default 60) is calibrated for model-reported scores and not comparable
// with the embedding strategy's.
type LLMStrategy struct {
	invoker llm.Invoker
	logger  *slog.Logger
}

// NewLLMStrategy creates the LLM comparison strategy.
func NewLLMStrategy(invoker llm.Invoker, logger *slog.Logger) *LLMStrategy {
	if logger == nil {
		logger = slog.Default()
	}
	return &LLMStrategy{invoker: invoker, logger: logger}
}

// Name implements Strategy.
func (s *LLMStrategy) Name() string { return "llm" }

type compareResponse struct {
	Matches []struct {
		ID            string `json:"id"`
		Score         int    `json:"score"`
		Justification string `json:"justification"`
	} `json:"matches"`
}

// Detect implements Strategy. The candidate set is capped (first
// opts.CandidateCap in input order); returned ids that do not resolve to a
// candidate are dropped silently since the model may hallucinate them.
func (s *LLMStrategy) Detect(ctx context.Context, draft *policy.Draft, candidates []*policy.Policy, opts Options) ([]Match, error) {
	opts = opts.withDefaults()

	bounded := candidates
	if len(bounded) > opts.CandidateCap {
		bounded = bounded[:opts.CandidateCap]
	}

	byID := make(map[string]*policy.Policy, len(bounded))
	listing := make([]string, 0, len(bounded))
	for _, c := range bounded {
		if c.ID == draft.ID {
			continue
		}
		byID[c.ID] = c
		listing = append(listing, renderCandidate(c))
	}
	if len(byID) == 0 {
		return nil, nil
	}

	prompt := llm.Prompt{
		System: compareSystemPrompt,
		User: fmt.Sprintf(compareUserPrompt,
			renderDraft(draft),
			strings.Join(listing, "\n"),
			opts.MinLLMScore),
		MaxTokens: 1024,
	}

	raw, err := s.invoker.Invoke(ctx, prompt, compareResponseSchema)
	if err != nil {
		return nil, fmt.Errorf("duplicate comparison: %w", err)
	}

	var resp compareResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, fmt.Errorf("%w: decode comparison response: %v", policy.ErrMalformedResponse, err)
	}

	matches := make([]Match, 0, len(resp.Matches))
	for _, m := range resp.Matches {
		candidate, ok := byID[m.ID]
		if !ok {
			s.logger.Debug("Dropping unresolvable candidate id from comparison",
				"id", m.ID)
			continue
		}
		if m.Score <= opts.MinLLMScore {
			continue
		}
		matches = append(matches, Match{
			Policy:        candidate,
			Score:         m.Score,
			Justification: m.Justification,
		})
	}

	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].Score != matches[j].Score {
			return matches[i].Score > matches[j].Score
		}
		return matches[i].Policy.ID < matches[j].Policy.ID
	})

	if len(matches) > opts.K {
		matches = matches[:opts.K]
	}
	return matches, nil
}

// renderDraft projects the draft into the comparison prompt.
func renderDraft(d *policy.Draft) string {
	parts := []string{"title_ar: " + d.TitleAr}
	if d.RecommendationTextAr != "" {
		parts = append(parts, "recommendation: "+truncateRunes(d.RecommendationTextAr, maxRecommendationRunes))
	}
	if d.PolicyType != "" {
		parts = append(parts, "type: "+string(d.PolicyType))
	}
	if d.RegulatoryFramework != "" {
		parts = append(parts, "framework: "+d.RegulatoryFramework)
	}
	return strings.Join(parts, "\n")
}

// renderCandidate projects one existing policy into the fixed comparison
// fields: id, both titles, truncated recommendation, type, and framework.
func renderCandidate(p *policy.Policy) string {
	var sb strings.Builder
	sb.WriteString("- id: ")
	sb.WriteString(p.ID)
	sb.WriteString(" | title_ar: ")
	sb.WriteString(p.TitleAr)
	if p.TitleEn != "" {
		sb.WriteString(" | title_en: ")
		sb.WriteString(p.TitleEn)
	}
	if p.RecommendationTextAr != "" {
		sb.WriteString(" | recommendation: ")
		sb.WriteString(truncateRunes(p.RecommendationTextAr, maxRecommendationRunes))
	}
	if p.PolicyType != "" {
		sb.WriteString(" | type: ")
		sb.WriteString(string(p.PolicyType))
	}
	if p.RegulatoryFramework != "" {
		sb.WriteString(" | framework: ")
		sb.WriteString(p.RegulatoryFramework)
	}
	return sb.String()
}

// truncateRunes shortens s to at most n runes. Arabic text must be cut on
// rune boundaries, never bytes.
func truncateRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n]) + "..."
}
