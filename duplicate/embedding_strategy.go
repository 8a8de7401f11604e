package duplicate

import (
	"context"
	"sort"

	"github.com/innovagov/policyhub/embedding"
	"github.com/innovagov/policyhub/policy"
)

// EmbeddingStrategy ranks candidates by cosine similarity of stored
// vectors. Cheap and precise, but only usable once the draft has been
// embedded. Its MinEmbedScore threshold (inclusive, default 70) is
// calibrated for cosine scores and not comparable with the LLM strategy's.
type EmbeddingStrategy struct{}

// NewEmbeddingStrategy creates the cosine similarity strategy.
func NewEmbeddingStrategy() *EmbeddingStrategy {
	return &EmbeddingStrategy{}
}

// Name implements Strategy.
func (s *EmbeddingStrategy) Name() string { return "embedding" }

// Applicable reports whether this strategy can run: the draft has a vector
// and at least one candidate (other than the draft itself) has a vector of
// the same dimension.
func (s *EmbeddingStrategy) Applicable(draft *policy.Draft, candidates []*policy.Policy) bool {
	if len(draft.Embedding) == 0 {
		return false
	}
	for _, c := range candidates {
		if c.ID != draft.ID && len(c.Embedding) == len(draft.Embedding) && len(c.Embedding) > 0 {
			return true
		}
	}
	return false
}

// Detect implements Strategy. Candidates without an equal-dimension vector
// are skipped, as is the draft's own record during an edit flow. Equal
// scores order by ascending policy ID to keep results deterministic.
func (s *EmbeddingStrategy) Detect(_ context.Context, draft *policy.Draft, candidates []*policy.Policy, opts Options) ([]Match, error) {
	opts = opts.withDefaults()

	matches := make([]Match, 0, opts.K)
	for _, c := range candidates {
		if c.ID == draft.ID {
			continue
		}
		if len(c.Embedding) == 0 || len(c.Embedding) != len(draft.Embedding) {
			continue
		}

		score := embedding.Score(embedding.Cosine(draft.Embedding, c.Embedding))
		if score < opts.MinEmbedScore {
			continue
		}
		matches = append(matches, Match{Policy: c, Score: score})
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
