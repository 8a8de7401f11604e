// Package duplicate finds existing policies semantically similar to a
// draft so operators avoid creating near-duplicate entries. Two strategies
// exist: cheap cosine similarity over stored embeddings, and an LLM
// comparison fallback for drafts that have no embedding yet. Detection is
// advisory; it degrades to an empty result rather than failing the caller.
package duplicate

import (
	"context"
	"log/slog"
	"strings"

	"github.com/innovagov/policyhub/policy"
)

// Defaults for detection options. The two score thresholds are calibrated
// independently per strategy and are not numerically comparable.
const (
	DefaultK             = 3
	DefaultMinEmbedScore = 70
	DefaultMinLLMScore   = 60
	DefaultCandidateCap  = 50
)

// Options tune a detection run. Zero values fall back to the defaults.
type Options struct {
	// K is the maximum number of matches to return.
	K int

	// MinEmbedScore is the inclusive 0-100 floor for the embedding path.
	MinEmbedScore int

	// MinLLMScore is the exclusive 0-100 floor for the LLM path.
	MinLLMScore int

	// CandidateCap bounds how many policies the LLM path may consider.
	// A cost and latency control, not a correctness requirement.
	CandidateCap int
}

func (o Options) withDefaults() Options {
	if o.K <= 0 {
		o.K = DefaultK
	}
	if o.MinEmbedScore <= 0 {
		o.MinEmbedScore = DefaultMinEmbedScore
	}
	if o.MinLLMScore <= 0 {
		o.MinLLMScore = DefaultMinLLMScore
	}
	if o.CandidateCap <= 0 {
		o.CandidateCap = DefaultCandidateCap
	}
	return o
}

// Match is one detected near-duplicate.
type Match struct {
	Policy *policy.Policy `json:"policy"`

	// Score is 0-100 on the scale of the strategy that produced it.
	Score int `json:"score"`

	// Justification is a short model-written explanation. Only the LLM
	// strategy produces one.
	Justification string `json:"justification,omitempty"`
}

// Strategy locates near-duplicates among the given candidates.
type Strategy interface {
	// Name identifies the strategy in logs and results.
	Name() string

	// Detect returns matches sorted by descending score.
	Detect(ctx context.Context, draft *policy.Draft, candidates []*policy.Policy, opts Options) ([]Match, error)
}

// Detector selects between the embedding and LLM strategies based on what
// data is available at call time.
type Detector struct {
	embed  *EmbeddingStrategy
	llm    *LLMStrategy
	logger *slog.Logger
}

// NewDetector creates a detector from the two concrete strategies.
func NewDetector(embed *EmbeddingStrategy, llm *LLMStrategy, logger *slog.Logger) *Detector {
	if logger == nil {
		logger = slog.Default()
	}
	return &Detector{embed: embed, llm: llm, logger: logger}
}

// Detect runs duplicate detection for draft against candidates. The
// second return value names the strategy that produced the result, for
// instrumentation; it is empty when detection was skipped entirely.
//
// The embedding strategy runs when the draft carries an embedding and at
// least one candidate has a vector of the same dimension; a non-empty
// result from it is final. Otherwise the LLM strategy runs. LLM transport
// failures degrade to an empty result: a failed duplicate check must never
// block policy submission, it only fails to warn.
func (d *Detector) Detect(ctx context.Context, draft *policy.Draft, candidates []*policy.Policy, opts Options) ([]Match, string) {
	opts = opts.withDefaults()

	if strings.TrimSpace(draft.TitleAr) == "" && strings.TrimSpace(draft.RecommendationTextAr) == "" {
		return nil, ""
	}
	if len(candidates) == 0 {
		return nil, ""
	}

	if d.embed.Applicable(draft, candidates) {
		matches, err := d.embed.Detect(ctx, draft, candidates, opts)
		if err == nil && len(matches) > 0 {
			return matches, d.embed.Name()
		}
		if err != nil {
			d.logger.Warn("Embedding duplicate check failed, falling back",
				"error", err)
		}
	}

	matches, err := d.llm.Detect(ctx, draft, candidates, opts)
	if err != nil {
		d.logger.Warn("LLM duplicate check failed, returning no matches",
			"error", err)
		return nil, d.llm.Name()
	}
	return matches, d.llm.Name()
}
