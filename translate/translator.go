// Package translate renders the Arabic fields of a policy draft into
// English through the LLM boundary. Translation is synchronous and runs
// inside the create flow: a policy record is bilingual from the moment it
// exists, so a translation failure aborts creation entirely.
package translate

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/innovagov/policyhub/llm"
	"github.com/innovagov/policyhub/policy"
)

// Keys for the two fields every translation request carries. Steps and
// metrics use indexed keys so responses join back unambiguously.
const (
	keyTitle          = "title"
	keyRecommendation = "recommendation"
	keyStakeholder    = "stakeholder_involvement"
	keyStepPrefix     = "step_"
	keyMetricPrefix   = "metric_"
)

var translateResponseSchema = llm.MustSchema("translate_response.json", `{
	"type": "object",
	"additionalProperties": {"type": "string"}
}`)

// Fields holds the English renderings produced for a draft. Slices are
// index-aligned with the draft's steps and metrics.
type Fields struct {
	TitleEn                  string
	RecommendationTextEn     string
	StakeholderInvolvementEn string
	StepsEn                  []string
	MetricsEn                []string
}

// Translator translates draft fields with a single LLM request per draft.
type Translator struct {
	invoker llm.Invoker
	logger  *slog.Logger
}

// New creates a Translator.
func New(invoker llm.Invoker, logger *slog.Logger) *Translator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Translator{invoker: invoker, logger: logger}
}

// TranslateDraft translates all Arabic content of d into English. Any
// failure, transport, schema, or a response missing a required key, is
// reported as ErrTranslationFailed so the caller aborts creation and
// keeps the draft intact.
func (t *Translator) TranslateDraft(ctx context.Context, d *policy.Draft) (*Fields, error) {
	source := map[string]string{
		keyTitle:          policy.NormalizeArabic(d.TitleAr),
		keyRecommendation: policy.NormalizeArabic(d.RecommendationTextAr),
	}
	if source[keyTitle] == "" || source[keyRecommendation] == "" {
		return nil, policy.InvalidInputf("nothing to translate: title and recommendation are required")
	}
	if s := policy.NormalizeArabic(d.StakeholderInvolvementAr); s != "" {
		source[keyStakeholder] = s
	}
	for i, step := range d.ImplementationSteps {
		if step.En == "" && step.Ar != "" {
			source[fmt.Sprintf("%s%d", keyStepPrefix, i)] = step.Ar
		}
	}
	for i, m := range d.SuccessMetrics {
		if m.MetricEn == "" && m.MetricAr != "" {
			source[fmt.Sprintf("%s%d", keyMetricPrefix, i)] = m.MetricAr
		}
	}

	prompt := llm.Prompt{
		System:    translateSystemPrompt,
		User:      fmt.Sprintf(translateUserPrompt, renderSource(source, len(d.ImplementationSteps), len(d.SuccessMetrics))),
		MaxTokens: 4096,
	}

	raw, err := t.invoker.Invoke(ctx, prompt, translateResponseSchema)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", policy.ErrTranslationFailed, err)
	}

	var translated map[string]string
	if err := json.Unmarshal(raw, &translated); err != nil {
		return nil, fmt.Errorf("%w: decode response: %v", policy.ErrTranslationFailed, err)
	}

	out := &Fields{
		TitleEn:                  strings.TrimSpace(translated[keyTitle]),
		RecommendationTextEn:     strings.TrimSpace(translated[keyRecommendation]),
		StakeholderInvolvementEn: strings.TrimSpace(translated[keyStakeholder]),
	}
	if out.TitleEn == "" || out.RecommendationTextEn == "" {
		return nil, fmt.Errorf("%w: response missing title or recommendation", policy.ErrTranslationFailed)
	}

	out.StepsEn = make([]string, len(d.ImplementationSteps))
	for i, step := range d.ImplementationSteps {
		out.StepsEn[i] = step.En
		if v := strings.TrimSpace(translated[fmt.Sprintf("%s%d", keyStepPrefix, i)]); v != "" {
			out.StepsEn[i] = v
		}
	}
	out.MetricsEn = make([]string, len(d.SuccessMetrics))
	for i, m := range d.SuccessMetrics {
		out.MetricsEn[i] = m.MetricEn
		if v := strings.TrimSpace(translated[fmt.Sprintf("%s%d", keyMetricPrefix, i)]); v != "" {
			out.MetricsEn[i] = v
		}
	}
	return out, nil
}

// Apply writes the translated fields onto a policy record.
func (f *Fields) Apply(p *policy.Policy) {
	p.TitleEn = f.TitleEn
	p.RecommendationTextEn = f.RecommendationTextEn
	p.StakeholderInvolvementEn = f.StakeholderInvolvementEn
	for i := range p.ImplementationSteps {
		if i < len(f.StepsEn) && f.StepsEn[i] != "" {
			p.ImplementationSteps[i].En = f.StepsEn[i]
		}
	}
	for i := range p.SuccessMetrics {
		if i < len(f.MetricsEn) && f.MetricsEn[i] != "" {
			p.SuccessMetrics[i].MetricEn = f.MetricsEn[i]
		}
	}
}

// renderSource lists the keyed fields in a stable order. Indexed keys may
// be sparse when some steps or metrics already carry English text.
func renderSource(source map[string]string, nSteps, nMetrics int) string {
	var sb strings.Builder
	for _, k := range []string{keyTitle, keyRecommendation, keyStakeholder} {
		if v, ok := source[k]; ok {
			fmt.Fprintf(&sb, "%s: %s\n", k, v)
		}
	}
	for i := 0; i < nSteps; i++ {
		k := fmt.Sprintf("%s%d", keyStepPrefix, i)
		if v, ok := source[k]; ok {
			fmt.Fprintf(&sb, "%s: %s\n", k, v)
		}
	}
	for i := 0; i < nMetrics; i++ {
		k := fmt.Sprintf("%s%d", keyMetricPrefix, i)
		if v, ok := source[k]; ok {
			fmt.Fprintf(&sb, "%s: %s\n", k, v)
		}
	}
	return strings.TrimRight(sb.String(), "\n")
}
