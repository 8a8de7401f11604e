package refsource

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
)

// maxSummaryRunes bounds how much reference text reaches a drafting
// prompt.
const maxSummaryRunes = 1500

// Reference is a resolved regulatory reference ready for prompt use.
type Reference struct {
	URL      string
	Domain   string
	Title    string
	Markdown string

	// Summary is the plain article text truncated for prompt context.
	Summary string
}

// Summarize renders the reference as a single prompt-ready line.
func (r *Reference) Summarize() string {
	line := fmt.Sprintf("Reference (%s): %s", r.Domain, r.Title)
	if r.Summary != "" {
		line += " | " + r.Summary
	}
	return line
}

// Resolver fetches and extracts reference pages.
type Resolver struct {
	fetcher   *Fetcher
	converter *Converter
	logger    *slog.Logger
}

// NewResolver creates a Resolver.
func NewResolver(fetcher *Fetcher, logger *slog.Logger) *Resolver {
	if logger == nil {
		logger = slog.Default()
	}
	return &Resolver{
		fetcher:   fetcher,
		converter: NewConverter(),
		logger:    logger,
	}
}

// Resolve fetches rawURL and returns its readable reference form.
func (r *Resolver) Resolve(ctx context.Context, rawURL string) (*Reference, error) {
	body, err := r.fetcher.Fetch(ctx, rawURL)
	if err != nil {
		return nil, fmt.Errorf("fetch reference: %w", err)
	}

	parsed, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("parse reference URL: %w", err)
	}

	extracted, err := r.converter.Convert(body, parsed)
	if err != nil {
		return nil, fmt.Errorf("extract reference: %w", err)
	}

	ref := &Reference{
		URL:      rawURL,
		Domain:   parsed.Hostname(),
		Title:    extracted.Title,
		Markdown: extracted.Markdown,
		Summary:  truncateRunes(extracted.Text, maxSummaryRunes),
	}
	r.logger.Debug("Resolved reference",
		"url", rawURL,
		"title", ref.Title,
		"summary_runes", len([]rune(ref.Summary)))
	return ref, nil
}

// ResolveAll resolves each URL, skipping failures with a warning. A dead
// link degrades drafting context, it never blocks drafting.
func (r *Resolver) ResolveAll(ctx context.Context, urls []string) []*Reference {
	refs := make([]*Reference, 0, len(urls))
	for _, u := range urls {
		ref, err := r.Resolve(ctx, u)
		if err != nil {
			r.logger.Warn("Skipping unresolvable reference", "url", u, "error", err)
			continue
		}
		refs = append(refs, ref)
	}
	return refs
}

// truncateRunes shortens s to at most n runes on a rune boundary.
func truncateRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n]) + "..."
}
