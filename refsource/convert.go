package refsource

import (
	"bytes"
	"fmt"
	"net/url"
	"regexp"
	"strings"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/JohannesKaufmann/html-to-markdown/plugin"
	readability "github.com/go-shiori/go-readability"
	"golang.org/x/net/html"
)

var excessiveLinesRe = regexp.MustCompile(`\n{4,}`)

// Extracted is the readable form of a fetched reference page.
type Extracted struct {
	Title    string
	Markdown string
	Text     string
}

// Converter turns raw reference HTML into markdown plus plain text.
type Converter struct {
	md *md.Converter
}

// NewConverter creates a converter with GitHub-flavored markdown output.
func NewConverter() *Converter {
	converter := md.NewConverter("", true, nil)
	converter.Use(plugin.GitHubFlavored())
	return &Converter{md: converter}
}

// Convert extracts the readable article from body and renders it as
// markdown. pageURL resolves relative links; it must already be
// validated.
func (c *Converter) Convert(body []byte, pageURL *url.URL) (*Extracted, error) {
	article, err := readability.FromReader(bytes.NewReader(body), pageURL)
	if err != nil {
		return c.convertRaw(body)
	}

	markdown, err := c.md.ConvertString(article.Content)
	if err != nil {
		return nil, fmt.Errorf("convert to markdown: %w", err)
	}

	title := strings.TrimSpace(article.Title)
	markdown = cleanMarkdown(markdown)
	if title == "" {
		title = firstHeading(markdown)
	}

	return &Extracted{
		Title:    title,
		Markdown: markdown,
		Text:     strings.TrimSpace(article.TextContent),
	}, nil
}

// convertRaw handles pages readability cannot parse into an article: the
// whole document is converted and the title pulled from the head.
func (c *Converter) convertRaw(body []byte) (*Extracted, error) {
	markdown, err := c.md.ConvertString(string(body))
	if err != nil {
		return nil, fmt.Errorf("convert to markdown: %w", err)
	}
	markdown = cleanMarkdown(markdown)

	title := htmlTitle(body)
	if title == "" {
		title = firstHeading(markdown)
	}
	return &Extracted{Title: title, Markdown: markdown, Text: markdown}, nil
}

// htmlTitle extracts the document title element.
func htmlTitle(body []byte) string {
	doc, err := html.Parse(bytes.NewReader(body))
	if err != nil {
		return ""
	}

	var title string
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "title" && n.FirstChild != nil {
			title = strings.TrimSpace(n.FirstChild.Data)
			return
		}
		for c := n.FirstChild; c != nil && title == ""; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return title
}

// firstHeading returns the first H1 text in markdown.
func firstHeading(markdown string) string {
	for _, line := range strings.Split(markdown, "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "# ") {
			return strings.TrimSpace(trimmed[2:])
		}
	}
	return ""
}

// cleanMarkdown collapses excessive blank lines and trims trailing
// whitespace per line.
func cleanMarkdown(content string) string {
	content = excessiveLinesRe.ReplaceAllString(content, "\n\n\n")
	lines := strings.Split(content, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimRight(line, " \t")
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}
