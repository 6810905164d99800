// Package markdown classifies evaluation inputs and renders Markdown ones
// to HTML so every input reaches the evaluator as markup.
package markdown

import (
	"bytes"
	"fmt"
	"path"
	"regexp"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

// Kind of an evaluation input.
type Kind int

const (
	KindHTML Kind = iota
	KindMarkdown
	KindText
)

func (k Kind) String() string {
	switch k {
	case KindMarkdown:
		return "markdown"
	case KindText:
		return "text"
	default:
		return "html"
	}
}

var (
	headingPattern = regexp.MustCompile(`(?m)^#{1,6}\s+\S`)
	listPattern    = regexp.MustCompile(`(?m)^[\-\*]\s+\S`)
	linkPattern    = regexp.MustCompile(`\[.+?\]\(.+?\)`)

	md = goldmark.New(goldmark.WithExtensions(extension.GFM))
)

// Classify decides how content should be read. name is a file path or
// URL. Checks in order: Content-Type, extension, then content heuristics.
func Classify(name, contentType, content string) Kind {
	ct := strings.ToLower(contentType)
	switch {
	case strings.HasPrefix(ct, "text/markdown"), strings.HasPrefix(ct, "text/x-markdown"):
		return KindMarkdown
	case strings.HasPrefix(ct, "text/html"):
		return KindHTML
	}

	switch strings.ToLower(path.Ext(stripQuery(name))) {
	case ".md", ".markdown":
		return KindMarkdown
	case ".html", ".htm":
		return KindHTML
	case ".txt":
		return KindText
	}

	trimmed := strings.TrimSpace(content)
	if looksLikeHTML(trimmed) {
		return KindHTML
	}
	if hasMarkdownPatterns(trimmed) {
		return KindMarkdown
	}
	if strings.HasPrefix(ct, "text/plain") || !strings.Contains(trimmed, "<") {
		return KindText
	}
	return KindHTML
}

// ToHTML renders Markdown source to an HTML fragment.
func ToHTML(source string) (string, error) {
	var buf bytes.Buffer
	if err := md.Convert([]byte(source), &buf); err != nil {
		return "", fmt.Errorf("failed to render markdown: %w", err)
	}
	return buf.String(), nil
}

func stripQuery(name string) string {
	if i := strings.IndexAny(name, "?#"); i >= 0 {
		return name[:i]
	}
	return name
}

func looksLikeHTML(content string) bool {
	lower := strings.ToLower(content)
	return strings.HasPrefix(lower, "<!doctype") ||
		strings.HasPrefix(lower, "<html") ||
		strings.HasPrefix(lower, "<head") ||
		strings.HasPrefix(lower, "<body")
}

func hasMarkdownPatterns(content string) bool {
	return headingPattern.MatchString(content) ||
		listPattern.MatchString(content) ||
		linkPattern.MatchString(content)
}
