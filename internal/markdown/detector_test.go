package markdown

import (
	"strings"
	"testing"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name        string
		source      string
		contentType string
		content     string
		want        Kind
	}{
		{"markdown content type", "https://example.com/x", "text/markdown; charset=utf-8", "", KindMarkdown},
		{"x-markdown content type", "", "text/x-markdown", "", KindMarkdown},
		{"html content type wins over body", "", "text/html", "# Title", KindHTML},
		{"md extension", "notes/README.md", "", "plain words", KindMarkdown},
		{"markdown extension with query", "https://example.com/doc.markdown?raw=1", "", "", KindMarkdown},
		{"html extension", "generated_sites/site_1.html", "", "", KindHTML},
		{"txt extension", "notes.txt", "", "# not a heading here", KindText},
		{"doctype", "", "", "<!DOCTYPE html><html></html>", KindHTML},
		{"html tag", "", "", "  <html><body>x</body></html>", KindHTML},
		{"heading", "", "", "# Getting Started\n\nHello", KindMarkdown},
		{"list", "", "", "intro\n- item one\n- item two", KindMarkdown},
		{"link", "", "", "see [docs](https://example.com)", KindMarkdown},
		{"plain text", "", "", "Dogs are great pets.", KindText},
		{"fragment", "", "", "<p>Dogs</p>", KindHTML},
		{"text/plain with tags", "", "text/plain", "a < b", KindText},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Classify(tt.source, tt.contentType, tt.content); got != tt.want {
				t.Errorf("Classify() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestToHTML(t *testing.T) {
	got, err := ToHTML("# Title\n\nSome *emphasis* and a [link](https://example.com).")
	if err != nil {
		t.Fatalf("ToHTML() error = %v", err)
	}
	for _, want := range []string{"<h1>Title</h1>", "<em>emphasis</em>", `<a href="https://example.com">link</a>`} {
		if !strings.Contains(got, want) {
			t.Errorf("ToHTML() = %q, want to contain %q", got, want)
		}
	}
}

func TestKindString(t *testing.T) {
	if KindMarkdown.String() != "markdown" || KindHTML.String() != "html" || KindText.String() != "text" {
		t.Error("unexpected Kind names")
	}
}
