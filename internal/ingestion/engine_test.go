package ingestion

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/mfenderov/sitegen/internal/storage"
	"github.com/mfenderov/sitegen/pkg/models"
)

type fakeIndex struct {
	created   bool
	refreshed bool
	sites     []models.IndexedSite
	failID    string
}

func (f *fakeIndex) CreateIndex(context.Context) error { f.created = true; return nil }
func (f *fakeIndex) Refresh(context.Context) error     { f.refreshed = true; return nil }

func (f *fakeIndex) IndexSite(_ context.Context, site models.IndexedSite) error {
	if site.SiteID == f.failID {
		return errors.New("mapping conflict")
	}
	f.sites = append(f.sites, site)
	return nil
}

type fakeEmbedder struct{ err error }

func (f fakeEmbedder) Embed(context.Context, string) ([]float32, error) {
	if f.err != nil {
		return nil, f.err
	}
	return []float32{0.1, 0.2}, nil
}

func testDoc(id, title string) *models.Document {
	return &models.Document{
		SiteID:    id,
		Topic:     "Go",
		Style:     models.StyleTechnical,
		Plan:      models.Plan{Title: title, Sections: []models.SectionSpec{{Heading: "Intro"}}},
		Sections:  []models.GeneratedSection{{Heading: "Intro", Content: "Go is simple."}},
		CreatedAt: time.Now().UTC(),
	}
}

func TestIndexDocument(t *testing.T) {
	tests := []struct {
		name          string
		markup        string
		embedder      Embedder
		wantContent   string
		wantEmbedding bool
	}{
		{
			name:        "markup converted to markdown",
			markup:      "<html><body><h2>Intro</h2><p>Go is <strong>simple</strong>.</p></body></html>",
			wantContent: "**simple**",
		},
		{
			name:        "section text without markup",
			wantContent: "Go is simple.",
		},
		{
			name:          "embedding attached",
			embedder:      fakeEmbedder{},
			wantContent:   "Go is simple.",
			wantEmbedding: true,
		},
		{
			name:        "embedding failure still indexes",
			embedder:    fakeEmbedder{err: errors.New("dmr down")},
			wantContent: "Go is simple.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			index := &fakeIndex{}
			e := New(nil, index, tt.embedder)

			if err := e.IndexDocument(context.Background(), testDoc("a1", "Go 101"), "run1", tt.markup); err != nil {
				t.Fatalf("IndexDocument() error = %v", err)
			}
			if len(index.sites) != 1 {
				t.Fatalf("indexed = %d, want 1", len(index.sites))
			}
			site := index.sites[0]
			if site.SiteID != "a1" || site.RunID != "run1" || site.Title != "Go 101" {
				t.Errorf("site = %+v", site)
			}
			if !strings.Contains(site.Content, tt.wantContent) {
				t.Errorf("Content = %q, want to contain %q", site.Content, tt.wantContent)
			}
			if got := len(site.Embedding) > 0; got != tt.wantEmbedding {
				t.Errorf("Embedding = %v, wantEmbedding %v", site.Embedding, tt.wantEmbedding)
			}
		})
	}
}

func TestReindex(t *testing.T) {
	store, err := storage.NewLocal(t.TempDir())
	if err != nil {
		t.Fatalf("NewLocal() error = %v", err)
	}
	ctx := context.Background()

	for _, d := range []*models.Document{testDoc("a1", "First"), testDoc("b2", "Second"), testDoc("c3", "Broken")} {
		if err := store.PutRecord(ctx, d); err != nil {
			t.Fatalf("PutRecord() error = %v", err)
		}
	}
	if _, err := store.PutSite(ctx, "a1", "<html><body><p>First page</p></body></html>"); err != nil {
		t.Fatalf("PutSite() error = %v", err)
	}

	index := &fakeIndex{failID: "c3"}
	result, err := New(store, index, nil).Reindex(ctx)
	if err != nil {
		t.Fatalf("Reindex() error = %v", err)
	}

	if !index.created || !index.refreshed {
		t.Error("Reindex should create and refresh the index")
	}
	if result.DocsIndexed != 2 {
		t.Errorf("DocsIndexed = %d, want 2", result.DocsIndexed)
	}
	if len(result.Errors) != 1 {
		t.Errorf("Errors = %v, want 1", result.Errors)
	}
}

func TestReindex_RequiresStore(t *testing.T) {
	if _, err := New(nil, &fakeIndex{}, nil).Reindex(context.Background()); err == nil {
		t.Error("Reindex() expected error without store")
	}
}
