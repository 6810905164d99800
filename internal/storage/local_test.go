package storage

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/mfenderov/sitegen/pkg/models"
)

func TestLocal_RoundTrip(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "sites")
	store, err := NewLocal(dir)
	if err != nil {
		t.Fatalf("NewLocal() error = %v", err)
	}
	ctx := context.Background()
	id := models.NewSiteID()

	path, err := store.PutSite(ctx, id, "<html>ML</html>")
	if err != nil {
		t.Fatalf("PutSite() error = %v", err)
	}
	if path != filepath.Join(dir, "site_"+id+".html") {
		t.Errorf("PutSite() path = %q", path)
	}

	name, err := store.PutImage(ctx, id, []byte("png"))
	if err != nil {
		t.Fatalf("PutImage() error = %v", err)
	}
	if name != "image_"+id+".png" {
		t.Errorf("PutImage() name = %q", name)
	}

	doc := &models.Document{SiteID: id, Plan: models.Plan{Title: "ML 101"}, ImagePath: name, CreatedAt: time.Now().UTC()}
	if err := store.PutRecord(ctx, doc); err != nil {
		t.Fatalf("PutRecord() error = %v", err)
	}

	html, err := store.GetSite(ctx, id)
	if err != nil || html != "<html>ML</html>" {
		t.Errorf("GetSite() = %q, %v", html, err)
	}
	img, err := store.GetImage(ctx, name)
	if err != nil || string(img) != "png" {
		t.Errorf("GetImage() = %q, %v", img, err)
	}
	got, err := store.GetRecord(ctx, id)
	if err != nil {
		t.Fatalf("GetRecord() error = %v", err)
	}
	if got.Title() != "ML 101" || got.ImagePath != name {
		t.Errorf("GetRecord() = %+v", got)
	}
}

func TestLocal_ListRecords(t *testing.T) {
	dir := t.TempDir()
	store, _ := NewLocal(dir)
	ctx := context.Background()
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	for i, title := range []string{"second", "first", "third"} {
		offset := []time.Duration{time.Hour, 0, 2 * time.Hour}[i]
		doc := &models.Document{SiteID: models.NewSiteID(), Plan: models.Plan{Title: title}, CreatedAt: base.Add(offset)}
		if err := store.PutRecord(ctx, doc); err != nil {
			t.Fatalf("PutRecord() error = %v", err)
		}
	}
	os.WriteFile(filepath.Join(dir, "site_broken.json"), []byte("{"), 0o644)
	os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644)

	records, err := store.ListRecords(ctx)
	if err != nil {
		t.Fatalf("ListRecords() error = %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("ListRecords() returned %d records, want 3", len(records))
	}
	for i, want := range []string{"first", "second", "third"} {
		if records[i].Title() != want {
			t.Errorf("records[%d] = %q, want %q", i, records[i].Title(), want)
		}
	}
}

func TestLocal_NotFoundAndValidation(t *testing.T) {
	store, _ := NewLocal(t.TempDir())
	ctx := context.Background()

	if _, err := store.GetSite(ctx, models.NewSiteID()); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetSite() error = %v, want ErrNotFound", err)
	}
	if _, err := store.GetSite(ctx, "../secret"); err == nil || errors.Is(err, ErrNotFound) {
		t.Errorf("GetSite() with traversal error = %v, want validation error", err)
	}
	if _, err := store.GetImage(ctx, "site_abc.html"); err == nil {
		t.Error("GetImage() should reject non image names")
	}
	if _, err := NewLocal(""); err == nil {
		t.Error("NewLocal(\"\") expected error")
	}
}

func TestValidImageName(t *testing.T) {
	tests := []struct {
		name string
		want bool
	}{
		{"image_abc123.png", true},
		{"image_.png", false},
		{"image_abc.jpg", false},
		{"site_abc.png", false},
		{"image_../x.png", false},
		{"image_a/b.png", false},
	}
	for _, tt := range tests {
		if got := ValidImageName(tt.name); got != tt.want {
			t.Errorf("ValidImageName(%q) = %v, want %v", tt.name, got, tt.want)
		}
	}
}
