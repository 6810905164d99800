package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/mfenderov/sitegen/pkg/models"
)

// Local stores artifacts as flat files in one directory.
type Local struct {
	dir string
}

// NewLocal creates dir if needed.
func NewLocal(dir string) (*Local, error) {
	if dir == "" {
		return nil, fmt.Errorf("directory is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create sites directory: %w", err)
	}
	return &Local{dir: dir}, nil
}

// Dir returns the base directory.
func (l *Local) Dir() string {
	return l.dir
}

// PutSite writes the page and returns its path.
func (l *Local) PutSite(_ context.Context, siteID, html string) (string, error) {
	if err := checkID(siteID); err != nil {
		return "", err
	}
	p := filepath.Join(l.dir, SiteFileName(siteID))
	if err := os.WriteFile(p, []byte(html), 0o644); err != nil {
		return "", fmt.Errorf("failed to write site: %w", err)
	}
	slog.Debug("Site saved", "path", p)
	return p, nil
}

// PutImage writes the image and returns its file name.
func (l *Local) PutImage(_ context.Context, siteID string, png []byte) (string, error) {
	if err := checkID(siteID); err != nil {
		return "", err
	}
	name := ImageFileName(siteID)
	if err := os.WriteFile(filepath.Join(l.dir, name), png, 0o644); err != nil {
		return "", fmt.Errorf("failed to write image: %w", err)
	}
	return name, nil
}

// PutRecord writes the generation record as JSON.
func (l *Local) PutRecord(_ context.Context, doc *models.Document) error {
	if err := checkID(doc.SiteID); err != nil {
		return err
	}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal record: %w", err)
	}
	if err := os.WriteFile(filepath.Join(l.dir, RecordFileName(doc.SiteID)), data, 0o644); err != nil {
		return fmt.Errorf("failed to write record: %w", err)
	}
	return nil
}

// GetSite reads the page of siteID.
func (l *Local) GetSite(_ context.Context, siteID string) (string, error) {
	if err := checkID(siteID); err != nil {
		return "", err
	}
	data, err := l.read(SiteFileName(siteID))
	return string(data), err
}

// GetImage reads an image by file name.
func (l *Local) GetImage(_ context.Context, filename string) ([]byte, error) {
	if !ValidImageName(filename) {
		return nil, fmt.Errorf("invalid image name %q", filename)
	}
	return l.read(filename)
}

// GetRecord reads the record of siteID.
func (l *Local) GetRecord(_ context.Context, siteID string) (*models.Document, error) {
	if err := checkID(siteID); err != nil {
		return nil, err
	}
	data, err := l.read(RecordFileName(siteID))
	if err != nil {
		return nil, err
	}
	var doc models.Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to unmarshal record: %w", err)
	}
	return &doc, nil
}

// ListRecords returns every stored record, oldest first. Unreadable
// records are logged and skipped.
func (l *Local) ListRecords(ctx context.Context) ([]*models.Document, error) {
	entries, err := os.ReadDir(l.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to list sites directory: %w", err)
	}
	var out []*models.Document
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasPrefix(name, "site_") || !strings.HasSuffix(name, ".json") {
			continue
		}
		id := strings.TrimSuffix(strings.TrimPrefix(name, "site_"), ".json")
		doc, err := l.GetRecord(ctx, id)
		if err != nil {
			slog.Warn("Skipping unreadable record", "file", name, "error", err)
			continue
		}
		out = append(out, doc)
	}
	sortRecords(out)
	return out, nil
}

func (l *Local) read(name string) ([]byte, error) {
	data, err := os.ReadFile(filepath.Join(l.dir, name))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%s: %w", name, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", name, err)
	}
	return data, nil
}
