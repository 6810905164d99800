// Package storage persists generated artifacts keyed by site id.
package storage

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/mfenderov/sitegen/pkg/models"
)

// ErrNotFound is returned when an artifact does not exist.
var ErrNotFound = errors.New("artifact not found")

// Store is the persisted artifact layout. Every document is written once
// as site_{id}.html plus its record site_{id}.json, and its image, if any,
// as image_{id}.png.
type Store interface {
	PutSite(ctx context.Context, siteID, html string) (string, error)
	PutImage(ctx context.Context, siteID string, png []byte) (string, error)
	PutRecord(ctx context.Context, doc *models.Document) error
	GetSite(ctx context.Context, siteID string) (string, error)
	GetImage(ctx context.Context, filename string) ([]byte, error)
	GetRecord(ctx context.Context, siteID string) (*models.Document, error)
	ListRecords(ctx context.Context) ([]*models.Document, error)
}

// SiteFileName returns the page file name for siteID.
func SiteFileName(siteID string) string {
	return fmt.Sprintf("site_%s.html", siteID)
}

// ImageFileName returns the image file name for siteID.
func ImageFileName(siteID string) string {
	return fmt.Sprintf("image_%s.png", siteID)
}

// RecordFileName returns the record file name for siteID.
func RecordFileName(siteID string) string {
	return fmt.Sprintf("site_%s.json", siteID)
}

// ValidImageName reports whether name is an image_*.png file name with no
// path components.
func ValidImageName(name string) bool {
	if !strings.HasPrefix(name, "image_") || !strings.HasSuffix(name, ".png") {
		return false
	}
	id := strings.TrimSuffix(strings.TrimPrefix(name, "image_"), ".png")
	return models.ValidSiteID(id)
}

func checkID(siteID string) error {
	if !models.ValidSiteID(siteID) {
		return fmt.Errorf("invalid site id %q", siteID)
	}
	return nil
}

// sortRecords orders records oldest first.
func sortRecords(records []*models.Document) {
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].CreatedAt.Before(records[j].CreatedAt)
	})
}
