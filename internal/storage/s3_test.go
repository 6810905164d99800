package storage

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/mfenderov/sitegen/pkg/models"
)

func TestNew_Validation(t *testing.T) {
	tests := []struct {
		name    string
		config  Config
		wantErr bool
	}{
		{
			name:    "empty endpoint",
			config:  Config{Endpoint: "", Bucket: "test"},
			wantErr: true,
		},
		{
			name:    "empty bucket",
			config:  Config{Endpoint: "localhost:9000", Bucket: ""},
			wantErr: true,
		},
		{
			name: "valid config",
			config: Config{
				Endpoint:        "localhost:9000",
				Bucket:          "test",
				Prefix:          "sites",
				AccessKeyID:     "minioadmin",
				SecretAccessKey: "minioadmin",
			},
			wantErr: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.config)
			if (err != nil) != tt.wantErr {
				t.Errorf("New() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

// TestIntegration_S3Operations tests actual S3 operations against MinIO.
// Skip if MinIO is not running.
func TestIntegration_S3Operations(t *testing.T) {
	endpoint := os.Getenv("MINIO_ENDPOINT")
	if endpoint == "" {
		endpoint = "localhost:9000"
	}

	client, err := New(Config{
		Endpoint:        endpoint,
		Bucket:          "sitegen-test",
		Prefix:          "it-" + models.NewSiteID()[:8],
		AccessKeyID:     "minioadmin",
		SecretAccessKey: "minioadmin",
		UseSSL:          false,
	})
	if err != nil {
		t.Fatalf("Failed to create client: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := client.EnsureBucket(ctx); err != nil {
		t.Skipf("MinIO not available, skipping integration test: %v", err)
	}

	doc := &models.Document{SiteID: models.NewSiteID(), Plan: models.Plan{Title: "ML 101"}, CreatedAt: time.Now().UTC()}

	t.Run("PutAndGetSite", func(t *testing.T) {
		loc, err := client.PutSite(ctx, doc.SiteID, "<html>ML</html>")
		if err != nil {
			t.Fatalf("PutSite() error = %v", err)
		}
		if loc == "" {
			t.Error("PutSite() returned empty location")
		}
		html, err := client.GetSite(ctx, doc.SiteID)
		if err != nil {
			t.Fatalf("GetSite() error = %v", err)
		}
		if html != "<html>ML</html>" {
			t.Errorf("GetSite() = %q", html)
		}
	})

	t.Run("PutAndListRecords", func(t *testing.T) {
		if err := client.PutRecord(ctx, doc); err != nil {
			t.Fatalf("PutRecord() error = %v", err)
		}
		records, err := client.ListRecords(ctx)
		if err != nil {
			t.Fatalf("ListRecords() error = %v", err)
		}
		if len(records) != 1 || records[0].SiteID != doc.SiteID {
			t.Errorf("ListRecords() = %v", records)
		}
	})

	t.Run("MissingSite", func(t *testing.T) {
		_, err := client.GetSite(ctx, models.NewSiteID())
		if !errors.Is(err, ErrNotFound) {
			t.Errorf("GetSite() error = %v, want ErrNotFound", err)
		}
	})
}
