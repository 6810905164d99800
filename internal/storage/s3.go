package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"path"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/mfenderov/sitegen/pkg/models"
)

// Config holds S3/MinIO client configuration.
type Config struct {
	Endpoint        string // "localhost:9000" for MinIO
	Bucket          string // "sitegen"
	Prefix          string // key prefix, e.g. "sites"
	AccessKeyID     string
	SecretAccessKey string
	UseSSL          bool
}

// Client stores artifacts in an S3/MinIO bucket.
type Client struct {
	minioClient *minio.Client
	bucket      string
	prefix      string
}

// New creates a new S3/MinIO client.
func New(config Config) (*Client, error) {
	if config.Endpoint == "" {
		return nil, fmt.Errorf("endpoint is required")
	}
	if config.Bucket == "" {
		return nil, fmt.Errorf("bucket is required")
	}

	minioClient, err := minio.New(config.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(config.AccessKeyID, config.SecretAccessKey, ""),
		Secure: config.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create minio client: %w", err)
	}

	return &Client{
		minioClient: minioClient,
		bucket:      config.Bucket,
		prefix:      strings.Trim(config.Prefix, "/"),
	}, nil
}

// EnsureBucket creates the bucket if it doesn't exist.
func (c *Client) EnsureBucket(ctx context.Context) error {
	exists, err := c.minioClient.BucketExists(ctx, c.bucket)
	if err != nil {
		return fmt.Errorf("failed to check bucket: %w", err)
	}
	if exists {
		return nil
	}

	err = c.minioClient.MakeBucket(ctx, c.bucket, minio.MakeBucketOptions{})
	if err != nil {
		return fmt.Errorf("failed to create bucket: %w", err)
	}
	return nil
}

// Bucket returns the bucket name.
func (c *Client) Bucket() string {
	return c.bucket
}

func (c *Client) key(name string) string {
	return path.Join(c.prefix, name)
}

func (c *Client) put(ctx context.Context, name, contentType string, data []byte) error {
	_, err := c.minioClient.PutObject(ctx, c.bucket, c.key(name), bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return fmt.Errorf("failed to put %s: %w", name, err)
	}
	return nil
}

func (c *Client) get(ctx context.Context, name string) ([]byte, error) {
	object, err := c.minioClient.GetObject(ctx, c.bucket, c.key(name), minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to get %s: %w", name, err)
	}
	defer object.Close()

	data, err := io.ReadAll(object)
	if err != nil {
		if minio.ToErrorResponse(err).Code == "NoSuchKey" {
			return nil, fmt.Errorf("%s: %w", name, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to read %s: %w", name, err)
	}
	return data, nil
}

// PutSite uploads the page and returns its s3:// location.
func (c *Client) PutSite(ctx context.Context, siteID, html string) (string, error) {
	if err := checkID(siteID); err != nil {
		return "", err
	}
	name := SiteFileName(siteID)
	if err := c.put(ctx, name, "text/html; charset=utf-8", []byte(html)); err != nil {
		return "", err
	}
	return fmt.Sprintf("s3://%s/%s", c.bucket, c.key(name)), nil
}

// PutImage uploads the image and returns its file name.
func (c *Client) PutImage(ctx context.Context, siteID string, png []byte) (string, error) {
	if err := checkID(siteID); err != nil {
		return "", err
	}
	name := ImageFileName(siteID)
	return name, c.put(ctx, name, "image/png", png)
}

// PutRecord uploads the generation record as JSON.
func (c *Client) PutRecord(ctx context.Context, doc *models.Document) error {
	if err := checkID(doc.SiteID); err != nil {
		return err
	}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal record: %w", err)
	}
	return c.put(ctx, RecordFileName(doc.SiteID), "application/json", data)
}

// GetSite downloads the page of siteID.
func (c *Client) GetSite(ctx context.Context, siteID string) (string, error) {
	if err := checkID(siteID); err != nil {
		return "", err
	}
	data, err := c.get(ctx, SiteFileName(siteID))
	return string(data), err
}

// GetImage downloads an image by file name.
func (c *Client) GetImage(ctx context.Context, filename string) ([]byte, error) {
	if !ValidImageName(filename) {
		return nil, fmt.Errorf("invalid image name %q", filename)
	}
	return c.get(ctx, filename)
}

// GetRecord downloads the record of siteID.
func (c *Client) GetRecord(ctx context.Context, siteID string) (*models.Document, error) {
	if err := checkID(siteID); err != nil {
		return nil, err
	}
	data, err := c.get(ctx, RecordFileName(siteID))
	if err != nil {
		return nil, err
	}
	var doc models.Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to unmarshal record: %w", err)
	}
	return &doc, nil
}

// ListRecords returns every record under the prefix, oldest first.
func (c *Client) ListRecords(ctx context.Context) ([]*models.Document, error) {
	listPrefix := ""
	if c.prefix != "" {
		listPrefix = c.prefix + "/"
	}
	objectCh := c.minioClient.ListObjects(ctx, c.bucket, minio.ListObjectsOptions{
		Prefix:    listPrefix + "site_",
		Recursive: true,
	})

	var out []*models.Document
	for object := range objectCh {
		if object.Err != nil {
			return nil, fmt.Errorf("failed to list objects: %w", object.Err)
		}
		name := path.Base(object.Key)
		if !strings.HasSuffix(name, ".json") {
			continue
		}
		id := strings.TrimSuffix(strings.TrimPrefix(name, "site_"), ".json")
		doc, err := c.GetRecord(ctx, id)
		if err != nil {
			slog.Warn("Skipping unreadable record", "key", object.Key, "error", err)
			continue
		}
		out = append(out, doc)
	}
	sortRecords(out)
	return out, nil
}
