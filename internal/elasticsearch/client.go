package elasticsearch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/elastic/go-elasticsearch/v8"

	"github.com/mfenderov/sitegen/pkg/models"
)

// Config holds Elasticsearch client configuration.
type Config struct {
	Addresses []string
	Index     string
	Username  string
	Password  string
	Dims      int // embedding dimensions; 0 disables the vector field
	Transport http.RoundTripper
}

// Client wraps the Elasticsearch client with site index operations.
type Client struct {
	es    *elasticsearch.Client
	index string
	dims  int
}

// New creates a new Elasticsearch client.
func New(config Config) (*Client, error) {
	if config.Index == "" {
		return nil, fmt.Errorf("index is required")
	}
	cfg := elasticsearch.Config{
		Addresses: config.Addresses,
		Username:  config.Username,
		Password:  config.Password,
		Transport: config.Transport,
	}

	es, err := elasticsearch.NewClient(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create ES client: %w", err)
	}

	return &Client{
		es:    es,
		index: config.Index,
		dims:  config.Dims,
	}, nil
}

// Ping checks if Elasticsearch is available.
func (c *Client) Ping(ctx context.Context) bool {
	res, err := c.es.Ping(c.es.Ping.WithContext(ctx))
	if err != nil {
		return false
	}
	defer res.Body.Close()
	return !res.IsError()
}

// indexMapping returns the ES index mapping for generated sites.
func (c *Client) indexMapping() string {
	props := map[string]any{
		"site_id":          map[string]any{"type": "keyword"},
		"run_id":           map[string]any{"type": "keyword"},
		"topic":            map[string]any{"type": "text", "fields": map[string]any{"raw": map[string]any{"type": "keyword"}}},
		"style":            map[string]any{"type": "keyword"},
		"title":            map[string]any{"type": "text"},
		"meta_description": map[string]any{"type": "text", "analyzer": "english"},
		"headings":         map[string]any{"type": "text"},
		"content":          map[string]any{"type": "text", "analyzer": "english"},
		"temperature_used": map[string]any{"type": "float"},
		"plan_fallback":    map[string]any{"type": "boolean"},
		"created_at":       map[string]any{"type": "date"},
	}
	if c.dims > 0 {
		props["embedding"] = map[string]any{
			"type":       "dense_vector",
			"dims":       c.dims,
			"index":      true,
			"similarity": "cosine",
		}
	}
	data, _ := json.Marshal(map[string]any{"mappings": map[string]any{"properties": props}})
	return string(data)
}

// CreateIndex creates the index with proper mapping.
func (c *Client) CreateIndex(ctx context.Context) error {
	res, err := c.es.Indices.Exists([]string{c.index}, c.es.Indices.Exists.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("failed to check index: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode == 200 {
		return nil
	}

	res, err = c.es.Indices.Create(
		c.index,
		c.es.Indices.Create.WithContext(ctx),
		c.es.Indices.Create.WithBody(strings.NewReader(c.indexMapping())),
	)
	if err != nil {
		return fmt.Errorf("failed to create index: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("error creating index: %s", res.String())
	}

	return nil
}

// DeleteIndex removes the index (for testing/cleanup).
func (c *Client) DeleteIndex(ctx context.Context) error {
	res, err := c.es.Indices.Delete([]string{c.index}, c.es.Indices.Delete.WithContext(ctx))
	if err != nil {
		return err
	}
	defer res.Body.Close()
	return nil
}

// IndexSite indexes a single site, keyed by site id.
func (c *Client) IndexSite(ctx context.Context, site models.IndexedSite) error {
	data, err := json.Marshal(site)
	if err != nil {
		return fmt.Errorf("failed to marshal site: %w", err)
	}

	res, err := c.es.Index(
		c.index,
		bytes.NewReader(data),
		c.es.Index.WithContext(ctx),
		c.es.Index.WithDocumentID(site.SiteID),
	)
	if err != nil {
		return fmt.Errorf("failed to index site: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("error indexing site (status %d): %s", res.StatusCode, res.String())
	}

	return nil
}

// Refresh forces an index refresh (useful for testing).
func (c *Client) Refresh(ctx context.Context) error {
	res, err := c.es.Indices.Refresh(
		c.es.Indices.Refresh.WithContext(ctx),
		c.es.Indices.Refresh.WithIndex(c.index),
	)
	if err != nil {
		return err
	}
	defer res.Body.Close()
	return nil
}

// SearchOptions narrows a search.
type SearchOptions struct {
	Limit int
	Style models.Style // empty matches every style
	// Embedding switches to hybrid BM25 + kNN search with reciprocal rank fusion.
	Embedding []float32
}

// searchResponse represents ES search response structure.
type searchResponse struct {
	Hits struct {
		Hits []struct {
			Source models.IndexedSite `json:"_source"`
		} `json:"hits"`
	} `json:"hits"`
}

var searchFields = []string{"title^3", "headings^2", "meta_description", "content", "topic"}

func (c *Client) searchBody(query string, opts SearchOptions) map[string]any {
	limit := opts.Limit
	if limit <= 0 {
		limit = 10
	}
	var filter []map[string]any
	if opts.Style != "" {
		filter = append(filter, map[string]any{"term": map[string]any{"style": opts.Style}})
	}
	boolQuery := map[string]any{
		"must": map[string]any{"multi_match": map[string]any{"query": query, "fields": searchFields}},
	}
	if filter != nil {
		boolQuery["filter"] = filter
	}
	text := map[string]any{"bool": boolQuery}

	if opts.Embedding == nil || c.dims == 0 {
		return map[string]any{"query": text, "size": limit}
	}

	knn := map[string]any{
		"field":          "embedding",
		"query_vector":   opts.Embedding,
		"k":              limit,
		"num_candidates": limit * 2,
	}
	if filter != nil {
		knn["filter"] = filter
	}
	return map[string]any{
		"retriever": map[string]any{
			"rrf": map[string]any{
				"retrievers": []map[string]any{
					{"standard": map[string]any{"query": text}},
					{"knn": knn},
				},
			},
		},
		"size": limit,
	}
}

// Search performs a BM25 search over titles, headings and content, or a
// hybrid search when opts carries an embedding.
func (c *Client) Search(ctx context.Context, query string, opts SearchOptions) ([]models.IndexedSite, error) {
	data, err := json.Marshal(c.searchBody(query, opts))
	if err != nil {
		return nil, fmt.Errorf("failed to marshal query: %w", err)
	}

	res, err := c.es.Search(
		c.es.Search.WithContext(ctx),
		c.es.Search.WithIndex(c.index),
		c.es.Search.WithBody(bytes.NewReader(data)),
	)
	if err != nil {
		return nil, fmt.Errorf("search failed: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return nil, fmt.Errorf("search error: %s", res.String())
	}

	var sr searchResponse
	if err := json.NewDecoder(res.Body).Decode(&sr); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	sites := make([]models.IndexedSite, len(sr.Hits.Hits))
	for i, hit := range sr.Hits.Hits {
		sites[i] = hit.Source
	}

	return sites, nil
}

// getResponse represents ES get response structure.
type getResponse struct {
	Found  bool               `json:"found"`
	Source models.IndexedSite `json:"_source"`
}

// GetSite retrieves an indexed site by id; nil when absent.
func (c *Client) GetSite(ctx context.Context, siteID string) (*models.IndexedSite, error) {
	res, err := c.es.Get(
		c.index,
		siteID,
		c.es.Get.WithContext(ctx),
	)
	if err != nil {
		return nil, fmt.Errorf("get failed: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode == 404 {
		io.Copy(io.Discard, res.Body)
		return nil, nil
	}

	if res.IsError() {
		return nil, fmt.Errorf("get error: %s", res.String())
	}

	var gr getResponse
	if err := json.NewDecoder(res.Body).Decode(&gr); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	if !gr.Found {
		return nil, nil
	}

	return &gr.Source, nil
}
