// Package embeddings is a client for OpenAI-compatible sentence embedding
// endpoints, reached over HTTP or the Docker Model Runner socket.
package embeddings

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"
)

// Config holds embeddings client configuration.
type Config struct {
	SocketPath string // Docker Model Runner socket; wins over BaseURL
	BaseURL    string // e.g. "https://api.openai.com/v1"
	APIKey     string
	Model      string // e.g. "ai/all-minilm"
	Timeout    time.Duration
}

const dmrEmbeddingsURL = "http://localhost/exp/vDD4.40/engines/llama.cpp/v1/embeddings"

// MaxInputChars bounds the size of one input. Sentence models truncate
// far earlier on their own.
const MaxInputChars = 20000

// Client embeds sentences with a remote model.
type Client struct {
	httpClient *http.Client
	endpoint   string
	apiKey     string
	model      string
}

// New creates a new embeddings client.
func New(config Config) (*Client, error) {
	if config.Model == "" {
		return nil, fmt.Errorf("model is required")
	}

	switch {
	case config.SocketPath != "":
		socket := config.SocketPath
		return &Client{
			httpClient: &http.Client{
				Timeout: config.Timeout,
				Transport: &http.Transport{
					DialContext: func(ctx context.Context, _, _ string) (net.Conn, error) {
						var d net.Dialer
						return d.DialContext(ctx, "unix", socket)
					},
				},
			},
			endpoint: dmrEmbeddingsURL,
			model:    config.Model,
		}, nil
	case config.BaseURL != "":
		return &Client{
			httpClient: &http.Client{Timeout: config.Timeout},
			endpoint:   strings.TrimRight(config.BaseURL, "/") + "/embeddings",
			apiKey:     config.APIKey,
			model:      config.Model,
		}, nil
	default:
		return nil, fmt.Errorf("socket path or base url is required")
	}
}

// Name identifies the embedder in reports.
func (c *Client) Name() string {
	return c.model
}

type embeddingRequest struct {
	Model string   `json:"model"`
	Input []string `json:"input"`
}

type embeddingResponse struct {
	Data []struct {
		Index     int       `json:"index"`
		Embedding []float32 `json:"embedding"`
	} `json:"data"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// Embed returns the vector of one text.
func (c *Client) Embed(ctx context.Context, text string) ([]float32, error) {
	vectors, err := c.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

// EmbedBatch embeds every text in one request. Vectors follow the order
// of texts.
func (c *Client) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	inputs := make([]string, len(texts))
	for i, t := range texts {
		inputs[i] = truncate(t, MaxInputChars)
	}
	slog.Debug("generating embeddings", "model", c.model, "inputs", len(inputs))

	body, err := json.Marshal(embeddingRequest{Model: c.model, Input: inputs})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("API error (status %d): %s", resp.StatusCode, string(respBody))
	}

	var out embeddingResponse
	if err := json.Unmarshal(respBody, &out); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}
	if out.Error != nil {
		return nil, fmt.Errorf("API error: %s", out.Error.Message)
	}
	if len(out.Data) != len(inputs) {
		return nil, fmt.Errorf("got %d embeddings for %d inputs", len(out.Data), len(inputs))
	}

	vectors := make([][]float32, len(inputs))
	for pos, d := range out.Data {
		// Servers that omit index answer in input order
		i := d.Index
		if i < 0 || i >= len(vectors) || vectors[i] != nil {
			i = pos
		}
		vectors[i] = d.Embedding
	}
	return vectors, nil
}

// truncate cuts s to at most n bytes on a rune boundary.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}

// Dimensions returns the vector size of known models, 384 otherwise.
func Dimensions(model string) int {
	switch model {
	case "ai/embeddinggemma":
		return 768
	case "ai/snowflake-arctic-embed":
		return 1024
	case "ai/qwen3-embedding":
		return 2560
	case "text-embedding-3-small", "text-embedding-ada-002":
		return 1536
	case "text-embedding-3-large":
		return 3072
	default:
		return 384 // all-MiniLM-L6-v2 family
	}
}
