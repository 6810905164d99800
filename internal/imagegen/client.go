// Package imagegen calls an OpenAI-compatible image generation API.
package imagegen

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

// Config holds image client configuration.
type Config struct {
	BaseURL string // e.g. https://api.openai.com/v1
	APIKey  string
	Model   string
	Size    string // e.g. 512x512
	Timeout time.Duration
}

// Client generates one image per prompt and returns it as PNG bytes.
type Client struct {
	httpClient *http.Client
	url        string
	apiKey     string
	model      string
	size       string
}

// New creates a new image generation client.
func New(config Config) (*Client, error) {
	if config.BaseURL == "" {
		return nil, fmt.Errorf("base url is required")
	}
	if config.Model == "" {
		return nil, fmt.Errorf("model is required")
	}
	return &Client{
		httpClient: &http.Client{Timeout: config.Timeout},
		url:        strings.TrimRight(config.BaseURL, "/") + "/images/generations",
		apiKey:     config.APIKey,
		model:      config.Model,
		size:       config.Size,
	}, nil
}

type generationRequest struct {
	Model          string `json:"model"`
	Prompt         string `json:"prompt"`
	N              int    `json:"n"`
	Size           string `json:"size,omitempty"`
	ResponseFormat string `json:"response_format,omitempty"`
}

type generationResponse struct {
	Data []struct {
		B64JSON string `json:"b64_json"`
		URL     string `json:"url"`
	} `json:"data"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// Generate returns the image for prompt, normalised to PNG.
func (c *Client) Generate(ctx context.Context, prompt string) ([]byte, error) {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return nil, errors.New("image prompt required")
	}

	responseFormat := "b64_json"
	if strings.HasPrefix(strings.ToLower(c.model), "gpt-image-") {
		responseFormat = ""
	}
	body, err := json.Marshal(generationRequest{
		Model:          c.model,
		Prompt:         prompt,
		N:              1,
		Size:           c.size,
		ResponseFormat: responseFormat,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	var resp generationResponse
	if err := c.do(ctx, http.MethodPost, c.url, body, &resp); err != nil {
		return nil, err
	}
	if resp.Error != nil {
		return nil, fmt.Errorf("API error: %s", resp.Error.Message)
	}
	if len(resp.Data) == 0 {
		return nil, errors.New("no image returned")
	}

	item := resp.Data[0]
	var raw []byte
	switch {
	case strings.TrimSpace(item.B64JSON) != "":
		raw, err = base64.StdEncoding.DecodeString(strings.TrimSpace(item.B64JSON))
		if err != nil {
			return nil, fmt.Errorf("failed to decode image base64: %w", err)
		}
	case strings.TrimSpace(item.URL) != "":
		raw, err = c.download(ctx, strings.TrimSpace(item.URL))
		if err != nil {
			return nil, fmt.Errorf("failed to download generated image: %w", err)
		}
	default:
		return nil, errors.New("image response missing b64_json and url")
	}

	png, err := NormalizePNG(raw)
	if err != nil {
		return nil, err
	}
	slog.Debug("Image generated", "bytes", len(png), "prompt_len", len(prompt))
	return png, nil
}

func (c *Client) do(ctx context.Context, method, url string, body []byte, out any) error {
	req, err := http.NewRequestWithContext(ctx, method, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("API error (status %d): %s", resp.StatusCode, string(respBody))
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("failed to unmarshal response: %w", err)
	}
	return nil
}

func (c *Client) download(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("status %d", resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}
