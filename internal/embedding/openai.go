package embedding

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

// Config for the OpenAI-compatible embeddings client.
type Config struct {
	BaseURL   string        // default https://api.openai.com/v1
	APIKey    string
	Model     string        // e.g. "text-embedding-3-small"
	Dimension int           // fixed at index-build time; default 1536
	Timeout   time.Duration // http client timeout
}

// Client calls the batch /embeddings endpoint. A single call embeds all pages
// of one document; the response order mirrors the request order.
type Client struct {
	cfg  Config
	http *http.Client
	log  *slog.Logger
}

func NewClient(cfg Config, logger *slog.Logger) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.openai.com/v1"
	}
	if cfg.Model == "" {
		cfg.Model = "text-embedding-3-small"
	}
	if cfg.Dimension <= 0 {
		cfg.Dimension = 1536
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		cfg:  cfg,
		http: &http.Client{Timeout: cfg.Timeout},
		log:  logger,
	}
}

func (c *Client) Dimension() int { return c.cfg.Dimension }

// EmbedBatch embeds every input, preserving order. Empty texts are replaced
// with a single space on the wire (the API rejects empty inputs) so that no
// page loses its vector slot. Any service failure propagates to the caller;
// placeholder vectors are never substituted.
func (c *Client) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	start := time.Now()

	input := make([]string, len(texts))
	for i, t := range texts {
		if strings.TrimSpace(t) == "" {
			input[i] = " "
		} else {
			input[i] = t
		}
	}

	body := map[string]any{
		"model": c.cfg.Model,
		"input": input,
	}
	bs, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("encode embeddings request: %w", err)
	}

	endpoint := strings.TrimRight(c.cfg.BaseURL, "/") + "/embeddings"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(bs))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Error("embedding.batch.http_error", "error", err, "inputs", len(texts))
		return nil, fmt.Errorf("embeddings http error: %w", err)
	}
	defer func(b io.ReadCloser) {
		if cerr := b.Close(); cerr != nil {
			c.log.Warn("embedding.batch.body_close_error", "error", cerr)
		}
	}(resp.Body)

	raw, _ := io.ReadAll(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.log.Error("embedding.batch.bad_status", "status", resp.StatusCode, "body_bytes", len(raw))
		return nil, fmt.Errorf("embeddings status %d: %s", resp.StatusCode, truncate(string(raw), 1<<10))
	}

	var out struct {
		Data []struct {
			Index     int       `json:"index"`
			Embedding []float32 `json:"embedding"`
		} `json:"data"`
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("decode embeddings response: %w", err)
	}
	if len(out.Data) != len(texts) {
		return nil, fmt.Errorf("embeddings count mismatch: got %d, want %d", len(out.Data), len(texts))
	}

	vectors := make([][]float32, len(texts))
	for _, d := range out.Data {
		if d.Index < 0 || d.Index >= len(vectors) {
			return nil, fmt.Errorf("embeddings index out of range: %d", d.Index)
		}
		if len(d.Embedding) != c.cfg.Dimension {
			return nil, fmt.Errorf("embedding dimension mismatch: got %d, want %d", len(d.Embedding), c.cfg.Dimension)
		}
		vectors[d.Index] = d.Embedding
	}
	for i, v := range vectors {
		if v == nil {
			return nil, fmt.Errorf("missing embedding for input %d", i)
		}
	}

	c.log.Info("embedding.batch.ok",
		"inputs", len(texts),
		"dimension", c.cfg.Dimension,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return vectors, nil
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "...(truncated)"
}
