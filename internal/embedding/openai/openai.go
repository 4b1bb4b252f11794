package openai

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/cenkalti/backoff/v4"

	"csvrag/internal/domain"
)

// Client talks to an OpenAI-compatible embeddings endpoint. Ollama's
// native response shape is accepted as a fallback so local models work
// with the same configuration.
type Client struct {
	baseURL   string
	apiKey    string
	model     string
	dimension int
	client    *http.Client
}

// Config configures the embeddings client. The API key is read from
// the environment variable named by APIKeyEnv.
type Config struct {
	BaseURL   string
	APIKeyEnv string
	Model     string
	Timeout   time.Duration
}

// NewClient validates configuration and credentials. A missing key is
// a model-load failure, surfaced before any indexing work starts.
func NewClient(cfg Config) (*Client, error) {
	key := os.Getenv(cfg.APIKeyEnv)
	if key == "" {
		return nil, &domain.ModelLoadError{
			Model: cfg.Model,
			Err:   fmt.Errorf("missing API key in env %s", cfg.APIKeyEnv),
		}
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.openai.com/v1"
	}
	if cfg.Model == "" {
		cfg.Model = "text-embedding-3-small"
	}
	t := cfg.Timeout
	if t == 0 {
		t = 30 * time.Second
	}
	return &Client{
		baseURL: cfg.BaseURL,
		apiKey:  key,
		model:   cfg.Model,
		client:  &http.Client{Timeout: t},
	}, nil
}

func (c *Client) Name() string { return "openai" }

// Prepare is a no-op for remote embedding; the dimension is learned
// lazily from the first response.
func (c *Client) Prepare(corpus []string) error { return nil }

func (c *Client) Dimension() int { return c.dimension }

// Embed requests one embedding vector, retrying transient failures
// with exponential backoff.
func (c *Client) Embed(text string) ([]float64, error) {
	var vec []float64
	op := func() error {
		v, err := c.embedOnce(text)
		if err != nil {
			return err
		}
		vec = v
		return nil
	}
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = 200 * time.Millisecond
	bo.MaxInterval = 5 * time.Second
	bo.MaxElapsedTime = 2 * time.Minute
	if err := backoff.Retry(op, bo); err != nil {
		return nil, err
	}
	if c.dimension == 0 {
		c.dimension = len(vec)
	}
	return vec, nil
}

func (c *Client) embedOnce(text string) ([]float64, error) {
	body, _ := json.Marshal(map[string]string{
		"input":  text,
		"prompt": text,
		"model":  c.model,
	})
	req, err := http.NewRequest(http.MethodPost, c.baseURL+"/embeddings", bytes.NewReader(body))
	if err != nil {
		return nil, backoff.Permanent(err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
		return nil, fmt.Errorf("embeddings request failed: %s", resp.Status)
	}
	if resp.StatusCode >= 300 {
		return nil, backoff.Permanent(fmt.Errorf("embeddings request failed: %s", resp.Status))
	}

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	var openaiOut struct {
		Data []struct {
			Embedding []float64 `json:"embedding"`
		} `json:"data"`
	}
	if err := json.Unmarshal(payload, &openaiOut); err == nil {
		if len(openaiOut.Data) > 0 && len(openaiOut.Data[0].Embedding) > 0 {
			return openaiOut.Data[0].Embedding, nil
		}
	}
	var ollamaOut struct {
		Embedding []float64 `json:"embedding"`
	}
	if err := json.Unmarshal(payload, &ollamaOut); err == nil && len(ollamaOut.Embedding) > 0 {
		return ollamaOut.Embedding, nil
	}
	return nil, backoff.Permanent(errors.New("no embedding in response"))
}
