package summarizer

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"csvrag/internal/domain"
)

// LLMSummarizer produces abstractive summaries through an
// OpenAI-compatible chat completions endpoint.
type LLMSummarizer struct {
	baseURL string
	apiKey  string
	model   string
	client  *http.Client
}

// LLMConfig configures the chat completions client. The API key is
// read from the environment variable named by APIKeyEnv.
type LLMConfig struct {
	BaseURL   string
	APIKeyEnv string
	Model     string
	Timeout   time.Duration
}

func NewLLMSummarizer(cfg LLMConfig) (*LLMSummarizer, error) {
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
		cfg.Model = "gpt-4o-mini"
	}
	t := cfg.Timeout
	if t == 0 {
		t = 60 * time.Second
	}
	return &LLMSummarizer{
		baseURL: cfg.BaseURL,
		apiKey:  key,
		model:   cfg.Model,
		client:  &http.Client{Timeout: t},
	}, nil
}

func (s *LLMSummarizer) Summarize(text string, minWords, maxWords int) (string, error) {
	if maxWords <= 0 {
		maxWords = 120
	}
	prompt := fmt.Sprintf(
		"Summarize the following text in %d to %d words. Answer with the summary only.\n\n%s",
		minWords, maxWords, text,
	)
	payload := map[string]any{
		"model":       s.model,
		"messages":    []map[string]string{{"role": "user", "content": prompt}},
		"temperature": 0.2,
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}
	req, err := http.NewRequest(http.MethodPost, s.baseURL+"/chat/completions", bytes.NewReader(data))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.apiKey)

	resp, err := s.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("chat completions failed: %s: %s", resp.Status, string(body))
	}

	var out struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", err
	}
	if len(out.Choices) == 0 {
		return "", fmt.Errorf("chat completions returned no choices")
	}
	return out.Choices[0].Message.Content, nil
}
