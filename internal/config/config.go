package config

import (
	"errors"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// LoaderConfig names the input text column and the field delimiter.
type LoaderConfig struct {
	TextColumn string `yaml:"text_column"`
	Delimiter  string `yaml:"delimiter"`
}

// ChunkerConfig configures how row text is split into chunks.
type ChunkerConfig struct {
	Type              string `yaml:"type"`
	ChunkSize         int    `yaml:"chunk_size"`
	ChunkOverlap      int    `yaml:"chunk_overlap"`
	SentencesPerChunk int    `yaml:"sentences_per_chunk"`
	OverlapSentences  int    `yaml:"overlap_sentences"`
}

// OpenAIEmbedderConfig holds configuration for the OpenAI-compatible embedder.
type OpenAIEmbedderConfig struct {
	BaseURL     string `yaml:"base_url"`
	APIKeyEnv   string `yaml:"api_key_env"`
	Model       string `yaml:"model"`
	TimeoutSecs int    `yaml:"timeout_secs"`
}

// EmbedderConfig selects and configures the text embedder implementation.
type EmbedderConfig struct {
	Type   string                `yaml:"type"`
	OpenAI *OpenAIEmbedderConfig `yaml:"openai,omitempty"`
}

// QdrantConfig contains connection details for a Qdrant vector store.
type QdrantConfig struct {
	URL         string `yaml:"url"`
	APIKey      string `yaml:"api_key"`
	Collection  string `yaml:"collection"`
	TimeoutSecs int    `yaml:"timeout_secs"`
}

// VectorStoreConfig selects and configures the vector store. Path
// addresses the bolt and sqlite backends; ResetOnBuild decides whether
// a rebuild replaces (true) or appends to (false) the persisted index.
type VectorStoreConfig struct {
	Type         string        `yaml:"type"`
	Path         string        `yaml:"path"`
	ResetOnBuild bool          `yaml:"reset_on_build"`
	Qdrant       *QdrantConfig `yaml:"qdrant,omitempty"`
}

// LLMSummarizerConfig holds configuration for the chat-completions summarizer.
type LLMSummarizerConfig struct {
	BaseURL     string `yaml:"base_url"`
	APIKeyEnv   string `yaml:"api_key_env"`
	Model       string `yaml:"model"`
	TimeoutSecs int    `yaml:"timeout_secs"`
}

// SummarizerConfig selects and configures the summarizer.
type SummarizerConfig struct {
	Type          string               `yaml:"type"`
	MinWords      int                  `yaml:"min_words"`
	MaxWords      int                  `yaml:"max_words"`
	MaxInputChars int                  `yaml:"max_input_chars"`
	LLM           *LLMSummarizerConfig `yaml:"llm,omitempty"`
}

// QueryConfig tunes retrieval.
type QueryConfig struct {
	TopK int `yaml:"top_k"`
}

// AppConfig is the root application configuration structure.
type AppConfig struct {
	Loader      LoaderConfig      `yaml:"loader"`
	Chunker     ChunkerConfig     `yaml:"chunker"`
	Embedder    EmbedderConfig    `yaml:"embedder"`
	VectorStore VectorStoreConfig `yaml:"vector_store"`
	Summarizer  SummarizerConfig  `yaml:"summarizer"`
	Query       QueryConfig       `yaml:"query"`
}

// Load reads a config from a specified path. If the file does not exist, returns defaults.
func Load(path string) (*AppConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return defaultConfig(), nil
		}
		return nil, err
	}
	var cfg AppConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	applyConfigDefaults(&cfg)
	return &cfg, nil
}

// LoadDefault tries ./config.yaml first, then ~/.config/csvrag/config.yaml.
// If neither exists, it writes defaults to the user path and returns them.
func LoadDefault() (*AppConfig, string, error) {
	cwdPath := "config.yaml"
	if _, err := os.Stat(cwdPath); err == nil {
		cfg, err := Load(cwdPath)
		return cfg, cwdPath, err
	}
	userPath, err := defaultUserConfigPath()
	if err != nil {
		return nil, "", err
	}
	if _, err := os.Stat(userPath); err == nil {
		cfg, err := Load(userPath)
		return cfg, userPath, err
	}
	cfg := defaultConfig()
	if err := Save(userPath, cfg); err != nil {
		return nil, "", err
	}
	return cfg, userPath, nil
}

// Save writes the config to the given path, creating directories as needed.
func Save(path string, cfg *AppConfig) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// Comma returns the configured delimiter as a rune, defaulting to ','.
func (c LoaderConfig) Comma() rune {
	for _, r := range c.Delimiter {
		return r
	}
	return ','
}

func defaultUserConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "csvrag", "config.yaml"), nil
}

func defaultConfig() *AppConfig {
	return &AppConfig{
		Loader:      LoaderConfig{TextColumn: "text", Delimiter: ","},
		Chunker:     ChunkerConfig{Type: "recursive", ChunkSize: 400, ChunkOverlap: 50},
		Embedder:    EmbedderConfig{Type: "tfidf"},
		VectorStore: VectorStoreConfig{Type: "bolt", Path: "csvrag.db", ResetOnBuild: true},
		Summarizer:  SummarizerConfig{Type: "frequency", MinWords: 20, MaxWords: 120, MaxInputChars: 6000},
		Query:       QueryConfig{TopK: 5},
	}
}

func applyConfigDefaults(cfg *AppConfig) {
	if cfg.Loader.TextColumn == "" {
		cfg.Loader.TextColumn = "text"
	}
	if cfg.Chunker.ChunkSize == 0 {
		cfg.Chunker.ChunkSize = 400
	}
	if cfg.Chunker.SentencesPerChunk == 0 {
		cfg.Chunker.SentencesPerChunk = 5
	}
	if cfg.VectorStore.Path == "" {
		cfg.VectorStore.Path = "csvrag.db"
	}
	if cfg.Summarizer.MaxWords == 0 {
		cfg.Summarizer.MaxWords = 120
	}
	if cfg.Summarizer.MaxInputChars == 0 {
		cfg.Summarizer.MaxInputChars = 6000
	}
	if cfg.Query.TopK == 0 {
		cfg.Query.TopK = 5
	}
	if cfg.Embedder.Type == "openai" && cfg.Embedder.OpenAI != nil {
		if cfg.Embedder.OpenAI.BaseURL == "" {
			cfg.Embedder.OpenAI.BaseURL = "https://api.openai.com/v1"
		}
		if cfg.Embedder.OpenAI.APIKeyEnv == "" {
			cfg.Embedder.OpenAI.APIKeyEnv = "OPENAI_API_KEY"
		}
		if cfg.Embedder.OpenAI.Model == "" {
			cfg.Embedder.OpenAI.Model = "text-embedding-3-small"
		}
		if cfg.Embedder.OpenAI.TimeoutSecs == 0 {
			cfg.Embedder.OpenAI.TimeoutSecs = 30
		}
	}
	if cfg.Summarizer.Type == "llm" && cfg.Summarizer.LLM != nil {
		if cfg.Summarizer.LLM.BaseURL == "" {
			cfg.Summarizer.LLM.BaseURL = "https://api.openai.com/v1"
		}
		if cfg.Summarizer.LLM.APIKeyEnv == "" {
			cfg.Summarizer.LLM.APIKeyEnv = "OPENAI_API_KEY"
		}
		if cfg.Summarizer.LLM.TimeoutSecs == 0 {
			cfg.Summarizer.LLM.TimeoutSecs = 60
		}
	}
}
