package app

import (
	"fmt"
	"time"

	"csvrag/internal/chunker"
	"csvrag/internal/config"
	"csvrag/internal/domain"
	"csvrag/internal/embedding/openai"
	"csvrag/internal/embedding/tfidf"
	"csvrag/internal/loader"
	"csvrag/internal/pipeline"
	"csvrag/internal/summarizer"
	"csvrag/internal/vectorstore/bolt"
	"csvrag/internal/vectorstore/memory"
	"csvrag/internal/vectorstore/qdrant"
	"csvrag/internal/vectorstore/sqlite"
)

// Assemble builds a pipeline from configuration. The returned closer
// releases the vector store; call it when the process is done.
func Assemble(cfg *config.AppConfig, progress pipeline.ProgressFunc) (*pipeline.Pipeline, func() error, error) {
	var emb domain.Embedder
	switch cfg.Embedder.Type {
	case "tfidf", "":
		emb = tfidf.NewEmbedder()
	case "openai":
		if cfg.Embedder.OpenAI == nil {
			return nil, nil, fmt.Errorf("openai embedder config missing")
		}
		client, err := openai.NewClient(openai.Config{
			BaseURL:   cfg.Embedder.OpenAI.BaseURL,
			APIKeyEnv: cfg.Embedder.OpenAI.APIKeyEnv,
			Model:     cfg.Embedder.OpenAI.Model,
			Timeout:   time.Duration(cfg.Embedder.OpenAI.TimeoutSecs) * time.Second,
		})
		if err != nil {
			return nil, nil, err
		}
		emb = client
	default:
		return nil, nil, fmt.Errorf("unknown embedder: %s", cfg.Embedder.Type)
	}

	var sp domain.Splitter
	switch cfg.Chunker.Type {
	case "recursive", "":
		sp = chunker.NewRecursiveSplitter(cfg.Chunker.ChunkSize, cfg.Chunker.ChunkOverlap)
	case "sentence":
		sp = chunker.NewSentenceSplitter(cfg.Chunker.SentencesPerChunk, cfg.Chunker.OverlapSentences)
	default:
		return nil, nil, fmt.Errorf("unknown chunker: %s", cfg.Chunker.Type)
	}

	var st domain.VectorStore
	switch cfg.VectorStore.Type {
	case "bolt", "":
		s, err := bolt.Open(cfg.VectorStore.Path)
		if err != nil {
			return nil, nil, err
		}
		st = s
	case "sqlite":
		s, err := sqlite.Open(cfg.VectorStore.Path)
		if err != nil {
			return nil, nil, err
		}
		st = s
	case "memory":
		st = memory.NewStorage()
	case "qdrant":
		if cfg.VectorStore.Qdrant == nil {
			return nil, nil, fmt.Errorf("qdrant config missing")
		}
		st = qdrant.NewStorage(qdrant.Config{
			URL:        cfg.VectorStore.Qdrant.URL,
			APIKey:     cfg.VectorStore.Qdrant.APIKey,
			Collection: cfg.VectorStore.Qdrant.Collection,
			Timeout:    time.Duration(cfg.VectorStore.Qdrant.TimeoutSecs) * time.Second,
		})
	default:
		return nil, nil, fmt.Errorf("unknown vector store: %s", cfg.VectorStore.Type)
	}

	var sum domain.Summarizer
	switch cfg.Summarizer.Type {
	case "frequency", "":
		sum = summarizer.NewFrequencySummarizer()
	case "llm":
		if cfg.Summarizer.LLM == nil {
			st.Close()
			return nil, nil, fmt.Errorf("llm summarizer config missing")
		}
		s, err := summarizer.NewLLMSummarizer(summarizer.LLMConfig{
			BaseURL:   cfg.Summarizer.LLM.BaseURL,
			APIKeyEnv: cfg.Summarizer.LLM.APIKeyEnv,
			Model:     cfg.Summarizer.LLM.Model,
			Timeout:   time.Duration(cfg.Summarizer.LLM.TimeoutSecs) * time.Second,
		})
		if err != nil {
			st.Close()
			return nil, nil, err
		}
		sum = s
	default:
		st.Close()
		return nil, nil, fmt.Errorf("unknown summarizer: %s", cfg.Summarizer.Type)
	}

	ld := loader.NewCSVLoader(cfg.Loader.TextColumn, cfg.Loader.Comma())
	p := pipeline.New(ld, sp, emb, st, sum, pipeline.Options{
		TopK:          cfg.Query.TopK,
		MinWords:      cfg.Summarizer.MinWords,
		MaxWords:      cfg.Summarizer.MaxWords,
		MaxInputChars: cfg.Summarizer.MaxInputChars,
		ResetOnBuild:  cfg.VectorStore.ResetOnBuild,
		Progress:      progress,
	})
	return p, st.Close, nil
}
