package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"sort"
	"strings"

	"github.com/joho/godotenv"

	"csvrag/internal/app"
	"csvrag/internal/config"
	"csvrag/internal/pipeline"
)

func main() {
	_ = godotenv.Load()

	cfgPath := flag.String("config", "", "Path to YAML config file")
	query := flag.String("query", "", "Question to answer")
	topK := flag.Int("k", 0, "Number of chunks to retrieve (0 = config default)")
	column := flag.String("column", "", "Text column name (overrides config)")
	flag.Parse()
	inputs := flag.Args()
	if len(inputs) != 1 || *query == "" {
		fmt.Println("Usage: csvrag-query [--config=config.yaml] -query='your question' [-k=5] [-column=text] data.csv")
		os.Exit(1)
	}

	var cfg *config.AppConfig
	var err error
	if *cfgPath == "" {
		cfg, _, err = config.LoadDefault()
	} else {
		cfg, err = config.Load(*cfgPath)
	}
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	if *column != "" {
		cfg.Loader.TextColumn = *column
	}

	p, closeStore, err := app.Assemble(cfg, func(stage pipeline.Stage, detail string) {
		fmt.Fprintf(os.Stderr, "%s: %s\n", stage, detail)
	})
	if err != nil {
		log.Fatal(err)
	}
	defer closeStore()

	if err := p.Build(inputs[0]); err != nil {
		log.Fatalf("build failed: %v", err)
	}

	ans, err := p.Query(*query, *topK)
	if err != nil {
		log.Fatalf("query failed: %v", err)
	}

	fmt.Println(ans.Summary)
	fmt.Println()
	for i, src := range ans.Sources {
		fmt.Printf("source %d: %s\n", i+1, formatMeta(src))
	}
}

func formatMeta(meta map[string]string) string {
	if len(meta) == 0 {
		return "(no metadata)"
	}
	keys := make([]string, 0, len(meta))
	for k := range meta {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = k + "=" + meta[k]
	}
	return strings.Join(parts, " ")
}
