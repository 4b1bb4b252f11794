package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"

	"csvrag/internal/app"
	"csvrag/internal/config"
	"csvrag/internal/pipeline"
	"csvrag/internal/tui"
)

func main() {
	_ = godotenv.Load()

	var cfgPath string
	flag.StringVar(&cfgPath, "config", "", "Path to YAML config file (optional; uses ~/.config/csvrag/config.yaml if not provided)")
	flag.Parse()
	inputs := flag.Args()
	if len(inputs) != 1 {
		fmt.Println("Usage: csvrag [--config=config.yaml] data.csv")
		os.Exit(1)
	}

	var cfg *config.AppConfig
	var err error
	if cfgPath == "" {
		cfg, _, err = config.LoadDefault()
	} else {
		cfg, err = config.Load(cfgPath)
	}
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	p, closeStore, err := app.Assemble(cfg, func(stage pipeline.Stage, detail string) {
		log.Printf("%s: %s", stage, detail)
	})
	if err != nil {
		log.Fatal(err)
	}
	defer closeStore()

	if err := p.Build(inputs[0]); err != nil {
		log.Fatalf("build failed: %v", err)
	}

	m := tui.New(p, cfg.Query.TopK)
	if _, err := tea.NewProgram(m).Run(); err != nil {
		log.Fatal(err)
	}
}
