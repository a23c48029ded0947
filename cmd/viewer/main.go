package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/tatianab/pattern-viewer/internal/config"
	"github.com/tatianab/pattern-viewer/internal/tui"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Printf("Error loading config: %v\n", err)
		os.Exit(1)
	}

	flag.StringVar(&cfg.DatasetPath, "dataset", cfg.DatasetPath, "pattern catalog (.json, .yaml or .yml)")
	flag.StringVar(&cfg.AssetDir, "assets", cfg.AssetDir, "directory holding bosses/, spawnPoints/ and patterns/")
	flag.StringVar(&cfg.LogFile, "log", cfg.LogFile, "write logs to this file")
	flag.Parse()

	if err := tui.Start(cfg); err != nil {
		fmt.Printf("Error running viewer: %v\n", err)
		os.Exit(1)
	}
}
