package main

import (
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

	if err := tui.Start(cfg); err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
}
