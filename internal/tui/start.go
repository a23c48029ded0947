package tui

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/tatianab/pattern-viewer/internal/assets"
	"github.com/tatianab/pattern-viewer/internal/briefing"
	"github.com/tatianab/pattern-viewer/internal/config"
	"github.com/tatianab/pattern-viewer/internal/facet"
	"github.com/tatianab/pattern-viewer/internal/models"
	"github.com/tatianab/pattern-viewer/internal/selection"
)

// Start wires the viewer from cfg and runs it until the user quits.
func Start(cfg *config.Config) error {
	logger, closeLog, err := NewLogger(cfg)
	if err != nil {
		return err
	}
	defer closeLog()

	ds, err := models.LoadDataset(cfg.DatasetPath)
	if err != nil {
		return err
	}
	logger.Info("dataset loaded", "path", cfg.DatasetPath, "records", ds.Len())

	opts := Options{
		Resolver:        assets.NewResolver(cfg.AssetDir),
		BriefingTimeout: cfg.BriefingTimeout,
		Logger:          logger,
	}
	if cfg.BriefingsEnabled() {
		eng, err := briefing.NewEngine(context.Background(), cfg.GeminiAPIKey, cfg.BriefingModel)
		if err != nil {
			return fmt.Errorf("failed to create briefing engine: %w", err)
		}
		defer eng.Close()
		opts.Briefer = eng
	}

	machine := selection.New(facet.NewIndex(ds, facet.DefaultCacheSize), logger)
	return Run(machine, opts)
}

// NewLogger returns a slog logger writing to cfg.LogFile, or a discarding
// logger when no file is configured. The terminal belongs to the UI.
func NewLogger(cfg *config.Config) (*slog.Logger, func(), error) {
	if cfg.LogFile == "" {
		return slog.New(slog.DiscardHandler), func() {}, nil
	}
	lvl, err := cfg.Level()
	if err != nil {
		return nil, nil, err
	}
	f, err := tea.LogToFile(cfg.LogFile, "patterns")
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open log file: %w", err)
	}
	return newTextLogger(f, lvl), func() { f.Close() }, nil
}

func newTextLogger(w io.Writer, lvl slog.Level) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: lvl}))
}
