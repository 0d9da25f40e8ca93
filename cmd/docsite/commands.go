package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	prom "github.com/prometheus/client_golang/prometheus"

	"github.com/pinchtab/pinchtab.com/internal/config"
	"github.com/pinchtab/pinchtab.com/internal/logfields"
	"github.com/pinchtab/pinchtab.com/internal/metrics"
	"github.com/pinchtab/pinchtab.com/internal/pipeline"
	"github.com/pinchtab/pinchtab.com/internal/server"
)

// runBuild executes the pipeline and writes docs.json, report.json, and one
// HTML fragment per page to the output directory.
func runBuild(ctx context.Context, cfg *config.Config, outputOverride string) error {
	output := cfg.Build.Output
	if outputOverride != "" {
		output = outputOverride
	}

	loader := pipeline.NewLoader(cfg, nil, nil)
	data, err := loader.Load(ctx)
	if err != nil {
		return err
	}

	pagesDir := filepath.Join(output, "pages")
	if err := os.MkdirAll(pagesDir, 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	docsJSON, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal docs data: %w", err)
	}
	if err := os.WriteFile(filepath.Join(output, "docs.json"), docsJSON, 0o644); err != nil {
		return fmt.Errorf("write docs.json: %w", err)
	}

	for _, page := range data.Pages {
		path := filepath.Join(pagesDir, page.Slug+".html")
		if err := os.WriteFile(path, []byte(page.HTML), 0o644); err != nil {
			return fmt.Errorf("write page %s: %w", page.Slug, err)
		}
	}

	if report := loader.Report(); report != nil {
		reportJSON, err := report.ToJSON()
		if err != nil {
			return err
		}
		if err := os.WriteFile(filepath.Join(output, "report.json"), reportJSON, 0o644); err != nil {
			return fmt.Errorf("write report.json: %w", err)
		}
		slog.Info("build complete",
			logfields.BuildID(report.ID),
			logfields.Pages(report.Pages),
			logfields.Sections(report.Sections),
			logfields.DurationMS(float64(report.DurationMS)))
	}
	return nil
}

// runInspect executes the pipeline and prints the resolved tree without
// writing output.
func runInspect(ctx context.Context, cfg *config.Config) error {
	data, err := pipeline.NewLoader(cfg, nil, nil).Load(ctx)
	if err != nil {
		return err
	}
	fmt.Printf("%s docs (%s) — %d pages\n", data.Name, data.Branch, len(data.Pages))
	for _, sec := range data.Sections {
		fmt.Printf("  %s (%s)\n", sec.Label, sec.ID)
		for _, item := range sec.Items {
			fmt.Printf("    %-28s %s\n", item.Slug, item.SourcePath)
		}
	}
	return nil
}

// runPreview executes the pipeline and serves the result until interrupted.
func runPreview(ctx context.Context, cfg *config.Config, addrOverride string) error {
	addr := cfg.Preview.Addr
	if addrOverride != "" {
		addr = addrOverride
	}

	registry := prom.NewRegistry()
	recorder := metrics.NewPrometheusRecorder(registry)

	data, err := pipeline.NewLoader(cfg, nil, recorder).Load(ctx)
	if err != nil {
		return err
	}
	return server.New(data, registry).ListenAndServe(ctx, addr)
}
