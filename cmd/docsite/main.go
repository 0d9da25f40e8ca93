package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"

	"github.com/pinchtab/pinchtab.com/internal/config"
	"github.com/pinchtab/pinchtab.com/internal/docerr"
)

var CLI struct {
	Config  string `short:"c" help:"Configuration file path" default:"docsite.yaml"`
	Verbose bool   `short:"v" help:"Enable verbose logging"`

	Build struct {
		Output string `short:"o" help:"Output directory for rendered docs (overrides config)"`
	} `cmd:"" help:"Fetch the docs manifest and render all pages to the output directory"`

	Inspect struct{} `cmd:"" help:"Run the pipeline and print the resolved section and page tree"`

	Preview struct {
		Addr string `help:"Listen address (overrides config)"`
	} `cmd:"" help:"Run the pipeline and serve the rendered docs over HTTP"`
}

func main() {
	kctx := kong.Parse(&CLI)

	logLevel := slog.LevelInfo
	if CLI.Verbose {
		logLevel = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel}))
	slog.SetDefault(logger)

	adapter := docerr.NewCLIAdapter(CLI.Verbose, logger)

	cfg, err := config.Load(CLI.Config)
	if err != nil {
		adapter.HandleError(err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	switch kctx.Command() {
	case "build":
		err = runBuild(ctx, cfg, CLI.Build.Output)
	case "inspect":
		err = runInspect(ctx, cfg)
	case "preview":
		err = runPreview(ctx, cfg, CLI.Preview.Addr)
	default:
		err = kctx.PrintUsage(false)
	}
	adapter.HandleError(err)
}
