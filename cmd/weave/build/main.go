package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"

	weave "github.com/goliatone/go-weave"
	"github.com/goliatone/go-weave/internal/commands"
	weavecmd "github.com/goliatone/go-weave/internal/commands/weave"
	"github.com/goliatone/go-weave/internal/logging/gologger"
)

func main() {
	if err := runBuild(os.Args[1:]); err != nil {
		log.Fatalf("weave build: %v", err)
	}
}

func runBuild(args []string) error {
	fs := flag.NewFlagSet("weave-build", flag.ExitOnError)
	source := fs.String("source", "", "Path to the literate document to build")
	knitRoot := fs.String("knit-root", "", "Working directory for chunk execution (overrides configuration)")
	outputDir := fs.String("output-dir", "docs", "Published output directory for rendered documents")
	tempDir := fs.String("temp-dir", "", "Directory for ephemeral augmented documents (defaults to the system temp dir)")
	render := fs.Bool("render", true, "Render the augmented document to HTML")
	logLevel := fs.String("log-level", "info", "Log level (trace, debug, info, warn, error)")
	logFormat := fs.String("log-format", "console", "Log format (json, console, pretty)")

	if err := fs.Parse(args); err != nil {
		return err
	}
	if *source == "" {
		return fmt.Errorf("a -source document is required")
	}

	provider, err := gologger.NewProvider(gologger.Config{
		Level:  *logLevel,
		Format: *logFormat,
	})
	if err != nil {
		return fmt.Errorf("configure logging: %w", err)
	}

	pipeline := weave.New(filepath.Dir(*source), weave.Config{
		OutputDir:      *outputDir,
		TempDir:        *tempDir,
		LoggerProvider: provider,
	})

	handler := weavecmd.NewBuildDocumentHandler(weavecmd.BuildDocumentDeps{
		Augmenter: pipeline.Augmenter,
		Renderer:  pipeline.Renderer,
		Tracker:   pipeline.Tracker,
		Logger:    commands.CommandLogger(provider, "build"),
	})

	return handler.Execute(context.Background(), weavecmd.BuildDocumentCommand{
		Source:   *source,
		KnitRoot: *knitRoot,
		Render:   *render,
	})
}
