package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/mattjoyce/ffgraph/internal/cache"
	"github.com/mattjoyce/ffgraph/internal/config"
	"github.com/mattjoyce/ffgraph/internal/inspect"
	"github.com/mattjoyce/ffgraph/internal/log"
	"github.com/mattjoyce/ffgraph/internal/pipeline"
	"github.com/mattjoyce/ffgraph/pkg/ffmpeg"
	"github.com/mattjoyce/ffgraph/pkg/graph"
)

type compiledJSON struct {
	Name        string   `json:"name"`
	Fingerprint string   `json:"fingerprint"`
	Command     []string `json:"command"`
	Cached      bool     `json:"cached,omitempty"`
}

// loadPipelines compiles the pipelines in file, or in the config's
// pipelines directory when file is empty.
func loadPipelines(cfg *config.Config, file string) (*pipeline.Set, error) {
	ops := ffmpeg.DefaultOperators()
	if file == "" {
		return pipeline.LoadAndCompileDir(cfg.PipelinesRoot(), ops)
	}

	var (
		spec *pipeline.FileSpec
		err  error
	)
	if strings.EqualFold(filepath.Ext(file), ".hcl") {
		spec, err = pipeline.LoadHCLFile(file)
	} else {
		spec, err = pipeline.LoadFile(file)
	}
	if err != nil {
		return nil, err
	}
	return pipeline.CompileSpecs(spec.Pipelines, ops)
}

// selectPipelines returns the named pipelines, or all of them sorted by
// name when names is empty.
func selectPipelines(set *pipeline.Set, names []string) ([]*pipeline.Pipeline, error) {
	if len(names) == 0 {
		names = set.Names()
	}
	out := make([]*pipeline.Pipeline, 0, len(names))
	for _, name := range names {
		p, ok := set.Get(name)
		if !ok {
			return nil, fmt.Errorf("unknown pipeline %q", name)
		}
		out = append(out, p)
	}
	return out, nil
}

func openCache(ctx context.Context, cfg *config.Config) (*cache.Store, error) {
	if !cfg.Cache.Enabled {
		return nil, nil
	}
	path := cfg.Resolve(cfg.Cache.Path)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create cache directory: %w", err)
	}
	return cache.Open(ctx, path)
}

// recordCompilation reports whether p's fingerprint was already cached,
// storing it when it was not.
func recordCompilation(ctx context.Context, store *cache.Store, p *pipeline.Pipeline, logger *slog.Logger) bool {
	entry, err := store.Get(ctx, p.Fingerprint)
	if err == nil {
		logger.Debug("cache hit", "fingerprint", p.Fingerprint, "hits", entry.Hits)
		return true
	}
	if !errors.Is(err, cache.ErrNotFound) {
		logger.Warn("cache lookup failed", "error", err)
		return false
	}
	if _, err := store.Put(ctx, p.Fingerprint, p.Name, p.Args); err != nil {
		logger.Warn("cache store failed", "error", err)
	}
	return false
}

func runCompile(args []string) int {
	fs := flag.NewFlagSet("compile", flag.ContinueOnError)
	configPath := fs.String("config", "", "Path to configuration file or directory")
	file := fs.String("file", "", "Pipeline file to compile instead of the config directory")
	jsonOut := fs.Bool("json", false, "Output in structured JSON format")
	noCache := fs.Bool("no-cache", false, "Skip the compile cache")
	if err := fs.Parse(args); err != nil {
		fmt.Fprintf(os.Stderr, "Flag error: %v\n", err)
		return 1
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Load error: %v\n", err)
		return 1
	}
	logger := log.WithComponent("compile")

	set, err := loadPipelines(cfg, *file)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Compile error: %v\n", err)
		return 1
	}
	selected, err := selectPipelines(set, fs.Args())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	ctx := context.Background()
	var store *cache.Store
	if !*noCache {
		store, err = openCache(ctx, cfg)
		if err != nil {
			logger.Warn("compile cache unavailable", "error", err)
		}
	}
	if store != nil {
		defer store.Close()
	}

	results := make([]compiledJSON, 0, len(selected))
	for _, p := range selected {
		item := compiledJSON{
			Name:        p.Name,
			Fingerprint: p.Fingerprint,
			Command:     append([]string{cfg.FFmpeg.Binary}, p.Args...),
		}
		if store != nil {
			item.Cached = recordCompilation(ctx, store, p, log.WithPipeline(p.Name))
		}
		results = append(results, item)
	}

	if *jsonOut {
		data, err := json.MarshalIndent(results, "", "  ")
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to render JSON: %v\n", err)
			return 1
		}
		fmt.Println(string(data))
		return 0
	}

	for _, item := range results {
		if len(results) > 1 {
			fmt.Printf("# %s\n", item.Name)
		}
		fmt.Println(inspect.QuoteCommand(item.Command))
	}
	return 0
}

func runInspect(args []string) int {
	fs := flag.NewFlagSet("inspect", flag.ContinueOnError)
	configPath := fs.String("config", "", "Path to configuration file or directory")
	file := fs.String("file", "", "Pipeline file to read instead of the config directory")
	jsonOut := fs.Bool("json", false, "Output in structured JSON format")
	plain := fs.Bool("plain", false, "Disable colors and borders")
	if err := fs.Parse(args); err != nil {
		fmt.Fprintf(os.Stderr, "Flag error: %v\n", err)
		return 1
	}
	if fs.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "Usage: ffgraph inspect [--config PATH] [--file FILE] [--json] [--plain] NAME")
		return 1
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Load error: %v\n", err)
		return 1
	}
	set, err := loadPipelines(cfg, *file)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Compile error: %v\n", err)
		return 1
	}
	p, ok := set.Get(fs.Arg(0))
	if !ok {
		fmt.Fprintf(os.Stderr, "Error: unknown pipeline %q\n", fs.Arg(0))
		return 1
	}

	report, err := inspect.Build(p, cfg.FFmpeg.Binary)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Inspect failed: %v\n", err)
		return 1
	}

	if *jsonOut {
		out, err := inspect.RenderJSON(report)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Inspect failed: %v\n", err)
			return 1
		}
		fmt.Println(out)
		return 0
	}

	theme := inspect.NewDefaultTheme()
	if *plain {
		theme = inspect.PlainTheme()
	}
	fmt.Print(inspect.Render(report, theme))
	return 0
}

func runOperators(args []string) int {
	fs := flag.NewFlagSet("operators", flag.ContinueOnError)
	jsonOut := fs.Bool("json", false, "Output in structured JSON format")
	if err := fs.Parse(args); err != nil {
		fmt.Fprintf(os.Stderr, "Flag error: %v\n", err)
		return 1
	}

	ops := ffmpeg.DefaultOperators()
	groups := []struct {
		Title string
		Kind  graph.StreamKind
	}{
		{"processable", graph.Processable},
		{"output", graph.OutputKind},
	}

	byGroup := map[string][]string{"constructors": constructorNames(ops)}
	for _, g := range groups {
		byGroup[g.Title] = ops.Names(g.Kind)
	}

	if *jsonOut {
		data, err := json.MarshalIndent(byGroup, "", "  ")
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to render JSON: %v\n", err)
			return 1
		}
		fmt.Println(string(data))
		return 0
	}

	for _, title := range []string{"constructors", "processable", "output"} {
		fmt.Printf("%s: %s\n", title, strings.Join(byGroup[title], ", "))
	}
	fmt.Println("map: attach streams to an existing output node (pipeline files only)")
	return 0
}

func constructorNames(ops *graph.OperatorTable) []string {
	var names []string
	for _, name := range ops.All() {
		if op, ok := ops.Lookup(name); ok && op.Kinds == 0 {
			names = append(names, name)
		}
	}
	return names
}
