package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"sort"

	"github.com/mattjoyce/ffgraph/internal/config"
	"github.com/mattjoyce/ffgraph/internal/doctor"
	"github.com/mattjoyce/ffgraph/internal/inspect"
	"github.com/mattjoyce/ffgraph/pkg/ffmpeg"
)

func runConfigNoun(args []string) int {
	if len(args) < 1 {
		printConfigNounHelp(os.Stderr)
		return 1
	}
	if isHelpToken(args[0]) {
		printConfigNounHelp(os.Stdout)
		return 0
	}

	action := args[0]
	actionArgs := args[1:]

	switch action {
	case "check":
		if hasHelpFlag(actionArgs) {
			printConfigCheckHelp()
			return 0
		}
		return runConfigCheck(actionArgs)
	case "lock":
		if hasHelpFlag(actionArgs) {
			printConfigLockHelp()
			return 0
		}
		return runConfigLock(actionArgs)
	default:
		fmt.Fprintf(os.Stderr, "Unknown config action: %s\n", action)
		return 1
	}
}

// runConfigCheck validates config.yaml, compiles every pipeline and compares
// files against .checksums when one exists. --strict requires .checksums.
func runConfigCheck(args []string) int {
	fs := flag.NewFlagSet("check", flag.ContinueOnError)
	configPath := fs.String("config", "", "Path to configuration file or directory")
	strict := fs.Bool("strict", false, "Fail when .checksums is missing")
	jsonOut := fs.Bool("json", false, "Output in structured JSON format")
	if err := fs.Parse(args); err != nil {
		fmt.Fprintf(os.Stderr, "Flag error: %v\n", err)
		return 1
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Load error: %v\n", err)
		return 1
	}

	result := doctor.New(cfg, ffmpeg.DefaultOperators(), doctor.Options{Strict: *strict}).Validate()

	if *jsonOut {
		out, err := doctor.FormatJSON(result)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to render JSON: %v\n", err)
			return 1
		}
		fmt.Println(out)
	} else {
		fmt.Printf("Config directory: %s\n", cfg.Dir)
		fmt.Print(doctor.FormatHuman(result))
	}
	if !result.Valid {
		return 1
	}
	return 0
}

func runConfigLock(args []string) int {
	fs := flag.NewFlagSet("lock", flag.ContinueOnError)
	configPath := fs.String("config", "", "Path to configuration file or directory")
	verbose := fs.Bool("v", false, "List every hashed file")
	if err := fs.Parse(args); err != nil {
		fmt.Fprintf(os.Stderr, "Flag error: %v\n", err)
		return 1
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Load error: %v\n", err)
		return 1
	}

	// Refuse to lock pipelines that do not compile.
	if _, err := loadPipelines(cfg, ""); err != nil {
		fmt.Fprintf(os.Stderr, "Compile error: %v\n", err)
		return 1
	}

	manifest, err := config.Lock(cfg.Dir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Lock failed: %v\n", err)
		return 1
	}

	if *verbose {
		files := make([]string, 0, len(manifest.Hashes))
		for rel := range manifest.Hashes {
			files = append(files, rel)
		}
		sort.Strings(files)
		for _, rel := range files {
			fmt.Printf("HASH %s: %s\n", rel, manifest.Hashes[rel])
		}
	}
	fmt.Printf("Locked %d file(s) in %s\n", len(manifest.Hashes), cfg.Dir)
	return 0
}

func runCacheNoun(args []string) int {
	if len(args) < 1 {
		printCacheNounHelp(os.Stderr)
		return 1
	}
	if isHelpToken(args[0]) {
		printCacheNounHelp(os.Stdout)
		return 0
	}

	switch args[0] {
	case "recent":
		return runCacheRecent(args[1:])
	default:
		fmt.Fprintf(os.Stderr, "Unknown cache action: %s\n", args[0])
		return 1
	}
}

func runCacheRecent(args []string) int {
	fs := flag.NewFlagSet("recent", flag.ContinueOnError)
	configPath := fs.String("config", "", "Path to configuration file or directory")
	limit := fs.Int("limit", 20, "Maximum number of entries")
	jsonOut := fs.Bool("json", false, "Output in structured JSON format")
	if err := fs.Parse(args); err != nil {
		fmt.Fprintf(os.Stderr, "Flag error: %v\n", err)
		return 1
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Load error: %v\n", err)
		return 1
	}

	ctx := context.Background()
	store, err := openCache(ctx, cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Cache error: %v\n", err)
		return 1
	}
	if store == nil {
		fmt.Fprintln(os.Stderr, "Compile cache is disabled (cache.enabled: false)")
		return 1
	}
	defer store.Close()

	entries, err := store.Recent(ctx, *limit)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Cache error: %v\n", err)
		return 1
	}

	if *jsonOut {
		data, err := json.MarshalIndent(entries, "", "  ")
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to render JSON: %v\n", err)
			return 1
		}
		fmt.Println(string(data))
		return 0
	}

	for _, e := range entries {
		fmt.Printf("%s  %-20s hits=%d  %s\n", e.CreatedAt.Format("2006-01-02T15:04:05Z"), e.Name, e.Hits, e.Fingerprint)
		fmt.Printf("    %s\n", inspect.QuoteCommand(e.Args))
	}
	return 0
}

func printConfigCheckHelp() {
	fmt.Println("Usage: ffgraph config check [--config PATH] [--strict] [--json]")
	fmt.Println("Validate config.yaml, compile every pipeline and verify .checksums.")
	fmt.Println("")
	fmt.Println("Exit codes:")
	fmt.Println("  0  All checks passed")
	fmt.Println("  1  One or more checks failed")
}

func printConfigLockHelp() {
	fmt.Println("Usage: ffgraph config lock [--config PATH] [-v]")
	fmt.Println("Compile every pipeline, then write BLAKE3 checksums of config.yaml and pipeline files to .checksums.")
}
