package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"runtime/debug"
	"strings"
	"time"

	"github.com/mattjoyce/ffgraph/internal/config"
	"github.com/mattjoyce/ffgraph/internal/log"
)

var (
	version   = "0.1.0-dev"
	gitCommit = "unknown"
	buildDate = "unknown"
)

func main() {
	os.Exit(runCLI(os.Args[1:]))
}

func runCLI(cliArgs []string) int {
	if len(cliArgs) < 1 {
		printUsage()
		return 1
	}

	cmd := cliArgs[0]
	args := cliArgs[1:]

	switch cmd {
	case "compile":
		if hasHelpFlag(args) {
			printCompileHelp()
			return 0
		}
		return runCompile(args)
	case "inspect":
		if hasHelpFlag(args) {
			printInspectHelp()
			return 0
		}
		return runInspect(args)
	case "operators":
		return runOperators(args)
	case "serve":
		if hasHelpFlag(args) {
			printServeHelp()
			return 0
		}
		return runServe(args)
	case "config":
		return runConfigNoun(args)
	case "cache":
		return runCacheNoun(args)
	case "version", "--version":
		return runVersion(args)
	case "help", "--help", "-h":
		printUsage()
		return 0
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", cmd)
		printUsage()
		return 1
	}
}

type versionInfo struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	BuildTime string `json:"build_time"`
}

func runVersion(args []string) int {
	fs := flag.NewFlagSet("version", flag.ContinueOnError)
	jsonOut := fs.Bool("json", false, "Output version metadata as JSON")
	if err := fs.Parse(args); err != nil {
		fmt.Fprintf(os.Stderr, "Flag error: %v\n", err)
		return 1
	}
	if fs.NArg() > 0 {
		fmt.Fprintln(os.Stderr, "Usage: ffgraph version [--json]")
		return 1
	}

	info := currentVersionInfo()

	if *jsonOut {
		data, err := json.MarshalIndent(info, "", "  ")
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to render version JSON: %v\n", err)
			return 1
		}
		fmt.Println(string(data))
		return 0
	}

	fmt.Printf("ffgraph %s\n", info.Version)
	fmt.Printf("commit: %s\n", info.Commit)
	fmt.Printf("built_at: %s\n", info.BuildTime)
	return 0
}

func currentVersionInfo() versionInfo {
	info := versionInfo{
		Version:   strings.TrimSpace(version),
		Commit:    "unknown",
		BuildTime: "unknown",
	}
	if info.Version == "" {
		info.Version = "0.0.0-dev"
	}

	commit := strings.TrimSpace(gitCommit)
	if commit == "" || commit == "unknown" {
		commit = strings.TrimSpace(readBuildSetting("vcs.revision"))
	}
	if commit != "" {
		info.Commit = shortenCommit(commit)
	}

	built := strings.TrimSpace(buildDate)
	if built == "" || built == "unknown" {
		built = strings.TrimSpace(readBuildSetting("vcs.time"))
	}
	if normalized, ok := normalizeBuildTimeUTC(built); ok {
		info.BuildTime = normalized
	}
	return info
}

func shortenCommit(commit string) string {
	if len(commit) <= 12 {
		return commit
	}
	return commit[:12]
}

func normalizeBuildTimeUTC(raw string) (string, bool) {
	if raw == "" || raw == "unknown" {
		return "", false
	}
	t, err := time.Parse(time.RFC3339Nano, raw)
	if err != nil {
		return "", false
	}
	return t.UTC().Format(time.RFC3339), true
}

func readBuildSetting(key string) string {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return ""
	}
	for _, setting := range info.Settings {
		if setting.Key == key {
			return setting.Value
		}
	}
	return ""
}

// loadConfig loads the config at path, or the discovered one, and sets up
// logging from it. Logs go to stderr so stdout stays parseable.
func loadConfig(path string) (*config.Config, error) {
	cfg, err := config.LoadDiscovered(path)
	if err != nil {
		return nil, err
	}
	log.SetupWriter(os.Stderr, cfg.Service.LogLevel, cfg.Service.LogFormat)
	return cfg, nil
}

func isHelpToken(token string) bool {
	return token == "help" || token == "--help" || token == "-h"
}

func hasHelpFlag(args []string) bool {
	for _, arg := range args {
		if arg == "--help" || arg == "-h" {
			return true
		}
	}
	return false
}

func printUsage() {
	fmt.Print(`ffgraph - compile declarative media filter graphs into ffmpeg command lines

Usage:
  ffgraph <command> [flags]

Pipeline Commands:
  compile [NAME...]   Print the command line of each pipeline
  inspect NAME        Show nodes, edges and command line of a pipeline
  operators           List the operators pipeline files may use
  serve               Run the HTTP compile service

Config Commands:
  config check        Validate config, pipelines and checksums
  config lock         Record checksums of config and pipeline files

Cache Commands:
  cache recent        Show recently cached compilations

General:
  version             Show version information
  help                Show this help message

Flags shared by most commands:
  --config PATH       Config file or directory (default: discovered)
`)
}

func printCompileHelp() {
	fmt.Println("Usage: ffgraph compile [--config PATH] [--file FILE] [--json] [NAME...]")
	fmt.Println("Compile pipelines and print one command line per pipeline.")
	fmt.Println("With --file, pipelines are read from FILE instead of the config directory.")
}

func printInspectHelp() {
	fmt.Println("Usage: ffgraph inspect [--config PATH] [--file FILE] [--json] [--plain] NAME")
	fmt.Println("Show the compiled graph of one pipeline.")
}

func printServeHelp() {
	fmt.Println("Usage: ffgraph serve [--config PATH] [--listen ADDR]")
	fmt.Println("Serve GET /pipelines, POST /compile and related routes until interrupted.")
}

func printConfigNounHelp(w *os.File) {
	fmt.Fprintln(w, "Usage: ffgraph config <action> [flags]")
	fmt.Fprintln(w, "Actions: check, lock")
}

func printCacheNounHelp(w *os.File) {
	fmt.Fprintln(w, "Usage: ffgraph cache <action> [flags]")
	fmt.Fprintln(w, "Actions: recent")
}
