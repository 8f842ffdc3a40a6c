// Package doctor validates an ffgraph configuration directory: config
// settings, every pipeline file, and the recorded checksums.
package doctor

import (
	"encoding/json"
	"fmt"
	"net"
	"os/exec"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/mattjoyce/ffgraph/internal/config"
	"github.com/mattjoyce/ffgraph/internal/pipeline"
	"github.com/mattjoyce/ffgraph/pkg/dag"
	"github.com/mattjoyce/ffgraph/pkg/ffmpeg"
	"github.com/mattjoyce/ffgraph/pkg/graph"
)

var envVarRe = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)\}`)

// Result holds the outcome of a validation run.
type Result struct {
	Valid     bool     `json:"valid"`
	Pipelines []string `json:"pipelines"`
	Errors    []Issue  `json:"errors,omitempty"`
	Warnings  []Issue  `json:"warnings,omitempty"`
}

// Issue describes a single validation error or warning.
type Issue struct {
	Category string `json:"category"`
	Message  string `json:"message"`
	Field    string `json:"field,omitempty"`
}

// Options tunes a validation run.
type Options struct {
	// Strict turns a missing .checksums file into an error.
	Strict bool
	// LookPath resolves the ffmpeg binary; nil means exec.LookPath.
	LookPath func(string) (string, error)
}

// Doctor validates a loaded config and the pipelines it points at.
type Doctor struct {
	cfg  *config.Config
	ops  *graph.OperatorTable
	opts Options
}

// New creates a Doctor. A nil ops table means ffmpeg.DefaultOperators.
func New(cfg *config.Config, ops *graph.OperatorTable, opts Options) *Doctor {
	if ops == nil {
		ops = ffmpeg.DefaultOperators()
	}
	if opts.LookPath == nil {
		opts.LookPath = exec.LookPath
	}
	return &Doctor{cfg: cfg, ops: ops, opts: opts}
}

// Validate runs all checks and returns a result.
func (d *Doctor) Validate() *Result {
	r := &Result{Valid: true, Pipelines: []string{}}

	d.validatePipelines(r)
	d.validateChecksums(r)
	d.warnMissingBinary(r)
	d.warnExposedAPI(r)
	d.warnMissingEnvVars(r)

	r.Valid = len(r.Errors) == 0
	return r
}

func (d *Doctor) addError(r *Result, category, field, msg string) {
	r.Errors = append(r.Errors, Issue{Category: category, Field: field, Message: msg})
}

func (d *Doctor) addWarning(r *Result, category, field, msg string) {
	r.Warnings = append(r.Warnings, Issue{Category: category, Field: field, Message: msg})
}

// validatePipelines compiles each pipeline on its own so that one broken
// definition does not hide the others.
func (d *Doctor) validatePipelines(r *Result) {
	root := d.cfg.PipelinesRoot()
	files, err := pipeline.DiscoverFiles(root)
	if err != nil {
		d.addError(r, "pipelines", "", err.Error())
		return
	}
	if len(files) == 0 {
		d.addWarning(r, "pipelines", "", fmt.Sprintf("no pipeline files in %s", filepath.Join(root, "pipelines")))
		return
	}

	seen := make(map[string]string)
	for _, path := range files {
		rel, relErr := filepath.Rel(root, path)
		if relErr != nil {
			rel = path
		}
		rel = filepath.ToSlash(rel)

		var file *pipeline.FileSpec
		if strings.EqualFold(filepath.Ext(path), ".hcl") {
			file, err = pipeline.LoadHCLFile(path)
		} else {
			file, err = pipeline.LoadFile(path)
		}
		if err != nil {
			d.addError(r, "pipelines", rel, err.Error())
			continue
		}

		for i, spec := range file.Pipelines {
			field := fmt.Sprintf("%s: pipelines[%d]", rel, i)
			name := strings.TrimSpace(spec.Name)
			if name == "" {
				d.addError(r, "pipelines", field, "name is required")
				continue
			}
			if prev, dup := seen[name]; dup {
				d.addError(r, "pipelines", field, fmt.Sprintf("duplicate pipeline name %q (first defined in %s)", name, prev))
				continue
			}
			seen[name] = rel

			p, err := pipeline.Compile(spec, d.ops)
			if err != nil {
				d.addError(r, "pipelines", field, fmt.Sprintf("pipeline %q: %v", name, err))
				continue
			}
			r.Pipelines = append(r.Pipelines, name)
			d.warnUnreachableNodes(r, field, p)
		}
	}
}

// warnUnreachableNodes flags declared nodes that feed no output.
func (d *Doctor) warnUnreachableNodes(r *Result, field string, p *pipeline.Pipeline) {
	roots := make([]dag.Vertex, 0, len(p.Outputs))
	for _, s := range p.Outputs {
		roots = append(roots, s.Node())
	}
	sorted, err := dag.TopoSort(roots)
	if err != nil {
		d.addError(r, "pipelines", field, err.Error())
		return
	}
	reachable := make(map[uint64]bool, len(sorted.Nodes))
	for _, v := range sorted.Nodes {
		reachable[sorted.Hash(v)] = true
	}
	for _, id := range p.NodeIDs {
		if !reachable[sorted.Hash(p.Nodes[id])] {
			d.addWarning(r, "pipelines", field,
				fmt.Sprintf("pipeline %q: node %q does not reach an output", p.Name, id))
		}
	}
}

// validateChecksums compares tracked files against .checksums.
func (d *Doctor) validateChecksums(r *Result) {
	if _, err := config.LoadChecksums(d.cfg.Dir); err != nil {
		if d.opts.Strict {
			d.addError(r, "integrity", ".checksums", err.Error())
		} else {
			d.addWarning(r, "integrity", ".checksums", err.Error())
		}
		return
	}
	problems, err := config.Verify(d.cfg.Dir)
	if err != nil {
		d.addError(r, "integrity", ".checksums", err.Error())
		return
	}
	for _, p := range problems {
		d.addError(r, "integrity", "", p)
	}
}

func (d *Doctor) warnMissingBinary(r *Result) {
	if _, err := d.opts.LookPath(d.cfg.FFmpeg.Binary); err != nil {
		d.addWarning(r, "ffmpeg", "ffmpeg.binary",
			fmt.Sprintf("%q not found; compiled commands will not run here", d.cfg.FFmpeg.Binary))
	}
}

// warnExposedAPI warns when the compile service listens beyond loopback
// without an api_key.
func (d *Doctor) warnExposedAPI(r *Result) {
	if d.cfg.API.APIKey != "" {
		return
	}
	host, _, err := net.SplitHostPort(d.cfg.API.Listen)
	if err != nil {
		d.addError(r, "api", "api.listen", fmt.Sprintf("invalid listen address %q: %v", d.cfg.API.Listen, err))
		return
	}
	if host == "localhost" {
		return
	}
	if ip := net.ParseIP(host); ip != nil && ip.IsLoopback() {
		return
	}
	d.addWarning(r, "api", "api.api_key",
		fmt.Sprintf("POST /compile on %s is unauthenticated", d.cfg.API.Listen))
}

// warnMissingEnvVars warns about ${VAR} references left unresolved.
func (d *Doctor) warnMissingEnvVars(r *Result) {
	fields := map[string]string{
		"api.api_key":   d.cfg.API.APIKey,
		"ffmpeg.binary": d.cfg.FFmpeg.Binary,
		"cache.path":    d.cfg.Cache.Path,
	}
	for _, field := range []string{"api.api_key", "cache.path", "ffmpeg.binary"} {
		for _, m := range envVarRe.FindAllStringSubmatch(fields[field], -1) {
			d.addWarning(r, "env_vars", field,
				fmt.Sprintf("environment variable ${%s} not set", m[1]))
		}
	}
}

// FormatHuman returns a human-readable validation report.
func FormatHuman(r *Result) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Pipelines: %d\n", len(r.Pipelines))
	for _, name := range r.Pipelines {
		fmt.Fprintf(&b, "  - %s\n", name)
	}

	switch {
	case r.Valid && len(r.Warnings) == 0:
		b.WriteString("Configuration valid.\n")
	case r.Valid:
		fmt.Fprintf(&b, "Configuration valid (%d warning(s))\n", len(r.Warnings))
	default:
		fmt.Fprintf(&b, "Configuration invalid (%d error(s), %d warning(s))\n", len(r.Errors), len(r.Warnings))
	}

	for _, e := range r.Errors {
		if e.Field != "" {
			fmt.Fprintf(&b, "  ERROR [%s] %s: %s\n", e.Category, e.Field, e.Message)
		} else {
			fmt.Fprintf(&b, "  ERROR [%s] %s\n", e.Category, e.Message)
		}
	}
	for _, w := range r.Warnings {
		if w.Field != "" {
			fmt.Fprintf(&b, "  WARN  [%s] %s: %s\n", w.Category, w.Field, w.Message)
		} else {
			fmt.Fprintf(&b, "  WARN  [%s] %s\n", w.Category, w.Message)
		}
	}

	return b.String()
}

// FormatJSON returns the result as indented JSON.
func FormatJSON(r *Result) (string, error) {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return "", err
	}
	return string(data), nil
}
