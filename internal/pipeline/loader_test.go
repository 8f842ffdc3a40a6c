package pipeline

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

const flipYAML = `
pipelines:
  - name: " flip "
    overwrite_output: true
    nodes:
      - id: in
        op: input
        args: [in.mp4]
      - id: flipped
        op: hflip
        inputs: ["in:v"]
      - id: out
        op: output
        inputs: [flipped, "in:a"]
        kwargs:
          filename: out.mp4
          video_bitrate: 1M
`

const thumbHCL = `
pipeline "thumb" {
  description = "scaled thumbnail"

  node "in" {
    op   = "input"
    args = ["in.mp4"]
  }

  node "small" {
    op     = "filter"
    inputs = ["in"]
    args   = ["scale", 320, -1]
  }

  node "out" {
    op     = "output"
    inputs = ["small"]
    kwargs = {
      filename = "thumb.png"
      vframes  = 1
    }
  }
}
`

func writePipelineFile(t *testing.T, dir, name, body string) {
	t.Helper()
	pipelinesDir := filepath.Join(dir, "pipelines")
	if err := os.MkdirAll(pipelinesDir, 0o755); err != nil {
		t.Fatalf("mkdir pipelines: %v", err)
	}
	if err := os.WriteFile(filepath.Join(pipelinesDir, name), []byte(body), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
}

func TestLoadAndCompileDir(t *testing.T) {
	dir := t.TempDir()
	writePipelineFile(t, dir, "flip.yaml", flipYAML)
	writePipelineFile(t, dir, "thumb.hcl", thumbHCL)
	writePipelineFile(t, dir, "notes.txt", "ignored")

	set, err := LoadAndCompileDir(dir, nil)
	if err != nil {
		t.Fatalf("LoadAndCompileDir() error = %v", err)
	}
	if got := set.Names(); !reflect.DeepEqual(got, []string{"flip", "thumb"}) {
		t.Fatalf("names = %v, want [flip thumb]", got)
	}

	flip := set.Pipelines["flip"]
	wantFlip := []string{
		"-i", "in.mp4",
		"-filter_complex", "[0:v]hflip[s0]",
		"-map", "[s0]", "-map", "0:a", "-b:v", "1M", "out.mp4",
		"-y",
	}
	if !reflect.DeepEqual(flip.Args, wantFlip) {
		t.Fatalf("flip args = %q, want %q", flip.Args, wantFlip)
	}

	thumb := set.Pipelines["thumb"]
	wantThumb := []string{
		"-i", "in.mp4",
		"-filter_complex", "[0]scale=320:-1[s0]",
		"-map", "[s0]", "-vframes", "1", "thumb.png",
	}
	if !reflect.DeepEqual(thumb.Args, wantThumb) {
		t.Fatalf("thumb args = %q, want %q", thumb.Args, wantThumb)
	}
	if thumb.Description != "scaled thumbnail" {
		t.Fatalf("description = %q", thumb.Description)
	}
}

func TestLoadAndCompileDirMissing(t *testing.T) {
	set, err := LoadAndCompileDir(t.TempDir(), nil)
	if err != nil {
		t.Fatalf("LoadAndCompileDir() error = %v", err)
	}
	if len(set.Pipelines) != 0 {
		t.Fatalf("pipelines = %d, want 0", len(set.Pipelines))
	}
}

func TestLoadAndCompileDirDuplicateAcrossFiles(t *testing.T) {
	dir := t.TempDir()
	writePipelineFile(t, dir, "a.yaml", flipYAML)
	writePipelineFile(t, dir, "b.yml", flipYAML)

	_, err := LoadAndCompileDir(dir, nil)
	if err == nil || !strings.Contains(err.Error(), "duplicate pipeline name") {
		t.Fatalf("error = %v, want duplicate pipeline name", err)
	}
}

func TestLoadFileErrors(t *testing.T) {
	dir := t.TempDir()
	writePipelineFile(t, dir, "bad.yaml", "pipelines: [")
	writePipelineFile(t, dir, "bad.hcl", `pipeline "x" { node "a" { } }`)

	if _, err := LoadFile(filepath.Join(dir, "pipelines", "bad.yaml")); err == nil {
		t.Fatalf("LoadFile(bad.yaml) error = nil")
	}
	_, err := LoadFile(filepath.Join(dir, "pipelines", "bad.hcl"))
	if err == nil || !strings.Contains(err.Error(), "decode pipeline file") {
		t.Fatalf("LoadFile(bad.hcl) error = %v, want decode error", err)
	}
	if _, err := LoadFile(filepath.Join(dir, "pipelines", "missing.yaml")); err == nil {
		t.Fatalf("LoadFile(missing) error = nil")
	}
}

func TestParseHCLValues(t *testing.T) {
	spec, err := ParseHCL([]byte(`
pipeline "values" {
  outputs = ["out"]
  node "n" {
    op     = "input"
    args   = ["a.mp4", 1.5, true]
    kwargs = { list = [1, 2], nested = { k = "v" } }
  }
}
`), "values.hcl")
	if err != nil {
		t.Fatalf("ParseHCL() error = %v", err)
	}
	if len(spec.Pipelines) != 1 || len(spec.Pipelines[0].Nodes) != 1 {
		t.Fatalf("spec = %+v", spec)
	}
	p := spec.Pipelines[0]
	if !reflect.DeepEqual(p.Outputs, []string{"out"}) {
		t.Fatalf("outputs = %v", p.Outputs)
	}
	n := p.Nodes[0]
	if !reflect.DeepEqual(n.Args, []any{"a.mp4", 1.5, true}) {
		t.Fatalf("args = %#v", n.Args)
	}
	wantKwargs := map[string]any{
		"list":   []any{1, 2},
		"nested": map[string]any{"k": "v"},
	}
	if !reflect.DeepEqual(n.Kwargs, wantKwargs) {
		t.Fatalf("kwargs = %#v, want %#v", n.Kwargs, wantKwargs)
	}
}

func TestParseYAMLTrimsNames(t *testing.T) {
	spec, err := ParseYAML([]byte(flipYAML))
	if err != nil {
		t.Fatalf("ParseYAML() error = %v", err)
	}
	if spec.Pipelines[0].Name != "flip" {
		t.Fatalf("name = %q, want flip", spec.Pipelines[0].Name)
	}
	if spec.Pipelines[0].Nodes[2].Kwargs["video_bitrate"] != "1M" {
		t.Fatalf("kwargs = %v", spec.Pipelines[0].Nodes[2].Kwargs)
	}
}
