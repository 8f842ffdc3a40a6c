package pipeline

import (
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/mattjoyce/ffgraph/pkg/graph"
)

func flipSpec() PipelineSpec {
	return PipelineSpec{
		Name:            "flip",
		OverwriteOutput: true,
		Nodes: []NodeSpec{
			{ID: "in", Op: "input", Args: []any{"in.mp4"}},
			{ID: "flipped", Op: "hflip", Inputs: []string{"in:v"}},
			{ID: "out", Op: "output", Inputs: []string{"flipped", "in:a"}, Args: []any{"out.mp4"}},
		},
	}
}

func TestCompileSpecsFlip(t *testing.T) {
	set, err := CompileSpecs([]PipelineSpec{flipSpec()}, nil)
	if err != nil {
		t.Fatalf("CompileSpecs() error = %v", err)
	}
	p, ok := set.Get("flip")
	if !ok {
		t.Fatalf("compiled pipeline flip not found")
	}

	want := []string{
		"-i", "in.mp4",
		"-filter_complex", "[0:v]hflip[s0]",
		"-map", "[s0]", "-map", "0:a", "out.mp4",
		"-y",
	}
	if !reflect.DeepEqual(p.Args, want) {
		t.Fatalf("args = %q, want %q", p.Args, want)
	}
	if p.FilterComplex != "[0:v]hflip[s0]" {
		t.Fatalf("filter complex = %q", p.FilterComplex)
	}
	if !reflect.DeepEqual(p.NodeIDs, []string{"in", "flipped", "out"}) {
		t.Fatalf("node ids = %v", p.NodeIDs)
	}
	if len(p.Outputs) != 1 || p.Outputs[0].Node() != p.Nodes["out"] {
		t.Fatalf("outputs = %v, want [out]", p.Outputs)
	}
	if !strings.HasPrefix(p.Fingerprint, "blake3:") {
		t.Fatalf("fingerprint = %q, want prefix blake3:", p.Fingerprint)
	}
}

func TestCompileSplitConcat(t *testing.T) {
	spec := PipelineSpec{
		Name: "montage",
		Nodes: []NodeSpec{
			{ID: "in", Op: "input", Kwargs: map[string]any{"filename": "in.mp4"}},
			{ID: "sp", Op: "split", Inputs: []string{"in"}},
			{ID: "a", Op: "trim", Inputs: []string{"sp.0"}, Kwargs: map[string]any{"start_frame": 10, "end_frame": 20}},
			{ID: "b", Op: "trim", Inputs: []string{"sp.1"}, Kwargs: map[string]any{"start_frame": 30, "end_frame": 40}},
			{ID: "joined", Op: "concat", Inputs: []string{"a", "b"}},
			{ID: "out", Op: "output", Inputs: []string{"joined"}, Kwargs: map[string]any{"filename": "out.mp4"}},
		},
	}
	p, err := Compile(spec, nil)
	if err != nil {
		t.Fatalf("Compile() error = %v", err)
	}
	wantFC := "[0]split=2[s0][s1];[s0]trim=end_frame=20:start_frame=10[s2];" +
		"[s1]trim=end_frame=40:start_frame=30[s3];[s2][s3]concat=n=2[s4]"
	if p.FilterComplex != wantFC {
		t.Fatalf("filter complex = %q, want %q", p.FilterComplex, wantFC)
	}
}

func TestCompileMapAttachesStreams(t *testing.T) {
	spec := PipelineSpec{
		Name: "remux",
		Nodes: []NodeSpec{
			{ID: "in", Op: "input", Args: []any{"in.mkv"}},
			{ID: "out", Op: "output", Args: []any{"out.mp4"}, Kwargs: map[string]any{"c": "copy"}},
			{Op: OpMap, Target: "out", Inputs: []string{"in:v", "in:a"}},
		},
	}
	p, err := Compile(spec, nil)
	if err != nil {
		t.Fatalf("Compile() error = %v", err)
	}
	want := []string{"-i", "in.mkv", "-map", "0:v", "-map", "0:a", "-c", "copy", "out.mp4"}
	if !reflect.DeepEqual(p.Args, want) {
		t.Fatalf("args = %q, want %q", p.Args, want)
	}
}

func TestCompileCollectsUnconsumedOutputs(t *testing.T) {
	spec := PipelineSpec{
		Name: "fanout",
		Nodes: []NodeSpec{
			{ID: "in", Op: "input", Args: []any{"in.mp4"}},
			{ID: "a", Op: "output", Inputs: []string{"in"}, Args: []any{"a.mp4"}},
			{ID: "b", Op: "output", Inputs: []string{"in"}, Args: []any{"b.mp4"}},
			{ID: "both", Op: "merge_outputs", Inputs: []string{"a", "b"}},
			{ID: "quiet", Op: "global_args", Inputs: []string{"both"}, Args: []any{"-hide_banner"}},
		},
	}
	p, err := Compile(spec, nil)
	if err != nil {
		t.Fatalf("Compile() error = %v", err)
	}
	want := []string{"-i", "in.mp4", "a.mp4", "b.mp4", "-hide_banner"}
	if !reflect.DeepEqual(p.Args, want) {
		t.Fatalf("args = %q, want %q", p.Args, want)
	}
	if len(p.Outputs) != 1 || p.Outputs[0].Node() != p.Nodes["quiet"] {
		t.Fatalf("outputs = %v, want [quiet]", p.Outputs)
	}
}

func TestFingerprintIsStable(t *testing.T) {
	a, err := Compile(flipSpec(), nil)
	if err != nil {
		t.Fatalf("Compile() error = %v", err)
	}
	b, err := Compile(flipSpec(), nil)
	if err != nil {
		t.Fatalf("Compile() error = %v", err)
	}
	if a.Fingerprint != b.Fingerprint {
		t.Fatalf("fingerprints differ: %s vs %s", a.Fingerprint, b.Fingerprint)
	}

	changed := flipSpec()
	changed.Nodes[2].Args = []any{"other.mp4"}
	c, err := Compile(changed, nil)
	if err != nil {
		t.Fatalf("Compile() error = %v", err)
	}
	if c.Fingerprint == a.Fingerprint {
		t.Fatalf("fingerprint did not change with output filename")
	}
}

func TestCompileErrors(t *testing.T) {
	tests := []struct {
		name    string
		nodes   []NodeSpec
		outputs []string
		want    string
		is      error
	}{
		{
			name:  "empty",
			nodes: nil,
			want:  "nodes must be non-empty",
		},
		{
			name:  "missing op",
			nodes: []NodeSpec{{ID: "in"}},
			want:  "op is required",
		},
		{
			name: "unknown ref",
			nodes: []NodeSpec{
				{ID: "f", Op: "hflip", Inputs: []string{"nope"}},
			},
			want: `references unknown node "nope"`,
		},
		{
			name: "duplicate id",
			nodes: []NodeSpec{
				{ID: "in", Op: "input", Args: []any{"a.mp4"}},
				{ID: "in", Op: "input", Args: []any{"b.mp4"}},
			},
			want: `duplicate node id "in"`,
		},
		{
			name: "unknown op",
			nodes: []NodeSpec{
				{ID: "in", Op: "input", Args: []any{"a.mp4"}},
				{ID: "x", Op: "frobnicate", Inputs: []string{"in"}},
			},
			is: graph.ErrInvalidUsage,
		},
		{
			name: "filter on output",
			nodes: []NodeSpec{
				{ID: "in", Op: "input", Args: []any{"a.mp4"}},
				{ID: "out", Op: "output", Inputs: []string{"in"}, Args: []any{"o.mp4"}},
				{ID: "x", Op: "hflip", Inputs: []string{"out"}},
			},
			is: graph.ErrTypeMismatch,
		},
		{
			name: "arity",
			nodes: []NodeSpec{
				{ID: "in", Op: "input", Args: []any{"a.mp4"}},
				{ID: "x", Op: "hflip", Inputs: []string{"in", "in"}},
			},
			is: graph.ErrArity,
		},
		{
			name: "map onto filter",
			nodes: []NodeSpec{
				{ID: "in", Op: "input", Args: []any{"a.mp4"}},
				{ID: "f", Op: "hflip", Inputs: []string{"in"}},
				{Op: OpMap, Target: "f", Inputs: []string{"in"}},
			},
			want: "not output",
		},
		{
			name: "target without map",
			nodes: []NodeSpec{
				{ID: "in", Op: "input", Args: []any{"a.mp4"}, Target: "x"},
			},
			want: "target is only valid",
		},
		{
			name: "no outputs",
			nodes: []NodeSpec{
				{ID: "in", Op: "input", Args: []any{"a.mp4"}},
			},
			want: "pipeline has no outputs",
		},
		{
			name: "explicit non-output",
			nodes: []NodeSpec{
				{ID: "in", Op: "input", Args: []any{"a.mp4"}},
				{ID: "out", Op: "output", Inputs: []string{"in"}, Args: []any{"o.mp4"}},
			},
			outputs: []string{"in"},
			want:    "is not an output stream",
		},
		{
			name: "bad selector",
			nodes: []NodeSpec{
				{ID: "in", Op: "input", Args: []any{"a.mp4"}},
				{ID: "out", Op: "output", Inputs: []string{"in:"}, Args: []any{"o.mp4"}},
			},
			want: "missing selector",
		},
		{
			name: "extra filename args",
			nodes: []NodeSpec{
				{ID: "in", Op: "input", Args: []any{"a.mp4", "extra"}},
				{ID: "out", Op: "output", Inputs: []string{"in"}, Args: []any{"o.mp4"}},
			},
			want: "expected one positional filename",
			is:   graph.ErrInvalidUsage,
		},
		{
			name: "unmapped output",
			nodes: []NodeSpec{
				{ID: "out", Op: "output", Args: []any{"o.mp4"}},
			},
			want: "no mapped streams",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Compile(PipelineSpec{Name: tt.name, Nodes: tt.nodes, Outputs: tt.outputs}, nil)
			if err == nil {
				t.Fatalf("Compile() error = nil")
			}
			if tt.want != "" && !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("error = %q, want substring %q", err.Error(), tt.want)
			}
			if tt.is != nil && !errors.Is(err, tt.is) {
				t.Fatalf("error = %v, want errors.Is %v", err, tt.is)
			}
		})
	}
}

func TestCompileSpecsRejectsDuplicateNames(t *testing.T) {
	_, err := CompileSpecs([]PipelineSpec{flipSpec(), flipSpec()}, nil)
	if err == nil || !strings.Contains(err.Error(), `duplicate pipeline name "flip"`) {
		t.Fatalf("error = %v, want duplicate pipeline name", err)
	}

	_, err = CompileSpecs([]PipelineSpec{{Name: "  "}}, nil)
	if err == nil || !strings.Contains(err.Error(), "name is required") {
		t.Fatalf("error = %v, want name is required", err)
	}
}

func TestCompileUsesCustomOperators(t *testing.T) {
	ops := graph.NewOperatorTable()
	if err := ops.RegisterFilter("hflip", func(in []*graph.Stream, p graph.Params) (*graph.Node, error) {
		return graph.NewFilterNode(in, "hflip", 1, p)
	}); err != nil {
		t.Fatalf("RegisterFilter() error = %v", err)
	}
	_, err := Compile(flipSpec(), ops)
	if !errors.Is(err, graph.ErrInvalidUsage) {
		t.Fatalf("error = %v, want unknown operator", err)
	}
}
