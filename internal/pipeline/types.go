package pipeline

import "github.com/mattjoyce/ffgraph/pkg/graph"

// FileSpec is one pipeline file containing one or more pipelines.
type FileSpec struct {
	Pipelines []PipelineSpec `yaml:"pipelines" json:"pipelines"`
}

// PipelineSpec defines a single pipeline entry.
type PipelineSpec struct {
	Name            string     `yaml:"name" json:"name"`
	Description     string     `yaml:"description,omitempty" json:"description,omitempty"`
	OverwriteOutput bool       `yaml:"overwrite_output,omitempty" json:"overwrite_output,omitempty"`
	Outputs         []string   `yaml:"outputs,omitempty" json:"outputs,omitempty"`
	Nodes           []NodeSpec `yaml:"nodes" json:"nodes"`
}

// NodeSpec is one operation applied to the streams named in Inputs.
// Inputs are references of the form id[.label][:selector], e.g. "in:v",
// "sp.1" or "logo". The "map" op attaches Inputs to the output node named by
// Target instead of creating a node.
type NodeSpec struct {
	ID     string         `yaml:"id,omitempty" json:"id,omitempty"`
	Op     string         `yaml:"op" json:"op"`
	Inputs []string       `yaml:"inputs,omitempty" json:"inputs,omitempty"`
	Target string         `yaml:"target,omitempty" json:"target,omitempty"`
	Args   []any          `yaml:"args,omitempty" json:"args,omitempty"`
	Kwargs map[string]any `yaml:"kwargs,omitempty" json:"kwargs,omitempty"`
}

// OpMap attaches streams to an existing output node.
const OpMap = "map"

// Pipeline is one compiled pipeline.
type Pipeline struct {
	Name            string
	Description     string
	OverwriteOutput bool
	// NodeIDs lists node ids in declaration order; map steps are not nodes.
	NodeIDs       []string
	Nodes         map[string]*graph.Node
	Outputs       []*graph.Stream
	Args          []string
	FilterComplex string
	Fingerprint   string // blake3:<hex> of name, node hashes and args.
}

// Set is a compiled collection of pipelines keyed by name.
type Set struct {
	Pipelines map[string]*Pipeline
}
