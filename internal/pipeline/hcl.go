package pipeline

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/zclconf/go-cty/cty"
)

// hclFile is the top-level structure of an HCL pipeline file:
//
//	pipeline "thumbnail" {
//	  overwrite_output = true
//	  node "in" {
//	    op   = "input"
//	    args = ["in.mp4"]
//	  }
//	  node "small" {
//	    op     = "filter"
//	    inputs = ["in"]
//	    args   = ["scale", 320, -1]
//	  }
//	}
type hclFile struct {
	Pipelines []*hclPipeline `hcl:"pipeline,block"`
}

type hclPipeline struct {
	Name            string     `hcl:"name,label"`
	Description     string     `hcl:"description,optional"`
	OverwriteOutput bool       `hcl:"overwrite_output,optional"`
	Outputs         []string   `hcl:"outputs,optional"`
	Nodes           []*hclNode `hcl:"node,block"`
}

type hclNode struct {
	ID     string         `hcl:"id,label"`
	Op     string         `hcl:"op"`
	Inputs []string       `hcl:"inputs,optional"`
	Target string         `hcl:"target,optional"`
	Args   hcl.Expression `hcl:"args,optional"`
	Kwargs hcl.Expression `hcl:"kwargs,optional"`
}

// LoadHCLFile parses one HCL pipeline file.
func LoadHCLFile(path string) (*FileSpec, error) {
	return loadHCLFile(path, hclparse.NewParser())
}

// ParseHCL parses pipeline definitions from HCL bytes; filename is used in
// diagnostics only.
func ParseHCL(data []byte, filename string) (*FileSpec, error) {
	f, diags := hclparse.NewParser().ParseHCL(data, filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("parse pipeline file %q: %w", filename, diags)
	}
	return decodeHCL(f, filename)
}

func loadHCLFile(path string, parser *hclparse.Parser) (*FileSpec, error) {
	f, diags := parser.ParseHCLFile(path)
	if diags.HasErrors() {
		return nil, fmt.Errorf("parse pipeline file %q: %w", path, diags)
	}
	return decodeHCL(f, path)
}

func decodeHCL(f *hcl.File, filename string) (*FileSpec, error) {
	var parsed hclFile
	if diags := gohcl.DecodeBody(f.Body, nil, &parsed); diags.HasErrors() {
		return nil, fmt.Errorf("decode pipeline file %q: %w", filename, diags)
	}

	out := &FileSpec{Pipelines: make([]PipelineSpec, 0, len(parsed.Pipelines))}
	for _, p := range parsed.Pipelines {
		spec := PipelineSpec{
			Name:            strings.TrimSpace(p.Name),
			Description:     p.Description,
			OverwriteOutput: p.OverwriteOutput,
			Outputs:         p.Outputs,
		}
		for _, n := range p.Nodes {
			node, err := nodeFromHCL(n)
			if err != nil {
				return nil, fmt.Errorf("%s: pipeline %q: %w", filename, p.Name, err)
			}
			spec.Nodes = append(spec.Nodes, node)
		}
		out.Pipelines = append(out.Pipelines, spec)
	}
	return out, nil
}

func nodeFromHCL(n *hclNode) (NodeSpec, error) {
	node := NodeSpec{ID: n.ID, Op: n.Op, Inputs: n.Inputs, Target: n.Target}

	args, diags := n.Args.Value(nil)
	if diags.HasErrors() {
		return NodeSpec{}, fmt.Errorf("node %q args: %w", n.ID, diags)
	}
	if !args.IsNull() {
		v, err := ctyToGo(args)
		if err != nil {
			return NodeSpec{}, fmt.Errorf("node %q args: %w", n.ID, err)
		}
		list, ok := v.([]any)
		if !ok {
			return NodeSpec{}, fmt.Errorf("node %q args: expected a list", n.ID)
		}
		node.Args = list
	}

	kwargs, diags := n.Kwargs.Value(nil)
	if diags.HasErrors() {
		return NodeSpec{}, fmt.Errorf("node %q kwargs: %w", n.ID, diags)
	}
	if !kwargs.IsNull() {
		v, err := ctyToGo(kwargs)
		if err != nil {
			return NodeSpec{}, fmt.Errorf("node %q kwargs: %w", n.ID, err)
		}
		m, ok := v.(map[string]any)
		if !ok {
			return NodeSpec{}, fmt.Errorf("node %q kwargs: expected an object", n.ID)
		}
		node.Kwargs = m
	}
	return node, nil
}

// ctyToGo converts a known cty value to plain Go values: whole numbers
// become int, other numbers float64.
func ctyToGo(v cty.Value) (any, error) {
	if v.IsNull() {
		return nil, nil
	}
	if !v.IsKnown() {
		return nil, fmt.Errorf("value is not known")
	}
	t := v.Type()
	switch {
	case t == cty.String:
		return v.AsString(), nil
	case t == cty.Bool:
		return v.True(), nil
	case t == cty.Number:
		f := v.AsBigFloat()
		if f.IsInt() {
			if i, acc := f.Int64(); acc == big.Exact {
				return int(i), nil
			}
		}
		fl, _ := f.Float64()
		return fl, nil
	case t.IsTupleType() || t.IsListType() || t.IsSetType():
		var out []any
		for it := v.ElementIterator(); it.Next(); {
			_, ev := it.Element()
			gv, err := ctyToGo(ev)
			if err != nil {
				return nil, err
			}
			out = append(out, gv)
		}
		return out, nil
	case t.IsObjectType() || t.IsMapType():
		out := make(map[string]any)
		for it := v.ElementIterator(); it.Next(); {
			k, ev := it.Element()
			gv, err := ctyToGo(ev)
			if err != nil {
				return nil, err
			}
			out[k.AsString()] = gv
		}
		return out, nil
	default:
		return nil, fmt.Errorf("unsupported value type %s", t.FriendlyName())
	}
}
