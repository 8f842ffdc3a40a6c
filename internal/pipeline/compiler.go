package pipeline

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/mattjoyce/ffgraph/pkg/dag"
	"github.com/mattjoyce/ffgraph/pkg/ffmpeg"
	"github.com/mattjoyce/ffgraph/pkg/graph"
	"github.com/zeebo/blake3"
)

// CompileSpecs compiles pipeline definitions into command lines. A nil ops
// table means ffmpeg.DefaultOperators.
func CompileSpecs(specs []PipelineSpec, ops *graph.OperatorTable) (*Set, error) {
	if ops == nil {
		ops = ffmpeg.DefaultOperators()
	}
	out := &Set{Pipelines: make(map[string]*Pipeline)}

	for i, spec := range specs {
		name := strings.TrimSpace(spec.Name)
		if name == "" {
			return nil, fmt.Errorf("pipelines[%d]: name is required", i)
		}
		if _, exists := out.Pipelines[name]; exists {
			return nil, fmt.Errorf("duplicate pipeline name %q", name)
		}

		compiled, err := Compile(spec, ops)
		if err != nil {
			return nil, fmt.Errorf("pipeline %q: %w", name, err)
		}
		out.Pipelines[name] = compiled
	}
	return out, nil
}

// Names returns the pipeline names, sorted.
func (s *Set) Names() []string {
	names := make([]string, 0, len(s.Pipelines))
	for name := range s.Pipelines {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Get returns the pipeline called name.
func (s *Set) Get(name string) (*Pipeline, bool) {
	p, ok := s.Pipelines[name]
	return p, ok
}

// Compile builds the graph described by spec and compiles it.
func Compile(spec PipelineSpec, ops *graph.OperatorTable) (*Pipeline, error) {
	if ops == nil {
		ops = ffmpeg.DefaultOperators()
	}
	if len(spec.Nodes) == 0 {
		return nil, fmt.Errorf("nodes must be non-empty")
	}

	pipeline := &Pipeline{
		Name:            strings.TrimSpace(spec.Name),
		Description:     strings.TrimSpace(spec.Description),
		OverwriteOutput: spec.OverwriteOutput,
		Nodes:           make(map[string]*graph.Node),
	}
	b := compileBuilder{
		pipeline: pipeline,
		ops:      ops,
		consumed: make(map[string]struct{}),
	}
	for i, node := range spec.Nodes {
		if err := b.compileNode(node); err != nil {
			return nil, fmt.Errorf("nodes[%d]: %w", i, err)
		}
	}

	outputs, err := b.terminalStreams(spec.Outputs)
	if err != nil {
		return nil, err
	}
	pipeline.Outputs = outputs

	args, err := ffmpeg.ArgsOf(outputs, spec.OverwriteOutput)
	if err != nil {
		return nil, err
	}
	pipeline.Args = args
	filterComplex, err := ffmpeg.FilterComplex(outputs)
	if err != nil {
		return nil, err
	}
	pipeline.FilterComplex = filterComplex

	fingerprint, err := fingerprintPipeline(pipeline)
	if err != nil {
		return nil, err
	}
	pipeline.Fingerprint = fingerprint
	return pipeline, nil
}

type compileBuilder struct {
	pipeline *Pipeline
	ops      *graph.OperatorTable
	nextAuto int
	consumed map[string]struct{}
}

func (b *compileBuilder) compileNode(spec NodeSpec) error {
	op := strings.TrimSpace(spec.Op)
	if op == "" {
		return fmt.Errorf("op is required")
	}

	inputs := make([]*graph.Stream, 0, len(spec.Inputs))
	for _, ref := range spec.Inputs {
		s, id, err := b.resolve(ref)
		if err != nil {
			return err
		}
		inputs = append(inputs, s)
		b.consumed[id] = struct{}{}
	}

	if op == OpMap {
		return b.mapStreams(spec, inputs)
	}
	if strings.TrimSpace(spec.Target) != "" {
		return fmt.Errorf("target is only valid for op %q", OpMap)
	}

	id, err := b.allocNodeID(spec.ID)
	if err != nil {
		return err
	}
	node, err := b.ops.Apply(op, inputs, graph.Params{Args: spec.Args, Kwargs: spec.Kwargs})
	if err != nil {
		return fmt.Errorf("node %q: %w", id, err)
	}
	b.pipeline.Nodes[id] = node
	b.pipeline.NodeIDs = append(b.pipeline.NodeIDs, id)
	return nil
}

func (b *compileBuilder) mapStreams(spec NodeSpec, inputs []*graph.Stream) error {
	target := strings.TrimSpace(spec.Target)
	if target == "" {
		return fmt.Errorf("op %q requires target", OpMap)
	}
	node, ok := b.pipeline.Nodes[target]
	if !ok {
		return fmt.Errorf("map target %q is not a known node", target)
	}
	if node.Kind() != graph.KindOutput {
		return fmt.Errorf("map target %q is a %s node, not output", target, node.Kind())
	}
	if len(inputs) == 0 {
		return fmt.Errorf("op %q requires inputs", OpMap)
	}
	if err := node.AttachStreams(inputs); err != nil {
		return fmt.Errorf("map onto %q: %w", target, err)
	}
	return nil
}

// resolve parses id[.label][:selector] against nodes declared so far.
func (b *compileBuilder) resolve(ref string) (*graph.Stream, string, error) {
	base, selector, hasSelector := strings.Cut(strings.TrimSpace(ref), ":")
	if hasSelector && selector == "" {
		return nil, "", fmt.Errorf("input %q: missing selector after ':'", ref)
	}
	id, label, _ := strings.Cut(base, ".")
	node, ok := b.pipeline.Nodes[id]
	if !ok {
		return nil, "", fmt.Errorf("input %q references unknown node %q", ref, id)
	}
	return node.Stream(dag.ParseLabel(label), selector), id, nil
}

func (b *compileBuilder) allocNodeID(preferred string) (string, error) {
	id := strings.TrimSpace(preferred)
	if id == "" {
		for {
			b.nextAuto++
			candidate := fmt.Sprintf("node_%d", b.nextAuto)
			if _, exists := b.pipeline.Nodes[candidate]; !exists {
				id = candidate
				break
			}
		}
	}
	if strings.ContainsAny(id, ".:") {
		return "", fmt.Errorf("node id %q must not contain '.' or ':'", id)
	}
	if _, exists := b.pipeline.Nodes[id]; exists {
		return "", fmt.Errorf("duplicate node id %q", id)
	}
	return id, nil
}

// terminalStreams resolves explicit output refs, or else collects every
// output-kind node that no other node consumes.
func (b *compileBuilder) terminalStreams(refs []string) ([]*graph.Stream, error) {
	var out []*graph.Stream
	if len(refs) > 0 {
		for _, ref := range refs {
			s, _, err := b.resolve(ref)
			if err != nil {
				return nil, fmt.Errorf("outputs: %w", err)
			}
			if s.Kind() != graph.OutputKind {
				return nil, fmt.Errorf("outputs: %q is not an output stream", ref)
			}
			out = append(out, s)
		}
		return out, nil
	}

	for _, id := range b.pipeline.NodeIDs {
		node := b.pipeline.Nodes[id]
		if node.OutgoingKind() != graph.OutputKind {
			continue
		}
		if _, used := b.consumed[id]; used {
			continue
		}
		out = append(out, node.Default())
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("pipeline has no outputs")
	}
	return out, nil
}

func fingerprintPipeline(p *Pipeline) (string, error) {
	type fingerprintNode struct {
		ID   string `json:"id"`
		Hash string `json:"hash"`
	}
	type fingerprintShape struct {
		Name  string            `json:"name"`
		Nodes []fingerprintNode `json:"nodes"`
		Args  []string          `json:"args"`
	}

	nodes := make([]fingerprintNode, 0, len(p.Nodes))
	for id, node := range p.Nodes {
		nodes = append(nodes, fingerprintNode{ID: id, Hash: node.ShortHash()})
	}
	sort.Slice(nodes, func(i, j int) bool { return nodes[i].ID < nodes[j].ID })

	body, err := json.Marshal(fingerprintShape{Name: p.Name, Nodes: nodes, Args: p.Args})
	if err != nil {
		return "", fmt.Errorf("marshal pipeline fingerprint input: %w", err)
	}
	sum := blake3.Sum256(body)
	return "blake3:" + hex.EncodeToString(sum[:]), nil
}
