package ffmpeg

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/mattjoyce/ffgraph/pkg/dag"
	"github.com/mattjoyce/ffgraph/pkg/graph"
)

// ErrNeedsSplit is returned when one filter output feeds more than one
// consumer.
var ErrNeedsSplit = errors.New("a split filter is probably required")

// ErrUnmappedOutput is returned when an output node has no streams.
var ErrUnmappedOutput = errors.New("output node has no mapped streams")

// Args compiles the graph upstream of streams into ffmpeg arguments, without
// the binary name. overwrite appends -y.
func Args(streams []OutputStream, overwrite bool) ([]string, error) {
	in, err := graphOutputs(streams)
	if err != nil {
		return nil, err
	}
	return ArgsOf(in, overwrite)
}

// Compile is Args prefixed with cmd, e.g. "ffmpeg".
func Compile(cmd string, streams []OutputStream, overwrite bool) ([]string, error) {
	args, err := Args(streams, overwrite)
	if err != nil {
		return nil, err
	}
	return append([]string{cmd}, args...), nil
}

// ArgsOf is Args on IR streams. Every stream must be an output stream.
func ArgsOf(streams []*graph.Stream, overwrite bool) ([]string, error) {
	for _, s := range streams {
		if s != nil && s.Kind() != graph.OutputKind {
			return nil, &graph.TypeMismatchError{
				Expected: graph.StreamKindsOf(graph.OutputKind).String(),
				Actual:   s.Kind().String(),
				Msg:      "compiled stream",
			}
		}
	}
	p, err := newPlan(streams)
	if err != nil {
		return nil, err
	}
	filterArg, err := p.filterComplex()
	if err != nil {
		return nil, err
	}

	var args []string
	for _, n := range p.inputs {
		a, err := inputArgs(n)
		if err != nil {
			return nil, err
		}
		args = append(args, a...)
	}
	if filterArg != "" {
		args = append(args, "-filter_complex", filterArg)
	}
	for _, n := range p.outputs {
		a, err := outputArgs(n, p.names)
		if err != nil {
			return nil, err
		}
		args = append(args, a...)
	}
	for _, n := range p.globals {
		for _, a := range n.Args() {
			args = append(args, fmt.Sprint(a))
		}
	}
	if overwrite {
		args = append(args, overwriteFlag)
	}
	return args, nil
}

// FilterComplex renders only the -filter_complex value for streams, empty
// when the graph has no filters.
func FilterComplex(streams []*graph.Stream) (string, error) {
	p, err := newPlan(streams)
	if err != nil {
		return "", err
	}
	return p.filterComplex()
}

// plan is the sorted graph split by node kind.
type plan struct {
	sorted  *dag.Sorted
	names   *streamNames
	inputs  []*graph.Node
	filters []*graph.Node
	outputs []*graph.Node
	globals []*graph.Node
}

func newPlan(streams []*graph.Stream) (*plan, error) {
	nodes, err := graph.SpecNodes(streams)
	if err != nil {
		return nil, err
	}
	roots := make([]dag.Vertex, len(nodes))
	for i, n := range nodes {
		roots[i] = n
	}
	sorted, err := dag.TopoSort(roots)
	if err != nil {
		return nil, err
	}

	p := &plan{sorted: sorted}
	for _, v := range sorted.Nodes {
		n := v.(*graph.Node)
		switch n.Kind() {
		case graph.KindInput:
			p.inputs = append(p.inputs, n)
		case graph.KindFilter, graph.KindSource:
			p.filters = append(p.filters, n)
		case graph.KindOutput:
			p.outputs = append(p.outputs, n)
		case graph.KindGlobal:
			p.globals = append(p.globals, n)
		}
	}
	p.names = newStreamNames(sorted, p.inputs)
	return p, nil
}

type streamKey struct {
	node  uint64
	label dag.Label
}

// streamNames assigns command line names: inputs are numbered by position,
// filter outputs are named s0, s1, ... in order.
type streamNames struct {
	sorted  *dag.Sorted
	inputs  map[uint64]string
	filters map[streamKey]string
}

func newStreamNames(sorted *dag.Sorted, inputs []*graph.Node) *streamNames {
	sn := &streamNames{sorted: sorted, inputs: make(map[uint64]string), filters: make(map[streamKey]string)}
	for i, n := range inputs {
		sn.inputs[sorted.Hash(n)] = fmt.Sprint(i)
	}
	return sn
}

func (sn *streamNames) lookup(up dag.Upstream) (string, bool, error) {
	n := up.Node.(*graph.Node)
	h := sn.sorted.Hash(n)
	if name, ok := sn.inputs[h]; ok {
		return name, true, nil
	}
	if name, ok := sn.filters[streamKey{node: h, label: up.Label}]; ok {
		return name, false, nil
	}
	return "", false, fmt.Errorf("no stream name for %s[%s]", n.ShortRepr(), up.Label.Repr())
}

// format renders an incoming edge. Input streams are not bracketed when used
// as -map arguments.
func (sn *streamNames) format(up dag.Upstream, mapArg bool) (string, error) {
	name, isInput, err := sn.lookup(up)
	if err != nil {
		return "", err
	}
	if up.Selector != "" {
		name += ":" + up.Selector
	}
	if mapArg && isInput {
		return name, nil
	}
	return "[" + name + "]", nil
}

func (p *plan) filterComplex() (string, error) {
	names := p.names
	count := 0
	for _, n := range p.filters {
		for label, downstreams := range p.sorted.Outgoing(n).All() {
			if len(downstreams) > 1 {
				return "", fmt.Errorf("%w: %s has multiple outgoing edges with upstream label %s",
					ErrNeedsSplit, n, label.Repr())
			}
			names.filters[streamKey{node: p.sorted.Hash(n), label: label}] = fmt.Sprintf("s%d", count)
			count++
		}
	}

	specs := make([]string, 0, len(p.filters))
	for _, n := range p.filters {
		var b strings.Builder
		for _, up := range n.Incoming().Values() {
			name, err := names.format(up, false)
			if err != nil {
				return "", err
			}
			b.WriteString(name)
		}
		edges := p.sorted.OutgoingEdges(n)
		desc, err := n.FilterDescriptor(len(edges))
		if err != nil {
			return "", err
		}
		b.WriteString(desc)
		for _, e := range edges {
			b.WriteString("[" + names.filters[streamKey{node: p.sorted.Hash(n), label: e.UpstreamLabel}] + "]")
		}
		specs = append(specs, b.String())
	}
	return strings.Join(specs, ";"), nil
}

func inputArgs(n *graph.Node) ([]string, error) {
	if n.Name() != opInput {
		return nil, fmt.Errorf("unsupported input node: %s", n)
	}
	kwargs := n.Kwargs()
	filename := fmt.Sprint(kwargs[filenameKwarg])
	delete(kwargs, filenameKwarg)

	var args []string
	if f, ok := kwargs[formatKwarg]; ok {
		delete(kwargs, formatKwarg)
		if f != nil && f != "" {
			args = append(args, "-f", fmt.Sprint(f))
		}
	}
	if size, ok := kwargs["video_size"]; ok {
		delete(kwargs, "video_size")
		args = append(args, "-video_size", formatSize(size))
	}
	args = append(args, KwargsToArgs(kwargs)...)
	return append(args, "-i", filename), nil
}

func outputArgs(n *graph.Node, names *streamNames) ([]string, error) {
	if n.Name() != opOutput {
		return nil, fmt.Errorf("unsupported output node: %s", n)
	}
	incoming := n.Incoming()
	if incoming.Len() == 0 {
		return nil, fmt.Errorf("%w: %s", ErrUnmappedOutput, n)
	}

	var args []string
	for _, up := range incoming.Values() {
		name, err := names.format(up, true)
		if err != nil {
			return nil, err
		}
		if name != "0" || incoming.Len() > 1 {
			args = append(args, "-map", name)
		}
	}

	kwargs := n.Kwargs()
	filename := fmt.Sprint(kwargs[filenameKwarg])
	delete(kwargs, filenameKwarg)
	for _, flag := range []struct{ key, arg string }{
		{formatKwarg, "-f"},
		{"video_bitrate", "-b:v"},
		{"audio_bitrate", "-b:a"},
	} {
		if v, ok := kwargs[flag.key]; ok {
			delete(kwargs, flag.key)
			args = append(args, flag.arg, fmt.Sprint(v))
		}
	}
	if size, ok := kwargs["video_size"]; ok {
		delete(kwargs, "video_size")
		args = append(args, "-video_size", formatSize(size))
	}
	args = append(args, KwargsToArgs(kwargs)...)
	return append(args, filename), nil
}

// KwargsToArgs renders keyword parameters as command line flags sorted by
// key: a nil value yields a bare flag and a list repeats the flag.
func KwargsToArgs(kwargs map[string]any) []string {
	var args []string
	for _, k := range slices.Sorted(maps.Keys(kwargs)) {
		switch v := kwargs[k].(type) {
		case nil:
			args = append(args, "-"+k)
		case []any:
			for _, item := range v {
				args = append(args, "-"+k, fmt.Sprint(item))
			}
		case []string:
			for _, item := range v {
				args = append(args, "-"+k, item)
			}
		default:
			args = append(args, "-"+k, fmt.Sprint(v))
		}
	}
	return args
}

// formatSize renders a size given as "WxH" or as a two element list.
func formatSize(v any) string {
	switch s := v.(type) {
	case []int:
		if len(s) == 2 {
			return fmt.Sprintf("%dx%d", s[0], s[1])
		}
	case []any:
		if len(s) == 2 {
			return fmt.Sprintf("%vx%v", s[0], s[1])
		}
	}
	return fmt.Sprint(v)
}
