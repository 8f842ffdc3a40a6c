package ffmpeg

import (
	"errors"
	"maps"

	"github.com/mattjoyce/ffgraph/pkg/graph"
)

// ErrFormatAlias is returned when both "f" and "format" are given.
var ErrFormatAlias = errors.New("can't specify both format and f kwargs")

// Node names used by the compiler.
const (
	opInput          = "input"
	opOutput         = "output"
	opMergeOutputs   = "merge_outputs"
	opOverwrite      = "overwrite_output"
	opGlobalArgs     = "global_args"
	overwriteFlag    = "-y"
	filenameKwarg    = "filename"
	formatKwarg      = "format"
	formatAliasKwarg = "f"
)

// fileKwargs copies kw, stores filename and folds the "f" alias into
// "format".
func fileKwargs(filename string, kw Kwargs) (map[string]any, error) {
	out := make(map[string]any, len(kw)+1)
	maps.Copy(out, kw)
	out[filenameKwarg] = filename
	if f, ok := out[formatAliasKwarg]; ok {
		delete(out, formatAliasKwarg)
		if f != nil && f != "" {
			if _, exists := out[formatKwarg]; exists {
				return nil, ErrFormatAlias
			}
			out[formatKwarg] = f
		}
	}
	return out, nil
}

func newInput(filename string, kw Kwargs) (*graph.Node, error) {
	kwargs, err := fileKwargs(filename, kw)
	if err != nil {
		return nil, err
	}
	return graph.NewInputNode(opInput, graph.Params{Kwargs: kwargs})
}

func newOutput(in []*graph.Stream, filename string, kw Kwargs) (*graph.Node, error) {
	kwargs, err := fileKwargs(filename, kw)
	if err != nil {
		return nil, err
	}
	return graph.NewOutputNode(in, opOutput, graph.Params{Kwargs: kwargs})
}

// Input opens a file or device (ffmpeg -i). The "f" kwarg is an alias for
// "format".
func Input(filename string, kw Kwargs) Stream {
	return streamOf(newInput(filename, kw))
}

// SourceMultiOutput creates a source filter whose outputs are picked by
// label.
func SourceMultiOutput(name string, args []any, kw Kwargs) Node {
	n, err := graph.NewSourceNode(name, params(args, kw))
	return Node{n: n, err: err}
}

// Source creates a source filter such as testsrc or color.
func Source(name string, args []any, kw Kwargs) Stream {
	n := SourceMultiOutput(name, args, kw)
	return streamOf(n.n, n.err)
}

// MergeOutputs includes every given output in one command line.
func MergeOutputs(streams ...OutputStream) OutputStream {
	in, err := graphOutputs(streams)
	if err != nil {
		return OutputStream{err: err}
	}
	return outputOf(graph.NewMergeOutputsNode(in, opMergeOutputs))
}

// Output writes s, plus any further streams, to filename.
func (s Stream) Output(filename string, kw Kwargs, more ...Stream) OutputStream {
	in, err := graphStreams(append([]Stream{s}, more...))
	if err != nil {
		return OutputStream{err: err}
	}
	return outputOf(newOutput(in, filename, kw))
}

// OutputFile creates an output with no mapped streams. Streams are attached
// later with Map.
func OutputFile(filename string, kw Kwargs) OutputStream {
	return outputOf(newOutput(nil, filename, kw))
}

// Map attaches more streams to the output node behind o.
func (o OutputStream) Map(streams ...Stream) OutputStream {
	if o.err != nil {
		return o
	}
	in, err := graphStreams(streams)
	if err != nil {
		return OutputStream{err: err}
	}
	if err := o.s.Node().AttachStreams(in); err != nil {
		return OutputStream{err: err}
	}
	return o
}

// OverwriteOutput overwrites output files without asking (ffmpeg -y).
func (o OutputStream) OverwriteOutput() OutputStream {
	if o.err != nil {
		return o
	}
	return outputOf(graph.NewGlobalNode(o.s, opOverwrite, graph.Params{Args: []any{overwriteFlag}}))
}

// GlobalArgs adds raw arguments to the command line, e.g. "-hide_banner".
func (o OutputStream) GlobalArgs(args ...string) OutputStream {
	if o.err != nil {
		return o
	}
	anyArgs := make([]any, len(args))
	for i, a := range args {
		anyArgs[i] = a
	}
	return outputOf(graph.NewGlobalNode(o.s, opGlobalArgs, graph.Params{Args: anyArgs}))
}

// MergeOutputs merges o with other outputs.
func (o OutputStream) MergeOutputs(others ...OutputStream) OutputStream {
	return MergeOutputs(append([]OutputStream{o}, others...)...)
}

// Args compiles o into ffmpeg arguments, without the binary name.
func (o OutputStream) Args() ([]string, error) {
	return Args([]OutputStream{o}, false)
}

// Compile compiles o into a full command line starting with cmd.
func (o OutputStream) Compile(cmd string) ([]string, error) {
	return Compile(cmd, []OutputStream{o}, false)
}
