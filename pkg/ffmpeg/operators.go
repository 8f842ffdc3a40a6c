package ffmpeg

import (
	"fmt"
	"maps"

	"github.com/mattjoyce/ffgraph/internal/escape"
	"github.com/mattjoyce/ffgraph/pkg/graph"
)

// DefaultOperators returns a new table holding every operation of this
// package under its ffmpeg name, for callers that only know operations by
// name. Each call returns a fresh table that the caller may extend.
func DefaultOperators() *graph.OperatorTable {
	t := graph.NewOperatorTable()
	must := func(err error) {
		if err != nil {
			panic(err)
		}
	}

	must(t.RegisterConstructor(opInput, func(_ []*graph.Stream, p graph.Params) (*graph.Node, error) {
		filename, kw, err := takeFilename(p)
		if err != nil {
			return nil, err
		}
		return newInput(filename, kw)
	}))
	must(t.RegisterConstructor("source", func(_ []*graph.Stream, p graph.Params) (*graph.Node, error) {
		name, rest, err := takeName(p.Args)
		if err != nil {
			return nil, err
		}
		return graph.NewSourceNode(name, graph.Params{Args: rest, Kwargs: p.Kwargs})
	}))

	must(t.RegisterFilter("filter", func(in []*graph.Stream, p graph.Params) (*graph.Node, error) {
		name, rest, err := takeName(p.Args)
		if err != nil {
			return nil, err
		}
		return graph.NewFilterNode(in, name, len(in), graph.Params{Args: rest, Kwargs: p.Kwargs})
	}))
	for _, name := range []string{"hflip", "vflip", "trim", "setpts", "hue", "split", "asplit"} {
		must(t.RegisterFilter(name, simpleFilter(name)))
	}
	must(t.RegisterFilter("drawtext", func(in []*graph.Stream, p graph.Params) (*graph.Node, error) {
		return graph.NewFilterNode(in, "drawtext", 1, drawTextParams(p))
	}))
	must(t.RegisterFilter("crop", func(in []*graph.Stream, p graph.Params) (*graph.Node, error) {
		if len(p.Args) != 4 {
			return nil, &graph.InvalidUsageError{Msg: fmt.Sprintf("crop takes x, y, width, height; got %d args", len(p.Args))}
		}
		x, y, w, h := p.Args[0], p.Args[1], p.Args[2], p.Args[3]
		return graph.NewFilterNode(in, "crop", 1, graph.Params{Args: []any{w, h, x, y}, Kwargs: p.Kwargs})
	}))
	must(t.RegisterFilter("drawbox", func(in []*graph.Stream, p graph.Params) (*graph.Node, error) {
		kwargs := maps.Clone(p.Kwargs)
		if th, ok := kwargs["thickness"]; ok {
			delete(kwargs, "thickness")
			kwargs["t"] = th
		}
		return graph.NewFilterNode(in, "drawbox", 1, graph.Params{Args: p.Args, Kwargs: kwargs})
	}))
	must(t.RegisterFilter("overlay", func(in []*graph.Stream, p graph.Params) (*graph.Node, error) {
		kwargs := map[string]any{"eof_action": "repeat"}
		maps.Copy(kwargs, p.Kwargs)
		return graph.NewFilterNode(in, "overlay", 2, graph.Params{Args: p.Args, Kwargs: kwargs})
	}))
	must(t.RegisterFilter("concat", func(in []*graph.Stream, p graph.Params) (*graph.Node, error) {
		return newConcat(in, Kwargs(p.Kwargs))
	}))
	must(t.RegisterFilter(opOutput, func(in []*graph.Stream, p graph.Params) (*graph.Node, error) {
		filename, kw, err := takeFilename(p)
		if err != nil {
			return nil, err
		}
		return newOutput(in, filename, kw)
	}))

	must(t.RegisterOutput(opOverwrite, func(in []*graph.Stream, _ graph.Params) (*graph.Node, error) {
		return graph.NewGlobalNode(in, opOverwrite, graph.Params{Args: []any{overwriteFlag}})
	}))
	must(t.RegisterOutput(opGlobalArgs, func(in []*graph.Stream, p graph.Params) (*graph.Node, error) {
		return graph.NewGlobalNode(in, opGlobalArgs, graph.Params{Args: p.Args})
	}))
	must(t.RegisterOutput(opMergeOutputs, func(in []*graph.Stream, _ graph.Params) (*graph.Node, error) {
		return graph.NewMergeOutputsNode(in, opMergeOutputs)
	}))
	return t
}

func simpleFilter(name string) graph.OperatorFunc {
	return func(in []*graph.Stream, p graph.Params) (*graph.Node, error) {
		return graph.NewFilterNode(in, name, 1, p)
	}
}

func drawTextParams(p graph.Params) graph.Params {
	kwargs := maps.Clone(p.Kwargs)
	escapeText := true
	if v, ok := kwargs["escape_text"].(bool); ok {
		escapeText = v
	}
	delete(kwargs, "escape_text")
	if text, ok := kwargs["text"].(string); ok && escapeText {
		kwargs["text"] = escape.Chars(text, escape.TextChars)
	}
	return graph.Params{Args: p.Args, Kwargs: kwargs}
}

// takeFilename reads the filename from the first positional parameter or
// the "filename" kwarg.
func takeFilename(p graph.Params) (string, Kwargs, error) {
	kw := Kwargs(maps.Clone(p.Kwargs))
	if len(p.Args) > 1 {
		return "", nil, &graph.InvalidUsageError{Msg: fmt.Sprintf("expected one positional filename, got %d arguments", len(p.Args))}
	}
	if len(p.Args) == 1 {
		if _, ok := kw[filenameKwarg]; ok {
			return "", nil, &graph.InvalidUsageError{Msg: "filename given both positionally and as a kwarg"}
		}
		return fmt.Sprint(p.Args[0]), kw, nil
	}
	f, ok := kw[filenameKwarg]
	if !ok || fmt.Sprint(f) == "" {
		return "", nil, &graph.InvalidUsageError{Msg: "filename is required"}
	}
	delete(kw, filenameKwarg)
	return fmt.Sprint(f), kw, nil
}

// takeName splits a filter name off the positional parameters.
func takeName(args []any) (string, []any, error) {
	if len(args) == 0 {
		return "", nil, &graph.InvalidUsageError{Msg: "filter name is required"}
	}
	name, ok := args[0].(string)
	if !ok || name == "" {
		return "", nil, &graph.InvalidUsageError{Msg: fmt.Sprintf("filter name must be a string; got %v", args[0])}
	}
	return name, args[1:], nil
}
