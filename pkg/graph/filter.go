package graph

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/mattjoyce/ffgraph/internal/escape"
)

// fanOutOps replicate their input; their count parameter always equals the
// number of outgoing edges actually consumed.
var fanOutOps = map[string]bool{
	"split":  true,
	"asplit": true,
}

// IsFanOut reports whether name is a fan-out operation.
func IsFanOut(name string) bool { return fanOutOps[name] }

// FilterDescriptor renders the node as one filter of a -filter_complex
// argument, e.g. `scale=320:-1` or `drawtext=text=a\\:b`. fanOut is the
// number of outgoing edges in use and only matters for fan-out operations.
//
// Parameters are escaped for the filter's own syntax, then the whole
// descriptor is escaped again for the enclosing graph syntax.
func (n *Node) FilterDescriptor(fanOut int) (string, error) {
	if n.kind != KindFilter && n.kind != KindSource {
		return "", invalidUsage("%s node %q has no filter descriptor", n.kind, n.Name())
	}

	args := n.repr.Args()
	if IsFanOut(n.Name()) {
		args = []any{fanOut}
	}
	kwargs := n.repr.Kwargs()

	params := make([]string, 0, len(args)+len(kwargs))
	for _, a := range args {
		params = append(params, escape.Chars(formatParam(a), escape.ParamChars))
	}
	for _, k := range slices.Sorted(maps.Keys(kwargs)) {
		key := escape.Chars(k, escape.ParamChars)
		value := escape.Chars(formatParam(kwargs[k]), escape.ParamChars)
		params = append(params, key+"="+value)
	}

	text := escape.Chars(n.Name(), escape.ParamChars)
	if len(params) > 0 {
		text += "=" + strings.Join(params, ":")
	}
	return escape.Chars(text, escape.GraphChars), nil
}

func formatParam(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case nil:
		return ""
	default:
		return fmt.Sprint(t)
	}
}
