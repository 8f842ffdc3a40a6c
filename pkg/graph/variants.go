package graph

// NewInputNode creates a node reading a file or device; it has no incoming
// streams.
func NewInputNode(name string, p Params) (*Node, error) {
	return newNode(nil, name, KindInput, variants[KindInput].maxInputs, p)
}

// NewSourceNode creates a source filter such as testsrc or color; it has no
// incoming streams but renders as a filter.
func NewSourceNode(name string, p Params) (*Node, error) {
	return newNode(nil, name, KindSource, variants[KindSource].maxInputs, p)
}

// NewFilterNode creates a filter consuming one or more processable streams.
// maxInputs of 0 means the default of one; Unbounded lifts the limit.
func NewFilterNode(spec StreamSpec, name string, maxInputs int, p Params) (*Node, error) {
	if maxInputs == 0 {
		maxInputs = variants[KindFilter].maxInputs
	}
	return newNode(spec, name, KindFilter, maxInputs, p)
}

// NewOutputNode creates an output file node. It may start with no streams;
// streams can be mapped later with AttachStreams.
func NewOutputNode(spec StreamSpec, name string, p Params) (*Node, error) {
	return newNode(spec, name, KindOutput, variants[KindOutput].maxInputs, p)
}

// NewMergeOutputsNode groups several outputs into one command line.
func NewMergeOutputsNode(spec StreamSpec, name string) (*Node, error) {
	return newNode(spec, name, KindMergeOutputs, variants[KindMergeOutputs].maxInputs, Params{})
}

// NewGlobalNode wraps exactly one output stream with global arguments.
func NewGlobalNode(spec StreamSpec, name string, p Params) (*Node, error) {
	return newNode(spec, name, KindGlobal, variants[KindGlobal].maxInputs, p)
}
