// Package inspect renders a compiled pipeline for the terminal: its nodes in
// topological order, their edges, and the generated command line.
package inspect

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/mattjoyce/ffgraph/internal/pipeline"
	"github.com/mattjoyce/ffgraph/pkg/dag"
	"github.com/mattjoyce/ffgraph/pkg/graph"
)

// Report is the structured form of a pipeline inspection.
type Report struct {
	Pipeline      string    `json:"pipeline"`
	Description   string    `json:"description,omitempty"`
	Fingerprint   string    `json:"fingerprint"`
	Nodes         []NodeRow `json:"nodes"`
	FilterComplex string    `json:"filter_complex,omitempty"`
	Command       []string  `json:"command"`
}

// NodeRow is one node of the report.
type NodeRow struct {
	ID        string   `json:"id"`
	Kind      string   `json:"kind"`
	Op        string   `json:"op"`
	Hash      string   `json:"hash"`
	Params    string   `json:"params,omitempty"`
	Inputs    []string `json:"inputs,omitempty"`
	Consumers int      `json:"consumers"`
}

// Build gathers the report for p. binary prefixes the command line.
func Build(p *pipeline.Pipeline, binary string) (*Report, error) {
	roots := make([]dag.Vertex, 0, len(p.NodeIDs))
	for _, id := range p.NodeIDs {
		roots = append(roots, p.Nodes[id])
	}
	sorted, err := dag.TopoSort(roots)
	if err != nil {
		return nil, fmt.Errorf("sort pipeline %q: %w", p.Name, err)
	}

	ids := make(map[uint64]string, len(p.NodeIDs))
	for _, id := range p.NodeIDs {
		h := sorted.Hash(p.Nodes[id])
		if _, seen := ids[h]; !seen {
			ids[h] = id
		}
	}

	report := &Report{
		Pipeline:      p.Name,
		Description:   p.Description,
		Fingerprint:   p.Fingerprint,
		FilterComplex: p.FilterComplex,
		Command:       append([]string{binary}, p.Args...),
	}
	for _, v := range sorted.Nodes {
		n, ok := v.(*graph.Node)
		if !ok {
			continue
		}
		h := sorted.Hash(n)
		row := NodeRow{
			ID:        ids[h],
			Kind:      n.Kind().String(),
			Op:        n.Name(),
			Hash:      dag.ShortHash(h),
			Params:    n.Repr().FormatParams(),
			Consumers: len(sorted.OutgoingEdges(n)),
		}
		for _, edge := range n.Incoming().All() {
			row.Inputs = append(row.Inputs, edgeRef(sorted, ids, edge))
		}
		report.Nodes = append(report.Nodes, row)
	}
	return report, nil
}

// edgeRef formats an upstream the way pipeline files reference it.
func edgeRef(sorted *dag.Sorted, ids map[uint64]string, edge dag.Upstream) string {
	h := sorted.Hash(edge.Node)
	ref := ids[h]
	if ref == "" {
		ref = dag.ShortHash(h)
	}
	if !edge.Label.IsNone() {
		ref += "." + edge.Label.String()
	}
	if edge.Selector != "" {
		ref += ":" + edge.Selector
	}
	return ref
}

// Render draws the report with lipgloss.
func Render(r *Report, theme Theme) string {
	var header strings.Builder
	header.WriteString(theme.Title.Render(r.Pipeline))
	if r.Description != "" {
		header.WriteString(" " + theme.Dim.Render(r.Description))
	}
	header.WriteString("\n" + theme.Dim.Render(r.Fingerprint))

	idWidth, opWidth := 2, 2
	for _, row := range r.Nodes {
		idWidth = max(idWidth, lipgloss.Width(row.ID))
		opWidth = max(opWidth, lipgloss.Width(row.Op))
	}

	lines := []string{theme.Header.Render("Nodes")}
	for _, row := range r.Nodes {
		id := lipgloss.NewStyle().Width(idWidth).Render(row.ID)
		op := lipgloss.NewStyle().Width(opWidth).Render(row.Op)
		line := fmt.Sprintf("%s  %s  %s  %s",
			theme.Highlight.Render(id),
			op,
			theme.kindStyle(row.Kind).Render(fmt.Sprintf("%-7s", row.Kind)),
			theme.Dim.Render(row.Hash),
		)
		if row.Params != "" {
			line += "  (" + row.Params + ")"
		}
		if len(row.Inputs) > 0 {
			line += theme.Dim.Render("  <- " + strings.Join(row.Inputs, ", "))
		}
		lines = append(lines, line)
	}

	if r.FilterComplex != "" {
		lines = append(lines, "", theme.Header.Render("Filter graph"))
		for _, chain := range strings.Split(r.FilterComplex, ";") {
			lines = append(lines, "  "+chain)
		}
	}

	lines = append(lines, "", theme.Header.Render("Command"), QuoteCommand(r.Command))

	body := lipgloss.JoinVertical(lipgloss.Left, lines...)
	return lipgloss.JoinVertical(lipgloss.Left,
		header.String(),
		theme.Border.Render(body),
	) + "\n"
}

// RenderJSON returns the machine-readable report.
func RenderJSON(r *Report) (string, error) {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal json report: %w", err)
	}
	return string(data), nil
}

// QuoteCommand joins args into a line a POSIX shell would split back into
// the same arguments.
func QuoteCommand(args []string) string {
	quoted := make([]string, len(args))
	for i, a := range args {
		quoted[i] = quoteArg(a)
	}
	return strings.Join(quoted, " ")
}

func quoteArg(s string) string {
	if s == "" {
		return "''"
	}
	if strings.IndexFunc(s, needsQuote) < 0 {
		return s
	}
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}

func needsQuote(r rune) bool {
	switch {
	case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		return false
	}
	return !strings.ContainsRune("-_./:=+,@%", r)
}
