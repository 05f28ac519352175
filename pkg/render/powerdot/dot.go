package powerdot

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/goccy/go-graphviz"

	"github.com/qiongwang-oai/powertree/pkg/analysis"
	"github.com/qiongwang-oai/powertree/pkg/design"
	"github.com/qiongwang-oai/powertree/pkg/observability"
)

// Options configures diagram generation.
type Options struct {
	// Result annotates nodes with their computed powers, edges with their
	// currents, and outlines nodes that carry warnings. Nil renders the
	// bare structure.
	Result *analysis.Result
	// Detailed adds electrical parameters (input windows, ratings,
	// resistances) to node labels.
	Detailed bool
}

var kindStyles = map[design.Kind]struct{ shape, fill string }{
	design.KindSource:         {"invhouse", "khaki"},
	design.KindLoad:           {"box", "lightblue"},
	design.KindConverter:      {"box", "palegreen"},
	design.KindDualConverter:  {"box", "palegreen"},
	design.KindBus:            {"cds", "lightgrey"},
	design.KindSubsystem:      {"folder", "wheat"},
	design.KindSubsystemInput: {"invhouse", "white"},
}

// ToDOT converts a design to Graphviz DOT format. The resulting DOT string
// can be rendered with [RenderSVG] or [RenderPNG]. Output follows the
// design's insertion order, so the same design always produces the same
// DOT source.
func ToDOT(d *design.Design, opts Options) string {
	var buf bytes.Buffer
	buf.WriteString("digraph powertree {\n")
	buf.WriteString("  rankdir=LR;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [style=\"rounded,filled\", fontsize=12, margin=\"0.15,0.08\"];\n")
	buf.WriteString("  ranksep=0.6;\n")
	buf.WriteString("  nodesep=0.35;\n")
	buf.WriteString("\n")

	for _, n := range d.Nodes() {
		fmt.Fprintf(&buf, "  %q [%s];\n", n.ID, strings.Join(nodeAttrs(n, opts), ", "))
	}

	buf.WriteString("\n")
	for _, e := range d.Edges() {
		if attrs := edgeAttrs(e, opts); len(attrs) > 0 {
			fmt.Fprintf(&buf, "  %q -> %q [%s];\n", e.From, e.To, strings.Join(attrs, ", "))
		} else {
			fmt.Fprintf(&buf, "  %q -> %q;\n", e.From, e.To)
		}
	}

	buf.WriteString("}\n")
	return buf.String()
}

func nodeAttrs(n *design.Node, opts Options) []string {
	st := kindStyles[n.Kind()]
	attrs := []string{
		fmt.Sprintf("label=%q", nodeLabel(n, opts)),
		"shape=" + st.shape,
		"fillcolor=" + st.fill,
	}
	if opts.Result != nil {
		if nr := opts.Result.Nodes[n.ID]; nr != nil && len(nr.Warnings) > 0 {
			attrs = append(attrs, "color=red", "penwidth=2")
		}
	}
	return attrs
}

func nodeLabel(n *design.Node, opts Options) string {
	lines := []string{n.Label()}
	if s := paramSummary(n, opts.Detailed); s != "" {
		lines = append(lines, s)
	}
	if opts.Result != nil {
		if nr := opts.Result.Nodes[n.ID]; nr != nil {
			lines = append(lines, figureSummary(n, nr))
		}
	}
	return strings.Join(lines, "\n")
}

// paramSummary is the second label line: the node's electrical identity.
func paramSummary(n *design.Node, detailed bool) string {
	switch p := n.Params.(type) {
	case *design.Source:
		s := fmt.Sprintf("%.4gV", p.Vout)
		if p.Count > 1 {
			s += fmt.Sprintf(" x%d", p.Count)
		}
		if p.Redundancy == design.RedundancyNPlus1 {
			s += " (N+1)"
		}
		return s
	case *design.Load:
		s := fmt.Sprintf("%.4gV", p.Vreq)
		if p.NumParalleled > 1 {
			s += fmt.Sprintf(" x%d", p.NumParalleled)
		}
		if detailed {
			s += fmt.Sprintf("\ntyp %.4gA / max %.4gA", p.ITyp, p.IMax)
		}
		return s
	case *design.Converter:
		s := fmt.Sprintf("out %.4gV", p.Vout)
		if detailed && (p.VinMin > 0 || p.VinMax > 0) {
			s += fmt.Sprintf("\nin %.4g-%.4gV", p.VinMin, p.VinMax)
		}
		return s
	case *design.DualConverter:
		parts := make([]string, 0, len(p.Outputs))
		for _, b := range p.Outputs {
			parts = append(parts, fmt.Sprintf("%s %.4gV", b.ID, b.Vout))
		}
		return strings.Join(parts, " / ")
	case *design.Bus:
		s := fmt.Sprintf("%.4gV rail", p.VBus)
		if detailed && p.ResistanceMilliOhm > 0 {
			s += fmt.Sprintf(" (%.4g mOhm)", p.ResistanceMilliOhm)
		}
		return s
	case *design.Subsystem:
		if p.NumParalleled > 1 {
			return fmt.Sprintf("x%d", p.NumParalleled)
		}
		return ""
	case *design.SubsystemInput:
		return fmt.Sprintf("in %.4gV", p.Vout)
	}
	return ""
}

// figureSummary is the computed-values label line.
func figureSummary(n *design.Node, nr *analysis.NodeResult) string {
	switch n.Params.(type) {
	case *design.Source, *design.SubsystemInput:
		return fmt.Sprintf("%.4gW out", nr.POut)
	case *design.Converter, *design.DualConverter, *design.Bus:
		return fmt.Sprintf("%.4gW in / %.4gW out", nr.PIn, nr.POut)
	default:
		return fmt.Sprintf("%.4gW", nr.PIn)
	}
}

func edgeAttrs(e design.Edge, opts Options) []string {
	var attrs []string
	if opts.Result != nil {
		if er := opts.Result.Edges[e.ID]; er != nil {
			attrs = append(attrs, fmt.Sprintf("label=%q", fmt.Sprintf("%.4gA", er.I)))
		}
	}
	if e.FromHandle != "" {
		attrs = append(attrs, fmt.Sprintf("taillabel=%q", e.FromHandle))
	}
	if e.ToHandle != "" && e.ToHandle != design.HandleInput {
		attrs = append(attrs, fmt.Sprintf("headlabel=%q", e.ToHandle))
	}
	return attrs
}

// RenderSVG renders a DOT graph to SVG.
func RenderSVG(dot string) ([]byte, error) {
	return render(dot, graphviz.SVG)
}

// RenderPNG renders a DOT graph to PNG.
func RenderPNG(dot string) ([]byte, error) {
	return render(dot, graphviz.PNG)
}

func render(dot string, format graphviz.Format) ([]byte, error) {
	observability.Render().OnRenderStart(string(format))
	start := time.Now()

	out, err := renderBytes(dot, format)
	observability.Render().OnRenderComplete(string(format), len(out), time.Since(start), err)
	return out, err
}

func renderBytes(dot string, format graphviz.Format) ([]byte, error) {
	ctx := context.Background()
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, format, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return buf.Bytes(), nil
}
