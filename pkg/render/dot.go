package render

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/haplonet/pkg/errors"
	"github.com/matzehuels/haplonet/pkg/scene"
)

// pointsPerInch converts scene units, treated as points, to Graphviz inches.
const pointsPerInch = 72.0

// ToDOT converts a snapshot to an undirected Graphviz graph with every node
// pinned at its scene position. Graphviz is y-up, so y is flipped within the
// output frame.
//
// Nodes with a pie are drawn with the "wedged" style, one colour stop per
// slice. Edge labels carry the mutation count text.
func ToDOT(s scene.Snapshot, opts ...Option) string {
	o := newOptions(opts)
	f := newFrame(s, o)

	var buf bytes.Buffer
	buf.WriteString("graph G {\n")
	if o.title != "" {
		fmt.Fprintf(&buf, "  label=%q;\n", o.title)
	}
	bg := o.background
	if bg == "" {
		bg = "transparent"
	}
	fmt.Fprintf(&buf, "  bgcolor=%q;\n", bg)
	buf.WriteString("  outputorder=edgesfirst;\n")
	fmt.Fprintf(&buf, "  node [shape=circle, fixedsize=true, label=\"\", color=%q];\n", o.stroke)
	fmt.Fprintf(&buf, "  edge [color=%q, fontsize=%.0f];\n", o.stroke, o.fontSize)
	buf.WriteString("\n")

	for _, n := range s.Nodes {
		p := f.at(n.Pos)
		attrs := []string{
			fmt.Sprintf("pos=\"%.2f,%.2f!\"", p.X, f.size.Y-p.Y),
			fmt.Sprintf("width=%.4f", 2*n.Radius/pointsPerInch),
		}
		if n.Label != nil && n.Label.Text != "" {
			attrs = append(attrs, fmt.Sprintf("xlabel=%q", n.Label.Text))
		}
		attrs = append(attrs, fillAttrs(n)...)
		if n.Selected {
			attrs = append(attrs, fmt.Sprintf("color=%q, penwidth=2", DefaultSelection))
		}
		fmt.Fprintf(&buf, "  %q [%s];\n", n.ID, strings.Join(attrs, ", "))
	}

	buf.WriteString("\n")
	for _, e := range s.Edges {
		attrs := []string{fmt.Sprintf("id=\"e%d\"", e.ID)}
		if e.Label != nil && e.Label.Text != "" {
			attrs = append(attrs, fmt.Sprintf("label=%q", e.Label.Text))
		}
		if e.Hidden {
			attrs = append(attrs, "style=invis")
		}
		if e.Selected {
			attrs = append(attrs, fmt.Sprintf("color=%q", DefaultSelection))
		}
		fmt.Fprintf(&buf, "  %q -- %q [%s];\n", e.From, e.To, strings.Join(attrs, ", "))
	}

	if o.haploweb {
		buf.WriteString("\n")
		for _, l := range s.Web {
			fmt.Fprintf(&buf, "  %q -- %q [style=dashed, color=%q, constraint=false];\n", l.A, l.B, DefaultWebColor)
		}
	}

	buf.WriteString("}\n")
	return buf.String()
}

func fillAttrs(n scene.NodeView) []string {
	if n.Vertex || len(n.Slices) <= 1 {
		fill := n.Fill
		if len(n.Slices) == 1 {
			fill = n.Slices[0].Color
		}
		return []string{"style=filled", fmt.Sprintf("fillcolor=%q", fill)}
	}
	stops := make([]string, len(n.Slices))
	for i, sl := range n.Slices {
		stops[i] = fmt.Sprintf("%s;%.4f", sl.Color, sl.Span/fullWedge.Span)
	}
	return []string{"style=wedged", fmt.Sprintf("fillcolor=%q", strings.Join(stops, ":"))}
}

// RenderDOT lays out a DOT graph with neato, keeping pinned positions, and
// returns the SVG output.
func RenderDOT(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "init graphviz")
	}
	defer gv.Close()
	gv.SetLayout(graphviz.NEATO)

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "parse DOT")
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "render DOT")
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox replaces Graphviz's pt-sized root element with a plain
// pixel-sized one so the output scales like RenderSVG output.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}
	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}
	root := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)
	return svgTagRe.ReplaceAll(svg, []byte(root))
}
