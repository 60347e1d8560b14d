package nodelink

import (
	"bytes"
	"context"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/hicluster/pkg/bpgraph"
)

// Options configures diagram generation.
type Options struct {
	// Title is drawn above the graph when set.
	Title string
	// Detailed adds edge weights as labels.
	Detailed bool
	// HideIsolated drops vertices without edges.
	HideIsolated bool
}

const (
	clusterFill = "#f4a261"
	otherFill   = "white"
	minPen      = 1.0
	maxPen      = 6.0
)

// ToDOT converts a breakpoint graph to undirected DOT source. Vertices listed
// in cluster are highlighted.
func ToDOT(g *bpgraph.Graph, vm *bpgraph.VertexMap, cluster []int, opts Options) string {
	inCluster := make(map[int]bool, len(cluster))
	for _, v := range cluster {
		inCluster[v] = true
	}
	edges := g.Edges()
	maxW := 0.0
	for _, e := range edges {
		maxW = math.Max(maxW, e.Weight)
	}

	var buf bytes.Buffer
	buf.WriteString("graph G {\n")
	buf.WriteString("  layout=neato;\n")
	buf.WriteString("  overlap=false;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	if opts.Title != "" {
		fmt.Fprintf(&buf, "  label=%q;\n  labelloc=t;\n", opts.Title)
	}
	buf.WriteString("  node [shape=ellipse, style=filled, fontsize=14];\n")
	buf.WriteString("\n")

	for v := 0; v < vm.Len(); v++ {
		if opts.HideIsolated && g.Degree(v) == 0 && !inCluster[v] {
			continue
		}
		fill := otherFill
		if inCluster[v] {
			fill = clusterFill
		}
		fmt.Fprintf(&buf, "  v%d [label=%q, fillcolor=%q];\n", v, fmtPosition(vm.Position(v)), fill)
	}

	buf.WriteString("\n")
	for _, e := range edges {
		attrs := []string{fmt.Sprintf("penwidth=%.2f", penWidth(e.Weight, maxW))}
		if inCluster[e.U] && inCluster[e.V] {
			attrs = append(attrs, fmt.Sprintf("color=%q", clusterFill))
		}
		if opts.Detailed {
			attrs = append(attrs, fmt.Sprintf("label=%q", strconv.FormatFloat(e.Weight, 'g', 4, 64)))
		}
		fmt.Fprintf(&buf, "  v%d -- v%d [%s];\n", e.U, e.V, strings.Join(attrs, ", "))
	}

	buf.WriteString("}\n")
	return buf.String()
}

// fmtPosition prints a position in kilobases, "1,250kb" for 1250000.
func fmtPosition(pos int64) string {
	kb := strconv.FormatInt(pos/1000, 10)
	var out []byte
	for i := range kb {
		if i > 0 && (len(kb)-i)%3 == 0 {
			out = append(out, ',')
		}
		out = append(out, kb[i])
	}
	return string(out) + "kb"
}

func penWidth(w, maxW float64) float64 {
	if maxW <= 0 {
		return minPen
	}
	return minPen + (maxPen-minPen)*w/maxW
}

// RenderSVG lays out DOT source and renders it to SVG.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
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
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox replaces the root svg element so the drawing scales from
// its viewBox origin.
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
