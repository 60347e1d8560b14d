// Package nodelink renders breakpoint graphs as node-link diagrams.
//
// Vertices are breakpoints labeled with their position; edges join pairs
// with contact evidence, drawn thicker for heavier weights. Vertices of the
// detected cluster are filled so the cluster stands out from the rest of
// the graph.
//
// # Usage
//
//	dot := nodelink.ToDOT(unit.Graph, unit.Vertices, unit.Solve.Vertices, nodelink.Options{})
//	svg, err := nodelink.RenderSVG(ctx, dot)
//
// [ToDOT] produces Graphviz DOT source that can also be fed to the dot
// command line tool. [RenderSVG] lays it out in-process through go-graphviz,
// so no Graphviz installation is needed.
package nodelink
