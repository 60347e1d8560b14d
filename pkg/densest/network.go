package densest

import (
	"github.com/matzehuels/hicluster/pkg/bpgraph"
	"github.com/matzehuels/hicluster/pkg/flow"
)

// BuildNetwork returns the min-cut network for guess on g. Vertex v is node v;
// the source is node n and the sink node n+1.
//
// Terminal arcs are reduced: min(W, W+2·guess−deg(v)) is subtracted from both
// s→v and v→t. Every s-t cut crosses exactly one of the two, so all cuts shift
// by the same constant and the minimum cut partition is unchanged.
func BuildNetwork(g *bpgraph.Graph, guess float64) *flow.Network {
	n := g.VertexCount()
	net, _ := flow.NewNetwork(n+2, n, n+1)
	w := g.TotalWeight()
	for v := 0; v < n; v++ {
		src, sink := w, w+2*guess-g.Degree(v)
		m := min(src, sink)
		if src-m > 0 {
			net.AddArc(n, v, src-m)
		}
		if sink-m > 0 {
			net.AddArc(v, n+1, sink-m)
		}
	}
	for _, e := range g.Edges() {
		net.AddPair(e.U, e.V, e.Weight, e.Weight)
	}
	return net
}
