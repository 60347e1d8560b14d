package flow

import (
	"context"
	"math"
)

// EdmondsKarp computes maximum flows by augmenting along shortest paths.
type EdmondsKarp struct {
	// Epsilon is an absolute saturation tolerance. Zero scales the
	// tolerance to the network by RelativeEpsilon.
	Epsilon float64
}

// MinCut implements [MinCutter].
func (e EdmondsKarp) MinCut(ctx context.Context, net *Network) (Cut, error) {
	eps := net.tolerance(e.Epsilon)
	res, err := net.residual(eps)
	if err != nil {
		return Cut{}, err
	}

	parent := make([]int, net.n)
	total := 0.0
	for {
		if err := ctx.Err(); err != nil {
			return Cut{}, err
		}
		if !shortestPath(net, res, eps, parent) {
			break
		}
		bottleneck := math.Inf(1)
		for v := net.sink; v != net.source; v = net.to[parent[v]^1] {
			bottleneck = min(bottleneck, res[parent[v]])
		}
		for v := net.sink; v != net.source; v = net.to[parent[v]^1] {
			res[parent[v]] -= bottleneck
			res[parent[v]^1] += bottleneck
		}
		total += bottleneck
	}
	return Cut{Value: total, SourceSide: reachable(net, res, eps)}, nil
}

// shortestPath fills parent with the arc entering each node on a BFS tree and
// reports whether the sink was reached.
func shortestPath(net *Network, res []float64, eps float64, parent []int) bool {
	for i := range parent {
		parent[i] = -1
	}
	seen := make([]bool, net.n)
	seen[net.source] = true
	queue := []int{net.source}
	for len(queue) > 0 {
		u := queue[0]
		queue = queue[1:]
		for _, a := range net.adj[u] {
			v := net.to[a]
			if seen[v] || res[a] <= eps {
				continue
			}
			seen[v] = true
			parent[v] = a
			if v == net.sink {
				return true
			}
			queue = append(queue, v)
		}
	}
	return false
}
