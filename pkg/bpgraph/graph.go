package bpgraph

import (
	"cmp"
	"fmt"
	"math"
	"slices"
)

// weightTolerance is the relative difference at which two insertions of the
// same pair are reported as a conflict.
const weightTolerance = 1e-9

// Edge is an undirected weighted edge with U < V.
type Edge struct {
	U, V   int
	Weight float64
}

// Graph is an undirected weighted graph over vertices 0..n-1 holding one weight
// per unordered pair.
type Graph struct {
	n         int
	weights   map[[2]int]float64
	degree    []float64
	total     float64
	conflicts int
}

// NewGraph returns an edgeless graph with n vertices.
func NewGraph(n int) *Graph {
	return &Graph{
		n:       n,
		weights: make(map[[2]int]float64),
		degree:  make([]float64, n),
	}
}

// AddEdge records weight w for the unordered pair {u, v} and reports whether
// the pair was new. Adding an existing pair again keeps the first weight; if
// the weights disagree the insertion is counted in [Graph.Conflicts].
func (g *Graph) AddEdge(u, v int, w float64) (bool, error) {
	if u == v {
		return false, fmt.Errorf("bpgraph: self loop on vertex %d", u)
	}
	if u < 0 || v < 0 || u >= g.n || v >= g.n {
		return false, fmt.Errorf("bpgraph: edge (%d,%d) outside %d vertices", u, v, g.n)
	}
	if w < 0 || math.IsNaN(w) || math.IsInf(w, 0) {
		return false, fmt.Errorf("bpgraph: invalid weight %g on edge (%d,%d)", w, u, v)
	}
	key := pairKey(u, v)
	if prev, ok := g.weights[key]; ok {
		if math.Abs(prev-w) > weightTolerance*math.Max(1, math.Abs(prev)) {
			g.conflicts++
		}
		return false, nil
	}
	g.weights[key] = w
	g.degree[u] += w
	g.degree[v] += w
	g.total += w
	return true, nil
}

// VertexCount returns the number of vertices, including isolated ones.
func (g *Graph) VertexCount() int { return g.n }

// EdgeCount returns the number of distinct unordered edges.
func (g *Graph) EdgeCount() int { return len(g.weights) }

// TotalWeight returns the sum of weights over distinct unordered edges.
func (g *Graph) TotalWeight() float64 { return g.total }

// Degree returns the weighted degree of v (0 for an isolated vertex).
func (g *Graph) Degree(v int) float64 { return g.degree[v] }

// Conflicts returns how many repeated insertions disagreed with the stored weight.
func (g *Graph) Conflicts() int { return g.conflicts }

// Weight returns the weight of {u, v} and whether the edge exists.
func (g *Graph) Weight(u, v int) (float64, bool) {
	w, ok := g.weights[pairKey(u, v)]
	return w, ok
}

// Edges returns all edges sorted by (U, V).
func (g *Graph) Edges() []Edge {
	edges := make([]Edge, 0, len(g.weights))
	for k, w := range g.weights {
		edges = append(edges, Edge{U: k[0], V: k[1], Weight: w})
	}
	slices.SortFunc(edges, func(a, b Edge) int {
		if c := cmp.Compare(a.U, b.U); c != 0 {
			return c
		}
		return cmp.Compare(a.V, b.V)
	})
	return edges
}

// InducedWeight returns the total weight of edges with both ends in vs.
func (g *Graph) InducedWeight(vs []int) float64 {
	in := make(map[int]bool, len(vs))
	for _, v := range vs {
		in[v] = true
	}
	total := 0.0
	for k, w := range g.weights {
		if in[k[0]] && in[k[1]] {
			total += w
		}
	}
	return total
}

func pairKey(u, v int) [2]int {
	if u > v {
		u, v = v, u
	}
	return [2]int{u, v}
}
