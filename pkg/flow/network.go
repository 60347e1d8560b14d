package flow

import (
	"context"
	"errors"
	"fmt"
	"math"
)

// RelativeEpsilon is the default saturation tolerance as a fraction of the
// largest capacity in the network.
const RelativeEpsilon = 1e-12

var (
	// ErrNegativeCapacity is returned for an arc capacity more negative than the saturation tolerance.
	ErrNegativeCapacity = errors.New("flow: negative capacity")

	// ErrBadTerminals is returned when source and sink coincide or lie
	// outside the network.
	ErrBadTerminals = errors.New("flow: invalid source or sink")
)

// Network is a directed capacitated graph over nodes 0..n-1 with a designated
// source and sink.
type Network struct {
	n      int
	source int
	sink   int
	adj    [][]int
	to     []int
	cap    []float64
}

// NewNetwork returns an arcless network of n nodes.
func NewNetwork(n, source, sink int) (*Network, error) {
	if source == sink || source < 0 || sink < 0 || source >= n || sink >= n {
		return nil, fmt.Errorf("%w: source %d sink %d in %d nodes", ErrBadTerminals, source, sink, n)
	}
	return &Network{
		n:      n,
		source: source,
		sink:   sink,
		adj:    make([][]int, n),
	}, nil
}

// AddArc adds an arc u→v with capacity c.
func (net *Network) AddArc(u, v int, c float64) {
	net.AddPair(u, v, c, 0)
}

// AddPair adds antiparallel arcs u→v with capacity forward and v→u with
// capacity backward, sharing one residual pair.
func (net *Network) AddPair(u, v int, forward, backward float64) {
	net.adj[u] = append(net.adj[u], len(net.to))
	net.to = append(net.to, v)
	net.cap = append(net.cap, forward)
	net.adj[v] = append(net.adj[v], len(net.to))
	net.to = append(net.to, u)
	net.cap = append(net.cap, backward)
}

// Nodes returns the number of nodes.
func (net *Network) Nodes() int { return net.n }

// Arcs returns the number of arc slots, counting each pair as two.
func (net *Network) Arcs() int { return len(net.to) }

// Source returns the source node.
func (net *Network) Source() int { return net.source }

// Sink returns the sink node.
func (net *Network) Sink() int { return net.sink }

// Clone returns a deep copy of net.
func (net *Network) Clone() *Network {
	out := &Network{
		n:      net.n,
		source: net.source,
		sink:   net.sink,
		adj:    make([][]int, net.n),
		to:     append([]int(nil), net.to...),
		cap:    append([]float64(nil), net.cap...),
	}
	for i, a := range net.adj {
		out.adj[i] = append([]int(nil), a...)
	}
	return out
}

// residual returns a working copy of the capacities with values in
// [-eps, eps] snapped to zero.
func (net *Network) residual(eps float64) ([]float64, error) {
	res := make([]float64, len(net.cap))
	for a, c := range net.cap {
		switch {
		case math.IsNaN(c):
			return nil, fmt.Errorf("%w: NaN on arc %d→%d", ErrNegativeCapacity, net.to[a^1], net.to[a])
		case c < -eps:
			return nil, fmt.Errorf("%w: %g on arc %d→%d", ErrNegativeCapacity, c, net.to[a^1], net.to[a])
		case c <= eps:
			res[a] = 0
		default:
			res[a] = c
		}
	}
	return res, nil
}

// Cut is a minimum s-t cut.
type Cut struct {
	// Value is the maximum flow, equal to the capacity of the cut.
	Value float64
	// SourceSide marks the nodes reachable from the source in the residual
	// network, the source included.
	SourceSide []bool
}

// SourceNodes returns the source-side nodes other than source, ascending.
func (c Cut) SourceNodes(source int) []int {
	var out []int
	for v, in := range c.SourceSide {
		if in && v != source {
			out = append(out, v)
		}
	}
	return out
}

// MinCutter computes a minimum s-t cut. Implementations must not modify net.
type MinCutter interface {
	MinCut(ctx context.Context, net *Network) (Cut, error)
}

// reachable marks nodes reachable from the source over arcs with residual
// capacity above eps.
func reachable(net *Network, res []float64, eps float64) []bool {
	seen := make([]bool, net.n)
	seen[net.source] = true
	queue := []int{net.source}
	for len(queue) > 0 {
		u := queue[0]
		queue = queue[1:]
		for _, a := range net.adj[u] {
			if v := net.to[a]; !seen[v] && res[a] > eps {
				seen[v] = true
				queue = append(queue, v)
			}
		}
	}
	return seen
}

// tolerance returns eps when positive, otherwise RelativeEpsilon times the
// largest finite capacity magnitude of net.
func (net *Network) tolerance(eps float64) float64 {
	if eps > 0 {
		return eps
	}
	largest := 0.0
	for _, c := range net.cap {
		if a := math.Abs(c); a > largest && !math.IsInf(a, 0) {
			largest = a
		}
	}
	return RelativeEpsilon * largest
}
