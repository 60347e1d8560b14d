package flow

import (
	"context"
	"math"
)

// Dinic computes maximum flows with level graphs and blocking flows.
type Dinic struct {
	// Epsilon is an absolute saturation tolerance. Zero scales the
	// tolerance to the network by RelativeEpsilon.
	Epsilon float64
}

// MinCut implements [MinCutter].
func (d Dinic) MinCut(ctx context.Context, net *Network) (Cut, error) {
	eps := net.tolerance(d.Epsilon)
	res, err := net.residual(eps)
	if err != nil {
		return Cut{}, err
	}

	s := &dinicState{
		net:   net,
		res:   res,
		eps:   eps,
		level: make([]int, net.n),
		iter:  make([]int, net.n),
	}
	total := 0.0
	for s.levels() {
		if err := ctx.Err(); err != nil {
			return Cut{}, err
		}
		clear(s.iter)
		for {
			pushed := s.push(net.source, math.Inf(1))
			if pushed <= eps {
				break
			}
			total += pushed
		}
	}
	return Cut{Value: total, SourceSide: reachable(net, res, eps)}, nil
}

type dinicState struct {
	net   *Network
	res   []float64
	eps   float64
	level []int
	iter  []int
}

// levels assigns BFS distances from the source over unsaturated arcs and
// reports whether the sink was reached.
func (s *dinicState) levels() bool {
	for i := range s.level {
		s.level[i] = -1
	}
	s.level[s.net.source] = 0
	queue := []int{s.net.source}
	for len(queue) > 0 {
		u := queue[0]
		queue = queue[1:]
		for _, a := range s.net.adj[u] {
			v := s.net.to[a]
			if s.level[v] < 0 && s.res[a] > s.eps {
				s.level[v] = s.level[u] + 1
				queue = append(queue, v)
			}
		}
	}
	return s.level[s.net.sink] >= 0
}

// push sends up to limit units from u toward the sink along the level graph.
func (s *dinicState) push(u int, limit float64) float64 {
	if u == s.net.sink {
		return limit
	}
	arcs := s.net.adj[u]
	for ; s.iter[u] < len(arcs); s.iter[u]++ {
		a := arcs[s.iter[u]]
		v := s.net.to[a]
		if s.res[a] <= s.eps || s.level[v] != s.level[u]+1 {
			continue
		}
		pushed := s.push(v, min(limit, s.res[a]))
		if pushed > s.eps {
			s.res[a] -= pushed
			s.res[a^1] += pushed
			return pushed
		}
	}
	return 0
}
