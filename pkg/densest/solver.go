package densest

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/hicluster/pkg/bpgraph"
	"github.com/matzehuels/hicluster/pkg/flow"
	"github.com/matzehuels/hicluster/pkg/observability"
)

// Probe is one step of the binary search.
type Probe struct {
	Guess      float64 `json:"guess"`
	SourceSize int     `json:"source_size"`
	Accepted   bool    `json:"accepted"`
}

// Result is the outcome of a search.
type Result struct {
	// Vertices is the last source side larger than the size threshold,
	// ascending. Empty when no probe exceeded the threshold.
	Vertices []int
	// Density is the final lower bound of the search.
	Density float64
	// Upper is the final upper bound of the search.
	Upper float64
	// Epsilon is the convergence width used.
	Epsilon float64
	Probes  []Probe
}

// Solver runs the size-capped densest-subgraph search.
type Solver struct {
	Cutter flow.MinCutter
	Logger *log.Logger
}

// New returns a Solver using cutter, or [flow.Dinic] when cutter is nil.
func New(cutter flow.MinCutter, logger *log.Logger) *Solver {
	if cutter == nil {
		cutter = flow.Dinic{}
	}
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Solver{Cutter: cutter, Logger: logger}
}

// Solve searches g for the largest source side above sizeThreshold. A graph
// without weight returns an empty result without probing.
func (s *Solver) Solve(ctx context.Context, g *bpgraph.Graph, sizeThreshold int) (Result, error) {
	if sizeThreshold < 0 {
		return Result{}, fmt.Errorf("densest: negative size threshold %d", sizeThreshold)
	}
	total := g.TotalWeight()
	if total == 0 {
		return Result{}, nil
	}

	start := time.Now()
	n := g.VertexCount()
	eps := (total / float64(g.EdgeCount())) / float64(n*(n+1))
	low, high := 0.0, total
	res := Result{Epsilon: eps}

	for high-low >= eps {
		if err := ctx.Err(); err != nil {
			return Result{}, err
		}
		guess := (low + high) / 2
		if guess == low || guess == high {
			break
		}
		cut, err := s.Cutter.MinCut(ctx, BuildNetwork(g, guess))
		if err != nil {
			return Result{}, fmt.Errorf("densest: probe %g: %w", guess, err)
		}
		side := cut.SourceNodes(n)
		probe := Probe{Guess: guess, SourceSize: len(side)}
		if len(side) <= sizeThreshold {
			high = guess
		} else {
			low = guess
			res.Vertices = side
			probe.Accepted = true
		}
		res.Probes = append(res.Probes, probe)
		observability.Solver().OnProbe(ctx, guess, probe.SourceSize, probe.Accepted)
	}

	res.Density, res.Upper = low, high
	elapsed := time.Since(start)
	observability.Solver().OnSolve(ctx, n, g.EdgeCount(), len(res.Probes), elapsed)
	s.Logger.Debug("densest search finished",
		"vertices", n,
		"edges", g.EdgeCount(),
		"probes", len(res.Probes),
		"cluster", len(res.Vertices),
		"density", low,
		"duration", elapsed)
	return res, nil
}
