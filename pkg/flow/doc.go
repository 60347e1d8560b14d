// Package flow computes maximum flows and minimum s-t cuts on small dense
// networks.
//
// A [Network] stores arcs in pairs: arc 2k is the forward arc and arc 2k+1 its
// reverse, so the residual partner of arc a is a^1. Capacities are float64.
// Values within a tolerance of zero are treated as zero, which keeps augmenting
// loops finite in the presence of rounding. The tolerance is relative to the
// largest capacity, so scaling every capacity by a constant scales the flow
// and leaves the cut unchanged.
//
// Two engines implement [MinCutter]:
//
//   - [Dinic] builds a BFS level graph and pushes blocking flows. It is the
//     default used by the densest-subgraph search.
//   - [EdmondsKarp] augments along shortest paths one at a time. It is slower
//     and serves as a cross-check.
//
// Both report the source side of the minimum cut as the set of nodes reachable
// from the source in the final residual network. That set is the same for
// every maximum flow, so the two engines agree on it.
package flow
