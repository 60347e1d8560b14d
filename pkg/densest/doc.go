// Package densest finds dense clusters in breakpoint graphs with Goldberg's
// parametric min-cut construction.
//
// For a guessed density g the network has one node per vertex plus a source
// and a sink. Every undirected edge {u,v} of weight w becomes arcs u→v and
// v→u of capacity w; every vertex gets s→v of capacity W and v→t of capacity
// W+2g−deg(v), where W is the total edge weight. A set S of vertices lies on
// the source side of a minimum cut exactly when w(S)/|S| ≥ g is the best
// trade-off, so the source side is empty once g exceeds the maximum density.
//
// [Solver.Solve] binary searches g between 0 and W. A probe whose source side
// holds more than sizeThreshold vertices raises the lower bound and becomes
// the current answer; any other probe lowers the upper bound. The answer is
// therefore the source side of the last probe that was still too large, which
// bounds cluster size rather than maximizing density: a graph whose every
// source side fits under the threshold yields an empty result.
package densest
