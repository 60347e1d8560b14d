package flow

import (
	"context"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"
)

var cutters = map[string]MinCutter{
	"dinic":        Dinic{},
	"edmonds-karp": EdmondsKarp{},
}

// textbook builds the six-node network with maximum flow 23.
func textbook(t *testing.T) *Network {
	t.Helper()
	net, err := NewNetwork(6, 0, 5)
	require.NoError(t, err)
	for _, a := range []struct {
		u, v int
		c    float64
	}{
		{0, 1, 16}, {0, 2, 13}, {1, 3, 12}, {2, 1, 4}, {2, 4, 14},
		{3, 2, 9}, {3, 5, 20}, {4, 3, 7}, {4, 5, 4},
	} {
		net.AddArc(a.u, a.v, a.c)
	}
	return net
}

func TestMinCutTextbook(t *testing.T) {
	for name, mc := range cutters {
		t.Run(name, func(t *testing.T) {
			net := textbook(t)
			before := net.Clone()

			cut, err := mc.MinCut(context.Background(), net)
			require.NoError(t, err)
			require.InDelta(t, 23, cut.Value, 1e-9)
			require.Equal(t, []int{1, 2, 4}, cut.SourceNodes(net.Source()))
			require.Equal(t, before, net, "network must not be modified")
		})
	}
}

func TestMinCutDisconnected(t *testing.T) {
	for name, mc := range cutters {
		t.Run(name, func(t *testing.T) {
			net, err := NewNetwork(4, 0, 3)
			require.NoError(t, err)
			net.AddArc(0, 1, 5)
			net.AddArc(2, 3, 5)

			cut, err := mc.MinCut(context.Background(), net)
			require.NoError(t, err)
			require.Zero(t, cut.Value)
			require.Equal(t, []bool{true, true, false, false}, cut.SourceSide)
		})
	}
}

func TestMinCutSymmetricPairs(t *testing.T) {
	for name, mc := range cutters {
		t.Run(name, func(t *testing.T) {
			// s=0, t=3, undirected path 1-2 with weight 2.
			net, err := NewNetwork(4, 0, 3)
			require.NoError(t, err)
			net.AddArc(0, 1, 10)
			net.AddPair(1, 2, 2, 2)
			net.AddArc(2, 3, 10)

			cut, err := mc.MinCut(context.Background(), net)
			require.NoError(t, err)
			require.InDelta(t, 2, cut.Value, 1e-12)
			require.Equal(t, []int{1}, cut.SourceNodes(0))
		})
	}
}

func TestMinCutNegativeCapacity(t *testing.T) {
	for name, mc := range cutters {
		t.Run(name, func(t *testing.T) {
			net, err := NewNetwork(2, 0, 1)
			require.NoError(t, err)
			net.AddArc(0, 1, -1)
			_, err = mc.MinCut(context.Background(), net)
			require.ErrorIs(t, err, ErrNegativeCapacity)
		})
	}
}

func TestMinCutRoundingNegativeIsZero(t *testing.T) {
	net, err := NewNetwork(3, 0, 2)
	require.NoError(t, err)
	net.AddArc(0, 1, 5)
	net.AddArc(1, 2, 5)
	net.AddArc(0, 2, -1e-15)
	cut, err := Dinic{}.MinCut(context.Background(), net)
	require.NoError(t, err)
	require.InDelta(t, 5, cut.Value, 1e-12)
}

func TestMinCutScaleInvariant(t *testing.T) {
	for name, mc := range cutters {
		t.Run(name, func(t *testing.T) {
			for _, f := range []float64{1e-12, 1e-9, 1e-6, 1e6} {
				net := textbook(t)
				for a := range net.cap {
					net.cap[a] *= f
				}
				cut, err := mc.MinCut(context.Background(), net)
				require.NoError(t, err)
				require.InDelta(t, 23*f, cut.Value, 1e-9*f, "scale %g", f)
				require.Equal(t, []int{1, 2, 4}, cut.SourceNodes(net.Source()), "scale %g", f)
			}
		})
	}
}

func TestMinCutCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	for name, mc := range cutters {
		t.Run(name, func(t *testing.T) {
			_, err := mc.MinCut(ctx, textbook(t))
			require.ErrorIs(t, err, context.Canceled)
		})
	}
}

func TestNewNetworkBadTerminals(t *testing.T) {
	_, err := NewNetwork(3, 1, 1)
	require.ErrorIs(t, err, ErrBadTerminals)
	_, err = NewNetwork(3, 0, 3)
	require.ErrorIs(t, err, ErrBadTerminals)
}

func TestEnginesAgreeOnRandomNetworks(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for trial := 0; trial < 200; trial++ {
		n := 2 + rng.Intn(9)
		net, err := NewNetwork(n, 0, n-1)
		require.NoError(t, err)
		for u := 0; u < n; u++ {
			for v := u + 1; v < n; v++ {
				if rng.Float64() < 0.4 {
					net.AddPair(u, v, rng.Float64()*10, rng.Float64()*10)
				}
			}
		}

		a, err := Dinic{}.MinCut(context.Background(), net)
		require.NoError(t, err)
		b, err := EdmondsKarp{}.MinCut(context.Background(), net)
		require.NoError(t, err)
		require.InDelta(t, a.Value, b.Value, 1e-7, "trial %d", trial)
		require.Equal(t, a.SourceSide, b.SourceSide, "trial %d", trial)
		require.InDelta(t, a.Value, cutCapacity(net, a.SourceSide), 1e-7, "trial %d", trial)
	}
}

// cutCapacity sums the original capacities of arcs leaving side.
func cutCapacity(net *Network, side []bool) float64 {
	total := 0.0
	for a, v := range net.to {
		u := net.to[a^1]
		if side[u] && !side[v] {
			total += net.cap[a]
		}
	}
	return total
}
