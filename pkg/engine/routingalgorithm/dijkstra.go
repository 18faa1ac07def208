package routingalgorithm

import (
	"context"
	"math"

	"github.com/lintang-b-s/rutavial/pkg/datastructure"
)

const (
	noPredecessor int32 = -1

	// settled nodes between two context checks
	ctxCheckInterval = 1024
)

type SearchStats struct {
	Settled int
	Relaxed int
	Cost    float64 // travel time of the returned path in seconds, +Inf when there is none
}

type RouteAlgorithm struct {
	g     Graph
	naive bool
}

type Option func(rt *RouteAlgorithm)

// WithNaiveSelection makes ShortestPathContext use the O(V^2) selection scan instead of the heap.
func WithNaiveSelection() Option {
	return func(rt *RouteAlgorithm) {
		rt.naive = true
	}
}

func NewRouteAlgorithm(g Graph, opts ...Option) *RouteAlgorithm {
	rt := &RouteAlgorithm{g: g}
	for _, opt := range opts {
		opt(rt)
	}
	return rt
}

// FindPath returns the fastest path from source to target as node ids, or false when there is none.
func FindPath(g Graph, source, target int64) ([]int64, bool) {
	return NewRouteAlgorithm(g).ShortestPath(source, target)
}

// ShortestPath. dijkstra with a fibonacci heap keyed by (distance, node enumeration index), so
// nodes with equal distance are settled in enumeration order.
func (rt *RouteAlgorithm) ShortestPath(source, target int64) ([]int64, bool) {
	path, ok, _, _ := rt.shortestPath(context.Background(), source, target, false)
	return path, ok
}

// ShortestPathNaive. dijkstra that scans every unsettled node to select the next one.
func (rt *RouteAlgorithm) ShortestPathNaive(source, target int64) ([]int64, bool) {
	path, ok, _, _ := rt.shortestPath(context.Background(), source, target, true)
	return path, ok
}

// ShortestPathContext is ShortestPath that stops with ctx.Err() once ctx is done.
func (rt *RouteAlgorithm) ShortestPathContext(ctx context.Context, source, target int64) ([]int64, bool, SearchStats, error) {
	return rt.shortestPath(ctx, source, target, rt.naive)
}

func (rt *RouteAlgorithm) shortestPath(ctx context.Context, source, target int64, naive bool) ([]int64, bool, SearchStats, error) {
	stats := SearchStats{Cost: math.Inf(1)}

	s, ok := rt.g.NodeIndex(source)
	if !ok {
		return nil, false, stats, nil
	}
	t, ok := rt.g.NodeIndex(target)
	if !ok {
		return nil, false, stats, nil
	}

	var (
		dist []float64
		pred []int32
		err  error
	)
	if naive {
		dist, pred, err = rt.searchNaive(ctx, s, t, &stats)
	} else {
		dist, pred, err = rt.searchHeap(ctx, s, t, &stats)
	}
	if err != nil {
		return nil, false, stats, err
	}

	idxPath, found := reconstructPath(pred, s, t)
	if !found {
		return nil, false, stats, nil
	}
	stats.Cost = dist[t]

	path := make([]int64, len(idxPath))
	for i, idx := range idxPath {
		path[i] = rt.g.NodeID(idx)
	}
	return path, true, stats, nil
}

func (rt *RouteAlgorithm) initLabels(s int32) ([]float64, []int32) {
	n := rt.g.NumNodes()
	dist := make([]float64, n)
	pred := make([]int32, n)
	for i := 0; i < n; i++ {
		dist[i] = math.Inf(1)
		pred[i] = noPredecessor
	}
	dist[s] = 0
	return dist, pred
}

// edgeCost is the travel time of the first parallel edge, +Inf when it has none.
func (rt *RouteAlgorithm) edgeCost(edgeIDs []int32) (float64, bool) {
	edgeID, ok := datastructure.RepresentativeEdgeID(edgeIDs)
	if !ok {
		return 0, false
	}
	e := rt.g.GetEdge(edgeID)
	if !e.HasTravelTime {
		return math.Inf(1), true
	}
	return e.TravelTime, true
}

func (rt *RouteAlgorithm) searchNaive(ctx context.Context, s, t int32, stats *SearchStats) ([]float64, []int32, error) {
	n := int32(rt.g.NumNodes())
	dist, pred := rt.initLabels(s)
	settled := make([]bool, n)

	for remaining := n; remaining > 0; remaining-- {
		current := noPredecessor
		for v := int32(0); v < n; v++ {
			if settled[v] {
				continue
			}
			if current == noPredecessor || dist[v] < dist[current] {
				current = v
			}
		}

		if current == t {
			break
		}
		settled[current] = true
		stats.Settled++
		if stats.Settled%ctxCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return nil, nil, err
			}
		}

		rt.g.ForOutEdgeGroups(current, func(v int32, edgeIDs []int32) {
			if settled[v] {
				return
			}
			cost, ok := rt.edgeCost(edgeIDs)
			if !ok {
				return
			}
			if newDist := dist[current] + cost; newDist < dist[v] {
				dist[v] = newDist
				pred[v] = current
				stats.Relaxed++
			}
		})
	}

	return dist, pred, nil
}

/*
searchHeap settles the same nodes in the same order as searchNaive. the heap only holds unsettled
nodes with a finite distance and (distance, index) is unique, so its min is the node the scan would pick.
once the heap is empty every unsettled node is at +Inf and the scan could not change any label,
the target (if still unsettled) has no predecessor either way.
*/
func (rt *RouteAlgorithm) searchHeap(ctx context.Context, s, t int32, stats *SearchStats) ([]float64, []int32, error) {
	n := rt.g.NumNodes()
	dist, pred := rt.initLabels(s)
	settled := make([]bool, n)
	entries := make([]*datastructure.Entry[int32], n)

	pq := datastructure.NewFibonacciHeap[int32]()
	entries[s] = pq.Insert(s, 0, s)

	for !pq.IsEmpty() {
		current := pq.ExtractMin().GetElem()
		entries[current] = nil

		if current == t {
			break
		}
		settled[current] = true
		stats.Settled++
		if stats.Settled%ctxCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return nil, nil, err
			}
		}

		rt.g.ForOutEdgeGroups(current, func(v int32, edgeIDs []int32) {
			if settled[v] {
				return
			}
			cost, ok := rt.edgeCost(edgeIDs)
			if !ok {
				return
			}
			newDist := dist[current] + cost
			if !(newDist < dist[v]) {
				return
			}

			dist[v] = newDist
			pred[v] = current
			stats.Relaxed++

			if entries[v] == nil {
				entries[v] = pq.Insert(v, newDist, v)
			} else {
				pq.DecreaseKey(entries[v], newDist)
			}
		})
	}

	return dist, pred, nil
}
