package snap

import (
	"errors"
	"fmt"
	"math"

	"github.com/dhconnelly/rtreego"
	"github.com/lintang-b-s/rutavial/pkg/datastructure"
	"github.com/lintang-b-s/rutavial/pkg/geo"
)

const (
	rtreeMinChildren = 25
	rtreeMaxChildren = 50

	// rtree neighbours are ranked in degrees, the final pick is by geodesic distance among these
	nearestCandidates = 8

	pointTolerance = 1e-9
)

var ErrNoNearbyNode = errors.New("no road network node near the query point")

type Graph interface {
	Nodes() []datastructure.Node
}

type nodeLeaf struct {
	node datastructure.Node
	rect rtreego.Rect
}

func (l *nodeLeaf) Bounds() rtreego.Rect {
	return l.rect
}

// RoadSnapper. nearest graph node lookup for raw coordinates.
type RoadSnapper struct {
	rtree       *rtreego.Rtree
	maxDistance float64
}

// NewRoadSnapper indexes every node of g. maxDistanceMeters <= 0 disables the distance limit.
func NewRoadSnapper(g Graph, maxDistanceMeters float64) *RoadSnapper {
	nodes := g.Nodes()
	leafs := make([]rtreego.Spatial, 0, len(nodes))
	for _, n := range nodes {
		leafs = append(leafs, &nodeLeaf{
			node: n,
			rect: rtreego.Point{n.Lat, n.Lon}.ToRect(pointTolerance),
		})
	}

	return &RoadSnapper{
		rtree:       rtreego.NewTree(2, rtreeMinChildren, rtreeMaxChildren, leafs...),
		maxDistance: maxDistanceMeters,
	}
}

func (rs *RoadSnapper) Size() int {
	return rs.rtree.Size()
}

// NearestNode returns the id of the node closest to (lat, lon) and its distance in meters.
func (rs *RoadSnapper) NearestNode(lat, lon float64) (int64, float64, error) {
	candidates := rs.rtree.NearestNeighbors(nearestCandidates, rtreego.Point{lat, lon})

	best := int64(0)
	bestDist := math.Inf(1)
	found := false
	for _, c := range candidates {
		leaf, ok := c.(*nodeLeaf)
		if !ok || leaf == nil {
			continue
		}
		dist := geo.DistanceMeters(lat, lon, leaf.node.Lat, leaf.node.Lon)
		if dist < bestDist {
			best, bestDist, found = leaf.node.ID, dist, true
		}
	}

	if !found {
		return 0, 0, fmt.Errorf("%w: (%f, %f), empty index", ErrNoNearbyNode, lat, lon)
	}
	if rs.maxDistance > 0 && bestDist > rs.maxDistance {
		return 0, bestDist, fmt.Errorf("%w: (%f, %f) is %.0f m from the nearest node", ErrNoNearbyNode, lat, lon, bestDist)
	}
	return best, bestDist, nil
}
