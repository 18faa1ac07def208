package osmparser

import (
	"testing"

	"github.com/lintang-b-s/rutavial/pkg/datastructure"
	"github.com/lintang-b-s/rutavial/pkg/geo"
	"github.com/paulmach/osm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newWay(id osm.WayID, nodeIDs []osm.NodeID, tags ...osm.Tag) *osm.Way {
	nodes := make(osm.WayNodes, 0, len(nodeIDs))
	for _, n := range nodeIDs {
		nodes = append(nodes, osm.WayNode{ID: n})
	}
	return &osm.Way{ID: id, Nodes: nodes, Tags: osm.Tags(tags)}
}

func buildGraph(p *OsmParser, nodes []*osm.Node, ways []*osm.Way) *datastructure.RoadGraph {
	for _, w := range ways {
		p.markWayNodes(w)
	}
	for _, n := range nodes {
		p.addNode(n)
	}
	for _, w := range ways {
		p.processWay(w)
	}
	return p.Graph()
}

type edgeKey struct {
	from, to int64
}

func edgesOf(g *datastructure.RoadGraph) map[edgeKey]*datastructure.Edge {
	edges := make(map[edgeKey]*datastructure.Edge)
	g.ForEachEdge(func(edgeID int32, e *datastructure.Edge) {
		edges[edgeKey{e.From, e.To}] = e
	})
	return edges
}

/*
oaxaca centro, nodes ~110 m apart:

	        4
	        |
	1 ----- 2 ----- 3      way 10: 1-2-3 (Av. Independencia, two way, maxspeed 50;30)
	        |              way 20: 4-2-5 (Calle Alcalá, oneway)
	        5
*/
func oaxacaNodes() []*osm.Node {
	return []*osm.Node{
		{ID: 1, Lat: 17.0610, Lon: -96.7270},
		{ID: 2, Lat: 17.0610, Lon: -96.7260},
		{ID: 3, Lat: 17.0610, Lon: -96.7250},
		{ID: 4, Lat: 17.0620, Lon: -96.7260},
		{ID: 5, Lat: 17.0600, Lon: -96.7260},
		{ID: 99, Lat: 17.0610, Lon: -96.7240}, // not part of a way
	}
}

func TestParseWaysSplitsAtJunction(t *testing.T) {
	p := NewOSMParser(geo.NewRegion(17.0610, -96.7260, 5000), nil)

	g := buildGraph(p, oaxacaNodes(), []*osm.Way{
		newWay(10, []osm.NodeID{1, 2, 3},
			osm.Tag{Key: "highway", Value: "primary"},
			osm.Tag{Key: "name", Value: "Av. Independencia"},
			osm.Tag{Key: "maxspeed", Value: "50;30"}),
		newWay(20, []osm.NodeID{4, 2, 5},
			osm.Tag{Key: "highway", Value: "residential"},
			osm.Tag{Key: "name", Value: "Calle Macedonio Alcalá"},
			osm.Tag{Key: "oneway", Value: "yes"}),
	})

	assert.Equal(t, 5, g.NumNodes())
	ids := make([]int64, 0)
	for _, n := range g.Nodes() {
		ids = append(ids, n.ID)
	}
	assert.Equal(t, []int64{1, 2, 3, 4, 5}, ids)

	edges := edgesOf(g)
	assert.Len(t, edges, 6)
	for _, k := range []edgeKey{{1, 2}, {2, 1}, {2, 3}, {3, 2}, {4, 2}, {2, 5}} {
		assert.Contains(t, edges, k)
	}
	assert.NotContains(t, edges, edgeKey{2, 4})
	assert.NotContains(t, edges, edgeKey{5, 2})

	e := edges[edgeKey{1, 2}]
	assert.Equal(t, "Av. Independencia", e.Name)
	assert.Equal(t, "primary", e.Highway)
	assert.True(t, e.HasLength)
	assert.InDelta(t, 106.4, e.Length, 1)
	assert.Equal(t, datastructure.NewSpeedLimitList("50", "30"), e.SpeedLimit)
	assert.False(t, e.HasTravelTime)

	assert.False(t, edges[edgeKey{4, 2}].SpeedLimit.IsSet())
	assert.InDelta(t, 111.2, edges[edgeKey{4, 2}].Length, 1)
}

func TestParseWaysClipsToRegion(t *testing.T) {
	// 150 m around node 2 keeps nodes 1 and 3 (~106 m away) and drops node 6 (~640 m away)
	nodes := oaxacaNodes()
	nodes = append(nodes, &osm.Node{ID: 6, Lat: 17.0610, Lon: -96.7200})

	p := NewOSMParser(geo.NewRegion(17.0610, -96.7260, 150), nil)
	g := buildGraph(p, nodes, []*osm.Way{
		newWay(10, []osm.NodeID{1, 2, 3, 6}, osm.Tag{Key: "highway", Value: "tertiary"}),
	})

	_, ok := g.NodeIndex(6)
	assert.False(t, ok)

	edges := edgesOf(g)
	assert.Contains(t, edges, edgeKey{1, 3})
	assert.Contains(t, edges, edgeKey{3, 1})
	assert.Len(t, edges, 2)

	e := edges[edgeKey{1, 3}]
	assert.InDelta(t, 212.8, e.Length, 2)
	// straight line, the middle point is simplified away
	assert.Len(t, e.Geometry, 2)
}

func TestParseWaysSkipsNonDrivable(t *testing.T) {
	p := NewOSMParser(geo.Region{}, nil)
	g := buildGraph(p, oaxacaNodes(), []*osm.Way{
		newWay(10, []osm.NodeID{1, 2}, osm.Tag{Key: "highway", Value: "footway"}),
		newWay(11, []osm.NodeID{2, 3}, osm.Tag{Key: "highway", Value: "residential"}, osm.Tag{Key: "access", Value: "private"}),
		newWay(12, []osm.NodeID{3, 4}, osm.Tag{Key: "building", Value: "yes"}),
		newWay(13, []osm.NodeID{4}, osm.Tag{Key: "highway", Value: "residential"}),
		newWay(14, []osm.NodeID{4, 5}, osm.Tag{Key: "highway", Value: "service"}, osm.Tag{Key: "oneway", Value: "-1"}),
	})

	edges := edgesOf(g)
	assert.Len(t, edges, 1)
	assert.Contains(t, edges, edgeKey{5, 4})
}

func TestParseWaysRoundabout(t *testing.T) {
	p := NewOSMParser(geo.Region{}, nil)
	g := buildGraph(p, oaxacaNodes(), []*osm.Way{
		newWay(30, []osm.NodeID{1, 4, 3, 5, 1},
			osm.Tag{Key: "highway", Value: "secondary"},
			osm.Tag{Key: "junction", Value: "roundabout"}),
	})

	edges := edgesOf(g)
	require.Len(t, edges, 2)
	// closed way split in two, driven in node order only
	assert.Contains(t, edges, edgeKey{1, 5})
	assert.Contains(t, edges, edgeKey{5, 1})
	assert.Len(t, edges[edgeKey{1, 5}].Geometry, 4)
	assert.Empty(t, edges[edgeKey{5, 1}].Geometry)
}

func TestParseMaxSpeed(t *testing.T) {
	assert.Equal(t, datastructure.NoSpeedLimit(), parseMaxSpeed(""))
	assert.Equal(t, datastructure.NewSpeedLimit("40"), parseMaxSpeed("40"))
	assert.Equal(t, datastructure.NewSpeedLimit("30 mph"), parseMaxSpeed("30 mph"))
	assert.Equal(t, datastructure.NewSpeedLimitList("60", "40"), parseMaxSpeed("60; 40"))
	assert.Equal(t, datastructure.NewSpeedLimit("60"), parseMaxSpeed("60;"))
}

func TestWayDirection(t *testing.T) {
	cases := []struct {
		tags              []osm.Tag
		forward, backward bool
	}{
		{tags: []osm.Tag{{Key: "highway", Value: "residential"}}, forward: true, backward: true},
		{tags: []osm.Tag{{Key: "oneway", Value: "yes"}}, forward: true, backward: false},
		{tags: []osm.Tag{{Key: "oneway", Value: "-1"}}, forward: false, backward: true},
		{tags: []osm.Tag{{Key: "oneway", Value: "no"}}, forward: true, backward: true},
		{tags: []osm.Tag{{Key: "junction", Value: "roundabout"}}, forward: true, backward: false},
		{tags: []osm.Tag{{Key: "junction", Value: "roundabout"}, {Key: "oneway", Value: "no"}}, forward: true, backward: true},
		{tags: []osm.Tag{{Key: "highway", Value: "motorway"}}, forward: true, backward: false},
		{tags: []osm.Tag{{Key: "vehicle:backward", Value: "no"}}, forward: true, backward: false},
		{tags: []osm.Tag{{Key: "motor_vehicle:forward", Value: "private"}}, forward: false, backward: true},
	}

	for _, c := range cases {
		forward, backward := wayDirection(newWay(1, []osm.NodeID{1, 2}, c.tags...))
		assert.Equal(t, c.forward, forward, "%v", c.tags)
		assert.Equal(t, c.backward, backward, "%v", c.tags)
	}
}
