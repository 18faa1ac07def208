package datastructure

import (
	"errors"
	"fmt"
	"math"
)

var (
	ErrNegativeLength     = errors.New("edge length must be a non-negative number")
	ErrNegativeTravelTime = errors.New("edge travel time must be a non-negative number")
)

// SpeedLimit is the raw maxspeed attribute of a road segment, kept exactly as tagged.
// A way can carry several limits (e.g. "50;30"), in that case IsList is true and the
// values keep the order of the source data.
type SpeedLimit struct {
	Values []string
	IsList bool
}

func NoSpeedLimit() SpeedLimit {
	return SpeedLimit{}
}

func NewSpeedLimit(value string) SpeedLimit {
	return SpeedLimit{Values: []string{value}}
}

func NewSpeedLimitList(values ...string) SpeedLimit {
	vals := make([]string, len(values))
	copy(vals, values)
	return SpeedLimit{Values: vals, IsList: true}
}

func (s SpeedLimit) IsSet() bool {
	return s.IsList || len(s.Values) > 0
}

// First returns the value the weight model reads: the scalar itself or the first list element.
func (s SpeedLimit) First() (string, bool) {
	if len(s.Values) == 0 {
		return "", false
	}
	return s.Values[0], true
}

type Node struct {
	ID  int64
	Lat float64
	Lon float64
}

type Edge struct {
	From       int64
	To         int64
	Length     float64 // meter
	HasLength  bool
	SpeedLimit SpeedLimit
	Name       string
	Highway    string
	Geometry   []Coordinate

	TravelTime    float64 // second
	HasTravelTime bool
}

type EdgeOption func(e *Edge)

func WithLength(meters float64) EdgeOption {
	return func(e *Edge) {
		e.Length = meters
		e.HasLength = true
	}
}

func WithSpeedLimit(s SpeedLimit) EdgeOption {
	return func(e *Edge) {
		e.SpeedLimit = s
	}
}

func WithName(name string) EdgeOption {
	return func(e *Edge) {
		e.Name = name
	}
}

func WithHighway(highway string) EdgeOption {
	return func(e *Edge) {
		e.Highway = highway
	}
}

func WithGeometry(points []Coordinate) EdgeOption {
	return func(e *Edge) {
		e.Geometry = points
	}
}

// WithTravelTime presets the traversal cost, normally the weight model sets it.
func WithTravelTime(seconds float64) EdgeOption {
	return func(e *Edge) {
		e.TravelTime = seconds
		e.HasTravelTime = true
	}
}

func NewEdge(from, to int64, opts ...EdgeOption) (Edge, error) {
	e := Edge{From: from, To: to}
	for _, opt := range opts {
		opt(&e)
	}
	if e.HasLength && (math.IsNaN(e.Length) || e.Length < 0) {
		return Edge{}, fmt.Errorf("%w: edge %d->%d length=%v", ErrNegativeLength, from, to, e.Length)
	}
	if e.HasTravelTime && (math.IsNaN(e.TravelTime) || e.TravelTime < 0) {
		return Edge{}, fmt.Errorf("%w: edge %d->%d travel_time=%v", ErrNegativeTravelTime, from, to, e.TravelTime)
	}
	return e, nil
}

func (e *Edge) GetLength() (float64, bool) {
	return e.Length, e.HasLength
}

func (e *Edge) GetSpeedLimit() SpeedLimit {
	return e.SpeedLimit
}

// edgeGroup holds the parallel edges u->v in insertion order.
type edgeGroup struct {
	to      int32
	edgeIDs []int32
}

/*
RoadGraph. directed multigraph of the road network.

nodes are kept in insertion order (the native node enumeration order), and the
out-neighbours of a node are kept in the order their first edge was added. parallel edges
between the same ordered pair form one group, also in insertion order.
*/
type RoadGraph struct {
	nodes     []Node
	nodeIndex map[int64]int32
	out       [][]edgeGroup
	edges     []Edge
}

func NewRoadGraph() *RoadGraph {
	return &RoadGraph{
		nodes:     make([]Node, 0),
		nodeIndex: make(map[int64]int32),
		out:       make([][]edgeGroup, 0),
		edges:     make([]Edge, 0),
	}
}

// AddNode adds a node or updates the position of an existing one without changing its order.
func (g *RoadGraph) AddNode(id int64, lat, lon float64) int32 {
	if idx, ok := g.nodeIndex[id]; ok {
		g.nodes[idx].Lat = lat
		g.nodes[idx].Lon = lon
		return idx
	}
	idx := int32(len(g.nodes))
	g.nodes = append(g.nodes, Node{ID: id, Lat: lat, Lon: lon})
	g.nodeIndex[id] = idx
	g.out = append(g.out, nil)
	return idx
}

func (g *RoadGraph) ensureNode(id int64) int32 {
	if idx, ok := g.nodeIndex[id]; ok {
		return idx
	}
	return g.AddNode(id, 0, 0)
}

// AddEdge appends e after any existing parallel edge between the same endpoints.
// missing endpoints are added without a position.
func (g *RoadGraph) AddEdge(e Edge) int32 {
	u := g.ensureNode(e.From)
	v := g.ensureNode(e.To)

	edgeID := int32(len(g.edges))
	g.edges = append(g.edges, e)

	for i := range g.out[u] {
		if g.out[u][i].to == v {
			g.out[u][i].edgeIDs = append(g.out[u][i].edgeIDs, edgeID)
			return edgeID
		}
	}
	g.out[u] = append(g.out[u], edgeGroup{to: v, edgeIDs: []int32{edgeID}})
	return edgeID
}

func (g *RoadGraph) NumNodes() int {
	return len(g.nodes)
}

func (g *RoadGraph) NumEdges() int {
	return len(g.edges)
}

func (g *RoadGraph) NodeIndex(id int64) (int32, bool) {
	idx, ok := g.nodeIndex[id]
	return idx, ok
}

func (g *RoadGraph) NodeID(idx int32) int64 {
	return g.nodes[idx].ID
}

func (g *RoadGraph) GetNode(idx int32) Node {
	return g.nodes[idx]
}

// Nodes returns the nodes in enumeration order. callers must not modify the slice.
func (g *RoadGraph) Nodes() []Node {
	return g.nodes
}

func (g *RoadGraph) GetEdge(edgeID int32) *Edge {
	return &g.edges[edgeID]
}

// ForEachEdge visits every edge in insertion order. handle may modify the edge attributes.
func (g *RoadGraph) ForEachEdge(handle func(edgeID int32, e *Edge)) {
	for i := range g.edges {
		handle(int32(i), &g.edges[i])
	}
}

// ForOutEdgeGroups visits the out-neighbours of u in enumeration order together with
// the ids of the parallel edges u->v.
func (g *RoadGraph) ForOutEdgeGroups(u int32, handle func(v int32, edgeIDs []int32)) {
	for _, group := range g.out[u] {
		handle(group.to, group.edgeIDs)
	}
}

func (g *RoadGraph) EdgeGroup(u, v int32) []int32 {
	for _, group := range g.out[u] {
		if group.to == v {
			return group.edgeIDs
		}
	}
	return nil
}

// RepresentativeEdgeID picks the edge that stands for a group of parallel edges: the first
// one in enumeration order, not the cheapest. path search and route summary both use it.
func RepresentativeEdgeID(edgeIDs []int32) (int32, bool) {
	if len(edgeIDs) == 0 {
		return -1, false
	}
	return edgeIDs[0], true
}

func (g *RoadGraph) FirstEdge(u, v int32) (*Edge, bool) {
	edgeID, ok := RepresentativeEdgeID(g.EdgeGroup(u, v))
	if !ok {
		return nil, false
	}
	return &g.edges[edgeID], true
}

// PathGeometry returns the coordinates along a node path, using the geometry of the
// representative edge between consecutive nodes when it has one.
func (g *RoadGraph) PathGeometry(path []int64) []Coordinate {
	coords := make([]Coordinate, 0, len(path))
	for i, id := range path {
		u, ok := g.nodeIndex[id]
		if !ok {
			continue
		}
		if i == 0 {
			coords = append(coords, NewCoordinate(g.nodes[u].Lat, g.nodes[u].Lon))
			continue
		}
		prev, ok := g.nodeIndex[path[i-1]]
		if ok {
			if e, found := g.FirstEdge(prev, u); found && len(e.Geometry) > 2 {
				coords = append(coords, e.Geometry[1:len(e.Geometry)-1]...)
			}
		}
		coords = append(coords, NewCoordinate(g.nodes[u].Lat, g.nodes[u].Lon))
	}
	return coords
}
