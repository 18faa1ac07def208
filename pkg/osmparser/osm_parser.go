package osmparser

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/lintang-b-s/rutavial/pkg/datastructure"
	"github.com/lintang-b-s/rutavial/pkg/geo"
	"github.com/paulmach/osm"
	"github.com/paulmach/osm/osmpbf"
	"go.uber.org/zap"
)

type NodeType uint8

const (
	END_NODE NodeType = iota + 1
	BETWEEN_NODE
	JUNCTION_NODE
)

type node struct {
	id    int64
	coord nodeCoord
}

type nodeCoord struct {
	lat float64
	lon float64
}

var (
	skipHighway = map[string]struct{}{
		"footway":                {},
		"construction":           {},
		"proposed":               {},
		"abandoned":              {},
		"cycleway":               {},
		"path":                   {},
		"pedestrian":             {},
		"busway":                 {},
		"steps":                  {},
		"bridleway":              {},
		"corridor":               {},
		"street_lamp":            {},
		"bus_stop":               {},
		"crossing":               {},
		"cyclist_waiting_aid":    {},
		"elevator":               {},
		"emergency_bay":          {},
		"emergency_access_point": {},
		"give_way":               {},
		"phone":                  {},
		"ladder":                 {},
		"milestone":              {},
		"passing_place":          {},
		"platform":               {},
		"speed_camera":           {},
		"track":                  {},
		"bus_guideway":           {},
		"speed_display":          {},
		"stop":                   {},
		"toll_gantry":            {},
		"traffic_mirror":         {},
		"traffic_signals":        {},
		"trailhead":              {},
	}

	skipAccess = map[string]struct{}{
		"no":      {},
		"private": {},
	}
)

// OsmParser builds the drivable road graph of a region from an openstreetmap pbf extract.
type OsmParser struct {
	region          geo.Region
	wayNodeMap      map[int64]NodeType
	acceptedNodeMap map[int64]nodeCoord
	graph           *datastructure.RoadGraph
	log             *zap.Logger
}

// NewOSMParser. a region with a non-positive radius keeps every node of the extract.
func NewOSMParser(region geo.Region, log *zap.Logger) *OsmParser {
	if log == nil {
		log = zap.NewNop()
	}
	return &OsmParser{
		region:          region,
		wayNodeMap:      make(map[int64]NodeType),
		acceptedNodeMap: make(map[int64]nodeCoord),
		graph:           datastructure.NewRoadGraph(),
		log:             log,
	}
}

func (p *OsmParser) Parse(ctx context.Context, mapFile string) (*datastructure.RoadGraph, error) {
	f, err := os.Open(mapFile)
	if err != nil {
		return nil, fmt.Errorf("open osm file %s: %w", mapFile, err)
	}
	defer f.Close()

	return p.ParseReader(ctx, f)
}

// ParseReader reads the pbf twice: the first pass finds the junction nodes of the accepted ways,
// the second one collects node positions and splits the ways into edges.
func (p *OsmParser) ParseReader(ctx context.Context, rs io.ReadSeeker) (*datastructure.RoadGraph, error) {
	scanner := osmpbf.New(ctx, rs, 1)
	scanner.SkipNodes = true
	scanner.SkipRelations = true

	countWays := 0
	for scanner.Scan() {
		way, ok := scanner.Object().(*osm.Way)
		if !ok {
			continue
		}
		if p.markWayNodes(way) {
			countWays++
			if countWays%50000 == 0 {
				p.log.Info("reading openstreetmap ways", zap.Int("ways", countWays))
			}
		}
	}
	if err := scanner.Err(); err != nil {
		scanner.Close()
		return nil, fmt.Errorf("scan osm ways: %w", err)
	}
	scanner.Close()

	if _, err := rs.Seek(0, io.SeekStart); err != nil {
		return nil, err
	}

	scanner = osmpbf.New(ctx, rs, 1)
	scanner.SkipRelations = true
	defer scanner.Close()

	countNodes := 0
	for scanner.Scan() {
		switch o := scanner.Object().(type) {
		case *osm.Node:
			p.addNode(o)
			countNodes++
			if countNodes%500000 == 0 {
				p.log.Info("processing openstreetmap nodes", zap.Int("nodes", countNodes))
			}
		case *osm.Way:
			p.processWay(o)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan osm nodes & ways: %w", err)
	}

	p.log.Info("road graph built",
		zap.Int("accepted_ways", countWays),
		zap.Int("nodes", p.graph.NumNodes()),
		zap.Int("edges", p.graph.NumEdges()),
		zap.Stringer("region", p.region))

	return p.graph, nil
}

func (p *OsmParser) Graph() *datastructure.RoadGraph {
	return p.graph
}

// markWayNodes counts how often each node of an accepted way is used. a node shared by two ways,
// or visited twice by the same way, is a junction.
func (p *OsmParser) markWayNodes(way *osm.Way) bool {
	if len(way.Nodes) < 2 || !acceptOsmWay(way) {
		return false
	}

	for i, n := range way.Nodes {
		id := int64(n.ID)
		if _, ok := p.wayNodeMap[id]; !ok {
			if i == 0 || i == len(way.Nodes)-1 {
				p.wayNodeMap[id] = END_NODE
			} else {
				p.wayNodeMap[id] = BETWEEN_NODE
			}
		} else {
			p.wayNodeMap[id] = JUNCTION_NODE
		}
	}
	return true
}

func (p *OsmParser) addNode(n *osm.Node) {
	id := int64(n.ID)
	if _, ok := p.wayNodeMap[id]; !ok {
		return
	}
	if p.region.RadiusMeters > 0 && !p.region.Contains(n.Lat, n.Lon) {
		return
	}
	p.acceptedNodeMap[id] = nodeCoord{lat: n.Lat, lon: n.Lon}
}

func (p *OsmParser) isSplitNode(id int64) bool {
	t := p.wayNodeMap[id]
	return t == JUNCTION_NODE || t == END_NODE
}

type wayInfo struct {
	name       string
	highway    string
	speedLimit datastructure.SpeedLimit
	forward    bool
	backward   bool
}

// processWay cuts the way into runs of nodes inside the region, then splits every run at junctions.
func (p *OsmParser) processWay(way *osm.Way) {
	if len(way.Nodes) < 2 || !acceptOsmWay(way) {
		return
	}

	forward, backward := wayDirection(way)
	info := wayInfo{
		name:       way.Tags.Find("name"),
		highway:    way.Tags.Find("highway"),
		speedLimit: parseMaxSpeed(way.Tags.Find("maxspeed")),
		forward:    forward,
		backward:   backward,
	}

	run := make([]node, 0, len(way.Nodes))
	for _, wayNode := range way.Nodes {
		coord, ok := p.acceptedNodeMap[int64(wayNode.ID)]
		if !ok {
			p.processRun(run, info)
			run = run[:0]
			continue
		}
		run = append(run, node{id: int64(wayNode.ID), coord: coord})
	}
	p.processRun(run, info)
}

func (p *OsmParser) processRun(run []node, info wayInfo) {
	if len(run) < 2 {
		return
	}

	waySegment := []node{}
	for i, nodeData := range run {
		waySegment = append(waySegment, nodeData)
		last := i == len(run)-1
		if i > 0 && (last || p.isSplitNode(nodeData.id)) {
			p.processSegment(waySegment, info)
			waySegment = []node{nodeData}
		}
	}
}

func (p *OsmParser) processSegment(segment []node, info wayInfo) {
	if len(segment) < 2 {
		return
	}
	if len(segment) == 2 && segment[0].id == segment[1].id {
		return
	}
	if segment[0].id == segment[len(segment)-1].id {
		// closed way without junctions, split it so neither part is a self loop
		p.processSegment(segment[:len(segment)-1], info)
		p.processSegment(segment[len(segment)-2:], info)
		return
	}

	if info.forward {
		p.addEdge(segment, info)
	}
	if info.backward {
		reversed := make([]node, len(segment))
		for i := range segment {
			reversed[len(segment)-1-i] = segment[i]
		}
		p.addEdge(reversed, info)
	}
}

func (p *OsmParser) addEdge(segment []node, info wayInfo) {
	from := segment[0]
	to := segment[len(segment)-1]
	p.graph.AddNode(from.id, from.coord.lat, from.coord.lon)
	p.graph.AddNode(to.id, to.coord.lat, to.coord.lon)

	edgePoints := make([]datastructure.Coordinate, 0, len(segment))
	for _, n := range segment {
		edgePoints = append(edgePoints, datastructure.NewCoordinate(n.coord.lat, n.coord.lon))
	}
	distance := geo.PolylineLength(edgePoints)

	opts := []datastructure.EdgeOption{
		datastructure.WithLength(distance),
		datastructure.WithSpeedLimit(info.speedLimit),
		datastructure.WithName(info.name),
		datastructure.WithHighway(info.highway),
	}
	if len(edgePoints) > 2 {
		opts = append(opts, datastructure.WithGeometry(geo.RamerDouglasPeucker(edgePoints)))
	}

	e, err := datastructure.NewEdge(from.id, to.id, opts...)
	if err != nil {
		p.log.Warn("skipping invalid edge", zap.Error(err))
		return
	}
	p.graph.AddEdge(e)
}

// parseMaxSpeed keeps the raw maxspeed values, "50;30" becomes a list.
func parseMaxSpeed(value string) datastructure.SpeedLimit {
	if value == "" {
		return datastructure.NoSpeedLimit()
	}
	if !strings.Contains(value, ";") {
		return datastructure.NewSpeedLimit(strings.TrimSpace(value))
	}

	parts := strings.Split(value, ";")
	values := make([]string, 0, len(parts))
	for _, part := range parts {
		if part = strings.TrimSpace(part); part != "" {
			values = append(values, part)
		}
	}
	if len(values) == 1 {
		return datastructure.NewSpeedLimit(values[0])
	}
	return datastructure.NewSpeedLimitList(values...)
}

func isRestricted(value string) bool {
	switch value {
	case "no", "restricted", "military", "emergency", "private", "permit":
		return true
	}
	return false
}

// wayDirection returns whether the way can be driven in node order and against it.
func wayDirection(way *osm.Way) (bool, bool) {
	forward, backward := true, true

	switch way.Tags.Find("oneway") {
	case "yes", "true", "1":
		backward = false
	case "-1", "reverse":
		forward = false
	case "no", "false", "0":
	default:
		junction := way.Tags.Find("junction")
		if junction == "roundabout" || junction == "circular" || way.Tags.Find("highway") == "motorway" {
			backward = false
		}
	}

	if isRestricted(way.Tags.Find("vehicle:forward")) || isRestricted(way.Tags.Find("motor_vehicle:forward")) {
		forward = false
	}
	if isRestricted(way.Tags.Find("vehicle:backward")) || isRestricted(way.Tags.Find("motor_vehicle:backward")) {
		backward = false
	}
	return forward, backward
}

func acceptOsmWay(way *osm.Way) bool {
	if _, ok := skipAccess[way.Tags.Find("access")]; ok {
		return false
	}
	if _, ok := skipAccess[way.Tags.Find("motor_vehicle")]; ok {
		return false
	}

	highway := way.Tags.Find("highway")
	if highway != "" {
		_, skip := skipHighway[highway]
		return !skip
	}
	if way.Tags.Find("route") == "road" {
		return true
	}
	return way.Tags.Find("junction") != ""
}
