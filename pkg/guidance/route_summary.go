package guidance

import (
	"errors"
	"fmt"

	"github.com/lintang-b-s/rutavial/pkg/datastructure"
	"github.com/lintang-b-s/rutavial/pkg/util"
	"go.uber.org/zap"
)

const UnnamedStreet = "Sin nombre"

// ErrInconsistentEdgeData. a path goes through a node pair the graph has no edge for.
var ErrInconsistentEdgeData = errors.New("inconsistent edge data")

type RouteSummarizer struct {
	g      Graph
	strict bool
	log    *zap.Logger
}

type Option func(rs *RouteSummarizer)

// WithStrictEdges fails the summary on a node pair without an edge instead of skipping it.
func WithStrictEdges(strict bool) Option {
	return func(rs *RouteSummarizer) {
		rs.strict = strict
	}
}

func WithLogger(log *zap.Logger) Option {
	return func(rs *RouteSummarizer) {
		rs.log = log
	}
}

func NewRouteSummarizer(g Graph, opts ...Option) *RouteSummarizer {
	rs := &RouteSummarizer{
		g:   g,
		log: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(rs)
	}
	return rs
}

func Summarize(g Graph, path []int64, opts ...Option) (datastructure.RouteSummary, []datastructure.Segment, error) {
	return NewRouteSummarizer(g, opts...).Summarize(path)
}

/*
Summarize builds one segment per consecutive node pair of path using the first parallel edge, the same
edge the path search relaxed. a missing length or travel time counts as 0. segment ordinals are the pair
position (1-based), so a skipped pair leaves a gap in the numbering.
*/
func (rs *RouteSummarizer) Summarize(path []int64) (datastructure.RouteSummary, []datastructure.Segment, error) {
	segments := make([]datastructure.Segment, 0, max(len(path)-1, 0))
	summary := datastructure.RouteSummary{
		SegmentCount: max(len(path)-1, 0),
	}

	for i := 0; i+1 < len(path); i++ {
		e, ok := rs.edgeBetween(path[i], path[i+1])
		if !ok {
			if rs.strict {
				return datastructure.RouteSummary{}, nil, fmt.Errorf("%w: no edge %d -> %d at segment %d",
					ErrInconsistentEdgeData, path[i], path[i+1], i+1)
			}
			rs.log.Warn("skipping route segment without edge data",
				zap.Error(ErrInconsistentEdgeData),
				zap.Int64("from", path[i]),
				zap.Int64("to", path[i+1]),
				zap.Int("segment", i+1))
			continue
		}

		meters := 0.0
		if e.HasLength {
			meters = e.Length
		}
		seconds := 0.0
		if e.HasTravelTime {
			seconds = e.TravelTime
		}
		summary.TotalDistanceMeters += meters
		summary.TotalTimeSeconds += seconds

		segments = append(segments, datastructure.NewSegment(
			i+1,
			StreetName(e.Name),
			util.RoundFloat(meters, 2),
			util.RoundFloat(seconds/60, 2),
		))
	}

	summary.TotalTimeMinutes = util.RoundFloat(summary.TotalTimeSeconds/60, 2)
	return summary, segments, nil
}

func (rs *RouteSummarizer) edgeBetween(from, to int64) (*datastructure.Edge, bool) {
	u, ok := rs.g.NodeIndex(from)
	if !ok {
		return nil, false
	}
	v, ok := rs.g.NodeIndex(to)
	if !ok {
		return nil, false
	}
	edgeID, ok := datastructure.RepresentativeEdgeID(rs.g.EdgeGroup(u, v))
	if !ok {
		return nil, false
	}
	return rs.g.GetEdge(edgeID), true
}

func StreetName(name string) string {
	if name == "" {
		return UnnamedStreet
	}
	return name
}
