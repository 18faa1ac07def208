package costfunction

import (
	"github.com/lintang-b-s/rutavial/pkg/datastructure"
)

type EdgeAttributes interface {
	GetLength() (float64, bool)
	GetSpeedLimit() datastructure.SpeedLimit
}

type CostFunction interface {
	GetWeight(e EdgeAttributes) float64
}

// Annotate sets the travel time of every edge of g with cf and returns g.
func Annotate(g *datastructure.RoadGraph, cf CostFunction) *datastructure.RoadGraph {
	g.ForEachEdge(func(edgeID int32, e *datastructure.Edge) {
		e.TravelTime = cf.GetWeight(e)
		e.HasTravelTime = true
	})
	return g
}
