package routingalgorithm

import "github.com/lintang-b-s/rutavial/pkg/datastructure"

type Graph interface {
	NumNodes() int
	NodeIndex(id int64) (int32, bool)
	NodeID(idx int32) int64

	ForOutEdgeGroups(u int32, handle func(v int32, edgeIDs []int32))
	GetEdge(edgeID int32) *datastructure.Edge
}
