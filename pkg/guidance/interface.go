package guidance

import "github.com/lintang-b-s/rutavial/pkg/datastructure"

type Graph interface {
	NodeIndex(id int64) (int32, bool)
	EdgeGroup(u, v int32) []int32
	GetEdge(edgeID int32) *datastructure.Edge
}
