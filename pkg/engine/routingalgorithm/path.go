package routingalgorithm

import "github.com/lintang-b-s/rutavial/pkg/util"

// reconstructPath follows the predecessors back from t. the walk stops at the first node without a
// predecessor, or as soon as it steps onto s, and the result only counts when it starts at s.
func reconstructPath(pred []int32, s, t int32) ([]int32, bool) {
	path := make([]int32, 0)
	sourceInPath := false

	current := t
	for current != noPredecessor {
		path = append(path, current)
		if current == s {
			sourceInPath = true
		}

		current = pred[current]
		if current == s && !sourceInPath {
			path = append(path, current)
			break
		}
	}

	path = util.ReverseG(path)
	if len(path) == 0 || path[0] != s {
		return nil, false
	}
	return path, true
}
