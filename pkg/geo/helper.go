package geo

import (
	"container/list"

	"github.com/lintang-b-s/rutavial/pkg/datastructure"
)

const (
	DOUGLAS_PEUCKER_THRESHOLDS = 7.0 // 7 meter
)

// https://cartography-playground.gitlab.io/playgrounds/douglas-peucker-algorithm/

// RamerDouglasPeucker drops the points that are within the threshold of the simplified line.
// the first and last points are always kept.
func RamerDouglasPeucker(coords []datastructure.Coordinate) []datastructure.Coordinate {
	return RamerDouglasPeuckerThreshold(coords, DOUGLAS_PEUCKER_THRESHOLDS)
}

func RamerDouglasPeuckerThreshold(coords []datastructure.Coordinate, threshold float64) []datastructure.Coordinate {
	size := len(coords)
	if size <= 2 {
		return coords
	}

	kepts := make([]bool, size)
	kepts[0] = true
	kepts[size-1] = true

	stack := list.New()
	stack.PushBack([2]int{0, size - 1})

	for stack.Len() > 0 {
		pair := stack.Remove(stack.Back()).([2]int)
		left, right := pair[0], pair[1]
		var maxDist float64
		farthestIndex := left

		for i := left + 1; i < right; i++ {
			dist := PointLinePerpendicularDistance(coords[left], coords[right], coords[i])
			if dist > maxDist {
				maxDist = dist
				farthestIndex = i
			}
		}

		if maxDist > threshold {
			kepts[farthestIndex] = true
			stack.PushBack([2]int{left, farthestIndex})
			stack.PushBack([2]int{farthestIndex, right})
		}
	}

	simplified := make([]datastructure.Coordinate, 0, size)
	for i, necessary := range kepts {
		if necessary {
			simplified = append(simplified, coords[i])
		}
	}
	return simplified
}
