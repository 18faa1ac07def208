package datastructure

import (
	"github.com/twpayne/go-polyline"
)

// Segment. one traversed edge of a route.
type Segment struct {
	Ordinal        int     // 1-based position of the node pair in the path
	Street         string  // street name or placeholder
	DistanceMeters float64 // rounded to 2 decimals
	TimeMinutes    float64 // rounded to 2 decimals
}

func NewSegment(ordinal int, street string, distanceMeters, timeMinutes float64) Segment {
	return Segment{
		Ordinal:        ordinal,
		Street:         street,
		DistanceMeters: distanceMeters,
		TimeMinutes:    timeMinutes,
	}
}

// RouteSummary. totals of a route. distance & seconds are raw sums, minutes is rounded to 2 decimals.
type RouteSummary struct {
	TotalDistanceMeters float64
	TotalTimeSeconds    float64
	TotalTimeMinutes    float64
	SegmentCount        int // len(path) - 1
}

type Route struct {
	Path     []int64
	Segments []Segment
	Summary  RouteSummary
	Geometry []Coordinate
}

func CreatePolyline(path []Coordinate) string {
	coords := make([][]float64, 0, len(path))
	for _, p := range path {
		coords = append(coords, []float64{p.Lat, p.Lon})
	}
	return string(polyline.EncodeCoords(coords))
}
