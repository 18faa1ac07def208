package geo

import (
	"github.com/golang/geo/s2"
	"github.com/lintang-b-s/rutavial/pkg/datastructure"
)

func toS2Point(c datastructure.Coordinate) s2.Point {
	return s2.PointFromLatLng(s2.LatLngFromDegrees(c.Lat, c.Lon))
}

// PointLinePerpendicularDistance is the distance in meters from p to the segment (a, b).
func PointLinePerpendicularDistance(a, b, p datastructure.Coordinate) float64 {
	return s2.DistanceFromSegment(toS2Point(p), toS2Point(a), toS2Point(b)).Radians() * earthRadiusM
}

// ProjectPointToLineCoord returns the point of segment (a, b) closest to p.
func ProjectPointToLineCoord(a, b, p datastructure.Coordinate) datastructure.Coordinate {
	projection := s2.Project(toS2Point(p), toS2Point(a), toS2Point(b))
	ll := s2.LatLngFromPoint(projection)
	return datastructure.NewCoordinate(ll.Lat.Degrees(), ll.Lng.Degrees())
}

// PolylineLength sums the haversine length of consecutive points in meters.
func PolylineLength(coords []datastructure.Coordinate) float64 {
	length := 0.0
	for i := 1; i < len(coords); i++ {
		length += HaversineMeters(coords[i-1].Lat, coords[i-1].Lon, coords[i].Lat, coords[i].Lon)
	}
	return length
}
