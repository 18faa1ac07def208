package geo

import (
	"fmt"

	"github.com/uber/h3-go/v4"
)

const RegionKeyResolution = 7

// Region. circular area around a center, the coverage of one road graph.
type Region struct {
	CenterLat    float64
	CenterLon    float64
	RadiusMeters float64
}

func NewRegion(lat, lon, radiusMeters float64) Region {
	return Region{CenterLat: lat, CenterLon: lon, RadiusMeters: radiusMeters}
}

func (r Region) Contains(lat, lon float64) bool {
	return DistanceMeters(r.CenterLat, r.CenterLon, lat, lon) <= r.RadiusMeters
}

func (r Region) Cell() h3.Cell {
	return h3.LatLngToCell(h3.NewLatLng(r.CenterLat, r.CenterLon), RegionKeyResolution)
}

// Key identifies the region in caches and the kv store: the h3 cell of the center, the center rounded to
// 5 decimals (about 1 m) and the radius. two centers in the same cell only share a key when they are
// within a meter of each other.
func (r Region) Key() string {
	return fmt.Sprintf("graph:%s:%.5f,%.5f:%d", r.Cell().String(), r.CenterLat, r.CenterLon, int64(r.RadiusMeters))
}

func (r Region) String() string {
	return fmt.Sprintf("(%.6f, %.6f) r=%.0fm", r.CenterLat, r.CenterLon, r.RadiusMeters)
}
