package geo

import (
	"testing"

	"github.com/lintang-b-s/rutavial/pkg/datastructure"
	"github.com/stretchr/testify/assert"
)

func TestDouglasPecker(t *testing.T) {
	lineCoords := []datastructure.Coordinate{
		{Lat: -7.565837, Lon: 110.831586},
		{Lat: -7.566063, Lon: 110.832379},
		{Lat: -7.566406, Lon: 110.833232},
	}

	simplified := RamerDouglasPeucker(lineCoords)
	assert.Equal(t, []datastructure.Coordinate{lineCoords[0], lineCoords[2]}, simplified)
}

func TestDouglasPeckerKeepsCorner(t *testing.T) {
	// an L shaped street, the corner is ~150 m off the straight line
	lineCoords := []datastructure.Coordinate{
		{Lat: 17.0600, Lon: -96.7200},
		{Lat: 17.0610, Lon: -96.7200},
		{Lat: 17.0620, Lon: -96.7200},
		{Lat: 17.0620, Lon: -96.7210},
		{Lat: 17.0620, Lon: -96.7220},
	}

	simplified := RamerDouglasPeucker(lineCoords)
	assert.Equal(t, []datastructure.Coordinate{lineCoords[0], lineCoords[2], lineCoords[4]}, simplified)

	assert.Len(t, RamerDouglasPeucker(lineCoords[:2]), 2)
	assert.Len(t, RamerDouglasPeucker(nil), 0)
}

func TestPointLinePerpendicularDistance(t *testing.T) {
	a := datastructure.NewCoordinate(17.06, -96.72)
	b := datastructure.NewCoordinate(17.06, -96.70)
	p := datastructure.NewCoordinate(17.061, -96.71)

	// 0.001 degree of latitude
	assert.InDelta(t, 111.2, PointLinePerpendicularDistance(a, b, p), 0.5)
	assert.InDelta(t, 0, PointLinePerpendicularDistance(a, b, a), 1e-6)

	proj := ProjectPointToLineCoord(a, b, p)
	assert.InDelta(t, -96.71, proj.Lon, 1e-6)
	assert.InDelta(t, 17.06, proj.Lat, 1e-4)
}

func TestPolylineLength(t *testing.T) {
	coords := []datastructure.Coordinate{
		{Lat: 17.0600, Lon: -96.7200},
		{Lat: 17.0610, Lon: -96.7200},
		{Lat: 17.0620, Lon: -96.7200},
	}
	assert.InDelta(t, 222.4, PolylineLength(coords), 0.5)
	assert.Equal(t, 0.0, PolylineLength(coords[:1]))
}
