package geo

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHaversine(t *testing.T) {
	cases := []struct {
		latOne, longOne, latTwo, longTwo float64
		expectedDist                     float64
	}{
		{
			latOne:       -7.557155997491524,
			longOne:      110.77170252731288,
			latTwo:       -7.550209300671982,
			longTwo:      110.78942094938256,
			expectedDist: 2.1,
		},
		{
			latOne:  -7.546196863318374,
			longOne: 110.7775170972345,

			latTwo:       -7.550209300671982,
			longTwo:      110.78942094938256,
			expectedDist: 1.38,
		},
		{
			latOne:       -7.759889166547908,
			longOne:      110.36689459108496,
			latTwo:       -7.760335932763678,
			longTwo:      110.37671195413539,
			expectedDist: 1.08,
		},
		{
			latOne:       -7.700002453207869,
			longOne:      110.37712514761436,
			latTwo:       -7.760335932763678,
			longTwo:      110.37671195413539,
			expectedDist: 6.7,
		},
	}

	t.Run("success haversine distance", func(t *testing.T) {
		for _, c := range cases {
			dist := CalculateHaversineDistance(c.latOne, c.longOne, c.latTwo, c.longTwo)
			assert.InDelta(t, c.expectedDist, dist, 0.1)
		}
	})
}

func TestDistanceMeters(t *testing.T) {
	// 0.009 degree of latitude around the zócalo of Oaxaca
	lat, lon := 17.026351452600192, -96.73258533277694

	assert.InDelta(t, 1000.76, HaversineMeters(lat, lon, lat+0.009, lon), 1)
	assert.InDelta(t, 1000.76, DistanceMeters(lat, lon, lat+0.009, lon), 1)
	assert.Equal(t, 0.0, DistanceMeters(lat, lon, lat, lon))

	h := HaversineMeters(lat, lon, 17.06, -96.70)
	s := DistanceMeters(lat, lon, 17.06, -96.70)
	assert.InEpsilon(t, h, s, 1e-3)
}
