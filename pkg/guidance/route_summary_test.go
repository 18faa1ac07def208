package guidance

import (
	"testing"

	"github.com/lintang-b-s/rutavial/pkg/datastructure"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

/*
test graph:

	1 --Calle Independencia--> 2 ==(parallel)==> 3 --(no name)--> 4
*/
func newTestGraph(t *testing.T) *datastructure.RoadGraph {
	g := datastructure.NewRoadGraph()
	for _, id := range []int64{1, 2, 3, 4} {
		g.AddNode(id, 0, 0)
	}

	edges := []struct {
		from, to int64
		opts     []datastructure.EdgeOption
	}{
		{1, 2, []datastructure.EdgeOption{datastructure.WithLength(120.456), datastructure.WithTravelTime(30.5), datastructure.WithName("Calle Independencia")}},
		{2, 3, []datastructure.EdgeOption{datastructure.WithLength(80), datastructure.WithTravelTime(60), datastructure.WithName("Av. Juárez")}},
		{2, 3, []datastructure.EdgeOption{datastructure.WithLength(10), datastructure.WithTravelTime(1), datastructure.WithName("Atajo")}},
		{3, 4, []datastructure.EdgeOption{datastructure.WithLength(40)}},
	}
	for _, e := range edges {
		edge, err := datastructure.NewEdge(e.from, e.to, e.opts...)
		require.NoError(t, err)
		g.AddEdge(edge)
	}
	return g
}

func TestSummarize(t *testing.T) {
	g := newTestGraph(t)

	summary, segments, err := Summarize(g, []int64{1, 2, 3, 4})
	require.NoError(t, err)

	assert.Equal(t, []datastructure.Segment{
		{Ordinal: 1, Street: "Calle Independencia", DistanceMeters: 120.46, TimeMinutes: 0.51},
		{Ordinal: 2, Street: "Av. Juárez", DistanceMeters: 80, TimeMinutes: 1},
		{Ordinal: 3, Street: UnnamedStreet, DistanceMeters: 40, TimeMinutes: 0},
	}, segments)

	assert.InDelta(t, 240.456, summary.TotalDistanceMeters, 1e-9)
	assert.InDelta(t, 90.5, summary.TotalTimeSeconds, 1e-9)
	assert.InDelta(t, 1.51, summary.TotalTimeMinutes, 1e-9)
	assert.Equal(t, 3, summary.SegmentCount)
}

func TestSummarizeSingleNode(t *testing.T) {
	g := newTestGraph(t)

	for _, path := range [][]int64{{1}, {}} {
		summary, segments, err := Summarize(g, path)
		require.NoError(t, err)
		assert.Empty(t, segments)
		assert.NotNil(t, segments)
		assert.Equal(t, datastructure.RouteSummary{}, summary)
	}
}

func TestSummarizeMissingEdgeCompatibility(t *testing.T) {
	g := newTestGraph(t)
	core, logs := observer.New(zapcore.WarnLevel)

	// 4 -> 1 has no edge
	summary, segments, err := Summarize(g, []int64{3, 4, 1, 2}, WithLogger(zap.New(core)))
	require.NoError(t, err)

	require.Len(t, segments, 2)
	assert.Equal(t, 1, segments[0].Ordinal)
	assert.Equal(t, 3, segments[1].Ordinal)
	assert.Equal(t, "Calle Independencia", segments[1].Street)
	assert.InDelta(t, 160.456, summary.TotalDistanceMeters, 1e-9)
	assert.Equal(t, 3, summary.SegmentCount)

	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, int64(4), entry.ContextMap()["from"])
	assert.Equal(t, int64(1), entry.ContextMap()["to"])
}

func TestSummarizeMissingEdgeStrict(t *testing.T) {
	g := newTestGraph(t)

	_, segments, err := Summarize(g, []int64{3, 4, 1, 2}, WithStrictEdges(true))
	assert.ErrorIs(t, err, ErrInconsistentEdgeData)
	assert.Nil(t, segments)

	_, _, err = Summarize(g, []int64{1, 99}, WithStrictEdges(true))
	assert.ErrorIs(t, err, ErrInconsistentEdgeData)

	_, segments, err = NewRouteSummarizer(g, WithStrictEdges(true)).Summarize([]int64{1, 2, 3})
	require.NoError(t, err)
	assert.Len(t, segments, 2)
}

func TestSummarizeMissingAttributes(t *testing.T) {
	g := datastructure.NewRoadGraph()
	e, err := datastructure.NewEdge(1, 2)
	require.NoError(t, err)
	g.AddEdge(e)

	summary, segments, err := Summarize(g, []int64{1, 2})
	require.NoError(t, err)
	assert.Equal(t, []datastructure.Segment{{Ordinal: 1, Street: UnnamedStreet}}, segments)
	assert.Equal(t, 0.0, summary.TotalDistanceMeters)
	assert.Equal(t, 0.0, summary.TotalTimeSeconds)
}

func TestSummarizeRoundsHalfToEven(t *testing.T) {
	g := datastructure.NewRoadGraph()
	e, err := datastructure.NewEdge(1, 2, datastructure.WithLength(0.125), datastructure.WithTravelTime(7.5))
	require.NoError(t, err)
	g.AddEdge(e)

	summary, segments, err := Summarize(g, []int64{1, 2})
	require.NoError(t, err)
	assert.Equal(t, []datastructure.Segment{{Ordinal: 1, Street: UnnamedStreet, DistanceMeters: 0.12, TimeMinutes: 0.12}}, segments)
	assert.Equal(t, 0.12, summary.TotalTimeMinutes)
}

func TestStreetName(t *testing.T) {
	assert.Equal(t, UnnamedStreet, StreetName(""))
	assert.Equal(t, "Calle Macedonio Alcalá", StreetName("Calle Macedonio Alcalá"))
}
