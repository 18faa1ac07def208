package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/lintang-b-s/rutavial/pkg/datastructure"
	"github.com/lintang-b-s/rutavial/pkg/engine/routingalgorithm"
	"github.com/lintang-b-s/rutavial/pkg/geo"
	"github.com/lintang-b-s/rutavial/pkg/guidance"
	"github.com/lintang-b-s/rutavial/pkg/server"
	"github.com/lintang-b-s/rutavial/pkg/snap"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

const (
	MsgOutOfCoverage = "Coordenadas fuera del área de cobertura del mapa. Por favor selecciona puntos cercanos a Oaxaca."
	MsgNoRoute       = "No se encontró una ruta entre los puntos seleccionados. Revisa si hay calles conectadas entre ambos lugares."
	MsgInternal      = "Ocurrió un error inesperado al calcular la ruta. Intenta nuevamente."

	defaultCacheSize = 4
)

// regionGraph. an annotated graph plus everything built on top of it, shared read-only by requests.
type regionGraph struct {
	graph      *datastructure.RoadGraph
	router     *routingalgorithm.RouteAlgorithm
	snapper    *snap.RoadSnapper
	summarizer *guidance.RouteSummarizer
}

type RouteService struct {
	region    geo.Region
	loader    Loader
	cache     *lru.Cache[string, *regionGraph]
	loadGroup singleflight.Group

	cacheSize      int
	requestTimeout time.Duration
	maxSnapMeters  float64
	strictEdges    bool
	naive          bool
	log            *zap.Logger
}

type Option func(s *RouteService)

func WithCacheSize(size int) Option {
	return func(s *RouteService) {
		s.cacheSize = size
	}
}

// WithRequestTimeout bounds the path search of one request. 0 means no bound.
func WithRequestTimeout(d time.Duration) Option {
	return func(s *RouteService) {
		s.requestTimeout = d
	}
}

func WithMaxSnapDistance(meters float64) Option {
	return func(s *RouteService) {
		s.maxSnapMeters = meters
	}
}

func WithStrictEdges(strict bool) Option {
	return func(s *RouteService) {
		s.strictEdges = strict
	}
}

func WithNaiveEngine(naive bool) Option {
	return func(s *RouteService) {
		s.naive = naive
	}
}

func WithLogger(log *zap.Logger) Option {
	return func(s *RouteService) {
		s.log = log
	}
}

func NewRouteService(region geo.Region, loader Loader, opts ...Option) (*RouteService, error) {
	s := &RouteService{
		region:    region,
		loader:    loader,
		cacheSize: defaultCacheSize,
		log:       zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}

	cache, err := lru.New[string, *regionGraph](max(s.cacheSize, 1))
	if err != nil {
		return nil, fmt.Errorf("create graph cache: %w", err)
	}
	s.cache = cache
	return s, nil
}

func (s *RouteService) Region() geo.Region {
	return s.region
}

// Preload loads the service region so the first request does not pay for it.
func (s *RouteService) Preload(ctx context.Context) error {
	_, err := s.regionGraph(ctx)
	return err
}

// UseGraph installs an already annotated graph for the service region.
func (s *RouteService) UseGraph(g *datastructure.RoadGraph) {
	s.cache.Add(s.region.Key(), s.newRegionGraph(g))
}

func (s *RouteService) newRegionGraph(g *datastructure.RoadGraph) *regionGraph {
	routerOpts := []routingalgorithm.Option{}
	if s.naive {
		routerOpts = append(routerOpts, routingalgorithm.WithNaiveSelection())
	}

	rg := &regionGraph{
		graph:   g,
		router:  routingalgorithm.NewRouteAlgorithm(g, routerOpts...),
		snapper: snap.NewRoadSnapper(g, s.maxSnapMeters),
		summarizer: guidance.NewRouteSummarizer(g,
			guidance.WithStrictEdges(s.strictEdges),
			guidance.WithLogger(s.log)),
	}

	scc := g.StronglyConnectedComponents()
	_, largest := scc.Largest()
	s.log.Info("road graph ready",
		zap.String("region", s.region.String()),
		zap.Int("nodes", g.NumNodes()),
		zap.Int("edges", g.NumEdges()),
		zap.Int("scc", scc.Count()),
		zap.Int32("largest_scc", largest))
	return rg
}

// regionGraph loads the region at most once at a time. the load runs detached from the caller's
// cancellation so one abandoned request does not fail the others waiting on it, each caller still
// stops waiting when its own ctx is done.
func (s *RouteService) regionGraph(ctx context.Context) (*regionGraph, error) {
	key := s.region.Key()
	if rg, ok := s.cache.Get(key); ok {
		return rg, nil
	}

	loadCtx := context.WithoutCancel(ctx)
	ch := s.loadGroup.DoChan(key, func() (interface{}, error) {
		if rg, ok := s.cache.Get(key); ok {
			return rg, nil
		}
		g, err := s.loader.Load(loadCtx, s.region)
		if err != nil {
			return nil, err
		}
		rg := s.newRegionGraph(g)
		s.cache.Add(key, rg)
		return rg, nil
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*regionGraph), nil
	}
}

// ShortestRoute snaps both coordinates to the road network and returns the fastest route between them.
func (s *RouteService) ShortestRoute(ctx context.Context, origin, destination datastructure.Coordinate) (datastructure.Route, error) {
	rg, err := s.regionGraph(ctx)
	if err != nil {
		return datastructure.Route{}, server.WrapErrorf(err, server.ErrInternalServerError, MsgInternal)
	}

	source, _, err := rg.snapper.NearestNode(origin.Lat, origin.Lon)
	if err != nil {
		return datastructure.Route{}, server.WrapErrorf(err, server.ErrBadParamInput, MsgOutOfCoverage)
	}
	target, _, err := rg.snapper.NearestNode(destination.Lat, destination.Lon)
	if err != nil {
		return datastructure.Route{}, server.WrapErrorf(err, server.ErrBadParamInput, MsgOutOfCoverage)
	}

	if s.requestTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.requestTimeout)
		defer cancel()
	}

	path, found, stats, err := rg.router.ShortestPathContext(ctx, source, target)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			s.log.Warn("route search timed out", zap.Int64("source", source), zap.Int64("target", target),
				zap.Int("settled", stats.Settled))
		}
		return datastructure.Route{}, server.WrapErrorf(err, server.ErrInternalServerError, MsgInternal)
	}
	if !found {
		return datastructure.Route{}, server.NewErrorf(server.ErrNoRoute, MsgNoRoute)
	}
	s.log.Debug("route found", zap.Int64("source", source), zap.Int64("target", target),
		zap.Int("nodes", len(path)), zap.Int("settled", stats.Settled), zap.Float64("cost", stats.Cost))

	summary, segments, err := rg.summarizer.Summarize(path)
	if err != nil {
		return datastructure.Route{}, server.WrapErrorf(err, server.ErrInternalServerError, MsgInternal)
	}

	return datastructure.Route{
		Path:     path,
		Segments: segments,
		Summary:  summary,
		Geometry: rg.graph.PathGeometry(path),
	}, nil
}
