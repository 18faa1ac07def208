package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/lintang-b-s/rutavial/pkg/costfunction"
	"github.com/lintang-b-s/rutavial/pkg/datastructure"
	"github.com/lintang-b-s/rutavial/pkg/geo"
	"github.com/lintang-b-s/rutavial/pkg/kv"
	"github.com/lintang-b-s/rutavial/pkg/osmparser"
	"go.uber.org/zap"
)

// GraphLoader reads region graphs from the kv store and falls back to parsing the osm extract.
// parsed graphs are annotated and written back to the store.
type GraphLoader struct {
	kv    KVDB
	parse ParseFunc
	cf    costfunction.CostFunction
	log   *zap.Logger
}

func NewGraphLoader(kvdb KVDB, parse ParseFunc, log *zap.Logger) *GraphLoader {
	if log == nil {
		log = zap.NewNop()
	}
	return &GraphLoader{
		kv:    kvdb,
		parse: parse,
		cf:    costfunction.NewTimeCostFunction(),
		log:   log,
	}
}

// PbfParser parses mapFile clipped to the requested region.
func PbfParser(mapFile string, log *zap.Logger) ParseFunc {
	return func(ctx context.Context, region geo.Region) (*datastructure.RoadGraph, error) {
		return osmparser.NewOSMParser(region, log).Parse(ctx, mapFile)
	}
}

func (l *GraphLoader) Load(ctx context.Context, region geo.Region) (*datastructure.RoadGraph, error) {
	key := region.Key()
	if l.kv != nil {
		g, err := l.kv.GetRoadGraph(key)
		if err == nil {
			l.log.Info("road graph loaded from kv", zap.String("key", key), zap.Int("nodes", g.NumNodes()))
			return g, nil
		}
		if !errors.Is(err, kv.ErrGraphNotFound) {
			l.log.Warn("reading road graph from kv failed, parsing osm data", zap.String("key", key), zap.Error(err))
		}
	}

	if l.parse == nil {
		return nil, fmt.Errorf("no road graph for region %s", region)
	}
	g, err := l.parse(ctx, region)
	if err != nil {
		return nil, fmt.Errorf("parse road graph for region %s: %w", region, err)
	}
	costfunction.Annotate(g, l.cf)

	if l.kv != nil {
		if err := l.kv.SaveRoadGraph(ctx, key, g); err != nil {
			l.log.Warn("saving road graph to kv failed", zap.String("key", key), zap.Error(err))
		}
	}
	return g, nil
}
