package service

import (
	"context"

	"github.com/lintang-b-s/rutavial/pkg/datastructure"
	"github.com/lintang-b-s/rutavial/pkg/geo"
)

type KVDB interface {
	GetRoadGraph(key string) (*datastructure.RoadGraph, error)
	SaveRoadGraph(ctx context.Context, key string, g *datastructure.RoadGraph) error
}

// Loader returns the annotated road graph covering region.
type Loader interface {
	Load(ctx context.Context, region geo.Region) (*datastructure.RoadGraph, error)
}

// ParseFunc builds the raw road graph of region.
type ParseFunc func(ctx context.Context, region geo.Region) (*datastructure.RoadGraph, error)
