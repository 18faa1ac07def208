package kv

import (
	"context"
	"errors"
	"fmt"

	"github.com/DataDog/zstd"
	"github.com/lintang-b-s/rutavial/pkg/datastructure"
	"go.uber.org/zap"
)

var ErrGraphNotFound = errors.New("road graph not found")

// KVDB keeps annotated region graphs as zstd compressed snapshots.
type KVDB struct {
	store Store
	log   *zap.Logger
}

func NewKVDB(store Store, log *zap.Logger) *KVDB {
	if log == nil {
		log = zap.NewNop()
	}
	return &KVDB{store: store, log: log}
}

func (k *KVDB) SaveRoadGraph(ctx context.Context, key string, g *datastructure.RoadGraph) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	bb, err := g.MarshalBinary()
	if err != nil {
		return err
	}
	compressed, err := compress(bb)
	if err != nil {
		return fmt.Errorf("compress road graph %s: %w", key, err)
	}

	if err := k.store.SetBatch(map[string][]byte{key: compressed}); err != nil {
		return fmt.Errorf("save road graph %s: %w", key, err)
	}
	k.log.Info("road graph saved", zap.String("key", key), zap.Int("nodes", g.NumNodes()),
		zap.Int("edges", g.NumEdges()), zap.Int("bytes", len(compressed)))
	return nil
}

func (k *KVDB) GetRoadGraph(key string) (*datastructure.RoadGraph, error) {
	val, err := k.store.Get([]byte(key))
	if errors.Is(err, ErrKeyNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrGraphNotFound, key)
	}
	if err != nil {
		return nil, fmt.Errorf("get road graph %s: %w", key, err)
	}

	bb, err := decompress(val)
	if err != nil {
		return nil, fmt.Errorf("decompress road graph %s: %w", key, err)
	}
	return datastructure.UnmarshalRoadGraph(bb)
}

func (k *KVDB) Close() error {
	return k.store.Close()
}

func compress(bb []byte) ([]byte, error) {
	return zstd.Compress(nil, bb)
}

func decompress(bbCompressed []byte) ([]byte, error) {
	return zstd.Decompress(nil, bbCompressed)
}
