package kv

import (
	"errors"
	"fmt"

	"github.com/cockroachdb/pebble"
	"github.com/cockroachdb/pebble/vfs"
	"github.com/dgraph-io/badger/v4"
)

var (
	ErrKeyNotFound    = errors.New("key not found")
	ErrUnknownBackend = errors.New("unknown kv backend")
)

const (
	BackendBadger = "badger"
	BackendPebble = "pebble"
)

// Store is the byte level key-value storage behind KVDB.
type Store interface {
	Get(key []byte) ([]byte, error)
	SetBatch(entries map[string][]byte) error
	Close() error
}

// NewStore opens the backend at path. an empty path keeps the data in memory.
func NewStore(backend, path string) (Store, error) {
	switch backend {
	case BackendBadger, "":
		return NewBadgerStore(path)
	case BackendPebble:
		return NewPebbleStore(path)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, backend)
	}
}

type BadgerStore struct {
	db *badger.DB
}

func NewBadgerStore(path string) (*BadgerStore, error) {
	opts := badger.DefaultOptions(path).WithLogger(nil)
	if path == "" {
		opts = opts.WithInMemory(true)
	}
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger at %q: %w", path, err)
	}
	return &BadgerStore{db: db}, nil
}

func (b *BadgerStore) Get(key []byte) ([]byte, error) {
	var val []byte
	err := b.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(key)
		if err != nil {
			return err
		}

		val, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, ErrKeyNotFound
	}
	return val, err
}

func (b *BadgerStore) SetBatch(entries map[string][]byte) error {
	batch := b.db.NewWriteBatch()
	defer batch.Cancel()

	for key, val := range entries {
		if err := batch.Set([]byte(key), val); err != nil {
			return err
		}
	}
	return batch.Flush()
}

func (b *BadgerStore) Close() error {
	return b.db.Close()
}

type PebbleStore struct {
	db *pebble.DB
}

func NewPebbleStore(path string) (*PebbleStore, error) {
	opts := &pebble.Options{}
	if path == "" {
		opts.FS = vfs.NewMem()
	}
	db, err := pebble.Open(path, opts)
	if err != nil {
		return nil, fmt.Errorf("open pebble at %q: %w", path, err)
	}
	return &PebbleStore{db: db}, nil
}

func (p *PebbleStore) Get(key []byte) ([]byte, error) {
	val, closer, err := p.db.Get(key)
	if errors.Is(err, pebble.ErrNotFound) {
		return nil, ErrKeyNotFound
	}
	if err != nil {
		return nil, err
	}
	defer closer.Close()

	out := make([]byte, len(val))
	copy(out, val)
	return out, nil
}

func (p *PebbleStore) SetBatch(entries map[string][]byte) error {
	batch := p.db.NewBatch()
	defer batch.Close()

	for key, val := range entries {
		if err := batch.Set([]byte(key), val, nil); err != nil {
			return err
		}
	}
	return batch.Commit(pebble.Sync)
}

func (p *PebbleStore) Close() error {
	return p.db.Close()
}
