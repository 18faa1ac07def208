package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/lintang-b-s/rutavial/pkg/geo"
	"github.com/lintang-b-s/rutavial/pkg/kv"
	"github.com/lintang-b-s/rutavial/pkg/logger"
)

const (
	EngineHeap  = "heap"
	EngineNaive = "naive"

	// centro de Oaxaca de Juárez
	DefaultCenterLat = 17.026351452600192
	DefaultCenterLon = -96.73258533277694
	DefaultRadiusM   = 15000
)

var ErrInvalidConfig = errors.New("invalid configuration")

// Duration reads toml strings such as "5s" or "250ms".
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(text []byte) error {
	dur, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = dur
	return nil
}

type ServerConfig struct {
	ListenAddr     string   `toml:"listen_addr"`
	RequestTimeout Duration `toml:"request_timeout"`
}

type GraphConfig struct {
	PbfFile      string  `toml:"pbf_file"`
	SnapshotFile string  `toml:"snapshot_file"`
	CenterLat    float64 `toml:"center_lat"`
	CenterLon    float64 `toml:"center_lon"`
	RadiusM      float64 `toml:"radius_m"`
}

type RoutingConfig struct {
	StrictEdges      bool    `toml:"strict_edges"`
	MaxSnapDistanceM float64 `toml:"max_snap_distance_m"`
	Engine           string  `toml:"engine"`
}

type KVConfig struct {
	Backend string `toml:"backend"`
	Path    string `toml:"path"`
}

type CacheConfig struct {
	Size int `toml:"size"`
}

type Config struct {
	Server  ServerConfig     `toml:"server"`
	Graph   GraphConfig      `toml:"graph"`
	Routing RoutingConfig    `toml:"routing"`
	KV      KVConfig         `toml:"kv"`
	Cache   CacheConfig      `toml:"cache"`
	Logging logger.LogConfig `toml:"logging"`
}

func Default() Config {
	return Config{
		Server: ServerConfig{
			ListenAddr:     ":5000",
			RequestTimeout: Duration{10 * time.Second},
		},
		Graph: GraphConfig{
			PbfFile:   "oaxaca.osm.pbf",
			CenterLat: DefaultCenterLat,
			CenterLon: DefaultCenterLon,
			RadiusM:   DefaultRadiusM,
		},
		Routing: RoutingConfig{
			MaxSnapDistanceM: 2000,
			Engine:           EngineHeap,
		},
		KV: KVConfig{
			Backend: kv.BackendBadger,
			Path:    "./rutavial_db",
		},
		Cache: CacheConfig{
			Size: 4,
		},
	}
}

// LoadConfig reads filename over the defaults, keys missing from the file keep their default value.
// an empty filename returns the defaults.
func LoadConfig(filename string) (Config, error) {
	c := Default()
	if filename == "" {
		return c, nil
	}
	md, err := toml.DecodeFile(filename, &c)
	if err != nil {
		return Config{}, fmt.Errorf("could not decode TOML config %s: %w", filename, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return Config{}, fmt.Errorf("%w: unknown keys %v in %s", ErrInvalidConfig, undecoded, filename)
	}
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

func (c Config) Validate() error {
	if c.Graph.CenterLat < -90 || c.Graph.CenterLat > 90 || c.Graph.CenterLon < -180 || c.Graph.CenterLon > 180 {
		return fmt.Errorf("%w: center (%v, %v) is not a coordinate", ErrInvalidConfig, c.Graph.CenterLat, c.Graph.CenterLon)
	}
	if c.Graph.RadiusM <= 0 {
		return fmt.Errorf("%w: radius_m must be positive, got %v", ErrInvalidConfig, c.Graph.RadiusM)
	}
	if c.Routing.Engine != EngineHeap && c.Routing.Engine != EngineNaive {
		return fmt.Errorf("%w: engine must be %q or %q, got %q", ErrInvalidConfig, EngineHeap, EngineNaive, c.Routing.Engine)
	}
	if c.KV.Backend != kv.BackendBadger && c.KV.Backend != kv.BackendPebble {
		return fmt.Errorf("%w: kv backend %q", ErrInvalidConfig, c.KV.Backend)
	}
	if c.Server.RequestTimeout.Duration < 0 {
		return fmt.Errorf("%w: negative request_timeout", ErrInvalidConfig)
	}
	return nil
}

func (c Config) Region() geo.Region {
	return geo.NewRegion(c.Graph.CenterLat, c.Graph.CenterLon, c.Graph.RadiusM)
}
