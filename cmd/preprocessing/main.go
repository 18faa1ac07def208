package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"runtime/pprof"
	"syscall"

	"github.com/dustin/go-humanize"
	"github.com/lintang-b-s/rutavial/pkg/config"
	"github.com/lintang-b-s/rutavial/pkg/costfunction"
	"github.com/lintang-b-s/rutavial/pkg/datastructure"
	"github.com/lintang-b-s/rutavial/pkg/kv"
	"github.com/lintang-b-s/rutavial/pkg/logger"
	"github.com/lintang-b-s/rutavial/pkg/osmparser"
	"go.uber.org/zap"
)

var (
	configFile   = flag.String("config", "", "toml configuration file")
	mapFile      = flag.String("f", "", "openstreetmap pbf file of the road network")
	snapshotFile = flag.String("snapshot", "", "output road graph snapshot file")
	centerLat    = flag.Float64("lat", 0, "latitude of the region center")
	centerLon    = flag.Float64("lon", 0, "longitude of the region center")
	radius       = flag.Float64("radius", 0, "region radius in meters")
	cpuprofile   = flag.String("cpuprofile", "", "write cpu profile to file")
)

func main() {
	flag.Parse()
	if *cpuprofile != "" {
		f, err := os.Create(*cpuprofile)
		if err != nil {
			log.Fatal(err)
		}
		defer f.Close()

		pprof.StartCPUProfile(f)
		defer pprof.StopCPUProfile()
	}

	cfg, err := config.LoadConfig(*configFile)
	if err != nil {
		log.Fatal(err)
	}
	overrideConfig(&cfg)
	if err := cfg.Validate(); err != nil {
		log.Fatal(err)
	}

	lg, err := logger.New(cfg.Logging)
	if err != nil {
		log.Fatal(err)
	}
	defer lg.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, lg); err != nil {
		stop()
		lg.Fatal("preprocessing failed", zap.Error(err))
	}
}

func run(ctx context.Context, cfg config.Config, lg *zap.Logger) error {
	region := cfg.Region()
	lg.Info("reading osm file", zap.String("file", cfg.Graph.PbfFile), zap.String("region", region.String()))

	g, err := osmparser.NewOSMParser(region, lg).Parse(ctx, cfg.Graph.PbfFile)
	if err != nil {
		return err
	}
	costfunction.Annotate(g, costfunction.NewTimeCostFunction())

	scc := g.StronglyConnectedComponents()
	_, largest := scc.Largest()
	lg.Info("road graph annotated",
		zap.Int("nodes", g.NumNodes()),
		zap.Int("edges", g.NumEdges()),
		zap.Int("scc", scc.Count()),
		zap.Int32("largest_scc", largest))

	if cfg.Graph.SnapshotFile != "" {
		if err := datastructure.WriteGraphFile(g, cfg.Graph.SnapshotFile); err != nil {
			return err
		}
		if fi, err := os.Stat(cfg.Graph.SnapshotFile); err == nil {
			lg.Info("road graph snapshot written", zap.String("file", cfg.Graph.SnapshotFile),
				zap.String("size", humanize.Bytes(uint64(fi.Size()))))
		}
	}

	store, err := kv.NewStore(cfg.KV.Backend, cfg.KV.Path)
	if err != nil {
		return err
	}
	kvDB := kv.NewKVDB(store, lg)
	defer kvDB.Close()

	return kvDB.SaveRoadGraph(ctx, region.Key(), g)
}

func overrideConfig(cfg *config.Config) {
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "f":
			cfg.Graph.PbfFile = *mapFile
		case "snapshot":
			cfg.Graph.SnapshotFile = *snapshotFile
		case "lat":
			cfg.Graph.CenterLat = *centerLat
		case "lon":
			cfg.Graph.CenterLon = *centerLon
		case "radius":
			cfg.Graph.RadiusM = *radius
		}
	})
}
