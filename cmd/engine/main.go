package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/lintang-b-s/rutavial/pkg/config"
	"github.com/lintang-b-s/rutavial/pkg/datastructure"
	"github.com/lintang-b-s/rutavial/pkg/kv"
	"github.com/lintang-b-s/rutavial/pkg/logger"
	"github.com/lintang-b-s/rutavial/pkg/server/rest"
	"github.com/lintang-b-s/rutavial/pkg/server/rest/service"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

var (
	configFile   = flag.String("config", "", "toml configuration file")
	listenAddr   = flag.String("listenaddr", "", "server listen address")
	mapFile      = flag.String("f", "", "openstreetmap pbf file of the road network")
	snapshotFile = flag.String("snapshot", "", "road graph snapshot written by the preprocessing command")
	engine       = flag.String("engine", "", "path search engine: heap or naive")
	strictEdges  = flag.Bool("strict", false, "fail routes that go through a node pair without edge data")
)

func main() {
	flag.Parse()

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

	store, err := kv.NewStore(cfg.KV.Backend, cfg.KV.Path)
	if err != nil {
		lg.Fatal("open kv store", zap.Error(err))
	}
	kvDB := kv.NewKVDB(store, lg)
	defer kvDB.Close()

	loader := service.NewGraphLoader(kvDB, service.PbfParser(cfg.Graph.PbfFile, lg), lg)
	navigatorSvc, err := service.NewRouteService(cfg.Region(), loader,
		service.WithCacheSize(cfg.Cache.Size),
		service.WithRequestTimeout(cfg.Server.RequestTimeout.Duration),
		service.WithMaxSnapDistance(cfg.Routing.MaxSnapDistanceM),
		service.WithStrictEdges(cfg.Routing.StrictEdges),
		service.WithNaiveEngine(cfg.Routing.Engine == config.EngineNaive),
		service.WithLogger(lg),
	)
	if err != nil {
		lg.Fatal("create route service", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.Graph.SnapshotFile != "" {
		g, err := datastructure.ReadGraphFile(cfg.Graph.SnapshotFile)
		if err != nil {
			lg.Fatal("read road graph snapshot", zap.String("file", cfg.Graph.SnapshotFile), zap.Error(err))
		}
		navigatorSvc.UseGraph(g)
	}
	if err := navigatorSvc.Preload(ctx); err != nil {
		lg.Fatal("load road graph", zap.String("region", cfg.Region().String()), zap.Error(err))
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := rest.NewMetrics(reg)

	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(rest.PromeHttpMiddleware(m)) // prometheus http middleware
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"https://*", "http://*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))

	rest.NavigatorRouter(r, navigatorSvc, m, lg)

	srv := &http.Server{
		Addr:              cfg.Server.ListenAddr,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		lg.Info("server started", zap.String("addr", cfg.Server.ListenAddr), zap.String("region", cfg.Region().String()))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			lg.Fatal("listen", zap.Error(err))
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		lg.Error("server shutdown", zap.Error(err))
	}
}

// overrideConfig applies the flags set on the command line over the file values.
func overrideConfig(cfg *config.Config) {
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "listenaddr":
			cfg.Server.ListenAddr = *listenAddr
		case "f":
			cfg.Graph.PbfFile = *mapFile
		case "snapshot":
			cfg.Graph.SnapshotFile = *snapshotFile
		case "engine":
			cfg.Routing.Engine = *engine
		case "strict":
			cfg.Routing.StrictEdges = *strictEdges
		}
	})
}
