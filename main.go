package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/you/metroroute/handlers"
	"github.com/you/metroroute/internal/config"
	"github.com/you/metroroute/internal/network"
	"github.com/you/metroroute/repository"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lmicroseconds)

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	src, closeSource, err := openSource(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to open network source: %v", err)
	}
	defer closeSource()

	store := network.NewStore(nil)
	if _, err := network.Reload(ctx, store, src); err != nil {
		if !reloadsInBackground(cfg) {
			log.Fatalf("Failed to load network: %v", err)
		}
		// the watcher or poll loop installs a network once the source is fixed
		log.Printf("Warning: starting without a network: %v", err)
	}

	if watchesLines(cfg) {
		go func() {
			if err := network.Watch(ctx, store, src, cfg.LinesDir, network.DefaultDebounce); err != nil {
				log.Printf("Warning: line watcher stopped: %v", err)
			}
		}()
	}

	if cfg.ReloadInterval > 0 {
		go network.Poll(ctx, store, src, cfg.ReloadInterval)
	}

	routeHandler := handlers.NewRouteHandler(store)
	healthHandler := handlers.NewHealthHandler(store)

	// Setup router
	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(cfg.RequestTimeout))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
	}))

	// Health check endpoint with network snapshot stats
	r.Get("/health", healthHandler.GetHealth)

	// Legacy health check endpoint
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	// Route API
	r.Get("/api/v1/route", routeHandler.GetRoute)
	r.Get("/api/v1/stations", routeHandler.GetStations)
	r.Get("/api/v1/lines", routeHandler.GetLines)

	// Static file serving (if configured)
	if cfg.StaticDir != "" {
		fs := http.FileServer(http.Dir(cfg.StaticDir))
		r.Handle("/*", fs)
	}

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Printf("API server starting on %s (network source: %s)", server.Addr, src.Name())
		log.Println("Route endpoints:")
		log.Println("  GET /api/v1/route?start=&end=&strategy=stations|lines")
		log.Println("  GET /api/v1/stations")
		log.Println("  GET /api/v1/lines")
		log.Println("Health:")
		log.Println("  GET /health (with network stats)")

		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	// Graceful shutdown
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig

	log.Println("Shutting down...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("Warning: server shutdown: %v", err)
	}
	log.Println("Goodbye!")
}

// watchesLines reports whether the line directory is watched for changes
func watchesLines(cfg *config.Config) bool {
	return cfg.WatchLines && cfg.NetworkSource == config.SourceFiles
}

// reloadsInBackground reports whether a network can still arrive after a
// failed first load.
func reloadsInBackground(cfg *config.Config) bool {
	return watchesLines(cfg) || cfg.ReloadInterval > 0
}

// openSource returns the network source selected by cfg and a function that
// releases it.
func openSource(ctx context.Context, cfg *config.Config) (network.Source, func(), error) {
	switch cfg.NetworkSource {
	case config.SourceGTFS:
		return network.GTFSSource{ZipPath: cfg.GTFSZip}, func() {}, nil

	case config.SourceSQLite:
		log.Printf("Connecting to SQLite database: %s", cfg.SQLiteDatabase)
		sqliteDB, err := repository.NewSQLiteDB(cfg.SQLiteDatabase)
		if err != nil {
			return nil, nil, err
		}
		repo := repository.NewSQLiteNetworkRepository(sqliteDB.GetDB(), cfg.SQLiteDatabase)
		return repo, func() { sqliteDB.Close() }, nil

	case config.SourcePostgres:
		repo, err := repository.NewPostgresNetworkRepository(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		return repo, repo.Close, nil

	default:
		return network.FileSource{
			StationsFile: cfg.StationsFile,
			LinesDir:     cfg.LinesDir,
			Workers:      cfg.LoaderWorkers,
		}, func() {}, nil
	}
}
