package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/pprof"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	_ "github.com/mattn/go-sqlite3" // sqlite driver
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/wkalt/msgdef/catalog"
	"github.com/wkalt/msgdef/defstore"
	"github.com/wkalt/msgdef/registry"
	"github.com/wkalt/msgdef/routes"
	"github.com/wkalt/msgdef/storage"
	"github.com/wkalt/msgdef/util/log"
)

/*
This file is the main entrypoint for msgdef server startup.
*/

////////////////////////////////////////////////////////////////////////////////

type Msgdef struct{}

// NewMsgdefService creates a new msgdef service.
func NewMsgdefService() *Msgdef {
	return &Msgdef{}
}

// Start starts the msgdef service. It returns when ctx is canceled or the
// process receives SIGINT or SIGTERM, after giving open connections time to
// close.
func (m *Msgdef) Start(ctx context.Context, options ...MsgdefOption) error { //nolint:funlen
	opts, err := readOpts(options...)
	if err != nil {
		return fmt.Errorf("failed to read options: %w", err)
	}
	if err := log.Setup(os.Stderr, opts.LogLevel, opts.LogFormat); err != nil {
		return fmt.Errorf("failed to configure logging: %w", err)
	}
	log.Debugf(ctx, "Debug logging enabled")

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	reg, err := loadRegistry(ctx, opts)
	if err != nil {
		return err
	}

	dbpath := opts.DatabasePath + "?_journal=WAL&mode=rwc"
	log.Infof(ctx, "Opening database at %s", dbpath)
	db, err := sql.Open("sqlite3", dbpath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()
	if err = db.Ping(); err != nil {
		return fmt.Errorf("failed to ping database at %s: %w", dbpath, err)
	}
	cat, err := catalog.NewSQLCatalog(db)
	if err != nil {
		return fmt.Errorf("failed to open catalog: %w", err)
	}

	defs, err := defstore.NewStore(opts.StorageProvider, "definitions", opts.CacheSize)
	if err != nil {
		return fmt.Errorf("failed to create definition store: %w", err)
	}

	metrics := prometheus.NewRegistry()
	metrics.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	log.Infof(ctx, "Building routes with allowed origins %+v", opts.AllowedOrigins)
	r := routes.MakeRoutes(reg, defs, cat, metrics, opts.AllowedOrigins)
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", opts.Port),
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}

	sigint := make(chan os.Signal, 1)
	sigterm := make(chan os.Signal, 1)
	signal.Notify(sigint, syscall.SIGINT)
	signal.Notify(sigterm, syscall.SIGTERM)
	defer signal.Stop(sigint)
	defer signal.Stop(sigterm)

	startErr := make(chan error, 1)
	go func() {
		log.Infow(ctx, "Starting server",
			"port", opts.Port, "cache", opts.CacheSize, "storage", opts.StorageProvider, "types", reg.Len())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			startErr <- err
		}
	}()

	if opts.PprofAddr != "" {
		go servePprof(ctx, opts.PprofAddr)
	}

	select {
	case <-sigint:
		log.Infof(ctx, "Received SIGINT")
	case <-sigterm:
		log.Infof(ctx, "Received SIGTERM")
	case <-ctx.Done():
		log.Infof(ctx, "Context canceled")
	case err := <-startErr:
		return fmt.Errorf("failed to start server: %w", err)
	}

	log.Infof(ctx, "Allowing %s for existing connections to close", opts.ShutdownTimeout)
	shutdownCtx, shutdownCancel := context.WithTimeout(context.WithoutCancel(ctx), opts.ShutdownTimeout)
	defer shutdownCancel()

	errs := make(chan error, 1)
	success := make(chan bool, 1)

	go func() {
		if err := srv.Shutdown(shutdownCtx); err != nil {
			errs <- err
		} else {
			log.Infof(ctx, "Server stopped")
			success <- true
		}
	}()

	select {
	case <-sigint:
		return errors.New("forceful shutdown on second interrupt")
	case err := <-errs:
		return fmt.Errorf("server shutdown failed: %w", err)
	case <-success:
		return nil
	}
}

// loadRegistry populates a registry from the configured message paths and
// package path, and starts watches if requested. Types that cannot be
// flattened are logged but do not prevent startup.
func loadRegistry(ctx context.Context, opts *MsgdefOptions) (*registry.Registry, error) {
	reg := registry.New()
	for _, path := range opts.MessagePaths {
		n, err := reg.LoadDirectory(ctx, path)
		if err != nil {
			return nil, fmt.Errorf("failed to load messages from %s: %w", path, err)
		}
		log.Infow(ctx, "Loaded message directory", "path", path, "types", n)
		if opts.Watch {
			if err := reg.Watch(ctx, path); err != nil {
				return nil, fmt.Errorf("failed to watch %s: %w", path, err)
			}
		}
	}
	if opts.PackagePath != "" {
		n, err := reg.LoadPackagePath(ctx, opts.PackagePath)
		if err != nil {
			return nil, fmt.Errorf("failed to load package path: %w", err)
		}
		log.Infow(ctx, "Loaded package path", "types", n)
	}
	if problems := reg.Check(ctx); len(problems) > 0 {
		log.Warnw(ctx, "Some types cannot be flattened", "count", len(problems))
	}
	return reg, nil
}

func servePprof(ctx context.Context, addr string) {
	r := mux.NewRouter()
	r.HandleFunc("/debug/pprof/profile", pprof.Profile)
	r.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
	r.HandleFunc("/debug/pprof/trace", pprof.Trace)
	r.PathPrefix("/debug/pprof/").HandlerFunc(pprof.Index)
	log.Infof(ctx, "Starting pprof server on %s", addr)
	srv := &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		<-ctx.Done()
		_ = srv.Close()
	}()
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Errorf(ctx, "failed to start pprof server: %s", err)
	}
}

func readOpts(opts ...MsgdefOption) (*MsgdefOptions, error) {
	options := MsgdefOptions{
		Port:            8089,
		LogLevel:        slog.LevelInfo,
		LogFormat:       "text",
		DatabasePath:    "msgdef.db",
		CacheSize:       1000,
		ShutdownTimeout: 10 * time.Second,
		AllowedOrigins: []string{
			"http://localhost:5174",
			"http://localhost:5173",
			"http://localhost:8080",
		},
	}
	for _, opt := range opts {
		opt(&options)
	}
	if options.StorageProvider == nil {
		store, err := storage.NewDirectoryStore("data")
		if err != nil {
			return nil, fmt.Errorf("failed to create default storage: %w", err)
		}
		options.StorageProvider = store
	}
	if options.CacheSize <= 0 {
		return nil, errors.New("cache size must be positive")
	}
	return &options, nil
}
