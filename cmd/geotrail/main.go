package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/net/netutil"

	"geotrail/internal/api"
	"geotrail/pkg/bearing"
	"geotrail/pkg/config"
	"geotrail/pkg/core"
	"geotrail/pkg/db"
	"geotrail/pkg/db/maintenance"
	"geotrail/pkg/geo"
	"geotrail/pkg/geofence"
	"geotrail/pkg/logging"
	"geotrail/pkg/playback"
	"geotrail/pkg/probe"
	"geotrail/pkg/store"
	"geotrail/pkg/tracker"
	"geotrail/pkg/version"
)

const (
	defaultConfigPath = "configs/geotrail.yaml"
	fenceReloadEvery  = 10 * time.Second
	journalPruneEvery = time.Hour
)

var (
	configPath = flag.String("config", defaultConfigPath, "Path to the config file")
	initConfig = flag.Bool("init-config", false, "Generate default config file and exit")
)

func main() {
	flag.Parse()

	if *initConfig {
		if err := config.GenerateDefault(*configPath); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to generate config: %v\n", err)
			os.Exit(1)
		}
		fmt.Println("Config file generated:", *configPath)
		return
	}

	if err := run(context.Background(), *configPath); err != nil {
		fmt.Fprintf(os.Stderr, "CRITICAL ERROR: Application failed: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, configPath string) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	appCfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	cleanupLogs, err := logging.Init(&appCfg.Log)
	if err != nil {
		return fmt.Errorf("failed to initialize logging: %w", err)
	}
	defer cleanupLogs()

	slog.Info("geotrail started", "version", version.Version, "config", configPath)

	dbConn, st, err := initDB(appCfg)
	if err != nil {
		return err
	}
	defer st.Close()

	prov := config.NewProvider(appCfg, st)

	mon := newMonitor(st)
	if err := loadFences(mon, appCfg.Geofence.Fences); err != nil {
		return err
	}

	if err := maintenance.Run(ctx, st, dbConn, mon, appCfg.Geofence.ImportPath, appCfg.DB.Retention.Std()); err != nil {
		slog.Error("Maintenance tasks failed", "error", err)
	}

	results := probe.Run(ctx, []probe.Probe{
		{Name: "Database", Check: probe.Database(dbConn.DB), Critical: true},
		{Name: "Fence import file", Check: probe.FileReadable(appCfg.Geofence.ImportPath)},
	})
	if err := probe.AnalyzeResults(results); err != nil {
		return fmt.Errorf("startup checks failed: %w", err)
	}

	sched := core.NewScheduler(core.DefaultInterval)
	sched.AddJob(core.NewFenceReloadJob(appCfg.Geofence.ImportPath, fenceReloadEvery, st, mon))
	sched.AddJob(core.NewJournalPruneJob(dbConn, appCfg.DB.Retention.Std(), journalPruneEvery))
	go sched.Start(ctx)

	headings := bearing.NewRegistry(headingFilter(ctx, prov))
	tr := tracker.New(headings, mon, appCfg.Bearing.TrackWindow)

	hub := playback.NewHub()
	mgr := playback.NewManager(ctx, playback.Sinks{hub, completionJournal{}})
	defer mgr.StopAll()

	return runServer(ctx, appCfg, prov, mgr, hub, tr, headings, mon, st)
}

func initDB(appCfg *config.Config) (*db.DB, store.Store, error) {
	dbConn, err := db.Init(appCfg.DB.Path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	return dbConn, store.NewSQLiteStore(dbConn), nil
}

// newMonitor builds the geofence monitor. Transitions are journaled to the
// store and to the events log.
func newMonitor(st store.Store) *geofence.Monitor {
	return geofence.NewMonitor(geofence.EventSinkFunc(func(ev geofence.Event) {
		st.OnGeofenceTransition(ev)
		logging.LogEvent(geofenceLogEvent(ev))
	}))
}

// loadFences registers the fences declared in the config file.
func loadFences(mon *geofence.Monitor, fences []config.FenceConfig) error {
	for _, fc := range fences {
		g, err := mon.Add(geofence.Geofence{
			ID:           fc.ID,
			Name:         fc.Name,
			Center:       geo.Point{Lat: fc.Lat, Lon: fc.Lon},
			RadiusMeters: fc.Radius.Meters(),
		})
		if err != nil {
			return fmt.Errorf("geofence %q: %w", fc.Name, err)
		}
		slog.Info("Geofence loaded", "id", g.ID, "name", g.Name, "radius", geo.FormatDistance(g.RadiusMeters))
	}
	return nil
}

// headingFilter builds the live heading filter from the current tuning.
func headingFilter(ctx context.Context, prov config.Provider) bearing.Stabilizer {
	return bearing.New(
		bearing.WithDeadband(prov.DeadbandDegrees(ctx)),
		bearing.WithMaxStep(prov.MaxStepDegrees(ctx)),
	)
}

func runServer(ctx context.Context, cfg *config.Config, prov config.Provider, mgr *playback.Manager, hub *playback.Hub, tr *tracker.Tracker, headings *bearing.Registry, mon *geofence.Monitor, st store.Store) error {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(quit)
	shutdownFunc := func() { quit <- syscall.SIGTERM }

	configH := api.NewConfigHandler(prov, func(c context.Context) {
		headings.SetFilter(headingFilter(c, prov))
	})

	srv := api.NewServer(cfg.Server.Address,
		api.NewSessionHandler(mgr, hub, prov, cfg.Server.StreamBuffer),
		api.NewGeographyHandler(),
		api.NewEntityHandler(tr),
		api.NewGeofenceHandler(mon, st),
		api.NewRouteHandler(prov, st),
		configH,
		shutdownFunc,
	)
	srv.Handler = api.RequestLogging(srv.Handler)

	ln, err := net.Listen("tcp", srv.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", srv.Addr, err)
	}
	if cfg.Server.MaxConnections > 0 {
		ln = netutil.LimitListener(ln, cfg.Server.MaxConnections)
	}

	return runServerLifecycle(ctx, srv, ln, quit, cfg.Server.ShutdownTimeout.Std())
}

func runServerLifecycle(ctx context.Context, srv *http.Server, ln net.Listener, quit chan os.Signal, shutdownTimeout time.Duration) error {
	slog.Info("Starting server", "addr", ln.Addr().String())
	serverErrors := make(chan error, 1)
	go func() {
		if err := srv.Serve(ln); err != nil && err != http.ErrServerClosed {
			serverErrors <- err
		}
	}()

	select {
	case <-quit:
		slog.Info("Shutting down server...")
	case <-ctx.Done():
		slog.Info("Context cancelled, shutting down...")
	case err := <-serverErrors:
		return fmt.Errorf("server failed: %w", err)
	}

	if shutdownTimeout <= 0 {
		shutdownTimeout = 5 * time.Second
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
