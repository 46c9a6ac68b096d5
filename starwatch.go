// Package starwatch is the public API for embedding the game log monitor.
//
// Consumers construct an App, register handlers for the activity feed, and
// run it until the context is cancelled:
//
//	app, err := starwatch.New(
//	    starwatch.WithLogger(logger),
//	    starwatch.WithLogPath(path),
//	    starwatch.WithFeedHandler(printEntry),
//	)
//	if err != nil { ... }
//	if err := app.Run(ctx); err != nil { ... }
//
// The import graph enforces a strict no-cycle rule: starwatch (root) imports
// internal/*, but internal/* never imports starwatch (root).
package starwatch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"github.com/starwatch-app/starwatch/internal/bus"
	"github.com/starwatch-app/starwatch/internal/config"
	"github.com/starwatch-app/starwatch/internal/contracts"
	"github.com/starwatch-app/starwatch/internal/extract"
	"github.com/starwatch-app/starwatch/internal/feed"
	"github.com/starwatch-app/starwatch/internal/model"
	"github.com/starwatch-app/starwatch/internal/monitor"
	"github.com/starwatch-app/starwatch/internal/settings"
	"github.com/starwatch-app/starwatch/internal/stats"
	"github.com/starwatch-app/starwatch/internal/storage"
	"github.com/starwatch-app/starwatch/internal/telemetry"
)

// App wires the full ingestion pipeline: settings, extraction, the tailing
// monitor, and the state-tracking subscribers. Construct with New(), run
// with Run().
type App struct {
	cfg          config.Config
	logger       *slog.Logger
	version      string
	settings     *settings.Provider
	bus          *bus.Bus
	extractor    *extract.Extractor
	monitor      *monitor.Monitor
	tracker      *contracts.Tracker
	session      *stats.Session
	db           *storage.DB // nil when the archive is disabled
	otelShutdown telemetry.Shutdown
	startedAt    time.Time
}

// archiverAdapter bridges the tracker's Archiver interface onto storage.
type archiverAdapter struct {
	db *storage.DB
}

func (a archiverAdapter) ArchiveMission(m *model.Mission) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return a.db.ArchiveMission(ctx, m)
}

// New initialises the monitor. It loads configuration and settings, opens the
// archive database, and wires all subscribers onto the bus. It does NOT start
// tailing; call Run().
func New(opts ...Option) (*App, error) {
	o := resolvedOptions{}
	for _, fn := range opts {
		fn(&o)
	}

	logger := o.logger
	if logger == nil {
		logger = slog.Default()
	}

	// Load .env file if present (non-fatal).
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if o.dataDir != "" {
		cfg.DataDir = o.dataDir
	}
	if o.logPath != "" {
		cfg.LogPath = o.logPath
	}
	if o.databasePath != "" {
		cfg.DatabasePath = o.databasePath
	}
	if o.disableArchive {
		cfg.DatabasePath = ""
	}
	version := o.version
	if version == "" {
		version = "dev"
	}

	logger.Info("starwatch starting", "version", version, "data_dir", cfg.DataDir)

	otelShutdown, err := telemetry.Init(context.Background(), cfg.OTELEndpoint, cfg.ServiceName, version, true)
	if err != nil {
		return nil, fmt.Errorf("telemetry: %w", err)
	}

	prov, err := settings.New(logger, cfg.DataDir)
	if err != nil {
		_ = otelShutdown(context.Background())
		return nil, fmt.Errorf("settings: %w", err)
	}

	// Precedence for ingestion switches: explicit option, then environment,
	// then what settings.json remembers.
	if cfg.LogPath == "" {
		cfg.LogPath = prov.LogPath()
	} else {
		prov.SetLogPath(cfg.LogPath)
	}
	if o.readFromBeginning != nil {
		prov.SetReadFromBeginning(*o.readFromBeginning)
		cfg.ReadFromBeginning = *o.readFromBeginning
	} else {
		cfg.ReadFromBeginning = prov.ReadFromBeginning()
	}
	if o.showReplayedLogs != nil {
		prov.SetShowReplayedLogs(*o.showReplayedLogs)
	}

	b := bus.New(logger)
	extractor := extract.New(logger, prov)
	extractor.SetRules(prov.CustomRules())
	prov.OnRulesChanged(extractor.SetRules)

	mon := monitor.New(logger, b, extractor, prov)

	var db *storage.DB
	trackerOpts := []contracts.Option{}
	if cfg.DatabasePath != "" {
		db, err = storage.Open(context.Background(), logger, cfg.DatabasePath)
		if err != nil {
			_ = otelShutdown(context.Background())
			return nil, fmt.Errorf("storage: %w", err)
		}
		trackerOpts = append(trackerOpts, contracts.WithArchiver(archiverAdapter{db: db}))
	} else {
		logger.Info("session archive: disabled")
	}

	tracker := contracts.New(logger, trackerOpts...)
	session := stats.New(logger)

	b.Subscribe(tracker.HandleEvent)
	b.Subscribe(session.HandleEvent)
	for _, fn := range o.feedHandlers {
		fn := fn
		b.Subscribe(func(ev model.Event) {
			if entry, ok := feed.Map(ev); ok {
				fn(entry)
			}
		})
	}
	for _, fn := range o.rawLineHandlers {
		mon.OnRawLine(fn)
	}

	return &App{
		cfg:          cfg,
		logger:       logger,
		version:      version,
		settings:     prov,
		bus:          b,
		extractor:    extractor,
		monitor:      mon,
		tracker:      tracker,
		session:      session,
		db:           db,
		otelShutdown: otelShutdown,
	}, nil
}

// Run starts tailing the configured log file and blocks until ctx is
// cancelled. On the way out it stops ingestion, archives a session summary,
// persists settings, and releases all resources.
func (a *App) Run(ctx context.Context) error {
	if a.cfg.LogPath == "" {
		return errors.New("starwatch: no log path configured (set STARWATCH_LOG_PATH or use WithLogPath)")
	}

	a.startedAt = time.Now().UTC()
	if err := a.monitor.Start(a.cfg.LogPath, a.cfg.ReadFromBeginning); err != nil {
		return err
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		// The rule watcher runs for the whole session; cancellation is the
		// normal way out.
		if err := a.settings.Watch(gctx); err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		a.monitor.Stop()
		return nil
	})

	err := g.Wait()
	a.shutdown()

	if ferr := a.monitor.Err(); ferr != nil {
		return ferr
	}
	return err
}

// shutdown archives the session and releases resources. Safe to call once
// after Run returns.
func (a *App) shutdown() {
	if a.db != nil {
		snap := a.session.Current()
		_, completed, failed := a.tracker.Counters()
		startedAt := snap.StartedAt
		if startedAt.IsZero() {
			startedAt = a.startedAt
		}
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if _, err := a.db.SaveSessionSummary(ctx, storage.SessionSummary{
			StartedAt:      startedAt,
			EndedAt:        time.Now().UTC(),
			PilotHandle:    snap.PilotHandle,
			Build:          snap.Build,
			Shard:          snap.Shard,
			Kills:          snap.Kills,
			Deaths:         snap.Deaths,
			Completed:      completed,
			Failed:         failed,
			LinesProcessed: a.monitor.ProcessedLines(),
		}); err != nil {
			a.logger.Warn("session summary save failed", "error", err)
		}
		cancel()
	}

	if err := a.settings.Save(); err != nil {
		a.logger.Warn("settings save failed", "error", err)
	}
	a.Close()
}

// Close releases the archive database and telemetry without running the
// session-summary path. Use it when the App was constructed but never Run.
func (a *App) Close() {
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			a.logger.Warn("archive close failed", "error", err)
		}
		a.db = nil
	}
	if a.otelShutdown != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := a.otelShutdown(ctx); err != nil {
			a.logger.Warn("telemetry shutdown failed", "error", err)
		}
		cancel()
		a.otelShutdown = nil
	}
}

// ProcessLine runs one log line through the pipeline synchronously,
// regardless of whether ingestion is running.
func (a *App) ProcessLine(line string) {
	a.monitor.ProcessSingleLine(line)
}

// Contracts exposes the mission state machine.
func (a *App) Contracts() *contracts.Tracker { return a.tracker }

// Stats returns the current session snapshot.
func (a *App) Stats() stats.Snapshot { return a.session.Current() }

// Monitor exposes ingestion state (progress, processed lines, fault).
func (a *App) Monitor() *monitor.Monitor { return a.monitor }

// Settings exposes the persisted preferences and custom rules.
func (a *App) Settings() *settings.Provider { return a.settings }

// Store returns the session archive, or nil when disabled.
func (a *App) Store() *storage.DB { return a.db }
