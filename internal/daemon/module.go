// Package daemon wires the wppview daemon with fx: store, view pipeline,
// gRPC server and the optional WhatsApp ingest.
package daemon

import (
	"context"
	"time"

	"github.com/matheus3301/wppview/internal/api"
	"github.com/matheus3301/wppview/internal/config"
	"github.com/matheus3301/wppview/internal/lock"
	"github.com/matheus3301/wppview/internal/logging"
	"github.com/matheus3301/wppview/internal/session"
	"github.com/matheus3301/wppview/internal/store"
	intsync "github.com/matheus3301/wppview/internal/sync"
	"github.com/matheus3301/wppview/internal/view"
	"github.com/matheus3301/wppview/internal/wa"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Params holds the resolved session configuration passed to the fx module.
type Params struct {
	SessionName string
	BaseDir     string // empty = session.BaseDir()
	SocketPath  string // empty = the session's default socket
	Offline     bool   // serve stored records only, no WhatsApp connection
}

// Module returns the fx module for the daemon, composing all providers and lifecycle hooks.
func Module(p Params) fx.Option {
	return fx.Module("daemon",
		fx.Supply(p),
		fx.Provide(
			providePaths,
			provideConfig,
			provideLogger,
			provideLock,
			provideStore,
			provideClock,
			provideViews,
			provideViewService,
			provideEngine,
			provideAdapter,
			NewServer,
		),
		fx.Invoke(registerLifecycle),
	)
}

func providePaths(p Params) session.Paths {
	if p.BaseDir == "" {
		return session.For(p.SessionName)
	}
	return session.In(p.BaseDir, p.SessionName)
}

func provideConfig(p Params) (*config.Config, error) {
	path := session.ConfigPath()
	if p.BaseDir != "" {
		path = session.ConfigPathIn(p.BaseDir)
	}
	return config.LoadOrDefault(path)
}

func provideLogger(paths session.Paths) (*zap.Logger, error) {
	if err := paths.Ensure(); err != nil {
		return nil, err
	}
	return logging.New(paths.Log(), paths.Name)
}

func provideLock(paths session.Paths, logger *zap.Logger) (*lock.Lock, error) {
	l, err := lock.Acquire(paths.Lock())
	if err != nil {
		return nil, err
	}
	logger.Info("session lock acquired", zap.String("path", l.Path()))
	return l, nil
}

// provideStore depends on the lock so a second daemon never opens the store.
func provideStore(paths session.Paths, _ *lock.Lock, logger *zap.Logger) (*store.DB, error) {
	db, err := store.Open(paths.Store())
	if err != nil {
		return nil, err
	}
	result, err := db.Migrate()
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	if result.Changed {
		logger.Info("migrations applied", zap.Uint("version", result.Version))
	} else {
		logger.Info("migrations up to date", zap.Uint("version", result.Version))
	}
	logger.Info("store initialized", zap.String("path", db.Path()))
	return db, nil
}

func provideClock() view.Clock {
	return time.Now
}

func provideViews(db *store.DB, clock view.Clock, cfg *config.Config, logger *zap.Logger) *view.Service {
	return view.NewService(db, clock, view.Options{
		Placeholder: cfg.Placeholder,
		Labels:      cfg.Labels(),
		Marker:      cfg.Marker(),
		Location:    time.Local,
		PageSize:    cfg.PageSize,
	}, logger.Named("view"))
}

func provideViewService(views *view.Service, db *store.DB, logger *zap.Logger) *api.ViewService {
	return api.NewViewService(views, db, logger.Named("api"))
}

func provideEngine(db *store.DB, logger *zap.Logger) *intsync.Engine {
	return intsync.NewEngine(db, intsync.DefaultQueueSize, logger.Named("ingest"))
}

// provideAdapter returns a nil adapter in offline mode.
func provideAdapter(p Params, paths session.Paths, logger *zap.Logger) (*wa.Adapter, error) {
	if p.Offline {
		return nil, nil
	}
	return wa.NewAdapter(context.Background(), paths.Device(), logger.Named("wa"))
}

func registerLifecycle(lc fx.Lifecycle, srv *Server, lk *lock.Lock, db *store.DB, engine *intsync.Engine, adapter *wa.Adapter, logger *zap.Logger) {
	lc.Append(fx.Hook{
		OnStart: func(_ context.Context) error {
			engine.Start(context.Background())

			go func() {
				if err := srv.Start(); err != nil {
					logger.Error("gRPC server error", zap.Error(err))
				}
			}()

			if adapter == nil {
				logger.Info("offline mode, serving stored records only")
				return nil
			}
			adapter.Subscribe(wa.NewEventHandler(engine, logger.Named("wa")))
			if !adapter.IsPaired() {
				logger.Warn("whatsapp device not paired, serving stored records only")
				return nil
			}
			go func() {
				if err := adapter.Connect(); err != nil {
					logger.Error("whatsapp connect failed", zap.Error(err))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			if adapter != nil {
				adapter.Disconnect()
			}
			engine.Stop()
			st := engine.Stats()
			logger.Info("ingest stopped",
				zap.Int64("records", st.Records),
				zap.Int64("failed", st.Failed))
			srv.Stop(ctx)
			if err := db.Close(); err != nil {
				logger.Warn("error closing store", zap.Error(err))
			}
			if err := lk.Release(); err != nil {
				logger.Warn("error releasing lock", zap.Error(err))
			}
			logger.Info("daemon stopped")
			_ = logger.Sync()
			return nil
		},
	})
}
