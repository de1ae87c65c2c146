package app

import (
	"context"
	"errors"
	"os"

	"go.uber.org/fx"
	"go.uber.org/zap"

	"parley/internal/bus"
	"parley/internal/chat"
	"parley/internal/config"
	"parley/internal/directory"
	"parley/internal/lock"
	"parley/internal/logging"
	"parley/internal/profile"
	"parley/internal/tui"
)

// Params holds the resolved profile configuration passed to the fx module.
type Params struct {
	ProfileName string
}

// Module returns the fx module for the client, composing all providers and
// lifecycle hooks.
func Module(p Params) fx.Option {
	return fx.Module("parley",
		fx.Supply(p),
		fx.Provide(
			provideLogger,
			provideConfig,
			provideBus,
			provideLock,
			provideDirectory,
			provideNotifier,
			provideScheduler,
			provideRepository,
			provideApp,
		),
		fx.Invoke(registerLifecycle),
	)
}

func provideLogger(p Params) (*zap.Logger, error) {
	return logging.New(profile.LogPath(p.ProfileName), p.ProfileName)
}

func provideConfig(logger *zap.Logger) (*config.Config, error) {
	path := profile.ConfigPath()
	cfg, err := config.Load(path)
	if err == nil {
		return cfg, nil
	}
	if !errors.Is(err, os.ErrNotExist) {
		return nil, err
	}
	cfg = config.Default()
	if saveErr := config.Save(path, cfg); saveErr != nil {
		logger.Warn("could not write default config", zap.Error(saveErr))
	}
	logger.Info("using default config", zap.String("path", path))
	return cfg, nil
}

func provideBus() *bus.Bus {
	return bus.New()
}

func provideLock(p Params, logger *zap.Logger) (*lock.Lock, error) {
	if err := profile.EnsureDir(p.ProfileName); err != nil {
		return nil, err
	}
	logger.Info("acquiring profile lock", zap.String("profile", p.ProfileName))
	l, err := lock.Acquire(profile.Dir(p.ProfileName))
	if err != nil {
		return nil, err
	}
	logger.Info("profile lock acquired")
	return l, nil
}

func provideDirectory(p Params, logger *zap.Logger) (*directory.Directory, *directory.DB, error) {
	dbPath := profile.DirectoryDBPath(p.ProfileName)
	db, err := directory.Open(dbPath)
	if err != nil {
		return nil, nil, err
	}
	result, err := db.Migrate()
	if err != nil {
		_ = db.Close()
		return nil, nil, err
	}
	if result.Changed {
		logger.Info("migrations applied", zap.Uint("version", result.Version))
	} else {
		logger.Info("migrations up to date", zap.Uint("version", result.Version))
	}
	dir, err := directory.Load(db)
	if err != nil {
		_ = db.Close()
		return nil, nil, err
	}
	logger.Info("directory loaded",
		zap.String("path", dbPath),
		zap.Int("contacts", len(dir.Contacts())))
	return dir, db, nil
}

func provideNotifier(cfg *config.Config, logger *zap.Logger) *tui.Notifier {
	return tui.NewNotifier(cfg.BubblesEnabled, logger)
}

func provideScheduler(dir *directory.Directory, cfg *config.Config, logger *zap.Logger) *chat.Scheduler {
	return chat.NewScheduler(dir, cfg.ReplyDelay(), cfg.Workers, cfg.QueueDepth, logger)
}

func provideRepository(dir *directory.Directory, sched *chat.Scheduler, notifier *tui.Notifier, b *bus.Bus, logger *zap.Logger) *chat.Repository {
	return chat.NewRepository(dir, sched, notifier, b, logger)
}

func provideApp(p Params, repo *chat.Repository, notifier *tui.Notifier, b *bus.Bus, logger *zap.Logger) *tui.App {
	return tui.NewApp(repo, notifier, b, logger, p.ProfileName)
}

func registerLifecycle(lc fx.Lifecycle, sched *chat.Scheduler, repo *chat.Repository, db *directory.DB, lk *lock.Lock, logger *zap.Logger) {
	lc.Append(fx.Hook{
		OnStart: func(_ context.Context) error {
			sched.Start(context.Background())
			logger.Info("reply scheduler started")
			return nil
		},
		OnStop: func(_ context.Context) error {
			repo.Close()
			if err := db.Close(); err != nil {
				logger.Warn("error closing directory db", zap.Error(err))
			}
			if err := lk.Release(); err != nil {
				logger.Warn("error releasing lock", zap.Error(err))
			}
			logger.Info("stopped")
			_ = logger.Sync()
			return nil
		},
	})
}
