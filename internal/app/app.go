package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/MrSnakeDoc/copydock/internal/capture"
	"github.com/MrSnakeDoc/copydock/internal/config"
	"github.com/MrSnakeDoc/copydock/internal/httpserver"
	"github.com/MrSnakeDoc/copydock/internal/httpserver/deps"
	"github.com/MrSnakeDoc/copydock/internal/logger"
	"github.com/MrSnakeDoc/copydock/internal/redis"
	"github.com/MrSnakeDoc/copydock/internal/scheduler"
	"github.com/MrSnakeDoc/copydock/internal/store"
	"github.com/MrSnakeDoc/copydock/internal/store/backends"
	"github.com/MrSnakeDoc/copydock/internal/version"
)

type App struct {
	cfg    *config.Config
	logger logger.Logger
	server *httpserver.Server
	store  store.Store

	reloader *scheduler.NotebooksReloader // nil without a notebooks file
}

// New loads the configuration, opens storage and builds the HTTP server.
// Storage is opened eagerly so a locked or unreachable backend fails startup.
func New(ctx context.Context) (*App, error) {
	cfg := config.Load()

	loggerClient := logger.New(cfg.LogLevel, cfg.PrettyLog)

	st, err := backends.Open(ctx, cfg.StorageDSN, backends.Options{
		Logger: loggerClient,
		Redis: redis.ConnectOptions{
			ConnectTimeout: cfg.RedisConnectTimeout,
			RetryInterval:  cfg.RedisRetryInterval,
			MaxWait:        cfg.RedisMaxWait,
			PingTimeout:    cfg.RedisPingTimeout,
			WarnThreshold:  cfg.RedisWarnThreshold,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("open storage: %w", err)
	}
	loggerClient.Info("storage initialized", logger.String("kind", st.Kind()))

	directory := capture.NewDirectory(st, loggerClient)
	if created, err := directory.EnsureDefault(ctx); err != nil {
		// /notebooks retries the seeding on first read
		loggerClient.Warn("failed to seed default notebook", logger.Error(err))
	} else if created {
		loggerClient.Info("default notebook created")
	}

	var reloader *scheduler.NotebooksReloader
	if cfg.NotebooksFile != "" {
		loggerClient.Info("notebooks file configured",
			logger.String("file", cfg.NotebooksFile),
			logger.Duration("reload_interval", cfg.NotebooksReloadInterval))
		reloader = scheduler.NewNotebooksReloader(cfg.NotebooksFile, directory, loggerClient, cfg.NotebooksReloadInterval)
	}

	d := deps.Deps{
		Logger:       loggerClient,
		StartTime:    time.Now(),
		Version:      version.Version,
		Commit:       version.Commit,
		BuildDate:    version.BuildDate,
		GoVersion:    version.GoVersion,
		TimeNow:      time.Now,
		Store:        st,
		Captures:     capture.NewService(st, directory, loggerClient),
		Notebooks:    directory,
		CaptureLimit: cfg.CaptureLimit,
		MaxBodyBytes: cfg.MaxBodyBytes,
	}

	return &App{
		cfg:    cfg,
		logger: loggerClient,
		server: httpserver.New(cfg, loggerClient, d),
		store:  st,

		reloader: reloader,
	}, nil
}

func (a *App) Run() error {
	a.logger.Infof("🚀 Starting CopyDock v%s on %s", version.Version, a.cfg.ListenAddr)
	a.logger.Infof("CopyDock %s (commit=%s, built=%s, go=%s, storage=%s)",
		version.Version, version.Commit, version.BuildDate, version.GoVersion, a.store.Kind())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if a.reloader != nil {
		if err := a.reloader.Start(ctx); err != nil {
			a.closeStore()
			return fmt.Errorf("failed to start notebooks reloader: %w", err)
		}
	}

	errCh := make(chan error, 1)
	go func() {
		if err := a.server.Start(); err != nil {
			errCh <- fmt.Errorf("http server error: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		a.logger.Info("⏳ Shutting down gracefully...")
	case err := <-errCh:
		a.closeStore()
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
	defer cancel()
	if err := a.server.Stop(shutdownCtx); err != nil {
		a.closeStore()
		return fmt.Errorf("failed to stop server: %w", err)
	}

	a.closeStore()
	a.logger.Info("✅ CopyDock stopped cleanly")
	_ = a.logger.Sync()
	return nil
}

// closeStore stops the reloader first so nothing writes to a closed store.
func (a *App) closeStore() {
	if a.reloader != nil {
		a.reloader.Stop()
	}
	if err := a.store.Close(); err != nil {
		a.logger.Warnf("failed to close %s storage: %v", a.store.Kind(), err)
		return
	}
	a.logger.Info("✅ Storage closed cleanly", logger.String("kind", a.store.Kind()))
}
