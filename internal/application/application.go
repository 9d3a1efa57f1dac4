package application

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/eugenenazirov/hpconf/internal/api"
	"github.com/eugenenazirov/hpconf/internal/config"
	"github.com/eugenenazirov/hpconf/internal/storage"
	"github.com/eugenenazirov/hpconf/internal/watcher"
)

// App encapsulates the application dependencies and HTTP server.
type App struct {
	storage      storage.Storage
	handler      *api.Handler
	router       http.Handler
	logger       *zap.Logger
	server       *http.Server
	documentPath string
	watch        bool
}

// New initializes the application with all dependencies from the provided configuration.
// The hyperparameter document is loaded eagerly so a broken file fails startup.
func New(cfg config.Config, logger *zap.Logger) (*App, error) {
	documentPath, err := ResolveDocumentPath(cfg.DocumentPath)
	if err != nil {
		return nil, fmt.Errorf("failed to locate document: %w", err)
	}

	store := storage.NewMemoryStorage()
	if err := store.Reload(documentPath); err != nil {
		return nil, fmt.Errorf("failed to load initial document: %w", err)
	}

	snap, err := store.Get()
	if err != nil {
		return nil, err
	}
	if cfg.Scenario != "" && !snap.Document.HasScenario(cfg.Scenario) {
		logger.Warn("configured scenario not present in document, global defaults will be served",
			zap.String("scenario", cfg.Scenario),
			zap.Strings("available", snap.Document.Scenarios()),
		)
	}

	handler := api.NewHandler(store, api.WithDefaultScenario(cfg.Scenario))
	apiRouter := api.NewRouter(handler, logger,
		api.WithLogging(cfg.EnableRequestLogging),
		api.WithRateLimit(cfg.RateLimitRPS, cfg.RateLimitBurst),
	)

	return &App{
		storage:      store,
		handler:      handler,
		router:       apiRouter,
		logger:       logger,
		server:       NewServer(cfg, apiRouter),
		documentPath: documentPath,
		watch:        cfg.WatchDocument,
	}, nil
}

// NewServer creates and configures an HTTP server from the provided configuration.
func NewServer(cfg config.Config, handler http.Handler) *http.Server {
	addr := cfg.Port
	if !strings.Contains(addr, ":") {
		addr = ":" + addr
	}

	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       cfg.IdleTimeout,
	}
}

// Start starts the HTTP server in a goroutine and logs the listening address.
// When document watching is enabled the watcher runs until ctx is cancelled.
func (a *App) Start(ctx context.Context) error {
	if a.watch {
		w := watcher.New(a.documentPath, a.storage, a.logger)
		go func() {
			if err := w.Run(ctx); err != nil {
				a.logger.Error("document watcher stopped", zap.Error(err))
			}
		}()
	}

	go func() {
		a.logger.Info("server listening",
			zap.String("addr", a.server.Addr),
			zap.String("document", a.documentPath),
		)
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.logger.Fatal("server error", zap.Error(err))
		}
	}()
	return nil
}

// Server returns the HTTP server instance for shutdown handling.
func (a *App) Server() *http.Server {
	return a.server
}

// Handler returns the root HTTP handler.
func (a *App) Handler() http.Handler {
	return a.router
}

// ResolveDocumentPath returns path unchanged when it exists. Relative paths
// that do not exist from the working directory are looked up by walking up
// the directory tree, so the default document is found from any package.
func ResolveDocumentPath(path string) (string, error) {
	if _, err := os.Stat(path); err == nil || filepath.IsAbs(path) {
		return path, nil
	}
	return resolveProjectPath(path)
}

// resolveProjectPath locates a file or directory relative to the project root by walking up the directory tree.
func resolveProjectPath(relative string) (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", err
	}

	for {
		candidate := filepath.Join(dir, relative)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return "", fmt.Errorf("unable to locate %s", relative)
}
