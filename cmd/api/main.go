package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/BruksfildServices01/agenda-engine/internal/audit"
	"github.com/BruksfildServices01/agenda-engine/internal/config"
	dbpkg "github.com/BruksfildServices01/agenda-engine/internal/db"
	"github.com/BruksfildServices01/agenda-engine/internal/logger"
	"github.com/BruksfildServices01/agenda-engine/internal/routes"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	log, err := logger.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		panic(err)
	}
	defer func() { _ = log.Sync() }()

	if err := run(cfg, log); err != nil {
		log.Fatal("server stopped", zap.Error(err))
	}
}

func run(cfg *config.Config, log *zap.Logger) error {
	db, err := dbpkg.NewDB(cfg)
	if err != nil {
		return err
	}

	store, closeStore, err := openKV(cfg, db, log)
	if err != nil {
		return err
	}
	defer closeStore()

	remote, err := openRemote(cfg, log)
	if err != nil {
		return err
	}

	dispatcher := audit.NewDispatcher(audit.New(db), log.Named("audit"))

	r := gin.Default()

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	routes.RegisterRoutes(r, routes.Deps{
		DB:     db,
		Config: cfg,
		KV:     store,
		Remote: remote,
		Audit:  dispatcher,
		Logger: log,
	})

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		log.Info("server running",
			zap.String("addr", cfg.Addr()),
			zap.String("kv_backend", cfg.KVBackend),
			zap.String("remote_backend", cfg.RemoteBackend),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("http shutdown", zap.Error(err))
	}
	if err := dispatcher.Shutdown(shutdownCtx); err != nil {
		log.Warn("audit queue not drained", zap.Error(err))
	}
	return nil
}
