package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"petvision/internal/config"
	"petvision/internal/inference"
	"petvision/internal/logger"
	"petvision/internal/server"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"
)

func main() {
	if err := config.LoadEnv(); err != nil {
		log.Printf("load .env: %v", err)
	}

	cfg := config.LoadServer()

	lg, err := logger.NewStd(logger.ParseLevel(cfg.LogLevel), cfg.LogFile)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer lg.Close()

	model, err := inference.NewSSDModel(cfg.ModelPath, cfg.ModelConfigPath)
	if err != nil {
		lg.Error("load model: %v", err)
		os.Exit(1)
	}
	defer model.Close()
	lg.Info("detection network loaded from %s", cfg.ModelPath)

	if logger.ParseLevel(cfg.LogLevel) == logger.LevelDebug {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	httpServer := &http.Server{
		Addr:    ":" + strconv.Itoa(cfg.Port),
		Handler: server.New(cfg, model, lg).Router(),
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, groupCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		lg.Info("detection server listening on http://0.0.0.0:%d", cfg.Port)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-groupCtx.Done()
		lg.Info("shutting down detection server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		return httpServer.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		lg.Error("server stopped: %v", err)
		os.Exit(1)
	}

	lg.Info("server stopped")
}
