package main

import (
	"context"
	"log"
	"time"

	"petvision/internal/config"
	"petvision/internal/logger"
	ui "petvision/internal/ui"
	processing "petvision/processing/detector"
)

func main() {
	if err := config.LoadEnv(); err != nil {
		log.Printf("load .env: %v", err)
	}

	cfg := config.LoadConfigFile(config.DefaultConfigPath)
	cfg.ApplyEnv()

	lg, err := logger.NewStd(logger.ParseLevel(cfg.GetLogLevel()), cfg.GetLogFile())
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer lg.Close()

	det, err := processing.NewDetector(cfg.GetDetectorURL())
	if err != nil {
		lg.Warning("detector disabled: %v", err)
	}

	if remote, ok := det.(*processing.RemoteDetector); ok {
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
			defer cancel()

			if err := remote.CheckHealth(ctx); err != nil {
				lg.Warning("detection service not available at %s: %v", remote.Endpoint(), err)
				return
			}
			lg.Info("detection service ready at %s", remote.Endpoint())
		}()
	}

	session := processing.NewSession(processing.NewRenderer())

	app := ui.CreateApp(cfg, det, session, lg)

	app.Run()
}
