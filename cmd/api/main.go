package main

import (
	"net/http"
	"os"

	"godrift/adapters/api"
	"godrift/adapters/text/drift"
	"godrift/app"
	"godrift/internal"
	"godrift/internal/config"
)

func main() {
	logger := internal.DefaultLogger

	cfg, err := config.Load()
	if err != nil {
		logger.Error("configuration: %v", err)
		os.Exit(1)
	}

	service := app.NewDefaultDetectionService(drift.Options{
		BaselineBuckets: cfg.Detection.DriftBaselineBuckets,
	})
	server := api.NewServer(service, cfg.Detection, logger)

	addr := ":" + cfg.Server.Port
	logger.Info("detection API listening on %s", addr)
	if err := http.ListenAndServe(addr, server.Router()); err != nil {
		logger.Error("server: %v", err)
		os.Exit(1)
	}
}
