package main

import (
	"context"
	"os"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"

	"github.com/agenthands/hallmarks/internal/config"
	"github.com/agenthands/hallmarks/internal/core"
	"github.com/agenthands/hallmarks/internal/server"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Info("No .env file found, using defaults")
	}

	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "config/config.toml"
	}
	cfg, err := config.LoadOrDefault(cfgPath)
	if err != nil {
		log.WithError(err).Fatal("Failed to load configuration")
	}

	pipeline, err := core.BuildPipeline(context.Background(), cfg)
	if err != nil {
		log.WithError(err).Fatal("Failed to build analysis pipeline")
	}
	defer pipeline.Close()

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	srv := server.NewServer(pipeline.Analyzer, pipeline.Cache)
	r := srv.SetupRouter()

	log.WithField("port", port).Info("Starting server")
	if err := r.Run(":" + port); err != nil {
		log.Fatal(err)
	}
}
