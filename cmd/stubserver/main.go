package main

import (
	"log/slog"
	"net/http"
	"os"

	"github.com/joho/godotenv"

	"github.com/poupix/poupix/internal/config"
	"github.com/poupix/poupix/internal/stubserver"
	"github.com/poupix/poupix/pkg/logging"
)

func main() {
	if err := godotenv.Load(); err != nil {
		slog.Debug("no .env file found, using environment variables")
	}
	logging.Setup()

	cfg := config.Load()

	srv := stubserver.New()
	srv.Seed()

	slog.Info("stub backend listening", "port", cfg.Port)
	if err := http.ListenAndServe(":"+cfg.Port, srv); err != nil {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}
