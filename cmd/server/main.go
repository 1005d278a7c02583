package main

import (
	"log/slog"
	"os"

	"github.com/joho/godotenv"

	"carepay/internal/app/server"
)

func main() {
	// Missing .env is fine outside local development.
	_ = godotenv.Load()

	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	if err := server.Run(); err != nil {
		slog.Error("server exited", "err", err)
		os.Exit(1)
	}
}
