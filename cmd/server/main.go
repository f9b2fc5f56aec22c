package main

import (
	"errors"
	"io/fs"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
)

// version is set at build time via -ldflags "-X main.version=..."
var version = "dev"

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		slog.Warn("dotenv_load_failed", "error", err)
	}
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
