package app

import (
	"io"
	"log/slog"
	"os"

	"github.com/tpodg/serverprep/internal/config"
)

type App struct {
	Logger *slog.Logger
	Config *config.Config
}

// New builds the application. Logs go to stderr so stdout only carries
// progress output.
func New(cfg *config.Config, verbose bool) *App {
	return newApp(cfg, verbose, os.Stderr)
}

func newApp(cfg *config.Config, verbose bool, logOut io.Writer) *App {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(logOut, &slog.HandlerOptions{
		Level: level,
	}))

	return &App{
		Logger: logger,
		Config: cfg,
	}
}
