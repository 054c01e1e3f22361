package main

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/gardonyia/basket/internal/cli"
	"github.com/gardonyia/basket/internal/config"
)

func main() {
	// Load configuration
	cfg := config.MustLoad()

	// Setup logger
	setupLogger(cfg)

	log.Debug().
		Str("env", cfg.AppEnv).
		Str("sources", cfg.Sources).
		Msg("Configuration loaded")

	if err := cli.Execute(cfg); err != nil {
		os.Exit(1)
	}
}

// setupLogger configures the zerolog logger. Logs go to stderr so command
// output on stdout stays clean; LOG_FILE adds a rotated file.
func setupLogger(cfg *config.Config) {
	var out io.Writer = os.Stderr

	// Pretty console logging in development
	if cfg.IsDevelopment() {
		out = zerolog.ConsoleWriter{
			Out:        os.Stderr,
			TimeFormat: time.RFC3339,
		}
	}

	if cfg.LogFile != "" {
		out = zerolog.MultiLevelWriter(out, &lumberjack.Logger{
			Filename:   cfg.LogFile,
			MaxSize:    10, // MB
			MaxBackups: 5,
			MaxAge:     30, // days
			Compress:   true,
		})
	}

	log.Logger = zerolog.New(out).With().Timestamp().Logger()

	// Set log level
	level := zerolog.InfoLevel
	if parsedLevel, err := zerolog.ParseLevel(cfg.LogLevel); err == nil && cfg.LogLevel != "" {
		level = parsedLevel
	}
	zerolog.SetGlobalLevel(level)

	log.Debug().
		Str("level", level.String()).
		Msg("Logger initialized")
}
