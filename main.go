package main

import (
	"context"
	"io"
	"log"
	"os"

	"mmmsynth/app"
	"mmmsynth/internal"
	"mmmsynth/internal/config"
	"mmmsynth/internal/container"
	"mmmsynth/internal/errors"
)

func main() {
	appConfig := config.Fixed()

	logger, err := internal.NewLogger(internal.ParseLogLevel(appConfig.Log.Level))
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}

	if _, err := run(context.Background(), appConfig, logger, os.Stdout); err != nil {
		logger.Error("pipeline failed [%s]: %v", errors.GetCode(err), err)
		logger.Sync()
		os.Exit(1)
	}
}

// run executes the fixed pipeline: generate, export to data.csv, fit and report
func run(ctx context.Context, cfg *config.Config, logger *internal.Logger, w io.Writer) (*app.RunResult, error) {
	c, err := container.New(ctx, cfg, logger)
	if err != nil {
		return nil, errors.Wrap(err, "failed to initialize")
	}
	defer func() {
		if err := c.Close(); err != nil {
			logger.Warn("failed to close container: %v", err)
		}
	}()

	return c.Pipeline.Run(ctx, w)
}
