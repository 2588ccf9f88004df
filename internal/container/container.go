package container

import (
	"context"
	"fmt"

	"mmmsynth/adapters/db"
	"mmmsynth/adapters/excel"
	"mmmsynth/app"
	"mmmsynth/internal"
	"mmmsynth/internal/config"
	"mmmsynth/ports"
)

// Container holds all application dependencies and manages their lifecycle
type Container struct {
	Config *config.Config
	Logger *internal.Logger

	// Adapters
	Writer ports.TableWriter
	Reader ports.TableReader
	Ledger ports.RunLedger

	// Services
	Pipeline *app.Pipeline
}

// New creates a new dependency injection container. A nil logger is replaced
// by one built from the configured level. The run ledger is opened only when
// a DSN is configured.
func New(ctx context.Context, cfg *config.Config, logger *internal.Logger) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}

	if logger == nil {
		var err error
		logger, err = internal.NewLogger(internal.ParseLogLevel(cfg.Log.Level))
		if err != nil {
			return nil, fmt.Errorf("failed to create logger: %w", err)
		}
	}

	c := &Container{
		Config: cfg,
		Logger: logger,
	}

	if err := c.initAdapters(ctx); err != nil {
		return nil, fmt.Errorf("failed to initialize adapters: %w", err)
	}
	c.initServices()

	logger.Debug("container initialized (output=%s, format=%s, ledger=%t)",
		cfg.Output.Path, c.Writer.Format(), c.Ledger != nil)
	return c, nil
}

// initAdapters selects the export format, the file loader and the ledger
func (c *Container) initAdapters(ctx context.Context) error {
	w, err := excel.NewWriter(c.Config.Output.ResolvedFormat())
	if err != nil {
		return err
	}
	c.Writer = w
	c.Reader = excel.Loader{Logger: c.Logger}

	if dsn := c.Config.Ledger.DSN; dsn != "" {
		ledger, err := db.Open(ctx, dsn)
		if err != nil {
			return err
		}
		c.Ledger = ledger
		driver, _ := db.Driver(dsn)
		c.Logger.Debug("run ledger opened (%s)", driver)
	}
	return nil
}

func (c *Container) initServices() {
	c.Pipeline = app.NewPipeline(c.Config, c.Logger, c.Writer, c.Reader)
	if c.Ledger != nil {
		c.Pipeline.WithLedger(c.Ledger)
	}
}

// Close releases the ledger connection and flushes the logger
func (c *Container) Close() error {
	defer c.Logger.Sync()
	if c.Ledger != nil {
		return c.Ledger.Close()
	}
	return nil
}
