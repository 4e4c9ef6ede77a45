package container

import (
	"context"

	"gobenford/adapters/samples"
	"gobenford/adapters/sqlstore"
	"gobenford/app"
	"gobenford/internal"
	"gobenford/internal/config"
	"gobenford/internal/errors"
	"gobenford/ports"

	"github.com/jmoiron/sqlx"
)

// Container holds all application dependencies and manages their lifecycle
type Container struct {
	Config *config.Config
	Logger *internal.Logger

	// Infrastructure
	DB *sqlx.DB

	// Repositories and sources
	RunRepo ports.RunRepository
	Samples ports.SampleSource

	// Services
	AnalysisService *app.AnalysisService
}

// New creates a new dependency injection container. The analysis service
// starts without a run store; call InitWithDatabase to attach one.
func New(cfg *config.Config) (*Container, error) {
	if cfg == nil {
		return nil, errors.ConfigInvalid("config cannot be nil")
	}

	logger := internal.NewLogger(internal.ParseLogLevel(cfg.Log.Level))
	c := &Container{
		Config:  cfg,
		Logger:  logger,
		Samples: samples.NewReader(logger),
	}
	c.initServices()

	return c, nil
}

// InitWithDatabase opens the configured run store and rewires the services to use it
func (c *Container) InitWithDatabase(ctx context.Context) error {
	if !c.Config.StoreEnabled() {
		return errors.ConfigInvalid("DATABASE_URL must be set to use the run store")
	}

	db, err := sqlstore.Open(ctx, c.Config.Database.Driver, c.Config.Database.URL)
	if err != nil {
		return err
	}

	c.DB = db
	c.RunRepo = sqlstore.NewRunRepository(db)
	c.initServices()

	c.Logger.Debug("[Container] Run store ready (%s)", c.Config.Database.Driver)
	return nil
}

func (c *Container) initServices() {
	c.AnalysisService = app.NewAnalysisService(c.RunRepo, c.Samples, c.Logger)
}

// Shutdown releases the run store connection
func (c *Container) Shutdown(ctx context.Context) error {
	if c.DB != nil {
		err := c.DB.Close()
		c.DB = nil
		return err
	}
	return nil
}
