// Package persistence selects the identity store configured by store.driver.
package persistence

import (
	"log/slog"

	"devconnect/config"
	"devconnect/internal/domain/repository"
	"devconnect/internal/errors"
	"devconnect/internal/infra/persistence/mongo"
	"devconnect/internal/infra/persistence/postgres"

	"go.uber.org/fx"
)

// Params defines the required parameters
type Params struct {
	fx.In
	fx.Lifecycle

	Config *config.Config
	Logger *slog.Logger
}

// NewIdentityRepository connects only the configured backend and returns its repository.
func NewIdentityRepository(params Params) (repository.IdentityRepository, error) {
	driver := config.StoreDriverPostgres
	if params.Config.Store != nil && params.Config.Store.Driver != "" {
		driver = params.Config.Store.Driver
	}

	switch driver {
	case config.StoreDriverPostgres:
		db, err := postgres.New(postgres.Params{
			Lifecycle: params.Lifecycle,
			Config:    params.Config,
			Logger:    params.Logger,
		})
		if err != nil {
			return nil, err
		}

		return postgres.NewIdentityRepository(db), nil
	case config.StoreDriverMongo:
		collection, err := mongo.New(mongo.Params{
			Lifecycle: params.Lifecycle,
			Config:    params.Config,
			Logger:    params.Logger,
		})
		if err != nil {
			return nil, err
		}

		return mongo.NewIdentityRepository(collection), nil
	default:
		return nil, errors.Errorf("unsupported store driver %q", driver)
	}
}
