// Package mongo stores identities as documents in MongoDB.
package mongo

import (
	"context"
	"log/slog"

	"devconnect/config"
	"devconnect/internal/domain/lifecycle"
	"devconnect/internal/errors"

	"go.mongodb.org/mongo-driver/v2/bson"
	mongodriver "go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.mongodb.org/mongo-driver/v2/mongo/readpref"
	"go.uber.org/fx"
)

const (
	identitiesCollection = "identities"
	emailIndexName       = "idx_identities_email"
	roleCreatedIndexName = "idx_identities_role_created"
)

// Params defines the required parameters
type Params struct {
	fx.In
	fx.Lifecycle

	Config *config.Config
	Logger *slog.Logger
}

// New connects to MongoDB and returns the identities collection. Indexes are
// ensured in the start hook so the unique email constraint exists before traffic.
func New(params Params) (*mongodriver.Collection, error) {
	cfg := params.Config.Mongo
	if cfg == nil || cfg.URI == "" {
		return nil, errors.New("mongo.uri is required when store.driver is mongo")
	}

	client, err := mongodriver.Connect(options.Client().
		ApplyURI(cfg.URI).
		SetTimeout(cfg.Timeout))
	if err != nil {
		return nil, errors.Wrap(err, "failed to create MongoDB client")
	}

	collection := client.Database(cfg.Database).Collection(identitiesCollection)

	params.Append(fx.Hook{
		OnStart: func(startCtx context.Context) error {
			ctx, cancel := context.WithTimeout(startCtx, lifecycle.DefaultTimeout)
			defer cancel()

			if err := client.Ping(ctx, readpref.Primary()); err != nil {
				return errors.Wrap(err, "failed to ping MongoDB")
			}

			if err := EnsureIndexes(ctx, collection); err != nil {
				return err
			}

			params.Logger.Info("MongoDB identity store ready",
				slog.String("database", cfg.Database),
				slog.String("collection", identitiesCollection),
			)

			return nil
		},
		OnStop: func(stopCtx context.Context) error {
			return client.Disconnect(stopCtx)
		},
	})

	return collection, nil
}

// EnsureIndexes creates the unique email index and the talent listing index.
func EnsureIndexes(ctx context.Context, collection *mongodriver.Collection) error {
	_, err := collection.Indexes().CreateMany(ctx, []mongodriver.IndexModel{
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetName(emailIndexName).SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "role", Value: 1}, {Key: "created_at", Value: -1}},
			Options: options.Index().SetName(roleCreatedIndexName),
		},
	})
	if err != nil {
		return errors.Wrap(err, "failed to create identity indexes")
	}

	return nil
}
