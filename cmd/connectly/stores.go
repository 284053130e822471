package main

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/mongo"

	"github.com/connectly/support-api/internal/api/handler"
	"github.com/connectly/support-api/internal/core/ports"
	"github.com/connectly/support-api/internal/infrastructure/config"
	dynamostore "github.com/connectly/support-api/internal/infrastructure/db/dynamodb"
	"github.com/connectly/support-api/internal/infrastructure/db/memory"
	mongostore "github.com/connectly/support-api/internal/infrastructure/db/mongo"
)

// stores bundles the repositories of the selected backend.
type stores struct {
	users    ports.UserRepository
	messages ports.MessageRepository
	check    handler.Checker
	close    func(context.Context) error
}

func mongoConfig(c *config.Config) mongostore.Config {
	return mongostore.Config{URI: c.Mongo.URI, Database: c.Mongo.Database}
}

func dynamoConfig(c *config.Config) dynamostore.Config {
	return dynamostore.Config{
		Region:          c.DynamoDB.Region,
		AccessKeyID:     c.DynamoDB.AccessKeyID,
		SecretAccessKey: c.DynamoDB.SecretAccessKey,
		Endpoint:        c.DynamoDB.Endpoint,
		UsersTable:      c.DynamoDB.UsersTable,
		MessagesTable:   c.DynamoDB.MessagesTable,
	}
}

func openStores(ctx context.Context, c *config.Config) (*stores, error) {
	switch c.StoreBackend {
	case config.BackendMemory:
		return &stores{
			users:    memory.NewUserRepository(),
			messages: memory.NewMessageRepository(),
			close:    func(context.Context) error { return nil },
		}, nil

	case config.BackendMongo:
		client, db, err := mongostore.Connect(ctx, mongoConfig(c))
		if err != nil {
			return nil, err
		}
		st, err := mongoStores(ctx, client, db)
		if err != nil {
			_ = client.Disconnect(ctx)
			return nil, err
		}
		return st, nil

	case config.BackendDynamoDB:
		dc := dynamoConfig(c)
		client, err := dynamostore.Connect(ctx, dc)
		if err != nil {
			return nil, err
		}
		return &stores{
			users:    dynamostore.NewUserRepository(client, dc.UsersTable),
			messages: dynamostore.NewMessageRepository(client, dc.MessagesTable),
			check: func(ctx context.Context) error {
				return dynamostore.Ping(ctx, client, dc.UsersTable)
			},
			close: func(context.Context) error { return nil },
		}, nil
	}
	return nil, fmt.Errorf("unknown store backend %q", c.StoreBackend)
}

// mongoStores builds the MongoDB repositories. The unique email index must
// exist before the first registration, so it is created here.
func mongoStores(ctx context.Context, client *mongo.Client, db *mongo.Database) (*stores, error) {
	if err := mongostore.EnsureIndexes(ctx, db); err != nil {
		return nil, fmt.Errorf("mongo indexes: %w", err)
	}
	return &stores{
		users:    mongostore.NewUserRepository(db),
		messages: mongostore.NewMessageRepository(db),
		check: func(ctx context.Context) error {
			return mongostore.Ping(ctx, client)
		},
		close: client.Disconnect,
	}, nil
}
