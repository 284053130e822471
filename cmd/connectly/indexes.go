package main

import (
	"github.com/spf13/cobra"

	"github.com/connectly/support-api/internal/infrastructure/config"
	dynamostore "github.com/connectly/support-api/internal/infrastructure/db/dynamodb"
	mongostore "github.com/connectly/support-api/internal/infrastructure/db/mongo"
)

var indexesCmd = &cobra.Command{
	Use:   "indexes",
	Short: "Create the indexes or tables of the configured store",
	Long: `Creates MongoDB indexes or DynamoDB tables for STORE_BACKEND.
Safe to run repeatedly. Usage:

	connectly indexes
`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		switch cfg.StoreBackend {
		case config.BackendMongo:
			client, db, err := mongostore.Connect(ctx, mongoConfig(cfg))
			if err != nil {
				return err
			}
			defer func() { _ = client.Disconnect(ctx) }()
			if err := mongostore.EnsureIndexes(ctx, db); err != nil {
				return err
			}

		case config.BackendDynamoDB:
			dc := dynamoConfig(cfg)
			client, err := dynamostore.Connect(ctx, dc)
			if err != nil {
				return err
			}
			if err := dynamostore.EnsureTables(ctx, client, dc); err != nil {
				return err
			}

		default:
			log.Info().Str("backend", cfg.StoreBackend).Msg("store needs no indexes")
			return nil
		}

		log.Info().Str("backend", cfg.StoreBackend).Msg("indexes ready")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(indexesCmd)
}
