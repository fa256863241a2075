package main

import (
	"context"
	"time"

	"gigstage/internal/gigs/repository"
	mongoMigration "gigstage/internal/migrations/mongo"
	"gigstage/pkg/config"
)

const JobName = "mongo-migration"

// Metadata keys stripped from historical ledger entries. Strip-only:
// the migration may remove a deprecated key but never rewrites, reorders
// or deletes entries.
var deprecatedLedgerFields = []string{"contact_phone"}

func main() {
	ctx, cancel := context.WithTimeout(context.Background(), 120*time.Second)
	defer cancel()

	cfg := config.Load(JobName)
	cfg.SetMongo()
	defer cfg.Client.GracefulShutdown(cfg.Log)

	cfg.Log.Info("Starting Mongo migration job")

	if err := mongoMigration.RunMigration(ctx, cfg.Client.Mongo, cfg.MongoDatabaseName); err != nil {
		cfg.Log.Fatal("Migration failed", "error", err)
	}

	ledger := repository.NewMongoLedgerRepository(cfg)
	for _, field := range deprecatedLedgerFields {
		modified, err := ledger.StripDeprecatedField(ctx, field)
		if err != nil {
			cfg.Log.Fatal("Ledger field strip failed", "field", field, "error", err)
		}
		cfg.Log.Info("Stripped deprecated ledger field", "field", field, "modified", modified)
	}

	gigs := repository.NewMongoGigRepository(cfg)
	total, err := gigs.Count(ctx)
	if err != nil {
		cfg.Log.Fatal("Post-migration gig count failed", "error", err)
	}

	cfg.Log.Info("Migration completed successfully", "gigs", total)
}
