package handlers

import (
	"context"
	"fmt"

	"github.com/ltst/latest-block/block"
	"github.com/ltst/latest-block/config"
	"github.com/ltst/latest-block/entitystore"
	"github.com/ltst/latest-block/latest"
	"github.com/ltst/latest-block/logging"
	"go.etcd.io/bbolt"
)

// InitDependencies initializes all application components
func InitDependencies(cfg *config.Config, db *bbolt.DB, logger *logging.Logger) (Dependencies, error) {
	store, err := entitystore.NewBoltStore(db)
	if err != nil {
		return Dependencies{}, fmt.Errorf("failed to initialize entity store: %w", err)
	}

	// Seed the backing entity the block is bound to
	if err := store.EnsureEntity(context.Background(), cfg.Block.EntityID); err != nil {
		return Dependencies{}, fmt.Errorf("failed to seed backing entity: %w", err)
	}

	fetcher := latest.New(cfg.Latest.BaseURL, cfg.Latest.APIKey, cfg.Latest.Timeout, logger)

	properties := map[string]interface{}{}
	if cfg.Block.ChannelID != "" {
		properties["channelId"] = cfg.Block.ChannelID
	}

	blk := block.New(block.Options{
		EntityID:   cfg.Block.EntityID,
		Properties: properties,
		Strategy:   cfg.Block.Strategy,
		SiteURL:    cfg.Latest.BaseURL,
		Fetcher:    fetcher,
		Store:      store,
		Logger:     logger,
	})

	return Dependencies{
		Fetcher: fetcher,
		Store:   store,
		Block:   blk,
		Logger:  logger,
	}, nil
}
