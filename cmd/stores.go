package main

import (
	"context"
	"fmt"

	"github.com/Vasu1712/hushgroup-backend/internal/appconfig"
	"github.com/Vasu1712/hushgroup-backend/internal/identity"
	"github.com/Vasu1712/hushgroup-backend/internal/storage"
	"github.com/Vasu1712/hushgroup-backend/internal/storage/memory"
	"github.com/Vasu1712/hushgroup-backend/internal/storage/mongostore"
	"github.com/Vasu1712/hushgroup-backend/internal/storage/postgres"
	"github.com/rs/zerolog/log"
)

type stores struct {
	groups   storage.GroupRepository
	messages storage.MessageRepository
	users    identity.Directory
	ping     func(ctx context.Context) error
	close    func()
}

// openStores connects the configured backend and brings its schema up to date.
func openStores(ctx context.Context, cfg appconfig.StorageConfig) (*stores, error) {
	switch cfg.Driver {
	case "postgres":
		db, err := postgres.Open(ctx, cfg.PostgresDSN, log.Logger)
		if err != nil {
			return nil, err
		}
		if err := postgres.Migrate(db); err != nil {
			db.Close()
			return nil, err
		}
		return &stores{
			groups:   postgres.NewGroupStore(db, log.Logger),
			messages: postgres.NewMessageStore(db),
			users:    postgres.NewUserDirectory(db),
			ping:     db.PingContext,
			close:    func() { db.Close() },
		}, nil

	case "mongo":
		client, err := mongostore.Connect(ctx, cfg.MongoURI)
		if err != nil {
			return nil, err
		}
		db := client.Database(cfg.MongoDatabase)
		if err := mongostore.EnsureIndexes(ctx, db); err != nil {
			_ = client.Disconnect(ctx)
			return nil, err
		}
		log.Info().Str("database", cfg.MongoDatabase).Msg("connected to MongoDB")
		return &stores{
			groups:   mongostore.NewGroupStore(db),
			messages: mongostore.NewMessageStore(db),
			users:    mongostore.NewUserDirectory(db),
			ping:     func(ctx context.Context) error { return client.Ping(ctx, nil) },
			close:    func() { _ = client.Disconnect(context.Background()) },
		}, nil

	case "memory":
		log.Warn().Msg("using in-memory storage, data is lost on restart")
		return &stores{
			groups:   memory.NewGroupStore(),
			messages: memory.NewMessageStore(),
			users:    identity.NewMemoryDirectory(),
			close:    func() {},
		}, nil
	}
	return nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
}
