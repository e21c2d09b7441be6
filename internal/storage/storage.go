// Package storage opens the store backend selected by STORE_DRIVER.
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/rotadesk/rota/backend/internal/config"
	"github.com/rotadesk/rota/backend/internal/memstore"
	"github.com/rotadesk/rota/backend/internal/mongostore"
	"github.com/rotadesk/rota/backend/internal/repository"
	"github.com/rotadesk/rota/backend/internal/seed"
	"github.com/rotadesk/rota/backend/internal/service"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	_ "github.com/jackc/pgx/v5/stdlib"
)

// Backend is one store that serves shifts, the company directory and seeding.
type Backend interface {
	service.Store
	service.Directory
	seed.Writer
}

var (
	_ Backend = (*repository.Repository)(nil)
	_ Backend = (*mongostore.Store)(nil)
	_ Backend = (*memstore.Store)(nil)
)

// Open connects the configured backend. The returned func releases its connections.
func Open(ctx context.Context, cfg *config.Config) (Backend, func(), error) {
	switch cfg.Store.Driver {
	case "postgres":
		return openPostgres(ctx, cfg)
	case "mongo":
		return openMongo(ctx, cfg)
	case "memory":
		return memstore.New(cfg.Rota.BatchSize), func() {}, nil
	default:
		return nil, nil, fmt.Errorf("unknown store driver %q", cfg.Store.Driver)
	}
}

func openPostgres(ctx context.Context, cfg *config.Config) (Backend, func(), error) {
	dbpool, err := sql.Open("pgx", cfg.Database.DSN)
	if err != nil {
		return nil, nil, err
	}

	dbpool.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	dbpool.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	dbpool.SetConnMaxIdleTime(time.Duration(cfg.Database.MaxIdleTime) * time.Second)

	ctx, cancel := context.WithTimeout(ctx, time.Duration(cfg.Database.ConnectTimeout)*time.Second)
	defer cancel()

	// sql.Open only builds the pool; ping to actually reach the server
	if err := dbpool.PingContext(ctx); err != nil {
		dbpool.Close()
		return nil, nil, err
	}

	return repository.NewRepository(cfg, dbpool), func() { dbpool.Close() }, nil
}

func openMongo(ctx context.Context, cfg *config.Config) (Backend, func(), error) {
	ctx, cancel := context.WithTimeout(ctx, time.Duration(cfg.Mongo.ConnectTimeout)*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.Mongo.URI))
	if err != nil {
		return nil, nil, err
	}
	closeFn := func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Mongo.ConnectTimeout)*time.Second)
		defer cancel()
		_ = client.Disconnect(ctx)
	}

	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		closeFn()
		return nil, nil, err
	}

	store := mongostore.New(client.Database(cfg.Mongo.Database), cfg.Rota.BatchSize, time.Duration(cfg.Mongo.QueryTimeout)*time.Second)
	if err := store.EnsureIndexes(ctx); err != nil {
		closeFn()
		return nil, nil, err
	}

	return store, closeFn, nil
}
