package main

import (
	"context"
	"fmt"

	"github.com/andresuchdata/stockline/internal/config"
	"github.com/andresuchdata/stockline/internal/repository/postgres"
	"github.com/andresuchdata/stockline/internal/service"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/urfave/cli/v2"
)

type ctxKey string

const (
	dbKey      ctxKey = "db"
	serviceKey ctxKey = "service"
)

func initStore(c *cli.Context, cfg *config.Config) error {
	params, err := cfg.Engine.Parameters()
	if err != nil {
		return cli.Exit(err.Error(), 2)
	}

	dsn := c.String("db-url")
	if dsn == "" {
		dsn = postgres.DSN(&cfg.Database)
	}

	db, err := postgres.Open("pgx", dsn, cfg.Database.MaxConcurrentTx)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := db.Migrate(c.Context); err != nil {
		db.Close()
		return fmt.Errorf("failed to migrate schema: %w", err)
	}

	// one-shot commands read straight from the database
	svc := service.NewInventoryService(postgres.NewStore(db), params, nil)

	c.Context = context.WithValue(c.Context, dbKey, db)
	c.Context = context.WithValue(c.Context, serviceKey, svc)
	return nil
}

func closeStore(c *cli.Context) error {
	if db, ok := c.Context.Value(dbKey).(*postgres.DB); ok && db != nil {
		return db.Close()
	}
	return nil
}

func inventoryService(c *cli.Context) (*service.InventoryService, error) {
	svc, ok := c.Context.Value(serviceKey).(*service.InventoryService)
	if !ok || svc == nil {
		return nil, fmt.Errorf("inventory service not initialised")
	}
	return svc, nil
}
