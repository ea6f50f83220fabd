// cmd/server/main.go
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/andresuchdata/stockline/internal/api"
	"github.com/andresuchdata/stockline/internal/cache"
	"github.com/andresuchdata/stockline/internal/config"
	"github.com/andresuchdata/stockline/internal/repository/postgres"
	"github.com/andresuchdata/stockline/internal/service"
	"github.com/andresuchdata/stockline/pkg/logger"
	"github.com/gin-gonic/gin"
)

func main() {
	cfg := config.Load()

	if cfg.Server.Mode == "debug" {
		gin.SetMode(gin.DebugMode)
		logger.Configure(cfg.LogLevel, logger.ParseFormat(cfg.LogFormat, logger.FormatConsole))
	} else {
		gin.SetMode(gin.ReleaseMode)
		logger.Configure(cfg.LogLevel, logger.ParseFormat(cfg.LogFormat, logger.FormatJSON))
	}

	params, err := cfg.Engine.Parameters()
	if err != nil {
		logger.Log.Fatal().Err(err).Msg("Invalid engine configuration")
	}

	db, err := postgres.NewDB(&cfg.Database)
	if err != nil {
		logger.Log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer db.Close()

	migrateCtx, cancelMigrate := context.WithTimeout(context.Background(), 30*time.Second)
	if err := db.Migrate(migrateCtx); err != nil {
		cancelMigrate()
		logger.Log.Fatal().Err(err).Msg("Failed to migrate schema")
	}
	cancelMigrate()

	forecastCache, err := cache.NewForecastCache(cfg.Cache)
	if err != nil {
		logger.Log.Warn().Err(err).Msg("forecast cache unavailable, continuing without it")
		forecastCache = cache.NewNoopForecastCache()
	}

	inventoryService := service.NewInventoryService(postgres.NewStore(db), params, forecastCache)

	router := api.NewRouter(&api.Services{InventoryService: inventoryService}, cfg.Server.AllowedOrigins)
	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	go func() {
		logger.Log.Info().Str("port", cfg.Server.Port).Msg("Starting server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Log.Info().Msg("Shutting down server...")

	// in-flight requests get 5 seconds to finish
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	logger.Log.Info().Msg("Server exiting")
}
