package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"confluence-engine/src/config"
	"confluence-engine/src/data_source"
	"confluence-engine/src/engine"
	"confluence-engine/src/interfaces"
	"confluence-engine/src/learning"
	"confluence-engine/src/logger"
	"confluence-engine/src/network"
	"confluence-engine/src/server"
	"confluence-engine/src/storage"

	"github.com/joho/godotenv"
)

// -----------------------------------------------------------------------------

func main() {

	// Parse command line flags
	configPath := flag.String("config", "../../config/default.yaml", "path to config file")
	flag.Parse()

	// API keys live in the environment, not in the config file.
	if err := godotenv.Load(); err == nil {
		fmt.Println("Loaded environment from .env")
	}

	// Load config from YAML file
	cfg, err := config.NewConfig(*configPath)
	if err != nil {
		fmt.Printf("Error loading config: %v\n", err)
		os.Exit(1)
	}
	if key := os.Getenv("ALPHAVANTAGE_API_KEY"); key != "" {
		cfg.DataSource.AlphaVantageKey = key
	}

	// Setup logger
	appLogger := logger.NewLogger(cfg.LogLevel, cfg.Name)

	// 2. Storage
	var db interfaces.IDatabase
	var outcomes interfaces.IOutcomeStore

	switch cfg.Storage.DBType {
	case "postgres":
		pg, err := storage.NewAsyncPostgresDB(cfg.MConfig, appLogger)
		if err != nil {
			appLogger.Critical("Failed to init db: %v", err)
		}
		db, outcomes = pg, pg
	default:
		// Default to SQLite
		lite, err := storage.NewAsyncSQLiteDB(cfg.MConfig, appLogger)
		if err != nil {
			appLogger.Critical("Failed to init db: %v", err)
		}
		db, outcomes = lite, lite
	}
	if err := db.Initialize(); err != nil {
		appLogger.Critical("Failed to migrate db: %v", err)
	}
	defer db.Close()

	// 3. Network and data sources
	var networkManager interfaces.INetworkManager = network.NewAsyncNetworkManager(cfg.MConfig, appLogger)

	yahoo := data_source.NewYahooSource(networkManager, cfg.LogLevel)
	var av *data_source.AlphaVantageSource
	if cfg.DataSource.AlphaVantageKey != "" {
		av = data_source.NewAlphaVantageSource(cfg.DataSource.AlphaVantageKey, networkManager, cfg.LogLevel)
	} else {
		appLogger.Warning("No Alpha Vantage API key configured: options endpoints and crypto failover are disabled")
	}
	sources := data_source.NewSourceManager(yahoo, av, cfg.Network.MaxRetries, cfg.LogLevel)

	// 4. Learning store over the backtester, persisted through the db
	backtester := learning.NewBacktester(cfg.Engine.ClusterWindowMinutes, cfg.Engine.LearningStepBars,
		logger.NewLogger(cfg.LogLevel, "Backtester"))
	store := learning.NewStore(backtester, cfg.Engine.LearningMaxAgeMinutes, db,
		logger.NewLogger(cfg.LogLevel, "LearningStore"))

	// 5. Engine and API server
	eng := engine.NewEngine(cfg, sources, store, outcomes)
	var srv interfaces.IDataExchanger = server.NewFastAPIServer(cfg.MConfig, eng, appLogger)

	go func() {
		if err := srv.Start(); err != nil {
			appLogger.Critical("Server failed: %v", err)
		}
	}()

	appLogger.Info("%s ready on %s:%d", cfg.Name, cfg.Host, cfg.Port)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down...")
	srv.Stop()
	eng.BarCache.Cleanup()
}
