package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"confluence-engine/src/config"
	"confluence-engine/src/data_source"
	"confluence-engine/src/engine"
	"confluence-engine/src/interfaces"
	"confluence-engine/src/learning"
	"confluence-engine/src/logger"
	"confluence-engine/src/network"

	"github.com/joho/godotenv"
)

// -----------------------------------------------------------------------------
// One-shot scanner: runs the pipeline for a single symbol and prints the
// result as JSON. No server, no storage.
// -----------------------------------------------------------------------------

func main() {
	configPath := flag.String("config", "../../config/default.yaml", "path to config file")
	symbol := flag.String("symbol", "", "symbol to scan")
	withOptions := flag.Bool("options", false, "also build the options setup")
	scanMode := flag.String("mode", "swing", "scan mode: scalp, day, swing, position, leap")
	timeout := flag.Duration("timeout", 60*time.Second, "overall scan timeout")
	flag.Parse()

	if *symbol == "" {
		fmt.Println("usage: scan -symbol AAPL [-options] [-mode swing]")
		os.Exit(1)
	}

	godotenv.Load()

	cfg, err := config.NewConfig(*configPath)
	if err != nil {
		fmt.Printf("Error loading config: %v\n", err)
		os.Exit(1)
	}
	if key := os.Getenv("ALPHAVANTAGE_API_KEY"); key != "" {
		cfg.DataSource.AlphaVantageKey = key
	}

	appLogger := logger.NewLogger(cfg.LogLevel, "scan")

	var networkManager interfaces.INetworkManager = network.NewAsyncNetworkManager(cfg.MConfig, appLogger)
	yahoo := data_source.NewYahooSource(networkManager, cfg.LogLevel)
	var av *data_source.AlphaVantageSource
	if cfg.DataSource.AlphaVantageKey != "" {
		av = data_source.NewAlphaVantageSource(cfg.DataSource.AlphaVantageKey, networkManager, cfg.LogLevel)
	}
	sources := data_source.NewSourceManager(yahoo, av, cfg.Network.MaxRetries, cfg.LogLevel)

	backtester := learning.NewBacktester(cfg.Engine.ClusterWindowMinutes, cfg.Engine.LearningStepBars, appLogger)
	store := learning.NewStore(backtester, cfg.Engine.LearningMaxAgeMinutes, nil, appLogger)

	eng := engine.NewEngine(cfg, sources, store, nil)

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	if *withOptions {
		setup, scan, err := eng.OptionsScan(ctx, *symbol, *scanMode)
		if err != nil {
			appLogger.Error("Options scan failed: %v", err)
			if scan != nil {
				printJSON(scan)
			}
			os.Exit(1)
		}
		printJSON(map[string]interface{}{"scan": scan, "setup": setup})
		return
	}

	scan, err := eng.HierarchicalScan(ctx, *symbol)
	if err != nil {
		appLogger.Error("Scan failed: %v", err)
		os.Exit(1)
	}
	printJSON(scan)
}

// -----------------------------------------------------------------------------

func printJSON(v interface{}) {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		fmt.Printf("marshal error: %v\n", err)
		return
	}
	fmt.Println(string(out))
}
