package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"

	"block-backtest/config"
	"block-backtest/internal/dto"
	"block-backtest/internal/repository"
	"block-backtest/internal/service"
	"block-backtest/pkg/cache"
	"block-backtest/pkg/logger"

	"github.com/spf13/cobra"
)

var (
	backtestGraphPath string
	backtestSymbol    string
	backtestRange     string
	backtestCapital   float64
	backtestField     string
)

// backtestCmd runs a single backtest from a graph JSON file and prints the
// result, without needing the API server or a database.
var backtestCmd = &cobra.Command{
	Use:   "backtest",
	Short: "Run one backtest from a strategy graph file",
	Run:   runBacktestCmd,
}

func init() {
	backtestCmd.Flags().StringVarP(&backtestGraphPath, "graph", "g", "", "path to a strategy graph JSON file (required)")
	backtestCmd.Flags().StringVarP(&backtestSymbol, "symbol", "s", "", "ticker symbol (required)")
	backtestCmd.Flags().StringVarP(&backtestRange, "range", "r", "", "lookback range, e.g. 6m or 1y")
	backtestCmd.Flags().Float64VarP(&backtestCapital, "capital", "c", 0, "initial capital")
	backtestCmd.Flags().StringVarP(&backtestField, "price-field", "f", "close", "price field used for trades (open|high|low|close)")
	_ = backtestCmd.MarkFlagRequired("graph")
	_ = backtestCmd.MarkFlagRequired("symbol")
}

func runBacktestCmd(cmd *cobra.Command, args []string) {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	appLog, err := logger.New(cfg.Log.Level, cfg.Log.Encoding)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}

	raw, err := os.ReadFile(backtestGraphPath)
	if err != nil {
		log.Fatalf("Failed to read graph file: %v", err)
	}

	var graph dto.StrategyGraph
	if err := json.Unmarshal(raw, &graph); err != nil {
		log.Fatalf("Failed to parse graph file: %v", err)
	}

	if backtestCapital == 0 {
		backtestCapital = cfg.Backtest.InitialCapital
	}

	inmemoryCache := cache.NewCache(cfg.Cache.DefaultExpiration, cfg.Cache.CleanupInterval)
	priceDataRepo := repository.NewYahooFinanceRepository(cfg, appLog, inmemoryCache)

	// No database in one-shot mode: strategy lookup and run persistence are
	// disabled.
	backtestService := service.NewBacktestService(cfg, appLog, nil, nil, priceDataRepo)

	result, err := backtestService.RunBacktest(ctx, dto.BacktestRequest{
		Symbol:         backtestSymbol,
		Range:          backtestRange,
		InitialCapital: backtestCapital,
		PriceField:     dto.PriceField(backtestField),
		Graph:          &graph,
	})
	if err != nil {
		log.Fatalf("Backtest failed: %v", err)
	}

	out, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		log.Fatalf("Failed to marshal result: %v", err)
	}
	fmt.Println(string(out))
}
