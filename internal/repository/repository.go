package repository

import (
	"block-backtest/config"
	"block-backtest/pkg/cache"
	"block-backtest/pkg/logger"

	"gorm.io/gorm"
)

type Repository struct {
	StrategyRepo    StrategyRepository
	BacktestRunRepo BacktestRunRepository
	PriceDataRepo   PriceDataRepository
}

func NewRepository(cfg *config.Config, inmemoryCache cache.Cache, db *gorm.DB, log *logger.Logger) (*Repository, error) {
	return &Repository{
		StrategyRepo:    NewStrategyRepository(db),
		BacktestRunRepo: NewBacktestRunRepository(db),
		PriceDataRepo:   NewYahooFinanceRepository(cfg, log, inmemoryCache),
	}, nil
}
