package service

import (
	"block-backtest/config"
	"block-backtest/internal/repository"
	"block-backtest/pkg/logger"
)

type Service struct {
	BacktestService  BacktestService
	StrategyService  StrategyService
	SchedulerService SchedulerService
}

func NewService(
	cfg *config.Config,
	log *logger.Logger,
	repo *repository.Repository,
) *Service {
	backtestService := NewBacktestService(cfg, log, repo.StrategyRepo, repo.BacktestRunRepo, repo.PriceDataRepo)
	strategyService := NewStrategyService(log, repo.StrategyRepo, repo.BacktestRunRepo)
	schedulerService := NewSchedulerService(cfg, log, repo.StrategyRepo, backtestService)

	return &Service{
		BacktestService:  backtestService,
		StrategyService:  strategyService,
		SchedulerService: schedulerService,
	}
}
