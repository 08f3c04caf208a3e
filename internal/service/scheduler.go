package service

import (
	"context"

	"block-backtest/config"
	"block-backtest/internal/dto"
	"block-backtest/internal/model"
	"block-backtest/internal/repository"
	"block-backtest/pkg/logger"
	"block-backtest/pkg/utils"

	"github.com/robfig/cron/v3"
)

// SchedulerService periodically re-runs active persisted strategies against
// fresh price data so their run history stays current.
type SchedulerService interface {
	Start(ctx context.Context) error
	Stop()
	RunActiveStrategies(ctx context.Context)
}

type schedulerService struct {
	cfg             *config.Config
	log             *logger.Logger
	strategyRepo    repository.StrategyRepository
	backtestService BacktestService
	cron            *cron.Cron
	semaphore       chan struct{}
}

func NewSchedulerService(
	cfg *config.Config,
	log *logger.Logger,
	strategyRepo repository.StrategyRepository,
	backtestService BacktestService,
) SchedulerService {
	return &schedulerService{
		cfg:             cfg,
		log:             log,
		strategyRepo:    strategyRepo,
		backtestService: backtestService,
		cron:            cron.New(),
		semaphore:       make(chan struct{}, cfg.Scheduler.MaxConcurrency),
	}
}

func (s *schedulerService) Start(ctx context.Context) error {
	if !s.cfg.Scheduler.Enabled {
		s.log.Info("Scheduler disabled, skipping")
		return nil
	}

	_, err := s.cron.AddFunc(s.cfg.Scheduler.CronSpec, func() {
		s.RunActiveStrategies(ctx)
	})
	if err != nil {
		return err
	}

	s.cron.Start()
	s.log.Info("Scheduler started", logger.StringField("cron_spec", s.cfg.Scheduler.CronSpec))
	return nil
}

func (s *schedulerService) Stop() {
	stopCtx := s.cron.Stop()
	<-stopCtx.Done()
	s.log.Info("Scheduler stopped")
}

// RunActiveStrategies re-runs every active strategy, bounded by the
// configured concurrency.
func (s *schedulerService) RunActiveStrategies(ctx context.Context) {
	runCtx, cancel := context.WithTimeout(ctx, s.cfg.Scheduler.TimeoutDuration)
	defer cancel()

	strategies, err := s.strategyRepo.Find(runCtx, model.GetStrategiesParam{IsActive: utils.ToPointer(true)})
	if err != nil {
		s.log.ErrorContext(runCtx, "Failed to load active strategies", logger.ErrorField(err))
		return
	}

	if len(strategies) == 0 {
		s.log.InfoContext(runCtx, "No active strategies to run")
		return
	}

	s.log.InfoContext(runCtx, "Running scheduled backtests",
		logger.IntField("strategy_count", len(strategies)),
		logger.IntField("max_concurrency", s.cfg.Scheduler.MaxConcurrency),
	)

	for _, strategy := range strategies {
		if !utils.ShouldContinue(runCtx, s.log) {
			return
		}

		s.semaphore <- struct{}{}
		strategy := strategy
		utils.GoSafe(func() {
			defer func() { <-s.semaphore }()

			req := dto.BacktestRequest{
				Symbol:         strategy.Symbol,
				InitialCapital: strategy.InitialCapital,
				PriceField:     dto.PriceField(strategy.PriceField),
				StrategyID:     &strategy.ID,
			}
			if _, err := s.backtestService.RunBacktest(runCtx, req); err != nil {
				s.log.WarnContext(runCtx, "Scheduled backtest failed",
					logger.Field("strategy_id", strategy.ID),
					logger.StringField("symbol", strategy.Symbol),
					logger.ErrorField(err))
			}
		})
	}
}
