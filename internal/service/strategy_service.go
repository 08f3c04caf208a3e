package service

import (
	"context"

	"block-backtest/internal/engine"
	"block-backtest/internal/model"
	"block-backtest/internal/repository"
	"block-backtest/pkg/logger"
)

// StrategyService manages persisted strategy documents. Graphs are
// structurally validated on write so broken documents never reach a
// simulation.
type StrategyService interface {
	Create(ctx context.Context, strategy *model.Strategy) error
	Update(ctx context.Context, strategy *model.Strategy) error
	Get(ctx context.Context, id uint) (*model.Strategy, error)
	List(ctx context.Context, param model.GetStrategiesParam) ([]model.Strategy, error)
	Delete(ctx context.Context, id uint) error
	History(ctx context.Context, id uint, limit int) ([]model.BacktestRun, error)
}

type strategyService struct {
	log             *logger.Logger
	strategyRepo    repository.StrategyRepository
	backtestRunRepo repository.BacktestRunRepository
}

func NewStrategyService(
	log *logger.Logger,
	strategyRepo repository.StrategyRepository,
	backtestRunRepo repository.BacktestRunRepository,
) StrategyService {
	return &strategyService{
		log:             log,
		strategyRepo:    strategyRepo,
		backtestRunRepo: backtestRunRepo,
	}
}

func (s *strategyService) Create(ctx context.Context, strategy *model.Strategy) error {
	if err := validateGraphDocument(strategy); err != nil {
		return err
	}
	return s.strategyRepo.Create(ctx, strategy)
}

func (s *strategyService) Update(ctx context.Context, strategy *model.Strategy) error {
	if err := validateGraphDocument(strategy); err != nil {
		return err
	}
	return s.strategyRepo.Update(ctx, strategy)
}

func (s *strategyService) Get(ctx context.Context, id uint) (*model.Strategy, error) {
	return s.strategyRepo.GetByID(ctx, id)
}

func (s *strategyService) List(ctx context.Context, param model.GetStrategiesParam) ([]model.Strategy, error) {
	return s.strategyRepo.Find(ctx, param)
}

func (s *strategyService) Delete(ctx context.Context, id uint) error {
	return s.strategyRepo.Delete(ctx, id)
}

func (s *strategyService) History(ctx context.Context, id uint, limit int) ([]model.BacktestRun, error) {
	return s.backtestRunRepo.FindByStrategyID(ctx, id, limit)
}

// validateGraphDocument rejects documents whose graph fails the engine's
// structural invariants (duplicate ids, dangling connections).
func validateGraphDocument(strategy *model.Strategy) error {
	graphDef, err := GraphFromModel(strategy)
	if err != nil {
		return err
	}
	_, err = engine.NewGraph(*graphDef)
	return err
}
