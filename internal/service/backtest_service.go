package service

import (
	"context"
	"encoding/json"
	"fmt"

	"block-backtest/config"
	"block-backtest/internal/dto"
	"block-backtest/internal/engine"
	"block-backtest/internal/model"
	"block-backtest/internal/repository"
	"block-backtest/pkg/logger"

	"golang.org/x/sync/errgroup"
	"gorm.io/datatypes"
)

// BacktestService runs strategy graphs against historical price data.
type BacktestService interface {
	RunBacktest(ctx context.Context, req dto.BacktestRequest) (*dto.BacktestResult, error)
	RunBatch(ctx context.Context, reqs []dto.BacktestRequest) ([]*dto.BacktestResult, error)
}

type backtestService struct {
	cfg             *config.Config
	log             *logger.Logger
	strategyRepo    repository.StrategyRepository
	backtestRunRepo repository.BacktestRunRepository
	priceDataRepo   repository.PriceDataRepository
}

func NewBacktestService(
	cfg *config.Config,
	log *logger.Logger,
	strategyRepo repository.StrategyRepository,
	backtestRunRepo repository.BacktestRunRepository,
	priceDataRepo repository.PriceDataRepository,
) BacktestService {
	return &backtestService{
		cfg:             cfg,
		log:             log,
		strategyRepo:    strategyRepo,
		backtestRunRepo: backtestRunRepo,
		priceDataRepo:   priceDataRepo,
	}
}

// RunBacktest fetches the price series, validates the graph, and drives one
// simulation. Fatal conditions (no data, structurally broken graph) abort
// before any bar runs; recoverable anomalies come back as warnings on the
// result.
func (s *backtestService) RunBacktest(ctx context.Context, req dto.BacktestRequest) (*dto.BacktestResult, error) {
	graphDef, strategyID, err := s.resolveGraph(ctx, req)
	if err != nil {
		return nil, err
	}

	rng := req.Range
	if rng == "" {
		rng = s.cfg.Backtest.DefaultRange
	}

	bars, err := s.priceDataRepo.Get(ctx, dto.GetPriceDataParam{
		Symbol:   req.Symbol,
		Range:    rng,
		Interval: s.cfg.Backtest.DefaultInterval,
	})
	if err != nil {
		s.log.ErrorContext(ctx, "Failed to fetch price data for backtest",
			logger.StringField("symbol", req.Symbol),
			logger.StringField("range", rng),
			logger.ErrorField(err))
		return nil, fmt.Errorf("no data available for %s (%s): %w", req.Symbol, rng, err)
	}

	graph, err := engine.NewGraph(*graphDef)
	if err != nil {
		return nil, err
	}

	simulator := engine.NewSimulator(s.log, graph, bars, req.InitialCapital, req.PriceField)
	result, err := simulator.Run(ctx)
	if err != nil {
		return nil, err
	}
	result.Symbol = req.Symbol

	s.persistRun(ctx, strategyID, result)

	return result, nil
}

// RunBatch runs several independent backtests concurrently. Each run owns
// its portfolio state and cache, so runs only share the (read-only) price
// provider. Results come back in request order.
func (s *backtestService) RunBatch(ctx context.Context, reqs []dto.BacktestRequest) ([]*dto.BacktestResult, error) {
	results := make([]*dto.BacktestResult, len(reqs))

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(s.cfg.Backtest.MaxConcurrency)

	for i, req := range reqs {
		i, req := i, req
		g.Go(func() error {
			result, err := s.RunBacktest(gCtx, req)
			if err != nil {
				return fmt.Errorf("backtest %d (%s): %w", i, req.Symbol, err)
			}
			results[i] = result
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// resolveGraph picks the graph from the request: inline, or loaded from a
// persisted strategy.
func (s *backtestService) resolveGraph(ctx context.Context, req dto.BacktestRequest) (*dto.StrategyGraph, *uint, error) {
	if req.Graph != nil {
		return req.Graph, req.StrategyID, nil
	}

	if req.StrategyID == nil {
		return nil, nil, fmt.Errorf("either graph or strategy_id must be provided")
	}

	strategy, err := s.strategyRepo.GetByID(ctx, *req.StrategyID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load strategy %d: %w", *req.StrategyID, err)
	}

	graphDef, err := GraphFromModel(strategy)
	if err != nil {
		return nil, nil, err
	}
	return graphDef, req.StrategyID, nil
}

// persistRun stores the run summary for later comparison. Failures are
// logged, never surfaced: persistence is not part of the simulation result.
func (s *backtestService) persistRun(ctx context.Context, strategyID *uint, result *dto.BacktestResult) {
	if s.backtestRunRepo == nil {
		return
	}

	trades, err := json.Marshal(result.Trades)
	if err != nil {
		s.log.WarnContext(ctx, "Failed to marshal trades for persistence", logger.ErrorField(err))
		return
	}
	warnings, err := json.Marshal(result.Warnings)
	if err != nil {
		s.log.WarnContext(ctx, "Failed to marshal warnings for persistence", logger.ErrorField(err))
		return
	}

	run := &model.BacktestRun{
		StrategyID:         strategyID,
		Symbol:             result.Symbol,
		StartDate:          result.StartDate,
		EndDate:            result.EndDate,
		InitialCapital:     result.InitialCapital,
		FinalCapital:       result.FinalCapital,
		TotalReturnPercent: result.TotalReturnPercent,
		TotalTrades:        result.TotalTrades,
		Trades:             datatypes.JSON(trades),
		Warnings:           datatypes.JSON(warnings),
	}
	if err := s.backtestRunRepo.Create(ctx, run); err != nil {
		s.log.WarnContext(ctx, "Failed to persist backtest run", logger.ErrorField(err))
	}
}

// GraphFromModel deserializes a persisted strategy document into the graph
// the engine consumes.
func GraphFromModel(strategy *model.Strategy) (*dto.StrategyGraph, error) {
	var graph dto.StrategyGraph
	if len(strategy.Blocks) > 0 {
		if err := json.Unmarshal(strategy.Blocks, &graph.Blocks); err != nil {
			return nil, fmt.Errorf("strategy %d has malformed blocks: %w", strategy.ID, err)
		}
	}
	if len(strategy.Connections) > 0 {
		if err := json.Unmarshal(strategy.Connections, &graph.Connections); err != nil {
			return nil, fmt.Errorf("strategy %d has malformed connections: %w", strategy.ID, err)
		}
	}
	return &graph, nil
}
