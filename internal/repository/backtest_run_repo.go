package repository

import (
	"context"

	"block-backtest/internal/model"

	"gorm.io/gorm"
)

type BacktestRunRepository interface {
	Create(ctx context.Context, run *model.BacktestRun) error
	FindByStrategyID(ctx context.Context, strategyID uint, limit int) ([]model.BacktestRun, error)
}

type backtestRunRepository struct {
	db *gorm.DB
}

func NewBacktestRunRepository(db *gorm.DB) BacktestRunRepository {
	return &backtestRunRepository{db: db}
}

func (r *backtestRunRepository) Create(ctx context.Context, run *model.BacktestRun) error {
	return r.db.WithContext(ctx).Create(run).Error
}

func (r *backtestRunRepository) FindByStrategyID(ctx context.Context, strategyID uint, limit int) ([]model.BacktestRun, error) {
	query := r.db.WithContext(ctx).Where("strategy_id = ?", strategyID).Order("created_at DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}

	var runs []model.BacktestRun
	if err := query.Find(&runs).Error; err != nil {
		return nil, err
	}
	return runs, nil
}
