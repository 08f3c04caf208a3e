package repository

import (
	"context"

	"block-backtest/internal/model"

	"gorm.io/gorm"
)

type StrategyRepository interface {
	Create(ctx context.Context, strategy *model.Strategy) error
	Update(ctx context.Context, strategy *model.Strategy) error
	GetByID(ctx context.Context, id uint) (*model.Strategy, error)
	Find(ctx context.Context, param model.GetStrategiesParam) ([]model.Strategy, error)
	Delete(ctx context.Context, id uint) error
}

type strategyRepository struct {
	db *gorm.DB
}

func NewStrategyRepository(db *gorm.DB) StrategyRepository {
	return &strategyRepository{db: db}
}

func (r *strategyRepository) Create(ctx context.Context, strategy *model.Strategy) error {
	return r.db.WithContext(ctx).Create(strategy).Error
}

func (r *strategyRepository) Update(ctx context.Context, strategy *model.Strategy) error {
	return r.db.WithContext(ctx).Save(strategy).Error
}

func (r *strategyRepository) GetByID(ctx context.Context, id uint) (*model.Strategy, error) {
	var strategy model.Strategy
	if err := r.db.WithContext(ctx).First(&strategy, id).Error; err != nil {
		return nil, err
	}
	return &strategy, nil
}

func (r *strategyRepository) Find(ctx context.Context, param model.GetStrategiesParam) ([]model.Strategy, error) {
	query := r.db.WithContext(ctx)

	if len(param.IDs) > 0 {
		query = query.Where("id IN ?", param.IDs)
	}
	if param.Symbol != "" {
		query = query.Where("symbol = ?", param.Symbol)
	}
	if param.IsActive != nil {
		query = query.Where("is_active = ?", *param.IsActive)
	}

	var strategies []model.Strategy
	if err := query.Order("id ASC").Find(&strategies).Error; err != nil {
		return nil, err
	}
	return strategies, nil
}

func (r *strategyRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&model.Strategy{}, id).Error
}
