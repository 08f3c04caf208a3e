package model

import (
	"time"

	"gorm.io/datatypes"
)

// BacktestRun records the summary of one finished simulation so results can
// be compared across strategy revisions.
type BacktestRun struct {
	ID                 uint           `gorm:"primarykey" json:"id"`
	StrategyID         *uint          `gorm:"null" json:"strategy_id"`
	Symbol             string         `gorm:"not null" json:"symbol"`
	StartDate          time.Time      `gorm:"not null" json:"start_date"`
	EndDate            time.Time      `gorm:"not null" json:"end_date"`
	InitialCapital     float64        `gorm:"not null" json:"initial_capital"`
	FinalCapital       float64        `gorm:"not null" json:"final_capital"`
	TotalReturnPercent float64        `gorm:"not null" json:"total_return_percent"`
	TotalTrades        int            `gorm:"not null" json:"total_trades"`
	Trades             datatypes.JSON `gorm:"type:jsonb" json:"trades"`
	Warnings           datatypes.JSON `gorm:"type:jsonb" json:"warnings"`
	CreatedAt          time.Time      `gorm:"autoCreateTime" json:"created_at"`

	Strategy *Strategy `gorm:"foreignKey:StrategyID" json:"-"`
}

func (BacktestRun) TableName() string {
	return "backtest_runs"
}
