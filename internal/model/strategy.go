package model

import (
	"time"

	"gorm.io/datatypes"
)

// Strategy is a persisted block-graph strategy document. Blocks and
// Connections hold the graph exactly as the editor produced it; the engine
// deserializes them into dto.StrategyGraph before a run.
type Strategy struct {
	ID             uint           `gorm:"primarykey" json:"id"`
	Name           string         `gorm:"not null" json:"name"`
	Symbol         string         `gorm:"not null" json:"symbol"`
	Blocks         datatypes.JSON `gorm:"type:jsonb" json:"blocks"`
	Connections    datatypes.JSON `gorm:"type:jsonb" json:"connections"`
	InitialCapital float64        `gorm:"not null;default:10000" json:"initial_capital"`
	PriceField     string         `gorm:"not null;default:'close'" json:"price_field"`
	IsActive       bool           `gorm:"not null;default:true" json:"is_active"`
	CreatedAt      time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Strategy) TableName() string {
	return "strategies"
}

type GetStrategiesParam struct {
	IDs      []uint
	Symbol   string
	IsActive *bool
}
