package dto

import "time"

// PriceField selects which OHLC component prices are read from, both for
// market-data blocks without an explicit field and for trade execution.
type PriceField string

const (
	PriceFieldOpen  PriceField = "open"
	PriceFieldHigh  PriceField = "high"
	PriceFieldLow   PriceField = "low"
	PriceFieldClose PriceField = "close"
)

// FromBar reads the selected component of a bar, defaulting to close.
func (f PriceField) FromBar(bar PriceBar) float64 {
	switch f {
	case PriceFieldOpen:
		return bar.Open
	case PriceFieldHigh:
		return bar.High
	case PriceFieldLow:
		return bar.Low
	default:
		return bar.Close
	}
}

type TradeAction string

const (
	TradeActionBuy  TradeAction = "BUY"
	TradeActionSell TradeAction = "SELL"
)

// Trade is one ledger entry. The ledger is append-only; entries are never
// mutated after creation.
type Trade struct {
	Date   time.Time   `json:"date"`
	Action TradeAction `json:"action"`
	Price  float64     `json:"price"`
}

// BacktestRequest defines one simulation run. Either StrategyID (a persisted
// strategy) or an inline Graph must be provided.
type BacktestRequest struct {
	Symbol         string         `json:"symbol" validate:"required"`
	Range          string         `json:"range"`
	InitialCapital float64        `json:"initial_capital" validate:"required,gt=0"`
	PriceField     PriceField     `json:"price_field" validate:"omitempty,oneof=open high low close"`
	StrategyID     *uint          `json:"strategy_id"`
	Graph          *StrategyGraph `json:"graph"`
}

// BacktestResult summarizes one finished simulation run. Constructed once at
// the end of a run and immutable thereafter.
type BacktestResult struct {
	Symbol             string    `json:"symbol"`
	StartDate          time.Time `json:"start_date"`
	EndDate            time.Time `json:"end_date"`
	InitialCapital     float64   `json:"initial_capital"`
	FinalCapital       float64   `json:"final_capital"`
	TotalReturnPercent float64   `json:"total_return_percent"`
	Trades             []Trade   `json:"trades"`
	TotalTrades        int       `json:"total_trades"`
	WinningTrades      int       `json:"winning_trades"`
	LosingTrades       int       `json:"losing_trades"`
	WinRate            float64   `json:"win_rate"`
	TotalProfit        float64   `json:"total_profit"`
	TotalLoss          float64   `json:"total_loss"`
	ProfitFactor       float64   `json:"profit_factor"`
	Warnings           []string  `json:"warnings,omitempty"`
}
