package engine

import (
	"context"
	"errors"

	"block-backtest/internal/dto"
	"block-backtest/pkg/logger"
)

// ErrNoData marks a run that cannot start because the price series is empty.
var ErrNoData = errors.New("no data available for the requested range")

// Default protective exit thresholds, applied only when a graph defines no
// exit candidates at all.
const (
	defaultStopLossRatio   = 0.95
	defaultTakeProfitRatio = 1.20
)

// Simulator drives one backtest run: for each bar it consults the evaluation
// engine to decide entry/exit, updates the single-position portfolio, and
// appends trades. It owns the portfolio state and trade ledger exclusively;
// the graph and price series are borrowed read-only.
type Simulator struct {
	log            *logger.Logger
	graph          *Graph
	series         []dto.PriceBar
	initialCapital float64
	priceField     dto.PriceField
}

// NewSimulator prepares a run over the given series. priceField defaults to
// close and is used consistently for both entries and exits.
func NewSimulator(log *logger.Logger, graph *Graph, series []dto.PriceBar, initialCapital float64, priceField dto.PriceField) *Simulator {
	if priceField == "" {
		priceField = dto.PriceFieldClose
	}
	return &Simulator{
		log:            log,
		graph:          graph,
		series:         series,
		initialCapital: initialCapital,
		priceField:     priceField,
	}
}

// portfolio is the single-position capital state: fully invested or flat,
// except transiently inside one bar's transition.
type portfolio struct {
	cash       float64
	unitsHeld  float64
	entryPrice float64
}

// Run walks the series one bar at a time in ascending date order and returns
// the resulting trade ledger and summary. Bars are strictly sequential:
// every transition depends on the outcome of all earlier bars. The context
// is used for logging only; the loop itself has no blocking calls.
func (s *Simulator) Run(ctx context.Context) (*dto.BacktestResult, error) {
	if len(s.series) == 0 {
		return nil, ErrNoData
	}

	candidates := Resolve(s.graph)
	warnings := newWarningSet(candidates.Warnings)

	port := portfolio{cash: s.initialCapital}
	var trades []dto.Trade

	for i, bar := range s.series {
		ec := NewEvalContext(s.log, s.graph, s.series, i)
		price := s.priceField.FromBar(bar)

		if port.unitsHeld == 0 {
			// Flat: first entry candidate that fires buys the entire
			// cash balance. At most one transition per bar.
			for _, id := range candidates.Entries {
				if !ec.Evaluate(id).Truthy() {
					continue
				}
				port.unitsHeld = port.cash / price
				port.entryPrice = price
				port.cash = 0
				trades = append(trades, dto.Trade{Date: bar.Date, Action: dto.TradeActionBuy, Price: price})
				break
			}
		} else {
			exit := false
			if len(candidates.Exits) > 0 {
				for _, id := range candidates.Exits {
					if ec.Evaluate(id).Truthy() {
						exit = true
						break
					}
				}
			} else {
				exit = price < port.entryPrice*defaultStopLossRatio ||
					price > port.entryPrice*defaultTakeProfitRatio
			}
			if exit {
				port.cash = port.unitsHeld * price
				port.unitsHeld = 0
				trades = append(trades, dto.Trade{Date: bar.Date, Action: dto.TradeActionSell, Price: price})
			}
		}

		warnings.addAll(ec.warnings)
	}

	// The run never ends holding an open position.
	if port.unitsHeld > 0 {
		last := s.series[len(s.series)-1]
		price := s.priceField.FromBar(last)
		port.cash = port.unitsHeld * price
		port.unitsHeld = 0
		trades = append(trades, dto.Trade{Date: last.Date, Action: dto.TradeActionSell, Price: price})
	}

	result := summarize(s.initialCapital, port.cash, s.series, trades, warnings.list)

	s.log.InfoContext(ctx, "backtest simulation completed",
		logger.IntField("bars", len(s.series)),
		logger.IntField("trades", len(trades)),
		logger.Float64Field("final_capital", result.FinalCapital),
	)
	return result, nil
}
