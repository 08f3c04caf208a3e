package engine

import "block-backtest/internal/dto"

// summarize derives the final metrics from the trade ledger. Round trips are
// consecutive Buy/Sell pairs; win-rate and profit-factor style stats follow
// from those pairs.
func summarize(initialCapital, finalCapital float64, series []dto.PriceBar, trades []dto.Trade, warnings []string) *dto.BacktestResult {
	result := &dto.BacktestResult{
		StartDate:      series[0].Date,
		EndDate:        series[len(series)-1].Date,
		InitialCapital: initialCapital,
		FinalCapital:   finalCapital,
		Trades:         trades,
		Warnings:       warnings,
	}

	if initialCapital > 0 {
		result.TotalReturnPercent = (finalCapital - initialCapital) / initialCapital * 100
	}

	var entryPrice float64
	open := false
	for _, trade := range trades {
		if trade.Action == dto.TradeActionBuy {
			entryPrice = trade.Price
			open = true
			continue
		}
		if !open {
			continue
		}
		open = false

		pl := trade.Price - entryPrice
		result.TotalTrades++
		if pl > 0 {
			result.WinningTrades++
			result.TotalProfit += pl
		} else {
			result.LosingTrades++
			result.TotalLoss += pl // loss is negative
		}
	}

	if result.TotalTrades > 0 {
		result.WinRate = float64(result.WinningTrades) / float64(result.TotalTrades) * 100
	}
	if result.TotalLoss != 0 {
		result.ProfitFactor = result.TotalProfit / -result.TotalLoss
	}

	return result
}

// warningSet accumulates warnings across resolver, evaluator, and simulator
// while keeping first-seen order and dropping per-bar duplicates.
type warningSet struct {
	seen map[string]struct{}
	list []string
}

func newWarningSet(initial []string) *warningSet {
	w := &warningSet{seen: make(map[string]struct{})}
	w.addAll(initial)
	return w
}

func (w *warningSet) addAll(msgs []string) {
	for _, msg := range msgs {
		if _, ok := w.seen[msg]; ok {
			continue
		}
		w.seen[msg] = struct{}{}
		w.list = append(w.list, msg)
	}
}
