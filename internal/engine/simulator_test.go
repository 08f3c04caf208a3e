package engine

import (
	"context"
	"strings"
	"testing"

	"block-backtest/internal/dto"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// crossoverGraph builds the canonical MA-crossover strategy: fast MA above
// slow MA enters, fast MA below slow MA exits.
func crossoverGraph(t *testing.T) *Graph {
	t.Helper()
	return mustGraph(t, dto.StrategyGraph{
		Blocks: []dto.Block{
			{ID: "ma_fast", Kind: dto.BlockKindMovingAverage, Params: map[string]interface{}{"period": 5}},
			{ID: "ma_slow", Kind: dto.BlockKindMovingAverage, Params: map[string]interface{}{"period": 20}},
			{ID: "entry_cmp", Kind: dto.BlockKindComparison, Params: map[string]interface{}{"operator": ">"}},
			{ID: "exit_cmp", Kind: dto.BlockKindComparison, Params: map[string]interface{}{"operator": "<", "purpose": "exit"}},
		},
		Connections: []dto.Connection{
			{Source: "ma_fast", Target: "entry_cmp", TargetInputPort: "input1"},
			{Source: "ma_slow", Target: "entry_cmp", TargetInputPort: "input2"},
			{Source: "ma_fast", Target: "exit_cmp", TargetInputPort: "input1"},
			{Source: "ma_slow", Target: "exit_cmp", TargetInputPort: "input2"},
		},
	})
}

func risingSeries(n int) []dto.PriceBar {
	closes := make([]float64, n)
	for i := range closes {
		closes[i] = 100 + float64(i)
	}
	return barSeries(closes...)
}

func TestSimulatorMACrossover(t *testing.T) {
	log := testLogger(t)
	series := risingSeries(40)

	sim := NewSimulator(log, crossoverGraph(t), series, 10000, dto.PriceFieldClose)
	result, err := sim.Run(context.Background())
	require.NoError(t, err)

	// Monotonically rising prices: one early buy, held to the forced
	// liquidation on the last bar.
	require.Len(t, result.Trades, 2)
	assert.Equal(t, dto.TradeActionBuy, result.Trades[0].Action)
	assert.Equal(t, dto.TradeActionSell, result.Trades[1].Action)
	assert.Equal(t, series[len(series)-1].Date, result.Trades[1].Date)
	assert.Greater(t, result.FinalCapital, 10000.0)
	assert.Greater(t, result.TotalReturnPercent, 0.0)
	assert.Equal(t, 1, result.TotalTrades)
	assert.Equal(t, 1, result.WinningTrades)
	assert.Equal(t, float64(100), result.WinRate)
}

func TestSimulatorDeterminism(t *testing.T) {
	log := testLogger(t)
	series := risingSeries(40)

	run := func() *dto.BacktestResult {
		sim := NewSimulator(log, crossoverGraph(t), series, 10000, dto.PriceFieldClose)
		result, err := sim.Run(context.Background())
		require.NoError(t, err)
		return result
	}

	assert.Equal(t, run(), run())
}

func TestSimulatorSinglePositionInvariant(t *testing.T) {
	log := testLogger(t)
	series := risingSeries(40)

	sim := NewSimulator(log, crossoverGraph(t), series, 10000, dto.PriceFieldClose)
	result, err := sim.Run(context.Background())
	require.NoError(t, err)

	// At any prefix of the ledger, buys minus sells is 0 or 1, and the run
	// ends flat.
	open := 0
	for _, trade := range result.Trades {
		if trade.Action == dto.TradeActionBuy {
			open++
		} else {
			open--
		}
		assert.GreaterOrEqual(t, open, 0)
		assert.LessOrEqual(t, open, 1)
	}
	assert.Equal(t, 0, open, "run must end flat")
}

func TestSimulatorEmptyGraph(t *testing.T) {
	log := testLogger(t)
	series := barSeries(100, 100, 100)

	g := mustGraph(t, dto.StrategyGraph{})
	sim := NewSimulator(log, g, series, 10000, "")
	result, err := sim.Run(context.Background())
	require.NoError(t, err)

	// Synthesized price entry fires immediately; flat prices never trip the
	// default stop-loss/take-profit, so the forced terminal sell closes it.
	require.Len(t, result.Trades, 2)
	assert.Equal(t, dto.TradeActionBuy, result.Trades[0].Action)
	assert.Equal(t, dto.TradeActionSell, result.Trades[1].Action)
	assert.InDelta(t, 10000, result.FinalCapital, 1e-9)

	found := false
	for _, w := range result.Warnings {
		if strings.Contains(w, "no entry blocks found") {
			found = true
		}
	}
	assert.True(t, found, "expected missing blocks warning, got %v", result.Warnings)
}

func TestSimulatorNoData(t *testing.T) {
	log := testLogger(t)
	g := mustGraph(t, dto.StrategyGraph{})

	sim := NewSimulator(log, g, nil, 10000, dto.PriceFieldClose)
	result, err := sim.Run(context.Background())

	assert.Nil(t, result)
	assert.ErrorIs(t, err, ErrNoData)
}

func TestSimulatorDefaultProtectiveExit(t *testing.T) {
	log := testLogger(t)

	t.Run("stop loss", func(t *testing.T) {
		// Entry at 100 on the first bar, then a drop below 95.
		series := barSeries(100, 99, 94, 94, 94)
		g := mustGraph(t, dto.StrategyGraph{Blocks: []dto.Block{
			{ID: "price", Kind: dto.BlockKindMarketData},
		}})

		sim := NewSimulator(log, g, series, 10000, dto.PriceFieldClose)
		result, err := sim.Run(context.Background())
		require.NoError(t, err)

		require.NotEmpty(t, result.Trades)
		assert.Equal(t, dto.TradeActionBuy, result.Trades[0].Action)
		require.GreaterOrEqual(t, len(result.Trades), 2)
		assert.Equal(t, dto.TradeActionSell, result.Trades[1].Action)
		assert.Equal(t, float64(94), result.Trades[1].Price)
		assert.Equal(t, series[2].Date, result.Trades[1].Date, "stop loss must fire on the first bar below 95")
	})

	t.Run("take profit", func(t *testing.T) {
		// Entry at 100, take profit above 120.
		series := barSeries(100, 110, 121, 121)
		g := mustGraph(t, dto.StrategyGraph{Blocks: []dto.Block{
			{ID: "price", Kind: dto.BlockKindMarketData},
		}})

		sim := NewSimulator(log, g, series, 10000, dto.PriceFieldClose)
		result, err := sim.Run(context.Background())
		require.NoError(t, err)

		require.GreaterOrEqual(t, len(result.Trades), 2)
		assert.Equal(t, dto.TradeActionSell, result.Trades[1].Action)
		assert.Equal(t, float64(121), result.Trades[1].Price)
		assert.Equal(t, series[2].Date, result.Trades[1].Date)
	})
}

func TestSimulatorTradePriceField(t *testing.T) {
	log := testLogger(t)
	series := risingSeries(40)

	sim := NewSimulator(log, crossoverGraph(t), series, 10000, dto.PriceFieldOpen)
	result, err := sim.Run(context.Background())
	require.NoError(t, err)

	// barSeries sets open = close - 1; both trades must use the open.
	require.Len(t, result.Trades, 2)
	for _, trade := range result.Trades {
		for _, bar := range series {
			if bar.Date.Equal(trade.Date) {
				assert.Equal(t, bar.Open, trade.Price)
			}
		}
	}
}
