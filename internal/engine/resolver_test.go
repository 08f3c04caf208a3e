package engine

import (
	"testing"

	"block-backtest/internal/dto"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustGraph(t *testing.T, sg dto.StrategyGraph) *Graph {
	t.Helper()
	g, err := NewGraph(sg)
	require.NoError(t, err)
	return g
}

func TestResolve(t *testing.T) {
	t.Run("tagged condition blocks always classify", func(t *testing.T) {
		g := mustGraph(t, dto.StrategyGraph{Blocks: []dto.Block{
			{ID: "in", Kind: dto.BlockKindEntryCondition},
			{ID: "out", Kind: dto.BlockKindExitCondition},
		}})

		c := Resolve(g)
		assert.Equal(t, []string{"in"}, c.Entries)
		assert.Equal(t, []string{"out"}, c.Exits)
		assert.Empty(t, c.Warnings)
	})

	t.Run("terminal comparison defaults to entry", func(t *testing.T) {
		g := mustGraph(t, dto.StrategyGraph{Blocks: []dto.Block{
			{ID: "cmp", Kind: dto.BlockKindComparison},
		}})

		c := Resolve(g)
		assert.Equal(t, []string{"cmp"}, c.Entries)
		assert.Empty(t, c.Exits)
	})

	t.Run("terminal comparison tagged for exit", func(t *testing.T) {
		g := mustGraph(t, dto.StrategyGraph{Blocks: []dto.Block{
			{ID: "entry", Kind: dto.BlockKindComparison},
			{ID: "exit", Kind: dto.BlockKindComparison, Params: map[string]interface{}{"purpose": "exit"}},
		}})

		c := Resolve(g)
		assert.Equal(t, []string{"entry"}, c.Entries)
		assert.Equal(t, []string{"exit"}, c.Exits)
	})

	t.Run("non-terminal comparison is not a candidate", func(t *testing.T) {
		g := mustGraph(t, dto.StrategyGraph{
			Blocks: []dto.Block{
				{ID: "cmp", Kind: dto.BlockKindComparison},
				{ID: "entry", Kind: dto.BlockKindEntryCondition},
			},
			Connections: []dto.Connection{{Source: "cmp", Target: "entry"}},
		})

		c := Resolve(g)
		assert.Equal(t, []string{"entry"}, c.Entries)
	})

	t.Run("falls back to first data block in declaration order", func(t *testing.T) {
		g := mustGraph(t, dto.StrategyGraph{Blocks: []dto.Block{
			{ID: "rsi", Kind: dto.BlockKindRSI, Params: map[string]interface{}{"period": 14}},
			{ID: "ma", Kind: dto.BlockKindMovingAverage, Params: map[string]interface{}{"period": 20}},
		}})

		c := Resolve(g)
		assert.Equal(t, []string{"rsi"}, c.Entries)
		require.NotEmpty(t, c.Warnings)
		assert.Contains(t, c.Warnings[0], "degenerate entry trigger")
	})

	t.Run("synthesizes placeholder entry for empty graph", func(t *testing.T) {
		g := mustGraph(t, dto.StrategyGraph{})

		c := Resolve(g)
		assert.Equal(t, []string{SyntheticEntryID}, c.Entries)

		_, ok := g.Block(SyntheticEntryID)
		assert.True(t, ok, "synthetic block should be evaluable")

		found := false
		for _, w := range c.Warnings {
			if w == "no entry blocks found, using default synthesized price block" {
				found = true
			}
		}
		assert.True(t, found, "expected missing entry blocks warning, got %v", c.Warnings)
	})

	t.Run("warns when no exit candidates exist", func(t *testing.T) {
		g := mustGraph(t, dto.StrategyGraph{Blocks: []dto.Block{
			{ID: "cmp", Kind: dto.BlockKindComparison},
		}})

		c := Resolve(g)
		require.NotEmpty(t, c.Warnings)
		assert.Contains(t, c.Warnings[0], "default stop-loss/take-profit")
	})
}
