package engine

import (
	"testing"

	"block-backtest/internal/dto"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewGraph(t *testing.T) {
	t.Run("zero blocks is valid", func(t *testing.T) {
		g, err := NewGraph(dto.StrategyGraph{})
		require.NoError(t, err)
		assert.Empty(t, g.Blocks())
	})

	t.Run("duplicate block id is fatal", func(t *testing.T) {
		_, err := NewGraph(dto.StrategyGraph{
			Blocks: []dto.Block{
				{ID: "a", Kind: dto.BlockKindMarketData},
				{ID: "a", Kind: dto.BlockKindRSI},
			},
		})
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrInvalidGraph)
		assert.Contains(t, err.Error(), `"a"`)
	})

	t.Run("empty block id is fatal", func(t *testing.T) {
		_, err := NewGraph(dto.StrategyGraph{Blocks: []dto.Block{{Kind: dto.BlockKindMarketData}}})
		assert.ErrorIs(t, err, ErrInvalidGraph)
	})

	t.Run("connection referencing missing block is fatal", func(t *testing.T) {
		_, err := NewGraph(dto.StrategyGraph{
			Blocks:      []dto.Block{{ID: "a", Kind: dto.BlockKindMarketData}},
			Connections: []dto.Connection{{Source: "a", Target: "ghost"}},
		})
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrInvalidGraph)
		assert.Contains(t, err.Error(), `"ghost"`)
	})

	t.Run("indexes incoming and outgoing edges", func(t *testing.T) {
		g, err := NewGraph(dto.StrategyGraph{
			Blocks: []dto.Block{
				{ID: "a", Kind: dto.BlockKindMovingAverage},
				{ID: "b", Kind: dto.BlockKindComparison},
			},
			Connections: []dto.Connection{{Source: "a", Target: "b", TargetInputPort: "input1"}},
		})
		require.NoError(t, err)

		assert.Len(t, g.Outgoing("a"), 1)
		assert.Len(t, g.Incoming("b"), 1)
		assert.Empty(t, g.Incoming("a"))

		block, ok := g.Block("b")
		require.True(t, ok)
		assert.Equal(t, dto.BlockKindComparison, block.Kind)
	})
}
