package dto

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBlockParamAccessors(t *testing.T) {
	block := Block{
		ID:   "b",
		Kind: BlockKindComparison,
		Params: map[string]interface{}{
			"period":   float64(14), // as JSON decoding produces
			"count":    7,
			"operator": ">",
			"enabled":  true,
		},
	}

	period, ok := block.IntParam("period")
	assert.True(t, ok)
	assert.Equal(t, 14, period)

	count, ok := block.FloatParam("count")
	assert.True(t, ok)
	assert.Equal(t, 7.0, count)

	operator, ok := block.StringParam("operator")
	assert.True(t, ok)
	assert.Equal(t, ">", operator)

	enabled, ok := block.BoolParam("enabled")
	assert.True(t, ok)
	assert.True(t, enabled)

	_, ok = block.IntParam("missing")
	assert.False(t, ok)
	_, ok = block.StringParam("period")
	assert.False(t, ok)
}

func TestPriceFieldFromBar(t *testing.T) {
	bar := PriceBar{Open: 1, High: 2, Low: 3, Close: 4}

	assert.Equal(t, 1.0, PriceFieldOpen.FromBar(bar))
	assert.Equal(t, 2.0, PriceFieldHigh.FromBar(bar))
	assert.Equal(t, 3.0, PriceFieldLow.FromBar(bar))
	assert.Equal(t, 4.0, PriceFieldClose.FromBar(bar))
	assert.Equal(t, 4.0, PriceField("").FromBar(bar), "default is close")
}

func TestStrategyGraphJSONRoundTrip(t *testing.T) {
	raw := `{
		"blocks": [
			{"id": "ma", "kind": "moving_average", "params": {"period": 20}},
			{"id": "cmp", "kind": "comparison", "params": {"operator": ">"}}
		],
		"connections": [
			{"source": "ma", "target": "cmp", "target_input_port": "input1"}
		]
	}`

	var graph StrategyGraph
	require.NoError(t, json.Unmarshal([]byte(raw), &graph))

	require.Len(t, graph.Blocks, 2)
	assert.Equal(t, BlockKindMovingAverage, graph.Blocks[0].Kind)
	period, ok := graph.Blocks[0].IntParam("period")
	assert.True(t, ok)
	assert.Equal(t, 20, period)

	require.Len(t, graph.Connections, 1)
	assert.Equal(t, "input1", graph.Connections[0].TargetInputPort)
}
