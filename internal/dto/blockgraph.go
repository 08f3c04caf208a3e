package dto

// BlockKind identifies how a block's value is computed during evaluation.
type BlockKind string

const (
	BlockKindMarketData     BlockKind = "market_data"
	BlockKindMovingAverage  BlockKind = "moving_average"
	BlockKindRSI            BlockKind = "rsi"
	BlockKindBollingerBands BlockKind = "bollinger_bands"
	BlockKindComparison     BlockKind = "comparison"
	BlockKindEntryCondition BlockKind = "entry_condition"
	BlockKindExitCondition  BlockKind = "exit_condition"
	BlockKindTradeSignal    BlockKind = "trade_signal"
)

// Block is one typed node of a strategy graph. Params carries the
// kind-specific settings (period, field, operator, ...) as loosely typed
// values so graphs survive a round trip through JSON untouched.
type Block struct {
	ID     string                 `json:"id" validate:"required"`
	Kind   BlockKind              `json:"kind" validate:"required"`
	Params map[string]interface{} `json:"params,omitempty"`
}

// Connection is a directed edge between two blocks. Port names are only
// needed when the target has multiple named inputs (e.g. a comparison's
// input1/input2).
type Connection struct {
	Source           string `json:"source" validate:"required"`
	Target           string `json:"target" validate:"required"`
	SourceOutputPort string `json:"source_output_port,omitempty"`
	TargetInputPort  string `json:"target_input_port,omitempty"`
}

// StrategyGraph is a full strategy definition: blocks plus directed,
// optionally port-named connections between them.
type StrategyGraph struct {
	Blocks      []Block      `json:"blocks"`
	Connections []Connection `json:"connections"`
}

// FloatParam returns the named parameter coerced to float64. JSON decoding
// hands us float64 for every number, but graphs built in code may use ints.
func (b Block) FloatParam(key string) (float64, bool) {
	v, ok := b.Params[key]
	if !ok {
		return 0, false
	}
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	}
	return 0, false
}

// IntParam returns the named parameter as an int, accepting JSON numbers.
func (b Block) IntParam(key string) (int, bool) {
	f, ok := b.FloatParam(key)
	if !ok {
		return 0, false
	}
	return int(f), true
}

// StringParam returns the named parameter if it is a string.
func (b Block) StringParam(key string) (string, bool) {
	v, ok := b.Params[key]
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

// BoolParam returns the named parameter if it is a bool.
func (b Block) BoolParam(key string) (bool, bool) {
	v, ok := b.Params[key]
	if !ok {
		return false, false
	}
	t, ok := v.(bool)
	return t, ok
}
