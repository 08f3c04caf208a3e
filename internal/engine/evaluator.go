package engine

import (
	"fmt"
	"math"

	"block-backtest/internal/dto"
	"block-backtest/internal/indicator"
	"block-backtest/pkg/logger"
)

// comparisonEpsilon is the tolerance used by the "==" operator.
const comparisonEpsilon = 1e-5

// Value is the result of evaluating one block at one bar. Fallback is set
// when the block could not be meaningfully evaluated and a documented
// neutral value was substituted; Reason says why. Making fallbacks explicit
// here keeps them visible to callers and testable instead of being silent
// defaults.
type Value struct {
	Num      float64
	Bool     bool
	IsBool   bool
	Fallback bool
	Reason   string
}

// Truthy reports whether the value triggers a condition: boolean values by
// themselves, numeric values when non-zero (the degenerate-entry case).
func (v Value) Truthy() bool {
	if v.IsBool {
		return v.Bool
	}
	return v.Num != 0
}

// AsNum coerces the value to a number for use as a comparison operand.
func (v Value) AsNum() float64 {
	if v.IsBool {
		if v.Bool {
			return 1
		}
		return 0
	}
	return v.Num
}

func numValue(f float64) Value { return Value{Num: f} }

func boolValue(b bool) Value { return Value{Bool: b, IsBool: true} }

func fallbackNum(f float64, reason string) Value {
	return Value{Num: f, Fallback: true, Reason: reason}
}

func fallbackBool(reason string) Value {
	return Value{IsBool: true, Fallback: true, Reason: reason}
}

// EvalContext is the per-bar evaluation scope: the price window from series
// start through the current bar, plus the memoization cache. A fresh context
// is created for every bar, so cached values never leak across bars.
type EvalContext struct {
	log      *logger.Logger
	graph    *Graph
	barIndex int
	window   []dto.PriceBar
	bar      dto.PriceBar
	closes   []float64

	cache    map[string]Value
	stack    map[string]bool
	warnings []string

	indicatorCalls int
}

// NewEvalContext builds the evaluation scope for one bar. barIndex must be a
// valid index into series.
func NewEvalContext(log *logger.Logger, graph *Graph, series []dto.PriceBar, barIndex int) *EvalContext {
	window := series[:barIndex+1]
	closes := make([]float64, len(window))
	for i, b := range window {
		closes[i] = b.Close
	}

	return &EvalContext{
		log:      log,
		graph:    graph,
		barIndex: barIndex,
		window:   window,
		bar:      series[barIndex],
		closes:   closes,
		cache:    make(map[string]Value),
		stack:    make(map[string]bool),
	}
}

// Evaluate resolves the value of a block at the context's bar, recursively
// evaluating upstream blocks as needed. Results are memoized per block for
// the lifetime of the context, so each node is computed at most once per bar
// regardless of fan-in. A malformed node degrades to a fallback value; it
// never aborts the bar.
func (c *EvalContext) Evaluate(blockID string) Value {
	if v, ok := c.cache[blockID]; ok {
		return v
	}

	if c.stack[blockID] {
		// Revisiting a node already on the recursion stack means the
		// graph has a cycle through this node. Not cached: the outer
		// in-progress evaluation will store the final value.
		return c.warnValue(fallbackBool(fmt.Sprintf("cycle detected at block %q", blockID)))
	}

	block, ok := c.graph.Block(blockID)
	if !ok {
		return c.warnValue(fallbackBool(fmt.Sprintf("block %q does not exist", blockID)))
	}

	c.stack[blockID] = true
	v := c.compute(block)
	delete(c.stack, blockID)

	if v.Fallback {
		c.warn(fmt.Sprintf("block %q: %s", blockID, v.Reason))
	}

	c.cache[blockID] = v
	return v
}

func (c *EvalContext) compute(b dto.Block) Value {
	switch b.Kind {
	case dto.BlockKindMarketData:
		field, _ := b.StringParam("field")
		return numValue(dto.PriceField(field).FromBar(c.bar))

	case dto.BlockKindMovingAverage:
		period, ok := b.IntParam("period")
		if !ok || period <= 0 {
			return fallbackNum(c.bar.Close, "invalid moving average period, using current close")
		}
		c.indicatorCalls++
		return numValue(indicator.SimpleMovingAverage(c.closes, period))

	case dto.BlockKindRSI:
		period, ok := b.IntParam("period")
		if !ok || period <= 0 {
			return fallbackNum(50, "invalid RSI period, using neutral value 50")
		}
		c.indicatorCalls++
		return numValue(indicator.RSI(c.closes, c.barIndex, period))

	case dto.BlockKindBollingerBands:
		return c.computeBollinger(b)

	case dto.BlockKindComparison:
		return c.computeComparison(b)

	case dto.BlockKindEntryCondition, dto.BlockKindExitCondition, dto.BlockKindTradeSignal:
		return c.computeCondition(b)

	default:
		return fallbackBool(fmt.Sprintf("unrecognized block kind %q", b.Kind))
	}
}

func (c *EvalContext) computeBollinger(b dto.Block) Value {
	period, ok := b.IntParam("period")
	if !ok || period <= 0 {
		return fallbackNum(c.bar.Close, "invalid bollinger period, using current close")
	}

	width, ok := b.FloatParam("width")
	if !ok || width <= 0 {
		width = 2
	}

	c.indicatorCalls++
	bands := indicator.BollingerBands(c.closes, period, width)

	band, _ := b.StringParam("band")
	switch band {
	case "upper":
		return numValue(bands.Upper)
	case "lower":
		return numValue(bands.Lower)
	default:
		return numValue(bands.Middle)
	}
}

// computeComparison resolves both operands either from literal value1/value2
// parameters (when both are present) or from incoming connections feeding
// the input1/input2 ports, then applies the configured operator.
func (c *EvalContext) computeComparison(b dto.Block) Value {
	var left, right float64
	var haveLeft, haveRight bool

	v1, ok1 := b.FloatParam("value1")
	v2, ok2 := b.FloatParam("value2")
	if ok1 && ok2 {
		left, right = v1, v2
		haveLeft, haveRight = true, true
	} else {
		for _, conn := range c.graph.Incoming(b.ID) {
			switch conn.TargetInputPort {
			case "input1":
				left = c.Evaluate(conn.Source).AsNum()
				haveLeft = true
			case "input2":
				right = c.Evaluate(conn.Source).AsNum()
				haveRight = true
			default:
				// Unnamed ports fill operands in connection order.
				if !haveLeft {
					left = c.Evaluate(conn.Source).AsNum()
					haveLeft = true
				} else if !haveRight {
					right = c.Evaluate(conn.Source).AsNum()
					haveRight = true
				}
			}
		}
	}

	if !haveLeft || !haveRight {
		return fallbackBool("comparison is missing an operand")
	}

	operator, _ := b.StringParam("operator")
	switch operator {
	case ">":
		return boolValue(left > right)
	case "<":
		return boolValue(left < right)
	case ">=":
		return boolValue(left >= right)
	case "<=":
		return boolValue(left <= right)
	case "==":
		return boolValue(math.Abs(left-right) <= comparisonEpsilon)
	default:
		return fallbackBool(fmt.Sprintf("unknown comparison operator %q", operator))
	}
}

// computeCondition ORs the boolean results of every block wired into the
// condition. A condition with no incoming connections is false.
func (c *EvalContext) computeCondition(b dto.Block) Value {
	result := false
	for _, conn := range c.graph.Incoming(b.ID) {
		v := c.Evaluate(conn.Source)
		if v.IsBool && v.Bool {
			result = true
		}
	}
	return boolValue(result)
}

func (c *EvalContext) warn(msg string) {
	c.warnings = append(c.warnings, msg)
	if c.log != nil {
		c.log.Warn("recoverable evaluation anomaly",
			logger.StringField("detail", msg),
			logger.IntField("bar_index", c.barIndex),
		)
	}
}

func (c *EvalContext) warnValue(v Value) Value {
	c.warn(v.Reason)
	return v
}
