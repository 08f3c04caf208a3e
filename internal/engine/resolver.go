package engine

import (
	"fmt"

	"block-backtest/internal/dto"
)

// SyntheticEntryID is the id of the placeholder price block synthesized when
// a graph has no usable entry trigger at all.
const SyntheticEntryID = "synthetic-entry"

// Candidates holds the resolver's output: block ids eligible to trigger
// opening or closing a position, in scan order, plus any warnings raised
// while classifying. Resolution runs once per backtest and is reused for
// every bar.
type Candidates struct {
	Entries  []string
	Exits    []string
	Warnings []string
}

// Resolve classifies blocks into entry and exit candidates.
//
// Explicitly tagged entry/exit condition blocks always classify. A terminal
// comparison (no outgoing connections) defaults to an entry trigger unless
// its "purpose" parameter says otherwise; a block never lands in both lists.
// When no entry candidate exists the resolver degrades: first to the first
// data or indicator block in declaration order, then to a synthesized
// close-price block, warning in both cases so the caller knows the graph is
// under-specified.
func Resolve(g *Graph) Candidates {
	var c Candidates

	for _, b := range g.Blocks() {
		switch b.Kind {
		case dto.BlockKindEntryCondition:
			c.Entries = append(c.Entries, b.ID)
		case dto.BlockKindExitCondition:
			c.Exits = append(c.Exits, b.ID)
		case dto.BlockKindComparison:
			if len(g.Outgoing(b.ID)) > 0 {
				continue
			}
			purpose, _ := b.StringParam("purpose")
			if purpose == "exit" {
				c.Exits = append(c.Exits, b.ID)
			} else {
				c.Entries = append(c.Entries, b.ID)
			}
		}
	}

	if len(c.Entries) == 0 {
		if id, ok := firstDataBlock(g); ok {
			c.Entries = append(c.Entries, id)
			c.Warnings = append(c.Warnings, fmt.Sprintf("no entry condition blocks found, using block %q as a degenerate entry trigger", id))
		} else {
			g.addBlock(dto.Block{ID: SyntheticEntryID, Kind: dto.BlockKindMarketData})
			c.Entries = append(c.Entries, SyntheticEntryID)
			c.Warnings = append(c.Warnings, "no entry blocks found, using default synthesized price block")
		}
	}

	if len(c.Exits) == 0 {
		c.Warnings = append(c.Warnings, "no exit blocks found, default stop-loss/take-profit rule applies")
	}

	return c
}

func firstDataBlock(g *Graph) (string, bool) {
	for _, b := range g.Blocks() {
		switch b.Kind {
		case dto.BlockKindMovingAverage, dto.BlockKindMarketData, dto.BlockKindRSI, dto.BlockKindBollingerBands:
			return b.ID, true
		}
	}
	return "", false
}
