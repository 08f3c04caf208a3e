// Package engine implements the backtest evaluation core: an arena-indexed
// strategy graph, structural entry/exit resolution, per-bar memoized block
// evaluation, and the flat/long simulation state machine.
package engine

import (
	"errors"
	"fmt"

	"block-backtest/internal/dto"
)

// ErrInvalidGraph marks structural graph errors that are fatal before any
// bar runs.
var ErrInvalidGraph = errors.New("invalid strategy graph")

// Graph is a validated, indexed view of one strategy graph. It is built once
// per backtest run and read-only afterwards, except for the synthetic entry
// block the resolver may append.
type Graph struct {
	blocks   []dto.Block
	index    map[string]int
	incoming map[string][]dto.Connection
	outgoing map[string][]dto.Connection
}

// NewGraph validates structural invariants and builds the arena index. A
// graph with zero blocks is valid and simply produces no trades. Duplicate
// block ids and connections referencing missing blocks are fatal.
func NewGraph(sg dto.StrategyGraph) (*Graph, error) {
	g := &Graph{
		index:    make(map[string]int, len(sg.Blocks)),
		incoming: make(map[string][]dto.Connection),
		outgoing: make(map[string][]dto.Connection),
	}

	for _, b := range sg.Blocks {
		if b.ID == "" {
			return nil, fmt.Errorf("%w: block with empty id", ErrInvalidGraph)
		}
		if _, exists := g.index[b.ID]; exists {
			return nil, fmt.Errorf("%w: duplicate block id %q", ErrInvalidGraph, b.ID)
		}
		g.index[b.ID] = len(g.blocks)
		g.blocks = append(g.blocks, b)
	}

	for _, conn := range sg.Connections {
		if _, ok := g.index[conn.Source]; !ok {
			return nil, fmt.Errorf("%w: connection source %q does not exist", ErrInvalidGraph, conn.Source)
		}
		if _, ok := g.index[conn.Target]; !ok {
			return nil, fmt.Errorf("%w: connection target %q does not exist", ErrInvalidGraph, conn.Target)
		}
		g.outgoing[conn.Source] = append(g.outgoing[conn.Source], conn)
		g.incoming[conn.Target] = append(g.incoming[conn.Target], conn)
	}

	return g, nil
}

// Block looks up a block by id.
func (g *Graph) Block(id string) (dto.Block, bool) {
	i, ok := g.index[id]
	if !ok {
		return dto.Block{}, false
	}
	return g.blocks[i], true
}

// Blocks returns all blocks in declaration order.
func (g *Graph) Blocks() []dto.Block {
	return g.blocks
}

// Incoming returns the connections feeding into the given block.
func (g *Graph) Incoming(id string) []dto.Connection {
	return g.incoming[id]
}

// Outgoing returns the connections leaving the given block.
func (g *Graph) Outgoing(id string) []dto.Connection {
	return g.outgoing[id]
}

// addBlock appends a synthesized block. Used only by the resolver when a
// graph has nothing evaluable as an entry trigger.
func (g *Graph) addBlock(b dto.Block) {
	g.index[b.ID] = len(g.blocks)
	g.blocks = append(g.blocks, b)
}
