package testfixtures

import (
	"fmt"
	"sync"
)

// IDGenerator hands out predictable identifiers such as session-1,
// session-2 in place of the UUIDs the server generates, so assertions can
// name records directly.
type IDGenerator struct {
	mu      sync.Mutex
	prefix  string
	counter uint64
}

// NewIDGenerator builds a generator for <prefix>-<n> identifiers. An empty
// prefix becomes "id".
func NewIDGenerator(prefix string) *IDGenerator {
	if prefix == "" {
		prefix = "id"
	}
	return &IDGenerator{prefix: prefix}
}

// Next returns the next identifier in the sequence.
func (g *IDGenerator) Next() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.counter++
	return fmt.Sprintf("%s-%d", g.prefix, g.counter)
}

// NextFunc adapts the generator to the id-func the services take. A nil
// generator yields empty identifiers.
func (g *IDGenerator) NextFunc() func() string {
	if g == nil {
		return func() string { return "" }
	}
	return g.Next
}

// Reset restarts the sequence at one. A non-empty prefix also replaces the
// current one.
func (g *IDGenerator) Reset(prefix string) {
	g.mu.Lock()
	g.counter = 0
	if prefix != "" {
		g.prefix = prefix
	}
	g.mu.Unlock()
}
