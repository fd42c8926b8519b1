package check

import (
	"fmt"
	"sync/atomic"
)

// IDGenerator issues run identifiers unique within a process.
type IDGenerator struct {
	prefix  string
	counter uint64
}

func NewIDGenerator(prefix string) *IDGenerator {
	return &IDGenerator{prefix: prefix}
}

func (g *IDGenerator) Next() string {
	n := atomic.AddUint64(&g.counter, 1)
	return fmt.Sprintf("%s-run-%d", g.prefix, n)
}
