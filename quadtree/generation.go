package quadtree

import "sync/atomic"

// Generation is the epoch counter of the live tree. It is advanced whenever
// the tree is discarded; tiles remember the epoch they were created in.
type Generation struct {
	n atomic.Uint64
}

// Current returns the current epoch.
func (g *Generation) Current() uint64 { return g.n.Load() }

// Advance starts a new epoch and returns it.
func (g *Generation) Advance() uint64 { return g.n.Add(1) }
