package scene

import "sync"

// Handle identifies a scene node without owning it.
type Handle string

// Registry resolves handles to the node's current transform. Cameras keep
// handles to their look-at target and hook parent and resolve them on
// every use, so a removed node simply stops resolving.
type Registry interface {
	Lookup(h Handle) (Transform, bool)
}

// Graph is an in-memory Registry. Hosts that own a real scene graph
// implement Registry directly; Graph backs tools and tests.
type Graph struct {
	mu    sync.RWMutex
	nodes map[Handle]Transform
}

func NewGraph() *Graph {
	return &Graph{nodes: make(map[Handle]Transform)}
}

// Set places or moves a node.
func (g *Graph) Set(h Handle, t Transform) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.nodes[h] = t
}

func (g *Graph) Remove(h Handle) {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.nodes, h)
}

func (g *Graph) Lookup(h Handle) (Transform, bool) {
	if h == "" {
		return Transform{}, false
	}
	g.mu.RLock()
	defer g.mu.RUnlock()
	t, ok := g.nodes[h]
	return t, ok
}

// Handles lists the registered nodes in no particular order.
func (g *Graph) Handles() []Handle {
	g.mu.RLock()
	defer g.mu.RUnlock()
	out := make([]Handle, 0, len(g.nodes))
	for h := range g.nodes {
		out = append(out, h)
	}
	return out
}
