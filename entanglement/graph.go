// Copyright (C) 2020-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package entanglement implements the quantum MCTS entanglement overlay
//: a pairwise link graph over node identifiers, plus
// topology and quality analyzers consumed by the quantum engine (C7) and
// benchmarking layer (C9).
package entanglement

import "sync"

// LinkType classifies the strength tier an entanglement was created under.
// The expansion step always creates Weak links (mirroring the original's
// create_entanglement); other values are available for callers that want
// to record a different tier explicitly.
type LinkType int

const (
	Weak LinkType = iota
	Medium
	Strong
)

// Link is one edge of the entanglement graph.
type Link struct {
	Type     LinkType
	Strength float64
}

// Graph is a pairwise, undirected entanglement graph. Every edge is stored
// twice (once from each endpoint's adjacency map) so get_entangled(a) is a
// single map lookup.
type Graph struct {
	mu    sync.RWMutex
	edges map[string]map[string]Link
}

// New returns an empty Graph.
func New() *Graph {
	return &Graph{edges: make(map[string]map[string]Link)}
}

// Add creates or overwrites the entanglement between a and b. Self-links
// are rejected.
func (g *Graph) Add(a, b string, linkType LinkType, strength float64) error {
	if a == b {
		return ErrSelfLink
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	g.link(a, b, Link{Type: linkType, Strength: strength})
	g.link(b, a, Link{Type: linkType, Strength: strength})
	return nil
}

func (g *Graph) link(from, to string, l Link) {
	if g.edges[from] == nil {
		g.edges[from] = make(map[string]Link)
	}
	g.edges[from][to] = l
}

// Remove deletes the entanglement between a and b, if any.
func (g *Graph) Remove(a, b string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.edges[a], b)
	delete(g.edges[b], a)
}

// RemoveNode deletes every entanglement incident to id — used when a node
// is pruned from the search tree, so its edges don't linger as dangling
// references.
func (g *Graph) RemoveNode(id string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	for other := range g.edges[id] {
		delete(g.edges[other], id)
	}
	delete(g.edges, id)
}

// EntangledNeighbor is one (node, strength) pair returned by GetEntangled.
type EntangledNeighbor struct {
	NodeID   string
	Strength float64
}

// GetEntangled returns every node entangled with a, in no particular order.
func (g *Graph) GetEntangled(a string) []EntangledNeighbor {
	g.mu.RLock()
	defer g.mu.RUnlock()
	neighbors := make([]EntangledNeighbor, 0, len(g.edges[a]))
	for other, link := range g.edges[a] {
		neighbors = append(neighbors, EntangledNeighbor{NodeID: other, Strength: link.Strength})
	}
	return neighbors
}

// Has reports whether a and b are entangled.
func (g *Graph) Has(a, b string) bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	_, ok := g.edges[a][b]
	return ok
}

// EntanglementCount returns the total number of distinct edges (each
// undirected pair counted once).
func (g *Graph) EntanglementCount() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	count := 0
	for node, neighbors := range g.edges {
		for other := range neighbors {
			if node < other {
				count++
			}
		}
	}
	return count
}

// Nodes returns every node id that participates in at least one edge.
func (g *Graph) Nodes() []string {
	g.mu.RLock()
	defer g.mu.RUnlock()
	nodes := make([]string, 0, len(g.edges))
	for node, neighbors := range g.edges {
		if len(neighbors) > 0 {
			nodes = append(nodes, node)
		}
	}
	return nodes
}

// Strengths returns the strength of every edge currently in the graph,
// each counted once, for consumption by the quality analyzer.
func (g *Graph) Strengths() []float64 {
	g.mu.RLock()
	defer g.mu.RUnlock()
	strengths := make([]float64, 0, len(g.edges))
	for node, neighbors := range g.edges {
		for other, link := range neighbors {
			if node < other {
				strengths = append(strengths, link.Strength)
			}
		}
	}
	return strengths
}

// Degree returns the number of nodes entangled with id.
func (g *Graph) Degree(id string) int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.edges[id])
}

// ShouldEntangle implements the expansion-time link policy: two nodes
// entangle when their depths differ by at most one and both sit below the
// decoherence threshold.
func ShouldEntangle(depthA, depthB uint16, decoherenceA, decoherenceB, threshold float64) bool {
	depthDiff := int(depthA) - int(depthB)
	if depthDiff < 0 {
		depthDiff = -depthDiff
	}
	return depthDiff <= 1 && decoherenceA < threshold && decoherenceB < threshold
}
