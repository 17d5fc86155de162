// Copyright (C) 2020-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package quantumengine

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/semaphore"

	"github.com/sweetmcp/cognitive-core/entanglement"
	"github.com/sweetmcp/cognitive-core/kernel"
	"github.com/sweetmcp/cognitive-core/quantum"
	"github.com/sweetmcp/cognitive-core/quantumconfig"
)

// ActionApplier mechanically applies one action to a classical CodeState,
// mirroring kernel.ApplyAction but left as an interface so the expansion
// engine stays decoupled from any single table.
type ActionApplier func(state kernel.CodeState, action string) kernel.CodeState

// TreeExpansionEngine expands one node at a time under a bounded semaphore
// (golang.org/x/sync/semaphore, mirroring the original's tokio::Semaphore),
// reusing action-slice buffers across expansions to bound allocation.
type TreeExpansionEngine struct {
	cfg       quantumconfig.Config
	phase     quantum.PhaseEvolution
	graph     *entanglement.Graph
	apply     ActionApplier
	sem       *semaphore.Weighted
	idSeq     int
	idMu      sync.Mutex
	actionPool [][]string
	poolMu    sync.Mutex
}

// NewTreeExpansionEngine builds an engine bounded to cfg.MaxQuantumParallel
// concurrent expansions.
func NewTreeExpansionEngine(cfg quantumconfig.Config, graph *entanglement.Graph, apply ActionApplier) *TreeExpansionEngine {
	return &TreeExpansionEngine{
		cfg:   cfg,
		phase: quantum.PhaseEvolution{Rate: cfg.PhaseEvolutionRate},
		graph: graph,
		apply: apply,
		sem:   semaphore.NewWeighted(int64(cfg.MaxQuantumParallel)),
	}
}

// nextID returns a fresh node id from a counter guarded by a mutex, so ids
// stay dense and debuggable rather than random.
func (e *TreeExpansionEngine) nextID(parentID string) string {
	e.idMu.Lock()
	defer e.idMu.Unlock()
	e.idSeq++
	return fmt.Sprintf("%s.%d", parentID, e.idSeq)
}

// borrowActions pops a reusable slice from the pool, or allocates fresh.
func (e *TreeExpansionEngine) borrowActions() []string {
	e.poolMu.Lock()
	defer e.poolMu.Unlock()
	if n := len(e.actionPool); n > 0 {
		actions := e.actionPool[n-1]
		e.actionPool = e.actionPool[:n-1]
		return actions[:0]
	}
	return make([]string, 0, 8)
}

// ReturnActions gives a no-longer-needed action slice back to the pool for
// reuse by the next expansion (bounded to 16 entries, mirroring the
// original's action_pool cap).
func (e *TreeExpansionEngine) ReturnActions(actions []string) {
	if cap(actions) < 8 {
		return
	}
	e.poolMu.Lock()
	defer e.poolMu.Unlock()
	if len(e.actionPool) < 16 {
		e.actionPool = append(e.actionPool, actions[:0])
	}
}

// CandidateActions enumerates the quantum and classical actions available
// from state.
func (e *TreeExpansionEngine) CandidateActions(state kernel.CodeState) []string {
	actions := e.borrowActions()
	actions = append(actions, "quantum_superposition", "quantum_entanglement", "quantum_measurement")
	actions = append(actions, kernel.KnownActionPrefixes[:3]...)
	if state.ComplexityScore > 10.0 {
		actions = append(actions, "simplify_logic")
	}
	return actions
}

// Expand applies action to parent under the expansion semaphore, producing
// a new quantum.Node with an evolved superposition and a decayed,
// phase-rotated amplitude, then attempts entanglement against siblings.
func (e *TreeExpansionEngine) Expand(ctx context.Context, tree map[string]*quantum.Node, parent *quantum.Node, action string) (*quantum.Node, error) {
	if err := e.sem.Acquire(ctx, 1); err != nil {
		return nil, err
	}
	defer e.sem.Release(1)

	newClassical := e.apply(parent.State.Classical, action)

	newSuperposition := parent.State.Superposition.Clone()
	newSuperposition.Evolve(e.phase.Compute(0.1))

	childState := quantum.NodeState{
		Classical:     newClassical,
		Superposition: newSuperposition,
		Phase:         parent.State.Phase + e.cfg.PhaseEvolutionRate,
		Decoherence:   parent.State.Decoherence + 0.01,
	}

	childID := e.nextID(parent.ID)
	child := quantum.NewNode(childID, parent.ID, action, childState, parent.Depth+1)
	child.Amplitude = quantum.ChildAmplitude(parent.Amplitude, action)
	child.UntriedActions = e.CandidateActions(newClassical)

	parent.Children[action] = childID

	e.tryEntangle(tree, child)
	return child, nil
}

// tryEntangle links child to every existing node satisfying the
// expansion-time link policy.
func (e *TreeExpansionEngine) tryEntangle(tree map[string]*quantum.Node, child *quantum.Node) {
	if e.graph == nil {
		return
	}
	for id, other := range tree {
		if id == child.ID {
			continue
		}
		if entanglement.ShouldEntangle(child.Depth, other.Depth, child.State.Decoherence, other.State.Decoherence, e.cfg.DecoherenceThreshold) {
			_ = e.graph.Add(child.ID, id, entanglement.Weak, e.cfg.EntanglementStrength)
		}
	}
}
