// Copyright (C) 2020-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package entanglement

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGraphAddRejectsSelfLink(t *testing.T) {
	g := New()
	err := g.Add("a", "a", Weak, 0.5)
	assert.ErrorIs(t, err, ErrSelfLink)
}

func TestGraphAddIsSymmetric(t *testing.T) {
	g := New()
	require.NoError(t, g.Add("a", "b", Weak, 0.6))

	assert.True(t, g.Has("a", "b"))
	assert.True(t, g.Has("b", "a"))
	assert.Equal(t, 1, g.EntanglementCount())
}

func TestGraphRemoveClearsBothSides(t *testing.T) {
	g := New()
	require.NoError(t, g.Add("a", "b", Weak, 0.6))
	g.Remove("a", "b")
	assert.False(t, g.Has("a", "b"))
	assert.Equal(t, 0, g.EntanglementCount())
}

func TestGraphRemoveNodeDeregistersAllEdges(t *testing.T) {
	g := New()
	require.NoError(t, g.Add("a", "b", Weak, 0.6))
	require.NoError(t, g.Add("a", "c", Weak, 0.6))
	g.RemoveNode("a")

	assert.Equal(t, 0, g.Degree("b"))
	assert.Equal(t, 0, g.Degree("c"))
	assert.Equal(t, 0, g.EntanglementCount())
}

func TestShouldEntangleRequiresCloseDepthAndCoherence(t *testing.T) {
	assert.True(t, ShouldEntangle(3, 4, 0.1, 0.1, 0.2))
	assert.False(t, ShouldEntangle(3, 10, 0.1, 0.1, 0.2))
	assert.False(t, ShouldEntangle(3, 4, 0.3, 0.1, 0.2))
}

func TestTopologyAnalyzerConnectedStarGraph(t *testing.T) {
	g := New()
	require.NoError(t, g.Add("center", "a", Weak, 0.5))
	require.NoError(t, g.Add("center", "b", Weak, 0.5))
	require.NoError(t, g.Add("center", "c", Weak, 0.5))

	topo := TopologyAnalyzer{}.Analyze(g, []string{"center", "a", "b", "c"})
	assert.True(t, topo.IsConnected)
	assert.Equal(t, 3, topo.MaxDegree)
	assert.Equal(t, 3, topo.TotalEntanglements)
}

func TestTopologyAnalyzerDisconnectedComponents(t *testing.T) {
	g := New()
	require.NoError(t, g.Add("a", "b", Weak, 0.5))
	require.NoError(t, g.Add("c", "d", Weak, 0.5))

	topo := TopologyAnalyzer{}.Analyze(g, []string{"a", "b", "c", "d"})
	assert.False(t, topo.IsConnected)
	assert.Contains(t, topo.OptimizationRecommendations(), "network has disconnected components - create bridge entanglements")
}

func TestTopologyClusteringCoefficientTriangle(t *testing.T) {
	g := New()
	require.NoError(t, g.Add("a", "b", Weak, 0.5))
	require.NoError(t, g.Add("b", "c", Weak, 0.5))
	require.NoError(t, g.Add("a", "c", Weak, 0.5))

	topo := TopologyAnalyzer{}.Analyze(g, []string{"a", "b", "c"})
	assert.Equal(t, 1.0, topo.ClusteringCoefficient)
}

func TestBetweennessCentralityHighForBridgeNode(t *testing.T) {
	g := New()
	require.NoError(t, g.Add("a", "bridge", Weak, 0.5))
	require.NoError(t, g.Add("bridge", "c", Weak, 0.5))

	topo := TopologyAnalyzer{}.Analyze(g, []string{"a", "bridge", "c"})
	assert.True(t, topo.BetweennessCentrality["bridge"] > topo.BetweennessCentrality["a"])
}

func TestQualityAnalyzerBucketsByStrength(t *testing.T) {
	q := QualityAnalyzer{}.Analyze([]float64{0.9, 0.5, 0.1})
	assert.Equal(t, 1, q.StrongCount)
	assert.Equal(t, 1, q.MediumCount)
	assert.Equal(t, 1, q.WeakCount)
}

func TestQualityAnalyzerEmptyIsZeroValue(t *testing.T) {
	q := QualityAnalyzer{}.Analyze(nil)
	assert.Equal(t, 0.0, q.OverallQuality)
}

func TestQualityIsExcellentRequiresStrongDominance(t *testing.T) {
	q := QualityAnalyzer{}.Analyze([]float64{0.9, 0.95, 0.85, 0.1})
	assert.True(t, q.IsExcellent())
}
