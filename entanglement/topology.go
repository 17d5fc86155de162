// Copyright (C) 2020-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package entanglement

// Topology is the result of analyzing a Graph's structure over a known
// node population.
type Topology struct {
	TotalNodes            int
	TotalEntanglements    int
	AverageDegree         float64
	MaxDegree             int
	NetworkDensity        float64
	IsConnected           bool
	ClusteringCoefficient float64
	// BetweennessCentrality maps node id to its betweenness centrality
	// score, computed via unweighted BFS shortest-path counting and halved
	// for the undirected graph (not normalized by graph size).
	BetweennessCentrality map[string]float64
}

// HasGoodConnectivity reports whether the network is dense and clustered
// enough to support meaningful quantum-correlation effects.
func (t Topology) HasGoodConnectivity() bool {
	return t.NetworkDensity > 0.1 && t.AverageDegree > 2.0 && t.ClusteringCoefficient > 0.3
}

// IsSparse reports whether the network likely needs more entanglements.
func (t Topology) IsSparse() bool {
	return t.NetworkDensity < 0.05 || t.AverageDegree < 1.0
}

// IsOverlyDense reports whether the network likely needs pruning.
func (t Topology) IsOverlyDense() bool {
	return t.NetworkDensity > 0.8 || t.AverageDegree > 20.0
}

// EfficiencyScore blends density, clustering, and connectivity against
// their quantum-network sweet spots (density 0.3, clustering 0.5).
func (t Topology) EfficiencyScore() float64 {
	if t.TotalNodes <= 1 {
		return 1.0
	}
	const optimalDensity = 0.3
	densityScore := 1.0 - absFloat(t.NetworkDensity-optimalDensity)/optimalDensity

	const optimalClustering = 0.5
	clusteringScore := 1.0 - absFloat(t.ClusteringCoefficient-optimalClustering)/optimalClustering

	connectivityScore := 0.5
	if t.IsConnected {
		connectivityScore = 1.0
	}

	return clamp01(densityScore*0.3 + clusteringScore*0.4 + connectivityScore*0.3)
}

// ResilienceScore estimates how well the network would survive losing a
// handful of its most-connected nodes.
func (t Topology) ResilienceScore() float64 {
	if t.TotalNodes <= 1 {
		return 1.0
	}
	connectivityFactor := 0.0
	if t.IsConnected {
		connectivityFactor = 1.0
	}
	redundancyFactor := minFloat(t.AverageDegree/3.0, 1.0)
	distributionFactor := 1.0 - minFloat(float64(t.MaxDegree)/float64(t.TotalNodes), 1.0)
	clusteringFactor := t.ClusteringCoefficient

	return clamp01(connectivityFactor*0.4 + redundancyFactor*0.3 + distributionFactor*0.2 + clusteringFactor*0.1)
}

// HealthStatus classifies the network from the averaged efficiency and
// resilience scores.
func (t Topology) HealthStatus() HealthStatus {
	overall := (t.EfficiencyScore() + t.ResilienceScore()) / 2.0
	switch {
	case overall >= 0.8:
		return HealthExcellent
	case overall >= 0.6:
		return HealthGood
	case overall >= 0.4:
		return HealthFair
	case overall >= 0.2:
		return HealthPoor
	default:
		return HealthCritical
	}
}

// OptimizationRecommendations lists concrete, actionable topology fixes.
func (t Topology) OptimizationRecommendations() []string {
	var recs []string
	if t.IsSparse() {
		recs = append(recs, "network is too sparse - consider creating more entanglements")
	}
	if t.IsOverlyDense() {
		recs = append(recs, "network is overly dense - consider pruning weak entanglements")
	}
	if !t.IsConnected {
		recs = append(recs, "network has disconnected components - create bridge entanglements")
	}
	if t.ClusteringCoefficient < 0.2 {
		recs = append(recs, "low clustering coefficient - create more local entanglements")
	}
	if t.MaxDegree > 50 {
		recs = append(recs, "some nodes are over-entangled - distribute connections more evenly")
	}
	if len(recs) == 0 {
		recs = append(recs, "network topology appears well-balanced")
	}
	return recs
}

// HealthStatus is a coarse topology-health classification.
type HealthStatus int

const (
	HealthExcellent HealthStatus = iota
	HealthGood
	HealthFair
	HealthPoor
	HealthCritical
)

func (h HealthStatus) String() string {
	switch h {
	case HealthExcellent:
		return "excellent"
	case HealthGood:
		return "good"
	case HealthFair:
		return "fair"
	case HealthPoor:
		return "poor"
	default:
		return "critical"
	}
}

// TopologyAnalyzer computes Topology snapshots from a Graph.
type TopologyAnalyzer struct{}

// Analyze walks nodeIDs (the full known node population, which may include
// isolated nodes absent from the graph's edge set) and computes degree
// statistics, density, connectivity, clustering, and betweenness.
func (TopologyAnalyzer) Analyze(g *Graph, nodeIDs []string) Topology {
	totalNodes := len(nodeIDs)
	totalEdges := g.EntanglementCount()

	if totalNodes == 0 {
		return Topology{BetweennessCentrality: map[string]float64{}}
	}

	var totalDegree, maxDegree int
	for _, id := range nodeIDs {
		d := g.Degree(id)
		totalDegree += d
		if d > maxDegree {
			maxDegree = d
		}
	}
	averageDegree := float64(totalDegree) / float64(totalNodes)

	maxPossibleEdges := 1
	if totalNodes > 1 {
		maxPossibleEdges = totalNodes * (totalNodes - 1) / 2
	}
	density := float64(totalEdges) / float64(maxPossibleEdges)

	connected := isConnected(g, nodeIDs)
	clustering := clusteringCoefficient(g, nodeIDs)
	betweenness := betweennessCentrality(g, nodeIDs)

	return Topology{
		TotalNodes:            totalNodes,
		TotalEntanglements:    totalEdges,
		AverageDegree:         averageDegree,
		MaxDegree:             maxDegree,
		NetworkDensity:        density,
		IsConnected:           connected,
		ClusteringCoefficient: clustering,
		BetweennessCentrality: betweenness,
	}
}

// isConnected runs BFS from the first node and checks every node was
// reached.
func isConnected(g *Graph, nodeIDs []string) bool {
	if len(nodeIDs) == 0 {
		return true
	}
	visited := bfs(g, nodeIDs[0])
	for _, id := range nodeIDs {
		if !visited[id] {
			return false
		}
	}
	return true
}

func bfs(g *Graph, start string) map[string]bool {
	visited := map[string]bool{start: true}
	queue := []string{start}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, n := range g.GetEntangled(cur) {
			if !visited[n.NodeID] {
				visited[n.NodeID] = true
				queue = append(queue, n.NodeID)
			}
		}
	}
	return visited
}

// clusteringCoefficient averages, over every node with degree >= 2, the
// fraction of its neighbor pairs that are themselves entangled.
func clusteringCoefficient(g *Graph, nodeIDs []string) float64 {
	var sum float64
	var counted int
	for _, id := range nodeIDs {
		neighbors := g.GetEntangled(id)
		if len(neighbors) < 2 {
			continue
		}
		var triangles int
		for i := 0; i < len(neighbors); i++ {
			for j := i + 1; j < len(neighbors); j++ {
				if g.Has(neighbors[i].NodeID, neighbors[j].NodeID) {
					triangles++
				}
			}
		}
		pairs := len(neighbors) * (len(neighbors) - 1) / 2
		sum += float64(triangles) / float64(pairs)
		counted++
	}
	if counted == 0 {
		return 0
	}
	return sum / float64(counted)
}

// betweennessCentrality computes unweighted betweenness via BFS from every
// node, accumulating fractional credit for nodes lying on multiple
// shortest paths between a pair.
func betweennessCentrality(g *Graph, nodeIDs []string) map[string]float64 {
	scores := make(map[string]float64, len(nodeIDs))
	for _, id := range nodeIDs {
		scores[id] = 0
	}
	for _, s := range nodeIDs {
		dist, sigma, order, preds := shortestPathsFrom(g, nodeIDs, s)
		delta := make(map[string]float64, len(nodeIDs))
		for i := len(order) - 1; i >= 0; i-- {
			w := order[i]
			for _, v := range preds[w] {
				if sigma[w] == 0 {
					continue
				}
				contribution := (sigma[v] / sigma[w]) * (1 + delta[w])
				delta[v] += contribution
			}
			if w != s {
				scores[w] += delta[w]
			}
		}
		_ = dist
	}
	// Undirected graph: each pair counted from both endpoints, halve.
	n := float64(len(nodeIDs))
	norm := 1.0
	if n > 2 {
		norm = 2.0
	}
	for id := range scores {
		scores[id] /= norm
	}
	return scores
}

// shortestPathsFrom runs BFS from s, returning distance, shortest-path
// count, visitation order (for back-propagation), and predecessor lists.
func shortestPathsFrom(g *Graph, nodeIDs []string, s string) (map[string]int, map[string]float64, []string, map[string][]string) {
	dist := make(map[string]int, len(nodeIDs))
	sigma := make(map[string]float64, len(nodeIDs))
	preds := make(map[string][]string, len(nodeIDs))
	for _, id := range nodeIDs {
		dist[id] = -1
	}
	dist[s] = 0
	sigma[s] = 1
	queue := []string{s}
	var order []string
	for len(queue) > 0 {
		v := queue[0]
		queue = queue[1:]
		order = append(order, v)
		for _, n := range g.GetEntangled(v) {
			w := n.NodeID
			if dist[w] < 0 {
				dist[w] = dist[v] + 1
				queue = append(queue, w)
			}
			if dist[w] == dist[v]+1 {
				sigma[w] += sigma[v]
				preds[w] = append(preds[w], v)
			}
		}
	}
	return dist, sigma, order, preds
}

func absFloat(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}

func minFloat(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
