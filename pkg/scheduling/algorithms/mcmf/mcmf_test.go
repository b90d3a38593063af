package mcmf

import (
	"testing"

	"github.com/firmament-project/quincy-scheduler/pkg/scheduling/flowgraph"
)

// buildCostCapacityGraph is three tasks (5 units of demand each) choosing
// between two machines at different costs, each machine capped at 8 units
// to the sink. Min-cost max-flow on this topology is 15 units at cost 87.
func buildCostCapacityGraph() (*flowgraph.Graph, flowgraph.NodeID, flowgraph.NodeID) {
	g := flowgraph.NewGraph(false)
	nodes := make([]*flowgraph.Node, 7)
	for i := range nodes {
		nodes[i] = g.AddNode()
	}
	src, t1, t2, t3, m1, m2, dst := nodes[0], nodes[1], nodes[2], nodes[3], nodes[4], nodes[5], nodes[6]

	g.AddArcWithCapAndCost(src, t1, 0, 5, 0)
	g.AddArcWithCapAndCost(src, t2, 0, 5, 0)
	g.AddArcWithCapAndCost(src, t3, 0, 5, 0)
	g.AddArcWithCapAndCost(t1, m1, 0, 5, 5)
	g.AddArcWithCapAndCost(t1, m2, 0, 5, 9)
	g.AddArcWithCapAndCost(t2, m1, 0, 5, 7)
	g.AddArcWithCapAndCost(t2, m2, 0, 5, 8)
	g.AddArcWithCapAndCost(t3, m1, 0, 5, 9)
	g.AddArcWithCapAndCost(t3, m2, 0, 5, 5)
	g.AddArcWithCapAndCost(m1, dst, 0, 8, 0)
	g.AddArcWithCapAndCost(m2, dst, 0, 8, 0)

	return g, src.ID, dst.ID
}

func TestSuccessiveShortestPathWithDEP(t *testing.T) {
	graph, src, dst := buildCostCapacityGraph()
	maxFlow, minCost := SuccessiveShortestPathWithDEP(graph, src, dst)
	if maxFlow != 15 || minCost != 87 {
		t.Fatalf("maxFlow=%d minCost=%d, want 15 and 87", maxFlow, minCost)
	}
}

func TestSuccessiveShortestPathWithDijkstra(t *testing.T) {
	graph, src, dst := buildCostCapacityGraph()
	maxFlow, minCost := SuccessiveShortestPathWithDijkstra(graph, src, dst)
	if maxFlow != 15 || minCost != 87 {
		t.Fatalf("maxFlow=%d minCost=%d, want 15 and 87", maxFlow, minCost)
	}
}

func TestSuccessiveShortestPathAgreesWithDEP(t *testing.T) {
	depGraph, depSrc, depDst := buildCostCapacityGraph()
	depFlow, depCost := SuccessiveShortestPathWithDEP(depGraph, depSrc, depDst)

	dijkstraGraph, dijkstraSrc, dijkstraDst := buildCostCapacityGraph()
	dijkstraFlow, dijkstraCost := SuccessiveShortestPathWithDijkstra(dijkstraGraph, dijkstraSrc, dijkstraDst)

	if depFlow != dijkstraFlow || depCost != dijkstraCost {
		t.Fatalf("DEsopoPape gave (%d, %d), Dijkstra gave (%d, %d)", depFlow, depCost, dijkstraFlow, dijkstraCost)
	}
}
