package mcmf

import (
	"testing"

	"github.com/firmament-project/quincy-scheduler/pkg/scheduling/flowgraph"
)

// buildClassicFlowGraph is the textbook max-flow example (Cormen et al.),
// max flow 23 from s to t.
func buildClassicFlowGraph() (*flowgraph.Graph, flowgraph.NodeID, flowgraph.NodeID) {
	g := flowgraph.NewGraph(false)
	names := []string{"s", "a", "b", "c", "d", "t"}
	n := make(map[string]*flowgraph.Node, len(names))
	for _, name := range names {
		n[name] = g.AddNode()
	}
	add := func(from, to string, cap uint64) {
		g.AddArcWithCapAndCost(n[from], n[to], 0, cap, 0)
	}
	add("s", "a", 16)
	add("s", "b", 13)
	add("a", "b", 10)
	add("b", "a", 4)
	add("a", "c", 12)
	add("c", "b", 9)
	add("b", "d", 14)
	add("d", "c", 7)
	add("c", "t", 20)
	add("d", "t", 4)

	return g, n["s"].ID, n["t"].ID
}

func TestEdmondsKarpBFS(t *testing.T) {
	graph, src, dst := buildClassicFlowGraph()
	maxflow := EdmondsKarp(graph, src, dst, false, false)
	if maxflow != 23 {
		t.Fatalf("max flow = %d, want 23", maxflow)
	}
}

func TestEdmondsKarpDFS(t *testing.T) {
	graph, src, dst := buildClassicFlowGraph()
	maxflow := EdmondsKarp(graph, src, dst, true, false)
	if maxflow != 23 {
		t.Fatalf("max flow = %d, want 23", maxflow)
	}
}

// buildConstrainedGraph models three unscheduled tasks with five units of
// excess each, routed through two machines whose arcs to dst carry 8 units
// apiece. The DFS behind EdmondsKarp does not act on the constraint flag,
// so a constrained run still finds the full max flow of 15.
func buildConstrainedGraph() (*flowgraph.Graph, flowgraph.NodeID, flowgraph.NodeID) {
	g := flowgraph.NewGraph(false)
	src := g.AddNode()
	t1, t2, t3 := g.AddNode(), g.AddNode(), g.AddNode()
	t1.Excess, t2.Excess, t3.Excess = 5, 5, 5
	t1.Type, t2.Type, t3.Type = flowgraph.NodeTypeUnscheduledTask, flowgraph.NodeTypeUnscheduledTask, flowgraph.NodeTypeUnscheduledTask
	m1, m2 := g.AddNode(), g.AddNode()
	m1.Type, m2.Type = flowgraph.NodeTypeMachine, flowgraph.NodeTypeMachine
	dst := g.AddNode()

	g.AddArcWithCapAndCost(src, t1, 0, 5, 0)
	g.AddArcWithCapAndCost(src, t2, 0, 5, 0)
	g.AddArcWithCapAndCost(src, t3, 0, 5, 0)
	g.AddArcWithCapAndCost(t1, m1, 0, 5, 0)
	g.AddArcWithCapAndCost(t1, m2, 0, 5, 0)
	g.AddArcWithCapAndCost(t2, m1, 0, 5, 0)
	g.AddArcWithCapAndCost(t2, m2, 0, 5, 0)
	g.AddArcWithCapAndCost(t3, m1, 0, 5, 0)
	g.AddArcWithCapAndCost(t3, m2, 0, 5, 0)
	g.AddArcWithCapAndCost(m1, dst, 0, 8, 0)
	g.AddArcWithCapAndCost(m2, dst, 0, 8, 0)

	return g, src.ID, dst.ID
}

func TestEdmondsKarpWithConstraint(t *testing.T) {
	graph, src, dst := buildConstrainedGraph()
	maxflow := EdmondsKarp(graph, src, dst, false, true)
	if maxflow != 15 {
		t.Fatalf("max flow = %d, want 15", maxflow)
	}
}
