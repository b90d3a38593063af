package flowgraph

import (
	"testing"

	"github.com/firmament-project/quincy-scheduler/pkg/types"
)

func TestNewGraphHasSingleSink(t *testing.T) {
	g := NewGraph(false)
	if g.NumNodes() != 1 {
		t.Fatalf("NumNodes() = %d, want 1", g.NumNodes())
	}
	if g.Node(g.SinkID) == nil || g.Node(g.SinkID).Type != NodeTypeSink {
		t.Fatalf("sink node missing or wrong type")
	}
}

func TestAddArcUpdatesAdjacency(t *testing.T) {
	g := NewGraph(false)
	a := g.AddNode()
	arc := g.AddArcWithCapAndCost(a, g.Node(g.SinkID), 0, 1, 5)

	if g.GetArc(a, g.Node(g.SinkID)) != arc {
		t.Fatalf("GetArc did not return the arc just added")
	}
	if len(a.OutgoingArcMap) != 1 || len(g.Node(g.SinkID).IncomingArcMap) != 1 {
		t.Fatalf("adjacency maps not updated correctly")
	}
}

func TestDeleteNodeRemovesIncidentArcs(t *testing.T) {
	g := NewGraph(false)
	a := g.AddNode()
	b := g.AddNode()
	g.AddArcWithCapAndCost(a, b, 0, 1, 0)
	g.AddArcWithCapAndCost(b, g.Node(g.SinkID), 0, 1, 0)

	g.DeleteNode(b)

	if g.NumArcs() != 0 {
		t.Fatalf("NumArcs() = %d, want 0 after deleting shared node", g.NumArcs())
	}
	if len(a.OutgoingArcMap) != 0 {
		t.Fatalf("a still has outgoing arcs after b deleted")
	}
}

func TestNodeIDsNeverReused(t *testing.T) {
	g := NewGraph(false)
	a := g.AddNode()
	g.DeleteNode(a)
	b := g.AddNode()
	if b.ID == a.ID {
		t.Fatalf("node id %d was reused after deletion", a.ID)
	}
}

func TestCheckInvariantsCatchesExcessImbalance(t *testing.T) {
	g := NewGraph(false)
	g.Node(g.SinkID).Excess = -1
	if errs := g.CheckInvariants(); len(errs) == 0 {
		t.Fatalf("expected P1 violation to be reported")
	}
}

func TestResourceKindToNodeType(t *testing.T) {
	cases := []struct {
		kind types.ResourceKind
		want NodeType
	}{
		{types.ResourcePu, NodeTypePu},
		{types.ResourceMachine, NodeTypeMachine},
		{types.ResourceCoordinator, NodeTypeCoordinator},
	}
	for _, c := range cases {
		if got := ResourceKindToNodeType(c.kind); got != c.want {
			t.Errorf("ResourceKindToNodeType(%v) = %v, want %v", c.kind, got, c.want)
		}
	}
}
