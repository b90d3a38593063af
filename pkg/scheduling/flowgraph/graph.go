// Copyright 2016 The ksched Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package flowgraph

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/golang/glog"
)

// NodeID is a dense, monotonically increasing node identifier. On the
// default (non-randomized) allocation path ids are never reused within a
// process's lifetime, so change-log entries referencing a given id stay
// unambiguous for the life of the process.
type NodeID uint64

// Graph owns every node and arc in the scheduling flow graph. It enforces
// per-arc consistency but does not itself enforce the broader topology
// invariants — those are the flow graph manager's responsibility;
// CheckInvariants below is a verification helper that tests call directly.
type Graph struct {
	nextID NodeID

	NodeMap map[NodeID]*Node
	ArcSet  map[*Arc]struct{}

	// SinkID is the dense id of the unique sink node. By convention this
	// is always 1.
	SinkID NodeID

	// RandomizeNodeIDs shuffles newly minted ids; used only by tests that
	// want to exercise id-independent code paths. unusedIDs backs this
	// mode; it is never populated (and ids are never reused) otherwise.
	RandomizeNodeIDs bool
	unusedIDs        []NodeID

	// StrictInvariants is read only by checkStrict. No mutator calls
	// checkStrict, so setting it does not make any mutation re-check the
	// graph's invariants; callers that want the check call
	// CheckInvariants themselves.
	StrictInvariants bool
}

// NewGraph constructs an empty graph with a sink node pre-allocated as
// node 1, matching the wire-format convention that the sink is always
// node 1.
func NewGraph(randomizeNodeIDs bool) *Graph {
	g := &Graph{
		NodeMap:          make(map[NodeID]*Node),
		ArcSet:           make(map[*Arc]struct{}),
		RandomizeNodeIDs: randomizeNodeIDs,
	}
	g.nextID = 1
	sink := g.AddNode()
	sink.Type = NodeTypeSink
	sink.Comment = "sink"
	g.SinkID = sink.ID
	return g
}

func (g *Graph) AddNode() *Node {
	id := g.nextNodeID()
	if _, ok := g.NodeMap[id]; ok {
		glog.Fatalf("flowgraph: AddNode: id %d already present", id)
	}
	n := newNode(id)
	g.NodeMap[id] = n
	return n
}

func (g *Graph) nextNodeID() NodeID {
	if g.RandomizeNodeIDs {
		if len(g.unusedIDs) == 0 {
			g.populateUnusedIDs(g.nextID + 64)
		}
		id := g.unusedIDs[len(g.unusedIDs)-1]
		g.unusedIDs = g.unusedIDs[:len(g.unusedIDs)-1]
		return id
	}
	id := g.nextID
	g.nextID++
	return id
}

func (g *Graph) populateUnusedIDs(upTo NodeID) {
	r := rand.New(rand.NewSource(time.Now().UnixNano()))
	ids := make([]NodeID, 0, upTo-g.nextID)
	for i := g.nextID; i < upTo; i++ {
		ids = append(ids, i)
	}
	for i := len(ids) - 1; i > 0; i-- {
		j := r.Intn(i + 1)
		ids[i], ids[j] = ids[j], ids[i]
	}
	g.unusedIDs = append(g.unusedIDs, ids...)
	g.nextID = upTo
}

// AddArc creates an arc from src to dst. Capacity and cost are left at
// zero; callers set them via ChangeArc or by mutating the returned arc
// directly before it is exposed to other code.
func (g *Graph) AddArc(src, dst *Node) *Arc {
	arc := NewArc(src, dst)
	g.ArcSet[arc] = struct{}{}
	src.AddArc(arc)
	return arc
}

func (g *Graph) AddArcWithCapAndCost(src, dst *Node, lower, upper uint64, cost int64) *Arc {
	arc := g.AddArc(src, dst)
	arc.CapLowerBound = lower
	arc.CapUpperBound = upper
	arc.Cost = cost
	return arc
}

// ChangeArc updates an existing arc's capacity bounds and cost in place.
func (g *Graph) ChangeArc(arc *Arc, lower, upper uint64, cost int64) {
	arc.CapLowerBound = lower
	arc.CapUpperBound = upper
	arc.Cost = cost
}

func (g *Graph) DeleteArc(arc *Arc) {
	delete(arc.SrcNode.OutgoingArcMap, arc.Dst)
	delete(arc.DstNode.IncomingArcMap, arc.Src)
	delete(g.ArcSet, arc)
}

// DeleteNode removes node and every arc incident to it. The node's id is
// never reused (see NodeID doc).
func (g *Graph) DeleteNode(node *Node) {
	for _, arc := range node.OutgoingArcMap {
		g.DeleteArc(arc)
	}
	for _, arc := range node.IncomingArcMap {
		g.DeleteArc(arc)
	}
	delete(g.NodeMap, node.ID)
}

func (g *Graph) Node(id NodeID) *Node { return g.NodeMap[id] }

func (g *Graph) NumNodes() int { return len(g.NodeMap) }
func (g *Graph) NumArcs() int  { return len(g.ArcSet) }

func (g *Graph) Nodes() map[NodeID]*Node { return g.NodeMap }
func (g *Graph) Arcs() map[*Arc]struct{} { return g.ArcSet }

func (g *Graph) GetArc(src, dst *Node) *Arc { return src.OutgoingArcMap[dst.ID] }

func (g *Graph) GetArcByIDs(src, dst NodeID) *Arc {
	s := g.NodeMap[src]
	if s == nil {
		return nil
	}
	return s.OutgoingArcMap[dst]
}

// CheckInvariants verifies the graph's structural invariants (P1-P5: zero
// total excess, exactly one sink, unbound/bound task arc-count rules,
// lower<=upper capacity bounds, and adjacency-map/arc-set consistency) and
// returns one error per violation found. No mutator calls it; tests call
// it directly.
func (g *Graph) CheckInvariants() []error {
	var errs []error

	var totalExcess int64
	sinkCount := 0
	for _, n := range g.NodeMap {
		totalExcess += n.Excess
		if n.Type == NodeTypeSink {
			sinkCount++
		}
	}
	if sinkCount != 1 {
		errs = append(errs, fmt.Errorf("P-sink: expected exactly 1 sink node, found %d", sinkCount))
	}
	if totalExcess != 0 {
		errs = append(errs, fmt.Errorf("P1: total excess across graph = %d, want 0", totalExcess))
	}

	for _, n := range g.NodeMap {
		if !n.IsTaskNode() {
			continue
		}
		unschedArcs := 0
		for _, a := range n.OutgoingArcMap {
			if a.Type == ArcTypeTaskToUnschedAgg {
				unschedArcs++
			}
		}
		if n.IsScheduled() {
			if len(n.OutgoingArcMap) != 1 {
				errs = append(errs, fmt.Errorf("P3: bound task node %d has %d outgoing arcs, want 1", n.ID, len(n.OutgoingArcMap)))
			}
		} else if unschedArcs != 1 {
			errs = append(errs, fmt.Errorf("P2: unbound task node %d has %d arcs to its unscheduled aggregator, want 1", n.ID, unschedArcs))
		}
	}

	for a := range g.ArcSet {
		if a.CapLowerBound > a.CapUpperBound {
			errs = append(errs, fmt.Errorf("P4: arc %d->%d has lower %d > upper %d", a.Src, a.Dst, a.CapLowerBound, a.CapUpperBound))
		}
	}

	outSum, inSum := 0, 0
	for _, n := range g.NodeMap {
		outSum += len(n.OutgoingArcMap)
		inSum += len(n.IncomingArcMap)
	}
	if outSum != g.NumArcs() || inSum != g.NumArcs() {
		errs = append(errs, fmt.Errorf("P5: NumArcs=%d but outgoing-map total=%d incoming-map total=%d", g.NumArcs(), outSum, inSum))
	}

	return errs
}

// checkStrict panics (via glog.Fatalf) on the first invariant violation if
// StrictInvariants is enabled. Nothing in this module calls it.
func (g *Graph) checkStrict() {
	if !g.StrictInvariants {
		return
	}
	if errs := g.CheckInvariants(); len(errs) > 0 {
		glog.Fatalf("flowgraph: invariant violation: %v", errs[0])
	}
}
