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
	"github.com/golang/glog"

	"github.com/firmament-project/quincy-scheduler/pkg/types"
)

// NodeType enumerates the kinds of node the scheduling flow graph can
// contain.
type NodeType int

const (
	NodeTypeRootTask NodeType = iota + 1
	NodeTypeScheduledTask
	NodeTypeUnscheduledTask
	NodeTypeJobAggregator
	NodeTypeSink
	NodeTypeEquivClass
	NodeTypeCoordinator
	NodeTypeMachine
	NodeTypeNuma
	NodeTypeSocket
	NodeTypeCache
	NodeTypeCore
	NodeTypePu
)

// Node represents a node in the scheduling flow graph. Descriptor pointers
// (Task, ResourceDescriptor) are borrowed references into the externally
// owned TaskMap/ResourceMap; the graph never frees them.
type Node struct {
	ID NodeID
	// Excess is the supply of flow at this node. Positive at sources
	// (task nodes), negative at the sink, zero elsewhere.
	Excess int64
	Type   NodeType
	// Comment labels special nodes for debug output.
	Comment string

	Task               *types.TaskDescriptor
	JobID              types.JobID
	ResourceID         types.ResourceID
	ResourceDescriptor *types.ResourceDescriptor
	EquivClass         *types.EquivClass

	// Potential is the node's shortest-path potential, maintained by the
	// successive-shortest-path solver for reduced-cost bookkeeping.
	Potential int64

	OutgoingArcMap map[NodeID]*Arc
	IncomingArcMap map[NodeID]*Arc

	// Visited marks traversal state; callers compare against a
	// monotonically increasing visit counter rather than resetting it.
	Visited uint32
}

func newNode(id NodeID) *Node {
	return &Node{
		ID:             id,
		OutgoingArcMap: make(map[NodeID]*Arc),
		IncomingArcMap: make(map[NodeID]*Arc),
	}
}

func insertIfNotPresent(m map[NodeID]*Arc, k NodeID, v *Arc) bool {
	if _, ok := m[k]; ok {
		return false
	}
	m[k] = v
	return true
}

// AddArc links arc into this node's outgoing map and the destination
// node's incoming map. arc.Src must equal n.ID.
func (n *Node) AddArc(arc *Arc) {
	if arc.Src != n.ID {
		glog.Fatalf("flowgraph: AddArc: arc.Src %d != node %d", arc.Src, n.ID)
	}
	if !insertIfNotPresent(n.OutgoingArcMap, arc.Dst, arc) {
		glog.Fatalf("flowgraph: AddArc: arc %v already present in node %d outgoing map", arc, n.ID)
	}
	if !insertIfNotPresent(arc.DstNode.IncomingArcMap, arc.Src, arc) {
		glog.Fatalf("flowgraph: AddArc: arc %v already present in node %d incoming map", arc, arc.DstNode.ID)
	}
}

func (n *Node) IsEquivalenceClassNode() bool { return n.Type == NodeTypeEquivClass }

func (n *Node) IsResourceNode() bool {
	switch n.Type {
	case NodeTypeCoordinator, NodeTypeMachine, NodeTypeNuma, NodeTypeSocket, NodeTypeCache, NodeTypeCore, NodeTypePu:
		return true
	}
	return false
}

func (n *Node) IsTaskNode() bool {
	switch n.Type {
	case NodeTypeRootTask, NodeTypeScheduledTask, NodeTypeUnscheduledTask:
		return true
	}
	return false
}

// IsScheduled reports whether this task node has already been bound to a
// resource: a bound task's only surviving arc is the one on its bound
// resource path.
func (n *Node) IsScheduled() bool { return n.Type == NodeTypeScheduledTask }

func (n *Node) IsLeafResourceNode() bool { return n.Type == NodeTypePu }

// GetRandomArc returns an arbitrary outgoing arc, or nil if none exist.
// Used by machine-removal re-routing, which only needs *an* arc to
// discover the flow request on a node, not a specific one.
func (n *Node) GetRandomArc() *Arc {
	for _, a := range n.OutgoingArcMap {
		return a
	}
	return nil
}

// ResourceKindToNodeType maps a resource-descriptor kind to the flow-graph
// node kind that represents it.
func ResourceKindToNodeType(kind types.ResourceKind) NodeType {
	switch kind {
	case types.ResourcePu:
		return NodeTypePu
	case types.ResourceCore:
		return NodeTypeCore
	case types.ResourceCache:
		return NodeTypeCache
	case types.ResourceSocket:
		return NodeTypeSocket
	case types.ResourceNumaNode:
		return NodeTypeNuma
	case types.ResourceMachine:
		return NodeTypeMachine
	case types.ResourceCoordinator:
		return NodeTypeCoordinator
	default:
		glog.Fatalf("flowgraph: unknown resource kind: %v", kind)
	}
	return 0
}
