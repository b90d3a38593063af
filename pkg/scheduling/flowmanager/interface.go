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

// Package flowmanager owns the live flow graph: it keeps the graph's
// nodes and arcs in step with the job/task/resource state the scheduler
// is tracking, routing every mutation through a GraphChangeManager so the
// dimacs change log never drifts from the graph itself.
package flowmanager

import (
	"github.com/firmament-project/quincy-scheduler/pkg/scheduling/dimacs"
	"github.com/firmament-project/quincy-scheduler/pkg/scheduling/flowgraph"
	"github.com/firmament-project/quincy-scheduler/pkg/types"
)

// GraphManager keeps the flow graph in sync with the job, task, and
// resource state above it. Every mutating method goes through its
// GraphChangeManager so the change log stays consistent with the graph.
type GraphManager interface {
	LeafNodeIDs() map[flowgraph.NodeID]struct{}
	SinkNode() *flowgraph.Node
	GraphChangeManager() GraphChangeManager

	Node(id flowgraph.NodeID) *flowgraph.Node
	NumNodes() int
	NumArcs() int

	// MachineForPU walks the resource-topology ancestor chain from a PU
	// node up to its containing machine node. Returns nil if id is not a
	// PU node currently in the graph.
	MachineForPU(id flowgraph.NodeID) *flowgraph.Node

	// AddOrUpdateJobNodes adds unscheduled-aggregator and task nodes for
	// any job not already in the graph, and refreshes preference arcs
	// for every task named in jobs.
	AddOrUpdateJobNodes(jobs []*types.JobDescriptor)

	// AddResourceTopology adds the entire resource subtree rooted at
	// rtnd and propagates the resulting capacity change up to the root.
	AddResourceTopology(rtnd *types.ResourceTopologyNodeDescriptor)

	// UpdateResourceTopology refreshes the capacity/slot bookkeeping for
	// the subtree rooted at rtnd and propagates the delta to the root.
	UpdateResourceTopology(rtnd *types.ResourceTopologyNodeDescriptor)

	// RemoveResourceTopology removes the subtree rooted at rd and
	// propagates the capacity decrease to the root, returning the leaf
	// (PU) node ids that were removed.
	RemoveResourceTopology(rd *types.ResourceDescriptor) []flowgraph.NodeID

	// UpdateArcsForBoundTask pins taskID to resourceID: its preference
	// arcs collapse into a single running arc to that resource.
	UpdateArcsForBoundTask(taskID types.TaskID, resourceID types.ResourceID)

	TaskEvicted(taskID types.TaskID, resourceID types.ResourceID)
	TaskCompleted(taskID types.TaskID) flowgraph.NodeID
	TaskFailed(taskID types.TaskID) flowgraph.NodeID
	TaskKilled(taskID types.TaskID) flowgraph.NodeID

	// DeleteTaskNode removes a single task's node and returns its id.
	DeleteTaskNode(taskID types.TaskID) flowgraph.NodeID

	// DeleteNodesForJob removes every task node and the unscheduled
	// aggregator belonging to jobID.
	DeleteNodesForJob(jobID types.JobID)

	// PurgeUnconnectedEquivClassNodes removes equivalence-class nodes
	// that have lost every incoming preference arc.
	PurgeUnconnectedEquivClassNodes()

	// UpdateAllCostsToUnscheduledAggs re-prices every task's arc to its
	// job's unscheduled aggregator, and refreshes continuation costs for
	// already-running tasks.
	UpdateAllCostsToUnscheduledAggs()
}

// GraphChangeManager bridges GraphManager and flowgraph.Graph. Every
// mutation the graph manager makes goes through these methods so the
// dimacs change log stays in step with the graph.
type GraphChangeManager interface {
	AddArc(src, dst *flowgraph.Node,
		capLowerBound, capUpperBound uint64,
		cost int64,
		arcType flowgraph.ArcType,
		changeType dimacs.ChangeType,
		comment string) *flowgraph.Arc

	AddNode(nodeType flowgraph.NodeType,
		excess int64,
		changeType dimacs.ChangeType,
		comment string) *flowgraph.Node

	ChangeArc(arc *flowgraph.Arc, capLowerBound, capUpperBound uint64, cost int64,
		changeType dimacs.ChangeType, comment string)

	ChangeArcCapacity(arc *flowgraph.Arc, capacity uint64, changeType dimacs.ChangeType, comment string)

	ChangeArcCost(arc *flowgraph.Arc, cost int64, changeType dimacs.ChangeType, comment string)

	DeleteArc(arc *flowgraph.Arc, changeType dimacs.ChangeType, comment string)

	DeleteNode(node *flowgraph.Node, changeType dimacs.ChangeType, comment string)

	GetGraphChanges() []dimacs.Change

	// ResetChanges clears the incremental change log. Called after the
	// solver dispatcher has consumed and exported the pending changes.
	ResetChanges()

	Graph() *flowgraph.Graph

	CheckNodeType(id flowgraph.NodeID, want flowgraph.NodeType) bool
}
