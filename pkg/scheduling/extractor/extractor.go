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

// Package extractor decodes the solver's flow records into scheduling
// deltas. The solver reports flow per arc, not per end-to-end path, so a
// task's flow generally has to be traced hop by hop from the leaf PU it
// eventually lands on back up to the task that supplied it.
package extractor

import (
	"sort"

	"github.com/golang/glog"

	"github.com/firmament-project/quincy-scheduler/pkg/scheduling/flowgraph"
	"github.com/firmament-project/quincy-scheduler/pkg/scheduling/flowmanager"
	"github.com/firmament-project/quincy-scheduler/pkg/scheduling/solver"
	"github.com/firmament-project/quincy-scheduler/pkg/types"
)

// DeltaKind classifies a scheduling delta produced by Extract.
type DeltaKind int

const (
	// DeltaPlace binds a task to a resource.
	DeltaPlace DeltaKind = iota + 1
	// DeltaNoop records that an already-running task's flow stayed on
	// its pinned running arc; nothing changes.
	DeltaNoop
)

// Delta is a single scheduling decision extracted from one round's flow.
// This is the struct equivalent of the teacher's generated
// SchedulingDelta protobuf message; see pkg/types' DOMAIN STACK note for
// why no generated bindings are used anywhere in this module.
type Delta struct {
	Kind       DeltaKind        `json:"kind" yaml:"kind"`
	TaskID     types.TaskID     `json:"task_id" yaml:"task_id"`
	ResourceID types.ResourceID `json:"resource_id" yaml:"resource_id"`
}

type flowPair struct {
	src  flowgraph.NodeID
	flow uint64
}

// Extract classifies every positive-flow record C5 returned against the
// live graph gm owns, producing one Delta per task whose flow resolved to
// either a bound resource or a no-op continuation. Tasks whose flow
// reached the unscheduled aggregator, and any record that matches none of
// the patterns in the component's contract, produce no delta; the latter
// are logged as a warning.
func Extract(gm flowmanager.GraphManager, records []solver.FlowRecord) []Delta {
	graph := gm.GraphChangeManager().Graph()
	sink := gm.SinkNode()

	incomingBySrc := make(map[flowgraph.NodeID]map[flowgraph.NodeID]*flowPair)
	for i := range records {
		r := &records[i]
		if r.Flow == 0 {
			continue
		}
		if incomingBySrc[r.Dst] == nil {
			incomingBySrc[r.Dst] = make(map[flowgraph.NodeID]*flowPair)
		}
		incomingBySrc[r.Dst][r.Src] = &flowPair{src: r.Src, flow: r.Flow}
	}

	var deltas []Delta
	handled := make(map[flowgraph.NodeID]bool)

	for i := range records {
		r := &records[i]
		if r.Flow == 0 {
			continue
		}
		srcNode := graph.Node(r.Src)
		dstNode := graph.Node(r.Dst)
		switch {
		case srcNode == nil || dstNode == nil:
			glog.Warningf("extractor: flow record %d->%d(%d) references an id no longer in the graph, skipping", r.Src, r.Dst, r.Flow)
		case !srcNode.IsTaskNode():
			// Handled below via the leaf-to-task trace; resource-to-resource
			// and equivalence-class arcs never originate a delta on their own.
		case dstNode.Type == flowgraph.NodeTypeJobAggregator:
			handled[r.Src] = true
		default:
			if arc := graph.GetArcByIDs(r.Src, r.Dst); arc != nil && arc.Type == flowgraph.ArcTypeRunning {
				deltas = append(deltas, Delta{Kind: DeltaNoop, TaskID: srcNode.Task.UID})
				handled[r.Src] = true
			}
		}
	}

	taskToPU := traceTasksToLeaves(graph, gm.LeafNodeIDs(), sink.ID, incomingBySrc, handled)

	for taskNodeID, puID := range taskToPU {
		taskNode := graph.Node(taskNodeID)
		machine := gm.MachineForPU(puID)
		if machine == nil {
			glog.Warningf("extractor: PU %d carrying task %d's flow has no recorded machine ancestor, skipping", puID, taskNode.Task.UID)
			continue
		}
		deltas = append(deltas, Delta{Kind: DeltaPlace, TaskID: taskNode.Task.UID, ResourceID: machine.ResourceID})
	}

	sort.Slice(deltas, func(i, j int) bool { return deltas[i].TaskID < deltas[j].TaskID })
	return deltas
}

// traceTasksToLeaves runs a breadth-first walk backward from every leaf
// (PU) node carrying flow into the sink, pushing a PU-id token across each
// arc for every unit of flow it carries, until each token reaches the task
// node that originated it. By construction a task node has excess 1, so
// exactly one token should arrive; if more than one does, the
// lexicographically smallest PU id wins and a warning is logged.
func traceTasksToLeaves(graph *flowgraph.Graph, leafNodeIDs map[flowgraph.NodeID]struct{}, sinkID flowgraph.NodeID,
	incomingBySrc map[flowgraph.NodeID]map[flowgraph.NodeID]*flowPair, handled map[flowgraph.NodeID]bool) map[flowgraph.NodeID]flowgraph.NodeID {

	puIDs := make(map[flowgraph.NodeID][]flowgraph.NodeID)
	visited := make(map[flowgraph.NodeID]bool)
	var toVisit []flowgraph.NodeID

	sinkIncoming := incomingBySrc[sinkID]
	for leafID := range leafNodeIDs {
		pair, ok := sinkIncoming[leafID]
		if !ok {
			continue
		}
		for i := uint64(0); i < pair.flow; i++ {
			puIDs[leafID] = append(puIDs[leafID], leafID)
		}
		toVisit = append(toVisit, leafID)
		visited[leafID] = true
	}

	taskToPU := make(map[flowgraph.NodeID]flowgraph.NodeID)
	for len(toVisit) > 0 {
		nodeID := toVisit[0]
		toVisit = toVisit[1:]

		node := graph.Node(nodeID)
		if node != nil && node.IsTaskNode() {
			if handled[nodeID] {
				continue
			}
			tokens := puIDs[nodeID]
			if len(tokens) == 0 {
				continue
			}
			if len(tokens) > 1 {
				sort.Slice(tokens, func(i, j int) bool { return tokens[i] < tokens[j] })
				glog.Warningf("extractor: task %d received flow from %d leaves, want 1; picking smallest", node.Task.UID, len(tokens))
			}
			taskToPU[nodeID] = tokens[0]
			continue
		}

		pairs, ok := incomingBySrc[nodeID]
		if !ok {
			if node != nil && !node.IsTaskNode() {
				glog.Warningf("extractor: node %d carries flow with no recorded upstream source, skipping", nodeID)
			}
			continue
		}
		iter := 0
		tokens := puIDs[nodeID]
		for _, pair := range pairs {
			for ; pair.flow > 0 && iter < len(tokens); pair.flow-- {
				puIDs[pair.src] = append(puIDs[pair.src], tokens[iter])
				iter++
			}
			if !visited[pair.src] {
				visited[pair.src] = true
				toVisit = append(toVisit, pair.src)
			}
			if iter == len(tokens) {
				break
			}
		}
	}

	return taskToPU
}
