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

package costmodel

import (
	"fmt"

	"github.com/firmament-project/quincy-scheduler/pkg/types"
)

var _ CostModeler = (*Quincy)(nil)

// unscheduledWaitFactor scales the per-round growth of the unscheduled
// penalty, matching the original Quincy paper's "cost of waiting" term.
const unscheduledWaitFactor = int64(10)

// Quincy prices a task's placement on a machine by the bytes of its
// input data that machine does not already hold, so the solver favors
// moving the computation to the data over moving the data to the
// computation. Its unscheduled-aggregator cost grows with the number of
// rounds a task has waited, tracked against the round counter AdvanceRound
// bumps rather than against the number of times it is asked to price an
// arc, so an otherwise unplaceable task is not starved forever without the
// cost also inflating when the graph manager simply refreshes the same
// round's arcs more than once.
type Quincy struct {
	taskMap          *types.TaskMap
	machineToResTopo map[types.ResourceID]*types.ResourceTopologyNodeDescriptor
	round            int64
	unscheduledSince map[types.TaskID]int64
}

func NewQuincy(taskMap *types.TaskMap) *Quincy {
	return &Quincy{
		taskMap:          taskMap,
		machineToResTopo: make(map[types.ResourceID]*types.ResourceTopologyNodeDescriptor),
		unscheduledSince: make(map[types.TaskID]int64),
	}
}

func (q *Quincy) task(id types.TaskID) *types.TaskDescriptor {
	td := q.taskMap.FindPtrOrNull(id)
	if td == nil {
		panic(fmt.Errorf("quincy cost model: no task descriptor for task %d", id))
	}
	return td
}

// missingDataCost returns the bytes of a task's input data absent from
// resourceID, taken as its placement cost there.
func (q *Quincy) missingDataCost(id types.TaskID, resourceID types.ResourceID) int64 {
	td := q.task(id)
	var total uint64
	for _, bytes := range td.DataOnResource {
		total += bytes
	}
	if total == 0 {
		return 0
	}
	onResource := td.DataOnResource[resourceID]
	if onResource > total {
		onResource = total
	}
	missing := total - onResource
	return int64(missing)
}

// TaskToUnscheduledAgg prices id's arc to its job's unscheduled aggregator
// by the number of rounds it has gone unplaced. The wait is measured from
// the round id was first seen unscheduled, so calling this more than once
// in the same round (the graph manager does, whenever a job's nodes are
// refreshed) returns the same cost each time.
func (q *Quincy) TaskToUnscheduledAgg(id types.TaskID) ArcDescriptor {
	since, ok := q.unscheduledSince[id]
	if !ok {
		since = q.round
		q.unscheduledSince[id] = since
	}
	return NewArcDescriptor((q.round-since+1)*unscheduledWaitFactor, 1, 0)
}

// AdvanceRound marks a new scheduling round having begun, so the next
// TaskToUnscheduledAgg call for a still-unplaced task prices in one more
// round of waiting.
func (q *Quincy) AdvanceRound() {
	q.round++
}

func (q *Quincy) UnscheduledAggToSink(types.JobID) ArcDescriptor {
	return NewArcDescriptor(0, 1, 0)
}

func (q *Quincy) TaskToResourceNode(id types.TaskID, resID types.ResourceID) ArcDescriptor {
	return NewArcDescriptor(q.missingDataCost(id, resID), 1, 0)
}

func (q *Quincy) TaskToEquivClassAggregator(_ types.TaskID, ec types.EquivClass) ArcDescriptor {
	if ec == ClusterAggregatorEC {
		return NewArcDescriptor(2, 1, 0)
	}
	return NewArcDescriptor(0, 1, 0)
}

func (q *Quincy) EquivClassToResourceNode(types.EquivClass, types.ResourceID) ArcDescriptor {
	return NewArcDescriptor(0, 1, 0)
}

func (q *Quincy) ResourceNodeToResourceNode(parent, child *types.ResourceDescriptor) ArcDescriptor {
	return NewArcDescriptor(0, 1, 0)
}

func (q *Quincy) LeafResourceNodeToSink(types.ResourceID) ArcDescriptor {
	return NewArcDescriptor(0, 1, 0)
}

func (q *Quincy) TaskContinuation(id types.TaskID) ArcDescriptor {
	td := q.task(id)
	return NewArcDescriptor(q.missingDataCost(id, td.BoundTo), 1, 0)
}

func (q *Quincy) GetTaskEquivClasses(types.TaskID) []types.EquivClass {
	return []types.EquivClass{ClusterAggregatorEC}
}

func (q *Quincy) GetTaskPreferenceArcs(id types.TaskID) []types.ResourceID {
	td := q.task(id)
	prefs := make([]types.ResourceID, 0, len(td.DataOnResource))
	for resID := range td.DataOnResource {
		prefs = append(prefs, resID)
	}
	return prefs
}

func (q *Quincy) GetOutgoingEquivClassPrefArcs(ec types.EquivClass) []types.ResourceID {
	if ec != ClusterAggregatorEC {
		return nil
	}
	ids := make([]types.ResourceID, 0, len(q.machineToResTopo))
	for id := range q.machineToResTopo {
		ids = append(ids, id)
	}
	return ids
}

func (q *Quincy) AddMachine(rtnd *types.ResourceTopologyNodeDescriptor) {
	q.machineToResTopo[rtnd.ResourceDesc.UUID] = rtnd
}

func (q *Quincy) AddTask(types.TaskID) {}

func (q *Quincy) RemoveMachine(id types.ResourceID) { delete(q.machineToResTopo, id) }

func (q *Quincy) RemoveTask(id types.TaskID) { delete(q.unscheduledSince, id) }

func (q *Quincy) DebugInfo() string { return "quincy cost model" }
