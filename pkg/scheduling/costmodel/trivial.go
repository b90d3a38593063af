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

import "github.com/firmament-project/quincy-scheduler/pkg/types"

var _ CostModeler = (*Trivial)(nil)

// Trivial assigns every arc a cost of zero, including the task-to-
// unscheduled-agg arc: it is pure by construction and retains no
// per-round state, unlike Quincy's wait-time-based cost.
type Trivial struct {
	resourceMap      *types.ResourceMap
	taskMap          *types.TaskMap
	machineToResTopo map[types.ResourceID]*types.ResourceTopologyNodeDescriptor
}

func NewTrivial(resourceMap *types.ResourceMap, taskMap *types.TaskMap) *Trivial {
	return &Trivial{
		resourceMap:      resourceMap,
		taskMap:          taskMap,
		machineToResTopo: make(map[types.ResourceID]*types.ResourceTopologyNodeDescriptor),
	}
}

func (t *Trivial) TaskToUnscheduledAgg(types.TaskID) ArcDescriptor {
	return NewArcDescriptor(0, 1, 0)
}

func (t *Trivial) UnscheduledAggToSink(types.JobID) ArcDescriptor {
	return NewArcDescriptor(0, 1, 0)
}

func (t *Trivial) TaskToResourceNode(types.TaskID, types.ResourceID) ArcDescriptor {
	return NewArcDescriptor(0, 1, 0)
}

func (t *Trivial) TaskToEquivClassAggregator(types.TaskID, types.EquivClass) ArcDescriptor {
	return NewArcDescriptor(0, 1, 0)
}

func (t *Trivial) EquivClassToResourceNode(_ types.EquivClass, id types.ResourceID) ArcDescriptor {
	return NewArcDescriptor(0, 1, 0)
}

func (t *Trivial) ResourceNodeToResourceNode(parent, child *types.ResourceDescriptor) ArcDescriptor {
	return NewArcDescriptor(0, 1, 0)
}

func (t *Trivial) LeafResourceNodeToSink(types.ResourceID) ArcDescriptor {
	return NewArcDescriptor(0, 1, 0)
}

func (t *Trivial) TaskContinuation(types.TaskID) ArcDescriptor {
	return NewArcDescriptor(0, 1, 0)
}

func (t *Trivial) GetTaskEquivClasses(types.TaskID) []types.EquivClass {
	return []types.EquivClass{ClusterAggregatorEC}
}

func (t *Trivial) GetTaskPreferenceArcs(types.TaskID) []types.ResourceID {
	return nil
}

func (t *Trivial) GetOutgoingEquivClassPrefArcs(ec types.EquivClass) []types.ResourceID {
	if ec != ClusterAggregatorEC {
		return nil
	}
	ids := make([]types.ResourceID, 0, len(t.machineToResTopo))
	for id := range t.machineToResTopo {
		ids = append(ids, id)
	}
	return ids
}

func (t *Trivial) AddMachine(rtnd *types.ResourceTopologyNodeDescriptor) {
	t.machineToResTopo[rtnd.ResourceDesc.UUID] = rtnd
}

func (t *Trivial) AddTask(types.TaskID) {}

func (t *Trivial) RemoveMachine(id types.ResourceID) {
	delete(t.machineToResTopo, id)
}

func (t *Trivial) RemoveTask(types.TaskID) {}

func (t *Trivial) AdvanceRound() {}

func (t *Trivial) DebugInfo() string { return "trivial cost model" }
