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

var _ CostModeler = (*SJF)(nil)

// SJF costs a task-to-resource arc by the task's estimated remaining
// runtime, so the solver favors packing short tasks ahead of long ones:
// a shortest-job-first policy expressed as a cost gradient rather than
// as an explicit queue order.
type SJF struct {
	taskMap          *types.TaskMap
	machineToResTopo map[types.ResourceID]*types.ResourceTopologyNodeDescriptor
}

func NewSJF(taskMap *types.TaskMap) *SJF {
	return &SJF{
		taskMap:          taskMap,
		machineToResTopo: make(map[types.ResourceID]*types.ResourceTopologyNodeDescriptor),
	}
}

func (s *SJF) estimatedRuntime(id types.TaskID) float64 {
	td := s.taskMap.FindPtrOrNull(id)
	if td == nil {
		panic(fmt.Errorf("sjf cost model: no task descriptor for task %d", id))
	}
	if td.EstimatedRuntimeSec <= 0 {
		return 1
	}
	return td.EstimatedRuntimeSec
}

func (s *SJF) TaskToUnscheduledAgg(id types.TaskID) ArcDescriptor {
	return NewArcDescriptor(int64(s.estimatedRuntime(id)), 1, 0)
}

func (s *SJF) UnscheduledAggToSink(types.JobID) ArcDescriptor {
	return NewArcDescriptor(0, 1, 0)
}

func (s *SJF) TaskToResourceNode(id types.TaskID, _ types.ResourceID) ArcDescriptor {
	return NewArcDescriptor(int64(s.estimatedRuntime(id)), 1, 0)
}

func (s *SJF) TaskToEquivClassAggregator(id types.TaskID, _ types.EquivClass) ArcDescriptor {
	return NewArcDescriptor(int64(s.estimatedRuntime(id)), 1, 0)
}

func (s *SJF) EquivClassToResourceNode(types.EquivClass, types.ResourceID) ArcDescriptor {
	return NewArcDescriptor(0, 1, 0)
}

func (s *SJF) ResourceNodeToResourceNode(parent, child *types.ResourceDescriptor) ArcDescriptor {
	return NewArcDescriptor(0, 1, 0)
}

func (s *SJF) LeafResourceNodeToSink(types.ResourceID) ArcDescriptor {
	return NewArcDescriptor(0, 1, 0)
}

func (s *SJF) TaskContinuation(id types.TaskID) ArcDescriptor {
	return NewArcDescriptor(int64(s.estimatedRuntime(id)), 1, 0)
}

func (s *SJF) GetTaskEquivClasses(types.TaskID) []types.EquivClass {
	return []types.EquivClass{ClusterAggregatorEC}
}

func (s *SJF) GetTaskPreferenceArcs(types.TaskID) []types.ResourceID { return nil }

func (s *SJF) GetOutgoingEquivClassPrefArcs(ec types.EquivClass) []types.ResourceID {
	if ec != ClusterAggregatorEC {
		return nil
	}
	ids := make([]types.ResourceID, 0, len(s.machineToResTopo))
	for id := range s.machineToResTopo {
		ids = append(ids, id)
	}
	return ids
}

func (s *SJF) AddMachine(rtnd *types.ResourceTopologyNodeDescriptor) {
	s.machineToResTopo[rtnd.ResourceDesc.UUID] = rtnd
}

func (s *SJF) AddTask(types.TaskID) {}

func (s *SJF) RemoveMachine(id types.ResourceID) { delete(s.machineToResTopo, id) }

func (s *SJF) RemoveTask(types.TaskID) {}

func (s *SJF) AdvanceRound() {}

func (s *SJF) DebugInfo() string { return "sjf cost model" }
