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
	"math/rand"

	"github.com/firmament-project/quincy-scheduler/pkg/types"
)

var _ CostModeler = (*Random)(nil)

// maxRandomCost bounds every arc this cost model prices.
const maxRandomCost = int64(100)

// Random draws a uniform cost in [0, maxRandomCost) for each preference
// arc. The draw is seeded from the arc's endpoints rather than from
// process state, so repeated calls for the same pair of ids return the
// same value: a requirement for the cost model to stay pure across
// rounds.
type Random struct {
	machineToResTopo map[types.ResourceID]*types.ResourceTopologyNodeDescriptor
}

func NewRandom() *Random {
	return &Random{machineToResTopo: make(map[types.ResourceID]*types.ResourceTopologyNodeDescriptor)}
}

func seededCost(seeds ...uint64) int64 {
	var h uint64 = 14695981039346656037
	for _, s := range seeds {
		h ^= s
		h *= 1099511628211
	}
	return int64(rand.New(rand.NewSource(int64(h))).Int63n(maxRandomCost))
}

func resourceIDSeed(id types.ResourceID) uint64 {
	var h uint64 = 14695981039346656037
	for _, b := range id {
		h ^= uint64(b)
		h *= 1099511628211
	}
	return h
}

func (r *Random) TaskToUnscheduledAgg(id types.TaskID) ArcDescriptor {
	return NewArcDescriptor(seededCost(uint64(id), 1), 1, 0)
}

func (r *Random) UnscheduledAggToSink(types.JobID) ArcDescriptor {
	return NewArcDescriptor(0, 1, 0)
}

func (r *Random) TaskToResourceNode(taskID types.TaskID, resID types.ResourceID) ArcDescriptor {
	return NewArcDescriptor(seededCost(uint64(taskID), resourceIDSeed(resID)), 1, 0)
}

func (r *Random) TaskToEquivClassAggregator(taskID types.TaskID, ec types.EquivClass) ArcDescriptor {
	return NewArcDescriptor(seededCost(uint64(taskID), uint64(ec)), 1, 0)
}

func (r *Random) EquivClassToResourceNode(ec types.EquivClass, resID types.ResourceID) ArcDescriptor {
	return NewArcDescriptor(seededCost(uint64(ec), resourceIDSeed(resID)), 1, 0)
}

func (r *Random) ResourceNodeToResourceNode(parent, child *types.ResourceDescriptor) ArcDescriptor {
	return NewArcDescriptor(seededCost(resourceIDSeed(parent.UUID), resourceIDSeed(child.UUID)), 1, 0)
}

func (r *Random) LeafResourceNodeToSink(id types.ResourceID) ArcDescriptor {
	return NewArcDescriptor(0, 1, 0)
}

func (r *Random) TaskContinuation(id types.TaskID) ArcDescriptor {
	return NewArcDescriptor(seededCost(uint64(id), 2), 1, 0)
}

func (r *Random) GetTaskEquivClasses(types.TaskID) []types.EquivClass {
	return []types.EquivClass{ClusterAggregatorEC}
}

func (r *Random) GetTaskPreferenceArcs(types.TaskID) []types.ResourceID { return nil }

func (r *Random) GetOutgoingEquivClassPrefArcs(ec types.EquivClass) []types.ResourceID {
	if ec != ClusterAggregatorEC {
		return nil
	}
	ids := make([]types.ResourceID, 0, len(r.machineToResTopo))
	for id := range r.machineToResTopo {
		ids = append(ids, id)
	}
	return ids
}

func (r *Random) AddMachine(rtnd *types.ResourceTopologyNodeDescriptor) {
	r.machineToResTopo[rtnd.ResourceDesc.UUID] = rtnd
}

func (r *Random) AddTask(types.TaskID) {}

func (r *Random) RemoveMachine(id types.ResourceID) { delete(r.machineToResTopo, id) }

func (r *Random) RemoveTask(types.TaskID) {}

func (r *Random) AdvanceRound() {}

func (r *Random) DebugInfo() string { return "random cost model" }
