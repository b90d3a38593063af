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

// Package costmodel implements the pluggable cost functions the flow
// graph manager uses to price every kind of preference arc.
package costmodel

import "github.com/firmament-project/quincy-scheduler/pkg/types"

// ArcDescriptor bundles the cost and capacity triple a cost model
// returns: callers need all three whenever an arc is created or
// re-costed, not just the cost in isolation.
type ArcDescriptor struct {
	Cost     int64
	Capacity uint64
	MinFlow  uint64
}

func NewArcDescriptor(cost int64, capacity, minFlow uint64) ArcDescriptor {
	return ArcDescriptor{Cost: cost, Capacity: capacity, MinFlow: minFlow}
}

// Kind enumerates the cost models the flow graph manager can be
// configured with.
type Kind int

const (
	KindTrivial Kind = iota
	KindRandom
	KindSJF
	KindQuincy
)

func (k Kind) String() string {
	switch k {
	case KindTrivial:
		return "trivial"
	case KindRandom:
		return "random"
	case KindSJF:
		return "sjf"
	case KindQuincy:
		return "quincy"
	default:
		return "unknown"
	}
}

// ParseKind maps a config value to a Kind. Unrecognized names fall back
// to Trivial.
func ParseKind(s string) Kind {
	switch s {
	case "random":
		return KindRandom
	case "sjf":
		return KindSJF
	case "quincy":
		return KindQuincy
	default:
		return KindTrivial
	}
}

// ClusterAggregatorEC is the equivalence class every task has an arc to,
// regardless of cost model: the cluster-wide aggregator used when a cost
// model offers no finer-grained equivalence classes.
var ClusterAggregatorEC = types.EquivClass(1)

// CostModeler is implemented by every cost model. Cost models are pure
// with respect to the graph: calling the same method twice for the same
// arguments against an unchanged domain must return the same
// ArcDescriptor, with the single documented exception of
// TaskToUnscheduledAgg, whose cost rises across rounds (as marked by
// AdvanceRound, not by the number of times it is called) to discourage
// leaving a task unscheduled forever.
type CostModeler interface {
	// TaskToUnscheduledAgg is the penalty for leaving a task unscheduled.
	TaskToUnscheduledAgg(types.TaskID) ArcDescriptor
	// UnscheduledAggToSink is the flow-completion cost for a job's
	// unscheduled aggregator.
	UnscheduledAggToSink(types.JobID) ArcDescriptor
	// TaskToResourceNode is a task's preference for a specific leaf
	// resource.
	TaskToResourceNode(types.TaskID, types.ResourceID) ArcDescriptor
	// TaskToEquivClassAggregator prices a task's arc to one of its
	// eligible equivalence classes.
	TaskToEquivClassAggregator(types.TaskID, types.EquivClass) ArcDescriptor
	// EquivClassToResourceNode prices an equivalence class's arc to a
	// resource it can place tasks on.
	EquivClassToResourceNode(types.EquivClass, types.ResourceID) ArcDescriptor
	// ResourceNodeToResourceNode prices the arc between a resource and
	// its parent in the topology.
	ResourceNodeToResourceNode(parent, child *types.ResourceDescriptor) ArcDescriptor
	// LeafResourceNodeToSink prices a leaf (PU) resource's arc to the
	// sink.
	LeafResourceNodeToSink(types.ResourceID) ArcDescriptor
	// TaskContinuation prices keeping an already-running task where it
	// is, rather than preempting it.
	TaskContinuation(types.TaskID) ArcDescriptor

	// GetTaskEquivClasses returns the equivalence classes a task is
	// eligible for; every task includes ClusterAggregatorEC.
	GetTaskEquivClasses(types.TaskID) []types.EquivClass
	// GetTaskPreferenceArcs returns resources a task has a direct
	// preference arc to, bypassing equivalence classes.
	GetTaskPreferenceArcs(types.TaskID) []types.ResourceID
	// GetOutgoingEquivClassPrefArcs returns resources an equivalence
	// class has arcs to.
	GetOutgoingEquivClassPrefArcs(types.EquivClass) []types.ResourceID

	AddMachine(*types.ResourceTopologyNodeDescriptor)
	AddTask(types.TaskID)
	RemoveMachine(types.ResourceID)
	RemoveTask(types.TaskID)

	// AdvanceRound marks the boundary between one scheduling round and
	// the next. It is called once per round, regardless of how many
	// times the graph manager refreshes a task's arcs within that
	// round, so a cost model keying a price off elapsed rounds (Quincy's
	// unscheduled-wait penalty) can tell "still this round" apart from
	// "a new round started" without counting calls.
	AdvanceRound()

	DebugInfo() string
}
