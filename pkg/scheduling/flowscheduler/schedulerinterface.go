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

package flowscheduler

import (
	"github.com/firmament-project/quincy-scheduler/pkg/scheduling/extractor"
	"github.com/firmament-project/quincy-scheduler/pkg/types"
)

// TaskSet is a set of task ids.
type TaskSet map[types.TaskID]struct{}

// Scheduler drives scheduling rounds against a flow graph and applies the
// bindings each round produces. Every method is serialized by a single
// mutex: a round must see a consistent view of jobs, tasks, and resources
// from the moment it reads the graph to the moment it applies deltas back
// onto it.
type Scheduler interface {
	GetTaskBindings() map[types.TaskID]types.ResourceID

	// AddJob queues a job to be picked up by the next call to
	// ScheduleAllJobs that finds it has runnable tasks.
	AddJob(jd *types.JobDescriptor)

	// RegisterResource adds a newly joined resource's subtree to the
	// flow graph. isLocal has no effect on the graph itself; it is
	// carried through for whatever executor layer a deployment wires
	// up outside this package.
	RegisterResource(rtnd *types.ResourceTopologyNodeDescriptor, isLocal bool)

	// DeregisterResource removes a resource subtree from the flow
	// graph. Every task that was bound to a resource within the
	// subtree is unbound and returned to its job's runnable set so the
	// next round can place it elsewhere.
	DeregisterResource(rtnd *types.ResourceTopologyNodeDescriptor)

	// HandleJobCompletion removes every trace of a completed job: its
	// task nodes, its unscheduled aggregator, and this scheduler's own
	// bookkeeping for it.
	HandleJobCompletion(jobID types.JobID)

	// HandleTaskCompletion frees the resource a task was bound to, if
	// any, and removes the task's node from the graph.
	HandleTaskCompletion(taskID types.TaskID)

	// HandleTaskPlacement binds a task to a resource: it records the
	// binding, pins the task's flow-graph arcs so next round can't move
	// it, and advances the task and its job to the running state.
	HandleTaskPlacement(taskID types.TaskID, resourceID types.ResourceID)

	// ComputeRunnableTasksForJob returns every task in jd that is ready
	// to run and not already bound to a resource.
	ComputeRunnableTasksForJob(jd *types.JobDescriptor) TaskSet

	// ScheduleJob runs one round scoped to a single job, returning the
	// number of placements applied and every delta the round produced.
	ScheduleJob(jd *types.JobDescriptor) (uint64, []extractor.Delta)

	// ScheduleJobs runs one round across several jobs' tasks, returning
	// the number of placements applied and every delta the round
	// produced, including no-ops.
	ScheduleJobs(jds []*types.JobDescriptor) (uint64, []extractor.Delta)

	// ScheduleAllJobs runs one round across every job queued by AddJob.
	// A round does not dequeue a job; it stays queued until
	// HandleJobCompletion.
	ScheduleAllJobs() (uint64, []extractor.Delta)
}
