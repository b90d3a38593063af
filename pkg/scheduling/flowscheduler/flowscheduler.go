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

// Package flowscheduler drives the scheduling round: it feeds the flow
// graph's pending changes to the solver dispatcher, classifies the flow
// the solver reports through the assignment extractor, and applies the
// resulting bindings back onto the graph and onto this package's own
// task/job bookkeeping.
package flowscheduler

import (
	"sync"

	"github.com/golang/glog"

	"github.com/firmament-project/quincy-scheduler/pkg/scheduling/extractor"
	"github.com/firmament-project/quincy-scheduler/pkg/scheduling/flowmanager"
	"github.com/firmament-project/quincy-scheduler/pkg/scheduling/solver"
	"github.com/firmament-project/quincy-scheduler/pkg/types"
)

type scheduler struct {
	mu sync.Mutex

	jobMap      *types.JobMap
	taskMap     *types.TaskMap
	resourceMap *types.ResourceMap

	// taskBindings tracks which resource each currently-placed task is
	// bound to. resourceBindings is the inverse multimap, used to find
	// every task bound somewhere within a resource subtree being torn
	// down.
	taskBindings     map[types.TaskID]types.ResourceID
	resourceBindings map[types.ResourceID]TaskSet

	// jobsToSchedule holds jobs queued by AddJob that a round hasn't
	// consumed yet. runnableTasks is a multimap from job to the tasks in
	// it that are ready to run and not yet bound.
	jobsToSchedule map[types.JobID]*types.JobDescriptor
	runnableTasks  map[types.JobID]TaskSet

	resourceRoots map[types.ResourceID]*types.ResourceTopologyNodeDescriptor

	graphManager flowmanager.GraphManager
	solver       solver.Solver

	solverRunCnt uint64
}

// NewScheduler builds a scheduler around an already-initialized flow
// graph and solver dispatcher. Both depend on the cost model a deployment
// chose, so their construction is the caller's responsibility; this
// package only drives rounds against whatever it's handed.
func NewScheduler(jobMap *types.JobMap, resourceMap *types.ResourceMap, taskMap *types.TaskMap,
	gm flowmanager.GraphManager, sv solver.Solver) Scheduler {
	return &scheduler{
		jobMap:           jobMap,
		resourceMap:      resourceMap,
		taskMap:          taskMap,
		taskBindings:     make(map[types.TaskID]types.ResourceID),
		resourceBindings: make(map[types.ResourceID]TaskSet),
		jobsToSchedule:   make(map[types.JobID]*types.JobDescriptor),
		runnableTasks:    make(map[types.JobID]TaskSet),
		resourceRoots:    make(map[types.ResourceID]*types.ResourceTopologyNodeDescriptor),
		graphManager:     gm,
		solver:           sv,
	}
}

func (s *scheduler) GetTaskBindings() map[types.TaskID]types.ResourceID {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[types.TaskID]types.ResourceID, len(s.taskBindings))
	for k, v := range s.taskBindings {
		out[k] = v
	}
	return out
}

func (s *scheduler) AddJob(jd *types.JobDescriptor) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobsToSchedule[jd.UUID] = jd
	s.runnableTasks[jd.UUID] = s.computeRunnableTasksForJobLocked(jd)
}

func (s *scheduler) RegisterResource(rtnd *types.ResourceTopologyNodeDescriptor, isLocal bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if rtnd.ParentID == (types.ResourceID{}) {
		s.resourceRoots[rtnd.ResourceDesc.UUID] = rtnd
	}
	s.graphManager.AddResourceTopology(rtnd)
	glog.V(1).Infof("flowscheduler: registered resource %v (local=%v)", rtnd.ResourceDesc.UUID, isLocal)
}

// dfsResourceIDs walks rtnd's subtree and returns every resource id in it,
// root included.
func dfsResourceIDs(rtnd *types.ResourceTopologyNodeDescriptor, out []types.ResourceID) []types.ResourceID {
	out = append(out, rtnd.ResourceDesc.UUID)
	for _, child := range rtnd.Children {
		out = dfsResourceIDs(child, out)
	}
	return out
}

func (s *scheduler) DeregisterResource(rtnd *types.ResourceTopologyNodeDescriptor) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, rID := range dfsResourceIDs(rtnd, nil) {
		for taskID := range s.resourceBindings[rID] {
			s.failBoundTaskLocked(taskID, rID)
		}
		delete(s.resourceBindings, rID)
		s.resourceMap.Delete(rID)
	}

	s.graphManager.RemoveResourceTopology(rtnd.ResourceDesc)
	delete(s.resourceRoots, rtnd.ResourceDesc.UUID)
}

// failBoundTaskLocked unbinds a task whose resource is being torn down and
// marks it runnable again so the next round can place it elsewhere.
// Called with s.mu held.
func (s *scheduler) failBoundTaskLocked(taskID types.TaskID, resourceID types.ResourceID) {
	td := s.taskMap.FindPtrOrNull(taskID)
	if td == nil {
		glog.Fatalf("flowscheduler: task %d bound to resource %v has no descriptor in taskMap", taskID, resourceID)
	}
	s.graphManager.TaskFailed(taskID)
	delete(s.taskBindings, taskID)
	td.State = types.TaskRunnable
	td.BoundTo = types.ResourceID{}
	s.insertTaskIntoRunnablesLocked(td.JobID, taskID)
}

func (s *scheduler) insertTaskIntoRunnablesLocked(jobID types.JobID, taskID types.TaskID) {
	if s.runnableTasks[jobID] == nil {
		s.runnableTasks[jobID] = make(TaskSet)
	}
	s.runnableTasks[jobID][taskID] = struct{}{}
}

func (s *scheduler) HandleJobCompletion(jobID types.JobID) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.graphManager.DeleteNodesForJob(jobID)

	jd := s.jobMap.FindPtrOrNull(jobID)
	if jd == nil {
		glog.Fatalf("flowscheduler: job %v must have a descriptor in jobMap", jobID)
	}
	jd.State = types.JobCompleted
	delete(s.jobsToSchedule, jobID)
	delete(s.runnableTasks, jobID)
}

func (s *scheduler) HandleTaskCompletion(taskID types.TaskID) {
	s.mu.Lock()
	defer s.mu.Unlock()

	td := s.taskMap.FindPtrOrNull(taskID)
	if td == nil {
		glog.Fatalf("flowscheduler: task %d must have a descriptor in taskMap", taskID)
	}

	if rID, ok := s.taskBindings[taskID]; ok {
		s.unbindTaskLocked(taskID, rID)
	}
	td.State = types.TaskCompleted
	s.graphManager.TaskCompleted(taskID)
}

// unbindTaskLocked clears a task's binding from both bookkeeping maps.
// Called with s.mu held.
func (s *scheduler) unbindTaskLocked(taskID types.TaskID, resourceID types.ResourceID) {
	delete(s.taskBindings, taskID)
	if taskSet := s.resourceBindings[resourceID]; taskSet != nil {
		delete(taskSet, taskID)
	}
}

func (s *scheduler) HandleTaskPlacement(taskID types.TaskID, resourceID types.ResourceID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.placeTaskLocked(taskID, resourceID)
}

// placeTaskLocked is the common path for binding a task to a resource,
// whether driven by an applied delta or called directly. Called with
// s.mu held.
func (s *scheduler) placeTaskLocked(taskID types.TaskID, resourceID types.ResourceID) {
	td := s.taskMap.FindPtrOrNull(taskID)
	if td == nil {
		glog.Fatalf("flowscheduler: task %d placed on resource %v has no descriptor in taskMap", taskID, resourceID)
	}

	s.taskBindings[taskID] = resourceID
	if s.resourceBindings[resourceID] == nil {
		s.resourceBindings[resourceID] = make(TaskSet)
	}
	s.resourceBindings[resourceID][taskID] = struct{}{}

	s.graphManager.UpdateArcsForBoundTask(taskID, resourceID)

	td.State = types.TaskRunning
	td.BoundTo = resourceID
	if taskSet := s.runnableTasks[td.JobID]; taskSet != nil {
		delete(taskSet, taskID)
	}

	if jd := s.jobMap.FindPtrOrNull(td.JobID); jd != nil && jd.State != types.JobRunning {
		jd.State = types.JobRunning
	}
}

// computeRunnableTasksForJobLocked returns jd's tasks that are ready to
// run and not already bound. The original Firmament scheduler resolves
// inter-task dependencies here via lazy graph reduction; this scheduler
// has no dependency model, so every runnable, unbound task qualifies.
// Called with s.mu held.
func (s *scheduler) computeRunnableTasksForJobLocked(jd *types.JobDescriptor) TaskSet {
	runnable := make(TaskSet)
	for _, td := range jd.Tasks {
		if td.State != types.TaskRunnable {
			continue
		}
		if _, bound := s.taskBindings[td.UID]; bound {
			continue
		}
		runnable[td.UID] = struct{}{}
	}
	return runnable
}

func (s *scheduler) ComputeRunnableTasksForJob(jd *types.JobDescriptor) TaskSet {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.computeRunnableTasksForJobLocked(jd)
}

func (s *scheduler) ScheduleJob(jd *types.JobDescriptor) (uint64, []extractor.Delta) {
	return s.ScheduleJobs([]*types.JobDescriptor{jd})
}

func (s *scheduler) ScheduleJobs(jds []*types.JobDescriptor) (uint64, []extractor.Delta) {
	s.mu.Lock()
	defer s.mu.Unlock()

	runnable := false
	for _, jd := range jds {
		if len(s.computeRunnableTasksForJobLocked(jd)) > 0 {
			runnable = true
			break
		}
	}
	if !runnable {
		return 0, nil
	}

	s.graphManager.AddOrUpdateJobNodes(jds)
	deltas := s.runRoundLocked()
	return s.applyDeltasLocked(deltas), deltas
}

func (s *scheduler) ScheduleAllJobs() (uint64, []extractor.Delta) {
	s.mu.Lock()
	jds := make([]*types.JobDescriptor, 0, len(s.jobsToSchedule))
	for _, jd := range s.jobsToSchedule {
		jds = append(jds, jd)
	}
	s.mu.Unlock()

	if len(jds) == 0 {
		return 0, nil
	}
	return s.ScheduleJobs(jds)
}

// runRoundLocked emits the graph's pending changes to the solver, reads
// back its flow assignment, and classifies it into deltas. A solver
// transport error is recovered by the dispatcher itself (it restarts and
// forces a full snapshot next round); this round simply produces no
// deltas. Called with s.mu held.
func (s *scheduler) runRoundLocked() []extractor.Delta {
	records, err := s.solver.Run()
	if err != nil {
		glog.Warningf("flowscheduler: solver round failed, returning zero placements: %v", err)
		return nil
	}
	s.solverRunCnt++
	return extractor.Extract(s.graphManager, records)
}

// applyDeltasLocked binds every DeltaPlace in deltas and returns how many
// it applied. DeltaNoop entries confirm an already-bound task stayed put
// and need no action. Called with s.mu held.
func (s *scheduler) applyDeltasLocked(deltas []extractor.Delta) uint64 {
	var applied uint64
	for _, d := range deltas {
		switch d.Kind {
		case extractor.DeltaPlace:
			s.placeTaskLocked(d.TaskID, d.ResourceID)
			applied++
		case extractor.DeltaNoop:
		default:
			glog.Warningf("flowscheduler: unapplied delta kind %v for task %d", d.Kind, d.TaskID)
		}
	}
	return applied
}
