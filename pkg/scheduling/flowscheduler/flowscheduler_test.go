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

package flowscheduler_test

import (
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/firmament-project/quincy-scheduler/pkg/scheduling/costmodel"
	"github.com/firmament-project/quincy-scheduler/pkg/scheduling/dimacs"
	"github.com/firmament-project/quincy-scheduler/pkg/scheduling/flowgraph"
	"github.com/firmament-project/quincy-scheduler/pkg/scheduling/flowmanager"
	"github.com/firmament-project/quincy-scheduler/pkg/scheduling/flowscheduler"
	"github.com/firmament-project/quincy-scheduler/pkg/scheduling/solver"
	"github.com/firmament-project/quincy-scheduler/pkg/types"
)

// fakeSolver hands back a fixed set of flow records, standing in for the
// external process so a round's outcome is deterministic.
type fakeSolver struct {
	records []solver.FlowRecord
	err     error
}

func (f *fakeSolver) Run() ([]solver.FlowRecord, error) { return f.records, f.err }
func (f *fakeSolver) Restart()                          {}
func (f *fakeSolver) Close()                            {}

func singlePUMachine() (*types.ResourceTopologyNodeDescriptor, types.ResourceID, types.ResourceID) {
	machineID := types.NewResourceID()
	puID := types.NewResourceID()
	rtnd := &types.ResourceTopologyNodeDescriptor{
		ResourceDesc: &types.ResourceDescriptor{UUID: machineID, Type: types.ResourceMachine},
		Children: []*types.ResourceTopologyNodeDescriptor{
			{
				ResourceDesc: &types.ResourceDescriptor{UUID: puID, Type: types.ResourcePu},
				ParentID:     machineID,
			},
		},
	}
	return rtnd, machineID, puID
}

func findNode(gm flowmanager.GraphManager, match func(*flowgraph.Node) bool) *flowgraph.Node {
	for id := flowgraph.NodeID(1); id <= flowgraph.NodeID(gm.NumNodes()+4); id++ {
		if n := gm.Node(id); n != nil && match(n) {
			return n
		}
	}
	return nil
}

var _ = Describe("scheduler", func() {
	var (
		jobMap      *types.JobMap
		taskMap     *types.TaskMap
		resourceMap *types.ResourceMap
		gm          flowmanager.GraphManager
		rtnd        *types.ResourceTopologyNodeDescriptor
		machineID   types.ResourceID
		puID        types.ResourceID
		job         *types.JobDescriptor
		task        *types.TaskDescriptor
	)

	BeforeEach(func() {
		jobMap = types.NewJobMap()
		taskMap = types.NewTaskMap()
		resourceMap = types.NewResourceMap()

		trivial := costmodel.NewTrivial(resourceMap, taskMap)
		gm = flowmanager.NewGraphManager(trivial, make(map[types.ResourceID]struct{}), &dimacs.ChangeStats{}, 1)

		rtnd, machineID, puID = singlePUMachine()
		gm.AddResourceTopology(rtnd)

		job = &types.JobDescriptor{UUID: types.NewJobID()}
		task = &types.TaskDescriptor{UID: types.TaskID(1), JobID: job.UUID, State: types.TaskRunnable}
		job.Tasks = []*types.TaskDescriptor{task}
		jobMap.InsertOrUpdate(job.UUID, job)
		taskMap.InsertOrUpdate(task.UID, task)
	})

	It("places a task a solver round assigns to a leaf resource", func() {
		// AddOrUpdateJobNodes runs again inside ScheduleJob, but it's
		// idempotent for a task already in the graph, so calling it here
		// first just lets the fake solver's reply reference real node ids.
		gm.AddOrUpdateJobNodes([]*types.JobDescriptor{job})
		taskNode := findNode(gm, func(n *flowgraph.Node) bool { return n.IsTaskNode() && n.Task.UID == task.UID })
		puNode := findNode(gm, func(n *flowgraph.Node) bool { return n.IsResourceNode() && n.ResourceID == puID })
		sink := gm.SinkNode()
		Expect(taskNode).NotTo(BeNil())
		Expect(puNode).NotTo(BeNil())

		sched := flowscheduler.NewScheduler(jobMap, resourceMap, taskMap, gm, &fakeSolver{
			records: []solver.FlowRecord{
				{Src: taskNode.ID, Dst: puNode.ID, Flow: 1},
				{Src: puNode.ID, Dst: sink.ID, Flow: 1},
			},
		})
		sched.AddJob(job)
		count, deltas := sched.ScheduleJob(job)

		Expect(count).To(Equal(uint64(1)))
		Expect(deltas).To(HaveLen(1))
		Expect(sched.GetTaskBindings()).To(HaveKeyWithValue(task.UID, machineID))
		Expect(task.State).To(Equal(types.TaskRunning))
		Expect(job.State).To(Equal(types.JobRunning))
	})

	It("returns zero placements without touching bindings when the solver round fails", func() {
		sched := flowscheduler.NewScheduler(jobMap, resourceMap, taskMap, gm, &fakeSolver{err: errors.New("solver transport error")})
		sched.AddJob(job)
		count, deltas := sched.ScheduleJob(job)

		Expect(count).To(Equal(uint64(0)))
		Expect(deltas).To(BeEmpty())
		Expect(sched.GetTaskBindings()).To(BeEmpty())
	})

	It("skips a round entirely when no job has a runnable task", func() {
		task.State = types.TaskRunning
		sched := flowscheduler.NewScheduler(jobMap, resourceMap, taskMap, gm, &fakeSolver{
			records: []solver.FlowRecord{{Src: 99, Dst: 1, Flow: 1}},
		})
		sched.AddJob(job)
		count, deltas := sched.ScheduleJob(job)

		Expect(count).To(Equal(uint64(0)))
		Expect(deltas).To(BeEmpty())
	})

	It("unbinds and requeues a task when its resource is deregistered", func() {
		sched := flowscheduler.NewScheduler(jobMap, resourceMap, taskMap, gm, &fakeSolver{})
		sched.HandleTaskPlacement(task.UID, machineID)
		Expect(sched.GetTaskBindings()).To(HaveKeyWithValue(task.UID, machineID))

		sched.DeregisterResource(rtnd)

		Expect(sched.GetTaskBindings()).NotTo(HaveKey(task.UID))
		Expect(task.State).To(Equal(types.TaskRunnable))
		Expect(sched.ComputeRunnableTasksForJob(job)).To(HaveKey(task.UID))
	})

	It("clears a task's binding and graph node on completion", func() {
		sched := flowscheduler.NewScheduler(jobMap, resourceMap, taskMap, gm, &fakeSolver{})
		sched.HandleTaskPlacement(task.UID, machineID)

		sched.HandleTaskCompletion(task.UID)

		Expect(sched.GetTaskBindings()).NotTo(HaveKey(task.UID))
		Expect(task.State).To(Equal(types.TaskCompleted))
	})

	It("produces zero placements over an empty cluster with no jobs queued", func() {
		empty := types.NewResourceMap()
		emptyTasks := types.NewTaskMap()
		emptyJobs := types.NewJobMap()
		emptyTrivial := costmodel.NewTrivial(empty, emptyTasks)
		emptyGM := flowmanager.NewGraphManager(emptyTrivial, make(map[types.ResourceID]struct{}), &dimacs.ChangeStats{}, 1)

		sched := flowscheduler.NewScheduler(emptyJobs, empty, emptyTasks, emptyGM, &fakeSolver{})
		count, deltas := sched.ScheduleAllJobs()

		Expect(count).To(Equal(uint64(0)))
		Expect(deltas).To(BeEmpty())
		Expect(emptyGM.NumNodes()).To(Equal(1))
	})

	It("drops a job's bookkeeping on job completion", func() {
		sched := flowscheduler.NewScheduler(jobMap, resourceMap, taskMap, gm, &fakeSolver{})
		sched.AddJob(job)

		sched.HandleJobCompletion(job.UUID)

		Expect(job.State).To(Equal(types.JobCompleted))
		_, deltas := sched.ScheduleAllJobs()
		Expect(deltas).To(BeEmpty())
	})
})
