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

package flowmanager

import (
	"testing"

	"github.com/firmament-project/quincy-scheduler/pkg/scheduling/costmodel"
	"github.com/firmament-project/quincy-scheduler/pkg/scheduling/dimacs"
	"github.com/firmament-project/quincy-scheduler/pkg/types"
)

func newTestGraphManager() GraphManager {
	resourceMap := types.NewResourceMap()
	taskMap := types.NewTaskMap()
	leafResourceIDs := make(map[types.ResourceID]struct{})
	trivial := costmodel.NewTrivial(resourceMap, taskMap)
	return NewGraphManager(trivial, leafResourceIDs, &dimacs.ChangeStats{}, 1)
}

func singlePUMachine() *types.ResourceTopologyNodeDescriptor {
	machineID := types.NewResourceID()
	puID := types.NewResourceID()
	return &types.ResourceTopologyNodeDescriptor{
		ResourceDesc: &types.ResourceDescriptor{UUID: machineID, Type: types.ResourceMachine},
		Children: []*types.ResourceTopologyNodeDescriptor{
			{
				ResourceDesc: &types.ResourceDescriptor{UUID: puID, Type: types.ResourcePu},
				ParentID:     machineID,
			},
		},
	}
}

func TestNewGraphManagerHasOnlySink(t *testing.T) {
	gm := newTestGraphManager()
	if gm.NumNodes() != 1 {
		t.Fatalf("NumNodes() = %d, want 1 (sink only)", gm.NumNodes())
	}
	if gm.SinkNode() == nil {
		t.Fatal("SinkNode() = nil")
	}
}

func TestAddResourceTopologyAddsLeafAndSinkArc(t *testing.T) {
	gm := newTestGraphManager()
	rtnd := singlePUMachine()
	gm.AddResourceTopology(rtnd)

	if gm.NumNodes() != 3 {
		t.Fatalf("NumNodes() = %d, want 3 (sink, machine, pu)", gm.NumNodes())
	}
	leaves := gm.LeafNodeIDs()
	if len(leaves) != 1 {
		t.Fatalf("len(LeafNodeIDs()) = %d, want 1", len(leaves))
	}
	for id := range leaves {
		if gm.Node(id) == nil {
			t.Fatalf("leaf node %d missing from graph", id)
		}
	}
	// machine -> pu, pu -> sink.
	if gm.NumArcs() != 2 {
		t.Fatalf("NumArcs() = %d, want 2", gm.NumArcs())
	}
}

func TestAddOrUpdateJobNodesCreatesTaskAndUnscheduledAgg(t *testing.T) {
	gm := newTestGraphManager()
	job := &types.JobDescriptor{
		UUID: types.NewJobID(),
		Tasks: []*types.TaskDescriptor{
			{UID: types.TaskID(1), State: types.TaskRunnable},
		},
	}
	job.Tasks[0].JobID = job.UUID

	gm.AddOrUpdateJobNodes([]*types.JobDescriptor{job})

	// sink, unscheduled aggregator, task node, cluster aggregator EC node.
	if gm.NumNodes() != 4 {
		t.Fatalf("NumNodes() = %d, want 4", gm.NumNodes())
	}
	// task -> unscheduled aggregator, task -> cluster aggregator EC,
	// unscheduled aggregator -> sink.
	if gm.NumArcs() != 3 {
		t.Fatalf("NumArcs() = %d, want 3", gm.NumArcs())
	}
}

func TestUpdateArcsForBoundTaskCollapsesToRunningArc(t *testing.T) {
	gm := newTestGraphManager()
	rtnd := singlePUMachine()
	gm.AddResourceTopology(rtnd)
	puID := rtnd.Children[0].ResourceDesc.UUID

	job := &types.JobDescriptor{UUID: types.NewJobID()}
	task := &types.TaskDescriptor{UID: types.TaskID(1), JobID: job.UUID, State: types.TaskRunnable}
	job.Tasks = []*types.TaskDescriptor{task}
	gm.AddOrUpdateJobNodes([]*types.JobDescriptor{job})

	gm.UpdateArcsForBoundTask(task.UID, puID)

	impl := gm.(*graphManager)
	taskNode := impl.taskToNode[task.UID]
	if !taskNode.IsScheduled() {
		t.Fatal("task node not marked scheduled after UpdateArcsForBoundTask")
	}
	if len(taskNode.OutgoingArcMap) != 1 {
		t.Fatalf("bound task has %d outgoing arcs, want 1", len(taskNode.OutgoingArcMap))
	}
}

func TestBoundTaskStaysPinnedAcrossTopologyUpdate(t *testing.T) {
	gm := newTestGraphManager()
	rtnd := singlePUMachine()
	gm.AddResourceTopology(rtnd)
	puID := rtnd.Children[0].ResourceDesc.UUID

	job := &types.JobDescriptor{UUID: types.NewJobID()}
	task := &types.TaskDescriptor{UID: types.TaskID(1), JobID: job.UUID, State: types.TaskRunnable}
	job.Tasks = []*types.TaskDescriptor{task}
	gm.AddOrUpdateJobNodes([]*types.JobDescriptor{job})
	gm.UpdateArcsForBoundTask(task.UID, puID)

	// A later topology update (e.g. one that would change a Quincy-style
	// data-locality cost for this task against a different machine)
	// must not disturb an already-bound task: the running arc from
	// UpdateArcsForBoundTask is the only outgoing arc left, so nothing
	// in UpdateResourceTopology has a preference arc to re-cost.
	gm.UpdateResourceTopology(rtnd)

	impl := gm.(*graphManager)
	taskNode := impl.taskToNode[task.UID]
	if len(taskNode.OutgoingArcMap) != 1 {
		t.Fatalf("bound task has %d outgoing arcs after topology update, want 1", len(taskNode.OutgoingArcMap))
	}
	for _, arc := range taskNode.OutgoingArcMap {
		if arc.DstNode.ResourceID != puID {
			t.Fatalf("bound task's surviving arc points at %v, want the bound PU %v", arc.DstNode.ResourceID, puID)
		}
	}
}

func TestTaskCompletedRemovesTaskNode(t *testing.T) {
	gm := newTestGraphManager()
	job := &types.JobDescriptor{UUID: types.NewJobID()}
	task := &types.TaskDescriptor{UID: types.TaskID(1), JobID: job.UUID, State: types.TaskRunnable}
	job.Tasks = []*types.TaskDescriptor{task}
	gm.AddOrUpdateJobNodes([]*types.JobDescriptor{job})

	before := gm.NumNodes()
	gm.TaskCompleted(task.UID)
	after := gm.NumNodes()

	if after != before-1 {
		t.Fatalf("NumNodes() after TaskCompleted = %d, want %d", after, before-1)
	}
	impl := gm.(*graphManager)
	if _, ok := impl.taskToNode[task.UID]; ok {
		t.Fatal("task still present in taskToNode map after TaskCompleted")
	}
}

func TestDeleteNodesForJobRemovesAllTasksAndAggregator(t *testing.T) {
	gm := newTestGraphManager()
	job := &types.JobDescriptor{UUID: types.NewJobID()}
	job.Tasks = []*types.TaskDescriptor{
		{UID: types.TaskID(1), JobID: job.UUID, State: types.TaskRunnable},
		{UID: types.TaskID(2), JobID: job.UUID, State: types.TaskRunnable},
	}
	gm.AddOrUpdateJobNodes([]*types.JobDescriptor{job})

	gm.DeleteNodesForJob(job.UUID)
	// DeleteNodesForJob leaves the shared cluster-aggregator equivalence
	// class node in place even though it lost its last incoming arc;
	// purging unconnected EC nodes is a separate, periodic pass.
	gm.PurgeUnconnectedEquivClassNodes()

	if gm.NumNodes() != 1 {
		t.Fatalf("NumNodes() = %d after DeleteNodesForJob+purge, want 1 (sink only)", gm.NumNodes())
	}
}

func TestUpdateResourceTopologyTwiceIsIdempotent(t *testing.T) {
	gm := newTestGraphManager()
	rtnd := singlePUMachine()
	gm.AddResourceTopology(rtnd)
	gm.(*graphManager).cm.ResetChanges()

	gm.UpdateResourceTopology(rtnd)

	if changes := gm.GraphChangeManager().GetGraphChanges(); len(changes) != 0 {
		t.Fatalf("GetGraphChanges() after repeat UpdateResourceTopology = %d, want 0", len(changes))
	}
	if gm.NumNodes() != 3 {
		t.Fatalf("NumNodes() = %d after repeat UpdateResourceTopology, want 3", gm.NumNodes())
	}
}

func TestAddOrUpdateJobNodesTwiceIsIdempotent(t *testing.T) {
	gm := newTestGraphManager()
	job := &types.JobDescriptor{UUID: types.NewJobID()}
	job.Tasks = []*types.TaskDescriptor{
		{UID: types.TaskID(1), JobID: job.UUID, State: types.TaskRunnable},
	}
	gm.AddOrUpdateJobNodes([]*types.JobDescriptor{job})
	gm.(*graphManager).cm.ResetChanges()

	gm.AddOrUpdateJobNodes([]*types.JobDescriptor{job})

	if changes := gm.GraphChangeManager().GetGraphChanges(); len(changes) != 0 {
		t.Fatalf("GetGraphChanges() after repeat AddOrUpdateJobNodes = %d, want 0", len(changes))
	}
	if gm.NumNodes() != 4 {
		t.Fatalf("NumNodes() = %d after repeat AddOrUpdateJobNodes, want 4", gm.NumNodes())
	}
}

func TestRemoveResourceTopologyReturnsRemovedLeaves(t *testing.T) {
	gm := newTestGraphManager()
	rtnd := singlePUMachine()
	gm.AddResourceTopology(rtnd)
	puID := rtnd.Children[0].ResourceDesc.UUID

	removed := gm.RemoveResourceTopology(rtnd.ResourceDesc)
	if len(removed) != 1 {
		t.Fatalf("len(removed) = %d, want 1", len(removed))
	}
	if gm.NumNodes() != 1 {
		t.Fatalf("NumNodes() = %d after RemoveResourceTopology, want 1 (sink only)", gm.NumNodes())
	}
	if _, ok := gm.LeafNodeIDs()[removed[0]]; ok {
		t.Fatal("removed leaf still present in LeafNodeIDs()")
	}
	_ = puID
}
