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
	"sync"

	"github.com/firmament-project/quincy-scheduler/pkg/scheduling/costmodel"
	"github.com/firmament-project/quincy-scheduler/pkg/scheduling/dimacs"
	"github.com/firmament-project/quincy-scheduler/pkg/scheduling/flowgraph"
	"github.com/firmament-project/quincy-scheduler/pkg/types"
)

var _ GraphManager = (*graphManager)(nil)

type graphManager struct {
	mu sync.Mutex

	cm            *changeManager
	sinkNode      *flowgraph.Node
	costModeler   costmodel.CostModeler
	maxTasksPerPu uint64

	resourceToNode   map[types.ResourceID]*flowgraph.Node
	taskToNode       map[types.TaskID]*flowgraph.Node
	taskECToNode     map[types.EquivClass]*flowgraph.Node
	jobUnschedToNode map[types.JobID]*flowgraph.Node
	taskToRunningArc map[types.TaskID]*flowgraph.Arc
	nodeToParentNode map[flowgraph.NodeID]*flowgraph.Node
	leafResourceIDs  map[types.ResourceID]struct{}
	leafNodeIDs      map[flowgraph.NodeID]struct{}
}

// NewGraphManager builds an empty flow graph with just a sink node and
// wires it to costModeler for every price it will need to ask for as
// jobs, tasks and resources are added.
func NewGraphManager(costModeler costmodel.CostModeler, leafResourceIDs map[types.ResourceID]struct{}, dimacsStats *dimacs.ChangeStats, maxTasksPerPu uint64) GraphManager {
	cm := newChangeManager(dimacsStats)
	sink := cm.Graph().Node(cm.Graph().SinkID)
	return &graphManager{
		cm:               cm,
		sinkNode:         sink,
		costModeler:      costModeler,
		maxTasksPerPu:    maxTasksPerPu,
		resourceToNode:   make(map[types.ResourceID]*flowgraph.Node),
		taskToNode:       make(map[types.TaskID]*flowgraph.Node),
		taskECToNode:     make(map[types.EquivClass]*flowgraph.Node),
		jobUnschedToNode: make(map[types.JobID]*flowgraph.Node),
		taskToRunningArc: make(map[types.TaskID]*flowgraph.Arc),
		nodeToParentNode: make(map[flowgraph.NodeID]*flowgraph.Node),
		leafResourceIDs:  leafResourceIDs,
		leafNodeIDs:      make(map[flowgraph.NodeID]struct{}),
	}
}

func (gm *graphManager) GraphChangeManager() GraphChangeManager     { return gm.cm }
func (gm *graphManager) SinkNode() *flowgraph.Node                  { return gm.sinkNode }
func (gm *graphManager) LeafNodeIDs() map[flowgraph.NodeID]struct{} { return gm.leafNodeIDs }
func (gm *graphManager) Node(id flowgraph.NodeID) *flowgraph.Node   { return gm.cm.Graph().Node(id) }
func (gm *graphManager) NumNodes() int                              { return gm.cm.Graph().NumNodes() }
func (gm *graphManager) NumArcs() int                               { return gm.cm.Graph().NumArcs() }

func (gm *graphManager) MachineForPU(id flowgraph.NodeID) *flowgraph.Node {
	gm.mu.Lock()
	defer gm.mu.Unlock()
	node := gm.cm.Graph().Node(id)
	for node != nil && node.Type != flowgraph.NodeTypeMachine {
		node = gm.nodeToParentNode[node.ID]
	}
	return node
}

// AddOrUpdateJobNodes adds an unscheduled aggregator for every job not
// already in the graph, then adds or refreshes the task node and
// preference arcs for each of the job's tasks.
func (gm *graphManager) AddOrUpdateJobNodes(jobs []*types.JobDescriptor) {
	gm.mu.Lock()
	defer gm.mu.Unlock()
	for _, job := range jobs {
		unschedAggNode := gm.jobUnschedToNode[job.UUID]
		if unschedAggNode == nil {
			unschedAggNode = gm.addUnscheduledAggNode(job.UUID)
		}
		for _, task := range job.Tasks {
			gm.updateOrAddTaskNode(task, unschedAggNode)
		}
	}
}

func (gm *graphManager) updateOrAddTaskNode(td *types.TaskDescriptor, unschedAggNode *flowgraph.Node) {
	taskNode := gm.taskToNode[td.UID]
	if taskNode == nil {
		if !taskNeedsNode(td) {
			return
		}
		taskNode = gm.addTaskNode(td)
		gm.updateUnscheduledAggCapacity(unschedAggNode, 1)
	}
	if taskNode.IsScheduled() {
		gm.refreshRunningTaskContinuation(taskNode)
		return
	}
	gm.updateTaskToUnscheduledAggArc(taskNode)
	gm.updateTaskPreferenceArcs(taskNode)
}

func taskNeedsNode(td *types.TaskDescriptor) bool {
	switch td.State {
	case types.TaskRunnable, types.TaskAssigned, types.TaskRunning:
		return true
	}
	return false
}

// AddResourceTopology adds the subtree rooted at rtnd and propagates the
// resulting capacity increase to the ancestors already in the graph.
func (gm *graphManager) AddResourceTopology(rtnd *types.ResourceTopologyNodeDescriptor) {
	gm.mu.Lock()
	defer gm.mu.Unlock()
	rd := rtnd.ResourceDesc
	gm.addResourceTopologyDFS(rtnd, nil)
	if rtnd.ParentID != (types.ResourceID{}) {
		if parentNode := gm.resourceToNode[rtnd.ParentID]; parentNode != nil {
			gm.propagateCapacityToRoot(parentNode,
				int64(gm.capacityFromResNodeToParent(rd)),
				int64(rd.NumSlotsBelow),
				int64(rd.NumRunningTasksBelow))
		}
	}
}

func (gm *graphManager) addResourceTopologyDFS(rtnd *types.ResourceTopologyNodeDescriptor, parent *flowgraph.Node) *flowgraph.Node {
	rd := rtnd.ResourceDesc
	resNode := gm.resourceToNode[rd.UUID]
	if resNode == nil {
		resNode = gm.addResourceNode(rd)
		switch resNode.Type {
		case flowgraph.NodeTypePu:
			if rd.NumSlotsBelow == 0 {
				rd.NumSlotsBelow = gm.maxTasksPerPu
			}
			gm.updateResToSinkArc(resNode)
		case flowgraph.NodeTypeMachine:
			gm.costModeler.AddMachine(rtnd)
		}
	}
	if parent != nil {
		gm.nodeToParentNode[resNode.ID] = parent
		arcDesc := gm.costModeler.ResourceNodeToResourceNode(parent.ResourceDescriptor, rd)
		gm.cm.AddArc(parent, resNode, arcDesc.MinFlow, arcDesc.Capacity, arcDesc.Cost,
			flowgraph.ArcTypeResourceToResource, dimacs.AddArcBetweenRes, "resource topology edge")
	}
	for _, child := range rtnd.Children {
		gm.addResourceTopologyDFS(child, resNode)
	}
	return resNode
}

func (gm *graphManager) addResourceNode(rd *types.ResourceDescriptor) *flowgraph.Node {
	nodeType := flowgraph.ResourceKindToNodeType(rd.Type)
	comment := rd.FriendlyName
	if comment == "" {
		comment = "resource node"
	}
	n := gm.cm.AddNode(nodeType, 0, dimacs.AddResourceNode, comment)
	n.ResourceID = rd.UUID
	n.ResourceDescriptor = rd
	gm.resourceToNode[rd.UUID] = n
	if n.Type == flowgraph.NodeTypePu {
		gm.leafNodeIDs[n.ID] = struct{}{}
		gm.leafResourceIDs[rd.UUID] = struct{}{}
	}
	return n
}

func (gm *graphManager) updateResToSinkArc(resNode *flowgraph.Node) {
	arcDesc := gm.costModeler.LeafResourceNodeToSink(resNode.ResourceID)
	if arc := gm.cm.Graph().GetArc(resNode, gm.sinkNode); arc != nil {
		gm.cm.ChangeArc(arc, arcDesc.MinFlow, arcDesc.Capacity, arcDesc.Cost, dimacs.ChgArcBetweenRes, "leaf resource to sink refresh")
		return
	}
	gm.cm.AddArc(resNode, gm.sinkNode, arcDesc.MinFlow, arcDesc.Capacity, arcDesc.Cost,
		flowgraph.ArcTypeLeafToSink, dimacs.AddArcResToSink, "leaf resource to sink")
}

func (gm *graphManager) capacityFromResNodeToParent(rd *types.ResourceDescriptor) uint64 {
	if rd.NumSlotsBelow < rd.NumRunningTasksBelow {
		return 0
	}
	return rd.NumSlotsBelow - rd.NumRunningTasksBelow
}

func (gm *graphManager) propagateCapacityToRoot(node *flowgraph.Node, capDelta, slotsDelta, runningDelta int64) {
	for node != nil {
		rd := node.ResourceDescriptor
		rd.NumSlotsBelow = addClamped(rd.NumSlotsBelow, slotsDelta)
		rd.NumRunningTasksBelow = addClamped(rd.NumRunningTasksBelow, runningDelta)
		parent := gm.nodeToParentNode[node.ID]
		if parent == nil {
			return
		}
		if arc := gm.cm.Graph().GetArc(parent, node); arc != nil {
			gm.cm.ChangeArcCapacity(arc, addClamped(arc.CapUpperBound, capDelta), dimacs.ChgArcBetweenRes, "propagate capacity change to root")
		}
		node = parent
	}
}

func addClamped(v uint64, delta int64) uint64 {
	if delta < 0 && uint64(-delta) > v {
		return 0
	}
	return uint64(int64(v) + delta)
}

// UpdateResourceTopology refreshes slot/capacity bookkeeping for the
// subtree rooted at rtnd and propagates the delta to the ancestors.
func (gm *graphManager) UpdateResourceTopology(rtnd *types.ResourceTopologyNodeDescriptor) {
	gm.mu.Lock()
	defer gm.mu.Unlock()
	rd := rtnd.ResourceDesc
	oldCap := int64(gm.capacityFromResNodeToParent(rd))
	oldSlots := int64(rd.NumSlotsBelow)
	oldRunning := int64(rd.NumRunningTasksBelow)
	gm.updateResourceTopologyDFS(rtnd)
	if rtnd.ParentID != (types.ResourceID{}) {
		if parentNode := gm.resourceToNode[rtnd.ParentID]; parentNode != nil {
			gm.propagateCapacityToRoot(parentNode,
				int64(gm.capacityFromResNodeToParent(rd))-oldCap,
				int64(rd.NumSlotsBelow)-oldSlots,
				int64(rd.NumRunningTasksBelow)-oldRunning)
		}
	}
}

func (gm *graphManager) updateResourceTopologyDFS(rtnd *types.ResourceTopologyNodeDescriptor) *flowgraph.Node {
	rd := rtnd.ResourceDesc
	resNode := gm.resourceToNode[rd.UUID]
	if resNode == nil {
		return gm.addResourceTopologyDFS(rtnd, nil)
	}
	resNode.ResourceDescriptor = rd
	if resNode.Type == flowgraph.NodeTypePu {
		gm.updateResToSinkArc(resNode)
	}
	for _, child := range rtnd.Children {
		gm.updateResourceTopologyDFS(child)
	}
	return resNode
}

// RemoveResourceTopology removes the subtree rooted at rd, propagates the
// capacity decrease to the ancestors, and returns the ids of every PU
// node removed so the caller can reconcile its own bookkeeping.
func (gm *graphManager) RemoveResourceTopology(rd *types.ResourceDescriptor) []flowgraph.NodeID {
	gm.mu.Lock()
	defer gm.mu.Unlock()
	rNode := gm.resourceToNode[rd.UUID]
	if rNode == nil {
		return nil
	}
	var capDelta int64
	for _, arc := range rNode.OutgoingArcMap {
		if arc.DstNode.ResourceDescriptor != nil {
			capDelta -= int64(arc.CapUpperBound)
		}
	}
	parent := gm.nodeToParentNode[rNode.ID]
	removedSlots := int64(rNode.ResourceDescriptor.NumSlotsBelow)
	removedRunning := int64(rNode.ResourceDescriptor.NumRunningTasksBelow)
	removed := gm.traverseAndRemoveTopology(rNode)
	if parent != nil {
		gm.propagateCapacityToRoot(parent, capDelta, -removedSlots, -removedRunning)
	}
	return removed
}

func (gm *graphManager) traverseAndRemoveTopology(resNode *flowgraph.Node) []flowgraph.NodeID {
	var removed []flowgraph.NodeID
	for _, arc := range resNode.OutgoingArcMap {
		if arc.DstNode.ResourceDescriptor != nil {
			removed = append(removed, gm.traverseAndRemoveTopology(arc.DstNode)...)
		}
	}
	switch resNode.Type {
	case flowgraph.NodeTypePu:
		removed = append(removed, resNode.ID)
	case flowgraph.NodeTypeMachine:
		gm.costModeler.RemoveMachine(resNode.ResourceID)
	}
	gm.removeResourceNode(resNode)
	return removed
}

func (gm *graphManager) removeResourceNode(resNode *flowgraph.Node) {
	delete(gm.nodeToParentNode, resNode.ID)
	delete(gm.leafNodeIDs, resNode.ID)
	delete(gm.leafResourceIDs, resNode.ResourceID)
	delete(gm.resourceToNode, resNode.ResourceID)
	gm.cm.DeleteNode(resNode, dimacs.DelResourceNode, "remove resource node")
}

// UpdateArcsForBoundTask pins taskID to resourceID: every preference arc
// but the one to resourceID is dropped, and the surviving arc becomes the
// running arc, priced by the cost model's continuation cost.
func (gm *graphManager) UpdateArcsForBoundTask(taskID types.TaskID, resourceID types.ResourceID) {
	gm.mu.Lock()
	defer gm.mu.Unlock()
	taskNode := gm.taskToNode[taskID]
	resNode := gm.resourceToNode[resourceID]
	if taskNode == nil || resNode == nil {
		return
	}
	taskNode.Type = flowgraph.NodeTypeScheduledTask
	gm.pinTaskToNode(taskNode, resNode)
}

func (gm *graphManager) pinTaskToNode(taskNode, resNode *flowgraph.Node) {
	taskID := taskNode.Task.UID
	addedRunning := false
	var toDelete []*flowgraph.Arc
	for _, arc := range taskNode.OutgoingArcMap {
		if arc.Dst != resNode.ID {
			toDelete = append(toDelete, arc)
			continue
		}
		arcDesc := gm.costModeler.TaskContinuation(taskID)
		arc.Type = flowgraph.ArcTypeRunning
		gm.cm.ChangeArc(arc, 0, arcDesc.Capacity, arcDesc.Cost, dimacs.ChgArcRunningTask, "pin task: transform to running arc")
		gm.taskToRunningArc[taskID] = arc
		addedRunning = true
	}
	for _, arc := range toDelete {
		gm.cm.DeleteArc(arc, dimacs.DelArcTaskToRes, "pin task: drop other preference arcs")
	}
	if !addedRunning {
		arcDesc := gm.costModeler.TaskContinuation(taskID)
		arc := gm.cm.AddArc(taskNode, resNode, 0, arcDesc.Capacity, arcDesc.Cost,
			flowgraph.ArcTypeRunning, dimacs.AddArcRunningTask, "pin task: add running arc")
		gm.taskToRunningArc[taskID] = arc
	}
}

func (gm *graphManager) TaskEvicted(taskID types.TaskID, resourceID types.ResourceID) {
	gm.mu.Lock()
	defer gm.mu.Unlock()
	taskNode := gm.taskToNode[taskID]
	if taskNode == nil {
		return
	}
	taskNode.Type = flowgraph.NodeTypeUnscheduledTask
	if arc, ok := gm.taskToRunningArc[taskID]; ok {
		delete(gm.taskToRunningArc, taskID)
		gm.cm.DeleteArc(arc, dimacs.DelArcRunningTask, "task evicted: delete running arc")
	}
	if unschedAggNode := gm.jobUnschedToNode[taskNode.JobID]; unschedAggNode != nil {
		gm.updateUnscheduledAggCapacity(unschedAggNode, 1)
	}
}

func (gm *graphManager) TaskCompleted(taskID types.TaskID) flowgraph.NodeID {
	return gm.removeTaskAndNode(taskID)
}
func (gm *graphManager) TaskFailed(taskID types.TaskID) flowgraph.NodeID {
	return gm.removeTaskAndNode(taskID)
}
func (gm *graphManager) TaskKilled(taskID types.TaskID) flowgraph.NodeID {
	return gm.removeTaskAndNode(taskID)
}
func (gm *graphManager) DeleteTaskNode(taskID types.TaskID) flowgraph.NodeID {
	return gm.removeTaskAndNode(taskID)
}

func (gm *graphManager) removeTaskAndNode(taskID types.TaskID) flowgraph.NodeID {
	gm.mu.Lock()
	defer gm.mu.Unlock()
	taskNode := gm.taskToNode[taskID]
	if taskNode == nil {
		return 0
	}
	if unschedAggNode := gm.jobUnschedToNode[taskNode.JobID]; unschedAggNode != nil {
		gm.updateUnscheduledAggCapacity(unschedAggNode, -1)
	}
	delete(gm.taskToRunningArc, taskID)
	id := gm.removeTaskNode(taskNode)
	gm.costModeler.RemoveTask(taskID)
	return id
}

func (gm *graphManager) removeTaskNode(n *flowgraph.Node) flowgraph.NodeID {
	id := n.ID
	n.Excess = 0
	gm.sinkNode.Excess++
	delete(gm.taskToNode, n.Task.UID)
	gm.cm.DeleteNode(n, dimacs.DelTaskNode, "remove task node")
	return id
}

// DeleteNodesForJob removes every task node belonging to jobID and the
// job's own unscheduled aggregator node.
func (gm *graphManager) DeleteNodesForJob(jobID types.JobID) {
	gm.mu.Lock()
	defer gm.mu.Unlock()
	for taskID, node := range gm.taskToNode {
		if node.JobID != jobID {
			continue
		}
		delete(gm.taskToRunningArc, taskID)
		gm.removeTaskNode(node)
		gm.costModeler.RemoveTask(taskID)
	}
	if unschedAggNode, ok := gm.jobUnschedToNode[jobID]; ok {
		delete(gm.jobUnschedToNode, jobID)
		gm.cm.DeleteNode(unschedAggNode, dimacs.DelUnschedAggNode, "remove job unscheduled aggregator")
	}
}

func (gm *graphManager) PurgeUnconnectedEquivClassNodes() {
	gm.mu.Lock()
	defer gm.mu.Unlock()
	for ec, node := range gm.taskECToNode {
		if len(node.IncomingArcMap) == 0 {
			delete(gm.taskECToNode, ec)
			gm.cm.DeleteNode(node, dimacs.DelEquivClassNode, "purge unconnected equivalence class node")
		}
	}
}

func (gm *graphManager) UpdateAllCostsToUnscheduledAggs() {
	gm.mu.Lock()
	defer gm.mu.Unlock()
	gm.costModeler.AdvanceRound()
	for _, taskNode := range gm.taskToNode {
		if taskNode.IsScheduled() {
			gm.refreshRunningTaskContinuation(taskNode)
			continue
		}
		gm.updateTaskToUnscheduledAggArc(taskNode)
	}
}

func (gm *graphManager) refreshRunningTaskContinuation(taskNode *flowgraph.Node) {
	arc, ok := gm.taskToRunningArc[taskNode.Task.UID]
	if !ok {
		return
	}
	arcDesc := gm.costModeler.TaskContinuation(taskNode.Task.UID)
	gm.cm.ChangeArc(arc, 0, arcDesc.Capacity, arcDesc.Cost, dimacs.ChgArcRunningTask, "refresh running task continuation cost")
}

func (gm *graphManager) addUnscheduledAggNode(jobID types.JobID) *flowgraph.Node {
	n := gm.cm.AddNode(flowgraph.NodeTypeJobAggregator, 0, dimacs.AddUnschedAggNode, "unscheduled aggregator for "+jobID.String())
	n.JobID = jobID
	gm.jobUnschedToNode[jobID] = n
	return n
}

func (gm *graphManager) updateUnscheduledAggCapacity(node *flowgraph.Node, delta int64) {
	arc := gm.cm.Graph().GetArc(node, gm.sinkNode)
	if arc == nil {
		arcDesc := gm.costModeler.UnscheduledAggToSink(node.JobID)
		cap := arcDesc.Capacity
		if delta > 0 {
			cap += uint64(delta)
		}
		gm.cm.AddArc(node, gm.sinkNode, arcDesc.MinFlow, cap, arcDesc.Cost,
			flowgraph.ArcTypeUnschedAggToSink, dimacs.AddArcToUnsched, "unscheduled aggregator to sink")
		return
	}
	gm.cm.ChangeArcCapacity(arc, addClamped(arc.CapUpperBound, delta), dimacs.ChgArcToUnsched, "unscheduled aggregator to sink capacity update")
}

func (gm *graphManager) addTaskNode(td *types.TaskDescriptor) *flowgraph.Node {
	gm.costModeler.AddTask(td.UID)
	n := gm.cm.AddNode(flowgraph.NodeTypeUnscheduledTask, 1, dimacs.AddTaskNode, "task node")
	n.Task = td
	n.JobID = td.JobID
	gm.sinkNode.Excess--
	gm.taskToNode[td.UID] = n
	return n
}

func (gm *graphManager) addEquivClassNode(ec types.EquivClass) *flowgraph.Node {
	n := gm.cm.AddNode(flowgraph.NodeTypeEquivClass, 0, dimacs.AddEquivClassNode, "equivalence class node")
	n.EquivClass = &ec
	gm.taskECToNode[ec] = n
	return n
}

func (gm *graphManager) updateTaskToUnscheduledAggArc(taskNode *flowgraph.Node) {
	unschedAggNode := gm.jobUnschedToNode[taskNode.JobID]
	if unschedAggNode == nil {
		return
	}
	arcDesc := gm.costModeler.TaskToUnscheduledAgg(taskNode.Task.UID)
	if arc := gm.cm.Graph().GetArc(taskNode, unschedAggNode); arc != nil {
		gm.cm.ChangeArc(arc, arcDesc.MinFlow, arcDesc.Capacity, arcDesc.Cost, dimacs.ChgArcToUnsched, "task to unscheduled aggregator refresh")
		return
	}
	gm.cm.AddArc(taskNode, unschedAggNode, arcDesc.MinFlow, arcDesc.Capacity, arcDesc.Cost,
		flowgraph.ArcTypeTaskToUnschedAgg, dimacs.AddArcToUnsched, "task to unscheduled aggregator")
}

// updateTaskPreferenceArcs refreshes a task's preference arcs to
// resources and equivalence classes, dropping whichever no longer appear
// in the cost model's preference lists.
func (gm *graphManager) updateTaskPreferenceArcs(taskNode *flowgraph.Node) {
	taskID := taskNode.Task.UID

	prefResources := gm.costModeler.GetTaskPreferenceArcs(taskID)
	prefResSet := make(map[types.ResourceID]struct{}, len(prefResources))
	for _, rID := range prefResources {
		prefResSet[rID] = struct{}{}
		resNode := gm.resourceToNode[rID]
		if resNode == nil {
			continue
		}
		arcDesc := gm.costModeler.TaskToResourceNode(taskID, rID)
		arc := gm.cm.Graph().GetArc(taskNode, resNode)
		if arc == nil {
			gm.cm.AddArc(taskNode, resNode, arcDesc.MinFlow, arcDesc.Capacity, arcDesc.Cost,
				flowgraph.ArcTypeTaskToResource, dimacs.AddArcTaskToRes, "task preference to resource")
		} else if arc.Type != flowgraph.ArcTypeRunning {
			gm.cm.ChangeArc(arc, arcDesc.MinFlow, arcDesc.Capacity, arcDesc.Cost, dimacs.ChgArcTaskToRes, "task preference to resource refresh")
		}
	}

	ecs := gm.costModeler.GetTaskEquivClasses(taskID)
	ecSet := make(map[types.EquivClass]struct{}, len(ecs))
	for _, ec := range ecs {
		ecSet[ec] = struct{}{}
		ecNode := gm.taskECToNode[ec]
		if ecNode == nil {
			ecNode = gm.addEquivClassNode(ec)
		}
		arcDesc := gm.costModeler.TaskToEquivClassAggregator(taskID, ec)
		if arc := gm.cm.Graph().GetArc(taskNode, ecNode); arc == nil {
			gm.cm.AddArc(taskNode, ecNode, arcDesc.MinFlow, arcDesc.Capacity, arcDesc.Cost,
				flowgraph.ArcTypeTaskToEquivClass, dimacs.AddArcTaskToEquivClass, "task to equivalence class")
		} else {
			gm.cm.ChangeArc(arc, arcDesc.MinFlow, arcDesc.Capacity, arcDesc.Cost, dimacs.ChgArcTaskToEquivClass, "task to equivalence class refresh")
		}
		gm.updateEquivClassOutgoing(ecNode)
	}

	var toDelete []*flowgraph.Arc
	for _, arc := range taskNode.OutgoingArcMap {
		if arc.Type == flowgraph.ArcTypeRunning || arc.Type == flowgraph.ArcTypeTaskToUnschedAgg {
			continue
		}
		dst := arc.DstNode
		switch {
		case dst.ResourceID != (types.ResourceID{}):
			if _, ok := prefResSet[dst.ResourceID]; !ok {
				toDelete = append(toDelete, arc)
			}
		case dst.EquivClass != nil:
			if _, ok := ecSet[*dst.EquivClass]; !ok {
				toDelete = append(toDelete, arc)
			}
		}
	}
	for _, arc := range toDelete {
		gm.cm.DeleteArc(arc, dimacs.DelArcTaskToRes, "remove stale task preference arc")
	}
}

// updateEquivClassOutgoing refreshes an equivalence class node's fan-out
// arcs to the resources the cost model currently prefers for it.
func (gm *graphManager) updateEquivClassOutgoing(ecNode *flowgraph.Node) {
	ec := *ecNode.EquivClass
	prefResources := gm.costModeler.GetOutgoingEquivClassPrefArcs(ec)
	prefSet := make(map[types.ResourceID]struct{}, len(prefResources))
	for _, rID := range prefResources {
		prefSet[rID] = struct{}{}
		resNode := gm.resourceToNode[rID]
		if resNode == nil {
			continue
		}
		arcDesc := gm.costModeler.EquivClassToResourceNode(ec, rID)
		if arc := gm.cm.Graph().GetArc(ecNode, resNode); arc == nil {
			gm.cm.AddArc(ecNode, resNode, arcDesc.MinFlow, arcDesc.Capacity, arcDesc.Cost,
				flowgraph.ArcTypeEquivClassToResource, dimacs.AddArcEquivClassToRes, "equivalence class to resource")
		} else {
			gm.cm.ChangeArc(arc, arcDesc.MinFlow, arcDesc.Capacity, arcDesc.Cost, dimacs.ChgArcEquivClassToRes, "equivalence class to resource refresh")
		}
	}
	var toDelete []*flowgraph.Arc
	for _, arc := range ecNode.OutgoingArcMap {
		if _, ok := prefSet[arc.DstNode.ResourceID]; !ok {
			toDelete = append(toDelete, arc)
		}
	}
	for _, arc := range toDelete {
		gm.cm.DeleteArc(arc, dimacs.DelArcBetweenRes, "remove stale equivalence class preference arc")
	}
}
