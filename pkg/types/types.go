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

// Common type definitions for the scheduling core: identifiers, domain
// descriptors, and the thread-safe maps that own them.
package types

import (
	"sync"

	"github.com/google/uuid"
)

type (
	// TaskID is a dense 64-bit task identifier, unique across all jobs:
	// TaskMap and the flow graph manager key tasks by it alone.
	TaskID uint64
	// EquivClass groups tasks or resources that the cost model treats
	// interchangeably.
	EquivClass uint64
)

// JobID and ResourceID are 128-bit UUIDs per the data model.
type JobID uuid.UUID
type ResourceID uuid.UUID

func (j JobID) String() string      { return uuid.UUID(j).String() }
func (r ResourceID) String() string { return uuid.UUID(r).String() }

func NewJobID() JobID           { return JobID(uuid.New()) }
func NewResourceID() ResourceID { return ResourceID(uuid.New()) }

// ResourceKind mirrors the resource-descriptor kinds in the hierarchical
// topology (cluster -> machine -> NUMA -> socket -> cache -> core -> PU).
type ResourceKind int

const (
	ResourceCoordinator ResourceKind = iota + 1
	ResourceMachine
	ResourceNumaNode
	ResourceSocket
	ResourceCache
	ResourceCore
	ResourcePu
)

// ResourceState tracks basic lifecycle for a resource.
type ResourceState int

const (
	ResourceIdle ResourceState = iota
	ResourceBusy
	ResourceFailed
)

// ResourceDescriptor is the external representation of a resource, a
// plain JSON/YAML-tagged struct rather than a generated protobuf message
// since no .proto source ships with this module.
type ResourceDescriptor struct {
	UUID         ResourceID    `json:"uuid" yaml:"uuid"`
	Type         ResourceKind  `json:"type" yaml:"type"`
	State        ResourceState `json:"state" yaml:"state"`
	Schedulable  bool          `json:"schedulable" yaml:"schedulable"`
	FriendlyName string        `json:"friendly_name,omitempty" yaml:"friendly_name,omitempty"`

	// NumSlotsBelow and NumRunningTasksBelow are aggregate counts over the
	// subtree rooted at this resource, maintained by the flow graph
	// manager as machines and tasks come and go.
	NumSlotsBelow         uint64       `json:"num_slots_below" yaml:"num_slots_below"`
	NumRunningTasksBelow  uint64       `json:"num_running_tasks_below" yaml:"num_running_tasks_below"`
	CurrentRunningTasks   []TaskID     `json:"current_running_tasks,omitempty" yaml:"current_running_tasks,omitempty"`
}

// ResourceTopologyNodeDescriptor is one node in the resource tree, with
// children forming the rest of the tree below it.
type ResourceTopologyNodeDescriptor struct {
	ResourceDesc *ResourceDescriptor               `json:"resource_desc" yaml:"resource_desc"`
	ParentID     ResourceID                        `json:"parent_id,omitempty" yaml:"parent_id,omitempty"`
	Children     []*ResourceTopologyNodeDescriptor `json:"children,omitempty" yaml:"children,omitempty"`
}

// TaskState tracks a task's lifecycle. A bound task normally moves
// forward (runnable -> running -> completed); when its resource is
// deregistered the scheduler moves it back to runnable.
type TaskState int

const (
	TaskCreated TaskState = iota
	TaskRunnable
	TaskAssigned
	TaskRunning
	TaskCompleted
	TaskFailed
)

// TaskDescriptor is the external representation of a task.
type TaskDescriptor struct {
	UID     TaskID     `json:"uid" yaml:"uid"`
	JobID   JobID      `json:"job_id" yaml:"job_id"`
	State   TaskState  `json:"state" yaml:"state"`
	BoundTo ResourceID `json:"bound_to,omitempty" yaml:"bound_to,omitempty"`
	// EstimatedRuntimeSec backs the shortest-job-first cost model.
	EstimatedRuntimeSec float64 `json:"estimated_runtime_sec,omitempty" yaml:"estimated_runtime_sec,omitempty"`
	// DataOnResource names the resources on which the task's input data
	// already resides, for the Quincy locality-aware cost model.
	DataOnResource map[ResourceID]uint64 `json:"data_on_resource,omitempty" yaml:"data_on_resource,omitempty"`
}

// JobState tracks the lifecycle of a job as a whole.
type JobState int

const (
	JobNew JobState = iota
	JobRunning
	JobCompleted
	JobFailed
)

// JobDescriptor is the external representation of a job: a set of tasks
// sharing a lifecycle.
type JobDescriptor struct {
	UUID  JobID             `json:"uuid" yaml:"uuid"`
	State JobState          `json:"state" yaml:"state"`
	Tasks []*TaskDescriptor `json:"tasks,omitempty" yaml:"tasks,omitempty"`
}

// ResourceMap, JobMap, and TaskMap are thread-safe descriptor maps owned
// externally to the flow graph; graph nodes hold borrowed (non-owning)
// pointers into these maps. Grounded on coreos-ksched/pkg/types/types.go's
// map shape, generalized from its protobuf-backed values to the plain
// structs above.
type ResourceMap struct {
	mu sync.RWMutex
	m  map[ResourceID]*ResourceStatus
}

func NewResourceMap() *ResourceMap {
	return &ResourceMap{m: make(map[ResourceID]*ResourceStatus)}
}

func (rm *ResourceMap) RLock()   { rm.mu.RLock() }
func (rm *ResourceMap) RUnlock() { rm.mu.RUnlock() }

func (rm *ResourceMap) UnsafeGet() map[ResourceID]*ResourceStatus { return rm.m }

func (rm *ResourceMap) FindPtrOrNull(k ResourceID) *ResourceStatus {
	rm.mu.RLock()
	defer rm.mu.RUnlock()
	return rm.m[k]
}

func (rm *ResourceMap) InsertOrUpdate(k ResourceID, v *ResourceStatus) bool {
	rm.mu.Lock()
	defer rm.mu.Unlock()
	_, ok := rm.m[k]
	rm.m[k] = v
	return !ok
}

func (rm *ResourceMap) InsertIfNotPresent(k ResourceID, v *ResourceStatus) bool {
	rm.mu.Lock()
	defer rm.mu.Unlock()
	if _, ok := rm.m[k]; ok {
		return false
	}
	rm.m[k] = v
	return true
}

func (rm *ResourceMap) Delete(k ResourceID) {
	rm.mu.Lock()
	defer rm.mu.Unlock()
	delete(rm.m, k)
}

func (rm *ResourceMap) ContainsKey(k ResourceID) bool {
	rm.mu.RLock()
	defer rm.mu.RUnlock()
	_, ok := rm.m[k]
	return ok
}

type JobMap struct {
	mu sync.RWMutex
	m  map[JobID]*JobDescriptor
}

func NewJobMap() *JobMap { return &JobMap{m: make(map[JobID]*JobDescriptor)} }

func (jm *JobMap) RLock()   { jm.mu.RLock() }
func (jm *JobMap) RUnlock() { jm.mu.RUnlock() }

func (jm *JobMap) UnsafeGet() map[JobID]*JobDescriptor { return jm.m }

func (jm *JobMap) FindPtrOrNull(k JobID) *JobDescriptor {
	jm.mu.RLock()
	defer jm.mu.RUnlock()
	return jm.m[k]
}

func (jm *JobMap) InsertOrUpdate(k JobID, v *JobDescriptor) bool {
	jm.mu.Lock()
	defer jm.mu.Unlock()
	_, ok := jm.m[k]
	jm.m[k] = v
	return !ok
}

func (jm *JobMap) Delete(k JobID) {
	jm.mu.Lock()
	defer jm.mu.Unlock()
	delete(jm.m, k)
}

type TaskMap struct {
	mu sync.RWMutex
	m  map[TaskID]*TaskDescriptor
}

func NewTaskMap() *TaskMap { return &TaskMap{m: make(map[TaskID]*TaskDescriptor)} }

func (tm *TaskMap) RLock()   { tm.mu.RLock() }
func (tm *TaskMap) RUnlock() { tm.mu.RUnlock() }

func (tm *TaskMap) UnsafeGet() map[TaskID]*TaskDescriptor { return tm.m }

func (tm *TaskMap) FindPtrOrNull(k TaskID) *TaskDescriptor {
	tm.mu.RLock()
	defer tm.mu.RUnlock()
	return tm.m[k]
}

func (tm *TaskMap) InsertOrUpdate(k TaskID, v *TaskDescriptor) bool {
	tm.mu.Lock()
	defer tm.mu.Unlock()
	_, ok := tm.m[k]
	tm.m[k] = v
	return !ok
}

func (tm *TaskMap) Delete(k TaskID) {
	tm.mu.Lock()
	defer tm.mu.Unlock()
	delete(tm.m, k)
}

func (tm *TaskMap) ContainsKey(k TaskID) bool {
	tm.mu.RLock()
	defer tm.mu.RUnlock()
	_, ok := tm.m[k]
	return ok
}
