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

package dimacs

import "strconv"

// ChangeType classifies a recorded change for statistics purposes. Order
// matters for GetStatsString's column layout, so entries are never
// reordered, only appended to.
type ChangeType int

const NumChangeTypes = 26

const (
	AddTaskNode ChangeType = iota
	AddResourceNode
	AddEquivClassNode
	AddUnschedAggNode
	AddSinkNode
	AddArcTaskToEquivClass
	AddArcTaskToRes
	AddArcEquivClassToRes
	AddArcBetweenRes
	AddArcToUnsched
	AddArcRunningTask
	AddArcResToSink
	DelUnschedAggNode
	DelTaskNode
	DelResourceNode
	DelEquivClassNode
	DelArcRunningTask
	DelArcBetweenRes
	DelArcTaskToRes
	DelArcResToSink
	ChgArcToUnsched
	ChgArcTaskToEquivClass
	ChgArcEquivClassToRes
	ChgArcBetweenRes
	ChgArcRunningTask
	ChgArcTaskToRes
)

type ChangeStats struct {
	NodesAdded       uint64
	NodesRemoved     uint64
	ArcsAdded        uint64
	ArcsChanged      uint64
	ArcsRemoved      uint64
	NumChangesOfType [NumChangeTypes]uint64
}

func (cs *ChangeStats) GetStatsString() string {
	s := strconv.FormatUint(cs.NodesAdded, 10) +
		"," + strconv.FormatUint(cs.NodesRemoved, 10) +
		"," + strconv.FormatUint(cs.ArcsAdded, 10) +
		"," + strconv.FormatUint(cs.ArcsChanged, 10) +
		"," + strconv.FormatUint(cs.ArcsRemoved, 10)
	for i := 0; i < NumChangeTypes; i++ {
		s += "," + strconv.FormatUint(cs.NumChangesOfType[i], 10)
	}
	return s
}

func (cs *ChangeStats) ResetStats() {
	*cs = ChangeStats{}
}

// UpdateStats increments the counters implied by changeType. It is called
// once per recorded change by the graph change manager.
func (cs *ChangeStats) UpdateStats(changeType ChangeType) {
	cs.NumChangesOfType[changeType]++
	switch {
	case changeType <= AddArcResToSink && changeType >= AddArcTaskToEquivClass:
		cs.ArcsAdded++
	case changeType == AddTaskNode || changeType == AddResourceNode ||
		changeType == AddEquivClassNode || changeType == AddUnschedAggNode || changeType == AddSinkNode:
		cs.NodesAdded++
	case changeType >= DelUnschedAggNode && changeType <= DelEquivClassNode:
		cs.NodesRemoved++
	case changeType >= DelArcRunningTask && changeType <= DelArcResToSink:
		cs.ArcsRemoved++
	case changeType >= ChgArcToUnsched:
		cs.ArcsChanged++
	}
}
