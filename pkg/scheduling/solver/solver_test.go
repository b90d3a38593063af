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

package solver

import (
	"strings"
	"testing"

	"github.com/firmament-project/quincy-scheduler/pkg/scheduling/costmodel"
	"github.com/firmament-project/quincy-scheduler/pkg/scheduling/dimacs"
	"github.com/firmament-project/quincy-scheduler/pkg/scheduling/flowgraph"
	"github.com/firmament-project/quincy-scheduler/pkg/scheduling/flowmanager"
	"github.com/firmament-project/quincy-scheduler/pkg/types"
)

func TestReadFlowRecordsParsesPositiveFlowOnly(t *testing.T) {
	reply := strings.Join([]string{
		"c flow scheduler run",
		"f 3 1 5",
		"f 4 1 0",
		"s 87",
		"f 2 3 5",
		"c ALGORITHM TIME 0.002s",
		"c EOI",
	}, "\n") + "\n"

	records, err := readFlowRecords(strings.NewReader(reply))
	if err != nil {
		t.Fatalf("readFlowRecords returned error: %v", err)
	}
	want := []FlowRecord{
		{Src: 3, Dst: 1, Flow: 5},
		{Src: 2, Dst: 3, Flow: 5},
	}
	if len(records) != len(want) {
		t.Fatalf("got %d records, want %d: %+v", len(records), len(want), records)
	}
	for i, r := range records {
		if r != want[i] {
			t.Errorf("record %d = %+v, want %+v", i, r, want[i])
		}
	}
}

func TestReadFlowRecordsSkipsMalformedLine(t *testing.T) {
	reply := "f not-a-number\nf 1 2 3\nc EOI\n"
	records, err := readFlowRecords(strings.NewReader(reply))
	if err != nil {
		t.Fatalf("readFlowRecords returned error: %v", err)
	}
	if len(records) != 1 || records[0] != (FlowRecord{Src: 1, Dst: 2, Flow: 3}) {
		t.Fatalf("records = %+v, want a single {1 2 3}", records)
	}
}

func TestReadFlowRecordsErrorsWithoutTerminator(t *testing.T) {
	_, err := readFlowRecords(strings.NewReader("f 1 2 3\n"))
	if err == nil {
		t.Fatal("expected an error when the reply stream ends before c EOI")
	}
}

func TestFlowRecordFieldsAreNodeIDs(t *testing.T) {
	r := FlowRecord{Src: flowgraph.NodeID(1), Dst: flowgraph.NodeID(2), Flow: 7}
	if r.Src != 1 || r.Dst != 2 || r.Flow != 7 {
		t.Fatalf("unexpected FlowRecord zero-value handling: %+v", r)
	}
}

// TestWriteProblemSendsFullSnapshotOnFirstRoundAfterRespawn covers the
// "solver crash" end-to-end scenario: once a restart (or an initial
// spawn) has cleared sentFull, the next writeProblem call must emit a
// full "p min" snapshot rather than an incremental change set, even
// though the graph's change log isn't empty.
func TestWriteProblemSendsFullSnapshotOnFirstRoundAfterRespawn(t *testing.T) {
	resourceMap := types.NewResourceMap()
	taskMap := types.NewTaskMap()
	trivial := costmodel.NewTrivial(resourceMap, taskMap)
	gm := flowmanager.NewGraphManager(trivial, make(map[types.ResourceID]struct{}), &dimacs.ChangeStats{}, 1)

	job := &types.JobDescriptor{UUID: types.NewJobID()}
	job.Tasks = []*types.TaskDescriptor{{UID: types.TaskID(1), JobID: job.UUID, State: types.TaskRunnable}}
	gm.AddOrUpdateJobNodes([]*types.JobDescriptor{job})

	s := &externalSolver{gm: gm}

	var afterRespawn strings.Builder
	if err := s.writeProblem(&afterRespawn, false); err != nil {
		t.Fatalf("writeProblem(sentFull=false): %v", err)
	}
	if !strings.HasPrefix(afterRespawn.String(), "c flow scheduler full snapshot\n") {
		t.Fatalf("writeProblem(sentFull=false) did not emit a full snapshot:\n%s", afterRespawn.String())
	}

	gm.AddOrUpdateJobNodes([]*types.JobDescriptor{job}) // idempotent, but exercises the change log path below
	job2 := &types.JobDescriptor{UUID: types.NewJobID()}
	job2.Tasks = []*types.TaskDescriptor{{UID: types.TaskID(2), JobID: job2.UUID, State: types.TaskRunnable}}
	gm.AddOrUpdateJobNodes([]*types.JobDescriptor{job2})

	var steadyState strings.Builder
	if err := s.writeProblem(&steadyState, true); err != nil {
		t.Fatalf("writeProblem(sentFull=true): %v", err)
	}
	if strings.HasPrefix(steadyState.String(), "c flow scheduler full snapshot\n") {
		t.Fatalf("writeProblem(sentFull=true) emitted a full snapshot, want an incremental change set:\n%s", steadyState.String())
	}
}
