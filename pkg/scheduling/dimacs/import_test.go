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

import (
	"bytes"
	"strings"
	"testing"

	"github.com/firmament-project/quincy-scheduler/pkg/scheduling/flowgraph"
)

func TestImportRoundTripsExport(t *testing.T) {
	g := flowgraph.NewGraph(false)
	a := g.AddNode()
	b := g.AddNode()
	a.Excess = 2
	b.Excess = -2
	g.AddArcWithCapAndCost(a, g.Node(g.SinkID), 0, 1, 3)
	g.AddArcWithCapAndCost(a, b, 0, 2, 1)
	g.AddArcWithCapAndCost(b, g.Node(g.SinkID), 0, 2, 0)

	var buf bytes.Buffer
	Export(g, &buf)

	imported, err := Import(&buf)
	if err != nil {
		t.Fatalf("Import returned error: %v", err)
	}
	if imported.NumNodes() != g.NumNodes() {
		t.Fatalf("NumNodes() = %d, want %d", imported.NumNodes(), g.NumNodes())
	}
	if imported.NumArcs() != g.NumArcs() {
		t.Fatalf("NumArcs() = %d, want %d", imported.NumArcs(), g.NumArcs())
	}
	if imported.Node(a.ID).Excess != 2 || imported.Node(b.ID).Excess != -2 {
		t.Fatalf("excess not preserved across round trip: a=%d b=%d",
			imported.Node(a.ID).Excess, imported.Node(b.ID).Excess)
	}
	arc := imported.GetArcByIDs(a.ID, b.ID)
	if arc == nil || arc.CapUpperBound != 2 || arc.Cost != 1 {
		t.Fatalf("arc a->b not preserved correctly: %+v", arc)
	}
}

func TestImportRejectsMissingTerminator(t *testing.T) {
	_, err := Import(strings.NewReader("p min 1 0\n"))
	if err == nil {
		t.Fatal("expected an error when the stream ends before c EOI")
	}
}

func TestImportRejectsArcBeforeHeader(t *testing.T) {
	_, err := Import(strings.NewReader("a 1 2 0 1 0\nc EOI\n"))
	if err == nil {
		t.Fatal("expected an error for an arc line preceding the p min header")
	}
}
