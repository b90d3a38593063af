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
	"fmt"
	"io"
	"sort"

	"github.com/firmament-project/quincy-scheduler/pkg/scheduling/flowgraph"
)

// Export writes a complete problem description: a "p min |V| |E|"
// header, one "n" line per node with nonzero excess, one "a" line per
// arc, terminated by "c EOI". Node and arc iteration order is stabilized
// by sorting on id so repeated exports of an unchanged graph are
// byte-identical.
func Export(g *flowgraph.Graph, w io.Writer) {
	fmt.Fprintf(w, "c flow scheduler full snapshot\n")
	fmt.Fprintf(w, "p min %d %d\n", g.NumNodes(), g.NumArcs())

	ids := make([]flowgraph.NodeID, 0, g.NumNodes())
	for id := range g.Nodes() {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	for _, id := range ids {
		n := g.Node(id)
		if n.Excess != 0 {
			fmt.Fprintf(w, "n %d %d\n", n.ID, n.Excess)
		}
	}

	arcs := make([]*flowgraph.Arc, 0, g.NumArcs())
	for a := range g.Arcs() {
		arcs = append(arcs, a)
	}
	sort.Slice(arcs, func(i, j int) bool {
		if arcs[i].Src != arcs[j].Src {
			return arcs[i].Src < arcs[j].Src
		}
		return arcs[i].Dst < arcs[j].Dst
	})
	for _, a := range arcs {
		fmt.Fprintf(w, "a %d %d %d %d %d\n", a.Src, a.Dst, a.CapLowerBound, a.CapUpperBound, a.Cost)
	}

	fmt.Fprint(w, "c EOI\n")
}

// ExportIncremental writes only the queued changes, in append order,
// followed by the "c EOI" terminator.
func ExportIncremental(changes []Change, w io.Writer) {
	for _, c := range changes {
		if d := c.GenerateChangeDescription(); d != "" {
			fmt.Fprint(w, d)
		}
		fmt.Fprint(w, c.GenerateChange())
	}
	fmt.Fprint(w, "c EOI\n")
}
