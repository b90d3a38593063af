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
	"bufio"
	"fmt"
	"io"

	"github.com/pkg/errors"

	"github.com/firmament-project/quincy-scheduler/pkg/scheduling/flowgraph"
)

// Import reads a full-snapshot problem written by Export and rebuilds the
// graph it describes. It does not support the incremental change-line
// format ExportIncremental writes, since that format only makes sense
// applied on top of a graph the reader already has.
//
// The "p min V E" header gives the node count: Import creates the sink
// (id 1, via flowgraph.NewGraph) and then V-1 more nodes in order. A
// graph that has had nodes deleted has gaps in its id range, so its lines
// can reference ids above V; Import then adds nodes up to the highest id
// referenced, so every id means the same node it did in the process that
// wrote the snapshot. Ids in a gap become nodes with no arcs and no excess.
func Import(r io.Reader) (*flowgraph.Graph, error) {
	scanner := bufio.NewScanner(r)
	var g *flowgraph.Graph
	var lastID flowgraph.NodeID
	lookup := func(id flowgraph.NodeID) *flowgraph.Node {
		for lastID < id {
			lastID = g.AddNode().ID
		}
		return g.Node(id)
	}
	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			continue
		}
		switch line[0] {
		case 'c':
			if line == "c EOI" {
				if g == nil {
					return nil, errors.New("dimacs: c EOI before p min header")
				}
				return g, nil
			}
		case 'p':
			var numNodes, numArcs int
			if _, err := fmt.Sscanf(line, "p min %d %d", &numNodes, &numArcs); err != nil {
				return nil, errors.Wrapf(err, "dimacs: malformed header %q", line)
			}
			g = flowgraph.NewGraph(false)
			lastID = g.SinkID
			for i := 1; i < numNodes; i++ {
				lastID = g.AddNode().ID
			}
		case 'n':
			if g == nil {
				return nil, errors.New("dimacs: n line before p min header")
			}
			var id flowgraph.NodeID
			var excess int64
			if _, err := fmt.Sscanf(line, "n %d %d", &id, &excess); err != nil {
				return nil, errors.Wrapf(err, "dimacs: malformed node line %q", line)
			}
			node := lookup(id)
			if node == nil {
				return nil, errors.Errorf("dimacs: n line references unknown node %d", id)
			}
			node.Excess = excess
		case 'a':
			if g == nil {
				return nil, errors.New("dimacs: a line before p min header")
			}
			var src, dst flowgraph.NodeID
			var lower, upper uint64
			var cost int64
			if _, err := fmt.Sscanf(line, "a %d %d %d %d %d", &src, &dst, &lower, &upper, &cost); err != nil {
				return nil, errors.Wrapf(err, "dimacs: malformed arc line %q", line)
			}
			srcNode, dstNode := lookup(src), lookup(dst)
			if srcNode == nil || dstNode == nil {
				return nil, errors.Errorf("dimacs: a line references unknown node (%d -> %d)", src, dst)
			}
			g.AddArcWithCapAndCost(srcNode, dstNode, lower, upper, cost)
		default:
			return nil, errors.Errorf("dimacs: unrecognized line %q", line)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(err, "dimacs: reading problem")
	}
	return nil, errors.New("dimacs: input ended before c EOI")
}
