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

	"github.com/firmament-project/quincy-scheduler/pkg/scheduling/dimacs"
	"github.com/firmament-project/quincy-scheduler/pkg/scheduling/flowgraph"
)

// changeManager is the only path by which the graph manager mutates the
// underlying flow graph: every mutator also appends the matching dimacs
// change so the two never drift apart.
type changeManager struct {
	mu      sync.Mutex
	graph   *flowgraph.Graph
	changes []dimacs.Change
	stats   *dimacs.ChangeStats
}

func newChangeManager(stats *dimacs.ChangeStats) *changeManager {
	return &changeManager{
		graph: flowgraph.NewGraph(false),
		stats: stats,
	}
}

func (cm *changeManager) record(change dimacs.Change, changeType dimacs.ChangeType, comment string) {
	change.SetComment(comment)
	cm.changes = append(cm.changes, change)
	if cm.stats != nil {
		cm.stats.UpdateStats(changeType)
	}
}

func (cm *changeManager) AddNode(nodeType flowgraph.NodeType, excess int64, changeType dimacs.ChangeType, comment string) *flowgraph.Node {
	cm.mu.Lock()
	defer cm.mu.Unlock()
	n := cm.graph.AddNode()
	n.Type = nodeType
	n.Excess = excess
	n.Comment = comment
	cm.record(dimacs.NewAddNodeChange(n), changeType, comment)
	return n
}

func (cm *changeManager) AddArc(src, dst *flowgraph.Node, capLowerBound, capUpperBound uint64, cost int64, arcType flowgraph.ArcType, changeType dimacs.ChangeType, comment string) *flowgraph.Arc {
	cm.mu.Lock()
	defer cm.mu.Unlock()
	arc := cm.graph.AddArcWithCapAndCost(src, dst, capLowerBound, capUpperBound, cost)
	arc.Type = arcType
	cm.record(dimacs.NewCreateArcChange(arc), changeType, comment)
	return arc
}

// ChangeArc updates arc's capacity and cost, emitting a change-arc entry
// only if something actually changed; an arc already at the requested
// (capLowerBound, capUpperBound, cost) is left untouched and produces no
// change, per spec.md §4.3's "only if changed" rule.
func (cm *changeManager) ChangeArc(arc *flowgraph.Arc, capLowerBound, capUpperBound uint64, cost int64, changeType dimacs.ChangeType, comment string) {
	cm.mu.Lock()
	defer cm.mu.Unlock()
	oldCost, oldLower, oldUpper := arc.Cost, arc.CapLowerBound, arc.CapUpperBound
	if oldCost == cost && oldLower == capLowerBound && oldUpper == capUpperBound {
		return
	}
	cm.graph.ChangeArc(arc, capLowerBound, capUpperBound, cost)
	cm.record(dimacs.NewUpdateArcChange(arc, oldCost, oldLower, oldUpper), changeType, comment)
}

func (cm *changeManager) ChangeArcCapacity(arc *flowgraph.Arc, capacity uint64, changeType dimacs.ChangeType, comment string) {
	cm.ChangeArc(arc, arc.CapLowerBound, capacity, arc.Cost, changeType, comment)
}

func (cm *changeManager) ChangeArcCost(arc *flowgraph.Arc, cost int64, changeType dimacs.ChangeType, comment string) {
	cm.ChangeArc(arc, arc.CapLowerBound, arc.CapUpperBound, cost, changeType, comment)
}

func (cm *changeManager) DeleteArc(arc *flowgraph.Arc, changeType dimacs.ChangeType, comment string) {
	cm.mu.Lock()
	defer cm.mu.Unlock()
	change := dimacs.NewDeleteArcChange(arc)
	cm.graph.DeleteArc(arc)
	cm.record(change, changeType, comment)
}

func (cm *changeManager) DeleteNode(node *flowgraph.Node, changeType dimacs.ChangeType, comment string) {
	cm.mu.Lock()
	defer cm.mu.Unlock()
	for _, arc := range node.OutgoingArcMap {
		cm.record(dimacs.NewDeleteArcChange(arc), changeType, comment)
	}
	for _, arc := range node.IncomingArcMap {
		cm.record(dimacs.NewDeleteArcChange(arc), changeType, comment)
	}
	cm.graph.DeleteNode(node)
	cm.record(&dimacs.RemoveNodeChange{ID: uint64(node.ID)}, changeType, comment)
}

func (cm *changeManager) GetGraphChanges() []dimacs.Change {
	cm.mu.Lock()
	defer cm.mu.Unlock()
	return cm.changes
}

func (cm *changeManager) ResetChanges() {
	cm.mu.Lock()
	defer cm.mu.Unlock()
	cm.changes = nil
}

func (cm *changeManager) Graph() *flowgraph.Graph { return cm.graph }

func (cm *changeManager) CheckNodeType(id flowgraph.NodeID, want flowgraph.NodeType) bool {
	n := cm.graph.Node(id)
	return n != nil && n.Type == want
}
