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

// RemoveNodeChange records the deletion of a node for change-log and
// stats purposes. The wire grammar has no dedicated node-removal line: a
// node's incident arcs are removed first, each emitting its own
// "d <src> <dst>" line, so by the time this change is recorded the node
// carries no arcs for the solver to forget. GenerateChange is therefore a
// no-op on the wire; the change still exists so DebugInfo/GetStatsString
// can report it.
type RemoveNodeChange struct {
	commentChange
	ID uint64
}

func (rn *RemoveNodeChange) GenerateChange() string { return "" }

func (rn *RemoveNodeChange) GenerateChangeDescription() string {
	if d := rn.commentChange.GenerateChangeDescription(); d != "" {
		return d
	}
	return "c removed node " + strconv.FormatUint(rn.ID, 10) + "\n"
}
