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
	"strconv"

	"github.com/firmament-project/quincy-scheduler/pkg/scheduling/flowgraph"
)

// AddNodeChange records the creation of a node. GenerateChange emits the
// leaner "n <id> <excess>" line; the richer per-node-kind tag that some
// DIMACS dialects carry on the wire is kept only as the Typ field, for
// GenerateChangeDescription's debug comment, never on the wire itself.
type AddNodeChange struct {
	commentChange
	ID     uint64
	Excess int64
	Typ    flowgraph.NodeType
}

func NewAddNodeChange(n *flowgraph.Node) *AddNodeChange {
	return &AddNodeChange{ID: uint64(n.ID), Excess: n.Excess, Typ: n.Type}
}

func (an *AddNodeChange) GenerateChange() string {
	return "n " + strconv.FormatUint(an.ID, 10) +
		" " + strconv.FormatInt(an.Excess, 10) + "\n"
}

func (an *AddNodeChange) GenerateChangeDescription() string {
	if d := an.commentChange.GenerateChangeDescription(); d != "" {
		return d
	}
	return "c nd kind=" + strconv.Itoa(int(an.Typ)) + "\n"
}
