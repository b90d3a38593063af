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

// DeleteArcChange records the removal of an arc, emitted on the wire as
// "d <src> <dst>".
type DeleteArcChange struct {
	commentChange
	Src, Dst flowgraph.NodeID
	Typ      flowgraph.ArcType
}

func NewDeleteArcChange(arc *flowgraph.Arc) *DeleteArcChange {
	return &DeleteArcChange{Src: arc.Src, Dst: arc.Dst, Typ: arc.Type}
}

func (dac *DeleteArcChange) GenerateChange() string {
	return "d " + strconv.FormatUint(uint64(dac.Src), 10) +
		" " + strconv.FormatUint(uint64(dac.Dst), 10) + "\n"
}
