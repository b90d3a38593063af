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

// CreateArcChange records the creation of an arc, emitted on the wire as
// "a <src> <dst> <lo> <hi> <cost>".
type CreateArcChange struct {
	commentChange
	Src, Dst                     flowgraph.NodeID
	CapLowerBound, CapUpperBound uint64
	Cost                         int64
	Typ                          flowgraph.ArcType
}

func NewCreateArcChange(arc *flowgraph.Arc) *CreateArcChange {
	return &CreateArcChange{
		Src:           arc.Src,
		Dst:           arc.Dst,
		CapLowerBound: arc.CapLowerBound,
		CapUpperBound: arc.CapUpperBound,
		Cost:          arc.Cost,
		Typ:           arc.Type,
	}
}

func (cac *CreateArcChange) GenerateChange() string {
	return "a " + strconv.FormatUint(uint64(cac.Src), 10) +
		" " + strconv.FormatUint(uint64(cac.Dst), 10) +
		" " + strconv.FormatUint(cac.CapLowerBound, 10) +
		" " + strconv.FormatUint(cac.CapUpperBound, 10) +
		" " + strconv.FormatInt(cac.Cost, 10) + "\n"
}
