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

// UpdateArcChange records a change to an existing arc's cost and/or
// capacity. A pure cost change is emitted as a single
// "x <src> <dst> <new-cost>" line; a capacity change (the wire format has
// no direct support for it) falls back to a "d" deletion followed by a
// fresh "a" addition.
type UpdateArcChange struct {
	commentChange
	Src, Dst                     flowgraph.NodeID
	CapLowerBound, CapUpperBound uint64
	Cost, OldCost                int64
	CapacityChanged              bool
	Typ                          flowgraph.ArcType
}

func NewUpdateArcChange(arc *flowgraph.Arc, oldCost int64, oldLower, oldUpper uint64) *UpdateArcChange {
	return &UpdateArcChange{
		Src:             arc.Src,
		Dst:             arc.Dst,
		CapLowerBound:   arc.CapLowerBound,
		CapUpperBound:   arc.CapUpperBound,
		Cost:            arc.Cost,
		OldCost:         oldCost,
		CapacityChanged: oldLower != arc.CapLowerBound || oldUpper != arc.CapUpperBound,
		Typ:             arc.Type,
	}
}

func (uac *UpdateArcChange) GenerateChange() string {
	if uac.CapacityChanged {
		return "d " + strconv.FormatUint(uint64(uac.Src), 10) + " " + strconv.FormatUint(uint64(uac.Dst), 10) + "\n" +
			"a " + strconv.FormatUint(uint64(uac.Src), 10) +
			" " + strconv.FormatUint(uint64(uac.Dst), 10) +
			" " + strconv.FormatUint(uac.CapLowerBound, 10) +
			" " + strconv.FormatUint(uac.CapUpperBound, 10) +
			" " + strconv.FormatInt(uac.Cost, 10) + "\n"
	}
	return "x " + strconv.FormatUint(uint64(uac.Src), 10) +
		" " + strconv.FormatUint(uint64(uac.Dst), 10) +
		" " + strconv.FormatInt(uac.Cost, 10) + "\n"
}
