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

// Package dimacs records graph change entries and serializes full or
// incremental solver input in a line-oriented DIMACS-like wire format.
package dimacs

// Change is implemented by every kind of recorded graph mutation. Each
// concrete change type embeds commentChange and supplies its own
// GenerateChange.
type Change interface {
	Comment() string
	SetComment(string)
	// GenerateChangeDescription returns a "c ..." comment line describing
	// the change for debug dumps; empty if no comment was set.
	GenerateChangeDescription() string
	// GenerateChange returns the wire-format line(s) for this change,
	// terminated by a newline.
	GenerateChange() string
}

type commentChange struct{ comment string }

func (cc *commentChange) Comment() string           { return cc.comment }
func (cc *commentChange) SetComment(comment string) { cc.comment = comment }
func (cc *commentChange) GenerateChangeDescription() string {
	if cc.comment == "" {
		return ""
	}
	return "c " + cc.comment + "\n"
}
