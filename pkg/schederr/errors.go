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

// Package schederr names the error kinds the scheduler distinguishes for
// recovery purposes. Transient solver errors are recovered locally by the
// caller; everything else is meant to propagate as a fatal abort, since
// the flow graph cannot safely continue once an invariant is violated.
package schederr

import "github.com/pkg/errors"

var (
	// ErrSolverTransport covers pipe EOF, a malformed line on the
	// solver's stdout, or a round that timed out waiting for a reply.
	// Recovered by restarting the solver; the round that hit it returns
	// zero placements.
	ErrSolverTransport = errors.New("solver transport error")

	// ErrFlowParse marks a single flow record that could not be parsed.
	// The record is skipped; the round continues.
	ErrFlowParse = errors.New("malformed flow record")

	// ErrDescriptorLookup marks a task, job, or resource id referenced by
	// the graph that no longer resolves to a live descriptor. Indicates
	// an upstream ordering bug; fatal.
	ErrDescriptorLookup = errors.New("descriptor lookup failed")

	// ErrInvariantViolation marks a graph invariant failure. Indicates a
	// bug in the graph manager; fatal.
	ErrInvariantViolation = errors.New("flow graph invariant violated")

	// ErrUnknownCostModel is returned at startup when the configured
	// cost model name does not match a registered implementation.
	// Fatal during construction.
	ErrUnknownCostModel = errors.New("unknown cost model")

	// ErrBindingRejected marks a placement delta the executor layer
	// refused to action. The task node stays scheduled; the next round
	// is free to revisit it.
	ErrBindingRejected = errors.New("binding rejected by executor")
)
