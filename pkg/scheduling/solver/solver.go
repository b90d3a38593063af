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

// Package solver dispatches the min-cost max-flow problem to an external
// solver process over a pipe, and decodes its reply into flow records. The
// solver is never run in-process: every round writes a problem (a full
// snapshot the first time, an incremental change set afterward) to the
// child's stdin and reads flow records back from its stdout.
package solver

import (
	"bufio"
	"fmt"
	"io"
	"os/exec"
	"sync"
	"time"

	"github.com/golang/glog"
	"github.com/pkg/errors"

	"github.com/firmament-project/quincy-scheduler/pkg/schederr"
	"github.com/firmament-project/quincy-scheduler/pkg/scheduling/dimacs"
	"github.com/firmament-project/quincy-scheduler/pkg/scheduling/flowgraph"
	"github.com/firmament-project/quincy-scheduler/pkg/scheduling/flowmanager"
)

// FlowRecord is one "f src dst flow" line the solver reported back.
type FlowRecord struct {
	Src  flowgraph.NodeID
	Dst  flowgraph.NodeID
	Flow uint64
}

// Config controls how the external solver process is launched and how
// long a round is allowed to wait for its reply.
type Config struct {
	// BinaryPath is the path to the solver executable.
	BinaryPath string
	// Algorithm is passed through as the solver's --algorithm flag.
	Algorithm string
	// Timeout bounds how long a single Run call waits for a reply
	// before declaring the solver dead and returning an error.
	Timeout time.Duration
}

type state int

const (
	stateSpawning state = iota
	stateReady
	stateAwaitingReply
	stateDead
)

// Solver runs one round of the min-cost max-flow problem against the
// external process and returns the positive-flow records it reported.
type Solver interface {
	// Run writes the current graph (or, after the first call, just the
	// changes queued since the last call) to the solver and returns the
	// flow records it reports with flow greater than zero, in the order
	// the solver emitted them.
	Run() ([]FlowRecord, error)
	// Restart kills the child process, if any, and forces the next Run
	// call to send a full snapshot rather than a delta.
	Restart()
	// Close releases the child process. The Solver is unusable after
	// Close returns.
	Close()
}

type externalSolver struct {
	mu    sync.Mutex
	gm    flowmanager.GraphManager
	cfg   Config
	state state

	cmd      *exec.Cmd
	stdin    io.WriteCloser
	stdout   io.ReadCloser
	sentFull bool
}

// New returns a Solver that dispatches gm's flow graph to the process
// named by cfg.BinaryPath. The process is not started until the first
// call to Run.
func New(gm flowmanager.GraphManager, cfg Config) Solver {
	return &externalSolver{gm: gm, cfg: cfg, state: stateDead}
}

func (s *externalSolver) Run() ([]FlowRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == stateDead {
		if err := s.spawn(); err != nil {
			return nil, errors.Wrap(schederr.ErrSolverTransport, err.Error())
		}
	}
	s.state = stateAwaitingReply
	s.gm.UpdateAllCostsToUnscheduledAggs()

	stdin, stdout := s.stdin, s.stdout
	sentFull := s.sentFull
	s.sentFull = true

	type outcome struct {
		records []FlowRecord
		err     error
	}
	done := make(chan outcome, 1)
	go func() {
		if err := s.writeProblem(stdin, sentFull); err != nil {
			done <- outcome{nil, err}
			return
		}
		records, err := readFlowRecords(stdout)
		done <- outcome{records, err}
	}()

	select {
	case res := <-done:
		if res.err != nil {
			glog.Warningf("solver: round failed, restarting: %v", res.err)
			s.killLocked()
			s.state = stateDead
			return nil, errors.Wrap(schederr.ErrSolverTransport, res.err.Error())
		}
		s.state = stateReady
		return res.records, nil
	case <-time.After(s.cfg.Timeout):
		glog.Warningf("solver: round timed out after %s, restarting", s.cfg.Timeout)
		s.killLocked()
		s.state = stateDead
		return nil, schederr.ErrSolverTransport
	}
}

func (s *externalSolver) Restart() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.killLocked()
	s.state = stateDead
}

func (s *externalSolver) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.killLocked()
	s.state = stateDead
}

func (s *externalSolver) killLocked() {
	if s.cmd == nil {
		return
	}
	if s.cmd.Process != nil {
		_ = s.cmd.Process.Kill()
		_ = s.cmd.Wait()
	}
	s.cmd = nil
	s.stdin = nil
	s.stdout = nil
	s.sentFull = false
}

func (s *externalSolver) spawn() error {
	s.state = stateSpawning
	args := []string{
		"--graph_has_node_types=true",
		fmt.Sprintf("--algorithm=%s", s.cfg.Algorithm),
		"--print_assignments=false",
	}
	cmd := exec.Command(s.cfg.BinaryPath, args...)

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return errors.Wrap(err, "solver: stdin pipe")
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return errors.Wrap(err, "solver: stdout pipe")
	}
	if err := cmd.Start(); err != nil {
		return errors.Wrap(err, "solver: start")
	}

	s.cmd = cmd
	s.stdin = stdin
	s.stdout = stdout
	s.sentFull = false
	s.state = stateReady
	return nil
}

// writeProblem sends a full snapshot on the first round after a (re)spawn,
// and an incremental change set on every round after that.
func (s *externalSolver) writeProblem(stdin io.Writer, sentFull bool) error {
	gcm := s.gm.GraphChangeManager()
	if !sentFull {
		dimacs.Export(gcm.Graph(), stdin)
	} else {
		dimacs.ExportIncremental(gcm.GetGraphChanges(), stdin)
	}
	gcm.ResetChanges()
	return nil
}

// readFlowRecords scans the solver's stdout for "f src dst flow" lines up
// to the "c EOI" terminator, discarding zero-flow records.
func readFlowRecords(stdout io.Reader) ([]FlowRecord, error) {
	var records []FlowRecord
	scanner := bufio.NewScanner(stdout)
	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			continue
		}
		switch line[0] {
		case 'f':
			var src, dst, flow uint64
			n, err := fmt.Sscanf(line, "f %d %d %d", &src, &dst, &flow)
			if err != nil || n != 3 {
				glog.Warningf("solver: malformed flow line %q, skipping", line)
				continue
			}
			if flow > 0 {
				records = append(records, FlowRecord{
					Src:  flowgraph.NodeID(src),
					Dst:  flowgraph.NodeID(dst),
					Flow: flow,
				})
			}
		case 'c':
			if line == "c EOI" {
				return records, nil
			}
			// Other comment lines (e.g. timing) are informational.
		case 's':
			// Total cost of the solution; not used by the dispatcher.
		default:
			glog.Warningf("solver: unrecognized reply line %q, skipping", line)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(err, "solver: reading reply")
	}
	return nil, errors.New("solver: stdout closed before c EOI")
}
