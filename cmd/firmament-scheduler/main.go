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

// Command firmament-scheduler wires a cost model, a flow graph, and an
// external solver process into a running scheduler loop: every tick it
// asks the scheduler to run a round over whatever jobs are queued and,
// when the round applied any placement, logs how many and then every
// task's current binding.
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/aybabtme/uniplot/histogram"
	"github.com/golang/glog"
	gommonlog "github.com/labstack/gommon/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v2"

	"github.com/firmament-project/quincy-scheduler/pkg/config"
	"github.com/firmament-project/quincy-scheduler/pkg/schederr"
	"github.com/firmament-project/quincy-scheduler/pkg/scheduling/costmodel"
	"github.com/firmament-project/quincy-scheduler/pkg/scheduling/dimacs"
	"github.com/firmament-project/quincy-scheduler/pkg/scheduling/extractor"
	"github.com/firmament-project/quincy-scheduler/pkg/scheduling/flowmanager"
	"github.com/firmament-project/quincy-scheduler/pkg/scheduling/flowscheduler"
	"github.com/firmament-project/quincy-scheduler/pkg/scheduling/solver"
	"github.com/firmament-project/quincy-scheduler/pkg/types"
)

var (
	cfgFile    string
	tickPeriod time.Duration
)

func main() {
	v := viper.New()
	rootCmd := &cobra.Command{
		Use:   "firmament-scheduler",
		Short: "Runs the flow-graph scheduling loop against an external solver",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(cfgFile, v)
			if err != nil {
				return fmt.Errorf("loading configuration: %w", err)
			}
			return run(cfg)
		},
	}
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "path to a firmament-scheduler config file")
	rootCmd.Flags().DurationVar(&tickPeriod, "tick-period", 10*time.Second, "how often to run a scheduling round")
	config.BindFlags(rootCmd, v)

	if err := rootCmd.Execute(); err != nil {
		glog.Exitf("firmament-scheduler: %v", err)
	}
}

// newCostModeler resolves the configured cost model name into a
// CostModeler. Unlike costmodel.ParseKind, which falls back to Trivial
// for a name it doesn't recognize, an unrecognized name here is fatal at
// startup, per the configured-at-construction error kind.
func newCostModeler(name string, resourceMap *types.ResourceMap, taskMap *types.TaskMap) (costmodel.CostModeler, error) {
	switch name {
	case "", "trivial":
		return costmodel.NewTrivial(resourceMap, taskMap), nil
	case "random":
		return costmodel.NewRandom(), nil
	case "sjf":
		return costmodel.NewSJF(taskMap), nil
	case "quincy":
		return costmodel.NewQuincy(taskMap), nil
	default:
		return nil, schederr.ErrUnknownCostModel
	}
}

func run(cfg config.Configuration) error {
	gommonlog.Printf("firmament-scheduler starting with cost model %q, solver %q", cfg.CostModel, cfg.SolverPath)

	resourceMap := types.NewResourceMap()
	taskMap := types.NewTaskMap()
	jobMap := types.NewJobMap()

	cm, err := newCostModeler(cfg.CostModel, resourceMap, taskMap)
	if err != nil {
		glog.Fatalf("firmament-scheduler: %v (cost_model=%q)", err, cfg.CostModel)
	}

	gm := flowmanager.NewGraphManager(cm, make(map[types.ResourceID]struct{}), &dimacs.ChangeStats{}, 1)

	if cfg.SolverPath == "" {
		glog.Exitf("firmament-scheduler: solver_path must name an external solver executable")
	}
	sv := solver.New(gm, solver.Config{
		BinaryPath: cfg.SolverPath,
		Algorithm:  "successive_shortest_path",
		Timeout:    cfg.SolverTimeout(),
	})
	defer sv.Close()

	sched := flowscheduler.NewScheduler(jobMap, resourceMap, taskMap, gm, sv)

	ticker := time.NewTicker(tickPeriod)
	defer ticker.Stop()
	for range ticker.C {
		count, deltas := sched.ScheduleAllJobs()
		if count > 0 {
			gommonlog.Printf("firmament-scheduler: round applied %d placement(s)", count)
			for taskID, resourceID := range sched.GetTaskBindings() {
				gommonlog.Printf("task: %v is scheduled to resource: %v", taskID, resourceID)
			}
		}
		glog.V(1).Infof("firmament-scheduler: round produced %d delta(s), %d applied", len(deltas), count)

		if cfg.DebugDumpGraphPath != "" {
			dumpGraphSnapshot(gm, cfg.DebugDumpGraphPath)
			dumpDescriptors(jobMap, taskMap, resourceMap, deltas, cfg.DebugDumpGraphPath+".descriptors.yaml")
		}
	}
	return nil
}

// dumpGraphSnapshot writes the current graph in the same DIMACS-like
// format the solver dispatcher sends, for offline inspection, followed
// by a human-readable histogram of arc costs to stderr. A failure to
// write is logged and otherwise ignored: this is a debugging aid, not
// part of the scheduling path.
func dumpGraphSnapshot(gm flowmanager.GraphManager, path string) {
	graph := gm.GraphChangeManager().Graph()

	f, err := os.Create(path)
	if err != nil {
		glog.Warningf("firmament-scheduler: debug_dump_graph_path: %v", err)
		return
	}
	defer f.Close()
	dimacs.Export(graph, f)

	costs := make([]float64, 0, graph.NumArcs())
	for a := range graph.Arcs() {
		costs = append(costs, float64(a.Cost))
	}
	if len(costs) == 0 {
		return
	}
	hist := histogram.Hist(10, costs)
	histogram.Fprint(os.Stderr, hist, histogram.Linear(5))
}

// descriptorDump is the YAML shape of a debug_dump_graph_path descriptor
// snapshot.
type descriptorDump struct {
	Jobs      []*types.JobDescriptor  `yaml:"jobs"`
	Tasks     []*types.TaskDescriptor `yaml:"tasks"`
	Resources []*types.ResourceStatus `yaml:"resources"`
	Deltas    []extractor.Delta       `yaml:"deltas,omitempty"`
}

// dumpDescriptors writes the job, task, and resource descriptors behind
// the current graph, plus the round's scheduling deltas, as YAML, since
// the DIMACS dump carries only node ids and arc weights, not the domain
// state those ids stand for.
func dumpDescriptors(jobMap *types.JobMap, taskMap *types.TaskMap, resourceMap *types.ResourceMap, deltas []extractor.Delta, path string) {
	jobMap.RLock()
	jobs := make([]*types.JobDescriptor, 0, len(jobMap.UnsafeGet()))
	for _, jd := range jobMap.UnsafeGet() {
		jobs = append(jobs, jd)
	}
	jobMap.RUnlock()

	taskMap.RLock()
	tasks := make([]*types.TaskDescriptor, 0, len(taskMap.UnsafeGet()))
	for _, td := range taskMap.UnsafeGet() {
		tasks = append(tasks, td)
	}
	taskMap.RUnlock()

	resourceMap.RLock()
	resources := make([]*types.ResourceStatus, 0, len(resourceMap.UnsafeGet()))
	for _, rs := range resourceMap.UnsafeGet() {
		resources = append(resources, rs)
	}
	resourceMap.RUnlock()

	out, err := yaml.Marshal(descriptorDump{Jobs: jobs, Tasks: tasks, Resources: resources, Deltas: deltas})
	if err != nil {
		glog.Warningf("firmament-scheduler: marshaling descriptor dump: %v", err)
		return
	}
	if err := os.WriteFile(path, out, 0o644); err != nil {
		glog.Warningf("firmament-scheduler: writing descriptor dump: %v", err)
	}
}
