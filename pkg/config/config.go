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

// Package config loads the handful of settings the scheduler core
// recognizes: which cost model to price the flow graph with, where the
// external solver binary lives, how long a round waits for it, and
// where to optionally dump each round's graph snapshot.
package config

import (
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Configuration mirrors spec.md §6's recognized keys one-to-one.
type Configuration struct {
	// CostModel selects the pluggable cost function: trivial, random,
	// sjf, or quincy. Unknown values are fatal at construction time.
	CostModel string `mapstructure:"cost_model"`
	// SolverPath is the filesystem path to the external solver
	// executable the dispatcher spawns each round.
	SolverPath string `mapstructure:"solver_path"`
	// SolverTimeoutMs bounds how long a round waits for the solver to
	// reply before it is declared dead and restarted.
	SolverTimeoutMs int `mapstructure:"solver_timeout_ms"`
	// DebugDumpGraphPath, if set, receives a DIMACS-like snapshot of the
	// graph after every round, for offline inspection.
	DebugDumpGraphPath string `mapstructure:"debug_dump_graph_path"`
}

// SolverTimeout returns SolverTimeoutMs as a time.Duration.
func (c Configuration) SolverTimeout() time.Duration {
	return time.Duration(c.SolverTimeoutMs) * time.Millisecond
}

const (
	defaultCostModel       = "trivial"
	defaultSolverTimeoutMs = 30000
)

// BindFlags registers the configuration keys as flags on cmd and binds
// each one to viper under the same name, so a value may come from a
// flag, an environment variable, or a config file, in that precedence
// order.
func BindFlags(cmd *cobra.Command, v *viper.Viper) {
	flags := cmd.Flags()
	flags.String("cost-model", defaultCostModel, "cost model: trivial, random, sjf, or quincy")
	flags.String("solver-path", "", "path to the external solver executable")
	flags.Int("solver-timeout-ms", defaultSolverTimeoutMs, "per-round solver timeout in milliseconds")
	flags.String("debug-dump-graph-path", "", "optional path to dump each round's graph snapshot")

	v.BindPFlag("cost_model", flags.Lookup("cost-model"))
	v.BindPFlag("solver_path", flags.Lookup("solver-path"))
	v.BindPFlag("solver_timeout_ms", flags.Lookup("solver-timeout-ms"))
	v.BindPFlag("debug_dump_graph_path", flags.Lookup("debug-dump-graph-path"))
}

// Load reads the config file named by cfgFile, if any, falling back to
// "firmament-scheduler" in the current directory and /etc/firmament
// otherwise, then unmarshals the result into a Configuration. An
// unreadable config file that was explicitly named is an error; a
// missing default file is not.
func Load(cfgFile string, v *viper.Viper) (Configuration, error) {
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName("firmament-scheduler")
		v.AddConfigPath(".")
		v.AddConfigPath("/etc/firmament")
	}
	v.SetEnvPrefix("FIRMAMENT")
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, notFound := err.(viper.ConfigFileNotFoundError); !notFound || cfgFile != "" {
			return Configuration{}, err
		}
	}

	var cfg Configuration
	if err := v.Unmarshal(&cfg); err != nil {
		return Configuration{}, err
	}
	return cfg, nil
}
