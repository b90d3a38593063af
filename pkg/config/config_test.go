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

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func TestLoadDefaults(t *testing.T) {
	dir := t.TempDir()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	defer os.Chdir(wd)

	v := viper.New()
	cmd := &cobra.Command{Use: "test"}
	BindFlags(cmd, v)

	cfg, err := Load("", v)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.CostModel != defaultCostModel {
		t.Errorf("CostModel = %q, want %q", cfg.CostModel, defaultCostModel)
	}
	if cfg.SolverTimeoutMs != defaultSolverTimeoutMs {
		t.Errorf("SolverTimeoutMs = %d, want %d", cfg.SolverTimeoutMs, defaultSolverTimeoutMs)
	}
	if cfg.SolverTimeout() != 30*time.Second {
		t.Errorf("SolverTimeout() = %v, want 30s", cfg.SolverTimeout())
	}
}

func TestLoadConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "firmament-scheduler.yaml")
	contents := "cost_model: quincy\nsolver_path: /usr/local/bin/flowsolver-ref\nsolver_timeout_ms: 5000\n"
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatal(err)
	}

	v := viper.New()
	cmd := &cobra.Command{Use: "test"}
	BindFlags(cmd, v)

	cfg, err := Load(path, v)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.CostModel != "quincy" {
		t.Errorf("CostModel = %q, want %q", cfg.CostModel, "quincy")
	}
	if cfg.SolverPath != "/usr/local/bin/flowsolver-ref" {
		t.Errorf("SolverPath = %q, want %q", cfg.SolverPath, "/usr/local/bin/flowsolver-ref")
	}
	if cfg.SolverTimeoutMs != 5000 {
		t.Errorf("SolverTimeoutMs = %d, want %d", cfg.SolverTimeoutMs, 5000)
	}
}

func TestLoadMissingExplicitConfigFileIsError(t *testing.T) {
	v := viper.New()
	cmd := &cobra.Command{Use: "test"}
	BindFlags(cmd, v)

	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml"), v); err == nil {
		t.Fatal("Load: want error for a missing explicitly-named config file, got nil")
	}
}

func TestLoadFlagOverride(t *testing.T) {
	dir := t.TempDir()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	defer os.Chdir(wd)

	v := viper.New()
	cmd := &cobra.Command{Use: "test"}
	BindFlags(cmd, v)
	if err := cmd.Flags().Set("cost-model", "sjf"); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load("", v)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.CostModel != "sjf" {
		t.Errorf("CostModel = %q, want %q", cfg.CostModel, "sjf")
	}
}
