// Copyright 2022 gorse Project Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
package main

import (
	"bytes"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"testing"

	"gopkg.in/yaml.v3"
)

type scenario struct {
	Code     string `yaml:"code"`
	Expected string `yaml:"expected"`
}

// runScenario compiles and links src into dir, then runs the resulting
// executable and returns its stdout: write the source, compile it,
// execute it, capture stdout.
func runScenario(t *testing.T, dir, src string) string {
	t.Helper()
	path := filepath.Join(dir, "case.pyre")
	if err := os.WriteFile(path, []byte(src), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	exe, err := CompileFile(path, Options{OutputDir: dir})
	if err != nil {
		t.Fatalf("CompileFile: %v", err)
	}
	var out bytes.Buffer
	cmd := exec.Command(exe)
	cmd.Stdout = &out
	if err := cmd.Run(); err != nil {
		t.Fatalf("running %s: %v", exe, err)
	}
	return out.String()
}

// TestEndToEndScenarios drives the YAML-declared scenarios in
// testdata/scenarios.yaml through the full pipeline, an external nasm/ld,
// and the produced executable. It needs a working nasm and ld on PATH;
// absent that (e.g. a sandboxed CI image without a Linux assembler
// toolchain) it skips rather
// than failing the suite.
func TestEndToEndScenarios(t *testing.T) {
	if _, err := exec.LookPath("nasm"); err != nil {
		t.Skip("nasm not found on PATH")
	}
	if _, err := exec.LookPath("ld"); err != nil {
		t.Skip("ld not found on PATH")
	}

	raw, err := os.ReadFile("testdata/scenarios.yaml")
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	var scenarios map[string]scenario
	if err := yaml.Unmarshal(raw, &scenarios); err != nil {
		t.Fatalf("yaml.Unmarshal: %v", err)
	}

	names := make([]string, 0, len(scenarios))
	for name := range scenarios {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		sc := scenarios[name]
		t.Run(name, func(t *testing.T) {
			dir := t.TempDir()
			got := runScenario(t, dir, sc.Code)
			if got != sc.Expected {
				t.Errorf("%s: output = %q, want %q", name, got, sc.Expected)
			}
		})
	}
}
