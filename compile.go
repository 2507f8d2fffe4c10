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
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// Options configures a single compilation.
type Options struct {
	// OutputDir is where the .asm, .o and executable land. Defaults to the
	// entry source file's directory.
	OutputDir string
	// Run, if set, executes the linked binary after a successful link.
	Run bool
	// Verbose traces each pipeline stage to stderr.
	Verbose bool
	// CheckStackEffect enables the optional, off-by-default stack-balance
	// validation pass.
	CheckStackEffect bool
	// KeepObject retains the intermediate .o file after linking.
	KeepObject bool
}

// CompileFile runs the full A->G pipeline against the source file named by
// path, writes the generated assembly, and invokes nasm and ld. It returns
// the path to the linked executable.
func CompileFile(path string, opts Options) (string, error) {
	source, err := os.ReadFile(path)
	if err != nil {
		return "", errExternal(err, "could not read %q", path)
	}

	dir := filepath.Dir(path)
	stem := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))

	outputDir := opts.OutputDir
	if outputDir == "" {
		outputDir = dir
	}

	ctx := NewContext()
	ctx.Verbose = opts.Verbose
	read := NewFileReader(dir)

	trace := func(stage string) {
		if opts.Verbose {
			fmt.Fprintf(os.Stderr, "pyre: %s\n", stage)
		}
	}

	trace("tokenizing " + path)
	tokens, err := Tokenize(string(source), ctx, read)
	if err != nil {
		return "", err
	}

	trace("loading macros")
	tokens, err = LoadMacros(tokens, ctx)
	if err != nil {
		return "", err
	}

	trace("expanding macros")
	tokens, err = ExpandMacros(tokens, ctx)
	if err != nil {
		return "", err
	}

	trace("linking blocks")
	if err := LinkBlocks(tokens, ctx); err != nil {
		return "", err
	}

	if opts.CheckStackEffect {
		trace("checking stack effect")
		for _, warning := range CheckStackEffect(tokens, ctx) {
			fmt.Fprintf(os.Stderr, "pyre: warning: %s\n", warning)
		}
	}

	trace("generating assembly")
	assembly, err := GenerateAssembly(tokens, ctx)
	if err != nil {
		return "", err
	}

	asmPath := filepath.Join(outputDir, stem+".asm")
	objPath := filepath.Join(outputDir, stem+".o")
	exePath := filepath.Join(outputDir, stem)

	if err := os.WriteFile(asmPath, []byte(assembly), 0o644); err != nil {
		return "", errExternal(err, "could not write %q", asmPath)
	}

	trace("assembling with nasm")
	if err := runTool(opts.Verbose, "nasm", "-felf64", asmPath, "-o", objPath); err != nil {
		return "", err
	}

	trace("linking with ld")
	if err := runTool(opts.Verbose, "ld", objPath, "-o", exePath); err != nil {
		return "", err
	}

	if !opts.KeepObject {
		_ = os.Remove(objPath)
	}

	if opts.Run {
		if err := CheckHost(); err != nil {
			return exePath, errExternal(err, "cannot run the compiled executable")
		}
		trace("running " + exePath)
		cmd := exec.Command(exePath)
		cmd.Stdout = os.Stdout
		cmd.Stderr = os.Stderr
		cmd.Stdin = os.Stdin
		if err := cmd.Run(); err != nil {
			return exePath, errExternal(err, "%q exited with an error", exePath)
		}
	}

	return exePath, nil
}

func runTool(verbose bool, name string, args ...string) error {
	cmd := exec.Command(name, args...)
	cmd.Stderr = os.Stderr
	if verbose {
		fmt.Fprintf(os.Stderr, "pyre: %s %s\n", name, args)
	}
	if err := cmd.Run(); err != nil {
		return errExternal(err, "%s failed", name)
	}
	return nil
}
