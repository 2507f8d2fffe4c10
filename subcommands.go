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
	"path/filepath"
	"sort"

	"github.com/spf13/cobra"
)

// ListImports tokenizes path far enough to resolve its import graph (the
// loader records every distinct filename it has spliced in, see
// ctx.Imports in lexer.go) and returns the resolved names in sorted order.
// It backs `pyre imports`, a read-only diagnostic with no nasm/ld step.
func ListImports(path string) ([]string, error) {
	source, err := os.ReadFile(path)
	if err != nil {
		return nil, errExternal(err, "could not read %q", path)
	}

	ctx := NewContext()
	read := NewFileReader(filepath.Dir(path))
	if _, err := Tokenize(string(source), ctx, read); err != nil {
		return nil, err
	}

	names := make([]string, 0, len(ctx.Imports))
	for name := range ctx.Imports {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

// GenerateAssemblyOnly runs the A->G pipeline (tokenize through codegen)
// without invoking nasm or ld, and returns the generated NASM text. It
// backs `pyre fmt`, which exists to let a developer inspect the generated
// assembly for a source file without paying for an external assembler and
// linker invocation.
func GenerateAssemblyOnly(path string) (string, error) {
	source, err := os.ReadFile(path)
	if err != nil {
		return "", errExternal(err, "could not read %q", path)
	}

	ctx := NewContext()
	read := NewFileReader(filepath.Dir(path))

	tokens, err := Tokenize(string(source), ctx, read)
	if err != nil {
		return "", err
	}
	tokens, err = LoadMacros(tokens, ctx)
	if err != nil {
		return "", err
	}
	tokens, err = ExpandMacros(tokens, ctx)
	if err != nil {
		return "", err
	}
	if err := LinkBlocks(tokens, ctx); err != nil {
		return "", err
	}
	return GenerateAssembly(tokens, ctx)
}

var importsCommand = &cobra.Command{
	Use:   "imports source",
	Short: "list the resolved import graph for source",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		names, err := ListImports(args[0])
		if err != nil {
			return err
		}
		for _, name := range names {
			fmt.Println(name)
		}
		return nil
	},
}

var fmtCommand = &cobra.Command{
	Use:   "fmt source",
	Short: "print the generated NASM for source without assembling or linking",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		asm, err := GenerateAssemblyOnly(args[0])
		if err != nil {
			return err
		}
		fmt.Print(asm)
		return nil
	},
}
