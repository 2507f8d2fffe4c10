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

	"github.com/spf13/cobra"
)

var command = &cobra.Command{
	Use:  "pyre source [-r|--run]",
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		output, _ := cmd.Flags().GetString("output")
		run, _ := cmd.Flags().GetBool("run")
		verbose, _ := cmd.Flags().GetBool("verbose")
		checkStackEffect, _ := cmd.Flags().GetBool("check-stack-effect")
		keepAsm, _ := cmd.Flags().GetBool("keep-asm")

		exe, err := CompileFile(args[0], Options{
			OutputDir:        output,
			Run:              run,
			Verbose:          verbose,
			CheckStackEffect: checkStackEffect,
			KeepObject:       keepAsm,
		})
		if err != nil {
			return err
		}
		if verbose {
			fmt.Fprintf(os.Stderr, "pyre: built %s\n", exe)
		}
		return nil
	},
}

func init() {
	command.Flags().StringP("output", "o", "", "output directory for the generated .asm, .o and executable")
	command.Flags().BoolP("run", "r", false, "run the resulting executable after a successful link")
	command.Flags().BoolP("verbose", "v", false, "trace each compiler stage")
	command.Flags().Bool("check-stack-effect", false, "warn when a procedure's approximate stack effect does not match its declared arity")
	command.Flags().Bool("keep-asm", false, "retain the intermediate .o file after linking")
	command.AddCommand(importsCommand, fmtCommand)
}

func main() {
	if err := command.Execute(); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
