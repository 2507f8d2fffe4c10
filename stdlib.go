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
	_ "embed"
	"os"
	"path/filepath"
)

// embeddedStd is the built-in "std" library: exit and print_string macros
// layered on top of the exact-keyword syscall primitives.
//
//go:embed std.pyre
var embeddedStd string

// stdlibFilename is the name resolved by `import "std"`.
const stdlibFilename = "std.pyre"

// NewFileReader builds a FileReader that resolves imports relative to dir
// (the directory holding the entry source file), falling back to the
// embedded std library when the requested file is std.pyre and no such
// file exists on disk.
func NewFileReader(dir string) FileReader {
	return func(name string) (string, error) {
		path := filepath.Join(dir, name)
		contents, err := os.ReadFile(path)
		if err == nil {
			return string(contents), nil
		}
		if name == stdlibFilename && os.IsNotExist(err) {
			return embeddedStd, nil
		}
		return "", err
	}
}
