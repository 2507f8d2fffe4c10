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
	"runtime"

	"golang.org/x/sys/cpu"
)

// CheckHost reports why running the compiled executable on this machine
// would not work: the generated NASM, the syscall ABI and the
// assembler/linker invocation all target x86-64 Linux, so -r/--run should
// fail fast with a clear diagnostic rather than handing a non-Linux or
// non-amd64 host an ELF binary it cannot execute.
//
// cpu.X86.HasSSE2 is reported false only on a non-X86 CPUID result, which
// makes it a convenient sanity check that the running process is actually
// on real x86-64 hardware rather than, say, an amd64 binary retargeted
// through emulation that doesn't back CPUID faithfully.
func CheckHost() error {
	if runtime.GOOS != "linux" {
		return fmt.Errorf("pyre targets linux/amd64 only, running on %s/%s", runtime.GOOS, runtime.GOARCH)
	}
	if runtime.GOARCH != "amd64" {
		return fmt.Errorf("pyre targets linux/amd64 only, running on %s/%s", runtime.GOOS, runtime.GOARCH)
	}
	if !cpu.X86.HasSSE2 {
		return fmt.Errorf("host does not report baseline x86-64 CPU features; refusing to run a generated binary")
	}
	return nil
}
