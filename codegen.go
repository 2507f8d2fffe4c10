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
	"strings"
)

const (
	memoryCapacity    = 1024 * 1024 // 1 MiB
	symbolsTableSize  = 512         // 64 cells of 8 bytes: the head pointer plus 63 symbol slots
)

// preambleLines is the fixed set of section declarations, constant defines and
// the `peek` decimal-print helper that precedes every generated program.
// `peek` is a fixed literal asset, not a subject of design.
var preambleLines = []string{
	`%define SYS_EXIT 60`,
	`%define SYS_WRITE 1`,
	`%define STD_OUT 1`,
	`%define TRUE 1`,
	`%define FALSE 0`,
	`global _start`,
	``,
	`segment .bss`,
	fmt.Sprintf(`memory:   resb %d`, memoryCapacity),
	fmt.Sprintf(`symbols:   resb %d`, symbolsTableSize),
	``,
	`segment .text`,
	``,
	`peek:`,
	`    mov     r9, -3689348814741910323`,
	`    sub     rsp, 40`,
	`    mov     BYTE [rsp+31], 10`,
	`    lea     rcx, [rsp+30]`,
	`.L2:`,
	`    mov     rax, rdi`,
	`    lea     r8, [rsp+32]`,
	`    mul     r9`,
	`    mov     rax, rdi`,
	`    sub     r8, rcx`,
	`    shr     rdx, 3`,
	`    lea     rsi, [rdx+rdx*4]`,
	`    add     rsi, rsi`,
	`    sub     rax, rsi`,
	`    add     eax, 48`,
	`    mov     BYTE [rcx], al`,
	`    mov     rax, rdi`,
	`    mov     rdi, rdx`,
	`    mov     rdx, rcx`,
	`    sub     rcx, 1`,
	`    cmp     rax, 9`,
	`    ja      .L2`,
	`    lea     rax, [rsp+32]`,
	`    mov     edi, 1`,
	`    sub     rdx, rax`,
	`    xor     eax, eax`,
	`    lea     rsi, [rsp+32+rdx]`,
	`    mov     rdx, r8`,
	`    mov     rax, SYS_WRITE`,
	`    syscall`,
	`    add     rsp, 40`,
	`    ret`,
	``,
}

// GenerateAssembly emits NASM text for a linked, macro-expanded program:
// the fixed preamble, one fragment per token tagged with its operator name,
// and finally the data segment entries for every string literal collected
// in ctx.AddSymbols.
func GenerateAssembly(tokens []*Token, ctx *Context) (string, error) {
	var out []string
	out = append(out, preambleLines...)

	ctx.AddSymbols = nil
	ctx.Symbols = nil

	for _, tok := range tokens {
		lines, err := emitToken(tok, ctx)
		if err != nil {
			return "", err
		}
		out = append(out, tagInstructions(lines, tok.Operator.String()))
	}

	for _, tok := range ctx.AddSymbols {
		out = append(out,
			"",
			tok.Label+":",
			fmt.Sprintf("    db    %s", tok.Value.(string)),
		)
	}

	return strings.Join(out, "\n"), nil
}

// tagInstructions appends a trailing comment naming the operator that
// produced the first line of a fragment, purely for readability of the
// generated assembly.
func tagInstructions(lines []string, name string) string {
	if len(lines) == 0 {
		return fmt.Sprintf("    ;; %s", name)
	}
	const tagColumn = 29
	first := lines[0]
	padding := tagColumn - len(first)
	if padding < 0 {
		padding = 0
	}
	lines = append([]string(nil), lines...)
	lines[0] = first + strings.Repeat(" ", padding) + " ;; " + name
	return strings.Join(lines, "\n")
}
