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

import "fmt"

// emitWhere binds each identifier in a `where ... in` header to its current
// stack position by recording, in the runtime symbols table, the address of
// the data-stack slot it aliases. Identifiers are listed in push order: the
// last identifier in the header sits at [rsp], the first sits deepest.
func emitWhere(tok *Token, ctx *Context) []string {
	variables := tok.Value.([]string)
	ctx.Symbols = append(ctx.Symbols, variables...)

	lines := []string{fmt.Sprintf("    ;; %v", ctx.Symbols)}
	length := len(variables) - 1
	for i, item := range variables {
		stackLocation := (length - i) * 8
		lines = append(lines,
			fmt.Sprintf("    ;; Bind %s %d", item, stackLocation),
			"    mov     rax, rsp",
			fmt.Sprintf("    add     rax, %d", stackLocation),
			"    mov     rcx, [symbols]",
			"    mov     [rcx], rax",
			"    add     rcx, 8",
			"    mov     [symbols], rcx",
		)
	}
	return lines
}

// symbolOffset returns the byte offset from [symbols] at which the pointer
// for name is stored: the symbols table is a stack of pointers, and
// retrieve/mutate locate a name by its distance from the most recently
// bound identifier with that name.
func symbolOffset(ctx *Context, name string) int {
	for i := len(ctx.Symbols) - 1; i >= 0; i-- {
		if ctx.Symbols[i] == name {
			return (len(ctx.Symbols)-1-i)*8 + 8
		}
	}
	return -1
}

// emitRetrieve reads a bound identifier's stack address out of the runtime
// symbols table and pushes the value stored there.
func emitRetrieve(tok *Token, ctx *Context) []string {
	name := tok.Value.(string)
	offset := symbolOffset(ctx, name)
	return []string{
		fmt.Sprintf("    ;; %v", ctx.Symbols),
		"    mov     rcx, [symbols]",
		fmt.Sprintf("    sub     rcx, %d", offset),
		"    mov     rcx, [rcx]",
		"    mov     rax, [rcx]",
		fmt.Sprintf("    push    rax  ;; Push %s onto the stack", name),
	}
}

// emitMutate writes the popped top-of-stack value into a bound identifier's
// stack slot.
func emitMutate(tok *Token, ctx *Context) []string {
	name := tok.Value.(string)
	offset := symbolOffset(ctx, name)
	return []string{
		"    mov     rcx, [symbols]",
		fmt.Sprintf("    sub     rcx, %d", offset),
		"    mov     rbx, [rcx]",
		"    pop     rax",
		"    mov     [rbx], rax",
		"    xor     rax, rax",
	}
}

// emitWhereEnd pops a where-block's identifiers off the compile-time
// symbols mirror and shrinks the runtime symbols table head by the same
// count.
func emitWhereEnd(opener *Token, ctx *Context) []string {
	variables := opener.Value.([]string)
	toRemove := len(variables) * 8
	ctx.Symbols = ctx.Symbols[:len(ctx.Symbols)-len(variables)]
	return []string{
		"    ;; Remove variables from the symbols table",
		"    mov     rcx, [symbols]",
		fmt.Sprintf("    sub     rcx, %d", toRemove),
		"    mov     [symbols], rcx",
	}
}
