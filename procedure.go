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

// emitProcedure emits a procedure's label and, for every procedure but
// main, the prologue stack-shuffle that makes room for uninitialised
// return slots ahead of the pushed argument values while preserving the
// return address at the top of the allocated frame.
func emitProcedure(tok *Token, ctx *Context) []string {
	name := tok.Value.(string)
	sig := ctx.ProcedureVars[name]

	inputsWithReturn := append([]string{"__return_address"}, sig.Inputs...)
	allVariables := append(append([]string{}, sig.Returns...), inputsWithReturn...)
	ctx.Symbols = append(ctx.Symbols, allVariables...)

	lines := []string{tok.Label + ":", fmt.Sprintf("    ;; %v", ctx.Symbols)}

	if name == "main" {
		return append(lines,
			"    ;; Setup the symbols table",
			"    mov     rcx, symbols",
			"    add     rcx, 8",
			"    mov     [symbols], rcx",
		)
	}

	originalVariables := append(append([]string{}, sig.Inputs...), "__return_address")
	shiftAmount := (len(sig.Returns) + 1) * 8
	shiftBackAmount := len(inputsWithReturn)*8 - shiftAmount

	lines = append(lines, "    ;; Shift everything to make space for the address and return variables")
	lines = append(lines, fmt.Sprintf("    ;; %s", name))

	if len(inputsWithReturn) > 1 {
		for i := range originalVariables {
			variable := originalVariables[len(originalVariables)-1-i]
			lines = append(lines,
				fmt.Sprintf("    mov     rcx, [rsp%+d]", i*8),
				fmt.Sprintf("    mov     [rsp%+d], rcx  ;; Move %s ahead", i*8-shiftAmount, variable),
			)
		}
		lines = append(lines,
			fmt.Sprintf("    mov     rcx, [rsp%+d]", -shiftAmount),
			fmt.Sprintf("    mov     [rsp%+d], rcx  ;; Move return address back", shiftBackAmount),
		)
	} else {
		lines = append(lines,
			"    mov     rcx, [rsp]  ;; Take the return address",
			fmt.Sprintf("    mov     [rsp%+d], rcx  ;; Move it forward making space for the return variables", -len(sig.Returns)*8),
		)
	}
	lines = append(lines, fmt.Sprintf("    sub     rsp, %d  ;; Resize the stack accordingly", shiftAmount-8))

	length := len(allVariables) - 1
	for i, item := range allVariables {
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
	lines = append(lines, fmt.Sprintf("    ;; %s", name))
	return lines
}

// emitProcedureEnd closes a non-main procedure: it shrinks the symbols
// table by the number of bound identifiers, deallocates the input-parameter
// stack slots, and returns. The return value is whatever remains on the
// data stack in the return slots; the call site finds those values above
// its own frame.
func emitProcedureEnd(opener *Token, ctx *Context) []string {
	name := opener.Value.(string)
	if name == "main" {
		return []string{
			"    mov     rdi, 0   ;; EXIT",
			"    mov     rax, SYS_EXIT",
			"    syscall",
		}
	}

	sig := ctx.ProcedureVars[name]
	allVariables := len(sig.Returns) + 1 + len(sig.Inputs)
	ctx.Symbols = ctx.Symbols[:len(ctx.Symbols)-allVariables]

	return []string{
		"    ;; Remove variables from the symbols table",
		"    mov     rcx, [symbols]",
		fmt.Sprintf("    sub     rcx, %d", allVariables*8),
		"    mov     [symbols], rcx",
		"    ;; Remove variables from the stack",
		fmt.Sprintf("    add     rsp, %d", 8*len(sig.Inputs)),
		"    ret",
	}
}

// emitEnd dispatches a closing `end` based on the operator it was paired
// with by the linker: an if/else chain just needs its label; a while loop's
// end jumps back to the loop header; a where block tears down its symbols;
// a procedure emits its epilogue (or, for main, the exit syscall).
func emitEnd(tok *Token, ctx *Context) ([]string, error) {
	opener := ctx.Start(tok)
	if opener == nil {
		return nil, errStructural("'end' has no matching opener")
	}

	switch opener.Operator {
	case OpIf, OpElse:
		return []string{tok.Label + ":"}, nil

	case OpDo:
		if start := ctx.Start(opener); start != nil && start.Operator == OpWhile {
			return []string{fmt.Sprintf("    jmp     %s", start.Label), tok.Label + ":"}, nil
		}
		return []string{tok.Label + ":"}, nil

	case OpWhere:
		return emitWhereEnd(opener, ctx), nil

	case OpProcedure:
		return emitProcedureEnd(opener, ctx), nil

	default:
		return nil, errStructural("could not process 'end' token closing %s", opener.Operator)
	}
}
