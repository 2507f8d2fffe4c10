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

// emitToken routes a single token to its NASM fragment. The token carries no
// bound emitter function; this switch is an exhaustive match on Operator
// instead of a runtime-resolved method.
func emitToken(tok *Token, ctx *Context) ([]string, error) {
	switch tok.Operator {
	case OpAdd:
		return []string{"    pop     rax", "    pop     rbx", "    add     rax, rbx", "    push    rax"}, nil
	case OpSub:
		return []string{"    pop     rax", "    pop     rbx", "    sub     rbx, rax", "    push    rbx"}, nil
	case OpMul:
		return []string{"    pop     rax", "    pop     rbx", "    imul    rax, rbx", "    push    rax"}, nil
	case OpDiv:
		return []string{"    xor     rdx, rdx", "    pop     rbx", "    pop     rax", "    idiv    rbx", "    push    rax"}, nil
	case OpMod:
		return []string{"    xor     rdx, rdx", "    pop     rbx", "    pop     rax", "    idiv    rbx", "    push    rdx"}, nil

	case OpDrop:
		return []string{"    pop     rdi"}, nil
	case OpRot2:
		return []string{"    pop     rax", "    pop     rbx", "    push    rax", "    push    rbx"}, nil
	case OpDrot2:
		return []string{
			"    pop     rdx", "    pop     rcx", "    pop     rbx", "    pop     rax",
			"    push    rcx", "    push    rdx", "    push    rax", "    push    rbx",
		}, nil
	case OpRot3:
		return []string{
			"    pop     rax", "    pop     rbx", "    pop     rcx",
			"    push    rbx", "    push    rax", "    push    rcx",
		}, nil
	case OpDup:
		return []string{"    pop     rax", "    push    rax", "    push    rax"}, nil
	case OpDup2:
		return []string{
			"    pop     rbx", "    pop     rax",
			"    push    rax", "    push    rbx", "    push    rax", "    push    rbx",
		}, nil
	case OpDup3:
		return []string{
			"    pop     rcx", "    pop     rbx", "    pop     rax",
			"    push    rax", "    push    rbx", "    push    rcx",
			"    push    rax", "    push    rbx", "    push    rcx",
		}, nil

	case OpLoad1:
		return []string{"    pop     rax", "    mov     rbx, 0", "    mov     bl, [rax]", "    push    rbx"}, nil
	case OpStore1:
		return []string{"    pop     rax", "    pop     rbx", "    mov     [rax], bl"}, nil
	case OpLoad:
		return []string{"    pop     rax", "    mov     rbx, 0", "    mov     rbx, [rax]", "    push    rbx"}, nil
	case OpStore:
		return []string{"    pop     rax", "    pop     rbx", "    mov     [rax], rbx"}, nil
	case OpMemory:
		return []string{"    push    memory"}, nil

	case OpEqual:
		return cmovCompare("cmove"), nil
	case OpNotEqual:
		return cmovCompare("cmovne"), nil
	case OpLessThan:
		return cmovCompareSwapped("cmovl"), nil
	case OpGreaterThan:
		return cmovCompareSwapped("cmovg"), nil
	case OpLessOrEqual:
		return cmovCompareSwapped("cmovle"), nil
	case OpGreaterOrEqual:
		return cmovCompareSwapped("cmovge"), nil

	case OpAnd:
		return []string{"    pop     rax", "    pop     rbx", "    and     rax, rbx", "    push    rax"}, nil
	case OpOr:
		return []string{"    pop     rax", "    pop     rbx", "    or      rax, rbx", "    push    rax"}, nil
	case OpNot:
		return []string{"    mov     rbx, TRUE", "    pop     rax", "    not     rax", "    and     rax, rbx", "    push    rax"}, nil
	case OpBool:
		return []string{
			"    mov     rbx, FALSE", "    mov     rcx, TRUE",
			"    pop     rax", "    cmp     rax, rbx", "    cmove   rcx, rbx", "    push    rcx",
		}, nil

	case OpIf:
		return nil, nil

	case OpElif:
		end := ctx.End(tok)
		if end == nil {
			return nil, errStructural("'elif' has no matching 'end'")
		}
		return []string{fmt.Sprintf("    jmp     %s", end.Label), tok.Label + ":"}, nil
	case OpElse:
		end := ctx.End(tok)
		if end == nil {
			return nil, errStructural("'else' has no matching 'end'")
		}
		return []string{fmt.Sprintf("    jmp     %s", end.Label), tok.Label + ":"}, nil
	case OpWhile:
		return []string{tok.Label + ":"}, nil
	case OpDo:
		end := ctx.End(tok)
		if end == nil {
			return nil, errStructural("'do' has no matching 'end'")
		}
		return []string{"    pop     rax", fmt.Sprintf("    cmp     rax, TRUE"), fmt.Sprintf("    jne     %s", end.Label)}, nil

	case OpEnd:
		return emitEnd(tok, ctx)

	case OpWhere:
		return emitWhere(tok, ctx), nil
	case OpRetrieve:
		return emitRetrieve(tok, ctx), nil
	case OpMutate:
		return emitMutate(tok, ctx), nil

	case OpProcedure:
		return emitProcedure(tok, ctx), nil
	case OpProcedureCall:
		name := tok.Value.(string)
		label := procedurePrefix + name
		if name == "main" {
			label = "_start"
		}
		return []string{
			"    xor     rax, rax",
			fmt.Sprintf("    call    %s", label),
		}, nil

	case OpSyscall:
		return emitSyscall(tok), nil

	case OpHardPeek:
		return []string{
			"    mov     rdi, [rsp]", "    call    peek",
			"    mov     rdi, [rsp + 8]", "    call    peek",
			"    mov     rdi, [rsp + 16]", "    call    peek",
			"    mov     rdi, [rsp + 24]", "    call    peek",
		}, nil
	case OpPeek:
		return []string{"    mov     rdi, [rsp]", "    call    peek"}, nil
	case OpPutChar:
		return []string{
			"    mov     rax, SYS_WRITE",
			"    mov     rdi, STD_OUT",
			"    mov     rsi, rsp",
			"    mov     rdx, 1",
			"    syscall",
			"    pop     rax",
		}, nil

	case OpPushUint, OpPushChar:
		return []string{fmt.Sprintf("    push    %d", tok.Value)}, nil
	case OpPushString:
		ctx.AddSymbols = append(ctx.AddSymbols, tok)
		return []string{
			fmt.Sprintf("    push    %d", tok.Length),
			fmt.Sprintf("    push    %s", tok.Label),
		}, nil

	case OpMacro, OpMacroExpansion, OpImport, OpDefine:
		return nil, errStructural("%s operator reached code generation", tok.Operator)

	default:
		return nil, errStructural("no emitter registered for %s", tok.Operator)
	}
}

func cmovCompare(cmov string) []string {
	return []string{
		"    mov     rcx, FALSE",
		"    mov     rdx, TRUE",
		"    pop     rax",
		"    pop     rbx",
		"    cmp     rax, rbx",
		fmt.Sprintf("    %-7s rcx, rdx", cmov),
		"    push    rcx",
	}
}

// cmovCompareSwapped is used by the ordering comparisons, which compare rbx
// (the operand pushed first) against rax (pushed second) so that `a b <`
// reads as "a less than b".
func cmovCompareSwapped(cmov string) []string {
	return []string{
		"    mov     rcx, FALSE",
		"    mov     rdx, TRUE",
		"    pop     rax",
		"    pop     rbx",
		"    cmp     rbx, rax",
		fmt.Sprintf("    %-7s rcx, rdx", cmov),
		"    push    rcx",
	}
}

func emitSyscall(tok *Token) []string {
	n := tok.Value.(int)
	argRegisters := []string{"rdi", "rsi", "rdx", "r10", "r8", "r9"}
	lines := []string{"", "    pop     rax"}
	for _, reg := range argRegisters[:n] {
		lines = append(lines, fmt.Sprintf("    pop     %s", reg))
	}
	lines = append(lines, "    syscall", "    push    rax")
	return lines
}
