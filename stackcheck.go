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

// stackEffect approximates the net data-stack growth of a single token.
// Tokens whose effect depends on control flow (and any other operator not
// listed) report known=false, which makes CheckStackEffect skip the whole
// procedure. This backs an optional, warning-level diagnostic rather than
// mandatory, fatal semantics.
func stackEffect(tok *Token, ctx *Context) (int, bool) {
	switch tok.Operator {
	case OpAdd, OpSub, OpMul, OpDiv, OpMod,
		OpEqual, OpNotEqual, OpLessThan, OpGreaterThan, OpLessOrEqual, OpGreaterOrEqual,
		OpAnd, OpOr, OpMutate, OpPutChar:
		return -1, true
	case OpDrop:
		return -1, true
	case OpStore1, OpStore:
		return -2, true
	case OpDup, OpMemory, OpPushUint, OpPushChar, OpRetrieve:
		return 1, true
	case OpDup2, OpPushString:
		return 2, true
	case OpDup3:
		return 3, true
	case OpRot2, OpDrot2, OpRot3, OpLoad1, OpLoad, OpNot, OpBool, OpHardPeek, OpPeek:
		return 0, true
	case OpSyscall:
		n := tok.Value.(int)
		return -n, true
	case OpProcedureCall:
		sig := ctx.ProcedureVars[tok.Value.(string)]
		return len(sig.Returns) - len(sig.Inputs), true
	default:
		return 0, false
	}
}

// CheckStackEffect walks every procedure body and warns when the sum of its
// tokens' approximate stack effects doesn't match the procedure's declared
// arity. It never aborts compilation: forward-looking validation only, as
// the disabled original pass was left for future work rather than finished.
func CheckStackEffect(tokens []*Token, ctx *Context) []string {
	var warnings []string

	for i, tok := range tokens {
		if tok.Operator != OpProcedure {
			continue
		}
		end := ctx.End(tok)
		if end == nil {
			continue
		}
		name := tok.Value.(string)
		sig := ctx.ProcedureVars[name]

		net := 0
		understood := true
		for _, body := range tokens[i+1:] {
			if body == end {
				break
			}
			effect, known := stackEffect(body, ctx)
			if !known {
				understood = false
				continue
			}
			net += effect
		}
		if !understood {
			continue
		}

		expected := len(sig.Returns) - len(sig.Inputs)
		if name == "main" {
			expected = 0
		}
		if net != expected {
			warnings = append(warnings, fmt.Sprintf(
				"procedure %q: approximate net stack effect %d does not match declared arity (expected %d)",
				name, net, expected))
		}
	}

	return warnings
}
