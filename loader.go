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

import "github.com/samber/lo"

// endOpeners is the set of operators legally popped by a bare `end`.
var endOpeners = []Operator{OpElse, OpDo, OpProcedure, OpWhere, OpMacro}

// doOpeners is the set of operators a `do` may legally pop.
var doOpeners = []Operator{OpWhile, OpIf, OpElif}

// LoadMacros performs a single left-to-right pass: it checks structural
// balance of the open-block stack and, interleaved with that check,
// captures macro bodies into ctx.Macros, stripping `macro ... end` from
// the returned stream entirely.
func LoadMacros(tokens []*Token, ctx *Context) ([]*Token, error) {
	var result []*Token
	var stack []*Token

	var currentMacro string
	inMacro := false

	for _, tok := range tokens {
		switch tok.Operator {
		case OpProcedure, OpIf, OpWhile, OpWhere:
			stack = append(stack, tok)

		case OpElse:
			if len(stack) == 0 || stack[len(stack)-1].Operator != OpDo {
				return nil, errStructural("'else' without a matching 'do'")
			}
			stack = stack[:len(stack)-1]
			stack = append(stack, tok)

		case OpDo:
			if len(stack) == 0 || !lo.Contains(doOpeners, stack[len(stack)-1].Operator) {
				return nil, errStructural("'do' without a matching 'while', 'if' or 'elif'")
			}
			stack = stack[:len(stack)-1]
			stack = append(stack, tok)

		case OpElif:
			if len(stack) == 0 || stack[len(stack)-1].Operator != OpDo {
				return nil, errStructural("'elif' without a matching 'do'")
			}
			stack = stack[:len(stack)-1]
			stack = append(stack, tok)

		case OpMacro:
			if inMacro {
				return nil, errStructural("cannot nest macro %q inside %q", tok.Value, currentMacro)
			}
			currentMacro = tok.Value.(string)
			inMacro = true
			stack = append(stack, tok)
			continue // the macro token itself is stripped, never appended

		case OpEnd:
			if len(stack) == 0 || !lo.Contains(endOpeners, stack[len(stack)-1].Operator) {
				return nil, errStructural("'end' without a matching opener")
			}
			opener := stack[len(stack)-1]
			stack = stack[:len(stack)-1]

			if opener.Operator == OpMacro {
				currentMacro = ""
				inMacro = false
				continue // matching 'end' is also stripped
			}
		}

		if inMacro {
			ctx.Macros[currentMacro] = append(ctx.Macros[currentMacro], tok)
			continue
		}
		result = append(result, tok)
	}

	if len(stack) != 0 {
		return nil, errStructural("unclosed %q block at end of input", stack[len(stack)-1].Operator)
	}

	return result, nil
}
