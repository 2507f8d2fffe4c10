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

const procedurePrefix = "procedure_"

// LinkBlocks is the second pass: it re-walks the open-block stack
// discipline of the loader, this time assigning labels and threading the
// StartToken/EndToken cross-references that make up the block graph. It
// also maintains the compile-time scope list used to validate every
// RETRIEVE and MUTATE token.
func LinkBlocks(tokens []*Token, ctx *Context) error {
	var stack []*Token
	var scope []string

	for _, tok := range tokens {
		switch tok.Operator {
		case OpRetrieve, OpMutate:
			name, _ := tok.Value.(string)
			if !lo.Contains(scope, name) {
				return errUnknownReference("%q is not in scope", name)
			}

		case OpProcedure:
			name := tok.Value.(string)
			if name == "main" {
				tok.Label = "_start"
			} else {
				tok.Label = procedurePrefix + name
			}
			sig := ctx.ProcedureVars[name]
			scope = append(scope, sig.Inputs...)
			scope = append(scope, sig.Returns...)
			stack = append(stack, tok)

		case OpIf:
			stack = append(stack, tok)

		case OpWhile:
			tok.Label = ctx.nextLabel("while")
			stack = append(stack, tok)

		case OpDo:
			if len(stack) == 0 {
				return errStructural("'do' without a matching 'while', 'if' or 'elif'")
			}
			opener := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			ctx.link(opener, tok)
			stack = append(stack, tok)

		case OpElif:
			tok.Label = ctx.nextLabel("elif")
			if len(stack) == 0 || stack[len(stack)-1].Operator != OpDo {
				return errStructural("'elif' without a matching 'do'")
			}
			opener := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			ctx.link(opener, tok)
			stack = append(stack, tok)

		case OpElse:
			tok.Label = ctx.nextLabel("else")
			if len(stack) == 0 || stack[len(stack)-1].Operator != OpDo {
				return errStructural("'else' without a matching 'do'")
			}
			opener := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			ctx.link(opener, tok)
			stack = append(stack, tok)

		case OpWhere:
			names := tok.Value.([]string)
			scope = append(scope, names...)
			stack = append(stack, tok)

		case OpEnd:
			tok.Label = ctx.nextLabel("end")
			if len(stack) == 0 || !lo.Contains(endOpeners, stack[len(stack)-1].Operator) {
				return errStructural("'end' without a matching opener")
			}
			opener := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			ctx.link(opener, tok)

			switch opener.Operator {
			case OpWhere:
				names := opener.Value.([]string)
				scope = scope[:len(scope)-len(names)]

			case OpProcedure:
				sig := ctx.ProcedureVars[opener.Value.(string)]
				total := len(sig.Inputs) + len(sig.Returns)
				scope = scope[:len(scope)-total]

			default:
				// opener is a DO or an ELSE closing an if/elif chain: walk
				// back through every intermediate elif/else so that all
				// exits from a multi-arm conditional share this end label.
				st := opener
				for {
					if st.Operator == OpElif || st.Operator == OpElse {
						ctx.linkEnd(st, tok)
					}
					if st.Operator == OpIf {
						break
					}
					prev := ctx.Start(st)
					if prev == nil {
						break
					}
					st = prev
				}
			}
		}
	}

	if len(stack) != 0 {
		return errStructural("unclosed %q block at end of input", stack[len(stack)-1].Operator)
	}
	return nil
}
