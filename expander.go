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

// ExpandMacros recursively substitutes MACRO_EXPANSION tokens with cloned
// copies of their macro's body. Clones are independent arena slots
// (see Context.CloneToken) so that expanded copies never share mutable
// block-graph state with their prototype, satisfying the macro hygiene
// property. Termination relies on the loader's no-nested-macros invariant;
// a self-referential macro is undefined behaviour, not guarded against
// here, per spec.
func ExpandMacros(tokens []*Token, ctx *Context) ([]*Token, error) {
	var expanded []*Token
	for _, tok := range tokens {
		switch tok.Operator {
		case OpMacroExpansion:
			body, ok := ctx.Macros[tok.Value.(string)]
			if !ok {
				return nil, errUnknownReference("unrecognised macro %q", tok.Value)
			}
			clones := make([]*Token, len(body))
			for i, src := range body {
				clones[i] = ctx.CloneToken(src)
			}
			more, err := ExpandMacros(clones, ctx)
			if err != nil {
				return nil, err
			}
			expanded = append(expanded, more...)

		case OpMacro:
			return nil, errStructural("macro definition %q survived into expansion", tok.Value)

		default:
			expanded = append(expanded, tok)
		}
	}
	return expanded, nil
}
