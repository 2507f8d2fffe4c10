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

import "testing"

// linkedTokens runs the pipeline through LinkBlocks, since CheckStackEffect
// relies on ctx.End(tok) being resolved (it is noRef, and ctx.End returns
// nil, until the linker runs).
func linkedTokens(t *testing.T, src string) ([]*Token, *Context) {
	t.Helper()
	tokens, ctx := pipelineUpToLink(t, src)
	if err := LinkBlocks(tokens, ctx); err != nil {
		t.Fatalf("LinkBlocks: %v", err)
	}
	return tokens, ctx
}

func TestCheckStackEffect_BalancedProcedureIsSilent(t *testing.T) {
	tokens, ctx := linkedTokens(t, "procedure add a b -- c in a b + !c end procedure main in 2 3 add hardpeek end")
	if warnings := CheckStackEffect(tokens, ctx); len(warnings) != 0 {
		t.Errorf("CheckStackEffect = %v, want none for a balanced body", warnings)
	}
}

func TestCheckStackEffect_UnbalancedProcedureWarns(t *testing.T) {
	// broken declares two inputs and one return (expected net effect -1),
	// but its body `a b + drop` nets 0, so the checker warns.
	tokens, ctx := linkedTokens(t, "procedure broken a b -- c in a b + drop end procedure main in 2 3 broken hardpeek end")
	warnings := CheckStackEffect(tokens, ctx)
	if len(warnings) == 0 {
		t.Fatal("CheckStackEffect = none, want a warning for a body whose net effect doesn't match its declared return")
	}
}

func TestCheckStackEffect_UnknownTokenSuppressesWarning(t *testing.T) {
	// while/do/if header tokens aren't in the stackEffect table, so a
	// procedure using control flow is skipped rather than false-flagged.
	tokens, ctx := linkedTokens(t, "procedure main in 0 while dup 3 < do dup 48 + putchar 1 + end drop end")
	if warnings := CheckStackEffect(tokens, ctx); len(warnings) != 0 {
		t.Errorf("CheckStackEffect = %v, want none when a body contains an unmodelled operator", warnings)
	}
}
