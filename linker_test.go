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
	"errors"
	"testing"
)

func pipelineUpToLink(t *testing.T, src string) ([]*Token, *Context) {
	t.Helper()
	tokens, ctx := tokenizeOrFatal(t, src)
	loaded, err := LoadMacros(tokens, ctx)
	if err != nil {
		t.Fatalf("LoadMacros: %v", err)
	}
	expanded, err := ExpandMacros(loaded, ctx)
	if err != nil {
		t.Fatalf("ExpandMacros: %v", err)
	}
	return expanded, ctx
}

func TestLinkBlocks_MainGetsStartLabel(t *testing.T) {
	tokens, ctx := pipelineUpToLink(t, "procedure main in 1 end")
	if err := LinkBlocks(tokens, ctx); err != nil {
		t.Fatalf("LinkBlocks: %v", err)
	}
	if tokens[0].Label != "_start" {
		t.Errorf("main label = %q, want \"_start\"", tokens[0].Label)
	}
}

func TestLinkBlocks_NonMainGetsPrefixedLabel(t *testing.T) {
	tokens, ctx := pipelineUpToLink(t, "procedure add a b -- c in a b + !c end procedure main in end")
	if err := LinkBlocks(tokens, ctx); err != nil {
		t.Fatalf("LinkBlocks: %v", err)
	}
	if tokens[0].Label != procedurePrefix+"add" {
		t.Errorf("add label = %q, want %q", tokens[0].Label, procedurePrefix+"add")
	}
}

func TestLinkBlocks_IfElseChainEndIsShared(t *testing.T) {
	tokens, ctx := pipelineUpToLink(t,
		"procedure main in 1 if 1 do 65 elif 0 do 66 else 67 end putchar end")
	if err := LinkBlocks(tokens, ctx); err != nil {
		t.Fatalf("LinkBlocks: %v", err)
	}

	var ifTok, elifTok, elseTok, endTok *Token
	for _, tok := range tokens {
		switch tok.Operator {
		case OpIf:
			ifTok = tok
		case OpElif:
			elifTok = tok
		case OpElse:
			elseTok = tok
		case OpEnd:
			endTok = tok
		}
	}
	if ifTok == nil || elifTok == nil || elseTok == nil || endTok == nil {
		t.Fatal("expected if/elif/else/end tokens all present")
	}
	if ctx.End(elifTok) != endTok {
		t.Error("elif's end reference should point at the shared terminating end")
	}
	if ctx.End(elseTok) != endTok {
		t.Error("else's end reference should point at the shared terminating end")
	}
	// The end token's own StartToken must point at its immediate opener (the
	// `else`), not be overwritten by the walk-back through elif/else.
	opener := ctx.Start(endTok)
	if opener != elseTok {
		t.Errorf("end.StartToken = %v, want the immediately preceding 'else'", opener)
	}
}

func TestLinkBlocks_WhileLoopsBackToItsLabel(t *testing.T) {
	tokens, ctx := pipelineUpToLink(t, "procedure main in 0 while dup 3 < do dup 48 + putchar 1 + end drop end")
	if err := LinkBlocks(tokens, ctx); err != nil {
		t.Fatalf("LinkBlocks: %v", err)
	}
	var whileTok *Token
	for _, tok := range tokens {
		if tok.Operator == OpWhile {
			whileTok = tok
			break
		}
	}
	if whileTok == nil || whileTok.Label == "" {
		t.Fatal("while token should carry a loop-header label")
	}
}

func TestLinkBlocks_UnknownReferenceOutOfScope(t *testing.T) {
	tokens, ctx := pipelineUpToLink(t, "procedure main in ghost end")
	err := LinkBlocks(tokens, ctx)
	if err == nil || !errors.Is(err, ErrUnknownReference) {
		t.Fatalf("LinkBlocks with an out-of-scope retrieve = %v, want an unknown-reference error", err)
	}
}

func TestLinkBlocks_WhereBringsNameIntoScope(t *testing.T) {
	tokens, ctx := pipelineUpToLink(t, "procedure main in 10 20 where a b in a b + hardpeek end end")
	if err := LinkBlocks(tokens, ctx); err != nil {
		t.Fatalf("LinkBlocks: %v", err)
	}
}

func TestLinkBlocks_DoWithoutOpenerIsStructuralError(t *testing.T) {
	// Bypass the loader/expander (which would themselves reject this) to
	// exercise LinkBlocks' own opener-stack discipline directly.
	ctx := NewContext()
	do := ctx.NewToken(OpDo, nil)
	err := LinkBlocks([]*Token{do}, ctx)
	if err == nil || !errors.Is(err, ErrStructural) {
		t.Fatalf("LinkBlocks with a 'do' lacking an opener = %v, want a structural error", err)
	}
}
