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

func TestExpandMacros_SubstitutesBody(t *testing.T) {
	tokens, ctx := tokenizeOrFatal(t, "macro double dup + end procedure main in 3 double hardpeek end")
	loaded, err := LoadMacros(tokens, ctx)
	if err != nil {
		t.Fatalf("LoadMacros: %v", err)
	}
	expanded, err := ExpandMacros(loaded, ctx)
	if err != nil {
		t.Fatalf("ExpandMacros: %v", err)
	}
	want := []Operator{OpProcedure, OpPushUint, OpDup, OpAdd, OpHardPeek, OpEnd}
	got := tokenOps(expanded)
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("token %d = %s, want %s", i, got[i], want[i])
		}
	}
}

func TestExpandMacros_Hygiene(t *testing.T) {
	tokens, ctx := tokenizeOrFatal(t,
		"macro double dup + end procedure main in 3 double 4 double hardpeek hardpeek end")
	loaded, err := LoadMacros(tokens, ctx)
	if err != nil {
		t.Fatalf("LoadMacros: %v", err)
	}
	expanded, err := ExpandMacros(loaded, ctx)
	if err != nil {
		t.Fatalf("ExpandMacros: %v", err)
	}

	var dups []*Token
	for _, tok := range expanded {
		if tok.Operator == OpDup {
			dups = append(dups, tok)
		}
	}
	if len(dups) != 2 {
		t.Fatalf("expected 2 expanded 'dup' tokens, got %d", len(dups))
	}
	if dups[0].id == dups[1].id {
		t.Error("two expansions of the same macro must not share an arena slot")
	}
}

func TestExpandMacros_UnknownMacroIsUnknownReference(t *testing.T) {
	ctx := NewContext()
	ctx.DeclareMacro("ghost")
	// Manually construct a MACRO_EXPANSION token for a macro whose body was
	// never populated (as if the loader's bookkeeping were bypassed), to
	// exercise the lookup-miss branch distinctly from LoadMacros' own checks.
	delete(ctx.Macros, "ghost")
	expansion := ctx.NewToken(OpMacroExpansion, "ghost")

	_, err := ExpandMacros([]*Token{expansion}, ctx)
	if err == nil || !errors.Is(err, ErrUnknownReference) {
		t.Fatalf("ExpandMacros with unregistered macro = %v, want an unknown-reference error", err)
	}
}

func TestExpandMacros_SurvivingMacroHeaderIsStructuralError(t *testing.T) {
	ctx := NewContext()
	header := ctx.NewToken(OpMacro, "stray")
	_, err := ExpandMacros([]*Token{header}, ctx)
	if err == nil || !errors.Is(err, ErrStructural) {
		t.Fatalf("ExpandMacros with surviving macro header = %v, want a structural error", err)
	}
}
