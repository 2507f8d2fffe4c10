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

func tokenizeOrFatal(t *testing.T, src string) ([]*Token, *Context) {
	t.Helper()
	ctx := NewContext()
	tokens, err := Tokenize(src, ctx, fixtureReader(nil))
	if err != nil {
		t.Fatalf("Tokenize(%q): %v", src, err)
	}
	return tokens, ctx
}

func TestLoadMacros_StripsDefinitionFromStream(t *testing.T) {
	tokens, ctx := tokenizeOrFatal(t, "macro double dup + end procedure main in 3 double hardpeek end")
	loaded, err := LoadMacros(tokens, ctx)
	if err != nil {
		t.Fatalf("LoadMacros: %v", err)
	}
	for _, tok := range loaded {
		if tok.Operator == OpMacro {
			t.Fatal("macro header survived LoadMacros")
		}
	}
	body, ok := ctx.Macros["double"]
	if !ok || len(body) == 0 {
		t.Fatalf("macro body for 'double' was not captured, got %v", body)
	}
}

func TestLoadMacros_NestedMacroIsStructuralError(t *testing.T) {
	tokens, ctx := tokenizeOrFatal(t, "macro outer macro inner 1 end end")
	_, err := LoadMacros(tokens, ctx)
	if err == nil || !errors.Is(err, ErrStructural) {
		t.Fatalf("LoadMacros with nested macro = %v, want a structural error", err)
	}
}

func TestLoadMacros_UnclosedBlockIsStructuralError(t *testing.T) {
	tokens, ctx := tokenizeOrFatal(t, "procedure main in 1 if 1 do")
	_, err := LoadMacros(tokens, ctx)
	if err == nil || !errors.Is(err, ErrStructural) {
		t.Fatalf("LoadMacros with unclosed block = %v, want a structural error", err)
	}
}

func TestLoadMacros_ElseWithoutIfIsStructuralError(t *testing.T) {
	tokens, ctx := tokenizeOrFatal(t, "else end")
	_, err := LoadMacros(tokens, ctx)
	if err == nil || !errors.Is(err, ErrStructural) {
		t.Fatalf("LoadMacros with stray else = %v, want a structural error", err)
	}
}
