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

import "strconv"

// noRef marks an unset StartToken/EndToken arena index.
const noRef = -1

// Token is the atomic program element. It is pure data: the generator
// routes to an emitter via a switch on Operator rather than binding a
// function value to each token.
//
// StartToken and EndToken are indices into the owning Context's token
// arena rather than pointers, so that the if/do/elif/else/end and
// while/do/end cross-reference cycles never require constructing a
// pointer cycle by hand.
type Token struct {
	id       int
	Operator Operator
	Value    any
	Length   int
	Label    string

	StartToken int
	EndToken   int
}

// ProcedureSignature records a procedure's declared input and return
// variable names, in declaration order.
type ProcedureSignature struct {
	Inputs  []string
	Returns []string
}

// Context is the single compiler-context value threaded through every
// pass, replacing the Python implementation's module-level globals
// (global_state.py) with an explicit, non-ambient struct.
type Context struct {
	arena []*Token

	ProcedureOrder []string
	procedureSet   map[string]bool
	ProcedureVars  map[string]ProcedureSignature

	Macros   map[string][]*Token
	macroSet map[string]bool

	Imports map[string]bool

	stringLiterals int

	// Symbols mirrors the runtime symbols table during code generation: an
	// ordered stack of identifier names currently bound, used to compute
	// the symbols-table offset of RETRIEVE and MUTATE tokens. (Scope
	// validation is done separately by LinkBlocks.)
	Symbols []string

	// AddSymbols collects string-literal tokens that must be emitted into
	// the data segment once code generation finishes with the instruction
	// stream.
	AddSymbols []*Token

	blockCounter int

	Verbose bool
}

// NewContext creates a fresh, empty compiler context.
func NewContext() *Context {
	return &Context{
		procedureSet:  make(map[string]bool),
		ProcedureVars: make(map[string]ProcedureSignature),
		Macros:        make(map[string][]*Token),
		macroSet:      make(map[string]bool),
		Imports:       make(map[string]bool),
	}
}

// NewToken allocates a token in the context's arena and returns it. The
// token's id is its arena index, used to resolve StartToken/EndToken.
func (ctx *Context) NewToken(op Operator, value any) *Token {
	t := &Token{
		Operator:   op,
		Value:      value,
		StartToken: noRef,
		EndToken:   noRef,
	}
	t.id = len(ctx.arena)
	ctx.arena = append(ctx.arena, t)
	return t
}

// CloneToken duplicates a token's data (not its block-graph references)
// into a fresh arena slot. Used by the macro expander so that expanded
// copies never share mutable block-graph state with their prototypes.
func (ctx *Context) CloneToken(src *Token) *Token {
	clone := ctx.NewToken(src.Operator, src.Value)
	clone.Length = src.Length
	clone.Label = src.Label
	return clone
}

// Start resolves a token's StartToken reference, or nil if unset.
func (ctx *Context) Start(t *Token) *Token {
	if t.StartToken == noRef {
		return nil
	}
	return ctx.arena[t.StartToken]
}

// End resolves a token's EndToken reference, or nil if unset.
func (ctx *Context) End(t *Token) *Token {
	if t.EndToken == noRef {
		return nil
	}
	return ctx.arena[t.EndToken]
}

// link sets a.EndToken = b and b.StartToken = a using arena indices.
func (ctx *Context) link(a, b *Token) {
	a.EndToken = b.id
	b.StartToken = a.id
}

// linkEnd sets only a.EndToken = b, one-directional. Used when walking back
// through an if/elif/else chain: every intermediate arm's EndToken points
// at the terminating `end`, but `end.StartToken` stays pointed at its
// immediate opener, not at every arm it subsumes.
func (ctx *Context) linkEnd(a, b *Token) {
	a.EndToken = b.id
}

func (ctx *Context) nextLabel(prefix string) string {
	ctx.blockCounter++
	return prefix + strconv.Itoa(ctx.blockCounter)
}

// IsProcedure reports whether name is a declared procedure. Part of the
// PROCEDURE_CALL membership matcher; mutated during lexing as procedures
// are declared, so ordering of declarations vs. calls matters.
func (ctx *Context) IsProcedure(name string) bool {
	return ctx.procedureSet[name]
}

// IsMacro reports whether name is a declared macro. Part of the
// MACRO_EXPANSION membership matcher.
func (ctx *Context) IsMacro(name string) bool {
	return ctx.macroSet[name]
}

// DeclareProcedure registers a new procedure name. Returns an error if the
// procedure was already declared (duplicate-definition category).
func (ctx *Context) DeclareProcedure(name string, sig ProcedureSignature) error {
	if ctx.procedureSet[name] {
		return errDuplicateDefinition("procedure", name)
	}
	ctx.procedureSet[name] = true
	ctx.ProcedureOrder = append(ctx.ProcedureOrder, name)
	ctx.ProcedureVars[name] = sig
	return nil
}

// DeclareMacro registers an empty macro body under name. The body is
// filled in later by the loader.
func (ctx *Context) DeclareMacro(name string) {
	ctx.macroSet[name] = true
	ctx.Macros[name] = nil
}

// NextStringLiteral returns a fresh string_literal<N> label.
func (ctx *Context) NextStringLiteral() string {
	label := "string_literal" + strconv.Itoa(ctx.stringLiterals)
	ctx.stringLiterals++
	return label
}
