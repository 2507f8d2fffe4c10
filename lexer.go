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
	"strconv"
	"strings"
)

// FileReader resolves an import's file contents by name. Production code
// reads from disk relative to the working directory; tests supply an
// in-memory map instead.
type FileReader func(path string) (string, error)

// Tokenize converts Pyre source text into a linear token stream, folding
// imports inline, expanding define/procedure/where/syscall headers and
// sugar (++, --, write-to, dereference) as it goes. It combines lexeme
// splitting (Split/RemoveComments), classification and token construction
// into a single left-to-right pass.
func Tokenize(source string, ctx *Context, read FileReader) ([]*Token, error) {
	return tokenizeLexemes(Split(RemoveComments(source)), ctx, read)
}

func tokenizeLexemes(lexemes []string, ctx *Context, read FileReader) ([]*Token, error) {
	var tokens []*Token
	cur := newCursor(lexemes)

	for {
		item, ok := cur.next()
		if !ok {
			break
		}

		op, matched := Classify(item, ctx)
		if !matched {
			return nil, errLexical("unrecognised token %q", item)
		}

		switch op {
		case OpImport:
			more, err := expandImport(cur, ctx, read)
			if err != nil {
				return nil, err
			}
			tokens = append(tokens, more...)
			continue

		case OpDefine:
			name, ok := cur.next()
			if !ok {
				return nil, errLexical("define: expected a name")
			}
			value, ok := cur.next()
			if !ok {
				return nil, errLexical("define %s: expected a value", name)
			}
			more, err := tokenizeLexemes(Split("macro "+name+" "+value+" end"), ctx, read)
			if err != nil {
				return nil, err
			}
			tokens = append(tokens, more...)
			continue

		case OpAutoIncrement:
			name := item[:len(item)-2]
			more, err := tokenizeLexemes(Split(name+" 1 + !"+name), ctx, read)
			if err != nil {
				return nil, err
			}
			tokens = append(tokens, more...)
			continue

		case OpAutoDecrement:
			name := item[:len(item)-2]
			more, err := tokenizeLexemes(Split(name+" 1 - !"+name), ctx, read)
			if err != nil {
				return nil, err
			}
			tokens = append(tokens, more...)
			continue

		case OpWriteTo:
			more, err := expandWriteTo(item, ctx, read)
			if err != nil {
				return nil, err
			}
			tokens = append(tokens, more...)
			continue

		case OpDereference:
			more, err := expandDereference(item, ctx, read)
			if err != nil {
				return nil, err
			}
			tokens = append(tokens, more...)
			continue
		}

		tok, err := buildToken(op, item, cur, ctx)
		if err != nil {
			return nil, err
		}
		tokens = append(tokens, tok)
	}

	return tokens, nil
}

// buildToken performs per-operator token construction. Most
// operators produce a basic token; procedure, where, syscall and the
// literal forms have dedicated construction logic, some of which consumes
// further lexemes from the same cursor.
func buildToken(op Operator, lexeme string, cur *cursor, ctx *Context) (*Token, error) {
	switch op {
	case OpMacro:
		name, ok := cur.next()
		if !ok {
			return nil, errLexical("macro: expected a name")
		}
		ctx.DeclareMacro(name)
		return ctx.NewToken(OpMacro, name), nil

	case OpMacroExpansion:
		if !ctx.IsMacro(lexeme) {
			return nil, errUnknownReference("unrecognised macro %q", lexeme)
		}
		return ctx.NewToken(OpMacroExpansion, lexeme), nil

	case OpProcedureCall:
		return ctx.NewToken(OpProcedureCall, lexeme), nil

	case OpProcedure:
		return buildProcedureToken(cur, ctx)

	case OpWhere:
		var variables []string
		for {
			item, ok := cur.next()
			if !ok {
				return nil, errLexical("where: expected 'in'")
			}
			if item == "in" {
				break
			}
			variables = append(variables, item)
		}
		return ctx.NewToken(OpWhere, variables), nil

	case OpSyscall:
		n, err := strconv.Atoi(lexeme[len(lexeme)-1:])
		if err != nil {
			return nil, errLexical("malformed syscall lexeme %q", lexeme)
		}
		return ctx.NewToken(OpSyscall, n), nil

	case OpMutate:
		return ctx.NewToken(OpMutate, lexeme[1:]), nil

	case OpPushUint:
		n, err := strconv.ParseUint(lexeme, 10, 64)
		if err != nil {
			return nil, errLexical("malformed integer literal %q", lexeme)
		}
		return ctx.NewToken(OpPushUint, int64(n)), nil

	case OpPushChar:
		value, err := decodeCharLiteral(lexeme)
		if err != nil {
			return nil, err
		}
		return ctx.NewToken(OpPushChar, value), nil

	case OpPushString:
		if len(lexeme) < 2 {
			return nil, errLexical("malformed string literal %q", lexeme)
		}
		db, length := stringToDB(lexeme[1 : len(lexeme)-1])
		tok := ctx.NewToken(OpPushString, db)
		tok.Length = length
		tok.Label = ctx.NextStringLiteral()
		return tok, nil

	default:
		return ctx.NewToken(op, lexeme), nil
	}
}

// buildProcedureToken consumes `<name> [<inputs> -- <returns>] in` from the
// cursor. When no "--" appears, every word before "in" is an input and the
// procedure has no returns; `procedure main in ...` is the zero-arity form
// used by every program's entry point.
func buildProcedureToken(cur *cursor, ctx *Context) (*Token, error) {
	name, ok := cur.next()
	if !ok {
		return nil, errLexical("procedure: expected a name")
	}

	var inputs, returns []string
	sawArrow := false
	for {
		item, ok := cur.next()
		if !ok {
			return nil, errLexical("procedure %s: expected 'in'", name)
		}
		if item == "--" {
			sawArrow = true
			break
		}
		if item == "in" {
			break
		}
		inputs = append(inputs, item)
	}
	if sawArrow {
		for {
			item, ok := cur.next()
			if !ok {
				return nil, errLexical("procedure %s: expected 'in'", name)
			}
			if item == "in" {
				break
			}
			returns = append(returns, item)
		}
	}

	sig := ProcedureSignature{Inputs: inputs, Returns: returns}
	if err := ctx.DeclareProcedure(name, sig); err != nil {
		return nil, err
	}
	return ctx.NewToken(OpProcedure, name), nil
}

func expandImport(cur *cursor, ctx *Context, read FileReader) ([]*Token, error) {
	raw, ok := cur.next()
	if !ok {
		return nil, errLexical("import: expected a quoted filename")
	}
	if len(raw) < 2 || raw[0] != '"' || raw[len(raw)-1] != '"' {
		return nil, errLexical("import: filename %q must be double-quoted", raw)
	}
	filename := raw[1:len(raw)-1] + ".pyre"
	if ctx.Imports[filename] {
		return nil, nil
	}
	ctx.Imports[filename] = true

	contents, err := read(filename)
	if err != nil {
		return nil, errExternal(err, "could not import %q", filename)
	}
	return tokenizeLexemes(Split(RemoveComments(contents)), ctx, read)
}

// expandWriteTo desugars `!ptr:type[n]` into `ptr (n*size) + store[1]`.
func expandWriteTo(lexeme string, ctx *Context, read FileReader) ([]*Token, error) {
	groups := reWriteTo.FindStringSubmatch(lexeme)
	if groups == nil {
		return nil, errLexical("malformed write-to %q", lexeme)
	}
	address, typeAnnotation, offsetStr := groups[1], groups[2], groups[3]
	offset := 0
	if offsetStr != "" {
		n, err := strconv.Atoi(offsetStr)
		if err != nil {
			return nil, errLexical("malformed offset in %q", lexeme)
		}
		offset = n
	}
	byteOffset := offset * typeSize(typeAnnotation)
	storeLexeme := "store"
	if typeSize(typeAnnotation) == 1 {
		storeLexeme = "store1"
	}
	fragment := address + " " + strconv.Itoa(byteOffset) + " + " + storeLexeme
	return tokenizeLexemes(Split(fragment), ctx, read)
}

// expandDereference desugars `ptr:type[n]` into `ptr (n*size) + load[1]`.
func expandDereference(lexeme string, ctx *Context, read FileReader) ([]*Token, error) {
	groups := reDereference.FindStringSubmatch(lexeme)
	if groups == nil {
		return nil, errLexical("malformed dereference %q", lexeme)
	}
	address, typeAnnotation, offsetStr := groups[1], groups[2], groups[3]
	offset := 0
	if offsetStr != "" {
		n, err := strconv.Atoi(offsetStr)
		if err != nil {
			return nil, errLexical("malformed offset in %q", lexeme)
		}
		offset = n
	}
	byteOffset := offset * typeSize(typeAnnotation)
	loadLexeme := "load"
	if typeSize(typeAnnotation) == 1 {
		loadLexeme = "load1"
	}
	fragment := address + " " + strconv.Itoa(byteOffset) + " + " + loadLexeme
	return tokenizeLexemes(Split(fragment), ctx, read)
}

var charEscapes = map[string]int64{
	`\n`: 10,
	`\t`: 9,
	`\0`: 0,
	`\\`: 92,
	`\'`: 39,
}

// decodeCharLiteral decodes a 'x' or '\n'-style char literal into its ASCII
// code.
func decodeCharLiteral(lexeme string) (int64, error) {
	inner := lexeme[1 : len(lexeme)-1]
	if len(inner) == 1 {
		return int64(inner[0]), nil
	}
	if v, ok := charEscapes[inner]; ok {
		return v, nil
	}
	return 0, errLexical("malformed char literal %q", lexeme)
}

// stringToDB renders a string literal's content (escapes still literal
// two-character sequences, e.g. `\n`) into a comma-separated NASM `db`
// operand list terminated by a trailing NUL, and returns the total byte
// length including that NUL. A bare backslash-n/backslash-t splits the
// surrounding text into separate quoted segments interleaved with decimal
// byte codes, via a recursive split on each escape in turn.
func stringToDB(content string) (string, int) {
	segments := splitEscapes(content)
	var parts []string
	length := 0
	for _, seg := range segments {
		if seg.isByte {
			parts = append(parts, strconv.Itoa(seg.b))
			length++
		} else {
			parts = append(parts, strconv.Quote(seg.s))
			length += len(seg.s)
		}
	}
	parts = append(parts, "0")
	length++
	return strings.Join(parts, ","), length
}

type dbSegment struct {
	isByte bool
	b      int
	s      string
}

func splitEscapes(content string) []dbSegment {
	for _, esc := range []struct {
		token string
		value int
	}{
		{`\n`, '\n'},
		{`\t`, '\t'},
	} {
		if idx := strings.Index(content, esc.token); idx >= 0 {
			before := splitEscapes(content[:idx])
			after := splitEscapes(content[idx+len(esc.token):])
			result := append(before, dbSegment{isByte: true, b: esc.value})
			return append(result, after...)
		}
	}
	if content == "" {
		return nil
	}
	return []dbSegment{{s: content}}
}
