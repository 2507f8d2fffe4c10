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
	"regexp"

	"github.com/samber/lo"
)

// Operator is the closed set of lexical categories a lexeme can belong to.
type Operator int

const (
	OpAdd Operator = iota
	OpSub
	OpMul
	OpDiv
	OpMod
	OpEqual
	OpNotEqual
	OpLessThan
	OpGreaterThan
	OpLessOrEqual
	OpGreaterOrEqual
	OpAnd
	OpOr
	OpNot
	OpBool
	OpDrop
	OpRot2
	OpDrot2
	OpRot3
	OpDup
	OpDup2
	OpDup3
	OpLoad
	OpLoad1
	OpStore
	OpStore1
	OpMemory
	OpIf
	OpElse
	OpElif
	OpEnd
	OpWhile
	OpDo
	OpWhere
	OpIn
	OpProcedure
	OpImport
	OpDefine
	OpMacro
	OpHardPeek
	OpPeek
	OpPutChar
	OpProcedureCall
	OpMacroExpansion
	OpSyscall
	OpWriteTo
	OpDereference
	OpMutate
	OpAutoIncrement
	OpAutoDecrement
	OpPushUint
	OpPushChar
	OpPushString
	OpRetrieve
)

var operatorNames = map[Operator]string{
	OpAdd:            "ADD",
	OpSub:            "SUB",
	OpMul:            "MUL",
	OpDiv:            "DIV",
	OpMod:            "MOD",
	OpEqual:          "EQUAL",
	OpNotEqual:       "NOT_EQUAL",
	OpLessThan:       "LESS_THAN",
	OpGreaterThan:    "GREATER_THAN",
	OpLessOrEqual:    "LESS_OR_EQUAL",
	OpGreaterOrEqual: "GREATER_OR_EQUAL",
	OpAnd:            "AND",
	OpOr:             "OR",
	OpNot:            "NOT",
	OpBool:           "BOOL",
	OpDrop:           "DROP",
	OpRot2:           "ROT2",
	OpDrot2:          "DROT2",
	OpRot3:           "ROT3",
	OpDup:            "DUP",
	OpDup2:           "DUP2",
	OpDup3:           "DUP3",
	OpLoad:           "LOAD",
	OpLoad1:          "LOAD1",
	OpStore:          "STORE",
	OpStore1:         "STORE1",
	OpMemory:         "MEMORY",
	OpIf:             "IF",
	OpElse:           "ELSE",
	OpElif:           "ELIF",
	OpEnd:            "END",
	OpWhile:          "WHILE",
	OpDo:             "DO",
	OpWhere:          "WHERE",
	OpIn:             "IN",
	OpProcedure:      "PROCEDURE",
	OpImport:         "IMPORT",
	OpDefine:         "DEFINE",
	OpMacro:          "MACRO",
	OpHardPeek:       "HARDPEEK",
	OpPeek:           "PEEK",
	OpPutChar:        "PUTCHAR",
	OpProcedureCall:  "PROCEDURE_CALL",
	OpMacroExpansion: "MACRO_EXPANSION",
	OpSyscall:        "SYSCALL",
	OpWriteTo:        "WRITE_TO",
	OpDereference:    "DEREFERENCE",
	OpMutate:         "MUTATE",
	OpAutoIncrement:  "AUTOINCREMENT",
	OpAutoDecrement:  "AUTODECREMENT",
	OpPushUint:       "PUSH_UINT",
	OpPushChar:       "PUSH_CHAR",
	OpPushString:     "PUSH_STRING",
	OpRetrieve:       "RETRIEVE",
}

func (o Operator) String() string {
	if name, ok := operatorNames[o]; ok {
		return name
	}
	return "UNKNOWN"
}

// matcher recognises whether a lexeme belongs to an Operator's category.
// The three disjoint shapes from the design (exact keyword, membership in a
// live table, regular expression) are each their own matcher implementation.
type matcher interface {
	match(lexeme string, ctx *Context) bool
}

// exactMatcher matches a single fixed keyword.
type exactMatcher string

func (m exactMatcher) match(lexeme string, _ *Context) bool {
	return string(m) == lexeme
}

// membershipMatcher matches against one of the context's live tables. These
// tables are mutated during lexing, so membership must be re-checked on
// every call rather than cached.
type membershipMatcher func(lexeme string, ctx *Context) bool

func (m membershipMatcher) match(lexeme string, ctx *Context) bool {
	return m(lexeme, ctx)
}

// regexMatcher matches a compiled regular expression against the whole lexeme.
type regexMatcher struct{ re *regexp.Regexp }

func (m regexMatcher) match(lexeme string, _ *Context) bool {
	return m.re.MatchString(lexeme)
}

var (
	reSyscall    = regexp.MustCompile(`^syscall[0-5]$`)
	reWriteTo    = regexp.MustCompile(`^!([A-Za-z_][A-Za-z0-9_]*)(?::([A-Za-z0-9_]+))?\[(\d*)\]$`)
	reDereference = regexp.MustCompile(`^([A-Za-z_][A-Za-z0-9_]*)(?::([A-Za-z0-9_]+))?\[(\d*)\]$`)
	reMutate     = regexp.MustCompile(`^!([A-Za-z_][A-Za-z0-9_]*)$`)
	reIncrement  = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*\+\+$`)
	reDecrement  = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*--$`)
	reUint       = regexp.MustCompile(`^[0-9]+$`)
	reChar       = regexp.MustCompile(`^'.{1,2}'$`)
	reString     = regexp.MustCompile(`^".*"$`)
	reRetrieve   = regexp.MustCompile(`^.+$`)
)

type classifierEntry struct {
	op Operator
	m  matcher
}

// classifiers is the declaration-ordered catalogue of recognisers. The first
// match wins; membership tables shadow what would otherwise be a retrieve,
// and the regex catch-all must stay last.
var classifiers = []classifierEntry{
	{OpAdd, exactMatcher("+")},
	{OpSub, exactMatcher("-")},
	{OpMul, exactMatcher("*")},
	{OpDiv, exactMatcher("/")},
	{OpMod, exactMatcher("%")},
	{OpEqual, exactMatcher("=")},
	{OpNotEqual, exactMatcher("!=")},
	{OpLessOrEqual, exactMatcher("<=")},
	{OpGreaterOrEqual, exactMatcher(">=")},
	{OpLessThan, exactMatcher("<")},
	{OpGreaterThan, exactMatcher(">")},
	{OpAnd, exactMatcher("and")},
	{OpOr, exactMatcher("or")},
	{OpNot, exactMatcher("not")},
	{OpBool, exactMatcher("bool")},
	{OpDrop, exactMatcher("drop")},
	{OpRot2, exactMatcher("rot2")},
	{OpRot2, exactMatcher("swap")},
	{OpDrot2, exactMatcher("drot2")},
	{OpRot3, exactMatcher("rot3")},
	{OpDup, exactMatcher("dup")},
	{OpDup2, exactMatcher("2dup")},
	{OpDup3, exactMatcher("3dup")},
	{OpLoad, exactMatcher("@")},
	{OpLoad, exactMatcher("load")},
	{OpLoad1, exactMatcher("load1")},
	{OpStore, exactMatcher("store")},
	{OpStore1, exactMatcher("store1")},
	{OpMemory, exactMatcher("memory")},
	{OpIf, exactMatcher("if")},
	{OpElse, exactMatcher("else")},
	{OpElif, exactMatcher("elif")},
	{OpEnd, exactMatcher("end")},
	{OpWhile, exactMatcher("while")},
	{OpDo, exactMatcher("do")},
	{OpWhere, exactMatcher("where")},
	{OpIn, exactMatcher("in")},
	{OpProcedure, exactMatcher("procedure")},
	{OpImport, exactMatcher("import")},
	{OpDefine, exactMatcher("define")},
	{OpMacro, exactMatcher("macro")},
	{OpHardPeek, exactMatcher("hardpeek")},
	{OpPeek, exactMatcher("peek")},
	{OpPutChar, exactMatcher("putchar")},

	{OpProcedureCall, membershipMatcher(func(lexeme string, ctx *Context) bool {
		return ctx.IsProcedure(lexeme)
	})},
	{OpMacroExpansion, membershipMatcher(func(lexeme string, ctx *Context) bool {
		return ctx.IsMacro(lexeme)
	})},

	{OpSyscall, regexMatcher{reSyscall}},
	{OpWriteTo, regexMatcher{reWriteTo}},
	{OpDereference, regexMatcher{reDereference}},
	{OpMutate, regexMatcher{reMutate}},
	{OpAutoIncrement, regexMatcher{reIncrement}},
	{OpAutoDecrement, regexMatcher{reDecrement}},
	{OpPushUint, regexMatcher{reUint}},
	{OpPushChar, regexMatcher{reChar}},
	{OpPushString, regexMatcher{reString}},
	{OpRetrieve, regexMatcher{reRetrieve}},
}

// Classify maps a lexeme to an Operator by trying every recogniser in
// declaration order and returning the first match. It reports ok=false only
// when nothing matches, which the catch-all regex limits to the empty
// lexeme; the tokenizer turns that into a lexical error.
func Classify(lexeme string, ctx *Context) (Operator, bool) {
	entry, ok := lo.Find(classifiers, func(e classifierEntry) bool {
		return e.m.match(lexeme, ctx)
	})
	if !ok {
		return 0, false
	}
	return entry.op, true
}

// byteWidth maps a type annotation to the byte width used to select load
// and store instructions. Untyped dereferences/write-tos default to "1".
var byteWidth = map[string]int{
	"uint8":  1,
	"char":   1,
	"1":      1,
	"uint16": 2,
	"uint32": 4,
	"uint64": 8,
	"8":      8,
}

func typeSize(annotation string) int {
	if annotation == "" {
		return 1
	}
	if sz, ok := byteWidth[annotation]; ok {
		return sz
	}
	return 1
}

func loadInstructionFor(annotation string) Operator {
	if typeSize(annotation) == 1 {
		return OpLoad1
	}
	return OpLoad
}

func storeInstructionFor(annotation string) Operator {
	if typeSize(annotation) == 1 {
		return OpStore1
	}
	return OpStore
}
