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
	"fmt"
)

// Category is the taxonomy of fatal conditions from the error handling
// design: lexical, duplicate definition, unknown reference, structural, and
// external. All are fatal; there is no recovery or accumulation.
type Category int

const (
	CategoryLexical Category = iota
	CategoryDuplicateDefinition
	CategoryUnknownReference
	CategoryStructural
	CategoryExternal
)

func (c Category) String() string {
	switch c {
	case CategoryLexical:
		return "lexical"
	case CategoryDuplicateDefinition:
		return "duplicate definition"
	case CategoryUnknownReference:
		return "unknown reference"
	case CategoryStructural:
		return "structural"
	case CategoryExternal:
		return "external"
	default:
		return "unknown"
	}
}

// CompileError is the single error type surfaced by every pass. It names
// the offending construct and, for external errors, wraps the underlying
// cause (nasm/ld failure, missing import file).
type CompileError struct {
	Category Category
	Message  string
	Cause    error
}

func (e *CompileError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s error: %s: %v", e.Category, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s error: %s", e.Category, e.Message)
}

func (e *CompileError) Unwrap() error { return e.Cause }

// Is lets errors.Is(err, ErrStructural) (and its siblings) match any
// CompileError in the same category.
func (e *CompileError) Is(target error) bool {
	var other *CompileError
	if errors.As(target, &other) {
		return e.Category == other.Category
	}
	return false
}

// Category sentinels for errors.Is checks against a bare category, e.g.
// errors.Is(err, ErrStructural).
var (
	ErrLexical             = &CompileError{Category: CategoryLexical}
	ErrDuplicateDefinition = &CompileError{Category: CategoryDuplicateDefinition}
	ErrUnknownReference    = &CompileError{Category: CategoryUnknownReference}
	ErrStructural          = &CompileError{Category: CategoryStructural}
	ErrExternal            = &CompileError{Category: CategoryExternal}
)

func errLexical(format string, args ...any) error {
	return &CompileError{Category: CategoryLexical, Message: fmt.Sprintf(format, args...)}
}

func errDuplicateDefinition(kind, name string) error {
	return &CompileError{Category: CategoryDuplicateDefinition, Message: fmt.Sprintf("%s %q was previously defined", kind, name)}
}

func errUnknownReference(format string, args ...any) error {
	return &CompileError{Category: CategoryUnknownReference, Message: fmt.Sprintf(format, args...)}
}

func errStructural(format string, args ...any) error {
	return &CompileError{Category: CategoryStructural, Message: fmt.Sprintf(format, args...)}
}

func errExternal(cause error, format string, args ...any) error {
	return &CompileError{Category: CategoryExternal, Message: fmt.Sprintf(format, args...), Cause: cause}
}
