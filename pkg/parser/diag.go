package parser

import (
	"errors"
	"fmt"
	"strings"

	"github.com/raymyers/cfront/pkg/lexer"
)

// Severity of a diagnostic
type Severity int

const (
	SeverityError Severity = iota
	SeverityWarning
)

func (s Severity) String() string {
	if s == SeverityWarning {
		return "warning"
	}
	return "error"
}

// Category classifies what went wrong
type Category int

const (
	CategoryLexical       Category = iota // unrecognized character, bad literal
	CategorySyntax                        // expected-token mismatch
	CategoryDeclaration                   // conflicting storage class, duplicate qualifier
	CategoryUnexpectedEOF                 // input ended while a construct was open
)

func (c Category) String() string {
	names := []string{"lexical error", "syntax error", "declaration error", "unexpected end of input"}
	if int(c) < len(names) {
		return names[c]
	}
	return "?"
}

// Diagnostic is one problem found while lexing or parsing. Expected and Got
// are filled in for expected-token mismatches.
type Diagnostic struct {
	Severity Severity
	Category Category
	Msg      string
	Pos      lexer.Pos
	Expected string
	Got      string
}

func (d Diagnostic) Error() string {
	return fmt.Sprintf("line %d, col %d: %s: %s", d.Pos.Line, d.Pos.Column, d.Category, d.Msg)
}

// ErrorList is a list of error diagnostics usable as a single error.
type ErrorList []Diagnostic

func (l ErrorList) Error() string {
	msgs := make([]string, len(l))
	for i, d := range l {
		msgs[i] = d.Error()
	}
	return strings.Join(msgs, "\n")
}

// FromLexError converts a lexer failure into a diagnostic.
func FromLexError(err error) Diagnostic {
	var lexErr *lexer.Error
	if errors.As(err, &lexErr) {
		return Diagnostic{
			Severity: SeverityError,
			Category: CategoryLexical,
			Msg:      lexErr.Msg,
			Pos:      lexErr.Pos,
			Got:      string(lexErr.Char),
		}
	}
	return Diagnostic{Severity: SeverityError, Category: CategoryLexical, Msg: err.Error()}
}

// OnlyErrors filters diags down to error severity.
func OnlyErrors(diags []Diagnostic) ErrorList {
	var errs ErrorList
	for _, d := range diags {
		if d.Severity == SeverityError {
			errs = append(errs, d)
		}
	}
	return errs
}
