package lsp

import (
	"strings"
	"unicode/utf16"

	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/raymyers/cfront/pkg/parser"
)

// Diagnose parses text and converts every diagnostic for publishing.
func Diagnose(text string) []protocol.Diagnostic {
	_, diags := parser.Parse(text)
	out := make([]protocol.Diagnostic, 0, len(diags))
	for _, d := range diags {
		out = append(out, ToProtocol(text, d))
	}
	return out
}

// ToProtocol converts a parser diagnostic found in text. LSP positions are
// zero-based and count UTF-16 code units; parser columns count bytes. The
// range covers the single character the diagnostic points at.
func ToProtocol(text string, d parser.Diagnostic) protocol.Diagnostic {
	severity := protocol.DiagnosticSeverityError
	if d.Severity == parser.SeverityWarning {
		severity = protocol.DiagnosticSeverityWarning
	}
	source := lsName
	code := protocol.IntegerOrString{Value: d.Category.String()}

	start := protocol.Position{
		Line:      zeroBased(d.Pos.Line),
		Character: utf16Column(text, d.Pos.Line, d.Pos.Column),
	}
	end := start
	end.Character++

	return protocol.Diagnostic{
		Range:    protocol.Range{Start: start, End: end},
		Severity: &severity,
		Code:     &code,
		Source:   &source,
		Message:  d.Msg,
	}
}

func zeroBased(n int) protocol.UInteger {
	if n <= 0 {
		return 0
	}
	return protocol.UInteger(n - 1)
}

// utf16Column converts a 1-based byte column on a 1-based line into a
// zero-based UTF-16 offset.
func utf16Column(text string, line, col int) protocol.UInteger {
	if line <= 0 || col <= 1 {
		return 0
	}
	src := lineText(text, line)
	if col-1 < len(src) {
		src = src[:col-1]
	}
	units := 0
	for _, r := range src {
		units += utf16.RuneLen(r)
	}
	if past := col - 1 - len(src); past > 0 {
		units += past // end of input after the last character
	}
	return protocol.UInteger(units)
}

func lineText(text string, line int) string {
	for ; line > 1; line-- {
		i := strings.IndexByte(text, '\n')
		if i < 0 {
			return ""
		}
		text = text[i+1:]
	}
	if i := strings.IndexByte(text, '\n'); i >= 0 {
		return text[:i]
	}
	return text
}
