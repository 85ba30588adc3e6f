package repl

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/charmbracelet/lipgloss"

	"github.com/ardnew/ecalc/lang"
)

// Signature hint styles.
var (
	signatureStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	signatureNameStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("6")).
				Bold(true)
	currentParamStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("11")).
				Bold(true)
	summaryStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("8")).Italic(true)
)

// functionCall describes the innermost call enclosing the cursor.
type functionCall struct {
	name     string // function name as typed
	argIndex int    // positional argument index (0-based)
	argName  string // parameter named by a "name = value" argument, if any
	inCall   bool   // cursor is inside the argument list
}

// detectFunctionCall analyzes input to determine whether the cursor is inside
// a function call's argument list. Parentheses inside quoted strings are
// ignored.
func detectFunctionCall(input string, cursor int) functionCall {
	cursor = min(max(cursor, 0), len(input))

	// Find the innermost unclosed '(' before the cursor.
	var open []int

	for i, r := range input[:cursor] {
		if insideString(input, i) {
			continue
		}

		switch r {
		case '(':
			open = append(open, i)
		case ')':
			if len(open) > 0 {
				open = open[:len(open)-1]
			}
		}
	}

	if len(open) == 0 {
		return functionCall{}
	}

	paren := open[len(open)-1]

	nameStart := paren
	for nameStart > 0 {
		r, size := utf8.DecodeLastRuneInString(input[:nameStart])
		if r != '_' && !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			break
		}

		nameStart -= size
	}

	name := input[nameStart:paren]
	if name == "" {
		return functionCall{}
	}

	// Count commas at depth 0 within the argument list.
	var (
		index    int
		depth    int
		argStart = paren + 1
	)

	for i := paren + 1; i < cursor; i++ {
		if insideString(input, i) {
			continue
		}

		switch input[i] {
		case '(':
			depth++
		case ')':
			depth--
		case ',':
			if depth == 0 {
				index++
				argStart = i + 1
			}
		}
	}

	return functionCall{
		name:     name,
		argIndex: index,
		argName:  namedArgument(input[argStart:cursor]),
		inCall:   true,
	}
}

// namedArgument returns the parameter name of an argument written as
// "name = value", or "" for a positional argument.
func namedArgument(arg string) string {
	name, _, ok := strings.Cut(strings.TrimSpace(arg), "=")
	if !ok {
		return ""
	}

	name = strings.TrimSpace(name)
	if name == "" || strings.IndexFunc(name, func(r rune) bool {
		return r != '_' && !unicode.IsLetter(r) && !unicode.IsDigit(r)
	}) >= 0 {
		return ""
	}

	return name
}

// lookupFunction returns the keyword function named name, matched
// case-insensitively.
func lookupFunction(name string) (lang.FunctionInfo, bool) {
	for _, fn := range lang.Functions() {
		if strings.EqualFold(fn.Name, name) {
			return fn, true
		}
	}

	return lang.FunctionInfo{}, false
}

// renderSignatureHint renders the signature of fn with the parameter at the
// cursor highlighted, followed by its summary.
func renderSignatureHint(fn lang.FunctionInfo, call functionCall) string {
	var b strings.Builder

	b.WriteString(signatureNameStyle.Render(fn.Name))
	b.WriteString(signatureStyle.Render("("))

	current := currentParam(fn.Params, call)

	for i, param := range fn.Params {
		if i > 0 {
			b.WriteString(signatureStyle.Render(", "))
		}

		if i == current {
			b.WriteString(currentParamStyle.Render(param))
		} else {
			b.WriteString(signatureStyle.Render(param))
		}
	}

	b.WriteString(signatureStyle.Render(")"))

	if fn.Summary != "" {
		b.WriteString("  ")
		b.WriteString(summaryStyle.Render(fn.Summary))
	}

	return b.String()
}

// currentParam returns the index of the displayed parameter the cursor is
// editing, or -1 if none applies.
func currentParam(params []string, call functionCall) int {
	if call.argName != "" {
		for i, p := range params {
			if strings.EqualFold(strings.Trim(p, "[]"), call.argName) {
				return i
			}
		}

		return -1
	}

	if call.argIndex < len(params) && params[call.argIndex] != "..." {
		return call.argIndex
	}

	// Arguments past the last declared parameter of a variadic function
	// repeat it.
	if n := len(params); n >= 2 && params[n-1] == "..." {
		return n - 2
	}

	return -1
}
