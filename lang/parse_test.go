package lang

import (
	"bytes"
	"errors"
	"slices"
	"strings"
	"testing"
	"unicode/utf8"
)

const operandExpectation = "{AS_TIMESTAMP, ASSIGN_TO_GROUP, GET_VALUE, COALESCE, CONCAT, " +
	"CONVERT, IF, IMPACT, LOOKUP, LOWERCASE, REF, CAML, SET, SPLIT, SWITCH, UPPERCASE, " +
	"SEARCH, BOOLEAN, NULL, CUSTOM_FUNCTION, TOKEN, QUOTED_STRING, NUMBER, " +
	"SCIENTIFIC_NUMBER, '(', '-', ' '}"

func TestParse_SyntaxErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		kind  SyntaxKind
		want  string
	}{
		{
			name:  "trailing operator",
			input: "1+2+",
			kind:  Mismatched,
			want:  "Line 1:4 mismatched input '<EOF>' expecting " + operandExpectation,
		},
		{
			name:  "repeated operator",
			input: "1+2+++5",
			kind:  Mismatched,
			want:  "Line 1:4 mismatched input '+' expecting " + operandExpectation,
		},
		{
			name:  "leading operator",
			input: "/3",
			kind:  Extraneous,
			want:  "Line 1:0 extraneous input '/' expecting " + operandExpectation,
		},
		{
			name:  "operator after negation",
			input: "1+-/2",
			kind:  Extraneous,
			want:  "Line 1:3 extraneous input '/' expecting " + operandExpectation,
		},
		{
			name:  "keyword without parenthesis",
			input: "IF 1",
			kind:  Mismatched,
			want:  "Line 1:3 mismatched input '1' expecting '('",
		},
		{
			name:  "set without variable",
			input: "set 1",
			kind:  Mismatched,
			want:  "Line 1:4 mismatched input '1' expecting TOKEN",
		},
		{
			name:  "unrecognized character",
			input: "1 # 2",
			kind:  Unrecognized,
			want:  "Line 1:2 token recognition error at: '#'",
		},
		{
			name:  "unterminated string",
			input: "'abc",
			kind:  Unrecognized,
			want:  "Line 1:0 token recognition error at: ''abc'",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(t.Context(), tt.input)

			var se *SyntaxError
			if !errors.As(err, &se) {
				t.Fatalf("Parse(%q) error = %v, want *SyntaxError", tt.input, err)
			}

			if se.Kind != tt.kind {
				t.Errorf("Kind = %d, want %d", se.Kind, tt.kind)
			}

			if got := se.Error(); got != tt.want {
				t.Errorf("Error()\n got: %s\nwant: %s", got, tt.want)
			}
		})
	}
}

func TestParse_ExpectedSetIsOrdered(t *testing.T) {
	_, err := Parse(t.Context(), "(1 2)")

	var se *SyntaxError
	if !errors.As(err, &se) {
		t.Fatalf("Parse() error = %v, want *SyntaxError", err)
	}

	if !slices.IsSorted(se.Expected) {
		t.Errorf("Expected = %v, want declaration order", se.Expected)
	}

	if !slices.Contains(se.Expected, SymRParen) {
		t.Errorf("Expected = %v, want ')' among them", se.Expected)
	}

	if slices.Contains(se.Expected, SymSpace) {
		t.Errorf("Expected = %v, want no ' ' right after a space", se.Expected)
	}
}

func TestParse_Canonical(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"1 + 2 * 3", "(1 + (2 * 3))"},
		{"(1 + 2) * 3", "((1 + 2) * 3)"},
		{"1 - 2 - 3", "((1 - 2) - 3)"},
		{"2 ^ 3 ^ 2", "(2 ^ (3 ^ 2))"},
		{"-:b ^ 2", "-(:b ^ 2)"},
		{"2*-4", "(2 * -4)"},
		{":a < :b == true", "((:a < :b) == true)"},
		{"set :x = 1 + 1", "(SET :x = (1 + 1))"},
		{"if(:a > 1, 'big', \"small\")", "IF((:a > 1), 'big', 'small')"},
		{"myFn(1, scale = 2)", "myFn(1, scale=2)"},
		{"CONCAT('it\\'s')", "CONCAT('it\\'s')"},
		{":one:two:three", ":one:two:three"},
		{":'with space'", ":'with space'"},
		{"NULL", "null"},
		{"3.0E-3", "0.003"},
		{"\t1\n+\r\n2 ", "(1 + 2)"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			tree, err := Parse(t.Context(), tt.input)
			if err != nil {
				t.Fatalf("Parse(%q) error = %v", tt.input, err)
			}

			if got := tree.String(); got != tt.want {
				t.Errorf("String() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestTree_Variables(t *testing.T) {
	tree, err := Parse(t.Context(), "set :total = :a + IF(:flag, :a, :b) * :total")
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	want := []string{"total", "a", "flag", "b"}
	if got := tree.Variables(); !slices.Equal(got, want) {
		t.Errorf("Variables() = %v, want %v", got, want)
	}
}

func TestTree_Print(t *testing.T) {
	tree, err := Parse(t.Context(), "LOOKUP('diesel', quantity = -:litres)")
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	var buf bytes.Buffer

	tree.Print(&buf)

	want := strings.Join([]string{
		"Call LOOKUP @1:0",
		"  String 'diesel' @1:7",
		"  quantity: Negate @1:28",
		"    Variable \"litres\" @1:29",
		"",
	}, "\n")

	if got := buf.String(); got != want {
		t.Errorf("Print()\n got:\n%s\nwant:\n%s", got, want)
	}
}

func TestParse_KeywordsIgnoreCase(t *testing.T) {
	for _, input := range []string{"IF(true, 1)", "if(true, 1)", "If (true, 1)"} {
		tree, err := Parse(t.Context(), input)
		if err != nil {
			t.Fatalf("Parse(%q) error = %v", input, err)
		}

		call, ok := tree.Root.(*Call)
		if !ok || call.Name != "IF" || call.Custom {
			t.Errorf("Parse(%q) root = %#v, want keyword call IF", input, tree.Root)
		}
	}
}

func FuzzParseCanonical(f *testing.F) {
	f.Add("1+2")
	f.Add("set :a = 1")
	f.Add("IF(:a > 1, 'x', \"y\")")
	f.Add("AS_TIMESTAMP('1/21/22', 'M/d/yy', timezone='UTC')")
	f.Add(":'quoted key' ^ -2")
	f.Add("myFn(a = 1, 2)")
	f.Add("1e+3 / .5")

	f.Fuzz(func(t *testing.T, input string) {
		if !utf8.ValidString(input) {
			t.Skip("invalid UTF-8")
		}

		tree, err := Parse(t.Context(), input)
		if err != nil {
			var se *SyntaxError
			if !errors.As(err, &se) {
				t.Fatalf("Parse(%q) error = %T, want *SyntaxError", input, err)
			}

			return
		}

		// canonical text must parse to the same canonical text
		again, err := Parse(t.Context(), tree.String())
		if err != nil {
			t.Fatalf("Parse(%q) of canonical %q error = %v", input, tree.String(), err)
		}

		if again.String() != tree.String() {
			t.Errorf("canonical form unstable: %q -> %q", tree.String(), again.String())
		}
	})
}
