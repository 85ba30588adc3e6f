package repl

import (
	"slices"
	"testing"

	"github.com/ardnew/ecalc/lang"
)

func TestWordBounds(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		cursor    int
		wantWord  string
		wantStart int
		wantEnd   int
	}{
		{"simple", "LOOK", 4, "LOOK", 0, 4},
		{"variable", ":scope1.fuel", 12, ":scope1.fuel", 0, 12},
		{"after_plus", "1 + IMP", 7, "IMP", 4, 7},
		{"after_paren", "IF(tr", 5, "tr", 3, 5},
		{"after_comma", "IMPACT('CH4', :q", 16, ":q", 13, 16},
		{"bare_colon", "2 * :", 5, ":", 4, 5},
		{"empty_at_boundary", "a + ", 4, "", 4, 4},
		{"mid_word", "LOOKUP", 3, "LOOKUP", 0, 6},
		{"at_start", "SET", 0, "SET", 0, 3},
		{"between_operators", "a+b", 2, "b", 2, 3},
		{"cursor_past_end", "ab", 10, "ab", 0, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			word, start, end := wordBounds(tt.input, tt.cursor)
			if word != tt.wantWord || start != tt.wantStart || end != tt.wantEnd {
				t.Errorf("wordBounds(%q, %d) = (%q, %d, %d), want (%q, %d, %d)",
					tt.input, tt.cursor, word, start, end,
					tt.wantWord, tt.wantStart, tt.wantEnd)
			}
		})
	}
}

func TestInsideString(t *testing.T) {
	tests := []struct {
		input  string
		offset int
		want   bool
	}{
		{"CONCAT('ab", 10, true},
		{"CONCAT('ab', c", 14, false},
		{`"it's"`, 4, true},
		{`'a\'b`, 5, true},
		{`'a\\' + b`, 8, false},
		{"plain", 3, false},
	}

	for _, tt := range tests {
		if got := insideString(tt.input, tt.offset); got != tt.want {
			t.Errorf("insideString(%q, %d) = %v, want %v",
				tt.input, tt.offset, got, tt.want)
		}
	}
}

func TestVariableRef(t *testing.T) {
	tests := []struct {
		key  string
		want string
	}{
		{"fuel", ":fuel"},
		{"scope1.fuel_kg", ":scope1.fuel_kg"},
		{"two words", ":'two words'"},
		{"", ":''"},
	}

	for _, tt := range tests {
		if got := variableRef(tt.key); got != tt.want {
			t.Errorf("variableRef(%q) = %q, want %q", tt.key, got, tt.want)
		}
	}
}

func TestMatchCandidates(t *testing.T) {
	env := lang.Environment{
		"fuel":     lang.NewString("diesel"),
		"distance": nil,
	}

	t.Run("keywords ignore case", func(t *testing.T) {
		matches := matchCandidates("lookup", evalCandidates(env, "lookup"))
		if len(matches) == 0 || matches[0].Str != "LOOKUP" {
			t.Fatalf("matches = %v, want LOOKUP first", matches)
		}
	})

	t.Run("literals keep spelling", func(t *testing.T) {
		matches := matchCandidates("TRU", evalCandidates(env, "TRU"))

		var got []string
		for _, m := range matches {
			got = append(got, m.Str)
		}

		if !slices.Contains(got, "true") {
			t.Errorf("matches = %v, want to contain true", got)
		}
	})

	t.Run("bare colon lists variables", func(t *testing.T) {
		matches := matchCandidates(":", evalCandidates(env, ":"))
		if len(matches) != 2 {
			t.Fatalf("len(matches) = %d, want 2", len(matches))
		}

		if matches[0].Str != ":distance" || matches[1].Str != ":fuel" {
			t.Errorf("matches = [%s %s], want [:distance :fuel]",
				matches[0].Str, matches[1].Str)
		}
	})

	t.Run("variables match by prefix", func(t *testing.T) {
		matches := matchCandidates(":fu", evalCandidates(env, ":fu"))
		if len(matches) != 1 || matches[0].Str != ":fuel" {
			t.Errorf("matches = %v, want [:fuel]", matches)
		}
	})
}

func TestRenderCandidateBar_Empty(t *testing.T) {
	if got := renderCandidateBar(nil, 0, false, 80); got != "" {
		t.Errorf("renderCandidateBar(nil) = %q, want empty", got)
	}
}
