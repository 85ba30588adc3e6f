package repl

import (
	"slices"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/charmbracelet/lipgloss"
	"github.com/sahilm/fuzzy"

	"github.com/ardnew/ecalc/lang"
)

// ctrlCommands are the available control-mode commands.
var ctrlCommands = []string{"help", "vars", "funcs", "edit", "reset", "clear", "quit"}

// literals are the non-function words of the formula language.
var literals = []string{"SET", "true", "false", "null"}

// isWordPart reports whether r continues a completable word: a keyword, a
// custom function name, or a variable reference such as :scope1.fuel.
func isWordPart(r rune) bool {
	return r == '_' || r == '.' || r == ':' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

// wordBounds returns the word at the cursor and its byte boundaries within
// input. The word is empty when the cursor sits between two delimiters.
func wordBounds(input string, cursor int) (word string, start, end int) {
	cursor = min(max(cursor, 0), len(input))

	for start = cursor; start > 0; {
		r, size := utf8.DecodeLastRuneInString(input[:start])
		if !isWordPart(r) {
			break
		}

		start -= size
	}

	for end = cursor; end < len(input); {
		r, size := utf8.DecodeRuneInString(input[end:])
		if !isWordPart(r) {
			break
		}

		end += size
	}

	return input[start:end], start, end
}

// insideString reports whether offset falls inside a quoted string, where
// completion is suppressed.
func insideString(input string, offset int) bool {
	var (
		quote   rune
		escaped bool
	)

	for i, r := range input {
		if i >= offset {
			break
		}

		switch {
		case escaped:
			escaped = false
		case quote == 0:
			if r == '\'' || r == '"' {
				quote = r
			}
		case r == '\\':
			escaped = true
		case r == quote:
			quote = 0
		}
	}

	return quote != 0
}

// functionNames lists the keyword functions once.
var functionNames = func() []string {
	fns := lang.Functions()
	names := make([]string, len(fns))

	for i, fn := range fns {
		names[i] = fn.Name
	}

	return names
}()

// evalCandidates returns the completions for word in eval mode. A word that
// starts with ':' completes variable references; any other word completes
// keywords and literals.
func evalCandidates(env lang.Environment, word string) []string {
	if strings.HasPrefix(word, ":") {
		keys := env.Keys()
		refs := make([]string, 0, len(keys))

		for _, k := range keys {
			refs = append(refs, variableRef(k))
		}

		return refs
	}

	return slices.Concat(functionNames, literals)
}

// variableRef renders key as a variable reference token.
func variableRef(key string) string {
	if key != "" && strings.IndexFunc(key, func(r rune) bool { return !isWordPart(r) }) < 0 {
		return ":" + key
	}

	return ":" + lang.Format(lang.NewString(key))
}

// computeMatches calculates the fuzzy match results for the word at the
// cursor, ranked best-first.
func (m model) computeMatches() (matches fuzzy.Matches, wordStart, wordEnd int) {
	input := m.input.Value()

	word, wordStart, wordEnd := wordBounds(input, m.input.Position())
	if word == "" {
		return nil, wordStart, wordEnd
	}

	if m.mode == modeCtrl {
		return fuzzy.Find(word, ctrlCommands), wordStart, wordEnd
	}

	if insideString(input, wordStart) {
		return nil, wordStart, wordEnd
	}

	return matchCandidates(word, evalCandidates(m.env, word)), wordStart, wordEnd
}

// matchCandidates ranks candidates against word. Keywords are
// case-insensitive, so they are matched in upper case and reported in
// their original spelling. A bare ':' lists every variable.
func matchCandidates(word string, candidates []string) fuzzy.Matches {
	if word == ":" {
		matches := make(fuzzy.Matches, len(candidates))
		for i, c := range candidates {
			matches[i] = fuzzy.Match{Str: c, Index: i}
		}

		return matches
	}

	if strings.HasPrefix(word, ":") {
		return fuzzy.Find(word, candidates)
	}

	upper := make([]string, len(candidates))
	for i, c := range candidates {
		upper[i] = strings.ToUpper(c)
	}

	matches := fuzzy.Find(strings.ToUpper(word), upper)
	for i := range matches {
		matches[i].Str = candidates[matches[i].Index]
	}

	return matches
}

// renderCandidateBar builds the single-line completion bar, ellipsized to
// fit within width. The selected candidate uses the selected style.
func renderCandidateBar(matches fuzzy.Matches, suggIdx int, tabActive bool, width int) string {
	if len(matches) == 0 || width <= 0 {
		return ""
	}

	const sep = "  "

	ellipsis := hintStyle.Render("...")
	reserve := lipgloss.Width(sep) + lipgloss.Width(ellipsis)

	var (
		b    strings.Builder
		used int
	)

	for i, match := range matches {
		rendered := renderCandidate(match, tabActive && i == suggIdx)

		w := lipgloss.Width(rendered)
		if i > 0 {
			w += lipgloss.Width(sep)
		}

		last := i == len(matches)-1
		if i > 0 && (used+w > width || (!last && used+w+reserve > width)) {
			b.WriteString(sep)
			b.WriteString(ellipsis)

			break
		}

		if i > 0 {
			b.WriteString(sep)
		}

		b.WriteString(rendered)

		used += w
	}

	return b.String()
}

// renderCandidate renders a candidate with its matched characters
// highlighted. Functions get a "()" suffix that is not inserted on
// completion.
func renderCandidate(match fuzzy.Match, selected bool) string {
	base, highlight := suggestionStyle, matchStyle
	if selected {
		base, highlight = selectedStyle, selectedMatchStyle
	}

	matched := make(map[int]bool, len(match.MatchedIndexes))
	for _, idx := range match.MatchedIndexes {
		matched[idx] = true
	}

	var b strings.Builder

	for i, r := range match.Str {
		if matched[i] {
			b.WriteString(highlight.Render(string(r)))
		} else {
			b.WriteString(base.Render(string(r)))
		}
	}

	if slices.Contains(functionNames, match.Str) {
		b.WriteString(base.Render("()"))
	}

	return b.String()
}
