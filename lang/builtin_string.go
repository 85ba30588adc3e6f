package lang

import (
	"context"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

func init() {
	register(&builtin{
		name:     "CONCAT",
		params:   []string{"value"},
		required: 1,
		variadic: true,
		summary:  "text of every non-null argument, joined",
		fn:       builtinConcat,
	})
	register(&builtin{
		name:     "UPPERCASE",
		params:   []string{"text"},
		required: 1,
		summary:  "text in upper case",
		fn:       caseMapper(cases.Upper),
	})
	register(&builtin{
		name:     "LOWERCASE",
		params:   []string{"text"},
		required: 1,
		summary:  "text in lower case",
		fn:       caseMapper(cases.Lower),
	})
	register(&builtin{
		name:     "SEARCH",
		params:   []string{"text", "needle", "start"},
		required: 2,
		summary:  "1-based position of needle in text, ignoring case, or 0",
		fn:       builtinSearch,
	})
	register(&builtin{
		name:     "SPLIT",
		params:   []string{"text", "separator", "index"},
		required: 3,
		summary:  "element index (0-based, negative from the end) of text split on separator",
		fn:       builtinSplit,
	})
}

func builtinConcat(ctx context.Context, in *invocation) (Value, error) {
	var sb strings.Builder

	for i := range in.slots {
		v, err := in.arg(ctx, i)
		if err != nil {
			return nil, err
		}

		if v != nil {
			sb.WriteString(v.String())
		}
	}

	return String(sb.String()), nil
}

// caseMapper returns a builtin applying the locale-aware caser to its String
// argument. Null passes through unchanged.
func caseMapper(
	caser func(language.Tag, ...cases.Option) cases.Caser,
) func(context.Context, *invocation) (Value, error) {
	return func(ctx context.Context, in *invocation) (Value, error) {
		v, err := in.arg(ctx, 0)
		if err != nil || v == nil {
			return nil, err
		}

		s, ok := v.(String)
		if !ok {
			return nil, in.mismatch(0, KindString, v)
		}

		// Casers carry state, so each call gets its own.
		return String(caser(language.Make(in.ev.locale)).String(string(s))), nil
	}
}

func builtinSearch(ctx context.Context, in *invocation) (Value, error) {
	text, err := in.text(ctx, 0)
	if err != nil {
		return nil, err
	}

	needle, err := in.text(ctx, 1)
	if err != nil {
		return nil, err
	}

	start := 1

	if in.has(2) {
		if start, err = in.integer(ctx, 2); err != nil {
			return nil, err
		}
	}

	hay := []rune(text)
	width := utf8.RuneCountInString(needle)

	if start < 1 || start > len(hay)+1 {
		return nil, in.argError(2, "start %d out of range 1..%d", start, len(hay)+1)
	}

	// positions count runes of text itself, so compare rune windows
	for i := start - 1; i+width <= len(hay); i++ {
		if strings.EqualFold(string(hay[i:i+width]), needle) {
			return NumberFromInt(int64(i + 1)), nil
		}
	}

	return NumberFromInt(0), nil
}

func builtinSplit(ctx context.Context, in *invocation) (Value, error) {
	text, err := in.text(ctx, 0)
	if err != nil {
		return nil, err
	}

	sep, err := in.text(ctx, 1)
	if err != nil {
		return nil, err
	}

	index, err := in.integer(ctx, 2)
	if err != nil {
		return nil, err
	}

	parts := strings.Split(text, sep)

	if index < 0 {
		index += len(parts)
	}

	if index < 0 || index >= len(parts) {
		return nil, nil
	}

	return String(parts[index]), nil
}
