package lang

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// token is a lexeme with its position. For TOKEN and QUOTED_STRING, val
// holds the decoded key or text; text is always the raw source.
type token struct {
	sym  Symbol
	text string
	val  string
	pos  Position
}

func (t token) display() string {
	if t.sym == SymEOF {
		return "<EOF>"
	}

	return t.text
}

// lexer splits formula text into tokens. A run of spaces is a single SPACE
// token; tabs and line breaks are skipped.
type lexer struct {
	src  string
	off  int
	line int
	col  int
	toks []token
}

func lex(src string) ([]token, *SyntaxError) {
	l := &lexer{src: src, line: 1}

	for {
		tok, err := l.next()
		if err != nil {
			return nil, err
		}

		l.toks = append(l.toks, tok)

		if tok.sym == SymEOF {
			return l.toks, nil
		}
	}
}

func (l *lexer) peek(ahead int) rune {
	off := l.off
	for i := 0; ; i++ {
		if off >= len(l.src) {
			return utf8.RuneError
		}

		r, n := utf8.DecodeRuneInString(l.src[off:])
		if i == ahead {
			return r
		}

		off += n
	}
}

func (l *lexer) advance() rune {
	r, n := utf8.DecodeRuneInString(l.src[l.off:])
	l.off += n

	if r == '\n' {
		l.line++
		l.col = 0
	} else {
		l.col++
	}

	return r
}

func (l *lexer) eof() bool { return l.off >= len(l.src) }

func (l *lexer) unrecognized(pos Position, text string) *SyntaxError {
	return &SyntaxError{Position: pos, Kind: Unrecognized, Token: text}
}

func (l *lexer) next() (token, *SyntaxError) {
	for !l.eof() && isSkipped(l.peek(0)) {
		l.advance()
	}

	pos := Position{Line: l.line, Column: l.col}
	start := l.off

	if l.eof() {
		return token{sym: SymEOF, pos: pos}, nil
	}

	emit := func(sym Symbol) token {
		return token{sym: sym, text: l.src[start:l.off], pos: pos}
	}

	r := l.peek(0)

	switch {
	case r == ' ':
		for !l.eof() && l.peek(0) == ' ' {
			l.advance()
		}

		return emit(SymSpace), nil

	case isDigit(r) || (r == '.' && isDigit(l.peek(1))):
		return l.number(start, pos), nil

	case isWordStart(r):
		for !l.eof() && isWordPart(l.peek(0)) {
			l.advance()
		}

		word := l.src[start:l.off]

		if sym, ok := keyword(word); ok {
			return emit(sym), nil
		}

		switch strings.ToLower(word) {
		case "true", "false":
			return emit(SymBoolean), nil
		case "null":
			return emit(SymNull), nil
		}

		if l.peek(0) == '(' {
			return emit(SymCustomFunction), nil
		}

		return emit(SymName), nil

	case r == ':':
		l.advance()

		if q := l.peek(0); q == '\'' || q == '"' {
			val, ok := l.quoted()
			if !ok {
				return token{}, l.unrecognized(pos, l.src[start:l.off])
			}

			tok := emit(SymToken)
			tok.val = val

			return tok, nil
		}

		for !l.eof() && isKeyPart(l.peek(0)) {
			l.advance()
		}

		if l.off-start == 1 {
			return token{}, l.unrecognized(pos, ":")
		}

		tok := emit(SymToken)
		tok.val = tok.text[1:]

		return tok, nil

	case r == '\'' || r == '"':
		val, ok := l.quoted()
		if !ok {
			return token{}, l.unrecognized(pos, l.src[start:l.off])
		}

		tok := emit(SymQuotedString)
		tok.val = val

		return tok, nil
	}

	l.advance()

	switch r {
	case '(':
		return emit(SymLParen), nil
	case ')':
		return emit(SymRParen), nil
	case ',':
		return emit(SymComma), nil
	case '+':
		return emit(SymPlus), nil
	case '-':
		return emit(SymMinus), nil
	case '*':
		return emit(SymStar), nil
	case '/':
		return emit(SymSlash), nil
	case '^':
		return emit(SymCaret), nil
	case '=':
		if l.peek(0) == '=' {
			l.advance()

			return emit(SymEQ), nil
		}

		return emit(SymAssign), nil
	case '<':
		if l.peek(0) == '=' {
			l.advance()

			return emit(SymLE), nil
		}

		return emit(SymLT), nil
	case '>':
		if l.peek(0) == '=' {
			l.advance()

			return emit(SymGE), nil
		}

		return emit(SymGT), nil
	case '!':
		if l.peek(0) == '=' {
			l.advance()

			return emit(SymNE), nil
		}
	}

	return token{}, l.unrecognized(pos, l.src[start:l.off])
}

// number scans NUMBER or SCIENTIFIC_NUMBER starting at the current offset.
func (l *lexer) number(start int, pos Position) token {
	for !l.eof() && isDigit(l.peek(0)) {
		l.advance()
	}

	if l.peek(0) == '.' && isDigit(l.peek(1)) {
		l.advance()

		for !l.eof() && isDigit(l.peek(0)) {
			l.advance()
		}
	}

	sym := SymNumber

	if e := l.peek(0); e == 'e' || e == 'E' {
		n := 1
		if sign := l.peek(1); sign == '+' || sign == '-' {
			n = 2
		}

		if isDigit(l.peek(n)) {
			for range n {
				l.advance()
			}

			for !l.eof() && isDigit(l.peek(0)) {
				l.advance()
			}

			sym = SymScientificNumber
		}
	}

	return token{sym: sym, text: l.src[start:l.off], pos: pos}
}

// quoted scans a single- or double-quoted string at the current offset and
// returns its decoded text. A backslash escapes the following character.
func (l *lexer) quoted() (string, bool) {
	q := l.advance()

	var sb strings.Builder

	for !l.eof() {
		r := l.advance()

		switch r {
		case q:
			return sb.String(), true

		case '\\':
			if l.eof() {
				return "", false
			}

			switch e := l.advance(); e {
			case 'n':
				sb.WriteByte('\n')
			case 't':
				sb.WriteByte('\t')
			case 'r':
				sb.WriteByte('\r')
			default:
				sb.WriteRune(e)
			}

		default:
			sb.WriteRune(r)
		}
	}

	return "", false
}

func isDigit(r rune) bool { return r >= '0' && r <= '9' }

func isSkipped(r rune) bool { return r == '\t' || r == '\r' || r == '\n' }

func isWordStart(r rune) bool { return r == '_' || unicode.IsLetter(r) }

func isWordPart(r rune) bool { return isWordStart(r) || unicode.IsDigit(r) }

func isKeyPart(r rune) bool {
	return isWordPart(r) || r == '.' || r == ':'
}
