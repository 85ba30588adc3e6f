package lang

import (
	"context"
	"strings"

	"github.com/shopspring/decimal"
)

// Parse parses expression into a syntax tree. On invalid input it returns a
// [*SyntaxError] describing the first offending token.
func Parse(ctx context.Context, expression string, opts ...Option) (*Tree, error) {
	return New(opts...).Parse(ctx, expression)
}

// parse runs the lexer and the recursive-descent parser over src.
func parse(src string) (*Tree, error) {
	toks, lexErr := lex(src)
	if lexErr != nil {
		return nil, lexErr
	}

	p := &parser{toks: toks}

	root, err := p.formula()
	if err != nil {
		return nil, err
	}

	return &Tree{Source: src, Root: root}, nil
}

// parser is a single-pass recursive-descent parser without error recovery.
//
// Spaces are significant tokens that may appear between any two tokens. The
// parser consumes them eagerly and remembers whether the last consumed token
// was a space, because an optional space is a legal continuation only where
// one has not just been consumed.
type parser struct {
	toks   []token
	pos    int
	spaced bool
}

func (p *parser) cur() token { return p.toks[p.pos] }

func (p *parser) lookahead(n int) token {
	if i := p.pos + n; i < len(p.toks) {
		return p.toks[i]
	}

	return p.toks[len(p.toks)-1]
}

func (p *parser) advance() token {
	tok := p.toks[p.pos]
	if tok.sym != SymEOF {
		p.pos++
	}

	p.spaced = tok.sym == SymSpace

	return tok
}

func (p *parser) space() {
	if p.cur().sym == SymSpace {
		p.advance()
	}
}

// fail reports the current token given the set of symbols that could have
// continued the input at this point.
func (p *parser) fail(expected symbolSet) *SyntaxError {
	if p.spaced {
		expected &^= setOf(SymSpace)
	} else {
		expected = expected.with(SymSpace)
	}

	tok := p.cur()
	kind := Mismatched

	if tok.sym != SymEOF && expected.has(p.lookahead(1).sym) {
		kind = Extraneous
	}

	return &SyntaxError{
		Position: tok.pos,
		Kind:     kind,
		Token:    tok.display(),
		Expected: expected.symbols(),
	}
}

// formula = _ expression _ EOF
func (p *parser) formula() (Node, error) {
	p.space()

	n, err := p.expression()
	if err != nil {
		return nil, err
	}

	p.space()

	if p.cur().sym != SymEOF {
		return nil, p.fail(binaryOps.with(SymEOF))
	}

	return n, nil
}

func (p *parser) expression() (Node, error) { return p.comparison() }

var (
	comparisonOps = setOf(SymLT, SymLE, SymGT, SymGE, SymEQ, SymNE)
	additiveOps   = setOf(SymPlus, SymMinus)
	termOps       = setOf(SymStar, SymSlash)
)

// binary parses a left-associative chain of operand separated by ops.
func (p *parser) binary(ops symbolSet, operand func() (Node, error)) (Node, error) {
	left, err := operand()
	if err != nil {
		return nil, err
	}

	for {
		p.space()

		if !ops.has(p.cur().sym) {
			return left, nil
		}

		op := p.advance()
		p.space()

		right, err := operand()
		if err != nil {
			return nil, err
		}

		left = &Binary{At: op.pos, Op: operatorOf(op.sym), Left: left, Right: right}
	}
}

func (p *parser) comparison() (Node, error) {
	return p.binary(comparisonOps, p.additive)
}

func (p *parser) additive() (Node, error) {
	return p.binary(additiveOps, p.term)
}

func (p *parser) term() (Node, error) {
	return p.binary(termOps, p.unary)
}

// unary = '-' _ unary | power
func (p *parser) unary() (Node, error) {
	if p.cur().sym != SymMinus {
		return p.power()
	}

	op := p.advance()
	p.space()

	operand, err := p.unary()
	if err != nil {
		return nil, err
	}

	return &Unary{At: op.pos, Operand: operand}, nil
}

// power = primary [ _ '^' _ unary ]
func (p *parser) power() (Node, error) {
	base, err := p.primary()
	if err != nil {
		return nil, err
	}

	p.space()

	if p.cur().sym != SymCaret {
		return base, nil
	}

	op := p.advance()
	p.space()

	exp, err := p.unary()
	if err != nil {
		return nil, err
	}

	return &Binary{At: op.pos, Op: OpPow, Left: base, Right: exp}, nil
}

func (p *parser) primary() (Node, error) {
	tok := p.cur()

	switch sym := tok.sym; {
	case sym == SymNumber || sym == SymScientificNumber:
		p.advance()

		d, err := decimal.NewFromString(tok.text)
		if err != nil {
			return nil, p.fail(operandStart)
		}

		return &Literal{At: tok.pos, Value: NewNumber(d)}, nil

	case sym == SymQuotedString:
		p.advance()

		return &Literal{At: tok.pos, Value: String(tok.val)}, nil

	case sym == SymBoolean:
		p.advance()

		return &Literal{At: tok.pos, Value: Boolean(strings.EqualFold(tok.text, "true"))}, nil

	case sym == SymNull:
		p.advance()

		return &Literal{At: tok.pos}, nil

	case sym == SymToken:
		p.advance()

		return &Variable{At: tok.pos, Name: tok.val}, nil

	case sym == SymLParen:
		p.advance()
		p.space()

		n, err := p.expression()
		if err != nil {
			return nil, err
		}

		p.space()

		if p.cur().sym != SymRParen {
			return nil, p.fail(binaryOps.with(SymRParen))
		}

		p.advance()

		return n, nil

	case sym == SymSet:
		return p.assign()

	case sym.IsKeyword():
		p.advance()
		p.space()

		if p.cur().sym != SymLParen {
			return nil, p.fail(setOf(SymLParen))
		}

		p.advance()

		args, err := p.arguments()
		if err != nil {
			return nil, err
		}

		return &Call{At: tok.pos, Name: sym.String(), Args: args}, nil

	case sym == SymCustomFunction:
		p.advance()
		p.advance() // '(' always follows immediately

		args, err := p.arguments()
		if err != nil {
			return nil, err
		}

		return &Call{At: tok.pos, Name: tok.text, Custom: true, Args: args}, nil
	}

	return nil, p.fail(operandStart)
}

// assign = SET _ TOKEN _ '=' _ expression
func (p *parser) assign() (Node, error) {
	set := p.advance()
	p.space()

	name := p.cur()
	if name.sym != SymToken {
		return nil, p.fail(setOf(SymToken))
	}

	p.advance()
	p.space()

	if p.cur().sym != SymAssign {
		return nil, p.fail(setOf(SymAssign))
	}

	p.advance()
	p.space()

	value, err := p.expression()
	if err != nil {
		return nil, err
	}

	return &Assign{At: set.pos, Name: name.val, Value: value}, nil
}

// arguments parses the argument list after '(' through the closing ')'.
func (p *parser) arguments() ([]Argument, error) {
	p.space()

	if p.cur().sym == SymRParen {
		p.advance()

		return nil, nil
	}

	start := operandStart.with(SymName, SymRParen)

	var args []Argument

	for {
		arg, err := p.argument(start)
		if err != nil {
			return nil, err
		}

		args = append(args, arg)

		p.space()

		switch p.cur().sym {
		case SymComma:
			p.advance()
			p.space()

			start = operandStart.with(SymName)

			continue

		case SymRParen:
			p.advance()

			return args, nil
		}

		return nil, p.fail(binaryOps.with(SymRParen, SymComma))
	}
}

// argument = NAME _ '=' _ expression | expression
func (p *parser) argument(start symbolSet) (Argument, error) {
	tok := p.cur()

	switch {
	case tok.sym == SymName:
		p.advance()
		p.space()

		if p.cur().sym != SymAssign {
			return Argument{}, p.fail(setOf(SymAssign))
		}

		p.advance()
		p.space()

		value, err := p.expression()
		if err != nil {
			return Argument{}, err
		}

		return Argument{Name: tok.text, Value: value}, nil

	case operandStart.has(tok.sym):
		value, err := p.expression()
		if err != nil {
			return Argument{}, err
		}

		return Argument{Value: value}, nil
	}

	return Argument{}, p.fail(start)
}
